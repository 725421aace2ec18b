// internal/agent/executor/executor_test.go
package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reservation-agent/internal/common/logger"
	"reservation-agent/internal/models"
	"reservation-agent/internal/notify"
)

// fakeStore scripts each operation through a function field; unset fields
// return zero values.
type fakeStore struct {
	searchFn func(ctx context.Context, area string, partySize, limit int) ([]models.ScoredRestaurant, error)
	checkFn  func(ctx context.Context, restaurantID, datetimeISO string, partySize int) (models.Availability, error)
	createFn func(ctx context.Context, restaurantID, restaurantName, datetimeISO string, partySize int, name, contact string) (models.ReservationOutcome, error)
	modifyFn func(ctx context.Context, bookingID string, newDatetime *string, newPartySize *int) (models.ReservationOutcome, error)
	cancelFn func(ctx context.Context, bookingID string) (models.ReservationOutcome, error)
}

func (f *fakeStore) SearchLocations(ctx context.Context, area string, partySize, limit int) ([]models.ScoredRestaurant, error) {
	if f.searchFn != nil {
		return f.searchFn(ctx, area, partySize, limit)
	}
	return nil, nil
}

func (f *fakeStore) CheckAvailability(ctx context.Context, restaurantID, datetimeISO string, partySize int) (models.Availability, error) {
	if f.checkFn != nil {
		return f.checkFn(ctx, restaurantID, datetimeISO, partySize)
	}
	return models.Availability{}, nil
}

func (f *fakeStore) CreateReservation(ctx context.Context, restaurantID, restaurantName, datetimeISO string, partySize int, name, contact string) (models.ReservationOutcome, error) {
	if f.createFn != nil {
		return f.createFn(ctx, restaurantID, restaurantName, datetimeISO, partySize, name, contact)
	}
	return models.ReservationOutcome{}, nil
}

func (f *fakeStore) ModifyReservation(ctx context.Context, bookingID string, newDatetime *string, newPartySize *int) (models.ReservationOutcome, error) {
	if f.modifyFn != nil {
		return f.modifyFn(ctx, bookingID, newDatetime, newPartySize)
	}
	return models.ReservationOutcome{}, nil
}

func (f *fakeStore) CancelReservation(ctx context.Context, bookingID string) (models.ReservationOutcome, error) {
	if f.cancelFn != nil {
		return f.cancelFn(ctx, bookingID)
	}
	return models.ReservationOutcome{}, nil
}

func newTestExecutor(t *testing.T, st *fakeStore) *Executor {
	log := logger.NewTestLogger(t)
	return New(st, notify.NewStubNotifier(log), log)
}

func TestExecute_NotAllowedAction(t *testing.T) {
	invoked := false
	st := &fakeStore{
		searchFn: func(context.Context, string, int, int) ([]models.ScoredRestaurant, error) {
			invoked = true
			return nil, nil
		},
	}
	e := newTestExecutor(t, st)

	results := e.Execute(context.Background(), []models.ActionStep{
		{Action: "drop_table", Args: map[string]interface{}{}},
	}, models.SlotSet{})

	require.Contains(t, results, "drop_table")
	assert.Equal(t, ErrNotAllowed, results["drop_table"].Error)
	assert.False(t, invoked, "non-whitelisted step must never invoke the store")
}

func TestExecute_StepFaultDoesNotAbortPlan(t *testing.T) {
	st := &fakeStore{
		searchFn: func(context.Context, string, int, int) ([]models.ScoredRestaurant, error) {
			panic("catalog exploded")
		},
		cancelFn: func(_ context.Context, bookingID string) (models.ReservationOutcome, error) {
			return models.ReservationOutcome{Success: true, ID: bookingID, Status: models.StatusCancelled}, nil
		},
	}
	e := newTestExecutor(t, st)

	results := e.Execute(context.Background(), []models.ActionStep{
		{Action: models.ActionSearchLocations},
		{Action: models.ActionCancelReservation, Args: map[string]interface{}{"booking_id": "bk_1"}},
	}, models.SlotSet{})

	require.Contains(t, results, models.ActionSearchLocations)
	assert.Equal(t, ErrException, results[models.ActionSearchLocations].Error)
	assert.Contains(t, results[models.ActionSearchLocations].Reason, "catalog exploded")

	require.Contains(t, results, models.ActionCancelReservation)
	outcome, ok := results[models.ActionCancelReservation].Value.(models.ReservationOutcome)
	require.True(t, ok)
	assert.True(t, outcome.Success)
}

func TestExecute_StoreErrorBecomesException(t *testing.T) {
	st := &fakeStore{
		checkFn: func(context.Context, string, string, int) (models.Availability, error) {
			return models.Availability{}, errors.New("connection refused")
		},
	}
	e := newTestExecutor(t, st)

	results := e.Execute(context.Background(), []models.ActionStep{
		{Action: models.ActionCheckAvailability, Args: map[string]interface{}{"restaurant_id": "r_001"}},
	}, models.SlotSet{})

	res := results[models.ActionCheckAvailability]
	assert.Equal(t, ErrException, res.Error)
	assert.Equal(t, "connection refused", res.Reason)
}

func TestExecute_ArgumentFallbackDefaults(t *testing.T) {
	var gotParty int
	var gotName, gotContact string
	st := &fakeStore{
		createFn: func(_ context.Context, _, _, _ string, partySize int, name, contact string) (models.ReservationOutcome, error) {
			gotParty, gotName, gotContact = partySize, name, contact
			return models.ReservationOutcome{Success: true, ID: "abc12345"}, nil
		},
	}
	e := newTestExecutor(t, st)

	// neither args nor slots carry the shared fields
	e.Execute(context.Background(), []models.ActionStep{
		{Action: models.ActionCreateReservation, Args: map[string]interface{}{"restaurant_id": "r_001", "datetime": "2025-06-03T19:00"}},
	}, models.SlotSet{})

	assert.Equal(t, 2, gotParty)
	assert.Equal(t, "Guest", gotName)
	assert.Equal(t, "N/A", gotContact)
}

func TestExecute_ArgsWinOverSlots(t *testing.T) {
	var gotParty int
	var gotName string
	st := &fakeStore{
		createFn: func(_ context.Context, _, _, _ string, partySize int, name, _ string) (models.ReservationOutcome, error) {
			gotParty, gotName = partySize, name
			return models.ReservationOutcome{Success: true}, nil
		},
	}
	e := newTestExecutor(t, st)

	slotParty := 4
	slotName := "Asha"
	e.Execute(context.Background(), []models.ActionStep{
		{Action: models.ActionCreateReservation, Args: map[string]interface{}{
			"restaurant_id": "r_001",
			"party_size":    6,
		}},
	}, models.SlotSet{PartySize: &slotParty, Name: &slotName})

	assert.Equal(t, 6, gotParty, "step args take precedence over slots")
	assert.Equal(t, "Asha", gotName, "slots fill fields absent from args")
}

func TestExecute_DuplicateActionKeepsLaterResult(t *testing.T) {
	calls := 0
	st := &fakeStore{
		cancelFn: func(_ context.Context, bookingID string) (models.ReservationOutcome, error) {
			calls++
			return models.ReservationOutcome{Success: true, ID: bookingID}, nil
		},
	}
	e := newTestExecutor(t, st)

	results := e.Execute(context.Background(), []models.ActionStep{
		{Action: models.ActionCancelReservation, Args: map[string]interface{}{"booking_id": "first"}},
		{Action: models.ActionCancelReservation, Args: map[string]interface{}{"booking_id": "second"}},
	}, models.SlotSet{})

	assert.Equal(t, 2, calls, "both steps run")
	outcome := results[models.ActionCancelReservation].Value.(models.ReservationOutcome)
	assert.Equal(t, "second", outcome.ID, "later occurrence overwrites the earlier result")
}

func TestExecute_SearchRerankedAndTruncated(t *testing.T) {
	st := &fakeStore{
		searchFn: func(_ context.Context, area string, partySize, limit int) ([]models.ScoredRestaurant, error) {
			assert.Equal(t, "Koramangala", area)
			return []models.ScoredRestaurant{
				{Restaurant: models.Restaurant{ID: "r_001", Rating: 4.0, Capacity: 10}, Score: 4.0},
				{Restaurant: models.Restaurant{ID: "r_002", Rating: 4.5, Capacity: 2}, Score: 4.5},
				{Restaurant: models.Restaurant{ID: "r_003", Rating: 4.2, Capacity: 50}, Score: 4.2},
			}, nil
		},
	}
	e := newTestExecutor(t, st)

	// JSON-shaped numeric args arrive as float64
	results := e.Execute(context.Background(), []models.ActionStep{
		{Action: models.ActionSearchLocations, Args: map[string]interface{}{
			"area":       "Koramangala",
			"party_size": float64(8),
			"limit":      float64(2),
		}},
	}, models.SlotSet{})

	items, ok := results[models.ActionSearchLocations].Value.([]models.ScoredRestaurant)
	require.True(t, ok)
	require.Len(t, items, 2)
	// r_002 is heavily penalized for a party of 8 against capacity 2
	assert.Equal(t, "r_003", items[0].ID)
	assert.Equal(t, "r_001", items[1].ID)
}

func TestExecute_SendNotificationDefaults(t *testing.T) {
	e := newTestExecutor(t, &fakeStore{})

	results := e.Execute(context.Background(), []models.ActionStep{
		{Action: models.ActionSendNotification, Args: map[string]interface{}{"dest": "+91 98765 43210", "message": "hi"}},
	}, models.SlotSet{})

	receipt, ok := results[models.ActionSendNotification].Value.(models.NotificationReceipt)
	require.True(t, ok)
	assert.True(t, receipt.Sent)
	assert.Equal(t, "sms", receipt.Method)
	assert.Equal(t, "+91 98765 43210", receipt.Dest)
}

func TestExecute_ModifyArgs(t *testing.T) {
	var gotDT *string
	var gotPS *int
	st := &fakeStore{
		modifyFn: func(_ context.Context, bookingID string, newDatetime *string, newPartySize *int) (models.ReservationOutcome, error) {
			gotDT, gotPS = newDatetime, newPartySize
			return models.ReservationOutcome{Success: true, ID: bookingID}, nil
		},
	}
	e := newTestExecutor(t, st)

	e.Execute(context.Background(), []models.ActionStep{
		{Action: models.ActionModifyReservation, Args: map[string]interface{}{
			"booking_id":   "bk_1",
			"new_datetime": "2025-06-04T20:00",
		}},
	}, models.SlotSet{})

	require.NotNil(t, gotDT)
	assert.Equal(t, "2025-06-04T20:00", *gotDT)
	assert.Nil(t, gotPS, "absent new_party_size stays nil")
}

func TestExecute_StepTimeoutBoundsEachStep(t *testing.T) {
	st := &fakeStore{
		searchFn: func(ctx context.Context, _ string, _, _ int) ([]models.ScoredRestaurant, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
		cancelFn: func(ctx context.Context, bookingID string) (models.ReservationOutcome, error) {
			if _, ok := ctx.Deadline(); !ok {
				return models.ReservationOutcome{}, errors.New("missing deadline")
			}
			return models.ReservationOutcome{Success: true, ID: bookingID}, nil
		},
	}
	e := newTestExecutor(t, st).WithStepTimeout(20 * time.Millisecond)

	results := e.Execute(context.Background(), []models.ActionStep{
		{Action: models.ActionSearchLocations, Args: map[string]interface{}{"area": "Koramangala"}},
		{Action: models.ActionCancelReservation, Args: map[string]interface{}{"booking_id": "bk_1"}},
	}, models.SlotSet{})

	slow := results[models.ActionSearchLocations]
	assert.Equal(t, ErrException, slow.Error)
	assert.Contains(t, slow.Reason, context.DeadlineExceeded.Error())

	// the next step gets a fresh deadline and still runs
	fast := results[models.ActionCancelReservation]
	require.Empty(t, fast.Error)
	outcome, ok := fast.Value.(models.ReservationOutcome)
	require.True(t, ok)
	assert.True(t, outcome.Success)
}

func TestExecute_ZeroStepTimeoutInheritsContext(t *testing.T) {
	var hadDeadline bool
	st := &fakeStore{
		cancelFn: func(ctx context.Context, bookingID string) (models.ReservationOutcome, error) {
			_, hadDeadline = ctx.Deadline()
			return models.ReservationOutcome{Success: true, ID: bookingID}, nil
		},
	}
	e := newTestExecutor(t, st)

	e.Execute(context.Background(), []models.ActionStep{
		{Action: models.ActionCancelReservation, Args: map[string]interface{}{"booking_id": "bk_1"}},
	}, models.SlotSet{})

	assert.False(t, hadDeadline)
}
