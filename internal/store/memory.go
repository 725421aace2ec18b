package store

import (
	"context"
	"sync"
	"time"

	"reservation-agent/internal/catalog"
	"reservation-agent/internal/models"
)

// MemoryStore is an in-process Store with the same semantics as the postgres
// implementation. All operations run under one mutex, so the
// check-then-insert sequence is serialized.
type MemoryStore struct {
	mu           sync.Mutex
	cat          *catalog.Catalog
	reservations map[string]*models.Reservation
	nowFn        func() time.Time
	idFn         func() string
}

func NewMemoryStore(cat *catalog.Catalog) *MemoryStore {
	return &MemoryStore{
		cat:          cat,
		reservations: make(map[string]*models.Reservation),
		nowFn:        time.Now,
		idFn:         newReservationID,
	}
}

func (s *MemoryStore) SearchLocations(_ context.Context, area string, partySize, limit int) ([]models.ScoredRestaurant, error) {
	return searchCatalog(s.cat, area, partySize, limit), nil
}

// occupancy sums CONFIRMED party sizes at the exact datetime string. Caller
// must hold the mutex.
func (s *MemoryStore) occupancy(restaurantID, datetimeISO string) int {
	used := 0
	for _, r := range s.reservations {
		if r.RestaurantID == restaurantID && r.Datetime == datetimeISO && r.Status == models.StatusConfirmed {
			used += r.PartySize
		}
	}
	return used
}

func (s *MemoryStore) CheckAvailability(_ context.Context, restaurantID, datetimeISO string, partySize int) (models.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := s.occupancy(restaurantID, datetimeISO)
	capacity := s.cat.Capacity(restaurantID)
	return models.Availability{
		RestaurantID: restaurantID,
		Available:    used+partySize <= capacity,
		Used:         used,
		Capacity:     capacity,
	}, nil
}

func (s *MemoryStore) CreateReservation(_ context.Context, restaurantID, restaurantName, datetimeISO string, partySize int, name, contact string) (models.ReservationOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := s.occupancy(restaurantID, datetimeISO)
	capacity := s.cat.Capacity(restaurantID)
	if used+partySize > capacity {
		return models.ReservationOutcome{
			Success:  false,
			Reason:   models.ReasonNoAvailability,
			Used:     used,
			Capacity: capacity,
		}, nil
	}

	id := s.idFn()
	s.reservations[id] = &models.Reservation{
		ID:             id,
		RestaurantID:   restaurantID,
		RestaurantName: restaurantName,
		Datetime:       datetimeISO,
		PartySize:      partySize,
		Name:           name,
		Contact:        contact,
		Status:         models.StatusConfirmed,
		CreatedAt:      nowISO(s.nowFn()),
	}

	return models.ReservationOutcome{
		Success:        true,
		ID:             id,
		RestaurantName: restaurantName,
		Datetime:       datetimeISO,
		PartySize:      partySize,
		Contact:        contact,
	}, nil
}

func (s *MemoryStore) ModifyReservation(_ context.Context, bookingID string, newDatetime *string, newPartySize *int) (models.ReservationOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[bookingID]
	if !ok || r.Status != models.StatusConfirmed {
		return models.ReservationOutcome{Success: false, Reason: models.ReasonNotFound}, nil
	}

	ndt := r.Datetime
	if newDatetime != nil && *newDatetime != "" {
		ndt = *newDatetime
	}
	nps := r.PartySize
	if newPartySize != nil && *newPartySize > 0 {
		nps = *newPartySize
	}

	// The recheck counts the reservation's own prior occupancy too.
	used := s.occupancy(r.RestaurantID, ndt)
	capacity := s.cat.Capacity(r.RestaurantID)
	if used+nps > capacity {
		return models.ReservationOutcome{Success: false, Reason: models.ReasonNoAvailability}, nil
	}

	r.Datetime = ndt
	r.PartySize = nps

	return models.ReservationOutcome{
		Success:        true,
		ID:             bookingID,
		RestaurantName: r.RestaurantName,
		Datetime:       ndt,
		PartySize:      nps,
	}, nil
}

func (s *MemoryStore) CancelReservation(_ context.Context, bookingID string) (models.ReservationOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[bookingID]
	if !ok {
		return models.ReservationOutcome{Success: false, Reason: models.ReasonNotFound}, nil
	}

	r.Status = models.StatusCancelled

	return models.ReservationOutcome{
		Success: true,
		ID:      bookingID,
		Status:  models.StatusCancelled,
	}, nil
}
