// internal/agent/intent/extractor_test.go
package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reservation-agent/internal/common/logger"
	"reservation-agent/internal/models"
)

// fixedMonday is 2025-06-02, a Monday.
var fixedMonday = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func newTestExtractor(t *testing.T, now time.Time) *Extractor {
	return NewExtractor(LoadConfig(), logger.NewTestLogger(t)).WithClock(func() time.Time { return now })
}

func TestExtract_BookingScenario(t *testing.T) {
	e := newTestExtractor(t, fixedMonday)

	out := e.Extract("Book a table for 4 in Koramangala tomorrow at 19:00")

	assert.Equal(t, models.IntentBook, out.Intent)
	require.NotNil(t, out.Slots.PartySize)
	assert.Equal(t, 4, *out.Slots.PartySize)
	require.NotNil(t, out.Slots.Area)
	assert.Equal(t, "Koramangala", *out.Slots.Area)
	require.NotNil(t, out.Slots.Date)
	assert.Equal(t, "2025-06-03", *out.Slots.Date)
	require.NotNil(t, out.Slots.Time)
	assert.Equal(t, "19:00", *out.Slots.Time)

	require.Len(t, out.Plan, 1)
	assert.Equal(t, models.ActionSearchLocations, out.Plan[0].Action)
	assert.Equal(t, "Koramangala", out.Plan[0].Args["area"])
	assert.Equal(t, 4, out.Plan[0].Args["party_size"])
	assert.Equal(t, 3, out.Plan[0].Args["limit"])
}

func TestExtract_TomorrowAlwaysNextDay(t *testing.T) {
	e := newTestExtractor(t, fixedMonday)

	inputs := []string{
		"book a table tomorrow",
		"tomorrow please",
		"cancel tomorrow's plans",
		"recommend somewhere for tomorrow at 8pm in jayanagar",
	}
	for _, text := range inputs {
		out := e.Extract(text)
		require.NotNil(t, out.Slots.Date, "input: %s", text)
		assert.Equal(t, "2025-06-03", *out.Slots.Date, "input: %s", text)
	}
}

func TestExtract_WeekdayStrictlyFuture(t *testing.T) {
	e := newTestExtractor(t, fixedMonday)

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"later this week", "book a table on friday", "2025-06-06"},
		{"same weekday rolls a full week", "book a table on monday", "2025-06-09"},
		{"sunday", "reserve for sunday", "2025-06-08"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := e.Extract(tt.text)
			require.NotNil(t, out.Slots.Date)
			assert.Equal(t, tt.expected, *out.Slots.Date)

			parsed, err := time.Parse("2006-01-02", *out.Slots.Date)
			require.NoError(t, err)
			diff := int(parsed.Sub(fixedMonday.Truncate(24*time.Hour)).Hours() / 24)
			assert.GreaterOrEqual(t, diff, 1)
			assert.LessOrEqual(t, diff, 7)
		})
	}
}

func TestExtract_TimeFormats(t *testing.T) {
	e := newTestExtractor(t, fixedMonday)

	tests := []struct {
		text     string
		expected string
	}{
		{"book at 18:30", "18:30"},
		{"book at 7pm", "19:00"},
		{"book at 9am", "09:00"},
		{"book at 11 pm", "23:00"},
		// hour 12 passes through unchanged for both suffixes
		{"book at 12pm", "12:00"},
		{"book at 12am", "12:00"},
		// explicit clock time wins over am/pm
		{"book at 18:30 not 7pm", "18:30"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			out := e.Extract(tt.text)
			require.NotNil(t, out.Slots.Time)
			assert.Equal(t, tt.expected, *out.Slots.Time)
		})
	}
}

func TestExtract_PartySize(t *testing.T) {
	e := newTestExtractor(t, fixedMonday)

	out := e.Extract("book a table for 12 people")
	require.NotNil(t, out.Slots.PartySize)
	assert.Equal(t, 12, *out.Slots.PartySize)

	out = e.Extract("reserve for a party of 6")
	require.NotNil(t, out.Slots.PartySize)
	assert.Equal(t, 6, *out.Slots.PartySize)

	out = e.Extract("book a table")
	assert.Nil(t, out.Slots.PartySize)
}

func TestExtract_BookingIDAndContact(t *testing.T) {
	e := newTestExtractor(t, fixedMonday)

	out := e.Extract("cancel id bk_42")
	assert.Equal(t, models.IntentCancel, out.Intent)
	require.NotNil(t, out.Slots.BookingID)
	assert.Equal(t, "bk_42", *out.Slots.BookingID)
	require.Len(t, out.Plan, 1)
	assert.Equal(t, models.ActionCancelReservation, out.Plan[0].Action)
	assert.Equal(t, "bk_42", out.Plan[0].Args["booking_id"])

	out = e.Extract("reserve under +91 98765-43210")
	require.NotNil(t, out.Slots.Contact)
	assert.Equal(t, "+91 98765-43210", *out.Slots.Contact)
}

func TestExtract_CancelWithoutBookingID(t *testing.T) {
	e := newTestExtractor(t, fixedMonday)

	out := e.Extract("cancel my plans")
	assert.Equal(t, models.IntentCancel, out.Intent)
	assert.Nil(t, out.Slots.BookingID)
	assert.Empty(t, out.Plan)
	assert.Equal(t, "Please provide your booking ID to cancel.", out.NaturalResponse)
}

func TestExtract_RecommendAlwaysSearches(t *testing.T) {
	e := newTestExtractor(t, fixedMonday)

	out := e.Extract("recommend a place in indiranagar for 2")
	assert.Equal(t, models.IntentRecommend, out.Intent)
	require.Len(t, out.Plan, 1)
	assert.Equal(t, models.ActionSearchLocations, out.Plan[0].Action)
	assert.Equal(t, "Indiranagar", out.Plan[0].Args["area"])
	assert.Equal(t, 2, out.Plan[0].Args["party_size"])
	assert.Equal(t, 5, out.Plan[0].Args["limit"])

	// area and party size default when absent
	out = e.Extract("suggest somewhere nice")
	require.Len(t, out.Plan, 1)
	assert.Equal(t, "", out.Plan[0].Args["area"])
	assert.Equal(t, 2, out.Plan[0].Args["party_size"])
}

func TestExtract_BookMissingSlots(t *testing.T) {
	e := newTestExtractor(t, fixedMonday)

	// no party size: no plan, clarifying response
	out := e.Extract("book a table in koramangala tomorrow at 7pm")
	assert.Equal(t, models.IntentBook, out.Intent)
	assert.Empty(t, out.Plan)
	assert.Equal(t, "How many people is the booking for?", out.NaturalResponse)

	// area and party size are enough for a search plan; the response still
	// asks for the missing date and time
	out = e.Extract("book a table for 4 in koramangala")
	require.Len(t, out.Plan, 1)
	assert.Equal(t, models.ActionSearchLocations, out.Plan[0].Action)
	assert.Equal(t, "Koramangala", out.Plan[0].Args["area"])
	assert.Equal(t, 4, out.Plan[0].Args["party_size"])
	assert.Equal(t, "What date and time would you like to book?", out.NaturalResponse)
}

func TestExtract_IntentPriority(t *testing.T) {
	e := newTestExtractor(t, fixedMonday)

	// "booking" contains "book", so book wins over modify keywords
	out := e.Extract("change my booking to friday")
	assert.Equal(t, models.IntentBook, out.Intent)

	out = e.Extract("reschedule id bk_42 to 20:00")
	assert.Equal(t, models.IntentModify, out.Intent)
	assert.Empty(t, out.Plan)

	// "cancel booking id ..." also classifies as book: "booking" contains
	// "book" and book keywords are checked first, so no cancel plan is built
	out = e.Extract("cancel booking id bk_42")
	assert.Equal(t, models.IntentBook, out.Intent)
	assert.Empty(t, out.Plan)
}

func TestExtract_UnknownIntent(t *testing.T) {
	e := newTestExtractor(t, fixedMonday)

	out := e.Extract("hello there")
	assert.Equal(t, models.IntentUnknown, out.Intent)
	assert.Nil(t, out.Slots.Date)
	assert.Nil(t, out.Slots.Area)
	assert.Empty(t, out.Plan)
	assert.Equal(t, "I can help you book, modify, cancel, or recommend restaurants. What would you like to do?", out.NaturalResponse)
}

func TestExtract_ISODate(t *testing.T) {
	e := newTestExtractor(t, fixedMonday)

	out := e.Extract("book a table for 2 on 2025-07-15 at 20:00")
	require.NotNil(t, out.Slots.Date)
	assert.Equal(t, "2025-07-15", *out.Slots.Date)
}

func TestExtract_AreaTitleCased(t *testing.T) {
	e := newTestExtractor(t, fixedMonday)

	out := e.Extract("book a table for 2 on mg road")
	require.NotNil(t, out.Slots.Area)
	assert.Equal(t, "Mg Road", *out.Slots.Area)
}
