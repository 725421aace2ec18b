// Package intent maps free text to a structured intent, slot set, and action
// plan. Parsing is deterministic keyword/regex matching over a fixed slot
// schema, first match wins per field.
package intent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"reservation-agent/internal/common/logger"
	"reservation-agent/internal/models"
)

var (
	isoDateRe   = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)
	clockTimeRe = regexp.MustCompile(`(\d{1,2}:\d{2})`)
	amPmTimeRe  = regexp.MustCompile(`(\d{1,2})\s*(am|pm)`)
	forPartyRe  = regexp.MustCompile(`for (\d{1,2})`)
	partyOfRe   = regexp.MustCompile(`party of (\d{1,2})`)
	bookingIDRe = regexp.MustCompile(`(booking(?: id)?|id)\s*(#?)([0-9a-zA-Z_-]{3,})`)
	contactRe   = regexp.MustCompile(`(\+?\d[\d\-\s]{7,}\d)`)
)

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var (
	bookKeywords      = []string{"book", "reserve", "reservation", "table"}
	recommendKeywords = []string{"recommend", "suggest", "where should i"}
	cancelKeywords    = []string{"cancel"}
	modifyKeywords    = []string{"change", "modify", "reschedule"}
)

// Extractor turns one user message into a ParsedIntent. It is a pure
// function of the text and the injected clock; it never fails.
type Extractor struct {
	config *Config
	logger logger.Logger
	nowFn  func() time.Time
}

func NewExtractor(config *Config, log logger.Logger) *Extractor {
	return &Extractor{
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "intent"}),
		nowFn:  time.Now,
	}
}

// WithClock overrides the extractor's notion of "today". Used by tests.
func (e *Extractor) WithClock(nowFn func() time.Time) *Extractor {
	e.nowFn = nowFn
	return e
}

func (e *Extractor) Extract(text string) models.ParsedIntent {
	t := strings.TrimSpace(text)
	tl := strings.ToLower(t)
	today := e.nowFn()

	out := models.ParsedIntent{
		Intent: models.IntentUnknown,
		Plan:   []models.ActionStep{},
	}

	out.Intent = detectIntent(tl)
	out.Slots.Date = e.extractDate(tl, today)
	out.Slots.Time = extractTime(tl)
	out.Slots.PartySize = extractPartySize(tl)
	out.Slots.Area = e.extractArea(tl)
	out.Slots.BookingID = extractBookingID(tl)
	// Contact runs against the original text: lowercasing is harmless for
	// digits but the field is captured verbatim on principle.
	out.Slots.Contact = extractContact(t)

	out.Plan = e.buildPlan(out.Intent, out.Slots)
	out.NaturalResponse = naturalResponse(out.Intent, out.Slots)

	e.logger.Debug("message parsed", map[string]interface{}{
		"intent":    out.Intent,
		"planSteps": len(out.Plan),
	})

	return out
}

// detectIntent matches ordered keyword sets; book is checked before
// recommend before cancel before modify.
func detectIntent(tl string) models.Intent {
	containsAny := func(words []string) bool {
		for _, w := range words {
			if strings.Contains(tl, w) {
				return true
			}
		}
		return false
	}

	switch {
	case containsAny(bookKeywords):
		return models.IntentBook
	case containsAny(recommendKeywords):
		return models.IntentRecommend
	case containsAny(cancelKeywords):
		return models.IntentCancel
	case containsAny(modifyKeywords):
		return models.IntentModify
	default:
		return models.IntentUnknown
	}
}

func (e *Extractor) extractDate(tl string, today time.Time) *string {
	if strings.Contains(tl, "today") {
		return strPtr(today.Format("2006-01-02"))
	}
	if strings.Contains(tl, "tomorrow") {
		return strPtr(today.AddDate(0, 0, 1).Format("2006-01-02"))
	}
	if m := isoDateRe.FindStringSubmatch(tl); m != nil {
		return strPtr(m[1])
	}
	for _, wd := range weekdays {
		if strings.Contains(tl, wd) {
			return strPtr(nextWeekday(today, wd))
		}
	}
	return nil
}

// nextWeekday resolves a weekday name to its next occurrence strictly after
// today; if today is that weekday, it rolls forward a full week.
func nextWeekday(today time.Time, name string) string {
	target := -1
	for i, wd := range weekdays {
		if wd == name {
			target = i
			break
		}
	}
	// weekdays is monday-first; time.Weekday is sunday-first
	todayIdx := (int(today.Weekday()) + 6) % 7
	daysAhead := (target - todayIdx + 7) % 7
	if daysAhead == 0 {
		daysAhead = 7
	}
	return today.AddDate(0, 0, daysAhead).Format("2006-01-02")
}

// extractTime prefers an explicit H:MM over an am/pm form. The am/pm
// conversion is literal: pm adds 12 for hours below 12, and hour 12 passes
// through unchanged for both suffixes, so "12am" yields "12:00".
func extractTime(tl string) *string {
	if m := clockTimeRe.FindStringSubmatch(tl); m != nil {
		return strPtr(m[1])
	}
	if m := amPmTimeRe.FindStringSubmatch(tl); m != nil {
		h, _ := strconv.Atoi(m[1])
		if m[2] == "pm" && h < 12 {
			h += 12
		}
		return strPtr(fmt.Sprintf("%02d:00", h))
	}
	return nil
}

func extractPartySize(tl string) *int {
	m := forPartyRe.FindStringSubmatch(tl)
	if m == nil {
		m = partyOfRe.FindStringSubmatch(tl)
	}
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

func (e *Extractor) extractArea(tl string) *string {
	for _, a := range e.config.Areas {
		if strings.Contains(tl, a) {
			return strPtr(titleCase(a))
		}
	}
	return nil
}

func extractBookingID(tl string) *string {
	if m := bookingIDRe.FindStringSubmatch(tl); m != nil {
		return strPtr(m[3])
	}
	return nil
}

func extractContact(t string) *string {
	if m := contactRe.FindStringSubmatch(t); m != nil {
		return strPtr(m[1])
	}
	return nil
}

// buildPlan synthesizes the action plan from intent and slots. Modify and
// unknown intents carry no auto-plan; the clarifying response asks for the
// missing information instead.
func (e *Extractor) buildPlan(it models.Intent, slots models.SlotSet) []models.ActionStep {
	switch it {
	case models.IntentBook:
		if slots.Area != nil && slots.PartySize != nil {
			return []models.ActionStep{{
				Action: models.ActionSearchLocations,
				Args: map[string]interface{}{
					"area":       *slots.Area,
					"party_size": *slots.PartySize,
					"limit":      e.config.SearchLimit,
				},
			}}
		}
		return []models.ActionStep{}

	case models.IntentRecommend:
		area := ""
		if slots.Area != nil {
			area = *slots.Area
		}
		partySize := 2
		if slots.PartySize != nil {
			partySize = *slots.PartySize
		}
		return []models.ActionStep{{
			Action: models.ActionSearchLocations,
			Args: map[string]interface{}{
				"area":       area,
				"party_size": partySize,
				"limit":      e.config.RecommendLimit,
			},
		}}

	case models.IntentCancel:
		if slots.BookingID != nil {
			return []models.ActionStep{{
				Action: models.ActionCancelReservation,
				Args:   map[string]interface{}{"booking_id": *slots.BookingID},
			}}
		}
		return []models.ActionStep{}

	default:
		return []models.ActionStep{}
	}
}

func naturalResponse(it models.Intent, slots models.SlotSet) string {
	switch it {
	case models.IntentBook:
		if slots.Date == nil || slots.Time == nil {
			return "What date and time would you like to book?"
		}
		if slots.PartySize == nil {
			return "How many people is the booking for?"
		}
		return fmt.Sprintf("Searching for available restaurants in %s for %d people on %s at %s.",
			orDefault(slots.Area, "your area"), *slots.PartySize, *slots.Date, *slots.Time)

	case models.IntentRecommend:
		partySize := 2
		if slots.PartySize != nil {
			partySize = *slots.PartySize
		}
		return fmt.Sprintf("Looking for recommendations in %s for %d people.",
			orDefault(slots.Area, "your area"), partySize)

	case models.IntentCancel:
		if slots.BookingID != nil {
			return fmt.Sprintf("Attempting to cancel booking %s.", *slots.BookingID)
		}
		return "Please provide your booking ID to cancel."

	default:
		return "I can help you book, modify, cancel, or recommend restaurants. What would you like to do?"
	}
}

func titleCase(s string) string {
	parts := strings.Fields(s)
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func strPtr(s string) *string { return &s }

func orDefault(s *string, def string) string {
	if s != nil {
		return *s
	}
	return def
}
