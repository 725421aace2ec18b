package models

// Intent is the coarse classification of a user message.
type Intent string

const (
	IntentBook      Intent = "book"
	IntentRecommend Intent = "recommend"
	IntentModify    Intent = "modify"
	IntentCancel    Intent = "cancel"
	IntentUnknown   Intent = "unknown"
)

// SlotSet holds the optional structured fields extracted from free text.
// Every field is independently nullable; a date without a time is valid and
// triggers a clarifying question downstream.
type SlotSet struct {
	Date        *string `json:"date"`       // YYYY-MM-DD
	Time        *string `json:"time"`       // HH:MM, 24h
	PartySize   *int    `json:"party_size"`
	Area        *string `json:"area"`
	Preferences *string `json:"preferences"`
	Name        *string `json:"name"`
	Contact     *string `json:"contact"`
	BookingID   *string `json:"booking_id"`
}

// ActionStep is one entry of an execution plan. Action must be a member of
// the whitelist in action.go; a step outside the whitelist must never execute.
type ActionStep struct {
	Action string                 `json:"action"`
	Args   map[string]interface{} `json:"args"`
}

// ParsedIntent is the structured output of the slot extractor. It is produced
// once per message, immutable after creation, and consumed immediately.
type ParsedIntent struct {
	Intent          Intent       `json:"intent"`
	Slots           SlotSet      `json:"slots"`
	Plan            []ActionStep `json:"plan"`
	NaturalResponse string       `json:"natural_response"`
}
