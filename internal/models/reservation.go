package models

// Reservation statuses. Rows are never physically deleted; cancellation only
// flips the status.
const (
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

// Reservation is one row of the reservations table. IDs are server-generated
// and unique across the store's lifetime.
type Reservation struct {
	ID             string `json:"id" db:"id"`
	RestaurantID   string `json:"restaurantId" db:"restaurant_id"`
	RestaurantName string `json:"restaurantName" db:"restaurant_name"`
	Datetime       string `json:"datetime" db:"datetime"` // combined ISO date+time
	PartySize      int    `json:"partySize" db:"party_size"`
	Name           string `json:"name" db:"name"`
	Contact        string `json:"contact" db:"contact"`
	Status         string `json:"status" db:"status"`
	CreatedAt      string `json:"createdAt" db:"created_at"`
}

// Availability is the result of an occupancy check at one restaurant and
// exact datetime string.
type Availability struct {
	RestaurantID string `json:"restaurant_id"`
	Available    bool   `json:"available"`
	Used         int    `json:"used"`
	Capacity     int    `json:"capacity"`
}

// Store rejection reasons. These are normal result values, not error paths;
// callers branch on Success/Reason.
const (
	ReasonNoAvailability = "NO_AVAILABILITY"
	ReasonNotFound       = "NOT_FOUND"
)

// ReservationOutcome is the result of a create/modify/cancel operation.
type ReservationOutcome struct {
	Success        bool   `json:"success"`
	Reason         string `json:"reason,omitempty"`
	ID             string `json:"id,omitempty"`
	RestaurantName string `json:"restaurant_name,omitempty"`
	Datetime       string `json:"datetime,omitempty"`
	PartySize      int    `json:"party_size,omitempty"`
	Contact        string `json:"contact,omitempty"`
	Status         string `json:"status,omitempty"`
	Used           int    `json:"used,omitempty"`
	Capacity       int    `json:"capacity,omitempty"`
}

// NotificationReceipt is the (stubbed) result of a notification dispatch.
type NotificationReceipt struct {
	Sent   bool   `json:"sent"`
	Method string `json:"method"`
	Dest   string `json:"dest"`
}
