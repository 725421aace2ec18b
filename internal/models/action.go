package models

// Whitelisted action names. This is the single place the action set is
// defined; both the output validator and the executor consume it. Adding a
// new action means adding it here.
const (
	ActionSearchLocations   = "search_locations"
	ActionCheckAvailability = "check_availability"
	ActionCreateReservation = "create_reservation"
	ActionModifyReservation = "modify_reservation"
	ActionCancelReservation = "cancel_reservation"
	ActionSendNotification  = "send_notification"
)

// AllowedActions is the closed set of actions the executor may invoke.
var AllowedActions = map[string]bool{
	ActionSearchLocations:   true,
	ActionCheckAvailability: true,
	ActionCreateReservation: true,
	ActionModifyReservation: true,
	ActionCancelReservation: true,
	ActionSendNotification:  true,
}

// ActionNames returns the whitelist in a stable order, for schema enums.
func ActionNames() []string {
	return []string{
		ActionSearchLocations,
		ActionCheckAvailability,
		ActionCreateReservation,
		ActionModifyReservation,
		ActionCancelReservation,
		ActionSendNotification,
	}
}

// IsAllowedAction reports whitelist membership.
func IsAllowedAction(action string) bool {
	return AllowedActions[action]
}
