// Package compose renders tool results into the user-facing reply.
package compose

import (
	"fmt"
	"strings"

	"reservation-agent/internal/agent/executor"
	"reservation-agent/internal/models"
)

// Compose picks the first matching branch in priority order: reservation
// creation, location search, cancellation, then a bare acknowledgement.
func Compose(results executor.Results) string {
	if res, ok := results[models.ActionCreateReservation]; ok {
		return composeCreate(res)
	}

	if res, ok := results[models.ActionSearchLocations]; ok {
		return composeSearch(res)
	}

	if res, ok := results[models.ActionCancelReservation]; ok {
		return composeCancel(res)
	}

	return "OK"
}

func composeCreate(res executor.Result) string {
	outcome, ok := res.Value.(models.ReservationOutcome)
	if ok && outcome.Success {
		return fmt.Sprintf("✅ Reservation confirmed! ID: %s. %s on %s for %d people.",
			outcome.ID, outcome.RestaurantName, outcome.Datetime, outcome.PartySize)
	}

	reason := res.Reason
	if ok && outcome.Reason != "" {
		reason = outcome.Reason
	}
	return fmt.Sprintf("Could not create reservation: %s", reason)
}

func composeSearch(res executor.Result) string {
	items, _ := res.Value.([]models.ScoredRestaurant)
	if len(items) == 0 {
		return "I couldn't find matching restaurants. Would you like to change area or time?"
	}

	if len(items) > 5 {
		items = items[:5]
	}
	lines := make([]string, len(items))
	for i, r := range items {
		lines[i] = fmt.Sprintf("%d. %s — %s — Rating %.1f",
			i+1, r.Name, strings.Join(r.Cuisines, ", "), r.Rating)
	}
	return "Here are top options:\n" + strings.Join(lines, "\n")
}

func composeCancel(res executor.Result) string {
	outcome, ok := res.Value.(models.ReservationOutcome)
	if ok && outcome.Success {
		return fmt.Sprintf("✅ Booking %s cancelled.", outcome.ID)
	}
	return "Unable to cancel the booking."
}
