// Package store owns all reservation rows. Callers mutate reservation state
// only through these operations, never directly.
package store

import (
	"context"
	"errors"

	"reservation-agent/internal/models"
)

var (
	ErrQueryTimeout = errors.New("QUERY_TIMEOUT")
)

// Store is the reservation persistence contract. Rejections such as
// NO_AVAILABILITY and NOT_FOUND are reported in the ReservationOutcome, not
// as errors; the error return is reserved for technical faults.
type Store interface {
	// SearchLocations filters the catalog by area substring (empty matches
	// all) and capacity >= partySize, ranked by rating descending and
	// truncated to limit.
	SearchLocations(ctx context.Context, area string, partySize, limit int) ([]models.ScoredRestaurant, error)

	// CheckAvailability sums CONFIRMED party sizes at the exact datetime
	// string. Unknown restaurants have capacity 0 and are never available.
	CheckAvailability(ctx context.Context, restaurantID, datetimeISO string, partySize int) (models.Availability, error)

	// CreateReservation re-validates availability at write time, then inserts
	// a CONFIRMED row with a fresh unique id.
	CreateReservation(ctx context.Context, restaurantID, restaurantName, datetimeISO string, partySize int, name, contact string) (models.ReservationOutcome, error)

	// ModifyReservation updates datetime and/or party size of a CONFIRMED
	// reservation; missing fields default to the existing values. The
	// availability recheck does not exclude the reservation's own occupancy.
	ModifyReservation(ctx context.Context, bookingID string, newDatetime *string, newPartySize *int) (models.ReservationOutcome, error)

	// CancelReservation sets status to CANCELLED. Cancelling an
	// already-cancelled booking succeeds again.
	CancelReservation(ctx context.Context, bookingID string) (models.ReservationOutcome, error)
}
