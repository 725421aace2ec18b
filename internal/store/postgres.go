package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"reservation-agent/internal/catalog"
	"reservation-agent/internal/common/logger"
	"reservation-agent/internal/models"
)

const createTableStmt = `
CREATE TABLE IF NOT EXISTS reservations (
	id TEXT PRIMARY KEY,
	restaurant_id TEXT,
	restaurant_name TEXT,
	datetime TEXT,
	party_size INTEGER,
	name TEXT,
	contact TEXT,
	status TEXT,
	created_at TEXT
)`

// PostgresStore persists reservations in a single row-store table. The
// availability check and insert of CreateReservation run as one conditional
// statement so concurrent requests cannot jointly overbook.
type PostgresStore struct {
	db     *sql.DB
	cat    *catalog.Catalog
	logger logger.Logger
	nowFn  func() time.Time
	idFn   func() string
}

func NewPostgresStore(db *sql.DB, cat *catalog.Catalog, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		cat:    cat,
		logger: log.WithFields(map[string]interface{}{"component": "store"}),
		nowFn:  time.Now,
		idFn:   newReservationID,
	}
}

// newReservationID generates the 8-char server-side booking id.
func newReservationID() string {
	return uuid.New().String()[:8]
}

// nowISO formats creation timestamps as UTC ISO to seconds resolution.
func nowISO(now time.Time) string {
	return now.UTC().Format("2006-01-02T15:04:05")
}

// EnsureSchema creates the reservations table if missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableStmt); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) SearchLocations(_ context.Context, area string, partySize, limit int) ([]models.ScoredRestaurant, error) {
	return searchCatalog(s.cat, area, partySize, limit), nil
}

func (s *PostgresStore) CheckAvailability(ctx context.Context, restaurantID, datetimeISO string, partySize int) (models.Availability, error) {
	var used int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(party_size), 0) FROM reservations
		WHERE restaurant_id = $1 AND datetime = $2 AND status = 'CONFIRMED'`,
		restaurantID, datetimeISO).Scan(&used)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return models.Availability{}, ErrQueryTimeout
		}
		return models.Availability{}, fmt.Errorf("check availability: %w", err)
	}

	capacity := s.cat.Capacity(restaurantID)
	return models.Availability{
		RestaurantID: restaurantID,
		Available:    used+partySize <= capacity,
		Used:         used,
		Capacity:     capacity,
	}, nil
}

func (s *PostgresStore) CreateReservation(ctx context.Context, restaurantID, restaurantName, datetimeISO string, partySize int, name, contact string) (models.ReservationOutcome, error) {
	id := s.idFn()
	createdAt := nowISO(s.nowFn())
	capacity := s.cat.Capacity(restaurantID)

	// Occupancy check and insert in one statement: the race window between a
	// separate read and write would allow concurrent requests to overbook.
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO reservations (id, restaurant_id, restaurant_name, datetime, party_size, name, contact, status, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, 'CONFIRMED', $8
		WHERE (SELECT COALESCE(SUM(party_size), 0) FROM reservations
		       WHERE restaurant_id = $2 AND datetime = $4 AND status = 'CONFIRMED') + $5 <= $9`,
		id, restaurantID, restaurantName, datetimeISO, partySize, name, contact, createdAt, capacity)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return models.ReservationOutcome{}, ErrQueryTimeout
		}
		return models.ReservationOutcome{}, fmt.Errorf("create reservation: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return models.ReservationOutcome{}, fmt.Errorf("create reservation: %w", err)
	}
	if rows == 0 {
		av, err := s.CheckAvailability(ctx, restaurantID, datetimeISO, partySize)
		if err != nil {
			return models.ReservationOutcome{}, err
		}
		return models.ReservationOutcome{
			Success:  false,
			Reason:   models.ReasonNoAvailability,
			Used:     av.Used,
			Capacity: av.Capacity,
		}, nil
	}

	s.logger.Info("reservation created", map[string]interface{}{
		"id":           id,
		"restaurantId": restaurantID,
		"datetime":     datetimeISO,
		"partySize":    partySize,
	})

	return models.ReservationOutcome{
		Success:        true,
		ID:             id,
		RestaurantName: restaurantName,
		Datetime:       datetimeISO,
		PartySize:      partySize,
		Contact:        contact,
	}, nil
}

func (s *PostgresStore) ModifyReservation(ctx context.Context, bookingID string, newDatetime *string, newPartySize *int) (models.ReservationOutcome, error) {
	var restaurantID, restaurantName, oldDatetime string
	var oldParty int
	err := s.db.QueryRowContext(ctx, `
		SELECT restaurant_id, restaurant_name, datetime, party_size FROM reservations
		WHERE id = $1 AND status = 'CONFIRMED'`,
		bookingID).Scan(&restaurantID, &restaurantName, &oldDatetime, &oldParty)
	if err == sql.ErrNoRows {
		return models.ReservationOutcome{Success: false, Reason: models.ReasonNotFound}, nil
	}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return models.ReservationOutcome{}, ErrQueryTimeout
		}
		return models.ReservationOutcome{}, fmt.Errorf("modify reservation: %w", err)
	}

	ndt := oldDatetime
	if newDatetime != nil && *newDatetime != "" {
		ndt = *newDatetime
	}
	nps := oldParty
	if newPartySize != nil && *newPartySize > 0 {
		nps = *newPartySize
	}

	capacity := s.cat.Capacity(restaurantID)

	// The occupancy subquery intentionally does not exclude the reservation
	// being modified; a row keeping its own slot counts against itself.
	res, err := s.db.ExecContext(ctx, `
		UPDATE reservations SET datetime = $2, party_size = $3
		WHERE id = $1 AND status = 'CONFIRMED'
		AND (SELECT COALESCE(SUM(party_size), 0) FROM reservations
		     WHERE restaurant_id = $4 AND datetime = $2 AND status = 'CONFIRMED') + $3 <= $5`,
		bookingID, ndt, nps, restaurantID, capacity)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return models.ReservationOutcome{}, ErrQueryTimeout
		}
		return models.ReservationOutcome{}, fmt.Errorf("modify reservation: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return models.ReservationOutcome{}, fmt.Errorf("modify reservation: %w", err)
	}
	if rows == 0 {
		return models.ReservationOutcome{Success: false, Reason: models.ReasonNoAvailability}, nil
	}

	return models.ReservationOutcome{
		Success:        true,
		ID:             bookingID,
		RestaurantName: restaurantName,
		Datetime:       ndt,
		PartySize:      nps,
	}, nil
}

func (s *PostgresStore) CancelReservation(ctx context.Context, bookingID string) (models.ReservationOutcome, error) {
	var status string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM reservations WHERE id = $1`, bookingID).Scan(&status)
	if err == sql.ErrNoRows {
		return models.ReservationOutcome{Success: false, Reason: models.ReasonNotFound}, nil
	}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return models.ReservationOutcome{}, ErrQueryTimeout
		}
		return models.ReservationOutcome{}, fmt.Errorf("cancel reservation: %w", err)
	}

	// No status filter: repeating a cancel succeeds again rather than
	// reporting already-cancelled.
	if _, err := s.db.ExecContext(ctx, `UPDATE reservations SET status = 'CANCELLED' WHERE id = $1`, bookingID); err != nil {
		return models.ReservationOutcome{}, fmt.Errorf("cancel reservation: %w", err)
	}

	return models.ReservationOutcome{
		Success: true,
		ID:      bookingID,
		Status:  models.StatusCancelled,
	}, nil
}
