// Package executor dispatches plan steps to store operations. A step's
// fault never aborts the plan: every step yields a result-or-error value and
// execution continues.
package executor

import (
	"context"
	"fmt"
	"time"

	"reservation-agent/internal/agent/recommend"
	"reservation-agent/internal/common/logger"
	"reservation-agent/internal/common/metrics"
	"reservation-agent/internal/models"
	"reservation-agent/internal/notify"
	"reservation-agent/internal/store"
)

// Step error markers. Store rejections (NO_AVAILABILITY, NOT_FOUND) are not
// errors; they travel inside the result value.
const (
	ErrNotAllowed = "NOT_ALLOWED"
	ErrException  = "EXCEPTION"
)

// Result is the outcome of one plan step: either an error marker with a
// reason, or a typed value ([]ScoredRestaurant, Availability,
// ReservationOutcome, NotificationReceipt).
type Result struct {
	Error  string      `json:"error,omitempty"`
	Reason string      `json:"reason,omitempty"`
	Value  interface{} `json:"value,omitempty"`
}

// Results maps action name to its result. A plan repeating an action type
// keeps only the later result; a documented limitation, not silently fixed.
type Results map[string]Result

type Executor struct {
	store       store.Store
	notifier    notify.Notifier
	logger      logger.Logger
	stepTimeout time.Duration
}

func New(st store.Store, notifier notify.Notifier, log logger.Logger) *Executor {
	return &Executor{
		store:    st,
		notifier: notifier,
		logger:   log.WithFields(map[string]interface{}{"component": "executor"}),
	}
}

// WithStepTimeout bounds each plan step with its own deadline. Zero means
// steps inherit the caller's context unchanged.
func (e *Executor) WithStepTimeout(d time.Duration) *Executor {
	e.stepTimeout = d
	return e
}

// Execute runs each plan step in order. Non-whitelisted actions yield
// NOT_ALLOWED without invocation; any fault raised by a step is converted to
// an EXCEPTION entry and the next step still runs.
func (e *Executor) Execute(ctx context.Context, plan []models.ActionStep, slots models.SlotSet) Results {
	results := make(Results, len(plan))

	for _, step := range plan {
		// Whitelist recheck, independent of the validator.
		if !models.IsAllowedAction(step.Action) {
			e.logger.Warn("plan step not allowed", map[string]interface{}{"action": step.Action})
			metrics.PlanStepsExecuted.WithLabelValues(step.Action, "not_allowed").Inc()
			results[step.Action] = Result{Error: ErrNotAllowed}
			continue
		}

		results[step.Action] = e.runStep(ctx, step, slots)
	}

	return results
}

// runStep executes one whitelisted step, converting panics and errors to an
// EXCEPTION result.
func (e *Executor) runStep(ctx context.Context, step models.ActionStep, slots models.SlotSet) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("plan step panicked", map[string]interface{}{
				"action": step.Action,
				"panic":  fmt.Sprintf("%v", r),
			})
			metrics.PlanStepsExecuted.WithLabelValues(step.Action, "exception").Inc()
			res = Result{Error: ErrException, Reason: fmt.Sprintf("%v", r)}
		}
	}()

	if e.stepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.stepTimeout)
		defer cancel()
	}

	value, err := e.dispatch(ctx, step, slots)
	if err != nil {
		e.logger.Error("plan step failed", map[string]interface{}{
			"action": step.Action,
			"error":  err.Error(),
		})
		metrics.PlanStepsExecuted.WithLabelValues(step.Action, "exception").Inc()
		return Result{Error: ErrException, Reason: err.Error()}
	}

	metrics.PlanStepsExecuted.WithLabelValues(step.Action, "ok").Inc()
	return Result{Value: value}
}

func (e *Executor) dispatch(ctx context.Context, step models.ActionStep, slots models.SlotSet) (interface{}, error) {
	args := step.Args
	if args == nil {
		args = map[string]interface{}{}
	}

	switch step.Action {
	case models.ActionSearchLocations:
		area := argString(args, "area", "")
		partySize := resolvePartySize(args, slots)
		limit := argInt(args, "limit", 3)
		items, err := e.store.SearchLocations(ctx, area, partySize, limit)
		if err != nil {
			return nil, err
		}
		return recommend.Rerank(items, partySize, limit), nil

	case models.ActionCheckAvailability:
		return e.store.CheckAvailability(ctx,
			argString(args, "restaurant_id", ""),
			argString(args, "datetime", ""),
			resolvePartySize(args, slots))

	case models.ActionCreateReservation:
		outcome, err := e.store.CreateReservation(ctx,
			argString(args, "restaurant_id", ""),
			argString(args, "restaurant_name", "Unknown"),
			argString(args, "datetime", ""),
			resolvePartySize(args, slots),
			resolveName(args, slots),
			resolveContact(args, slots))
		if err != nil {
			return nil, err
		}
		recordReservationOutcome(outcome)
		return outcome, nil

	case models.ActionModifyReservation:
		var newDatetime *string
		if v := argString(args, "new_datetime", ""); v != "" {
			newDatetime = &v
		}
		var newPartySize *int
		if v := argInt(args, "new_party_size", 0); v > 0 {
			newPartySize = &v
		}
		return e.store.ModifyReservation(ctx, argString(args, "booking_id", ""), newDatetime, newPartySize)

	case models.ActionCancelReservation:
		return e.store.CancelReservation(ctx, argString(args, "booking_id", ""))

	case models.ActionSendNotification:
		return e.notifier.Send(ctx,
			argString(args, "method", "sms"),
			argString(args, "dest", ""),
			argString(args, "message", ""))
	}

	return nil, fmt.Errorf("unsupported action: %s", step.Action)
}

func recordReservationOutcome(outcome models.ReservationOutcome) {
	if outcome.Success {
		metrics.ReservationsCreated.Inc()
	} else if outcome.Reason != "" {
		metrics.ReservationsRejected.WithLabelValues(outcome.Reason).Inc()
	}
}

// Argument resolution: step args first, then the message-level slots for
// shared fields, then a hard default.

func resolvePartySize(args map[string]interface{}, slots models.SlotSet) int {
	if v := argInt(args, "party_size", 0); v > 0 {
		return v
	}
	if slots.PartySize != nil && *slots.PartySize > 0 {
		return *slots.PartySize
	}
	return 2
}

func resolveName(args map[string]interface{}, slots models.SlotSet) string {
	if v := argString(args, "name", ""); v != "" {
		return v
	}
	if slots.Name != nil && *slots.Name != "" {
		return *slots.Name
	}
	return "Guest"
}

func resolveContact(args map[string]interface{}, slots models.SlotSet) string {
	if v := argString(args, "contact", ""); v != "" {
		return v
	}
	if slots.Contact != nil && *slots.Contact != "" {
		return *slots.Contact
	}
	return "N/A"
}

func argString(args map[string]interface{}, key, def string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// argInt tolerates float64 values since plans may round-trip through JSON.
func argInt(args map[string]interface{}, key string, def int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}
