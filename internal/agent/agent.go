// Package agent wires the parsing/validation/execution pipeline behind a
// single HandleMessage entrypoint.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"reservation-agent/internal/agent/compose"
	"reservation-agent/internal/agent/executor"
	"reservation-agent/internal/agent/intent"
	"reservation-agent/internal/agent/validator"
	"reservation-agent/internal/common/logger"
	"reservation-agent/internal/common/metrics"
	"reservation-agent/internal/common/observability"
	"reservation-agent/internal/models"
	"reservation-agent/internal/store"
)

// Result is the reply envelope for one user message. Debug carries the raw
// parse and per-action tool results for operators; callers must not branch
// on it.
type Result struct {
	Success bool                   `json:"success"`
	Reply   string                 `json:"reply"`
	Debug   map[string]interface{} `json:"debug"`
}

type Agent struct {
	extractor   *intent.Extractor
	validator   *validator.Validator
	executor    *executor.Executor
	store       store.Store
	obs         *observability.Observability
	logger      logger.Logger
	searchLimit int
}

func New(ext *intent.Extractor, val *validator.Validator, exec *executor.Executor, st store.Store, obs *observability.Observability, log logger.Logger, searchLimit int) *Agent {
	if searchLimit <= 0 {
		searchLimit = 3
	}
	return &Agent{
		extractor:   ext,
		validator:   val,
		executor:    exec,
		store:       st,
		obs:         obs,
		logger:      log.WithFields(map[string]interface{}{"component": "agent"}),
		searchLimit: searchLimit,
	}
}

// HandleMessage processes one user message end to end. The user always
// receives a reply string; internal faults fail closed with a generic
// apology and diagnostic detail only in Debug.
func (a *Agent) HandleMessage(ctx context.Context, userText string, sessionContext map[string]interface{}) (result Result) {
	start := time.Now()
	status := "ok"
	intentLabel := string(models.IntentUnknown)

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("message handling panicked", map[string]interface{}{
				"panic": fmt.Sprintf("%v", r),
			})
			status = "fault"
			result = Result{
				Success: false,
				Reply:   "Internal error processing your message.",
				Debug:   map[string]interface{}{"error": fmt.Sprintf("%v", r)},
			}
		}
		metrics.MessagesProcessed.WithLabelValues(intentLabel, status).Inc()
		metrics.MessageDuration.WithLabelValues(intentLabel).Observe(time.Since(start).Seconds())
		if a.obs != nil {
			a.obs.RecordMessageProcessed(ctx, status)
			a.obs.RecordMessageDuration(ctx, time.Since(start), status)
		}
	}()

	ctx, span := a.startSpan(ctx, "agent.parse")
	parsed := a.extractor.Extract(userText)
	span.End()
	intentLabel = string(parsed.Intent)

	parsedMap := toMap(parsed)
	if ok, errs := a.validator.Validate(parsedMap); !ok {
		a.logger.Warn("structured output rejected", map[string]interface{}{
			"errors": validator.Describe(errs),
		})
		status = "parse_failed"
		return Result{
			Success: false,
			Reply:   "Sorry, I couldn't understand that. Can you rephrase?",
			Debug: map[string]interface{}{
				"parsed":            parsedMap,
				"validation_errors": errs,
			},
		}
	}

	plan := parsed.Plan
	// If the plan is empty but the booking request already carries area and
	// party size, synthesize the location search the parser would have built.
	if len(plan) == 0 && parsed.Intent == models.IntentBook &&
		parsed.Slots.Area != nil && parsed.Slots.PartySize != nil {
		plan = []models.ActionStep{{
			Action: models.ActionSearchLocations,
			Args: map[string]interface{}{
				"area":       *parsed.Slots.Area,
				"party_size": *parsed.Slots.PartySize,
				"limit":      a.searchLimit,
			},
		}}
	}

	ctx, span = a.startSpan(ctx, "agent.execute")
	toolResults := a.executor.Execute(ctx, plan, parsed.Slots)
	span.End()

	reply, err := a.postProcess(ctx, parsed, toolResults)
	if err != nil {
		a.logger.Error("post-processing failed", map[string]interface{}{"error": err.Error()})
		status = "fault"
		return Result{
			Success: false,
			Reply:   "Error executing tools.",
			Debug: map[string]interface{}{
				"error":        err.Error(),
				"parsed":       parsedMap,
				"tool_results": toolResults,
			},
		}
	}

	if reply == "" {
		reply = "OK"
	}

	return Result{
		Success: true,
		Reply:   reply,
		Debug: map[string]interface{}{
			"parsed":       parsedMap,
			"tool_results": toolResults,
			"session":      sessionContext,
		},
	}
}

// postProcess auto-creates a reservation when a booking request produced
// search results and already carries a full date and time, then renders the
// reply.
func (a *Agent) postProcess(ctx context.Context, parsed models.ParsedIntent, toolResults executor.Results) (string, error) {
	if parsed.Intent != models.IntentBook {
		return compose.Compose(toolResults), nil
	}

	searchRes, ok := toolResults[models.ActionSearchLocations]
	if !ok || parsed.Slots.Date == nil || parsed.Slots.Time == nil {
		return compose.Compose(toolResults), nil
	}

	items, _ := searchRes.Value.([]models.ScoredRestaurant)
	if len(items) == 0 {
		// The composer renders the no-match message for an empty search.
		return compose.Compose(toolResults), nil
	}

	top := items[0]
	datetimeISO := *parsed.Slots.Date + "T" + *parsed.Slots.Time

	partySize := 2
	if parsed.Slots.PartySize != nil {
		partySize = *parsed.Slots.PartySize
	}
	name := "Guest"
	if parsed.Slots.Name != nil {
		name = *parsed.Slots.Name
	}
	contact := "N/A"
	if parsed.Slots.Contact != nil {
		contact = *parsed.Slots.Contact
	}

	ctx, span := a.startSpan(ctx, "agent.auto_create")
	outcome, err := a.store.CreateReservation(ctx, top.ID, top.Name, datetimeISO, partySize, name, contact)
	span.End()
	if err != nil {
		return "", err
	}

	if outcome.Success {
		metrics.ReservationsCreated.Inc()
	} else if outcome.Reason != "" {
		metrics.ReservationsRejected.WithLabelValues(outcome.Reason).Inc()
	}

	toolResults[models.ActionCreateReservation] = executor.Result{Value: outcome}
	return compose.Compose(toolResults), nil
}

func (a *Agent) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if a.obs == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return a.obs.StartSpan(ctx, name)
}

// toMap renders the typed parse as the generic JSON shape the validator
// checks.
func toMap(parsed models.ParsedIntent) map[string]interface{} {
	data, err := json.Marshal(parsed)
	if err != nil {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}
