// Package replay implements the offline action-replay engine: a batch of
// writes the client queued while disconnected is applied against the
// authoritative store one action at a time, producing one result per
// action regardless of individual failures.
package replay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clinovo/medsync/internal/server/storage"
	"github.com/clinovo/medsync/pkg/api"
)

// Engine replays client-recorded actions against the entity store
type Engine struct {
	logger *slog.Logger
	store  storage.ClinicalStorage
	clock  func() time.Time
}

// NewEngine creates a new replay engine. A nil clock defaults to time.Now.
func NewEngine(logger *slog.Logger, store storage.ClinicalStorage, clock func() time.Time) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		logger: logger,
		store:  store,
		clock:  clock,
	}
}

// Replay applies actions strictly in submission order: action i+1 is not
// started until action i has finished, preserving the causal order the
// client observed while offline. The result slice has the same length and
// relative order as the input; entries correlate by clientId. A failed
// action never aborts the batch.
func (e *Engine) Replay(ctx context.Context, tenantID, actorID string, actions []api.Action) []api.ActionResult {
	results := make([]api.ActionResult, 0, len(actions))

	for i := range actions {
		action := &actions[i]

		serverID, err := e.apply(ctx, tenantID, actorID, action)
		if err != nil {
			conflict, message := Classify(err)
			e.logger.WarnContext(ctx, "action failed",
				slog.String("tenant_id", tenantID),
				slog.String("client_id", action.ClientID),
				slog.String("kind", string(action.Kind)),
				slog.Bool("conflict", conflict),
				slog.Any("error", err))

			results = append(results, api.ActionResult{
				ClientID: action.ClientID,
				Conflict: conflict,
				Error:    message,
			})
			continue
		}

		e.logger.DebugContext(ctx, "action applied",
			slog.String("tenant_id", tenantID),
			slog.String("client_id", action.ClientID),
			slog.String("kind", string(action.Kind)),
			slog.String("server_id", serverID))

		results = append(results, api.ActionResult{
			ClientID: action.ClientID,
			ServerID: serverID,
			Success:  true,
		})
	}

	return results
}

// apply dispatches one action to its handler. The switch is exhaustive
// over api.ActionKind; adding a kind without a case here surfaces as an
// "unknown action kind" result, never a panic.
func (e *Engine) apply(ctx context.Context, tenantID, actorID string, action *api.Action) (string, error) {
	switch action.Kind {
	case api.ActionCreatePatient:
		return e.createPatient(ctx, tenantID, action)
	case api.ActionUpdatePatient:
		return e.updatePatient(ctx, tenantID, action)
	case api.ActionRecordVitals:
		return e.recordVitals(ctx, tenantID, actorID, action)
	case api.ActionCreateConsultation:
		return e.createConsultation(ctx, tenantID, actorID, action)
	case api.ActionUpdateConsultation:
		return e.updateConsultation(ctx, tenantID, action)
	case api.ActionCreateBill:
		return e.createBill(ctx, tenantID, action)
	case api.ActionRecordPayment:
		return e.recordPayment(ctx, tenantID, action)
	case api.ActionCreateAppointment:
		return e.createAppointment(ctx, tenantID, actorID, action)
	case api.ActionUpdateAppointment:
		return e.updateAppointment(ctx, tenantID, action)
	default:
		return "", fmt.Errorf("unknown action kind %q", action.Kind)
	}
}
