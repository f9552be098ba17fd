package replay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clinovo/medsync/internal/server/storage"
	"github.com/clinovo/medsync/pkg/api"
)

// epoch is the "beginning of time" checkpoint used when the client has
// never synced: everything the tenant owns counts as new.
var epoch = time.Unix(0, 0).UTC()

// Service coordinates one sync call: replay the pending actions, then
// compute the delta of everything the server changed since the client's
// checkpoint.
type Service struct {
	logger  *slog.Logger
	engine  *Engine
	fetcher *Fetcher
	clock   func() time.Time
}

// NewService creates a new sync service. A nil clock defaults to time.Now.
func NewService(logger *slog.Logger, store storage.ClinicalStorage, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		logger:  logger,
		engine:  NewEngine(logger, store, clock),
		fetcher: NewFetcher(store),
		clock:   clock,
	}
}

// Process replays the batch, captures the new checkpoint and fetches the
// delta. The checkpoint is taken after replay but before the delta query:
// a write landing while the query runs is then both included in this delta
// and re-sent on the next sync. Duplicate delivery is safe for the client
// to apply; a missed record is not, so the error is made in that
// direction.
//
// Per-action failures are data in the response; only a delta-fetch failure
// fails the call as a whole.
func (s *Service) Process(ctx context.Context, tenantID, actorID string, since *time.Time, actions []api.Action) (*api.SyncResponse, error) {
	results := s.engine.Replay(ctx, tenantID, actorID, actions)

	checkpoint := s.clock()

	from := epoch
	if since != nil {
		from = *since
	}

	updates, err := s.fetcher.Fetch(ctx, tenantID, from)
	if err != nil {
		return nil, fmt.Errorf("delta fetch: %w", err)
	}

	s.logger.InfoContext(ctx, "sync processed",
		slog.String("tenant_id", tenantID),
		slog.String("actor_id", actorID),
		slog.Int("actions", len(actions)),
		slog.Int("patients", len(updates.Patients)),
		slog.Int("vitals", len(updates.Vitals)),
		slog.Int("consultations", len(updates.Consultations)),
		slog.Int("bills", len(updates.Bills)),
		slog.Int("appointments", len(updates.Appointments)))

	return &api.SyncResponse{
		ProcessedActions:  results,
		ServerUpdates:     *updates,
		LastSyncTimestamp: checkpoint,
	}, nil
}

// Engine exposes the underlying replay engine for the direct write
// endpoints that share its domain logic.
func (s *Service) Engine() *Engine {
	return s.engine
}
