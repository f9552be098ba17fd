package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/clinovo/medsync/pkg/api"
)

// SyncService processes one offline sync call
type SyncService interface {
	Process(ctx context.Context, tenantID, actorID string, since *time.Time, actions []api.Action) (*api.SyncResponse, error)
}

// SyncHandler handles offline synchronization requests
type SyncHandler struct {
	logger  *slog.Logger
	service SyncService
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(logger *slog.Logger, service SyncService) *SyncHandler {
	return &SyncHandler{
		logger:  logger,
		service: service,
	}
}

// HandleSync handles POST /api/v1/sync: replays the client's pending
// actions and returns per-action outcomes plus everything the server
// changed since the client's checkpoint. The response is 200 even when
// every action failed; only a delta-fetch failure is a server error.
func (h *SyncHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, ok := GetTenantID(ctx)
	if !ok {
		h.logger.Error("tenant id not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}
	actorID, ok := GetUserID(ctx)
	if !ok {
		h.logger.Error("user id not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode sync request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.logger.InfoContext(ctx, "sync request",
		slog.String("tenant_id", tenantID),
		slog.String("actor_id", actorID),
		slog.Int("pending_actions", len(req.PendingActions)),
		slog.Bool("full_snapshot", req.LastSyncTimestamp == nil))

	resp, err := h.service.Process(ctx, tenantID, actorID, req.LastSyncTimestamp, req.PendingActions)
	if err != nil {
		h.logger.ErrorContext(ctx, "sync failed",
			slog.String("tenant_id", tenantID),
			slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}
