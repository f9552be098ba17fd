package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/clinovo/medsync/internal/server/storage"
	"github.com/clinovo/medsync/pkg/api"
)

// AppointmentScheduler creates an appointment for a tenant
type AppointmentScheduler interface {
	ScheduleAppointment(ctx context.Context, tenantID, actorID string, p *api.CreateAppointmentPayload) (string, error)
}

// AppointmentHandler handles direct appointment requests
type AppointmentHandler struct {
	logger    *slog.Logger
	scheduler AppointmentScheduler
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(logger *slog.Logger, scheduler AppointmentScheduler) *AppointmentHandler {
	return &AppointmentHandler{
		logger:    logger,
		scheduler: scheduler,
	}
}

// HandleCreate handles POST /api/v1/appointments. It shares the
// scheduling logic with replayed CREATE_APPOINTMENT actions, so a
// double-booked slot gets the same 409 both online and offline.
func (h *AppointmentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, ok := GetTenantID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}
	actorID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var p api.CreateAppointmentPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if p.PatientID == "" || p.ScheduledAt.IsZero() {
		sendError(h.logger, w, "patientId and scheduledAt are required", http.StatusBadRequest)
		return
	}

	id, err := h.scheduler.ScheduleAppointment(ctx, tenantID, actorID, &p)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		sendError(h.logger, w, "patient not found", http.StatusNotFound)
		return
	case errors.Is(err, storage.ErrDuplicate):
		sendError(h.logger, w, "time slot already booked", http.StatusConflict)
		return
	case err != nil:
		h.logger.ErrorContext(ctx, "failed to schedule appointment",
			slog.String("tenant_id", tenantID),
			slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, map[string]string{"id": id}, http.StatusCreated)
}
