package api

import (
	"encoding/json"
	"time"
)

// ActionKind identifies the type of an offline action.
type ActionKind string

const (
	ActionCreatePatient      ActionKind = "CREATE_PATIENT"
	ActionUpdatePatient      ActionKind = "UPDATE_PATIENT"
	ActionRecordVitals       ActionKind = "RECORD_VITALS"
	ActionCreateConsultation ActionKind = "CREATE_CONSULTATION"
	ActionUpdateConsultation ActionKind = "UPDATE_CONSULTATION"
	ActionCreateBill         ActionKind = "CREATE_BILL"
	ActionRecordPayment      ActionKind = "RECORD_PAYMENT"
	ActionCreateAppointment  ActionKind = "CREATE_APPOINTMENT"
	ActionUpdateAppointment  ActionKind = "UPDATE_APPOINTMENT"
)

// Action is a single write the client recorded while offline.
// ClientID is a client-chosen correlation id; it is not globally unique
// and is never persisted, only echoed back in the matching ActionResult.
type Action struct {
	ClientTimestamp time.Time       `json:"clientTimestamp"`
	ClientID        string          `json:"clientId"`
	Kind            ActionKind      `json:"kind"`
	Payload         json.RawMessage `json:"payload"`
}

// ActionResult reports the outcome of one replayed action.
// Conflict is set when the write collided with an existing unique
// constraint, meaning the action was most likely already applied.
type ActionResult struct {
	ClientID string `json:"clientId"`
	ServerID string `json:"serverId,omitempty"`
	Error    string `json:"error,omitempty"`
	Success  bool   `json:"success"`
	Conflict bool   `json:"conflict,omitempty"`
}

// SyncRequest is the body of POST /api/v1/sync.
// A nil LastSyncTimestamp means "first sync": the client has seen nothing
// and expects a full snapshot back.
type SyncRequest struct {
	LastSyncTimestamp *time.Time `json:"lastSyncTimestamp,omitempty"`
	PendingActions    []Action   `json:"pendingActions"`
}

// ServerUpdates holds every record of each tracked entity type whose
// lastModified is strictly after the client's checkpoint, ordered
// oldest-changed first.
type ServerUpdates struct {
	Patients      []*Patient      `json:"patients"`
	Vitals        []*Vitals       `json:"vitals"`
	Consultations []*Consultation `json:"consultations"`
	Bills         []*Bill         `json:"bills"`
	Appointments  []*Appointment  `json:"appointments"`
}

// SyncResponse is always 200-shaped when replay ran: per-action outcomes
// are data, not errors, even if every action failed.
type SyncResponse struct {
	ProcessedActions  []ActionResult `json:"processedActions"`
	ServerUpdates     ServerUpdates  `json:"serverUpdates"`
	LastSyncTimestamp time.Time      `json:"lastSyncTimestamp"`
}

// ErrorResponse is the body of any non-2xx JSON reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
