package storage

import (
	"context"
	"time"

	"github.com/clinovo/medsync/pkg/api"
)

// All reads and writes are tenant-scoped: a record belonging to another
// tenant behaves exactly like a record that does not exist.
//
// Every ListXSince method returns records with lastModified strictly after
// `since`, ordered ascending by lastModified, so a client that applies only
// a prefix of the result has applied the strictly-earliest changes.

// PatientStorage defines the interface for patient persistence
type PatientStorage interface {
	// CreatePatient inserts a new patient
	// Returns ErrDuplicate if the phone number is already registered
	// within the tenant
	CreatePatient(ctx context.Context, p *api.Patient) error

	// GetPatient retrieves a patient by id
	// Returns ErrNotFound if the patient doesn't exist in the tenant
	GetPatient(ctx context.Context, tenantID, id string) (*api.Patient, error)

	// UpdatePatient updates patient demographics
	// Returns ErrNotFound if the patient doesn't exist in the tenant
	UpdatePatient(ctx context.Context, p *api.Patient) error

	// CountPatients returns the number of patients registered in the tenant
	CountPatients(ctx context.Context, tenantID string) (int, error)

	// ListPatientsSince retrieves patients modified strictly after since
	ListPatientsSince(ctx context.Context, tenantID string, since time.Time) ([]*api.Patient, error)
}

// VitalsStorage defines the interface for vitals persistence
type VitalsStorage interface {
	// CreateVitals inserts a new vitals record
	// Returns ErrDuplicate if vitals for the same patient and recordedAt
	// instant already exist
	CreateVitals(ctx context.Context, v *api.Vitals) error

	// ListVitalsSince retrieves vitals modified strictly after since
	ListVitalsSince(ctx context.Context, tenantID string, since time.Time) ([]*api.Vitals, error)
}

// ConsultationStorage defines the interface for consultation persistence
type ConsultationStorage interface {
	// CreateConsultation inserts a new consultation
	// Returns ErrDuplicate if a consultation for the same patient and
	// startedAt instant already exists
	CreateConsultation(ctx context.Context, c *api.Consultation) error

	// GetConsultation retrieves a consultation by id
	// Returns ErrNotFound if it doesn't exist in the tenant
	GetConsultation(ctx context.Context, tenantID, id string) (*api.Consultation, error)

	// UpdateConsultation updates a consultation
	// Returns ErrNotFound if it doesn't exist in the tenant
	UpdateConsultation(ctx context.Context, c *api.Consultation) error

	// ListConsultationsSince retrieves consultations modified strictly after since
	ListConsultationsSince(ctx context.Context, tenantID string, since time.Time) ([]*api.Consultation, error)
}

// BillStorage defines the interface for bill persistence
type BillStorage interface {
	// CreateBill inserts a new bill
	// Returns ErrDuplicate if the bill number is already taken within the tenant
	CreateBill(ctx context.Context, b *api.Bill) error

	// GetBill retrieves a bill by id
	// Returns ErrNotFound if it doesn't exist in the tenant
	GetBill(ctx context.Context, tenantID, id string) (*api.Bill, error)

	// UpdateBillPayment updates amountPaid and status of a bill
	// Returns ErrNotFound if it doesn't exist in the tenant
	UpdateBillPayment(ctx context.Context, b *api.Bill) error

	// CountBills returns the number of bills in the tenant
	CountBills(ctx context.Context, tenantID string) (int, error)

	// ListBillsSince retrieves bills modified strictly after since
	ListBillsSince(ctx context.Context, tenantID string, since time.Time) ([]*api.Bill, error)
}

// AppointmentStorage defines the interface for appointment persistence
type AppointmentStorage interface {
	// CreateAppointment inserts a new appointment
	// Returns ErrDuplicate if the doctor already has an appointment at
	// the same instant within the tenant
	CreateAppointment(ctx context.Context, a *api.Appointment) error

	// GetAppointment retrieves an appointment by id
	// Returns ErrNotFound if it doesn't exist in the tenant
	GetAppointment(ctx context.Context, tenantID, id string) (*api.Appointment, error)

	// UpdateAppointment updates an appointment
	// Returns ErrNotFound if it doesn't exist in the tenant
	UpdateAppointment(ctx context.Context, a *api.Appointment) error

	// ListAppointmentsSince retrieves appointments modified strictly after since
	ListAppointmentsSince(ctx context.Context, tenantID string, since time.Time) ([]*api.Appointment, error)
}

// ClinicalStorage aggregates every entity store the sync core depends on
type ClinicalStorage interface {
	PatientStorage
	VitalsStorage
	ConsultationStorage
	BillStorage
	AppointmentStorage
}
