package api

import "time"

// Patient statuses for consultations and appointments, and payment states
// for bills. Stored as plain strings so new states do not require a
// migration.
const (
	ConsultationOpen   = "OPEN"
	ConsultationClosed = "CLOSED"

	BillUnpaid        = "UNPAID"
	BillPartiallyPaid = "PARTIALLY_PAID"
	BillPaid          = "PAID"

	AppointmentScheduled = "SCHEDULED"
	AppointmentCompleted = "COMPLETED"
	AppointmentCancelled = "CANCELLED"
)

// Patient is a registered patient within one tenant (clinic).
// PatientNumber is a tenant-scoped sequential display number assigned by
// the server; Phone is unique per tenant.
type Patient struct {
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	ID            string    `json:"id"`
	TenantID      string    `json:"tenantId"`
	PatientNumber string    `json:"patientNumber"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Gender        string    `json:"gender"`
	DateOfBirth   string    `json:"dateOfBirth"` // YYYY-MM-DD
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
}

// Vitals is one set of measurements taken for a patient.
// BMI and Flags are derived server-side from the raw measurements;
// client-submitted values for them are ignored.
type Vitals struct {
	RecordedAt   time.Time `json:"recordedAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	ID           string    `json:"id"`
	TenantID     string    `json:"tenantId"`
	PatientID    string    `json:"patientId"`
	RecordedBy   string    `json:"recordedBy"`
	Flags        []string  `json:"flags"`
	HeightCm     float64   `json:"heightCm"`
	WeightKg     float64   `json:"weightKg"`
	BMI          float64   `json:"bmi"`
	TemperatureC float64   `json:"temperatureC"`
	Pulse        int       `json:"pulse"`
	SystolicBP   int       `json:"systolicBp"`
	DiastolicBP  int       `json:"diastolicBp"`
	SpO2         int       `json:"spo2"`
}

// Consultation is one doctor/patient encounter.
type Consultation struct {
	StartedAt time.Time `json:"startedAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	PatientID string    `json:"patientId"`
	DoctorID  string    `json:"doctorId"`
	Symptoms  string    `json:"symptoms"`
	Diagnosis string    `json:"diagnosis"`
	Notes     string    `json:"notes"`
	Status    string    `json:"status"`
}

// BillItem is one line on a bill. Amounts are integer cents.
type BillItem struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unitPrice"`
}

// Bill is an invoice for a patient. TotalAmount and Items are
// client-authoritative at creation time; AmountPaid and Status are owned
// by the server and recomputed on every payment.
type Bill struct {
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	ID             string     `json:"id"`
	TenantID       string     `json:"tenantId"`
	PatientID      string     `json:"patientId"`
	ConsultationID string     `json:"consultationId,omitempty"`
	BillNumber     string     `json:"billNumber"`
	Status         string     `json:"status"`
	Items          []BillItem `json:"items"`
	TotalAmount    int64      `json:"totalAmount"`
	AmountPaid     int64      `json:"amountPaid"`
}

// Appointment is a scheduled visit. One doctor cannot hold two
// appointments at the same instant within a tenant.
type Appointment struct {
	ScheduledAt time.Time `json:"scheduledAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	PatientID   string    `json:"patientId"`
	DoctorID    string    `json:"doctorId"`
	Reason      string    `json:"reason"`
	Status      string    `json:"status"`
}
