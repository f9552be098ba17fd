package api

import "time"

// Per-kind action payloads. Pointer fields on update payloads distinguish
// "leave unchanged" (nil) from "set to zero value".

type CreatePatientPayload struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"dateOfBirth"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
}

type UpdatePatientPayload struct {
	PatientID   string  `json:"patientId"`
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Address     *string `json:"address,omitempty"`
}

type RecordVitalsPayload struct {
	RecordedAt   time.Time `json:"recordedAt"`
	PatientID    string    `json:"patientId"`
	HeightCm     float64   `json:"heightCm"`
	WeightKg     float64   `json:"weightKg"`
	TemperatureC float64   `json:"temperatureC"`
	Pulse        int       `json:"pulse"`
	SystolicBP   int       `json:"systolicBp"`
	DiastolicBP  int       `json:"diastolicBp"`
	SpO2         int       `json:"spo2"`
}

type CreateConsultationPayload struct {
	StartedAt time.Time `json:"startedAt"`
	PatientID string    `json:"patientId"`
	Symptoms  string    `json:"symptoms"`
	Diagnosis string    `json:"diagnosis"`
	Notes     string    `json:"notes"`
}

type UpdateConsultationPayload struct {
	ConsultationID string  `json:"consultationId"`
	Symptoms       *string `json:"symptoms,omitempty"`
	Diagnosis      *string `json:"diagnosis,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	Status         *string `json:"status,omitempty"`
}

type CreateBillPayload struct {
	PatientID      string     `json:"patientId"`
	ConsultationID string     `json:"consultationId,omitempty"`
	Items          []BillItem `json:"items"`
	TotalAmount    int64      `json:"totalAmount"`
}

type RecordPaymentPayload struct {
	BillID string `json:"billId"`
	Amount int64  `json:"amount"`
}

type CreateAppointmentPayload struct {
	ScheduledAt time.Time `json:"scheduledAt"`
	PatientID   string    `json:"patientId"`
	DoctorID    string    `json:"doctorId,omitempty"` // defaults to the acting user
	Reason      string    `json:"reason"`
}

type UpdateAppointmentPayload struct {
	AppointmentID string     `json:"appointmentId"`
	ScheduledAt   *time.Time `json:"scheduledAt,omitempty"`
	Reason        *string    `json:"reason,omitempty"`
	Status        *string    `json:"status,omitempty"`
}
