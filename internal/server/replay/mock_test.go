package replay

import (
	"context"
	"sort"
	"time"

	"github.com/clinovo/medsync/internal/server/storage"
	"github.com/clinovo/medsync/pkg/api"
)

// mockClinicalStorage is an in-memory ClinicalStorage enforcing the same
// tenant scoping and uniqueness rules as the sqlite implementation.
type mockClinicalStorage struct {
	patients      map[string]*api.Patient
	vitals        map[string]*api.Vitals
	consultations map[string]*api.Consultation
	bills         map[string]*api.Bill
	appointments  map[string]*api.Appointment

	createPatientErr     error
	createVitalsErr      error
	updateBillErr        error
	listPatientsErr      error
	listVitalsErr        error
	listConsultationsErr error
	listBillsErr         error
	listAppointmentsErr  error
}

func newMockStorage() *mockClinicalStorage {
	return &mockClinicalStorage{
		patients:      make(map[string]*api.Patient),
		vitals:        make(map[string]*api.Vitals),
		consultations: make(map[string]*api.Consultation),
		bills:         make(map[string]*api.Bill),
		appointments:  make(map[string]*api.Appointment),
	}
}

func (m *mockClinicalStorage) CreatePatient(ctx context.Context, p *api.Patient) error {
	if m.createPatientErr != nil {
		return m.createPatientErr
	}
	for _, existing := range m.patients {
		if existing.TenantID == p.TenantID && existing.Phone == p.Phone {
			return storage.ErrDuplicate
		}
	}
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockClinicalStorage) GetPatient(ctx context.Context, tenantID, id string) (*api.Patient, error) {
	p, ok := m.patients[id]
	if !ok || p.TenantID != tenantID {
		return nil, storage.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockClinicalStorage) UpdatePatient(ctx context.Context, p *api.Patient) error {
	existing, ok := m.patients[p.ID]
	if !ok || existing.TenantID != p.TenantID {
		return storage.ErrNotFound
	}
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockClinicalStorage) CountPatients(ctx context.Context, tenantID string) (int, error) {
	count := 0
	for _, p := range m.patients {
		if p.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func (m *mockClinicalStorage) ListPatientsSince(ctx context.Context, tenantID string, since time.Time) ([]*api.Patient, error) {
	if m.listPatientsErr != nil {
		return nil, m.listPatientsErr
	}
	var out []*api.Patient
	for _, p := range m.patients {
		if p.TenantID == tenantID && p.UpdatedAt.After(since) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func (m *mockClinicalStorage) CreateVitals(ctx context.Context, v *api.Vitals) error {
	if m.createVitalsErr != nil {
		return m.createVitalsErr
	}
	for _, existing := range m.vitals {
		if existing.TenantID == v.TenantID && existing.PatientID == v.PatientID && existing.RecordedAt.Equal(v.RecordedAt) {
			return storage.ErrDuplicate
		}
	}
	cp := *v
	m.vitals[v.ID] = &cp
	return nil
}

func (m *mockClinicalStorage) ListVitalsSince(ctx context.Context, tenantID string, since time.Time) ([]*api.Vitals, error) {
	if m.listVitalsErr != nil {
		return nil, m.listVitalsErr
	}
	var out []*api.Vitals
	for _, v := range m.vitals {
		if v.TenantID == tenantID && v.UpdatedAt.After(since) {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func (m *mockClinicalStorage) CreateConsultation(ctx context.Context, c *api.Consultation) error {
	for _, existing := range m.consultations {
		if existing.TenantID == c.TenantID && existing.PatientID == c.PatientID && existing.StartedAt.Equal(c.StartedAt) {
			return storage.ErrDuplicate
		}
	}
	cp := *c
	m.consultations[c.ID] = &cp
	return nil
}

func (m *mockClinicalStorage) GetConsultation(ctx context.Context, tenantID, id string) (*api.Consultation, error) {
	c, ok := m.consultations[id]
	if !ok || c.TenantID != tenantID {
		return nil, storage.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockClinicalStorage) UpdateConsultation(ctx context.Context, c *api.Consultation) error {
	existing, ok := m.consultations[c.ID]
	if !ok || existing.TenantID != c.TenantID {
		return storage.ErrNotFound
	}
	cp := *c
	m.consultations[c.ID] = &cp
	return nil
}

func (m *mockClinicalStorage) ListConsultationsSince(ctx context.Context, tenantID string, since time.Time) ([]*api.Consultation, error) {
	if m.listConsultationsErr != nil {
		return nil, m.listConsultationsErr
	}
	var out []*api.Consultation
	for _, c := range m.consultations {
		if c.TenantID == tenantID && c.UpdatedAt.After(since) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func (m *mockClinicalStorage) CreateBill(ctx context.Context, b *api.Bill) error {
	for _, existing := range m.bills {
		if existing.TenantID == b.TenantID && existing.BillNumber == b.BillNumber {
			return storage.ErrDuplicate
		}
	}
	cp := *b
	m.bills[b.ID] = &cp
	return nil
}

func (m *mockClinicalStorage) GetBill(ctx context.Context, tenantID, id string) (*api.Bill, error) {
	b, ok := m.bills[id]
	if !ok || b.TenantID != tenantID {
		return nil, storage.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockClinicalStorage) UpdateBillPayment(ctx context.Context, b *api.Bill) error {
	if m.updateBillErr != nil {
		return m.updateBillErr
	}
	existing, ok := m.bills[b.ID]
	if !ok || existing.TenantID != b.TenantID {
		return storage.ErrNotFound
	}
	cp := *b
	m.bills[b.ID] = &cp
	return nil
}

func (m *mockClinicalStorage) CountBills(ctx context.Context, tenantID string) (int, error) {
	count := 0
	for _, b := range m.bills {
		if b.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func (m *mockClinicalStorage) ListBillsSince(ctx context.Context, tenantID string, since time.Time) ([]*api.Bill, error) {
	if m.listBillsErr != nil {
		return nil, m.listBillsErr
	}
	var out []*api.Bill
	for _, b := range m.bills {
		if b.TenantID == tenantID && b.UpdatedAt.After(since) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func (m *mockClinicalStorage) CreateAppointment(ctx context.Context, a *api.Appointment) error {
	for _, existing := range m.appointments {
		if existing.TenantID == a.TenantID && existing.DoctorID == a.DoctorID && existing.ScheduledAt.Equal(a.ScheduledAt) {
			return storage.ErrDuplicate
		}
	}
	cp := *a
	m.appointments[a.ID] = &cp
	return nil
}

func (m *mockClinicalStorage) GetAppointment(ctx context.Context, tenantID, id string) (*api.Appointment, error) {
	a, ok := m.appointments[id]
	if !ok || a.TenantID != tenantID {
		return nil, storage.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockClinicalStorage) UpdateAppointment(ctx context.Context, a *api.Appointment) error {
	existing, ok := m.appointments[a.ID]
	if !ok || existing.TenantID != a.TenantID {
		return storage.ErrNotFound
	}
	cp := *a
	m.appointments[a.ID] = &cp
	return nil
}

func (m *mockClinicalStorage) ListAppointmentsSince(ctx context.Context, tenantID string, since time.Time) ([]*api.Appointment, error) {
	if m.listAppointmentsErr != nil {
		return nil, m.listAppointmentsErr
	}
	var out []*api.Appointment
	for _, a := range m.appointments {
		if a.TenantID == tenantID && a.UpdatedAt.After(since) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}
