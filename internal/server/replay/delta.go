package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/clinovo/medsync/internal/server/storage"
	"github.com/clinovo/medsync/pkg/api"
)

// Fetcher retrieves every record changed after a client's checkpoint.
type Fetcher struct {
	store storage.ClinicalStorage
}

// NewFetcher creates a new delta fetcher
func NewFetcher(store storage.ClinicalStorage) *Fetcher {
	return &Fetcher{store: store}
}

// Fetch issues one tenant-scoped query per tracked entity type for records
// with lastModified strictly after since, each ordered oldest-changed
// first. "No checkpoint" callers pass the epoch; a full snapshot is the
// same code path as any incremental delta. Unlike replay, any failure here
// fails the whole fetch: a partial delta has no meaningful semantics.
func (f *Fetcher) Fetch(ctx context.Context, tenantID string, since time.Time) (*api.ServerUpdates, error) {
	patients, err := f.store.ListPatientsSince(ctx, tenantID, since)
	if err != nil {
		return nil, fmt.Errorf("fetch patients: %w", err)
	}

	vitals, err := f.store.ListVitalsSince(ctx, tenantID, since)
	if err != nil {
		return nil, fmt.Errorf("fetch vitals: %w", err)
	}

	consultations, err := f.store.ListConsultationsSince(ctx, tenantID, since)
	if err != nil {
		return nil, fmt.Errorf("fetch consultations: %w", err)
	}

	bills, err := f.store.ListBillsSince(ctx, tenantID, since)
	if err != nil {
		return nil, fmt.Errorf("fetch bills: %w", err)
	}

	appointments, err := f.store.ListAppointmentsSince(ctx, tenantID, since)
	if err != nil {
		return nil, fmt.Errorf("fetch appointments: %w", err)
	}

	return &api.ServerUpdates{
		Patients:      orEmpty(patients),
		Vitals:        orEmpty(vitals),
		Consultations: orEmpty(consultations),
		Bills:         orEmpty(bills),
		Appointments:  orEmpty(appointments),
	}, nil
}

// orEmpty keeps empty buckets as [] instead of null on the wire.
func orEmpty[T any](s []*T) []*T {
	if s == nil {
		return []*T{}
	}
	return s
}
