package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/clinovo/medsync/pkg/api"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	storage, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = storage.Close()
	}

	return storage, cleanup
}

// millis granularity matches what the store persists, so round-trip
// comparisons with assert.Equal hold exactly.
func testTimestamp(offset time.Duration) time.Time {
	return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC).Add(offset)
}

func createTestPatient(t *testing.T, ctx context.Context, s *Storage, tenantID, phone string) *api.Patient {
	t.Helper()

	now := testTimestamp(0)
	p := &api.Patient{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		PatientNumber: "P-" + uuid.New().String()[:8],
		FirstName:     "Jane",
		LastName:      "Doe",
		Gender:        "F",
		DateOfBirth:   "1990-04-01",
		Phone:         phone,
		Address:       "12 Clinic Road",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, s.CreatePatient(ctx, p))
	return p
}
