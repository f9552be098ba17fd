package replay

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinovo/medsync/pkg/api"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustMarshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var testTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func createPatientAction(t *testing.T, clientID, phone string) api.Action {
	t.Helper()
	return api.Action{
		ClientID:        clientID,
		Kind:            api.ActionCreatePatient,
		ClientTimestamp: testTime,
		Payload: mustMarshal(t, api.CreatePatientPayload{
			FirstName: "Jane",
			LastName:  "Doe",
			Gender:    "F",
			Phone:     phone,
		}),
	}
}

func TestEngine_Replay_OneResultPerAction(t *testing.T) {
	store := newMockStorage()
	engine := NewEngine(setupTestLogger(), store, fixedClock(testTime))

	actions := []api.Action{
		createPatientAction(t, "a-1", "+254700000001"),
		createPatientAction(t, "a-2", "+254700000002"),
		createPatientAction(t, "a-3", "+254700000003"),
	}

	results := engine.Replay(context.Background(), "clinic-1", "user-1", actions)

	require.Len(t, results, len(actions))
	for i, res := range results {
		assert.Equal(t, actions[i].ClientID, res.ClientID, "results must correlate by clientId in order")
		assert.True(t, res.Success)
		assert.NotEmpty(t, res.ServerID)
		assert.Empty(t, res.Error)
	}
}

func TestEngine_Replay_EmptyBatch(t *testing.T) {
	store := newMockStorage()
	engine := NewEngine(setupTestLogger(), store, fixedClock(testTime))

	results := engine.Replay(context.Background(), "clinic-1", "user-1", nil)

	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestEngine_Replay_UnknownKind(t *testing.T) {
	store := newMockStorage()
	engine := NewEngine(setupTestLogger(), store, fixedClock(testTime))

	actions := []api.Action{
		{
			ClientID: "a-1",
			Kind:     "DELETE_EVERYTHING",
			Payload:  json.RawMessage(`{}`),
		},
	}

	results := engine.Replay(context.Background(), "clinic-1", "user-1", actions)

	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.False(t, results[0].Conflict)
	assert.Contains(t, results[0].Error, "unknown action kind")
}

func TestEngine_Replay_PartialFailureContinues(t *testing.T) {
	store := newMockStorage()
	engine := NewEngine(setupTestLogger(), store, fixedClock(testTime))

	actions := []api.Action{
		createPatientAction(t, "a-1", "+254700000001"),
		{
			ClientID: "a-2",
			Kind:     api.ActionCreatePatient,
			Payload:  json.RawMessage(`{"firstName":""}`), // validation failure
		},
		createPatientAction(t, "a-3", "+254700000003"),
		{
			ClientID: "a-4",
			Kind:     api.ActionRecordPayment,
			Payload:  mustMarshal(t, api.RecordPaymentPayload{BillID: "no-such-bill", Amount: 100}),
		},
		createPatientAction(t, "a-5", "+254700000005"),
	}

	results := engine.Replay(context.Background(), "clinic-1", "user-1", actions)

	require.Len(t, results, 5)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Contains(t, results[1].Error, "required")
	assert.True(t, results[2].Success, "batch must continue after a failed action")
	assert.False(t, results[3].Success)
	assert.True(t, results[4].Success)
}

func TestEngine_Replay_DuplicateIsConflict(t *testing.T) {
	store := newMockStorage()
	engine := NewEngine(setupTestLogger(), store, fixedClock(testTime))

	actions := []api.Action{
		createPatientAction(t, "a-1", "+254700000001"),
		createPatientAction(t, "a-2", "+254700000001"), // same phone, same tenant
	}

	results := engine.Replay(context.Background(), "clinic-1", "user-1", actions)

	require.Len(t, results, 2)
	assert.True(t, results[0].Success)

	assert.False(t, results[1].Success)
	assert.True(t, results[1].Conflict, "uniqueness violation must be labelled a conflict")
	assert.NotEmpty(t, results[1].Error)
}

func TestEngine_Replay_SequentialPayments(t *testing.T) {
	store := newMockStorage()
	store.bills["bill-1"] = &api.Bill{
		ID:          "bill-1",
		TenantID:    "clinic-1",
		PatientID:   "patient-1",
		BillNumber:  "B-0001",
		TotalAmount: 100000,
		AmountPaid:  0,
		Status:      api.BillUnpaid,
	}

	engine := NewEngine(setupTestLogger(), store, fixedClock(testTime))

	actions := []api.Action{
		{
			ClientID: "pay-1",
			Kind:     api.ActionRecordPayment,
			Payload:  mustMarshal(t, api.RecordPaymentPayload{BillID: "bill-1", Amount: 40000}),
		},
		{
			ClientID: "pay-2",
			Kind:     api.ActionRecordPayment,
			Payload:  mustMarshal(t, api.RecordPaymentPayload{BillID: "bill-1", Amount: 60000}),
		},
	}

	results := engine.Replay(context.Background(), "clinic-1", "user-1", actions)

	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.True(t, results[1].Success, "second payment must see the state left by the first")

	bill := store.bills["bill-1"]
	assert.Equal(t, int64(100000), bill.AmountPaid)
	assert.Equal(t, api.BillPaid, bill.Status)
}

func TestEngine_Replay_PartialPaymentStatus(t *testing.T) {
	store := newMockStorage()
	store.bills["bill-1"] = &api.Bill{
		ID:          "bill-1",
		TenantID:    "clinic-1",
		BillNumber:  "B-0001",
		TotalAmount: 100000,
		Status:      api.BillUnpaid,
	}

	engine := NewEngine(setupTestLogger(), store, fixedClock(testTime))

	actions := []api.Action{
		{
			ClientID: "pay-1",
			Kind:     api.ActionRecordPayment,
			Payload:  mustMarshal(t, api.RecordPaymentPayload{BillID: "bill-1", Amount: 25000}),
		},
	}

	results := engine.Replay(context.Background(), "clinic-1", "user-1", actions)

	require.True(t, results[0].Success)
	assert.Equal(t, int64(25000), store.bills["bill-1"].AmountPaid)
	assert.Equal(t, api.BillPartiallyPaid, store.bills["bill-1"].Status)
}

func TestEngine_CreatePatient_AssignsPatientNumber(t *testing.T) {
	store := newMockStorage()
	engine := NewEngine(setupTestLogger(), store, fixedClock(testTime))

	results := engine.Replay(context.Background(), "clinic-1", "user-1", []api.Action{
		createPatientAction(t, "a-1", "+254700000001"),
		createPatientAction(t, "a-2", "+254700000002"),
	})

	require.True(t, results[0].Success)
	require.True(t, results[1].Success)

	first, err := store.GetPatient(context.Background(), "clinic-1", results[0].ServerID)
	require.NoError(t, err)
	second, err := store.GetPatient(context.Background(), "clinic-1", results[1].ServerID)
	require.NoError(t, err)

	assert.Equal(t, "P-0001", first.PatientNumber)
	assert.Equal(t, "P-0002", second.PatientNumber)
	assert.Equal(t, testTime, first.CreatedAt)
	assert.Equal(t, testTime, first.UpdatedAt)
}

func TestEngine_UpdatePatient_PartialPatch(t *testing.T) {
	store := newMockStorage()
	store.patients["patient-1"] = &api.Patient{
		ID:        "patient-1",
		TenantID:  "clinic-1",
		FirstName: "Jane",
		LastName:  "Doe",
		Phone:     "+254700000001",
		Address:   "Old Town",
	}

	engine := NewEngine(setupTestLogger(), store, fixedClock(testTime))

	newAddress := "New Town"
	results := engine.Replay(context.Background(), "clinic-1", "user-1", []api.Action{
		{
			ClientID: "u-1",
			Kind:     api.ActionUpdatePatient,
			Payload: mustMarshal(t, api.UpdatePatientPayload{
				PatientID: "patient-1",
				Address:   &newAddress,
			}),
		},
	})

	require.True(t, results[0].Success)

	patient := store.patients["patient-1"]
	assert.Equal(t, "New Town", patient.Address)
	assert.Equal(t, "Jane", patient.FirstName, "fields absent from the payload must be untouched")
	assert.Equal(t, "+254700000001", patient.Phone)
	assert.Equal(t, testTime, patient.UpdatedAt)
}

func TestEngine_RecordVitals_DerivesServerFields(t *testing.T) {
	store := newMockStorage()
	store.patients["patient-1"] = &api.Patient{ID: "patient-1", TenantID: "clinic-1"}

	engine := NewEngine(setupTestLogger(), store, fixedClock(testTime))

	results := engine.Replay(context.Background(), "clinic-1", "nurse-7", []api.Action{
		{
			ClientID: "v-1",
			Kind:     api.ActionRecordVitals,
			Payload: mustMarshal(t, api.RecordVitalsPayload{
				PatientID:    "patient-1",
				RecordedAt:   testTime,
				HeightCm:     170,
				WeightKg:     95,
				TemperatureC: 38.5,
				Pulse:        110,
				SystolicBP:   150,
				DiastolicBP:  95,
				SpO2:         92,
			}),
		},
	})

	require.True(t, results[0].Success)

	vitals := store.vitals[results[0].ServerID]
	require.NotNil(t, vitals)
	assert.Equal(t, "nurse-7", vitals.RecordedBy)
	assert.InDelta(t, 32.9, vitals.BMI, 0.01)
	assert.ElementsMatch(t,
		[]string{"FEVER", "HYPERTENSION", "TACHYCARDIA", "LOW_SPO2", "OBESE"},
		vitals.Flags)
}

func TestEngine_RecordVitals_UnknownPatient(t *testing.T) {
	store := newMockStorage()
	engine := NewEngine(setupTestLogger(), store, fixedClock(testTime))

	results := engine.Replay(context.Background(), "clinic-1", "user-1", []api.Action{
		{
			ClientID: "v-1",
			Kind:     api.ActionRecordVitals,
			Payload: mustMarshal(t, api.RecordVitalsPayload{
				PatientID:  "ghost",
				RecordedAt: testTime,
			}),
		},
	})

	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "ghost")
}

func TestEngine_RecordVitals_TenantScoped(t *testing.T) {
	store := newMockStorage()
	store.patients["patient-1"] = &api.Patient{ID: "patient-1", TenantID: "clinic-other"}

	engine := NewEngine(setupTestLogger(), store, fixedClock(testTime))

	results := engine.Replay(context.Background(), "clinic-1", "user-1", []api.Action{
		{
			ClientID: "v-1",
			Kind:     api.ActionRecordVitals,
			Payload: mustMarshal(t, api.RecordVitalsPayload{
				PatientID:  "patient-1",
				RecordedAt: testTime,
			}),
		},
	})

	assert.False(t, results[0].Success, "another tenant's patient must look nonexistent")
}

func TestEngine_CreateConsultation_Defaults(t *testing.T) {
	store := newMockStorage()
	store.patients["patient-1"] = &api.Patient{ID: "patient-1", TenantID: "clinic-1"}

	engine := NewEngine(setupTestLogger(), store, fixedClock(testTime))

	results := engine.Replay(context.Background(), "clinic-1", "doctor-3", []api.Action{
		{
			ClientID: "c-1",
			Kind:     api.ActionCreateConsultation,
			Payload: mustMarshal(t, api.CreateConsultationPayload{
				PatientID: "patient-1",
				StartedAt: testTime,
				Symptoms:  "headache",
			}),
		},
	})

	require.True(t, results[0].Success)

	consultation := store.consultations[results[0].ServerID]
	require.NotNil(t, consultation)
	assert.Equal(t, "doctor-3", consultation.DoctorID)
	assert.Equal(t, api.ConsultationOpen, consultation.Status)
}

func TestEngine_UpdateConsultation_RejectsBadStatus(t *testing.T) {
	store := newMockStorage()
	store.consultations["cons-1"] = &api.Consultation{
		ID:       "cons-1",
		TenantID: "clinic-1",
		Status:   api.ConsultationOpen,
	}

	engine := NewEngine(setupTestLogger(), store, fixedClock(testTime))

	badStatus := "ARCHIVED"
	results := engine.Replay(context.Background(), "clinic-1", "user-1", []api.Action{
		{
			ClientID: "u-1",
			Kind:     api.ActionUpdateConsultation,
			Payload: mustMarshal(t, api.UpdateConsultationPayload{
				ConsultationID: "cons-1",
				Status:         &badStatus,
			}),
		},
	})

	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "status")
	assert.Equal(t, api.ConsultationOpen, store.consultations["cons-1"].Status)
}

func TestEngine_CreateBill_ServerOwnedPaymentState(t *testing.T) {
	store := newMockStorage()
	store.patients["patient-1"] = &api.Patient{ID: "patient-1", TenantID: "clinic-1"}

	engine := NewEngine(setupTestLogger(), store, fixedClock(testTime))

	results := engine.Replay(context.Background(), "clinic-1", "user-1", []api.Action{
		{
			ClientID: "b-1",
			Kind:     api.ActionCreateBill,
			Payload: mustMarshal(t, api.CreateBillPayload{
				PatientID: "patient-1",
				Items: []api.BillItem{
					{Description: "Consultation fee", Quantity: 1, UnitPrice: 50000},
				},
				TotalAmount: 50000,
			}),
		},
	})

	require.True(t, results[0].Success)

	bill := store.bills[results[0].ServerID]
	require.NotNil(t, bill)
	assert.Equal(t, "B-0001", bill.BillNumber)
	assert.Equal(t, int64(50000), bill.TotalAmount)
	assert.Equal(t, int64(0), bill.AmountPaid)
	assert.Equal(t, api.BillUnpaid, bill.Status)
}

func TestEngine_ScheduleAppointment(t *testing.T) {
	store := newMockStorage()
	store.patients["patient-1"] = &api.Patient{ID: "patient-1", TenantID: "clinic-1"}

	engine := NewEngine(setupTestLogger(), store, fixedClock(testTime))

	slot := testTime.Add(48 * time.Hour)

	t.Run("doctor defaults to the acting user", func(t *testing.T) {
		id, err := engine.ScheduleAppointment(context.Background(), "clinic-1", "doctor-3", &api.CreateAppointmentPayload{
			PatientID:   "patient-1",
			ScheduledAt: slot,
			Reason:      "follow-up",
		})
		require.NoError(t, err)

		appointment := store.appointments[id]
		require.NotNil(t, appointment)
		assert.Equal(t, "doctor-3", appointment.DoctorID)
		assert.Equal(t, api.AppointmentScheduled, appointment.Status)
	})

	t.Run("double booking is a duplicate", func(t *testing.T) {
		_, err := engine.ScheduleAppointment(context.Background(), "clinic-1", "doctor-3", &api.CreateAppointmentPayload{
			PatientID:   "patient-1",
			ScheduledAt: slot,
		})
		require.Error(t, err)

		conflict, _ := Classify(err)
		assert.True(t, conflict)
	})
}

func TestEngine_Replay_InvalidPayload(t *testing.T) {
	store := newMockStorage()
	engine := NewEngine(setupTestLogger(), store, fixedClock(testTime))

	results := engine.Replay(context.Background(), "clinic-1", "user-1", []api.Action{
		{
			ClientID: "bad-1",
			Kind:     api.ActionCreatePatient,
			Payload:  json.RawMessage(`{not json`),
		},
	})

	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "invalid payload")
}
