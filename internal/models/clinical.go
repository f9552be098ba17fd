// Package models holds server-side domain logic that must not be trusted
// from clients: derived vitals fields, bill payment state and display
// number formatting.
package models

import (
	"fmt"
	"math"

	"github.com/clinovo/medsync/pkg/api"
)

// Vital sign thresholds used to derive the abnormal-flag set.
const (
	feverTempC      = 38.0
	hypertensionSys = 140
	hypertensionDia = 90
	tachycardiaBPM  = 100
	bradycardiaBPM  = 60
	lowSpO2         = 94

	bmiUnderweight = 18.5
	bmiOverweight  = 25.0
	bmiObese       = 30.0
)

// ComputeBMI returns weight/height² rounded to one decimal place.
// Returns 0 when either measurement is missing.
func ComputeBMI(heightCm, weightKg float64) float64 {
	if heightCm <= 0 || weightKg <= 0 {
		return 0
	}
	m := heightCm / 100
	return math.Round(weightKg/(m*m)*10) / 10
}

// DeriveVitalFlags recomputes the abnormal-flag set from raw measurements.
// Zero-valued measurements are treated as "not taken" and produce no flag.
func DeriveVitalFlags(v *api.Vitals) []string {
	flags := []string{}

	if v.TemperatureC >= feverTempC {
		flags = append(flags, "FEVER")
	}
	if v.SystolicBP >= hypertensionSys || v.DiastolicBP >= hypertensionDia {
		flags = append(flags, "HYPERTENSION")
	}
	if v.Pulse > tachycardiaBPM {
		flags = append(flags, "TACHYCARDIA")
	}
	if v.Pulse > 0 && v.Pulse < bradycardiaBPM {
		flags = append(flags, "BRADYCARDIA")
	}
	if v.SpO2 > 0 && v.SpO2 < lowSpO2 {
		flags = append(flags, "LOW_SPO2")
	}

	switch bmi := v.BMI; {
	case bmi <= 0:
	case bmi < bmiUnderweight:
		flags = append(flags, "UNDERWEIGHT")
	case bmi >= bmiObese:
		flags = append(flags, "OBESE")
	case bmi >= bmiOverweight:
		flags = append(flags, "OVERWEIGHT")
	}

	return flags
}

// BillStatus returns the payment state for the given amounts.
func BillStatus(totalAmount, amountPaid int64) string {
	switch {
	case totalAmount > 0 && amountPaid >= totalAmount:
		return api.BillPaid
	case amountPaid > 0:
		return api.BillPartiallyPaid
	default:
		return api.BillUnpaid
	}
}

// FormatPatientNumber renders the tenant-scoped sequential display number
// for the n-th patient, e.g. 7 -> "P-0007".
func FormatPatientNumber(n int) string {
	return fmt.Sprintf("P-%04d", n)
}

// FormatBillNumber renders the tenant-scoped sequential bill number,
// e.g. 7 -> "B-0007".
func FormatBillNumber(n int) string {
	return fmt.Sprintf("B-%04d", n)
}
