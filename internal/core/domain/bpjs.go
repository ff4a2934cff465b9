package domain

import (
	"strings"
	"time"
)

// MaxPaymentGapMonths is the largest calendar-month gap that still counts as an active BPJS
const MaxPaymentGapMonths = 1

// MonthsBetween counts calendar months from last to today, ignoring the day of month.
// Both sides are compared in UTC, the zone payment dates are stored in.
func MonthsBetween(last, today time.Time) int {
	last, today = last.UTC(), today.UTC()
	return (today.Year()-last.Year())*12 + int(today.Month()) - int(last.Month())
}

// HasBPJSNumber reports whether a BPJS number is present
func HasBPJSNumber(bpjsNumber *string) bool {
	return bpjsNumber != nil && strings.TrimSpace(*bpjsNumber) != ""
}

// IsBPJSActive reports whether the BPJS membership is paid up as of today
func IsBPJSActive(bpjsNumber *string, lastPaymentDate *time.Time, today time.Time) bool {
	if !HasBPJSNumber(bpjsNumber) || lastPaymentDate == nil {
		return false
	}
	return MonthsBetween(*lastPaymentDate, today) <= MaxPaymentGapMonths
}

// ClassifyBPJS derives a user's role from their BPJS number and last payment date
func ClassifyBPJS(bpjsNumber *string, lastPaymentDate *time.Time, today time.Time) Role {
	if !HasBPJSNumber(bpjsNumber) {
		return RoleNonBPJS
	}
	if IsBPJSActive(bpjsNumber, lastPaymentDate, today) {
		return RoleBPJS
	}
	return RoleNonActiveBPJS
}
