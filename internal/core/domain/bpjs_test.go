package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

func TestClassifyBPJS_NoNumberIsNonBPJS(t *testing.T) {
	today := date(2024, time.June, 15)
	last := date(2024, time.June, 1)

	cases := []*string{nil, strPtr(""), strPtr("   ")}
	for _, number := range cases {
		if got := ClassifyBPJS(number, &last, today); got != RoleNonBPJS {
			t.Errorf("expected NON_BPJS, got %s", got)
		}
		if got := ClassifyBPJS(number, nil, today); got != RoleNonBPJS {
			t.Errorf("expected NON_BPJS without payment date, got %s", got)
		}
	}
}

func TestClassifyBPJS_NumberWithoutPaymentIsNonActive(t *testing.T) {
	got := ClassifyBPJS(strPtr("0001234567890"), nil, date(2024, time.June, 15))
	if got != RoleNonActiveBPJS {
		t.Fatalf("expected NON_ACTIVE_BPJS, got %s", got)
	}
}

func TestClassifyBPJS_PaymentRecency(t *testing.T) {
	number := strPtr("0001234567890")
	today := date(2024, time.March, 31)

	tests := []struct {
		name string
		last time.Time
		want Role
	}{
		{"same month", date(2024, time.March, 1), RoleBPJS},
		{"previous month", date(2024, time.February, 1), RoleBPJS},
		{"two months ago", date(2024, time.January, 31), RoleNonActiveBPJS},
		{"three months across year boundary", date(2023, time.December, 31), RoleNonActiveBPJS},
		{"last year", date(2023, time.March, 31), RoleNonActiveBPJS},
	}

	for _, tt := range tests {
		last := tt.last
		if got := ClassifyBPJS(number, &last, today); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, got)
		}
	}
}

func TestClassifyBPJS_YearBoundary(t *testing.T) {
	number := strPtr("0001234567890")
	last := date(2023, time.December, 20)
	if got := ClassifyBPJS(number, &last, date(2024, time.January, 5)); got != RoleBPJS {
		t.Fatalf("expected BPJS, got %s", got)
	}
	if got := ClassifyBPJS(number, &last, date(2024, time.February, 1)); got != RoleNonActiveBPJS {
		t.Fatalf("expected NON_ACTIVE_BPJS, got %s", got)
	}
}

func TestClassifyBPJS_DayOfMonthIgnored(t *testing.T) {
	number := strPtr("0001234567890")
	// 1 Jan to 28 Feb is almost two months, but only one calendar month apart
	last := date(2024, time.January, 1)
	if got := ClassifyBPJS(number, &last, date(2024, time.February, 28)); got != RoleBPJS {
		t.Fatalf("expected BPJS, got %s", got)
	}
	// 31 Jan to 1 Mar is one day over a month, but two calendar months apart
	last = date(2024, time.January, 31)
	if got := ClassifyBPJS(number, &last, date(2024, time.March, 1)); got != RoleNonActiveBPJS {
		t.Fatalf("expected NON_ACTIVE_BPJS, got %s", got)
	}
}

func TestIsBPJSActive(t *testing.T) {
	today := date(2024, time.December, 10)
	last := date(2024, time.November, 2)

	if !IsBPJSActive(strPtr("123"), &last, today) {
		t.Error("expected active membership")
	}
	if IsBPJSActive(nil, &last, today) {
		t.Error("expected inactive without number")
	}
	if IsBPJSActive(strPtr("123"), nil, today) {
		t.Error("expected inactive without payment date")
	}
}

func TestMonthsBetween(t *testing.T) {
	if got := MonthsBetween(date(2022, time.November, 30), date(2024, time.January, 1)); got != 14 {
		t.Fatalf("expected 14, got %d", got)
	}
}

func TestMonthsBetween_ComparesInUTC(t *testing.T) {
	wib := time.FixedZone("WIB", 7*60*60)
	lastPaid := date(2026, time.September, 30)
	// 03:00 WIB on Nov 1 is still Oct 31 in UTC
	today := time.Date(2026, time.November, 1, 3, 0, 0, 0, wib)

	if got := MonthsBetween(lastPaid, today); got != 1 {
		t.Fatalf("expected 1 month, got %d", got)
	}
	if role := ClassifyBPJS(strPtr("0001234567890"), &lastPaid, today); role != RoleBPJS {
		t.Fatalf("expected BPJS, got %s", role)
	}
}
