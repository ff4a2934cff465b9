package domain

import "testing"

func TestCalculateInterest_KnownValues(t *testing.T) {
	tests := []struct {
		amount float64
		tenor  int
		want   float64
	}{
		{1_000_000, 6, 0.05},
		{11_000_000, 6, 0.07},
		{1_000_000, 30, 0.08},
		{11_000_000, 30, 0.10},
		{6_000_000, 6, 0.06},
		{6_000_000, 18, 0.08},
		{5_000_000, 12, 0.05},
		{10_000_000, 24, 0.08},
		{10_000_001, 25, 0.10},
	}

	for _, tt := range tests {
		if got := CalculateInterest(tt.amount, tt.tenor); got != tt.want {
			t.Errorf("CalculateInterest(%v, %d) = %v, want %v", tt.amount, tt.tenor, got, tt.want)
		}
	}
}

func TestCalculateInterest_Monotonic(t *testing.T) {
	amounts := []float64{0, 1, 4_999_999, 5_000_000, 5_000_001, 9_999_999, 10_000_000, 10_000_001, 50_000_000}
	tenors := []int{1, 6, 12, 13, 24, 25, 36}

	for _, tenor := range tenors {
		prev := -1.0
		for _, amount := range amounts {
			got := CalculateInterest(amount, tenor)
			if got < prev {
				t.Fatalf("interest decreased along amount axis at amount=%v tenor=%d", amount, tenor)
			}
			prev = got
		}
	}

	for _, amount := range amounts {
		prev := -1.0
		for _, tenor := range tenors {
			got := CalculateInterest(amount, tenor)
			if got < prev {
				t.Fatalf("interest decreased along tenor axis at amount=%v tenor=%d", amount, tenor)
			}
			if got < 0 || got >= 1 {
				t.Fatalf("interest out of range: %v", got)
			}
			prev = got
		}
	}
}

func TestMaxPayLaterAmount(t *testing.T) {
	if got := MaxPayLaterAmount(4_500_000); got != 13_500_000 {
		t.Fatalf("expected 13500000, got %v", got)
	}
}

func TestTreatmentCost(t *testing.T) {
	multiplier := 1.5
	if got := TreatmentCost(1_000_000, &multiplier); got != 1_500_000 {
		t.Fatalf("expected 1500000, got %v", got)
	}
	if got := TreatmentCost(1_000_000, nil); got != 1_000_000 {
		t.Fatalf("nil multiplier should count as 1, got %v", got)
	}
	zero := 0.0
	if got := TreatmentCost(1_000_000, &zero); got != 0 {
		t.Fatalf("explicit zero multiplier should be applied, got %v", got)
	}
}

func TestAmortize(t *testing.T) {
	got := Amortize(1_500_000, 0.05, 3)
	if got.TotalPayment != 1_575_000 {
		t.Errorf("expected total 1575000, got %v", got.TotalPayment)
	}
	if got.MonthlyPayment != 525_000 {
		t.Errorf("expected monthly 525000, got %v", got.MonthlyPayment)
	}
}
