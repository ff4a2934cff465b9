package domain

import "github.com/shopspring/decimal"

// PayLater limits
const (
	MinTenor         = 1
	MaxTenor         = 36
	SalaryMultiplier = 3
)

var (
	baseInterest = decimal.RequireFromString("0.05")

	highAmountThreshold = decimal.NewFromInt(10_000_000)
	midAmountThreshold  = decimal.NewFromInt(5_000_000)
	highAmountSurcharge = decimal.RequireFromString("0.02")
	midAmountSurcharge  = decimal.RequireFromString("0.01")

	longTenorSurcharge = decimal.RequireFromString("0.03")
	midTenorSurcharge  = decimal.RequireFromString("0.02")
)

// CalculateInterest prices a PayLater. Amount and tenor surcharges stack.
func CalculateInterest(amount float64, tenor int) float64 {
	rate := baseInterest
	amt := decimal.NewFromFloat(amount)

	switch {
	case amt.GreaterThan(highAmountThreshold):
		rate = rate.Add(highAmountSurcharge)
	case amt.GreaterThan(midAmountThreshold):
		rate = rate.Add(midAmountSurcharge)
	}

	switch {
	case tenor > 24:
		rate = rate.Add(longTenorSurcharge)
	case tenor > 12:
		rate = rate.Add(midTenorSurcharge)
	}

	return rate.InexactFloat64()
}

// MaxPayLaterAmount is the financing cap for a given monthly salary
func MaxPayLaterAmount(salary float64) float64 {
	return decimal.NewFromFloat(salary).Mul(decimal.NewFromInt(SalaryMultiplier)).InexactFloat64()
}

// TreatmentCost applies the hospital price multiplier to a disease's base cost.
// A nil multiplier counts as 1.
func TreatmentCost(baseCost float64, priceMultiplier *float64) float64 {
	total := decimal.NewFromFloat(baseCost)
	if priceMultiplier != nil {
		total = total.Mul(decimal.NewFromFloat(*priceMultiplier))
	}
	return total.Round(2).InexactFloat64()
}

// Installment is the repayment schedule of a cost financed through a PayLater
type Installment struct {
	MonthlyPayment float64
	TotalPayment   float64
}

// Amortize spreads totalCost plus flat interest over tenor months
func Amortize(totalCost, interest float64, tenor int) Installment {
	principal := decimal.NewFromFloat(totalCost)
	total := principal.Add(principal.Mul(decimal.NewFromFloat(interest)))
	monthly := total
	if tenor > 0 {
		monthly = total.Div(decimal.NewFromInt(int64(tenor)))
	}
	return Installment{
		MonthlyPayment: monthly.Round(2).InexactFloat64(),
		TotalPayment:   total.Round(2).InexactFloat64(),
	}
}
