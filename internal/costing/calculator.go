package costing

import "github.com/shopspring/decimal"

var (
	hundred        = decimal.NewFromInt(100)
	shareTolerance = decimal.RequireFromString("0.01")
)

// Component pairs a raw material's current cost with the percentage share it
// contributes to a blend.
type Component struct {
	Cost       decimal.Decimal
	Percentage decimal.Decimal
}

// TotalCost derives a product's cost from its components plus the fixed
// additional cost: additional + Σ(percentage/100 × cost), rounded to
// currency precision. The function performs no I/O and always yields the
// same output for the same inputs.
func TotalCost(additional decimal.Decimal, parts []Component) decimal.Decimal {
	weighted := decimal.Zero
	for _, part := range parts {
		weighted = weighted.Add(part.Percentage.Mul(part.Cost))
	}
	return additional.Add(weighted.Div(hundred)).Round(2)
}

// ValidateShares checks that every percentage lies in (0,100] and that the
// shares sum to 100 within the accepted tolerance of 0.01.
func ValidateShares(shares []decimal.Decimal) error {
	if len(shares) == 0 {
		return validationf("ingredients", "at least one ingredient is required")
	}

	sum := decimal.Zero
	for i, share := range shares {
		if !share.IsPositive() {
			return validationf("percentage", "ingredient %d: percentage must be greater than zero", i+1)
		}
		if share.GreaterThan(hundred) {
			return validationf("percentage", "ingredient %d: percentage must not exceed 100", i+1)
		}
		sum = sum.Add(share)
	}

	if sum.Sub(hundred).Abs().GreaterThan(shareTolerance) {
		return validationf("percentage", "ingredient percentages sum to %s, expected 100", sum.String())
	}

	return nil
}
