package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundingPolicy selects how the final total is rounded. All three
// presentation surfaces (confirmation message, persisted order, invoice) go
// through the same policy so they can never disagree on the total.
type RoundingPolicy string

const (
	// PolicyHalfUp rounds the total to two decimals, half away from zero.
	PolicyHalfUp RoundingPolicy = "half_up"
	// PolicyFloor1 truncates the total to one decimal before formatting to
	// two. It reproduces the legacy invoice behaviour and exists only so
	// the discrepancy can be toggled in one place while product decides
	// which rounding is correct.
	PolicyFloor1 RoundingPolicy = "floor1"
)

// ParseRoundingPolicy maps a configuration string to a policy, defaulting to
// half-up.
func ParseRoundingPolicy(value string) RoundingPolicy {
	if RoundingPolicy(value) == PolicyFloor1 {
		return PolicyFloor1
	}
	return PolicyHalfUp
}

// Apply rounds a final total under the policy.
func (p RoundingPolicy) Apply(d decimal.Decimal) decimal.Decimal {
	if p == PolicyFloor1 {
		f, _ := d.Float64()
		return decimal.NewFromFloat(math.Floor(f*10) / 10)
	}
	return Round2(d)
}

// Round2 rounds to two decimals, half away from zero. Currency arithmetic
// rounds here at the point of display or persistence, not at intermediate
// steps.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
