package coupon

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Coupon is one promotional code. IsVisible only controls whether the code is
// listed to customers; a hidden code still applies when typed explicitly.
type Coupon struct {
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	IsVisible       bool            `json:"isVisible"`
}

// Registry resolves user-entered codes against the loaded coupon set.
// Lookups are case-insensitive exact matches.
type Registry struct {
	byCode map[string]Coupon
}

// NewRegistry indexes the provided coupons. Codes are normalised to lower
// case; entries with an empty code or a percent outside 0–100 are dropped.
// A later duplicate of the same code wins.
func NewRegistry(coupons []Coupon) Registry {
	byCode := make(map[string]Coupon, len(coupons))
	hundred := decimal.NewFromInt(100)
	for _, c := range coupons {
		key := normalize(c.Code)
		if key == "" {
			continue
		}
		if c.DiscountPercent.IsNegative() || c.DiscountPercent.GreaterThan(hundred) {
			continue
		}
		byCode[key] = c
	}
	return Registry{byCode: byCode}
}

// Resolve returns the discount percent for a code, or zero when the code is
// unknown. An unknown code is not an error; checkout proceeds undiscounted.
func (r Registry) Resolve(code string) decimal.Decimal {
	c, ok := r.byCode[normalize(code)]
	if !ok {
		return decimal.Zero
	}
	return c.DiscountPercent
}

// Lookup returns the full coupon record for a code.
func (r Registry) Lookup(code string) (Coupon, bool) {
	c, ok := r.byCode[normalize(code)]
	return c, ok
}

// Visible returns the coupons that may be shown in customer-facing listings.
func (r Registry) Visible() []Coupon {
	out := make([]Coupon, 0, len(r.byCode))
	for _, c := range r.byCode {
		if c.IsVisible {
			out = append(out, c)
		}
	}
	return out
}

// Len reports the number of indexed coupons.
func (r Registry) Len() int { return len(r.byCode) }

func normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
