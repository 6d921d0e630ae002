package cart

import (
	"github.com/shopspring/decimal"
)

// Line is one cart entry. UnitPrice is captured at the moment the line is
// added and is immutable once the order is placed; within the live cart only
// the quantity changes.
type Line struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	SizeLabel string          `json:"sizeLabel,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Qty       int             `json:"qty"`
}

// LineTotal returns unit price times quantity for the line.
func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// DisplayLine is a normalised line ready for rendering on any surface.
type DisplayLine struct {
	Title     string          `json:"title"`
	SizeLabel string          `json:"sizeLabel,omitempty"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// Subtotal reduces the lines into Σ(unitPrice × qty). Quantities are
// validated when lines are added, never here, so the sum cannot go negative.
func Subtotal(lines []Line) decimal.Decimal {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}
	return subtotal
}

// Normalize prepares the display-ready item list.
func Normalize(lines []Line) []DisplayLine {
	out := make([]DisplayLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, DisplayLine{
			Title:     l.Title,
			SizeLabel: l.SizeLabel,
			Qty:       l.Qty,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal(),
		})
	}
	return out
}
