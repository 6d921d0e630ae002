package invoice

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mascotienda/backend-tienda/internal/delivery"
	"github.com/mascotienda/backend-tienda/internal/order"
	"github.com/mascotienda/backend-tienda/internal/pricing"
)

// Line is one invoice row.
type Line struct {
	Title     string          `json:"title"`
	SizeLabel string          `json:"sizeLabel,omitempty"`
	Qty       int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// Document is the invoice content. Total is always recomputed from the
// stored order fields rather than copied, so an invoice can be checked
// against the persisted record.
type Document struct {
	OrderID         string          `json:"orderId"`
	CustomerName    string          `json:"customerName"`
	IssuedAt        time.Time       `json:"issuedAt"`
	Currency        string          `json:"currency"`
	Lines           []Line          `json:"lines"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	DeliveryCost    decimal.Decimal `json:"deliveryCost"`
	Total           decimal.Decimal `json:"total"`
	AgencyNote      string          `json:"agencyNote,omitempty"`
}

// Renderer builds invoice documents. The same document feeds both
// transports: returned as JSON for browser-side assembly and rendered to
// HTML on the server, so the two paths cannot diverge in rounding.
type Renderer struct {
	Policy       pricing.RoundingPolicy
	Currency     string
	AgencyAdvice string
	Now          func() time.Time
}

// Build recomputes the invoice totals from the persisted fields.
func (r Renderer) Build(o order.Order) Document {
	lines := make([]Line, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, Line{
			Title:     item.Title,
			SizeLabel: item.SizeLabel,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
			LineTotal: item.TotalPrice,
		})
	}
	doc := Document{
		OrderID:         o.ID,
		CustomerName:    o.CustomerName,
		IssuedAt:        r.now(),
		Currency:        r.Currency,
		Lines:           lines,
		Subtotal:        o.TotalPrice,
		DiscountPercent: o.Discount,
		DiscountAmount:  o.DiscountAmount(),
		DeliveryCost:    o.DeliveryCost,
		Total:           o.DerivedTotal(r.Policy),
	}
	if o.Region == delivery.RegionProvince && r.AgencyAdvice != "" {
		doc.AgencyNote = fmt.Sprintf("Recargo de envío a cobrar en agencia (%s)", r.AgencyAdvice)
	}
	return doc
}

var htmlTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html lang="es">
<head><meta charset="utf-8"><title>Boleta {{.OrderID}}</title></head>
<body>
<h1>Boleta de venta</h1>
<p>Pedido: {{.OrderID}}</p>
<p>Cliente: {{.CustomerName}}</p>
<p>Fecha: {{.IssuedAt.Format "02/01/2006 15:04"}}</p>
<table>
<tr><th>Producto</th><th>Talla</th><th>Cant.</th><th>P. unit</th><th>Importe</th></tr>
{{range .Lines}}<tr><td>{{.Title}}</td><td>{{.SizeLabel}}</td><td>{{.Qty}}</td><td>{{$.Currency}} {{.UnitPrice.StringFixed 2}}</td><td>{{$.Currency}} {{.LineTotal.StringFixed 2}}</td></tr>
{{end}}</table>
<p>Subtotal: {{.Currency}} {{.Subtotal.StringFixed 2}}</p>
{{if not .DiscountAmount.IsZero}}<p>Descuento ({{.DiscountPercent.StringFixed 0}}%): -{{.Currency}} {{.DiscountAmount.StringFixed 2}}</p>{{end}}
<p>Delivery: {{.Currency}} {{.DeliveryCost.StringFixed 2}}</p>
{{if .AgencyNote}}<p>{{.AgencyNote}}</p>{{end}}
<p><strong>Total: {{.Currency}} {{.Total.StringFixed 2}}</strong></p>
</body>
</html>
`))

// HTML renders the server-side invoice document.
func (r Renderer) HTML(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("render invoice: %w", err)
	}
	return buf.Bytes(), nil
}

func (r Renderer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}
