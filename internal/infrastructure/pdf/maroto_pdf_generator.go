// Package pdf genera la representación gráfica de una factura.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Emisor              │  N° Factura + Fecha + Estado  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Nombre + dirección                                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | IVA | Total            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Impuestos / TOTAL                                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR de referencia + leyenda                          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appbilling "github.com/jhoicas/invoice-gateway/internal/application/billing"
	dombilling "github.com/jhoicas/invoice-gateway/internal/domain/billing"
	"github.com/jhoicas/invoice-gateway/internal/domain/entity"
	"github.com/jhoicas/invoice-gateway/pkg/money"
)

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// statusLabels etiqueta impresa de cada estado.
var statusLabels = map[string]string{
	entity.InvoiceStatusDraft:     "BORRADOR",
	entity.InvoiceStatusFinalized: "FINALIZADA",
	entity.InvoiceStatusOverdue:   "VENCIDA",
	entity.InvoiceStatusPaid:      "PAGADA",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	issuer string
	money  *money.Formatter
	now    func() time.Time
}

// NewMarotoPDFGenerator construye el generador. issuer aparece en la cabecera.
func NewMarotoPDFGenerator(issuer string, formatter *money.Formatter) *MarotoPDFGenerator {
	if formatter == nil {
		formatter = money.NewFormatter("")
	}
	return &MarotoPDFGenerator{issuer: issuer, money: formatter, now: time.Now}
}

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, invoice *entity.Invoice) ([]byte, error) {
	if invoice == nil {
		return nil, fmt.Errorf("pdf: factura nil")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Factura %d", invoice.ID), true).
		WithAuthor(g.issuer, true).
		Build()

	m := maroto.New(cfg)
	status := dombilling.Status(invoice, g.now())

	m.AddRows(g.headerRow(invoice, status))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(invoice.Customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.tableLineRows(invoice.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(invoice.Lines))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(g.footerRows(invoice)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: emisor (izq) y N° factura + fechas + estado (der).
func (g *MarotoPDFGenerator) headerRow(invoice *entity.Invoice, status string) core.Row {
	statusColor := colorGray
	if status == entity.InvoiceStatusOverdue {
		statusColor = colorAlert
	}
	return row.New(24).Add(
		col.New(7).Add(
			text.New(nonEmpty(g.issuer, "—"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New("FACTURA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("N.º %d", invoice.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6,
			}),
			text.New("Fecha: "+displayDate(invoice.Date), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
			text.New("Vencimiento: "+displayDate(invoice.Deadline), props.Text{
				Size: 8, Align: align.Right, Top: 17, Color: colorGray,
			}),
			text.New(statusLabels[status], props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 21, Color: statusColor,
			}),
		),
	)
}

// customerRow: datos del cliente.
func customerRow(customer *entity.Customer) core.Row {
	var address, place string
	if customer != nil {
		address = customer.Address
		place = strings.TrimSpace(strings.Join(nonBlank(customer.Zip, customer.City, customer.Country), " "))
	}
	return row.New(18).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(customer.FullName(), "Sin cliente"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("%s   |   %s", nonEmpty(address, "—"), nonEmpty(place, "—")),
				props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("Precio unit.", 2, align.Right),
		h("IVA", 1, align.Center),
		h("Total", 3, align.Right),
	)
}

// tableLineRows: una fila por línea de factura.
func (g *MarotoPDFGenerator) tableLineRows(lines []entity.InvoiceLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", l.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				nonEmpty(l.Label, "—"),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				g.money.Format(l.Price),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				nonEmpty(l.VATRate, "—"),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(3).Add(text.New(
				g.money.Format(dombilling.LineTotal(l)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func (g *MarotoPDFGenerator) totalsRow(lines []entity.InvoiceLine) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grand := func(s string, right float64) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: right, Top: 6,
		})
	}

	return row.New(16).Add(
		col.New(6),
		col.New(3).Add(
			label("Impuestos:"),
			grand("TOTAL:", 2),
		),
		col.New(3).Add(
			value(g.money.Format(dombilling.InvoiceTaxTotal(lines))),
			grand(g.money.Format(dombilling.InvoiceTotal(lines)), 1),
		),
	)
}

// footerRows: QR con la referencia de la factura y leyenda.
func (g *MarotoPDFGenerator) footerRows(invoice *entity.Invoice) []core.Row {
	ref := fmt.Sprintf("invoice:%d|date:%s|total:%s",
		invoice.ID, invoice.Date, dombilling.InvoiceTotal(invoice.Lines).StringFixed(2))

	return []core.Row{
		row.New(3),
		row.New(36).Add(
			col.New(3).Add(code.NewQr(ref, props.Rect{Percent: 95, Center: true})),
			col.New(9).Add(
				text.New("Referencia de la factura", props.Text{
					Style: fontstyle.Bold, Size: 8, Top: 4, Left: 3, Color: colorPrimary,
				}),
				text.New(ref, props.Text{Size: 7, Top: 10, Left: 3, Color: colorGray}),
				text.New("Importes en euros. Conserve este documento como justificante.", props.Text{
					Size: 6.5, Top: 20, Left: 3, Color: colorGray,
				}),
			),
		),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

func nonBlank(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// displayDate convierte YYYY-MM-DD en DD/MM/YYYY. Vacío devuelve un guion; ilegible, el texto tal cual.
func displayDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "—"
	}
	t, err := time.Parse(entity.DateLayout, s)
	if err != nil {
		return s
	}
	return t.Format("02/01/2006")
}
