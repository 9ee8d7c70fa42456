package billing

import (
	"strings"
	"time"

	"github.com/jhoicas/invoice-gateway/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LineTotal precio × cantidad de una línea.
func LineTotal(line entity.InvoiceLine) decimal.Decimal {
	return line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
}

// LineTaxTotal impuesto × cantidad de una línea.
func LineTaxTotal(line entity.InvoiceLine) decimal.Decimal {
	return line.Tax.Mul(decimal.NewFromInt(int64(line.Quantity)))
}

// InvoiceTotal Σ precio × cantidad.
func InvoiceTotal(lines []entity.InvoiceLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineTotal(l))
	}
	return total
}

// InvoiceTaxTotal Σ impuesto × cantidad.
func InvoiceTaxTotal(lines []entity.InvoiceLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineTaxTotal(l))
	}
	return total
}

// IsOverdue indica si now es estrictamente posterior a deadline.
// Si date o deadline están vacíos la factura no se considera vencida.
// deadline se interpreta como las 00:00 UTC del día indicado; una fecha
// ilegible tampoco cuenta como vencida.
func IsOverdue(now time.Time, date, deadline string) bool {
	date = strings.TrimSpace(date)
	deadline = strings.TrimSpace(deadline)
	if date == "" || deadline == "" {
		return false
	}
	d, err := time.Parse(entity.DateLayout, deadline)
	if err != nil {
		return false
	}
	return now.After(d)
}

// Status estado a mostrar: pagada > vencida > finalizada > borrador.
func Status(inv *entity.Invoice, now time.Time) string {
	switch {
	case inv.Paid:
		return entity.InvoiceStatusPaid
	case IsOverdue(now, inv.Date, inv.Deadline):
		return entity.InvoiceStatusOverdue
	case inv.Finalized:
		return entity.InvoiceStatusFinalized
	default:
		return entity.InvoiceStatusDraft
	}
}
