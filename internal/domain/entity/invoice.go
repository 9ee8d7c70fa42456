package entity

import "github.com/shopspring/decimal"

// Estados visibles de una factura (las "pills" del listado).
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusFinalized = "finalized"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusPaid      = "paid"
)

// DateLayout formato de fecha que usa la API de facturación (date y deadline).
const DateLayout = "2006-01-02"

// Invoice representa una factura tal como la devuelve la API remota.
// Date y Deadline van en formato YYYY-MM-DD y pueden venir vacíos.
type Invoice struct {
	ID         int64
	CustomerID int64
	Customer   *Customer
	Date       string
	Deadline   string
	Paid       bool
	Finalized  bool
	Total      decimal.Decimal // total calculado por la API (informativo)
	Tax        decimal.Decimal
	Lines      []InvoiceLine
}

// Editable indica si la factura admite cambios de líneas o cabecera.
func (i *Invoice) Editable() bool {
	return !i.Paid && !i.Finalized
}

// InvoiceLine representa una línea de producto/servicio de la factura.
// ID == 0 significa que la línea todavía no existe en el servidor;
// ProductID == 0 significa que no tiene producto asociado.
type InvoiceLine struct {
	ID        int64
	InvoiceID int64
	ProductID int64
	Label     string
	Quantity  int
	Unit      string
	VATRate   string
	Price     decimal.Decimal
	Tax       decimal.Decimal
}

// InvoiceDraft cuerpo de creación/actualización enviado a la API remota.
// ID es cero al crear.
type InvoiceDraft struct {
	ID              int64
	CustomerID      int64
	Date            string
	Deadline        string
	Paid            bool
	Finalized       bool
	LinesAttributes []LinePatch
}
