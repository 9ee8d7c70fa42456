package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/invoice-gateway/internal/domain/entity"
)

// InvoiceLineRequest línea de factura en los cuerpos de creación, edición y reconciliación.
// ID solo tiene sentido en las líneas existentes de POST /api/invoices/reconcile.
type InvoiceLineRequest struct {
	ID        int64           `json:"id,omitempty"`
	ProductID int64           `json:"product_id"`
	Label     string          `json:"label"`
	Quantity  int             `json:"quantity"`
	Unit      string          `json:"unit,omitempty"`
	VATRate   string          `json:"vat_rate,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Tax       decimal.Decimal `json:"tax"`
}

// ToEntity convierte la línea de petición a entidad.
func (r InvoiceLineRequest) ToEntity() entity.InvoiceLine {
	return entity.InvoiceLine{
		ID:        r.ID,
		ProductID: r.ProductID,
		Label:     r.Label,
		Quantity:  r.Quantity,
		Unit:      r.Unit,
		VATRate:   r.VATRate,
		Price:     r.Price,
		Tax:       r.Tax,
	}
}

// LinesToEntity convierte una lista de líneas de petición.
func LinesToEntity(in []InvoiceLineRequest) []entity.InvoiceLine {
	out := make([]entity.InvoiceLine, 0, len(in))
	for _, l := range in {
		out = append(out, l.ToEntity())
	}
	return out
}

// CreateInvoiceRequest body para POST /api/invoices.
// Date vacío = hoy.
type CreateInvoiceRequest struct {
	CustomerID int64                `json:"customer_id"`
	Date       string               `json:"date,omitempty"`
	Deadline   string               `json:"deadline,omitempty"`
	Paid       bool                 `json:"paid"`
	Finalized  bool                 `json:"finalized"`
	Lines      []InvoiceLineRequest `json:"invoice_lines"`
}

// UpdateInvoiceRequest body para PUT /api/invoices/:id.
// Los campos nil conservan el valor actual. Lines nil deja las líneas como están;
// Lines vacío ([]) borra todas las líneas existentes.
type UpdateInvoiceRequest struct {
	CustomerID *int64               `json:"customer_id,omitempty"`
	Date       *string              `json:"date,omitempty"`
	Deadline   *string              `json:"deadline,omitempty"`
	Paid       *bool                `json:"paid,omitempty"`
	Finalized  *bool                `json:"finalized,omitempty"`
	Lines      []InvoiceLineRequest `json:"invoice_lines"`
}

// InvoiceResponse factura con líneas, importes formateados y estado calculado.
type InvoiceResponse struct {
	ID             int64                 `json:"id"`
	CustomerID     int64                 `json:"customer_id"`
	CustomerName   string                `json:"customer_name,omitempty"`
	Customer       *CustomerResponse     `json:"customer,omitempty"`
	Date           string                `json:"date"`
	Deadline       string                `json:"deadline"`
	Paid           bool                  `json:"paid"`
	Finalized      bool                  `json:"finalized"`
	Overdue        bool                  `json:"overdue"`
	Status         string                `json:"status"` // draft|finalized|overdue|paid
	Total          decimal.Decimal       `json:"total"`
	Tax            decimal.Decimal       `json:"tax"`
	TotalFormatted string                `json:"total_formatted"`
	TaxFormatted   string                `json:"tax_formatted"`
	Lines          []InvoiceLineResponse `json:"invoice_lines"`
}

// InvoiceLineResponse línea en la respuesta.
type InvoiceLineResponse struct {
	ID             int64           `json:"id"`
	ProductID      int64           `json:"product_id"`
	Label          string          `json:"label"`
	Quantity       int             `json:"quantity"`
	Unit           string          `json:"unit,omitempty"`
	VATRate        string          `json:"vat_rate,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Tax            decimal.Decimal `json:"tax"`
	PriceFormatted string          `json:"price_formatted"`
	TotalFormatted string          `json:"total_formatted"`
}

// InvoiceListResponse página de facturas para GET /api/invoices.
type InvoiceListResponse struct {
	Invoices   []InvoiceResponse `json:"invoices"`
	Pagination PageResponse      `json:"pagination"`
}

// ReconcileRequest body para POST /api/invoices/reconcile (simulación sin enviar nada).
type ReconcileRequest struct {
	Existing []InvoiceLineRequest `json:"existing"`
	Edited   []InvoiceLineRequest `json:"edited"`
}

// LinePatchResponse una entrada de invoice_lines_attributes tal como se enviaría a la API.
// Los punteros permiten omitir los campos que no aplican a cada tipo de instrucción.
type LinePatchResponse struct {
	ID        *int64           `json:"id,omitempty"`
	ProductID *int64           `json:"product_id,omitempty"`
	Label     *string          `json:"label,omitempty"`
	Quantity  *int             `json:"quantity,omitempty"`
	Unit      *string          `json:"unit,omitempty"`
	VATRate   *string          `json:"vat_rate,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Tax       *decimal.Decimal `json:"tax,omitempty"`
	Destroy   bool             `json:"_destroy,omitempty"`
}

// NewLinePatchResponse proyecta una instrucción de dominio al formato de salida.
func NewLinePatchResponse(p entity.LinePatch) LinePatchResponse {
	switch p.Kind {
	case entity.PatchUpdate:
		return LinePatchResponse{ID: &p.ID, Quantity: &p.Quantity}
	case entity.PatchDestroy:
		return LinePatchResponse{ID: &p.ID, Destroy: true}
	default:
		return LinePatchResponse{
			ProductID: &p.ProductID,
			Label:     &p.Label,
			Quantity:  &p.Quantity,
			Unit:      &p.Unit,
			VATRate:   &p.VATRate,
			Price:     &p.Price,
			Tax:       &p.Tax,
		}
	}
}

// ReconcileResponse instrucciones calculadas, en orden (updates/inserts y luego destroys).
type ReconcileResponse struct {
	Attributes []LinePatchResponse `json:"invoice_lines_attributes"`
	Updates    int                 `json:"updates"`
	Inserts    int                 `json:"inserts"`
	Destroys   int                 `json:"destroys"`
}

// NewReconcileResponse construye la respuesta contando cada tipo de instrucción.
func NewReconcileResponse(patches []entity.LinePatch) *ReconcileResponse {
	out := &ReconcileResponse{Attributes: make([]LinePatchResponse, 0, len(patches))}
	for _, p := range patches {
		out.Attributes = append(out.Attributes, NewLinePatchResponse(p))
		switch p.Kind {
		case entity.PatchUpdate:
			out.Updates++
		case entity.PatchInsert:
			out.Inserts++
		case entity.PatchDestroy:
			out.Destroys++
		}
	}
	return out
}

// UpdatePlan resultado de una edición sin enviar (--dry-run de la CLI).
type UpdatePlan struct {
	InvoiceID int64              `json:"invoice_id"`
	Changes   *ReconcileResponse `json:"changes"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	FullName    string `json:"full_name"`
	Address     string `json:"address,omitempty"`
	Zip         string `json:"zip_code,omitempty"`
	City        string `json:"city,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// NewCustomerResponse proyecta un cliente de dominio; nil devuelve nil.
func NewCustomerResponse(c *entity.Customer) *CustomerResponse {
	if c == nil {
		return nil
	}
	return &CustomerResponse{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		FullName:    c.FullName(),
		Address:     c.Address,
		Zip:         c.Zip,
		City:        c.City,
		Country:     c.Country,
		CountryCode: c.CountryCode,
	}
}

// ProductResponse producto del catálogo.
type ProductResponse struct {
	ID                  int64           `json:"id"`
	Label               string          `json:"label"`
	Unit                string          `json:"unit,omitempty"`
	VATRate             string          `json:"vat_rate,omitempty"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	UnitPriceWithoutTax decimal.Decimal `json:"unit_price_without_tax"`
	UnitTax             decimal.Decimal `json:"unit_tax"`
	UnitPriceFormatted  string          `json:"unit_price_formatted"`
}
