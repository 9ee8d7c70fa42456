package invoicingapi

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/invoice-gateway/internal/domain/entity"
)

// ── Estructuras del protocolo REST de la API de facturación ──────────────────
// Los importes llegan como cadenas ("120.0") o null; decimal.Decimal acepta ambos.

type invoicePayload struct {
	ID         int64           `json:"id"`
	CustomerID *int64          `json:"customer_id"`
	Customer   *customer       `json:"customer"`
	Finalized  bool            `json:"finalized"`
	Paid       bool            `json:"paid"`
	Date       *string         `json:"date"`
	Deadline   *string         `json:"deadline"`
	Total      decimal.Decimal `json:"total"`
	Tax        decimal.Decimal `json:"tax"`
	Lines      []invoiceLine   `json:"invoice_lines"`
}

type invoiceLine struct {
	ID        int64           `json:"id"`
	InvoiceID int64           `json:"invoice_id"`
	ProductID *int64          `json:"product_id"`
	Label     string          `json:"label"`
	Quantity  int             `json:"quantity"`
	Unit      string          `json:"unit"`
	VATRate   string          `json:"vat_rate"`
	Price     decimal.Decimal `json:"price"`
	Tax       decimal.Decimal `json:"tax"`
}

type customer struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Address     string `json:"address"`
	Zip         string `json:"zip_code"`
	City        string `json:"city"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

type product struct {
	ID                  int64           `json:"id"`
	Label               string          `json:"label"`
	VATRate             string          `json:"vat_rate"`
	Unit                string          `json:"unit"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	UnitPriceWithoutTax decimal.Decimal `json:"unit_price_without_tax"`
	UnitTax             decimal.Decimal `json:"unit_tax"`
}

type pagination struct {
	Page         int `json:"page"`
	PageSize     int `json:"page_size"`
	TotalPages   int `json:"total_pages"`
	TotalEntries int `json:"total_entries"`
}

type invoiceListResponse struct {
	Invoices   []invoicePayload `json:"invoices"`
	Pagination pagination       `json:"pagination"`
}

type customerSearchResponse struct {
	Customers []customer `json:"customers"`
}

type productSearchResponse struct {
	Products []product `json:"products"`
}

// invoiceEnvelope cuerpo de POST /invoices y PUT /invoices/{id}.
type invoiceEnvelope struct {
	Invoice invoiceDraft `json:"invoice"`
}

type invoiceDraft struct {
	ID                     int64            `json:"id,omitempty"`
	CustomerID             int64            `json:"customer_id"`
	Date                   string           `json:"date,omitempty"`
	Deadline               *string          `json:"deadline"`
	Paid                   bool             `json:"paid"`
	Finalized              bool             `json:"finalized"`
	InvoiceLinesAttributes []lineAttributes `json:"invoice_lines_attributes,omitempty"`
}

// lineAttributes una entrada de invoice_lines_attributes; cada tipo de
// instrucción solo serializa sus campos.
type lineAttributes struct {
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

// ── Conversión protocolo ↔ dominio ───────────────────────────────────────────

func (p invoicePayload) toEntity() *entity.Invoice {
	inv := &entity.Invoice{
		ID:        p.ID,
		Finalized: p.Finalized,
		Paid:      p.Paid,
		Date:      deref(p.Date),
		Deadline:  deref(p.Deadline),
		Total:     p.Total,
		Tax:       p.Tax,
		Lines:     make([]entity.InvoiceLine, 0, len(p.Lines)),
	}
	if p.CustomerID != nil {
		inv.CustomerID = *p.CustomerID
	}
	if p.Customer != nil {
		c := p.Customer.toEntity()
		inv.Customer = &c
		if inv.CustomerID == 0 {
			inv.CustomerID = c.ID
		}
	}
	for _, l := range p.Lines {
		line := entity.InvoiceLine{
			ID:        l.ID,
			InvoiceID: l.InvoiceID,
			Label:     l.Label,
			Quantity:  l.Quantity,
			Unit:      l.Unit,
			VATRate:   l.VATRate,
			Price:     l.Price,
			Tax:       l.Tax,
		}
		if l.ProductID != nil {
			line.ProductID = *l.ProductID
		}
		inv.Lines = append(inv.Lines, line)
	}
	return inv
}

func (c customer) toEntity() entity.Customer {
	return entity.Customer{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Address:     c.Address,
		Zip:         c.Zip,
		City:        c.City,
		Country:     c.Country,
		CountryCode: c.CountryCode,
	}
}

func (p product) toEntity() entity.Product {
	return entity.Product{
		ID:                  p.ID,
		Label:               p.Label,
		VATRate:             p.VATRate,
		Unit:                p.Unit,
		UnitPrice:           p.UnitPrice,
		UnitPriceWithoutTax: p.UnitPriceWithoutTax,
		UnitTax:             p.UnitTax,
	}
}

func newInvoiceEnvelope(d entity.InvoiceDraft) invoiceEnvelope {
	out := invoiceDraft{
		ID:         d.ID,
		CustomerID: d.CustomerID,
		Date:       d.Date,
		Paid:       d.Paid,
		Finalized:  d.Finalized,
	}
	if d.Deadline != "" {
		deadline := d.Deadline
		out.Deadline = &deadline
	}
	for _, p := range d.LinesAttributes {
		out.InvoiceLinesAttributes = append(out.InvoiceLinesAttributes, newLineAttributes(p))
	}
	return invoiceEnvelope{Invoice: out}
}

func newLineAttributes(p entity.LinePatch) lineAttributes {
	switch p.Kind {
	case entity.PatchUpdate:
		return lineAttributes{ID: &p.ID, Quantity: &p.Quantity}
	case entity.PatchDestroy:
		return lineAttributes{ID: &p.ID, Destroy: true}
	default:
		a := lineAttributes{
			Label:    &p.Label,
			Quantity: &p.Quantity,
			Price:    &p.Price,
			Tax:      &p.Tax,
		}
		if p.ProductID != 0 {
			a.ProductID = &p.ProductID
		}
		if p.Unit != "" {
			a.Unit = &p.Unit
		}
		if p.VATRate != "" {
			a.VATRate = &p.VATRate
		}
		return a
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
