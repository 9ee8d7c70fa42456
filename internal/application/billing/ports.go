package billing

import (
	"context"
	"time"

	"github.com/jhoicas/invoice-gateway/internal/domain/entity"
)

// InvoiceAPI operaciones de facturas contra la API REST remota.
// Las implementaciones traducen los códigos HTTP a los errores de dominio
// (domain.ErrNotFound, domain.ErrInvalidInput, domain.ErrUnauthorized).
type InvoiceAPI interface {
	ListInvoices(ctx context.Context, page, perPage int) (*entity.InvoicePage, error)
	GetInvoice(ctx context.Context, id int64) (*entity.Invoice, error)
	CreateInvoice(ctx context.Context, draft entity.InvoiceDraft) (*entity.Invoice, error)
	UpdateInvoice(ctx context.Context, draft entity.InvoiceDraft) (*entity.Invoice, error)
	DeleteInvoice(ctx context.Context, id int64) error
}

// CatalogAPI búsqueda de clientes y productos en la API remota.
type CatalogAPI interface {
	SearchCustomers(ctx context.Context, query string, perPage int) ([]entity.Customer, error)
	SearchProducts(ctx context.Context, query string, perPage int) ([]entity.Product, error)
}

// Cache almacén clave/valor con expiración para las lecturas.
// Get devuelve false si la clave no existe o expiró; dst recibe el valor decodificado.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// InvoicePDFGenerator genera la representación gráfica (PDF) de una factura.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, inv *entity.Invoice) ([]byte, error)
}
