package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/invoice-gateway/internal/application/dto"
	"github.com/jhoicas/invoice-gateway/internal/domain/entity"
	"github.com/jhoicas/invoice-gateway/pkg/logger"
	"github.com/jhoicas/invoice-gateway/pkg/money"
)

const (
	catalogPerPage     = 20
	maxCatalogPerPage  = 100
	customerSearchPref = "customers:"
	productSearchPref  = "products:"
)

// CatalogUseCase búsqueda de clientes y productos para los selectores de la factura.
type CatalogUseCase struct {
	api   CatalogAPI
	rt    *readThrough
	money *money.Formatter
}

// NewCatalogUseCase construye el caso de uso. cache puede ser nil.
func NewCatalogUseCase(api CatalogAPI, cache Cache, ttl time.Duration, formatter *money.Formatter, log *logger.Logger) *CatalogUseCase {
	if formatter == nil {
		formatter = money.NewFormatter("")
	}
	return &CatalogUseCase{api: api, rt: newReadThrough(cache, ttl, log), money: formatter}
}

// SearchCustomers busca clientes por texto libre. Una consulta vacía devuelve los primeros.
func (uc *CatalogUseCase) SearchCustomers(ctx context.Context, query string, perPage int) ([]dto.CustomerResponse, error) {
	query, perPage = normalizeSearch(query, perPage)
	key := fmt.Sprintf("%s%d:%s", customerSearchPref, perPage, query)
	list, err := loadThrough(ctx, uc.rt, key, func(ctx context.Context) ([]entity.Customer, error) {
		return uc.api.SearchCustomers(ctx, query, perPage)
	})
	if err != nil {
		return nil, fmt.Errorf("buscar clientes: %w", err)
	}
	out := make([]dto.CustomerResponse, 0, len(list))
	for i := range list {
		out = append(out, *dto.NewCustomerResponse(&list[i]))
	}
	return out, nil
}

// SearchProducts busca productos por texto libre.
func (uc *CatalogUseCase) SearchProducts(ctx context.Context, query string, perPage int) ([]dto.ProductResponse, error) {
	query, perPage = normalizeSearch(query, perPage)
	key := fmt.Sprintf("%s%d:%s", productSearchPref, perPage, query)
	list, err := loadThrough(ctx, uc.rt, key, func(ctx context.Context) ([]entity.Product, error) {
		return uc.api.SearchProducts(ctx, query, perPage)
	})
	if err != nil {
		return nil, fmt.Errorf("buscar productos: %w", err)
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.ProductResponse{
			ID:                  p.ID,
			Label:               p.Label,
			Unit:                p.Unit,
			VATRate:             p.VATRate,
			UnitPrice:           p.UnitPrice,
			UnitPriceWithoutTax: p.UnitPriceWithoutTax,
			UnitTax:             p.UnitTax,
			UnitPriceFormatted:  uc.money.Format(p.UnitPrice),
		})
	}
	return out, nil
}

func normalizeSearch(query string, perPage int) (string, int) {
	query = strings.TrimSpace(query)
	if perPage <= 0 {
		perPage = catalogPerPage
	}
	if perPage > maxCatalogPerPage {
		perPage = maxCatalogPerPage
	}
	return query, perPage
}
