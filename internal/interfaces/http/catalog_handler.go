package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/invoice-gateway/internal/application/billing"
	"github.com/jhoicas/invoice-gateway/pkg/logger"
)

// CatalogHandler búsqueda de clientes y productos (protegido).
type CatalogHandler struct {
	uc  *billing.CatalogUseCase
	log *logger.Logger
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *billing.CatalogUseCase, log *logger.Logger) *CatalogHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &CatalogHandler{uc: uc, log: log}
}

// SearchCustomers godoc
// @Summary      Buscar clientes
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        query     query  string  false  "Texto a buscar"
// @Param        per_page  query  int     false  "Máximo de resultados"  default(20)
// @Success      200       {array}   dto.CustomerResponse
// @Router       /api/customers/search [get]
func (h *CatalogHandler) SearchCustomers(c *fiber.Ctx) error {
	out, err := h.uc.SearchCustomers(c.UserContext(), c.Query("query"), c.QueryInt("per_page", 0))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// SearchProducts godoc
// @Summary      Buscar productos
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        query     query  string  false  "Texto a buscar"
// @Param        per_page  query  int     false  "Máximo de resultados"  default(20)
// @Success      200       {array}   dto.ProductResponse
// @Router       /api/products/search [get]
func (h *CatalogHandler) SearchProducts(c *fiber.Ctx) error {
	out, err := h.uc.SearchProducts(c.UserContext(), c.Query("query"), c.QueryInt("per_page", 0))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
