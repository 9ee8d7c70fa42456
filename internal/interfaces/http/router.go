package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/invoice-gateway/internal/application/billing"
	"github.com/jhoicas/invoice-gateway/pkg/jwt"
	"github.com/jhoicas/invoice-gateway/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InvoiceUC  *billing.InvoiceUseCase
	CatalogUC  *billing.CatalogUseCase
	InvoicePDF *billing.PDFUseCase
	JWTSecret  string
	Log        *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	// Rutas protegidas (requieren Bearer Token)
	protected := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	canWrite := RequireRole(jwt.RoleAdmin, jwt.RoleEditor)

	// Invoices
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.InvoicePDF, deps.Log)
	invoices.Get("/", invoiceHandler.List)
	invoices.Post("/", canWrite, invoiceHandler.Create)
	invoices.Post("/reconcile", invoiceHandler.Reconcile)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id", canWrite, invoiceHandler.Update)
	invoices.Delete("/:id", canWrite, invoiceHandler.Delete)
	invoices.Post("/:id/finalize", canWrite, invoiceHandler.Finalize)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)

	// Catálogo (selectores de cliente y producto)
	catalogHandler := NewCatalogHandler(deps.CatalogUC, deps.Log)
	protected.Get("/customers/search", catalogHandler.SearchCustomers)
	protected.Get("/products/search", catalogHandler.SearchProducts)
}
