package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/invoice-gateway/internal/application/billing"
	"github.com/jhoicas/invoice-gateway/internal/infrastructure/cache"
	"github.com/jhoicas/invoice-gateway/internal/infrastructure/invoicingapi"
	"github.com/jhoicas/invoice-gateway/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/invoice-gateway/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/invoice-gateway/internal/interfaces/http"
	"github.com/jhoicas/invoice-gateway/pkg/config"
	"github.com/jhoicas/invoice-gateway/pkg/logger"
	"github.com/jhoicas/invoice-gateway/pkg/money"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("invoicing_api", cfg.Invoicing.BaseURL).
		Str("cache", cfg.Cache.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}
	if cfg.Invoicing.Token == "" {
		log.Fatal().Msg("INVOICING_API_TOKEN es obligatorio")
	}

	m := metrics.New(metrics.Config{ServiceName: cfg.App.Name, Environment: cfg.App.Env})

	store, err := cache.New(cfg.Cache, cfg.App.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("caché")
	}
	defer store.Close()
	readCache := m.InstrumentCache(store)

	// Cliente de la API de facturación con transport instrumentado
	api := invoicingapi.New(cfg.Invoicing.BaseURL, cfg.Invoicing.Token, cfg.Invoicing.Timeout, log,
		invoicingapi.WithHTTPClient(&http.Client{
			Timeout:   cfg.Invoicing.Timeout,
			Transport: m.Transport(nil),
		}))

	formatter := money.NewFormatter(cfg.Money.Locale)
	invoiceUC := billing.NewInvoiceUseCase(api, readCache, cfg.Cache.TTL, formatter, log)
	catalogUC := billing.NewCatalogUseCase(api, readCache, cfg.Cache.TTL, formatter, log)

	// PDF: representación imprimible de la factura
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name, formatter)
	invoicePDFUC := billing.NewPDFUseCase(api, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.Invoicing.Timeout + time.Second*5,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestID())
	app.Use(httpRouter.RequestLogger(log, m))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Invoice Gateway API",
	}))

	app.Get("/health", httpRouter.HealthHandler(cfg.App.Name, store))
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		InvoiceUC:  invoiceUC,
		CatalogUC:  catalogUC,
		InvoicePDF: invoicePDFUC,
		JWTSecret:  cfg.JWT.Secret,
		Log:        log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
