package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/jhoicas/invoice-gateway/internal/application/billing"
	"github.com/jhoicas/invoice-gateway/internal/infrastructure/cache"
	"github.com/jhoicas/invoice-gateway/internal/infrastructure/invoicingapi"
	"github.com/jhoicas/invoice-gateway/internal/interfaces/cli"
	"github.com/jhoicas/invoice-gateway/pkg/config"
	"github.com/jhoicas/invoice-gateway/pkg/logger"
	"github.com/jhoicas/invoice-gateway/pkg/money"
)

func main() {
	root := cli.NewRootCmd(buildServices)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildServices(configPath string) (*cli.Services, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Out: os.Stderr})

	store, err := cache.New(cfg.Cache, cfg.App.Name)
	if err != nil {
		return nil, err
	}

	api := invoicingapi.New(cfg.Invoicing.BaseURL, cfg.Invoicing.Token, cfg.Invoicing.Timeout, log,
		invoicingapi.WithHTTPClient(&http.Client{Timeout: cfg.Invoicing.Timeout}))
	formatter := money.NewFormatter(cfg.Money.Locale)

	return &cli.Services{
		Invoices: billing.NewInvoiceUseCase(api, store, cfg.Cache.TTL, formatter, log),
		Catalog:  billing.NewCatalogUseCase(api, store, cfg.Cache.TTL, formatter, log),
		JWT:      cfg.JWT,
		Close:    store.Close,
	}, nil
}
