// Package cli expone los casos de uso de facturación como comandos de terminal.
//
//	invoicectl
//	├── list        [--page N] [--per-page N]
//	├── show        <id>
//	├── edit        <id> [--add pid:qty]... [--remove pid]... [--set pid:qty]... [--dry-run]
//	├── finalize    <id>
//	├── delete      <id>
//	├── token       --user u [--role r]     (JWT para la API HTTP)
//	└── reconcile   --existing f --edited f   (sin red)
//
// La salida es siempre JSON indentado en stdout; los logs van a stderr.
package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/jhoicas/invoice-gateway/internal/application/billing"
	"github.com/jhoicas/invoice-gateway/pkg/config"
)

// Services casos de uso que consumen los comandos.
type Services struct {
	Invoices *billing.InvoiceUseCase
	Catalog  *billing.CatalogUseCase
	JWT      config.JWTConfig
	// Close libera recursos (caché, conexiones). Puede ser nil.
	Close func() error
}

// Builder construye los servicios a partir de la ruta del archivo de configuración
// (vacía = variables de entorno y archivos por defecto).
type Builder func(configPath string) (*Services, error)

// NewRootCmd arma el árbol de comandos. build solo se invoca en los comandos que
// necesitan la API remota.
func NewRootCmd(build Builder) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "invoicectl",
		Short:         "Gestión de facturas contra la API de facturación",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "archivo de configuración (por defecto .env / config.* y variables de entorno)")

	services := func(cmd *cobra.Command) (*Services, func(), error) {
		svc, err := build(configPath)
		if err != nil {
			return nil, nil, err
		}
		done := func() {
			if svc.Close != nil {
				_ = svc.Close()
			}
		}
		return svc, done, nil
	}

	root.AddCommand(
		newListCmd(services),
		newShowCmd(services),
		newEditCmd(services),
		newFinalizeCmd(services),
		newDeleteCmd(services),
		newReconcileCmd(),
		newTokenCmd(services),
	)
	return root
}

type servicesFunc func(cmd *cobra.Command) (*Services, func(), error)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
