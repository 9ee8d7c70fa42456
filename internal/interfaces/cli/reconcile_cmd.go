package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/invoice-gateway/internal/application/dto"
	dombilling "github.com/jhoicas/invoice-gateway/internal/domain/billing"
)

// newReconcileCmd calcula invoice_lines_attributes a partir de dos archivos JSON
// con arrays de líneas. No necesita configuración ni red.
func newReconcileCmd() *cobra.Command {
	var existingPath, editedPath string
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Calcula las instrucciones de líneas entre dos listas (sin enviar nada)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			existing, err := readLines(existingPath)
			if err != nil {
				return err
			}
			edited, err := readLines(editedPath)
			if err != nil {
				return err
			}
			patches := dombilling.ReconcileLines(dto.LinesToEntity(existing), dto.LinesToEntity(edited))
			return printJSON(cmd.OutOrStdout(), dto.NewReconcileResponse(patches))
		},
	}
	cmd.Flags().StringVar(&existingPath, "existing", "", "JSON con las líneas persistidas (con id)")
	cmd.Flags().StringVar(&editedPath, "edited", "", "JSON con las líneas editadas")
	_ = cmd.MarkFlagRequired("existing")
	_ = cmd.MarkFlagRequired("edited")
	return cmd
}

func readLines(path string) ([]dto.InvoiceLineRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer %s: %w", path, err)
	}
	var lines []dto.InvoiceLineRequest
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("%s no es un array JSON de líneas: %w", path, err)
	}
	return lines, nil
}
