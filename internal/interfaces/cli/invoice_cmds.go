package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jhoicas/invoice-gateway/internal/application/dto"
	"github.com/jhoicas/invoice-gateway/internal/domain"
)

func newListCmd(services servicesFunc) *cobra.Command {
	var page dto.PageRequest
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lista facturas con totales y estado",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, done, err := services(cmd)
			if err != nil {
				return err
			}
			defer done()

			out, err := svc.Invoices.List(cmd.Context(), page)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().IntVar(&page.Page, "page", 1, "página")
	cmd.Flags().IntVar(&page.PerPage, "per-page", 100, "facturas por página (máx. 100)")
	return cmd
}

func newShowCmd(services servicesFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Muestra una factura",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, done, err := services(cmd)
			if err != nil {
				return err
			}
			defer done()

			out, err := svc.Invoices.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newFinalizeCmd(services servicesFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "finalize <id>",
		Short: "Finaliza una factura (ya no se podrá editar)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, done, err := services(cmd)
			if err != nil {
				return err
			}
			defer done()

			out, err := svc.Invoices.Finalize(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newDeleteCmd(services servicesFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Borra una factura no finalizada",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, done, err := services(cmd)
			if err != nil {
				return err
			}
			defer done()

			if err := svc.Invoices.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"deleted": id})
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id de factura %q", domain.ErrInvalidInput, s)
	}
	return id, nil
}
