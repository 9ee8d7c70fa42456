package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/invoice-gateway/internal/application/billing"
	"github.com/jhoicas/invoice-gateway/internal/application/dto"
	"github.com/jhoicas/invoice-gateway/internal/domain"
	dombilling "github.com/jhoicas/invoice-gateway/internal/domain/billing"
	"github.com/jhoicas/invoice-gateway/internal/domain/entity"
)

// productLookupPerPage tamaño de la búsqueda de catálogo para resolver un product_id.
const productLookupPerPage = 100

// lineEdits operaciones pedidas por flags. Se aplican en orden: remove, set, add.
type lineEdits struct {
	add    []productQty
	remove []int64
	set    []productQty
}

type productQty struct {
	ProductID int64
	Quantity  int
}

func newEditCmd(services servicesFunc) *cobra.Command {
	var (
		adds, removes, sets []string
		dryRun              bool
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edita las líneas de una factura no pagada ni finalizada",
		Example: `  invoicectl edit 42 --add 10:2 --remove 7
  invoicectl edit 42 --set 10:5 --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			edits, err := parseEdits(adds, removes, sets)
			if err != nil {
				return err
			}
			svc, done, err := services(cmd)
			if err != nil {
				return err
			}
			defer done()

			current, err := svc.Invoices.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			lines, err := applyEdits(cmd.Context(), svc.Catalog, responseLines(current.Lines), edits)
			if err != nil {
				return err
			}
			req := dto.UpdateInvoiceRequest{Lines: requestLines(lines)}

			if dryRun {
				plan, err := svc.Invoices.PlanUpdate(cmd.Context(), id, req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), plan)
			}
			out, err := svc.Invoices.Update(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringArrayVar(&adds, "add", nil, "añade product_id:cantidad (suma si el producto ya está)")
	cmd.Flags().StringArrayVar(&removes, "remove", nil, "quita todas las líneas de product_id")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "fija product_id:cantidad en la primera línea del producto")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "muestra invoice_lines_attributes sin enviarlos")
	return cmd
}

func parseEdits(adds, removes, sets []string) (lineEdits, error) {
	var out lineEdits
	for _, s := range adds {
		pq, err := parseProductQty(s)
		if err != nil {
			return lineEdits{}, err
		}
		out.add = append(out.add, pq)
	}
	for _, s := range sets {
		pq, err := parseProductQty(s)
		if err != nil {
			return lineEdits{}, err
		}
		out.set = append(out.set, pq)
	}
	for _, s := range removes {
		pid, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil || pid <= 0 {
			return lineEdits{}, fmt.Errorf("%w: --remove %q no es un product_id", domain.ErrInvalidInput, s)
		}
		out.remove = append(out.remove, pid)
	}
	if len(out.add)+len(out.remove)+len(out.set) == 0 {
		return lineEdits{}, fmt.Errorf("%w: indique al menos un --add, --remove o --set", domain.ErrInvalidInput)
	}
	return out, nil
}

// parseProductQty acepta "pid:qty" o "pid" (cantidad 1).
func parseProductQty(s string) (productQty, error) {
	pidStr, qtyStr, hasQty := strings.Cut(strings.TrimSpace(s), ":")
	pid, err := strconv.ParseInt(pidStr, 10, 64)
	if err != nil || pid <= 0 {
		return productQty{}, fmt.Errorf("%w: %q no tiene formato product_id:cantidad", domain.ErrInvalidInput, s)
	}
	qty := 1
	if hasQty {
		qty, err = strconv.Atoi(qtyStr)
		if err != nil || qty <= 0 {
			return productQty{}, fmt.Errorf("%w: cantidad inválida en %q", domain.ErrInvalidInput, s)
		}
	}
	return productQty{ProductID: pid, Quantity: qty}, nil
}

// applyEdits parte de las líneas persistidas (sin identidad) y aplica las operaciones
// del formulario. Los productos nuevos se resuelven contra el catálogo.
func applyEdits(ctx context.Context, catalog *billing.CatalogUseCase, persisted []entity.InvoiceLine, edits lineEdits) ([]entity.InvoiceLine, error) {
	lines := dombilling.EditableLines(persisted)
	var err error
	for _, pid := range edits.remove {
		if lines, err = dombilling.RemoveProduct(lines, pid); err != nil {
			return nil, err
		}
	}
	for _, s := range edits.set {
		if lines, err = dombilling.SetLineQuantity(lines, s.ProductID, s.Quantity); err != nil {
			return nil, err
		}
	}

	var products map[int64]entity.Product
	for _, a := range edits.add {
		line, ok := lineForProduct(lines, a)
		if !ok {
			if products == nil {
				if products, err = catalogProducts(ctx, catalog); err != nil {
					return nil, err
				}
			}
			p, found := products[a.ProductID]
			if !found {
				return nil, fmt.Errorf("%w: producto %d no está en el catálogo", domain.ErrNotFound, a.ProductID)
			}
			line = dombilling.LineFromProduct(p, a.Quantity)
		}
		if lines, err = dombilling.AddLine(lines, line); err != nil {
			return nil, err
		}
	}
	return lines, nil
}

// lineForProduct reutiliza los datos de una línea ya presente del mismo producto.
func lineForProduct(lines []entity.InvoiceLine, a productQty) (entity.InvoiceLine, bool) {
	for _, l := range lines {
		if l.ProductID == a.ProductID {
			l.Quantity = a.Quantity
			return l, true
		}
	}
	return entity.InvoiceLine{}, false
}

func catalogProducts(ctx context.Context, catalog *billing.CatalogUseCase) (map[int64]entity.Product, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: catálogo no disponible", domain.ErrInvalidInput)
	}
	list, err := catalog.SearchProducts(ctx, "", productLookupPerPage)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]entity.Product, len(list))
	for _, p := range list {
		out[p.ID] = entity.Product{
			ID:                  p.ID,
			Label:               p.Label,
			Unit:                p.Unit,
			VATRate:             p.VATRate,
			UnitPrice:           p.UnitPrice,
			UnitPriceWithoutTax: p.UnitPriceWithoutTax,
			UnitTax:             p.UnitTax,
		}
	}
	return out, nil
}

func responseLines(in []dto.InvoiceLineResponse) []entity.InvoiceLine {
	out := make([]entity.InvoiceLine, 0, len(in))
	for _, l := range in {
		out = append(out, entity.InvoiceLine{
			ID:        l.ID,
			ProductID: l.ProductID,
			Label:     l.Label,
			Quantity:  l.Quantity,
			Unit:      l.Unit,
			VATRate:   l.VATRate,
			Price:     l.Price,
			Tax:       l.Tax,
		})
	}
	return out
}

func requestLines(in []entity.InvoiceLine) []dto.InvoiceLineRequest {
	out := make([]dto.InvoiceLineRequest, 0, len(in))
	for _, l := range in {
		out = append(out, dto.InvoiceLineRequest{
			ProductID: l.ProductID,
			Label:     l.Label,
			Quantity:  l.Quantity,
			Unit:      l.Unit,
			VATRate:   l.VATRate,
			Price:     l.Price,
			Tax:       l.Tax,
		})
	}
	return out
}
