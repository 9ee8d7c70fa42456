package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/invoice-gateway/internal/application/dto"
	"github.com/jhoicas/invoice-gateway/internal/domain"
	dombilling "github.com/jhoicas/invoice-gateway/internal/domain/billing"
	"github.com/jhoicas/invoice-gateway/internal/domain/entity"
	"github.com/jhoicas/invoice-gateway/pkg/logger"
	"github.com/jhoicas/invoice-gateway/pkg/money"
)

const (
	invoiceListPrefix = "invoices:"
	invoiceKeyPrefix  = "invoice:"
)

func invoiceListKey(page, perPage int) string {
	return fmt.Sprintf("%s%d:%d", invoiceListPrefix, page, perPage)
}

func invoiceKey(id int64) string {
	return fmt.Sprintf("%s%d", invoiceKeyPrefix, id)
}

// InvoiceUseCase casos de uso de facturas: listado, detalle, alta, edición con
// reconciliación de líneas, finalización y borrado.
type InvoiceUseCase struct {
	api   InvoiceAPI
	rt    *readThrough
	money *money.Formatter
	log   *logger.Logger
	now   func() time.Time
}

// Option configura el caso de uso.
type Option func(*InvoiceUseCase)

// WithClock fija el reloj usado para la fecha por defecto y el estado "overdue".
func WithClock(now func() time.Time) Option {
	return func(uc *InvoiceUseCase) { uc.now = now }
}

// NewInvoiceUseCase construye el caso de uso. cache puede ser nil (sin caché).
func NewInvoiceUseCase(
	api InvoiceAPI,
	cache Cache,
	ttl time.Duration,
	formatter *money.Formatter,
	log *logger.Logger,
	opts ...Option,
) *InvoiceUseCase {
	if formatter == nil {
		formatter = money.NewFormatter("")
	}
	if log == nil {
		log = logger.Nop()
	}
	uc := &InvoiceUseCase{
		api:   api,
		rt:    newReadThrough(cache, ttl, log),
		money: formatter,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// List devuelve una página de facturas (page 1 y 100 por página por defecto).
func (uc *InvoiceUseCase) List(ctx context.Context, req dto.PageRequest) (*dto.InvoiceListResponse, error) {
	req.DefaultPage()
	page, err := loadThrough(ctx, uc.rt, invoiceListKey(req.Page, req.PerPage), func(ctx context.Context) (*entity.InvoicePage, error) {
		return uc.api.ListInvoices(ctx, req.Page, req.PerPage)
	})
	if err != nil {
		return nil, fmt.Errorf("listar facturas: %w", err)
	}

	now := uc.now()
	out := &dto.InvoiceListResponse{
		Invoices: make([]dto.InvoiceResponse, 0, len(page.Invoices)),
		Pagination: dto.PageResponse{
			Page:         page.Pagination.Page,
			PerPage:      page.Pagination.PerPage,
			TotalPages:   page.Pagination.TotalPages,
			TotalEntries: page.Pagination.TotalEntries,
		},
	}
	if out.Pagination.Page == 0 {
		out.Pagination.Page = req.Page
	}
	if out.Pagination.PerPage == 0 {
		out.Pagination.PerPage = req.PerPage
	}
	for i := range page.Invoices {
		out.Invoices = append(out.Invoices, *uc.toResponse(&page.Invoices[i], now))
	}
	return out, nil
}

// Get devuelve una factura con sus líneas.
func (uc *InvoiceUseCase) Get(ctx context.Context, id int64) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(inv, uc.now()), nil
}

func (uc *InvoiceUseCase) invoice(ctx context.Context, id int64) (*entity.Invoice, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id de factura inválido", domain.ErrInvalidInput)
	}
	inv, err := loadThrough(ctx, uc.rt, invoiceKey(id), func(ctx context.Context) (*entity.Invoice, error) {
		return uc.api.GetInvoice(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("obtener factura %d: %w", id, err)
	}
	return inv, nil
}

// Create crea una factura nueva; todas las líneas se envían como altas.
func (uc *InvoiceUseCase) Create(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.CustomerID <= 0 {
		return nil, domain.ErrNoCustomer
	}
	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = uc.now().Format(entity.DateLayout)
	}
	if err := validateDates(date, in.Deadline); err != nil {
		return nil, err
	}

	lines := dto.LinesToEntity(in.Lines)
	patches := make([]entity.LinePatch, 0, len(lines))
	for i, l := range lines {
		if err := validateNewLine(i, l); err != nil {
			return nil, err
		}
		patches = append(patches, entity.NewInsertPatch(l))
	}

	created, err := uc.api.CreateInvoice(ctx, entity.InvoiceDraft{
		CustomerID:      in.CustomerID,
		Date:            date,
		Deadline:        strings.TrimSpace(in.Deadline),
		Paid:            in.Paid,
		Finalized:       in.Finalized,
		LinesAttributes: patches,
	})
	if err != nil {
		return nil, fmt.Errorf("crear factura: %w", err)
	}
	uc.rt.invalidate(ctx, []string{invoiceListPrefix})
	uc.log.Info().Int64("invoice_id", created.ID).Int("lines", len(patches)).Msg("factura creada")
	return uc.toResponse(created, uc.now()), nil
}

// PlanUpdate calcula el cuerpo de la edición sin enviarlo.
func (uc *InvoiceUseCase) PlanUpdate(ctx context.Context, id int64, in dto.UpdateInvoiceRequest) (*dto.UpdatePlan, error) {
	draft, err := uc.planUpdate(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return &dto.UpdatePlan{InvoiceID: id, Changes: dto.NewReconcileResponse(draft.LinesAttributes)}, nil
}

// Update edita cabecera y líneas de una factura no pagada ni finalizada.
// Las líneas se reconcilian contra el estado actual en el servidor y se envían
// como invoice_lines_attributes (updates/inserts y luego destroys).
func (uc *InvoiceUseCase) Update(ctx context.Context, id int64, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	draft, err := uc.planUpdate(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if _, err := uc.api.UpdateInvoice(ctx, draft); err != nil {
		return nil, fmt.Errorf("actualizar factura %d: %w", id, err)
	}
	uc.rt.invalidate(ctx, []string{invoiceListPrefix}, invoiceKey(id))
	uc.log.Info().Int64("invoice_id", id).Int("line_changes", len(draft.LinesAttributes)).Msg("factura actualizada")
	return uc.refetch(ctx, id)
}

func (uc *InvoiceUseCase) planUpdate(ctx context.Context, id int64, in dto.UpdateInvoiceRequest) (entity.InvoiceDraft, error) {
	current, err := uc.fresh(ctx, id)
	if err != nil {
		return entity.InvoiceDraft{}, err
	}
	if !current.Editable() {
		return entity.InvoiceDraft{}, domain.ErrInvoiceLocked
	}

	draft := headerDraft(current)
	if in.CustomerID != nil {
		if *in.CustomerID <= 0 {
			return entity.InvoiceDraft{}, domain.ErrNoCustomer
		}
		draft.CustomerID = *in.CustomerID
	}
	if in.Date != nil {
		draft.Date = strings.TrimSpace(*in.Date)
	}
	if in.Deadline != nil {
		draft.Deadline = strings.TrimSpace(*in.Deadline)
	}
	if in.Paid != nil {
		draft.Paid = *in.Paid
	}
	if in.Finalized != nil {
		draft.Finalized = *in.Finalized
	}
	if err := validateDates(draft.Date, draft.Deadline); err != nil {
		return entity.InvoiceDraft{}, err
	}

	if in.Lines != nil {
		edited := dto.LinesToEntity(in.Lines)
		for i, l := range edited {
			if err := validateEditedLine(i, l); err != nil {
				return entity.InvoiceDraft{}, err
			}
		}
		draft.LinesAttributes = dombilling.ReconcileLines(current.Lines, edited)
	}
	return draft, nil
}

// Finalize marca la factura como finalizada. Si ya lo está no envía nada.
func (uc *InvoiceUseCase) Finalize(ctx context.Context, id int64) (*dto.InvoiceResponse, error) {
	current, err := uc.fresh(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Finalized {
		return uc.toResponse(current, uc.now()), nil
	}

	draft := headerDraft(current)
	draft.Finalized = true
	if _, err := uc.api.UpdateInvoice(ctx, draft); err != nil {
		return nil, fmt.Errorf("finalizar factura %d: %w", id, err)
	}
	uc.rt.invalidate(ctx, []string{invoiceListPrefix}, invoiceKey(id))
	uc.log.Info().Int64("invoice_id", id).Msg("factura finalizada")
	return uc.refetch(ctx, id)
}

// Delete borra una factura. Las finalizadas no se pueden borrar.
func (uc *InvoiceUseCase) Delete(ctx context.Context, id int64) error {
	current, err := uc.fresh(ctx, id)
	if err != nil {
		return err
	}
	if current.Finalized {
		return domain.ErrInvoiceLocked
	}
	if err := uc.api.DeleteInvoice(ctx, id); err != nil {
		return fmt.Errorf("borrar factura %d: %w", id, err)
	}
	uc.rt.invalidate(ctx, []string{invoiceListPrefix}, invoiceKey(id))
	uc.log.Info().Int64("invoice_id", id).Msg("factura borrada")
	return nil
}

// Reconcile simula la reconciliación de líneas sin tocar la API.
func (uc *InvoiceUseCase) Reconcile(in dto.ReconcileRequest) *dto.ReconcileResponse {
	patches := dombilling.ReconcileLines(dto.LinesToEntity(in.Existing), dto.LinesToEntity(in.Edited))
	return dto.NewReconcileResponse(patches)
}

// fresh lee la factura de la API saltándose la caché (antes de escribir).
func (uc *InvoiceUseCase) fresh(ctx context.Context, id int64) (*entity.Invoice, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id de factura inválido", domain.ErrInvalidInput)
	}
	inv, err := uc.api.GetInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener factura %d: %w", id, err)
	}
	return inv, nil
}

func (uc *InvoiceUseCase) refetch(ctx context.Context, id int64) (*dto.InvoiceResponse, error) {
	inv, err := uc.fresh(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(inv, uc.now()), nil
}

func headerDraft(inv *entity.Invoice) entity.InvoiceDraft {
	return entity.InvoiceDraft{
		ID:         inv.ID,
		CustomerID: inv.CustomerID,
		Date:       inv.Date,
		Deadline:   inv.Deadline,
		Paid:       inv.Paid,
		Finalized:  inv.Finalized,
	}
}

func validateDates(date, deadline string) error {
	for _, d := range []string{date, deadline} {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if _, err := time.Parse(entity.DateLayout, d); err != nil {
			return fmt.Errorf("%w: fecha %q no tiene formato YYYY-MM-DD", domain.ErrInvalidInput, d)
		}
	}
	return nil
}

func validateNewLine(i int, l entity.InvoiceLine) error {
	if strings.TrimSpace(l.Label) == "" {
		return fmt.Errorf("%w: línea %d sin descripción", domain.ErrInvalidInput, i+1)
	}
	if l.Quantity <= 0 {
		return fmt.Errorf("%w: línea %d con cantidad %d", domain.ErrInvalidInput, i+1, l.Quantity)
	}
	return nil
}

// En edición la cantidad 0 significa "conservar la actual".
func validateEditedLine(i int, l entity.InvoiceLine) error {
	if strings.TrimSpace(l.Label) == "" && l.ProductID == 0 {
		return fmt.Errorf("%w: línea %d sin producto ni descripción", domain.ErrInvalidInput, i+1)
	}
	if l.Quantity < 0 {
		return fmt.Errorf("%w: línea %d con cantidad %d", domain.ErrInvalidInput, i+1, l.Quantity)
	}
	return nil
}

func (uc *InvoiceUseCase) toResponse(inv *entity.Invoice, now time.Time) *dto.InvoiceResponse {
	total := dombilling.InvoiceTotal(inv.Lines)
	tax := dombilling.InvoiceTaxTotal(inv.Lines)
	// Una factura pagada nunca figura como vencida.
	status := dombilling.Status(inv, now)
	out := &dto.InvoiceResponse{
		ID:             inv.ID,
		CustomerID:     inv.CustomerID,
		CustomerName:   inv.Customer.FullName(),
		Customer:       dto.NewCustomerResponse(inv.Customer),
		Date:           inv.Date,
		Deadline:       inv.Deadline,
		Paid:           inv.Paid,
		Finalized:      inv.Finalized,
		Overdue:        status == entity.InvoiceStatusOverdue,
		Status:         status,
		Total:          total,
		Tax:            tax,
		TotalFormatted: uc.money.Format(total),
		TaxFormatted:   uc.money.Format(tax),
		Lines:          make([]dto.InvoiceLineResponse, 0, len(inv.Lines)),
	}
	for _, l := range inv.Lines {
		out.Lines = append(out.Lines, dto.InvoiceLineResponse{
			ID:             l.ID,
			ProductID:      l.ProductID,
			Label:          l.Label,
			Quantity:       l.Quantity,
			Unit:           l.Unit,
			VATRate:        l.VATRate,
			Price:          l.Price,
			Tax:            l.Tax,
			PriceFormatted: uc.money.Format(l.Price),
			TotalFormatted: uc.money.Format(dombilling.LineTotal(l)),
		})
	}
	return out
}
