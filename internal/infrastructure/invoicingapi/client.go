package invoicingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	appbilling "github.com/jhoicas/invoice-gateway/internal/application/billing"
	"github.com/jhoicas/invoice-gateway/internal/domain"
	"github.com/jhoicas/invoice-gateway/internal/domain/entity"
	"github.com/jhoicas/invoice-gateway/pkg/logger"
)

// Verificar en tiempo de compilación que Client implementa los puertos de facturación.
var (
	_ appbilling.InvoiceAPI = (*Client)(nil)
	_ appbilling.CatalogAPI = (*Client)(nil)
)

const (
	sessionHeader   = "X-SESSION"
	requestIDHeader = "X-Request-ID"

	maxResponseBytes = 1 << 20
	maxErrorBody     = 512
)

// Client adaptador REST de la API de facturación remota.
// Usa net/http; la autenticación va en la cabecera X-SESSION.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

// Option configura el cliente.
type Option func(*Client)

// WithHTTPClient sustituye el *http.Client (p. ej. con un transport instrumentado).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New construye el adaptador. timeout se aplica si no se pasa un *http.Client propio.
func New(baseURL, token string, timeout time.Duration, log *logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.Nop()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ── Facturas ──────────────────────────────────────────────────────────────────

// ListInvoices GET /invoices?page=&per_page=.
func (c *Client) ListInvoices(ctx context.Context, page, perPage int) (*entity.InvoicePage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	var resp invoiceListResponse
	if err := c.do(ctx, http.MethodGet, "/invoices", q, nil, &resp); err != nil {
		return nil, err
	}
	out := &entity.InvoicePage{
		Invoices: make([]entity.Invoice, 0, len(resp.Invoices)),
		Pagination: entity.Pagination{
			Page:         resp.Pagination.Page,
			PerPage:      resp.Pagination.PageSize,
			TotalPages:   resp.Pagination.TotalPages,
			TotalEntries: resp.Pagination.TotalEntries,
		},
	}
	for _, p := range resp.Invoices {
		out.Invoices = append(out.Invoices, *p.toEntity())
	}
	return out, nil
}

// GetInvoice GET /invoices/{id}.
func (c *Client) GetInvoice(ctx context.Context, id int64) (*entity.Invoice, error) {
	var resp invoicePayload
	if err := c.do(ctx, http.MethodGet, invoicePath(id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toEntity(), nil
}

// CreateInvoice POST /invoices con {invoice: ...}.
func (c *Client) CreateInvoice(ctx context.Context, draft entity.InvoiceDraft) (*entity.Invoice, error) {
	draft.ID = 0
	var resp invoicePayload
	if err := c.do(ctx, http.MethodPost, "/invoices", nil, newInvoiceEnvelope(draft), &resp); err != nil {
		return nil, err
	}
	return resp.toEntity(), nil
}

// UpdateInvoice PUT /invoices/{id} con {invoice: {id, ..., invoice_lines_attributes}}.
func (c *Client) UpdateInvoice(ctx context.Context, draft entity.InvoiceDraft) (*entity.Invoice, error) {
	if draft.ID <= 0 {
		return nil, fmt.Errorf("%w: actualizar factura sin id", domain.ErrInvalidInput)
	}
	var resp invoicePayload
	if err := c.do(ctx, http.MethodPut, invoicePath(draft.ID), nil, newInvoiceEnvelope(draft), &resp); err != nil {
		return nil, err
	}
	return resp.toEntity(), nil
}

// DeleteInvoice DELETE /invoices/{id}.
func (c *Client) DeleteInvoice(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, invoicePath(id), nil, nil, nil)
}

// ── Catálogo ─────────────────────────────────────────────────────────────────

// SearchCustomers GET /customers/search?query=&per_page=.
func (c *Client) SearchCustomers(ctx context.Context, query string, perPage int) ([]entity.Customer, error) {
	var resp customerSearchResponse
	if err := c.do(ctx, http.MethodGet, "/customers/search", searchQuery(query, perPage), nil, &resp); err != nil {
		return nil, err
	}
	out := make([]entity.Customer, 0, len(resp.Customers))
	for _, cu := range resp.Customers {
		out = append(out, cu.toEntity())
	}
	return out, nil
}

// SearchProducts GET /products/search?query=&per_page=.
func (c *Client) SearchProducts(ctx context.Context, query string, perPage int) ([]entity.Product, error) {
	var resp productSearchResponse
	if err := c.do(ctx, http.MethodGet, "/products/search", searchQuery(query, perPage), nil, &resp); err != nil {
		return nil, err
	}
	out := make([]entity.Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		out = append(out, p.toEntity())
	}
	return out, nil
}

// ── Transporte ───────────────────────────────────────────────────────────────

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("invoicing api: serializar request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("invoicing api: crear HTTP request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set(sessionHeader, c.token)
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("invoicing api: timeout o cancelación: %w", ctx.Err())
		}
		return fmt.Errorf("%w: %s %s: %v", domain.ErrUpstream, method, path, err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: leer respuesta: %v", domain.ErrUpstream, err)
	}

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("invoicing api")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().
			Str("request_id", requestID).
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("invoicing api: respuesta de error")
		return statusError(resp.StatusCode, rawBody)
	}

	if out == nil || len(bytes.TrimSpace(rawBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(rawBody, out); err != nil {
		return fmt.Errorf("%w: deserializar respuesta de %s %s: %v", domain.ErrUpstream, method, path, err)
	}
	return nil
}

// statusError traduce el código HTTP a un error de dominio.
func statusError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: la API rechazó el token (HTTP %d)", domain.ErrUnauthorized, status)
	default:
		return &domain.UpstreamError{Status: status, Body: msg}
	}
}

func invoicePath(id int64) string {
	return "/invoices/" + strconv.FormatInt(id, 10)
}

func searchQuery(query string, perPage int) url.Values {
	q := url.Values{}
	q.Set("query", query)
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	return q
}
