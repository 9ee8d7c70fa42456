package invoicingapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-gateway/internal/domain"
	"github.com/jhoicas/invoice-gateway/internal/domain/entity"
	"github.com/jhoicas/invoice-gateway/internal/infrastructure/invoicingapi"
)

const invoiceJSON = `{
  "id": 7,
  "customer_id": 3,
  "customer": {"id": 3, "first_name": "Ana", "last_name": "López", "zip_code": "28001"},
  "finalized": false,
  "paid": false,
  "date": "2024-03-01",
  "deadline": null,
  "total": "3002.5",
  "tax": "300.5",
  "invoice_lines": [
    {"id": 1, "invoice_id": 7, "product_id": 10, "label": "Tornillo", "quantity": 2, "unit": "piece", "vat_rate": "20", "price": "1500.0", "tax": "300.0"},
    {"id": 2, "invoice_id": 7, "product_id": null, "label": "Portes", "quantity": 1, "price": "2.5", "tax": "0.5"}
  ]
}`

func newServer(t *testing.T, h http.HandlerFunc) *invoicingapi.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return invoicingapi.New(srv.URL+"/", "secreto", 5*time.Second, nil)
}

func TestClient_GetInvoice(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/invoices/7", r.URL.Path)
		assert.Equal(t, "secreto", r.Header.Get("X-SESSION"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = io.WriteString(w, invoiceJSON)
	})

	inv, err := client.GetInvoice(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(3), inv.CustomerID)
	assert.Equal(t, "Ana López", inv.Customer.FullName())
	assert.Equal(t, "28001", inv.Customer.Zip)
	assert.Equal(t, "2024-03-01", inv.Date)
	assert.Empty(t, inv.Deadline)
	require.Len(t, inv.Lines, 2)
	assert.Equal(t, int64(10), inv.Lines[0].ProductID)
	assert.True(t, decimal.RequireFromString("1500").Equal(inv.Lines[0].Price))
	assert.Zero(t, inv.Lines[1].ProductID, "product_id null")
}

func TestClient_ListInvoices(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/invoices", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))
		_, _ = io.WriteString(w, `{"invoices": [`+invoiceJSON+`], "pagination": {"page": 2, "page_size": 50, "total_pages": 3, "total_entries": 101}}`)
	})

	page, err := client.ListInvoices(context.Background(), 2, 50)
	require.NoError(t, err)

	require.Len(t, page.Invoices, 1)
	assert.Equal(t, entity.Pagination{Page: 2, PerPage: 50, TotalPages: 3, TotalEntries: 101}, page.Pagination)
}

func TestClient_UpdateInvoice_CuerpoDeAtributos(t *testing.T) {
	var body map[string]map[string]any
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/invoices/7", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = io.WriteString(w, invoiceJSON)
	})

	_, err := client.UpdateInvoice(context.Background(), entity.InvoiceDraft{
		ID:         7,
		CustomerID: 3,
		Date:       "2024-03-01",
		LinesAttributes: []entity.LinePatch{
			entity.NewUpdatePatch(1, 5),
			entity.NewInsertPatch(entity.InvoiceLine{ProductID: 30, Label: "Arandela", Quantity: 1, Price: decimal.RequireFromString("0.1")}),
			entity.NewDestroyPatch(2),
		},
	})
	require.NoError(t, err)

	inv := body["invoice"]
	assert.EqualValues(t, 7, inv["id"])
	assert.EqualValues(t, 3, inv["customer_id"])
	assert.Nil(t, inv["deadline"])
	attrs, ok := inv["invoice_lines_attributes"].([]any)
	require.True(t, ok)
	require.Len(t, attrs, 3)

	assert.Equal(t, map[string]any{"id": float64(1), "quantity": float64(5)}, attrs[0])
	insert := attrs[1].(map[string]any)
	assert.NotContains(t, insert, "id")
	assert.Equal(t, "Arandela", insert["label"])
	assert.Equal(t, "0.1", insert["price"])
	assert.Equal(t, map[string]any{"id": float64(2), "_destroy": true}, attrs[2])
}

func TestClient_UpdateInvoice_SinID(t *testing.T) {
	client := invoicingapi.New("http://127.0.0.1:1", "", time.Second, nil)

	_, err := client.UpdateInvoice(context.Background(), entity.InvoiceDraft{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_DeleteInvoice_SinCuerpo(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, client.DeleteInvoice(context.Background(), 7))
}

func TestClient_SearchProducts(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/search", r.URL.Path)
		assert.Equal(t, "torn", r.URL.Query().Get("query"))
		_, _ = io.WriteString(w, `{"products": [{"id": 10, "label": "Tornillo", "unit": "piece", "vat_rate": "20", "unit_price": "1.2", "unit_price_without_tax": "1.0", "unit_tax": "0.2"}]}`)
	})

	list, err := client.SearchProducts(context.Background(), "torn", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, decimal.RequireFromString("0.2").Equal(list[0].UnitTax))
}

func TestClient_SearchCustomers(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customers/search", r.URL.Path)
		_, _ = io.WriteString(w, `{"customers": [{"id": 3, "first_name": "Ana", "last_name": "López"}]}`)
	})

	list, err := client.SearchCustomers(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana López", list[0].FullName())
}

func TestClient_ErroresHTTP(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusBadRequest, domain.ErrInvalidInput},
		{http.StatusUnprocessableEntity, domain.ErrInvalidInput},
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrUnauthorized},
		{http.StatusInternalServerError, domain.ErrUpstream},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			client := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, `{"message":"fallo"}`)
			})

			_, err := client.GetInvoice(context.Background(), 1)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestClient_UpstreamErrorConserva(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "proxy caído")
	})

	_, err := client.GetInvoice(context.Background(), 1)

	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadGateway, upstream.Status)
	assert.Equal(t, "proxy caído", upstream.Body)
}

func TestClient_ContextoCancelado(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, invoiceJSON)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetInvoice(ctx, 7)
	assert.ErrorIs(t, err, context.Canceled)
}
