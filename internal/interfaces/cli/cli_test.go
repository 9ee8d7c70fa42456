package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-gateway/internal/application/billing"
	"github.com/jhoicas/invoice-gateway/internal/application/dto"
	"github.com/jhoicas/invoice-gateway/internal/domain"
	"github.com/jhoicas/invoice-gateway/internal/domain/entity"
	"github.com/jhoicas/invoice-gateway/internal/interfaces/cli"
	"github.com/jhoicas/invoice-gateway/pkg/config"
	pkgjwt "github.com/jhoicas/invoice-gateway/pkg/jwt"
)

const testSecret = "cli-test-secret"

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type memAPI struct {
	invoice *entity.Invoice
	updates []entity.InvoiceDraft
	deleted []int64
}

func newMemAPI() *memAPI {
	return &memAPI{invoice: &entity.Invoice{
		ID: 42, CustomerID: 3, Date: "2024-03-01",
		Lines: []entity.InvoiceLine{
			{ID: 1, ProductID: 10, Label: "Tornillo", Quantity: 2, Price: decimal.RequireFromString("1.5")},
			{ID: 2, ProductID: 20, Label: "Tuerca", Quantity: 1, Price: decimal.RequireFromString("0.5")},
		},
	}}
}

func (m *memAPI) ListInvoices(context.Context, int, int) (*entity.InvoicePage, error) {
	return &entity.InvoicePage{Invoices: []entity.Invoice{*m.invoice}, Pagination: entity.Pagination{Page: 1, PerPage: 100}}, nil
}

func (m *memAPI) GetInvoice(_ context.Context, id int64) (*entity.Invoice, error) {
	if id != m.invoice.ID {
		return nil, domain.ErrNotFound
	}
	cp := *m.invoice
	return &cp, nil
}

func (m *memAPI) CreateInvoice(context.Context, entity.InvoiceDraft) (*entity.Invoice, error) {
	return nil, domain.ErrConflict
}

func (m *memAPI) UpdateInvoice(_ context.Context, d entity.InvoiceDraft) (*entity.Invoice, error) {
	m.updates = append(m.updates, d)
	m.invoice.Finalized = d.Finalized
	return m.invoice, nil
}

func (m *memAPI) DeleteInvoice(_ context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *memAPI) SearchCustomers(context.Context, string, int) ([]entity.Customer, error) {
	return nil, nil
}

func (m *memAPI) SearchProducts(context.Context, string, int) ([]entity.Product, error) {
	return []entity.Product{
		{ID: 30, Label: "Arandela", Unit: "piece", VATRate: "FR_200", UnitPrice: decimal.RequireFromString("0.2")},
	}, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func run(t *testing.T, api *memAPI, args ...string) (string, error) {
	t.Helper()
	now := billing.WithClock(func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) })
	build := func(string) (*cli.Services, error) {
		return &cli.Services{
			Invoices: billing.NewInvoiceUseCase(api, nil, time.Minute, nil, nil, now),
			Catalog:  billing.NewCatalogUseCase(api, nil, time.Minute, nil, nil),
			JWT:      config.JWTConfig{Secret: testSecret, Expiration: 60, Issuer: "invoicectl-test"},
		}, nil
	}
	root := cli.NewRootCmd(build)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "lines.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

// ──────────────────────────────────────────────────────────────────────────────
// reconcile (sin red)
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile_DesdeArchivos(t *testing.T) {
	existing := writeJSON(t, []dto.InvoiceLineRequest{
		{ID: 1, ProductID: 10, Label: "A", Quantity: 2},
		{ID: 2, ProductID: 20, Label: "B", Quantity: 1},
	})
	edited := writeJSON(t, []dto.InvoiceLineRequest{
		{ProductID: 10, Label: "A", Quantity: 5},
	})

	out, err := run(t, newMemAPI(), "reconcile", "--existing", existing, "--edited", edited)
	require.NoError(t, err)

	var got dto.ReconcileResponse
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 1, got.Updates)
	assert.Equal(t, 0, got.Inserts)
	assert.Equal(t, 1, got.Destroys)
	require.Len(t, got.Attributes, 2)
	assert.Equal(t, int64(1), *got.Attributes[0].ID)
	assert.Equal(t, 5, *got.Attributes[0].Quantity)
	assert.True(t, got.Attributes[1].Destroy)
}

func TestReconcile_ArchivoInvalido(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"no":"array"}`), 0o600))

	_, err := run(t, newMemAPI(), "reconcile", "--existing", bad, "--edited", bad)
	assert.Error(t, err)
}

func TestReconcile_FlagsObligatorios(t *testing.T) {
	_, err := run(t, newMemAPI(), "reconcile")
	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// edit
// ──────────────────────────────────────────────────────────────────────────────

func TestEdit_DryRunNoEnvia(t *testing.T) {
	api := newMemAPI()
	out, err := run(t, api, "edit", "42", "--set", "10:7", "--remove", "20", "--dry-run")
	require.NoError(t, err)
	assert.Empty(t, api.updates)

	var plan dto.UpdatePlan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, int64(42), plan.InvoiceID)
	assert.Equal(t, 1, plan.Changes.Updates)
	assert.Equal(t, 1, plan.Changes.Destroys)
}

func TestEdit_AddProductoDelCatalogo(t *testing.T) {
	api := newMemAPI()
	_, err := run(t, api, "edit", "42", "--add", "30:3")
	require.NoError(t, err)

	require.Len(t, api.updates, 1)
	patches := api.updates[0].LinesAttributes
	require.Len(t, patches, 3)
	assert.Equal(t, entity.NewUpdatePatch(1, 2), patches[0])
	assert.Equal(t, entity.NewUpdatePatch(2, 1), patches[1])
	assert.Equal(t, entity.PatchInsert, patches[2].Kind)
	assert.Equal(t, int64(30), patches[2].ProductID)
	assert.Equal(t, 3, patches[2].Quantity)
	assert.Equal(t, "Arandela", patches[2].Label)
}

func TestEdit_AddProductoExistenteSumaCantidad(t *testing.T) {
	api := newMemAPI()
	_, err := run(t, api, "edit", "42", "--add", "10:3")
	require.NoError(t, err)

	require.Len(t, api.updates, 1)
	assert.Equal(t, entity.NewUpdatePatch(1, 5), api.updates[0].LinesAttributes[0])
}

func TestEdit_ProductoFueraDeCatalogo(t *testing.T) {
	_, err := run(t, newMemAPI(), "edit", "42", "--add", "99:1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEdit_FlagsInvalidos(t *testing.T) {
	cases := [][]string{
		{"edit", "42"},
		{"edit", "42", "--add", "x:1"},
		{"edit", "42", "--set", "10:0"},
		{"edit", "42", "--remove", "-1"},
		{"edit", "abc", "--add", "10"},
	}
	for _, args := range cases {
		_, err := run(t, newMemAPI(), args...)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%v", args)
	}
}

func TestEdit_FacturaFinalizada(t *testing.T) {
	api := newMemAPI()
	api.invoice.Finalized = true
	_, err := run(t, api, "edit", "42", "--set", "10:1")
	assert.ErrorIs(t, err, domain.ErrInvoiceLocked)
}

// ──────────────────────────────────────────────────────────────────────────────
// show / list / finalize / delete
// ──────────────────────────────────────────────────────────────────────────────

func TestShow(t *testing.T) {
	out, err := run(t, newMemAPI(), "show", "42")
	require.NoError(t, err)

	var inv dto.InvoiceResponse
	require.NoError(t, json.Unmarshal([]byte(out), &inv))
	assert.Equal(t, "3.5", inv.Total.String())
	assert.Len(t, inv.Lines, 2)
}

func TestList(t *testing.T) {
	out, err := run(t, newMemAPI(), "list", "--per-page", "10")
	require.NoError(t, err)

	var page dto.InvoiceListResponse
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Len(t, page.Invoices, 1)
}

func TestFinalizeYDelete(t *testing.T) {
	api := newMemAPI()
	_, err := run(t, api, "delete", "42")
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, api.deleted)

	_, err = run(t, api, "finalize", "42")
	require.NoError(t, err)
	assert.True(t, api.invoice.Finalized)

	_, err = run(t, api, "delete", "42")
	assert.ErrorIs(t, err, domain.ErrInvoiceLocked)
}

// ──────────────────────────────────────────────────────────────────────────────
// token
// ──────────────────────────────────────────────────────────────────────────────

func TestToken_GeneraJWTValido(t *testing.T) {
	out, err := run(t, newMemAPI(), "token", "--user", "u-1", "--role", "editor")
	require.NoError(t, err)

	var got struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	userID, role, err := pkgjwt.Parse(testSecret, got.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, pkgjwt.RoleEditor, role)
}

func TestToken_RolDesconocido(t *testing.T) {
	_, err := run(t, newMemAPI(), "token", "--user", "u-1", "--role", "root")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
