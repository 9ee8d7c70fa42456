package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-gateway/internal/application/dto"
	pkgjwt "github.com/jhoicas/invoice-gateway/pkg/jwt"
)

const (
	testJWTSecret = "gateway-test-secret"
	testUserID    = "u-7f3a"
	testIssuer    = "invoice-gateway-test"
)

// tokenForRole cabecera Authorization lista para usar con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, 30)
	require.NoError(t, err)
	return "Bearer " + tok
}

// callWithHeader como call pero con la cabecera Authorization tal cual.
func callWithHeader(t *testing.T, method, path, authorization string) (*http.Response, dto.ErrorResponse) {
	t.Helper()
	app := buildRouterApp(newStubAPI())
	req, err := http.NewRequest(method, path, nil)
	require.NoError(t, err)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp, decodeBody[dto.ErrorResponse](t, resp)
}

// ── Roles sobre las rutas de facturas ────────────────────────────────────────

func TestRouter_ViewerNoPuedeModificarFacturas(t *testing.T) {
	writes := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/api/invoices", dto.CreateInvoiceRequest{CustomerID: 3}},
		{http.MethodPut, "/api/invoices/7", map[string]any{"invoice_lines": []any{}}},
		{http.MethodPost, "/api/invoices/7/finalize", nil},
		{http.MethodDelete, "/api/invoices/7", nil},
	}
	for _, w := range writes {
		t.Run(w.method+" "+w.path, func(t *testing.T) {
			api := newStubAPI()
			resp := call(t, buildRouterApp(api), w.method, w.path, pkgjwt.RoleViewer, w.body)
			out := decodeBody[dto.ErrorResponse](t, resp)

			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			assert.Equal(t, "FORBIDDEN", out.Code)
			assert.Empty(t, api.updates, "no debe llegar nada a la API")
			assert.Contains(t, api.invoices, int64(7))
		})
	}
}

func TestRouter_ViewerPuedeConsultar(t *testing.T) {
	reads := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/invoices", nil},
		{http.MethodGet, "/api/invoices/7", nil},
		{http.MethodGet, "/api/invoices/7/pdf", nil},
		{http.MethodPost, "/api/invoices/reconcile", dto.ReconcileRequest{}},
		{http.MethodGet, "/api/customers/search?query=a", nil},
		{http.MethodGet, "/api/products/search?query=t", nil},
	}
	for _, r := range reads {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			resp := call(t, buildRouterApp(newStubAPI()), r.method, r.path, pkgjwt.RoleViewer, r.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}

func TestRouter_EditorYAdminPuedenFinalizar(t *testing.T) {
	for _, role := range []string{pkgjwt.RoleEditor, pkgjwt.RoleAdmin, "EDITOR"} {
		t.Run(role, func(t *testing.T) {
			api := newStubAPI()
			resp := call(t, buildRouterApp(api), http.MethodPost, "/api/invoices/7/finalize", role, nil)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Len(t, api.updates, 1)
		})
	}
}

func TestRouter_TokenSinRol(t *testing.T) {
	app := buildRouterApp(newStubAPI())

	resp := call(t, app, http.MethodDelete, "/api/invoices/7", "", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "sin Authorization")

	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "", testIssuer, 30)
	require.NoError(t, err)
	resp, out := callWithHeader(t, http.MethodDelete, "/api/invoices/7", "Bearer "+tok)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_ROLE", out.Code)
}

// ── Cabecera Authorization ───────────────────────────────────────────────────

func TestAuthMiddleware_CabecerasRechazadas(t *testing.T) {
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, pkgjwt.RoleAdmin, testIssuer, -1)
	require.NoError(t, err)
	foreign, err := pkgjwt.Generate("otro-secret", testUserID, pkgjwt.RoleAdmin, testIssuer, 30)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin cabecera", "", "MISSING_TOKEN"},
		{"esquema Basic", "Basic dXNlcjpwYXNz", "INVALID_TOKEN"},
		{"token basura", "Bearer no.es.un.jwt", "INVALID_TOKEN"},
		{"token expirado", "Bearer " + expired, "INVALID_TOKEN"},
		{"firmado con otro secret", "Bearer " + foreign, "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, out := callWithHeader(t, http.MethodGet, "/api/invoices/7", tc.header)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, tc.code, out.Code)
		})
	}
}

func TestAuthMiddleware_BearerSinDistinguirMayusculas(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, pkgjwt.RoleViewer, testIssuer, 30)
	require.NoError(t, err)

	app := buildRouterApp(newStubAPI())
	req, err := http.NewRequest(http.MethodGet, "/api/invoices/7", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "bearer "+tok)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
