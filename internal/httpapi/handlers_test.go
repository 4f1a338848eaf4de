package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"receiptgen/backend/internal/service"
	"receiptgen/backend/internal/store/memory"
)

// newTestAPI builds a full API with an in-memory gateway, real AuthManager
// and real Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	svc := service.New(memory.New())
	auth, err := NewAuthManager("test-secret-key-test-secret-key!", time.Hour, "operator", "op-password")
	if err != nil {
		t.Fatalf("auth manager: %v", err)
	}

	return New(svc, auth, "*")
}

func loginToken(t *testing.T, api *API) string {
	t.Helper()
	resp, err := api.auth.Login(LoginRequest{Username: "operator", Password: "op-password"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return resp.AccessToken
}

func doJSON(t *testing.T, api *API, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeInvoiceResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)

	rec := doJSON(t, api, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandleLogin_Success(t *testing.T) {
	api := newTestAPI(t)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "operator",
		"password": "op-password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["access_token"] == "" || body["access_token"] == nil {
		t.Fatalf("expected access_token in response, got %v", body)
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "operator",
		"password": "wrongpassword",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleLogin_RateLimit(t *testing.T) {
	api := newTestAPI(t)

	var last int
	for i := 0; i < 6; i++ {
		rec := doJSON(t, api, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"username": "operator",
			"password": "badpass",
		})
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after repeated failures, got %d", last)
	}
}

func TestRoutesRequireAuth(t *testing.T) {
	api := newTestAPI(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/companies"},
		{http.MethodGet, "/api/v1/companies/royal-turban/invoice"},
		{http.MethodPost, "/api/v1/companies/royal-turban/invoice/items"},
		{http.MethodGet, "/api/v1/companies/royal-turban/invoice/export"},
	}
	for _, p := range paths {
		rec := doJSON(t, api, p.method, p.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s without token: expected 401, got %d", p.method, p.path, rec.Code)
		}
	}
}

func TestHandleCompanies(t *testing.T) {
	api := newTestAPI(t)
	token := loginToken(t, api)

	rec := doJSON(t, api, http.MethodGet, "/api/v1/companies", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Companies []struct {
			ID string `json:"id"`
		} `json:"companies"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Companies) != 2 || body.Companies[0].ID != "royal-turban" {
		t.Fatalf("unexpected companies: %+v", body.Companies)
	}
}

func TestHandleInvoice_UnknownCompany(t *testing.T) {
	api := newTestAPI(t)
	token := loginToken(t, api)

	rec := doJSON(t, api, http.MethodGet, "/api/v1/companies/acme/invoice", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown company, got %d", rec.Code)
	}
}

func TestHandleInvoice_GetIncludesTotals(t *testing.T) {
	api := newTestAPI(t)
	token := loginToken(t, api)

	rec := doJSON(t, api, http.MethodGet, "/api/v1/companies/escalade-ride/invoice", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	body := decodeInvoiceResponse(t, rec)
	if body["subtotal"] != 477.0 {
		t.Fatalf("subtotal = %v, want 477", body["subtotal"])
	}
	if body["total_due"] != 377.0 {
		t.Fatalf("total_due = %v, want 377", body["total_due"])
	}
}

func TestHandleInvoice_Patch(t *testing.T) {
	api := newTestAPI(t)
	token := loginToken(t, api)

	rec := doJSON(t, api, http.MethodPatch, "/api/v1/companies/royal-turban/invoice", token, map[string]any{
		"invoiceTitle": "Invoice #500",
		"deposit":      "25",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	body := decodeInvoiceResponse(t, rec)
	inv := body["invoice"].(map[string]any)
	if inv["invoiceTitle"] != "Invoice #500" {
		t.Fatalf("title not applied: %v", inv["invoiceTitle"])
	}
	// Quoted amounts coerce; default subtotal is 200.
	if body["total_due"] != 175.0 {
		t.Fatalf("total_due = %v, want 175", body["total_due"])
	}
}

func TestHandleInvoice_PatchUnknownField(t *testing.T) {
	api := newTestAPI(t)
	token := loginToken(t, api)

	rec := doJSON(t, api, http.MethodPatch, "/api/v1/companies/royal-turban/invoice", token, map[string]any{
		"bogusField": true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestHandleItems_Lifecycle(t *testing.T) {
	api := newTestAPI(t)
	token := loginToken(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/companies/royal-turban/invoice/items", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("add item: expected 200, got %d", rec.Code)
	}
	body := decodeInvoiceResponse(t, rec)
	items := body["invoice"].(map[string]any)["items"].([]any)
	if len(items) != 3 {
		t.Fatalf("expected 3 items after add, got %d", len(items))
	}

	rec = doJSON(t, api, http.MethodPatch, "/api/v1/companies/royal-turban/invoice/items/2", token, map[string]any{
		"description": "Extra turbans",
		"quantity":    2,
		"price":       "30",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update item: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	body = decodeInvoiceResponse(t, rec)
	if body["subtotal"] != 260.0 {
		t.Fatalf("subtotal = %v, want 260", body["subtotal"])
	}

	rec = doJSON(t, api, http.MethodDelete, "/api/v1/companies/royal-turban/invoice/items/2", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove item: expected 200, got %d", rec.Code)
	}
	body = decodeInvoiceResponse(t, rec)
	items = body["invoice"].(map[string]any)["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 items after remove, got %d", len(items))
	}

	// Out-of-range removal is a no-op, not an error.
	rec = doJSON(t, api, http.MethodDelete, "/api/v1/companies/royal-turban/invoice/items/99", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("out-of-range remove: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, api, http.MethodDelete, "/api/v1/companies/royal-turban/invoice/items/two", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("non-integer index: expected 400, got %d", rec.Code)
	}
}

func TestHandleReset(t *testing.T) {
	api := newTestAPI(t)
	token := loginToken(t, api)

	doJSON(t, api, http.MethodPatch, "/api/v1/companies/royal-turban/invoice", token, map[string]any{
		"deposit": 999,
	})

	rec := doJSON(t, api, http.MethodPost, "/api/v1/companies/royal-turban/invoice/reset", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d", rec.Code)
	}
	body := decodeInvoiceResponse(t, rec)
	if body["invoice"].(map[string]any)["deposit"] != 0.0 {
		t.Fatalf("reset should restore the default deposit")
	}
}

func TestHandleLogoUpload(t *testing.T) {
	api := newTestAPI(t)
	token := loginToken(t, api)

	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}
	req := httptest.NewRequest(http.MethodPut, "/api/v1/companies/royal-turban/invoice/logo", bytes.NewReader(png))
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("upload logo: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	body := decodeInvoiceResponse(t, rec)
	logo, _ := body["invoice"].(map[string]any)["logoBase64"].(string)
	if !strings.HasPrefix(logo, "data:image/png;base64,") {
		t.Fatalf("logo not stored as data URL: %q", logo)
	}

	rec = doJSON(t, api, http.MethodDelete, "/api/v1/companies/royal-turban/invoice/logo", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove logo: expected 200, got %d", rec.Code)
	}
}

func TestHandleLogoUpload_Unsupported(t *testing.T) {
	api := newTestAPI(t)
	token := loginToken(t, api)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/companies/royal-turban/invoice/logo", strings.NewReader("<svg></svg>"))
	req.Header.Set("Content-Type", "image/svg+xml")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("svg upload: expected 415, got %d", rec.Code)
	}
}

func TestHandleLogoUpload_TooLarge(t *testing.T) {
	api := newTestAPI(t)
	token := loginToken(t, api)

	huge := make([]byte, service.MaxImageBytes+2)
	huge[0], huge[1] = 0x89, 'P'
	req := httptest.NewRequest(http.MethodPut, "/api/v1/companies/royal-turban/invoice/logo", bytes.NewReader(huge))
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized upload: expected 413, got %d", rec.Code)
	}
}

func TestHandleExport(t *testing.T) {
	api := newTestAPI(t)
	token := loginToken(t, api)

	rec := doJSON(t, api, http.MethodGet, "/api/v1/companies/escalade-ride/invoice/export", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q", ct)
	}
	disposition := rec.Header().Get("Content-Disposition")
	if !strings.HasPrefix(disposition, `attachment; filename="invoice`) {
		t.Fatalf("content disposition = %q", disposition)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("export body does not look like a PDF")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	api := newTestAPI(t)
	token := loginToken(t, api)

	rec := doJSON(t, api, http.MethodDelete, "/api/v1/companies/royal-turban/invoice", token, nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
