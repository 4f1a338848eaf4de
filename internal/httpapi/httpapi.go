package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"receiptgen/backend/internal/domain"
	"receiptgen/backend/internal/profile"
	"receiptgen/backend/internal/service"
)

type API struct {
	service       *service.Service
	auth          *AuthManager
	allowedOrigin string
	loginLimiter  *attemptLimiter
}

func New(svc *service.Service, auth *AuthManager, allowedOrigin string) *API {
	return &API{
		service:       svc,
		auth:          auth,
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
	}
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	l.entries[key] = kept
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/api/v1/auth/login", a.handleLogin)
	mux.HandleFunc("/api/v1/companies", a.requireAuth(a.handleCompanies))
	mux.HandleFunc("/api/v1/companies/", a.requireAuth(a.handleCompanyActions))

	return a.withMiddleware(mux)
}

func (a *API) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorization := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		token := strings.TrimSpace(authorization[len("Bearer "):])
		if _, err := a.auth.ParseToken(token); err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}

		next(w, r)
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleCompanies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": profile.List()})
}

// handleCompanyActions routes everything under /api/v1/companies/{id}/...
// The id segment is validated against the closed company set before any
// service call; everything unknown is a 404 at this boundary.
func (a *API) handleCompanyActions(w http.ResponseWriter, r *http.Request) {
	tail := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/companies/"), "/")
	companyID, rest, _ := strings.Cut(tail, "/")
	if companyID == "" {
		writeError(w, http.StatusBadRequest, errors.New("company id required"))
		return
	}
	if !profile.Known(companyID) {
		writeError(w, http.StatusNotFound, errors.New("unknown company"))
		return
	}

	switch {
	case rest == "invoice":
		a.handleInvoice(w, r, companyID)
	case rest == "invoice/items":
		a.handleInvoiceItems(w, r, companyID)
	case strings.HasPrefix(rest, "invoice/items/"):
		a.handleInvoiceItem(w, r, companyID, strings.TrimPrefix(rest, "invoice/items/"))
	case rest == "invoice/logo":
		a.handleInvoiceImage(w, r, companyID, a.service.SetLogo, a.service.RemoveLogo)
	case rest == "invoice/signature":
		a.handleInvoiceImage(w, r, companyID, a.service.SetSignature, a.service.RemoveSignature)
	case rest == "invoice/reset":
		a.handleInvoiceReset(w, r, companyID)
	case rest == "invoice/export":
		a.handleInvoiceExport(w, r, companyID)
	default:
		writeError(w, http.StatusNotFound, errors.New("unknown company action"))
	}
}

func (a *API) handleInvoice(w http.ResponseWriter, r *http.Request, companyID string) {
	switch r.Method {
	case http.MethodGet:
		inv, err := a.service.Open(r.Context(), companyID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeInvoice(w, inv)
	case http.MethodPatch:
		var edit domain.InvoiceEdit
		if err := decodeJSON(r, &edit); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		inv, err := a.service.Apply(r.Context(), companyID, edit)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeInvoice(w, inv)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleInvoiceItems(w http.ResponseWriter, r *http.Request, companyID string) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	inv, err := a.service.AddItem(r.Context(), companyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeInvoice(w, inv)
}

func (a *API) handleInvoiceItem(w http.ResponseWriter, r *http.Request, companyID string, rawIndex string) {
	index, err := strconv.Atoi(strings.TrimSpace(rawIndex))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("item index must be an integer"))
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var edit domain.ItemEdit
		if err := decodeJSON(r, &edit); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		inv, err := a.service.UpdateItem(r.Context(), companyID, index, edit)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeInvoice(w, inv)
	case http.MethodDelete:
		inv, err := a.service.RemoveItem(r.Context(), companyID, index)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeInvoice(w, inv)
	default:
		writeMethodNotAllowed(w)
	}
}

type setImageFunc func(ctx context.Context, companyID string, image []byte) (domain.Invoice, error)

func (a *API) handleInvoiceImage(w http.ResponseWriter, r *http.Request, companyID string, set setImageFunc, remove func(ctx context.Context, companyID string) (domain.Invoice, error)) {
	switch r.Method {
	case http.MethodPut:
		// One extra byte so an at-limit upload and an over-limit upload are
		// distinguishable after the read.
		body := http.MaxBytesReader(w, r.Body, service.MaxImageBytes+1)
		image, err := io.ReadAll(body)
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, service.ErrImageTooLarge)
			return
		}
		inv, err := set(r.Context(), companyID, image)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeInvoice(w, inv)
	case http.MethodDelete:
		inv, err := remove(r.Context(), companyID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeInvoice(w, inv)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleInvoiceReset(w http.ResponseWriter, r *http.Request, companyID string) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	inv, err := a.service.Reset(r.Context(), companyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeInvoice(w, inv)
}

func (a *API) handleInvoiceExport(w http.ResponseWriter, r *http.Request, companyID string) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	export, err := a.service.Export(r.Context(), companyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.PDF)))
	_, _ = w.Write(export.PDF)
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if isJSONMutation(r) {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(startedAt))
	})
}

func isJSONMutation(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPatch:
		return strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json")
	}
	return false
}

// writeInvoice responds with the draft plus its derived totals, so clients
// never recompute arithmetic the backend owns.
func writeInvoice(w http.ResponseWriter, inv domain.Invoice) {
	writeJSON(w, http.StatusOK, map[string]any{
		"invoice":   inv,
		"subtotal":  inv.Subtotal(),
		"total_due": inv.TotalDue(),
	})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownCompany):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, service.ErrImageTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err)
	case errors.Is(err, service.ErrUnsupportedType):
		writeError(w, http.StatusUnsupportedMediaType, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	// 5xx details stay in the log; clients get a generic message.
	msg := err.Error()
	if status >= 500 {
		log.Printf("internal error (status %d): %v", status, err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
