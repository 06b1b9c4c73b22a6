// Package emulator implements an in-memory stand-in for the invoice
// platform API: the same routes and wire shapes, with a deterministic fake
// extraction step instead of the real OCR pipeline. It backs the apiclient
// tests and the `gstdesk emulate` command for offline development.
package emulator

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gstdesk/internal/ratelimit"
	"gstdesk/internal/token"
	"gstdesk/internal/util"
	"gstdesk/pkg/auth"
	"gstdesk/pkg/domain"
)

type user struct {
	id           string
	email        string
	fullName     string
	passwordHash string
}

// Server holds the emulated platform state.
type Server struct {
	tokenTTL time.Duration
	now      func() time.Time
	issuer   *token.Issuer
	verifier *token.Verifier
	limiter  *ratelimit.FixedWindowLimiter
	router   chi.Router

	mu         sync.Mutex
	usersByID  map[string]user
	userEmails map[string]string // email -> user id
	businesses map[string]domain.Business
	bizOwner   map[string]string // business id -> user id
	invoices   map[string]*domain.Invoice
}

// Option configures the emulator.
type Option func(*Server)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithTokenTTL overrides the issued token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) { s.tokenTTL = ttl }
}

// New builds an emulator with empty state.
func New(secret string, opts ...Option) *Server {
	s := &Server{
		tokenTTL:   token.DefaultTTL,
		now:        time.Now,
		usersByID:  make(map[string]user),
		userEmails: make(map[string]string),
		businesses: make(map[string]domain.Business),
		bizOwner:   make(map[string]string),
		invoices:   make(map[string]*domain.Invoice),
	}
	for _, opt := range opts {
		opt(s)
	}
	now := func() time.Time { return s.now() }
	s.issuer, _ = token.NewIssuer(secret, s.tokenTTL, now)
	s.verifier, _ = token.NewVerifier(secret, now)
	// Generous for tests, tight enough to blunt credential stuffing.
	s.limiter, _ = ratelimit.NewFixedWindowLimiter(30, time.Minute)
	s.routes()
	return s
}

// Handler returns the emulator's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(util.WithRequestID)
	r.Use(util.WithRequestLog)
	r.Use(util.WithCORS)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Group(func(r chi.Router) {
		r.Use(s.throttle)
		r.Post("/api/v1/auth/signup", s.handleSignup)
		r.Post("/api/v1/auth/login", s.handleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/api/v1/businesses", s.handleListBusinesses)
		r.Post("/api/v1/businesses", s.handleCreateBusiness)
		r.Get("/api/v1/businesses/{id}", s.handleGetBusiness)

		r.Get("/api/v1/invoices", s.handleListInvoices)
		r.Post("/api/v1/invoices", s.handleUploadInvoice)
		r.Get("/api/v1/invoices/{id}", s.handleGetInvoice)
		r.Patch("/api/v1/invoices/{id}", s.handlePatchInvoice)
		r.Delete("/api/v1/invoices/{id}", s.handleDeleteInvoice)
		r.Post("/api/v1/invoices/{id}/process", s.handleProcessInvoice)

		r.Get("/api/v1/reports/pl", s.handleProfitAndLoss)
		r.Get("/api/v1/reports/expenses", s.handleExpenses)
		r.Get("/api/v1/gst/businesses/{id}/liability", s.handleLiability)
		r.Post("/api/v1/gst/gstr1/prepare", s.handlePrepareGSTR1)
		r.Post("/api/v1/gst/gstr3b/prepare", s.handlePrepareGSTR3B)
	})
	s.router = r
}

type contextKey string

const userIDKey contextKey = "userID"

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := token.BearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		id, err := s.verifier.Verify(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), id.Subject)))
	})
}

func (s *Server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(util.ClientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "hash password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.userEmails[email]; exists {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	u := user{id: uuid.NewString(), email: email, fullName: req.FullName, passwordHash: hash}
	s.usersByID[u.id] = u
	s.userEmails[email] = u.id
	writeJSON(w, http.StatusOK, domain.User{ID: u.id, Email: u.email, FullName: u.fullName})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	id, ok := s.userEmails[strings.ToLower(strings.TrimSpace(req.Email))]
	u := s.usersByID[id]
	s.mu.Unlock()
	if !ok || !auth.CheckPassword(req.Password, u.passwordHash) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	raw, err := s.issuer.Issue(u.id, u.email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": raw, "token_type": "bearer"})
}

func (s *Server) handleListBusinesses(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Business{}
	for id, biz := range s.businesses {
		if s.bizOwner[id] == userID {
			out = append(out, biz)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateBusiness(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name"`
		GSTIN        string `json:"gstin"`
		BusinessType string `json:"business_type"`
		Address      string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "business name required")
		return
	}
	biz := domain.Business{
		ID:           uuid.NewString(),
		Name:         req.Name,
		GSTIN:        req.GSTIN,
		BusinessType: req.BusinessType,
		Address:      req.Address,
		CreatedAt:    s.now().UTC(),
	}
	s.mu.Lock()
	s.businesses[biz.ID] = biz
	s.bizOwner[biz.ID] = userIDFrom(r.Context())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, biz)
}

func (s *Server) handleGetBusiness(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	biz, ok := s.businesses[id]
	owner := s.bizOwner[id]
	s.mu.Unlock()
	if !ok || owner != userIDFrom(r.Context()) {
		writeError(w, http.StatusNotFound, "Business not found")
		return
	}
	writeJSON(w, http.StatusOK, biz)
}

func withUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
