// Copyright 2026 The Noteloft Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/noteloft/noteloft/internal/audit"
	"github.com/noteloft/noteloft/internal/authn"
	"github.com/noteloft/noteloft/internal/identity"
	"github.com/noteloft/noteloft/internal/note"
	"github.com/noteloft/noteloft/internal/observability/metrics"
	"github.com/noteloft/noteloft/internal/tenant"
	"github.com/noteloft/noteloft/internal/token"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	identityService *identity.Service
	tenantService   *tenant.Service
	noteService     *note.Service
	tokenService    *token.Service
	gate            *authn.Gate
	meter           *metrics.Meter
	auditLogger     audit.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	identityService *identity.Service,
	tenantService *tenant.Service,
	noteService *note.Service,
	tokenService *token.Service,
	gate *authn.Gate,
	meter *metrics.Meter,
	auditLogger audit.Logger,
) *Handler {
	return &Handler{
		identityService: identityService,
		tenantService:   tenantService,
		noteService:     noteService,
		tokenService:    tokenService,
		gate:            gate,
		meter:           meter,
		auditLogger:     auditLogger,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/auth/login", h.Login)

		// Protected: every route below passes the authentication gate
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Get("/auth/me", h.Me)

			r.Route("/notes", func(r chi.Router) {
				r.Get("/", h.ListNotes)
				r.Post("/", h.CreateNote)
				r.Get("/{noteID}", h.GetNote)
				r.Put("/{noteID}", h.UpdateNote)
				r.Delete("/{noteID}", h.DeleteNote)
			})

			// Admin-only
			r.Route("/users", func(r chi.Router) {
				r.Use(RequireRole(identity.RoleAdmin))
				r.Get("/", h.ListUsers)
				r.Post("/invite", h.InviteUser)
			})

			r.Route("/tenants/{slug}", func(r chi.Router) {
				r.Get("/", h.GetTenant)
				r.With(RequireRole(identity.RoleAdmin)).Post("/upgrade", h.UpgradeTenant)
			})
		})
	})

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "noteloft",
	})
}

// userPayload is the wire shape of a user with their tenant snapshot
type userPayload struct {
	ID     string        `json:"id"`
	Email  string        `json:"email"`
	Role   identity.Role `json:"role"`
	Tenant tenantPayload `json:"tenant"`
}

// tenantPayload is the wire shape of a tenant
type tenantPayload struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Slug         string      `json:"slug"`
	Subscription tenant.Tier `json:"subscription"`
	NoteLimit    int         `json:"noteLimit"`
}

func identityPayload(ident *identity.Identity) userPayload {
	return userPayload{
		ID:     ident.UserID,
		Email:  ident.Email,
		Role:   ident.Role,
		Tenant: toTenantPayload(&ident.Tenant),
	}
}

func toTenantPayload(t *tenant.Tenant) tenantPayload {
	return tenantPayload{
		ID:           t.ID,
		Name:         t.Name,
		Slug:         t.Slug,
		Subscription: t.Tier,
		NoteLimit:    t.NoteLimit,
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"message": message,
	})
}

func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
