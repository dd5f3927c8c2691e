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
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/noteloft/noteloft/internal/authz"
	"github.com/noteloft/noteloft/internal/identity"
	"github.com/noteloft/noteloft/internal/observability/logger"
)

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			slog.InfoContext(r.Context(), "http_request_start",
				logger.RequestID(middleware.GetReqID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.RemoteAddr(r.RemoteAddr),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				slog.InfoContext(r.Context(), "http_request_end",
					logger.RequestID(middleware.GetReqID(r.Context())),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.RemoteAddr(r.RemoteAddr),
					logger.UserAgent(r.UserAgent()),
					logger.StatusCode(ww.Status()),
					logger.Duration(time.Since(start).Milliseconds()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// AuthMiddleware resolves the bearer credential into a verified identity and
// attaches it to the request context. Missing header, bad signature, expired
// token, and deleted user all produce the identical response body, so the
// failure branch cannot be used to probe accounts.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, err := h.gate.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			respondMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		// Tenant context derives exclusively from the resolved identity;
		// a tenant header on an authenticated request is a spoofing attempt.
		if r.Header.Get("X-Tenant-ID") != "" {
			slog.WarnContext(r.Context(), "tenant header on authenticated request",
				logger.UserID(ident.UserID),
			)
			respondMessage(w, http.StatusBadRequest, "X-Tenant-ID header is not allowed; tenant is derived from the token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
	})
}

// RequireRole gates a subtree on role membership. Must be mounted inside
// AuthMiddleware: it assumes a resolved identity, never the reverse.
func RequireRole(roles ...identity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident := GetIdentity(r.Context())
			if ident == nil {
				respondMessage(w, http.StatusUnauthorized, "Invalid credentials")
				return
			}

			if err := authz.Require(ident, roles...); err != nil {
				respondMessage(w, http.StatusForbidden, "Access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
