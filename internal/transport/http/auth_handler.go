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
	"log/slog"
	"net/http"

	"github.com/noteloft/noteloft/internal/observability/logger"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an email/password pair and issues a bearer token.
// Unknown email and wrong password produce the identical 400 response.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ident, err := h.identityService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.meter.RecordLoginFailure(r.Context())
		respondMessage(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	tok, err := h.tokenService.Issue(ident.UserID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue token",
			logger.Error(err),
			logger.UserID(ident.UserID),
		)
		respondMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	h.meter.RecordLogin(r.Context(), ident.Tenant.Slug)

	respondJSON(w, http.StatusOK, map[string]any{
		"token": tok,
		"user":  identityPayload(ident),
	})
}

// Me returns the caller's identity with a live tenant snapshot
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ident := GetIdentity(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{
		"user": identityPayload(ident),
	})
}
