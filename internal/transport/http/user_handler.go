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
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/noteloft/noteloft/internal/identity"
	"github.com/noteloft/noteloft/internal/observability/logger"
)

// listedUser is the wire shape of a user in the admin listing. The tenant
// snapshot is the caller's own: listing never crosses tenants.
type listedUser struct {
	ID        string        `json:"id"`
	Email     string        `json:"email"`
	Role      identity.Role `json:"role"`
	Tenant    tenantPayload `json:"tenant"`
	CreatedAt time.Time     `json:"created_at"`
}

// ListUsers returns all users of the caller's tenant. Admin only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ident := GetIdentity(r.Context())
	users, err := h.identityService.ListUsers(r.Context(), ident)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list users",
			logger.Error(err),
			logger.TenantID(ident.Tenant.ID),
		)
		respondMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	payload := make([]listedUser, 0, len(users))
	for _, u := range users {
		payload = append(payload, listedUser{
			ID:        u.ID,
			Email:     u.Email,
			Role:      u.Role,
			Tenant:    toTenantPayload(&ident.Tenant),
			CreatedAt: u.CreatedAt,
		})
	}

	respondJSON(w, http.StatusOK, payload)
}

// InviteRequest represents an invitation
type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// InviteUser creates a new user in the caller's tenant. Admin only. No email
// is sent; the invited account starts with the fixed initial password.
func (h *Handler) InviteUser(w http.ResponseWriter, r *http.Request) {
	var req InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	role, err := identity.ParseRole(req.Role)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Role must be admin or member")
		return
	}

	ident := GetIdentity(r.Context())
	user, err := h.identityService.Invite(r.Context(), ident, req.Email, role)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrUserAlreadyExists):
			respondMessage(w, http.StatusBadRequest, "User already exists")
		case errors.Is(err, identity.ErrInvalidEmail):
			respondMessage(w, http.StatusBadRequest, "Invalid email address")
		default:
			slog.ErrorContext(r.Context(), "failed to invite user",
				logger.Error(err),
				logger.TenantID(ident.Tenant.ID),
			)
			respondMessage(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "User invited successfully",
		"user": listedUser{
			ID:        user.ID,
			Email:     user.Email,
			Role:      user.Role,
			Tenant:    toTenantPayload(&ident.Tenant),
			CreatedAt: user.CreatedAt,
		},
	})
}
