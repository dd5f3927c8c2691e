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
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/noteloft/noteloft/internal/observability/logger"
	"github.com/noteloft/noteloft/internal/tenant"
)

// GetTenant returns the caller's own tenant. Addressing any other tenant's
// slug is denied before the record is read.
func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	ident := GetIdentity(r.Context())
	t, err := h.tenantService.GetForActor(r.Context(), ident.UserID, ident.Tenant.ID, chi.URLParam(r, "slug"))
	if err != nil {
		h.respondTenantError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toTenantPayload(t))
}

// UpgradeTenant performs the one-way free -> pro transition for the caller's
// own tenant. Admin only; cross-tenant attempts are denied before mutation.
func (h *Handler) UpgradeTenant(w http.ResponseWriter, r *http.Request) {
	ident := GetIdentity(r.Context())
	t, err := h.tenantService.Upgrade(r.Context(), ident.UserID, ident.Tenant.ID, chi.URLParam(r, "slug"))
	if err != nil {
		h.respondTenantError(w, r, err)
		return
	}

	h.meter.RecordUpgrade(r.Context(), t.Slug)

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Tenant upgraded to Pro plan successfully",
		"tenant":  toTenantPayload(t),
	})
}

func (h *Handler) respondTenantError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tenant.ErrAccessDenied):
		respondMessage(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, tenant.ErrTenantNotFound):
		respondMessage(w, http.StatusNotFound, "Tenant not found")
	default:
		slog.ErrorContext(r.Context(), "tenant operation failed", logger.Error(err))
		respondMessage(w, http.StatusInternalServerError, "Server error")
	}
}
