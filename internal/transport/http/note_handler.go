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

	"github.com/go-chi/chi/v5"
	"github.com/noteloft/noteloft/internal/note"
	"github.com/noteloft/noteloft/internal/observability/logger"
)

// NoteRequest represents note creation/update data
type NoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateNote creates a note for the caller's tenant, subject to the plan
// limit. A denial carries the limit and observed count for the upgrade
// prompt.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ident := GetIdentity(r.Context())
	n, err := h.noteService.Create(r.Context(), ident, req.Title, req.Content)
	if err != nil {
		var quotaErr *note.QuotaError
		switch {
		case errors.As(err, &quotaErr):
			h.meter.RecordQuotaDenial(r.Context(), ident.Tenant.Slug)
			respondJSON(w, http.StatusForbidden, map[string]any{
				"message": "Free plan limit reached. Upgrade to Pro for unlimited notes.",
				"limit":   quotaErr.Limit,
				"current": quotaErr.Current,
			})
		case errors.Is(err, note.ErrEmptyTitle), errors.Is(err, note.ErrEmptyContent):
			respondMessage(w, http.StatusBadRequest, err.Error())
		default:
			slog.ErrorContext(r.Context(), "failed to create note",
				logger.Error(err),
				logger.TenantID(ident.Tenant.ID),
			)
			respondMessage(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	h.meter.RecordNoteCreated(r.Context(), ident.Tenant.Slug)

	respondJSON(w, http.StatusCreated, n)
}

// ListNotes returns the caller's tenant's notes, newest first
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	ident := GetIdentity(r.Context())
	notes, err := h.noteService.List(r.Context(), ident)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list notes",
			logger.Error(err),
			logger.TenantID(ident.Tenant.ID),
		)
		respondMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	if notes == nil {
		notes = []*note.Note{}
	}

	respondJSON(w, http.StatusOK, notes)
}

// GetNote returns one note. A note of another tenant is indistinguishable
// from a missing one.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	ident := GetIdentity(r.Context())
	n, err := h.noteService.Get(r.Context(), ident, chi.URLParam(r, "noteID"))
	if err != nil {
		h.respondNoteError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, n)
}

// UpdateNote rewrites a note's title and content
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ident := GetIdentity(r.Context())
	n, err := h.noteService.Update(r.Context(), ident, chi.URLParam(r, "noteID"), req.Title, req.Content)
	if err != nil {
		if errors.Is(err, note.ErrEmptyTitle) || errors.Is(err, note.ErrEmptyContent) {
			respondMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respondNoteError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, n)
}

// DeleteNote removes a note
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	ident := GetIdentity(r.Context())
	if err := h.noteService.Delete(r.Context(), ident, chi.URLParam(r, "noteID")); err != nil {
		h.respondNoteError(w, r, err)
		return
	}

	respondMessage(w, http.StatusOK, "Note deleted successfully")
}

func (h *Handler) respondNoteError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, note.ErrNoteNotFound) {
		respondMessage(w, http.StatusNotFound, "Note not found")
		return
	}

	slog.ErrorContext(r.Context(), "note operation failed", logger.Error(err))
	respondMessage(w, http.StatusInternalServerError, "Server error")
}
