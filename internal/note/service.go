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

package note

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/noteloft/noteloft/internal/audit"
	"github.com/noteloft/noteloft/internal/id"
	"github.com/noteloft/noteloft/internal/identity"
	"github.com/noteloft/noteloft/internal/quota"
)

// Service provides note business logic. All operations act within the
// actor's tenant; the tenant ID is taken from the verified identity, never
// from request input.
type Service struct {
	repo        Repository
	auditLogger audit.Logger
}

// NewService creates a new note service
func NewService(repo Repository, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
	}
}

// Create creates a note for the actor's tenant, subject to the plan limit.
// The quota check runs twice: a pure pre-check against the current count to
// shape the deny response cheaply, then the store's conditional insert as
// the authoritative guard. Two concurrent requests at the limit boundary
// therefore cannot both persist.
func (s *Service) Create(ctx context.Context, actor *identity.Identity, title, content string) (*Note, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if content == "" {
		return nil, ErrEmptyContent
	}

	count, err := s.repo.CountByTenant(ctx, actor.Tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count notes: %w", err)
	}

	if d := quota.MayCreate(&actor.Tenant, count); !d.Allowed {
		s.logQuotaExceeded(ctx, actor, d.Limit, d.Current)
		return nil, &QuotaError{Limit: d.Limit, Current: d.Current}
	}

	n := &Note{
		ID:          id.NewUUIDv7(),
		TenantID:    actor.Tenant.ID,
		AuthorID:    actor.UserID,
		AuthorEmail: actor.Email,
		Title:       title,
		Content:     content,
	}

	if err := s.repo.CreateWithinLimit(ctx, n); err != nil {
		if errors.Is(err, ErrLimitReached) {
			// Lost the race against a concurrent creation; report the
			// count the store settled on.
			current, cerr := s.repo.CountByTenant(ctx, actor.Tenant.ID)
			if cerr != nil {
				current = count
			}
			s.logQuotaExceeded(ctx, actor, actor.Tenant.NoteLimit, current)
			return nil, &QuotaError{Limit: actor.Tenant.NoteLimit, Current: current}
		}
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeNoteCreated,
		TenantID: actor.Tenant.ID,
		ActorID:  actor.UserID,
		Resource: "note:" + n.ID,
	})

	return n, nil
}

// List retrieves the actor's tenant's notes, newest first
func (s *Service) List(ctx context.Context, actor *identity.Identity) ([]*Note, error) {
	return s.repo.ListByTenant(ctx, actor.Tenant.ID)
}

// Get retrieves one note within the actor's tenant
func (s *Service) Get(ctx context.Context, actor *identity.Identity, noteID string) (*Note, error) {
	return s.repo.GetByID(ctx, actor.Tenant.ID, noteID)
}

// Update rewrites a note's title and content within the actor's tenant
func (s *Service) Update(ctx context.Context, actor *identity.Identity, noteID, title, content string) (*Note, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if content == "" {
		return nil, ErrEmptyContent
	}

	n, err := s.repo.GetByID(ctx, actor.Tenant.ID, noteID)
	if err != nil {
		return nil, err
	}

	n.Title = title
	n.Content = content

	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}

	return n, nil
}

// Delete removes a note within the actor's tenant
func (s *Service) Delete(ctx context.Context, actor *identity.Identity, noteID string) error {
	if err := s.repo.Delete(ctx, actor.Tenant.ID, noteID); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeNoteDeleted,
		TenantID: actor.Tenant.ID,
		ActorID:  actor.UserID,
		Resource: "note:" + noteID,
	})

	return nil
}

func (s *Service) logQuotaExceeded(ctx context.Context, actor *identity.Identity, limit, current int) {
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeQuotaExceeded,
		TenantID: actor.Tenant.ID,
		ActorID:  actor.UserID,
		Resource: "note",
		Metadata: map[string]any{
			audit.AttrLimit:   limit,
			audit.AttrCurrent: current,
		},
	})
}
