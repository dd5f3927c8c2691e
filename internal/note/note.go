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
	"time"
)

// Domain errors
var (
	// ErrNoteNotFound covers both a genuinely missing note and a note
	// belonging to another tenant, deliberately indistinguishable to
	// prevent cross-tenant existence probing.
	ErrNoteNotFound = errors.New("note not found")
	ErrEmptyTitle   = errors.New("title is required")
	ErrEmptyContent = errors.New("content is required")

	// ErrLimitReached is returned by the repository when the conditional
	// insert finds the tenant at its note limit.
	ErrLimitReached = errors.New("note limit reached")
)

// QuotaError is returned when a free tenant is at its plan limit. It carries
// the ceiling and the observed count for the upgrade prompt.
type QuotaError struct {
	Limit   int
	Current int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("note limit reached: %d of %d", e.Current, e.Limit)
}

// Note represents a note scoped to one tenant
type Note struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	AuthorID    string    `json:"author_id"`
	AuthorEmail string    `json:"author_email"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Repository defines the interface for note persistence. Every method is
// scoped by tenant ID; there is no way to address a note across tenants.
type Repository interface {
	// CreateWithinLimit inserts the note only if the owning tenant is
	// below its note limit (or unlimited), as one atomic operation
	// against the store. Returns ErrLimitReached when the guard fails.
	CreateWithinLimit(ctx context.Context, n *Note) error

	// CountByTenant returns the current number of notes for a tenant.
	// Recomputed per call, never cached.
	CountByTenant(ctx context.Context, tenantID string) (int, error)

	// ListByTenant retrieves a tenant's notes, newest first
	ListByTenant(ctx context.Context, tenantID string) ([]*Note, error)

	// GetByID retrieves a note within a tenant
	GetByID(ctx context.Context, tenantID, id string) (*Note, error)

	// Update updates a note's title and content within a tenant
	Update(ctx context.Context, n *Note) error

	// Delete removes a note within a tenant
	Delete(ctx context.Context, tenantID, id string) error
}
