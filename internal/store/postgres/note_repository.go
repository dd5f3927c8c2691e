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

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/noteloft/noteloft/internal/note"
	"github.com/noteloft/noteloft/internal/tenant"
)

// NoteRepository implements note.Repository
type NoteRepository struct {
	db *DB
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// CreateWithinLimit inserts the note only if the owning tenant is below its
// note limit. The tenant row is locked for the duration of the transaction,
// which serializes concurrent count-and-insert sequences for one tenant: at
// most note_limit notes can ever persist for a free tenant.
func (r *NoteRepository) CreateWithinLimit(ctx context.Context, n *note.Note) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var tier string
	var noteLimit int
	err = tx.QueryRow(ctx, `
		SELECT tier, note_limit FROM tenants WHERE id = $1 FOR UPDATE
	`, n.TenantID).Scan(&tier, &noteLimit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenant.ErrTenantNotFound
		}
		return fmt.Errorf("failed to lock tenant: %w", err)
	}

	if tier != string(tenant.TierPro) {
		var count int
		if err := tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM notes WHERE tenant_id = $1
		`, n.TenantID).Scan(&count); err != nil {
			return fmt.Errorf("failed to count notes: %w", err)
		}
		if count >= noteLimit {
			return note.ErrLimitReached
		}
	}

	now := time.Now()
	_, err = tx.Exec(ctx, `
		INSERT INTO notes (id, tenant_id, author_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, n.ID, n.TenantID, n.AuthorID, n.Title, n.Content, now)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit note insert: %w", err)
	}

	n.CreatedAt = now
	n.UpdatedAt = now

	return nil
}

// CountByTenant returns the current number of notes for a tenant
func (r *NoteRepository) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := r.db.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notes WHERE tenant_id = $1
	`, tenantID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return count, nil
}

// ListByTenant retrieves a tenant's notes, newest first, with author email
func (r *NoteRepository) ListByTenant(ctx context.Context, tenantID string) ([]*note.Note, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT n.id, n.tenant_id, n.author_id, u.email, n.title, n.content,
			n.created_at, n.updated_at
		FROM notes n
		JOIN users u ON u.id = n.author_id
		WHERE n.tenant_id = $1
		ORDER BY n.created_at DESC
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []*note.Note
	for rows.Next() {
		var n note.Note
		if err := rows.Scan(&n.ID, &n.TenantID, &n.AuthorID, &n.AuthorEmail,
			&n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, &n)
	}

	return notes, rows.Err()
}

// GetByID retrieves a note within a tenant. A note of another tenant is
// reported as not found.
func (r *NoteRepository) GetByID(ctx context.Context, tenantID, id string) (*note.Note, error) {
	var n note.Note
	err := r.db.pool.QueryRow(ctx, `
		SELECT n.id, n.tenant_id, n.author_id, u.email, n.title, n.content,
			n.created_at, n.updated_at
		FROM notes n
		JOIN users u ON u.id = n.author_id
		WHERE n.id = $1 AND n.tenant_id = $2
	`, id, tenantID).Scan(&n.ID, &n.TenantID, &n.AuthorID, &n.AuthorEmail,
		&n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, note.ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return &n, nil
}

// Update updates a note's title and content within its tenant
func (r *NoteRepository) Update(ctx context.Context, n *note.Note) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE notes SET title = $3, content = $4, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
	`, n.ID, n.TenantID, n.Title, n.Content)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return note.ErrNoteNotFound
	}

	return nil
}

// Delete removes a note within a tenant
func (r *NoteRepository) Delete(ctx context.Context, tenantID, id string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM notes WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return note.ErrNoteNotFound
	}

	return nil
}
