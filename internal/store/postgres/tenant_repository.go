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
	"github.com/noteloft/noteloft/internal/tenant"
)

// TenantRepository implements tenant.Repository
type TenantRepository struct {
	db *DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// Create creates a new tenant
func (r *TenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO tenants (id, name, slug, tier, note_limit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, t.ID, t.Name, t.Slug, string(t.Tier), t.NoteLimit, now)
	if err != nil {
		return fmt.Errorf("failed to insert tenant: %w", err)
	}

	t.CreatedAt = now
	t.UpdatedAt = now

	return nil
}

// GetByID retrieves a tenant by ID
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

// GetBySlug retrieves a tenant by slug
func (r *TenantRepository) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	return r.get(ctx, `WHERE slug = $1`, slug)
}

func (r *TenantRepository) get(ctx context.Context, where string, arg any) (*tenant.Tenant, error) {
	var t tenant.Tenant
	var tier string

	err := r.db.pool.QueryRow(ctx, `
		SELECT id, name, slug, tier, note_limit, created_at, updated_at
		FROM tenants `+where,
		arg,
	).Scan(&t.ID, &t.Name, &t.Slug, &tier, &t.NoteLimit, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	// Validate the enum at the storage boundary
	t.Tier, err = tenant.ParseTier(tier)
	if err != nil {
		return nil, fmt.Errorf("corrupt tenant record %s: %w", t.ID, err)
	}

	return &t, nil
}

// Update updates a tenant's tier and note limit in one statement
func (r *TenantRepository) Update(ctx context.Context, t *tenant.Tenant) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE tenants
		SET name = $2, slug = $3, tier = $4, note_limit = $5, updated_at = NOW()
		WHERE id = $1
	`, t.ID, t.Name, t.Slug, string(t.Tier), t.NoteLimit)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}

	if result.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}

	return nil
}
