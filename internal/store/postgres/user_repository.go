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
	"github.com/noteloft/noteloft/internal/identity"
)

// UserRepository implements identity.UserRepository
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *identity.User) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO users (id, tenant_id, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, user.ID, user.TenantID, user.Email, user.PasswordHash, string(user.Role), now)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*identity.User, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email. Emails are unique across tenants, so
// no tenant scoping applies here: login has no tenant context yet.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	return r.get(ctx, `WHERE email = $1`, email)
}

func (r *UserRepository) get(ctx context.Context, where string, arg any) (*identity.User, error) {
	var user identity.User
	var role string

	err := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, email, password_hash, role, created_at, updated_at
		FROM users `+where,
		arg,
	).Scan(&user.ID, &user.TenantID, &user.Email, &user.PasswordHash, &role,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Role, err = identity.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("corrupt user record %s: %w", user.ID, err)
	}

	return &user, nil
}

// ListByTenant retrieves all users of a tenant
func (r *UserRepository) ListByTenant(ctx context.Context, tenantID string) ([]*identity.User, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE tenant_id = $1
		ORDER BY created_at
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*identity.User
	for rows.Next() {
		var user identity.User
		var role string
		if err := rows.Scan(&user.ID, &user.TenantID, &user.Email, &user.PasswordHash,
			&role, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.Role, err = identity.ParseRole(role)
		if err != nil {
			return nil, fmt.Errorf("corrupt user record %s: %w", user.ID, err)
		}
		users = append(users, &user)
	}

	return users, rows.Err()
}
