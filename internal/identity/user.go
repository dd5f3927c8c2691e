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

package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noteloft/noteloft/internal/tenant"
)

// Domain errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email address")
)

// Role is a user's role within their tenant
type Role string

// Roles
const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole validates a stored role value at the storage boundary
// so invalid values cannot enter the domain model.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleMember:
		return Role(s), nil
	}
	return "", fmt.Errorf("invalid role: %q", s)
}

// User represents a user account. Email is unique across all tenants.
type User struct {
	ID           string
	TenantID     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the verified caller of a request: the user joined with a live
// snapshot of their tenant. It is derived from storage on every request and
// never persisted, so role and tier changes take effect immediately.
type Identity struct {
	UserID string
	Email  string
	Role   Role
	Tenant tenant.Tenant
}

// Resolver resolves a user ID into a verified Identity. The per-request
// storage round trip behind this interface is deliberate: it is the
// revocation mechanism for deleted users and stale roles. A cached variant
// can be substituted here without touching the gates.
type Resolver interface {
	Resolve(ctx context.Context, userID string) (*Identity, error)
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email, across tenants
	GetByEmail(ctx context.Context, email string) (*User, error)

	// ListByTenant retrieves all users of a tenant
	ListByTenant(ctx context.Context, tenantID string) ([]*User, error)
}
