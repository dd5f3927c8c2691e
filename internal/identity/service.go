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
	"fmt"
	"strings"

	"github.com/noteloft/noteloft/internal/audit"
	"github.com/noteloft/noteloft/internal/id"
	"github.com/noteloft/noteloft/internal/tenant"
)

// Invited users receive this fixed initial password. Invitation email
// delivery is out of scope; the inviting admin hands the password over.
const invitePassword = "password"

// Service provides identity-related business logic
type Service struct {
	users       UserRepository
	tenants     tenant.Repository
	hasher      *PasswordHasher
	auditLogger audit.Logger
}

// NewService creates a new identity service
func NewService(
	users UserRepository,
	tenants tenant.Repository,
	hasher *PasswordHasher,
	auditLogger audit.Logger,
) *Service {
	return &Service{
		users:       users,
		tenants:     tenants,
		hasher:      hasher,
		auditLogger: auditLogger,
	}
}

// Authenticate verifies an email/password pair and returns the caller's
// Identity. Unknown email and wrong password collapse into the same
// ErrInvalidCredentials so responses cannot be used to enumerate accounts.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			Resource: "login",
			Metadata: map[string]any{audit.AttrReason: "user_not_found"},
		})
		return nil, ErrInvalidCredentials
	}

	valid, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil || !valid {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			TenantID: user.TenantID,
			ActorID:  user.ID,
			Resource: "login",
			Metadata: map[string]any{audit.AttrReason: "invalid_password"},
		})
		return nil, ErrInvalidCredentials
	}

	ident, err := s.Resolve(ctx, user.ID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeLoginSuccess,
		TenantID: user.TenantID,
		ActorID:  user.ID,
		Resource: "login",
	})

	return ident, nil
}

// Resolve loads a user by ID joined with a live snapshot of their tenant.
// Called once per authenticated request; a deleted user fails here, which is
// how outstanding tokens are revoked without session storage.
func (s *Service) Resolve(ctx context.Context, userID string) (*Identity, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	t, err := s.tenants.GetByID(ctx, user.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tenant for user %s: %w", userID, err)
	}

	return &Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Tenant: *t,
	}, nil
}

// Invite creates a new user in the actor's tenant with the fixed initial
// password. Role gating happens at the transport layer; this method trusts
// the actor has already passed the authorization gate.
func (s *Service) Invite(ctx context.Context, actor *Identity, email string, role Role) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrUserAlreadyExists
	}

	passwordHash, err := s.hasher.Hash(invitePassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           id.NewUUIDv7(),
		TenantID:     actor.Tenant.ID,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserInvited,
		TenantID: actor.Tenant.ID,
		ActorID:  actor.UserID,
		Resource: "user",
		Metadata: map[string]any{"email": email, "role": string(role)},
	})

	return user, nil
}

// ListUsers retrieves all users of the actor's tenant
func (s *Service) ListUsers(ctx context.Context, actor *Identity) ([]*User, error) {
	return s.users.ListByTenant(ctx, actor.Tenant.ID)
}

func isValidEmail(email string) bool {
	// Basic shape check; the storage layer enforces uniqueness
	at := strings.IndexByte(email, '@')
	return at > 0 && at < len(email)-1 && len(email) < 255
}
