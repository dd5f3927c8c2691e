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

package authn

import (
	"context"
	"testing"
	"time"

	"github.com/noteloft/noteloft/internal/audit"
	"github.com/noteloft/noteloft/internal/identity"
	"github.com/noteloft/noteloft/internal/tenant"
	"github.com/noteloft/noteloft/internal/token"
)

// stubResolver resolves a fixed set of user IDs
type stubResolver struct {
	identities map[string]*identity.Identity
}

func (r *stubResolver) Resolve(ctx context.Context, userID string) (*identity.Identity, error) {
	ident, ok := r.identities[userID]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return ident, nil
}

func newTestGate(t *testing.T) (*Gate, *token.Service, *stubResolver) {
	t.Helper()
	tokens := token.NewService("gate-test-secret-32-bytes-long!!!!", time.Hour)
	resolver := &stubResolver{identities: map[string]*identity.Identity{
		"user-1": {
			UserID: "user-1",
			Email:  "admin@acme.test",
			Role:   identity.RoleAdmin,
			Tenant: tenant.Tenant{ID: "tenant-1", Slug: "acme", Tier: tenant.TierFree, NoteLimit: tenant.FreeNoteLimit},
		},
	}}
	return NewGate(tokens, resolver, audit.NewSlogLogger()), tokens, resolver
}

// TestPurpose: Validates the full bearer credential resolution path.
// Scope: Unit Test
// Security: Authentication gate in front of every protected operation
// Expected: A valid token resolves to the bound user's identity.
// Test Case ID: GTE-01
func TestAuthn_Gate_Authenticate(t *testing.T) {
	gate, tokens, _ := newTestGate(t)
	ctx := context.Background()

	raw, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	ident, err := gate.Authenticate(ctx, "Bearer "+raw)
	if err != nil {
		t.Fatalf("expected success, got err: %v", err)
	}
	if ident.UserID != "user-1" {
		t.Errorf("expected user-1, got %s", ident.UserID)
	}
	if ident.Tenant.Slug != "acme" {
		t.Errorf("expected tenant snapshot, got %q", ident.Tenant.Slug)
	}
}

// TestPurpose: Validates handling of missing and malformed Authorization headers.
// Scope: Unit Test
// Security: Requests without a usable credential never reach resolution
// Expected: ErrMissingCredential for absent, non-bearer, and empty credentials.
// Test Case ID: GTE-02
func TestAuthn_Gate_MissingCredential(t *testing.T) {
	gate, _, _ := newTestGate(t)
	ctx := context.Background()

	for _, header := range []string{"", "Basic dXNlcjpwYXNz", "Bearer", "Bearer "} {
		if _, err := gate.Authenticate(ctx, header); err != ErrMissingCredential {
			t.Errorf("header %q: expected ErrMissingCredential, got %v", header, err)
		}
	}
}

// TestPurpose: Validates that the bearer scheme is matched case-insensitively.
// Scope: Unit Test
// Expected: "bearer" and "BEARER" are accepted like "Bearer".
// Test Case ID: GTE-03
func TestAuthn_Gate_BearerSchemeCaseInsensitive(t *testing.T) {
	gate, tokens, _ := newTestGate(t)
	ctx := context.Background()

	raw, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	for _, scheme := range []string{"bearer ", "BEARER ", "BeArEr "} {
		if _, err := gate.Authenticate(ctx, scheme+raw); err != nil {
			t.Errorf("scheme %q: expected success, got %v", scheme, err)
		}
	}
}

// TestPurpose: Validates that forged tokens and tokens for deleted users fail
// with the same error.
// Scope: Unit Test
// Security: Deleted-user revocation; failure modes are indistinguishable
// Expected: ErrInvalidCredential for a garbage token and for a valid token
// whose user no longer exists.
// Test Case ID: GTE-04
func TestAuthn_Gate_InvalidCredential(t *testing.T) {
	gate, tokens, resolver := newTestGate(t)
	ctx := context.Background()

	_, errForged := gate.Authenticate(ctx, "Bearer not.a.token")
	if errForged != ErrInvalidCredential {
		t.Errorf("expected ErrInvalidCredential for forged token, got %v", errForged)
	}

	raw, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	delete(resolver.identities, "user-1")

	_, errDeleted := gate.Authenticate(ctx, "Bearer "+raw)
	if errDeleted != errForged {
		t.Errorf("deleted user and forged token must be indistinguishable: %v vs %v", errDeleted, errForged)
	}
}
