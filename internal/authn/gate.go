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

// Package authn resolves a request's bearer credential into a verified
// Identity. Every protected operation passes through this gate before any
// role or quota check.
package authn

import (
	"context"
	"errors"
	"strings"

	"github.com/noteloft/noteloft/internal/audit"
	"github.com/noteloft/noteloft/internal/identity"
)

// Gate failure modes. The transport layer maps both to the identical
// response body; the distinction exists only for internal logging.
var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
)

// TokenVerifier verifies a raw bearer token and returns the bound user ID
type TokenVerifier interface {
	Verify(raw string) (string, error)
}

// Gate authenticates requests. Read-only: it never mutates storage.
type Gate struct {
	tokens      TokenVerifier
	resolver    identity.Resolver
	auditLogger audit.Logger
}

// NewGate creates a new authentication gate
func NewGate(tokens TokenVerifier, resolver identity.Resolver, auditLogger audit.Logger) *Gate {
	return &Gate{
		tokens:      tokens,
		resolver:    resolver,
		auditLogger: auditLogger,
	}
}

// Authenticate resolves the Authorization header value into a verified
// Identity. Signature failure, expiry, and a deleted user all surface as
// ErrInvalidCredential: a token for a user that no longer exists is as dead
// as a forged one.
func (g *Gate) Authenticate(ctx context.Context, authorization string) (*identity.Identity, error) {
	raw, ok := bearerToken(authorization)
	if !ok {
		return nil, ErrMissingCredential
	}

	userID, err := g.tokens.Verify(raw)
	if err != nil {
		g.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeTokenRejected,
			Resource: "token",
			Metadata: map[string]any{audit.AttrReason: "verification_failed"},
		})
		return nil, ErrInvalidCredential
	}

	ident, err := g.resolver.Resolve(ctx, userID)
	if err != nil {
		g.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeTokenRejected,
			ActorID:  userID,
			Resource: "token",
			Metadata: map[string]any{audit.AttrReason: "user_not_resolvable"},
		})
		return nil, ErrInvalidCredential
	}

	return ident, nil
}

// bearerToken extracts the credential from an "Authorization: Bearer <t>"
// header value. The scheme comparison is case-insensitive per RFC 9110.
func bearerToken(authorization string) (string, bool) {
	const prefix = "Bearer "
	if len(authorization) <= len(prefix) || !strings.EqualFold(authorization[:len(prefix)], prefix) {
		return "", false
	}
	raw := strings.TrimSpace(authorization[len(prefix):])
	return raw, raw != ""
}
