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

// Package token issues and verifies the signed bearer tokens that carry a
// request's identity. A token binds only the user ID; role, tenant, and plan
// are re-resolved from storage on every request so that account changes take
// effect without re-login. Expiry is the only revocation path.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: bad signature,
// malformed token, wrong algorithm, and expiry. Callers must not be able to
// tell these apart.
var ErrInvalidToken = errors.New("invalid token")

// Service signs and verifies identity tokens
type Service struct {
	secret   []byte
	lifetime time.Duration
}

// NewService creates a new token service. The secret comes from the
// environment; rotating it invalidates all outstanding tokens.
func NewService(secret string, lifetime time.Duration) *Service {
	return &Service{
		secret:   []byte(secret),
		lifetime: lifetime,
	}
}

// Issue produces a signed token binding only the user ID, valid for the
// configured lifetime (7 days by default). No side effects.
func (s *Service) Issue(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the signature and validity window and returns the bound
// user ID. Every failure mode returns ErrInvalidToken.
func (s *Service) Verify(raw string) (string, error) {
	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
