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

// Package authz enforces role membership for role-restricted operations.
// It is a pure function of the verified identity and the operation's
// allowed-role set; it performs no I/O and must run strictly after the
// authentication gate.
package authz

import (
	"errors"

	"github.com/noteloft/noteloft/internal/identity"
)

// ErrForbidden is returned when the identity's role is not in the allowed set
var ErrForbidden = errors.New("forbidden")

// Require returns nil when the identity's role is one of the allowed roles
func Require(ident *identity.Identity, allowed ...identity.Role) error {
	for _, role := range allowed {
		if ident.Role == role {
			return nil
		}
	}
	return ErrForbidden
}
