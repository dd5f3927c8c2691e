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

// Package quota decides whether a tenant's plan permits creating another
// note. It is a policy decision only, with no side effects: the caller owns
// the count and the subsequent insert. The authoritative guard against
// concurrent creation at the limit boundary is the store's conditional
// insert; this package shapes the pre-check and the deny payload.
package quota

import "github.com/noteloft/noteloft/internal/tenant"

// Decision is the outcome of a quota check. On a denial Limit and Current
// carry the plan ceiling and the observed count so the caller can render an
// upgrade prompt.
type Decision struct {
	Allowed bool
	Limit   int
	Current int
}

// MayCreate reports whether the tenant may create one more note given the
// observed count. Pro tenants are always allowed.
func MayCreate(t *tenant.Tenant, currentCount int) Decision {
	if t.Unlimited() {
		return Decision{Allowed: true, Limit: tenant.UnlimitedNotes, Current: currentCount}
	}
	return Decision{
		Allowed: currentCount < t.NoteLimit,
		Limit:   t.NoteLimit,
		Current: currentCount,
	}
}
