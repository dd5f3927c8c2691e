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

package http

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/noteloft/noteloft/internal/audit"
	"github.com/noteloft/noteloft/internal/authn"
	"github.com/noteloft/noteloft/internal/identity"
	"github.com/noteloft/noteloft/internal/note"
	"github.com/noteloft/noteloft/internal/observability/metrics"
	"github.com/noteloft/noteloft/internal/tenant"
	"github.com/noteloft/noteloft/internal/token"

	"github.com/go-chi/chi/v5"
)

// In-memory repositories backing the handler tests. memStore implements the
// tenant, user, and note repositories over one mutex so the conditional
// insert holds the same atomicity contract as the real store.
type memStore struct {
	mu      sync.Mutex
	tenants map[string]*tenant.Tenant
	users   map[string]*identity.User
	notes   map[string]*note.Note
}

func newMemStore() *memStore {
	return &memStore{
		tenants: make(map[string]*tenant.Tenant),
		users:   make(map[string]*identity.User),
		notes:   make(map[string]*note.Note),
	}
}

func (m *memStore) Create(ctx context.Context, t *tenant.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenants[t.ID] = t
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tenants {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (m *memStore) Update(ctx context.Context, t *tenant.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.tenants[t.ID] = &cp
	return nil
}

// userRepo narrows memStore to identity.UserRepository
type userRepo struct{ *memStore }

func (m userRepo) Create(ctx context.Context, u *identity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m userRepo) GetByID(ctx context.Context, id string) (*identity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return u, nil
}

func (m userRepo) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (m userRepo) ListByTenant(ctx context.Context, tenantID string) ([]*identity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*identity.User
	for _, u := range m.users {
		if u.TenantID == tenantID {
			out = append(out, u)
		}
	}
	return out, nil
}

// noteRepo narrows memStore to note.Repository
type noteRepo struct{ *memStore }

func (m noteRepo) CreateWithinLimit(ctx context.Context, n *note.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[n.TenantID]
	if !ok {
		return tenant.ErrTenantNotFound
	}
	if !t.Unlimited() {
		count := 0
		for _, existing := range m.notes {
			if existing.TenantID == n.TenantID {
				count++
			}
		}
		if count >= t.NoteLimit {
			return note.ErrLimitReached
		}
	}
	m.notes[n.ID] = n
	return nil
}

func (m noteRepo) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.notes {
		if n.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func (m noteRepo) ListByTenant(ctx context.Context, tenantID string) ([]*note.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*note.Note
	for _, n := range m.notes {
		if n.TenantID == tenantID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m noteRepo) GetByID(ctx context.Context, tenantID, id string) (*note.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.TenantID != tenantID {
		return nil, note.ErrNoteNotFound
	}
	return n, nil
}

func (m noteRepo) Update(ctx context.Context, n *note.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.notes[n.ID]
	if !ok || existing.TenantID != n.TenantID {
		return note.ErrNoteNotFound
	}
	m.notes[n.ID] = n
	return nil
}

func (m noteRepo) Delete(ctx context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.TenantID != tenantID {
		return note.ErrNoteNotFound
	}
	delete(m.notes, id)
	return nil
}

// testEnv is a fully wired handler over in-memory storage, seeded with two
// free tenants and an admin and a member in each.
type testEnv struct {
	router *chi.Mux
	store  *memStore
	tokens *token.Service
}

const testPassword = "password"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	auditLogger := audit.NewSlogLogger()
	hasher := identity.NewPasswordHasher(65536, 3, 4, 16, 32)
	tokens := token.NewService("handler-test-secret-32-bytes-long!", time.Hour)

	identityService := identity.NewService(userRepo{store}, store, hasher, auditLogger)
	tenantService := tenant.NewService(store, auditLogger)
	noteService := note.NewService(noteRepo{store}, auditLogger)
	gate := authn.NewGate(tokens, identityService, auditLogger)

	meter, err := metrics.New(context.Background(), metrics.Config{Enabled: false}, "test")
	if err != nil {
		t.Fatalf("failed to create meter: %v", err)
	}

	h := NewHandler(identityService, tenantService, noteService, tokens, gate, meter, auditLogger)
	router := NewRouter(h, NewRateLimiter(1000, 1000))

	env := &testEnv{router: router, store: store, tokens: tokens}

	ctx := context.Background()
	hash, err := hasher.Hash(testPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	for _, seed := range []struct {
		tenantID, name, slug string
		admin, member        string
	}{
		{"tenant-acme", "Acme", "acme", "admin@acme.test", "user@acme.test"},
		{"tenant-globex", "Globex", "globex", "admin@globex.test", "user@globex.test"},
	} {
		tn := &tenant.Tenant{ID: seed.tenantID, Name: seed.name, Slug: seed.slug, Tier: tenant.TierFree}
		tn.Normalize()
		store.Create(ctx, tn)

		userRepo{store}.Create(ctx, &identity.User{
			ID: "user-" + seed.admin, TenantID: tn.ID, Email: seed.admin,
			PasswordHash: hash, Role: identity.RoleAdmin,
		})
		userRepo{store}.Create(ctx, &identity.User{
			ID: "user-" + seed.member, TenantID: tn.ID, Email: seed.member,
			PasswordHash: hash, Role: identity.RoleMember,
		})
	}

	return env
}

// tokenFor issues a valid bearer token for a seeded user
func (e *testEnv) tokenFor(t *testing.T, email string) string {
	t.Helper()
	raw, err := e.tokens.Issue("user-" + email)
	if err != nil {
		t.Fatalf("failed to issue token for %s: %v", email, err)
	}
	return raw
}
