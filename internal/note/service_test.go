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

package note

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/noteloft/noteloft/internal/audit"
	"github.com/noteloft/noteloft/internal/identity"
	"github.com/noteloft/noteloft/internal/tenant"
)

// MockNoteRepository is an in-memory Repository. CreateWithinLimit holds the
// same atomicity contract as the store: the count check and the insert happen
// under one lock.
type MockNoteRepository struct {
	mu      sync.Mutex
	notes   map[string]*Note
	tenants map[string]*tenant.Tenant
}

func NewMockNoteRepository() *MockNoteRepository {
	return &MockNoteRepository{
		notes:   make(map[string]*Note),
		tenants: make(map[string]*tenant.Tenant),
	}
}

func (m *MockNoteRepository) AddTenant(t *tenant.Tenant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenants[t.ID] = t
}

func (m *MockNoteRepository) CreateWithinLimit(ctx context.Context, n *Note) error {
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
			return ErrLimitReached
		}
	}
	m.notes[n.ID] = n
	return nil
}

func (m *MockNoteRepository) CountByTenant(ctx context.Context, tenantID string) (int, error) {
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

func (m *MockNoteRepository) ListByTenant(ctx context.Context, tenantID string) ([]*Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Note
	for _, n := range m.notes {
		if n.TenantID == tenantID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *MockNoteRepository) GetByID(ctx context.Context, tenantID, id string) (*Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.TenantID != tenantID {
		return nil, ErrNoteNotFound
	}
	return n, nil
}

func (m *MockNoteRepository) Update(ctx context.Context, n *Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.notes[n.ID]
	if !ok || existing.TenantID != n.TenantID {
		return ErrNoteNotFound
	}
	m.notes[n.ID] = n
	return nil
}

func (m *MockNoteRepository) Delete(ctx context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.TenantID != tenantID {
		return ErrNoteNotFound
	}
	delete(m.notes, id)
	return nil
}

func freeActor(repo *MockNoteRepository) *identity.Identity {
	t := tenant.Tenant{ID: "tenant-1", Name: "Acme", Slug: "acme", Tier: tenant.TierFree}
	t.Normalize()
	repo.AddTenant(&t)
	return &identity.Identity{
		UserID: "user-1",
		Email:  "user@acme.test",
		Role:   identity.RoleMember,
		Tenant: t,
	}
}

// TestPurpose: Validates note creation within the free plan limit.
// Scope: Unit Test
// Expected: Notes are created with the actor's tenant and author stamped on.
// Test Case ID: NTE-01
func TestNote_Service_Create(t *testing.T) {
	repo := NewMockNoteRepository()
	s := NewService(repo, audit.NewSlogLogger())
	actor := freeActor(repo)
	ctx := context.Background()

	n, err := s.Create(ctx, actor, "  First note  ", "hello")
	if err != nil {
		t.Fatalf("expected success, got err: %v", err)
	}
	if n.Title != "First note" {
		t.Errorf("expected trimmed title, got %q", n.Title)
	}
	if n.TenantID != actor.Tenant.ID || n.AuthorID != actor.UserID {
		t.Error("note must be stamped with the actor's tenant and user")
	}
}

// TestPurpose: Validates rejection of empty titles and contents.
// Scope: Unit Test
// Expected: ErrEmptyTitle / ErrEmptyContent; nothing is persisted.
// Test Case ID: NTE-02
func TestNote_Service_Create_Validation(t *testing.T) {
	repo := NewMockNoteRepository()
	s := NewService(repo, audit.NewSlogLogger())
	actor := freeActor(repo)
	ctx := context.Background()

	if _, err := s.Create(ctx, actor, "   ", "content"); err != ErrEmptyTitle {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}
	if _, err := s.Create(ctx, actor, "title", ""); err != ErrEmptyContent {
		t.Errorf("expected ErrEmptyContent, got %v", err)
	}

	count, _ := repo.CountByTenant(ctx, actor.Tenant.ID)
	if count != 0 {
		t.Errorf("expected no notes persisted, got %d", count)
	}
}

// TestPurpose: Validates quota denial at the free plan limit.
// Scope: Unit Test
// Security: Plan limit enforcement
// Expected: The fourth create fails with a QuotaError carrying limit 3 and
// the observed count; exactly 3 notes persist.
// Test Case ID: NTE-03
func TestNote_Service_Create_QuotaDenied(t *testing.T) {
	repo := NewMockNoteRepository()
	s := NewService(repo, audit.NewSlogLogger())
	actor := freeActor(repo)
	ctx := context.Background()

	for i := 0; i < tenant.FreeNoteLimit; i++ {
		if _, err := s.Create(ctx, actor, "note", "content"); err != nil {
			t.Fatalf("create %d: expected success, got %v", i, err)
		}
	}

	_, err := s.Create(ctx, actor, "one too many", "content")
	var quotaErr *QuotaError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("expected QuotaError, got %v", err)
	}
	if quotaErr.Limit != tenant.FreeNoteLimit {
		t.Errorf("expected limit %d, got %d", tenant.FreeNoteLimit, quotaErr.Limit)
	}
	if quotaErr.Current != tenant.FreeNoteLimit {
		t.Errorf("expected current %d, got %d", tenant.FreeNoteLimit, quotaErr.Current)
	}

	count, _ := repo.CountByTenant(ctx, actor.Tenant.ID)
	if count != tenant.FreeNoteLimit {
		t.Errorf("expected exactly %d notes, got %d", tenant.FreeNoteLimit, count)
	}
}

// TestPurpose: Validates that pro tenants create past the free limit.
// Scope: Unit Test
// Expected: Creation number FreeNoteLimit+1 and beyond succeed.
// Test Case ID: NTE-04
func TestNote_Service_Create_ProUnlimited(t *testing.T) {
	repo := NewMockNoteRepository()
	s := NewService(repo, audit.NewSlogLogger())

	pro := tenant.Tenant{ID: "tenant-pro", Name: "Acme", Slug: "acme", Tier: tenant.TierPro}
	pro.Normalize()
	repo.AddTenant(&pro)
	actor := &identity.Identity{UserID: "user-1", Email: "user@acme.test", Role: identity.RoleMember, Tenant: pro}
	ctx := context.Background()

	for i := 0; i < tenant.FreeNoteLimit+5; i++ {
		if _, err := s.Create(ctx, actor, "note", "content"); err != nil {
			t.Fatalf("create %d: expected success for pro tenant, got %v", i, err)
		}
	}
}

// TestPurpose: Validates that concurrent creations at the limit boundary
// cannot overshoot the plan ceiling.
// Scope: Unit Test
// Security: Quota race condition
// Expected: With 2 existing notes and 10 concurrent requests, exactly one
// succeeds; losers get a QuotaError; exactly 3 notes persist.
// Test Case ID: NTE-05
func TestNote_Service_Create_ConcurrentAtLimit(t *testing.T) {
	repo := NewMockNoteRepository()
	s := NewService(repo, audit.NewSlogLogger())
	actor := freeActor(repo)
	ctx := context.Background()

	for i := 0; i < tenant.FreeNoteLimit-1; i++ {
		if _, err := s.Create(ctx, actor, "note", "content"); err != nil {
			t.Fatalf("setup create %d failed: %v", i, err)
		}
	}

	const racers = 10
	var wg sync.WaitGroup
	errs := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Create(ctx, actor, "racing note", "content")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		var quotaErr *QuotaError
		if !errors.As(err, &quotaErr) {
			t.Errorf("expected QuotaError for loser, got %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("expected exactly 1 winner, got %d", successes)
	}

	count, _ := repo.CountByTenant(ctx, actor.Tenant.ID)
	if count != tenant.FreeNoteLimit {
		t.Errorf("expected exactly %d notes after the race, got %d", tenant.FreeNoteLimit, count)
	}
}

// TestPurpose: Validates that a note of another tenant reads as missing.
// Scope: Unit Test
// Security: Cross-tenant isolation without existence leaks
// Expected: ErrNoteNotFound for get, update, and delete across tenants.
// Test Case ID: NTE-06
func TestNote_Service_CrossTenant_NotFound(t *testing.T) {
	repo := NewMockNoteRepository()
	s := NewService(repo, audit.NewSlogLogger())
	actor := freeActor(repo)
	ctx := context.Background()

	other := tenant.Tenant{ID: "tenant-2", Name: "Globex", Slug: "globex", Tier: tenant.TierFree}
	other.Normalize()
	repo.AddTenant(&other)
	outsider := &identity.Identity{UserID: "user-2", Email: "user@globex.test", Role: identity.RoleAdmin, Tenant: other}

	n, err := s.Create(ctx, actor, "secret", "content")
	if err != nil {
		t.Fatalf("setup create failed: %v", err)
	}

	if _, err := s.Get(ctx, outsider, n.ID); err != ErrNoteNotFound {
		t.Errorf("get: expected ErrNoteNotFound, got %v", err)
	}
	if _, err := s.Update(ctx, outsider, n.ID, "x", "y"); err != ErrNoteNotFound {
		t.Errorf("update: expected ErrNoteNotFound, got %v", err)
	}
	if err := s.Delete(ctx, outsider, n.ID); err != ErrNoteNotFound {
		t.Errorf("delete: expected ErrNoteNotFound, got %v", err)
	}

	// Still intact for the owner
	if _, err := s.Get(ctx, actor, n.ID); err != nil {
		t.Errorf("owner get: expected success, got %v", err)
	}
}

// TestPurpose: Validates the update and delete flows within a tenant.
// Scope: Unit Test
// Expected: Update rewrites title and content; delete removes the note.
// Test Case ID: NTE-07
func TestNote_Service_UpdateDelete(t *testing.T) {
	repo := NewMockNoteRepository()
	s := NewService(repo, audit.NewSlogLogger())
	actor := freeActor(repo)
	ctx := context.Background()

	n, err := s.Create(ctx, actor, "before", "old")
	if err != nil {
		t.Fatalf("setup create failed: %v", err)
	}

	updated, err := s.Update(ctx, actor, n.ID, "after", "new")
	if err != nil {
		t.Fatalf("expected update success, got %v", err)
	}
	if updated.Title != "after" || updated.Content != "new" {
		t.Errorf("unexpected update result: %+v", updated)
	}

	if err := s.Delete(ctx, actor, n.ID); err != nil {
		t.Fatalf("expected delete success, got %v", err)
	}
	if _, err := s.Get(ctx, actor, n.ID); err != ErrNoteNotFound {
		t.Errorf("expected ErrNoteNotFound after delete, got %v", err)
	}
}
