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

package tenant

import (
	"context"
	"fmt"

	"github.com/noteloft/noteloft/internal/audit"
)

// Service provides tenant management business logic
type Service struct {
	repo        Repository
	auditLogger audit.Logger
}

// NewService creates a new tenant service
func NewService(repo Repository, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
	}
}

// GetForActor retrieves the tenant identified by slug on behalf of a user
// belonging to tenant actorTenantID. The slug is checked against the actor's
// own tenant before any lookup: a record of another tenant is never read.
func (s *Service) GetForActor(ctx context.Context, actorID, actorTenantID, slug string) (*Tenant, error) {
	t, err := s.repo.GetByID(ctx, actorTenantID)
	if err != nil {
		return nil, err
	}

	if t.Slug != slug {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeAccessDenied,
			TenantID: actorTenantID,
			ActorID:  actorID,
			Resource: "tenant:" + slug,
		})
		return nil, ErrAccessDenied
	}

	return t, nil
}

// Upgrade performs the one-way free -> pro transition for the actor's own
// tenant. Cross-tenant upgrade attempts fail before any mutation. Tier and
// note limit are updated in a single write so no intermediate state is
// observable. There is no downgrade transition.
func (s *Service) Upgrade(ctx context.Context, actorID, actorTenantID, slug string) (*Tenant, error) {
	t, err := s.GetForActor(ctx, actorID, actorTenantID, slug)
	if err != nil {
		return nil, err
	}

	t.Tier = TierPro
	t.Normalize()

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to upgrade tenant: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantUpgraded,
		TenantID: t.ID,
		ActorID:  actorID,
		Resource: "tenant:" + t.Slug,
	})

	return t, nil
}
