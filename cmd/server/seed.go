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

package main

import (
	"context"
	"fmt"

	"github.com/noteloft/noteloft/internal/config"
	"github.com/noteloft/noteloft/internal/id"
	"github.com/noteloft/noteloft/internal/identity"
	"github.com/noteloft/noteloft/internal/store/postgres"
	"github.com/noteloft/noteloft/internal/tenant"
)

// seedPassword is the well-known development password for every seeded
// account. Never run the seeder against a production database.
const seedPassword = "password"

type seedTenant struct {
	name  string
	slug  string
	users []seedUser
}

type seedUser struct {
	email string
	role  identity.Role
}

var seedData = []seedTenant{
	{
		name: "Acme", slug: "acme",
		users: []seedUser{
			{email: "admin@acme.test", role: identity.RoleAdmin},
			{email: "user@acme.test", role: identity.RoleMember},
		},
	},
	{
		name: "Globex", slug: "globex",
		users: []seedUser{
			{email: "admin@globex.test", role: identity.RoleAdmin},
			{email: "user@globex.test", role: identity.RoleMember},
		},
	},
}

// runSeed creates the development tenants and users. Existing rows are
// left alone, so reruns are safe.
func runSeed(cfg *config.Config) error {
	ctx := context.Background()
	db, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	tenantRepo := postgres.NewTenantRepository(db)
	userRepo := postgres.NewUserRepository(db)
	hasher := identity.NewPasswordHasher(
		cfg.Security.Argon2Memory,
		cfg.Security.Argon2Iterations,
		cfg.Security.Argon2Parallelism,
		cfg.Security.Argon2SaltLength,
		cfg.Security.Argon2KeyLength,
	)

	passwordHash, err := hasher.Hash(seedPassword)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	for _, st := range seedData {
		t, err := tenantRepo.GetBySlug(ctx, st.slug)
		if err != nil {
			t = &tenant.Tenant{
				ID:   id.NewUUIDv7(),
				Name: st.name,
				Slug: st.slug,
				Tier: tenant.TierFree,
			}
			t.Normalize()
			if err := tenantRepo.Create(ctx, t); err != nil {
				return fmt.Errorf("failed to create tenant %s: %w", st.slug, err)
			}
			fmt.Printf("Created tenant %s (%s)\n", st.name, st.slug)
		}

		for _, su := range st.users {
			if _, err := userRepo.GetByEmail(ctx, su.email); err == nil {
				continue
			}
			user := &identity.User{
				ID:           id.NewUUIDv7(),
				TenantID:     t.ID,
				Email:        su.email,
				PasswordHash: passwordHash,
				Role:         su.role,
			}
			if err := userRepo.Create(ctx, user); err != nil {
				return fmt.Errorf("failed to create user %s: %w", su.email, err)
			}
			fmt.Printf("Created user %s (%s)\n", su.email, su.role)
		}
	}

	fmt.Println("Seed complete.")
	return nil
}
