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

package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Config holds metrics configuration
type Config struct {
	Enabled bool
}

// Meter holds the application counters.
type Meter struct {
	meter metric.Meter

	logins        metric.Int64Counter
	loginFailures metric.Int64Counter
	notesCreated  metric.Int64Counter
	quotaDenials  metric.Int64Counter
	upgrades      metric.Int64Counter
}

// New creates a new meter instance
func New(ctx context.Context, cfg Config, serviceName string) (*Meter, error) {
	var meter metric.Meter
	if !cfg.Enabled {
		meter = otel.Meter("noop")
	} else {
		// Uses the global meter provider; exporters are configured by the host
		meter = otel.Meter(serviceName)
	}

	m := &Meter{meter: meter}

	var err error
	if m.logins, err = meter.Int64Counter("auth_logins_total",
		metric.WithDescription("Successful logins")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if m.loginFailures, err = meter.Int64Counter("auth_login_failures_total",
		metric.WithDescription("Rejected login attempts")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if m.notesCreated, err = meter.Int64Counter("notes_created_total",
		metric.WithDescription("Notes created")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if m.quotaDenials, err = meter.Int64Counter("notes_quota_denials_total",
		metric.WithDescription("Note creations denied by the plan limit")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if m.upgrades, err = meter.Int64Counter("tenant_upgrades_total",
		metric.WithDescription("Tenants upgraded to the pro plan")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}

	return m, nil
}

func (m *Meter) RecordLogin(ctx context.Context, tenantSlug string) {
	m.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("tenant", tenantSlug)))
}

func (m *Meter) RecordLoginFailure(ctx context.Context) {
	m.loginFailures.Add(ctx, 1)
}

func (m *Meter) RecordNoteCreated(ctx context.Context, tenantSlug string) {
	m.notesCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("tenant", tenantSlug)))
}

func (m *Meter) RecordQuotaDenial(ctx context.Context, tenantSlug string) {
	m.quotaDenials.Add(ctx, 1, metric.WithAttributes(attribute.String("tenant", tenantSlug)))
}

func (m *Meter) RecordUpgrade(ctx context.Context, tenantSlug string) {
	m.upgrades.Add(ctx, 1, metric.WithAttributes(attribute.String("tenant", tenantSlug)))
}
