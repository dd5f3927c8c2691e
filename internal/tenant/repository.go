package tenant

import (
	"context"
	"errors"
)

var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrAccessDenied   = errors.New("access denied")
)

// Repository defines the interface for tenant storage
type Repository interface {
	Create(ctx context.Context, tenant *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
	Update(ctx context.Context, tenant *Tenant) error
}
