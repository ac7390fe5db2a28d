package tenant

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/emplix/emplix/internal/models"
	"github.com/emplix/emplix/internal/store"
)

// Resolution failures. ErrNotFound passes through from the store.
var (
	ErrMissingTenant = errors.New("no tenant specified in header or subdomain")
	ErrSuspended     = errors.New("tenant is suspended")
	ErrInactive      = errors.New("tenant is not active")
)

// HeaderSlug is the request header carrying the tenant slug. It takes
// precedence over subdomain detection.
const HeaderSlug = "x-tenant-slug"

type contextKey struct{}

// Resolver resolves the acting tenant from request metadata and gates all
// downstream components.
type Resolver struct {
	tenants store.TenantStore
}

// NewResolver creates a tenant resolver backed by the given store.
func NewResolver(tenants store.TenantStore) *Resolver {
	return &Resolver{tenants: tenants}
}

// SlugFromRequest extracts the tenant slug from the x-tenant-slug header,
// falling back to the first subdomain label when the host has one
// (e.g. "conexa.emplix.com" -> "conexa").
func SlugFromRequest(r *http.Request) string {
	if slug := r.Header.Get(HeaderSlug); slug != "" {
		return slug
	}

	host := r.Host
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	parts := strings.Split(host, ".")
	if len(parts) > 2 {
		return parts[0]
	}
	return ""
}

// Resolve looks up the tenant by slug and checks it may receive traffic.
func (r *Resolver) Resolve(ctx context.Context, slug string) (*models.Tenant, error) {
	if slug == "" {
		return nil, ErrMissingTenant
	}

	tenant, err := r.tenants.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	switch tenant.Status {
	case models.TenantStatusActive:
	case models.TenantStatusSuspended:
		log.Warn().Str("slug", slug).Msg("Rejected request for suspended tenant")
		return nil, ErrSuspended
	default:
		return nil, ErrInactive
	}

	return tenant, nil
}

// WithTenant binds the resolved tenant to the context for downstream
// components.
func WithTenant(ctx context.Context, t *models.Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext returns the tenant bound to the context, or nil.
func FromContext(ctx context.Context) *models.Tenant {
	t, _ := ctx.Value(contextKey{}).(*models.Tenant)
	return t
}
