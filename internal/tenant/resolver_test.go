package tenant

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/emplix/emplix/internal/models"
	"github.com/emplix/emplix/internal/store"
)

func TestSlugFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		host   string
		header string
		want   string
	}{
		{name: "header wins", host: "other.emplix.com", header: "conexa", want: "conexa"},
		{name: "subdomain", host: "conexa.emplix.com", want: "conexa"},
		{name: "subdomain with port", host: "conexa.emplix.com:8080", want: "conexa"},
		{name: "bare domain", host: "emplix.com", want: ""},
		{name: "localhost", host: "localhost:8080", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.Host = tt.host
			if tt.header != "" {
				r.Header.Set(HeaderSlug, tt.header)
			}
			require.Equal(t, tt.want, SlugFromRequest(r))
		})
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	tenants := store.NewMemoryTenantStore()
	resolver := NewResolver(tenants)

	seed := func(slug, status string) {
		require.NoError(t, tenants.Create(ctx, &models.Tenant{
			TenantID: uuid.New(),
			Slug:     slug,
			Name:     slug,
			Status:   status,
		}))
	}
	seed("active-co", models.TenantStatusActive)
	seed("suspended-co", models.TenantStatusSuspended)
	seed("archived-co", models.TenantStatusArchived)

	t.Run("active", func(t *testing.T) {
		resolved, err := resolver.Resolve(ctx, "active-co")
		require.NoError(t, err)
		require.Equal(t, "active-co", resolved.Slug)
	})

	t.Run("missing slug", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, "")
		require.ErrorIs(t, err, ErrMissingTenant)
	})

	t.Run("unknown slug", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, "nope")
		require.ErrorIs(t, err, store.ErrTenantNotFound)
	})

	t.Run("suspended", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, "suspended-co")
		require.ErrorIs(t, err, ErrSuspended)
	})

	t.Run("archived", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, "archived-co")
		require.ErrorIs(t, err, ErrInactive)
	})
}

func TestTenantContext(t *testing.T) {
	require.Nil(t, FromContext(context.Background()))

	tn := &models.Tenant{TenantID: uuid.New(), Slug: "conexa"}
	ctx := WithTenant(context.Background(), tn)
	require.Equal(t, tn, FromContext(ctx))
}
