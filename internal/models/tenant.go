package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant statuses. Suspension blocks all traffic for the tenant.
const (
	TenantStatusActive    = "ACTIVE"
	TenantStatusSuspended = "SUSPENDED"
	TenantStatusArchived  = "ARCHIVED"
)

// Tenant represents an isolated company. Every other entity carries the
// tenant id and every lookup filters by it.
type Tenant struct {
	TenantID  uuid.UUID
	Slug      string // unique, resolved from the x-tenant-slug header or subdomain
	Name      string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the tenant may receive traffic.
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}
