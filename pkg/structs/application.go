package structs

import (
	"time"
)

// Application identifies a tenant. Applications are never hard deleted.
type Application struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
	// IsDeleted is a soft delete flag
	IsDeleted bool `json:"is_deleted"`

	Created     time.Time  `json:"created"`
	Modified    time.Time  `json:"modified"`
	Deactivated *time.Time `json:"deactivated,omitempty"`
	Deleted     *time.Time `json:"deleted,omitempty"`
}

// APIKey is a credential belonging to exactly one application. Value is unique.
type APIKey struct {
	ID            int64  `json:"id"`
	Value         string `json:"value"`
	ApplicationID int64  `json:"application_id"`
	IsActive      bool   `json:"is_active"`
	IsDeleted     bool   `json:"is_deleted"`

	Created     time.Time  `json:"created"`
	Modified    time.Time  `json:"modified"`
	Deactivated *time.Time `json:"deactivated,omitempty"`
	Deleted     *time.Time `json:"deleted,omitempty"`
}

// Usable returns true if the key may authenticate requests.
func (k *APIKey) Usable() bool {
	return k != nil && k.IsActive && !k.IsDeleted
}

// Usable returns true if the application may own new tasks.
func (a *Application) Usable() bool {
	return a != nil && a.IsActive && !a.IsDeleted
}
