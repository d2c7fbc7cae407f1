package models

import "time"

// UserRole represents the primary role carried by a user account.
type UserRole string

const (
	RoleSuperAdmin           UserRole = "super_admin"
	RoleMarketingCoordinator UserRole = "marketing_coordinator"
	RoleBrandCoordinator     UserRole = "brand_coordinator"
	RolePhotographer         UserRole = "photographer"
	RoleNewUser              UserRole = "new_user"
)

// SelectableRoles lists the roles a user may apply for through the
// role-selection workflow. super_admin accounts are provisioned directly.
var SelectableRoles = []UserRole{
	RoleMarketingCoordinator,
	RoleBrandCoordinator,
	RolePhotographer,
}

// IsSelectable reports whether the role can be requested via an application.
func (r UserRole) IsSelectable() bool {
	for _, role := range SelectableRoles {
		if r == role {
			return true
		}
	}
	return false
}

// UserStatus tracks where the account sits in the onboarding lifecycle.
type UserStatus string

const (
	UserStatusPendingRoleSetup UserStatus = "pending_role_setup"
	UserStatusPendingApproval  UserStatus = "pending_approval"
	UserStatusActive           UserStatus = "active"
	UserStatusSuspended        UserStatus = "suspended"
	UserStatusArchived         UserStatus = "archived"
)

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	Role         UserRole   `db:"role" json:"role"`
	Status       UserStatus `db:"status" json:"status"`
	RoleSelected bool       `db:"role_selected" json:"role_selected"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Status    *UserStatus
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
