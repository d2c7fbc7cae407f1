package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Capabilities is the resolved capability set for a (user, resource) pair.
type Capabilities struct {
	CanCreate bool `json:"can_create"`
	CanUpdate bool `json:"can_update"`
	CanDelete bool `json:"can_delete"`
	CanView   bool `json:"can_view"`
	CanAssign bool `json:"can_assign"`
}

// AllCapabilities grants everything. Used for super admins.
func AllCapabilities() Capabilities {
	return Capabilities{CanCreate: true, CanUpdate: true, CanDelete: true, CanView: true, CanAssign: true}
}

// NoCapabilities denies everything.
func NoCapabilities() Capabilities {
	return Capabilities{}
}

// CRUDPermission stores the stored per-resource grants for a user.
type CRUDPermission struct {
	Create bool `json:"create"`
	Read   bool `json:"read"`
	Update bool `json:"update"`
	Delete bool `json:"delete"`
}

// CRUDPermissionMap maps a resource type to its stored grants, persisted as JSONB.
type CRUDPermissionMap map[string]CRUDPermission

// Value marshals the permission map for persistence.
func (m CRUDPermissionMap) Value() (driver.Value, error) {
	if m == nil {
		m = CRUDPermissionMap{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal crud permissions: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the permission map.
func (m *CRUDPermissionMap) Scan(value interface{}) error {
	return scanJSON(value, m, "crud permissions")
}

// AccessLevel grades a brand-scoped grant.
type AccessLevel string

const (
	AccessLevelViewer      AccessLevel = "viewer"
	AccessLevelContributor AccessLevel = "contributor"
	AccessLevelManager     AccessLevel = "manager"
)

// BrandPermission scopes a brand coordinator's grant to a single brand.
type BrandPermission struct {
	BrandID      string      `json:"brand_id"`
	CanEditTasks bool        `json:"can_edit_tasks"`
	AccessLevel  AccessLevel `json:"access_level"`
}

// BrandPermissionList is the JSONB-persisted collection of brand grants.
type BrandPermissionList []BrandPermission

// Value marshals the brand grants for persistence.
func (l BrandPermissionList) Value() (driver.Value, error) {
	if l == nil {
		l = BrandPermissionList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal brand permissions: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the brand grant list.
func (l *BrandPermissionList) Scan(value interface{}) error {
	return scanJSON(value, l, "brand permissions")
}

// ForBrand returns the grant covering brandID, if any.
func (l BrandPermissionList) ForBrand(brandID string) (BrandPermission, bool) {
	for _, p := range l {
		if p.BrandID == brandID {
			return p, true
		}
	}
	return BrandPermission{}, false
}

// ScreenPermissionMap maps UI screen keys to visibility flags.
type ScreenPermissionMap map[string]bool

// Value marshals screen permissions for persistence.
func (m ScreenPermissionMap) Value() (driver.Value, error) {
	if m == nil {
		m = ScreenPermissionMap{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal screen permissions: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the screen permission map.
func (m *ScreenPermissionMap) Scan(value interface{}) error {
	return scanJSON(value, m, "screen permissions")
}

// UserPermissions is the 1:1 permission record created alongside each user.
type UserPermissions struct {
	UserID            string              `db:"user_id" json:"user_id"`
	BrandPermissions  BrandPermissionList `db:"brand_permissions" json:"brand_permissions"`
	CRUDPermissions   CRUDPermissionMap   `db:"crud_permissions" json:"crud_permissions"`
	ScreenPermissions ScreenPermissionMap `db:"screen_permissions" json:"screen_permissions"`
	CreatedAt         time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time           `db:"updated_at" json:"updated_at"`
}

func scanJSON(value interface{}, dest interface{}, label string) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported scan type %T for %s", value, label)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", label, err)
	}
	return nil
}
