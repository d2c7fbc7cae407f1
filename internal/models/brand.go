package models

import "time"

// BrandStatus tracks the commercial state of a brand.
type BrandStatus string

const (
	BrandStatusActive      BrandStatus = "active"
	BrandStatusPaused      BrandStatus = "paused"
	BrandStatusDevelopment BrandStatus = "development"
	BrandStatusArchived    BrandStatus = "archived"
)

// Brand represents a client brand managed on the platform.
type Brand struct {
	ID                  string      `db:"id" json:"id"`
	NameEn              string      `db:"name_en" json:"name_en"`
	NameAr              *string     `db:"name_ar" json:"name_ar,omitempty"`
	Description         *string     `db:"description" json:"description,omitempty"`
	BrandType           *string     `db:"brand_type" json:"brand_type,omitempty"`
	Industry            *string     `db:"industry" json:"industry,omitempty"`
	Status              BrandStatus `db:"status" json:"status"`
	AssignedCoordinator *string     `db:"assigned_coordinator" json:"assigned_coordinator,omitempty"`
	CreatedAt           time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time   `db:"updated_at" json:"updated_at"`
}

// BrandFilter captures search criteria for brand listings.
type BrandFilter struct {
	Search         string
	BrandType      string
	Industry       string
	Status         *BrandStatus
	HasCoordinator *bool
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}
