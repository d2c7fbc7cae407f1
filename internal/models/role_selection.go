package models

import (
	"time"

	"github.com/lib/pq"
)

// RoleSelectionStatus tracks an application through review.
type RoleSelectionStatus string

const (
	RoleSelectionStatusPending  RoleSelectionStatus = "pending"
	RoleSelectionStatusApproved RoleSelectionStatus = "approved"
	RoleSelectionStatusRejected RoleSelectionStatus = "rejected"
)

// ContractType is required for photographer applications.
type ContractType string

const (
	ContractTypeFreelancer ContractType = "freelancer"
	ContractTypeSalary     ContractType = "salary"
)

// RoleSelection is a user's application to take on a platform role. At most
// one pending application may exist per user; approved and rejected records
// are terminal and form the user's application history.
type RoleSelection struct {
	ID                  string              `db:"id" json:"id"`
	UserID              string              `db:"user_id" json:"user_id"`
	SelectedRole        UserRole            `db:"selected_role" json:"selected_role"`
	ContractType        *ContractType       `db:"contract_type" json:"contract_type,omitempty"`
	Specializations     pq.StringArray      `db:"specializations" json:"specializations,omitempty"`
	SelectedBrandID     *string             `db:"selected_brand_id" json:"selected_brand_id,omitempty"`
	MarketingExperience *string             `db:"marketing_experience" json:"marketing_experience,omitempty"`
	Motivation          *string             `db:"motivation" json:"motivation,omitempty"`
	Status              RoleSelectionStatus `db:"status" json:"status"`
	AppliedAt           time.Time           `db:"applied_at" json:"applied_at"`
	ReviewedAt          *time.Time          `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ApprovedBy          *string             `db:"approved_by" json:"approved_by,omitempty"`
	RejectionReason     *string             `db:"rejection_reason" json:"rejection_reason,omitempty"`
	AdminNotes          *string             `db:"admin_notes" json:"admin_notes,omitempty"`
	CreatedAt           time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time           `db:"updated_at" json:"updated_at"`
}

// RoleSelectionFilter narrows pending-application listings.
type RoleSelectionFilter struct {
	Role      *UserRole
	SortBy    string
	SortOrder string
	Limit     int
}

// RoleSelectionStats aggregates application volumes for the admin dashboard.
type RoleSelectionStats struct {
	Total                int            `json:"total"`
	Pending              int            `json:"pending"`
	Approved             int            `json:"approved"`
	Rejected             int            `json:"rejected"`
	ByRole               map[string]int `json:"by_role"`
	AverageApprovalHours float64        `json:"average_approval_hours"`
	ApprovalRate         float64        `json:"approval_rate"`
}
