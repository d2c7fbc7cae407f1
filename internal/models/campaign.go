package models

import "time"

// CampaignStatus tracks the campaign lifecycle.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusScheduled CampaignStatus = "scheduled"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusCancelled CampaignStatus = "cancelled"
)

// campaignTransitions encodes the allowed lifecycle moves:
// draft -> scheduled/active -> (paused <-> active) -> completed | cancelled.
var campaignTransitions = map[CampaignStatus][]CampaignStatus{
	CampaignStatusDraft:     {CampaignStatusScheduled, CampaignStatusActive, CampaignStatusCancelled},
	CampaignStatusScheduled: {CampaignStatusActive, CampaignStatusCancelled},
	CampaignStatusActive:    {CampaignStatusPaused, CampaignStatusCompleted, CampaignStatusCancelled},
	CampaignStatusPaused:    {CampaignStatusActive, CampaignStatusCancelled},
}

// CanTransitionTo reports whether the lifecycle permits moving to next.
func (s CampaignStatus) CanTransitionTo(next CampaignStatus) bool {
	for _, allowed := range campaignTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Campaign represents a marketing campaign owned by a brand. The progress
// columns are a derived cache recomputed from child tasks and are never
// written directly through the API.
type Campaign struct {
	ID                string         `db:"id" json:"id"`
	BrandID           string         `db:"brand_id" json:"brand_id"`
	Name              string         `db:"name" json:"name"`
	Description       *string        `db:"description" json:"description,omitempty"`
	Status            CampaignStatus `db:"status" json:"status"`
	OverallProgress   float64        `db:"overall_progress" json:"overall_progress_percentage"`
	TasksCompleted    int            `db:"tasks_completed" json:"tasks_completed"`
	TasksInProgress   int            `db:"tasks_in_progress" json:"tasks_in_progress"`
	TasksPending      int            `db:"tasks_pending" json:"tasks_pending"`
	ProgressUpdatedAt *time.Time     `db:"progress_updated_at" json:"progress_updated_at,omitempty"`
	StartDate         *time.Time     `db:"start_date" json:"start_date,omitempty"`
	EndDate           *time.Time     `db:"end_date" json:"end_date,omitempty"`
	CreatedBy         string         `db:"created_by" json:"created_by"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// ProgressRollup holds the recomputed task partition for a campaign.
type ProgressRollup struct {
	TasksCompleted  int     `json:"tasks_completed"`
	TasksInProgress int     `json:"tasks_in_progress"`
	TasksPending    int     `json:"tasks_pending"`
	OverallProgress float64 `json:"overall_progress_percentage"`
}

// CampaignFilter captures filtering criteria for campaign listings.
type CampaignFilter struct {
	BrandID   string
	Status    *CampaignStatus
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
