package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TaskStatus tracks a campaign task through production.
type TaskStatus string

const (
	TaskStatusPending        TaskStatus = "pending"
	TaskStatusAssigned       TaskStatus = "assigned"
	TaskStatusInProgress     TaskStatus = "in_progress"
	TaskStatusReview         TaskStatus = "review"
	TaskStatusRevisionNeeded TaskStatus = "revision_needed"
	TaskStatusCompleted      TaskStatus = "completed"
	TaskStatusCancelled      TaskStatus = "cancelled"
)

// taskTransitions encodes the production state machine:
// pending -> assigned -> in_progress -> review -> {revision_needed -> in_progress | completed}.
// Unassigning moves assigned back to pending; cancellation ends any non-terminal state.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusPending:        {TaskStatusAssigned, TaskStatusCancelled},
	TaskStatusAssigned:       {TaskStatusInProgress, TaskStatusPending, TaskStatusCancelled},
	TaskStatusInProgress:     {TaskStatusReview, TaskStatusCancelled},
	TaskStatusReview:         {TaskStatusRevisionNeeded, TaskStatusCompleted, TaskStatusCancelled},
	TaskStatusRevisionNeeded: {TaskStatusInProgress, TaskStatusCancelled},
}

// CanTransitionTo reports whether the state machine permits moving to next.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	for _, allowed := range taskTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RequiresAssignee reports whether a task in this status must carry a
// photographer. Holds the invariant: assigned_photographer is non-null iff
// the status is one of assigned, in_progress, review, revision_needed,
// completed.
func (s TaskStatus) RequiresAssignee() bool {
	switch s {
	case TaskStatusAssigned, TaskStatusInProgress, TaskStatusReview, TaskStatusRevisionNeeded, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// ActiveAssignmentStatuses are the statuses counted as current workload when
// picking the least-loaded photographer.
var ActiveAssignmentStatuses = []TaskStatus{TaskStatusAssigned, TaskStatusInProgress}

// AssignmentMethod records how a photographer ended up on a task.
type AssignmentMethod string

const (
	AssignmentMethodManual AssignmentMethod = "manual"
	AssignmentMethodAuto   AssignmentMethod = "auto"
)

// StatusHistoryEntry is one append-only audit record of a status change.
type StatusHistoryEntry struct {
	Status    TaskStatus `json:"status"`
	UpdatedBy string     `json:"updated_by"`
	UpdatedAt time.Time  `json:"updated_at"`
	Notes     string     `json:"notes,omitempty"`
}

// StatusHistory is the JSONB-persisted audit log. Entries are only appended.
type StatusHistory []StatusHistoryEntry

// Value marshals the history for persistence.
func (h StatusHistory) Value() (driver.Value, error) {
	if h == nil {
		h = StatusHistory{}
	}
	data, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("marshal status history: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the history.
func (h *StatusHistory) Scan(value interface{}) error {
	return scanJSON(value, h, "status history")
}

// CampaignTask represents a unit of production work inside a campaign.
type CampaignTask struct {
	ID                   string            `db:"id" json:"id"`
	CampaignID           string            `db:"campaign_id" json:"campaign_id"`
	Title                string            `db:"title" json:"title"`
	Description          *string           `db:"description" json:"description,omitempty"`
	AssignedPhotographer *string           `db:"assigned_photographer" json:"assigned_photographer,omitempty"`
	AssignedBy           *string           `db:"assigned_by" json:"assigned_by,omitempty"`
	AssignedAt           *time.Time        `db:"assigned_at" json:"assigned_at,omitempty"`
	AssignmentMethod     *AssignmentMethod `db:"assignment_method" json:"assignment_method,omitempty"`
	CurrentStatus        TaskStatus        `db:"current_status" json:"current_status"`
	ProgressPercentage   float64           `db:"progress_percentage" json:"progress_percentage"`
	StatusHistory        StatusHistory     `db:"status_history" json:"status_history"`
	DueDate              *time.Time        `db:"due_date" json:"due_date,omitempty"`
	CreatedBy            string            `db:"created_by" json:"created_by"`
	CreatedAt            time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time         `db:"updated_at" json:"updated_at"`
}

// TaskFilter captures filtering criteria for task listings.
type TaskFilter struct {
	CampaignID           string
	AssignedPhotographer string
	Status               *TaskStatus
	Search               string
	Page                 int
	PageSize             int
	SortBy               string
	SortOrder            string
}
