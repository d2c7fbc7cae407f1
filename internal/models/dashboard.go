package models

import "time"

// StatusCount pairs a status value with its row count.
type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int    `db:"count" json:"count"`
}

// PhotographerWorkload is one photographer's active assignment count.
type PhotographerWorkload struct {
	PhotographerID string `db:"photographer_id" json:"photographer_id"`
	FullName       string `db:"full_name" json:"full_name"`
	ActiveTasks    int    `db:"active_tasks" json:"active_tasks"`
}

// DueSoonTask is a task approaching its deadline.
type DueSoonTask struct {
	TaskID     string    `db:"id" json:"task_id"`
	Title      string    `db:"title" json:"title"`
	CampaignID string    `db:"campaign_id" json:"campaign_id"`
	DueDate    time.Time `db:"due_date" json:"due_date"`
}
