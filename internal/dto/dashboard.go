package dto

// AdminDashboardResponse captures the aggregated admin dashboard payload.
type AdminDashboardResponse struct {
	Campaigns    CampaignSection    `json:"campaigns"`
	Tasks        TaskSection        `json:"tasks"`
	Applications ApplicationSection `json:"applications"`
	Team         TeamSection        `json:"team"`
}

// CampaignSection summarises campaign volumes by lifecycle state.
type CampaignSection struct {
	Total           int                 `json:"total"`
	ByStatus        map[string]int      `json:"byStatus"`
	AverageProgress float64             `json:"avgProgress"`
	TopInFlight     []CampaignHighlight `json:"topInFlight"`
}

// CampaignHighlight is a condensed in-flight campaign line.
type CampaignHighlight struct {
	CampaignID string  `json:"campaignId"`
	Name       string  `json:"name"`
	Progress   float64 `json:"progress"`
}

// TaskSection summarises task volumes across all campaigns.
type TaskSection struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus"`
	Unassigned int            `json:"unassigned"`
	Overdue    int            `json:"overdue"`
}

// ApplicationSection surfaces the role-selection review queue.
type ApplicationSection struct {
	Pending      int            `json:"pending"`
	ByRole       map[string]int `json:"byRole"`
	ApprovalRate float64        `json:"approvalRate"`
}

// TeamSection reports active headcount by role.
type TeamSection struct {
	ActivePhotographers int                    `json:"activePhotographers"`
	ActiveCoordinators  int                    `json:"activeCoordinators"`
	Workload            []PhotographerWorkload `json:"workload"`
}

// PhotographerWorkload ranks photographers by active assignments.
type PhotographerWorkload struct {
	PhotographerID string `json:"photographerId"`
	FullName       string `json:"fullName"`
	ActiveTasks    int    `json:"activeTasks"`
}

// PhotographerDashboardResponse is the photographer home payload.
type PhotographerDashboardResponse struct {
	PhotographerID string         `json:"photographerId"`
	ActiveTasks    int            `json:"activeTasks"`
	ByStatus       map[string]int `json:"byStatus"`
	DueSoon        []TaskDueSoon  `json:"dueSoon"`
}

// TaskDueSoon is a condensed upcoming-deadline line.
type TaskDueSoon struct {
	TaskID     string `json:"taskId"`
	Title      string `json:"title"`
	CampaignID string `json:"campaignId"`
	DueDate    string `json:"dueDate"`
}
