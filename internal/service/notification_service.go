package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/depth-studio/depth-studio-api/internal/models"
	appErrors "github.com/depth-studio/depth-studio-api/pkg/errors"
	"github.com/depth-studio/depth-studio-api/pkg/jobs"
)

type notificationRepo interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// NotificationService persists notifications through a background queue so
// delivery never blocks or fails the triggering request.
type NotificationService struct {
	repo   notificationRepo
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService constructs a NotificationService and its delivery
// queue. Call Start before enqueuing and Stop on shutdown.
func NewNotificationService(repo notificationRepo, workers, maxRetries int, retryDelay time.Duration, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{repo: repo, logger: logger}
	s.queue = jobs.NewQueue("notifications", s.deliver, jobs.QueueConfig{
		Workers:    workers,
		MaxRetries: maxRetries,
		RetryDelay: retryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	notification, ok := job.Payload.(*models.Notification)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}
	return s.repo.Create(ctx, notification)
}

// enqueue is fire-and-forget; a full or stopped queue only logs.
func (s *NotificationService) enqueue(userID string, nType models.NotificationType, title, message string) {
	notification := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      nType,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	err := s.queue.Enqueue(jobs.Job{
		ID:      notification.ID,
		Type:    string(nType),
		Payload: notification,
	})
	if err != nil {
		s.logger.Warn("failed to enqueue notification",
			zap.String("user_id", userID),
			zap.String("type", string(nType)),
			zap.Error(err))
	}
}

// TaskAssigned notifies a photographer about a new assignment.
func (s *NotificationService) TaskAssigned(ctx context.Context, photographerID string, task *models.CampaignTask) {
	s.enqueue(photographerID, models.NotificationTaskAssigned,
		"New task assigned",
		fmt.Sprintf("You have been assigned to task %q.", task.Title))
}

// TaskUnassigned notifies a photographer they were removed from a task.
func (s *NotificationService) TaskUnassigned(ctx context.Context, photographerID string, task *models.CampaignTask, reason string) {
	s.enqueue(photographerID, models.NotificationTaskUnassigned,
		"Task unassigned",
		fmt.Sprintf("You were removed from task %q. Reason: %s", task.Title, reason))
}

// RoleSubmitted notifies an admin that a role application needs review.
func (s *NotificationService) RoleSubmitted(ctx context.Context, adminID string, selection *models.RoleSelection) {
	s.enqueue(adminID, models.NotificationRoleSubmitted,
		"New role application",
		fmt.Sprintf("A new application for the %s role is awaiting review.", selection.SelectedRole))
}

// RoleApproved notifies an applicant their application was approved.
func (s *NotificationService) RoleApproved(ctx context.Context, userID string, role models.UserRole) {
	s.enqueue(userID, models.NotificationRoleApproved,
		"Role application approved",
		fmt.Sprintf("Your application for the %s role has been approved. Welcome aboard.", role))
}

// RoleRejected notifies an applicant their application was declined.
func (s *NotificationService) RoleRejected(ctx context.Context, userID string, reason string) {
	s.enqueue(userID, models.NotificationRoleRejected,
		"Role application rejected",
		fmt.Sprintf("Your role application was not approved. Reason: %s", reason))
}

// ListForUser returns a user's notifications.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// MarkRead flags a notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}
