package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/depth-studio/depth-studio-api/internal/models"
	appErrors "github.com/depth-studio/depth-studio-api/pkg/errors"
	"github.com/depth-studio/depth-studio-api/pkg/export"
)

// ReportFormat selects the rendered output type.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

type exportCampaignReader interface {
	FindByID(ctx context.Context, id string) (*models.Campaign, error)
}

type exportTaskReader interface {
	ListByCampaign(ctx context.Context, campaignID string) ([]models.CampaignTask, error)
}

type exportUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult carries a rendered report ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders campaign production reports as CSV or PDF.
type ExportService struct {
	campaigns exportCampaignReader
	tasks     exportTaskReader
	users     exportUserReader
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(campaigns exportCampaignReader, tasks exportTaskReader, users exportUserReader, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{campaigns: campaigns, tasks: tasks, users: users, csv: csv, pdf: pdf, logger: logger}
}

// CampaignReport renders the full task breakdown for a campaign.
func (s *ExportService) CampaignReport(ctx context.Context, campaignID string, format ReportFormat) (*ExportResult, error) {
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	campaign, err := s.campaigns.FindByID(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "campaign not found")
	}
	tasks, err := s.tasks.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list campaign tasks")
	}

	dataset := s.buildTaskDataset(ctx, tasks)
	title := fmt.Sprintf("Campaign Report: %s", campaign.Name)

	var payload []byte
	var contentType string
	switch format {
	case ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	return &ExportResult{
		Filename:    buildReportFilename(campaign.Name, format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

func (s *ExportService) buildTaskDataset(ctx context.Context, tasks []models.CampaignTask) export.Dataset {
	names := s.resolvePhotographerNames(ctx, tasks)
	rows := make([]map[string]string, 0, len(tasks))
	for _, task := range tasks {
		assignee := ""
		method := ""
		if task.AssignedPhotographer != nil {
			assignee = names[*task.AssignedPhotographer]
			if assignee == "" {
				assignee = *task.AssignedPhotographer
			}
		}
		if task.AssignmentMethod != nil {
			method = string(*task.AssignmentMethod)
		}
		dueDate := ""
		if task.DueDate != nil {
			dueDate = task.DueDate.UTC().Format("2006-01-02")
		}
		rows = append(rows, map[string]string{
			"Task":         task.Title,
			"Status":       string(task.CurrentStatus),
			"Photographer": assignee,
			"Method":       method,
			"Progress (%)": fmt.Sprintf("%.0f", task.ProgressPercentage),
			"Due Date":     dueDate,
		})
	}
	return export.Dataset{
		Headers: []string{"Task", "Status", "Photographer", "Method", "Progress (%)", "Due Date"},
		Rows:    rows,
	}
}

// resolvePhotographerNames is best-effort: a failed lookup falls back to the ID.
func (s *ExportService) resolvePhotographerNames(ctx context.Context, tasks []models.CampaignTask) map[string]string {
	names := make(map[string]string)
	for _, task := range tasks {
		if task.AssignedPhotographer == nil {
			continue
		}
		id := *task.AssignedPhotographer
		if _, seen := names[id]; seen {
			continue
		}
		user, err := s.users.FindByID(ctx, id)
		if err != nil {
			s.logger.Warn("failed to resolve photographer name for report", zap.String("user_id", id), zap.Error(err))
			names[id] = ""
			continue
		}
		names[id] = user.FullName
	}
	return names
}

func buildReportFilename(campaignName string, format ReportFormat) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	name := strings.ToLower(strings.TrimSpace(campaignName))
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	name = replacer.Replace(name)
	if name == "" {
		name = "campaign"
	}
	if len(name) > 80 {
		name = name[:80]
	}
	return fmt.Sprintf("%s_report_%s.%s", name, timestamp, format)
}
