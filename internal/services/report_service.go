package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/research-hub/submission-service/internal/models"
	"github.com/research-hub/submission-service/internal/repositories"
)

const exportSheet = "Projects"

type reportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, logger *slog.Logger) ReportService {
	return &reportService{
		repo:   repo,
		logger: logger,
	}
}

func (s *reportService) ExportProjects(ctx context.Context, status, department string) ([]byte, string, error) {
	filters := repositories.ProjectFilters{Department: department}
	if status != "" {
		st := models.ProjectStatus(status)
		filters.Status = &st
	}

	projects, err := s.repo.Project().List(ctx, filters)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list projects for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Name", "Department", "Owner", "Owner Email", "Status", "Admin Message", "Files", "Submitted At"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, project := range projects {
		values := []interface{}{
			project.ID,
			project.Name,
			project.Department,
			ownerName(&project),
			ownerEmail(&project),
			string(project.Status),
			adminMessage(&project),
			fileNames(&project),
			project.CreatedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return nil, "", fmt.Errorf("failed to write row %d: %w", row+2, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.Info("Project export generated", "projects", len(projects))

	filename := fmt.Sprintf("projects-%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func ownerName(p *models.Project) string {
	if p.User == nil {
		return ""
	}
	return p.User.Name
}

func ownerEmail(p *models.Project) string {
	if p.User == nil {
		return ""
	}
	return p.User.Email
}

func adminMessage(p *models.Project) string {
	if p.AdminMessage == nil {
		return ""
	}
	return *p.AdminMessage
}

func fileNames(p *models.Project) string {
	files, err := p.FileList()
	if err != nil {
		return ""
	}
	names := make([]string, len(files))
	for i, file := range files {
		names[i] = file.Filename
	}
	return strings.Join(names, ", ")
}
