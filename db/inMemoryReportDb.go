package db

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"patientsim/models"
)

var ErrNotFound = errors.New("not found")

// InMemoryReportRepository keeps reports for the life of the process. It is
// used when no database is configured.
type InMemoryReportRepository struct {
	mu      sync.RWMutex
	reports map[string]*models.Report
}

func NewInMemoryReportRepository() *InMemoryReportRepository {
	return &InMemoryReportRepository{reports: make(map[string]*models.Report)}
}

func (r *InMemoryReportRepository) SaveReport(report *models.Report) error {
	if report.ID == "" {
		return fmt.Errorf("failed to save report: missing id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reports[report.ID]; exists {
		return fmt.Errorf("failed to save report: id %s already exists", report.ID)
	}
	stored := *report
	r.reports[report.ID] = &stored
	return nil
}

func (r *InMemoryReportRepository) GetReportByID(id string) (*models.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, fmt.Errorf("report with id %s not found: %w", id, ErrNotFound)
	}
	copied := *report
	return &copied, nil
}

// ListReports returns the newest reports first.
func (r *InMemoryReportRepository) ListReports() ([]*models.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reports := make([]*models.Report, 0, len(r.reports))
	for _, report := range r.reports {
		copied := *report
		reports = append(reports, &copied)
	}
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].ID < reports[j].ID
		}
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

func (r *InMemoryReportRepository) Close() error { return nil }
