package reports

import (
	"context"
	"fmt"
	"time"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetSupplierOutstanding generates the supplier outstanding (aging) report.
func (s *Service) GetSupplierOutstanding(ctx context.Context, filter SupplierOutstandingFilter) (*SupplierOutstandingReport, error) {
	// Default to current time if not specified
	if filter.AsOfDate == nil {
		now := time.Now()
		filter.AsOfDate = &now
	}

	// Set default pagination
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	report, err := s.repo.GetSupplierOutstanding(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get supplier outstanding report: %w", err)
	}

	return report, nil
}

// GetGSTInputSummary generates the GST input tax summary for a period.
func (s *Service) GetGSTInputSummary(ctx context.Context, filter GSTInputFilter) (*GSTInputReport, error) {
	// Validate required dates
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, fmt.Errorf("fromDate and toDate are required")
	}

	if filter.FromDate.After(filter.ToDate) {
		return nil, fmt.Errorf("fromDate must be before toDate")
	}

	// Set default pagination
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	report, err := s.repo.GetGSTInputSummary(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get gst input summary: %w", err)
	}

	return report, nil
}

// GetExpiringStock generates the expiring stock report.
func (s *Service) GetExpiringStock(ctx context.Context, filter ExpiringStockFilter) (*ExpiringStockReport, error) {
	if filter.WithinDays <= 0 {
		filter.WithinDays = 90
	}

	// Set default pagination
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	report, err := s.repo.GetExpiringStock(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get expiring stock report: %w", err)
	}

	return report, nil
}

// GetDocumentJournal returns the document journal.
func (s *Service) GetDocumentJournal(ctx context.Context, filter DocumentJournalFilter) (*DocumentJournal, error) {
	// Set default pagination
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}

	// Default sort
	if filter.SortBy == "" {
		filter.SortBy = "date"
	}
	if filter.SortOrder == "" {
		filter.SortOrder = "desc"
	}

	journal, err := s.repo.GetDocumentJournal(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get document journal: %w", err)
	}

	// Attach the type summary on the first page only
	if filter.Offset == 0 {
		summary, err := s.repo.GetDocumentTypeSummary(ctx, filter)
		if err == nil {
			journal.Summary = summary
		}
	}

	return journal, nil
}
