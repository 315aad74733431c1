// internal/core/services/reports.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/ports"
)

// ReportService builds the sales report, the dashboard and the stock audit
type ReportService struct {
	repo         ports.ReportRepository
	cache        ports.CacheRepository
	dashboardTTL time.Duration
	logger       *slog.Logger
}

// Statically assert that *ReportService implements the ReportService interface.
var _ ports.ReportService = (*ReportService)(nil)

// NewReportService creates a report service. cache may be nil.
func NewReportService(repo ports.ReportRepository, cache ports.CacheRepository, dashboardTTL time.Duration, logger *slog.Logger) *ReportService {
	return &ReportService{
		repo:         repo,
		cache:        cache,
		dashboardTTL: dashboardTTL,
		logger:       logger.With(slog.String("service", "report")),
	}
}

// SalesByDateRange returns the sales between two ISO dates, both inclusive
func (s *ReportService) SalesByDateRange(ctx context.Context, start, end string) (*domain.SalesReport, error) {
	dr, err := domain.NewDateRange(start, end)
	if err != nil {
		return nil, err
	}

	sales, err := s.repo.SalesBetween(ctx, dr)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	total, err := s.repo.SalesTotalBetween(ctx, dr)
	if err != nil {
		return nil, fmt.Errorf("failed to sum sales: %w", err)
	}

	s.logger.DebugContext(ctx, "sales report built",
		slog.Time("start", dr.Start),
		slog.Time("end", dr.End),
		slog.Int("sales", len(sales)))

	return &domain.SalesReport{
		Sales:     sales,
		Total:     total,
		Count:     len(sales),
		StartDate: dr.Start,
		EndDate:   dr.End,
	}, nil
}

// Dashboard returns the stock summary, cached between refreshes
func (s *ReportService) Dashboard(ctx context.Context) (*domain.StockSummary, error) {
	return cached(ctx, s.cache, s.logger, ports.DashboardCacheKey, s.dashboardTTL, func() (*domain.StockSummary, error) {
		return s.repo.StockSummary(ctx)
	})
}

// AuditStock lists products whose stock differs from their history
func (s *ReportService) AuditStock(ctx context.Context) ([]domain.StockDiscrepancy, error) {
	found, err := s.repo.StockDiscrepancies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to audit stock: %w", err)
	}

	for _, d := range found {
		s.logger.WarnContext(ctx, "stock discrepancy",
			slog.String("product_id", d.ProductID.String()),
			slog.String("sku", d.SKU),
			slog.Int("stock", d.Stock),
			slog.Int("expected", d.Expected()))
	}

	return found, nil
}

// RefreshDashboard rebuilds the stock summary and drops the cached copy
func (s *ReportService) RefreshDashboard(ctx context.Context) error {
	if err := s.repo.RefreshStockSummary(ctx); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, ports.DashboardCacheKey); err != nil {
			s.logger.WarnContext(ctx, "failed to drop dashboard cache", slog.String("error", err.Error()))
		}
	}
	return nil
}
