// internal/core/services/reports_test.go
package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	redis_a "github.com/ammerola/backoffice-be/internal/adapters/redis_adapter"
	"github.com/ammerola/backoffice-be/internal/core/domain"
	"github.com/ammerola/backoffice-be/internal/core/ports"
	"github.com/ammerola/backoffice-be/internal/core/services"
	"github.com/ammerola/backoffice-be/test/helpers"
	"github.com/ammerola/backoffice-be/test/mocks"
)

func TestReportService_SalesByDateRange(t *testing.T) {
	sale := domain.Sale{
		ID:     uuid.New(),
		Number: "B001-77",
		Total:  decimal.RequireFromString("12.50"),
		Items: []domain.SaleItem{
			{ProductID: uuid.New(), Name: "Leche", SKU: "LEC-1", Quantity: 5, UnitPrice: decimal.RequireFromString("2.50")},
		},
	}

	tests := []struct {
		name          string
		start, end    string
		setupMocks    func(*mocks.MockReportRepository)
		expectedError error
		check         func(*testing.T, *domain.SalesReport)
	}{
		{
			name:  "end_date_covers_whole_day",
			start: "2026-03-01",
			end:   "2026-03-31",
			setupMocks: func(m *mocks.MockReportRepository) {
				m.EXPECT().
					SalesBetween(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, r domain.DateRange) ([]domain.Sale, error) {
						assert.Equal(t, 23, r.End.Hour())
						assert.Equal(t, 59, r.End.Minute())
						assert.Equal(t, 999*time.Millisecond, time.Duration(r.End.Nanosecond()))
						return []domain.Sale{sale}, nil
					})
				m.EXPECT().SalesTotalBetween(gomock.Any(), gomock.Any()).Return(decimal.RequireFromString("12.50"), nil)
			},
			check: func(t *testing.T, r *domain.SalesReport) {
				assert.Equal(t, 1, r.Count)
				assert.True(t, r.Total.Equal(decimal.RequireFromString("12.5")))
				assert.Equal(t, "2026-03-01", r.StartDate.Format("2006-01-02"))
			},
		},
		{
			name:          "missing_end_date",
			start:         "2026-03-01",
			setupMocks:    func(m *mocks.MockReportRepository) {},
			expectedError: domain.ErrInvalidInput,
		},
		{
			name:          "reversed_range",
			start:         "2026-03-10",
			end:           "2026-03-01",
			setupMocks:    func(m *mocks.MockReportRepository) {},
			expectedError: domain.ErrInvalidInput,
		},
		{
			name:  "empty_range",
			start: "2026-03-01",
			end:   "2026-03-01",
			setupMocks: func(m *mocks.MockReportRepository) {
				m.EXPECT().SalesBetween(gomock.Any(), gomock.Any()).Return([]domain.Sale{}, nil)
				m.EXPECT().SalesTotalBetween(gomock.Any(), gomock.Any()).Return(decimal.Zero, nil)
			},
			check: func(t *testing.T, r *domain.SalesReport) {
				assert.Zero(t, r.Count)
				assert.True(t, r.Total.IsZero())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockReportRepository(ctrl)
			tt.setupMocks(repo)

			svc := services.NewReportService(repo, nil, time.Minute, helpers.TestLogger())
			got, err := svc.SalesByDateRange(context.Background(), tt.start, tt.end)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestReportService_Dashboard_Cached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redis_a.NewCache(client, time.Hour, helpers.TestLogger())

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockReportRepository(ctrl)
	repo.EXPECT().StockSummary(gomock.Any()).Return(&domain.StockSummary{Products: 42, UnitsInStock: 900}, nil).Times(2)
	repo.EXPECT().RefreshStockSummary(gomock.Any()).Return(nil)

	svc := services.NewReportService(repo, cache, time.Minute, helpers.TestLogger())
	ctx := context.Background()

	first, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	second, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Products, second.Products)
	assert.True(t, mr.Exists(ports.DashboardCacheKey))

	require.NoError(t, svc.RefreshDashboard(ctx))
	assert.False(t, mr.Exists(ports.DashboardCacheKey))

	_, err = svc.Dashboard(ctx)
	require.NoError(t, err)
}

func TestReportService_AuditStock(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockReportRepository(ctrl)

	drift := domain.StockDiscrepancy{ProductID: uuid.New(), SKU: "ARZ-5", Stock: 9, InitialStock: 10, Purchased: 3, Sold: 2}
	repo.EXPECT().StockDiscrepancies(gomock.Any()).Return([]domain.StockDiscrepancy{drift}, nil)

	svc := services.NewReportService(repo, nil, 0, helpers.TestLogger())
	got, err := svc.AuditStock(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 11, got[0].Expected())

	repo.EXPECT().StockDiscrepancies(gomock.Any()).Return(nil, errors.New("timeout"))
	_, err = svc.AuditStock(context.Background())
	assert.ErrorContains(t, err, "failed to audit stock")
}

func TestCachedEmployeeResolver(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redis_a.NewCache(client, time.Hour, helpers.TestLogger())

	ctrl := gomock.NewController(t)
	next := mocks.NewMockEmployeeResolver(ctrl)
	employee := uuid.New()

	next.EXPECT().ResolveEmployee(gomock.Any(), "user-1").Return(employee, nil).Times(1)
	next.EXPECT().ResolveEmployee(gomock.Any(), "ghost").
		Return(uuid.Nil, domain.ErrEmployeeNotFound).Times(2)

	r := services.NewCachedEmployeeResolver(next, cache, time.Hour, helpers.TestLogger())
	ctx := context.Background()

	for range 3 {
		got, err := r.ResolveEmployee(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, employee, got)
	}

	// misses are not cached
	for range 2 {
		_, err := r.ResolveEmployee(ctx, "ghost")
		assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)
	}
}
