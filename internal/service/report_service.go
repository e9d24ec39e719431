package service

import (
	"context"
	"encoding/json"
	"time"

	"go-pharmacy-pos/internal/cache"
	"go-pharmacy-pos/internal/repository"
)

const (
	dashboardCacheKey = "report:dashboard"
	dashboardCacheTTL = 30 * time.Second
)

type ReportService interface {
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
	GetSalesMovement(days int) ([]repository.SalesMovementData, error)
}

type reportService struct {
	saleRepo repository.SaleRepository
	cache    cache.ReportCache
}

func NewReportService(saleRepo repository.SaleRepository, reportCache cache.ReportCache) ReportService {
	return &reportService{
		saleRepo: saleRepo,
		cache:    reportCache,
	}
}

// GetDashboardStats serves the overview block, memoized briefly in the
// report cache. Cache errors degrade to a database read.
func (s *reportService) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	if payload, ok, err := s.cache.Get(ctx, dashboardCacheKey); err == nil && ok {
		var stats repository.DashboardStats
		if json.Unmarshal(payload, &stats) == nil {
			return &stats, nil
		}
	}

	stats, err := s.saleRepo.GetDashboardStats()
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(stats); err == nil {
		_ = s.cache.Set(ctx, dashboardCacheKey, payload, dashboardCacheTTL)
	}

	return stats, nil
}

func (s *reportService) GetSalesMovement(days int) ([]repository.SalesMovementData, error) {
	if days <= 0 {
		days = 7
	}
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.saleRepo.GetSalesMovement(startDate, endDate)
}
