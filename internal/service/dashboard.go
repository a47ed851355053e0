package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/yourorg/servicetracker/internal/domain"
	"github.com/yourorg/servicetracker/internal/observability/metrics"
)

// SnapshotCache is the cache used for dashboard snapshots. Satisfied by the
// redis client; nil disables caching.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// DashboardStats are the derived counters shown on the dashboard.
type DashboardStats struct {
	TotalServices     int `json:"totalServices"`
	ActiveServices    int `json:"activeServices"`
	CompletedServices int `json:"completedServices"`
	DistinctCustomers int `json:"distinctCustomers"`
}

// DashboardView is the aggregate read for the dashboard page.
type DashboardView struct {
	BusinessName      string            `json:"businessName"`
	BusinessSubdomain string            `json:"businessSubdomain"`
	Services          []*domain.Service `json:"services"`
	Stats             DashboardStats    `json:"stats"`
}

// DashboardService builds the per-business dashboard snapshot, cached for a
// short TTL and invalidated by every write in the business.
type DashboardService struct {
	services domain.ServiceRepository
	cache    SnapshotCache
	ttl      time.Duration
	logger   *slog.Logger
}

// NewDashboardService creates a dashboard service
func NewDashboardService(services domain.ServiceRepository, cache SnapshotCache, ttl time.Duration, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &DashboardService{services: services, cache: cache, ttl: ttl, logger: logger}
}

// Load returns the dashboard view for the caller's business.
func (s *DashboardService) Load(ctx context.Context, user *domain.User, business *domain.Business) (*DashboardView, error) {
	key := dashboardCacheKey(business.ID)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil && raw != "" {
			view := &DashboardView{}
			if err := json.Unmarshal([]byte(raw), view); err == nil {
				metrics.ObserveDashboardCache("hit")
				return view, nil
			}
			// A corrupt entry falls through to a rebuild.
		}
		metrics.ObserveDashboardCache("miss")
	}

	services, err := s.services.ListByBusiness(user.BusinessID)
	if err != nil {
		return nil, err
	}

	stats := DashboardStats{TotalServices: len(services)}
	customers := map[string]struct{}{}
	for _, svc := range services {
		switch svc.Status {
		case domain.StatusPending, domain.StatusInProgress:
			stats.ActiveServices++
		case domain.StatusCompleted:
			stats.CompletedServices++
		}
		customers[svc.CustomerID] = struct{}{}
	}
	stats.DistinctCustomers = len(customers)

	view := &DashboardView{
		BusinessName:      business.Name,
		BusinessSubdomain: business.Subdomain,
		Services:          services,
		Stats:             stats,
	}

	if s.cache != nil {
		if raw, err := json.Marshal(view); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
				s.logger.Warn("dashboard cache write failed",
					slog.String("business_id", business.ID),
					slog.String("error", err.Error()),
				)
			}
		}
	}
	return view, nil
}

func dashboardCacheKey(businessID string) string {
	return "dashboard:" + businessID
}

// invalidateDashboard drops the cached snapshot for a business. Failures are
// logged and swallowed; a stale snapshot expires on its own in one TTL.
func invalidateDashboard(cache SnapshotCache, businessID string, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cache.Delete(ctx, dashboardCacheKey(businessID)); err != nil {
		logger.Warn("dashboard cache invalidation failed",
			slog.String("business_id", businessID),
			slog.String("error", err.Error()),
		)
	}
}
