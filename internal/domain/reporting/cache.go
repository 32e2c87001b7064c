package reporting

import "time"

type DashboardCache interface {
	GetDashboard(adminID string) (*DashboardStats, bool)
	SetDashboard(adminID string, stats *DashboardStats, ttl time.Duration)
	DeleteDashboard(adminID string)
}

type noopDashboardCache struct{}

func (noopDashboardCache) GetDashboard(string) (*DashboardStats, bool) {
	return nil, false
}

func (noopDashboardCache) SetDashboard(string, *DashboardStats, time.Duration) {}

func (noopDashboardCache) DeleteDashboard(string) {}
