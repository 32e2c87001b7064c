package inmemory

import (
	"sync"
	"time"

	reportingdomain "equb-app-go/internal/domain/reporting"
)

type InMemoryDashboardCache struct {
	mu    sync.RWMutex
	items map[string]dashboardItem
	now   func() time.Time
}

type dashboardItem struct {
	value     reportingdomain.DashboardStats
	expiresAt time.Time
}

func NewInMemoryDashboardCache() *InMemoryDashboardCache {
	return &InMemoryDashboardCache{
		items: make(map[string]dashboardItem),
		now:   time.Now,
	}
}

func (c *InMemoryDashboardCache) GetDashboard(adminID string) (*reportingdomain.DashboardStats, bool) {
	now := c.now()

	c.mu.RLock()
	item, ok := c.items[adminID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[adminID]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, adminID)
		}
		c.mu.Unlock()
		return nil, false
	}

	value := item.value
	return &value, true
}

func (c *InMemoryDashboardCache) SetDashboard(adminID string, stats *reportingdomain.DashboardStats, ttl time.Duration) {
	if stats == nil || ttl <= 0 {
		c.DeleteDashboard(adminID)
		return
	}

	c.mu.Lock()
	c.items[adminID] = dashboardItem{
		value:     *stats,
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *InMemoryDashboardCache) DeleteDashboard(adminID string) {
	c.mu.Lock()
	delete(c.items, adminID)
	c.mu.Unlock()
}

// Len counts entries, expired ones included.
func (c *InMemoryDashboardCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
