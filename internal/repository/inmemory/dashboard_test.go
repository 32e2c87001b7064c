package inmemory

import (
	"sync"
	"testing"
	"time"

	reportingdomain "equb-app-go/internal/domain/reporting"
)

func TestDashboardCacheExpires(t *testing.T) {
	cache := NewInMemoryDashboardCache()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.SetDashboard("admin-1", &reportingdomain.DashboardStats{TotalEqubs: 3}, time.Minute)

	stats, ok := cache.GetDashboard("admin-1")
	if !ok || stats.TotalEqubs != 3 {
		t.Fatalf("expected cached stats, got %v %v", stats, ok)
	}

	stats.TotalEqubs = 99
	again, _ := cache.GetDashboard("admin-1")
	if again.TotalEqubs != 3 {
		t.Fatalf("expected cache to return copies, got %d", again.TotalEqubs)
	}

	now = now.Add(time.Minute)
	if _, ok := cache.GetDashboard("admin-1"); ok {
		t.Fatalf("expected entry to expire")
	}
	if cache.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted, got %d", cache.Len())
	}
}

func TestDashboardCacheZeroTTLDeletes(t *testing.T) {
	cache := NewInMemoryDashboardCache()
	cache.SetDashboard("admin-1", &reportingdomain.DashboardStats{}, time.Minute)
	cache.SetDashboard("admin-1", &reportingdomain.DashboardStats{}, 0)

	if _, ok := cache.GetDashboard("admin-1"); ok {
		t.Fatalf("expected zero ttl to delete the entry")
	}
}

func TestDashboardCacheConcurrentAccess(t *testing.T) {
	cache := NewInMemoryDashboardCache()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.SetDashboard("admin-1", &reportingdomain.DashboardStats{TotalMembers: j}, time.Minute)
				cache.GetDashboard("admin-1")
				if j%10 == 0 {
					cache.DeleteDashboard("admin-1")
				}
			}
		}()
	}
	wg.Wait()
}
