package handler

import (
	"net/http"
	"runtime"
	"time"

	"jersey-stock-api/internal/cache"
	"jersey-stock-api/internal/repository"
	"jersey-stock-api/pkg/response"
)

// statsReporter is implemented by caches that track hit rates.
type statsReporter interface {
	Stats() map[string]interface{}
}

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	store     repository.Store
	cache     cache.Cache
	storeType string
	startTime time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(store repository.Store, c cache.Cache, storeType string) *AdminHandler {
	return &AdminHandler{
		store:     store,
		cache:     c,
		storeType: storeType,
		startTime: time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := make(map[string]interface{})

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["store_type"] = h.storeType

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":      float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":        float64(memStats.Sys) / 1024 / 1024,
		"heap_inuse_mb": float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":        memStats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	switch {
	case h.cache == nil:
		stats["cache"] = map[string]interface{}{"status": "not_configured"}
	default:
		info := map[string]interface{}{"backend": h.cache.Name(), "status": "connected"}
		if p, ok := h.cache.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				info["status"] = "error"
				info["error"] = err.Error()
			}
		}
		if s, ok := h.cache.(statsReporter); ok {
			for k, v := range s.Stats() {
				info[k] = v
			}
		}
		stats["cache"] = info
	}

	if h.store != nil {
		storeStats, err := h.store.GetStats(ctx)
		if err == nil {
			storeStats["status"] = "connected"
			stats["store"] = storeStats
		} else {
			stats["store"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		}
	} else {
		stats["store"] = map[string]interface{}{"status": "not_configured"}
	}

	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}
