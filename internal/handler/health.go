// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/takigulyaki/afisha/internal/catalog"
	"github.com/takigulyaki/afisha/internal/logging"
	"github.com/takigulyaki/afisha/internal/scheduler"
	"github.com/takigulyaki/afisha/internal/store"
	"github.com/takigulyaki/afisha/internal/version"
)

// storePingTimeout bounds the store check of a health request.
const storePingTimeout = 2 * time.Second

// Health status values.
const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	catalog   *catalog.Catalog
	events    *store.EventStore
	journal   *logging.Journal
	version   version.Info
	startTime time.Time
	jobs      func() []scheduler.JobInfo
}

// NewHealthHandler creates a new health handler. journal may be nil.
func NewHealthHandler(cat *catalog.Catalog, events *store.EventStore, journal *logging.Journal, info version.Info) *HealthHandler {
	return &HealthHandler{
		catalog:   cat,
		events:    events,
		journal:   journal,
		version:   info,
		startTime: time.Now(),
	}
}

// SetJobs makes the health report list the background jobs returned by fn.
func (h *HealthHandler) SetJobs(fn func() []scheduler.JobInfo) {
	h.jobs = fn
}

// StartTime returns when the handler (and application) was started.
func (h *HealthHandler) StartTime() time.Time {
	return h.startTime
}

// HealthStatus represents the overall health status.
type HealthStatus struct {
	Status    string              `json:"status"`
	Timestamp time.Time           `json:"timestamp"`
	Uptime    string              `json:"uptime"`
	Version   string              `json:"version"`
	Checks    map[string]Check    `json:"checks"`
	Jobs      []scheduler.JobInfo `json:"jobs,omitempty"`
	System    *SystemInfo         `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
}

// Health handles GET /health requests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]Check{
		"catalog": h.checkCatalog(),
		"store":   h.checkStore(r.Context()),
	}
	if h.journal != nil {
		checks["log"] = Check{
			Status:  statusHealthy,
			Message: fmt.Sprintf("%d warnings or errors logged", h.journal.Total()),
		}
	}

	overall := statusHealthy
	for _, c := range checks {
		if c.Status != statusHealthy {
			overall = statusDegraded
		}
	}

	status := HealthStatus{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.versionString(),
		Checks:    checks,
	}
	if h.jobs != nil {
		status.Jobs = h.jobs()
	}
	if r.URL.Query().Get("verbose") == "true" {
		status.System = systemInfo()
	}

	code := http.StatusOK
	if overall != statusHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// Liveness handles GET /health/live - simple liveness check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "alive",
	})
}

func (h *HealthHandler) checkCatalog() Check {
	snap := h.catalog.Snapshot()
	if snap == nil {
		return Check{Status: "loading", Message: "catalog has not been loaded yet"}
	}
	return Check{
		Status:  statusHealthy,
		Message: fmt.Sprintf("%d events, loaded %s", len(snap.Events), snap.LoadedAt.UTC().Format(time.RFC3339)),
	}
}

func (h *HealthHandler) checkStore(ctx context.Context) Check {
	ctx, cancel := context.WithTimeout(ctx, storePingTimeout)
	defer cancel()

	start := time.Now()
	if err := h.events.Ping(ctx); err != nil {
		return Check{Status: "unhealthy", Message: err.Error()}
	}
	return Check{
		Status:  statusHealthy,
		Message: fmt.Sprintf("%s, %d events", h.events.Backend(), h.events.Len()),
		Latency: time.Since(start).Round(time.Microsecond).String(),
	}
}

func (h *HealthHandler) versionString() string {
	if h.version.Version == "" {
		return "dev"
	}
	return h.version.Version
}

func systemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     formatBytes(m.Alloc),
	}
}

// formatBytes formats bytes into a human-readable string.
func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
