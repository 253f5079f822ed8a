package gateway

import (
	"os"
	"runtime"
	"time"
)

// HostInfo is the JSON payload of GET /health: a point-in-time view of
// the process and its host, modeled after the original monitoring page.
type HostInfo struct {
	Hostname      string    `json:"hostname"`
	Platform      string    `json:"platform"`
	GoVersion     string    `json:"go_version"`
	PID           int       `json:"pid"`
	Goroutines    int       `json:"goroutines"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	StartedAt     time.Time `json:"started_at"`

	MemAllocBytes uint64 `json:"mem_alloc_bytes"`
	MemSysBytes   uint64 `json:"mem_sys_bytes"`
	NumGC         uint32 `json:"num_gc"`

	DiskTotalBytes uint64  `json:"disk_total_bytes,omitempty"`
	DiskFreeBytes  uint64  `json:"disk_free_bytes,omitempty"`
	DiskUsedPct    float64 `json:"disk_used_pct,omitempty"`
}

// CollectHost gathers host and process metrics. Disk figures come from
// the filesystem containing the working directory and are zero on
// platforms without statfs support.
func CollectHost(startedAt time.Time) HostInfo {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	hostname, _ := os.Hostname()

	info := HostInfo{
		Hostname:      hostname,
		Platform:      runtime.GOOS + "/" + runtime.GOARCH,
		GoVersion:     runtime.Version(),
		PID:           os.Getpid(),
		Goroutines:    runtime.NumGoroutine(),
		UptimeSeconds: int64(time.Since(startedAt).Seconds()),
		StartedAt:     startedAt,
		MemAllocBytes: ms.Alloc,
		MemSysBytes:   ms.Sys,
		NumGC:         ms.NumGC,
	}

	if total, free, ok := diskUsage("."); ok && total > 0 {
		info.DiskTotalBytes = total
		info.DiskFreeBytes = free
		info.DiskUsedPct = 100 * float64(total-free) / float64(total)
	}

	return info
}
