package main

import (
	"log"
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// StatusResponse is the JSON shape of /api/status
type StatusResponse struct {
	Version       string        `json:"version"`
	UptimeSeconds float64       `json:"uptime_seconds"`
	TickRate      int           `json:"tick_rate"`
	Protocols     int           `json:"protocols"`
	Channels      []ChannelInfo `json:"channels"`
	System        SystemStatus  `json:"system"`
}

// SystemStatus carries host resource information
type SystemStatus struct {
	Hostname        string  `json:"hostname"`
	OS              string  `json:"os"`
	Platform        string  `json:"platform"`
	CPUCores        int     `json:"cpu_cores"`
	CPUPercent      float64 `json:"cpu_percent"`
	Load1           float64 `json:"load1"`
	MemoryTotal     uint64  `json:"memory_total"`
	MemoryUsed      uint64  `json:"memory_used"`
	MemoryPercent   float64 `json:"memory_percent"`
	Goroutines      int     `json:"goroutines"`
	HostUptimeHours float64 `json:"host_uptime_hours"`
}

// handleStatus serves GET /api/status
func handleStatus(w http.ResponseWriter, r *http.Request, cm *ChannelManager) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := StatusResponse{
		Version:       Version,
		UptimeSeconds: time.Since(StartTime).Seconds(),
		TickRate:      cm.Table().TickRate(),
		Protocols:     len(cm.Table().EnabledProtocols()),
		Channels:      cm.ListChannels(),
		System:        collectSystemStatus(),
	}

	writeJSON(w, http.StatusOK, resp)
}

// collectSystemStatus gathers host metrics, tolerating partial failures
func collectSystemStatus() SystemStatus {
	status := SystemStatus{
		Goroutines: runtime.NumGoroutine(),
		CPUCores:   runtime.NumCPU(),
	}

	if info, err := host.Info(); err == nil {
		status.Hostname = info.Hostname
		status.OS = info.OS
		status.Platform = info.Platform
		status.HostUptimeHours = float64(info.Uptime) / 3600.0
	} else if DebugMode {
		log.Printf("DEBUG: Failed to get host info: %v", err)
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		status.CPUPercent = percents[0]
	}

	if avg, err := load.Avg(); err == nil {
		status.Load1 = avg.Load1
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		status.MemoryTotal = vm.Total
		status.MemoryUsed = vm.Used
		status.MemoryPercent = vm.UsedPercent
	}

	return status
}
