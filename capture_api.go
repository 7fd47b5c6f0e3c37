package main

import (
	"net/http"
	"sort"
)

// handleCaptureStart serves POST /api/capture/start?id=
func handleCaptureStart(w http.ResponseWriter, r *http.Request, cm *ChannelManager, captures *CaptureManager) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ch, ok := lookupChannel(w, r, cm)
	if !ok {
		return
	}

	name, err := captures.Start(ch)
	if err != nil {
		writeJSONError(w, http.StatusConflict, "%v", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"file": name})
}

// handleCaptureStop serves POST /api/capture/stop?id=
func handleCaptureStop(w http.ResponseWriter, r *http.Request, cm *ChannelManager, captures *CaptureManager) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ch, ok := lookupChannel(w, r, cm)
	if !ok {
		return
	}

	name, size, err := captures.Stop(ch)
	if err != nil {
		writeJSONError(w, http.StatusConflict, "%v", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"file": name, "bytes": size})
}

// handleCaptureList serves GET /api/capture/list
func handleCaptureList(w http.ResponseWriter, r *http.Request, captures *CaptureManager) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	names, err := captures.List()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "%v", err)
		return
	}
	sort.Strings(names)
	writeJSON(w, http.StatusOK, names)
}

// handleCaptureReplay serves POST /api/capture/replay?id=&file=
//
// The named capture file is rendered back into a level stream at the
// decoder tick rate and fed through the channel as if it arrived live.
func handleCaptureReplay(w http.ResponseWriter, r *http.Request, cm *ChannelManager, captures *CaptureManager) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ch, ok := lookupChannel(w, r, cm)
	if !ok {
		return
	}

	name := r.URL.Query().Get("file")
	if name == "" {
		writeJSONError(w, http.StatusBadRequest, "file parameter is required")
		return
	}

	rc, err := captures.Open(name)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "%v", err)
		return
	}
	defer rc.Close()

	runs, err := ParseTimings(rc)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "%v", err)
		return
	}

	samples := TimingsToSamples(runs, cm.Table().TickRate())
	events := cm.Ingest(ch, samples)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"samples": len(samples),
		"frames":  events,
	})
}

// handleCaptureAnalyze serves POST /api/capture/analyze
//
// The body is mode2 text; the response carries pulse and space duration
// statistics for jitter inspection.
func handleCaptureAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	runs, err := ParseTimings(http.MaxBytesReader(w, r.Body, maxSampleBody))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "%v", err)
		return
	}

	pulses, spaces := AnalyzeTimings(runs)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":   len(runs),
		"pulses": pulses,
		"spaces": spaces,
	})
}
