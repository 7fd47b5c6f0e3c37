package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"

	"github.com/klauspost/compress/gzip"

	"github.com/cwsl/ir_uberdecode/irdecode"
)

// maxSampleBody bounds a single sample upload (1 byte per tick)
const maxSampleBody = 8 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf(format, args...)})
}

// handleChannels serves GET /api/channels (list) and POST /api/channels (create)
func handleChannels(w http.ResponseWriter, r *http.Request, cm *ChannelManager) {
	switch r.Method {
	case http.MethodGet:
		infos := cm.ListChannels()
		sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
		writeJSON(w, http.StatusOK, infos)

	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
		ch, err := cm.CreateChannel(req.Name)
		if err != nil {
			writeJSONError(w, http.StatusConflict, "%v", err)
			return
		}
		writeJSON(w, http.StatusCreated, ch.Info())

	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleChannel serves GET /api/channel?id= (info) and DELETE /api/channel?id=
func handleChannel(w http.ResponseWriter, r *http.Request, cm *ChannelManager) {
	ch, ok := lookupChannel(w, r, cm)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, ch.Info())

	case http.MethodDelete:
		cm.RemoveChannel(ch.ID)
		writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})

	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleChannelSamples serves POST /api/channel/samples?id=
//
// The body is one byte per tick at the configured tick rate, nonzero
// meaning light. Gzip bodies are accepted with Content-Encoding: gzip.
func handleChannelSamples(w http.ResponseWriter, r *http.Request, cm *ChannelManager) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ch, ok := lookupChannel(w, r, cm)
	if !ok {
		return
	}

	body := io.Reader(http.MaxBytesReader(w, r.Body, maxSampleBody))
	if r.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(body)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid gzip body: %v", err)
			return
		}
		defer gz.Close()
		body = gz
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "failed to read body: %v", err)
		return
	}

	samples := make([]bool, len(raw))
	for i, b := range raw {
		samples[i] = b != 0
	}

	events := cm.Ingest(ch, samples)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"samples": len(samples),
		"frames":  events,
	})
}

// handleChannelFrames serves GET /api/channel/frames?id=&max=
func handleChannelFrames(w http.ResponseWriter, r *http.Request, cm *ChannelManager) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ch, ok := lookupChannel(w, r, cm)
	if !ok {
		return
	}

	max := 100
	if s := r.URL.Query().Get("max"); s != "" {
		if _, err := fmt.Sscanf(s, "%d", &max); err != nil || max < 1 {
			writeJSONError(w, http.StatusBadRequest, "invalid max parameter")
			return
		}
	}

	writeJSON(w, http.StatusOK, ch.DrainFrames(max))
}

// handleProtocols serves GET /api/protocols listing enabled protocols
func handleProtocols(w http.ResponseWriter, r *http.Request, cm *ChannelManager) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	protos := cm.Table().EnabledProtocols()
	names := make([]string, 0, len(protos))
	for _, p := range protos {
		names = append(names, p.String())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tick_rate": cm.Table().TickRate(),
		"protocols": names,
	})
}

// handleEncode serves POST /api/encode, rendering a frame into timing data
func handleEncode(w http.ResponseWriter, r *http.Request, cm *ChannelManager) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Protocol string `json:"protocol"`
		Address  uint16 `json:"address"`
		Command  uint32 `json:"command"`
		Flags    uint8  `json:"flags"`
		Repeat   bool   `json:"repeat"` // Render the protocol's ditto frame instead
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}

	proto := irdecode.ProtocolByName(req.Protocol)
	if proto == irdecode.ProtoUnknown {
		writeJSONError(w, http.StatusBadRequest, "unknown protocol %q", req.Protocol)
		return
	}

	var samples []bool
	var err error
	if req.Repeat {
		samples, err = irdecode.EncodeRepeat(cm.Table(), proto)
	} else {
		samples, err = irdecode.Encode(cm.Table(), irdecode.Frame{
			Protocol: proto,
			Address:  req.Address,
			Command:  req.Command,
			Flags:    req.Flags,
		})
	}
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "encode failed: %v", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"protocol":     proto.String(),
		"tick_rate":    cm.Table().TickRate(),
		"samples":      len(samples),
		"intervals_us": samplesToIntervals(samples, cm.Table().TickRate()),
	})
}

// samplesToIntervals collapses a level stream into alternating mark/space
// durations in microseconds, starting with the first mark
func samplesToIntervals(samples []bool, tickRate int) []int {
	usPerTick := 1e6 / float64(tickRate)

	var intervals []int
	i := 0
	// Skip leading silence
	for i < len(samples) && !samples[i] {
		i++
	}
	for i < len(samples) {
		level := samples[i]
		run := 0
		for i < len(samples) && samples[i] == level {
			run++
			i++
		}
		intervals = append(intervals, int(float64(run)*usPerTick+0.5))
	}
	return intervals
}

func lookupChannel(w http.ResponseWriter, r *http.Request, cm *ChannelManager) (*ReceiveChannel, bool) {
	id := r.URL.Query().Get("id")
	if id == "" {
		if name := r.URL.Query().Get("name"); name != "" {
			if ch, ok := cm.GetChannelByName(name); ok {
				return ch, true
			}
			writeJSONError(w, http.StatusNotFound, "channel %q not found", name)
			return nil, false
		}
		writeJSONError(w, http.StatusBadRequest, "id or name parameter is required")
		return nil, false
	}

	ch, ok := cm.GetChannel(id)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "channel %s not found", id)
		return nil, false
	}
	return ch, true
}
