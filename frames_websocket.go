package main

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// FrameWebSocketHandler manages WebSocket connections for decoded frame delivery
// and for streaming sample ingest.
type FrameWebSocketHandler struct {
	clients   map[*websocket.Conn]*sync.Mutex // Each connection has its own write mutex
	filters   map[*websocket.Conn]string      // Optional channel name filter per connection
	clientsMu sync.RWMutex

	channels          *ChannelManager
	prometheusMetrics *PrometheusMetrics
	upgrader          websocket.Upgrader
}

// NewFrameWebSocketHandler creates the handler and registers it for decoded frames
func NewFrameWebSocketHandler(channels *ChannelManager, prometheusMetrics *PrometheusMetrics) *FrameWebSocketHandler {
	handler := &FrameWebSocketHandler{
		clients:           make(map[*websocket.Conn]*sync.Mutex),
		filters:           make(map[*websocket.Conn]string),
		channels:          channels,
		prometheusMetrics: prometheusMetrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:    1024,
			WriteBufferSize:   1024,
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for now
			},
		},
	}

	channels.OnFrame(func(ev FrameEvent) {
		handler.broadcastFrame(ev)
	})

	return handler
}

// HandleFramesWebSocket upgrades the connection and streams decoded frames.
// An optional ?channel= query parameter restricts delivery to one channel name.
func (h *FrameWebSocketHandler) HandleFramesWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Frames WebSocket upgrade failed: %v", err)
		return
	}

	filter := r.URL.Query().Get("channel")

	h.clientsMu.Lock()
	h.clients[conn] = &sync.Mutex{}
	if filter != "" {
		h.filters[conn] = filter
	}
	h.clientsMu.Unlock()

	h.prometheusMetrics.RecordWSConnection("frames")
	if DebugMode {
		log.Printf("DEBUG: Frames WebSocket client connected from %s (filter=%q)", getClientIP(r), filter)
	}

	// Read loop exists only to detect disconnection
	go func() {
		defer h.removeClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// HandleSamplesWebSocket upgrades the connection for streaming sample ingest.
// Binary messages carry one byte per tick (nonzero = light). Decoded frames
// are sent back as JSON text messages on the same connection.
func (h *FrameWebSocketHandler) HandleSamplesWebSocket(w http.ResponseWriter, r *http.Request) {
	ch, ok := lookupChannel(w, r, h.channels)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Samples WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	h.prometheusMetrics.RecordWSConnection("samples")
	defer h.prometheusMetrics.RecordWSDisconnect("samples")

	log.Printf("Samples WebSocket stream opened for channel %s from %s", ch.Name, getClientIP(r))

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Samples WebSocket error on channel %s: %v", ch.Name, err)
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		samples := make([]bool, len(data))
		for i, b := range data {
			samples[i] = b != 0
		}

		for _, ev := range h.channels.Ingest(ch, samples) {
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("Samples WebSocket write error on channel %s: %v", ch.Name, err)
				return
			}
		}
	}
}

// broadcastFrame sends a decoded frame to all connected frame clients
func (h *FrameWebSocketHandler) broadcastFrame(ev FrameEvent) {
	h.clientsMu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		if filter, ok := h.filters[conn]; ok && filter != ev.ChannelName {
			continue
		}
		conns = append(conns, conn)
	}
	h.clientsMu.RUnlock()

	for _, conn := range conns {
		h.clientsMu.RLock()
		writeMu, ok := h.clients[conn]
		h.clientsMu.RUnlock()
		if !ok {
			continue
		}

		writeMu.Lock()
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		err := conn.WriteJSON(ev)
		writeMu.Unlock()

		if err != nil {
			log.Printf("Frames WebSocket write failed, removing client: %v", err)
			h.removeClient(conn)
		}
	}
}

func (h *FrameWebSocketHandler) removeClient(conn *websocket.Conn) {
	h.clientsMu.Lock()
	_, present := h.clients[conn]
	delete(h.clients, conn)
	delete(h.filters, conn)
	h.clientsMu.Unlock()

	if present {
		conn.Close()
		h.prometheusMetrics.RecordWSDisconnect("frames")
	}
}
