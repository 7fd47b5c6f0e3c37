package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cwsl/ir_uberdecode/irdecode"
)

// ChannelInfo is the JSON representation of a receive channel
type ChannelInfo struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Created       time.Time `json:"created"`
	LastActive    time.Time `json:"last_active"`
	SamplesTotal  uint64    `json:"samples_total"`
	FramesDecoded uint64    `json:"frames_decoded"`
	Tick          uint64    `json:"tick"`
}

// ReceiveChannel is one named IR level stream with its own decoder state.
// All decoders share the manager's protocol table.
type ReceiveChannel struct {
	ID      string
	Name    string
	Created time.Time

	decoder *irdecode.Decoder
	frames  chan FrameEvent

	lastActive    time.Time
	samplesTotal  uint64
	framesDecoded uint64

	mu sync.Mutex
}

// FrameEvent is a decoded frame annotated with its source channel
type FrameEvent struct {
	Channel     string         `json:"channel"`
	ChannelName string         `json:"channel_name"`
	Frame       irdecode.Frame `json:"frame"`
	DecodedAt   time.Time      `json:"decoded_at"`
}

// ChannelManager owns all receive channels and the shared protocol table
type ChannelManager struct {
	table   *irdecode.Table
	config  *Config
	metrics *PrometheusMetrics

	channels map[string]*ReceiveChannel
	byName   map[string]string // name -> id
	mu       sync.RWMutex

	handlers   []func(FrameEvent)
	samplers   []func(*ReceiveChannel, []bool)
	handlersMu sync.RWMutex
}

// NewChannelManager creates a channel manager and starts the idle cleanup goroutine
func NewChannelManager(ctx context.Context, table *irdecode.Table, config *Config, metrics *PrometheusMetrics) *ChannelManager {
	cm := &ChannelManager{
		table:    table,
		config:   config,
		metrics:  metrics,
		channels: make(map[string]*ReceiveChannel),
		byName:   make(map[string]string),
	}

	if config.Server.ChannelIdleTimeout > 0 {
		go cm.cleanupIdleChannels(ctx)
	}

	return cm
}

// OnFrame registers a handler called for every decoded frame.
// Handlers must not block; slow consumers should buffer internally.
func (cm *ChannelManager) OnFrame(handler func(FrameEvent)) {
	cm.handlersMu.Lock()
	cm.handlers = append(cm.handlers, handler)
	cm.handlersMu.Unlock()
}

// OnSamples registers a handler called with every ingested sample batch
func (cm *ChannelManager) OnSamples(handler func(*ReceiveChannel, []bool)) {
	cm.handlersMu.Lock()
	cm.samplers = append(cm.samplers, handler)
	cm.handlersMu.Unlock()
}

// CreateChannel creates a new receive channel with its own decoder
func (cm *ChannelManager) CreateChannel(name string) (*ReceiveChannel, error) {
	if name == "" {
		return nil, fmt.Errorf("channel name is required")
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	if len(cm.channels) >= cm.config.Server.MaxChannels {
		return nil, fmt.Errorf("channel limit reached (%d)", cm.config.Server.MaxChannels)
	}
	if _, exists := cm.byName[name]; exists {
		return nil, fmt.Errorf("channel %q already exists", name)
	}

	ch := &ReceiveChannel{
		ID:         uuid.New().String(),
		Name:       name,
		Created:    time.Now(),
		decoder:    irdecode.NewDecoder(cm.table),
		frames:     make(chan FrameEvent, cm.config.Decoder.QueueSize),
		lastActive: time.Now(),
	}

	cm.channels[ch.ID] = ch
	cm.byName[name] = ch.ID

	cm.metrics.RecordChannelCreated()
	cm.metrics.UpdateActiveChannels(len(cm.channels))
	log.Printf("Channel created: %s (%s)", name, ch.ID)

	return ch, nil
}

// GetChannel looks up a channel by ID
func (cm *ChannelManager) GetChannel(id string) (*ReceiveChannel, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	ch, ok := cm.channels[id]
	return ch, ok
}

// GetChannelByName looks up a channel by name
func (cm *ChannelManager) GetChannelByName(name string) (*ReceiveChannel, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	id, ok := cm.byName[name]
	if !ok {
		return nil, false
	}
	ch, ok := cm.channels[id]
	return ch, ok
}

// RemoveChannel removes a channel by ID
func (cm *ChannelManager) RemoveChannel(id string) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	ch, ok := cm.channels[id]
	if !ok {
		return false
	}

	delete(cm.channels, id)
	delete(cm.byName, ch.Name)

	cm.metrics.RecordChannelRemoved()
	cm.metrics.UpdateActiveChannels(len(cm.channels))
	log.Printf("Channel removed: %s (%s)", ch.Name, id)

	return true
}

// ListChannels returns info for all active channels
func (cm *ChannelManager) ListChannels() []ChannelInfo {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	infos := make([]ChannelInfo, 0, len(cm.channels))
	for _, ch := range cm.channels {
		infos = append(infos, ch.Info())
	}
	return infos
}

// Table returns the shared protocol table
func (cm *ChannelManager) Table() *irdecode.Table {
	return cm.table
}

// Ingest feeds level samples into a channel's decoder and dispatches any
// frames that complete. Samples are one tick each: true = light, false = dark.
func (cm *ChannelManager) Ingest(ch *ReceiveChannel, samples []bool) []FrameEvent {
	ch.mu.Lock()

	ch.lastActive = time.Now()
	ch.samplesTotal += uint64(len(samples))

	var events []FrameEvent
	rest := samples
	for len(rest) > 0 {
		frame, consumed, ok := ch.decoder.Detect(rest)
		rest = rest[consumed:]
		if !ok {
			break
		}
		ch.framesDecoded++
		events = append(events, FrameEvent{
			Channel:     ch.ID,
			ChannelName: ch.Name,
			Frame:       frame,
			DecodedAt:   time.Now(),
		})
	}

	ch.mu.Unlock()

	cm.metrics.RecordSamples(len(samples))

	cm.handlersMu.RLock()
	for _, sampler := range cm.samplers {
		sampler(ch, samples)
	}
	cm.handlersMu.RUnlock()

	for _, ev := range events {
		cm.metrics.RecordFrame(ev.Frame.ProtocolName(), ev.Frame.Repetition())

		// Queue for pull-based consumers, dropping when full
		select {
		case ch.frames <- ev:
		default:
			cm.metrics.RecordQueueDrop(ch.Name)
		}

		cm.handlersMu.RLock()
		for _, handler := range cm.handlers {
			handler(ev)
		}
		cm.handlersMu.RUnlock()

		if DebugMode {
			log.Printf("DEBUG: Channel %s decoded %s addr=0x%04X cmd=0x%X repeat=%v",
				ev.ChannelName, ev.Frame.ProtocolName(), ev.Frame.Address, ev.Frame.Command, ev.Frame.Repetition())
		}
	}

	return events
}

// DrainFrames returns up to max queued frames without blocking
func (ch *ReceiveChannel) DrainFrames(max int) []FrameEvent {
	events := make([]FrameEvent, 0, max)
	for len(events) < max {
		select {
		case ev := <-ch.frames:
			events = append(events, ev)
		default:
			return events
		}
	}
	return events
}

// Info returns a snapshot of the channel state
func (ch *ReceiveChannel) Info() ChannelInfo {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ChannelInfo{
		ID:            ch.ID,
		Name:          ch.Name,
		Created:       ch.Created,
		LastActive:    ch.lastActive,
		SamplesTotal:  ch.samplesTotal,
		FramesDecoded: ch.framesDecoded,
		Tick:          ch.decoder.Tick(),
	}
}

// cleanupIdleChannels periodically removes channels that have not received
// samples within the configured idle timeout
func (cm *ChannelManager) cleanupIdleChannels(ctx context.Context) {
	interval := time.Duration(cm.config.Server.ChannelIdleTimeout) * time.Second / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			timeout := time.Duration(cm.config.Server.ChannelIdleTimeout) * time.Second
			cutoff := time.Now().Add(-timeout)

			var stale []string
			cm.mu.RLock()
			for id, ch := range cm.channels {
				ch.mu.Lock()
				idle := ch.lastActive.Before(cutoff)
				ch.mu.Unlock()
				if idle {
					stale = append(stale, id)
				}
			}
			cm.mu.RUnlock()

			for _, id := range stale {
				if ch, ok := cm.GetChannel(id); ok {
					log.Printf("Channel %s idle for more than %v, removing", ch.Name, timeout)
					cm.RemoveChannel(id)
				}
			}
		}
	}
}
