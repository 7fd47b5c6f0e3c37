package main

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PrometheusMetrics holds all Prometheus metric collectors for decoder activity and system metrics
type PrometheusMetrics struct {
	// Frame metrics (with 'protocol' label)
	framesDecodedTotal *prometheus.CounterVec // Decoded frames by protocol
	frameRepeatsTotal  *prometheus.CounterVec // Frames flagged as key-held repetitions
	lastFrameTimestamp *prometheus.GaugeVec   // Unix timestamp of last decoded frame per protocol

	// Channel metrics
	samplesProcessedTotal prometheus.Counter // Total level samples fed into decoders
	activeChannels        prometheus.Gauge   // Currently active receive channels
	channelsCreatedTotal  prometheus.Counter // Channels created since startup
	channelsRemovedTotal  prometheus.Counter // Channels removed (explicit or idle timeout)
	frameQueueDropsTotal  *prometheus.CounterVec // Frames dropped because a channel queue was full

	// WebSocket connection metrics (with 'type' label: frames, samples)
	wsConnectionsTotal  *prometheus.CounterVec
	wsDisconnectsTotal  *prometheus.CounterVec
	wsActiveConnections *prometheus.GaugeVec

	// MQTT metrics
	mqttPublishesTotal       prometheus.Counter
	mqttPublishFailuresTotal prometheus.Counter
	mqttConnected            prometheus.Gauge

	// Pushgateway metrics
	pushgatewayPushesTotal   prometheus.Counter
	pushgatewaySuccessTotal  prometheus.Counter
	pushgatewayFailuresTotal prometheus.Counter
	pushgatewayLastPushTime  prometheus.Gauge

	// Capture metrics
	captureFilesTotal prometheus.Counter
	captureBytesTotal prometheus.Counter

	// Resource metrics
	goroutineCount   prometheus.Gauge
	memoryAllocBytes prometheus.Gauge
	memoryTotalBytes prometheus.Gauge
	memoryHeapBytes  prometheus.Gauge
	memoryStackBytes prometheus.Gauge
	gcPauseSeconds   prometheus.Gauge
	uptimeSeconds    prometheus.Gauge
}

// NewPrometheusMetrics creates and registers all Prometheus metrics
func NewPrometheusMetrics() *PrometheusMetrics {
	pm := &PrometheusMetrics{
		framesDecodedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "irdecode_frames_decoded_total",
				Help: "Total decoded IR frames by protocol",
			},
			[]string{"protocol"},
		),
		frameRepeatsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "irdecode_frame_repeats_total",
				Help: "Total frames flagged as key-held repetitions by protocol",
			},
			[]string{"protocol"},
		),
		lastFrameTimestamp: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "irdecode_last_frame_timestamp",
				Help: "Unix timestamp of the last decoded frame per protocol",
			},
			[]string{"protocol"},
		),
		samplesProcessedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "irdecode_samples_processed_total",
				Help: "Total level samples fed into decoders",
			},
		),
		activeChannels: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "irdecode_active_channels",
				Help: "Currently active receive channels",
			},
		),
		channelsCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "irdecode_channels_created_total",
				Help: "Receive channels created since startup",
			},
		),
		channelsRemovedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "irdecode_channels_removed_total",
				Help: "Receive channels removed (explicit or idle timeout)",
			},
		),
		frameQueueDropsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "irdecode_frame_queue_drops_total",
				Help: "Frames dropped because a channel queue was full",
			},
			[]string{"channel"},
		),
		wsConnectionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "irdecode_ws_connections_total",
				Help: "Total WebSocket connections by type",
			},
			[]string{"type"},
		),
		wsDisconnectsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "irdecode_ws_disconnects_total",
				Help: "Total WebSocket disconnections by type",
			},
			[]string{"type"},
		),
		wsActiveConnections: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "irdecode_ws_active_connections",
				Help: "Currently active WebSocket connections by type",
			},
			[]string{"type"},
		),
		mqttPublishesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "irdecode_mqtt_publishes_total",
				Help: "Total MQTT publish attempts",
			},
		),
		mqttPublishFailuresTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "irdecode_mqtt_publish_failures_total",
				Help: "Total failed MQTT publishes",
			},
		),
		mqttConnected: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "irdecode_mqtt_connected",
				Help: "MQTT broker connection state (1 = connected)",
			},
		),
		pushgatewayPushesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "irdecode_pushgateway_pushes_total",
				Help: "Total Pushgateway push attempts",
			},
		),
		pushgatewaySuccessTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "irdecode_pushgateway_success_total",
				Help: "Total successful Pushgateway pushes",
			},
		),
		pushgatewayFailuresTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "irdecode_pushgateway_failures_total",
				Help: "Total failed Pushgateway pushes",
			},
		),
		pushgatewayLastPushTime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "irdecode_pushgateway_last_push_timestamp",
				Help: "Unix timestamp of the last successful Pushgateway push",
			},
		),
		captureFilesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "irdecode_capture_files_total",
				Help: "Capture files written since startup",
			},
		),
		captureBytesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "irdecode_capture_bytes_total",
				Help: "Bytes written to capture files since startup",
			},
		),
		goroutineCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "irdecode_goroutines",
				Help: "Number of goroutines",
			},
		),
		memoryAllocBytes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "irdecode_memory_alloc_bytes",
				Help: "Currently allocated bytes",
			},
		),
		memoryTotalBytes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "irdecode_memory_total_bytes",
				Help: "Cumulative allocated bytes",
			},
		),
		memoryHeapBytes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "irdecode_memory_heap_bytes",
				Help: "Heap allocated bytes",
			},
		),
		memoryStackBytes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "irdecode_memory_stack_bytes",
				Help: "Stack bytes in use",
			},
		),
		gcPauseSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "irdecode_gc_pause_seconds",
				Help: "Most recent GC pause duration in seconds",
			},
		),
		uptimeSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "irdecode_uptime_seconds",
				Help: "Process uptime in seconds",
			},
		),
	}

	return pm
}

// RecordFrame records a decoded frame
func (pm *PrometheusMetrics) RecordFrame(protocol string, repeat bool) {
	if pm == nil {
		return
	}
	pm.framesDecodedTotal.WithLabelValues(protocol).Inc()
	if repeat {
		pm.frameRepeatsTotal.WithLabelValues(protocol).Inc()
	}
	pm.lastFrameTimestamp.WithLabelValues(protocol).Set(float64(time.Now().Unix()))
}

// RecordSamples records level samples fed into a decoder
func (pm *PrometheusMetrics) RecordSamples(n int) {
	if pm == nil {
		return
	}
	pm.samplesProcessedTotal.Add(float64(n))
}

// UpdateActiveChannels sets the active channel gauge
func (pm *PrometheusMetrics) UpdateActiveChannels(n int) {
	if pm == nil {
		return
	}
	pm.activeChannels.Set(float64(n))
}

// RecordChannelCreated records a new receive channel
func (pm *PrometheusMetrics) RecordChannelCreated() {
	if pm == nil {
		return
	}
	pm.channelsCreatedTotal.Inc()
}

// RecordChannelRemoved records a removed receive channel
func (pm *PrometheusMetrics) RecordChannelRemoved() {
	if pm == nil {
		return
	}
	pm.channelsRemovedTotal.Inc()
}

// RecordQueueDrop records a frame dropped from a full channel queue
func (pm *PrometheusMetrics) RecordQueueDrop(channel string) {
	if pm == nil {
		return
	}
	pm.frameQueueDropsTotal.WithLabelValues(channel).Inc()
}

// WebSocket connection tracking methods
func (pm *PrometheusMetrics) RecordWSConnection(wsType string) {
	if pm == nil {
		return
	}
	pm.wsConnectionsTotal.WithLabelValues(wsType).Inc()
	pm.wsActiveConnections.WithLabelValues(wsType).Inc()
}

func (pm *PrometheusMetrics) RecordWSDisconnect(wsType string) {
	if pm == nil {
		return
	}
	pm.wsDisconnectsTotal.WithLabelValues(wsType).Inc()
	pm.wsActiveConnections.WithLabelValues(wsType).Dec()
}

// RecordMQTTPublish records an MQTT publish attempt
func (pm *PrometheusMetrics) RecordMQTTPublish(err error) {
	if pm == nil {
		return
	}
	pm.mqttPublishesTotal.Inc()
	if err != nil {
		pm.mqttPublishFailuresTotal.Inc()
	}
}

// SetMQTTConnected updates the MQTT connection state gauge
func (pm *PrometheusMetrics) SetMQTTConnected(connected bool) {
	if pm == nil {
		return
	}
	if connected {
		pm.mqttConnected.Set(1)
	} else {
		pm.mqttConnected.Set(0)
	}
}

// RecordCaptureFile records a finished capture file
func (pm *PrometheusMetrics) RecordCaptureFile(bytes int64) {
	if pm == nil {
		return
	}
	pm.captureFilesTotal.Inc()
	pm.captureBytesTotal.Add(float64(bytes))
}

// updateResourceMetrics updates runtime resource metrics
func (pm *PrometheusMetrics) updateResourceMetrics() {
	if pm == nil {
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	pm.goroutineCount.Set(float64(runtime.NumGoroutine()))
	pm.memoryAllocBytes.Set(float64(m.Alloc))
	pm.memoryTotalBytes.Set(float64(m.TotalAlloc))
	pm.memoryHeapBytes.Set(float64(m.HeapAlloc))
	pm.memoryStackBytes.Set(float64(m.StackInuse))

	// Update GC pause time (convert nanoseconds to seconds)
	if len(m.PauseNs) > 0 {
		lastPause := m.PauseNs[(m.NumGC+255)%256]
		pm.gcPauseSeconds.Set(float64(lastPause) / 1e9)
	}

	pm.uptimeSeconds.Set(time.Since(StartTime).Seconds())
}

// StartResourceMetricsWorker starts a goroutine that periodically refreshes resource metrics
func (pm *PrometheusMetrics) StartResourceMetricsWorker(ctx context.Context) {
	if pm == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		pm.updateResourceMetrics()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pm.updateResourceMetrics()
			}
		}
	}()
}

// StartPushgatewayWorker starts a goroutine that periodically pushes metrics to Pushgateway
func (pm *PrometheusMetrics) StartPushgatewayWorker(ctx context.Context, config *Config) {
	if pm == nil || !config.Prometheus.Pushgateway.Enabled {
		return
	}

	pgConfig := config.Prometheus.Pushgateway

	// Silently skip if instance or token not configured
	if pgConfig.URL == "" || pgConfig.Instance == "" || pgConfig.Token == "" {
		if DebugMode {
			log.Println("DEBUG: Pushgateway not fully configured (url, instance or token missing), skipping push worker")
		}
		return
	}

	log.Printf("Starting Pushgateway worker: URL=%s, Instance=%s, Interval=%ds",
		pgConfig.URL, pgConfig.Instance, pgConfig.Interval)

	go func() {
		ticker := time.NewTicker(time.Duration(pgConfig.Interval) * time.Second)
		defer ticker.Stop()

		// Push immediately on start
		pm.pushgatewayPushesTotal.Inc()
		if err := pm.pushToGateway(config); err != nil {
			pm.pushgatewayFailuresTotal.Inc()
			log.Printf("ERROR: Failed to push metrics to Pushgateway: %v", err)
		} else {
			pm.pushgatewaySuccessTotal.Inc()
			pm.pushgatewayLastPushTime.Set(float64(time.Now().Unix()))
		}

		for {
			select {
			case <-ctx.Done():
				log.Println("Pushgateway worker stopped")
				return
			case <-ticker.C:
				pm.pushgatewayPushesTotal.Inc()

				if err := pm.pushToGateway(config); err != nil {
					pm.pushgatewayFailuresTotal.Inc()
					log.Printf("ERROR: Failed to push metrics to Pushgateway: %v", err)
				} else {
					pm.pushgatewaySuccessTotal.Inc()
					pm.pushgatewayLastPushTime.Set(float64(time.Now().Unix()))
					if DebugMode {
						log.Printf("DEBUG: Successfully pushed metrics to Pushgateway")
					}
				}
			}
		}
	}()
}

// pushToGateway pushes all registered metrics to the Pushgateway
func (pm *PrometheusMetrics) pushToGateway(config *Config) error {
	if pm == nil {
		return fmt.Errorf("prometheus metrics not initialized")
	}

	pgConfig := config.Prometheus.Pushgateway

	const jobName = "ir_uberdecode"

	pusher := push.New(pgConfig.URL, jobName).
		Gatherer(prometheus.DefaultGatherer).
		BasicAuth(pgConfig.Instance, pgConfig.Token)

	pusher = pusher.Grouping("instance", pgConfig.Instance)

	if err := pusher.Push(); err != nil {
		return fmt.Errorf("failed to push to gateway: %w", err)
	}

	return nil
}
