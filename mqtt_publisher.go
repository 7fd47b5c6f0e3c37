package main

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// MQTTPublisher manages MQTT publishing of decoded frames and metrics
type MQTTPublisher struct {
	client  mqtt.Client
	config  *MQTTConfig
	metrics *PrometheusMetrics
}

// MetricPayload represents a metric message for MQTT
type MetricPayload struct {
	Timestamp int64              `json:"timestamp"`
	Metrics   map[string]float64 `json:"metrics"`
	Labels    map[string]string  `json:"labels,omitempty"`
}

// generateClientID creates a random client ID for MQTT connection
func generateClientID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "irdecode_" + hex.EncodeToString(bytes)
}

// loadTLSConfig loads TLS configuration from files
func loadTLSConfig(tlsConfig MQTTTLSConfig) (*tls.Config, error) {
	if !tlsConfig.Enabled {
		return nil, nil
	}

	config := &tls.Config{}

	// Load CA certificate if provided
	if tlsConfig.CACert != "" {
		caCert, err := os.ReadFile(tlsConfig.CACert)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate")
		}
		config.RootCAs = caCertPool
	}

	// Load client certificate and key if provided
	if tlsConfig.ClientCert != "" && tlsConfig.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(tlsConfig.ClientCert, tlsConfig.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		config.Certificates = []tls.Certificate{cert}
	}

	return config, nil
}

// NewMQTTPublisher creates a new MQTT publisher
func NewMQTTPublisher(config *MQTTConfig, metrics *PrometheusMetrics) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(generateClientID())

	if config.Username != "" {
		opts.SetUsername(config.Username)
	}
	if config.Password != "" {
		opts.SetPassword(config.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	// TLS configuration if enabled
	if config.TLS.Enabled {
		tlsConfig, err := loadTLSConfig(config.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS config: %w", err)
		}
		opts.SetTLSConfig(tlsConfig)
	}

	// Set connection handlers
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Println("MQTT: Connected to broker")
		metrics.SetMQTTConnected(true)
	})
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Printf("MQTT: Connection lost: %v", err)
		metrics.SetMQTTConnected(false)
	})
	opts.SetReconnectingHandler(func(client mqtt.Client, opts *mqtt.ClientOptions) {
		log.Println("MQTT: Attempting to reconnect...")
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	log.Printf("MQTT: Successfully connected to broker: %s", config.Broker)

	return &MQTTPublisher{
		client:  client,
		config:  config,
		metrics: metrics,
	}, nil
}

// StartPublisher starts the background metrics publishing goroutine
func (mp *MQTTPublisher) StartPublisher(ctx context.Context) {
	go mp.startMetricsPublisher(ctx)
}

// startMetricsPublisher publishes aggregate metrics at the configured interval
func (mp *MQTTPublisher) startMetricsPublisher(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(mp.config.PublishInterval) * time.Second)
	defer ticker.Stop()

	log.Printf("MQTT: Metrics publisher started with %d second interval", mp.config.PublishInterval)

	// Publish immediately on start
	mp.publishAllMetrics()

	for {
		select {
		case <-ctx.Done():
			log.Println("MQTT: Metrics publisher stopped")
			return
		case <-ticker.C:
			mp.publishAllMetrics()
		}
	}
}

// PublishFrame publishes a decoded frame to <prefix>/frames/<channel>
func (mp *MQTTPublisher) PublishFrame(ev FrameEvent) {
	if !mp.config.PublishFrames {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("MQTT ERROR: Failed to marshal frame event: %v", err)
		return
	}

	topic := fmt.Sprintf("%s/frames/%s", mp.config.TopicPrefix, ev.ChannelName)
	token := mp.client.Publish(topic, mp.config.QoS, mp.config.Retain, data)
	if token.Wait() && token.Error() != nil {
		mp.metrics.RecordMQTTPublish(token.Error())
		log.Printf("MQTT ERROR: Failed to publish frame to topic %s: %v", topic, token.Error())
		return
	}
	mp.metrics.RecordMQTTPublish(nil)
}

// publishAllMetrics gathers the Prometheus registry and publishes it by category
func (mp *MQTTPublisher) publishAllMetrics() {
	timestamp := time.Now().Unix()

	// Gather all metrics from Prometheus registry
	metricFamilies, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		log.Printf("MQTT ERROR: Failed to gather Prometheus metrics: %v", err)
		return
	}

	// Group metrics by category based on metric name prefix
	frameMetrics := make(map[string]map[string]interface{}) // protocol -> metrics
	channelMetrics := make(map[string]interface{})
	websocketMetrics := make(map[string]interface{})
	resourceMetrics := make(map[string]interface{})
	systemMetrics := make(map[string]interface{})

	for _, mf := range metricFamilies {
		metricName := mf.GetName()

		for _, m := range mf.GetMetric() {
			value := extractMetricValue(m)
			if value == nil {
				continue
			}

			// Extract labels
			labels := make(map[string]string)
			for _, label := range m.GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}

			switch {
			case strings.HasPrefix(metricName, "irdecode_frames_") || metricName == "irdecode_frame_repeats_total" || metricName == "irdecode_last_frame_timestamp":
				// Frame metrics - group by protocol
				if proto, ok := labels["protocol"]; ok {
					if frameMetrics[proto] == nil {
						frameMetrics[proto] = make(map[string]interface{})
					}
					frameMetrics[proto][metricName] = value
				}

			case strings.HasPrefix(metricName, "irdecode_channels_") ||
				metricName == "irdecode_active_channels" ||
				metricName == "irdecode_samples_processed_total" ||
				strings.HasPrefix(metricName, "irdecode_frame_queue_"):
				channelMetrics[compositeKey(metricName, labels)] = value

			case strings.HasPrefix(metricName, "irdecode_ws_"):
				websocketMetrics[compositeKey(metricName, labels)] = value

			case strings.HasPrefix(metricName, "irdecode_"):
				systemMetrics[compositeKey(metricName, labels)] = value

			default:
				// Go runtime and process collectors
				resourceMetrics[compositeKey(metricName, labels)] = value
			}
		}
	}

	mp.publishMetricCategory("frames", frameMetrics, timestamp)
	mp.publishMetricCategory("channels", map[string]map[string]interface{}{"metrics": channelMetrics}, timestamp)
	mp.publishMetricCategory("websocket", map[string]map[string]interface{}{"metrics": websocketMetrics}, timestamp)
	mp.publishMetricCategory("system", map[string]map[string]interface{}{"metrics": systemMetrics}, timestamp)
	mp.publishMetricCategory("resources", map[string]map[string]interface{}{"metrics": resourceMetrics}, timestamp)
}

// compositeKey folds labels into the metric name for flat JSON payloads
func compositeKey(metricName string, labels map[string]string) string {
	if len(labels) == 0 {
		return metricName
	}
	key := metricName
	for k, v := range labels {
		key += "_" + k + "_" + v
	}
	return key
}

// extractMetricValue extracts the numeric value from a Prometheus metric
func extractMetricValue(m *dto.Metric) interface{} {
	if m.GetGauge() != nil {
		return m.GetGauge().GetValue()
	}
	if m.GetCounter() != nil {
		return m.GetCounter().GetValue()
	}
	if m.GetHistogram() != nil {
		return m.GetHistogram().GetSampleSum()
	}
	if m.GetSummary() != nil {
		return m.GetSummary().GetSampleSum()
	}
	return nil
}

// publishMetricCategory publishes a category of metrics
func (mp *MQTTPublisher) publishMetricCategory(category string, data map[string]map[string]interface{}, timestamp int64) {
	for subKey, metrics := range data {
		if len(metrics) == 0 {
			continue
		}

		// Convert interface{} map to float64 map for JSON serialization
		floatMetrics := make(map[string]float64)
		for k, v := range metrics {
			switch val := v.(type) {
			case float64:
				floatMetrics[k] = val
			case float32:
				floatMetrics[k] = float64(val)
			case int:
				floatMetrics[k] = float64(val)
			case int64:
				floatMetrics[k] = float64(val)
			}
		}

		if len(floatMetrics) == 0 {
			continue
		}

		payload := MetricPayload{
			Timestamp: timestamp,
			Metrics:   floatMetrics,
		}

		// Build topic based on category and subkey
		var topic string
		if subKey == "metrics" {
			topic = fmt.Sprintf("%s/%s", mp.config.TopicPrefix, category)
		} else {
			topic = fmt.Sprintf("%s/%s/%s", mp.config.TopicPrefix, category, subKey)
		}

		mp.publish(topic, payload)
	}
}

// publish sends a payload to an MQTT topic
func (mp *MQTTPublisher) publish(topic string, payload MetricPayload) {
	// Skip if no metrics to publish
	if len(payload.Metrics) == 0 {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("MQTT ERROR: Failed to marshal payload for topic %s: %v", topic, err)
		return
	}

	token := mp.client.Publish(topic, mp.config.QoS, mp.config.Retain, data)
	if token.Wait() && token.Error() != nil {
		mp.metrics.RecordMQTTPublish(token.Error())
		log.Printf("MQTT ERROR: Failed to publish to topic %s: %v", topic, token.Error())
		return
	}
	mp.metrics.RecordMQTTPublish(nil)
}

// Disconnect cleanly disconnects from the MQTT broker
func (mp *MQTTPublisher) Disconnect() {
	if mp.client != nil && mp.client.IsConnected() {
		log.Println("MQTT: Disconnecting from broker")
		mp.client.Disconnect(250)
	}
}
