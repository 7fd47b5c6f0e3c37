package main

import (
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwsl/ir_uberdecode/irdecode"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Decoder    DecoderConfig    `yaml:"decoder"`
	Capture    CaptureConfig    `yaml:"capture"`
	Prometheus PrometheusConfig `yaml:"prometheus"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig contains web server settings
type ServerConfig struct {
	Listen             string   `yaml:"listen"`
	MaxChannels        int      `yaml:"max_channels"`         // Maximum concurrent receive channels (0 = default)
	ChannelIdleTimeout int      `yaml:"channel_idle_timeout"` // Seconds before an idle channel is removed (0 = never)
	EnableCORS         bool     `yaml:"enable_cors"`
	TrustedProxyIPs    []string `yaml:"trusted_proxy_ips"` // List of IPs/CIDRs to trust X-Forwarded-For from
	LogFileEnabled     bool     `yaml:"logfile_enabled"`   // Enable HTTP request logging (default: false)
	LogFile            string   `yaml:"logfile"`           // HTTP request log file path

	trustedProxyNets []*net.IPNet // Parsed CIDR networks (internal use)
}

// DecoderConfig contains IR decoder settings
type DecoderConfig struct {
	TickRate  int      `yaml:"tick_rate"` // Sample rate in Hz for incoming level streams
	Protocols []string `yaml:"protocols"` // Protocol names to enable (empty = all)
	QueueSize int      `yaml:"queue_size"` // Decoded frame queue depth per channel
}

// CaptureConfig contains sample capture settings
type CaptureConfig struct {
	Enabled  bool   `yaml:"enabled"`  // Enable/disable capture recording endpoints
	Dir      string `yaml:"dir"`      // Directory for capture files (default: "captures")
	Compress bool   `yaml:"compress"` // Gzip capture files (default: true when enabled)
}

// PrometheusConfig contains Prometheus metrics settings
type PrometheusConfig struct {
	Enabled      bool              `yaml:"enabled"`       // Enable/disable Prometheus metrics endpoint
	AllowedHosts []string          `yaml:"allowed_hosts"` // List of IPs/CIDRs allowed to access metrics
	Pushgateway  PushgatewayConfig `yaml:"pushgateway"`   // Pushgateway configuration

	allowedNets []*net.IPNet // Parsed CIDR networks (internal use)
}

// PushgatewayConfig contains Prometheus Pushgateway settings
type PushgatewayConfig struct {
	Enabled  bool   `yaml:"enabled"`  // Enable/disable pushing to Pushgateway
	URL      string `yaml:"url"`      // Pushgateway URL (e.g., http://pushgateway:9091)
	Instance string `yaml:"instance"` // Instance UUID for basic auth username
	Token    string `yaml:"token"`    // Token UUID for basic auth password
	Interval int    `yaml:"interval"` // Push interval in seconds (default: 30)
}

// MQTTConfig contains MQTT broker settings
type MQTTConfig struct {
	Enabled         bool          `yaml:"enabled"`          // Enable/disable MQTT publishing
	Broker          string        `yaml:"broker"`           // MQTT broker URL (e.g., tcp://mqtt.example.com:1883)
	Username        string        `yaml:"username"`         // MQTT authentication username
	Password        string        `yaml:"password"`         // MQTT authentication password
	TopicPrefix     string        `yaml:"topic_prefix"`     // Topic prefix for all messages
	PublishFrames   bool          `yaml:"publish_frames"`   // Publish decoded frames as they arrive
	PublishInterval int           `yaml:"publish_interval"` // Publishing interval for metrics in seconds
	QoS             byte          `yaml:"qos"`              // MQTT Quality of Service level (0, 1, or 2)
	Retain          bool          `yaml:"retain"`           // Retain flag for MQTT messages
	TLS             MQTTTLSConfig `yaml:"tls"`              // TLS/SSL settings
}

// MQTTTLSConfig contains MQTT TLS/SSL settings
type MQTTTLSConfig struct {
	Enabled    bool   `yaml:"enabled"`     // Enable/disable TLS
	CACert     string `yaml:"ca_cert"`     // Path to CA certificate file
	ClientCert string `yaml:"client_cert"` // Path to client certificate file (optional)
	ClientKey  string `yaml:"client_key"`  // Path to client key file (optional)
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Parse trusted proxy IPs/CIDRs
	if err := config.Server.parseTrustedProxyIPs(); err != nil {
		return nil, fmt.Errorf("failed to parse trusted_proxy_ips: %w", err)
	}

	// Parse Prometheus allowed hosts IPs/CIDRs
	if config.Prometheus.Enabled {
		if err := config.Prometheus.parseAllowedHosts(); err != nil {
			return nil, fmt.Errorf("failed to parse prometheus.allowed_hosts: %w", err)
		}
	}

	// Set defaults if not specified
	if config.Server.Listen == "" {
		config.Server.Listen = ":8090"
	}
	if config.Server.MaxChannels == 0 {
		config.Server.MaxChannels = 16
	}
	if config.Server.ChannelIdleTimeout == 0 {
		config.Server.ChannelIdleTimeout = 600 // Default 10 minutes
	}
	if config.Server.LogFile == "" {
		config.Server.LogFile = "web.log"
	}
	if config.Decoder.TickRate == 0 {
		config.Decoder.TickRate = 15000
	}
	if config.Decoder.QueueSize == 0 {
		config.Decoder.QueueSize = 256
	}
	if config.Capture.Dir == "" {
		config.Capture.Dir = "captures"
	}
	if config.MQTT.TopicPrefix == "" {
		config.MQTT.TopicPrefix = "irdecode"
	}
	if config.MQTT.PublishInterval == 0 {
		config.MQTT.PublishInterval = 60 // Default 60 seconds
	}
	if config.Prometheus.Pushgateway.Interval == 0 {
		config.Prometheus.Pushgateway.Interval = 30 // Default 30 seconds
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "text"
	}

	return &config, nil
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if c.Server.MaxChannels < 1 {
		return fmt.Errorf("server.max_channels must be at least 1")
	}
	if c.Decoder.TickRate < 5000 || c.Decoder.TickRate > 100000 {
		return fmt.Errorf("decoder.tick_rate must be between 5000 and 100000")
	}
	for _, name := range c.Decoder.Protocols {
		if irdecode.ProtocolByName(name) == irdecode.ProtoUnknown {
			return fmt.Errorf("decoder.protocols: unknown protocol %q", name)
		}
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
		}
		if c.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt.qos must be 0, 1 or 2")
		}
	}
	return nil
}

// EnabledProtocols resolves the configured protocol names into a protocol set.
// An empty list means every protocol the decoder knows about.
func (dc *DecoderConfig) EnabledProtocols() []irdecode.Protocol {
	if len(dc.Protocols) == 0 {
		return nil
	}
	protos := make([]irdecode.Protocol, 0, len(dc.Protocols))
	for _, name := range dc.Protocols {
		protos = append(protos, irdecode.ProtocolByName(name))
	}
	return protos
}

// parseTrustedProxyIPs parses the trusted_proxy_ips list into CIDR networks
func (sc *ServerConfig) parseTrustedProxyIPs() error {
	sc.trustedProxyNets = make([]*net.IPNet, 0, len(sc.TrustedProxyIPs))

	for _, ipStr := range sc.TrustedProxyIPs {
		// Check if it's a CIDR notation
		if _, ipNet, err := net.ParseCIDR(ipStr); err == nil {
			sc.trustedProxyNets = append(sc.trustedProxyNets, ipNet)
		} else {
			// Try parsing as a single IP address
			ip := net.ParseIP(ipStr)
			if ip == nil {
				return fmt.Errorf("invalid IP or CIDR: %s", ipStr)
			}
			// Convert single IP to CIDR (/32 for IPv4, /128 for IPv6)
			var ipNet *net.IPNet
			if ip.To4() != nil {
				_, ipNet, _ = net.ParseCIDR(ipStr + "/32")
			} else {
				_, ipNet, _ = net.ParseCIDR(ipStr + "/128")
			}
			sc.trustedProxyNets = append(sc.trustedProxyNets, ipNet)
		}
	}

	return nil
}

// IsTrustedProxy checks if an IP address is in the trusted proxy list
func (sc *ServerConfig) IsTrustedProxy(ipStr string) bool {
	if len(sc.trustedProxyNets) == 0 {
		return false
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}

	for _, ipNet := range sc.trustedProxyNets {
		if ipNet.Contains(ip) {
			return true
		}
	}

	return false
}

// parseAllowedHosts parses the allowed_hosts list into CIDR networks
func (pc *PrometheusConfig) parseAllowedHosts() error {
	pc.allowedNets = make([]*net.IPNet, 0, len(pc.AllowedHosts))

	for _, ipStr := range pc.AllowedHosts {
		// Check if it's a CIDR notation
		if _, ipNet, err := net.ParseCIDR(ipStr); err == nil {
			pc.allowedNets = append(pc.allowedNets, ipNet)
		} else {
			// Try parsing as a single IP address
			ip := net.ParseIP(ipStr)
			if ip == nil {
				return fmt.Errorf("invalid IP or CIDR: %s", ipStr)
			}
			// Convert single IP to CIDR (/32 for IPv4, /128 for IPv6)
			var ipNet *net.IPNet
			if ip.To4() != nil {
				_, ipNet, _ = net.ParseCIDR(ipStr + "/32")
			} else {
				_, ipNet, _ = net.ParseCIDR(ipStr + "/128")
			}
			pc.allowedNets = append(pc.allowedNets, ipNet)
		}
	}

	return nil
}

// IsIPAllowed checks if an IP address is in the allowed hosts list
func (pc *PrometheusConfig) IsIPAllowed(ipStr string) bool {
	if len(pc.allowedNets) == 0 {
		return false
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}

	for _, ipNet := range pc.allowedNets {
		if ipNet.Contains(ip) {
			return true
		}
	}

	return false
}
