package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cwsl/ir_uberdecode/irdecode"
)

// Version of the decoder server
const Version = "1.2.0"

// Global debug flag
var DebugMode bool

// Global start time for process uptime tracking
var StartTime time.Time

// Global config for proxy trust checking
var globalConfig *Config

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// httpLogger creates a logging middleware that logs requests in Apache combined log format
func httpLogger(logFile *os.File, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// WebSocket upgrades hijack the connection, log them up front
		if r.Header.Get("Upgrade") == "websocket" {
			logLine := fmt.Sprintf("%s - - [%s] \"%s %s %s\" 101 - \"-\" \"%s\" 0.000ms\n",
				getClientIP(r),
				start.Format("02/Jan/2006:15:04:05 -0700"),
				r.Method,
				r.RequestURI,
				r.Proto,
				r.Header.Get("User-Agent"),
			)
			if _, err := logFile.WriteString(logLine); err != nil {
				log.Printf("Error writing to access log: %v", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     200,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		userAgent := r.Header.Get("User-Agent")
		if userAgent == "" {
			userAgent = "-"
		}

		logLine := fmt.Sprintf("%s - - [%s] \"%s %s %s\" %d %d \"-\" \"%s\" %.3fms\n",
			getClientIP(r),
			start.Format("02/Jan/2006:15:04:05 -0700"),
			r.Method,
			r.RequestURI,
			r.Proto,
			wrapped.statusCode,
			wrapped.written,
			userAgent,
			float64(duration.Microseconds())/1000.0,
		)
		if _, err := logFile.WriteString(logLine); err != nil {
			log.Printf("Error writing to access log: %v", err)
		}
	})
}

// corsMiddleware adds CORS headers when enabled in configuration
func corsMiddleware(config *Config, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if config.Server.EnableCORS {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Encoding")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// getClientIP extracts the client IP from the request, handling proxies
func getClientIP(r *http.Request) string {
	sourceIP := r.RemoteAddr
	if host, _, err := net.SplitHostPort(sourceIP); err == nil {
		sourceIP = host
	}

	clientIP := sourceIP

	// Only trust X-Forwarded-For from configured proxies, otherwise
	// clients could spoof their IP
	if globalConfig != nil && globalConfig.Server.IsTrustedProxy(sourceIP) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// X-Forwarded-For can contain multiple IPs: "client, proxy1, proxy2"
			clientIP = strings.TrimSpace(xff)
			if commaIdx := strings.Index(clientIP, ","); commaIdx != -1 {
				clientIP = strings.TrimSpace(clientIP[:commaIdx])
			}
			if host, _, err := net.SplitHostPort(clientIP); err == nil {
				clientIP = host
			}
		}
	}

	return clientIP
}

// handlePrometheusMetrics serves Prometheus metrics with IP-based access control
func handlePrometheusMetrics(w http.ResponseWriter, r *http.Request, config *Config) {
	clientIP := getClientIP(r)

	if !config.Prometheus.IsIPAllowed(clientIP) {
		w.WriteHeader(http.StatusForbidden)
		if _, err := w.Write([]byte("403 Forbidden: Access denied\n")); err != nil {
			log.Printf("Error writing forbidden response: %v", err)
		}
		log.Printf("Prometheus metrics access denied for IP: %s", clientIP)
		return
	}

	promhttp.Handler().ServeHTTP(w, r)
}

func main() {
	// Record start time for uptime tracking
	StartTime = time.Now()

	// Parse command line flags
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Set global debug mode - check environment variable first, then CLI flag
	DebugMode = *debug
	if debugEnv := os.Getenv("DEBUG"); debugEnv != "" {
		// Environment variable takes precedence
		DebugMode = debugEnv == "true" || debugEnv == "1" || debugEnv == "yes"
	}
	if DebugMode {
		log.Println("Debug mode enabled")
	}

	// Load configuration
	config, err := LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set global config for proxy trust checking
	globalConfig = config

	// Build the protocol table shared by all channel decoders
	table, err := irdecode.NewTable(config.Decoder.TickRate, config.Decoder.EnabledProtocols())
	if err != nil {
		log.Fatalf("Failed to build protocol table: %v", err)
	}
	if skipped := table.SkippedProtocols(); len(skipped) > 0 {
		names := make([]string, len(skipped))
		for i, p := range skipped {
			names[i] = p.String()
		}
		log.Printf("Decoder: skipping protocols not representable at %d Hz: %s",
			table.TickRate(), strings.Join(names, ", "))
	}
	log.Printf("Decoder ready: %d protocols at %d Hz tick rate",
		len(table.EnabledProtocols()), table.TickRate())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Prometheus metrics
	var metrics *PrometheusMetrics
	if config.Prometheus.Enabled {
		metrics = NewPrometheusMetrics()
		metrics.StartResourceMetricsWorker(ctx)
		metrics.StartPushgatewayWorker(ctx, config)
		log.Println("Prometheus metrics enabled")
	}

	// Channel manager and WebSocket hub
	channels := NewChannelManager(ctx, table, config, metrics)
	wsHandler := NewFrameWebSocketHandler(channels, metrics)

	// Capture recording if enabled
	var captures *CaptureManager
	if config.Capture.Enabled {
		captures, err = NewCaptureManager(&config.Capture, config.Decoder.TickRate, metrics, channels)
		if err != nil {
			log.Fatalf("Failed to initialize capture manager: %v", err)
		}
		log.Printf("Capture recording enabled, directory: %s", config.Capture.Dir)
	}

	// MQTT publisher if enabled
	var mqttPublisher *MQTTPublisher
	if config.MQTT.Enabled {
		mqttPublisher, err = NewMQTTPublisher(&config.MQTT, metrics)
		if err != nil {
			log.Printf("Warning: Failed to initialize MQTT publisher: %v", err)
		} else {
			mqttPublisher.StartPublisher(ctx)
			channels.OnFrame(func(ev FrameEvent) {
				mqttPublisher.PublishFrame(ev)
			})
		}
	}

	// API routes
	http.HandleFunc("/api/channels", func(w http.ResponseWriter, r *http.Request) {
		handleChannels(w, r, channels)
	})
	http.HandleFunc("/api/channel", func(w http.ResponseWriter, r *http.Request) {
		handleChannel(w, r, channels)
	})
	http.HandleFunc("/api/channel/samples", func(w http.ResponseWriter, r *http.Request) {
		handleChannelSamples(w, r, channels)
	})
	http.HandleFunc("/api/channel/frames", func(w http.ResponseWriter, r *http.Request) {
		handleChannelFrames(w, r, channels)
	})
	http.HandleFunc("/api/protocols", func(w http.ResponseWriter, r *http.Request) {
		handleProtocols(w, r, channels)
	})
	http.HandleFunc("/api/encode", func(w http.ResponseWriter, r *http.Request) {
		handleEncode(w, r, channels)
	})
	http.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		handleStatus(w, r, channels)
	})

	// WebSocket routes
	http.HandleFunc("/ws/frames", wsHandler.HandleFramesWebSocket)
	http.HandleFunc("/ws/samples", wsHandler.HandleSamplesWebSocket)

	// Capture routes if enabled
	if captures != nil {
		http.HandleFunc("/api/capture/start", func(w http.ResponseWriter, r *http.Request) {
			handleCaptureStart(w, r, channels, captures)
		})
		http.HandleFunc("/api/capture/stop", func(w http.ResponseWriter, r *http.Request) {
			handleCaptureStop(w, r, channels, captures)
		})
		http.HandleFunc("/api/capture/list", func(w http.ResponseWriter, r *http.Request) {
			handleCaptureList(w, r, captures)
		})
		http.HandleFunc("/api/capture/replay", func(w http.ResponseWriter, r *http.Request) {
			handleCaptureReplay(w, r, channels, captures)
		})
		http.HandleFunc("/api/capture/analyze", handleCaptureAnalyze)
	}

	// Prometheus metrics endpoint with IP allowlist
	if config.Prometheus.Enabled {
		http.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
			handlePrometheusMetrics(w, r, config)
		})
	}

	// Wrap the default ServeMux with CORS middleware (if enabled), then logging middleware
	var handler http.Handler = http.DefaultServeMux
	handler = corsMiddleware(config, handler)

	if config.Server.LogFileEnabled {
		logFile, err := os.OpenFile(config.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("Failed to open log file %s: %v", config.Server.LogFile, err)
		}
		defer logFile.Close()
		log.Printf("HTTP request logging to: %s", config.Server.LogFile)
		handler = httpLogger(logFile, handler)
	}

	server := &http.Server{
		Addr:    config.Server.Listen,
		Handler: handler,
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")

		cancel()

		if mqttPublisher != nil {
			mqttPublisher.Disconnect()
		}

		if err := server.Close(); err != nil {
			log.Printf("Error closing server: %v", err)
		}
	}()

	log.Printf("Server listening on %s", config.Server.Listen)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped")
}
