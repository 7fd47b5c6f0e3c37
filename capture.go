package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"

	"gonum.org/v1/gonum/stat"
)

// CaptureManager records raw level streams to disk as pulse/space timing
// files and replays them back through a channel's decoder. Files use the
// mode2 text format: one "pulse N" or "space N" line per run, N in
// microseconds.
type CaptureManager struct {
	config   *CaptureConfig
	tickRate int
	metrics  *PrometheusMetrics

	recorders map[string]*captureRecorder // channel ID -> active recorder
	mu        sync.Mutex
}

type captureRecorder struct {
	file    *os.File
	gz      *gzip.Writer
	w       *bufio.Writer
	path    string
	level   bool // current run level
	runLen  int  // current run length in ticks
	started bool // true once the first light sample arrived
}

// NewCaptureManager creates the capture manager and hooks it into the
// channel manager's ingest path
func NewCaptureManager(config *CaptureConfig, tickRate int, metrics *PrometheusMetrics, channels *ChannelManager) (*CaptureManager, error) {
	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create capture directory: %w", err)
	}

	cm := &CaptureManager{
		config:    config,
		tickRate:  tickRate,
		metrics:   metrics,
		recorders: make(map[string]*captureRecorder),
	}

	channels.OnSamples(func(ch *ReceiveChannel, samples []bool) {
		cm.record(ch.ID, samples)
	})

	return cm, nil
}

// Start begins recording a channel's sample stream to a new capture file
func (cm *CaptureManager) Start(ch *ReceiveChannel) (string, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, active := cm.recorders[ch.ID]; active {
		return "", fmt.Errorf("capture already running for channel %q", ch.Name)
	}

	name := fmt.Sprintf("%s-%s.mode2", ch.Name, time.Now().Format("20060102-150405"))
	if cm.config.Compress {
		name += ".gz"
	}
	path := filepath.Join(cm.config.Dir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create capture file: %w", err)
	}

	rec := &captureRecorder{file: file, path: path}
	if cm.config.Compress {
		rec.gz = gzip.NewWriter(file)
		rec.w = bufio.NewWriter(rec.gz)
	} else {
		rec.w = bufio.NewWriter(file)
	}

	cm.recorders[ch.ID] = rec
	log.Printf("Capture started for channel %s: %s", ch.Name, path)

	return name, nil
}

// Stop finishes an active recording and reports the file size
func (cm *CaptureManager) Stop(ch *ReceiveChannel) (string, int64, error) {
	cm.mu.Lock()
	rec, active := cm.recorders[ch.ID]
	delete(cm.recorders, ch.ID)
	cm.mu.Unlock()

	if !active {
		return "", 0, fmt.Errorf("no capture running for channel %q", ch.Name)
	}

	// Flush the final run
	if rec.started && rec.runLen > 0 {
		rec.writeRun(cm.tickRate)
	}

	if err := rec.w.Flush(); err != nil {
		rec.file.Close()
		return "", 0, fmt.Errorf("failed to flush capture: %w", err)
	}
	if rec.gz != nil {
		if err := rec.gz.Close(); err != nil {
			rec.file.Close()
			return "", 0, fmt.Errorf("failed to close gzip stream: %w", err)
		}
	}

	info, statErr := rec.file.Stat()
	if err := rec.file.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to close capture file: %w", err)
	}

	var size int64
	if statErr == nil {
		size = info.Size()
	}

	cm.metrics.RecordCaptureFile(size)
	log.Printf("Capture finished for channel %s: %s (%d bytes)", ch.Name, rec.path, size)

	return filepath.Base(rec.path), size, nil
}

// record appends a sample batch to the channel's active recorder, if any
func (cm *CaptureManager) record(channelID string, samples []bool) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	rec, active := cm.recorders[channelID]
	if !active {
		return
	}

	for _, s := range samples {
		if !rec.started {
			if !s {
				continue // skip leading silence
			}
			rec.started = true
			rec.level = true
			rec.runLen = 1
			continue
		}
		if s == rec.level {
			rec.runLen++
			continue
		}
		rec.writeRun(cm.tickRate)
		rec.level = s
		rec.runLen = 1
	}
}

func (rec *captureRecorder) writeRun(tickRate int) {
	us := int(float64(rec.runLen)*1e6/float64(tickRate) + 0.5)
	kind := "space"
	if rec.level {
		kind = "pulse"
	}
	fmt.Fprintf(rec.w, "%s %d\n", kind, us)
}

// List returns the capture files currently on disk
func (cm *CaptureManager) List() ([]string, error) {
	entries, err := os.ReadDir(cm.config.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Open opens a capture file for reading, transparently decompressing
func (cm *CaptureManager) Open(name string) (io.ReadCloser, error) {
	// Reject path traversal
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid capture file name")
	}

	file, err := os.Open(filepath.Join(cm.config.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}

	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return &gzipReadCloser{gz: gz, file: file}, nil
	}

	return file, nil
}

type gzipReadCloser struct {
	gz   *gzip.Reader
	file *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipReadCloser) Close() error {
	gzErr := g.gz.Close()
	fileErr := g.file.Close()
	if gzErr != nil {
		return gzErr
	}
	return fileErr
}

// ParseTimings reads pulse/space lines into alternating durations in
// microseconds, always starting with a pulse
func ParseTimings(r io.Reader) ([]timingRun, error) {
	var runs []timingRun

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected 'pulse N' or 'space N'", lineNo)
		}

		var light bool
		switch fields[0] {
		case "pulse":
			light = true
		case "space":
			light = false
		default:
			return nil, fmt.Errorf("line %d: unknown run type %q", lineNo, fields[0])
		}

		us, err := strconv.Atoi(fields[1])
		if err != nil || us < 0 {
			return nil, fmt.Errorf("line %d: invalid duration %q", lineNo, fields[1])
		}

		if len(runs) == 0 && !light {
			continue // skip leading silence
		}
		runs = append(runs, timingRun{light: light, us: us})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read timings: %w", err)
	}

	return runs, nil
}

type timingRun struct {
	light bool
	us    int
}

// TimingsToSamples renders timing runs into a level stream at the given
// tick rate, with trailing silence long enough to flush any decoder
func TimingsToSamples(runs []timingRun, tickRate int) []bool {
	var samples []bool
	for _, run := range runs {
		n := int(float64(run.us)*float64(tickRate)/1e6 + 0.5)
		for i := 0; i < n; i++ {
			samples = append(samples, run.light)
		}
	}

	// Trailing silence: 20ms covers every protocol timeout
	tail := tickRate / 50
	for i := 0; i < tail; i++ {
		samples = append(samples, false)
	}
	return samples
}

// TimingStats summarizes pulse and space durations of a capture
type TimingStats struct {
	Count  int     `json:"count"`
	MeanUS float64 `json:"mean_us"`
	StdUS  float64 `json:"std_us"`
	MinUS  int     `json:"min_us"`
	MaxUS  int     `json:"max_us"`
}

// AnalyzeTimings computes pulse and space statistics for a capture.
// Useful for judging transmitter jitter before picking tolerances.
func AnalyzeTimings(runs []timingRun) (pulses, spaces TimingStats) {
	var pulseUS, spaceUS []float64
	for _, run := range runs {
		if run.light {
			pulseUS = append(pulseUS, float64(run.us))
		} else {
			spaceUS = append(spaceUS, float64(run.us))
		}
	}
	return summarize(pulseUS), summarize(spaceUS)
}

func summarize(xs []float64) TimingStats {
	if len(xs) == 0 {
		return TimingStats{}
	}

	s := TimingStats{
		Count:  len(xs),
		MeanUS: stat.Mean(xs, nil),
		MinUS:  math.MaxInt,
	}
	if len(xs) > 1 {
		s.StdUS = stat.StdDev(xs, nil)
	}
	for _, x := range xs {
		if int(x) < s.MinUS {
			s.MinUS = int(x)
		}
		if int(x) > s.MaxUS {
			s.MaxUS = int(x)
		}
	}
	return s
}
