package irdecode

import (
	"errors"
	"fmt"
	"sort"
)

// window is an inclusive acceptance band in ticks.
type window struct {
	min int
	max int
}

func (w window) contains(n int) bool { return n >= w.min && n <= w.max }

func (w window) valid() bool { return w.min >= 1 && w.max >= w.min }

// ConfigError reports a protocol whose timing cannot be represented at the
// requested tick rate. It is only ever returned at table construction time;
// the per-tick path never fails.
type ConfigError struct {
	Proto  Protocol
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("irdecode: %s unsupported at this tick rate: %s", e.Proto, e.Reason)
}

// descriptor is the tick-domain form of one protocol's timingSpec, built
// once per Table and immutable afterwards.
type descriptor struct {
	spec  *timingSpec
	proto Protocol

	startPulse window
	startPause window
	bit1Pulse  window
	bit1Pause  window
	bit0Pulse  window
	bit0Pause  window
	ditto      window // explicit repeat frame start pause, zero window if none

	// Manchester: one and two unit lengths. The double window is the
	// single window with both bounds doubled. unit3 covers the run the
	// half-clock bit forms with an adjacent same-level half and is only
	// set for protocols that have such a bit.
	unit1 window
	unit2 window
	unit3 window

	// Serial: nominal unit and start pause in (fractional) ticks, used
	// for repeated integer extraction of bit units.
	unitTicks       float64
	startPauseTicks float64

	quadPause [4]window // RCMM two-bit pause windows

	timeout int // darkness ceiling in ticks
	maxBits int // largest acceptable frame length across length siblings

	frameGap int // ticks within which guaranteed duplicates arrive
}

// stopWindow returns the acceptance window for the trailing stop pulse.
// The stop pulse is a constant-width burst verified against the zero-bit
// pulse window.
func (d *descriptor) stopWindow() window {
	if d.spec.enc == encQuadPause {
		return d.bit1Pulse
	}
	return d.bit0Pulse
}

// Table is the immutable bank of per-protocol descriptors for one tick
// rate. A Table may be shared by any number of Decoder instances; it is
// never mutated after New.
type Table struct {
	tickRate  int
	usPerTick float64

	// descs holds the enabled descriptors in priority order.
	descs   []*descriptor
	byProto [protocolCount]*descriptor

	// startCeiling is the largest start pause any enabled protocol can
	// legitimately produce; a longer initial darkness abandons the burst.
	startCeiling int

	skipped []Protocol

	keyHeldTicks int
}

// NewTable builds the descriptor bank for the given tick rate. enabled
// selects the active protocol set; nil enables every protocol the rate
// can represent, skipping the rest (see SkippedProtocols). A protocol
// that was requested by name and collapses at the rate yields a
// ConfigError instead. Tick rates between 10000 and 20000 Hz are
// typical.
func NewTable(tickRate int, enabled []Protocol) (*Table, error) {
	if tickRate < 5000 || tickRate > 100000 {
		return nil, fmt.Errorf("irdecode: tick rate %d out of range", tickRate)
	}

	implicit := enabled == nil
	want := make(map[Protocol]bool, len(enabled))
	if implicit {
		for _, p := range AllProtocols() {
			want[p] = true
		}
	} else {
		for _, p := range enabled {
			if p == ProtoUnknown || p >= protocolCount {
				return nil, fmt.Errorf("irdecode: unknown protocol id %d", p)
			}
			want[p] = true
		}
	}

	t := &Table{
		tickRate:     tickRate,
		usPerTick:    1e6 / float64(tickRate),
		keyHeldTicks: msToTicks(keyHeldGapMS, tickRate),
	}

	for i := range timingSpecs {
		spec := &timingSpecs[i]
		if !want[spec.proto] {
			continue
		}
		d, err := buildDescriptor(spec, tickRate)
		if err != nil {
			var cfg *ConfigError
			if implicit && errors.As(err, &cfg) {
				t.skipped = append(t.skipped, spec.proto)
				continue
			}
			return nil, err
		}
		t.descs = append(t.descs, d)
		t.byProto[spec.proto] = d

		ceiling := d.startPause.max
		if d.ditto.max > ceiling {
			ceiling = d.ditto.max
		}
		if spec.noStartBit {
			// Bare-open frames spend their first data pause in the
			// start phase, so the ceiling must admit it.
			if m := maxDataPause(d); m > ceiling {
				ceiling = m
			}
		}
		if ceiling > t.startCeiling {
			t.startCeiling = ceiling
		}
	}
	if len(t.descs) == 0 {
		return nil, fmt.Errorf("irdecode: empty protocol set")
	}
	sort.SliceStable(t.descs, func(i, j int) bool {
		return t.descs[i].proto < t.descs[j].proto
	})
	return t, nil
}

// TickRate returns the tick rate the table was built for.
func (t *Table) TickRate() int { return t.tickRate }

// Enabled reports whether the protocol is part of the table.
func (t *Table) Enabled(p Protocol) bool {
	return p < protocolCount && t.byProto[p] != nil
}

// SkippedProtocols returns the protocols left out of an implicit
// all-protocols table because the tick rate cannot represent them. It is
// empty for tables built from an explicit set.
func (t *Table) SkippedProtocols() []Protocol {
	return append([]Protocol(nil), t.skipped...)
}

// EnabledProtocols returns the active protocol set in priority order.
func (t *Table) EnabledProtocols() []Protocol {
	out := make([]Protocol, len(t.descs))
	for i, d := range t.descs {
		out[i] = d.proto
	}
	return out
}

func msToTicks(ms float64, tickRate int) int {
	return int(ms*float64(tickRate)/1000 + 0.5)
}

// tickWindow converts a nominal microsecond timing and an asymmetric
// tolerance band into an inclusive tick window. One tick of slack is added
// on both sides to absorb sampling quantization.
func tickWindow(us, tolMinus, tolPlus float64, tickRate int) window {
	n := us * float64(tickRate) / 1e6
	lo := int(n*(1-tolMinus/100)+0.5) - 1
	if lo < 1 {
		lo = 1
	}
	hi := int(n*(1+tolPlus/100)+0.5) + 1
	return window{lo, hi}
}

// exactWindow is tickWindow without the quantization slack, for protocols
// whose adjacent nominal values sit too close for slack (RCMM pause
// quads).
func exactWindow(us, tolMinus, tolPlus float64, tickRate int) window {
	n := us * float64(tickRate) / 1e6
	lo := int(n*(1-tolMinus/100) + 0.5)
	if lo < 1 {
		lo = 1
	}
	hi := int(n*(1+tolPlus/100) + 0.5)
	return window{lo, hi}
}

func buildDescriptor(spec *timingSpec, tickRate int) (*descriptor, error) {
	tm, tp := spec.tolMinus, spec.tolPlus
	if tm == 0 {
		tm = 20
	}
	if tp == 0 {
		tp = 20
	}

	d := &descriptor{
		spec:    spec,
		proto:   spec.proto,
		maxBits: spec.frameBits,
	}
	for _, alt := range spec.lengths {
		if alt.bits > d.maxBits {
			d.maxBits = alt.bits
		}
	}
	if d.maxBits > rawBitCapacity {
		return nil, &ConfigError{spec.proto, "frame too long"}
	}

	// A nominal interval shorter than two ticks cannot be classified.
	minInterval := spec.bit1Pulse
	if spec.unit > 0 {
		minInterval = spec.unit
	}
	if minInterval*float64(tickRate)/1e6 < 2 {
		return nil, &ConfigError{spec.proto, "pulse shorter than two ticks"}
	}

	switch spec.enc {
	case encManchester:
		d.unit1 = tickWindow(spec.unit, tm, tp, tickRate)
		d.unit2 = window{d.unit1.min * 2, d.unit1.max * 2}
		if spec.doubleBitAt > 0 {
			// The half-clock bit merges with an adjacent same-level
			// half into a three unit run.
			d.unit3 = window{d.unit1.min * 3, d.unit1.max * 3}
		}
		d.unitTicks = spec.unit * float64(tickRate) / 1e6
		if spec.manchesterStart {
			// No leader: the opening pulse is already half-bit
			// data, so the start windows span one or two units.
			d.startPulse = window{d.unit1.min, d.unit2.max}
			d.startPause = window{d.unit1.min, d.unit2.max}
		} else {
			d.startPulse = tickWindow(spec.startPulse, tm, tp, tickRate)
			d.startPause = tickWindow(spec.startPause, tm, tp, tickRate)
		}

	case encSerial:
		d.unitTicks = float64(spec.unit) * float64(tickRate) / 1e6
		d.startPulse = tickWindow(spec.startPulse, tm, tp, tickRate)
		d.startPause = tickWindow(spec.startPause, tm, tp, tickRate)
		d.startPauseTicks = spec.startPause * float64(tickRate) / 1e6
		// Leading zero bits are transmitted as an elongated start pause.
		longest := spec.startPause + float64(spec.frameBits-1)*spec.unit
		d.startPause.max = tickWindow(longest, tm, tp, tickRate).max

	case encQuadPause:
		d.startPulse = tickWindow(spec.startPulse, tm, tp, tickRate)
		d.startPause = tickWindow(spec.startPause, tm, tp, tickRate)
		d.bit1Pulse = tickWindow(spec.bit1Pulse, tm, tp, tickRate)
		for i, us := range spec.quadPause {
			d.quadPause[i] = exactWindow(us, tm, tp, tickRate)
			if i > 0 && d.quadPause[i].min <= d.quadPause[i-1].max {
				return nil, &ConfigError{spec.proto, "pause quads indistinct"}
			}
		}

	default: // pulse distance, pulse width
		if !spec.noStartBit {
			d.startPulse = tickWindow(spec.startPulse, tm, tp, tickRate)
			d.startPause = tickWindow(spec.startPause, tm, tp, tickRate)
		}
		d.bit1Pulse = tickWindow(spec.bit1Pulse, tm, tp, tickRate)
		d.bit1Pause = tickWindow(spec.bit1Pause, tm, tp, tickRate)
		d.bit0Pulse = tickWindow(spec.bit0Pulse, tm, tp, tickRate)
		d.bit0Pause = tickWindow(spec.bit0Pause, tm, tp, tickRate)

		// The two bit values must stay distinguishable after
		// quantization.
		switch spec.enc {
		case encPulseDistance:
			if overlap(d.bit1Pause, d.bit0Pause) {
				return nil, &ConfigError{spec.proto, "bit pauses indistinct"}
			}
		case encPulseWidth:
			if overlap(d.bit1Pulse, d.bit0Pulse) {
				return nil, &ConfigError{spec.proto, "bit pulses indistinct"}
			}
		}
	}

	if spec.dittoPause > 0 {
		d.ditto = tickWindow(spec.dittoPause, tm, tp, tickRate)
	}

	timeoutUS := spec.timeoutUS
	if timeoutUS == 0 {
		timeoutUS = defaultTimeoutUS
	}
	d.timeout = int(timeoutUS*float64(tickRate)/1e6 + 0.5)
	// The ceiling has to clear every legitimate data pause.
	if m := maxDataPause(d); d.timeout <= m {
		d.timeout = m + 2
	}

	if spec.frameGapMS > 0 {
		d.frameGap = msToTicks(spec.frameGapMS, tickRate)
	}
	return d, nil
}

func overlap(a, b window) bool {
	return a.min <= b.max && b.min <= a.max
}

func maxDataPause(d *descriptor) int {
	m := d.bit1Pause.max
	if d.bit0Pause.max > m {
		m = d.bit0Pause.max
	}
	if d.unit2.max > m {
		m = d.unit2.max
	}
	if d.unit3.max > m {
		m = d.unit3.max
	}
	for _, q := range d.quadPause {
		if q.max > m {
			m = q.max
		}
	}
	return m
}
