package irdecode

// rawBitCapacity bounds the raw bit store. The longest supported frame is
// the 70 bit ACP24 block.
const rawBitCapacity = 72

// phase is the decode state machine position.
type phase uint8

const (
	phaseIdle phase = iota
	phaseStartPulse
	phaseStartPause
	phaseDataPulse
	phaseDataPause
)

// Decoder turns a tick stream of boolean "carrier present" samples into
// decoded Frames. One Decoder serves one receive channel and must only be
// used by one caller at a time; the Table it references may be shared.
type Decoder struct {
	table *Table

	tick  uint64
	phase phase

	pulseTicks int
	pauseTicks int

	startTick       uint64
	startPulseTicks int // measured start burst, for sibling resolution

	active    *descriptor
	second    *descriptor // retained while two protocols share the prefix
	ditto     bool        // current burst is an explicit repeat frame
	firstPair bool        // no data pair consumed yet; promotion still possible

	bitIndex int
	raw      [rawBitCapacity / 8]byte

	// Manchester half-bit queue.
	halves  [6]uint8
	nHalves int

	frame    Frame
	hasFrame bool

	rep repetitionTracker
}

// NewDecoder creates a decoder over the given timing table.
func NewDecoder(table *Table) *Decoder {
	return &Decoder{table: table}
}

// Reset clears all decode state including the tick counter and the
// repetition history. It is idempotent.
func (d *Decoder) Reset() {
	table := d.table
	*d = Decoder{table: table}
}

// Tick returns the number of samples consumed since the last Reset.
func (d *Decoder) Tick() uint64 { return d.tick }

// GetData returns the most recently completed frame and clears it. The
// second call without a new frame in between reports no frame.
func (d *Decoder) GetData() (Frame, bool) {
	if !d.hasFrame {
		return Frame{}, false
	}
	d.hasFrame = false
	return d.frame, true
}

// Detect feeds samples until a frame completes or the buffer is exhausted.
// It returns the number of samples consumed.
func (d *Decoder) Detect(samples []bool) (Frame, int, bool) {
	for i, s := range samples {
		if d.AddSample(s) {
			f, _ := d.GetData()
			return f, i + 1, true
		}
	}
	return Frame{}, len(samples), false
}

// AddSample advances the decoder by exactly one tick. It returns true on
// the tick a complete, integrity-checked frame became available via
// GetData. Malformed input never panics; the decoder resynchronizes on the
// next burst.
func (d *Decoder) AddSample(on bool) bool {
	d.tick++

	switch d.phase {
	case phaseIdle:
		if on {
			d.phase = phaseStartPulse
			d.pulseTicks = 1
			d.startTick = d.tick
		}

	case phaseStartPulse:
		if on {
			d.pulseTicks++
		} else {
			d.phase = phaseStartPause
			d.pauseTicks = 1
		}

	case phaseStartPause:
		if on {
			d.beginFrame()
		} else {
			d.pauseTicks++
			if d.pauseTicks > d.table.startCeiling {
				d.toIdle()
			}
		}

	case phaseDataPulse:
		if on {
			d.pulseTicks++
			if d.pulseTicks > d.active.timeout {
				// Light stuck on; nothing valid can follow.
				d.toIdle()
			}
		} else {
			d.phase = phaseDataPause
			d.pauseTicks = 1
		}

	case phaseDataPause:
		if on {
			if d.consumePair() {
				d.phase = phaseDataPulse
				d.pulseTicks = 1
			} else {
				// The burst that failed classification may be
				// the start of the next frame.
				d.resync()
			}
		} else {
			d.pauseTicks++
			if d.pauseTicks >= d.active.timeout {
				return d.finishFrame()
			}
		}
	}
	return false
}

func (d *Decoder) toIdle() {
	d.phase = phaseIdle
	d.active = nil
	d.second = nil
	d.ditto = false
	d.firstPair = false
	d.bitIndex = 0
	d.nHalves = 0
	d.raw = [rawBitCapacity / 8]byte{}
}

// resync discards the in-flight frame and treats the current burst as a
// possible new start burst.
func (d *Decoder) resync() {
	d.toIdle()
	d.phase = phaseStartPulse
	d.pulseTicks = 1
	d.startTick = d.tick
}

// beginFrame runs start-bit classification against every enabled protocol
// in priority order. Protocols sharing identical start timing are retained
// as a primary and a secondary candidate until their data bits diverge.
func (d *Decoder) beginFrame() {
	pulse, pause := d.pulseTicks, d.pauseTicks

	var prim, sec *descriptor
	var isDitto bool
	for _, desc := range d.table.descs {
		if desc.spec.leader != ProtoUnknown && d.table.Enabled(desc.spec.leader) {
			continue // classified via the group leader
		}
		match, dit := desc.matchStart(pulse, pause)
		if !match {
			continue
		}
		if prim == nil {
			prim, isDitto = desc, dit
		} else if sec == nil && !dit && !isDitto {
			sec = desc
		}
	}

	if prim == nil {
		// Protocols without a start burst open directly with a data
		// bit.
		for _, desc := range d.table.descs {
			if !desc.spec.noStartBit {
				continue
			}
			if d.tryOpenBare(desc, pulse, pause) {
				return
			}
		}
		d.resync()
		return
	}

	d.active = prim
	d.second = sec
	d.ditto = isDitto
	d.firstPair = true
	d.startPulseTicks = pulse
	d.bitIndex = 0
	d.nHalves = 0

	switch prim.spec.enc {
	case encManchester:
		if !prim.spec.firstPulseOne {
			// The opening half of the first bit is dark and
			// merged into the preceding silence.
			d.halves[0] = 0
			d.nHalves = 1
		}
		if prim.spec.manchesterStart {
			// No leader: the start pair is already data.
			if !d.feedManchester(prim, pulse, pause) {
				d.resync()
				return
			}
		}
	case encSerial:
		if !d.ditto {
			// Leading zero bits lengthen the start pause.
			extra := float64(pause) - prim.startPauseTicks
			if n := int(extra/prim.unitTicks + 0.5); n > 0 {
				for i := 0; i < n; i++ {
					if !d.appendBit(0) {
						d.resync()
						return
					}
				}
			}
		}
	}

	d.phase = phaseDataPulse
	d.pulseTicks = 1
}

func (desc *descriptor) matchStart(pulse, pause int) (match, ditto bool) {
	if desc.spec.noStartBit {
		return false, false
	}
	if !desc.startPulse.contains(pulse) {
		return false, false
	}
	if desc.startPause.contains(pause) {
		return true, false
	}
	if desc.ditto.valid() && desc.ditto.contains(pause) {
		return true, true
	}
	return false, false
}

// tryOpenBare opens a frame for a protocol without a start burst, with the
// measured pair as its first data bit.
func (d *Decoder) tryOpenBare(desc *descriptor, pulse, pause int) bool {
	bit, ok := desc.classifyPair(pulse, pause)
	if !ok {
		return false
	}
	d.active = desc
	d.second = nil
	d.startPulseTicks = pulse
	d.bitIndex = 0
	d.appendBit(bit)
	d.phase = phaseDataPulse
	d.pulseTicks = 1
	return true
}

// classifyPair classifies one pulse/pause pair for the two-window
// encodings. Bounds are inclusive on both ends.
func (desc *descriptor) classifyPair(pulse, pause int) (byte, bool) {
	if desc.bit1Pulse.contains(pulse) && desc.bit1Pause.contains(pause) {
		return 1, true
	}
	if desc.bit0Pulse.contains(pulse) && desc.bit0Pause.contains(pause) {
		return 0, true
	}
	return 0, false
}

// consumePair processes one complete pulse/pause pair in the data phase.
// A pair the active descriptor cannot classify promotes the retained
// secondary candidate if that one can; otherwise the frame is abandoned.
func (d *Decoder) consumePair() bool {
	if d.ditto {
		// A repeat frame carries no data bits; any burst after its
		// stop pulse invalidates it.
		return false
	}
	if d.consumePairWith(d.active) {
		d.firstPair = false
		return true
	}
	if d.second != nil && d.firstPair {
		// Shared prefix diverged on the first data pair: promote the
		// sibling and reinterpret the pair under it. Bits taken from
		// the start pair under the old reading are discarded.
		promoted := d.second
		d.second = nil
		d.active = promoted
		d.bitIndex = 0
		d.nHalves = 0
		d.raw = [rawBitCapacity / 8]byte{}
		if promoted.spec.enc == encManchester && !promoted.spec.firstPulseOne {
			d.halves[0] = 0
			d.nHalves = 1
		}
		if d.consumePairWith(promoted) {
			d.firstPair = false
			return true
		}
		return false
	}
	return false
}

func (d *Decoder) consumePairWith(desc *descriptor) bool {
	switch desc.spec.enc {
	case encManchester:
		return d.feedManchester(desc, d.pulseTicks, d.pauseTicks)

	case encSerial:
		np := int(float64(d.pulseTicks)/desc.unitTicks + 0.5)
		ns := int(float64(d.pauseTicks)/desc.unitTicks + 0.5)
		if np < 1 || ns < 1 {
			return false
		}
		for i := 0; i < np; i++ {
			if !d.appendBit(1) {
				return false
			}
		}
		for i := 0; i < ns; i++ {
			if !d.appendBit(0) {
				return false
			}
		}
		return true

	case encQuadPause:
		if !desc.bit1Pulse.contains(d.pulseTicks) {
			return false
		}
		for q, w := range desc.quadPause {
			if w.contains(d.pauseTicks) {
				return d.appendBit(byte(q>>1)&1) && d.appendBit(byte(q)&1)
			}
		}
		return false

	default:
		bit, ok := desc.classifyPair(d.pulseTicks, d.pauseTicks)
		if !ok {
			return false
		}
		return d.appendBit(bit)
	}
}

// feedManchester appends the half-bits of one pulse/pause pair. An
// interval of one unit is one half-bit and two units is two; three units
// only occur around a half-clock bit. Anything else is a mismatch.
func (d *Decoder) feedManchester(desc *descriptor, pulse, pause int) bool {
	return d.feedHalves(desc, 1, pulse) && d.feedHalves(desc, 0, pause)
}

func (d *Decoder) feedHalves(desc *descriptor, level uint8, ticks int) bool {
	var n int
	switch {
	case desc.unit1.contains(ticks):
		n = 1
	case desc.unit2.contains(ticks):
		n = 2
	case desc.unit3.contains(ticks):
		// Half-clock bit plus an adjacent same-level half (RC6
		// toggle followed by a continuing level).
		n = 3
	default:
		return false
	}
	for i := 0; i < n; i++ {
		if d.nHalves >= len(d.halves) {
			return false
		}
		d.halves[d.nHalves] = level
		d.nHalves++
	}
	return d.drainHalves(desc)
}

// drainHalves folds queued half-bits into data bits. The bit at
// doubleBitAt runs at half clock and spans four half-bits (RC6 trailer).
func (d *Decoder) drainHalves(desc *descriptor) bool {
	for {
		need := 2
		if desc.spec.doubleBitAt > 0 && d.bitIndex == desc.spec.doubleBitAt {
			need = 4
		}
		if d.nHalves < need {
			return true
		}
		var first, second uint8
		if need == 4 {
			if d.halves[0] != d.halves[1] || d.halves[2] != d.halves[3] {
				return false
			}
			first, second = d.halves[0], d.halves[2]
		} else {
			first, second = d.halves[0], d.halves[1]
		}
		if first == second {
			return false
		}
		var bit byte
		if (first == 1) == desc.spec.firstPulseOne {
			bit = 1
		}
		if !d.appendBit(bit) {
			return false
		}
		copy(d.halves[:], d.halves[need:d.nHalves])
		d.nHalves -= need
	}
}

// appendBit stores one decoded bit in transmission order.
func (d *Decoder) appendBit(bit byte) bool {
	if d.bitIndex >= d.active.maxBits {
		return false
	}
	if bit != 0 {
		d.raw[d.bitIndex/8] |= 1 << (7 - uint(d.bitIndex%8))
	}
	d.bitIndex++
	return true
}

// finishFrame runs when the darkness ceiling is reached in the data phase.
// For most protocols this is the frame terminator; for the rest it is a
// mid-frame abort.
func (d *Decoder) finishFrame() bool {
	desc := d.active
	emitted := false

	if d.ditto {
		// Repeat frame: a lone stop pulse after the short pause.
		if d.bitIndex == 0 && desc.stopWindow().contains(d.pulseTicks) {
			if f, ok := d.rep.dittoFrame(d.table, desc, d.startTick, d.tick); ok {
				d.frame = f
				d.hasFrame = true
				emitted = true
			}
		}
		d.toIdle()
		return emitted
	}

	if d.sealFrame(desc) {
		resolved := d.resolveSibling(desc)
		if resolved != nil {
			if f, ok := extractFrame(d.table, resolved.spec, &d.raw, d.bitIndex, d.startTick, d.tick); ok {
				if d.rep.filter(resolved, &f, d.table) {
					d.frame = f
					d.hasFrame = true
					emitted = true
				}
			}
		}
	}

	d.toIdle()
	return emitted
}

// sealFrame accounts for the trailing burst: a stop pulse, the final
// pulse-width bit, the last Manchester half-bits, or the final serial
// units. It reports whether the frame is structurally complete.
func (d *Decoder) sealFrame(desc *descriptor) bool {
	spec := desc.spec

	switch spec.enc {
	case encManchester:
		if !d.feedHalves(desc, 1, d.pulseTicks) {
			return false
		}
		if d.nHalves == 1 {
			// The closing dark half is swallowed by the trailing
			// silence.
			if !d.feedHalves(desc, 0, int(desc.unitTicks+0.5)) {
				return false
			}
		}
		return d.nHalves == 0 && d.acceptedLength(desc)

	case encSerial:
		n := int(float64(d.pulseTicks)/desc.unitTicks + 0.5)
		if n < 1 {
			return false
		}
		for i := 0; i < n; i++ {
			if !d.appendBit(1) {
				return false
			}
		}
		if d.bitIndex < spec.minBits {
			return false
		}
		// Trailing zero bits are indistinguishable from the
		// inter-frame silence.
		for d.bitIndex < spec.frameBits {
			d.appendBit(0)
		}
		return true

	case encPulseWidth:
		bit, ok := d.classifyFinalPulse(desc)
		if !ok {
			return false
		}
		if !d.appendBit(bit) {
			return false
		}
		return d.acceptedLength(desc)

	default: // pulse distance, quad pause: stop pulse required
		if !spec.stopBit {
			return d.acceptedLength(desc)
		}
		if !desc.stopWindow().contains(d.pulseTicks) {
			return false
		}
		return d.acceptedLength(desc)
	}
}

func (d *Decoder) classifyFinalPulse(desc *descriptor) (byte, bool) {
	if desc.bit1Pulse.contains(d.pulseTicks) {
		return 1, true
	}
	if desc.bit0Pulse.contains(d.pulseTicks) {
		return 0, true
	}
	return 0, false
}

func (d *Decoder) acceptedLength(desc *descriptor) bool {
	spec := desc.spec
	if spec.minBits > 0 {
		return d.bitIndex >= spec.minBits && d.bitIndex <= desc.maxBits
	}
	if spec.lengths != nil {
		for _, alt := range spec.lengths {
			if alt.bits == d.bitIndex && d.table.Enabled(alt.proto) {
				return true
			}
		}
		return false
	}
	return d.bitIndex == spec.frameBits
}

// resolveSibling picks the final protocol for families that share start
// and bit timing, by observed bit count and, among equal lengths, by
// which nominal start burst sits closest to the measurement.
func (d *Decoder) resolveSibling(desc *descriptor) *descriptor {
	spec := desc.spec
	if spec.lengths == nil {
		return desc
	}
	var best *descriptor
	bestDist := -1.0
	for _, alt := range spec.lengths {
		if alt.bits != d.bitIndex {
			continue
		}
		cand := d.table.byProto[alt.proto]
		if cand == nil {
			continue
		}
		nominal := cand.spec.startPulse * float64(d.table.tickRate) / 1e6
		dist := nominal - float64(d.startPulseTicks)
		if dist < 0 {
			dist = -dist
		}
		if best == nil || dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	return best
}
