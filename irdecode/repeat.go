package irdecode

// repetitionTracker holds the last decoded key and its end tick. It
// suppresses the guaranteed per-press duplicates some vendors transmit and
// marks frames repeated while the key is held.
type repetitionTracker struct {
	proto   Protocol
	address uint16
	command uint32
	endTick uint64
	seen    int  // frames of the current press, suppressed ones included
	alt     bool // alternating-repeat phase
	valid   bool
}

func (r *repetitionTracker) store(f *Frame) {
	r.proto = f.Protocol
	r.address = f.Address
	r.command = f.Command
	r.endTick = f.EndTick
	r.seen = 1
	r.alt = false
	r.valid = true
}

// filter decides whether a freshly decoded frame reaches the caller.
// Guaranteed duplicates inside the vendor's burst gap are dropped, as is
// the dropped half of alternating repeats; a frame repeated within the
// key-held window is emitted with FlagRepetition.
func (r *repetitionTracker) filter(d *descriptor, f *Frame, t *Table) bool {
	spec := d.spec
	if !r.valid || r.proto != f.Protocol || r.address != f.Address || r.command != f.Command {
		r.store(f)
		return true
	}
	gap := int(f.StartTick - r.endTick)

	if spec.guaranteedFrames > 1 && d.frameGap > 0 &&
		gap <= d.frameGap && r.seen < spec.guaranteedFrames {
		r.seen++
		r.endTick = f.EndTick
		return false
	}

	if gap <= t.keyHeldTicks {
		if spec.alternatingRepeat {
			r.alt = !r.alt
			if r.alt {
				r.endTick = f.EndTick
				return false
			}
		}
		f.Flags |= FlagRepetition
		r.endTick = f.EndTick
		return true
	}

	// Same key, but long enough apart to be a fresh press.
	r.store(f)
	return true
}

// dittoFrame synthesizes the repeat of the last frame for protocols with an
// explicit short repeat burst. The burst is discarded without a preceding
// frame in the key-held window, and when the stored frame belongs to a
// protocol outside the burst's family.
func (r *repetitionTracker) dittoFrame(t *Table, d *descriptor, startTick, endTick uint64) (Frame, bool) {
	if !r.valid || startTick < r.endTick {
		return Frame{}, false
	}
	if int(startTick-r.endTick) > t.keyHeldTicks {
		return Frame{}, false
	}
	stored := t.byProto[r.proto]
	if stored == nil || stored.spec.dittoPause == 0 {
		return Frame{}, false
	}
	if stored.proto != d.proto && stored.spec.leader != d.proto {
		return Frame{}, false
	}
	f := Frame{
		Protocol:  r.proto,
		Address:   r.address,
		Command:   r.command,
		Flags:     FlagRepetition,
		StartTick: startTick,
		EndTick:   endTick,
	}
	r.endTick = endTick
	return f, true
}
