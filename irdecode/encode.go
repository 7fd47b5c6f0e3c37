package irdecode

import "fmt"

// Encode renders the canonical sample stream for one frame at the table's
// tick rate, ending in enough silence to pass the darkness ceiling. The
// frame's protocol must be enabled in the table.
func Encode(t *Table, f Frame) ([]bool, error) {
	desc := t.byProto[f.Protocol]
	if desc == nil {
		return nil, fmt.Errorf("irdecode: %s not enabled", f.Protocol)
	}
	spec := desc.spec

	raw, nBits, err := buildRawBits(spec, f)
	if err != nil {
		return nil, err
	}

	var iv intervals
	switch spec.enc {
	case encManchester:
		encodeManchester(&iv, spec, &raw, nBits)
	case encSerial:
		encodeSerial(&iv, spec, &raw, nBits)
	case encQuadPause:
		encodeQuad(&iv, spec, &raw, nBits)
	case encPulseWidth:
		if !spec.noStartBit {
			iv.mark(spec.startPulse)
			iv.space(spec.startPause)
		}
		for i := 0; i < nBits; i++ {
			if bitAt(&raw, i) != 0 {
				iv.mark(spec.bit1Pulse)
				iv.space(spec.bit1Pause)
			} else {
				iv.mark(spec.bit0Pulse)
				iv.space(spec.bit0Pause)
			}
		}
	default: // pulse distance
		if !spec.noStartBit {
			iv.mark(spec.startPulse)
			iv.space(spec.startPause)
		}
		for i := 0; i < nBits; i++ {
			iv.mark(spec.bit1Pulse)
			if bitAt(&raw, i) != 0 {
				iv.space(spec.bit1Pause)
			} else {
				iv.space(spec.bit0Pause)
			}
		}
		if spec.stopBit {
			iv.mark(spec.bit0Pulse)
		}
	}

	return iv.render(t.tickRate, desc.timeout), nil
}

// EncodeRepeat renders the explicit short repeat burst for protocols that
// have one (NEC, JVC).
func EncodeRepeat(t *Table, proto Protocol) ([]bool, error) {
	desc := t.byProto[proto]
	if desc == nil {
		return nil, fmt.Errorf("irdecode: %s not enabled", proto)
	}
	spec := desc.spec
	if spec.dittoPause == 0 {
		return nil, fmt.Errorf("irdecode: %s has no repeat frame", proto)
	}
	var iv intervals
	iv.mark(spec.startPulse)
	iv.space(spec.dittoPause)
	iv.mark(spec.bit0Pulse)
	return iv.render(t.tickRate, desc.timeout), nil
}

// intervals is an alternating mark/space duration list in microseconds,
// always beginning with a mark.
type intervals struct {
	us []float64
}

func (iv *intervals) mark(us float64) {
	if len(iv.us)%2 == 1 {
		// coalesce
		iv.us[len(iv.us)-1] += us
		return
	}
	iv.us = append(iv.us, us)
}

func (iv *intervals) space(us float64) {
	if len(iv.us) == 0 {
		return // leading silence is implicit
	}
	if len(iv.us)%2 == 0 {
		iv.us[len(iv.us)-1] += us
		return
	}
	iv.us = append(iv.us, us)
}

// render quantizes the interval list into per-tick samples and appends
// trailing silence past the darkness ceiling.
func (iv *intervals) render(tickRate, timeout int) []bool {
	var out []bool
	for i, us := range iv.us {
		n := int(us*float64(tickRate)/1e6 + 0.5)
		if n < 1 {
			n = 1
		}
		level := i%2 == 0
		for j := 0; j < n; j++ {
			out = append(out, level)
		}
	}
	for i := 0; i < timeout+2; i++ {
		out = append(out, false)
	}
	return out
}

func encodeManchester(iv *intervals, spec *timingSpec, raw *[rawBitCapacity / 8]byte, nBits int) {
	if !spec.manchesterStart {
		iv.mark(spec.startPulse)
		iv.space(spec.startPause)
	}
	for i := 0; i < nBits; i++ {
		units := 1
		if spec.doubleBitAt > 0 && i == spec.doubleBitAt {
			units = 2
		}
		firstMark := (bitAt(raw, i) != 0) == spec.firstPulseOne
		d := spec.unit * float64(units)
		if firstMark {
			iv.mark(d)
			iv.space(d)
		} else {
			// For the first bit after an explicit leader the dark
			// half is absorbed into the leader pause nominal.
			if !(i == 0 && !spec.manchesterStart && !spec.firstPulseOne) {
				iv.space(d)
			}
			iv.mark(d)
		}
	}
}

func encodeSerial(iv *intervals, spec *timingSpec, raw *[rawBitCapacity / 8]byte, nBits int) {
	// Trailing zero bits vanish into the inter-frame silence.
	for nBits > 0 && bitAt(raw, nBits-1) == 0 {
		nBits--
	}
	iv.mark(spec.startPulse)
	iv.space(spec.startPause)
	for i := 0; i < nBits; i++ {
		if bitAt(raw, i) != 0 {
			iv.mark(spec.unit)
		} else {
			iv.space(spec.unit)
		}
	}
}

func encodeQuad(iv *intervals, spec *timingSpec, raw *[rawBitCapacity / 8]byte, nBits int) {
	iv.mark(spec.startPulse)
	iv.space(spec.startPause)
	for i := 0; i < nBits; i += 2 {
		q := bitAt(raw, i)<<1 | bitAt(raw, i+1)
		iv.mark(spec.bit1Pulse)
		iv.space(spec.quadPause[q])
	}
	iv.mark(spec.bit1Pulse)
}

func setField(raw *[rawBitCapacity / 8]byte, off, n int, lsbFirst bool, v uint32) {
	for i := 0; i < n; i++ {
		var bit uint32
		if lsbFirst {
			bit = v >> uint(i) & 1
		} else {
			bit = v >> uint(n-1-i) & 1
		}
		if bit != 0 {
			raw[(off+i)/8] |= 1 << (7 - uint((off+i)%8))
		}
	}
}

// buildRawBits lays the frame's fields out in transmission order, filling
// in complements, parity and checksums so the result decodes cleanly.
func buildRawBits(spec *timingSpec, f Frame) (raw [rawBitCapacity / 8]byte, nBits int, err error) {
	nBits = spec.frameBits
	addr, cmd := uint32(f.Address), f.Command

	switch spec.proto {
	case ProtoNEC, ProtoJVC, ProtoNEC16:
		setField(&raw, 0, spec.addrOffset+spec.addrLen, true, addr)
		if spec.proto == ProtoNEC {
			setField(&raw, 16, 16, true, cmd&0xFF|inverted8(cmd)<<8)
		} else {
			setField(&raw, spec.cmdOffset, spec.cmdLen, true, cmd)
		}

	case ProtoAPPLE:
		setField(&raw, 0, 16, true, appleVendorAddr)
		// The high command byte is a constant pattern, not a complement.
		setField(&raw, 16, 16, true, cmd&0xFF|(cmd&0xFF)<<8)

	case ProtoONKYO:
		setField(&raw, 0, 16, true, addr)
		setField(&raw, 16, 16, true, cmd)

	case ProtoNEC42:
		setField(&raw, 0, 13, true, addr)
		setField(&raw, 13, 13, true, ^addr&0x1FFF)
		setField(&raw, 26, 8, true, cmd)
		setField(&raw, 34, 8, true, inverted8(cmd))

	case ProtoLGAIR:
		setField(&raw, 0, 8, true, addr)
		setField(&raw, 8, 16, true, cmd)
		sum := (addr & 0xF) + (addr >> 4 & 0xF) +
			(cmd & 0xF) + (cmd >> 4 & 0xF) + (cmd >> 8 & 0xF) + (cmd >> 12 & 0xF)
		setField(&raw, 24, 4, true, sum&0xF)

	case ProtoSAMSUNG32:
		setField(&raw, 0, 16, true, addr)
		setField(&raw, 16, 16, true, cmd&0xFF|inverted8(cmd)<<8)

	case ProtoSAMSUNG48:
		setField(&raw, 0, 16, true, addr)
		setField(&raw, 16, 8, true, cmd&0xFF)
		setField(&raw, 24, 8, true, inverted8(cmd))
		setField(&raw, 32, 8, true, cmd>>8&0xFF)
		setField(&raw, 40, 8, true, inverted8(cmd>>8))

	case ProtoBOSE:
		setField(&raw, 0, 16, true, cmd&0xFF|inverted8(cmd)<<8)

	case ProtoVINCENT:
		setField(&raw, 0, 16, false, addr)
		setField(&raw, 16, 16, false, (cmd&0xFF)<<8|cmd&0xFF)

	case ProtoKASEIKYO:
		setField(&raw, 0, 16, true, addr)
		genre := uint32(f.Flags >> 4)
		setField(&raw, 16, 4, true, genre)
		setField(&raw, 24, 16, true, cmd)
		b2 := field(&raw, 16, 8, true)
		b3 := field(&raw, 24, 8, true)
		b4 := field(&raw, 32, 8, true)
		setField(&raw, 40, 8, true, b2^b3^b4)

	case ProtoMITSUHEAVY:
		setField(&raw, 0, 8, true, addr&0xFF)
		setField(&raw, 8, 8, true, addr>>8)
		setField(&raw, 16, 8, true, 0)
		setField(&raw, 24, 8, true, 0xFF)
		setField(&raw, 32, 8, true, cmd&0xFF)
		setField(&raw, 40, 8, true, cmd>>16&0xFF)
		setField(&raw, 48, 8, true, cmd>>8&0xFF)
		setField(&raw, 56, 8, true, cmd>>24&0xFF)

	case ProtoORTEK:
		setField(&raw, 0, 5, false, addr)
		setField(&raw, 5, 8, false, cmd)
		var ones uint32
		for i := 0; i < 13; i++ {
			ones += bitAt(&raw, i)
		}
		setField(&raw, 13, 1, false, ones&1)

	case ProtoMETZ:
		setField(&raw, 1, 6, false, addr)
		setField(&raw, 7, 6, false, ^addr&0x3F)
		setField(&raw, 13, 6, false, cmd)

	case ProtoACP24:
		for i, pos := range acp24CommandBits {
			setField(&raw, pos, 1, false, cmd>>uint(len(acp24CommandBits)-1-i)&1)
		}

	case ProtoSIRCS:
		switch {
		case addr < 1<<5:
			nBits = 12
		case addr < 1<<8:
			nBits = 15
		default:
			nBits = 20
		}
		setField(&raw, 0, 7, true, cmd)
		setField(&raw, 7, nBits-7, true, addr)

	case ProtoRC5, ProtoS100:
		setField(&raw, 0, 2, false, 3) // both start bits set, toggle clear
		setField(&raw, spec.addrOffset, spec.addrLen, false, addr)
		setField(&raw, spec.cmdOffset, spec.cmdLen, false, cmd)

	case ProtoRC6, ProtoRC6A, ProtoGRUNDIG, ProtoIR60, ProtoNOKIA,
		ProtoA1TVBOX, ProtoRCII:
		setField(&raw, 0, 1, false, 1) // mandatory leading one
		setField(&raw, spec.addrOffset, spec.addrLen, spec.lsbFirst, addr)
		setField(&raw, spec.cmdOffset, spec.cmdLen, spec.lsbFirst, cmd)

	default:
		setField(&raw, spec.addrOffset, spec.addrLen, spec.lsbFirst, addr)
		setField(&raw, spec.cmdOffset, spec.cmdLen, spec.lsbFirst, cmd)
	}

	if nBits > rawBitCapacity {
		return raw, 0, fmt.Errorf("irdecode: frame too long")
	}
	return raw, nBits, nil
}
