package irdecode

// appleVendorAddr is the fixed address Apple remotes transmit inside NEC
// framing. Their command word carries no complement byte.
const appleVendorAddr = 0x87EE

// acp24CommandBits lists the raw frame positions that carry the command in
// the oversized 70 bit ACP24 block; everything else is constant filler.
var acp24CommandBits = [16]int{6, 7, 9, 10, 21, 22, 24, 25, 36, 37, 39, 40, 51, 52, 54, 55}

func bitAt(raw *[rawBitCapacity / 8]byte, i int) uint32 {
	return uint32(raw[i/8]>>(7-uint(i%8))) & 1
}

// field assembles n bits starting at off in transmission order, LSB or MSB
// first per the protocol's bit order.
func field(raw *[rawBitCapacity / 8]byte, off, n int, lsbFirst bool) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		b := bitAt(raw, off+i)
		if lsbFirst {
			v |= b << uint(i)
		} else {
			v = v<<1 | b
		}
	}
	return v
}

func inverted8(v uint32) uint32 { return ^v & 0xFF }

// extractFrame turns a structurally complete raw frame into address,
// command and flags, running the protocol's integrity finisher. A failed
// complement, parity or checksum rejects the frame.
func extractFrame(t *Table, spec *timingSpec, raw *[rawBitCapacity / 8]byte, nBits int, startTick, endTick uint64) (Frame, bool) {
	f := Frame{
		Protocol:  spec.proto,
		StartTick: startTick,
		EndTick:   endTick,
	}

	switch spec.proto {
	case ProtoNEC, ProtoAPPLE, ProtoONKYO:
		addr := field(raw, 0, 16, true)
		cmd := field(raw, 16, 16, true)
		low, high := cmd&0xFF, cmd>>8
		switch {
		case addr == appleVendorAddr && t.Enabled(ProtoAPPLE):
			f.Protocol = ProtoAPPLE
			f.Command = low
		case high == inverted8(low):
			f.Protocol = ProtoNEC
			f.Command = low
		case t.Enabled(ProtoONKYO):
			// Onkyo reuses the complement byte for command data.
			f.Protocol = ProtoONKYO
			f.Command = cmd
		default:
			return Frame{}, false
		}
		f.Address = uint16(addr)

	case ProtoNEC42:
		addr := field(raw, 0, 13, true)
		cmd := field(raw, 26, 8, true)
		if field(raw, 13, 13, true) != ^addr&0x1FFF {
			return Frame{}, false
		}
		if field(raw, 34, 8, true) != inverted8(cmd) {
			return Frame{}, false
		}
		f.Address = uint16(addr)
		f.Command = cmd

	case ProtoLGAIR:
		var sum uint32
		for i := 0; i < 24; i += 4 {
			sum += field(raw, i, 4, true)
		}
		if sum&0xF != field(raw, 24, 4, true) {
			return Frame{}, false
		}
		f.Address = uint16(field(raw, 0, 8, true))
		f.Command = field(raw, 8, 16, true)

	case ProtoSAMSUNG32:
		cmd := field(raw, 16, 16, true)
		if cmd>>8 != inverted8(cmd&0xFF) {
			return Frame{}, false
		}
		f.Address = uint16(field(raw, 0, 16, true))
		f.Command = cmd & 0xFF

	case ProtoSAMSUNG48:
		c1 := field(raw, 16, 8, true)
		c2 := field(raw, 32, 8, true)
		if field(raw, 24, 8, true) != inverted8(c1) || field(raw, 40, 8, true) != inverted8(c2) {
			return Frame{}, false
		}
		f.Address = uint16(field(raw, 0, 16, true))
		f.Command = c1 | c2<<8

	case ProtoBOSE:
		cmd := field(raw, 0, 16, true)
		if cmd>>8 != inverted8(cmd&0xFF) {
			return Frame{}, false
		}
		f.Command = cmd & 0xFF

	case ProtoVINCENT:
		cmd := field(raw, 16, 16, false)
		if cmd>>8 != cmd&0xFF {
			return Frame{}, false
		}
		f.Address = uint16(field(raw, 0, 16, false))
		f.Command = cmd & 0xFF

	case ProtoKASEIKYO:
		b2 := field(raw, 16, 8, true)
		b3 := field(raw, 24, 8, true)
		b4 := field(raw, 32, 8, true)
		if field(raw, 40, 8, true) != b2^b3^b4 {
			return Frame{}, false
		}
		f.Address = uint16(field(raw, 0, 16, true))
		f.Command = field(raw, 24, 16, true)
		f.Flags |= uint8(field(raw, 16, 4, true)) << 4

	case ProtoMITSUHEAVY:
		b := func(i int) uint32 { return field(raw, i*8, 8, true) }
		if b(3) != inverted8(b(2)) {
			return Frame{}, false
		}
		f.Address = uint16(b(0) | b(1)<<8)
		// The command is transmitted as two interleaved words.
		f.Command = b(4) | b(6)<<8 | b(5)<<16 | b(7)<<24

	case ProtoORTEK:
		var ones uint32
		for i := 0; i < 14; i++ {
			ones += bitAt(raw, i)
		}
		if ones&1 != 0 {
			return Frame{}, false
		}
		f.Address = uint16(field(raw, 0, 5, false))
		f.Command = field(raw, 5, 8, false)

	case ProtoMETZ:
		addr := field(raw, 1, 6, false)
		if field(raw, 7, 6, false) != ^addr&0x3F {
			return Frame{}, false
		}
		f.Address = uint16(addr)
		f.Command = field(raw, 13, 6, false)

	case ProtoACP24:
		var cmd uint32
		for _, pos := range acp24CommandBits {
			cmd = cmd<<1 | bitAt(raw, pos)
		}
		f.Command = cmd

	case ProtoSIRCS:
		// 12, 15 and 20 bit variants; bits beyond the command widen the
		// address.
		f.Command = field(raw, 0, 7, true)
		f.Address = uint16(field(raw, 7, nBits-7, true))

	default:
		f.Address = uint16(field(raw, spec.addrOffset, spec.addrLen, spec.lsbFirst))
		f.Command = field(raw, spec.cmdOffset, spec.cmdLen, spec.lsbFirst)
	}

	return f, true
}
