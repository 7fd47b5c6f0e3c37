package irdecode

// encodingKind selects the bit-recovery engine a protocol uses.
type encodingKind uint8

const (
	// encPulseDistance: constant-width pulses, the pause width carries the
	// bit value. Frames need a trailing stop pulse to delimit the last
	// pause.
	encPulseDistance encodingKind = iota
	// encPulseWidth: constant-width pauses, the pulse width carries the
	// bit value. The last bit is recoverable from its pulse alone.
	encPulseWidth
	// encManchester: bit value carried by the transition direction at the
	// bit center; a double-length interval spans two half-bits.
	encManchester
	// encSerial: NRZ at a fixed unit length; a pulse of n units is n one
	// bits, a pause of n units is n zero bits.
	encSerial
	// encQuadPause: constant-width pulses with four pause widths, each
	// pause encoding two bits (RCMM).
	encQuadPause
)

// lengthAlt resolves a frame's final protocol from its observed bit count
// for families that share start and bit timing (NEC/JVC/LGAIR/NEC42,
// SAMSUNG 32/37/48, GRUNDIG/NOKIA/IR60, RCMM 12/24/32).
type lengthAlt struct {
	bits  int
	proto Protocol
}

// timingSpec is the declarative microsecond description of one protocol.
// Tick windows are derived from it once per Table build; the spec itself is
// never consulted on the per-tick path.
type timingSpec struct {
	proto Protocol

	// Start burst, microseconds. For Manchester protocols without a
	// dedicated leader (manchesterStart) these are ignored and the unit
	// windows are used instead.
	startPulse float64
	startPause float64

	// Data bit nominal timings, microseconds.
	bit1Pulse float64
	bit1Pause float64
	bit0Pulse float64
	bit0Pause float64

	// Manchester/serial unit, microseconds.
	unit float64

	// RCMM-style pause widths for bit pairs 00,01,10,11.
	quadPause [4]float64

	// Acceptance window in percent below/above nominal. Zero means the
	// default of 20/20. Tolerances are asymmetric for several protocols.
	tolMinus float64
	tolPlus  float64

	frameBits int  // complete frame length in data bits
	minBits   int  // variable-length frames: fewest acceptable bits
	stopBit   bool // trailing constant pulse after the last data bit
	lsbFirst  bool

	enc            encodingKind
	firstPulseOne  bool // Manchester: a mark-then-space pair decodes as 1
	manchesterStart bool // no leader; the first pulse is already half-bit data
	noStartBit     bool // frame begins directly with a data bit (DENON, THOMSON)
	doubleBitAt    int  // Manchester: index of the double-clock bit, 0 = none

	addrOffset int
	addrLen    int
	cmdOffset  int
	cmdLen     int

	// Explicit short repeat ("ditto") frame: start pulse followed by this
	// pause and a lone stop pulse. Zero = protocol has no ditto frame.
	dittoPause float64

	timeoutUS float64 // darkness ceiling override, 0 = default 15500

	guaranteedFrames  int     // transmissions per key press (0/1 = single)
	frameGapMS        float64 // gap within which guaranteed duplicates arrive
	alternatingRepeat bool    // vendor quirk: drop every second identical frame

	// leader names the group representative whose descriptor performs
	// start classification for this protocol; the member is reached by
	// length resolution or a finisher. Members still carry a full spec so
	// they work standalone when the leader is disabled.
	leader  Protocol
	lengths []lengthAlt
}

// defaultTimeoutUS is the darkness ceiling: a mid-frame pause of this many
// microseconds abandons (or, for virtual-stop protocols, completes) the
// frame.
const defaultTimeoutUS = 15500

// keyHeldGapMS is the window within which an identical frame counts as
// "key still held" and is reported with the repetition flag.
const keyHeldGapMS = 150

var timingSpecs = []timingSpec{
	{
		proto:      ProtoSIRCS,
		startPulse: 2400, startPause: 600,
		bit1Pulse: 1200, bit1Pause: 600,
		bit0Pulse: 600, bit0Pause: 600,
		enc:       encPulseWidth,
		frameBits: 20, minBits: 12, // 12, 15 and 20 bit variants; extra bits fold into the address
		lsbFirst:    true,
		cmdOffset:   0, cmdLen: 7,
		addrOffset: 7, addrLen: 13,
		guaranteedFrames: 3, frameGapMS: 60,
	},
	{
		proto:      ProtoNEC,
		startPulse: 9000, startPause: 4500,
		bit1Pulse: 560, bit1Pause: 1690,
		bit0Pulse: 560, bit0Pause: 560,
		tolMinus: 25, tolPlus: 30,
		enc:       encPulseDistance,
		frameBits: 32, stopBit: true, lsbFirst: true,
		addrOffset: 0, addrLen: 16,
		cmdOffset: 16, cmdLen: 16,
		dittoPause: 2250,
		lengths: []lengthAlt{
			{16, ProtoJVC}, {16, ProtoNEC16}, {28, ProtoLGAIR},
			{32, ProtoNEC}, {42, ProtoNEC42},
		},
	},
	{
		proto:      ProtoSAMSUNG,
		startPulse: 4500, startPause: 4500,
		bit1Pulse: 550, bit1Pause: 1650,
		bit0Pulse: 550, bit0Pause: 550,
		enc:       encPulseDistance,
		frameBits: 37, stopBit: true, lsbFirst: true,
		addrOffset: 0, addrLen: 16,
		cmdOffset: 21, cmdLen: 16,
		alternatingRepeat: true,
		lengths: []lengthAlt{
			{32, ProtoSAMSUNG32}, {37, ProtoSAMSUNG}, {48, ProtoSAMSUNG48},
		},
	},
	{
		proto:      ProtoMATSUSHITA,
		startPulse: 3488, startPause: 3488,
		bit1Pulse: 872, bit1Pause: 2616,
		bit0Pulse: 872, bit0Pause: 872,
		enc:       encPulseDistance,
		frameBits: 24, stopBit: true, lsbFirst: true,
		cmdOffset: 0, cmdLen: 12,
		addrOffset: 12, addrLen: 12,
	},
	{
		proto:      ProtoKASEIKYO,
		startPulse: 3380, startPause: 1690,
		bit1Pulse: 423, bit1Pause: 1269,
		bit0Pulse: 423, bit0Pause: 423,
		enc:       encPulseDistance,
		frameBits: 48, stopBit: true, lsbFirst: true,
		addrOffset: 0, addrLen: 16, // vendor id
		cmdOffset: 24, cmdLen: 16,
		alternatingRepeat: true,
	},
	{
		proto:      ProtoRECS80,
		startPulse: 158, startPause: 7432,
		bit1Pulse: 158, bit1Pause: 7432,
		bit0Pulse: 158, bit0Pause: 4902,
		tolMinus: 10, tolPlus: 10,
		enc:       encPulseDistance,
		frameBits: 10, stopBit: true,
		addrOffset: 1, addrLen: 3,
		cmdOffset: 4, cmdLen: 6,
	},
	{
		proto: ProtoRC5,
		unit:  889,
		enc:   encManchester, manchesterStart: true,
		frameBits: 14, // S1 S2 T A4..A0 C5..C0
		addrOffset: 3, addrLen: 5,
		cmdOffset: 8, cmdLen: 6,
	},
	{
		proto:     ProtoDENON,
		bit1Pulse: 310, bit1Pause: 1780,
		bit0Pulse: 310, bit0Pause: 745,
		enc:        encPulseDistance,
		noStartBit: true,
		frameBits:  15, stopBit: true,
		addrOffset: 0, addrLen: 5,
		cmdOffset: 5, cmdLen: 10,
	},
	{
		proto:      ProtoRC6,
		startPulse: 2666, startPause: 889,
		unit:       444,
		enc:        encManchester, firstPulseOne: true,
		frameBits: 21, doubleBitAt: 4, // toggle runs at half clock
		addrOffset: 5, addrLen: 8,
		cmdOffset: 13, cmdLen: 8,
	},
	{
		proto:      ProtoSAMSUNG32,
		startPulse: 4500, startPause: 4500,
		bit1Pulse: 550, bit1Pause: 1650,
		bit0Pulse: 550, bit0Pause: 550,
		enc:       encPulseDistance,
		frameBits: 32, stopBit: true, lsbFirst: true,
		addrOffset: 0, addrLen: 16,
		cmdOffset: 16, cmdLen: 16,
		guaranteedFrames: 2, frameGapMS: 60,
		leader: ProtoSAMSUNG,
	},
	{
		// Apple uses NEC framing with vendor address 0x87EE and no
		// command complement; resolved by the NEC finisher.
		proto:      ProtoAPPLE,
		startPulse: 9000, startPause: 4500,
		bit1Pulse: 560, bit1Pause: 1690,
		bit0Pulse: 560, bit0Pause: 560,
		tolMinus: 25, tolPlus: 30,
		enc:       encPulseDistance,
		frameBits: 32, stopBit: true, lsbFirst: true,
		addrOffset: 0, addrLen: 16,
		cmdOffset: 16, cmdLen: 16,
		dittoPause: 2250,
		leader:     ProtoNEC,
	},
	{
		proto:      ProtoRECS80EXT,
		startPulse: 158, startPause: 3637,
		bit1Pulse: 158, bit1Pause: 7432,
		bit0Pulse: 158, bit0Pause: 4902,
		tolMinus: 10, tolPlus: 10,
		enc:       encPulseDistance,
		frameBits: 12, stopBit: true,
		addrOffset: 2, addrLen: 4,
		cmdOffset: 6, cmdLen: 6,
	},
	{
		proto:      ProtoNUBERT,
		startPulse: 1340, startPause: 340,
		bit1Pulse: 1340, bit1Pause: 340,
		bit0Pulse: 500, bit0Pause: 1300,
		enc:       encPulseWidth,
		frameBits: 10,
		cmdOffset: 0, cmdLen: 10,
		guaranteedFrames: 2, frameGapMS: 35,
	},
	{
		proto:      ProtoBANGOLUFSEN,
		startPulse: 200, startPause: 3125,
		bit1Pulse: 200, bit1Pause: 3125,
		bit0Pulse: 200, bit0Pause: 1562,
		enc:       encPulseDistance,
		frameBits: 16, stopBit: true,
		addrOffset: 0, addrLen: 8,
		cmdOffset: 8, cmdLen: 8,
	},
	{
		proto:      ProtoGRUNDIG,
		startPulse: 528, startPause: 2639,
		unit:       528,
		enc:        encManchester,
		frameBits:  10, // leading mandatory one bit
		cmdOffset:  1, cmdLen: 9,
		lengths: []lengthAlt{
			{7, ProtoIR60}, {10, ProtoGRUNDIG}, {17, ProtoNOKIA},
		},
	},
	{
		proto:      ProtoNOKIA,
		startPulse: 528, startPause: 2639,
		unit:       528,
		enc:        encManchester,
		frameBits:  17,
		cmdOffset:  1, cmdLen: 8,
		addrOffset: 9, addrLen: 8,
		leader: ProtoGRUNDIG,
	},
	{
		proto:      ProtoSIEMENS,
		startPulse: 250, startPause: 250,
		unit:       250,
		enc:        encSerial,
		frameBits:  23, minBits: 12,
		addrOffset: 0, addrLen: 11,
		cmdOffset: 12, cmdLen: 11,
	},
	{
		proto:      ProtoFDC,
		startPulse: 889, startPause: 889,
		bit1Pulse: 320, bit1Pause: 1075,
		bit0Pulse: 320, bit0Pause: 430,
		enc:       encPulseDistance,
		frameBits: 40, stopBit: true, lsbFirst: true,
		addrOffset: 0, addrLen: 14,
		cmdOffset: 20, cmdLen: 12,
	},
	{
		proto:      ProtoRCCAR,
		startPulse: 889, startPause: 889,
		bit1Pulse: 520, bit1Pause: 1560,
		bit0Pulse: 520, bit0Pause: 2600,
		enc:       encPulseDistance,
		frameBits: 13, stopBit: true, lsbFirst: true,
		addrOffset: 0, addrLen: 4,
		cmdOffset: 4, cmdLen: 9,
	},
	{
		proto:      ProtoJVC,
		startPulse: 8400, startPause: 4200,
		bit1Pulse: 560, bit1Pause: 1690,
		bit0Pulse: 560, bit0Pause: 560,
		tolMinus: 25, tolPlus: 30,
		enc:       encPulseDistance,
		frameBits: 16, stopBit: true, lsbFirst: true,
		addrOffset: 0, addrLen: 4,
		cmdOffset: 4, cmdLen: 12,
		dittoPause: 2100,
		leader:     ProtoNEC,
	},
	{
		proto:      ProtoRC6A,
		startPulse: 2666, startPause: 889,
		unit:       444,
		enc:        encManchester, firstPulseOne: true,
		frameBits: 29, doubleBitAt: 4,
		addrOffset: 5, addrLen: 14,
		cmdOffset: 19, cmdLen: 10,
	},
	{
		proto:      ProtoNIKON,
		startPulse: 2200, startPause: 27100,
		bit1Pulse: 500, bit1Pause: 3500,
		bit0Pulse: 500, bit0Pause: 1500,
		enc:       encPulseDistance,
		frameBits: 2, stopBit: true,
		cmdOffset: 0, cmdLen: 2,
		timeoutUS: 6000, // bit pauses are long; keep the ceiling above them
	},
	{
		proto:      ProtoRUWIDO,
		startPulse: 595, startPause: 248,
		unit:       250,
		enc:        encSerial,
		frameBits:  15, minBits: 9,
		addrOffset: 0, addrLen: 9,
		cmdOffset: 9, cmdLen: 6,
	},
	{
		proto:      ProtoIR60,
		startPulse: 528, startPause: 2639,
		unit:       528,
		enc:        encManchester,
		frameBits:  7,
		cmdOffset:  1, cmdLen: 6,
		leader: ProtoGRUNDIG,
	},
	{
		proto:      ProtoKATHREIN,
		startPulse: 210, startPause: 6218,
		bit1Pulse: 210, bit1Pause: 3000,
		bit0Pulse: 210, bit0Pause: 1400,
		enc:       encPulseDistance,
		frameBits: 13, stopBit: true,
		addrOffset: 0, addrLen: 4,
		cmdOffset: 4, cmdLen: 9,
	},
	{
		proto:      ProtoNETBOX,
		startPulse: 2400, startPause: 800,
		unit:       320,
		enc:        encSerial,
		frameBits:  16, minBits: 8,
		lsbFirst:   true,
		addrOffset: 0, addrLen: 4,
		cmdOffset: 4, cmdLen: 12,
	},
	{
		proto:      ProtoNEC16,
		startPulse: 9000, startPause: 4500,
		bit1Pulse: 560, bit1Pause: 1690,
		bit0Pulse: 560, bit0Pause: 560,
		tolMinus: 25, tolPlus: 30,
		enc:       encPulseDistance,
		frameBits: 16, stopBit: true, lsbFirst: true,
		addrOffset: 0, addrLen: 8,
		cmdOffset: 8, cmdLen: 8,
		leader: ProtoNEC,
	},
	{
		proto:      ProtoNEC42,
		startPulse: 9000, startPause: 4500,
		bit1Pulse: 560, bit1Pause: 1690,
		bit0Pulse: 560, bit0Pause: 560,
		tolMinus: 25, tolPlus: 30,
		enc:       encPulseDistance,
		frameBits: 42, stopBit: true, lsbFirst: true,
		addrOffset: 0, addrLen: 13,
		cmdOffset: 26, cmdLen: 8,
		leader: ProtoNEC,
	},
	{
		proto:     ProtoTHOMSON,
		bit1Pulse: 550, bit1Pause: 4500,
		bit0Pulse: 550, bit0Pause: 2000,
		enc:        encPulseDistance,
		noStartBit: true,
		frameBits:  12, stopBit: true,
		addrOffset: 0, addrLen: 4,
		cmdOffset: 4, cmdLen: 8,
	},
	{
		proto:      ProtoBOSE,
		startPulse: 1060, startPause: 1425,
		bit1Pulse: 550, bit1Pause: 1425,
		bit0Pulse: 550, bit0Pause: 437,
		enc:       encPulseDistance,
		frameBits: 16, stopBit: true, lsbFirst: true,
		cmdOffset: 0, cmdLen: 16,
	},
	{
		proto: ProtoA1TVBOX,
		unit:  417,
		enc:   encManchester, manchesterStart: true,
		frameBits:  17,
		addrOffset: 1, addrLen: 8,
		cmdOffset: 9, cmdLen: 8,
	},
	{
		proto:      ProtoORTEK,
		startPulse: 2000, startPause: 1000,
		bit1Pulse: 550, bit1Pause: 1450,
		bit0Pulse: 550, bit0Pause: 550,
		enc:       encPulseDistance,
		frameBits: 14, stopBit: true, // even parity across all 14 bits
		addrOffset: 0, addrLen: 5,
		cmdOffset: 5, cmdLen: 8,
	},
	{
		proto:      ProtoTELEFUNKEN,
		startPulse: 600, startPause: 1500,
		bit1Pulse: 600, bit1Pause: 1500,
		bit0Pulse: 600, bit0Pause: 600,
		enc:       encPulseDistance,
		frameBits: 15, stopBit: true,
		cmdOffset: 0, cmdLen: 15,
	},
	{
		proto:      ProtoROOMBA,
		startPulse: 3000, startPause: 1000,
		bit1Pulse: 3000, bit1Pause: 1000,
		bit0Pulse: 1000, bit0Pause: 3000,
		enc:         encPulseWidth,
		frameBits:   7,
		cmdOffset:   0, cmdLen: 7,
	},
	{
		proto:      ProtoRCMM32,
		startPulse: 416, startPause: 277,
		bit1Pulse: 166,
		quadPause: [4]float64{277, 444, 611, 777},
		tolMinus:  10, tolPlus: 10,
		enc:       encQuadPause,
		frameBits: 32, stopBit: true,
		addrOffset: 0, addrLen: 16,
		cmdOffset: 16, cmdLen: 16,
		lengths: []lengthAlt{
			{12, ProtoRCMM12}, {24, ProtoRCMM24}, {32, ProtoRCMM32},
		},
	},
	{
		proto:      ProtoRCMM24,
		startPulse: 416, startPause: 277,
		bit1Pulse: 166,
		quadPause: [4]float64{277, 444, 611, 777},
		tolMinus:  10, tolPlus: 10,
		enc:       encQuadPause,
		frameBits: 24, stopBit: true,
		addrOffset: 0, addrLen: 12,
		cmdOffset: 12, cmdLen: 12,
		leader: ProtoRCMM32,
	},
	{
		proto:      ProtoRCMM12,
		startPulse: 416, startPause: 277,
		bit1Pulse: 166,
		quadPause: [4]float64{277, 444, 611, 777},
		tolMinus:  10, tolPlus: 10,
		enc:       encQuadPause,
		frameBits: 12, stopBit: true,
		addrOffset: 0, addrLen: 4,
		cmdOffset: 4, cmdLen: 8,
		leader: ProtoRCMM32,
	},
	{
		proto:      ProtoSPEAKER,
		startPulse: 440, startPause: 2250,
		bit1Pulse: 440, bit1Pause: 2250,
		bit0Pulse: 440, bit0Pause: 1050,
		enc:       encPulseDistance,
		frameBits: 10, stopBit: true,
		cmdOffset: 0, cmdLen: 10,
		guaranteedFrames: 2, frameGapMS: 35,
	},
	{
		proto:      ProtoLGAIR,
		startPulse: 9000, startPause: 4500,
		bit1Pulse: 560, bit1Pause: 1690,
		bit0Pulse: 560, bit0Pause: 560,
		tolMinus: 25, tolPlus: 30,
		enc:       encPulseDistance,
		frameBits: 28, stopBit: true, lsbFirst: true,
		addrOffset: 0, addrLen: 8,
		cmdOffset: 8, cmdLen: 16,
		leader: ProtoNEC,
	},
	{
		proto:      ProtoSAMSUNG48,
		startPulse: 4500, startPause: 4500,
		bit1Pulse: 550, bit1Pause: 1650,
		bit0Pulse: 550, bit0Pause: 550,
		enc:       encPulseDistance,
		frameBits: 48, stopBit: true, lsbFirst: true,
		addrOffset: 0, addrLen: 16,
		cmdOffset: 16, cmdLen: 32,
		guaranteedFrames: 2, frameGapMS: 60,
		leader:           ProtoSAMSUNG,
	},
	{
		proto:      ProtoMERLIN,
		startPulse: 600, startPause: 600,
		unit:       600,
		enc:        encSerial,
		frameBits:  24, minBits: 10,
		addrOffset: 0, addrLen: 8,
		cmdOffset: 8, cmdLen: 16,
	},
	{
		proto:      ProtoPENTAX,
		startPulse: 13000, startPause: 3000,
		bit1Pulse: 1000, bit1Pause: 3000,
		bit0Pulse: 1000, bit0Pause: 1000,
		enc:       encPulseDistance,
		frameBits: 6, stopBit: true,
		cmdOffset: 0, cmdLen: 6,
	},
	{
		// Observed FAN remotes disagree on whether a stop bit is sent;
		// the frame is therefore terminated by the darkness ceiling.
		proto:      ProtoFAN,
		startPulse: 1280, startPause: 380,
		bit1Pulse: 1280, bit1Pause: 380,
		bit0Pulse: 380, bit0Pause: 1280,
		enc:         encPulseWidth,
		frameBits:   11,
		cmdOffset:   0, cmdLen: 11,
	},
	{
		proto: ProtoS100,
		unit:  556,
		enc:   encManchester, manchesterStart: true,
		frameBits:  14,
		addrOffset: 3, addrLen: 5,
		cmdOffset: 8, cmdLen: 6,
	},
	{
		proto:      ProtoACP24,
		startPulse: 390, startPause: 950,
		bit1Pulse: 390, bit1Pause: 1300,
		bit0Pulse: 390, bit0Pause: 470,
		enc:       encPulseDistance,
		frameBits: 70, stopBit: true, // oversized raw frame, repacked by the finisher
	},
	{
		proto:      ProtoTECHNICS,
		startPulse: 3488, startPause: 3488,
		bit1Pulse: 872, bit1Pause: 2616,
		bit0Pulse: 872, bit0Pause: 872,
		enc:       encPulseDistance,
		frameBits: 22, stopBit: true, lsbFirst: true,
		cmdOffset: 0, cmdLen: 11,
		addrOffset: 11, addrLen: 11,
	},
	{
		proto:      ProtoPANASONIC,
		startPulse: 3600, startPause: 3600,
		bit1Pulse: 565, bit1Pause: 1693,
		bit0Pulse: 565, bit0Pause: 565,
		enc:       encPulseDistance,
		frameBits: 56, stopBit: true, lsbFirst: true,
		addrOffset: 24, addrLen: 16,
		cmdOffset: 40, cmdLen: 16,
	},
	{
		proto:      ProtoMITSUHEAVY,
		startPulse: 3200, startPause: 1600,
		bit1Pulse: 400, bit1Pause: 1200,
		bit0Pulse: 400, bit0Pause: 400,
		enc:       encPulseDistance,
		frameBits: 64, stopBit: true, lsbFirst: true,
		addrOffset: 0, addrLen: 16,
		cmdOffset: 32, cmdLen: 32, // split words, repacked by the finisher
	},
	{
		proto:      ProtoVINCENT,
		startPulse: 2500, startPause: 4600,
		bit1Pulse: 550, bit1Pause: 1540,
		bit0Pulse: 550, bit0Pause: 550,
		enc:       encPulseDistance,
		frameBits: 32, stopBit: true,
		addrOffset: 0, addrLen: 16,
		cmdOffset: 16, cmdLen: 16,
	},
	{
		proto:      ProtoSAMSUNGAH,
		startPulse: 2500, startPause: 2500,
		bit1Pulse: 550, bit1Pause: 1650,
		bit0Pulse: 550, bit0Pause: 550,
		enc:       encPulseDistance,
		frameBits: 32, stopBit: true, lsbFirst: true,
		addrOffset: 0, addrLen: 16,
		cmdOffset: 16, cmdLen: 16,
	},
	{
		proto:      ProtoIRMP16,
		startPulse: 776, startPause: 271,
		bit1Pulse: 259, bit1Pause: 776,
		bit0Pulse: 259, bit0Pause: 259,
		enc:       encPulseDistance,
		frameBits: 16, stopBit: true, lsbFirst: true,
		cmdOffset: 0, cmdLen: 10,
		addrOffset: 10, addrLen: 6,
	},
	{
		proto:      ProtoGREE,
		startPulse: 6000, startPause: 3000,
		bit1Pulse: 620, bit1Pause: 1600,
		bit0Pulse: 620, bit0Pause: 540,
		enc:       encPulseDistance,
		frameBits: 32, stopBit: true, lsbFirst: true,
		addrOffset: 0, addrLen: 16,
		cmdOffset: 16, cmdLen: 16,
	},
	{
		proto:      ProtoRCII,
		startPulse: 1000, startPause: 5000,
		unit:       1000,
		enc:        encManchester,
		frameBits:  20,
		addrOffset: 1, addrLen: 9,
		cmdOffset: 10, cmdLen: 10,
	},
	{
		proto:      ProtoMETZ,
		startPulse: 870, startPause: 2230,
		bit1Pulse: 435, bit1Pause: 1680,
		bit0Pulse: 435, bit0Pause: 830,
		enc:       encPulseDistance,
		frameBits: 19, stopBit: true, // T A5..A0 ~A5..~A0 C5..C0
		addrOffset: 1, addrLen: 6,
		cmdOffset: 13, cmdLen: 6,
	},
	{
		// NEC framing with a full 16 bit command and no complement;
		// resolved by the NEC finisher.
		proto:      ProtoONKYO,
		startPulse: 9000, startPause: 4500,
		bit1Pulse: 560, bit1Pause: 1690,
		bit0Pulse: 560, bit0Pause: 560,
		tolMinus: 25, tolPlus: 30,
		enc:       encPulseDistance,
		frameBits: 32, stopBit: true, lsbFirst: true,
		addrOffset: 0, addrLen: 16,
		cmdOffset: 16, cmdLen: 16,
		dittoPause: 2250,
		leader:     ProtoNEC,
	},
	{
		proto:      ProtoRFGEN24,
		startPulse: 350, startPause: 10850,
		bit1Pulse: 1050, bit1Pause: 350,
		bit0Pulse: 350, bit0Pause: 1050,
		enc:       encPulseWidth,
		frameBits: 24,
		addrOffset: 0, addrLen: 4,
		cmdOffset: 4, cmdLen: 20,
	},
	{
		proto:      ProtoRFX10,
		startPulse: 4000, startPause: 2000,
		bit1Pulse: 500, bit1Pause: 1500,
		bit0Pulse: 500, bit0Pause: 500,
		enc:       encPulseDistance,
		frameBits: 20, stopBit: true,
		addrOffset: 0, addrLen: 4,
		cmdOffset: 4, cmdLen: 16,
	},
	{
		proto:      ProtoRFMEDION,
		startPulse: 4000, startPause: 2600,
		bit1Pulse: 500, bit1Pause: 1500,
		bit0Pulse: 500, bit0Pause: 500,
		enc:       encPulseDistance,
		frameBits: 20, stopBit: true,
		addrOffset: 0, addrLen: 4,
		cmdOffset: 4, cmdLen: 16,
	},
}
