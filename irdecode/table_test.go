package irdecode

import (
	"errors"
	"testing"
)

func TestNewTableTickRateRange(t *testing.T) {
	if _, err := NewTable(1000, nil); err == nil {
		t.Fatal("expected error for 1000 Hz")
	}
	if _, err := NewTable(200000, nil); err == nil {
		t.Fatal("expected error for 200000 Hz")
	}
	if _, err := NewTable(15000, nil); err != nil {
		t.Fatalf("15000 Hz: %v", err)
	}
}

func TestNewTableUnknownProtocol(t *testing.T) {
	if _, err := NewTable(15000, []Protocol{Protocol(250)}); err == nil {
		t.Fatal("expected error for unknown protocol id")
	}
	if _, err := NewTable(15000, []Protocol{ProtoUnknown}); err == nil {
		t.Fatal("expected error for the unknown sentinel")
	}
}

func TestNewTableEmptySet(t *testing.T) {
	if _, err := NewTable(15000, []Protocol{}); err == nil {
		t.Fatal("expected error for empty protocol set")
	}
}

func TestAllProtocolsDefaultBuilds(t *testing.T) {
	// The implicit all-protocols set must construct at the typical rates;
	// protocols the rate cannot represent are skipped, not fatal.
	tbl, err := NewTable(15000, nil)
	if err != nil {
		t.Fatal(err)
	}
	skipped := make(map[Protocol]bool)
	for _, p := range tbl.SkippedProtocols() {
		skipped[p] = true
	}
	if !skipped[ProtoRCMM32] {
		t.Fatal("RCMM32 not skipped at 15000 Hz")
	}
	if tbl.Enabled(ProtoRCMM32) {
		t.Fatal("RCMM32 enabled despite being skipped")
	}
	if !tbl.Enabled(ProtoNEC) || !tbl.Enabled(ProtoRC5) {
		t.Fatal("default set is missing common protocols")
	}

	tbl, err = NewTable(40000, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !tbl.Enabled(ProtoRCMM32) {
		t.Fatal("RCMM32 missing from the default set at 40000 Hz")
	}

	// An explicitly requested protocol still fails hard.
	if _, err := NewTable(15000, []Protocol{ProtoRCMM32}); err == nil {
		t.Fatal("explicit RCMM32 at 15000 Hz built")
	}
}

func TestStartCeilingCoversBareOpenPauses(t *testing.T) {
	// DENON and THOMSON open directly with a data bit, so their first
	// data pause is measured against the start ceiling.
	for _, p := range []Protocol{ProtoDENON, ProtoTHOMSON} {
		tbl, err := NewTable(15000, []Protocol{p})
		if err != nil {
			t.Fatal(err)
		}
		if m := maxDataPause(tbl.byProto[p]); tbl.startCeiling < m {
			t.Errorf("%s: start ceiling %d below longest data pause %d",
				p, tbl.startCeiling, m)
		}
	}
}

func TestRCMMNeedsHighTickRate(t *testing.T) {
	// The four RCMM pause widths collapse into each other below roughly
	// 20 kHz.
	_, err := NewTable(10000, []Protocol{ProtoRCMM32})
	var cfg *ConfigError
	if !errors.As(err, &cfg) {
		t.Fatalf("want ConfigError, got %v", err)
	}
	if cfg.Proto != ProtoRCMM32 {
		t.Fatalf("ConfigError names %s", cfg.Proto)
	}
	if _, err := NewTable(40000, []Protocol{ProtoRCMM32}); err != nil {
		t.Fatalf("40000 Hz: %v", err)
	}
}

func TestShortPulseRejected(t *testing.T) {
	// RECS80's 158 us pulse is under two ticks at 5 kHz.
	_, err := NewTable(5000, []Protocol{ProtoRECS80})
	var cfg *ConfigError
	if !errors.As(err, &cfg) {
		t.Fatalf("want ConfigError, got %v", err)
	}
}

func TestEnabledProtocols(t *testing.T) {
	tbl, err := NewTable(15000, []Protocol{ProtoNEC, ProtoRC5})
	if err != nil {
		t.Fatal(err)
	}
	if !tbl.Enabled(ProtoNEC) || !tbl.Enabled(ProtoRC5) {
		t.Fatal("requested protocols not enabled")
	}
	if tbl.Enabled(ProtoSIRCS) {
		t.Fatal("SIRCS enabled without being requested")
	}
	got := tbl.EnabledProtocols()
	if len(got) != 2 || got[0] != ProtoNEC || got[1] != ProtoRC5 {
		t.Fatalf("EnabledProtocols = %v", got)
	}
}

func TestWindowInclusiveBounds(t *testing.T) {
	tbl, err := NewTable(15000, []Protocol{ProtoNEC})
	if err != nil {
		t.Fatal(err)
	}
	w := tbl.byProto[ProtoNEC].bit1Pulse
	if !w.contains(w.min) || !w.contains(w.max) {
		t.Fatal("window bounds must be inclusive")
	}
	if w.contains(w.min-1) || w.contains(w.max+1) {
		t.Fatal("window accepts values outside its bounds")
	}
	if w.min < 1 {
		t.Fatal("window lower bound below one tick")
	}
}

func TestTimeoutClearsDataPauses(t *testing.T) {
	tbl, err := NewTable(15000, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range tbl.descs {
		if m := maxDataPause(d); d.timeout <= m {
			t.Errorf("%s: timeout %d does not clear longest data pause %d",
				d.proto, d.timeout, m)
		}
	}
}

func TestProtocolNames(t *testing.T) {
	for _, p := range AllProtocols() {
		name := p.String()
		if name == "" || name == "UNKNOWN" {
			t.Fatalf("protocol %d has no name", p)
		}
		if back := ProtocolByName(name); back != p {
			t.Fatalf("ProtocolByName(%q) = %v", name, back)
		}
	}
	if ProtocolByName("NO-SUCH") != ProtoUnknown {
		t.Fatal("ProtocolByName accepted an unknown name")
	}
}
