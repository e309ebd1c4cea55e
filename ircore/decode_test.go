package ircore

import "testing"

// testSpec returns a spec whose expected step count matches a plain encoded
// burst (wake-up pair + data pairs, no trailing content).
func testSpec(base ProtocolSpec) ProtocolSpec {
	base.ExpectedStepCount = uint16(2 + 2*int(base.BitCount))
	return base
}

func mkBuffer(t *testing.T, events []EdgeEvent) *BurstBuffer {
	t.Helper()
	buf := NewBurstBuffer(DefaultCapacity)
	for _, ev := range events {
		if err := buf.Append(ev.Level, ev.DurationUS); err != nil {
			t.Fatalf("append step %d: %v", ev.Index, err)
		}
	}
	return buf
}

func TestDecode_RoundTrip(t *testing.T) {
	narrow := testSpec(ProtocolSpec{
		Name:                 "narrow16",
		BitCount:             16,
		WakeupSteps:          2,
		SeparatorThresholdUS: 10000,
		BitThresholdUS:       750,
		OneBitUpperMultiple:  4,
		WakeupLowUS:          4450,
		WakeupHighUS:         4450,
		BitLowUS:             500,
		ZeroHighUS:           600,
		OneHighUS:            1700,
	})

	cases := []struct {
		name  string
		spec  ProtocolSpec
		value uint64
	}{
		{"memorex_zero", testSpec(Memorex), 0x00000000},
		{"memorex_ones", testSpec(Memorex), 0xFFFFFFFF},
		{"memorex_mixed", testSpec(Memorex), 0xA5C33C5A},
		{"samsung_mixed", testSpec(Samsung), 0x12345678},
		{"narrow", narrow, 0xBEEF},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			buf := mkBuffer(t, Encode(c.spec, c.value))
			cmd := Decode(buf, c.spec)
			if cmd.Value != c.value {
				t.Fatalf("value = 0x%X, want 0x%X", cmd.Value, c.value)
			}
			if !cmd.Valid {
				t.Fatalf("decode not valid: %+v", cmd.Issues)
			}
			if len(cmd.Issues) != 0 {
				t.Fatalf("unexpected diagnostics: %+v", cmd.Issues)
			}
		})
	}
}

func TestDecode_Idempotent(t *testing.T) {
	spec := testSpec(Memorex)
	buf := mkBuffer(t, Encode(spec, 0x2525609F))

	first := Decode(buf, spec)
	second := Decode(buf, spec)

	if first.Value != second.Value || first.Valid != second.Valid {
		t.Fatalf("decodes differ: %+v vs %+v", first, second)
	}
	if len(first.Issues) != len(second.Issues) {
		t.Fatalf("issue counts differ: %d vs %d", len(first.Issues), len(second.Issues))
	}
	for i := range first.Issues {
		if first.Issues[i] != second.Issues[i] {
			t.Fatalf("issue %d differs: %+v vs %+v", i, first.Issues[i], second.Issues[i])
		}
	}
}

func TestDecode_KnownButtons(t *testing.T) {
	cases := []struct {
		name  string
		spec  ProtocolSpec
		value uint64
	}{
		{"memorex_power", testSpec(Memorex), 0x2525609F},
		{"samsung_power", testSpec(Samsung), 0xE0E040BF},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			buf := mkBuffer(t, Encode(c.spec, c.value))
			cmd := Decode(buf, c.spec)
			if cmd.Value != c.value || !cmd.Valid {
				t.Fatalf("got value=0x%X valid=%t, want value=0x%X valid=true",
					cmd.Value, cmd.Valid, c.value)
			}
		})
	}
}

func TestDecode_ShortByOnePair(t *testing.T) {
	spec := testSpec(Memorex)
	full := Encode(spec, 0x2525609F)
	short := full[:len(full)-2] // drop the last bit pair

	buf := mkBuffer(t, short)
	cmd := Decode(buf, spec)

	wantStep := len(short) // first missing step
	found := false
	for _, is := range cmd.Issues {
		if is.Kind == IssuePrematureTermination {
			found = true
			if is.AtStep != wantStep {
				t.Fatalf("premature termination at step %d, want %d", is.AtStep, wantStep)
			}
		}
	}
	if !found {
		t.Fatal("expected a premature termination diagnostic")
	}
	// All complete pairs decode: 31 of the 32 bits.
	if want := uint64(0x2525609F) >> 1; cmd.Value != want {
		t.Fatalf("value = 0x%X, want 0x%X", cmd.Value, want)
	}
}

func TestDecode_BitThresholdTie(t *testing.T) {
	spec := testSpec(Memorex)
	events := []EdgeEvent{
		{Level: false, DurationUS: spec.WakeupLowUS},
		{Level: true, DurationUS: spec.WakeupHighUS},
	}
	// 32 high phases exactly at the threshold: every bit must decode as 0.
	for i := 0; i < int(spec.BitCount); i++ {
		events = append(events,
			EdgeEvent{Level: false, DurationUS: spec.BitLowUS},
			EdgeEvent{Level: true, DurationUS: spec.BitThresholdUS})
	}
	cmd := Decode(mkBuffer(t, events), spec)
	if cmd.Value != 0 {
		t.Fatalf("threshold tie decoded as 0x%X, want 0", cmd.Value)
	}
	if !cmd.Valid {
		t.Fatalf("decode not valid: %+v", cmd.Issues)
	}
}

func TestDecode_SeparatorTruncates(t *testing.T) {
	spec := testSpec(Memorex)
	events := []EdgeEvent{
		{Level: false, DurationUS: 4450}, // wake-up pair
		{Level: true, DurationUS: 4450},
		{Level: false, DurationUS: 475}, // bit 1: one
		{Level: true, DurationUS: 1750},
		{Level: false, DurationUS: 475}, // third pair: separator-length high
		{Level: true, DurationUS: 15000},
	}
	cmd := Decode(mkBuffer(t, events), spec)

	var pt *Issue
	for i := range cmd.Issues {
		if cmd.Issues[i].Kind == IssuePrematureTermination {
			pt = &cmd.Issues[i]
		}
	}
	if pt == nil {
		t.Fatal("expected premature termination")
	}
	if pt.AtStep != 4 {
		t.Fatalf("premature termination at step %d, want 4", pt.AtStep)
	}
	if cmd.Value != 1 {
		t.Fatalf("accumulated value = 0x%X, want 0x1", cmd.Value)
	}
}

func TestDecode_TrailingStepsAfterSeparator(t *testing.T) {
	// The real Memorex shape: 66 data steps, then a separator and a partial
	// repeat, 73 steps in total. The separator sits exactly at the data
	// boundary, so the burst is valid and trailing steps stay out of the value.
	spec := Memorex
	events := Encode(spec, 0x2525609F)
	events = append(events,
		EdgeEvent{Level: false, DurationUS: 475},
		EdgeEvent{Level: true, DurationUS: 23000}, // separator gap
		EdgeEvent{Level: false, DurationUS: 4450},
		EdgeEvent{Level: true, DurationUS: 4450},
		EdgeEvent{Level: false, DurationUS: 475},
		EdgeEvent{Level: true, DurationUS: 650},
		EdgeEvent{Level: false, DurationUS: 475},
	)
	if len(events) != int(spec.ExpectedStepCount) {
		t.Fatalf("test burst has %d steps, want %d", len(events), spec.ExpectedStepCount)
	}

	cmd := Decode(mkBuffer(t, events), spec)
	if cmd.Value != 0x2525609F {
		t.Fatalf("value = 0x%X, want 0x2525609F", cmd.Value)
	}
	if !cmd.Valid {
		t.Fatalf("decode not valid: %+v", cmd.Issues)
	}
	if !cmd.HasIssue(IssuePrematureTermination) {
		t.Fatal("expected the boundary separator to be recorded")
	}
	if cmd.HasIssue(IssueStepCountMismatch) {
		t.Fatalf("unexpected step count mismatch: %+v", cmd.Issues)
	}
}

func TestDecode_LowHalfAnomaly(t *testing.T) {
	spec := testSpec(Memorex)
	events := Encode(spec, 0x2525609F)
	events[2].DurationUS = 1200 // first data bit's low half, too long

	cmd := Decode(mkBuffer(t, events), spec)
	if !cmd.HasIssue(IssueBitLevelAnomaly) {
		t.Fatal("expected a bit level anomaly")
	}
	if cmd.Valid {
		t.Fatal("anomalous burst must not be valid")
	}
	// The anomaly is on the low half; the value itself is unaffected.
	if cmd.Value != 0x2525609F {
		t.Fatalf("value = 0x%X, want 0x2525609F", cmd.Value)
	}
}

func TestDecode_ImplausiblyLongOne(t *testing.T) {
	spec := testSpec(Memorex)
	events := Encode(spec, 0x80000000)
	// First data bit is a one; stretch it past threshold*multiple but under
	// the separator threshold.
	events[3].DurationUS = 3500

	cmd := Decode(mkBuffer(t, events), spec)
	if !cmd.HasIssue(IssueBitLevelAnomaly) {
		t.Fatal("expected a bit level anomaly for the stretched one bit")
	}
	if cmd.Valid {
		t.Fatal("anomalous burst must not be valid")
	}
	// Lenient policy: the bit still decodes as a one.
	if cmd.Value != 0x80000000 {
		t.Fatalf("value = 0x%X, want 0x80000000", cmd.Value)
	}
}

func TestDecode_StepCountMismatch(t *testing.T) {
	spec := Memorex // expects 73 steps
	buf := mkBuffer(t, Encode(spec, 0x2525609F))
	cmd := Decode(buf, spec)

	if !cmd.HasIssue(IssueStepCountMismatch) {
		t.Fatalf("expected a step count mismatch, got %+v", cmd.Issues)
	}
	if cmd.Valid {
		t.Fatal("seven missing steps must not pass validation")
	}
	for _, is := range cmd.Issues {
		if is.Kind == IssueStepCountMismatch {
			if is.Expected != 73 || is.Actual != 66 {
				t.Fatalf("mismatch expected/actual = %d/%d, want 73/66", is.Expected, is.Actual)
			}
		}
	}
}

func TestCommand_HexValueWidth(t *testing.T) {
	spec := testSpec(Samsung)
	cmd := Decode(mkBuffer(t, Encode(spec, 0xE0E040BF)), spec)
	if got := cmd.HexValue(); got != "E0E040BF" {
		t.Fatalf("HexValue = %q, want %q", got, "E0E040BF")
	}

	wide := Command{Value: 0xE0E040BF, Bits: 48}
	if got := wide.HexValue(); got != "00000000E0E040BF" {
		t.Fatalf("wide HexValue = %q, want %q", got, "00000000E0E040BF")
	}
}

func TestSpec_Validate(t *testing.T) {
	for _, p := range []ProtocolSpec{Memorex, Samsung} {
		if err := p.Validate(); err != nil {
			t.Fatalf("%s: %v", p.Name, err)
		}
	}

	bad := Memorex
	bad.WakeupSteps = 3
	if err := bad.Validate(); err == nil {
		t.Fatal("odd wakeup step count must not validate")
	}

	bad = Memorex
	bad.SeparatorThresholdUS = 500
	if err := bad.Validate(); err == nil {
		t.Fatal("separator below bit threshold must not validate")
	}
}

func TestSpecByName(t *testing.T) {
	if _, ok := SpecByName("memorex_mcr5221"); !ok {
		t.Fatal("memorex spec missing")
	}
	if _, ok := SpecByName("nope"); ok {
		t.Fatal("unknown name must not resolve")
	}
}
