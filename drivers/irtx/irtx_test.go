//go:build !rp2040 && !rp2350

package irtx

import (
	"testing"
	"time"

	"ir-analyzer-go/ircore"
)

func newTestDevice() (*Device, *RecordedCarrier, *[]time.Duration) {
	rec := &RecordedCarrier{}
	dev := New(rec)
	var sleeps []time.Duration
	dev.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return dev, rec, &sleeps
}

func TestPlay_GatesCarrierPerStep(t *testing.T) {
	dev, rec, sleeps := newTestDevice()

	burst := []ircore.EdgeEvent{
		{Level: false, DurationUS: 4450},
		{Level: true, DurationUS: 4450},
		{Level: false, DurationUS: 475},
		{Level: true, DurationUS: 650},
	}
	if err := dev.Play(burst); err != nil {
		t.Fatalf("Play: %v", err)
	}

	// on, off, on, off, plus the trailing safety off.
	want := []bool{true, false, true, false, false}
	got := rec.States()
	if len(got) != len(want) {
		t.Fatalf("states = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("state[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if len(*sleeps) != len(burst) {
		t.Fatalf("sleeps = %d, want %d", len(*sleeps), len(burst))
	}
	if (*sleeps)[0] != 4450*time.Microsecond {
		t.Fatalf("sleep[0] = %v", (*sleeps)[0])
	}
}

func TestPlayValue_RoundTripsThroughDecode(t *testing.T) {
	dev, _, sleeps := newTestDevice()

	spec := ircore.Memorex
	spec.ExpectedStepCount = uint16(2 + 2*int(spec.BitCount))

	const volUp = 0x25259B64
	if err := dev.PlayValue(spec, volUp); err != nil {
		t.Fatalf("PlayValue: %v", err)
	}
	if got, want := len(*sleeps), int(spec.ExpectedStepCount); got != want {
		t.Fatalf("step count = %d, want %d", got, want)
	}

	// Rebuild the burst from the sleep timeline and decode it back.
	buf := ircore.NewBurstBuffer(len(*sleeps))
	for i, d := range *sleeps {
		level := i%2 == 1 // bursts open with a mark (low)
		if err := buf.Append(level, uint32(d/time.Microsecond)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	cmd := ircore.Decode(buf, spec)
	if !cmd.Valid {
		t.Fatalf("decode invalid, issues: %+v", cmd.Issues)
	}
	if cmd.Value != volUp {
		t.Fatalf("Value = %#x, want %#x", cmd.Value, volUp)
	}
}

func TestPlay_EmptyBurstRejected(t *testing.T) {
	dev, _, _ := newTestDevice()
	if err := dev.Play(nil); err == nil {
		t.Fatal("Play(nil) succeeded, want error")
	}
}
