// Package irtx replays encoded IR bursts through a 38 kHz carrier.
//
// A burst captured from a demodulated receiver describes line levels: a low
// step means carrier present (mark), a high step means carrier absent
// (space). Play walks the step list and gates the carrier accordingly.
package irtx

import (
	"time"

	"ir-analyzer-go/errcode"
	"ir-analyzer-go/ircore"
)

// Carrier gates a modulated IR output. On rp2 builds this is a PWM slice at
// the carrier frequency; on host builds a recorder stands in.
type Carrier interface {
	On()
	Off()
}

// CarrierHz is the modulation frequency consumer remotes use.
const CarrierHz = 38_000

// Device replays bursts on one carrier.
type Device struct {
	carrier Carrier
	sleep   func(time.Duration) // swappable in tests
	busy    bool
}

// New wraps a configured carrier.
func New(c Carrier) *Device {
	return &Device{carrier: c, sleep: time.Sleep}
}

// Play transmits the steps in order and leaves the carrier off. The step
// levels are demodulated line levels, so a low step turns the carrier on.
// Blocks for the burst's total duration; rejects re-entry.
func (d *Device) Play(events []ircore.EdgeEvent) error {
	if d.busy {
		return errcode.Busy
	}
	if len(events) == 0 {
		return errcode.NoBurst
	}
	d.busy = true
	defer func() {
		d.carrier.Off()
		d.busy = false
	}()

	for _, ev := range events {
		if ev.Level {
			d.carrier.Off()
		} else {
			d.carrier.On()
		}
		d.sleep(time.Duration(ev.DurationUS) * time.Microsecond)
	}
	return nil
}

// PlayValue encodes value under spec and transmits it.
func (d *Device) PlayValue(spec ircore.ProtocolSpec, value uint64) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	return d.Play(ircore.Encode(spec, value))
}
