// Package vs1838b drives a VS1838B (or compatible TSOP-style) 38 kHz IR
// demodulator. The part idles high and pulls its output low while carrier is
// present, so a remote-control burst arrives as a train of level transitions.
//
// The driver registers a both-edge interrupt and forwards every transition
// into an ircore.Session with a microsecond timestamp. All burst policy
// (quiescence, completion, decode) lives with the session's owner; the
// driver's only job is to never miss an edge.
package vs1838b

import (
	"ir-analyzer-go/errcode"
	"ir-analyzer-go/hal"
	"ir-analyzer-go/ircore"
	"ir-analyzer-go/x/timex"
)

// Device binds one receiver pin to one capture session.
type Device struct {
	pin     hal.IRQPin
	session *ircore.Session
	now     func() int64 // µs clock, swappable in tests
	armed   bool
}

// New creates a receiver on the given pin feeding the given session.
// Call Configure before Start.
func New(pin hal.IRQPin, session *ircore.Session) *Device {
	return &Device{pin: pin, session: session, now: timex.NowUs}
}

// Configure sets the pin up as a pulled-up input. The VS1838B output is
// open-collector style; without the pull-up the idle level floats.
func (d *Device) Configure() error {
	return d.pin.ConfigureInput(hal.PullUp)
}

// Start arms the edge interrupt. From this point the session's OnEdge runs
// in interrupt context on every transition.
func (d *Device) Start() error {
	if d.armed {
		return errcode.Busy
	}
	if err := d.pin.SetIRQ(hal.EdgeBoth, d.onEdge); err != nil {
		return err
	}
	d.armed = true
	return nil
}

// Stop disarms the interrupt. The session keeps whatever it captured.
func (d *Device) Stop() error {
	if !d.armed {
		return nil
	}
	d.armed = false
	return d.pin.ClearIRQ()
}

// Session returns the capture session the device feeds.
func (d *Device) Session() *ircore.Session { return d.session }

// onEdge is the ISR. level is the pin level after the transition, so
// level==true is a rising edge.
func (d *Device) onEdge(level bool) {
	d.session.OnEdge(level, d.now())
}
