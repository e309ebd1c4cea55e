//go:build !rp2040 && !rp2350

package irtx

import "sync"

// RecordedCarrier captures the gate sequence for host tests and demos.
type RecordedCarrier struct {
	mu     sync.Mutex
	states []bool
}

func (c *RecordedCarrier) On()  { c.record(true) }
func (c *RecordedCarrier) Off() { c.record(false) }

func (c *RecordedCarrier) record(on bool) {
	c.mu.Lock()
	c.states = append(c.states, on)
	c.mu.Unlock()
}

// States returns a copy of the recorded on/off sequence.
func (c *RecordedCarrier) States() []bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]bool(nil), c.states...)
}

// NewDefaultCarrier returns the host stand-in carrier.
func NewDefaultCarrier() Carrier { return &RecordedCarrier{} }
