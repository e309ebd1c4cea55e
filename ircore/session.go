package ircore

import (
	"sync/atomic"

	"ir-analyzer-go/errcode"
)

// Session owns the capture window for one burst at a time.
//
// OnEdge is the ISR path: it must be the only writer and never blocks.
// Readers in normal context may poll Count/LastEdgeUS/Overflowed at any time
// (they are atomics) to implement idle-quiescence, but must call Complete or
// Reset only once they judge the burst finished; the swap is not protected
// against a concurrent OnEdge. This is the same discipline the hardware
// imposes: a burst that is still arriving is not done.
//
// The session is double-buffered: Complete hands the filled buffer out
// read-only and re-arms capture on the other buffer, so the ISR never writes
// into a buffer a decoder is traversing. A handed-out buffer stays valid
// only until the next Complete recycles it; decode (or copy) before then.
type Session struct {
	bufs   [2]*BurstBuffer
	active int

	// ISR-only state.
	primed     bool
	levelStart int64 // µs timestamp of the start of the current level

	// Shared with pollers.
	count      atomic.Uint32
	lastEdgeUS atomic.Int64
	overflow   atomic.Bool
	drops      atomic.Uint32 // edges rejected after overflow
}

// NewSession allocates a double-buffered capture session.
func NewSession(capacity int) *Session {
	return &Session{
		bufs: [2]*BurstBuffer{NewBurstBuffer(capacity), NewBurstBuffer(capacity)},
	}
}

// OnEdge records a hardware level transition. rising reports the direction
// (true: low→high), nowUS is a monotonic microsecond timestamp taken at the
// transition. Safe to call from interrupt context.
//
// The very first transition of a burst only establishes the timing
// reference; it closes no level and appends nothing.
func (s *Session) OnEdge(rising bool, nowUS int64) {
	if !s.primed {
		s.primed = true
		s.levelStart = nowUS
		s.lastEdgeUS.Store(nowUS)
		return
	}
	// A rising edge ends a low level, a falling edge ends a high level.
	endedHigh := !rising
	dur := nowUS - s.levelStart
	if dur < 0 {
		dur = 0
	}

	buf := s.bufs[s.active]
	if err := buf.Append(endedHigh, uint32(dur)); err != nil {
		s.overflow.Store(true)
		s.drops.Add(1)
	} else {
		s.count.Store(uint32(buf.Count()))
	}

	s.levelStart = nowUS
	s.lastEdgeUS.Store(nowUS)
}

// Count reports the steps captured so far in the current burst.
func (s *Session) Count() int { return int(s.count.Load()) }

// LastEdgeUS reports the timestamp of the most recent transition, 0 if none.
// Together with Count it is all a caller needs for idle-quiescence detection.
func (s *Session) LastEdgeUS() int64 { return s.lastEdgeUS.Load() }

// Overflowed reports whether the current burst exceeded capacity.
func (s *Session) Overflowed() bool { return s.overflow.Load() }

// Drops reports how many edges were rejected after overflow.
func (s *Session) Drops() uint32 { return s.drops.Load() }

// Complete ends the capture window and returns the filled buffer read-only.
// Call only after quiescence (no OnEdge in flight). The session swaps to its
// other buffer and re-arms for the next burst.
//
// Returns errcode.NoBurst when nothing was captured, and
// errcode.BufferOverflow (alongside the truncated buffer) when the burst
// overflowed. An overflowed burst must be discarded, not decoded.
func (s *Session) Complete() (*BurstBuffer, error) {
	done := s.bufs[s.active]
	overflowed := s.overflow.Load()

	s.active = 1 - s.active
	s.bufs[s.active].Reset()
	s.rearm()

	if overflowed {
		return done, errcode.BufferOverflow
	}
	if done.Count() == 0 {
		return done, errcode.NoBurst
	}
	return done, nil
}

// Reset discards the current burst without handing it off and re-arms.
// Callable only when no capture is in flight.
func (s *Session) Reset() {
	s.bufs[s.active].Reset()
	s.rearm()
}

func (s *Session) rearm() {
	s.primed = false
	s.levelStart = 0
	s.count.Store(0)
	s.lastEdgeUS.Store(0)
	s.overflow.Store(false)
	s.drops.Store(0)
}
