// ircore captures an infrared burst as timed logic-level steps and decodes
// it into a command word under a brand's pulse-distance protocol constants.
package ircore

import (
	"ir-analyzer-go/errcode"
)

// DefaultCapacity bounds one burst's step count. Sized after the longest
// observed remote bursts with generous headroom.
const DefaultCapacity = 500

// EdgeEvent is one logic-level step: the level that just ended and how long
// it lasted. Immutable once recorded.
type EdgeEvent struct {
	Level      bool   // false = low, true = high
	DurationUS uint32 // elapsed time of the level, microseconds
	Index      uint16 // ordinal position within the burst
}

// BurstBuffer is a bounded, append-only step sequence for one burst.
// It is written only by the capture ISR path; once handed out by
// Session.Complete it is read-only input to Decode.
type BurstBuffer struct {
	events     []EdgeEvent
	overflowed bool
}

// NewBurstBuffer allocates a buffer for up to capacity steps.
func NewBurstBuffer(capacity int) *BurstBuffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &BurstBuffer{events: make([]EdgeEvent, 0, capacity)}
}

// Append records one step. Once the buffer is full it rejects further steps,
// marks itself overflowed and returns errcode.BufferOverflow; it never
// writes past its capacity.
func (b *BurstBuffer) Append(level bool, durationUS uint32) error {
	if b.overflowed || len(b.events) == cap(b.events) {
		b.overflowed = true
		return errcode.BufferOverflow
	}
	b.events = append(b.events, EdgeEvent{
		Level:      level,
		DurationUS: durationUS,
		Index:      uint16(len(b.events)),
	})
	return nil
}

// Reset empties the buffer for the next burst. Callable only while no
// capture is writing into it.
func (b *BurstBuffer) Reset() {
	b.events = b.events[:0]
	b.overflowed = false
}

func (b *BurstBuffer) Count() int       { return len(b.events) }
func (b *BurstBuffer) Overflowed() bool { return b.overflowed }

// At returns the step at index i. i must be < Count.
func (b *BurstBuffer) At(i int) EdgeEvent { return b.events[i] }

// Events exposes the recorded steps. The caller must treat the slice as
// read-only; it aliases the buffer until the next Reset.
func (b *BurstBuffer) Events() []EdgeEvent { return b.events }
