package ircore

// Encode renders a command word as the step sequence a remote would emit
// under the spec: the wake-up pair followed by BitCount low/high pairs, most
// significant bit first. It is the inverse of Decode over anomaly-free
// bursts and drives the transmit path.
func Encode(spec ProtocolSpec, value uint64) []EdgeEvent {
	steps := make([]EdgeEvent, 0, 2+2*int(spec.BitCount))
	add := func(level bool, durationUS uint32) {
		steps = append(steps, EdgeEvent{
			Level:      level,
			DurationUS: durationUS,
			Index:      uint16(len(steps)),
		})
	}

	add(false, spec.WakeupLowUS)
	add(true, spec.WakeupHighUS)

	for bit := int(spec.BitCount) - 1; bit >= 0; bit-- {
		add(false, spec.BitLowUS)
		if value>>uint(bit)&1 == 1 {
			add(true, spec.OneHighUS)
		} else {
			add(true, spec.ZeroHighUS)
		}
	}
	return steps
}

// EncodeToBuffer writes an encoded burst straight into a BurstBuffer,
// as if it had been captured off the air.
func EncodeToBuffer(spec ProtocolSpec, value uint64, buf *BurstBuffer) error {
	for _, ev := range Encode(spec, value) {
		if err := buf.Append(ev.Level, ev.DurationUS); err != nil {
			return err
		}
	}
	return nil
}
