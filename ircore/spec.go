package ircore

import "ir-analyzer-go/errcode"

// ProtocolSpec is the immutable constant set for one remote-control brand's
// pulse-distance protocol. The decode thresholds drive Decode; the nominal
// durations drive Encode (and transmit). Loaded once, never mutated.
type ProtocolSpec struct {
	Name string

	// Decode constants.
	BitCount             uint8  // width of the command word
	ExpectedStepCount    uint16 // normal total step count for a full burst
	WakeupSteps          uint16 // steps in the "get ready" preamble (even)
	SeparatorThresholdUS uint32 // longer than this is a separator, not data
	BitThresholdUS       uint32 // high phase longer than this decodes as "1"
	OneBitUpperMultiple  uint32 // high phase above threshold*multiple is implausible

	// Nominal durations for the encode side, from the brand white papers.
	WakeupLowUS  uint32
	WakeupHighUS uint32
	BitLowUS     uint32
	ZeroHighUS   uint32
	OneHighUS    uint32
}

// Validate reports whether the spec is usable for decoding.
func (p ProtocolSpec) Validate() error {
	switch {
	case p.BitCount == 0 || p.BitCount > 64:
		return &errcode.E{C: errcode.InvalidParams, Op: "spec", Msg: "bit count must be 1..64"}
	case p.WakeupSteps%2 != 0:
		return &errcode.E{C: errcode.InvalidParams, Op: "spec", Msg: "wakeup steps must be even"}
	case p.BitThresholdUS == 0:
		return &errcode.E{C: errcode.InvalidParams, Op: "spec", Msg: "bit threshold must be set"}
	case p.SeparatorThresholdUS <= p.BitThresholdUS:
		return &errcode.E{C: errcode.InvalidParams, Op: "spec", Msg: "separator threshold must exceed bit threshold"}
	}
	return nil
}

// dataSteps is the step index just past the last data bit, the boundary at
// which a separator is expected on full bursts.
func (p ProtocolSpec) dataSteps() int {
	return int(p.WakeupSteps) + 2*int(p.BitCount)
}

// Built-in brand specs, constants taken from the protocol white papers.
var (
	// Memorex MCR 5221. 37.9 kHz carrier, 4450/4450 µs wake-up,
	// bits 475 µs low then 650 µs (zero) or 1750 µs (one) high.
	Memorex = ProtocolSpec{
		Name:                 "memorex_mcr5221",
		BitCount:             32,
		ExpectedStepCount:    73,
		WakeupSteps:          2,
		SeparatorThresholdUS: 10000,
		BitThresholdUS:       750,
		OneBitUpperMultiple:  4,
		WakeupLowUS:          4450,
		WakeupHighUS:         4450,
		BitLowUS:             475,
		ZeroHighUS:           650,
		OneHighUS:            1750,
	}

	// Samsung BN59-00673A. 37.9 kHz carrier, 4450/4450 µs wake-up,
	// bits 550 µs low then 550 µs (zero) or 1675 µs (one) high.
	Samsung = ProtocolSpec{
		Name:                 "samsung_bn5900673a",
		BitCount:             32,
		ExpectedStepCount:    135,
		WakeupSteps:          2,
		SeparatorThresholdUS: 10000,
		BitThresholdUS:       750,
		OneBitUpperMultiple:  4,
		WakeupLowUS:          4450,
		WakeupHighUS:         4450,
		BitLowUS:             550,
		ZeroHighUS:           550,
		OneHighUS:            1675,
	}
)

var builtins = []ProtocolSpec{Memorex, Samsung}

// SpecByName looks up a built-in spec.
func SpecByName(name string) (ProtocolSpec, bool) {
	for _, p := range builtins {
		if p.Name == name {
			return p, true
		}
	}
	return ProtocolSpec{}, false
}

// SpecNames lists the built-in spec names.
func SpecNames() []string {
	out := make([]string, len(builtins))
	for i, p := range builtins {
		out[i] = p.Name
	}
	return out
}
