package ircore

import (
	"ir-analyzer-go/x/conv"
	"ir-analyzer-go/x/mathx"
)

// IssueKind tags one decode diagnostic.
type IssueKind uint8

const (
	// IssuePrematureTermination: a separator-length duration (or running out
	// of steps) ended the data before the full bit count.
	IssuePrematureTermination IssueKind = iota
	// IssueBitLevelAnomaly: a phase duration inconsistent with its role,
	// such as a "one" high phase implausibly long.
	IssueBitLevelAnomaly
	// IssueStepCountMismatch: the burst's total step count disagrees with
	// the spec and no separator explains the difference.
	IssueStepCountMismatch
)

// Issue is one decode diagnostic. AtStep is set for the first two kinds,
// DurationUS for anomalies, Expected/Actual for step-count mismatches.
type Issue struct {
	Kind       IssueKind
	AtStep     int
	DurationUS uint32
	Expected   int
	Actual     int
}

func (k IssueKind) String() string {
	switch k {
	case IssuePrematureTermination:
		return "premature_termination"
	case IssueBitLevelAnomaly:
		return "bit_level_anomaly"
	case IssueStepCountMismatch:
		return "step_count_mismatch"
	default:
		return "unknown"
	}
}

// Command is the result of one decode: the best-effort command word, a
// validity summary, and the diagnostics behind it. Produced fresh per call,
// never mutated afterward.
type Command struct {
	Value  uint64
	Bits   uint8
	Valid  bool
	Issues []Issue
}

// HexValue renders the command word as zero-padded uppercase hex, sized to
// the protocol's bit count: 8 digits up to 32 bits, 16 above.
func (c Command) HexValue() string {
	var buf [16]byte
	if c.Bits > 0 && c.Bits <= 32 {
		return string(conv.U32Hex(buf[:8], uint32(c.Value)))
	}
	return string(conv.U64Hex(buf[:], c.Value))
}

// HasIssue reports whether any diagnostic of the given kind was recorded.
func (c Command) HasIssue(kind IssueKind) bool {
	for _, is := range c.Issues {
		if is.Kind == kind {
			return true
		}
	}
	return false
}

// Decode walks one captured burst under a brand spec and produces the
// command word. Steps are consumed two at a time after skipping the wake-up
// preamble, a low half and a high half per logical bit. The high
// phase's duration decides the bit: longer than BitThresholdUS is a "1",
// anything else (ties included) a "0".
//
// Decode never fails: every anomaly is recorded as a diagnostic on the
// returned Command and Valid summarises them. It is a pure function of its
// inputs and reads at most Count steps.
func Decode(buf *BurstBuffer, spec ProtocolSpec) Command {
	var (
		value       uint64
		issues      []Issue
		premature   bool
		prematureAt int
		anomaly     bool
	)

	count := buf.Count()
	wakeup := int(spec.WakeupSteps)
	bitCount := int(spec.BitCount)

	for step := 0; step+1 < count; step += 2 {
		if step < wakeup {
			// "Get ready" preamble: not data, skip both halves.
			continue
		}
		bitNumber := (step-wakeup)/2 + 1
		lo := buf.At(step)
		hi := buf.At(step + 1)

		// A separator-length duration means we passed the last valid value
		// of the stream; stop consuming steps as data.
		if lo.DurationUS > spec.SeparatorThresholdUS || hi.DurationUS > spec.SeparatorThresholdUS {
			premature = true
			prematureAt = step
			issues = append(issues, Issue{Kind: IssuePrematureTermination, AtStep: step})
			break
		}

		if bitNumber <= bitCount {
			value <<= 1
			if hi.DurationUS > spec.BitThresholdUS {
				value |= 1
				// Implausibly long for a genuine "one": flag, keep the bit.
				if m := spec.OneBitUpperMultiple; m > 0 && hi.DurationUS > spec.BitThresholdUS*m {
					anomaly = true
					issues = append(issues, Issue{Kind: IssueBitLevelAnomaly, AtStep: step + 1, DurationUS: hi.DurationUS})
				}
			}
			// The first (low) half carries no bit value and is always short.
			if lo.DurationUS > spec.BitThresholdUS {
				anomaly = true
				issues = append(issues, Issue{Kind: IssueBitLevelAnomaly, AtStep: step, DurationUS: lo.DurationUS})
			}
		}
		// bitNumber > bitCount: trailing steps (e.g. a repeated preamble);
		// they are not folded into the value.
	}

	// Running out of steps before the full data width is also premature
	// termination, at the first step that is missing.
	if !premature && count < spec.dataSteps() {
		premature = true
		prematureAt = count &^ 1
		issues = append(issues, Issue{Kind: IssuePrematureTermination, AtStep: prematureAt})
	}

	// A separator exactly at the data boundary is the expected shape for
	// bursts that carry trailing content; it explains any count difference.
	sepAtBoundary := premature && prematureAt == spec.dataSteps()

	expected := int(spec.ExpectedStepCount)
	delta := mathx.Abs(count - expected)
	if count != expected && !sepAtBoundary {
		issues = append(issues, Issue{Kind: IssueStepCountMismatch, Expected: expected, Actual: count})
	}

	valid := !anomaly && (delta <= 2 || sepAtBoundary)

	return Command{Value: value, Bits: spec.BitCount, Valid: valid, Issues: issues}
}
