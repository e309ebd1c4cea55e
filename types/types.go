// Package types holds the payload structs exchanged over the bus. Keeping
// them in one dependency-light package lets MCU and host builds share the
// schema.
package types

import "ir-analyzer-go/ircore"

// ---- Capture ----

// CaptureState values for State.
const (
	CaptureIdle     = "idle"
	CaptureArmed    = "armed"
	CaptureActive   = "capturing"
	CaptureOverflow = "overflow"
)

// CaptureState is retained on capture/status.
type CaptureState struct {
	State string `json:"state"`
	Steps int    `json:"steps"`
	Drops uint32 `json:"drops,omitempty"`
	TS    int64  `json:"ts_ms"`
}

// BurstEvent is published on capture/burst when a capture window closes.
// Events is a copy owned by the payload; receivers may hold it.
type BurstEvent struct {
	Seq        uint32             `json:"seq"`
	Events     []ircore.EdgeEvent `json:"events"`
	DurationUS uint32             `json:"duration_us"`
	TS         int64              `json:"ts_ms"`
}

// ---- Decode ----

// IssueInfo mirrors one decode diagnostic in wire-friendly form.
type IssueInfo struct {
	Kind       string `json:"kind"`
	AtStep     int    `json:"at_step"`
	DurationUS uint32 `json:"duration_us,omitempty"`
}

// DecodeReport is retained on decode/report after each burst.
type DecodeReport struct {
	Seq      uint32      `json:"seq"`
	Protocol string      `json:"protocol"`
	Value    uint64      `json:"value"`
	Hex      string      `json:"hex"`
	Valid    bool        `json:"valid"`
	Issues   []IssueInfo `json:"issues,omitempty"`
	Steps    int         `json:"steps"`
	// Button identification, empty when the value is unknown.
	Brand  string `json:"brand,omitempty"`
	Model  string `json:"model,omitempty"`
	Button string `json:"button,omitempty"`
	TS     int64  `json:"ts_ms"`
}

// ---- Button store ----

// ButtonEntry is one learned or builtin button binding.
type ButtonEntry struct {
	Protocol string `json:"protocol"`
	Value    uint64 `json:"value"`
	Name     string `json:"name"`
}

// StoreState is retained on store/status.
type StoreState struct {
	Learned int   `json:"learned"`
	TS      int64 `json:"ts_ms"`
}

// LearnRequest binds the next (or last) decoded value to a name.
type LearnRequest struct {
	Name string `json:"name"`
}

// ---- Replay ----

// ReplayRequest transmits a burst. Either Button names a stored entry, or
// Protocol+Value give the raw command.
type ReplayRequest struct {
	Button   string `json:"button,omitempty"`
	Protocol string `json:"protocol,omitempty"`
	Value    uint64 `json:"value,omitempty"`
}

// ---- Generic replies ----

type OKReply struct {
	OK bool `json:"ok"`
}

type ErrorReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
