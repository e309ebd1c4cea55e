package report

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"ir-analyzer-go/bus"
	"ir-analyzer-go/types"
)

type lockedBuf struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuf) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuf) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, buf *lockedBuf, want string) string {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if s := buf.String(); strings.Contains(s, want) {
			return s
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("sink never contained %q, got %q", want, buf.String())
	return ""
}

func startRig(t *testing.T) (*bus.Connection, *lockedBuf) {
	t.Helper()
	b := bus.NewBus(16)
	sink := &lockedBuf{}
	svc := New(sink)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := svc.Start(ctx, b.NewConnection("report")); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return b.NewConnection("test"), sink
}

func TestValidReportLine(t *testing.T) {
	cli, sink := startRig(t)

	cli.Publish(cli.NewMessage(bus.Topic{"decode", "report"}, &types.DecodeReport{
		Seq: 7, Protocol: "memorex_mcr5221", Hex: "0x2525609F",
		Valid: true, Button: "Power", Steps: 66,
	}, false))

	line := waitFor(t, sink, "DECODE")
	for _, frag := range []string{"seq=7", "proto=memorex_mcr5221", "value=0x2525609F", "button=Power", "steps=66"} {
		if !strings.Contains(line, frag) {
			t.Fatalf("line %q missing %q", line, frag)
		}
	}
}

func TestInvalidReportLine(t *testing.T) {
	cli, sink := startRig(t)

	cli.Publish(cli.NewMessage(bus.Topic{"decode", "report"}, &types.DecodeReport{
		Seq: 8, Protocol: "samsung_bn5900673a", Hex: "0x0", Valid: false, Steps: 12,
		Issues: []types.IssueInfo{{Kind: "premature_termination", AtStep: 12}},
	}, false))

	line := waitFor(t, sink, "REJECT")
	if !strings.Contains(line, "issue=premature_termination") {
		t.Fatalf("line %q missing issue", line)
	}
}

func TestStatusLine(t *testing.T) {
	cli, sink := startRig(t)

	cli.Publish(cli.NewMessage(bus.Topic{"capture", "status"}, &types.CaptureState{
		State: types.CaptureArmed, Steps: 0,
	}, false))

	waitFor(t, sink, "STATE state=armed")
}
