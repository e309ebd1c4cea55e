// Package report streams analyzer activity as tagged text lines, one event
// per line, for a serial monitor or log collector on the other end. On rp2
// builds the sink is a UART; on host builds it defaults to stdout.
package report

import (
	"context"
	"io"

	"ir-analyzer-go/bus"
	"ir-analyzer-go/types"
	"ir-analyzer-go/x/fmtx"
	"ir-analyzer-go/x/strx"
)

var (
	topicReport = bus.Topic{"decode", "report"}
	topicStatus = bus.Topic{"capture", "status"}
)

// Service writes one line per bus event.
type Service struct {
	sink io.Writer
}

// New wraps a line sink.
func New(sink io.Writer) *Service {
	return &Service{sink: sink}
}

// Start launches the service loop.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	// Subscribe before the loop goroutine exists so a report published right
	// after Start is not lost.
	reportSub := conn.Subscribe(topicReport)
	statusSub := conn.Subscribe(topicStatus)
	go s.serviceLoop(ctx, conn, reportSub, statusSub)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, reportSub, statusSub *bus.Subscription) {
	defer conn.Unsubscribe(reportSub)
	defer conn.Unsubscribe(statusSub)

	for {
		select {
		case <-ctx.Done():
			println("Info: report service stopping")
			return
		case msg := <-reportSub.Channel():
			if r, ok := msg.Payload.(*types.DecodeReport); ok {
				s.writeReport(r)
			}
		case msg := <-statusSub.Channel():
			if st, ok := msg.Payload.(*types.CaptureState); ok {
				s.writeStatus(st)
			}
		}
	}
}

func (s *Service) writeReport(r *types.DecodeReport) {
	if r.Valid {
		fmtx.Fprintf(s.sink, "DECODE seq=%d proto=%s value=%s button=%s steps=%d\n",
			r.Seq, r.Protocol, r.Hex, strx.Coalesce(r.Button, "?"), r.Steps)
		return
	}
	issue := "none"
	if len(r.Issues) > 0 {
		issue = r.Issues[0].Kind
	}
	fmtx.Fprintf(s.sink, "REJECT seq=%d proto=%s value=%s steps=%d issue=%s\n",
		r.Seq, r.Protocol, r.Hex, r.Steps, issue)
}

func (s *Service) writeStatus(st *types.CaptureState) {
	fmtx.Fprintf(s.sink, "STATE state=%s steps=%d drops=%d\n", st.State, st.Steps, st.Drops)
}
