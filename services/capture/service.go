// Package capture owns the receive session. The receiver ISR appends edges;
// this service polls from normal context, judges when the burst has gone
// quiet, and hands completed bursts to the bus. The ISR and the poller never
// share mutable state beyond the session's atomics.
package capture

import (
	"context"
	"time"

	"ir-analyzer-go/bus"
	"ir-analyzer-go/drivers/vs1838b"
	"ir-analyzer-go/errcode"
	"ir-analyzer-go/ircore"
	"ir-analyzer-go/types"
	"ir-analyzer-go/x/timex"
)

var (
	topicStatus  = bus.Topic{"capture", "status"}
	topicBurst   = bus.Topic{"capture", "burst"}
	topicControl = bus.Topic{"capture", "control", "+"}
	topicConfig  = bus.Topic{"config", "capture"}
)

const (
	defaultQuietMs = 15
	defaultPollMs  = 5
)

// Service supervises one receiver.
type Service struct {
	dev *vs1838b.Device

	quiet time.Duration
	poll  time.Duration

	seq   uint32
	state string
	armed bool
}

// New wraps a configured receiver device.
func New(dev *vs1838b.Device) *Service {
	return &Service{
		dev:   dev,
		quiet: defaultQuietMs * time.Millisecond,
		poll:  defaultPollMs * time.Millisecond,
		state: types.CaptureIdle,
	}
}

// Start subscribes and launches the service loop. Subscriptions are created
// here, not in the loop, so a control message published right after Start
// cannot slip past a not-yet-registered subscription.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	ctrlSub := conn.Subscribe(topicControl)
	cfgSub := conn.Subscribe(topicConfig)
	go s.serviceLoop(ctx, conn, ctrlSub, cfgSub)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, ctrlSub, cfgSub *bus.Subscription) {
	defer conn.Unsubscribe(ctrlSub)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(s.poll)
	defer tick.Stop()

	s.publishState(conn)

	for {
		select {
		case <-ctx.Done():
			_ = s.dev.Stop()
			println("Info: capture service stopping")
			return
		case <-tick.C:
			s.pollSession(conn)
		case msg := <-ctrlSub.Channel():
			s.handleControl(conn, msg)
		case msg := <-cfgSub.Channel():
			s.applyConfig(msg.Payload)
			tick.Reset(s.poll)
		}
	}
}

// pollSession implements idle-quiescence burst completion: a burst is done
// once edges have arrived and none has for the quiet window.
func (s *Service) pollSession(conn *bus.Connection) {
	if !s.armed {
		return
	}
	sess := s.dev.Session()
	count := sess.Count()
	last := sess.LastEdgeUS()

	if sess.Overflowed() {
		// Truncated bursts are discarded, never decoded.
		if timex.NowUs()-last < int64(s.quiet/time.Microsecond) {
			return
		}
		_, _ = sess.Complete()
		println("Warn: capture overflow, burst discarded")
		s.state = types.CaptureOverflow
		s.publishState(conn)
		s.state = types.CaptureArmed
		s.publishState(conn)
		return
	}

	if count == 0 {
		return
	}
	if s.state != types.CaptureActive {
		s.state = types.CaptureActive
		s.publishState(conn)
	}
	if timex.NowUs()-last < int64(s.quiet/time.Microsecond) {
		return
	}

	buf, err := sess.Complete()
	if err != nil {
		s.state = types.CaptureArmed
		s.publishState(conn)
		return
	}

	// Copy out of the session's buffer so the payload outlives the next swap.
	events := append([]ircore.EdgeEvent(nil), buf.Events()...)
	var total uint32
	for _, ev := range events {
		total += ev.DurationUS
	}
	s.seq++
	conn.Publish(conn.NewMessage(topicBurst, &types.BurstEvent{
		Seq:        s.seq,
		Events:     events,
		DurationUS: total,
		TS:         timex.NowMs(),
	}, false))

	s.state = types.CaptureArmed
	s.publishState(conn)
}

func (s *Service) handleControl(conn *bus.Connection, msg *bus.Message) {
	verb, _ := msg.Topic.At(msg.Topic.Len() - 1).(string)
	var err error
	switch verb {
	case "arm":
		err = s.arm()
	case "stop":
		err = s.stop()
	case "reset":
		s.dev.Session().Reset()
	default:
		err = errcode.Unsupported
	}
	if err != nil {
		conn.Reply(msg, &types.ErrorReply{Error: err.Error()}, false)
		return
	}
	s.publishState(conn)
	conn.Reply(msg, &types.OKReply{OK: true}, false)
}

func (s *Service) arm() error {
	if s.armed {
		return errcode.CaptureBusy
	}
	s.dev.Session().Reset()
	if err := s.dev.Start(); err != nil {
		return err
	}
	s.armed = true
	s.state = types.CaptureArmed
	return nil
}

func (s *Service) stop() error {
	if !s.armed {
		return nil
	}
	s.armed = false
	s.state = types.CaptureIdle
	return s.dev.Stop()
}

func (s *Service) applyConfig(payload any) {
	m, ok := payload.(map[string]any)
	if !ok {
		return
	}
	if v, ok := m["quiet_ms"].(float64); ok && v > 0 {
		s.quiet = time.Duration(v) * time.Millisecond
	}
	if v, ok := m["poll_ms"].(float64); ok && v > 0 {
		s.poll = time.Duration(v) * time.Millisecond
	}
}

func (s *Service) publishState(conn *bus.Connection) {
	sess := s.dev.Session()
	conn.Publish(conn.NewMessage(topicStatus, &types.CaptureState{
		State: s.state,
		Steps: sess.Count(),
		Drops: sess.Drops(),
		TS:    timex.NowMs(),
	}, true))
}
