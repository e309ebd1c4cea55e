// Package console is the interactive front end: a line-oriented command
// shell over any byte stream (USB serial on the device, stdin on the host).
// Commands are tokenized shell-style, so learned button names may be quoted.
package console

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/google/shlex"

	"ir-analyzer-go/bus"
	"ir-analyzer-go/catalog"
	"ir-analyzer-go/ircore"
	"ir-analyzer-go/types"
	"ir-analyzer-go/x/fmtx"
	"ir-analyzer-go/x/strconvx"
)

// Service reads commands and talks to the other services over the bus.
type Service struct {
	in  io.Reader
	out io.Writer

	lastReport *types.DecodeReport
	lastBurst  *types.BurstEvent
}

// New creates a console over the given streams.
func New(in io.Reader, out io.Writer) *Service {
	return &Service{in: in, out: out}
}

// Start launches the reader and dispatcher loops.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	lines := make(chan string, 4)
	go func() {
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		close(lines)
	}()
	// Subscribe before the loop goroutine exists so a report published right
	// after Start is not lost.
	reportSub := conn.Subscribe(bus.Topic{"decode", "report"})
	burstSub := conn.Subscribe(bus.Topic{"capture", "burst"})
	go s.serviceLoop(ctx, conn, lines, reportSub, burstSub)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, lines <-chan string, reportSub, burstSub *bus.Subscription) {
	defer conn.Unsubscribe(reportSub)
	defer conn.Unsubscribe(burstSub)

	s.printf("ir-analyzer console, 'help' lists commands\n")

	for {
		select {
		case <-ctx.Done():
			println("Info: console service stopping")
			return
		case msg := <-reportSub.Channel():
			if r, ok := msg.Payload.(*types.DecodeReport); ok {
				s.lastReport = r
			}
		case msg := <-burstSub.Channel():
			if ev, ok := msg.Payload.(*types.BurstEvent); ok {
				s.lastBurst = ev
			}
		case line, ok := <-lines:
			if !ok {
				println("Info: console input closed")
				return
			}
			s.dispatch(ctx, conn, line)
		}
	}
}

func (s *Service) dispatch(ctx context.Context, conn *bus.Connection, line string) {
	args, err := shlex.Split(line)
	if err != nil {
		s.printf("parse error: %s\n", err.Error())
		return
	}
	if len(args) == 0 {
		return
	}
	switch args[0] {
	case "help":
		s.cmdHelp()
	case "info":
		s.cmdInfo()
	case "protocols":
		s.cmdProtocols()
	case "protocol":
		s.cmdProtocol(ctx, conn, args)
	case "arm":
		s.request(ctx, conn, bus.Topic{"capture", "control", "arm"}, nil)
	case "stop":
		s.request(ctx, conn, bus.Topic{"capture", "control", "stop"}, nil)
	case "last":
		s.cmdLast()
	case "timing":
		s.cmdTiming()
	case "buttons":
		s.cmdButtons(ctx, conn)
	case "learn":
		s.cmdLearn(ctx, conn, args)
	case "forget":
		s.cmdForget(ctx, conn, args)
	case "send":
		s.cmdSend(ctx, conn, args)
	case "raw":
		s.cmdRaw(ctx, conn, args)
	default:
		s.printf("unknown command %q, try 'help'\n", args[0])
	}
}

func (s *Service) cmdHelp() {
	s.printf("commands:\n" +
		"  info                 remote and protocol summary\n" +
		"  protocols            list protocol names\n" +
		"  protocol <name>      select decode protocol\n" +
		"  arm | stop           control the capture window\n" +
		"  last                 show the last decode\n" +
		"  timing               dump step durations of the last burst\n" +
		"  buttons              list builtin and learned buttons\n" +
		"  learn <name>         bind the last decode to a name\n" +
		"  forget <name>        drop a learned binding\n" +
		"  send <button>        replay a button\n" +
		"  raw <proto> <hex>    replay a raw value\n")
}

func (s *Service) cmdInfo() {
	for _, name := range ircore.SpecNames() {
		if cat, ok := catalog.ByProtocol(name); ok {
			s.printf("%s %s  protocol=%s buttons=%d\n", cat.Brand, cat.Model, name, cat.Len())
		} else {
			s.printf("(uncatalogued)  protocol=%s\n", name)
		}
	}
}

func (s *Service) cmdProtocols() {
	for _, name := range ircore.SpecNames() {
		s.printf("  %s\n", name)
	}
}

func (s *Service) cmdProtocol(ctx context.Context, conn *bus.Connection, args []string) {
	if len(args) != 2 {
		s.printf("usage: protocol <name>\n")
		return
	}
	s.request(ctx, conn, bus.Topic{"decode", "protocol", "set"}, args[1])
}

func (s *Service) cmdLast() {
	r := s.lastReport
	if r == nil {
		s.printf("nothing decoded yet\n")
		return
	}
	valid := "valid"
	if !r.Valid {
		valid = "INVALID"
	}
	s.printf("seq=%d proto=%s value=%s steps=%d %s\n", r.Seq, r.Protocol, r.Hex, r.Steps, valid)
	if r.Button != "" {
		s.printf("  %s %s: %s\n", r.Brand, r.Model, r.Button)
	}
	for _, is := range r.Issues {
		s.printf("  issue %s at step %d\n", is.Kind, is.AtStep)
	}
}

func (s *Service) cmdTiming() {
	ev := s.lastBurst
	if ev == nil {
		s.printf("no burst captured yet\n")
		return
	}
	s.printf("burst seq=%d steps=%d total=%dus\n", ev.Seq, len(ev.Events), ev.DurationUS)
	for i, e := range ev.Events {
		level := "low "
		if e.Level {
			level = "high"
		}
		s.printf("  %3d %s %6dus\n", i, level, e.DurationUS)
	}
}

func (s *Service) cmdButtons(ctx context.Context, conn *bus.Connection) {
	for _, name := range ircore.SpecNames() {
		cat, ok := catalog.ByProtocol(name)
		if !ok {
			continue
		}
		s.printf("%s %s:\n", cat.Brand, cat.Model)
		for _, b := range cat.Buttons() {
			s.printf("  %-14s 0x%08X\n", b.Name, b.Value)
		}
	}
	reply, err := s.requestWait(ctx, conn, bus.Topic{"store", "list"}, nil)
	if err != nil {
		return
	}
	if list, ok := reply.Payload.([]types.ButtonEntry); ok && len(list) > 0 {
		s.printf("learned:\n")
		for _, e := range list {
			s.printf("  %-14s 0x%08X %s\n", e.Name, e.Value, e.Protocol)
		}
	}
}

func (s *Service) cmdLearn(ctx context.Context, conn *bus.Connection, args []string) {
	if len(args) != 2 {
		s.printf("usage: learn <name>\n")
		return
	}
	s.request(ctx, conn, bus.Topic{"store", "learn"}, &types.LearnRequest{Name: args[1]})
}

func (s *Service) cmdForget(ctx context.Context, conn *bus.Connection, args []string) {
	if len(args) != 2 {
		s.printf("usage: forget <name>\n")
		return
	}
	s.request(ctx, conn, bus.Topic{"store", "forget"}, args[1])
}

func (s *Service) cmdSend(ctx context.Context, conn *bus.Connection, args []string) {
	if len(args) != 2 {
		s.printf("usage: send <button>\n")
		return
	}
	s.request(ctx, conn, bus.Topic{"replay", "send"}, &types.ReplayRequest{Button: args[1]})
}

func (s *Service) cmdRaw(ctx context.Context, conn *bus.Connection, args []string) {
	if len(args) != 3 {
		s.printf("usage: raw <protocol> <hex>\n")
		return
	}
	value, err := strconvx.ParseUint(args[2], 0, 64)
	if err != nil {
		s.printf("bad value %q\n", args[2])
		return
	}
	s.request(ctx, conn, bus.Topic{"replay", "send"},
		&types.ReplayRequest{Protocol: args[1], Value: value})
}

// request sends and prints the ok/error outcome.
func (s *Service) request(ctx context.Context, conn *bus.Connection, topic bus.Topic, payload any) {
	reply, err := s.requestWait(ctx, conn, topic, payload)
	if err != nil {
		s.printf("error: no reply\n")
		return
	}
	switch p := reply.Payload.(type) {
	case *types.OKReply:
		s.printf("ok\n")
	case *types.ErrorReply:
		s.printf("error: %s\n", p.Error)
	default:
		s.printf("ok\n")
	}
}

func (s *Service) requestWait(ctx context.Context, conn *bus.Connection, topic bus.Topic, payload any) (*bus.Message, error) {
	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return conn.RequestWait(waitCtx, conn.NewMessage(topic, payload, false))
}

func (s *Service) printf(format string, a ...any) {
	fmtx.Fprintf(s.out, format, a...)
}
