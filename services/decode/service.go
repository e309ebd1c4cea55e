// Package decode turns completed bursts into command reports. Each burst is
// decoded under the active protocol, looked up against the button catalogs,
// and published as a retained report so late subscribers see the last result.
package decode

import (
	"context"

	"ir-analyzer-go/bus"
	"ir-analyzer-go/catalog"
	"ir-analyzer-go/errcode"
	"ir-analyzer-go/ircore"
	"ir-analyzer-go/types"
	"ir-analyzer-go/x/timex"
)

var (
	topicBurst    = bus.Topic{"capture", "burst"}
	topicReport   = bus.Topic{"decode", "report"}
	topicProtocol = bus.Topic{"decode", "protocol", "set"}
	topicConfig   = bus.Topic{"config", "decode"}
)

// Service decodes bursts under one active protocol at a time.
type Service struct {
	spec     ircore.ProtocolSpec
	catalogs []*catalog.Catalog
}

// New creates the service with the given starting protocol and the catalogs
// to identify buttons against.
func New(spec ircore.ProtocolSpec, catalogs ...*catalog.Catalog) *Service {
	return &Service{spec: spec, catalogs: catalogs}
}

// Start launches the service loop.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	// Subscribe before the loop goroutine exists so nothing published right
	// after Start is lost.
	burstSub := conn.Subscribe(topicBurst)
	protoSub := conn.Subscribe(topicProtocol)
	cfgSub := conn.Subscribe(topicConfig)
	go s.serviceLoop(ctx, conn, burstSub, protoSub, cfgSub)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, burstSub, protoSub, cfgSub *bus.Subscription) {
	defer conn.Unsubscribe(burstSub)
	defer conn.Unsubscribe(protoSub)
	defer conn.Unsubscribe(cfgSub)

	for {
		select {
		case <-ctx.Done():
			println("Info: decode service stopping")
			return
		case msg := <-burstSub.Channel():
			ev, ok := msg.Payload.(*types.BurstEvent)
			if !ok {
				continue
			}
			conn.Publish(conn.NewMessage(topicReport, s.decode(ev), true))
		case msg := <-protoSub.Channel():
			name, _ := msg.Payload.(string)
			if err := s.setProtocol(name); err != nil {
				conn.Reply(msg, &types.ErrorReply{Error: err.Error()}, false)
				continue
			}
			conn.Reply(msg, &types.OKReply{OK: true}, false)
		case msg := <-cfgSub.Channel():
			if m, ok := msg.Payload.(map[string]any); ok {
				if name, ok := m["protocol"].(string); ok {
					if err := s.setProtocol(name); err != nil {
						println("Warn: decode config:", err.Error())
					}
				}
			}
		}
	}
}

func (s *Service) setProtocol(name string) error {
	spec, ok := ircore.SpecByName(name)
	if !ok {
		return errcode.UnknownProtocol
	}
	s.spec = spec
	println("Info: decode protocol set to", name)
	return nil
}

func (s *Service) decode(ev *types.BurstEvent) *types.DecodeReport {
	buf := ircore.NewBurstBuffer(len(ev.Events))
	for _, e := range ev.Events {
		_ = buf.Append(e.Level, e.DurationUS)
	}
	cmd := ircore.Decode(buf, s.spec)

	report := &types.DecodeReport{
		Seq:      ev.Seq,
		Protocol: s.spec.Name,
		Value:    cmd.Value,
		Hex:      cmd.HexValue(),
		Valid:    cmd.Valid,
		Steps:    buf.Count(),
		TS:       timex.NowMs(),
	}
	for _, issue := range cmd.Issues {
		report.Issues = append(report.Issues, types.IssueInfo{
			Kind:       issue.Kind.String(),
			AtStep:     issue.AtStep,
			DurationUS: issue.DurationUS,
		})
	}
	if cmd.Valid {
		for _, cat := range s.catalogs {
			if cat.Protocol != s.spec.Name {
				continue
			}
			if name, ok := cat.Lookup(cmd.Value); ok {
				report.Brand = cat.Brand
				report.Model = cat.Model
				report.Button = name
				break
			}
		}
	}
	return report
}
