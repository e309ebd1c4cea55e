// Package store keeps learned button bindings. Bindings pair a decoded
// command value with a caller-chosen name and survive power cycles in an
// I²C EEPROM when one is attached.
package store

import (
	"context"

	"ir-analyzer-go/bus"
	"ir-analyzer-go/drivers/eeprom24"
	"ir-analyzer-go/errcode"
	"ir-analyzer-go/types"
	"ir-analyzer-go/x/timex"
)

var (
	topicReport = bus.Topic{"decode", "report"}
	topicStatus = bus.Topic{"store", "status"}
	topicLearn  = bus.Topic{"store", "learn"}
	topicList   = bus.Topic{"store", "list"}
	topicForget = bus.Topic{"store", "forget"}
)

// Service tracks learned bindings and the last decode to learn from.
type Service struct {
	dev     *eeprom24.Device // nil runs volatile
	entries []types.ButtonEntry
	last    *types.DecodeReport
}

// New creates the service. dev may be nil for RAM-only operation.
func New(dev *eeprom24.Device) *Service {
	return &Service{dev: dev}
}

// Start loads persisted bindings and launches the service loop.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	if s.dev != nil {
		if err := s.load(); err != nil {
			println("Warn: store load:", err.Error())
		}
	}
	// Subscribe before the loop goroutine exists so a request published
	// right after Start is not lost.
	reportSub := conn.Subscribe(topicReport)
	learnSub := conn.Subscribe(topicLearn)
	listSub := conn.Subscribe(topicList)
	forgetSub := conn.Subscribe(topicForget)
	go s.serviceLoop(ctx, conn, reportSub, learnSub, listSub, forgetSub)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, reportSub, learnSub, listSub, forgetSub *bus.Subscription) {
	defer conn.Unsubscribe(reportSub)
	defer conn.Unsubscribe(learnSub)
	defer conn.Unsubscribe(listSub)
	defer conn.Unsubscribe(forgetSub)

	s.publishState(conn)

	for {
		select {
		case <-ctx.Done():
			println("Info: store service stopping")
			return
		case msg := <-reportSub.Channel():
			if r, ok := msg.Payload.(*types.DecodeReport); ok && r.Valid {
				s.last = r
			}
		case msg := <-learnSub.Channel():
			s.handleLearn(conn, msg)
		case msg := <-listSub.Channel():
			list := append([]types.ButtonEntry(nil), s.entries...)
			conn.Reply(msg, list, false)
		case msg := <-forgetSub.Channel():
			s.handleForget(conn, msg)
		}
	}
}

func (s *Service) handleLearn(conn *bus.Connection, msg *bus.Message) {
	req, ok := msg.Payload.(*types.LearnRequest)
	if !ok || req.Name == "" {
		conn.Reply(msg, &types.ErrorReply{Error: errcode.InvalidPayload.Error()}, false)
		return
	}
	if s.last == nil {
		conn.Reply(msg, &types.ErrorReply{Error: errcode.NoBurst.Error()}, false)
		return
	}
	entry := types.ButtonEntry{
		Protocol: s.last.Protocol,
		Value:    s.last.Value,
		Name:     req.Name,
	}
	s.upsert(entry)
	if err := s.persist(); err != nil {
		conn.Reply(msg, &types.ErrorReply{Error: err.Error()}, false)
		return
	}
	println("Info: learned button", req.Name)
	s.publishState(conn)
	conn.Reply(msg, &types.OKReply{OK: true}, false)
}

func (s *Service) handleForget(conn *bus.Connection, msg *bus.Message) {
	name, _ := msg.Payload.(string)
	for i, e := range s.entries {
		if e.Name == name {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			if err := s.persist(); err != nil {
				conn.Reply(msg, &types.ErrorReply{Error: err.Error()}, false)
				return
			}
			s.publishState(conn)
			conn.Reply(msg, &types.OKReply{OK: true}, false)
			return
		}
	}
	conn.Reply(msg, &types.ErrorReply{Error: errcode.UnknownButton.Error()}, false)
}

// Find returns the learned binding with the given name.
func (s *Service) Find(name string) (types.ButtonEntry, bool) {
	for _, e := range s.entries {
		if e.Name == name {
			return e, true
		}
	}
	return types.ButtonEntry{}, false
}

func (s *Service) upsert(entry types.ButtonEntry) {
	for i, e := range s.entries {
		if e.Name == entry.Name {
			s.entries[i] = entry
			return
		}
	}
	s.entries = append(s.entries, entry)
}

func (s *Service) persist() error {
	if s.dev == nil {
		return nil
	}
	return s.save()
}

func (s *Service) publishState(conn *bus.Connection) {
	conn.Publish(conn.NewMessage(topicStatus, &types.StoreState{
		Learned: len(s.entries),
		TS:      timex.NowMs(),
	}, true))
}
