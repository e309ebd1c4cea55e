// Package replay transmits commands back out of the analyzer. Requests name
// either a learned or builtin button, or give a protocol and raw value.
package replay

import (
	"context"
	"time"

	"ir-analyzer-go/bus"
	"ir-analyzer-go/catalog"
	"ir-analyzer-go/drivers/irtx"
	"ir-analyzer-go/errcode"
	"ir-analyzer-go/ircore"
	"ir-analyzer-go/types"
)

var (
	topicSend      = bus.Topic{"replay", "send"}
	topicStoreList = bus.Topic{"store", "list"}
)

// Service owns the transmitter.
type Service struct {
	dev      *irtx.Device
	catalogs []*catalog.Catalog
}

// New wraps a transmitter and the builtin catalogs to resolve names against.
func New(dev *irtx.Device, catalogs ...*catalog.Catalog) *Service {
	return &Service{dev: dev, catalogs: catalogs}
}

// Start launches the service loop.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	// Subscribe before the loop goroutine exists so a send request published
	// right after Start is not lost.
	sendSub := conn.Subscribe(topicSend)
	go s.serviceLoop(ctx, conn, sendSub)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, sendSub *bus.Subscription) {
	defer conn.Unsubscribe(sendSub)

	for {
		select {
		case <-ctx.Done():
			println("Info: replay service stopping")
			return
		case msg := <-sendSub.Channel():
			req, ok := msg.Payload.(*types.ReplayRequest)
			if !ok {
				conn.Reply(msg, &types.ErrorReply{Error: errcode.InvalidPayload.Error()}, false)
				continue
			}
			if err := s.send(ctx, conn, req); err != nil {
				conn.Reply(msg, &types.ErrorReply{Error: err.Error()}, false)
				continue
			}
			conn.Reply(msg, &types.OKReply{OK: true}, false)
		}
	}
}

func (s *Service) send(ctx context.Context, conn *bus.Connection, req *types.ReplayRequest) error {
	protocol, value := req.Protocol, req.Value
	if req.Button != "" {
		entry, err := s.resolve(ctx, conn, req.Button)
		if err != nil {
			return err
		}
		protocol, value = entry.Protocol, entry.Value
	}
	spec, ok := ircore.SpecByName(protocol)
	if !ok {
		return errcode.UnknownProtocol
	}
	println("Info: replaying", protocol, "value")
	return s.dev.PlayValue(spec, value)
}

// resolve checks learned bindings first, then the builtin catalogs.
func (s *Service) resolve(ctx context.Context, conn *bus.Connection, name string) (types.ButtonEntry, error) {
	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	reply, err := conn.RequestWait(waitCtx, conn.NewMessage(topicStoreList, nil, false))
	if err == nil {
		if list, ok := reply.Payload.([]types.ButtonEntry); ok {
			for _, e := range list {
				if e.Name == name {
					return e, nil
				}
			}
		}
	}
	for _, cat := range s.catalogs {
		for _, b := range cat.Buttons() {
			if b.Name == name {
				return types.ButtonEntry{Protocol: cat.Protocol, Value: b.Value, Name: b.Name}, nil
			}
		}
	}
	return types.ButtonEntry{}, errcode.UnknownButton
}
