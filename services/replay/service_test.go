//go:build !rp2040 && !rp2350

package replay

import (
	"context"
	"testing"
	"time"

	"ir-analyzer-go/bus"
	"ir-analyzer-go/catalog"
	"ir-analyzer-go/drivers/irtx"
	"ir-analyzer-go/types"
)

func startRig(t *testing.T, learned []types.ButtonEntry) (*bus.Connection, *irtx.RecordedCarrier) {
	t.Helper()
	b := bus.NewBus(16)
	rec := &irtx.RecordedCarrier{}
	svc := New(irtx.New(rec), catalog.MemorexMCR5221, catalog.SamsungBN5900673A)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := svc.Start(ctx, b.NewConnection("replay")); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Stand-in for the store service.
	storeConn := b.NewConnection("store")
	listSub := storeConn.Subscribe(bus.Topic{"store", "list"})
	go func() {
		for msg := range listSub.Channel() {
			storeConn.Reply(msg, append([]types.ButtonEntry(nil), learned...), false)
		}
	}()
	t.Cleanup(func() { storeConn.Unsubscribe(listSub) })

	return b.NewConnection("test"), rec
}

func send(t *testing.T, conn *bus.Connection, req *types.ReplayRequest) *bus.Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	reply, err := conn.RequestWait(ctx, conn.NewMessage(bus.Topic{"replay", "send"}, req, false))
	if err != nil {
		t.Fatalf("RequestWait: %v", err)
	}
	return reply
}

func TestSendRawValue(t *testing.T) {
	cli, rec := startRig(t, nil)

	reply := send(t, cli, &types.ReplayRequest{Protocol: "memorex_mcr5221", Value: 0x2525609F})
	if ok, _ := reply.Payload.(*types.OKReply); ok == nil || !ok.OK {
		t.Fatalf("reply = %+v", reply.Payload)
	}
	// Wakeup mark plus 32 bit marks, each followed by an off.
	states := rec.States()
	on := 0
	for _, st := range states {
		if st {
			on++
		}
	}
	if on != 33 {
		t.Fatalf("carrier on count = %d, want 33", on)
	}
	if states[len(states)-1] {
		t.Fatal("carrier left on")
	}
}

func TestSendBuiltinButton(t *testing.T) {
	cli, rec := startRig(t, nil)

	reply := send(t, cli, &types.ReplayRequest{Button: "Power"})
	if ok, _ := reply.Payload.(*types.OKReply); ok == nil || !ok.OK {
		t.Fatalf("reply = %+v", reply.Payload)
	}
	if len(rec.States()) == 0 {
		t.Fatal("nothing transmitted")
	}
}

func TestSendLearnedButtonWins(t *testing.T) {
	learned := []types.ButtonEntry{
		{Protocol: "samsung_bn5900673a", Value: 0xE0E048B7, Name: "hdmi_2"},
	}
	cli, rec := startRig(t, learned)

	reply := send(t, cli, &types.ReplayRequest{Button: "hdmi_2"})
	if ok, _ := reply.Payload.(*types.OKReply); ok == nil || !ok.OK {
		t.Fatalf("reply = %+v", reply.Payload)
	}
	if len(rec.States()) == 0 {
		t.Fatal("nothing transmitted")
	}
}

func TestSendUnknownButton(t *testing.T) {
	cli, _ := startRig(t, nil)
	reply := send(t, cli, &types.ReplayRequest{Button: "no_such"})
	if _, isErr := reply.Payload.(*types.ErrorReply); !isErr {
		t.Fatalf("reply = %+v, want error", reply.Payload)
	}
}

func TestSendUnknownProtocol(t *testing.T) {
	cli, _ := startRig(t, nil)
	reply := send(t, cli, &types.ReplayRequest{Protocol: "rc5", Value: 1})
	if _, isErr := reply.Payload.(*types.ErrorReply); !isErr {
		t.Fatalf("reply = %+v, want error", reply.Payload)
	}
}
