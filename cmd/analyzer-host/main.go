//go:build !rp2040 && !rp2350

// analyzer-host runs the full service stack against fake hardware, with the
// console on stdin/stdout. A demonstration burst is injected at startup so
// 'last' and 'timing' have something to show before real input exists.
package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"ir-analyzer-go/bus"
	"ir-analyzer-go/catalog"
	"ir-analyzer-go/drivers/irtx"
	"ir-analyzer-go/drivers/vs1838b"
	"ir-analyzer-go/hal"
	"ir-analyzer-go/ircore"
	"ir-analyzer-go/services/capture"
	"ir-analyzer-go/services/config"
	"ir-analyzer-go/services/console"
	"ir-analyzer-go/services/decode"
	"ir-analyzer-go/services/heartbeat"
	"ir-analyzer-go/services/replay"
	"ir-analyzer-go/services/report"
	"ir-analyzer-go/services/store"
	"ir-analyzer-go/x/timex"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.WithValue(context.Background(), config.CtxDeviceKey, "pico-analyzer"),
		os.Interrupt)
	defer stop()

	b := bus.NewBus(16)

	pins := &hal.HostPinFactory{}
	rxGP, _ := pins.ByNumber(16)
	sess := ircore.NewSession(ircore.DefaultCapacity)
	rx := vs1838b.New(rxGP.(hal.IRQPin), sess)
	_ = rx.Configure()

	tx := irtx.New(irtx.NewDefaultCarrier())

	config.NewConfigService().Start(ctx, b.NewConnection("config"))
	_ = capture.New(rx).Start(ctx, b.NewConnection("capture"))
	_ = decode.New(ircore.Samsung, catalog.MemorexMCR5221, catalog.SamsungBN5900673A).
		Start(ctx, b.NewConnection("decode"))
	_ = store.New(nil).Start(ctx, b.NewConnection("store"))
	_ = replay.New(tx, catalog.MemorexMCR5221, catalog.SamsungBN5900673A).
		Start(ctx, b.NewConnection("replay"))
	_ = report.New(report.DefaultSink()).Start(ctx, b.NewConnection("report"))
	_ = (&heartbeat.Service{}).Start(ctx, b.NewConnection("heartbeat"))
	_ = console.New(os.Stdin, os.Stdout).Start(ctx, b.NewConnection("console"))

	// Arm, then inject one Samsung power burst.
	cli := b.NewConnection("main")
	armCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	_, err := cli.RequestWait(armCtx,
		cli.NewMessage(bus.Topic{"capture", "control", "arm"}, nil, false))
	cancel()
	if err != nil {
		println("[main] warn: arm request failed")
	}
	injectBurst(sess, ircore.Samsung, 0xE0E040BF)

	<-ctx.Done()
	println("[main] shutting down")
	time.Sleep(100 * time.Millisecond)
}

// injectBurst feeds an encoded burst straight into the session with
// synthetic timestamps ending now, as the receiver ISR would have. A
// separator and the start of a repeat frame follow the data, matching what
// the remote actually transmits.
func injectBurst(sess *ircore.Session, spec ircore.ProtocolSpec, value uint64) {
	events := ircore.Encode(spec, value)
	events = append(events,
		ircore.EdgeEvent{Level: false, DurationUS: spec.BitLowUS},
		ircore.EdgeEvent{Level: true, DurationUS: 46975},
		ircore.EdgeEvent{Level: false, DurationUS: spec.WakeupLowUS},
		ircore.EdgeEvent{Level: true, DurationUS: spec.WakeupHighUS},
	)
	var total int64
	for _, ev := range events {
		total += int64(ev.DurationUS)
	}
	now := timex.NowUs() - total
	// Opening mark primes the timing reference.
	sess.OnEdge(false, now)
	for _, ev := range events {
		now += int64(ev.DurationUS)
		// The edge that closes a low step is the rising one.
		sess.OnEdge(!ev.Level, now)
	}
}
