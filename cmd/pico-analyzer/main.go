//go:build rp2040 || rp2350

// pico-analyzer is the device firmware: capture on a VS1838B, decode,
// identify, learn to EEPROM, replay through an IR LED, console on USB
// serial, report lines on uart0.
package main

import (
	"context"
	"machine"
	"time"

	"ir-analyzer-go/bus"
	"ir-analyzer-go/catalog"
	"ir-analyzer-go/drivers/buzzer"
	"ir-analyzer-go/drivers/eeprom24"
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
	"ir-analyzer-go/types"
)

const (
	rxPinNum  = 16
	txPinNum  = 17
	buzzerPin = 15
)

func main() {
	time.Sleep(3 * time.Second) // let USB enumerate
	println("[main] ir-analyzer starting")

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, "pico-analyzer")
	b := bus.NewBus(8)

	pins := hal.DefaultPinFactory()
	i2cs := hal.DefaultI2CFactory()

	// Receiver.
	rxGP, ok := pins.ByNumber(rxPinNum)
	if !ok {
		println("[main] fatal: rx pin unavailable")
		return
	}
	rx := vs1838b.New(rxGP.(hal.IRQPin), ircore.NewSession(ircore.DefaultCapacity))
	if err := rx.Configure(); err != nil {
		println("[main] fatal: rx configure:", err.Error())
		return
	}

	// Transmitter.
	carrier, err := irtx.NewPWMCarrier(machine.Pin(txPinNum))
	if err != nil {
		println("[main] fatal: tx carrier:", err.Error())
		return
	}
	tx := irtx.New(carrier)

	// Learned-button EEPROM, absent parts degrade to RAM-only.
	var eeprom *eeprom24.Device
	if i2cBus, ok := i2cs.ByID("i2c0"); ok {
		eeprom = eeprom24.New(i2cBus)
		eeprom.Configure()
	}

	// Feedback buzzer.
	bzGP, _ := pins.ByNumber(buzzerPin)
	bz := buzzer.New(bzGP)
	_ = bz.Configure()

	// Services.
	config.NewConfigService().Start(ctx, b.NewConnection("config"))
	_ = capture.New(rx).Start(ctx, b.NewConnection("capture"))
	_ = decode.New(ircore.Memorex, catalog.MemorexMCR5221, catalog.SamsungBN5900673A).
		Start(ctx, b.NewConnection("decode"))
	_ = store.New(eeprom).Start(ctx, b.NewConnection("store"))
	_ = replay.New(tx, catalog.MemorexMCR5221, catalog.SamsungBN5900673A).
		Start(ctx, b.NewConnection("replay"))
	_ = report.New(report.DefaultSink()).Start(ctx, b.NewConnection("report"))
	_ = (&heartbeat.Service{}).Start(ctx, b.NewConnection("heartbeat"))
	_ = console.New(&usbSerial{}, &usbSerial{}).Start(ctx, b.NewConnection("console"))

	go feedbackLoop(ctx, b.NewConnection("feedback"), bz)

	// Arm capture and park.
	armConn := b.NewConnection("main")
	armCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	_, err = armConn.RequestWait(armCtx,
		armConn.NewMessage(bus.Topic{"capture", "control", "arm"}, nil, false))
	cancel()
	if err != nil {
		println("[main] warn: arm request timed out")
	}
	println("[main] running")
	select {}
}

// feedbackLoop chirps on each decode outcome.
func feedbackLoop(ctx context.Context, conn *bus.Connection, bz *buzzer.Device) {
	sub := conn.Subscribe(bus.Topic{"decode", "report"})
	defer conn.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-sub.Channel():
			if r, ok := msg.Payload.(*types.DecodeReport); ok {
				if r.Valid {
					bz.Ack()
				} else {
					bz.Error()
				}
			}
		}
	}
}

// usbSerial adapts machine.Serial to io.Reader/io.Writer for the console.
type usbSerial struct{}

func (usbSerial) Read(p []byte) (int, error) {
	for machine.Serial.Buffered() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	n := 0
	for n < len(p) && machine.Serial.Buffered() > 0 {
		c, err := machine.Serial.ReadByte()
		if err != nil {
			break
		}
		p[n] = c
		n++
	}
	return n, nil
}

func (usbSerial) Write(p []byte) (int, error) {
	return machine.Serial.Write(p)
}
