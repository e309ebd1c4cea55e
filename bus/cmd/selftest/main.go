//go:build rp2040 || rp2350

// On-device bus self-test. Flash it to verify pub/sub, wildcards, retained
// delivery and request/reply behave on real hardware; the LED stays solid
// on success and blinks on failure.
package main

import (
	"context"
	"machine"
	"time"

	"ir-analyzer-go/bus"
	"ir-analyzer-go/x/fmtx"
)

func expectOne(sub *bus.Subscription, want string, timeout time.Duration) bool {
	select {
	case got := <-sub.Channel():
		s, ok := got.Payload.(string)
		return ok && s == want
	case <-time.After(timeout):
		return false
	}
}

func expectNone(sub *bus.Subscription, timeout time.Duration) bool {
	select {
	case <-sub.Channel():
		return false
	case <-time.After(timeout):
		return true
	}
}

func drain(sub *bus.Subscription, n int, deadline time.Time) ([]string, bool) {
	var out []string
	for len(out) < n && time.Now().Before(deadline) {
		select {
		case m := <-sub.Channel():
			s, ok := m.Payload.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		case <-time.After(10 * time.Millisecond):
		}
	}
	return out, len(out) == n
}

func sameSet(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for _, w := range want {
		found := false
		for i, g := range got {
			if g == w {
				got = append(got[:i], got[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func testBasicPubSub() bool {
	b := bus.NewBus(4)
	conn := b.NewConnection("test")
	sub := conn.Subscribe(bus.T("capture", "status"))
	conn.Publish(conn.NewMessage(bus.T("capture", "status"), "armed", false))
	return expectOne(sub, "armed", 100*time.Millisecond)
}

func testRetainedMessage() bool {
	b := bus.NewBus(2)
	conn := b.NewConnection("test")
	conn.Publish(b.NewMessage(bus.T("decode", "report"), "persist", true))
	sub := conn.Subscribe(bus.T("decode", "report"))
	return expectOne(sub, "persist", 100*time.Millisecond)
}

func testWildcardSingleLevel() bool {
	b := bus.NewBus(16)
	c := b.NewConnection("test")

	sVerb := c.Subscribe(bus.T("capture", "control", "+"))
	sOther := c.Subscribe(bus.T("store", "control", "+"))

	c.Publish(b.NewMessage(bus.T("capture", "control", "arm"), "m1", false))
	if !expectOne(sVerb, "m1", 200*time.Millisecond) {
		return false
	}
	if !expectNone(sOther, 60*time.Millisecond) {
		return false
	}
	// Depth must match exactly for "+".
	c.Publish(b.NewMessage(bus.T("capture", "control"), "m2", false))
	return expectNone(sVerb, 60*time.Millisecond)
}

func testWildcardMultiLevel() bool {
	b := bus.NewBus(16)
	c := b.NewConnection("test")

	sTree := c.Subscribe(bus.T("config", "#"))
	sAll := c.Subscribe(bus.T("#"))

	c.Publish(b.NewMessage(bus.T("config"), "p1", false))
	if !expectOne(sTree, "p1", 200*time.Millisecond) {
		return false
	}
	if !expectOne(sAll, "p1", 200*time.Millisecond) {
		return false
	}
	c.Publish(b.NewMessage(bus.T("config", "capture", "quiet"), "p2", false))
	if !expectOne(sTree, "p2", 200*time.Millisecond) {
		return false
	}
	return expectOne(sAll, "p2", 200*time.Millisecond)
}

func testWildcardRetainedDelivery() bool {
	b := bus.NewBus(32)
	c := b.NewConnection("test")

	c.Publish(b.NewMessage(bus.T("config", "capture"), "r1", true))
	c.Publish(b.NewMessage(bus.T("config", "decode"), "r2", true))
	c.Publish(b.NewMessage(bus.T("config", "decode", "protocol"), "r3", true))

	sTree := c.Subscribe(bus.T("config", "#"))
	got, ok := drain(sTree, 3, time.Now().Add(300*time.Millisecond))
	if !ok || !sameSet(got, []string{"r1", "r2", "r3"}) {
		return false
	}

	sPlus := c.Subscribe(bus.T("config", "+"))
	got, ok = drain(sPlus, 2, time.Now().Add(300*time.Millisecond))
	return ok && sameSet(got, []string{"r1", "r2"})
}

func testRetainedClear() bool {
	b := bus.NewBus(16)
	c := b.NewConnection("test")

	c.Publish(b.NewMessage(bus.T("config", "capture"), "keep", true))
	c.Publish(b.NewMessage(bus.T("config", "decode"), "other", true))
	c.Publish(b.NewMessage(bus.T("config", "capture"), nil, true))

	s := c.Subscribe(bus.T("config", "#"))
	got, ok := drain(s, 1, time.Now().Add(300*time.Millisecond))
	return ok && len(got) == 1 && got[0] == "other"
}

func testRequestWait() bool {
	b := bus.NewBus(8)
	reqConn := b.NewConnection("requester")
	respConn := b.NewConnection("responder")

	reqTopic := bus.T("capture", "control", "arm")
	respSub := respConn.Subscribe(reqTopic)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if msg, ok := <-respSub.Channel(); ok {
			respConn.Reply(msg, "OK", false)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	reply, err := reqConn.RequestWait(ctx, b.NewMessage(reqTopic, nil, false))
	respConn.Unsubscribe(respSub)
	<-done

	if err != nil {
		return false
	}
	got, ok := reply.Payload.(string)
	return ok && got == "OK"
}

func testRequestTimeout() bool {
	b := bus.NewBus(8)
	reqConn := b.NewConnection("requester")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := reqConn.RequestWait(ctx, b.NewMessage(bus.T("decode", "noop"), nil, false))
	return err != nil
}

func testInvalidTokenPanics() (ok bool) {
	defer func() {
		ok = recover() != nil
	}()
	_ = bus.T([]byte{1, 2, 3}) // non-string/int token must panic
	return false
}

type testFn struct {
	name string
	fn   func() bool
}

func main() {
	// Give the USB CDC time to enumerate so logs show up reliably.
	time.Sleep(250 * time.Millisecond)

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led.High()

	tests := []testFn{
		{"BasicPubSub", testBasicPubSub},
		{"RetainedMessage", testRetainedMessage},
		{"WildcardSingleLevel", testWildcardSingleLevel},
		{"WildcardMultiLevel", testWildcardMultiLevel},
		{"WildcardRetainedDelivery", testWildcardRetainedDelivery},
		{"RetainedClear", testRetainedClear},
		{"RequestWait", testRequestWait},
		{"RequestTimeout", testRequestTimeout},
		{"InvalidTokenPanics", testInvalidTokenPanics},
	}

	passed, failed := 0, 0
	println("== bus self-test starting ==")
	for _, tc := range tests {
		if tc.fn() {
			println(fmtx.Sprintf("[PASS] %s", tc.name))
			passed++
		} else {
			println(fmtx.Sprintf("[FAIL] %s", tc.name))
			failed++
		}
		time.Sleep(10 * time.Millisecond)
	}
	println(fmtx.Sprintf("== done: %d passed, %d failed ==", passed, failed))

	// LED solid on success, slow blink on failure.
	if failed == 0 {
		for {
			led.High()
			time.Sleep(2 * time.Second)
		}
	}
	for {
		led.High()
		time.Sleep(250 * time.Millisecond)
		led.Low()
		time.Sleep(250 * time.Millisecond)
	}
}
