// Package buzzer bit-bangs a piezo for short user feedback tones.
package buzzer

import (
	"time"

	"ir-analyzer-go/hal"
	"ir-analyzer-go/x/timex"
)

// Device drives a piezo element on one GPIO.
type Device struct {
	pin   hal.GPIOPin
	sleep func(time.Duration)
}

// New wraps the pin; call Configure before use.
func New(pin hal.GPIOPin) *Device {
	return &Device{pin: pin, sleep: time.Sleep}
}

// Configure sets the pin as a low output.
func (d *Device) Configure() error {
	return d.pin.ConfigureOutput(false)
}

// Tone toggles the pin at freqHz for the given duration. Blocking.
func (d *Device) Tone(freqHz uint32, dur time.Duration) {
	if freqHz == 0 || dur <= 0 {
		return
	}
	half := time.Duration(timex.PeriodFromHz(freqHz) / 2)
	cycles := int(dur / (2 * half))
	for i := 0; i < cycles; i++ {
		d.pin.Set(true)
		d.sleep(half)
		d.pin.Set(false)
		d.sleep(half)
	}
}

// Ack chirps once, for a decoded burst.
func (d *Device) Ack() { d.Tone(2400, 60*time.Millisecond) }

// Error buzzes low twice, for an overflowed or undecodable burst.
func (d *Device) Error() {
	d.Tone(400, 120*time.Millisecond)
	d.sleep(60 * time.Millisecond)
	d.Tone(400, 120*time.Millisecond)
}
