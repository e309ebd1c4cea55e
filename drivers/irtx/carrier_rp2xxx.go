//go:build rp2040 || rp2350

package irtx

import (
	"machine"

	"github.com/sparques/pwm"

	"ir-analyzer-go/x/timex"
)

// PWMCarrier drives an IR LED pin from an RP2 PWM slice at CarrierHz with a
// 50% duty cycle. On gates the duty in, Off parks the pin low.
type PWMCarrier struct {
	group pwm.Group
	ch    uint8
	duty  uint32
}

// NewPWMCarrier configures the pin's PWM slice for the carrier frequency.
func NewPWMCarrier(pin machine.Pin) (*PWMCarrier, error) {
	pin.Configure(machine.PinConfig{Mode: machine.PinPWM})
	group := pwm.Get(pin)
	group.Configure(machine.PWMConfig{Period: timex.PeriodFromHz(CarrierHz)})
	ch, err := group.Channel(pin)
	if err != nil {
		return nil, err
	}
	group.Set(ch, 0)
	return &PWMCarrier{group: group, ch: ch, duty: group.Top() / 2}, nil
}

func (c *PWMCarrier) On()  { c.group.Set(c.ch, c.duty) }
func (c *PWMCarrier) Off() { c.group.Set(c.ch, 0) }
