// Package eeprom24 drives 24Cxx-series I²C EEPROMs with 16-bit word
// addressing (24C32 and up). Writes are split on device page boundaries and
// followed by acknowledge polling, since the part NAKs while its internal
// write cycle runs.
package eeprom24

import (
	"time"

	"tinygo.org/x/drivers"

	"ir-analyzer-go/errcode"
	"ir-analyzer-go/x/mathx"
)

// Address is the base I²C address with A0..A2 strapped low.
const Address = 0x50

// Config describes the attached part. Zero fields take 24C32 defaults.
type Config struct {
	Address  uint16
	Size     int // total bytes
	PageSize int // write page bytes
	// WriteCycle bounds acknowledge polling after a page write.
	WriteCycle time.Duration
}

// Device wraps one EEPROM on a configured bus.
type Device struct {
	bus drivers.I2C
	cfg Config
}

// New creates the device handle. The bus must already be configured.
func New(bus drivers.I2C) *Device {
	return &Device{bus: bus}
}

// Configure applies part parameters.
func (d *Device) Configure(cfgs ...Config) {
	c := Config{}
	if len(cfgs) > 0 {
		c = cfgs[0]
	}
	if c.Address == 0 {
		c.Address = Address
	}
	if c.Size == 0 {
		c.Size = 4096 // 24C32
	}
	if c.PageSize == 0 {
		c.PageSize = 32
	}
	if c.WriteCycle <= 0 {
		c.WriteCycle = 10 * time.Millisecond
	}
	d.cfg = c
}

// Size returns the configured capacity in bytes.
func (d *Device) Size() int { return d.cfg.Size }

// ReadAt fills p from the given byte offset. Sequential reads cross page
// boundaries freely, so one transaction suffices.
func (d *Device) ReadAt(off int, p []byte) error {
	if err := d.check(off, len(p)); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	addr := [2]byte{byte(off >> 8), byte(off)}
	return d.bus.Tx(d.cfg.Address, addr[:], p)
}

// WriteAt writes p at the given byte offset, splitting on page boundaries
// and waiting out each internal write cycle.
func (d *Device) WriteAt(off int, p []byte) error {
	if err := d.check(off, len(p)); err != nil {
		return err
	}
	for len(p) > 0 {
		n := mathx.Min(d.cfg.PageSize-off%d.cfg.PageSize, len(p))
		buf := make([]byte, 2+n)
		buf[0] = byte(off >> 8)
		buf[1] = byte(off)
		copy(buf[2:], p[:n])
		if err := d.bus.Tx(d.cfg.Address, buf, nil); err != nil {
			return err
		}
		if err := d.waitReady(); err != nil {
			return err
		}
		off += n
		p = p[n:]
	}
	return nil
}

// waitReady acknowledge-polls until the part answers or the cycle budget
// runs out.
func (d *Device) waitReady() error {
	deadline := time.Now().Add(d.cfg.WriteCycle)
	for {
		if err := d.bus.Tx(d.cfg.Address, nil, nil); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return errcode.Timeout
		}
		time.Sleep(500 * time.Microsecond)
	}
}

func (d *Device) check(off, n int) error {
	if d.cfg.Size == 0 {
		d.Configure()
	}
	if off < 0 || n < 0 || off+n > d.cfg.Size {
		return errcode.InvalidParams
	}
	return nil
}
