package eeprom24

import (
	"bytes"
	"testing"
)

// memI2C emulates a 24Cxx on the bus: 16-bit address writes, sequential
// reads, page-wrapped writes, and a handful of busy NAKs after each write.
type memI2C struct {
	mem      []byte
	pageSize int
	cursor   int
	busy     int
	writes   []int // bytes per data write, for page-split assertions
}

type nakError struct{}

func (nakError) Error() string { return "i2c: nak" }

func (m *memI2C) Tx(addr uint16, w, r []byte) error {
	if m.busy > 0 {
		m.busy--
		return nakError{}
	}
	if len(w) >= 2 {
		m.cursor = int(w[0])<<8 | int(w[1])
	}
	if len(w) > 2 { // page write
		data := w[2:]
		page := m.cursor / m.pageSize
		for _, b := range data {
			m.mem[m.cursor] = b
			m.cursor++
			// Hardware wraps within the page.
			if m.cursor/m.pageSize != page {
				m.cursor = page * m.pageSize
			}
		}
		m.writes = append(m.writes, len(data))
		m.busy = 3
	}
	for i := range r {
		r[i] = m.mem[m.cursor]
		m.cursor = (m.cursor + 1) % len(m.mem)
	}
	return nil
}

func newTestDevice(size, page int) (*Device, *memI2C) {
	bus := &memI2C{mem: make([]byte, size), pageSize: page}
	d := New(bus)
	d.Configure(Config{Size: size, PageSize: page})
	return d, bus
}

func TestReadWriteRoundTrip(t *testing.T) {
	d, _ := newTestDevice(4096, 32)

	want := []byte("memorex_mcr5221;power;0x25D02FD0")
	if err := d.WriteAt(100, want); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	got := make([]byte, len(want))
	if err := d.ReadAt(100, got); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("read back %q, want %q", got, want)
	}
}

func TestWriteSplitsOnPageBoundary(t *testing.T) {
	d, bus := newTestDevice(4096, 32)

	data := make([]byte, 80)
	for i := range data {
		data[i] = byte(i)
	}
	// Offset 20 in a 32-byte-page part: first chunk 12, then 32, 32, 4.
	if err := d.WriteAt(20, data); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	want := []int{12, 32, 32, 4}
	if len(bus.writes) != len(want) {
		t.Fatalf("writes = %v, want %v", bus.writes, want)
	}
	for i := range want {
		if bus.writes[i] != want[i] {
			t.Fatalf("writes = %v, want %v", bus.writes, want)
		}
	}

	got := make([]byte, len(data))
	if err := d.ReadAt(20, got); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("page-split write corrupted data")
	}
}

func TestBoundsChecked(t *testing.T) {
	d, _ := newTestDevice(256, 16)

	if err := d.WriteAt(250, make([]byte, 10)); err == nil {
		t.Fatal("write past end succeeded")
	}
	if err := d.ReadAt(-1, make([]byte, 1)); err == nil {
		t.Fatal("negative offset succeeded")
	}
	if err := d.ReadAt(0, nil); err != nil {
		t.Fatalf("zero-length read: %v", err)
	}
}
