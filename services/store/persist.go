package store

import (
	"ir-analyzer-go/errcode"
	"ir-analyzer-go/types"
)

// EEPROM layout: a 6-byte header (magic, version, entry count) followed by
// length-prefixed records. Strings are capped so a corrupt length byte can
// never run the reader off the device.
const (
	magic0, magic1, magic2 = 'I', 'R', 'B'
	layoutVersion          = 1
	maxString              = 64
	maxEntries             = 100
)

func (s *Service) save() error {
	buf := []byte{magic0, magic1, magic2, layoutVersion, 0, 0}
	n := len(s.entries)
	if n > maxEntries {
		n = maxEntries
	}
	buf[4] = byte(n >> 8)
	buf[5] = byte(n)

	for _, e := range s.entries[:n] {
		buf = appendString(buf, e.Protocol)
		buf = appendU64(buf, e.Value)
		buf = appendString(buf, e.Name)
	}
	if len(buf) > s.dev.Size() {
		return errcode.BufferOverflow
	}
	return s.dev.WriteAt(0, buf)
}

func (s *Service) load() error {
	header := make([]byte, 6)
	if err := s.dev.ReadAt(0, header); err != nil {
		return err
	}
	if header[0] != magic0 || header[1] != magic1 || header[2] != magic2 {
		// Blank or foreign part, start empty.
		return nil
	}
	if header[3] != layoutVersion {
		return errcode.InvalidPayload
	}
	n := int(header[4])<<8 | int(header[5])
	if n > maxEntries {
		return errcode.InvalidPayload
	}

	// Read the rest of the part in one go and parse in memory.
	body := make([]byte, s.dev.Size()-len(header))
	if err := s.dev.ReadAt(len(header), body); err != nil {
		return err
	}

	s.entries = s.entries[:0]
	off := 0
	for i := 0; i < n; i++ {
		protocol, next, err := readString(body, off)
		if err != nil {
			return err
		}
		value, next2, err := readU64(body, next)
		if err != nil {
			return err
		}
		name, next3, err := readString(body, next2)
		if err != nil {
			return err
		}
		off = next3
		s.entries = append(s.entries, types.ButtonEntry{
			Protocol: protocol,
			Value:    value,
			Name:     name,
		})
	}
	return nil
}

func appendString(buf []byte, s string) []byte {
	if len(s) > maxString {
		s = s[:maxString]
	}
	buf = append(buf, byte(len(s)))
	return append(buf, s...)
}

func appendU64(buf []byte, v uint64) []byte {
	return append(buf,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func readString(buf []byte, off int) (string, int, error) {
	if off >= len(buf) {
		return "", 0, errcode.InvalidPayload
	}
	n := int(buf[off])
	off++
	if n > maxString || off+n > len(buf) {
		return "", 0, errcode.InvalidPayload
	}
	return string(buf[off : off+n]), off + n, nil
}

func readU64(buf []byte, off int) (uint64, int, error) {
	if off+8 > len(buf) {
		return 0, 0, errcode.InvalidPayload
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(buf[off+i])
	}
	return v, off + 8, nil
}
