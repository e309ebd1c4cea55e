//go:build !(rp2040 || rp2350)

package strconvx

import (
	"strconv"
	"strings"
)

// The goal is signature parity with strconv; formatting delegates straight
// through. Base detection for base 0 differs from strconv on purpose: only
// 0x/0b/0o prefixes select a base, a bare leading zero stays decimal, so
// both builds read console input the same way.

func Itoa(i int) string                  { return strconv.Itoa(i) }
func Atoi(s string) (int, error)         { return strconv.Atoi(s) }
func FormatInt(i int64, base int) string { return strconv.FormatInt(i, base) }
func FormatUint(u uint64, base int) string {
	return strconv.FormatUint(u, base)
}

func ParseInt(s string, base, bitSize int) (int64, error) {
	if base == 0 {
		sign := ""
		if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
			sign, s = s[:1], s[1:]
		}
		base = detectBase(&s)
		s = sign + s
	}
	return strconv.ParseInt(s, base, bitSize)
}

func ParseUint(s string, base, bitSize int) (uint64, error) {
	if base == 0 {
		base = detectBase(&s)
	}
	return strconv.ParseUint(s, base, bitSize)
}

func detectBase(ps *string) int {
	s := *ps
	if len(s) >= 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			*ps = s[2:]
			return 16
		case 'b', 'B':
			*ps = s[2:]
			return 2
		case 'o', 'O':
			*ps = s[2:]
			return 8
		}
	}
	return 10
}
func FormatFloat(f float64, fmt byte, prec, bitSize int) string {
	return strconv.FormatFloat(f, fmt, prec, bitSize)
}
func ParseFloat(s string, bitSize int) (float64, error) { return strconv.ParseFloat(s, bitSize) }
