//go:build !rp2040 && !rp2350

package report

import (
	"io"
	"os"
)

// DefaultSink writes report lines to stdout on host builds.
func DefaultSink() io.Writer { return os.Stdout }
