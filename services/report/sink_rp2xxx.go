//go:build rp2040 || rp2350

package report

import (
	"io"

	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// DefaultSink configures uart0 on the board-default pins at 115200 and
// returns it as the report sink.
func DefaultSink() io.Writer {
	hw := uartx.UART0
	_ = hw.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	return hw
}
