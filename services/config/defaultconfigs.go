package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgPicoAnalyzer = `{
  "capture": {
      "quiet_ms": 15,
      "poll_ms": 5
  },
  "decode": {
      "protocol": "memorex_mcr5221"
  },
  "heartbeat": {
      "interval": 5
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico-analyzer": []byte(cfgPicoAnalyzer),
}
