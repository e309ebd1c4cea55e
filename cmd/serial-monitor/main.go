//go:build !rp2040 && !rp2350

// serial-monitor tails the analyzer's report UART on a workstation. Lines
// are logged as structured events, optionally appended to a CSV file for
// offline timing analysis, and optionally forwarded to an irhub instance.
package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"github.com/tarm/serial"
)

type monitorConfig struct {
	Port string `toml:"port"`
	Baud int    `toml:"baud"`
	CSV  string `toml:"csv"`
	Hub  string `toml:"hub"`
}

func main() {
	var (
		cfgPath = flag.String("config", "", "TOML config file")
		port    = flag.String("port", "", "serial port (overrides config)")
		baud    = flag.Int("baud", 0, "baud rate (overrides config)")
		csvPath = flag.String("csv", "", "append DECODE lines to this CSV file")
		hubURL  = flag.String("hub", "", "irhub ingest URL, e.g. http://localhost:8080/ingest")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	cfg := monitorConfig{Port: "/dev/ttyACM0", Baud: 115200}
	if *cfgPath != "" {
		if _, err := toml.DecodeFile(*cfgPath, &cfg); err != nil {
			log.Fatal().Err(err).Str("path", *cfgPath).Msg("config load failed")
		}
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *baud != 0 {
		cfg.Baud = *baud
	}
	if *csvPath != "" {
		cfg.CSV = *csvPath
	}
	if *hubURL != "" {
		cfg.Hub = *hubURL
	}

	s, err := serial.OpenPort(&serial.Config{Name: cfg.Port, Baud: cfg.Baud})
	if err != nil {
		log.Fatal().Err(err).Str("port", cfg.Port).Msg("serial open failed")
	}
	defer s.Close()
	log.Info().Str("port", cfg.Port).Int("baud", cfg.Baud).Msg("monitoring")

	var csvOut *csv.Writer
	if cfg.CSV != "" {
		f, err := os.OpenFile(cfg.CSV, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.CSV).Msg("csv open failed")
		}
		defer f.Close()
		csvOut = csv.NewWriter(f)
		defer csvOut.Flush()
	}

	scanner := bufio.NewScanner(s)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		tag, fields := parseLine(line)
		ev := log.Info()
		if tag == "REJECT" {
			ev = log.Warn()
		}
		for k, v := range fields {
			ev = ev.Str(k, v)
		}
		ev.Msg(strings.ToLower(tag))

		if cfg.Hub != "" {
			resp, err := http.Post(cfg.Hub, "text/plain", strings.NewReader(line+"\n"))
			if err != nil {
				log.Error().Err(err).Msg("hub forward failed")
			} else {
				resp.Body.Close()
			}
		}

		if csvOut != nil && tag == "DECODE" {
			record := []string{
				time.Now().Format(time.RFC3339),
				fields["proto"], fields["value"], fields["button"], fields["steps"],
			}
			if err := csvOut.Write(record); err != nil {
				log.Error().Err(err).Msg("csv write failed")
			}
			csvOut.Flush()
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatal().Err(err).Msg("serial read failed")
	}
}

// parseLine splits "TAG k=v k=v" into its tag and fields. Anything that
// does not match stays under the "raw" key.
func parseLine(line string) (string, map[string]string) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return "", nil
	}
	tag := parts[0]
	fields := make(map[string]string, len(parts)-1)
	for _, p := range parts[1:] {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			fields["raw"] = p
			continue
		}
		fields[k] = v
	}
	return tag, fields
}
