//go:build !rp2040 && !rp2350

// irhub fans the analyzer's report stream out to websocket clients, so
// several dashboards can watch one device. The stream comes from the report
// UART, from stdin when no port is given, or from POSTs to /ingest; recent
// lines are kept in memory and served at /recent.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tarm/serial"
	"nhooyr.io/websocket"
)

const recentCap = 256

type hub struct {
	mu      sync.Mutex
	clients map[chan string]struct{}
	last    string
	recent  []string
}

func newHub() *hub {
	return &hub{clients: make(map[chan string]struct{})}
}

func (h *hub) subscribe() chan string {
	ch := make(chan string, 16)
	h.mu.Lock()
	if h.last != "" {
		ch <- h.last
	}
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(ch chan string) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

func (h *hub) broadcast(line string) {
	h.mu.Lock()
	h.last = line
	h.recent = append(h.recent, line)
	if len(h.recent) > recentCap {
		h.recent = h.recent[len(h.recent)-recentCap:]
	}
	for ch := range h.clients {
		select {
		case ch <- line:
		default: // slow client, drop
		}
	}
	h.mu.Unlock()
}

func (h *hub) snapshot() []string {
	h.mu.Lock()
	out := make([]string, len(h.recent))
	copy(out, h.recent)
	h.mu.Unlock()
	return out
}

func main() {
	var (
		listen = flag.String("listen", ":8080", "HTTP listen address")
		port   = flag.String("port", "", "serial port to read, stdin if empty")
		baud   = flag.Int("baud", 115200, "baud rate")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	var src io.Reader = os.Stdin
	if *port != "" {
		s, err := serial.OpenPort(&serial.Config{Name: *port, Baud: *baud})
		if err != nil {
			log.Fatal().Err(err).Str("port", *port).Msg("serial open failed")
		}
		defer s.Close()
		src = s
	}

	h := newHub()
	go func() {
		scanner := bufio.NewScanner(src)
		for scanner.Scan() {
			h.broadcast(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			log.Error().Err(err).Msg("source read failed")
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket accept failed")
			return
		}
		defer c.Close(websocket.StatusNormalClosure, "")
		log.Info().Str("remote", r.RemoteAddr).Msg("client connected")

		ch := h.subscribe()
		defer h.unsubscribe(ch)

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				return
			case line := <-ch:
				writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				err := c.Write(writeCtx, websocket.MessageText, []byte(line))
				cancel()
				if err != nil {
					log.Info().Str("remote", r.RemoteAddr).Msg("client gone")
					return
				}
			}
		}
	})
	mux.HandleFunc("/ingest", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}
		scanner := bufio.NewScanner(r.Body)
		n := 0
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				h.broadcast(line)
				n++
			}
		}
		if err := scanner.Err(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Debug().Int("lines", n).Str("remote", r.RemoteAddr).Msg("ingested")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/recent", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(h.snapshot())
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	log.Info().Str("listen", *listen).Msg("irhub up")
	if err := http.ListenAndServe(*listen, mux); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
