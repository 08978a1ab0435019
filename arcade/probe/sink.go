package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/valerio/go-arcadehost/arcade/input/translate"
)

// Message is one probe update. "button" and "axis" carry a single change;
// "full" carries the complete state.
type Message struct {
	Type      string             `json:"type"`
	Seq       int64              `json:"seq"`
	Timestamp int64              `json:"timestamp"` // unix milliseconds
	Index     int                `json:"index"`
	Code      int                `json:"code"`
	Pressed   bool               `json:"pressed"`
	Value     float32            `json:"value"`
	Buttons   map[string]bool    `json:"buttons,omitempty"`
	Axes      map[string]float32 `json:"axes,omitempty"`
}

type control struct {
	index, code int
}

func (c control) key() string {
	return fmt.Sprintf("%d/%d", c.index, c.code)
}

// Sink forwards controller state to another sink and mirrors every change
// to the hub.
type Sink struct {
	next translate.Sink
	hub  *Hub

	mu      sync.Mutex
	seq     int64
	buttons map[control]bool
	axes    map[control]float32
}

func NewSink(next translate.Sink, hub *Hub) *Sink {
	return &Sink{
		next:    next,
		hub:     hub,
		buttons: make(map[control]bool),
		axes:    make(map[control]float32),
	}
}

func (s *Sink) SetButtonState(index, code int, pressed bool) {
	s.next.SetButtonState(index, code, pressed)

	s.mu.Lock()
	s.buttons[control{index, code}] = pressed
	msg := s.message("button", index, code)
	msg.Pressed = pressed
	s.mu.Unlock()
	s.publish(msg)
}

func (s *Sink) SetAxisState(index, code int, value float32) {
	s.next.SetAxisState(index, code, value)

	s.mu.Lock()
	s.axes[control{index, code}] = value
	msg := s.message("axis", index, code)
	msg.Value = value
	s.mu.Unlock()
	s.publish(msg)
}

func (s *Sink) message(kind string, index, code int) Message {
	s.seq++
	return Message{Type: kind, Seq: s.seq, Timestamp: time.Now().UnixMilli(), Index: index, Code: code}
}

func (s *Sink) publish(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Probe encode failed", "error", err)
		return
	}
	s.hub.Broadcast(data)
}

// Full encodes the complete controller state. Keys are "index/code". It
// returns nil if the state cannot be encoded.
func (s *Sink) Full() []byte {
	s.mu.Lock()
	msg := Message{
		Type:      "full",
		Seq:       s.seq,
		Timestamp: time.Now().UnixMilli(),
		Buttons:   make(map[string]bool, len(s.buttons)),
		Axes:      make(map[string]float32, len(s.axes)),
	}
	for c, v := range s.buttons {
		msg.Buttons[c.key()] = v
	}
	for c, v := range s.axes {
		msg.Axes[c.key()] = v
	}
	s.mu.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Probe encode failed", "type", msg.Type, "error", err)
		return nil
	}
	return data
}

var _ translate.Sink = (*Sink)(nil)

// Serve runs the probe endpoint at addr until ctx is done. Clients connect
// to /ws.
func Serve(ctx context.Context, addr string, hub *Hub, sink *Sink) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub.Handler(sink.Full))
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	slog.Info("Probe listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
