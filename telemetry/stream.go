package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/vi-drive/parameter"
)

// Envelope is the message sent to stream clients
type Envelope struct {
	Type   string  `json:"type"`
	Frames []Frame `json:"frames"`
}

const envelopeFrames = "frames"

// Stream broadcasts frame batches to websocket clients, such as an external HUD
// Slow clients lose messages instead of stalling the recorder
type Stream struct {
	upgrader websocket.Upgrader
	log      zerolog.Logger

	mu      sync.Mutex
	clients map[*streamClient]struct{}
	closed  bool

	dropped atomic.Int64
}

type streamClient struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func NewStream(log zerolog.Logger) *Stream {
	return &Stream{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log:     log,
		clients: make(map[*streamClient]struct{}),
	}
}

func (s *Stream) Name() string { return "stream" }

// ServeHTTP upgrades the request and registers the client
func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := &streamClient{
		ws:   ws,
		send: make(chan []byte, parameter.StreamClientBuffer),
		done: make(chan struct{}),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ws.Close()
		return
	}
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	s.log.Debug().Str("remote", ws.RemoteAddr().String()).Msg("stream client connected")
	go s.writePump(c)
	go s.readPump(c)
}

// readPump discards client messages and detects disconnects
func (s *Stream) readPump(c *streamClient) {
	defer s.drop(c)
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Stream) writePump(c *streamClient) {
	defer s.drop(c)
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(parameter.StreamWriteWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

func (s *Stream) drop(c *streamClient) {
	c.once.Do(func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		close(c.done)
		c.ws.Close()
	})
}

// Clients returns the number of connected clients
func (s *Stream) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Dropped returns the number of messages not delivered to a full client queue
func (s *Stream) Dropped() int64 { return s.dropped.Load() }

func (s *Stream) Write(ctx context.Context, frames []Frame) error {
	msg, err := json.Marshal(Envelope{Type: envelopeFrames, Frames: frames})
	if err != nil {
		return fmt.Errorf("encoding frames: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
			s.dropped.Add(1)
		}
	}
	return nil
}

// Close disconnects every client; later connections are refused
func (s *Stream) Close() error {
	s.mu.Lock()
	s.closed = true
	clients := make([]*streamClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.drop(c)
	}
	return nil
}
