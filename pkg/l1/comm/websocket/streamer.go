// Package websocket streams node messages to websocket clients in JSON.
package websocket

import (
	"context"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/ftlink/pkg/ft"
	"github.com/robotalks/ftlink/pkg/l1"
	"github.com/robotalks/ftlink/pkg/l1/msgs"
)

// DefaultQueueSize is the number of messages queued per client.
const DefaultQueueSize = 64

// Streamer implements l1.Publisher by broadcasting to websocket clients.
// A slow client drops messages rather than blocking the publisher.
type Streamer struct {
	Node      string
	QueueSize int

	lock    sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	ch chan []byte
}

// NewStreamer creates a Streamer.
func NewStreamer(node string) *Streamer {
	return &Streamer{Node: node, QueueSize: DefaultQueueSize}
}

// Handler serves websocket connections. Any origin is accepted.
func (s *Streamer) Handler() http.Handler {
	return websocket.Server{Handler: s.serve}
}

// Clients returns the number of connected clients.
func (s *Streamer) Clients() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.clients)
}

// PublishReading implements l1.Publisher.
func (s *Streamer) PublishReading(ctx context.Context, r *l1.Reading) error {
	return s.broadcast(&msgs.Wrench{Node: s.Node, Time: r.Time, Wrench: r.Wrench})
}

// PublishState implements l1.Publisher.
func (s *Streamer) PublishState(ctx context.Context, state ft.State, sampling bool) error {
	return s.broadcast(&msgs.State{Node: s.Node, State: state, Sampling: sampling})
}

func (s *Streamer) broadcast(m msgs.Message) error {
	if s.Clients() == 0 {
		return nil
	}
	payload, err := msgs.EncodeJSON(m)
	if err != nil {
		return err
	}
	s.lock.RLock()
	defer s.lock.RUnlock()
	for c := range s.clients {
		select {
		case c.ch <- payload:
		default:
			glog.V(2).Infof("websocket client slow, %s dropped", m.Kind())
		}
	}
	return nil
}

func (s *Streamer) add(c *client) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.clients == nil {
		s.clients = make(map[*client]struct{})
	}
	s.clients[c] = struct{}{}
}

func (s *Streamer) remove(c *client) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.clients, c)
}

func (s *Streamer) serve(ws *websocket.Conn) {
	size := s.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	c := &client{ch: make(chan []byte, size)}
	s.add(c)
	defer s.remove(c)
	glog.V(2).Infof("websocket client %s connected", ws.Request().RemoteAddr)

	// messages from clients are ignored, reading detects the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		var msg []byte
		for {
			if err := websocket.Message.Receive(ws, &msg); err != nil {
				return
			}
		}
	}()
	for {
		select {
		case <-done:
			return
		case payload := <-c.ch:
			if err := websocket.Message.Send(ws, string(payload)); err != nil {
				glog.V(2).Infof("websocket send: %v", err)
				return
			}
		}
	}
}
