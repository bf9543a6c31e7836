// Package web streams the CHIP-8 display to browsers over websockets and
// relays their key presses back to the driver.
package web

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"time"

	"github.com/cespare/xxhash"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/massung/chip8-vm/chip8"
)

//go:embed index.html
var indexPage []byte

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans frames out to every connected client. The machine is never
// touched from here: key presses come back through Keys.
type Hub struct {
	clients map[*client]bool

	broadcast            chan []byte
	register, unregister chan *client
	keys                 chan KeyEvent
	quit                 chan struct{}

	// last frame sent, replayed to new clients
	frame []byte
	hash  uint64

	log logrus.FieldLogger
}

// NewHub creates a hub. Nothing is served until Run is called.
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 8),
		register:   make(chan *client),
		unregister: make(chan *client),
		keys:       make(chan KeyEvent, 64),
		quit:       make(chan struct{}),
		log:        log.WithField("component", "web"),
	}
}

// Keys delivers key pad changes from remote clients.
func (h *Hub) Keys() <-chan KeyEvent {
	return h.keys
}

// Publish queues a frame for every client. Frames identical to the last
// one are skipped, and a frame is dropped if the hub is backed up.
func (h *Hub) Publish(fb chip8.Framebuffer) {
	select {
	case h.broadcast <- append([]byte{MsgFrame}, fb.Pack()...):
	default:
	}
}

// Run services clients until the context is done, then disconnects them.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.quit)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			h.log.WithField("clients", len(h.clients)).Info("client connected")

			if h.frame != nil {
				c.send <- h.frame
			}
		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
				h.log.WithField("clients", len(h.clients)).Info("client disconnected")
			}
		case msg := <-h.broadcast:
			hash := xxhash.Sum64(msg)
			if h.frame != nil && hash == h.hash {
				continue
			}
			h.frame, h.hash = msg, hash

			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.log.Warn("dropping slow client")
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) leave(c *client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

func (h *Hub) key(ev KeyEvent) {
	select {
	case h.keys <- ev:
	default:
		h.log.WithField("key", ev.Code).Debug("key queue full")
	}
}

// Handler serves the viewer page at / and the websocket at /ws.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(indexPage)
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.WithError(err).Warn("websocket upgrade failed")
			return
		}

		c := &client{
			hub:  h,
			conn: conn,
			send: make(chan []byte, 16),
			log:  h.log.WithField("remote", r.RemoteAddr),
		}

		select {
		case h.register <- c:
		case <-h.quit:
			conn.Close()
			return
		}

		go c.writePump()
		go c.readPump()
	})

	return mux
}

// ListenAndServe runs an HTTP server for the hub until the context is
// done.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdown)
	}()

	h.log.WithField("addr", addr).Info("serving remote display")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
