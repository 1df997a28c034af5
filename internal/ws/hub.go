package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mxcd/apod-web/internal/model"
	"github.com/rs/zerolog/log"
)

const (
	writeDeadline = 10 * time.Second
	// sendBuffer is how many events may queue for one subscriber before it is
	// considered stuck and dropped.
	sendBuffer = 16
)

// subscriber owns the only goroutine that writes to conn.
type subscriber struct {
	conn *websocket.Conn
	send chan model.DownloadEvent
}

// Hub fans download events out to every connected page.
// All methods are safe for concurrent use and none of them wait on a client.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*websocket.Conn]*subscriber
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*websocket.Conn]*subscriber),
	}
}

// Subscribe registers conn for future broadcasts and starts its writer.
func (h *Hub) Subscribe(conn *websocket.Conn) {
	sub := &subscriber{
		conn: conn,
		send: make(chan model.DownloadEvent, sendBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[conn] = sub
	go sub.writeLoop()
	log.Debug().Int("total_subscribers", len(h.subscribers)).Msg("ws: client subscribed")
}

// Unsubscribe forgets conn and stops its writer. The caller owns closing it.
func (h *Hub) Unsubscribe(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub, ok := h.subscribers[conn]
	if !ok {
		return
	}
	delete(h.subscribers, conn)
	close(sub.send)
	log.Debug().Int("remaining_subscribers", len(h.subscribers)).Msg("ws: client unsubscribed")
}

// Count returns the number of live subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Broadcast queues event for every subscriber. A subscriber whose queue is
// full is dropped and closed.
func (h *Hub) Broadcast(event model.DownloadEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.subscribers) == 0 {
		return
	}

	log.Debug().
		Str("type", string(event.Type)).
		Str("filename", event.Filename).
		Int("subscribers", len(h.subscribers)).
		Msg("ws: broadcasting event")

	for conn, sub := range h.subscribers {
		select {
		case sub.send <- event:
		default:
			log.Debug().Msg("ws: subscriber queue full, dropping subscriber")
			delete(h.subscribers, conn)
			close(sub.send)
			conn.Close()
		}
	}
}

// BroadcastSaved announces a newly saved file.
func (h *Hub) BroadcastSaved(filename, url string) {
	h.Broadcast(model.DownloadEvent{
		Type:      model.DownloadEventSaved,
		Filename:  filename,
		URL:       url,
		Timestamp: time.Now(),
	})
}

// CloseAll disconnects every subscriber, used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, sub := range h.subscribers {
		close(sub.send)
		conn.Close()
	}
	n := len(h.subscribers)
	h.subscribers = make(map[*websocket.Conn]*subscriber)
	log.Debug().Int("closed", n).Msg("ws: all subscribers disconnected")
}

// writeLoop delivers queued events until the queue is closed or a write
// fails. A failed write closes the connection, which ends the reader and
// with it the subscription.
func (s *subscriber) writeLoop() {
	for event := range s.send {
		err := s.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err == nil {
			err = s.conn.WriteJSON(event)
		}
		if err != nil {
			log.Debug().Err(err).Msg("ws: write failed, closing subscriber")
			s.conn.Close()
			return
		}
	}
}
