package handler

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"groupchat/internal/model"
)

// broadcastEvent pairs a published message with its destination topic.
type broadcastEvent struct {
	topic string
	msg   model.Message
}

// Hub fans published messages out to every WebSocket subscriber of a topic.
// It implements the chat core's broadcast sink.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*websocket.Conn]bool
	events      chan broadcastEvent
}

// NewHub creates an empty hub. Run must be started in its own goroutine
// before the first Publish.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[*websocket.Conn]bool),
		// バッファ化してイベントハンドラのブロッキングを回避
		events: make(chan broadcastEvent, 100),
	}
}

// Subscribe registers conn as a subscriber of topic.
func (h *Hub) Subscribe(topic string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.subscribers[topic]
	if !ok {
		conns = make(map[*websocket.Conn]bool)
		h.subscribers[topic] = conns
	}
	conns[conn] = true
}

// Unsubscribe removes conn from topic's subscribers.
func (h *Hub) Unsubscribe(topic string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.subscribers[topic], conn)
}

// Publish queues msg for delivery to every current subscriber of topic.
// Delivery is fire-and-forget best effort.
func (h *Hub) Publish(topic string, msg model.Message) {
	h.events <- broadcastEvent{topic: topic, msg: msg}
}

// Run drains the publish queue and writes each message to the topic's
// subscribers. It returns when the events channel is closed.
func (h *Hub) Run() {
	for event := range h.events {
		// subscribers マップをスナップショットしてからロックを外すことで、
		// WriteJSON 中にロックを保持せず、range 中の削除も発生させない
		h.mu.RLock()
		snapshot := make([]*websocket.Conn, 0, len(h.subscribers[event.topic]))
		for conn := range h.subscribers[event.topic] {
			snapshot = append(snapshot, conn)
		}
		h.mu.RUnlock()

		for _, conn := range snapshot {
			if err := conn.WriteJSON(event.msg); err != nil {
				log.Printf("[hub] Dropping subscriber after write error: %v", err)
				conn.Close()
				h.mu.Lock()
				delete(h.subscribers[event.topic], conn)
				h.mu.Unlock()
			}
		}
	}
}

// Close stops the broadcaster loop.
func (h *Hub) Close() {
	close(h.events)
}
