// Package stream fans live run telemetry out to websocket subscribers,
// bridging instances through redis pub/sub.
package stream

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event is the envelope every broadcast payload travels in. Type names
// the run metric ("distance", "split", "status", ...) and Data carries
// the metric-specific body.
type Event struct {
	Type  string          `json:"type"`
	RunID string          `json:"run_id"`
	Data  json.RawMessage `json:"data"`
	At    time.Time       `json:"at"`
}

type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	RunID string
	Send  chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(runID string) *Client {
	client := &Client{
		RunID: runID,
		Send:  make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[runID] == nil {
		h.clients[runID] = map[*Client]struct{}{}
	}
	h.clients[runID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if runClients, ok := h.clients[client.RunID]; ok {
		delete(runClients, client)
		if len(runClients) == 0 {
			delete(h.clients, client.RunID)
		}
	}
	close(client.Send)
}

// Publish wraps the value in an Event envelope and broadcasts it.
func (h *Hub) Publish(runID, eventType string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("event marshal error: %v", err)
		return
	}
	payload, err := json.Marshal(Event{Type: eventType, RunID: runID, Data: data, At: time.Now()})
	if err != nil {
		log.Printf("event marshal error: %v", err)
		return
	}
	h.Broadcast(runID, payload)
}

func (h *Hub) Broadcast(runID string, payload []byte) {
	h.mu.RLock()
	clients := h.clients[runID]
	h.mu.RUnlock()

	for client := range clients {
		select {
		case client.Send <- payload:
		default:
		}
	}

	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(runID), payload).Err()
		if err != nil {
			log.Printf("redis publish error: %v", err)
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.Subscribe(ctx, "run:*:events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		runID := runIDFromChannel(msg.Channel)
		h.mu.RLock()
		clients := h.clients[runID]
		h.mu.RUnlock()
		for client := range clients {
			select {
			case client.Send <- []byte(msg.Payload):
			default:
			}
		}
	}
}

func redisChannel(runID string) string {
	return "run:" + runID + ":events"
}

func runIDFromChannel(ch string) string {
	// run:{id}:events
	const prefix = "run:"
	const suffix = ":events"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
