package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"ai-assistant-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const clusterChannel = "assistant:push"

// Message is the envelope of every push.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type clusterMessage struct {
	Origin       string          `json:"origin"`
	TargetUserId string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

type Hub struct {
	// UserId -> open connections (multi-device)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fanout, nil on a single instance
	rdb        *redis.Client
	instanceId string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, instanceId string, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instanceId: instanceId,
		logger:     log,
	}
}

// Run owns client registration until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserId] = append(h.clients[client.UserId], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserId})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.UserId]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.UserId] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.UserId]) == 0 {
		delete(h.clients, client.UserId)
		h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserId})
	}
}

// Send pushes {type, data} to every connection of the user, here and on the
// other instances.
func (h *Hub) Send(userId string, msgType string, data interface{}) {
	payload, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode push", map[string]interface{}{"type": msgType, "error": err.Error()})
		return
	}

	h.deliverLocal(userId, payload)

	if h.rdb != nil {
		msg, _ := json.Marshal(clusterMessage{Origin: h.instanceId, TargetUserId: userId, Message: payload})
		if err := h.rdb.Publish(context.Background(), clusterChannel, msg).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to publish push to cluster", map[string]interface{}{"error": err.Error()})
		}
	}
}

// Connected reports whether the user has an open connection on this instance.
func (h *Hub) Connected(userId string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userId]) > 0
}

func (h *Hub) deliverLocal(userId string, payload []byte) {
	// remove closes Send under the write lock, so the read lock spans every send
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[userId] {
		select {
		case client.Send <- payload:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{"user_id": userId})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	// Every instance listens on one channel and keeps what targets its own clients
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Redis push parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == h.instanceId {
				continue
			}
			h.deliverLocal(payload.TargetUserId, payload.Message)
		}
	}
}
