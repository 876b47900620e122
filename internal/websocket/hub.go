package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/AndikaHugaW/OXEN-AI-sub000/internal/pkg/logger"
	"github.com/AndikaHugaW/OXEN-AI-sub000/pkg/assistant"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Frame is one message pushed over the socket during an answer.
// type "token" carries an incremental chunk, "answer" the final envelope,
// "error" an abort notice.
type Frame struct {
	Type      string      `json:"type"`
	SessionId string      `json:"session_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

type Hub struct {
	// Registered clients map: UserID -> List of Clients (multi-device)
	clients map[uuid.UUID][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// SendToken pushes one incremental token to every device of the user.
func (h *Hub) SendToken(userID uuid.UUID, sessionID, token string) {
	h.send(userID, Frame{Type: "token", SessionId: sessionID, Data: token})
}

// SendAnswer pushes the final envelope once the stream (or blocking demotion)
// finished.
func (h *Hub) SendAnswer(userID uuid.UUID, sessionID string, env *assistant.AnswerEnvelope) {
	h.send(userID, Frame{Type: "answer", SessionId: sessionID, Data: env})
}

// SendError tells the client the in-flight answer aborted.
func (h *Hub) SendError(userID uuid.UUID, sessionID, message string) {
	h.send(userID, Frame{Type: "error", SessionId: sessionID, Data: message})
}

func (h *Hub) send(userID uuid.UUID, frame Frame) {
	data, _ := json.Marshal(frame)

	h.mu.RLock()
	clients, localFound := h.clients[userID]
	h.mu.RUnlock()

	if localFound {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"user_id": userID})
				close(client.Send)
				h.unregister <- client
			}
		}
	}

	// Publish to Redis so other instances can reach the user's devices
	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_user_id": userID.String(),
			"message":        json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to one shared channel carrying
	// {target_user_id, data}; a message is delivered only when the target
	// user has a local connection.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		uid, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			continue
		}

		h.mu.RLock()
		clients, ok := h.clients[uid]
		h.mu.RUnlock()

		if ok {
			for _, client := range clients {
				select {
				case client.Send <- payload.Message:
				default:
					close(client.Send)
					h.unregister <- client
				}
			}
		}
	}
}
