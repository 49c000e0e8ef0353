package websocket

import (
	"context"
	"sync"

	"github.com/KevinKickass/OpenRelayCore/internal/command"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CommandHandler executes inbound frames and provides the greeting for
// new sessions.
type CommandHandler interface {
	ExecuteRaw(raw []byte) command.Outcome
	Welcome() []byte
}

// Hub maintains active WebSocket clients and broadcasts messages
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound messages for every client
	broadcast chan []byte

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	mu sync.RWMutex

	logger  *zap.Logger
	handler CommandHandler
}

// NewHub creates a new Hub instance
func NewHub(logger *zap.Logger, handler CommandHandler) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		logger:     logger,
		handler:    handler,
	}
}

// Run starts the hub's main event loop. It returns when ctx is cancelled,
// after closing every client.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("WebSocket Hub started")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.logger.Info("WebSocket Hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("WebSocket client connected",
				zap.String("session_id", client.id.String()),
				zap.String("remote_addr", client.remoteAddr),
				zap.Int("total_clients", total))

			// Snapshot taken after registration: any later mutation is
			// still ahead in the broadcast queue, so nothing is missed.
			if !h.SendTo(client.id, h.handler.Welcome()) {
				h.logger.Warn("Welcome not queued",
					zap.String("session_id", client.id.String()))
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Info("WebSocket client disconnected",
					zap.String("session_id", client.id.String()),
					zap.Int("total_clients", len(h.clients)))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow or dead client: drop it rather than stall the others.
					close(client.send)
					delete(h.clients, client)
					h.logger.Warn("Client send buffer full, unregistering",
						zap.String("session_id", client.id.String()),
						zap.String("remote_addr", client.remoteAddr))
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// Broadcast queues a message for all connected clients without blocking.
func (h *Hub) Broadcast(data []byte) {
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("Hub broadcast channel full, message dropped",
			zap.Int("bytes", len(data)))
	}
}

// SendTo queues a message for a single session. It reports false when
// the session is unknown or its buffer is full.
func (h *Hub) SendTo(sessionID uuid.UUID, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.id != sessionID {
			continue
		}
		select {
		case client.send <- data:
			return true
		default:
			return false
		}
	}
	return false
}

// Done is closed once Run has returned and every client was closed.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Sessions lists the ids of connected clients.
func (h *Hub) Sessions() []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(h.clients))
	for client := range h.clients {
		ids = append(ids, client.id)
	}
	return ids
}
