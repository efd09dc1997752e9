// internal/websocket/hub.go
package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"gongu-service/internal/domain/groupbuy"

	"go.uber.org/zap"
)

// Hub fans campaign lifecycle events out to connected seller dashboards.
// Clients are keyed by seller id; a seller may hold several connections
// (several dashboard tabs, several devices).
type Hub struct {
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	outbound   chan *sellerMessage

	logger *zap.Logger
}

type sellerMessage struct {
	sellerID int64
	payload  []byte
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan *sellerMessage, 256),
		logger:     logger,
	}
}

// Run owns the client registry. Must run in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.sellerID] == nil {
				h.clients[client.sellerID] = make(map[*Client]bool)
			}
			h.clients[client.sellerID][client] = true
			h.mu.Unlock()
			h.logger.Info("dashboard connected", zap.Int64("seller_id", client.sellerID))

		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[client.sellerID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.send)
					if len(conns) == 0 {
						delete(h.clients, client.sellerID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.outbound:
			h.mu.RLock()
			for client := range h.clients[msg.sellerID] {
				select {
				case client.send <- msg.payload:
				default:
					// Slow consumer; drop the connection rather than block
					// the hub loop.
					go func(c *Client) { h.unregister <- c }(client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// PublishCampaignClosed pushes the close notification to the owning
// seller's live dashboard connections. Satisfies the lifecycle publisher
// interface; a seller with no open connection simply misses the push and
// reads the status from the API instead.
func (h *Hub) PublishCampaignClosed(ctx context.Context, event *groupbuy.CampaignClosed) error {
	payload, err := json.Marshal(map[string]interface{}{
		"type":  "campaign_closed",
		"event": event,
	})
	if err != nil {
		return err
	}

	select {
	case h.outbound <- &sellerMessage{sellerID: event.SellerID, payload: payload}:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// Register hands a freshly upgraded connection to the hub loop.
func (h *Hub) Register(client *Client) {
	h.register <- client
}
