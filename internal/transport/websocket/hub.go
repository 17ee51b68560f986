package websocket

import (
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/duelrooms-backend/internal/metrics"
)

// Hub tracks live connections and the room groups they belong to. Sends never
// block: a connection whose queue is full loses the message.
type Hub struct {
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu      sync.RWMutex
	clients map[string]*Client
	groups  map[string]map[string]struct{}
}

func NewHub(logger *slog.Logger, stats *metrics.Metrics) *Hub {
	return &Hub{
		logger:  logger.With("component", "hub"),
		metrics: stats,
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]struct{}),
	}
}

func (that *Hub) register(client *Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.clients[client.id] = client
	that.metrics.Connections.Inc()
}

// unregister - drops the client from every group and closes its queue.
func (that *Hub) unregister(client *Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.clients[client.id]; !ok {
		return
	}

	delete(that.clients, client.id)
	for code, members := range that.groups {
		delete(members, client.id)
		if len(members) == 0 {
			delete(that.groups, code)
		}
	}

	close(client.send)
	that.metrics.Connections.Dec()
}

func (that *Hub) JoinGroup(connectionID, roomCode string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.clients[connectionID]; !ok {
		return
	}

	members, ok := that.groups[roomCode]
	if !ok {
		members = make(map[string]struct{})
		that.groups[roomCode] = members
	}
	members[connectionID] = struct{}{}
}

func (that *Hub) LeaveGroup(connectionID, roomCode string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	members := that.groups[roomCode]
	delete(members, connectionID)
	if len(members) == 0 {
		delete(that.groups, roomCode)
	}
}

func (that *Hub) SendTo(connectionID, event string, payload any) {
	data, ok := that.encode(event, payload)
	if !ok {
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	if client, found := that.clients[connectionID]; found {
		that.deliver(client, event, data)
	}
}

func (that *Hub) SendToRoom(roomCode, event string, payload any) {
	that.SendToRoomExcept(roomCode, "", event, payload)
}

func (that *Hub) SendToRoomExcept(roomCode, excludedConnectionID, event string, payload any) {
	data, ok := that.encode(event, payload)
	if !ok {
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for id := range that.groups[roomCode] {
		if id == excludedConnectionID {
			continue
		}

		if client, found := that.clients[id]; found {
			that.deliver(client, event, data)
		}
	}
}

// Close - closes every connection, their read loops then run the disconnect path.
func (that *Hub) Close() {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, client := range that.clients {
		_ = client.conn.Close()
	}
}

// deliver - caller holds the read lock, so the queue cannot be closed concurrently.
func (that *Hub) deliver(client *Client, event string, data []byte) {
	select {
	case client.send <- data:
	default:
		that.logger.Warn("send queue is full, message dropped", "connection", client.id, "event", event)
	}
}

func (that *Hub) encode(event string, payload any) ([]byte, bool) {
	data, err := encode(event, payload)
	if err != nil {
		that.logger.Error("failed to encode event", "event", event, "error", err)
		return nil, false
	}
	return data, true
}
