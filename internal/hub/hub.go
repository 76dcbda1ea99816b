package hub

import (
	"encoding/json"
	"sync"

	"github.com/athenalobo/muditha-platform/internal/config"
	"github.com/athenalobo/muditha-platform/pkg/log"
)

// Hub owns the subscription registry: which connections are subscribed
// to which room, plus a per-user index for out-of-band notifications.
// The registry lock is held only while snapshotting membership, never
// across I/O.
type Hub struct {
	clients    map[string]*Client            // clientID -> client
	rooms      map[string]map[string]*Client // roomID -> clientID -> client
	users      map[string]map[string]*Client // userID -> clientID -> client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	config     config.WebSocketConfig
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		users:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		config:     cfg,
	}
}

func (h *Hub) Run() {
	l := log.L()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			if _, ok := h.users[client.UserID]; !ok {
				h.users[client.UserID] = make(map[string]*Client)
			}
			h.users[client.UserID][client.ID] = client
			h.mu.Unlock()
			l.Debug().
				Str(log.FieldClientID, client.ID).
				Str(log.FieldUserID, client.UserID).
				Msg("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				h.detachLocked(client)
				delete(h.clients, client.ID)
				if userClients, ok := h.users[client.UserID]; ok {
					delete(userClients, client.ID)
					if len(userClients) == 0 {
						delete(h.users, client.UserID)
					}
				}
				client.closeSend()
			}
			h.mu.Unlock()
			l.Debug().Str(log.FieldClientID, client.ID).Msg("client unregistered")
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// JoinRoom subscribes the client to a room, replacing any previous
// subscription. A connection follows at most one room at a time. Returns
// the room the client was subscribed to before, if any.
func (h *Hub) JoinRoom(client *Client, roomID string) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	previous := h.detachLocked(client)

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[string]*Client)
	}
	h.rooms[roomID][client.ID] = client
	client.room = roomID

	l := log.L()
	l.Info().
		Str(log.FieldClientID, client.ID).
		Str(log.FieldRoomID, roomID).
		Msg("client subscribed to room")
	return previous
}

// LeaveRoom drops the client's room subscription, returning the room it
// was subscribed to, if any.
func (h *Hub) LeaveRoom(client *Client) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.detachLocked(client)
}

// Room returns the client's current room subscription.
func (h *Hub) Room(client *Client) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return client.room
}

// detachLocked removes the client from its current room. Caller holds
// the registry lock.
func (h *Hub) detachLocked(client *Client) string {
	roomID := client.room
	if roomID == "" {
		return ""
	}
	if roomClients, ok := h.rooms[roomID]; ok {
		delete(roomClients, client.ID)
		if len(roomClients) == 0 {
			delete(h.rooms, roomID)
		}
	}
	client.room = ""
	return roomID
}

// BroadcastToRoom fans a message out to every connection subscribed to
// the room at the moment of the call. Delivery is at-most-once per
// connection: a subscriber whose send buffer is full is dropped, not
// retried.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}, exclude string) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	recipients := make([]*Client, 0, len(h.rooms[roomID]))
	for clientID, client := range h.rooms[roomID] {
		if clientID == exclude {
			continue
		}
		recipients = append(recipients, client)
	}
	h.mu.RUnlock()

	for _, client := range recipients {
		if !client.deliver(data) {
			go h.removeClient(client)
		}
	}
	return nil
}

// SendToClient pushes a message to one connection, best-effort. Returns
// false when the connection is not registered on this instance.
func (h *Hub) SendToClient(clientID string, message interface{}) bool {
	data, err := json.Marshal(message)
	if err != nil {
		return false
	}

	h.mu.RLock()
	client, ok := h.clients[clientID]
	h.mu.RUnlock()
	if !ok {
		return false
	}

	return client.deliver(data)
}

// SendToUser pushes a message to every live connection of a user on
// this instance, best-effort. Returns true when at least one connection
// accepted it.
func (h *Hub) SendToUser(userID string, message interface{}) bool {
	data, err := json.Marshal(message)
	if err != nil {
		return false
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.users[userID]))
	for _, client := range h.users[userID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	delivered := false
	for _, client := range clients {
		if client.deliver(data) {
			delivered = true
		}
	}
	return delivered
}

// RoomClientCount returns the number of live subscribers for a room.
func (h *Hub) RoomClientCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) removeClient(client *Client) {
	h.unregister <- client
}
