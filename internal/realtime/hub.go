package realtime

import (
	"context"
	"encoding/json"
	"log"
)

// Hub owns the set of connected mini-app clients and routes events to them.
// Unlike a chat fanout, events here are per-user: a player command for one
// user must only reach that user's open mini-app.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Outbound events addressed to a single user's clients.
	events chan envelope

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client
}

type envelope struct {
	userID string
	data   []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		events:     make(chan envelope, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
				_ = client.conn.Close()
			}
			return

		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				_ = client.conn.Close()
			}

		case ev := <-h.events:
			for client := range h.clients {
				if client.userID != ev.userID {
					continue
				}
				select {
				case client.send <- ev.data:
				default:
					delete(h.clients, client)
					close(client.send)
					_ = client.conn.Close()
				}
			}
		}
	}
}

// Publish sends an event to every open client of one user. Best-effort: with
// no client connected the event is dropped.
func (h *Hub) Publish(userID string, event map[string]any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("mini-music: marshal event: %v", err)
		return
	}
	select {
	case h.events <- envelope{userID: userID, data: data}:
	default:
		log.Printf("mini-music: event channel full, dropping event for %s", userID)
	}
}
