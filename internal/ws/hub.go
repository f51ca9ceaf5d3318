package ws

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/bakehouse-pos/api/internal/timeutil"
	"github.com/sirupsen/logrus"
)

// Event is one message pushed to a location's live feed.
type Event struct {
	Type     string          `json:"type"`
	Location string          `json:"location"`
	At       string          `json:"at"`
	Payload  json.RawMessage `json:"payload"`
}

// locationEvent routes an event to one room.
type locationEvent struct {
	Location string
	Event    Event
}

// Hub keeps one room of clients per location and fans events out to them.
type Hub struct {
	// Registered clients by location id
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *locationEvent
	// closed when Run returns
	done chan struct{}

	log logrus.FieldLogger
	mu  sync.RWMutex
}

// NewHub creates a Hub. A nil logger discards output.
func NewHub(log logrus.FieldLogger) *Hub {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *locationEvent, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run processes registrations and broadcasts until ctx is done, then closes
// every client. After Run returns, join refuses new clients and leave is a
// no-op.
// This should be called as a goroutine: go hub.Run(ctx)
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for loc, clients := range h.rooms {
				for c := range clients {
					close(c.send)
				}
				delete(h.rooms, loc)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.location] == nil {
				h.rooms[client.location] = make(map[*Client]bool)
			}
			h.rooms[client.location][client] = true
			h.mu.Unlock()
			h.log.WithFields(logrus.Fields{"client": client.id, "location": client.location}).Debug("ws client joined")

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event.Event)
			if err != nil {
				h.log.WithError(err).Warn("ws marshal event")
				continue
			}

			h.mu.Lock()
			for client := range h.rooms[event.Location] {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop it.
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// join hands client to Run. It reports false once the hub has stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave hands client back to Run for removal.
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// remove drops a client from its room. Callers hold mu.
func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.location]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.location)
	}
}

// Broadcast queues an event for every client watching location. It never
// blocks; when the queue is full the event is dropped.
func (h *Hub) Broadcast(location string, event Event) {
	select {
	case h.broadcast <- &locationEvent{Location: location, Event: event}:
	default:
		h.log.WithFields(logrus.Fields{"location": location, "type": event.Type}).Warn("ws queue full, event dropped")
	}
}

// Publish marshals payload and broadcasts it as eventType.
func (h *Hub) Publish(location, eventType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.log.WithError(err).WithField("type", eventType).Warn("ws marshal payload")
		return
	}
	d, c := timeutil.DateTime(timeutil.Now())
	h.Broadcast(location, Event{
		Type:     eventType,
		Location: location,
		At:       d + " " + c,
		Payload:  raw,
	})
}

// Clients returns the number of clients watching location.
func (h *Hub) Clients(location string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[location])
}
