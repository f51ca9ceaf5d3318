package ws

import (
	"net/http"
	"time"

	"github.com/bakehouse-pos/api/internal/auth"
	"github.com/bakehouse-pos/api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeTimeout = 10 * time.Second
	// A terminal that misses pongs for this long is dropped.
	idleTimeout  = 60 * time.Second
	pingInterval = idleTimeout * 9 / 10
	// Terminals only send control frames.
	readLimit    = 512
	sendBuffer   = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Access is decided by the query token, not the Origin header.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Client is one terminal watching a location's feed.
type Client struct {
	id       string
	hub      *Hub
	conn     *websocket.Conn
	location string
	send     chan []byte
}

func (c *Client) logRead(err error) {
	if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
		c.hub.log.WithError(err).WithFields(logrus.Fields{"client": c.id, "location": c.location}).Warn("websocket read")
	}
}

// readLoop keeps the read deadline fresh on every pong and returns when the
// terminal disconnects. Inbound data frames are discarded.
func (c *Client) readLoop() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.logRead(err)
			return
		}
	}
}

// flush writes msg plus anything already queued as one newline-joined frame.
func (c *Client) flush(msg []byte) error {
	w, err := c.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	w.Write(msg)
	for pending := len(c.send); pending > 0; pending-- {
		w.Write([]byte{'\n'})
		w.Write(<-c.send)
	}
	return w.Close()
}

// writeLoop drains send to the socket and pings on an interval. A closed
// send channel means the hub dropped this client.
func (c *Client) writeLoop() {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, open := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !open {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.flush(msg); err != nil {
				return
			}
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Handler returns the upgrade endpoint for
// GET /ws/locations/{location}?token=JWT
func Handler(hub *Hub, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, jwtSecret, w, r)
	}
}

// ServeWS authenticates the query token, checks location access and
// upgrades the connection. Once the hub has stopped, the socket is closed
// right after the upgrade.
func ServeWS(hub *Hub, jwtSecret string, w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	claims, err := auth.ValidateToken(jwtSecret, raw)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	location, err := store.NormalizeLocationID(chi.URLParam(r, "location"))
	if err != nil {
		http.Error(w, "invalid location id", http.StatusBadRequest)
		return
	}
	if !claims.CanAccess(location) {
		http.Error(w, "location access denied", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.WithError(err).Warn("websocket upgrade")
		return
	}
	c := &Client{
		id:       uuid.NewString(),
		hub:      hub,
		conn:     conn,
		location: location,
		send:     make(chan []byte, sendBuffer),
	}
	if !hub.join(c) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go c.writeLoop()
	go c.readLoop()
}
