// Package gateway terminates websocket connections and hands their
// traffic to the owning session.
package gateway

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"bridge-lite/bridge"
	"bridge-lite/wire"

	"bridge-lite/apps/server/internal/ledger"
	"bridge-lite/apps/server/internal/lobby"
	"bridge-lite/apps/server/internal/session"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: Restrict in production
	},
}

// Connection is one websocket client. Writes go through the Send
// channel; the writePump is the only goroutine touching the socket
// for writes.
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Gateway *Gateway

	Session *session.Session
	Name    string
}

// Gateway tracks live connections and creates sessions on demand.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection

	registry *lobby.Registry
	ledger   ledger.Service
	log      *slog.Logger

	// Defaults applied when the host omits settings.
	defaultGrace time.Duration
}

func New(registry *lobby.Registry, lg ledger.Service, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		connections:  make(map[string]*Connection),
		registry:     registry,
		ledger:       lg,
		log:          logger.With("component", "gateway"),
		defaultGrace: session.DefaultGrace,
	}
}

// HandleWebSocket validates the join request, then upgrades. Bad
// requests fail with a plain HTTP status so the client gets a
// readable reason instead of a dropped socket.
//
// Query parameters: name (required), create=1 to open a new room,
// code to join an existing one, and for room creation limit (per-turn
// seconds), rounds, seed.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	name := strings.TrimSpace(q.Get("name"))
	if name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}

	var sess *session.Session
	created := false
	if q.Get("create") == "1" {
		var err error
		sess, err = g.createSession(name, q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		created = true
	} else {
		code, err := lobby.NormalizeCode(q.Get("code"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var ok bool
		sess, ok = g.registry.Get(code)
		if !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("upgrade failed", "err", err)
		if created {
			sess.Stop()
		}
		return
	}

	c := &Connection{
		ID:      uuid.NewString(),
		Conn:    conn,
		Send:    make(chan []byte, 256),
		Gateway: g,
		Session: sess,
	}
	g.mu.Lock()
	g.connections[c.ID] = c
	total := len(g.connections)
	g.mu.Unlock()

	go c.writePump()

	result, err := sess.Join(c.ID, name)
	if err != nil {
		g.log.Warn("join rejected", "name", name, "err", err)
		c.sendEnvelope(wire.TypeError, wire.ErrorMessage{Error: err.Error()})
		c.closeSend()
		g.removeConnection(c, false)
		return
	}
	c.Name = result.Name

	position := ""
	if result.Seat != bridge.SeatNone {
		position = result.Seat.String()
	}
	c.sendEnvelope(wire.TypeJoined, wire.JoinAck{
		Code:        sess.Code,
		DisplayCode: lobby.DisplayCode(sess.Code),
		Name:        result.Name,
		Position:    position,
		Host:        result.Host,
	})

	g.log.Info("client connected",
		"conn", c.ID, "name", result.Name, "room", sess.Code, "total", total)

	go c.readPump()
}

func (g *Gateway) createSession(hostName string, q map[string][]string) (*session.Session, error) {
	code := g.registry.NewCode()

	cfg := session.Config{
		Code:      code,
		HostName:  hostName,
		TurnLimit: time.Duration(intParam(q, "limit", 0)) * time.Second,
		MaxRounds: intParam(q, "rounds", 0),
		Grace:     g.defaultGrace,
		Seed:      int64(intParam(q, "seed", 0)),
	}

	sess, err := session.New(cfg, g.SendTo, g.ledger, g.log)
	if err != nil {
		return nil, err
	}
	sess.OnClose = g.registry.Remove
	if err := g.registry.Put(code, sess); err != nil {
		sess.Stop()
		return nil, err
	}
	g.log.Info("room created", "room", code, "host", hostName)
	return sess, nil
}

func intParam(q map[string][]string, key string, fallback int) int {
	values, ok := q[key]
	if !ok || len(values) == 0 {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(values[0]))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c, true)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(65536)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Gateway.log.Warn("read error", "conn", c.ID, "err", err)
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}
		if err := c.Session.HandleMessage(c.ID, message); err != nil {
			c.sendEnvelope(wire.TypeError, wire.ErrorMessage{Error: err.Error()})
		}
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Connection) sendEnvelope(msgType string, payload any) {
	env, err := wire.NewEnvelope(msgType, payload)
	if err != nil {
		return
	}
	data, err := env.Marshal()
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	default:
		// Drop if buffer full
	}
}

func (c *Connection) closeSend() {
	close(c.Send)
}

// removeConnection forgets the socket and, when it was admitted,
// tells its session so the seat enters the grace window.
func (g *Gateway) removeConnection(c *Connection, notifySession bool) {
	g.mu.Lock()
	_, known := g.connections[c.ID]
	delete(g.connections, c.ID)
	total := len(g.connections)
	g.mu.Unlock()

	if !known {
		return
	}
	if notifySession && c.Name != "" {
		c.Session.Leave(c.ID)
	}
	g.log.Info("client disconnected", "conn", c.ID, "total", total)
}

// SendTo queues a frame for one connection. Sessions call this from
// their actor goroutine, so it must never block.
func (g *Gateway) SendTo(connID string, data []byte) {
	g.mu.RLock()
	c := g.connections[connID]
	g.mu.RUnlock()

	if c == nil {
		return
	}
	select {
	case c.Send <- data:
	default:
		// Drop if buffer full
	}
}

// ConnectionCount is used by the health endpoint.
func (g *Gateway) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.connections)
}
