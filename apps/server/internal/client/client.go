// Package client is a headless websocket client for the game server.
// It mirrors the browser client's protocol: join by room code, accept
// whole-state broadcasts, and submit one action at a time.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"bridge-lite/wire"

	"github.com/gorilla/websocket"
)

// ErrAwaitingState is returned when an action is submitted before the
// previous one has been reflected in a broadcast. The server is the
// only authority; the client never applies its own actions locally.
var ErrAwaitingState = errors.New("previous action not yet confirmed")

// JoinError is a rejected websocket handshake with the server's
// stated reason. Temporary errors are worth retrying.
type JoinError struct {
	Status int
	Reason string
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("join rejected (%d): %s", e.Status, e.Reason)
}

func (e *JoinError) Temporary() bool {
	return e.Status >= 500
}

// Options controls room creation. Zero values mean server defaults.
type Options struct {
	TurnLimit time.Duration
	MaxRounds int
	Seed      int64
}

type Client struct {
	log  *slog.Logger
	conn *websocket.Conn

	writeMu sync.Mutex

	mu       sync.RWMutex
	ack      wire.JoinAck
	state    *wire.GameState
	lobby    *wire.LobbyState
	awaiting bool

	done      chan struct{}
	closeOnce sync.Once

	// Optional callbacks, invoked from the read loop.
	OnState func(wire.GameState)
	OnLobby func(wire.LobbyState)
	OnError func(string)
}

// Create opens a new room on the server and returns the connected
// host client. serverURL is the http(s) base, e.g. "http://host:8080".
func Create(ctx context.Context, serverURL, name string, opts Options) (*Client, error) {
	q := url.Values{}
	q.Set("name", name)
	q.Set("create", "1")
	if opts.TurnLimit > 0 {
		q.Set("limit", strconv.Itoa(int(opts.TurnLimit/time.Second)))
	}
	if opts.MaxRounds > 0 {
		q.Set("rounds", strconv.Itoa(opts.MaxRounds))
	}
	if opts.Seed != 0 {
		q.Set("seed", strconv.FormatInt(opts.Seed, 10))
	}
	return dial(ctx, serverURL, q)
}

// Join connects to an existing room by its code, with or without the
// display prefix.
func Join(ctx context.Context, serverURL, code, name string) (*Client, error) {
	q := url.Values{}
	q.Set("name", name)
	q.Set("code", code)
	return dial(ctx, serverURL, q)
}

func dial(ctx context.Context, serverURL string, q url.Values) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws"
	u.RawQuery = q.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			reason := strings.TrimSpace(readBody(resp))
			if reason == "" {
				reason = resp.Status
			}
			return nil, &JoinError{Status: resp.StatusCode, Reason: reason}
		}
		return nil, fmt.Errorf("dial %s: %w", u.Host, err)
	}

	c := &Client{
		log:  slog.Default().With("component", "client"),
		conn: conn,
		done: make(chan struct{}),
	}

	// The join ack arrives first; wait for it so callers immediately
	// know their assigned name and seat.
	if err := c.readJoinAck(); err != nil {
		conn.Close()
		return nil, err
	}

	go c.readLoop()
	return c, nil
}

func readBody(resp *http.Response) string {
	if resp.Body == nil {
		return ""
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return ""
	}
	return string(body)
}

func (c *Client) readJoinAck() error {
	c.conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	defer c.conn.SetReadDeadline(time.Time{})

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read join ack: %w", err)
	}
	var env wire.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("malformed join ack: %w", err)
	}
	switch env.Type {
	case wire.TypeJoined:
		return env.Decode(&c.ack)
	case wire.TypeError:
		var msg wire.ErrorMessage
		if err := env.Decode(&msg); err != nil {
			return err
		}
		return &JoinError{Status: http.StatusForbidden, Reason: msg.Error}
	default:
		return fmt.Errorf("unexpected first frame %q", env.Type)
	}
}

// Ack reports the identity assigned at join time.
func (c *Client) Ack() wire.JoinAck {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ack
}

// RoomCode is the shareable code of the joined room.
func (c *Client) RoomCode() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ack.DisplayCode
}

// State returns the latest game broadcast, if any has arrived.
func (c *Client) State() (wire.GameState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state == nil {
		return wire.GameState{}, false
	}
	return *c.state, true
}

// Lobby returns the latest roster broadcast, if any.
func (c *Client) Lobby() (wire.LobbyState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lobby == nil {
		return wire.LobbyState{}, false
	}
	return *c.lobby, true
}

// Done closes when the connection drops.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// SubmitBid sends one call, e.g. "pass", "double", "4S". Further
// submissions are rejected until the next state broadcast lands.
func (c *Client) SubmitBid(bid string) error {
	return c.submit(wire.TypeActionBid, wire.BidAction{Bid: bid})
}

// SubmitPlay sends one card identifier, e.g. "AS", "10H".
func (c *Client) SubmitPlay(card string) error {
	return c.submit(wire.TypeActionPlay, wire.PlayAction{Card: card})
}

// Start asks the server to deal the first round. Host only.
func (c *Client) Start() error {
	return c.send(wire.TypeActionStart, nil)
}

// Advance skips the between-rounds pause. Host only.
func (c *Client) Advance() error {
	return c.send(wire.TypeActionAdvance, nil)
}

func (c *Client) submit(msgType string, payload any) error {
	c.mu.Lock()
	if c.awaiting {
		c.mu.Unlock()
		return ErrAwaitingState
	}
	c.awaiting = true
	c.mu.Unlock()

	if err := c.send(msgType, payload); err != nil {
		c.mu.Lock()
		c.awaiting = false
		c.mu.Unlock()
		return err
	}
	return nil
}

func (c *Client) send(msgType string, payload any) error {
	env, err := wire.NewEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	data, err := env.Marshal()
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) readLoop() {
	defer c.closeOnce.Do(func() {
		c.conn.Close()
	})
	defer close(c.done)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var env wire.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.log.Warn("malformed frame", "err", err)
			continue
		}
		c.dispatch(env)
	}
}

func (c *Client) dispatch(env wire.Envelope) {
	switch env.Type {
	case wire.TypeStateUpdate:
		// Lobby rosters and game snapshots share the frame type;
		// the isLobbyUpdate flag tells them apart.
		var probe struct {
			IsLobbyUpdate bool `json:"isLobbyUpdate"`
		}
		if err := env.Decode(&probe); err != nil {
			c.log.Warn("bad state update", "err", err)
			return
		}
		if probe.IsLobbyUpdate {
			var lobbyState wire.LobbyState
			if err := env.Decode(&lobbyState); err != nil {
				return
			}
			c.mu.Lock()
			c.lobby = &lobbyState
			c.mu.Unlock()
			if c.OnLobby != nil {
				c.OnLobby(lobbyState)
			}
			return
		}

		var state wire.GameState
		if err := env.Decode(&state); err != nil {
			c.log.Warn("bad state update", "err", err)
			return
		}
		c.mu.Lock()
		c.state = &state
		c.awaiting = false
		c.mu.Unlock()
		if c.OnState != nil {
			c.OnState(state)
		}

	case wire.TypeError:
		var msg wire.ErrorMessage
		if err := env.Decode(&msg); err != nil {
			return
		}
		// A rejection means the pending action will never appear in
		// a broadcast; release the submit lock.
		c.mu.Lock()
		c.awaiting = false
		c.mu.Unlock()
		if c.OnError != nil {
			c.OnError(msg.Error)
		}

	case wire.TypeJoined:
		var ack wire.JoinAck
		if err := env.Decode(&ack); err != nil {
			return
		}
		c.mu.Lock()
		c.ack = ack
		c.mu.Unlock()
	}
}
