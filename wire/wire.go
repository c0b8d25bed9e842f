package wire

import (
	"encoding/json"
	"fmt"
)

// Message types carried in the envelope.
const (
	TypeStateUpdate = "STATE_UPDATE"
	TypeActionBid   = "ACTION_BID"
	TypeActionPlay  = "ACTION_PLAY"

	// Host-only controls.
	TypeActionStart   = "ACTION_START"
	TypeActionAdvance = "ACTION_ADVANCE"

	// Server-to-client administrative frames.
	TypeJoined = "JOINED"
	TypeError  = "ERROR"
)

// Envelope is the outer frame of every websocket message.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewEnvelope(msgType string, payload any) (Envelope, error) {
	env := Envelope{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, fmt.Errorf("encode %s payload: %w", msgType, err)
		}
		env.Payload = raw
	}
	return env, nil
}

func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func (e Envelope) Decode(into any) error {
	if err := json.Unmarshal(e.Payload, into); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// BidAction carries one call, e.g. "pass", "double", "4S".
type BidAction struct {
	Bid string `json:"bid"`
}

// PlayAction carries one card identifier, e.g. "AS", "10H".
type PlayAction struct {
	Card string `json:"card"`
}

// JoinAck confirms admission and reports the identity the server
// assigned, which may differ from the requested name.
type JoinAck struct {
	Code        string `json:"code"`
	DisplayCode string `json:"displayCode"`
	Name        string `json:"name"`
	Position    string `json:"position,omitempty"` // empty for spectators
	Host        bool   `json:"host,omitempty"`
}

// ErrorMessage reports a rejected action back to its sender.
type ErrorMessage struct {
	Error string `json:"error"`
}

// GameState is the full broadcast snapshot. Clients replace their
// render state with it wholesale; nothing is ever merged.
type GameState struct {
	State       string `json:"state"`
	RoundNumber int    `json:"roundNumber"`
	Dealer      string `json:"dealer"`

	Declarer      string `json:"declarer,omitempty"`
	Dummy         string `json:"dummy,omitempty"`
	CurrentPlayer string `json:"currentPlayer,omitempty"`

	Scores     map[string]int  `json:"scores"`
	Vulnerable map[string]bool `json:"vulnerable"`

	Hands map[string][]string `json:"hands"`

	Bidding   *BiddingState  `json:"bidding,omitempty"`
	Contract  *ContractState `json:"contract,omitempty"`
	Trick     *TrickState    `json:"trick,omitempty"`
	LastTrick *TrickState    `json:"lastTrick,omitempty"`

	TrickCounts map[string]int `json:"trickCounts,omitempty"`

	LastResult *ScoreState   `json:"lastResult,omitempty"`
	History    []RoundResult `json:"history,omitempty"`

	NetworkPlayers map[string]string `json:"networkPlayers"`
	PlayerNames    map[string]string `json:"playerNames"`

	TurnEndTime int64 `json:"turnEndTime,omitempty"` // unix millis
	TimeLimit   int64 `json:"timeLimit,omitempty"`   // millis, 0 = off
	MaxRounds   int   `json:"maxRounds,omitempty"`
}

type BiddingState struct {
	Bids          []BidEntry `json:"bids"`
	CurrentPlayer string     `json:"currentPlayer,omitempty"`
	Doubled       bool       `json:"doubled,omitempty"`
	Redoubled     bool       `json:"redoubled,omitempty"`
}

type BidEntry struct {
	Player string `json:"player"`
	Bid    string `json:"bid"`
}

type ContractState struct {
	Level     int    `json:"level"`
	Suit      string `json:"suit"`
	Declarer  string `json:"declarer"`
	Dummy     string `json:"dummy"`
	Doubled   bool   `json:"doubled,omitempty"`
	Redoubled bool   `json:"redoubled,omitempty"`
}

type TrickState struct {
	Leader   string            `json:"leader"`
	LedSuit  string            `json:"ledSuit,omitempty"`
	Cards    map[string]string `json:"cards"`
	Order    []string          `json:"order"`
	Winner   string            `json:"winner,omitempty"`
	Complete bool              `json:"complete"`
}

type ScoreState struct {
	Team           string `json:"team"`
	Made           bool   `json:"made"`
	TrickScore     int    `json:"trickScore,omitempty"`
	Bonus          int    `json:"bonus,omitempty"`
	OvertrickScore int    `json:"overtrickScore,omitempty"`
	InsultBonus    int    `json:"insultBonus,omitempty"`
	Penalty        int    `json:"penalty,omitempty"`
	Overtricks     int    `json:"overtricks,omitempty"`
	Undertricks    int    `json:"undertricks,omitempty"`
	Total          int    `json:"total"`
}

type RoundResult struct {
	Round     int            `json:"round"`
	Contract  *ContractState `json:"contract,omitempty"`
	Declarer  string         `json:"declarer,omitempty"`
	Tricks    map[string]int `json:"tricks,omitempty"`
	PassedOut bool           `json:"passedOut,omitempty"`
	Score     *ScoreState    `json:"score,omitempty"`
}

// LobbyState is broadcast while the table is gathering, before any
// deal. The You field is filled per recipient.
type LobbyState struct {
	IsLobbyUpdate bool          `json:"isLobbyUpdate"`
	Players       []LobbyPlayer `json:"players"`
	HostID        string        `json:"hostId"`
	HostName      string        `json:"hostName"`
	TimeLimit     int64         `json:"timeLimit,omitempty"` // millis
	MaxRounds     int           `json:"maxRounds,omitempty"`
	You           string        `json:"you,omitempty"`
}

type LobbyPlayer struct {
	ID       string `json:"id"`
	Position string `json:"position"`
	Name     string `json:"name"`
}
