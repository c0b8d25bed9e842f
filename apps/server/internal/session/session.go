package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"bridge-lite/bridge"
	"bridge-lite/bridge/npc"
	"bridge-lite/card"
	"bridge-lite/wire"

	"bridge-lite/apps/server/internal/ledger"
)

const (
	// DefaultGrace is how long a dropped seat waits for its player
	// before a bot takes over.
	DefaultGrace = 10 * time.Second

	tickInterval = 200 * time.Millisecond
)

// joinSeats is the order in which guests fill the table. The host
// always holds South.
var joinSeats = []bridge.Seat{bridge.North, bridge.East, bridge.West}

// Config carries the per-session settings fixed at creation.
type Config struct {
	Code      string
	HostName  string
	TurnLimit time.Duration
	MaxRounds int
	Grace     time.Duration
	Seed      int64

	// Clock override for tests (nil => time.Now)
	Clock func() time.Time
}

// Session owns one table: the engine, the connected players, and the
// disconnect grace records. All state is touched only on the actor
// goroutine; callers talk to it through the event channel.
type Session struct {
	Code string

	log    *slog.Logger
	cfg    Config
	game   *bridge.Game
	send   func(connID string, data []byte)
	ledger ledger.Service
	clock  func() time.Time

	events   chan event
	done     chan struct{}
	stopOnce sync.Once

	// OnClose runs once when the session shuts down, after the run
	// loop has exited.
	OnClose func(code string)

	// Actor-goroutine state.
	started bool
	hostID  string
	players map[string]*player        // connID -> player
	order   []string                  // join order, for lobby listing
	pending map[string]*pendingReturn // requested name -> grace record
}

type player struct {
	ConnID string
	Name   string
	Seat   bridge.Seat // SeatNone => spectator
	Host   bool
}

// pendingReturn holds a vacated seat open until the grace deadline.
type pendingReturn struct {
	Seat     bridge.Seat
	Name     string // assigned display name, restored verbatim
	Deadline time.Time
	Host     bool
}

type eventType int

const (
	evtJoin eventType = iota
	evtLeave
	evtMessage
)

type event struct {
	typ    eventType
	connID string
	name   string
	data   []byte

	resp chan error
	join chan JoinResult
}

// JoinResult reports the identity a joiner ended up with after name
// deduplication and seat assignment.
type JoinResult struct {
	Name string
	Seat bridge.Seat
	Host bool
}

// New builds a session and starts its actor goroutine. send delivers
// a marshaled envelope to one connection and must not block.
func New(cfg Config, send func(connID string, data []byte), lg ledger.Service, logger *slog.Logger) (*Session, error) {
	if cfg.Code == "" {
		return nil, fmt.Errorf("empty session code")
	}
	if cfg.Grace == 0 {
		cfg.Grace = DefaultGrace
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	game, err := bridge.NewGame(bridge.Config{
		HostName:   cfg.HostName,
		MaxRounds:  cfg.MaxRounds,
		TurnLimit:  cfg.TurnLimit,
		Seed:       cfg.Seed,
		Clock:      cfg.Clock,
		BotFactory: npc.DefaultFactory(cfg.Seed),
	})
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	s := &Session{
		Code:    cfg.Code,
		log:     logger.With("component", "session", "code", cfg.Code),
		cfg:     cfg,
		game:    game,
		send:    send,
		ledger:  lg,
		clock:   cfg.Clock,
		events:  make(chan event, 64),
		done:    make(chan struct{}),
		players: make(map[string]*player),
		pending: make(map[string]*pendingReturn),
	}

	// Hooks fire on the actor goroutine (every engine call happens
	// there), so they may touch session maps directly.
	game.OnStateChange = s.onStateChange
	game.OnRoundScored = s.onRoundScored

	go s.run()
	return s, nil
}

// Join admits a connection as host, seated guest, or spectator.
func (s *Session) Join(connID, name string) (JoinResult, error) {
	ev := event{
		typ:    evtJoin,
		connID: connID,
		name:   name,
		resp:   make(chan error, 1),
		join:   make(chan JoinResult, 1),
	}
	if err := s.submit(ev); err != nil {
		return JoinResult{}, err
	}
	if err := s.await(ev.resp); err != nil {
		return JoinResult{}, err
	}
	select {
	case result := <-ev.join:
		return result, nil
	case <-s.done:
		return JoinResult{}, fmt.Errorf("session closed")
	}
}

// Leave drops a connection. A seated player gets a grace window
// before a bot takes the seat.
func (s *Session) Leave(connID string) {
	ev := event{typ: evtLeave, connID: connID, resp: make(chan error, 1)}
	if err := s.submit(ev); err != nil {
		return
	}
	_ = s.await(ev.resp)
}

// HandleMessage routes one wire envelope from a connection.
func (s *Session) HandleMessage(connID string, data []byte) error {
	ev := event{typ: evtMessage, connID: connID, data: data, resp: make(chan error, 1)}
	if err := s.submit(ev); err != nil {
		return err
	}
	return s.await(ev.resp)
}

func (s *Session) submit(ev event) error {
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return fmt.Errorf("session closed")
	}
}

func (s *Session) await(resp chan error) error {
	select {
	case err := <-resp:
		return err
	case <-s.done:
		return fmt.Errorf("session closed")
	}
}

// Stop shuts the session down and fires OnClose.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

func (s *Session) run() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-s.events:
			s.handleEvent(ev)
		case <-ticker.C:
			s.tick()
		case <-s.done:
			if s.OnClose != nil {
				s.OnClose(s.Code)
			}
			return
		}
	}
}

func (s *Session) handleEvent(ev event) {
	switch ev.typ {
	case evtJoin:
		result, err := s.handleJoin(ev.connID, ev.name)
		ev.resp <- err
		if err == nil {
			ev.join <- result
		}
	case evtLeave:
		s.handleLeave(ev.connID)
		ev.resp <- nil
	case evtMessage:
		ev.resp <- s.handleMessage(ev.connID, ev.data)
	}
}

func (s *Session) tick() {
	now := s.clock()

	for name, pr := range s.pending {
		if now.Before(pr.Deadline) {
			continue
		}
		delete(s.pending, name)
		if pr.Host {
			s.log.Info("host did not return, closing session")
			s.Stop()
			return
		}
		s.log.Info("grace expired, bot takes over",
			"player", pr.Name, "seat", pr.Seat.String())
		s.game.ReplaceSeatWithBot(pr.Seat, npc.DefaultName(pr.Seat))
		if !s.started {
			s.broadcastLobby()
		}
	}

	if s.started {
		s.game.Tick(now)
	}
}

// handleJoin seats a connection. A name matching a grace record
// reclaims the vacated seat; otherwise the name is deduplicated and
// the first free guest seat (or spectator slot) is assigned.
func (s *Session) handleJoin(connID, name string) (JoinResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return JoinResult{}, fmt.Errorf("empty player name")
	}
	if _, ok := s.players[connID]; ok {
		return JoinResult{}, fmt.Errorf("connection already joined")
	}

	if pr, ok := s.pending[name]; ok {
		delete(s.pending, name)
		p := &player{ConnID: connID, Name: pr.Name, Seat: pr.Seat, Host: pr.Host}
		s.players[connID] = p
		s.order = append(s.order, connID)
		if pr.Host {
			s.hostID = connID
		}
		s.game.RestoreSeat(pr.Seat, pr.Name, connID)
		s.log.Info("player reconnected", "player", pr.Name, "seat", pr.Seat.String())
		s.afterRosterChange(connID)
		return JoinResult{Name: pr.Name, Seat: pr.Seat, Host: pr.Host}, nil
	}

	assigned := s.dedupeName(name)

	p := &player{ConnID: connID, Name: assigned, Seat: bridge.SeatNone}
	if s.hostID == "" && !s.hostPending() {
		p.Host = true
		p.Seat = bridge.South
		s.hostID = connID
	} else if seat, ok := s.freeSeat(); ok {
		p.Seat = seat
	}
	s.players[connID] = p
	s.order = append(s.order, connID)

	if p.Seat != bridge.SeatNone {
		s.game.SetController(p.Seat, bridge.Controller{
			Kind: bridge.ControllerRemote,
			Conn: connID,
		})
		s.game.SetName(p.Seat, assigned)
	}

	role := "spectator"
	if p.Host {
		role = "host"
	} else if p.Seat != bridge.SeatNone {
		role = "player"
	}
	s.log.Info("joined", "player", assigned, "role", role, "seat", p.Seat.String())

	s.afterRosterChange(connID)
	return JoinResult{Name: assigned, Seat: p.Seat, Host: p.Host}, nil
}

// afterRosterChange pushes the right picture to everyone: the lobby
// roster before the first deal, the live state once play has begun.
func (s *Session) afterRosterChange(joined string) {
	if s.started {
		s.sendStateTo(joined)
		return
	}
	s.broadcastLobby()
}

func (s *Session) handleLeave(connID string) {
	p, ok := s.players[connID]
	if !ok {
		return
	}
	delete(s.players, connID)
	for i, id := range s.order {
		if id == connID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if p.Host {
		s.hostID = ""
	}

	if p.Seat == bridge.SeatNone {
		s.log.Info("spectator left", "player", p.Name)
		return
	}

	s.pending[p.Name] = &pendingReturn{
		Seat:     p.Seat,
		Name:     p.Name,
		Deadline: s.clock().Add(s.cfg.Grace),
		Host:     p.Host,
	}
	s.log.Info("player dropped, holding seat",
		"player", p.Name, "seat", p.Seat.String(), "grace", s.cfg.Grace)

	if !s.started {
		s.broadcastLobby()
	}
}

func (s *Session) handleMessage(connID string, data []byte) error {
	var env wire.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("malformed envelope: %w", err)
	}

	switch env.Type {
	case wire.TypeActionStart:
		return s.handleStart(connID)
	case wire.TypeActionAdvance:
		return s.handleAdvance(connID)
	case wire.TypeActionBid:
		return s.handleBid(connID, env)
	case wire.TypeActionPlay:
		return s.handlePlay(connID, env)
	default:
		return fmt.Errorf("unexpected message type %q", env.Type)
	}
}

func (s *Session) handleStart(connID string) error {
	if connID != s.hostID {
		return fmt.Errorf("only the host can start the game")
	}
	// Mark live before dealing so the deal's own broadcast goes out.
	wasStarted := s.started
	s.started = true
	if err := s.game.StartRound(); err != nil {
		s.started = wasStarted
		return err
	}
	return nil
}

func (s *Session) handleAdvance(connID string) error {
	if connID != s.hostID {
		return fmt.Errorf("only the host can advance the round")
	}
	return s.game.AdvanceRound()
}

func (s *Session) handleBid(connID string, env wire.Envelope) error {
	var action wire.BidAction
	if err := env.Decode(&action); err != nil {
		return fmt.Errorf("malformed bid: %w", err)
	}
	bid, err := bridge.ParseBid(action.Bid)
	if err != nil {
		return err
	}

	acting, err := s.actingFor(connID)
	if err != nil {
		return err
	}
	if !s.game.SubmitBid(acting, bid) {
		return fmt.Errorf("illegal bid %q", action.Bid)
	}
	return nil
}

func (s *Session) handlePlay(connID string, env wire.Envelope) error {
	var action wire.PlayAction
	if err := env.Decode(&action); err != nil {
		return fmt.Errorf("malformed play: %w", err)
	}
	c, err := card.Parse(action.Card)
	if err != nil {
		return err
	}

	acting, err := s.actingFor(connID)
	if err != nil {
		return err
	}
	if !s.game.SubmitPlay(acting, c) {
		return fmt.Errorf("illegal play %q", action.Card)
	}
	return nil
}

// actingFor checks that connID controls the seat whose move the game
// is waiting on. During play the dummy's cards belong to the
// declarer's connection.
func (s *Session) actingFor(connID string) (bridge.Seat, error) {
	acting := s.game.ActingSeat()
	if acting == bridge.SeatNone {
		return bridge.SeatNone, fmt.Errorf("no action expected now")
	}
	authority := s.game.AuthorityOf(acting)
	ctrl := s.game.Controller(authority)
	if ctrl.Kind != bridge.ControllerRemote || ctrl.Conn != connID {
		return bridge.SeatNone, fmt.Errorf("not your turn")
	}
	return acting, nil
}

// onStateChange broadcasts every engine snapshot once the table is
// live. Runs under the engine lock on the actor goroutine.
func (s *Session) onStateChange(snap bridge.Snapshot) {
	if !s.started {
		return
	}
	s.broadcastState(snap)
}

// onRoundScored appends the finished deal to the ledger off the actor
// goroutine so a slow database never stalls the table.
func (s *Session) onRoundScored(rec bridge.RoundRecord) {
	entry := ledger.Record{
		SessionCode: s.Code,
		Round:       rec.Round,
		PassedOut:   rec.PassedOut,
		TricksNS:    rec.Tricks[bridge.TeamNS],
		TricksEW:    rec.Tricks[bridge.TeamEW],
		PlayedAt:    s.clock().UTC(),
	}
	if rec.Contract != nil {
		entry.Contract = rec.Contract.String()
		entry.Declarer = rec.Declarer.String()
	}
	if rec.Result != nil {
		entry.ScoringTeam = rec.Result.Team.String()
		entry.Points = rec.Result.Total
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.ledger.AppendRound(ctx, entry); err != nil {
			s.log.Error("ledger append failed", "round", entry.Round, "err", err)
		}
	}()
}

func (s *Session) broadcastState(snap bridge.Snapshot) {
	env, err := wire.NewEnvelope(wire.TypeStateUpdate, wire.FromSnapshot(snap))
	if err != nil {
		s.log.Error("encode state failed", "err", err)
		return
	}
	data, err := json.Marshal(env)
	if err != nil {
		s.log.Error("marshal state failed", "err", err)
		return
	}
	for connID := range s.players {
		s.send(connID, data)
	}
}

func (s *Session) sendStateTo(connID string) {
	env, err := wire.NewEnvelope(wire.TypeStateUpdate, wire.FromSnapshot(s.game.Snapshot()))
	if err != nil {
		s.log.Error("encode state failed", "err", err)
		return
	}
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	s.send(connID, data)
}

// broadcastLobby pushes the roster to everyone. The You field is
// per-recipient, so each connection gets its own marshaling.
func (s *Session) broadcastLobby() {
	roster := make([]wire.LobbyPlayer, 0, len(s.order))
	hostName := ""
	for _, id := range s.order {
		p := s.players[id]
		position := ""
		if p.Seat != bridge.SeatNone {
			position = p.Seat.String()
		}
		roster = append(roster, wire.LobbyPlayer{
			ID:       p.ConnID,
			Position: position,
			Name:     p.Name,
		})
		if p.Host {
			hostName = p.Name
		}
	}

	for connID := range s.players {
		state := wire.LobbyState{
			IsLobbyUpdate: true,
			Players:       roster,
			HostID:        s.hostID,
			HostName:      hostName,
			TimeLimit:     s.cfg.TurnLimit.Milliseconds(),
			MaxRounds:     s.cfg.MaxRounds,
			You:           connID,
		}
		env, err := wire.NewEnvelope(wire.TypeStateUpdate, state)
		if err != nil {
			continue
		}
		data, err := json.Marshal(env)
		if err != nil {
			continue
		}
		s.send(connID, data)
	}
}

// dedupeName appends a numeric suffix when the requested name is
// already taken: "Ala", "Ala(2)", "Ala(3)".
func (s *Session) dedupeName(name string) string {
	taken := make(map[string]bool, len(s.players)+len(s.pending))
	for _, p := range s.players {
		taken[p.Name] = true
	}
	for _, pr := range s.pending {
		taken[pr.Name] = true
	}

	if !taken[name] {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s(%d)", name, i)
		if !taken[candidate] {
			return candidate
		}
	}
}

// hostPending reports whether the host's seat sits inside its grace
// window. While it does, nobody else may be promoted to host.
func (s *Session) hostPending() bool {
	for _, pr := range s.pending {
		if pr.Host {
			return true
		}
	}
	return false
}

// freeSeat returns the first guest seat not held by a connected
// player or a grace record.
func (s *Session) freeSeat() (bridge.Seat, bool) {
	held := make(map[bridge.Seat]bool, 4)
	for _, p := range s.players {
		held[p.Seat] = true
	}
	for _, pr := range s.pending {
		held[pr.Seat] = true
	}
	for _, seat := range joinSeats {
		if !held[seat] {
			return seat, true
		}
	}
	return bridge.SeatNone, false
}
