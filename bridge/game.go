package bridge

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"bridge-lite/card"
)

// Game is the single-table engine for one four-seat session. All
// mutation goes through its mutex; the engine never starts goroutines
// of its own. Delayed transitions (bot think time, trick collection,
// the pause between rounds, the turn clock) are deadlines fired by an
// external Tick loop, and at most one of them is armed after any
// state change.
type Game struct {
	cfg   Config
	rng   *rand.Rand
	clock func() time.Time
	log   *slog.Logger

	mu sync.Mutex

	phase       Phase
	roundNumber int
	dealer      Seat

	hands     [4]card.CardList
	auction   *Auction
	contract  *Contract
	tricks    *TrickManager
	lastTrick *Trick

	scores     [2]int
	vulnerable [2]bool
	history    []RoundRecord
	lastResult *ScoreResult

	controllers [4]Controller
	names       [4]string
	bots        [4]BotPlayer

	// pending deadlines, zero time = disarmed
	turnDeadline   time.Time
	botActAt       time.Time
	trickAdvanceAt time.Time
	roundRestartAt time.Time

	// Hooks fire with the mutex held and must not call back into the
	// engine. Set them before StartRound.
	OnStateChange   func(Snapshot)
	OnBidMade       func(Seat, Bid)
	OnCardPlayed    func(Seat, card.Card)
	OnTrickComplete func(TrickSnapshot)
	OnRoundScored   func(RoundRecord)
}

func NewGame(cfg Config) (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	g := &Game{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(seed)),
		clock:  clock,
		log:    slog.Default().With("component", "engine"),
		phase:  PhaseMenu,
		dealer: North,
	}
	// Every seat starts bot-controlled until a player takes it.
	for seat := Seat(0); seat < 4; seat++ {
		g.installBotLocked(seat)
	}
	return g, nil
}

func (g *Game) installBotLocked(seat Seat) {
	if g.cfg.BotFactory != nil {
		g.bots[seat] = g.cfg.BotFactory(seat)
		if g.names[seat] == "" && g.bots[seat] != nil {
			g.names[seat] = g.bots[seat].Name()
		}
	}
}

// SetController binds a seat to a controller between deals or at any
// point during play (bot takeover, reconnect).
func (g *Game) SetController(seat Seat, ctrl Controller) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.controllers[seat] = ctrl
	if !ctrl.IsHuman() && g.bots[seat] == nil {
		g.installBotLocked(seat)
	}
	g.afterChangeLocked()
	g.emitLocked()
}

// ReplaceSeatWithBot hands a seat to its bot brain, typically after a
// disconnect grace period runs out.
func (g *Game) ReplaceSeatWithBot(seat Seat, name string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.controllers[seat] = Controller{Kind: ControllerBot}
	if name != "" {
		g.names[seat] = name
	}
	g.installBotLocked(seat)
	g.afterChangeLocked()
	g.emitLocked()
}

// RestoreSeat gives a seat back to a reconnected player.
func (g *Game) RestoreSeat(seat Seat, name, connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.controllers[seat] = Controller{Kind: ControllerRemote, Conn: connID}
	g.names[seat] = name
	g.afterChangeLocked()
	g.emitLocked()
}

func (g *Game) SetName(seat Seat, name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.names[seat] = name
}

// StartRound deals a fresh round and opens the auction at the current
// dealer.
func (g *Game) StartRound() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.phase {
	case PhaseBidding, PhasePlaying, PhaseDealing:
		return ErrRoundInProgress
	case PhaseGameOver:
		return ErrGameOver
	}
	g.roundRestartAt = time.Time{}
	g.startRoundLocked()
	g.emitLocked()
	return nil
}

func (g *Game) startRoundLocked() {
	g.phase = PhaseDealing
	g.roundNumber++
	g.vulnerable = vulnerableFor(g.roundNumber)

	deck := card.NewDeck(g.rng)
	deck.Shuffle()
	g.hands = deck.Deal()

	g.auction = NewAuction(g.dealer)
	g.contract = nil
	g.tricks = nil
	g.lastTrick = nil
	g.lastResult = nil

	g.phase = PhaseBidding
	g.afterChangeLocked()
}

// vulnerableFor cycles vulnerability over a four-deal rotation:
// neither, N-S, E-W, both.
func vulnerableFor(round int) [2]bool {
	switch (round - 1) % 4 {
	case 1:
		return [2]bool{true, false}
	case 2:
		return [2]bool{false, true}
	case 3:
		return [2]bool{true, true}
	default:
		return [2]bool{false, false}
	}
}

// SubmitBid applies a bid for a seat. Illegal bids, wrong seats and
// wrong phases are silent no-ops.
func (g *Game) SubmitBid(seat Seat, b Bid) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.applyBidLocked(seat, b) {
		return false
	}
	g.emitLocked()
	return true
}

func (g *Game) applyBidLocked(seat Seat, b Bid) bool {
	if g.phase != PhaseBidding || g.auction == nil {
		return false
	}
	if seat != g.auction.Current {
		return false
	}
	if !g.auction.Allows(b) {
		return false
	}

	b.Seat = seat
	g.auction.Make(b)
	if g.OnBidMade != nil {
		g.OnBidMade(seat, b)
	}

	if g.auction.Finished {
		if g.auction.Contract == nil {
			g.passOutLocked()
		} else {
			g.beginPlayLocked()
		}
	}
	g.afterChangeLocked()
	return true
}

// passOutLocked handles four opening passes: no score, the deal
// rotates and a redeal is scheduled.
func (g *Game) passOutLocked() {
	record := RoundRecord{
		Round:     g.roundNumber,
		PassedOut: true,
	}
	g.history = append(g.history, record)
	if g.OnRoundScored != nil {
		g.OnRoundScored(record)
	}

	g.dealer = g.dealer.Next()
	g.phase = PhaseScoring
	g.roundRestartAt = g.clock().Add(g.cfg.RedealDelay)
}

func (g *Game) beginPlayLocked() {
	c := *g.auction.Contract
	g.contract = &c
	g.tricks = NewTrickManager(c)
	g.tricks.StartTrick(c.Declarer.Next())
	g.phase = PhasePlaying
}

// SubmitPlay applies a card for a seat. Out-of-turn plays, cards not
// in the hand and revokes are silent no-ops. The seat here is the
// seat whose hand the card leaves; authority mapping (who may act for
// the dummy) is the caller's concern via AuthorityOf.
func (g *Game) SubmitPlay(seat Seat, c card.Card) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.applyPlayLocked(seat, c) {
		return false
	}
	g.emitLocked()
	return true
}

func (g *Game) applyPlayLocked(seat Seat, c card.Card) bool {
	if g.phase != PhasePlaying || g.tricks == nil {
		return false
	}
	if g.trickAdvanceAt != (time.Time{}) {
		return false
	}
	playable := g.tricks.PlayableCards(g.hands[seat], seat)
	if !playable.Contains(c) {
		return false
	}

	g.hands[seat].Remove(c)
	g.tricks.Play(seat, c)
	if g.OnCardPlayed != nil {
		g.OnCardPlayed(seat, c)
	}

	if g.tricks.Current.Complete {
		g.lastTrick = g.tricks.Current
		if g.OnTrickComplete != nil {
			g.OnTrickComplete(*trickSnapshot(g.lastTrick))
		}
		// The finished trick stays on the table before collection.
		g.trickAdvanceAt = g.clock().Add(g.cfg.TrickPause)
	}
	g.afterChangeLocked()
	return true
}

// collectTrickLocked runs when the trick pause elapses: either the
// next trick starts from the winner, or the thirteenth trick closes
// the round.
func (g *Game) collectTrickLocked() {
	winner := g.lastTrick.Winner
	if g.tricks.AllComplete {
		g.scoreRoundLocked()
	} else {
		g.tricks.StartTrick(winner)
	}
	g.afterChangeLocked()
}

func (g *Game) scoreRoundLocked() {
	declTeam := g.contract.Declarer.Team()
	res := Score(*g.contract, g.tricks.TrickCount(declTeam), g.vulnerable[declTeam])
	g.scores[res.Team] += res.Total
	g.lastResult = &res

	contract := *g.contract
	record := RoundRecord{
		Round:    g.roundNumber,
		Contract: &contract,
		Declarer: contract.Declarer,
		Tricks:   [2]int{g.tricks.TrickCount(TeamNS), g.tricks.TrickCount(TeamEW)},
		Result:   &res,
	}
	g.history = append(g.history, record)
	if g.OnRoundScored != nil {
		g.OnRoundScored(record)
	}

	g.dealer = g.dealer.Next()
	g.phase = PhaseScoring
	g.roundRestartAt = g.clock().Add(g.cfg.RoundEndPause)
}

// AdvanceRound skips the scoring pause. Only valid while the score
// screen is up.
func (g *Game) AdvanceRound() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhaseScoring {
		return ErrInvalidState("not between rounds")
	}
	g.roundRestartAt = time.Time{}
	g.restartLocked()
	g.emitLocked()
	return nil
}

// restartLocked leaves the score screen: next deal, or game over when
// the round limit has been reached.
func (g *Game) restartLocked() {
	if g.cfg.MaxRounds > 0 && g.roundsScoredLocked() >= g.cfg.MaxRounds {
		g.phase = PhaseGameOver
		g.afterChangeLocked()
		return
	}
	g.startRoundLocked()
}

// roundsScoredLocked counts completed deals, passed-out redeals
// excluded.
func (g *Game) roundsScoredLocked() int {
	n := 0
	for _, rec := range g.history {
		if !rec.PassedOut {
			n++
		}
	}
	return n
}

// Tick fires whichever deadline has come due. It returns true when
// the engine state changed.
func (g *Game) Tick(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	changed := false
	switch {
	case due(g.roundRestartAt, now):
		g.roundRestartAt = time.Time{}
		g.restartLocked()
		changed = true
	case due(g.trickAdvanceAt, now):
		g.trickAdvanceAt = time.Time{}
		g.collectTrickLocked()
		changed = true
	case due(g.turnDeadline, now):
		g.turnDeadline = time.Time{}
		changed = g.forceActLocked()
	case due(g.botActAt, now):
		g.botActAt = time.Time{}
		changed = g.botActLocked()
	}

	if changed {
		g.emitLocked()
	}
	return changed
}

func due(deadline, now time.Time) bool {
	return !deadline.IsZero() && !now.Before(deadline)
}

// forceActLocked is the turn-clock expiry: the acting seat passes, or
// plays its lowest legal card.
func (g *Game) forceActLocked() bool {
	switch g.phase {
	case PhaseBidding:
		return g.applyBidLocked(g.auction.Current, PassBid())
	case PhasePlaying:
		seat, ok := g.tricks.CurrentPlayer()
		if !ok {
			return false
		}
		playable := g.tricks.PlayableCards(g.hands[seat], seat)
		if len(playable) == 0 {
			return false
		}
		return g.applyPlayLocked(seat, playable.Lowest())
	}
	return false
}

// botActLocked runs the brain controlling the acting seat. For the
// dummy that is the declarer's brain deciding over the dummy's hand.
func (g *Game) botActLocked() bool {
	switch g.phase {
	case PhaseBidding:
		seat := g.auction.Current
		brain := g.bots[seat]
		if brain == nil {
			return g.applyBidLocked(seat, PassBid())
		}
		view := BidView{
			Seat:      seat,
			Hand:      g.hands[seat].Clone(),
			Bids:      append([]Bid{}, g.auction.Bids...),
			ValidBids: g.auction.ValidBids(),
			Dealer:    g.auction.Dealer,
		}
		bid, ok := brain.ChooseBid(view)
		if !ok || !g.auction.Allows(bid) {
			g.stopOnViolationLocked(seat, brain, "bid")
			return true
		}
		return g.applyBidLocked(seat, bid)

	case PhasePlaying:
		seat, turn := g.tricks.CurrentPlayer()
		if !turn {
			return false
		}
		brain := g.bots[g.authorityOfLocked(seat)]
		playable := g.tricks.PlayableCards(g.hands[seat], seat)
		if brain == nil {
			return g.applyPlayLocked(seat, playable.Lowest())
		}
		view := PlayView{
			Seat:       seat,
			Hand:       g.hands[seat].Clone(),
			Playable:   playable,
			Contract:   *g.contract,
			Trick:      g.tricks.Current,
			Leading:    len(g.tricks.Current.Order()) == 0,
			LedSuit:    g.tricks.Current.LedSuit,
			Trump:      g.contract.Trump(),
			TrickCount: [2]int{g.tricks.TrickCount(TeamNS), g.tricks.TrickCount(TeamEW)},
		}
		c, ok := brain.ChooseCard(view)
		if !ok || !playable.Contains(c) {
			g.stopOnViolationLocked(seat, brain, "play")
			return true
		}
		return g.applyPlayLocked(seat, c)
	}
	return false
}

// stopOnViolationLocked handles a brain that produced no legal
// action. The round cannot continue without an action, so the game
// stops rather than stalling the table.
func (g *Game) stopOnViolationLocked(seat Seat, brain BotPlayer, kind string) {
	g.log.Error("bot returned no legal action",
		"seat", seat.String(), "brain", brain.Name(), "kind", kind)
	g.phase = PhaseGameOver
	g.afterChangeLocked()
}

// afterChangeLocked re-arms the turn deadlines from scratch. A pause
// deadline (trick collection, round restart) suppresses the turn
// clock entirely, so at most one deadline is live at any time.
func (g *Game) afterChangeLocked() {
	g.turnDeadline = time.Time{}
	g.botActAt = time.Time{}

	if !g.trickAdvanceAt.IsZero() || !g.roundRestartAt.IsZero() {
		return
	}

	switch g.phase {
	case PhaseBidding:
		g.armTurnLocked(g.auction.Current, g.cfg.ThinkDelay)
	case PhasePlaying:
		if seat, ok := g.tricks.CurrentPlayer(); ok {
			g.armTurnLocked(g.authorityOfLocked(seat), g.cfg.PlayDelay)
		}
	}
}

func (g *Game) armTurnLocked(authority Seat, botDelay time.Duration) {
	now := g.clock()
	if g.controllers[authority].IsHuman() {
		if g.cfg.TurnLimit > 0 {
			g.turnDeadline = now.Add(g.cfg.TurnLimit)
		}
		return
	}
	if brain := g.bots[authority]; brain != nil {
		if td, ok := brain.(ThinkDelayer); ok {
			botDelay = td.ThinkDelay(botDelay)
		}
	}
	g.botActAt = now.Add(botDelay)
}

// AuthorityOf resolves who acts for a seat: the dummy's cards are
// played by the declarer's controller, every other seat acts for
// itself.
func (g *Game) AuthorityOf(seat Seat) Seat {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authorityOfLocked(seat)
}

func (g *Game) authorityOfLocked(seat Seat) Seat {
	if g.phase == PhasePlaying && g.contract != nil && seat == g.contract.Dummy {
		return g.contract.Declarer
	}
	return seat
}

// ActingSeat is the seat whose action the game is waiting on, or
// SeatNone between turns.
func (g *Game) ActingSeat() Seat {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.phase {
	case PhaseBidding:
		return g.auction.Current
	case PhasePlaying:
		if !g.trickAdvanceAt.IsZero() {
			return SeatNone
		}
		if seat, ok := g.tricks.CurrentPlayer(); ok {
			return seat
		}
	}
	return SeatNone
}

func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

func (g *Game) Controller(seat Seat) Controller {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.controllers[seat]
}

func (g *Game) emitLocked() {
	if g.OnStateChange != nil {
		g.OnStateChange(g.snapshotLocked())
	}
}
