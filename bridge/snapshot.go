package bridge

import (
	"time"

	"bridge-lite/card"
)

type TrickSnapshot struct {
	Leader   Seat
	LedSuit  card.Suit
	Cards    []card.Card
	Order    []Seat
	Winner   Seat
	Complete bool
}

type RoundRecord struct {
	Round     int
	Contract  *Contract
	Declarer  Seat
	Tricks    [2]int
	Result    *ScoreResult
	PassedOut bool
}

type Snapshot struct {
	Phase       Phase
	RoundNumber int
	Dealer      Seat

	Hands [4]card.CardList

	// Auction
	Bids       []Bid
	CurrentBid *Bid
	Doubled    bool
	Redoubled  bool

	// Contract (nil before the auction resolves)
	Contract *Contract

	// Play
	CurrentPlayer Seat
	Trick         *TrickSnapshot
	LastTrick     *TrickSnapshot
	TrickCount    [2]int
	TricksPlayed  int

	Scores     [2]int
	Vulnerable [2]bool
	LastResult *ScoreResult
	History    []RoundRecord

	Controllers [4]Controller
	Names       [4]string

	TurnDeadline time.Time
	TurnLimit    time.Duration
	MaxRounds    int
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *Game) snapshotLocked() Snapshot {
	s := Snapshot{
		Phase:       g.phase,
		RoundNumber: g.roundNumber,
		Dealer:      g.dealer,

		Doubled:   false,
		Redoubled: false,

		CurrentPlayer: SeatNone,

		Scores:     g.scores,
		Vulnerable: g.vulnerable,

		Controllers: g.controllers,
		Names:       g.names,

		TurnDeadline: g.turnDeadline,
		TurnLimit:    g.cfg.TurnLimit,
		MaxRounds:    g.cfg.MaxRounds,
	}

	for seat := Seat(0); seat < 4; seat++ {
		s.Hands[seat] = g.hands[seat].Clone()
	}

	if g.auction != nil {
		s.Bids = append([]Bid{}, g.auction.Bids...)
		s.Doubled = g.auction.Doubled
		s.Redoubled = g.auction.Redoubled
		if last, ok := g.auction.LastBid(); ok {
			b := last
			s.CurrentBid = &b
		}
		if g.phase == PhaseBidding {
			s.CurrentPlayer = g.auction.Current
		}
	}

	if g.contract != nil {
		c := *g.contract
		s.Contract = &c
	}

	if g.tricks != nil {
		s.TrickCount = [2]int{g.tricks.TrickCount(TeamNS), g.tricks.TrickCount(TeamEW)}
		s.TricksPlayed = g.tricks.TricksPlayed()
		s.Trick = trickSnapshot(g.tricks.Current)
		s.LastTrick = trickSnapshot(g.lastTrick)
		if g.phase == PhasePlaying {
			if seat, ok := g.tricks.CurrentPlayer(); ok {
				s.CurrentPlayer = seat
			}
		}
	}

	if g.lastResult != nil {
		r := *g.lastResult
		s.LastResult = &r
	}
	s.History = append([]RoundRecord{}, g.history...)

	return s
}

func trickSnapshot(t *Trick) *TrickSnapshot {
	if t == nil {
		return nil
	}
	ts := &TrickSnapshot{
		Leader:   t.Leader,
		LedSuit:  t.LedSuit,
		Order:    append([]Seat{}, t.Order()...),
		Winner:   t.Winner,
		Complete: t.Complete,
	}
	for _, seat := range ts.Order {
		c, _ := t.CardOf(seat)
		ts.Cards = append(ts.Cards, c)
	}
	return ts
}
