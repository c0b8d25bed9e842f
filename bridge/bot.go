package bridge

import (
	"time"

	"bridge-lite/card"
)

// BidView is the read-only projection a bot sees when it must bid.
type BidView struct {
	Seat      Seat
	Hand      card.CardList
	Bids      []Bid
	ValidBids []Bid
	Dealer    Seat
}

// PlayView is the read-only projection a bot sees when it must play
// a card. Seat is the acting seat; when the bot plays the dummy's
// hand on the declarer's behalf, Seat is the dummy.
type PlayView struct {
	Seat       Seat
	Hand       card.CardList
	Playable   card.CardList
	Contract   Contract
	Trick      *Trick
	Leading    bool
	LedSuit    card.Suit
	Trump      card.Suit
	TrickCount [2]int
}

// ThinkDelayer lets a brain stretch the table's base think delay,
// e.g. with per-persona jitter.
type ThinkDelayer interface {
	ThinkDelay(base time.Duration) time.Duration
}

// BotPlayer decides bids and plays for a bot-controlled seat.
// The second return reports whether the brain found a legal move;
// false with legal moves available means the brain is broken and the
// engine stops the game rather than stalling the table.
type BotPlayer interface {
	ChooseBid(view BidView) (Bid, bool)
	ChooseCard(view PlayView) (card.Card, bool)
	Name() string
}
