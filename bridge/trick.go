package bridge

import "bridge-lite/card"

// Trick collects exactly four plays in rotation order from the leader.
type Trick struct {
	Leader   Seat
	trump    card.Suit
	cards    [4]card.Card // by seat, CardInvalid while unplayed
	order    []Seat
	LedSuit  card.Suit
	Current  Seat
	Winner   Seat
	Complete bool
}

func NewTrick(leader Seat, trump card.Suit) *Trick {
	return &Trick{
		Leader:  leader,
		trump:   trump,
		order:   make([]Seat, 0, 4),
		LedSuit: card.SuitNone,
		Current: leader,
		Winner:  SeatNone,
	}
}

// Play places a card for a seat. Out of turn or after completion it
// is a no-op and returns false.
func (t *Trick) Play(seat Seat, c card.Card) bool {
	if t.Complete {
		return false
	}
	if seat != t.Current {
		return false
	}

	t.cards[seat] = c
	t.order = append(t.order, seat)

	if t.LedSuit == card.SuitNone {
		t.LedSuit = c.Suit()
	}

	if len(t.order) == 4 {
		t.Complete = true
		t.Winner, _ = t.leadingPlay()
	} else {
		t.Current = t.Current.Next()
	}
	return true
}

// CardOf returns the card a seat has placed in this trick.
func (t *Trick) CardOf(seat Seat) (card.Card, bool) {
	c := t.cards[seat]
	return c, c != card.CardInvalid
}

// Order returns the seats in the order they played.
func (t *Trick) Order() []Seat {
	return t.order
}

// leadingPlay scans the plays so far: the first card leads until a
// later card beats it (same led suit and higher, or a trump over a
// non-trump).
func (t *Trick) leadingPlay() (Seat, card.Card) {
	if len(t.order) == 0 {
		return SeatNone, card.CardInvalid
	}
	winSeat := t.order[0]
	winCard := t.cards[winSeat]
	for _, seat := range t.order[1:] {
		if t.cards[seat].Beats(winCard, t.trump) {
			winSeat = seat
			winCard = t.cards[seat]
		}
	}
	return winSeat, winCard
}

// LeadingSeat is the seat currently holding the trick.
func (t *Trick) LeadingSeat() (Seat, bool) {
	seat, _ := t.leadingPlay()
	return seat, seat != SeatNone
}

// PlayableCards returns the legal subset of a hand: everything when
// leading, the led-suit cards when holding any, the whole hand when
// void.
func (t *Trick) PlayableCards(hand card.CardList, seat Seat) card.CardList {
	if seat != t.Current || t.Complete {
		return nil
	}
	if t.LedSuit == card.SuitNone {
		return hand.Clone()
	}
	if follow := hand.OfSuit(t.LedSuit); len(follow) > 0 {
		return follow
	}
	return hand.Clone()
}

// TrickManager sequences the thirteen tricks of one deal.
type TrickManager struct {
	contract Contract
	trump    card.Suit

	tricks  []*Trick
	Current *Trick

	counts      [2]int
	AllComplete bool
}

func NewTrickManager(contract Contract) *TrickManager {
	return &TrickManager{
		contract: contract,
		trump:    contract.Trump(),
		tricks:   make([]*Trick, 0, 13),
	}
}

func (m *TrickManager) StartTrick(leader Seat) {
	m.Current = NewTrick(leader, m.trump)
	m.tricks = append(m.tricks, m.Current)
}

// Play routes a card into the current trick and tallies the winner
// when the trick closes.
func (m *TrickManager) Play(seat Seat, c card.Card) bool {
	if m.Current == nil {
		return false
	}
	ok := m.Current.Play(seat, c)
	if ok && m.Current.Complete {
		m.counts[m.Current.Winner.Team()]++
		if len(m.tricks) >= 13 {
			m.AllComplete = true
		}
	}
	return ok
}

func (m *TrickManager) CurrentPlayer() (Seat, bool) {
	if m.Current == nil || m.Current.Complete {
		return SeatNone, false
	}
	return m.Current.Current, true
}

func (m *TrickManager) TrickCount(team Team) int {
	return m.counts[team]
}

func (m *TrickManager) TricksPlayed() int {
	n := len(m.tricks)
	if m.Current != nil && !m.Current.Complete {
		n--
	}
	return n
}

func (m *TrickManager) PlayableCards(hand card.CardList, seat Seat) card.CardList {
	if m.Current == nil {
		return nil
	}
	return m.Current.PlayableCards(hand, seat)
}
