package bridge

import (
	"fmt"
	"strconv"
	"strings"

	"bridge-lite/card"
)

// Strain is a denomination a contract can be played in. The four card
// suits rank below no-trump.
type Strain byte

const (
	StrainClub Strain = iota
	StrainDiamond
	StrainHeart
	StrainSpade
	StrainNoTrump
)

func (s Strain) Code() string {
	if s == StrainNoTrump {
		return "NT"
	}
	return card.Suit(s).Code()
}

// TrumpSuit maps the strain to its trump suit, SuitNone for no-trump.
func (s Strain) TrumpSuit() card.Suit {
	if s == StrainNoTrump {
		return card.SuitNone
	}
	return card.Suit(s)
}

func ParseStrain(code string) (Strain, error) {
	switch strings.ToUpper(code) {
	case "C":
		return StrainClub, nil
	case "D":
		return StrainDiamond, nil
	case "H":
		return StrainHeart, nil
	case "S":
		return StrainSpade, nil
	case "NT", "N":
		return StrainNoTrump, nil
	}
	return 0, fmt.Errorf("invalid strain: %q", code)
}

type BidType byte

const (
	BidPass BidType = iota
	BidSuit
	BidDouble
	BidRedouble
)

// Bid is one call in the auction, stamped with the seat that made it.
type Bid struct {
	Type   BidType
	Level  int    // 1-7, suit bids only
	Strain Strain // suit bids only
	Seat   Seat
}

func PassBid() Bid     { return Bid{Type: BidPass} }
func DoubleBid() Bid   { return Bid{Type: BidDouble} }
func RedoubleBid() Bid { return Bid{Type: BidRedouble} }

func SuitBid(level int, strain Strain) Bid {
	return Bid{Type: BidSuit, Level: level, Strain: strain}
}

// Value ranks suit bids totally: club < diamond < heart < spade < NT
// within a level, lower levels below higher. Non-suit bids rank -1.
func (b Bid) Value() int {
	if b.Type != BidSuit {
		return -1
	}
	return (b.Level-1)*5 + int(b.Strain)
}

func (b Bid) Higher(other Bid) bool {
	if other.Type != BidSuit {
		return b.Type == BidSuit
	}
	if b.Type != BidSuit {
		return false
	}
	return b.Value() > other.Value()
}

func (b Bid) String() string {
	switch b.Type {
	case BidPass:
		return "pass"
	case BidDouble:
		return "double"
	case BidRedouble:
		return "redouble"
	}
	return fmt.Sprintf("%d%s", b.Level, b.Strain.Code())
}

// ParseBid reads the wire form: "pass", "double", "redouble" or
// "<level><strain-code>" like "4S" and "3NT".
func ParseBid(s string) (Bid, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pass":
		return PassBid(), nil
	case "double":
		return DoubleBid(), nil
	case "redouble":
		return RedoubleBid(), nil
	}
	if len(s) < 2 {
		return Bid{}, fmt.Errorf("invalid bid: %q", s)
	}
	level, err := strconv.Atoi(s[:1])
	if err != nil || level < 1 || level > 7 {
		return Bid{}, fmt.Errorf("invalid bid level: %q", s)
	}
	strain, err := ParseStrain(s[1:])
	if err != nil {
		return Bid{}, fmt.Errorf("invalid bid: %q", s)
	}
	return SuitBid(level, strain), nil
}

// Contract is the settled outcome of a non-passed-out auction.
type Contract struct {
	Level     int
	Strain    Strain
	Declarer  Seat
	Dummy     Seat
	Doubled   bool
	Redoubled bool
}

func (c Contract) TricksNeeded() int {
	return c.Level + 6
}

func (c Contract) Trump() card.Suit {
	return c.Strain.TrumpSuit()
}

func (c Contract) String() string {
	s := fmt.Sprintf("%d%s", c.Level, c.Strain.Code())
	if c.Redoubled {
		return s + " XX"
	}
	if c.Doubled {
		return s + " X"
	}
	return s
}

// Auction is the bidding state machine. It starts open at the dealer
// and finishes either with a contract or passed out.
type Auction struct {
	Dealer  Seat
	Current Seat
	Bids    []Bid

	lastBid   Bid
	hasBid    bool
	Doubled   bool
	Redoubled bool

	passCount int
	bidCount  int

	Finished bool
	Contract *Contract
}

func NewAuction(dealer Seat) *Auction {
	return &Auction{
		Dealer:  dealer,
		Current: dealer,
		Bids:    make([]Bid, 0, 16),
	}
}

// LastBid returns the standing suit bid, if any.
func (a *Auction) LastBid() (Bid, bool) {
	return a.lastBid, a.hasBid
}

// Allows reports whether the bid is legal for the seat currently on
// turn.
func (a *Auction) Allows(b Bid) bool {
	if a.Finished {
		return false
	}
	switch b.Type {
	case BidPass:
		return true
	case BidSuit:
		if b.Level < 1 || b.Level > 7 || b.Strain > StrainNoTrump {
			return false
		}
		return !a.hasBid || b.Higher(a.lastBid)
	case BidDouble:
		// Only an opposing, not yet doubled suit bid can be doubled.
		return a.hasBid && !a.Doubled && !a.Redoubled &&
			a.lastBid.Seat.Team() != a.Current.Team()
	case BidRedouble:
		// Only the doubled side may redouble.
		return a.Doubled && !a.Redoubled &&
			a.lastBid.Seat.Team() == a.Current.Team()
	}
	return false
}

// ValidBids enumerates every legal call for the seat on turn.
func (a *Auction) ValidBids() []Bid {
	if a.Finished {
		return nil
	}
	valid := []Bid{PassBid()}
	for level := 1; level <= 7; level++ {
		for strain := StrainClub; strain <= StrainNoTrump; strain++ {
			b := SuitBid(level, strain)
			if a.Allows(b) {
				valid = append(valid, b)
			}
		}
	}
	if a.Allows(DoubleBid()) {
		valid = append(valid, DoubleBid())
	}
	if a.Allows(RedoubleBid()) {
		valid = append(valid, RedoubleBid())
	}
	return valid
}

// Make applies a call for the seat on turn. Illegal calls are
// rejected without mutating anything.
func (a *Auction) Make(b Bid) bool {
	if !a.Allows(b) {
		return false
	}

	b.Seat = a.Current
	a.Bids = append(a.Bids, b)

	switch b.Type {
	case BidPass:
		a.passCount++
	case BidSuit:
		a.passCount = 0
		a.lastBid = b
		a.hasBid = true
		a.Doubled = false
		a.Redoubled = false
		a.bidCount++
	case BidDouble:
		a.passCount = 0
		a.Doubled = true
	case BidRedouble:
		a.passCount = 0
		a.Redoubled = true
	}

	if a.passCount >= 3 && a.bidCount > 0 {
		a.Finished = true
		a.determineContract()
	} else if a.passCount >= 4 && a.bidCount == 0 {
		// Passed out: the deal is thrown in.
		a.Finished = true
		a.Contract = nil
	}

	a.Current = a.Current.Next()
	return true
}

// determineContract resolves the final contract. The declarer is the
// member of the winning team who named the winning strain first, not
// necessarily the seat that made the final bid.
func (a *Auction) determineContract() {
	if !a.hasBid {
		a.Contract = nil
		return
	}

	winningTeam := a.lastBid.Seat.Team()
	declarer := a.lastBid.Seat
	for _, b := range a.Bids {
		if b.Type == BidSuit && b.Strain == a.lastBid.Strain &&
			b.Seat.Team() == winningTeam {
			declarer = b.Seat
			break
		}
	}

	a.Contract = &Contract{
		Level:     a.lastBid.Level,
		Strain:    a.lastBid.Strain,
		Declarer:  declarer,
		Dummy:     declarer.Partner(),
		Doubled:   a.Doubled,
		Redoubled: a.Redoubled,
	}
}
