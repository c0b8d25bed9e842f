package card

import (
	"fmt"
	"strings"
)

// Card is a single playing card.
//
// Encoding:
// - high nibble: suit (0:Club, 1:Diamond, 2:Heart, 3:Spade)
// - low nibble: rank (2..14, ace high)
type Card byte

func (c Card) String() string {
	if c == CardInvalid {
		return "Invalid"
	}

	rank := c & 0x0F
	rankStr := ""
	switch rank {
	case 10:
		rankStr = "10"
	case 11:
		rankStr = "J"
	case 12:
		rankStr = "Q"
	case 13:
		rankStr = "K"
	case 14:
		rankStr = "A"
	default:
		rankStr = fmt.Sprintf("%d", rank)
	}

	return rankStr + c.Suit().Code()
}

// Rank 2-14, ace high.
func (c Card) Rank() byte {
	if c == CardInvalid {
		return 0
	}
	return byte(c & 0x0F)
}

func (c Card) Suit() Suit {
	return Suit(c >> 4)
}

func (c Card) IsRed() bool {
	s := c.Suit()
	return s == Heart || s == Diamond
}

// HCP returns the high-card point weight (A=4, K=3, Q=2, J=1).
func (c Card) HCP() int {
	switch c.Rank() {
	case 14:
		return 4
	case 13:
		return 3
	case 12:
		return 2
	case 11:
		return 1
	}
	return 0
}

// Beats reports whether c wins over other given a trump suit.
// Pass SuitNone for no-trump comparison. A card of a third suit
// never beats anything.
func (c Card) Beats(other Card, trump Suit) bool {
	if c.Suit() == other.Suit() {
		return c.Rank() > other.Rank()
	}
	if trump != SuitNone && c.Suit() == trump {
		return true
	}
	return false
}

// Parse converts a wire identifier such as "AS", "10H" or "2c" to a Card.
func Parse(cardStr string) (Card, error) {
	if len(cardStr) < 2 {
		return 0, fmt.Errorf("invalid card string: %q", cardStr)
	}

	suit, err := ParseSuit(cardStr[len(cardStr)-1:])
	if err != nil {
		return 0, err
	}

	var rank Card
	switch strings.ToUpper(cardStr[:len(cardStr)-1]) {
	case "2":
		rank = 0x02
	case "3":
		rank = 0x03
	case "4":
		rank = 0x04
	case "5":
		rank = 0x05
	case "6":
		rank = 0x06
	case "7":
		rank = 0x07
	case "8":
		rank = 0x08
	case "9":
		rank = 0x09
	case "10", "T":
		rank = 0x0A
	case "J":
		rank = 0x0B
	case "Q":
		rank = 0x0C
	case "K":
		rank = 0x0D
	case "A":
		rank = 0x0E
	default:
		return 0, fmt.Errorf("invalid rank: %q", cardStr[:len(cardStr)-1])
	}

	return Card(suit)<<4 | rank, nil
}
