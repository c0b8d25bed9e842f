package card

import "fmt"

type Suit byte

const (
	Club    Suit = iota // ♣️
	Diamond             // ♦️
	Heart               // ♥️
	Spade               // ♠️

	// SuitNone marks "no trump" in comparisons.
	SuitNone Suit = 0x0F
)

func (s Suit) String() string {
	switch s {
	case Club:
		return "♣️"
	case Diamond:
		return "♦️"
	case Heart:
		return "♥️"
	case Spade:
		return "♠️"
	}
	return "?"
}

// Code returns the single-letter wire code.
func (s Suit) Code() string {
	switch s {
	case Club:
		return "C"
	case Diamond:
		return "D"
	case Heart:
		return "H"
	case Spade:
		return "S"
	}
	return "?"
}

func ParseSuit(code string) (Suit, error) {
	switch code {
	case "C", "c":
		return Club, nil
	case "D", "d":
		return Diamond, nil
	case "H", "h":
		return Heart, nil
	case "S", "s":
		return Spade, nil
	}
	return SuitNone, fmt.Errorf("invalid suit: %q", code)
}
