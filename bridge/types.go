package bridge

import "fmt"

// Seat is one of the four fixed table positions, in clockwise
// rotation order North -> East -> South -> West.
type Seat byte

const (
	North Seat = iota
	East
	South
	West

	SeatNone Seat = 0xFF
)

func (s Seat) Next() Seat {
	return (s + 1) % 4
}

func (s Seat) Partner() Seat {
	return (s + 2) % 4
}

func (s Seat) Team() Team {
	return Team(s & 1)
}

func (s Seat) String() string {
	switch s {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	}
	return "?"
}

func ParseSeat(code string) (Seat, error) {
	switch code {
	case "N":
		return North, nil
	case "E":
		return East, nil
	case "S":
		return South, nil
	case "W":
		return West, nil
	}
	return SeatNone, fmt.Errorf("invalid seat: %q", code)
}

// Team pairs opposite seats: North-South versus East-West.
type Team byte

const (
	TeamNS Team = 0
	TeamEW Team = 1
)

func (t Team) Opponent() Team {
	return 1 - t
}

func (t Team) String() string {
	if t == TeamNS {
		return "NS"
	}
	return "EW"
}

// Phase 游戏阶段
type Phase byte

const (
	PhaseMenu Phase = iota
	PhaseDealing
	PhaseBidding
	PhasePlaying
	PhaseScoring
	PhaseGameOver
)

var PhaseDictionary = map[Phase]string{
	PhaseMenu:     "menu",
	PhaseDealing:  "dealing",
	PhaseBidding:  "bidding",
	PhasePlaying:  "playing",
	PhaseScoring:  "scoring",
	PhaseGameOver: "game_over",
}

func (p Phase) String() string {
	if s, ok := PhaseDictionary[p]; ok {
		return s
	}
	return "unknown"
}

// ControllerKind says what drives a seat's decisions.
type ControllerKind byte

const (
	ControllerBot ControllerKind = iota
	ControllerLocal
	ControllerRemote
)

// Controller is the tagged occupant of a seat. The seat itself never
// changes; only its controller does (human leaves, bot takes over).
type Controller struct {
	Kind ControllerKind
	Conn string // connection id, set only for ControllerRemote
}

func (c Controller) IsHuman() bool {
	return c.Kind != ControllerBot
}
