package npc

import (
	"math/rand"
	"time"

	"bridge-lite/bridge"
)

// Persona is a named bot character for one seat.
type Persona struct {
	Name string

	// Think-delay jitter added on top of the table's base delay.
	MaxJitter time.Duration
}

// DefaultPersonas are the stock characters per seat. South is the
// host seat and only gets a bot after a takeover.
var DefaultPersonas = map[bridge.Seat]Persona{
	bridge.North: {Name: "Kaczorex", MaxJitter: 400 * time.Millisecond},
	bridge.East:  {Name: "Kaszub", MaxJitter: 250 * time.Millisecond},
	bridge.West:  {Name: "Witsu", MaxJitter: 600 * time.Millisecond},
	bridge.South: {Name: "Gracz", MaxJitter: 300 * time.Millisecond},
}

// DefaultName is the stock display name for a bot in a seat.
func DefaultName(seat bridge.Seat) string {
	return DefaultPersonas[seat].Name
}

// Jitter draws this persona's extra think time.
func (p Persona) Jitter(rng *rand.Rand) time.Duration {
	if p.MaxJitter <= 0 {
		return 0
	}
	return time.Duration(rng.Int63n(int64(p.MaxJitter)))
}

// DefaultFactory builds a per-seat RuleBrain with the stock persona.
// Suitable as bridge.Config.BotFactory.
func DefaultFactory(seed int64) func(bridge.Seat) bridge.BotPlayer {
	return func(seat bridge.Seat) bridge.BotPlayer {
		return NewRuleBrain(DefaultPersonas[seat], seed+int64(seat))
	}
}
