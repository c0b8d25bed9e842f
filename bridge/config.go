package bridge

import (
	"fmt"
	"time"
)

type Config struct {
	// Players
	HostName string

	// Match length (rounds before GameOver; 0 => unlimited)
	MaxRounds int

	// Optional: per-turn time limit (0 disables the turn clock)
	TurnLimit time.Duration

	// Pacing between automatic transitions
	ThinkDelay    time.Duration // bot bid delay
	PlayDelay     time.Duration // bot card delay
	TrickPause    time.Duration // completed trick stays visible
	RoundEndPause time.Duration // score screen before next deal
	RedealDelay   time.Duration // pause after a passed-out auction

	// RNG seed (0 => time-based)
	Seed int64

	// Clock override for tests (nil => time.Now)
	Clock func() time.Time

	// BotFactory builds the decider for a bot-controlled seat.
	// nil leaves bot seats inert until one is installed.
	BotFactory func(seat Seat) BotPlayer
}

const (
	DefaultThinkDelay    = 600 * time.Millisecond
	DefaultPlayDelay     = 800 * time.Millisecond
	DefaultTrickPause    = 3500 * time.Millisecond
	DefaultRoundEndPause = 3 * time.Second
	DefaultRedealDelay   = 1500 * time.Millisecond
)

func (c Config) validate() error {
	if c.MaxRounds < 0 {
		return fmt.Errorf("MaxRounds must be >= 0")
	}
	if c.TurnLimit < 0 {
		return fmt.Errorf("TurnLimit must be >= 0")
	}
	if c.ThinkDelay < 0 || c.PlayDelay < 0 || c.TrickPause < 0 ||
		c.RoundEndPause < 0 || c.RedealDelay < 0 {
		return fmt.Errorf("pacing delays must be >= 0")
	}
	return nil
}

// withDefaults fills unset pacing fields with the stock timings.
func (c Config) withDefaults() Config {
	if c.ThinkDelay == 0 {
		c.ThinkDelay = DefaultThinkDelay
	}
	if c.PlayDelay == 0 {
		c.PlayDelay = DefaultPlayDelay
	}
	if c.TrickPause == 0 {
		c.TrickPause = DefaultTrickPause
	}
	if c.RoundEndPause == 0 {
		c.RoundEndPause = DefaultRoundEndPause
	}
	if c.RedealDelay == 0 {
		c.RedealDelay = DefaultRedealDelay
	}
	return c
}
