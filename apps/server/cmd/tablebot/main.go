// Command tablebot joins a room as a headless player that passes
// every auction and plays the lowest legal card. Handy for filling
// seats while testing a server by hand.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"bridge-lite/card"
	"bridge-lite/wire"

	"bridge-lite/apps/server/internal/client"

	"github.com/lmittmann/tint"
)

func main() {
	var (
		server = flag.String("server", "http://localhost:8080", "server base URL")
		code   = flag.String("code", "", "room code to join (empty with -create)")
		name   = flag.String("name", "TableBot", "display name")
		create = flag.Bool("create", false, "create a new room instead of joining")
		rounds = flag.Int("rounds", 0, "round limit when creating")
	)
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		TimeFormat: time.TimeOnly,
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var (
		c   *client.Client
		err error
	)
	if *create {
		c, err = client.Create(ctx, *server, *name, client.Options{MaxRounds: *rounds})
	} else {
		if *code == "" {
			fmt.Fprintln(os.Stderr, "either -code or -create is required")
			os.Exit(2)
		}
		c, err = client.Join(ctx, *server, *code, *name)
	}
	if err != nil {
		logger.Error("join failed", "err", err)
		os.Exit(1)
	}
	defer c.Close()

	ack := c.Ack()
	logger.Info("seated", "room", c.RoomCode(), "name", ack.Name, "position", ack.Position)

	c.OnError = func(msg string) {
		logger.Warn("rejected", "reason", msg)
	}
	c.OnState = func(gs wire.GameState) {
		if err := act(c, ack.Position, gs); err != nil {
			logger.Warn("act failed", "err", err)
		}
	}

	<-c.Done()
	logger.Info("connection closed")
}

// act submits at most one intent for the broadcast it was handed.
// The submit lock in the client keeps repeated broadcasts from
// double-firing.
func act(c *client.Client, pos string, gs wire.GameState) error {
	acting := gs.CurrentPlayer
	if acting == "" {
		return nil
	}
	// The declarer's connection also plays the dummy's cards.
	if acting != pos && !(gs.Declarer == pos && acting == gs.Dummy) {
		return nil
	}

	switch gs.State {
	case "bidding":
		return c.SubmitBid("pass")
	case "playing":
		pick, err := lowestLegal(gs, acting)
		if err != nil {
			return err
		}
		return c.SubmitPlay(pick.String())
	}
	return nil
}

func lowestLegal(gs wire.GameState, seat string) (card.Card, error) {
	raw, ok := gs.Hands[seat]
	if !ok || len(raw) == 0 {
		return 0, fmt.Errorf("no hand for seat %s", seat)
	}

	var hand card.CardList
	for _, id := range raw {
		c, err := card.Parse(id)
		if err != nil {
			return 0, fmt.Errorf("hand card %q: %w", id, err)
		}
		hand = append(hand, c)
	}

	if gs.Trick != nil && gs.Trick.LedSuit != "" {
		led, err := card.ParseSuit(gs.Trick.LedSuit)
		if err != nil {
			return 0, fmt.Errorf("led suit %q: %w", gs.Trick.LedSuit, err)
		}
		if hand.HasSuit(led) {
			return hand.OfSuit(led).Lowest(), nil
		}
	}
	return hand.Lowest(), nil
}
