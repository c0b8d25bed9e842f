package wire

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"bridge-lite/bridge"
	"bridge-lite/card"
)

func mustCard(t *testing.T, s string) card.Card {
	t.Helper()
	c, err := card.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return c
}

func midPlaySnapshot(t *testing.T) bridge.Snapshot {
	t.Helper()

	contract := &bridge.Contract{
		Level:    4,
		Strain:   bridge.StrainSpade,
		Declarer: bridge.South,
		Dummy:    bridge.North,
		Doubled:  true,
	}
	bids := []bridge.Bid{
		{Type: bridge.BidSuit, Level: 1, Strain: bridge.StrainSpade, Seat: bridge.South},
		{Type: bridge.BidPass, Seat: bridge.West},
		{Type: bridge.BidSuit, Level: 4, Strain: bridge.StrainSpade, Seat: bridge.North},
		{Type: bridge.BidDouble, Seat: bridge.East},
		{Type: bridge.BidPass, Seat: bridge.South},
		{Type: bridge.BidPass, Seat: bridge.West},
		{Type: bridge.BidPass, Seat: bridge.North},
	}
	standing := bids[2]

	return bridge.Snapshot{
		Phase:       bridge.PhasePlaying,
		RoundNumber: 3,
		Dealer:      bridge.South,
		Hands: [4]card.CardList{
			{mustCard(t, "AS"), mustCard(t, "10H")},
			{mustCard(t, "2C")},
			{mustCard(t, "KD"), mustCard(t, "QD")},
			{mustCard(t, "7H")},
		},
		Bids:       bids,
		CurrentBid: &standing,
		Doubled:    true,
		Contract:   contract,

		CurrentPlayer: bridge.West,
		Trick: &bridge.TrickSnapshot{
			Leader:  bridge.East,
			LedSuit: card.Heart,
			Cards:   []card.Card{mustCard(t, "4H"), mustCard(t, "9H")},
			Order:   []bridge.Seat{bridge.East, bridge.South},
			Winner:  bridge.SeatNone,
		},
		LastTrick: &bridge.TrickSnapshot{
			Leader:   bridge.North,
			LedSuit:  card.Club,
			Cards:    []card.Card{mustCard(t, "AC"), mustCard(t, "2C"), mustCard(t, "3C"), mustCard(t, "4C")},
			Order:    []bridge.Seat{bridge.North, bridge.East, bridge.South, bridge.West},
			Winner:   bridge.North,
			Complete: true,
		},
		TrickCount:   [2]int{5, 6},
		TricksPlayed: 11,

		Scores:     [2]int{420, 110},
		Vulnerable: [2]bool{true, false},
		History: []bridge.RoundRecord{
			{Round: 1, PassedOut: true},
			{
				Round:    2,
				Contract: &bridge.Contract{Level: 3, Strain: bridge.StrainNoTrump, Declarer: bridge.East, Dummy: bridge.West},
				Declarer: bridge.East,
				Tricks:   [2]int{4, 9},
				Result: &bridge.ScoreResult{
					Team: bridge.TeamEW, Made: true,
					TrickScore: 100, Bonus: 300, Total: 400,
				},
			},
		},

		Controllers: [4]bridge.Controller{
			{Kind: bridge.ControllerBot},
			{Kind: bridge.ControllerRemote, Conn: "conn-abc"},
			{Kind: bridge.ControllerLocal},
			{Kind: bridge.ControllerBot},
		},
		Names: [4]string{"Kaczorex", "Ala", "Gracz", "Witsu"},

		TurnDeadline: time.UnixMilli(1_700_000_123_456),
		TurnLimit:    30 * time.Second,
		MaxRounds:    8,
	}
}

// A snapshot survives the trip to the wire format and back, including
// a pass through JSON.
func TestSnapshotRoundTrip(t *testing.T) {
	original := midPlaySnapshot(t)

	state := FromSnapshot(original)
	raw, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded GameState
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	restored, err := ToSnapshot(decoded)
	if err != nil {
		t.Fatalf("ToSnapshot: %v", err)
	}

	if !reflect.DeepEqual(restored, original) {
		t.Fatalf("round trip mismatch:\noriginal: %+v\nrestored: %+v", original, restored)
	}
}

func TestFromSnapshotFieldMapping(t *testing.T) {
	state := FromSnapshot(midPlaySnapshot(t))

	if state.State != bridge.PhasePlaying.String() {
		t.Fatalf("state = %q", state.State)
	}
	if state.Declarer != "S" || state.Dummy != "N" {
		t.Fatalf("declarer/dummy = %q/%q", state.Declarer, state.Dummy)
	}
	if state.Contract == nil || state.Contract.Level != 4 || state.Contract.Suit != "S" || !state.Contract.Doubled {
		t.Fatalf("contract = %+v", state.Contract)
	}
	if got := state.Hands["N"]; len(got) != 2 || got[0] != "AS" || got[1] != "10H" {
		t.Fatalf("north hand = %v", got)
	}
	if state.NetworkPlayers["E"] != "conn-abc" || state.NetworkPlayers["N"] != "bot" {
		t.Fatalf("networkPlayers = %v", state.NetworkPlayers)
	}
	if state.Scores["NS"] != 420 || state.Scores["EW"] != 110 {
		t.Fatalf("scores = %v", state.Scores)
	}
	if !state.Vulnerable["NS"] || state.Vulnerable["EW"] {
		t.Fatalf("vulnerable = %v", state.Vulnerable)
	}
	if state.TurnEndTime != 1_700_000_123_456 {
		t.Fatalf("turnEndTime = %d", state.TurnEndTime)
	}
	if state.TimeLimit != 30_000 {
		t.Fatalf("timeLimit = %d", state.TimeLimit)
	}
	if state.Trick == nil || state.Trick.Cards["E"] != "4H" || state.Trick.LedSuit != "H" {
		t.Fatalf("trick = %+v", state.Trick)
	}
	if len(state.History) != 2 || !state.History[0].PassedOut {
		t.Fatalf("history = %+v", state.History)
	}
}

func TestToSnapshotRejectsGarbage(t *testing.T) {
	if _, err := ToSnapshot(GameState{State: "nonsense", Dealer: "N"}); err == nil {
		t.Fatal("invalid phase accepted")
	}
	state := FromSnapshot(midPlaySnapshot(t))
	state.Dealer = "X"
	if _, err := ToSnapshot(state); err == nil {
		t.Fatal("invalid dealer accepted")
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env, err := NewEnvelope(TypeActionBid, BidAction{Bid: "4S"})
	if err != nil {
		t.Fatal(err)
	}
	raw, err := env.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	var decoded Envelope
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Type != TypeActionBid {
		t.Fatalf("type = %q", decoded.Type)
	}
	var action BidAction
	if err := decoded.Decode(&action); err != nil {
		t.Fatal(err)
	}
	if action.Bid != "4S" {
		t.Fatalf("bid = %q", action.Bid)
	}
}
