package bridge

import (
	"errors"
	"testing"
	"time"

	"bridge-lite/card"
)

// scriptedBot opens 1C when nothing has been bid, passes otherwise,
// and always plays its lowest legal card. Every move is legal by
// construction, which keeps full-round tests deterministic.
type scriptedBot struct{ name string }

func (b *scriptedBot) Name() string { return b.name }

func (b *scriptedBot) ChooseBid(view BidView) (Bid, bool) {
	for _, made := range view.Bids {
		if made.Type == BidSuit {
			return PassBid(), true
		}
	}
	return SuitBid(1, StrainClub), true
}

func (b *scriptedBot) ChooseCard(view PlayView) (card.Card, bool) {
	if len(view.Playable) == 0 {
		return card.CardInvalid, false
	}
	return view.Playable.Lowest(), true
}

func scriptedFactory(seat Seat) BotPlayer {
	return &scriptedBot{name: "bot-" + seat.String()}
}

// testClock drives the engine's deadlines without real sleeping.
type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newBotGame(t *testing.T, cfg Config) (*Game, *testClock) {
	t.Helper()
	clk := &testClock{now: time.Unix(1_700_000_000, 0)}
	cfg.Clock = clk.Now
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	if cfg.BotFactory == nil {
		cfg.BotFactory = scriptedFactory
	}
	// Tight pacing so tests tick through a full round quickly.
	cfg.ThinkDelay = time.Millisecond
	cfg.PlayDelay = time.Millisecond
	cfg.TrickPause = time.Millisecond
	cfg.RoundEndPause = time.Millisecond
	cfg.RedealDelay = time.Millisecond

	g, err := NewGame(cfg)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return g, clk
}

func tickUntil(t *testing.T, g *Game, clk *testClock, want Phase) {
	t.Helper()
	for i := 0; i < 10000; i++ {
		if g.Phase() == want {
			return
		}
		clk.Advance(time.Millisecond)
		g.Tick(clk.Now())
	}
	t.Fatalf("phase never reached %v, stuck at %v", want, g.Phase())
}

func TestFullBotRound(t *testing.T) {
	g, clk := newBotGame(t, Config{})
	if err := g.StartRound(); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if g.Phase() != PhaseBidding {
		t.Fatalf("phase = %v, want bidding", g.Phase())
	}

	tickUntil(t, g, clk, PhaseScoring)

	snap := g.Snapshot()
	if len(snap.History) != 1 {
		t.Fatalf("history len = %d, want 1", len(snap.History))
	}
	rec := snap.History[0]
	if rec.PassedOut {
		t.Fatal("round should not be passed out with an opening bid")
	}
	if rec.Contract == nil || rec.Contract.Level != 1 || rec.Contract.Strain != StrainClub {
		t.Fatalf("contract = %+v, want 1C", rec.Contract)
	}
	// The dealer opens, so North declares and South is dummy.
	if rec.Declarer != North {
		t.Fatalf("declarer = %v, want North", rec.Declarer)
	}
	if rec.Tricks[TeamNS]+rec.Tricks[TeamEW] != 13 {
		t.Fatalf("tricks = %v, want 13 total", rec.Tricks)
	}
	if rec.Result == nil {
		t.Fatal("scored round has no result")
	}
	if snap.Scores[rec.Result.Team] != rec.Result.Total {
		t.Fatalf("scores = %v, result = %+v", snap.Scores, rec.Result)
	}
	// All cards were played out.
	for seat, hand := range snap.Hands {
		if hand.Count() != 0 {
			t.Fatalf("seat %d still holds %d cards", seat, hand.Count())
		}
	}
}

func TestStartRoundGuards(t *testing.T) {
	g, _ := newBotGame(t, Config{})
	if err := g.StartRound(); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if err := g.StartRound(); !errors.Is(err, ErrRoundInProgress) {
		t.Fatalf("second StartRound err = %v, want ErrRoundInProgress", err)
	}
	if err := g.AdvanceRound(); err == nil {
		t.Fatal("AdvanceRound during bidding should fail")
	}
}

func TestMaxRoundsEndsGame(t *testing.T) {
	g, clk := newBotGame(t, Config{MaxRounds: 1})
	if err := g.StartRound(); err != nil {
		t.Fatal(err)
	}
	tickUntil(t, g, clk, PhaseScoring)
	tickUntil(t, g, clk, PhaseGameOver)

	if err := g.StartRound(); !errors.Is(err, ErrGameOver) {
		t.Fatalf("StartRound after game over err = %v, want ErrGameOver", err)
	}
}

func TestAdvanceRoundSkipsScorePause(t *testing.T) {
	g, clk := newBotGame(t, Config{})
	if err := g.StartRound(); err != nil {
		t.Fatal(err)
	}
	tickUntil(t, g, clk, PhaseScoring)

	if err := g.AdvanceRound(); err != nil {
		t.Fatalf("AdvanceRound: %v", err)
	}
	snap := g.Snapshot()
	if snap.Phase != PhaseBidding {
		t.Fatalf("phase = %v, want bidding", snap.Phase)
	}
	if snap.RoundNumber != 2 {
		t.Fatalf("round = %d, want 2", snap.RoundNumber)
	}
	// Deal rotates clockwise between rounds.
	if snap.Dealer != East {
		t.Fatalf("dealer = %v, want East", snap.Dealer)
	}
	// Second deal: North-South vulnerable.
	if !snap.Vulnerable[TeamNS] || snap.Vulnerable[TeamEW] {
		t.Fatalf("vulnerable = %v, want NS only", snap.Vulnerable)
	}
}

func TestVulnerabilityRotation(t *testing.T) {
	cases := []struct {
		round int
		want  [2]bool
	}{
		{1, [2]bool{false, false}},
		{2, [2]bool{true, false}},
		{3, [2]bool{false, true}},
		{4, [2]bool{true, true}},
		{5, [2]bool{false, false}},
	}
	for _, tc := range cases {
		if got := vulnerableFor(tc.round); got != tc.want {
			t.Fatalf("round %d vulnerable = %v, want %v", tc.round, got, tc.want)
		}
	}
}

func humanGame(t *testing.T, cfg Config) (*Game, *testClock) {
	t.Helper()
	g, clk := newBotGame(t, cfg)
	for seat := Seat(0); seat < 4; seat++ {
		g.SetController(seat, Controller{Kind: ControllerLocal})
	}
	return g, clk
}

func TestTurnClockForcesPass(t *testing.T) {
	g, clk := humanGame(t, Config{TurnLimit: 2 * time.Second})
	if err := g.StartRound(); err != nil {
		t.Fatal(err)
	}

	clk.Advance(2 * time.Second)
	if !g.Tick(clk.Now()) {
		t.Fatal("turn clock expiry should change state")
	}
	snap := g.Snapshot()
	if len(snap.Bids) != 1 || snap.Bids[0].Type != BidPass {
		t.Fatalf("bids = %v, want one forced pass", snap.Bids)
	}
	if snap.Bids[0].Seat != North {
		t.Fatalf("forced pass by %v, want the dealer", snap.Bids[0].Seat)
	}
}

func TestTurnClockForcesLowestCard(t *testing.T) {
	g, clk := humanGame(t, Config{TurnLimit: 2 * time.Second})
	if err := g.StartRound(); err != nil {
		t.Fatal(err)
	}

	// North opens 1C, everyone passes: North declares, East leads.
	if !g.SubmitBid(North, SuitBid(1, StrainClub)) {
		t.Fatal("1C rejected")
	}
	for _, seat := range []Seat{East, South, West} {
		if !g.SubmitBid(seat, PassBid()) {
			t.Fatalf("pass by %v rejected", seat)
		}
	}

	snap := g.Snapshot()
	if snap.CurrentPlayer != East {
		t.Fatalf("opening leader = %v, want East", snap.CurrentPlayer)
	}
	want := snap.Hands[East].Lowest()

	clk.Advance(2 * time.Second)
	if !g.Tick(clk.Now()) {
		t.Fatal("turn clock expiry should change state")
	}
	snap = g.Snapshot()
	if snap.Trick == nil || len(snap.Trick.Order) != 1 || snap.Trick.Order[0] != East {
		t.Fatalf("trick = %+v, want one forced play by East", snap.Trick)
	}
	if got := snap.Trick.Cards[0]; got != want {
		t.Fatalf("forced card = %s, want lowest %s", got, want)
	}
	if snap.Hands[East].Count() != 12 {
		t.Fatalf("East holds %d cards after the forced play", snap.Hands[East].Count())
	}
	if snap.CurrentPlayer != South {
		t.Fatalf("current player = %v, want South", snap.CurrentPlayer)
	}

	// The fired deadline is gone; the one now armed belongs to South,
	// so ticking again at the same instant submits nothing.
	if g.Tick(clk.Now()) {
		t.Fatal("expired deadline fired twice")
	}
	snap = g.Snapshot()
	if len(snap.Trick.Order) != 1 {
		t.Fatalf("trick grew to %d plays without input", len(snap.Trick.Order))
	}
}

func TestPassedOutDealRedeals(t *testing.T) {
	g, clk := humanGame(t, Config{TurnLimit: time.Second})
	if err := g.StartRound(); err != nil {
		t.Fatal(err)
	}

	// Let the turn clock pass all four seats out.
	for i := 0; i < 4; i++ {
		clk.Advance(time.Second)
		g.Tick(clk.Now())
	}
	snap := g.Snapshot()
	if snap.Phase != PhaseScoring {
		t.Fatalf("phase = %v, want scoring pause", snap.Phase)
	}
	if len(snap.History) != 1 || !snap.History[0].PassedOut {
		t.Fatalf("history = %+v, want one passed-out record", snap.History)
	}
	if snap.Scores != [2]int{} {
		t.Fatalf("passed-out deal scored points: %v", snap.Scores)
	}

	// The redeal pause elapses into round two with the next dealer.
	clk.Advance(time.Millisecond)
	g.Tick(clk.Now())
	snap = g.Snapshot()
	if snap.Phase != PhaseBidding || snap.RoundNumber != 2 {
		t.Fatalf("after redeal: phase %v round %d", snap.Phase, snap.RoundNumber)
	}
	if snap.Dealer != East {
		t.Fatalf("dealer = %v, want East", snap.Dealer)
	}
}

// legalFor picks any card the seat may legally play from a snapshot.
func legalFor(t *testing.T, snap Snapshot, seat Seat) card.Card {
	t.Helper()
	hand := snap.Hands[seat]
	if snap.Trick != nil && len(snap.Trick.Order) > 0 && snap.Trick.LedSuit != card.SuitNone {
		if follow := hand.OfSuit(snap.Trick.LedSuit); follow.Count() > 0 {
			return follow[0]
		}
	}
	if hand.Count() == 0 {
		t.Fatalf("seat %v has no cards", seat)
	}
	return hand[0]
}

func TestTrickPauseBlocksNextLead(t *testing.T) {
	g, clk := humanGame(t, Config{})
	if err := g.StartRound(); err != nil {
		t.Fatal(err)
	}

	// North opens 1C, everyone passes: North declares, East leads.
	if !g.SubmitBid(North, SuitBid(1, StrainClub)) {
		t.Fatal("1C rejected")
	}
	for _, seat := range []Seat{East, South, West} {
		if !g.SubmitBid(seat, PassBid()) {
			t.Fatalf("pass by %v rejected", seat)
		}
	}
	if g.Phase() != PhasePlaying {
		t.Fatalf("phase = %v, want playing", g.Phase())
	}

	for i := 0; i < 4; i++ {
		snap := g.Snapshot()
		seat := snap.CurrentPlayer
		if seat == SeatNone {
			t.Fatalf("no current player after %d plays", i)
		}
		if !g.SubmitPlay(seat, legalFor(t, snap, seat)) {
			t.Fatalf("play %d by %v rejected", i, seat)
		}
	}

	// The completed trick stays on the table; the winner can not lead
	// until the pause elapses.
	snap := g.Snapshot()
	if snap.Trick == nil || !snap.Trick.Complete {
		t.Fatal("trick should be complete and visible")
	}
	winner := snap.Trick.Winner
	if g.SubmitPlay(winner, snap.Hands[winner][0]) {
		t.Fatal("play during trick pause should be rejected")
	}

	clk.Advance(time.Millisecond)
	g.Tick(clk.Now())
	snap = g.Snapshot()
	if snap.CurrentPlayer != winner {
		t.Fatalf("next leader = %v, want trick winner %v", snap.CurrentPlayer, winner)
	}
	if !g.SubmitPlay(winner, legalFor(t, snap, winner)) {
		t.Fatal("winner's lead rejected after the pause")
	}
}

func TestReplaceSeatWithBotRenames(t *testing.T) {
	g, _ := newBotGame(t, Config{})
	g.SetController(East, Controller{Kind: ControllerRemote, Conn: "conn-1"})
	g.SetName(East, "Ala")

	g.ReplaceSeatWithBot(East, "Kaszub")
	snap := g.Snapshot()
	if snap.Controllers[East].IsHuman() {
		t.Fatal("seat should be bot controlled")
	}
	if snap.Names[East] != "Kaszub" {
		t.Fatalf("name = %q, want Kaszub", snap.Names[East])
	}

	g.RestoreSeat(East, "Ala", "conn-2")
	snap = g.Snapshot()
	if snap.Controllers[East].Kind != ControllerRemote || snap.Controllers[East].Conn != "conn-2" {
		t.Fatalf("controller = %+v, want remote conn-2", snap.Controllers[East])
	}
	if snap.Names[East] != "Ala" {
		t.Fatalf("name = %q, want Ala", snap.Names[East])
	}
}

// The dummy's cards are decided by the declarer's controller once the
// contract is settled.
func TestAuthorityOfDummy(t *testing.T) {
	g, _ := humanGame(t, Config{})
	if err := g.StartRound(); err != nil {
		t.Fatal(err)
	}
	g.SubmitBid(North, SuitBid(1, StrainClub))
	g.SubmitBid(East, PassBid())
	g.SubmitBid(South, PassBid())
	g.SubmitBid(West, PassBid())

	if got := g.AuthorityOf(South); got != North {
		t.Fatalf("authority of dummy = %v, want declarer North", got)
	}
	if got := g.AuthorityOf(East); got != East {
		t.Fatalf("authority of East = %v, want East", got)
	}
}
