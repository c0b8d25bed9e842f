package bridge

import "testing"

func TestBidOrdering(t *testing.T) {
	if !SuitBid(1, StrainDiamond).Higher(SuitBid(1, StrainClub)) {
		t.Fatal("1D should outrank 1C")
	}
	if !SuitBid(1, StrainNoTrump).Higher(SuitBid(1, StrainSpade)) {
		t.Fatal("1NT should outrank 1S")
	}
	if !SuitBid(2, StrainClub).Higher(SuitBid(1, StrainNoTrump)) {
		t.Fatal("2C should outrank 1NT")
	}
	if SuitBid(1, StrainHeart).Higher(SuitBid(1, StrainHeart)) {
		t.Fatal("a bid does not outrank itself")
	}
}

func TestParseBid(t *testing.T) {
	b, err := ParseBid("4S")
	if err != nil {
		t.Fatal(err)
	}
	if b.Type != BidSuit || b.Level != 4 || b.Strain != StrainSpade {
		t.Fatalf("ParseBid(4S) = %+v", b)
	}

	b, err = ParseBid("3NT")
	if err != nil {
		t.Fatal(err)
	}
	if b.Level != 3 || b.Strain != StrainNoTrump {
		t.Fatalf("ParseBid(3NT) = %+v", b)
	}

	if b, err = ParseBid("PASS"); err != nil || b.Type != BidPass {
		t.Fatalf("ParseBid(PASS) = %+v, %v", b, err)
	}

	for _, in := range []string{"", "8C", "0S", "4X", "S"} {
		if _, err := ParseBid(in); err == nil {
			t.Fatalf("ParseBid(%q) expected error", in)
		}
	}
}

func TestAuctionPassedOut(t *testing.T) {
	a := NewAuction(North)
	for i := 0; i < 4; i++ {
		if !a.Make(PassBid()) {
			t.Fatalf("pass %d rejected", i)
		}
	}
	if !a.Finished {
		t.Fatal("four passes should end the auction")
	}
	if a.Contract != nil {
		t.Fatalf("passed-out auction produced contract %+v", a.Contract)
	}
}

func TestAuctionContractAfterThreePasses(t *testing.T) {
	a := NewAuction(North)
	if !a.Make(SuitBid(1, StrainSpade)) {
		t.Fatal("opening 1S rejected")
	}
	for i := 0; i < 3; i++ {
		if !a.Make(PassBid()) {
			t.Fatalf("pass %d rejected", i)
		}
	}
	if !a.Finished || a.Contract == nil {
		t.Fatal("bid plus three passes should settle a contract")
	}
	c := a.Contract
	if c.Level != 1 || c.Strain != StrainSpade {
		t.Fatalf("contract = %+v", c)
	}
	if c.Declarer != North || c.Dummy != South {
		t.Fatalf("declarer %v dummy %v, want N/S", c.Declarer, c.Dummy)
	}
}

// The declarer is the first player of the winning team who named the
// winning strain, not necessarily the last bidder.
func TestDeclarerIsFirstToNameStrain(t *testing.T) {
	a := NewAuction(North)
	if !a.Make(SuitBid(1, StrainHeart)) { // North names hearts first
		t.Fatal("1H rejected")
	}
	if !a.Make(PassBid()) { // East
		t.Fatal("pass rejected")
	}
	if !a.Make(SuitBid(3, StrainHeart)) { // South raises
		t.Fatal("3H rejected")
	}
	for i := 0; i < 3; i++ {
		if !a.Make(PassBid()) {
			t.Fatal("pass rejected")
		}
	}
	if a.Contract == nil {
		t.Fatal("no contract")
	}
	if a.Contract.Declarer != North {
		t.Fatalf("declarer = %v, want North (first to bid hearts)", a.Contract.Declarer)
	}
	if a.Contract.Dummy != South {
		t.Fatalf("dummy = %v, want South", a.Contract.Dummy)
	}
	if a.Contract.Level != 3 {
		t.Fatalf("level = %d, want 3", a.Contract.Level)
	}
}

func TestAuctionRejectsLowerBid(t *testing.T) {
	a := NewAuction(North)
	if !a.Make(SuitBid(2, StrainSpade)) {
		t.Fatal("2S rejected")
	}
	if a.Make(SuitBid(2, StrainHeart)) {
		t.Fatal("2H should not be allowed over 2S")
	}
	if len(a.Bids) != 1 {
		t.Fatalf("rejected bid was recorded, bids = %v", a.Bids)
	}
	if a.Current != East {
		t.Fatalf("rejected bid advanced the turn to %v", a.Current)
	}
}

func TestDoubleLegality(t *testing.T) {
	a := NewAuction(North)
	// Nothing to double yet.
	if a.Allows(DoubleBid()) {
		t.Fatal("double with no standing bid")
	}
	a.Make(SuitBid(1, StrainSpade)) // North
	if !a.Allows(DoubleBid()) {
		t.Fatal("East should be able to double North's bid")
	}
	a.Make(DoubleBid()) // East
	if !a.Doubled {
		t.Fatal("auction not marked doubled")
	}
	// South is on the doubled side: redouble yes, double no.
	if a.Allows(DoubleBid()) {
		t.Fatal("already doubled bid can not be doubled again")
	}
	if !a.Allows(RedoubleBid()) {
		t.Fatal("doubled side should be able to redouble")
	}
	a.Make(RedoubleBid()) // South
	if !a.Redoubled {
		t.Fatal("auction not marked redoubled")
	}

	// A fresh bid clears the double state.
	a.Make(SuitBid(2, StrainSpade)) // West
	if a.Doubled || a.Redoubled {
		t.Fatal("new bid should clear double and redouble")
	}

	// The standing 2S is West's, so North may double it.
	if !a.Allows(DoubleBid()) {
		t.Fatal("North should be able to double West's 2S")
	}
}

func TestOwnSideCannotDouble(t *testing.T) {
	a := NewAuction(North)
	a.Make(SuitBid(1, StrainClub)) // North
	a.Make(PassBid())              // East
	// South: partner holds the standing bid.
	if a.Allows(DoubleBid()) {
		t.Fatal("South must not double North's own bid")
	}
}

func TestValidBidsShrinkAsAuctionRises(t *testing.T) {
	a := NewAuction(North)
	all := a.ValidBids()
	// 35 suit bids plus pass at the start.
	if len(all) != 36 {
		t.Fatalf("opening calls = %d, want 36", len(all))
	}
	a.Make(SuitBid(7, StrainNoTrump))
	remaining := a.ValidBids()
	// Only pass and double are left over 7NT.
	if len(remaining) != 2 {
		t.Fatalf("calls over 7NT = %d (%v), want 2", len(remaining), remaining)
	}
}
