package npc

import (
	"math/rand"
	"sort"
	"time"

	"bridge-lite/bridge"
	"bridge-lite/card"
)

// RuleBrain plays a plain point-count system: HCP plus suit lengths
// decide the bidding, simple positional heuristics decide the cards.
type RuleBrain struct {
	persona Persona
	rng     *rand.Rand
}

func NewRuleBrain(persona Persona, seed int64) *RuleBrain {
	return &RuleBrain{
		persona: persona,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (b *RuleBrain) Name() string { return b.persona.Name }

// ThinkDelay adds the persona's jitter to the table's base delay.
func (b *RuleBrain) ThinkDelay(base time.Duration) time.Duration {
	return base + b.persona.Jitter(b.rng)
}

// ---- bidding ----

func (b *RuleBrain) ChooseBid(view bridge.BidView) (bridge.Bid, bool) {
	hcp := view.Hand.HCP()
	lengths := view.Hand.SuitLengths()

	last, lastBy, hasLast := lastSuitBid(view.Bids)
	cooperative := !hasLast || lastBy.Team() == view.Seat.Team()
	if cooperative {
		return b.cooperativeBid(view, hcp, lengths, last, hasLast), true
	}
	return b.defensiveBid(view, hcp, lengths), true
}

// cooperativeBid covers opening and responding: nobody has bid yet,
// or the last suit bid came from our side.
func (b *RuleBrain) cooperativeBid(view bridge.BidView, hcp int, lengths [4]int, last bridge.Bid, hasLast bool) bridge.Bid {
	if hcp < 6 {
		return bridge.PassBid()
	}

	longest := longestSuit(lengths)
	balanced := isBalanced(lengths)
	currentLevel := 0
	if hasLast {
		currentLevel = last.Level
	}

	partnerBid, partnerHasBid := lastSuitBidBy(view.Bids, view.Seat.Partner())
	if !partnerHasBid {
		return b.openingBid(view, hcp, lengths, longest, balanced, currentLevel)
	}

	// Responding to partner. Stop once a safe game level is reached.
	if currentLevel >= 4 || (currentLevel == 3 && last.Strain == bridge.StrainNoTrump) {
		return bridge.PassBid()
	}

	support := 0
	if partnerBid.Strain != bridge.StrainNoTrump {
		support = lengths[partnerBid.Strain.TrumpSuit()]
	}

	if hcp >= 13 {
		if support >= 3 && (partnerBid.Strain == bridge.StrainHeart || partnerBid.Strain == bridge.StrainSpade) {
			if bid, ok := findBid(view.ValidBids, 4, partnerBid.Strain); ok {
				return bid
			}
			return bridge.PassBid()
		}
		if balanced {
			if bid, ok := findBid(view.ValidBids, 3, bridge.StrainNoTrump); ok {
				return bid
			}
			return bridge.PassBid()
		}
		if bid, ok := findBid(view.ValidBids, currentLevel+1, bridge.Strain(longest)); ok {
			return bid
		}
	}

	if hcp >= 10 && hcp <= 12 {
		if support >= 3 && partnerBid.Strain != bridge.StrainNoTrump {
			if bid, ok := findBid(view.ValidBids, currentLevel+1, partnerBid.Strain); ok {
				return bid
			}
		} else if balanced {
			if bid, ok := findBid(view.ValidBids, currentLevel, bridge.StrainNoTrump); ok {
				return bid
			}
			if bid, ok := findBid(view.ValidBids, currentLevel+1, bridge.StrainNoTrump); ok {
				return bid
			}
		} else if bid, ok := findBid(view.ValidBids, currentLevel+1, bridge.Strain(longest)); ok {
			return bid
		}
	}

	if hcp >= 6 && hcp <= 9 {
		if support >= 3 && partnerBid.Strain != bridge.StrainNoTrump {
			if currentLevel+1 <= 2 {
				if bid, ok := findBid(view.ValidBids, currentLevel+1, partnerBid.Strain); ok {
					return bid
				}
			}
		} else if currentLevel == 1 {
			if bid, ok := findBid(view.ValidBids, 1, bridge.StrainNoTrump); ok {
				return bid
			}
		}
	}

	return bridge.PassBid()
}

func (b *RuleBrain) openingBid(view bridge.BidView, hcp int, lengths [4]int, longest card.Suit, balanced bool, currentLevel int) bridge.Bid {
	if hcp >= 22 {
		if bid, ok := findBid(view.ValidBids, 2, bridge.StrainClub); ok {
			return bid
		}
	}

	if hcp >= 15 && hcp <= 17 && balanced {
		if bid, ok := findBid(view.ValidBids, 1, bridge.StrainNoTrump); ok {
			return bid
		}
	}

	if hcp >= 12 || (hcp >= 10 && lengths[longest] >= 5) {
		targetLevel := 1
		if currentLevel > 0 {
			targetLevel = currentLevel + 1
		}
		// Only sound openings at the one or two level.
		if targetLevel <= 2 {
			if bid, ok := findBid(view.ValidBids, targetLevel, bridge.Strain(longest)); ok {
				return bid
			}
		}
	}

	return bridge.PassBid()
}

// defensiveBid: the opponents opened.
func (b *RuleBrain) defensiveBid(view bridge.BidView, hcp int, lengths [4]int) bridge.Bid {
	if hcp < 8 {
		return bridge.PassBid()
	}

	if hcp >= 10 {
		longest := longestSuit(lengths)
		if bid, ok := findBidUpTo(view.ValidBids, bridge.Strain(longest), 2); ok {
			return bid
		}
	}

	if hcp >= 12 {
		if bid, ok := findDouble(view.ValidBids); ok {
			return bid
		}
	}

	return bridge.PassBid()
}

// ---- card play ----

func (b *RuleBrain) ChooseCard(view bridge.PlayView) (card.Card, bool) {
	playable := view.Playable
	if len(playable) == 0 {
		return card.CardInvalid, false
	}
	if len(playable) == 1 {
		return playable[0], true
	}
	if view.Leading {
		return b.chooseLead(playable, view), true
	}
	return b.chooseFollow(playable, view), true
}

// chooseLead: fourth-best from a 4+ card non-trump suit, else the top
// of the longest, else the lowest trump.
func (b *RuleBrain) chooseLead(playable card.CardList, view bridge.PlayView) card.Card {
	nonTrumps := playable
	if view.Trump != card.SuitNone {
		nonTrumps = make(card.CardList, 0, len(playable))
		for _, c := range playable {
			if c.Suit() != view.Trump {
				nonTrumps = append(nonTrumps, c)
			}
		}
	}

	if len(nonTrumps) > 0 {
		suitCards := byRank(nonTrumps.OfSuit(longestSuit(nonTrumps.SuitLengths())))
		if len(suitCards) >= 4 {
			return suitCards[len(suitCards)-4]
		}
		return suitCards[len(suitCards)-1]
	}

	return playable.Lowest()
}

func (b *RuleBrain) chooseFollow(playable card.CardList, view bridge.PlayView) card.Card {
	partner := view.Seat.Partner()
	holder, hasHolder := view.Trick.LeadingSeat()
	partnerHolds := hasHolder && holder == partner

	// We hold the led suit when playable is the led-suit subset.
	if playable[0].Suit() == view.LedSuit {
		if partnerHolds {
			return playable.Lowest()
		}
		if hasHolder {
			holding, _ := view.Trick.CardOf(holder)
			winners := make(card.CardList, 0, len(playable))
			for _, c := range playable {
				if c.Beats(holding, view.Trump) {
					winners = append(winners, c)
				}
			}
			if len(winners) > 0 {
				return winners.Lowest()
			}
		}
		return playable.Lowest()
	}

	// Void in the led suit. Ruff low, but never over a winning partner.
	if view.Trump != card.SuitNone && playable.HasSuit(view.Trump) && !partnerHolds {
		return playable.OfSuit(view.Trump).Lowest()
	}

	return playable.Lowest()
}

// ---- hand analysis ----

// longestSuit prefers the higher-ranking suit on equal length.
func longestSuit(lengths [4]int) card.Suit {
	longest := card.Spade
	maxCount := 0
	for _, s := range []card.Suit{card.Spade, card.Heart, card.Diamond, card.Club} {
		if lengths[s] > maxCount {
			maxCount = lengths[s]
			longest = s
		}
	}
	return longest
}

// isBalanced admits 4-3-3-3, 4-4-3-2 and 5-3-3-2 shapes.
func isBalanced(lengths [4]int) bool {
	counts := append([]int{}, lengths[:]...)
	sort.Ints(counts)
	return counts[0] >= 2 && counts[3] <= 5
}

func lastSuitBid(bids []bridge.Bid) (bridge.Bid, bridge.Seat, bool) {
	for i := len(bids) - 1; i >= 0; i-- {
		if bids[i].Type == bridge.BidSuit {
			return bids[i], bids[i].Seat, true
		}
	}
	return bridge.Bid{}, bridge.SeatNone, false
}

func lastSuitBidBy(bids []bridge.Bid, seat bridge.Seat) (bridge.Bid, bool) {
	for i := len(bids) - 1; i >= 0; i-- {
		if bids[i].Seat == seat && bids[i].Type == bridge.BidSuit {
			return bids[i], true
		}
	}
	return bridge.Bid{}, false
}

func findBid(valid []bridge.Bid, level int, strain bridge.Strain) (bridge.Bid, bool) {
	for _, b := range valid {
		if b.Type == bridge.BidSuit && b.Level == level && b.Strain == strain {
			return b, true
		}
	}
	return bridge.Bid{}, false
}

// findBidUpTo returns the cheapest valid bid of a strain at or below
// a level cap.
func findBidUpTo(valid []bridge.Bid, strain bridge.Strain, maxLevel int) (bridge.Bid, bool) {
	for _, b := range valid {
		if b.Type == bridge.BidSuit && b.Strain == strain && b.Level <= maxLevel {
			return b, true
		}
	}
	return bridge.Bid{}, false
}

func findDouble(valid []bridge.Bid) (bridge.Bid, bool) {
	for _, b := range valid {
		if b.Type == bridge.BidDouble {
			return b, true
		}
	}
	return bridge.Bid{}, false
}

// byRank returns a rank-ascending copy.
func byRank(cards card.CardList) card.CardList {
	out := cards.Clone()
	sort.Slice(out, func(i, j int) bool { return out[i].Rank() < out[j].Rank() })
	return out
}
