package card

import "sort"

type CardList []Card

func (ds *CardList) Init(cards []Card) {
	*ds = make([]Card, len(cards))
	copy(*ds, cards)
}

// Count 获取总牌数
func (ds CardList) Count() int {
	return len(ds)
}

func (ds CardList) Clone() CardList {
	out := make(CardList, len(ds))
	copy(out, ds)
	return out
}

// SortDisplay orders by suit group then ascending rank, the layout a
// bridge hand is fanned in.
func (ds CardList) SortDisplay() {
	sort.Slice(ds, func(i, j int) bool {
		if ds[i].Suit() != ds[j].Suit() {
			return ds[i].Suit() < ds[j].Suit()
		}
		return ds[i].Rank() < ds[j].Rank()
	})
}

func (ds CardList) Contains(c Card) bool {
	for _, x := range ds {
		if x == c {
			return true
		}
	}
	return false
}

// Remove takes out exactly one card, reporting whether it was held.
func (ds *CardList) Remove(c Card) bool {
	for i, x := range *ds {
		if x == c {
			*ds = append((*ds)[:i], (*ds)[i+1:]...)
			return true
		}
	}
	return false
}

// OfSuit returns the cards of one suit, in hand order.
func (ds CardList) OfSuit(s Suit) CardList {
	var out CardList
	for _, c := range ds {
		if c.Suit() == s {
			out = append(out, c)
		}
	}
	return out
}

func (ds CardList) HasSuit(s Suit) bool {
	for _, c := range ds {
		if c.Suit() == s {
			return true
		}
	}
	return false
}

// Lowest returns the lowest-ranked card, ignoring suit.
func (ds CardList) Lowest() Card {
	if len(ds) == 0 {
		return CardInvalid
	}
	low := ds[0]
	for _, c := range ds[1:] {
		if c.Rank() < low.Rank() {
			low = c
		}
	}
	return low
}

// HCP sums the high-card points in the list.
func (ds CardList) HCP() int {
	sum := 0
	for _, c := range ds {
		sum += c.HCP()
	}
	return sum
}

// SuitLengths counts cards per suit.
func (ds CardList) SuitLengths() [4]int {
	var n [4]int
	for _, c := range ds {
		n[c.Suit()]++
	}
	return n
}
