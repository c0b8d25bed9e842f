package card

import "math/rand"

// Deck is the full 52-card bridge deck.
type Deck struct {
	cards CardList
	rng   *rand.Rand
}

func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	d.cards = make(CardList, 0, 52)
	for suit := Club; suit <= Spade; suit++ {
		for rank := Card(0x02); rank <= 0x0E; rank++ {
			d.cards = append(d.cards, Card(suit)<<4|rank)
		}
	}
	return d
}

// Shuffle runs Fisher-Yates with an inclusive swap range [0,i].
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal shuffles and splits the deck round-robin into four sorted
// 13-card hands (card i goes to hand i mod 4).
func (d *Deck) Deal() [4]CardList {
	d.Shuffle()
	var hands [4]CardList
	for i, c := range d.cards {
		hands[i%4] = append(hands[i%4], c)
	}
	for i := range hands {
		hands[i].SortDisplay()
	}
	return hands
}
