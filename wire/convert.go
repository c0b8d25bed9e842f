package wire

import (
	"fmt"
	"time"

	"bridge-lite/bridge"
	"bridge-lite/card"
)

// FromSnapshot builds the broadcast payload from an engine snapshot.
func FromSnapshot(s bridge.Snapshot) GameState {
	gs := GameState{
		State:       s.Phase.String(),
		RoundNumber: s.RoundNumber,
		Dealer:      s.Dealer.String(),

		Scores: map[string]int{
			bridge.TeamNS.String(): s.Scores[bridge.TeamNS],
			bridge.TeamEW.String(): s.Scores[bridge.TeamEW],
		},
		Vulnerable: map[string]bool{
			bridge.TeamNS.String(): s.Vulnerable[bridge.TeamNS],
			bridge.TeamEW.String(): s.Vulnerable[bridge.TeamEW],
		},

		Hands:          make(map[string][]string, 4),
		NetworkPlayers: make(map[string]string, 4),
		PlayerNames:    make(map[string]string, 4),

		TimeLimit: s.TurnLimit.Milliseconds(),
		MaxRounds: s.MaxRounds,
	}

	for seat := bridge.Seat(0); seat < 4; seat++ {
		key := seat.String()
		cards := make([]string, 0, len(s.Hands[seat]))
		for _, c := range s.Hands[seat] {
			cards = append(cards, c.String())
		}
		gs.Hands[key] = cards
		gs.NetworkPlayers[key] = controllerString(s.Controllers[seat])
		gs.PlayerNames[key] = s.Names[seat]
	}

	if s.CurrentPlayer != bridge.SeatNone {
		gs.CurrentPlayer = s.CurrentPlayer.String()
	}
	if !s.TurnDeadline.IsZero() {
		gs.TurnEndTime = s.TurnDeadline.UnixMilli()
	}

	if s.Bids != nil {
		bs := &BiddingState{
			Bids:      make([]BidEntry, 0, len(s.Bids)),
			Doubled:   s.Doubled,
			Redoubled: s.Redoubled,
		}
		for _, b := range s.Bids {
			bs.Bids = append(bs.Bids, BidEntry{Player: b.Seat.String(), Bid: b.String()})
		}
		if s.Phase == bridge.PhaseBidding && s.CurrentPlayer != bridge.SeatNone {
			bs.CurrentPlayer = s.CurrentPlayer.String()
		}
		gs.Bidding = bs
	}

	if s.Contract != nil {
		gs.Contract = contractState(s.Contract)
		gs.Declarer = s.Contract.Declarer.String()
		gs.Dummy = s.Contract.Dummy.String()
		gs.TrickCounts = map[string]int{
			bridge.TeamNS.String(): s.TrickCount[bridge.TeamNS],
			bridge.TeamEW.String(): s.TrickCount[bridge.TeamEW],
		}
	}

	gs.Trick = trickState(s.Trick)
	gs.LastTrick = trickState(s.LastTrick)
	gs.LastResult = scoreState(s.LastResult)
	for _, rec := range s.History {
		gs.History = append(gs.History, roundResult(rec))
	}

	return gs
}

// ToSnapshot rebuilds an engine snapshot from the wire payload. The
// round trip through FromSnapshot is lossless to millisecond clock
// precision.
func ToSnapshot(gs GameState) (bridge.Snapshot, error) {
	s := bridge.Snapshot{
		RoundNumber:   gs.RoundNumber,
		CurrentPlayer: bridge.SeatNone,
		TurnLimit:     time.Duration(gs.TimeLimit) * time.Millisecond,
		MaxRounds:     gs.MaxRounds,
	}

	phase, err := parsePhase(gs.State)
	if err != nil {
		return s, err
	}
	s.Phase = phase

	if s.Dealer, err = bridge.ParseSeat(gs.Dealer); err != nil {
		return s, err
	}
	if gs.CurrentPlayer != "" {
		if s.CurrentPlayer, err = bridge.ParseSeat(gs.CurrentPlayer); err != nil {
			return s, err
		}
	}

	s.Scores = [2]int{gs.Scores[bridge.TeamNS.String()], gs.Scores[bridge.TeamEW.String()]}
	s.Vulnerable = [2]bool{gs.Vulnerable[bridge.TeamNS.String()], gs.Vulnerable[bridge.TeamEW.String()]}
	if gs.TurnEndTime != 0 {
		s.TurnDeadline = time.UnixMilli(gs.TurnEndTime)
	}

	for seat := bridge.Seat(0); seat < 4; seat++ {
		key := seat.String()
		hand := make(card.CardList, 0, len(gs.Hands[key]))
		for _, id := range gs.Hands[key] {
			c, err := card.Parse(id)
			if err != nil {
				return s, fmt.Errorf("hand %s: %w", key, err)
			}
			hand = append(hand, c)
		}
		s.Hands[seat] = hand
		s.Controllers[seat] = parseController(gs.NetworkPlayers[key])
		s.Names[seat] = gs.PlayerNames[key]
	}

	if gs.Bidding != nil {
		s.Bids = make([]bridge.Bid, 0, len(gs.Bidding.Bids))
		for _, entry := range gs.Bidding.Bids {
			b, err := bridge.ParseBid(entry.Bid)
			if err != nil {
				return s, err
			}
			if b.Seat, err = bridge.ParseSeat(entry.Player); err != nil {
				return s, err
			}
			s.Bids = append(s.Bids, b)
			if b.Type == bridge.BidSuit {
				standing := b
				s.CurrentBid = &standing
			}
		}
		s.Doubled = gs.Bidding.Doubled
		s.Redoubled = gs.Bidding.Redoubled
	}

	if gs.Contract != nil {
		c, err := parseContract(gs.Contract)
		if err != nil {
			return s, err
		}
		s.Contract = c
		s.TrickCount = [2]int{
			gs.TrickCounts[bridge.TeamNS.String()],
			gs.TrickCounts[bridge.TeamEW.String()],
		}
		s.TricksPlayed = s.TrickCount[0] + s.TrickCount[1]
	}

	if s.Trick, err = parseTrick(gs.Trick); err != nil {
		return s, err
	}
	if s.LastTrick, err = parseTrick(gs.LastTrick); err != nil {
		return s, err
	}
	if s.LastResult, err = parseScore(gs.LastResult); err != nil {
		return s, err
	}
	for _, rr := range gs.History {
		rec, err := parseRoundResult(rr)
		if err != nil {
			return s, err
		}
		s.History = append(s.History, rec)
	}

	return s, nil
}

func controllerString(c bridge.Controller) string {
	switch c.Kind {
	case bridge.ControllerLocal:
		return "local"
	case bridge.ControllerRemote:
		return c.Conn
	}
	return "bot"
}

func parseController(s string) bridge.Controller {
	switch s {
	case "bot", "":
		return bridge.Controller{Kind: bridge.ControllerBot}
	case "local":
		return bridge.Controller{Kind: bridge.ControllerLocal}
	}
	return bridge.Controller{Kind: bridge.ControllerRemote, Conn: s}
}

func parsePhase(state string) (bridge.Phase, error) {
	for phase, name := range bridge.PhaseDictionary {
		if name == state {
			return phase, nil
		}
	}
	return 0, fmt.Errorf("invalid game state: %q", state)
}

func contractState(c *bridge.Contract) *ContractState {
	return &ContractState{
		Level:     c.Level,
		Suit:      c.Strain.Code(),
		Declarer:  c.Declarer.String(),
		Dummy:     c.Dummy.String(),
		Doubled:   c.Doubled,
		Redoubled: c.Redoubled,
	}
}

func parseContract(cs *ContractState) (*bridge.Contract, error) {
	strain, err := bridge.ParseStrain(cs.Suit)
	if err != nil {
		return nil, err
	}
	declarer, err := bridge.ParseSeat(cs.Declarer)
	if err != nil {
		return nil, err
	}
	dummy, err := bridge.ParseSeat(cs.Dummy)
	if err != nil {
		return nil, err
	}
	return &bridge.Contract{
		Level:     cs.Level,
		Strain:    strain,
		Declarer:  declarer,
		Dummy:     dummy,
		Doubled:   cs.Doubled,
		Redoubled: cs.Redoubled,
	}, nil
}

func trickState(t *bridge.TrickSnapshot) *TrickState {
	if t == nil {
		return nil
	}
	ts := &TrickState{
		Leader:   t.Leader.String(),
		Cards:    make(map[string]string, len(t.Order)),
		Order:    make([]string, 0, len(t.Order)),
		Complete: t.Complete,
	}
	if t.LedSuit != card.SuitNone {
		ts.LedSuit = t.LedSuit.Code()
	}
	if t.Winner != bridge.SeatNone {
		ts.Winner = t.Winner.String()
	}
	for i, seat := range t.Order {
		ts.Order = append(ts.Order, seat.String())
		ts.Cards[seat.String()] = t.Cards[i].String()
	}
	return ts
}

func parseTrick(ts *TrickState) (*bridge.TrickSnapshot, error) {
	if ts == nil {
		return nil, nil
	}
	t := &bridge.TrickSnapshot{
		LedSuit:  card.SuitNone,
		Winner:   bridge.SeatNone,
		Complete: ts.Complete,
	}
	var err error
	if t.Leader, err = bridge.ParseSeat(ts.Leader); err != nil {
		return nil, err
	}
	if ts.LedSuit != "" {
		if t.LedSuit, err = card.ParseSuit(ts.LedSuit); err != nil {
			return nil, err
		}
	}
	if ts.Winner != "" {
		if t.Winner, err = bridge.ParseSeat(ts.Winner); err != nil {
			return nil, err
		}
	}
	for _, seatCode := range ts.Order {
		seat, err := bridge.ParseSeat(seatCode)
		if err != nil {
			return nil, err
		}
		c, err := card.Parse(ts.Cards[seatCode])
		if err != nil {
			return nil, err
		}
		t.Order = append(t.Order, seat)
		t.Cards = append(t.Cards, c)
	}
	return t, nil
}

func scoreState(r *bridge.ScoreResult) *ScoreState {
	if r == nil {
		return nil
	}
	return &ScoreState{
		Team:           r.Team.String(),
		Made:           r.Made,
		TrickScore:     r.TrickScore,
		Bonus:          r.Bonus,
		OvertrickScore: r.OvertrickScore,
		InsultBonus:    r.InsultBonus,
		Penalty:        r.Penalty,
		Overtricks:     r.Overtricks,
		Undertricks:    r.Undertricks,
		Total:          r.Total,
	}
}

func parseScore(ss *ScoreState) (*bridge.ScoreResult, error) {
	if ss == nil {
		return nil, nil
	}
	team := bridge.TeamNS
	switch ss.Team {
	case bridge.TeamNS.String():
	case bridge.TeamEW.String():
		team = bridge.TeamEW
	default:
		return nil, fmt.Errorf("invalid team: %q", ss.Team)
	}
	return &bridge.ScoreResult{
		Team:           team,
		Made:           ss.Made,
		TrickScore:     ss.TrickScore,
		Bonus:          ss.Bonus,
		OvertrickScore: ss.OvertrickScore,
		InsultBonus:    ss.InsultBonus,
		Penalty:        ss.Penalty,
		Overtricks:     ss.Overtricks,
		Undertricks:    ss.Undertricks,
		Total:          ss.Total,
	}, nil
}

func roundResult(rec bridge.RoundRecord) RoundResult {
	rr := RoundResult{
		Round:     rec.Round,
		PassedOut: rec.PassedOut,
		Score:     scoreState(rec.Result),
	}
	if rec.Contract != nil {
		rr.Contract = contractState(rec.Contract)
		rr.Declarer = rec.Declarer.String()
		rr.Tricks = map[string]int{
			bridge.TeamNS.String(): rec.Tricks[bridge.TeamNS],
			bridge.TeamEW.String(): rec.Tricks[bridge.TeamEW],
		}
	}
	return rr
}

func parseRoundResult(rr RoundResult) (bridge.RoundRecord, error) {
	rec := bridge.RoundRecord{
		Round:     rr.Round,
		PassedOut: rr.PassedOut,
	}
	var err error
	if rec.Result, err = parseScore(rr.Score); err != nil {
		return rec, err
	}
	if rr.Contract != nil {
		if rec.Contract, err = parseContract(rr.Contract); err != nil {
			return rec, err
		}
		if rec.Declarer, err = bridge.ParseSeat(rr.Declarer); err != nil {
			return rec, err
		}
		rec.Tricks = [2]int{
			rr.Tricks[bridge.TeamNS.String()],
			rr.Tricks[bridge.TeamEW.String()],
		}
	}
	return rec, nil
}
