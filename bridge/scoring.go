package bridge

// ScoreResult is the point award for one finished deal.
type ScoreResult struct {
	Team Team
	Made bool

	TrickScore     int
	Bonus          int
	OvertrickScore int
	InsultBonus    int
	Penalty        int

	Overtricks  int
	Undertricks int
	Total       int
}

// Score is the duplicate-style award for a finished contract given
// the declarer team's trick count. The winning team is the declaring
// side when the contract makes, otherwise the defenders.
func Score(c Contract, tricksMade int, vulnerable bool) ScoreResult {
	needed := c.TricksNeeded()
	if tricksMade >= needed {
		return scoreMade(c, tricksMade-needed, vulnerable)
	}
	return scoreDown(c, needed-tricksMade, vulnerable)
}

func scoreMade(c Contract, overtricks int, vulnerable bool) ScoreResult {
	trickScore := 0
	switch c.Strain {
	case StrainClub, StrainDiamond:
		trickScore = c.Level * 20
	case StrainHeart, StrainSpade:
		trickScore = c.Level * 30
	case StrainNoTrump:
		trickScore = 40 + (c.Level-1)*30
	}

	if c.Redoubled {
		trickScore *= 4
	} else if c.Doubled {
		trickScore *= 2
	}

	// Part-score or game bonus, judged on the (multiplied) trick score.
	bonus := 50
	if trickScore >= 100 {
		bonus = 300
		if vulnerable {
			bonus = 500
		}
	}
	if c.Level == 6 {
		if vulnerable {
			bonus += 750
		} else {
			bonus += 500
		}
	}
	if c.Level == 7 {
		if vulnerable {
			bonus += 1500
		} else {
			bonus += 1000
		}
	}

	overtrickScore := 0
	switch {
	case c.Redoubled:
		if vulnerable {
			overtrickScore = overtricks * 400
		} else {
			overtrickScore = overtricks * 200
		}
	case c.Doubled:
		if vulnerable {
			overtrickScore = overtricks * 200
		} else {
			overtrickScore = overtricks * 100
		}
	case c.Strain == StrainClub || c.Strain == StrainDiamond:
		overtrickScore = overtricks * 20
	default:
		overtrickScore = overtricks * 30
	}

	insultBonus := 0
	if c.Doubled {
		insultBonus = 50
	}
	if c.Redoubled {
		insultBonus = 100
	}

	return ScoreResult{
		Team:           c.Declarer.Team(),
		Made:           true,
		TrickScore:     trickScore,
		Bonus:          bonus,
		OvertrickScore: overtrickScore,
		InsultBonus:    insultBonus,
		Overtricks:     overtricks,
		Total:          trickScore + bonus + overtrickScore + insultBonus,
	}
}

func scoreDown(c Contract, undertricks int, vulnerable bool) ScoreResult {
	penalty := 0
	switch {
	case c.Redoubled:
		for i := 1; i <= undertricks; i++ {
			penalty += 2 * doubledUndertrick(i, vulnerable)
		}
	case c.Doubled:
		for i := 1; i <= undertricks; i++ {
			penalty += doubledUndertrick(i, vulnerable)
		}
	case vulnerable:
		penalty = undertricks * 100
	default:
		penalty = undertricks * 50
	}

	return ScoreResult{
		Team:        c.Declarer.Team().Opponent(),
		Made:        false,
		Penalty:     penalty,
		Undertricks: undertricks,
		Total:       penalty,
	}
}

// doubledUndertrick is the standard doubled rate for the i-th
// undertrick: 100 then 200 each, or 200 then 300 each vulnerable.
func doubledUndertrick(i int, vulnerable bool) int {
	if vulnerable {
		if i == 1 {
			return 200
		}
		return 300
	}
	if i == 1 {
		return 100
	}
	return 200
}
