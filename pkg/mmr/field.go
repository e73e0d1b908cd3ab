package mmr

// Score compares two results: 1 for a win, 0.5 for a tie and 0 for a loss.
func Score(a, b int) float64 {
	switch {
	case a > b:
		return 1
	case a == b:
		return 0.5
	default:
		return 0
	}
}

func unchanged(ratings []int) []Outcome {
	outcomes := make([]Outcome, len(ratings))
	for i, rating := range ratings {
		outcomes[i].Rating = rating
	}
	return outcomes
}

// Field rates a free for all. Every participant plays a virtual match
// against every other one, decided by results, and the deltas are averaged
// over the number of opponents.
func (e *Elo) Field(ratings []int, results []int) []Outcome {
	outcomes := unchanged(ratings)
	if len(ratings) != len(results) || len(ratings) < 2 {
		return outcomes
	}

	opponents := float64(len(ratings) - 1)
	for i := range ratings {
		total := 0.0
		for j := range ratings {
			if i == j {
				continue
			}
			total += e.delta(ratings[i], ratings[j], Score(results[i], results[j]))
		}
		delta := int(total / opponents)
		outcomes[i] = Outcome{Delta: delta, Rating: ratings[i] + delta}
	}
	return outcomes
}

// Teams rates everyone against the average rating of all players on other
// teams. winner is the winning team, or negative for a draw.
func (e *Elo) Teams(ratings []int, teams []int, winner int) []Outcome {
	outcomes := unchanged(ratings)
	if len(ratings) != len(teams) {
		return outcomes
	}

	for i, team := range teams {
		var opponents []int
		for j, other := range teams {
			if other != team {
				opponents = append(opponents, ratings[j])
			}
		}
		if len(opponents) == 0 {
			continue
		}

		score := 0.5
		switch {
		case winner < 0:
		case winner == team:
			score = 1
		default:
			score = 0
		}
		outcomes[i] = e.Versus(ratings[i], Average(opponents), score)
	}
	return outcomes
}

// Average is the mean rating of a team, or Initial for an empty one.
func Average(ratings []int) int {
	if len(ratings) == 0 {
		return Initial
	}
	sum := 0
	for _, rating := range ratings {
		sum += rating
	}
	return sum / len(ratings)
}
