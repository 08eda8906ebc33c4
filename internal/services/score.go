package services

// ScoreSummary aggregates per-pillar and overall scores for one answer set.
type ScoreSummary struct {
	PillarScores     []PillarScore `json:"pillar_scores"`
	TotalScore       float64       `json:"total_score"`
	MaxPossibleScore float64       `json:"max_possible_score"`
	PercentageScore  float64       `json:"percentage_score"`
}

// CalculateScore credits each question from the answer map against a catalog
// snapshot. The question's positive answer earns full points; PARTIAL on a
// TERNARY question earns half; anything else (a missing answer, the negative
// answer, PARTIAL on a BINARY question, garbage) earns zero while the
// question's weight still counts toward the maximum. Scores may be
// fractional; rounding is left to presentation. Pure: mutates neither input.
func CalculateScore(answers map[string]string, pillars []*Pillar) *ScoreSummary {
	totalScore := 0.0
	maxPossibleScore := 0.0

	pillarScores := make([]PillarScore, 0, len(pillars))
	for _, p := range pillars {
		pillarScore := 0.0
		pillarMaxScore := 0.0

		for _, q := range p.Questions {
			answer := answers[q.ID]
			pillarMaxScore += q.Points

			if answer == q.PositiveAnswer {
				pillarScore += q.Points
			} else if answer == AnswerPartial && q.AnswerType == AnswerTypeTernary {
				pillarScore += q.Points / 2
			}
		}

		totalScore += pillarScore
		maxPossibleScore += pillarMaxScore

		pillarScores = append(pillarScores, PillarScore{
			PillarID:         p.ID,
			PillarName:       p.Name,
			Score:            pillarScore,
			MaxPossibleScore: pillarMaxScore,
			PercentageScore:  percentage(pillarScore, pillarMaxScore),
		})
	}

	return &ScoreSummary{
		PillarScores:     pillarScores,
		TotalScore:       totalScore,
		MaxPossibleScore: maxPossibleScore,
		PercentageScore:  percentage(totalScore, maxPossibleScore),
	}
}

// percentage reports 0 for a zero maximum so empty pillars never produce
// NaN/Inf in persisted data.
func percentage(score, max float64) float64 {
	if max == 0 {
		return 0
	}
	return score / max * 100
}
