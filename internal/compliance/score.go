package compliance

import "math"

const unknownTypeWeight = 0.10

var typeWeights = map[PolicyType]float64{
	TypeEncryption:         0.25,
	TypeAccessControl:      0.25,
	TypeAuditTrail:         0.20,
	TypeRetention:          0.15,
	TypeDataClassification: 0.15,
}

// Weight returns the contribution weight of a policy type. Types outside the
// known set weigh 0.10; such policies can only reach a run through a store
// written by something other than CreatePolicy, and they score 0.
func Weight(t PolicyType) float64 {
	if w, ok := typeWeights[t]; ok {
		return w
	}
	return unknownTypeWeight
}

// WeightedScore is round(Σ score×weight / Σ weight), clamped to [0,100].
// An empty result set scores 0.
func WeightedScore(results []CheckResult) int {
	var sum, weights float64
	for _, r := range results {
		w := Weight(r.PolicyType)
		sum += float64(r.Score) * w
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return clampScore(int(math.Round(sum / weights)))
}

func clampScore(s int) int {
	return min(max(s, 0), 100)
}

// TrendOf classifies a score series by its first and last point.
func TrendOf(history []ScoreHistory) Trend {
	if len(history) < 2 {
		return TrendStable
	}
	delta := history[len(history)-1].Score - history[0].Score
	switch {
	case delta >= 5:
		return TrendImproving
	case delta <= -5:
		return TrendDeclining
	default:
		return TrendStable
	}
}
