package compliance

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func result(t PolicyType, score int) CheckResult {
	return CheckResult{PolicyType: t, Score: score}
}

func TestWeightedScore(t *testing.T) {
	tests := []struct {
		name    string
		results []CheckResult
		want    int
	}{
		{"empty", nil, 0},
		{"single", []CheckResult{result(TypeEncryption, 100)}, 100},
		{
			"weights by type",
			[]CheckResult{result(TypeEncryption, 100), result(TypeAuditTrail, 40)},
			// (25 + 8) / 0.45
			73,
		},
		{
			"all types",
			[]CheckResult{
				result(TypeEncryption, 100),
				result(TypeAccessControl, 80),
				result(TypeAuditTrail, 60),
				result(TypeRetention, 40),
				result(TypeDataClassification, 20),
			},
			// 25 + 20 + 12 + 6 + 3
			66,
		},
		{"unknown type weighs 0.10", []CheckResult{result(TypeAuditTrail, 100), result("legacy", 0)}, 67},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeightedScore(tt.results))
		})
	}
}

func TestWeightedScoreStaysInRange(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for range 200 {
		n := 1 + r.IntN(10)
		results := make([]CheckResult, n)
		lo, hi := 100, 0
		for i := range results {
			s := r.IntN(101)
			results[i] = result(PolicyTypes[r.IntN(len(PolicyTypes))], s)
			lo, hi = min(lo, s), max(hi, s)
		}
		got := WeightedScore(results)
		assert.GreaterOrEqual(t, got, lo)
		assert.LessOrEqual(t, got, hi)
	}
}

func history(scores ...int) []ScoreHistory {
	out := make([]ScoreHistory, len(scores))
	for i, s := range scores {
		out[i] = ScoreHistory{Score: s}
	}
	return out
}

func TestTrendOf(t *testing.T) {
	assert.Equal(t, TrendStable, TrendOf(nil))
	assert.Equal(t, TrendStable, TrendOf(history(10)))
	assert.Equal(t, TrendImproving, TrendOf(history(50, 55)))
	assert.Equal(t, TrendDeclining, TrendOf(history(55, 50)))
	assert.Equal(t, TrendStable, TrendOf(history(50, 54)))
	// only the endpoints count
	assert.Equal(t, TrendStable, TrendOf(history(50, 10, 90, 52)))
}

func TestTrendMatchesEndpointDelta(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	for range 20 {
		n := 2 + r.IntN(8)
		scores := make([]int, n)
		for i := range scores {
			scores[i] = r.IntN(101)
		}
		delta := scores[n-1] - scores[0]
		want := TrendStable
		if delta >= 5 {
			want = TrendImproving
		} else if delta <= -5 {
			want = TrendDeclining
		}
		assert.Equal(t, want, TrendOf(history(scores...)), "scores %v", scores)
	}
}

func TestExecutiveSummaryIsDeterministic(t *testing.T) {
	s := CheckSummary{Framework: "gdpr", Score: 72, TotalPolicies: 4, Passed: 3, Failed: 1}
	first := executiveSummary(s, TrendImproving)
	assert.Equal(t, first, executiveSummary(s, TrendImproving))
	assert.Contains(t, first, "GDPR compliance score is 72/100 (good)")
	assert.Contains(t, first, "improved")

	empty := executiveSummary(CheckSummary{Framework: "soc2"}, TrendStable)
	assert.Contains(t, empty, "No enabled SOC2 policies")
}

func TestBand(t *testing.T) {
	assert.Equal(t, "excellent", Band(90))
	assert.Equal(t, "good", Band(70))
	assert.Equal(t, "moderate", Band(50))
	assert.Equal(t, "needs improvement", Band(49))
}
