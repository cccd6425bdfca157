// Package selection picks the recommended portfolio from horizon-scaled
// simulation records by risk tier and investment goal.
package selection

import (
	"fmt"
	"math"
	"strings"

	"github.com/wonny/pfopt/internal/contracts"
)

// LowRiskPercentile volatility cut-off of the Low risk tier
const LowRiskPercentile = 0.25

// ParseRiskTier case/space tolerant ("low", " LOW risk ")
func ParseRiskTier(label string) (contracts.RiskTier, error) {
	s := normalize(label)
	s = strings.TrimSuffix(s, " risk")

	switch s {
	case "low":
		return contracts.RiskLow, nil
	case "moderate", "medium":
		return contracts.RiskModerate, nil
	case "high":
		return contracts.RiskHigh, nil
	default:
		return "", fmt.Errorf("%w: unknown risk tolerance %q", contracts.ErrInvalidParameter, label)
	}
}

// ParseGoalTier unknown labels fall back to Balanced
func ParseGoalTier(label string) contracts.GoalTier {
	s := strings.NewReplacer("-", " ", "_", " ").Replace(normalize(label))
	s = strings.Join(strings.Fields(s), " ")

	switch s {
	case "capital preservation":
		return contracts.GoalCapitalPreservation
	case "long term growth":
		return contracts.GoalLongTermGrowth
	case "high risk high return":
		return contracts.GoalHighRiskHighReturn
	default:
		return contracts.GoalBalanced
	}
}

func normalize(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), " ")
}

// FilterByRisk 1단계: 리스크 등급별 후보 필터링
// Low → volatility_h <= P25(volatility_h), Moderate/High → 전체
// ⭐ Moderate 는 High 와 동일 (필터 없음)
func FilterByRisk(records []contracts.HorizonScaledRecord, tier contracts.RiskTier) []contracts.HorizonScaledRecord {
	if tier != contracts.RiskLow {
		out := make([]contracts.HorizonScaledRecord, len(records))
		copy(out, records)
		return out
	}

	vols := make([]float64, len(records))
	for i, r := range records {
		vols[i] = r.Volatility
	}
	cut := Percentile(vols, LowRiskPercentile)

	out := make([]contracts.HorizonScaledRecord, 0, len(records)/4+1)
	for _, r := range records {
		if r.Volatility <= cut {
			out = append(out, r)
		}
	}
	return out
}

// Select 2단계: 목표별 최종 선택 (동률 → 먼저 나온 레코드)
func Select(records []contracts.HorizonScaledRecord, risk contracts.RiskTier, goal contracts.GoalTier) (contracts.HorizonScaledRecord, error) {
	candidates := FilterByRisk(records, risk)
	if len(candidates) == 0 {
		return contracts.HorizonScaledRecord{}, fmt.Errorf("%w: %d records, risk tier %s",
			contracts.ErrEmptyCandidateSet, len(records), risk)
	}

	var key func(contracts.HorizonScaledRecord) float64
	switch goal {
	case contracts.GoalCapitalPreservation:
		key = func(r contracts.HorizonScaledRecord) float64 { return r.Volatility }
	case contracts.GoalHighRiskHighReturn:
		key = func(r contracts.HorizonScaledRecord) float64 { return -r.Return }
	case contracts.GoalLongTermGrowth:
		key = func(r contracts.HorizonScaledRecord) float64 { return -r.Sharpe }
	default:
		vols := make([]float64, len(candidates))
		for i, r := range candidates {
			vols[i] = r.Volatility
		}
		median := Median(vols)
		key = func(r contracts.HorizonScaledRecord) float64 { return math.Abs(r.Volatility - median) }
	}

	return argmin(candidates, key), nil
}

func argmin(records []contracts.HorizonScaledRecord, key func(contracts.HorizonScaledRecord) float64) contracts.HorizonScaledRecord {
	best := 0
	bestKey := key(records[0])
	for i := 1; i < len(records); i++ {
		if k := key(records[i]); k < bestKey {
			best, bestKey = i, k
		}
	}
	return records[best]
}
