package services

import (
	"math"
	"strings"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
)

// Reward weights. Fixed design constants, not configurable at call time.
const (
	rewardAlpha = 1.0 // context adherence
	rewardBeta  = 1.0 // hallucination penalty
	rewardGamma = 0.5 // verbosity penalty

	// adherencePrefixLen is how many leading characters of a context line
	// must appear verbatim in the answer to count as a hit
	adherencePrefixLen = 20

	// adherenceTarget is the number of hits at which C saturates
	adherenceTarget = 3

	// verbosityBudget is the word count at which V saturates
	verbosityBudget = 150
)

// hallucinationMarkers is a coarse lexical tripwire, not a semantic
// detector: hedging language plus a couple of domain-absurd phrases.
// False negatives are expected.
var hallucinationMarkers = []string{
	"could potentially",
	"might indicate",
	"possibly",
	"advanced civilizations",
	"extraterrestrial",
}

// ScoreAnswer computes the reward for an answer given its retrieval context.
// Pure and deterministic; no external calls.
//
//	C: per non-blank context line, does its 20-char prefix appear in the
//	   answer verbatim; C = min(hits/3, 1)
//	H: 1 if the lowercased answer contains any hallucination marker
//	V: min(words/150, 1)
//	reward = clamp(1.0*C - 1.0*H - 0.5*V, -1, 1), rounded to 2 decimals
func ScoreAnswer(answer, context string) (float64, domain.RewardComponents) {
	hits := 0
	for _, line := range strings.Split(context, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		// Prefix comes from the raw line, the blank check from the
		// trimmed one; trimming the prefix would change existing scores.
		if strings.Contains(answer, prefixRunes(line, adherencePrefixLen)) {
			hits++
		}
	}
	c := math.Min(float64(hits)/adherenceTarget, 1.0)

	h := 0.0
	lowered := strings.ToLower(answer)
	for _, marker := range hallucinationMarkers {
		if strings.Contains(lowered, marker) {
			h = 1.0
			break
		}
	}

	v := math.Min(float64(len(strings.Fields(answer)))/verbosityBudget, 1.0)

	reward := rewardAlpha*c - rewardBeta*h - rewardGamma*v
	reward = round2(math.Max(-1.0, math.Min(1.0, reward)))

	return reward, domain.RewardComponents{
		C: round2(c),
		H: h,
		V: round2(v),
	}
}

// prefixRunes returns the first n characters of s, rune-safe.
func prefixRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
