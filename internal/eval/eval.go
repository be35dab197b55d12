// Package eval validates lexicon invariants after a turn.
package eval

import (
	"fmt"

	"github.com/Maciej615/EriAmo-sub001/internal/lexicon"
)

// #region eval-harness
// EvalHarness checks a lexicon against its seed vocabulary and policy bounds.
type EvalHarness struct {
	config EvalConfig
	seeds  map[string]string // normalized seed word -> axis
}

// NewEvalHarness creates an eval harness. seeds is the axis -> words table the
// lexicon was built from.
func NewEvalHarness(config EvalConfig, seeds map[string][]string) *EvalHarness {
	h := &EvalHarness{config: config, seeds: make(map[string]string)}
	for axis, words := range seeds {
		for _, w := range words {
			if n := lexicon.Normalize(w); n != "" {
				h.seeds[n] = axis
			}
		}
	}
	return h
}

// Run validates the lexicon after a turn whose analysis is given.
func (h *EvalHarness) Run(lex *lexicon.Lexicon, analysis lexicon.Analysis) EvalResult {
	var metrics []EvalMetric
	var failReasons []string

	// 1. Analysis vector is unit length or zero
	norm := analysis.Vector.Norm()
	normPass := norm <= 1+h.config.VectorTolerance
	metrics = append(metrics, EvalMetric{Name: "analysis_norm", Value: norm, Pass: normPass})
	if !normPass {
		failReasons = append(failReasons, fmt.Sprintf("analysis norm %.6f exceeds 1", norm))
	}

	// 2. Every learned weight lies in (0,1]
	learned := lex.LearnedWords()
	outOfRange := 0
	for _, w := range learned {
		entry, _ := lex.Entry(w)
		for _, v := range entry {
			if v <= 0 || v > 1 {
				outOfRange++
			}
		}
	}
	metrics = append(metrics, EvalMetric{Name: "weights_out_of_range", Value: float64(outOfRange), Pass: outOfRange == 0})
	if outOfRange > 0 {
		failReasons = append(failReasons, fmt.Sprintf("%d weights outside (0,1]", outOfRange))
	}

	// 3. Seeds keep full weight on their axis
	missing := 0
	for w, axis := range h.seeds {
		entry, ok := lex.Entry(w)
		if !ok || !lex.IsSeed(w) || entry[axis] < 1 {
			missing++
		}
	}
	metrics = append(metrics, EvalMetric{Name: "seeds_degraded", Value: float64(missing), Pass: missing == 0})
	if missing > 0 {
		failReasons = append(failReasons, fmt.Sprintf("%d seed words lost or weakened", missing))
	}

	// 4. Vocabulary growth
	sizePass := h.config.MaxLearnedWords <= 0 || len(learned) <= h.config.MaxLearnedWords
	metrics = append(metrics, EvalMetric{Name: "learned_words", Value: float64(len(learned)), Pass: sizePass})
	if !sizePass {
		failReasons = append(failReasons, fmt.Sprintf("%d learned words exceed %d", len(learned), h.config.MaxLearnedWords))
	}

	result := EvalResult{Passed: len(failReasons) == 0, Metrics: metrics, Reason: "all checks passed"}
	if !result.Passed {
		result.Reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			result.Reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}
	return result
}

// #endregion eval-harness
