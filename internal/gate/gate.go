package gate

import (
	"fmt"
	"math"
	"strings"

	"github.com/Maciej615/EriAmo-sub001/internal/lexicon"
)

// #region gate
// Gate decides whether a turn is confident enough to teach the lexicon its
// unknown words.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Config returns the active thresholds.
func (g *Gate) Config() GateConfig { return g.config }

// Evaluate checks hard vetoes first, then scores soft signals.
func (g *Gate) Evaluate(in Input) GateDecision {
	var vetoes []VetoSignal

	// --- Context selection ---
	axis, source, vec, confidence := g.context(in)

	// --- Hard veto pass ---

	// 1. Slash commands never teach
	if strings.HasPrefix(strings.TrimSpace(in.Text), "/") {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoCommand,
			Reason: "input is a command",
		})
	}

	// 2. Neither signal resolved an axis
	if axis == "" {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoNoDominant,
			Reason: "no dominant axis from lexicon or scanner",
		})
	}

	// 3. Scanner fires hard on a different axis
	if source == SourceLexicon && in.ScanAxis != "" && in.ScanAxis != axis &&
		in.ScanIntensity >= g.config.ConflictIntensity {
		vetoes = append(vetoes, VetoSignal{
			Type: VetoScannerConflict,
			Reason: fmt.Sprintf("scanner says %s at %.2f, lexicon says %s",
				in.ScanAxis, in.ScanIntensity, axis),
		})
	}

	// 4. No unknown words
	if len(in.Candidates) == 0 {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoNothingToLearn,
			Reason: "no unknown words to learn",
		})
	}

	// 5. Confidence below threshold
	if axis != "" && confidence < g.config.MinConfidence {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoLowConfidence,
			Reason: fmt.Sprintf("confidence %.4f below %.4f", confidence, g.config.MinConfidence),
		})
	}

	if len(vetoes) > 0 {
		return GateDecision{
			Action:      "reject",
			Reason:      fmt.Sprintf("hard veto: %s", vetoes[0].Reason),
			Vetoed:      true,
			VetoSignals: vetoes,
			Axis:        axis,
			Source:      source,
			Context:     vec,
			Confidence:  confidence,
		}
	}

	// --- Soft scoring ---
	softScore := computeSoftScore(in, axis)

	return GateDecision{
		Action:     "commit",
		Reason:     fmt.Sprintf("passed gate: confidence=%.4f soft_score=%.4f", confidence, softScore),
		Axis:       axis,
		Source:     source,
		Context:    vec,
		Confidence: confidence,
		SoftScore:  softScore,
	}
}

// #endregion gate

// #region context
// context picks the vector learning would use. The lexicon wins when it has a
// dominant axis; the scanner is the fallback.
func (g *Gate) context(in Input) (axis, source string, vec lexicon.Vector, confidence float64) {
	if in.Analysis.HasDominant() {
		confidence = in.Analysis.Confidence()
		if in.ScanAxis == in.Analysis.Dominant {
			confidence += g.config.AgreementBoost * in.ScanIntensity * (1 - confidence)
		}
		return in.Analysis.Dominant, SourceLexicon, in.Analysis.Vector, clamp01(confidence)
	}
	if in.ScanAxis != "" && len(in.ScanVector) == len(in.Axes) {
		return in.ScanAxis, SourceScanner, normalized(in.ScanVector), clamp01(in.ScanIntensity)
	}
	return "", "", nil, 0
}

// #endregion context

// #region helpers
func normalized(v []float64) lexicon.Vector {
	out := make(lexicon.Vector, len(v))
	copy(out, v)
	n := out.Norm()
	if n == 0 {
		return out
	}
	for i := range out {
		out[i] /= n
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// computeSoftScore produces a 0-1 composite from vocabulary coverage and
// scanner agreement. Logged but does not block.
func computeSoftScore(in Input, axis string) float64 {
	var score float64

	// Coverage component: share of distinct tokens already known (weight 0.5)
	known, unknown := len(in.Analysis.Known), len(in.Analysis.Unknown)
	if known+unknown > 0 {
		score += 0.5 * float64(known) / float64(known+unknown)
	}

	// Agreement component (weight 0.5)
	switch {
	case in.ScanAxis == "":
		score += 0.25
	case in.ScanAxis == axis:
		score += 0.5
	}

	return score
}

// #endregion helpers
