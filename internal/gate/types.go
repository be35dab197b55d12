package gate

import "github.com/Maciej615/EriAmo-sub001/internal/lexicon"

// #region veto-type
// VetoType enumerates hard veto categories.
type VetoType string

const (
	VetoNoDominant      VetoType = "no_dominant_axis"
	VetoNothingToLearn  VetoType = "nothing_to_learn"
	VetoScannerConflict VetoType = "scanner_conflict"
	VetoCommand         VetoType = "command"
	VetoLowConfidence   VetoType = "low_confidence"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents a detected hard veto condition.
type VetoSignal struct {
	Type   VetoType
	Reason string
}

// #endregion veto-signal

// #region gate-config
// GateConfig holds thresholds for learning decisions.
type GateConfig struct {
	MinConfidence     float64 // confidence a context must reach to teach unknown words
	AgreementBoost    float64 // share of the remaining headroom granted when the scanner agrees
	ConflictIntensity float64 // scanner intensity on another axis that vetoes learning
}

// DefaultGateConfig returns the default learning gate thresholds.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		MinConfidence:     0.4,
		AgreementBoost:    0.5,
		ConflictIntensity: 1.0,
	}
}

// #endregion gate-config

// #region gate-input
// Input is everything the gate sees for one turn.
type Input struct {
	Text          string
	Axes          []string
	Analysis      lexicon.Analysis
	ScanAxis      string // "" when the scanner matched nothing
	ScanIntensity float64
	ScanVector    []float64 // per-axis scanner intensities
	Candidates    []string  // unknown words eligible for learning
}

// #endregion gate-input

// #region gate-decision
// Source values for GateDecision.Source.
const (
	SourceLexicon = "lexicon"
	SourceScanner = "scanner"
)

// GateDecision is the output of the gate evaluation.
type GateDecision struct {
	Action      string // "commit" | "reject"
	Reason      string
	Vetoed      bool
	VetoSignals []VetoSignal // non-empty if vetoed
	Axis        string
	Source      string         // which signal the context came from
	Context     lexicon.Vector // context vector handed to LearnFromContext
	Confidence  float64
	SoftScore   float64 // 0-1 composite of soft signals (for logging)
}

// Committed reports whether learning should proceed.
func (d GateDecision) Committed() bool { return d.Action == "commit" }

// #endregion gate-decision
