package session

import (
	"errors"

	"github.com/Maciej615/EriAmo-sub001/internal/gate"
	"github.com/Maciej615/EriAmo-sub001/internal/lexicon"
	"github.com/Maciej615/EriAmo-sub001/internal/memory"
)

var ErrNoMemory = errors.New("no memory store configured")

// #region config
// Config holds per-turn policy.
type Config struct {
	Reinforce     bool    // nudge known words towards the dominant axis on every turn
	DecayEvery    int     // run a decay tick every N turns; 0 disables
	MinSimilarity float64 // weakest resonance accepted when picking a stored response
	Gate          gate.GateConfig
}

// DefaultConfig returns the default session policy.
func DefaultConfig() Config {
	return Config{
		Reinforce:     true,
		DecayEvery:    10,
		MinSimilarity: 0.5,
		Gate:          gate.DefaultGateConfig(),
	}
}

// #endregion config

// #region turn-result
// TurnResult is what one turn produced.
type TurnResult struct {
	TurnID   string
	Analysis lexicon.Analysis

	ScanAxis      string
	ScanIntensity float64

	Decision gate.GateDecision
	Learned  []lexicon.LearnedWord
	Response *memory.Match // nil when nothing resonated

	DecayRan bool
	Decayed  int // words removed by this turn's decay tick
}

// #endregion turn-result
