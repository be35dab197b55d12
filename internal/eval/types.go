package eval

// #region eval-config
// EvalConfig holds thresholds for post-turn validation.
type EvalConfig struct {
	VectorTolerance float64 // allowed excess of the analysis norm over 1
	MaxLearnedWords int     // fail when the learned vocabulary grows past this; 0 disables
}

// DefaultEvalConfig returns the default thresholds.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		VectorTolerance: 1e-9,
		MaxLearnedWords: 0,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string
	Value float64
	Pass  bool
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of post-turn validation.
type EvalResult struct {
	Passed  bool
	Metrics []EvalMetric
	Reason  string
}

// #endregion eval-result
