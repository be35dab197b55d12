package kurz

// #region config
// Config holds scanner policy.
type Config struct {
	PerMatchWeight float64 // intensity contributed by each trigger match, capped at 1.0
}

// DefaultConfig returns the default scanner policy.
func DefaultConfig() Config {
	return Config{PerMatchWeight: 0.7}
}

// #endregion config
