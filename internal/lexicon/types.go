package lexicon

import (
	"errors"
	"math"
)

// #region errors
var (
	ErrUnknownAxis      = errors.New("unknown axis")
	ErrEmptyWord        = errors.New("word is empty after normalization")
	ErrVectorLength     = errors.New("vector length does not match axis count")
	ErrInvalidStrength  = errors.New("strength must be a finite non-negative number")
	ErrNoAxes           = errors.New("axis set is empty")
	ErrDuplicateAxis    = errors.New("duplicate axis")
	ErrNoPath           = errors.New("lexicon path not configured")
	ErrInvalidThreshold = errors.New("threshold out of range")
)

// #endregion errors

// #region config
// Config is the immutable configuration a Lexicon is built from. Axes and Seeds
// are copied at construction; mutating the caller's slices afterwards has no effect.
type Config struct {
	Axes  []string            // ordered axis names, fixed for the lexicon's lifetime
	Seeds map[string][]string // axis -> seed words (weight 1.0, decay-immune, never saved)
	Path  string              // JSON document written by Save and read by Load

	MinWordLength       int     // tokens shorter than this (in runes) are ignored
	ActivationThreshold float64 // component needed for a dominant axis / active context axis
	LearningThreshold   float64 // minimum confidence accepted by LearnFromContext
	ReinforcementStep   float64 // additive nudge applied by ReinforceWord
	LearnedWeightScale  float64 // scale of weights assigned by LearnFromContext
	DecayRate           float64 // multiplicative factor per DecayUnused tick
	DecayFloor          float64 // weights below this are dropped by DecayUnused
	SchemaVersion       string  // "version" tag written into the saved document
}

// DefaultConfig returns the policy defaults. Axes and Seeds are left empty.
func DefaultConfig() Config {
	return Config{
		MinWordLength:       3,
		ActivationThreshold: 0.3,
		LearningThreshold:   0.4,
		ReinforcementStep:   0.05,
		LearnedWeightScale:  0.5,
		DecayRate:           0.99,
		DecayFloor:          0.1,
		SchemaVersion:       "lexicon/2",
	}
}

// #endregion config

// #region weights
// Weights is a sparse axis -> weight map. Every write goes through set, which
// clamps to [0,1] and drops non-positive values, so a stored weight is always in (0,1].
type Weights map[string]float64

func (w Weights) set(axis string, v float64) {
	v = clamp01(v)
	if v <= 0 {
		delete(w, axis)
		return
	}
	w[axis] = v
}

func (w Weights) add(axis string, delta float64) {
	w.set(axis, w[axis]+delta)
}

func (w Weights) clone() Weights {
	c := make(Weights, len(w))
	for k, v := range w {
		c[k] = v
	}
	return c
}

// #endregion weights

// #region vector
// Vector is a dense vector with one component per configured axis.
type Vector []float64

// Norm returns the L2 norm.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// ArgMax returns the index and value of the largest component. The first index
// wins on ties. An empty vector yields (-1, 0).
func (v Vector) ArgMax() (int, float64) {
	idx, best := -1, 0.0
	for i, x := range v {
		if idx == -1 || x > best {
			idx, best = i, x
		}
	}
	return idx, best
}

// IsZero reports whether every component is zero.
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// #endregion vector

// #region analysis
// Analysis is the result of AnalyzeText.
type Analysis struct {
	Vector   Vector   // L2-normalized, or all zeros
	Dominant string   // "" when no component exceeds the activation threshold
	Known    []string // distinct known tokens, in order of first appearance
	Unknown  []string // distinct unknown tokens, in order of first appearance
}

// HasDominant reports whether the analysis resolved to an axis.
func (a Analysis) HasDominant() bool { return a.Dominant != "" }

// Confidence is the strength of the dominant component (0 when there is none).
func (a Analysis) Confidence() float64 {
	if !a.HasDominant() {
		return 0
	}
	_, v := a.Vector.ArgMax()
	return v
}

// #endregion analysis

// #region learned-word
// LearnedWord reports the weights a word holds after a learning call.
type LearnedWord struct {
	Word    string
	Weights Weights
}

// #endregion learned-word

// #region stats
// Stats summarises the vocabulary.
type Stats struct {
	Total        int
	Seed         int
	Learned      int
	PerSector    map[string]int // words whose weight on the axis is >= activation threshold
	LastLearned  []LearnedWord
	TotalLearned int
}

// SimilarPair is one result of the redundancy check.
type SimilarPair struct {
	A, B       string
	Similarity float64
}

// #endregion stats

// #region persistence-results
// LoadStatus describes how Load ended.
type LoadStatus string

const (
	LoadOK         LoadStatus = "loaded"
	LoadMissing    LoadStatus = "missing"
	LoadMalformed  LoadStatus = "malformed"
	LoadUnreadable LoadStatus = "unreadable"
)

// LoadResult is returned by Load. Degraded loads leave the in-memory table untouched.
type LoadResult struct {
	Status LoadStatus
	Path   string
	Words  int
	Reason string
}

// Degraded reports whether an existing file could not be used.
func (r LoadResult) Degraded() bool {
	return r.Status == LoadMalformed || r.Status == LoadUnreadable
}

// SaveResult is returned by Save. Err is nil on success.
type SaveResult struct {
	Path  string
	Words int
	Err   error
}

// OK reports whether the document was written.
func (r SaveResult) OK() bool { return r.Err == nil }

// #endregion persistence-results

// #region helpers
// clamp01 restricts v to [0, 1]; NaN maps to 0.
func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
