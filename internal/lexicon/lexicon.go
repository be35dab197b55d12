// Package lexicon implements the evolving word -> axis-weight table that maps free
// text onto a fixed-dimension emotion vector. It reinforces known words, learns new
// ones from confident contexts and forgets unused learned associations through
// caller-driven decay.
//
// A Lexicon is not safe for concurrent use; the owning session serialises access.
package lexicon

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// #region lexicon-struct
// Lexicon owns the axis set, the seed vocabulary and the learned vocabulary.
type Lexicon struct {
	cfg       Config
	axes      []string
	axisIndex map[string]int
	words     map[string]Weights
	seed      map[string]struct{}

	totalLearned int
	lastLearned  []LearnedWord

	logger *zap.Logger
}

// Option customises a Lexicon at construction.
type Option func(*Lexicon)

// WithLogger routes load/save/decay reports to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Lexicon) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// #endregion lexicon-struct

// #region constructor
// New validates cfg and builds a lexicon holding only the seed vocabulary.
func New(cfg Config, opts ...Option) (*Lexicon, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	l := &Lexicon{
		cfg:       cfg,
		axes:      append([]string(nil), cfg.Axes...),
		axisIndex: make(map[string]int, len(cfg.Axes)),
		words:     make(map[string]Weights),
		seed:      make(map[string]struct{}),
		logger:    zap.NewNop(),
	}
	l.cfg.Axes = l.axes
	l.cfg.Seeds = nil
	for i, a := range l.axes {
		l.axisIndex[a] = i
	}
	for _, opt := range opts {
		opt(l)
	}

	// Seeds are applied in axis order so the table does not depend on map iteration.
	for _, axis := range l.axes {
		for _, raw := range cfg.Seeds[axis] {
			w := Normalize(raw)
			if w == "" {
				continue
			}
			entry, ok := l.words[w]
			if !ok {
				entry = make(Weights)
				l.words[w] = entry
			}
			entry.set(axis, 1.0)
			l.seed[w] = struct{}{}
		}
	}
	return l, nil
}

func validateConfig(cfg Config) error {
	if len(cfg.Axes) == 0 {
		return ErrNoAxes
	}
	seen := make(map[string]bool, len(cfg.Axes))
	for _, a := range cfg.Axes {
		if strings.TrimSpace(a) == "" {
			return fmt.Errorf("axis %q: %w", a, ErrUnknownAxis)
		}
		if seen[a] {
			return fmt.Errorf("axis %q: %w", a, ErrDuplicateAxis)
		}
		seen[a] = true
	}
	for axis := range cfg.Seeds {
		if !seen[axis] {
			return fmt.Errorf("seed axis %q: %w", axis, ErrUnknownAxis)
		}
	}
	for name, v := range map[string]float64{
		"activation":    cfg.ActivationThreshold,
		"learning":      cfg.LearningThreshold,
		"decay rate":    cfg.DecayRate,
		"decay floor":   cfg.DecayFloor,
		"reinforcement": cfg.ReinforcementStep,
		"weight scale":  cfg.LearnedWeightScale,
	} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%s threshold %v: %w", name, v, ErrInvalidThreshold)
		}
	}
	if cfg.DecayRate >= 1 {
		return fmt.Errorf("decay rate %v must be below 1: %w", cfg.DecayRate, ErrInvalidThreshold)
	}
	return nil
}

// #endregion constructor

// #region accessors
// Axes returns a copy of the configured axis names.
func (l *Lexicon) Axes() []string {
	return append([]string(nil), l.axes...)
}

// Config returns the configuration the lexicon was built with (without seeds).
func (l *Lexicon) Config() Config {
	c := l.cfg
	c.Axes = l.Axes()
	return c
}

// HasAxis reports whether axis is configured.
func (l *Lexicon) HasAxis(axis string) bool {
	_, ok := l.axisIndex[axis]
	return ok
}

// IsSeed reports whether the normalized word belongs to the seed vocabulary.
func (l *Lexicon) IsSeed(word string) bool {
	_, ok := l.seed[Normalize(word)]
	return ok
}

// Entry returns a copy of the word's weights.
func (l *Lexicon) Entry(word string) (Weights, bool) {
	entry, ok := l.words[Normalize(word)]
	if !ok {
		return nil, false
	}
	return entry.clone(), true
}

// LearnedWords returns the sorted non-seed vocabulary.
func (l *Lexicon) LearnedWords() []string {
	var out []string
	for w := range l.words {
		if _, isSeed := l.seed[w]; !isSeed {
			out = append(out, w)
		}
	}
	sort.Strings(out)
	return out
}

// TotalLearned returns the running learned-word counter.
func (l *Lexicon) TotalLearned() int { return l.totalLearned }

// #endregion accessors

// #region word-vector
// WordVector returns the dense vector of a word; all zeros when it is unknown.
func (l *Lexicon) WordVector(word string) Vector {
	vec := make(Vector, len(l.axes))
	entry, ok := l.words[Normalize(word)]
	if !ok {
		return vec
	}
	l.accumulate(vec, entry)
	return vec
}

func (l *Lexicon) accumulate(vec Vector, entry Weights) {
	for axis, w := range entry {
		if i, ok := l.axisIndex[axis]; ok {
			vec[i] += w
		}
	}
}

// #endregion word-vector

// #region analyze
// AnalyzeText maps text onto the axis vector. With reinforce set and a dominant
// axis found, every known token is nudged towards that axis.
func (l *Lexicon) AnalyzeText(text string, reinforce bool) Analysis {
	res := Analysis{Vector: make(Vector, len(l.axes))}
	tokens := tokenize(text, l.cfg.MinWordLength)
	if len(tokens) == 0 {
		return res
	}

	seenKnown := make(map[string]bool)
	seenUnknown := make(map[string]bool)
	for _, tok := range tokens {
		entry, ok := l.words[tok]
		if !ok {
			if !seenUnknown[tok] {
				seenUnknown[tok] = true
				res.Unknown = append(res.Unknown, tok)
			}
			continue
		}
		l.accumulate(res.Vector, entry)
		if !seenKnown[tok] {
			seenKnown[tok] = true
			res.Known = append(res.Known, tok)
		}
	}

	if norm := res.Vector.Norm(); norm > 0 {
		for i := range res.Vector {
			res.Vector[i] /= norm
		}
	}

	if idx, maxVal := res.Vector.ArgMax(); idx >= 0 && maxVal > l.cfg.ActivationThreshold {
		res.Dominant = l.axes[idx]
	}

	if reinforce && res.HasDominant() {
		for _, w := range res.Known {
			l.ReinforceWord(w, res.Dominant)
		}
	}
	return res
}

// #endregion analyze

// #region reinforce
// ReinforceWord adds the reinforcement step to an existing word's weight on axis.
// Unknown words and axes are left alone and report false.
func (l *Lexicon) ReinforceWord(word, axis string) bool {
	if !l.HasAxis(axis) {
		return false
	}
	entry, ok := l.words[Normalize(word)]
	if !ok {
		return false
	}
	entry.add(axis, l.cfg.ReinforcementStep)
	return true
}

// #endregion reinforce

// #region learn-context
// LearnFromContext gives unknown words a share of every axis active in the
// context vector, scaled by that axis' component and by confidence. Nothing is
// learned when confidence is below the learning threshold. Seed words are
// skipped, and a word only counts as learned when an axis was added to it.
func (l *Lexicon) LearnFromContext(words []string, context Vector, confidence float64) []LearnedWord {
	if math.IsNaN(confidence) || confidence < l.cfg.LearningThreshold {
		return nil
	}

	var learned []LearnedWord
	seen := make(map[string]bool, len(words))
	for _, raw := range words {
		w := Normalize(raw)
		if w == "" || seen[w] || utf8.RuneCountInString(w) < l.cfg.MinWordLength {
			continue
		}
		seen[w] = true
		if _, isSeed := l.seed[w]; isSeed {
			continue
		}

		entry, existed := l.words[w]
		if !existed {
			entry = make(Weights)
		}
		added := false
		for i, axis := range l.axes {
			if i >= len(context) {
				break
			}
			component := context[i]
			if component > l.cfg.ActivationThreshold {
				entry.add(axis, l.cfg.LearnedWeightScale*component*confidence)
				added = true
			}
		}
		if !added || len(entry) == 0 {
			continue
		}
		if !existed {
			l.words[w] = entry
		}
		l.totalLearned++
		learned = append(learned, LearnedWord{Word: w, Weights: entry.clone()})
	}

	if len(learned) > 0 {
		l.lastLearned = learned
		l.logger.Debug("learned from context",
			zap.Int("words", len(learned)),
			zap.Float64("confidence", confidence))
	}
	return learned
}

// #endregion learn-context

// #region learn-correction
// LearnFromCorrection forces knowledge about a word. With override set (one
// component per axis) every positive component overwrites the stored weight;
// otherwise strength is added to axis. The entry is created when absent.
func (l *Lexicon) LearnFromCorrection(word, axis string, strength float64, override Vector) error {
	w := Normalize(word)
	if w == "" {
		return ErrEmptyWord
	}
	if override != nil {
		if len(override) != len(l.axes) {
			return fmt.Errorf("override for %q has %d components, want %d: %w",
				w, len(override), len(l.axes), ErrVectorLength)
		}
	} else {
		if !l.HasAxis(axis) {
			return fmt.Errorf("correct %q towards %q: %w", w, axis, ErrUnknownAxis)
		}
		if math.IsNaN(strength) || math.IsInf(strength, 0) || strength < 0 {
			return fmt.Errorf("correct %q with %v: %w", w, strength, ErrInvalidStrength)
		}
	}

	entry, ok := l.words[w]
	if !ok {
		entry = make(Weights)
		l.words[w] = entry
	}
	if override != nil {
		for i, v := range override {
			if v > 0 {
				entry.set(l.axes[i], v)
			}
		}
	} else {
		entry.add(axis, strength)
	}
	l.totalLearned++
	return nil
}

// #endregion learn-correction

// #region decay
// DecayUnused multiplies every learned weight by the decay rate, drops weights
// under the floor and removes words left without weights. Seed words are exempt.
// It returns the number of removed words.
func (l *Lexicon) DecayUnused() int {
	removed := 0
	for w, entry := range l.words {
		if _, isSeed := l.seed[w]; isSeed {
			continue
		}
		for axis, v := range entry {
			decayed := v * l.cfg.DecayRate
			if decayed < l.cfg.DecayFloor {
				delete(entry, axis)
				continue
			}
			entry[axis] = decayed
		}
		if len(entry) == 0 {
			delete(l.words, w)
			removed++
		}
	}
	if removed > 0 {
		l.logger.Debug("decay removed words", zap.Int("removed", removed))
	}
	return removed
}

// #endregion decay

// #region stats
// Stats summarises the vocabulary.
func (l *Lexicon) Stats() Stats {
	st := Stats{
		Total:        len(l.words),
		Seed:         len(l.seed),
		PerSector:    make(map[string]int, len(l.axes)),
		TotalLearned: l.totalLearned,
	}
	st.Learned = st.Total - st.Seed
	if st.Learned < 0 {
		st.Learned = 0
	}
	for _, a := range l.axes {
		st.PerSector[a] = 0
	}
	for _, entry := range l.words {
		for axis, v := range entry {
			if _, ok := l.axisIndex[axis]; ok && v >= l.cfg.ActivationThreshold {
				st.PerSector[axis]++
			}
		}
	}
	for _, lw := range l.lastLearned {
		st.LastLearned = append(st.LastLearned, LearnedWord{Word: lw.Word, Weights: lw.Weights.clone()})
	}
	return st
}

// #endregion stats

// #region redundancy
// Redundant returns pairs of learned words whose vectors have a cosine
// similarity of at least threshold, most similar first.
func (l *Lexicon) Redundant(threshold float64) []SimilarPair {
	words := l.LearnedWords()
	vecs := make([]Vector, len(words))
	for i, w := range words {
		vecs[i] = l.WordVector(w)
	}

	var pairs []SimilarPair
	for i := 0; i < len(words); i++ {
		for j := i + 1; j < len(words); j++ {
			sim := cosineSimilarity(vecs[i], vecs[j])
			if sim >= threshold {
				pairs = append(pairs, SimilarPair{A: words[i], B: words[j], Similarity: sim})
			}
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Similarity > pairs[j].Similarity
	})
	return pairs
}

// cosineSimilarity returns 0 for mismatched or zero vectors.
func cosineSimilarity(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	denom := a.Norm() * b.Norm()
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// #endregion redundancy
