// Package config loads companion profiles from YAML and watches them for
// trigger changes.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Maciej615/EriAmo-sub001/internal/gate"
	"github.com/Maciej615/EriAmo-sub001/internal/kurz"
	"github.com/Maciej615/EriAmo-sub001/internal/lexicon"
	"github.com/Maciej615/EriAmo-sub001/internal/session"
)

// #region load
// Load reads a profile file. A missing file yields DefaultProfile. The result is
// validated but environment overrides are not applied.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultProfile(), nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML profile. Policy sections and paths start from the base
// profile, so a file only lists what it changes. A file without axes inherits
// the base vocabulary; a file with axes supplies its own seeds, triggers and
// axioms.
func Parse(data []byte) (Profile, error) {
	var head struct {
		Base string `yaml:"base"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	base, err := Builtin(head.Base)
	if err != nil {
		return Profile{}, err
	}

	p := Profile{
		Name:    base.Name,
		Lexicon: base.Lexicon,
		Scanner: base.Scanner,
		Session: base.Session,
		Paths:   base.Paths,
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	if len(p.Axes) == 0 {
		p.Axes = base.Axes
		if p.Seeds == nil {
			p.Seeds = base.Seeds
		}
		if p.Triggers == nil {
			p.Triggers = base.Triggers
		}
		if p.Axioms == nil {
			p.Axioms = base.Axioms
		}
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("validate profile: %w", err)
	}
	return p, nil
}

// Builtin returns a built-in profile by name; "" means basic.
func Builtin(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BaseBasic:
		return DefaultProfile(), nil
	case BaseExtended:
		return ExtendedProfile(), nil
	default:
		return Profile{}, fmt.Errorf("base %q: %w", name, ErrUnknownBase)
	}
}

// Marshal encodes the profile as YAML.
func (p Profile) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	return data, nil
}

// #endregion load

// #region env
// ApplyEnv overrides storage paths from COMPANION_LEXICON, COMPANION_DB and
// COMPANION_MEMORY_LOG.
func (p *Profile) ApplyEnv() {
	p.Paths.Lexicon = envOr("COMPANION_LEXICON", p.Paths.Lexicon)
	p.Paths.DB = envOr("COMPANION_DB", p.Paths.DB)
	p.Paths.MemoryLog = envOr("COMPANION_MEMORY_LOG", p.Paths.MemoryLog)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion env

// #region validate
// Validate checks the axis set, that every table only names known axes and
// that policy values are in range.
func (p Profile) Validate() error {
	if len(p.Axes) == 0 {
		return ErrNoAxes
	}
	known := make(map[string]bool, len(p.Axes))
	for _, a := range p.Axes {
		if strings.TrimSpace(a) == "" {
			return fmt.Errorf("blank axis name: %w", ErrUnknownAxis)
		}
		if known[a] {
			return fmt.Errorf("axis %q: %w", a, ErrDuplicateAxis)
		}
		known[a] = true
	}
	for axis := range p.Seeds {
		if !known[axis] {
			return fmt.Errorf("seeds for %q: %w", axis, ErrUnknownAxis)
		}
	}
	for axis := range p.Triggers {
		if !known[axis] {
			return fmt.Errorf("triggers for %q: %w", axis, ErrUnknownAxis)
		}
	}
	for i, ax := range p.Axioms {
		if !known[ax.Axis] {
			return fmt.Errorf("axiom %d (%q): axis %q: %w", i, ax.Word, ax.Axis, ErrUnknownAxis)
		}
		if lexicon.Normalize(ax.Word) == "" {
			return fmt.Errorf("axiom %d: empty word: %w", i, ErrOutOfRange)
		}
		if err := unit("axiom strength", ax.Strength); err != nil {
			return fmt.Errorf("axiom %d (%q): %w", i, ax.Word, err)
		}
	}

	l := p.Lexicon
	if l.MinWordLength < 1 {
		return fmt.Errorf("min_word_length %d: %w", l.MinWordLength, ErrOutOfRange)
	}
	for _, c := range []struct {
		name string
		v    float64
	}{
		{"activation_threshold", l.ActivationThreshold},
		{"learning_threshold", l.LearningThreshold},
		{"reinforcement_step", l.ReinforcementStep},
		{"learned_weight_scale", l.LearnedWeightScale},
		{"decay_floor", l.DecayFloor},
		{"min_confidence", p.Session.MinConfidence},
		{"agreement_boost", p.Session.AgreementBoost},
	} {
		if err := unit(c.name, c.v); err != nil {
			return err
		}
	}
	if math.IsNaN(l.DecayRate) || l.DecayRate < 0 || l.DecayRate >= 1 {
		return fmt.Errorf("decay_rate %v must be in [0,1): %w", l.DecayRate, ErrOutOfRange)
	}
	if w := p.Scanner.PerMatchWeight; math.IsNaN(w) || w <= 0 || w > 1 {
		return fmt.Errorf("per_match_weight %v must be in (0,1]: %w", w, ErrOutOfRange)
	}
	s := p.Session
	if s.DecayEvery < 0 {
		return fmt.Errorf("decay_every %d: %w", s.DecayEvery, ErrOutOfRange)
	}
	if math.IsNaN(s.MinSimilarity) || s.MinSimilarity < -1 || s.MinSimilarity > 1 {
		return fmt.Errorf("min_similarity %v: %w", s.MinSimilarity, ErrOutOfRange)
	}
	if math.IsNaN(s.ConflictIntensity) || s.ConflictIntensity < 0 {
		return fmt.Errorf("conflict_intensity %v: %w", s.ConflictIntensity, ErrOutOfRange)
	}
	return nil
}

func unit(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%s %v must be in [0,1]: %w", name, v, ErrOutOfRange)
	}
	return nil
}

// SameAxes reports whether both profiles declare the same axes in the same order.
func (p Profile) SameAxes(other Profile) bool {
	if len(p.Axes) != len(other.Axes) {
		return false
	}
	for i := range p.Axes {
		if p.Axes[i] != other.Axes[i] {
			return false
		}
	}
	return true
}

// #endregion validate

// #region converters
// LexiconConfig builds the lexicon configuration.
func (p Profile) LexiconConfig() lexicon.Config {
	cfg := lexicon.DefaultConfig()
	cfg.Axes = append([]string(nil), p.Axes...)
	cfg.Seeds = copyTable(p.Seeds)
	cfg.Path = p.Paths.Lexicon
	cfg.MinWordLength = p.Lexicon.MinWordLength
	cfg.ActivationThreshold = p.Lexicon.ActivationThreshold
	cfg.LearningThreshold = p.Lexicon.LearningThreshold
	cfg.ReinforcementStep = p.Lexicon.ReinforcementStep
	cfg.LearnedWeightScale = p.Lexicon.LearnedWeightScale
	cfg.DecayRate = p.Lexicon.DecayRate
	cfg.DecayFloor = p.Lexicon.DecayFloor
	return cfg
}

// ScannerConfig builds the scanner configuration.
func (p Profile) ScannerConfig() kurz.Config {
	return kurz.Config{PerMatchWeight: p.Scanner.PerMatchWeight}
}

// SessionConfig builds the session configuration.
func (p Profile) SessionConfig() session.Config {
	return session.Config{
		Reinforce:     p.Session.Reinforce,
		DecayEvery:    p.Session.DecayEvery,
		MinSimilarity: p.Session.MinSimilarity,
		Gate: gate.GateConfig{
			MinConfidence:     p.Session.MinConfidence,
			AgreementBoost:    p.Session.AgreementBoost,
			ConflictIntensity: p.Session.ConflictIntensity,
		},
	}
}

// TriggerTable returns a copy of the trigger table.
func (p Profile) TriggerTable() map[string][]string {
	return copyTable(p.Triggers)
}

func copyTable(t map[string][]string) map[string][]string {
	out := make(map[string][]string, len(t))
	for k, v := range t {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// #endregion converters
