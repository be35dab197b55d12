package config

import "errors"

var (
	ErrNoAxes        = errors.New("profile defines no axes")
	ErrDuplicateAxis = errors.New("duplicate axis")
	ErrUnknownAxis   = errors.New("unknown axis")
	ErrOutOfRange    = errors.New("value out of range")
	ErrUnknownBase   = errors.New("unknown base profile")
	ErrAxesChanged   = errors.New("axes cannot change at runtime")
)

// Built-in profile names accepted by the "base" key.
const (
	BaseBasic    = "basic"
	BaseExtended = "extended"
)

// #region profile
// Profile is the full companion configuration: the axis set with its seed and
// trigger vocabularies, the policy of every component and the storage paths.
type Profile struct {
	Name string `yaml:"name"`
	Base string `yaml:"base,omitempty"` // built-in profile the file starts from

	Axes     []string            `yaml:"axes"`
	Seeds    map[string][]string `yaml:"seeds"`    // axis -> seed words
	Triggers map[string][]string `yaml:"triggers"` // axis -> scanner triggers
	Axioms   []Axiom             `yaml:"axioms"`   // corrections applied by "teach"

	Lexicon LexiconPolicy `yaml:"lexicon"`
	Scanner ScannerPolicy `yaml:"scanner"`
	Session SessionPolicy `yaml:"session"`
	Paths   Paths         `yaml:"paths"`
}

// Axiom is a word association taught explicitly.
type Axiom struct {
	Word     string  `yaml:"word"`
	Axis     string  `yaml:"axis"`
	Strength float64 `yaml:"strength"`
}

// LexiconPolicy mirrors the tunables of lexicon.Config.
type LexiconPolicy struct {
	MinWordLength       int     `yaml:"min_word_length"`
	ActivationThreshold float64 `yaml:"activation_threshold"`
	LearningThreshold   float64 `yaml:"learning_threshold"`
	ReinforcementStep   float64 `yaml:"reinforcement_step"`
	LearnedWeightScale  float64 `yaml:"learned_weight_scale"`
	DecayRate           float64 `yaml:"decay_rate"`
	DecayFloor          float64 `yaml:"decay_floor"`
}

// ScannerPolicy mirrors kurz.Config.
type ScannerPolicy struct {
	PerMatchWeight float64 `yaml:"per_match_weight"`
}

// SessionPolicy mirrors session.Config and the learning gate.
type SessionPolicy struct {
	Reinforce         bool    `yaml:"reinforce"`
	DecayEvery        int     `yaml:"decay_every"`
	MinSimilarity     float64 `yaml:"min_similarity"`
	MinConfidence     float64 `yaml:"min_confidence"`
	AgreementBoost    float64 `yaml:"agreement_boost"`
	ConflictIntensity float64 `yaml:"conflict_intensity"`
}

// Paths locates persisted state.
type Paths struct {
	Lexicon   string `yaml:"lexicon"`
	DB        string `yaml:"db"`
	MemoryLog string `yaml:"memory_log"`
}

// #endregion profile
