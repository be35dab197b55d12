// Package session owns one conversation: it runs the turn pipeline over the
// lexicon and scanner and is the single place that mutates them.
//
// A Session is not safe for concurrent use; callers serialise turns.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Maciej615/EriAmo-sub001/internal/gate"
	"github.com/Maciej615/EriAmo-sub001/internal/kurz"
	"github.com/Maciej615/EriAmo-sub001/internal/lexicon"
	"github.com/Maciej615/EriAmo-sub001/internal/logging"
	"github.com/Maciej615/EriAmo-sub001/internal/memory"
	"github.com/Maciej615/EriAmo-sub001/internal/soulio"
)

// Stream record types written by a session.
const (
	RecordMemory     = "memory"
	RecordCorrection = "correction"
)

// #region session-struct
// Session wires the lexicon, the scanner and the optional stores.
type Session struct {
	lex     *lexicon.Lexicon
	scanner *kurz.Scanner
	gate    *gate.Gate
	mem     *memory.Store
	stream  *soulio.Stream
	cfg     Config
	logger  *zap.Logger
	turns   int
}

// Option customises a Session.
type Option func(*Session)

// WithMemory enables response lookup and the learning log.
func WithMemory(store *memory.Store) Option {
	return func(s *Session) { s.mem = store }
}

// WithStream mirrors remembered responses and corrections to a JSONL stream.
func WithStream(stream *soulio.Stream) Option {
	return func(s *Session) { s.stream = stream }
}

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a session over lex and scanner.
func New(lex *lexicon.Lexicon, scanner *kurz.Scanner, cfg Config, opts ...Option) *Session {
	s := &Session{
		lex:     lex,
		scanner: scanner,
		gate:    gate.NewGate(cfg.Gate),
		cfg:     cfg,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lexicon returns the session lexicon.
func (s *Session) Lexicon() *lexicon.Lexicon { return s.lex }

// Scanner returns the session scanner.
func (s *Session) Scanner() *kurz.Scanner { return s.scanner }

// Turns returns how many turns have run.
func (s *Session) Turns() int { return s.turns }

// #endregion session-struct

// #region turn
// Turn analyses one line of user text, lets the gate decide whether to learn
// from it, looks up a resonant stored response and ticks decay on schedule.
func (s *Session) Turn(ctx context.Context, text string) (TurnResult, error) {
	if err := ctx.Err(); err != nil {
		return TurnResult{}, err
	}
	s.turns++
	res := TurnResult{TurnID: uuid.New().String()}

	// 1. Fast path
	var ok bool
	res.ScanAxis, res.ScanIntensity, ok = s.scanner.QuickScan(text)
	if !ok {
		res.ScanAxis, res.ScanIntensity = "", 0
	}
	scanVec := s.scanner.ScanAll(text)

	// 2. Lexicon
	res.Analysis = s.lex.AnalyzeText(text, s.cfg.Reinforce)
	if s.cfg.Reinforce && res.Analysis.HasDominant() && len(res.Analysis.Known) > 0 {
		s.logEvent(logging.LearningEvent{
			TurnID:     res.TurnID,
			Kind:       logging.KindReinforce,
			Words:      res.Analysis.Known,
			Axis:       res.Analysis.Dominant,
			Confidence: res.Analysis.Confidence(),
			Decision:   "commit",
		})
	}

	// 3. Learning gate
	in := gate.Input{
		Text:          text,
		Axes:          s.lex.Axes(),
		Analysis:      res.Analysis,
		ScanAxis:      res.ScanAxis,
		ScanIntensity: res.ScanIntensity,
		ScanVector:    scanVec,
		Candidates:    candidates(res.Analysis.Unknown),
	}
	res.Decision = s.gate.Evaluate(in)
	decision := "reject"
	if res.Decision.Committed() {
		res.Learned = s.lex.LearnFromContext(in.Candidates, res.Decision.Context, res.Decision.Confidence)
		decision = "commit"
		if len(res.Learned) == 0 {
			decision = "no_op"
		}
	}
	s.logEvent(logging.LearningEvent{
		TurnID:      res.TurnID,
		Kind:        logging.KindContext,
		Words:       learnedWords(res.Learned),
		Axis:        res.Decision.Axis,
		Confidence:  res.Decision.Confidence,
		SignalsJSON: turnRecordJSON(in, res.Decision),
		Decision:    decision,
		Reason:      res.Decision.Reason,
	})

	// 4. Memory lookup
	if s.mem != nil {
		query := []float64(res.Analysis.Vector)
		if res.Analysis.Vector.IsZero() {
			query = res.Decision.Context
		}
		match, err := s.nearest(query)
		if err != nil {
			return res, err
		}
		res.Response = match
	}

	// 5. Scheduled decay
	if s.cfg.DecayEvery > 0 && s.turns%s.cfg.DecayEvery == 0 {
		res.DecayRan = true
		res.Decayed = s.decay(res.TurnID)
	}

	s.logger.Debug("turn",
		zap.String("turn_id", res.TurnID),
		zap.String("dominant", res.Analysis.Dominant),
		zap.String("scan_axis", res.ScanAxis),
		zap.String("gate", res.Decision.Action),
		zap.Int("learned", len(res.Learned)))
	return res, nil
}

func (s *Session) nearest(query []float64) (*memory.Match, error) {
	matches, err := s.mem.Nearest(query, 1)
	if err != nil {
		return nil, fmt.Errorf("nearest response: %w", err)
	}
	if len(matches) == 0 || matches[0].Similarity < s.cfg.MinSimilarity {
		return nil, nil
	}
	return &matches[0], nil
}

// #endregion turn

// #region remember
// Remember stores text as a response under its analysed vector. The lexicon is
// not reinforced by remembered text.
func (s *Session) Remember(ctx context.Context, text string) (memory.Response, error) {
	if err := ctx.Err(); err != nil {
		return memory.Response{}, err
	}
	if s.mem == nil {
		return memory.Response{}, ErrNoMemory
	}
	analysis := s.lex.AnalyzeText(text, false)
	rec, err := s.mem.Add(text, analysis.Dominant, analysis.Vector)
	if err != nil {
		return memory.Response{}, fmt.Errorf("remember: %w", err)
	}
	s.appendStream(RecordMemory, memoryRecord{
		ID:        rec.ID,
		Text:      rec.Text,
		Axis:      rec.Axis,
		Vector:    rec.Vector,
		CreatedAt: rec.CreatedAt.Format(time.RFC3339Nano),
	})
	return rec, nil
}

// #endregion remember

// #region teach
// Teach applies an explicit correction: strength is added to word on axis.
func (s *Session) Teach(word, axis string, strength float64) error {
	if err := s.lex.LearnFromCorrection(word, axis, strength, nil); err != nil {
		return fmt.Errorf("teach %q: %w", word, err)
	}
	s.logEvent(logging.LearningEvent{
		TurnID:     "manual",
		Kind:       logging.KindCorrection,
		Words:      []string{lexicon.Normalize(word)},
		Axis:       axis,
		Confidence: strength,
		Decision:   "commit",
		Reason:     "explicit correction",
	})
	s.appendStream(RecordCorrection, correctionRecord{
		Word:     lexicon.Normalize(word),
		Axis:     axis,
		Strength: strength,
	})
	return nil
}

// #endregion teach

// #region decay-save
// Decay runs one decay tick outside the turn schedule.
func (s *Session) Decay() int {
	return s.decay("manual")
}

func (s *Session) decay(turnID string) int {
	removed := s.lex.DecayUnused()
	s.logEvent(logging.LearningEvent{
		TurnID:   turnID,
		Kind:     logging.KindDecay,
		Decision: "commit",
		Reason:   fmt.Sprintf("removed %d words", removed),
	})
	return removed
}

// Save persists the lexicon.
func (s *Session) Save() lexicon.SaveResult {
	return s.lex.Save()
}

// ReplaceTriggers swaps the scanner trigger tables.
func (s *Session) ReplaceTriggers(triggers map[string][]string) {
	s.scanner.ReplaceTriggers(triggers)
	s.logger.Info("scanner triggers reloaded", zap.Int("axes", len(triggers)))
}

// #endregion decay-save

// #region provenance
type memoryRecord struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Axis      string    `json:"axis,omitempty"`
	Vector    []float64 `json:"vector"`
	CreatedAt string    `json:"created_at"`
}

type correctionRecord struct {
	Word     string  `json:"word"`
	Axis     string  `json:"axis"`
	Strength float64 `json:"strength"`
}

// logEvent records provenance. Failures are logged, never returned: the turn
// has already changed the lexicon.
func (s *Session) logEvent(ev logging.LearningEvent) {
	if s.mem == nil {
		return
	}
	if err := logging.LogEvent(s.mem.DB(), ev); err != nil {
		s.logger.Warn("learning log write failed", zap.String("kind", string(ev.Kind)), zap.Error(err))
	}
}

func (s *Session) appendStream(recordType string, v interface{}) {
	if s.stream == nil {
		return
	}
	if err := s.stream.Append(recordType, v); err != nil {
		s.logger.Warn("memory stream append failed", zap.String("type", recordType), zap.Error(err))
	}
}

func learnedWords(learned []lexicon.LearnedWord) []string {
	out := make([]string, len(learned))
	for i, lw := range learned {
		out[i] = lw.Word
	}
	return out
}

func turnRecordJSON(in gate.Input, d gate.GateDecision) string {
	vetoes := make([]string, len(d.VetoSignals))
	for i, v := range d.VetoSignals {
		vetoes[i] = string(v.Type)
	}
	rec := logging.TurnRecord{
		Text:           in.Text,
		Vector:         in.Analysis.Vector,
		Dominant:       in.Analysis.Dominant,
		ScanAxis:       in.ScanAxis,
		ScanIntensity:  in.ScanIntensity,
		Candidates:     in.Candidates,
		GateAction:     d.Action,
		GateSource:     d.Source,
		GateConfidence: d.Confidence,
		GateVetoes:     vetoes,
		GateReason:     d.Reason,
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return ""
	}
	return string(b)
}

// #endregion provenance
