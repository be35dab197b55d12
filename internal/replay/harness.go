// Package replay runs recorded conversations through a fresh, non-persistent
// session so gate and learning behaviour can be checked for drift.
package replay

import (
	"context"
	"fmt"

	"github.com/Maciej615/EriAmo-sub001/internal/config"
	"github.com/Maciej615/EriAmo-sub001/internal/eval"
	"github.com/Maciej615/EriAmo-sub001/internal/gate"
	"github.com/Maciej615/EriAmo-sub001/internal/kurz"
	"github.com/Maciej615/EriAmo-sub001/internal/lexicon"
	"github.com/Maciej615/EriAmo-sub001/internal/memory"
	"github.com/Maciej615/EriAmo-sub001/internal/session"
)

// Replay actions.
const (
	ActionCommit     = "commit"
	ActionGateReject = "gate_reject"
	ActionNoOp       = "no_op"
	ActionEvalFail   = "eval_fail"
	ActionRemembered = "remembered"
)

// #region types
// Interaction is a single recorded line. Remember lines are stored as
// responses instead of being run as turns.
type Interaction struct {
	TurnID   string
	Text     string
	Remember bool
}

// ReplayResult captures the outcome of one interaction.
type ReplayResult struct {
	TurnID   string
	Action   string
	Reason   string
	Dominant string
	ScanAxis string
	Learned  []string
	Response string // text of the resonant response, "" when none

	// Gate stage (nil for remembered lines)
	GateDecision *gate.GateDecision

	// Eval stage (nil for remembered lines)
	EvalResult *eval.EvalResult
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalTurns   int
	Commits      int
	GateRejects  int
	NoOps        int
	EvalFailures int
	Remembered   int
	LearnedWords int
	FinalStats   lexicon.Stats
}

// #endregion types

// #region replay
// Replay builds a session from profile with no lexicon file and an in-memory
// store, then runs every interaction in order: turn, gate, eval. Lexicon stats
// after the last interaction are returned alongside the per-line results.
func Replay(ctx context.Context, profile config.Profile, interactions []Interaction) ([]ReplayResult, lexicon.Stats, error) {
	return ReplayWithEval(ctx, profile, interactions, eval.DefaultEvalConfig())
}

// ReplayWithEval is Replay with explicit eval thresholds.
func ReplayWithEval(ctx context.Context, profile config.Profile, interactions []Interaction, evalConfig eval.EvalConfig) ([]ReplayResult, lexicon.Stats, error) {
	lexCfg := profile.LexiconConfig()
	lexCfg.Path = ""
	lex, err := lexicon.New(lexCfg)
	if err != nil {
		return nil, lexicon.Stats{}, fmt.Errorf("build lexicon: %w", err)
	}
	scanner := kurz.New(profile.Axes, profile.TriggerTable(), profile.ScannerConfig())

	store, err := memory.NewStore(":memory:")
	if err != nil {
		return nil, lexicon.Stats{}, fmt.Errorf("open replay store: %w", err)
	}
	defer store.Close()

	sess := session.New(lex, scanner, profile.SessionConfig(), session.WithMemory(store))
	evalInst := eval.NewEvalHarness(evalConfig, profile.Seeds)
	results := make([]ReplayResult, 0, len(interactions))

	for _, inter := range interactions {
		if inter.Remember {
			rec, err := sess.Remember(ctx, inter.Text)
			if err != nil {
				return results, lex.Stats(), fmt.Errorf("turn %s: %w", inter.TurnID, err)
			}
			results = append(results, ReplayResult{
				TurnID:   inter.TurnID,
				Action:   ActionRemembered,
				Dominant: rec.Axis,
			})
			continue
		}

		res, err := sess.Turn(ctx, inter.Text)
		if err != nil {
			return results, lex.Stats(), fmt.Errorf("turn %s: %w", inter.TurnID, err)
		}
		decision := res.Decision
		r := ReplayResult{
			TurnID:       inter.TurnID,
			Reason:       decision.Reason,
			Dominant:     res.Analysis.Dominant,
			ScanAxis:     res.ScanAxis,
			GateDecision: &decision,
		}
		for _, lw := range res.Learned {
			r.Learned = append(r.Learned, lw.Word)
		}
		if res.Response != nil {
			r.Response = res.Response.Text
		}
		evalResult := evalInst.Run(lex, res.Analysis)
		r.EvalResult = &evalResult
		switch {
		case !evalResult.Passed:
			r.Action = ActionEvalFail
			r.Reason = evalResult.Reason
		case !decision.Committed():
			r.Action = ActionGateReject
		case len(r.Learned) == 0:
			r.Action = ActionNoOp
		default:
			r.Action = ActionCommit
		}
		results = append(results, r)
	}

	return results, lex.Stats(), nil
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult, final lexicon.Stats) ReplaySummary {
	s := ReplaySummary{
		TotalTurns: len(results),
		FinalStats: final,
	}
	for _, r := range results {
		switch r.Action {
		case ActionCommit:
			s.Commits++
		case ActionGateReject:
			s.GateRejects++
		case ActionNoOp:
			s.NoOps++
		case ActionEvalFail:
			s.EvalFailures++
		case ActionRemembered:
			s.Remembered++
		}
		s.LearnedWords += len(r.Learned)
	}
	return s
}

// #endregion replay
