package replay

import (
	"context"
	"errors"
	"testing"

	"github.com/Maciej615/EriAmo-sub001/internal/config"
	"github.com/Maciej615/EriAmo-sub001/internal/eval"
	"github.com/Maciej615/EriAmo-sub001/internal/lexicon"
)

// helper: small three-axis profile on the basic policies.
func testProfile(t *testing.T) config.Profile {
	t.Helper()
	p, err := FixtureProfile{
		Axes:     []string{"joy", "sadness", "fear"},
		Seeds:    map[string][]string{"joy": {"happy", "glad"}, "sadness": {"sad"}},
		Triggers: map[string][]string{"fear": {"eek"}},
	}.ToProfile()
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// 1. Commit path: a dominant axis plus an unknown word teaches that word.
func TestReplay_CommitPath(t *testing.T) {
	results, stats, err := Replay(context.Background(), testProfile(t), []Interaction{
		{TurnID: "t1", Text: "happy picnic"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Action != ActionCommit {
		t.Errorf("expected commit, got %s (%s)", r.Action, r.Reason)
	}
	if r.Dominant != "joy" {
		t.Errorf("expected dominant joy, got %q", r.Dominant)
	}
	if r.GateDecision == nil || !r.GateDecision.Committed() {
		t.Error("expected a committed gate decision")
	}
	if len(r.Learned) != 1 || r.Learned[0] != "picnic" {
		t.Errorf("expected [picnic], got %v", r.Learned)
	}
	if stats.Learned != 1 {
		t.Errorf("expected 1 learned word, got %d", stats.Learned)
	}
}

// 2. Gate rejection: nothing unknown to learn.
func TestReplay_GateRejection(t *testing.T) {
	results, _, err := Replay(context.Background(), testProfile(t), []Interaction{
		{TurnID: "t1", Text: "happy glad"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Action != ActionGateReject {
		t.Errorf("expected gate_reject, got %s", results[0].Action)
	}
	if !results[0].GateDecision.Vetoed {
		t.Error("expected a hard veto")
	}
}

// 3. Remembered lines are stored and later resonate.
func TestReplay_RememberAndRespond(t *testing.T) {
	results, stats, err := Replay(context.Background(), testProfile(t), []Interaction{
		{TurnID: "r1", Text: "glad to hear it", Remember: true},
		{TurnID: "t1", Text: "happy"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Action != ActionRemembered || results[0].Dominant != "joy" {
		t.Errorf("unexpected remember result %+v", results[0])
	}
	if results[0].GateDecision != nil {
		t.Error("remembered lines do not pass the gate")
	}
	if results[1].Response != "glad to hear it" {
		t.Errorf("expected remembered response, got %q", results[1].Response)
	}
	if stats.TotalLearned != 0 {
		t.Errorf("remembering must not teach the lexicon, learned %d", stats.TotalLearned)
	}
}

// 4. Replays are independent: nothing learned in one run leaks into the next.
func TestReplay_FreshSessionEachRun(t *testing.T) {
	p := testProfile(t)
	in := []Interaction{{TurnID: "t1", Text: "happy picnic"}}
	for i := 0; i < 2; i++ {
		results, _, err := Replay(context.Background(), p, in)
		if err != nil {
			t.Fatal(err)
		}
		if results[0].Action != ActionCommit {
			t.Errorf("run %d: expected commit, got %s", i, results[0].Action)
		}
	}
}

// 5. A cancelled context stops the replay with the results so far.
func TestReplay_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, _, err := Replay(ctx, testProfile(t), []Interaction{{TurnID: "t1", Text: "happy"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

// 6. Invalid profiles fail before any turn runs.
func TestReplay_InvalidProfile(t *testing.T) {
	if _, _, err := Replay(context.Background(), config.Profile{}, nil); err == nil {
		t.Error("expected error for a profile without axes")
	}
}

// 7. Eval failures override the gate outcome and keep the eval reason.
func TestReplay_EvalFailure(t *testing.T) {
	cfg := eval.DefaultEvalConfig()
	cfg.MaxLearnedWords = 1
	results, _, err := ReplayWithEval(context.Background(), testProfile(t), []Interaction{
		{TurnID: "t1", Text: "happy picnic"},
		{TurnID: "t2", Text: "glad basket"},
	}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Action != ActionCommit {
		t.Errorf("t1: expected commit, got %s (%s)", results[0].Action, results[0].Reason)
	}
	if results[1].Action != ActionEvalFail {
		t.Fatalf("t2: expected eval_fail, got %s", results[1].Action)
	}
	if results[1].EvalResult == nil || results[1].EvalResult.Passed {
		t.Error("t2: expected a failed eval result")
	}
	if results[1].Reason != results[1].EvalResult.Reason {
		t.Errorf("t2: reason %q should come from eval", results[1].Reason)
	}
	if len(results[1].Learned) != 1 {
		t.Errorf("t2: learning still happened, expected 1 word, got %v", results[1].Learned)
	}
}

func TestSummarize(t *testing.T) {
	results := []ReplayResult{
		{Action: ActionCommit, Learned: []string{"a", "b"}},
		{Action: ActionCommit, Learned: []string{"c"}},
		{Action: ActionGateReject},
		{Action: ActionNoOp},
		{Action: ActionEvalFail},
		{Action: ActionRemembered},
	}
	s := Summarize(results, lexicon.Stats{Learned: 3})
	if s.TotalTurns != 6 || s.Commits != 2 || s.GateRejects != 1 || s.NoOps != 1 ||
		s.EvalFailures != 1 || s.Remembered != 1 {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.LearnedWords != 3 || s.FinalStats.Learned != 3 {
		t.Errorf("expected 3 learned words, got %d / %d", s.LearnedWords, s.FinalStats.Learned)
	}
}
