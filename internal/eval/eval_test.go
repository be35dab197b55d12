package eval

import (
	"testing"

	"github.com/Maciej615/EriAmo-sub001/internal/lexicon"
)

var testSeeds = map[string][]string{
	"joy":     {"happy", "radość"},
	"sadness": {"sad"},
}

func makeLexicon(t *testing.T) *lexicon.Lexicon {
	t.Helper()
	cfg := lexicon.DefaultConfig()
	cfg.Axes = []string{"joy", "sadness"}
	cfg.Seeds = testSeeds
	lex, err := lexicon.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return lex
}

func findMetric(r EvalResult, name string) (EvalMetric, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return EvalMetric{}, false
}

func TestEvalPassesOnSeedLexicon(t *testing.T) {
	lex := makeLexicon(t)
	h := NewEvalHarness(DefaultEvalConfig(), testSeeds)

	result := h.Run(lex, lex.AnalyzeText("happy radosc", false))

	if !result.Passed {
		t.Fatalf("expected pass on seed lexicon, got fail: %s", result.Reason)
	}
	if len(result.Metrics) != 4 {
		t.Fatalf("expected 4 metrics, got %d", len(result.Metrics))
	}
}

func TestEvalPassesAfterLearning(t *testing.T) {
	lex := makeLexicon(t)
	h := NewEvalHarness(DefaultEvalConfig(), testSeeds)

	an := lex.AnalyzeText("happy picnic", true)
	lex.LearnFromContext([]string{"picnic"}, an.Vector, 1)
	if err := lex.LearnFromCorrection("happy", "sadness", 0.9, nil); err != nil {
		t.Fatal(err)
	}

	result := h.Run(lex, an)
	if !result.Passed {
		t.Fatalf("expected pass, got %s", result.Reason)
	}
	m, _ := findMetric(result, "learned_words")
	if m.Value != 1 {
		t.Errorf("expected 1 learned word, got %v", m.Value)
	}
}

func TestEvalFailsOnAnalysisNorm(t *testing.T) {
	lex := makeLexicon(t)
	h := NewEvalHarness(DefaultEvalConfig(), testSeeds)

	result := h.Run(lex, lexicon.Analysis{Vector: lexicon.Vector{1, 1}})

	if result.Passed {
		t.Fatal("expected fail on a vector longer than 1")
	}
	if m, _ := findMetric(result, "analysis_norm"); m.Pass {
		t.Error("analysis_norm should fail")
	}
}

func TestEvalFailsOnMissingSeed(t *testing.T) {
	lex := makeLexicon(t)
	seeds := map[string][]string{"joy": {"happy", "ecstatic"}}
	h := NewEvalHarness(DefaultEvalConfig(), seeds)

	result := h.Run(lex, lexicon.Analysis{})

	if result.Passed {
		t.Fatal("expected fail when a seed word is absent")
	}
	m, _ := findMetric(result, "seeds_degraded")
	if m.Value != 1 {
		t.Errorf("expected 1 degraded seed, got %v", m.Value)
	}
}

func TestEvalFailsOnVocabularyGrowth(t *testing.T) {
	lex := makeLexicon(t)
	lex.LearnFromContext([]string{"picnic", "sunshine"}, lexicon.Vector{1, 0}, 1)

	config := DefaultEvalConfig()
	config.MaxLearnedWords = 1
	h := NewEvalHarness(config, testSeeds)

	result := h.Run(lex, lexicon.Analysis{})
	if result.Passed {
		t.Fatal("expected fail on vocabulary growth")
	}
	if result.Reason != "eval failed: 2 learned words exceed 1" {
		t.Errorf("unexpected reason %q", result.Reason)
	}
}

func TestEvalReportsMultipleFailures(t *testing.T) {
	lex := makeLexicon(t)
	lex.LearnFromContext([]string{"picnic", "sunshine"}, lexicon.Vector{1, 0}, 1)

	config := DefaultEvalConfig()
	config.MaxLearnedWords = 1
	h := NewEvalHarness(config, map[string][]string{"joy": {"missing"}})

	result := h.Run(lex, lexicon.Analysis{Vector: lexicon.Vector{2, 0}})
	if result.Passed {
		t.Fatal("expected fail")
	}
	want := "eval failed: 3 checks: analysis norm 2.000000 exceeds 1"
	if result.Reason != want {
		t.Errorf("reason = %q, want %q", result.Reason, want)
	}
}
