package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/Maciej615/EriAmo-sub001/internal/config"
	"github.com/Maciej615/EriAmo-sub001/internal/logging"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	Profile         FixtureProfile          `json:"profile"`
	Interactions    []FixtureInteraction    `json:"interactions"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
}

// FixtureProfile selects the vocabulary a replay starts from. With axes set,
// seeds and triggers come only from the fixture.
type FixtureProfile struct {
	Base     string              `json:"base,omitempty"`
	Axes     []string            `json:"axes,omitempty"`
	Seeds    map[string][]string `json:"seeds,omitempty"`
	Triggers map[string][]string `json:"triggers,omitempty"`
}

// FixtureInteraction mirrors Interaction with JSON tags.
type FixtureInteraction struct {
	TurnID   string `json:"turn_id"`
	Text     string `json:"text"`
	Remember bool   `json:"remember,omitempty"`
}

// FixtureExpectedResult captures the expected outcome per line. Learned and
// Response are only checked when present.
type FixtureExpectedResult struct {
	TurnID   string   `json:"turn_id"`
	Action   string   `json:"action"`
	Learned  []string `json:"learned,omitempty"`
	Response string   `json:"response,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToProfile resolves the fixture vocabulary into a validated profile.
func (fp FixtureProfile) ToProfile() (config.Profile, error) {
	p, err := config.Builtin(fp.Base)
	if err != nil {
		return config.Profile{}, err
	}
	if len(fp.Axes) > 0 {
		p.Axes = append([]string(nil), fp.Axes...)
		p.Seeds = fp.Seeds
		p.Triggers = fp.Triggers
		p.Axioms = nil
	}
	if err := p.Validate(); err != nil {
		return config.Profile{}, fmt.Errorf("fixture profile: %w", err)
	}
	return p, nil
}

// ToInteractions converts the recorded lines to domain interactions.
func (f *Fixture) ToInteractions() []Interaction {
	out := make([]Interaction, len(f.Interactions))
	for i, fi := range f.Interactions {
		out[i] = Interaction{TurnID: fi.TurnID, Text: fi.Text, Remember: fi.Remember}
	}
	return out
}

// #endregion fixture-loader

// #region check

// Check compares results against the expected outcomes and returns one line
// per mismatch.
func (f *Fixture) Check(results []ReplayResult) []string {
	var mismatches []string
	if len(results) != len(f.ExpectedResults) {
		mismatches = append(mismatches,
			fmt.Sprintf("expected %d results, got %d", len(f.ExpectedResults), len(results)))
	}
	n := min(len(results), len(f.ExpectedResults))
	for i := 0; i < n; i++ {
		want, got := f.ExpectedResults[i], results[i]
		if got.TurnID != want.TurnID {
			mismatches = append(mismatches,
				fmt.Sprintf("turn %d: expected turn_id=%s, got %s", i, want.TurnID, got.TurnID))
		}
		if got.Action != want.Action {
			mismatches = append(mismatches,
				fmt.Sprintf("turn %d (%s): expected action=%s, got action=%s (reason: %s)",
					i, want.TurnID, want.Action, got.Action, got.Reason))
		}
		if want.Learned != nil && !slices.Equal(got.Learned, want.Learned) {
			mismatches = append(mismatches,
				fmt.Sprintf("turn %d (%s): expected learned=[%s], got [%s]",
					i, want.TurnID, strings.Join(want.Learned, ","), strings.Join(got.Learned, ",")))
		}
		if want.Response != "" && got.Response != want.Response {
			mismatches = append(mismatches,
				fmt.Sprintf("turn %d (%s): expected response %q, got %q",
					i, want.TurnID, want.Response, got.Response))
		}
	}
	return mismatches
}

// #endregion check

// #region export

// FromLearningLog rebuilds a fixture from context events, oldest first. Each
// event's turn record supplies the text and the recorded decision becomes the
// expected action. Remembered responses are not part of the log, so exported
// fixtures carry turns only.
func FromLearningLog(events []logging.LearningEvent, profile FixtureProfile) (*Fixture, error) {
	f := &Fixture{
		Description: "exported from learning log",
		Profile:     profile,
	}
	for _, ev := range events {
		if ev.Kind != logging.KindContext {
			continue
		}
		var rec logging.TurnRecord
		if err := json.Unmarshal([]byte(ev.SignalsJSON), &rec); err != nil {
			return nil, fmt.Errorf("decode turn record of event %d: %w", ev.ID, err)
		}
		exp := FixtureExpectedResult{TurnID: ev.TurnID}
		switch ev.Decision {
		case "commit":
			exp.Action = ActionCommit
			exp.Learned = ev.Words
		case "no_op":
			exp.Action = ActionNoOp
		default:
			exp.Action = ActionGateReject
		}
		f.Interactions = append(f.Interactions, FixtureInteraction{TurnID: ev.TurnID, Text: rec.Text})
		f.ExpectedResults = append(f.ExpectedResults, exp)
	}
	return f, nil
}

// #endregion export
