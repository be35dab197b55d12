package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Maciej615/EriAmo-sub001/internal/config"
	"github.com/Maciej615/EriAmo-sub001/internal/lexicon"
	"github.com/Maciej615/EriAmo-sub001/internal/logging"
	"github.com/Maciej615/EriAmo-sub001/internal/memory"
	"github.com/Maciej615/EriAmo-sub001/internal/replay"
)

// setupWorkspace points every global path into a temp dir.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	logger = zap.NewNop()
	ws := t.TempDir()
	profilePath = filepath.Join(ws, "companion.yaml")
	lexiconPath = filepath.Join(ws, "lexicon.json")
	dbPath = filepath.Join(ws, "companion.db")
	t.Setenv("COMPANION_MEMORY_LOG", filepath.Join(ws, "soul.jsonl"))
	t.Cleanup(func() {
		profilePath, lexiconPath, dbPath = "", "", ""
	})
	return ws
}

func TestTeachAppliesAxiomsAndSaves(t *testing.T) {
	ws := setupWorkspace(t)

	if err := teachCmd.RunE(&cobra.Command{}, nil); err != nil {
		t.Fatalf("teach failed: %v", err)
	}

	cfg := config.DefaultProfile().LexiconConfig()
	cfg.Path = lexiconPath
	lex, err := lexicon.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res := lex.Load(); res.Status != lexicon.LoadOK {
		t.Fatalf("expected saved lexicon, got %s (%s)", res.Status, res.Reason)
	}
	w, ok := lex.Entry("friend")
	if !ok || w["love"] <= 0 {
		t.Errorf("expected friend on love after teach, got %v", w)
	}

	if _, err := os.Stat(filepath.Join(ws, "soul.jsonl")); err != nil {
		t.Errorf("corrections were not streamed: %v", err)
	}

	store, err := memory.NewStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	events, err := logging.ListEvents(store.DB(), 100)
	if err != nil {
		t.Fatal(err)
	}
	want := len(config.DefaultProfile().Axioms)
	if len(events) != want {
		t.Errorf("expected %d correction events, got %d", want, len(events))
	}
	for _, ev := range events {
		if ev.Kind != logging.KindCorrection {
			t.Errorf("unexpected event kind %s", ev.Kind)
		}
	}
}

func TestTeachSingleWord(t *testing.T) {
	setupWorkspace(t)

	if err := teachCmd.RunE(&cobra.Command{}, []string{"zebra", "joy", "0.8"}); err != nil {
		t.Fatalf("teach failed: %v", err)
	}
	if err := teachCmd.RunE(&cobra.Command{}, []string{"zebra", "joy", "lots"}); err == nil {
		t.Error("expected an error for a non-numeric strength")
	}
}

func TestTeachArgs(t *testing.T) {
	for _, n := range []int{0, 2, 3} {
		if err := teachCmd.Args(teachCmd, make([]string, n)); err != nil {
			t.Errorf("%d args rejected: %v", n, err)
		}
	}
	for _, n := range []int{1, 4} {
		if err := teachCmd.Args(teachCmd, make([]string, n)); err == nil {
			t.Errorf("%d args accepted", n)
		}
	}
}

func TestDecayAndStats(t *testing.T) {
	setupWorkspace(t)
	if err := teachCmd.RunE(&cobra.Command{}, nil); err != nil {
		t.Fatal(err)
	}

	decayTicks = 0
	if err := decayCmd.RunE(&cobra.Command{}, nil); err == nil {
		t.Error("expected an error for zero ticks")
	}
	decayTicks = 3
	defer func() { decayTicks = 1 }()
	if err := decayCmd.RunE(&cobra.Command{}, nil); err != nil {
		t.Fatalf("decay failed: %v", err)
	}

	statsRedundant = 0.9
	defer func() { statsRedundant = 0 }()
	if err := statsCmd.RunE(&cobra.Command{}, nil); err != nil {
		t.Fatalf("stats failed: %v", err)
	}
}

func TestLogWithoutDatabase(t *testing.T) {
	setupWorkspace(t)
	if err := logCmd.RunE(&cobra.Command{}, nil); err == nil {
		t.Error("expected an error when the database does not exist")
	}
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Error("log must not create the database")
	}
}

func TestProfileBuiltin(t *testing.T) {
	setupWorkspace(t)
	profileBuiltin = "nope"
	defer func() { profileBuiltin = "" }()
	if err := profileCmd.RunE(&cobra.Command{}, nil); err == nil {
		t.Error("expected an error for an unknown built-in profile")
	}
	profileBuiltin = config.BaseExtended
	if err := profileCmd.RunE(&cobra.Command{}, nil); err != nil {
		t.Errorf("profile failed: %v", err)
	}
}

func TestFormatWeights(t *testing.T) {
	got := formatWeights(lexicon.Weights{"sadness": 0.25, "joy": 0.5})
	if got != "joy=0.50 sadness=0.25" {
		t.Errorf("unexpected format %q", got)
	}
	if shortID("0123456789") != "01234567" || shortID("abc") != "abc" {
		t.Error("shortID")
	}
}

func TestReplayFixture(t *testing.T) {
	logger = zap.NewNop()
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	fixture := filepath.Join("..", "..", "internal", "replay", "testdata", "live_session.json")
	if err := replayCmd.RunE(cmd, []string{fixture}); err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	f, err := replay.LoadFixture(fixture)
	if err != nil {
		t.Fatal(err)
	}
	f.ExpectedResults[0].Action = replay.ActionGateReject
	diverged := filepath.Join(t.TempDir(), "diverged.json")
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(diverged, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := replayCmd.RunE(cmd, []string{diverged}); err == nil {
		t.Error("expected a divergence error")
	}
}

func TestExportFixtureRoundTrip(t *testing.T) {
	ws := setupWorkspace(t)
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	a, err := openApp(true)
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range []string{"radość i szczęście na plaży", "zebra", "smutek"} {
		if _, err := a.session.Turn(context.Background(), line); err != nil {
			t.Fatal(err)
		}
	}
	a.Close()

	exportOut = filepath.Join(ws, "fixture.json")
	defer func() { exportOut = "" }()
	if err := exportFixtureCmd.RunE(cmd, nil); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	f, err := replay.LoadFixture(exportOut)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Interactions) != 3 {
		t.Fatalf("expected 3 exported turns, got %d", len(f.Interactions))
	}
	if err := replayCmd.RunE(cmd, []string{exportOut}); err != nil {
		t.Errorf("replaying the export diverged: %v", err)
	}
}

func TestChatLoopPromptsOncePerLine(t *testing.T) {
	setupWorkspace(t)
	a, err := openApp(true)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	lines := make(chan string)
	reloads := make(chan config.Reload)
	go func() {
		reloads <- config.Reload{Triggers: map[string][]string{"joy": {"woohoo"}}}
		lines <- "zebra"
		lines <- ""
		close(lines)
	}()

	var out bytes.Buffer
	if err := a.loop(context.Background(), &out, lines, reloads); err != nil {
		t.Fatalf("loop failed: %v", err)
	}
	if got := strings.Count(out.String(), "> "); got != 3 {
		t.Errorf("expected 3 prompts for 2 lines, got %d:\n%s", got, out.String())
	}
	if !strings.Contains(out.String(), "(scanner triggers reloaded)") {
		t.Error("reload was not reported")
	}
	if got := a.scanner.Triggers("joy"); len(got) != 1 || got[0] != "woohoo" {
		t.Errorf("expected reloaded joy triggers, got %v", got)
	}
}

func TestRunChatReadsCommandInput(t *testing.T) {
	setupWorkspace(t)
	chatNoWatch = true
	defer func() { chatNoWatch = false }()

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetIn(strings.NewReader("radość i szczęście na plaży\n/quit\nnever reached\n"))
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := runChat(cmd, nil); err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if !strings.Contains(out.String(), "Companion ready.") || !strings.Contains(out.String(), "dominant=joy") {
		t.Errorf("unexpected chat output:\n%s", out.String())
	}

	store, err := memory.NewStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	events, err := logging.ListEvents(store.DB(), 100)
	if err != nil {
		t.Fatal(err)
	}
	turns := 0
	for _, ev := range events {
		if ev.Kind == logging.KindContext {
			turns++
		}
	}
	if turns != 1 {
		t.Errorf("expected 1 turn before /quit, got %d", turns)
	}
}
