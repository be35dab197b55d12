package main

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Maciej615/EriAmo-sub001/internal/logging"
	"github.com/Maciej615/EriAmo-sub001/internal/memory"
	"github.com/Maciej615/EriAmo-sub001/internal/replay"
)

var (
	exportOut   string
	exportLimit int
)

// #region replay
var replayCmd = &cobra.Command{
	Use:   "replay <fixture.json>",
	Short: "Replay a recorded conversation and compare decisions",
	Long: `Runs every line of a fixture through a fresh session built from the
fixture's vocabulary. No state is read or written. Exits non-zero when any
line diverges from its expected outcome.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := replay.LoadFixture(args[0])
		if err != nil {
			return err
		}
		profile, err := f.Profile.ToProfile()
		if err != nil {
			return err
		}
		results, stats, err := replay.Replay(cmd.Context(), profile, f.ToInteractions())
		if err != nil {
			return err
		}
		printComparison(results, f.ExpectedResults)

		s := replay.Summarize(results, stats)
		fmt.Printf("\nSummary: %d lines, %d commit, %d reject, %d no_op, %d eval_fail, %d remembered, %d words learned\n",
			s.TotalTurns, s.Commits, s.GateRejects, s.NoOps, s.EvalFailures, s.Remembered, s.LearnedWords)

		if mismatches := f.Check(results); len(mismatches) > 0 {
			for _, m := range mismatches {
				fmt.Fprintln(os.Stderr, m)
			}
			return fmt.Errorf("replay diverged: %d mismatches", len(mismatches))
		}
		return nil
	},
}

func printComparison(results []replay.ReplayResult, expected []replay.FixtureExpectedResult) {
	fmt.Printf("%-12s| %-12s| %-12s| %s\n", "Turn", "Expected", "Replayed", "Match")
	fmt.Printf("%-12s+%-13s+%-13s+%s\n", "------------", "-------------", "-------------", "------")
	for i, r := range results {
		exp := "-"
		if i < len(expected) {
			exp = expected[i].Action
		}
		match := "ok"
		if exp != r.Action {
			match = "DIVERGE"
		}
		fmt.Printf("%-12s| %-12s| %-12s| %s\n", shortID(r.TurnID), exp, r.Action, match)
	}
}

// #endregion replay

// #region export-fixture
var exportFixtureCmd = &cobra.Command{
	Use:   "export-fixture",
	Short: "Write a replay fixture from the learning log",
	Long: `Builds a fixture from the most recent context events in the database,
oldest first, using the current profile's vocabulary. The fixture only
reproduces a session that started from the seed vocabulary.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportOut == "" {
			return fmt.Errorf("--out is required")
		}
		p, err := loadProfile()
		if err != nil {
			return err
		}
		if _, err := os.Stat(p.Paths.DB); err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		store, err := memory.NewStore(p.Paths.DB)
		if err != nil {
			return err
		}
		defer store.Close()

		events, err := logging.ListEvents(store.DB(), exportLimit)
		if err != nil {
			return err
		}
		slices.Reverse(events)

		fixture, err := replay.FromLearningLog(events, replay.FixtureProfile{
			Axes:     p.Axes,
			Seeds:    p.Seeds,
			Triggers: p.Triggers,
		})
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(fixture, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal fixture: %w", err)
		}
		if err := os.WriteFile(exportOut, data, 0o644); err != nil {
			return fmt.Errorf("write fixture: %w", err)
		}
		fmt.Printf("Wrote fixture to %s (%d bytes, %d interactions)\n", exportOut, len(data), len(fixture.Interactions))
		return nil
	},
}

// #endregion export-fixture

func init() {
	exportFixtureCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Fixture file to write")
	exportFixtureCmd.Flags().IntVar(&exportLimit, "limit", 1000, "Read at most N most recent events")
	rootCmd.AddCommand(replayCmd, exportFixtureCmd)
}
