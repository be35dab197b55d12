package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Maciej615/EriAmo-sub001/internal/config"
	"github.com/Maciej615/EriAmo-sub001/internal/lexicon"
	"github.com/Maciej615/EriAmo-sub001/internal/logging"
	"github.com/Maciej615/EriAmo-sub001/internal/memory"
)

var (
	statsRedundant float64
	decayTicks     int
	logLimit       int
	logAsJSON      bool
	profileBuiltin string
)

// #region stats
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the lexicon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		printStats(cmd.OutOrStdout(), a.lex.Stats(), a.lex.Axes())
		if statsRedundant > 0 {
			pairs := a.lex.Redundant(statsRedundant)
			fmt.Printf("\nRedundant pairs (similarity >= %.2f): %d\n", statsRedundant, len(pairs))
			for _, p := range pairs {
				fmt.Printf("  %-20s %-20s %.4f\n", p.A, p.B, p.Similarity)
			}
		}
		return nil
	},
}

func printStats(out io.Writer, st lexicon.Stats, axes []string) {
	fmt.Fprintf(out, "Words: %d (seed %d, learned %d) | learned since start: %d\n",
		st.Total, st.Seed, st.Learned, st.TotalLearned)
	fmt.Fprintln(out, "Per axis:")
	for _, axis := range axes {
		fmt.Fprintf(out, "  %-12s %5d\n", axis, st.PerSector[axis])
	}
	if len(st.LastLearned) > 0 {
		fmt.Fprintln(out, "Last learned:")
		for _, lw := range st.LastLearned {
			fmt.Fprintf(out, "  %-20s %s\n", lw.Word, formatWeights(lw.Weights))
		}
	}
}

func formatWeights(w lexicon.Weights) string {
	axes := make([]string, 0, len(w))
	for axis := range w {
		axes = append(axes, axis)
	}
	sort.Strings(axes)
	parts := make([]string, len(axes))
	for i, axis := range axes {
		parts[i] = fmt.Sprintf("%s=%.2f", axis, w[axis])
	}
	return strings.Join(parts, " ")
}

// #endregion stats

// #region teach
var teachCmd = &cobra.Command{
	Use:   "teach [word axis [strength]]",
	Short: "Apply explicit corrections",
	Long: `Without arguments every axiom in the profile is applied. With arguments a
single correction is applied. The lexicon is saved afterwards.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 && len(args) != 3 {
			return fmt.Errorf("expected no arguments or <word> <axis> [strength]")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		axioms := a.profile.Axioms
		if len(args) > 0 {
			ax := config.Axiom{Word: args[0], Axis: args[1], Strength: 0.5}
			if len(args) == 3 {
				ax.Strength, err = strconv.ParseFloat(args[2], 64)
				if err != nil {
					return fmt.Errorf("parse strength: %w", err)
				}
			}
			axioms = []config.Axiom{ax}
		}

		applied := 0
		for _, ax := range axioms {
			if err := a.session.Teach(ax.Word, ax.Axis, ax.Strength); err != nil {
				fmt.Fprintf(os.Stderr, "skip: %v\n", err)
				continue
			}
			applied++
		}
		fmt.Printf("applied %d of %d corrections\n", applied, len(axioms))
		a.save()
		return nil
	},
}

// #endregion teach

// #region decay
var decayCmd = &cobra.Command{
	Use:   "decay",
	Short: "Run decay ticks and save",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if decayTicks < 1 {
			return fmt.Errorf("ticks must be at least 1")
		}
		a, err := openApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		removed := 0
		for i := 0; i < decayTicks; i++ {
			removed += a.session.Decay()
		}
		fmt.Printf("%d ticks removed %d words\n", decayTicks, removed)
		a.save()
		return nil
	},
}

// #endregion decay

// #region log
type logRow struct {
	ID         int64    `json:"id"`
	TurnID     string   `json:"turn_id"`
	Kind       string   `json:"kind"`
	Words      []string `json:"words,omitempty"`
	Axis       string   `json:"axis,omitempty"`
	Confidence float64  `json:"confidence"`
	Decision   string   `json:"decision"`
	Reason     string   `json:"reason,omitempty"`
	CreatedAt  string   `json:"created_at"`
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent learning events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		events, err := logging.ListEvents(store.DB(), logLimit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Fprintln(os.Stderr, "no learning events")
			return nil
		}

		// ListEvents returns newest first; print chronologically.
		rows := make([]logRow, len(events))
		for i, ev := range events {
			rows[len(events)-1-i] = logRow{
				ID:         ev.ID,
				TurnID:     ev.TurnID,
				Kind:       string(ev.Kind),
				Words:      ev.Words,
				Axis:       ev.Axis,
				Confidence: ev.Confidence,
				Decision:   ev.Decision,
				Reason:     ev.Reason,
				CreatedAt:  ev.CreatedAt.Format("2006-01-02T15:04:05Z"),
			}
		}
		if logAsJSON {
			return printJSON(rows)
		}
		printLogTable(rows)
		return nil
	},
}

func printLogTable(rows []logRow) {
	fmt.Printf("%-6s  %-8s  %-10s  %-12s  %6s  %-8s  %-20s  %s\n",
		"ID", "Turn", "Kind", "Axis", "Conf", "Decision", "Time", "Words")
	fmt.Printf("%-6s+-%-8s+-%-10s+-%-12s+-%6s+-%-8s+-%-20s+-%s\n",
		"------", "--------", "----------", "------------", "------", "--------", "--------------------", "-----")
	for _, r := range rows {
		fmt.Printf("%-6d  %-8s  %-10s  %-12s  %6.2f  %-8s  %-20s  %s\n",
			r.ID, shortID(r.TurnID), r.Kind, orDash(r.Axis), r.Confidence, r.Decision, r.CreatedAt,
			strings.Join(r.Words, ","))
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// #endregion log

// #region schema
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the saved lexicon document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := lexicon.DocumentSchema()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

// #endregion schema

// #region profile
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Print the effective profile as YAML",
	Long: `Prints the profile in use after environment and flag overrides. With
--builtin, prints a built-in profile instead, as a starting point for a file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			p   config.Profile
			err error
		)
		if profileBuiltin != "" {
			p, err = config.Builtin(profileBuiltin)
		} else {
			p, err = loadProfile()
		}
		if err != nil {
			return err
		}
		data, err := p.Marshal()
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

// #endregion profile

func init() {
	statsCmd.Flags().Float64Var(&statsRedundant, "redundant", 0, "Also list learned word pairs with cosine similarity at or above this value")
	decayCmd.Flags().IntVarP(&decayTicks, "ticks", "n", 1, "Number of decay ticks")
	logCmd.Flags().IntVar(&logLimit, "limit", 20, "Show N most recent events")
	logCmd.Flags().BoolVar(&logAsJSON, "json", false, "Output as JSON instead of a table")
	profileCmd.Flags().StringVar(&profileBuiltin, "builtin", "", "Print a built-in profile: basic or extended")
}
