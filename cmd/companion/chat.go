package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Maciej615/EriAmo-sub001/internal/config"
	"github.com/Maciej615/EriAmo-sub001/internal/session"
)

var chatNoWatch bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the companion",
	Long: `Reads one line per turn from stdin. Every turn is analysed, may teach the
lexicon new words and is answered with the most resonant remembered response.

Commands:
  /stats                           vocabulary summary
  /save                            write the lexicon now
  /decay                           run one decay tick
  /teach <word> <axis> [strength]  explicit correction (default strength 0.5)
  /remember <text>                 store a response
  /quit                            save and exit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatNoWatch, "no-watch", false, "Do not reload triggers when the profile file changes")
}

// #region chat-loop
func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()
	defer a.save()

	if a.stream != nil {
		loaded, err := a.stream.Load()
		if err != nil {
			logger.Warn("memory stream unreadable", zap.String("path", a.stream.Path()), zap.Error(err))
		} else {
			logger.Info("memory stream",
				zap.String("path", a.stream.Path()),
				zap.Int("records", len(loaded.Records)),
				zap.Int("skipped", loaded.Skipped))
		}
	}

	var reloads <-chan config.Reload
	if !chatNoWatch {
		w, err := startWatcher(ctx, a.profile)
		if err != nil {
			logger.Warn("profile watch disabled", zap.Error(err))
		} else if w != nil {
			defer w.Stop()
			reloads = w.Updates()
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Companion ready.")
	fmt.Fprintf(out, "  Profile: %s | Axes: %d | Lexicon: %s | DB: %s\n",
		a.profile.Name, len(a.profile.Axes), a.profile.Paths.Lexicon, a.profile.Paths.DB)
	fmt.Fprintln(out, "Type something (or /quit to exit):")

	return a.loop(ctx, out, readLines(ctx, cmd.InOrStdin()), reloads)
}

// readLines feeds lines from r until EOF or ctx is done. On a terminal the
// goroutine stays blocked in Scan after cancellation until the process exits.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 64*1024), 1024*1024)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// loop serialises user lines and trigger reloads so the lexicon and scanner
// are only touched from one goroutine. The prompt is shown once per line.
func (a *app) loop(ctx context.Context, out io.Writer, lines <-chan string, reloads <-chan config.Reload) error {
	fmt.Fprint(out, "> ")
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil

		case r, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			a.session.ReplaceTriggers(r.Triggers)
			fmt.Fprintln(out, "\n(scanner triggers reloaded)")

		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
			if quit := a.handleLine(ctx, out, strings.TrimSpace(line)); quit {
				return nil
			}
			fmt.Fprint(out, "> ")
		}
	}
}

// handleLine runs one turn or slash command and reports whether to quit.
func (a *app) handleLine(ctx context.Context, out io.Writer, line string) bool {
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, "/") {
		return a.command(ctx, out, line)
	}
	res, err := a.session.Turn(ctx, line)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return true
		}
		fmt.Fprintf(out, "turn error: %v\n", err)
		return false
	}
	printTurn(out, res)
	return false
}

// startWatcher watches the profile file when it exists. A nil watcher means
// the built-in profile is in use and there is nothing to watch.
func startWatcher(ctx context.Context, current config.Profile) (*config.Watcher, error) {
	if _, err := os.Stat(profilePath); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	w, err := config.NewWatcher(profilePath, current, config.WithWatchLogger(logger.Named("profile")))
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return nil, err
	}
	return w, nil
}

// #endregion chat-loop

// #region commands
// command runs a slash command and reports whether the loop should end.
func (a *app) command(ctx context.Context, out io.Writer, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true

	case "/stats":
		printStats(out, a.lex.Stats(), a.lex.Axes())

	case "/save":
		a.save()

	case "/decay":
		fmt.Fprintf(out, "decay removed %d words\n", a.session.Decay())

	case "/teach":
		if len(fields) < 3 {
			fmt.Fprintln(out, "usage: /teach <word> <axis> [strength]")
			return false
		}
		strength := 0.5
		if len(fields) > 3 {
			v, err := strconv.ParseFloat(fields[3], 64)
			if err != nil {
				fmt.Fprintf(out, "bad strength %q\n", fields[3])
				return false
			}
			strength = v
		}
		if err := a.session.Teach(fields[1], fields[2], strength); err != nil {
			fmt.Fprintln(out, err)
			return false
		}
		fmt.Fprintf(out, "taught %s -> %s\n", fields[1], fields[2])

	case "/remember":
		text := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
		rec, err := a.session.Remember(ctx, text)
		if err != nil {
			fmt.Fprintln(out, err)
			return false
		}
		fmt.Fprintf(out, "remembered %s (axis=%s)\n", shortID(rec.ID), orDash(rec.Axis))

	default:
		fmt.Fprintf(out, "unknown command %s\n", fields[0])
	}
	return false
}

// #endregion commands

// #region output
func printTurn(out io.Writer, res session.TurnResult) {
	conf := res.Analysis.Confidence()
	fmt.Fprintf(out, "[%s] dominant=%s (%.2f) scan=%s",
		shortID(res.TurnID), orDash(res.Analysis.Dominant), conf, orDash(res.ScanAxis))
	if res.ScanAxis != "" {
		fmt.Fprintf(out, " (%.2f)", res.ScanIntensity)
	}
	fmt.Fprintf(out, " gate=%s", res.Decision.Action)
	if res.Decision.Committed() {
		fmt.Fprintf(out, " via %s (%.2f)", res.Decision.Source, res.Decision.Confidence)
	} else if res.Decision.Reason != "" {
		fmt.Fprintf(out, " (%s)", res.Decision.Reason)
	}
	fmt.Fprintln(out)

	if len(res.Learned) > 0 {
		words := make([]string, len(res.Learned))
		for i, lw := range res.Learned {
			words[i] = lw.Word
		}
		fmt.Fprintf(out, "  learned: %s\n", strings.Join(words, ", "))
	}
	if res.DecayRan {
		fmt.Fprintf(out, "  decay: removed %d words\n", res.Decayed)
	}
	if res.Response != nil {
		fmt.Fprintf(out, "\n%s\n  (resonance %.2f)\n\n", res.Response.Text, res.Response.Similarity)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// #endregion output
