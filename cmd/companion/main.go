package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Maciej615/EriAmo-sub001/internal/config"
	"github.com/Maciej615/EriAmo-sub001/internal/kurz"
	"github.com/Maciej615/EriAmo-sub001/internal/lexicon"
	"github.com/Maciej615/EriAmo-sub001/internal/logging"
	"github.com/Maciej615/EriAmo-sub001/internal/memory"
	"github.com/Maciej615/EriAmo-sub001/internal/session"
	"github.com/Maciej615/EriAmo-sub001/internal/soulio"
)

var (
	// Global flags
	profilePath string
	lexiconPath string
	dbPath      string
	logLevel    string
	logJSON     bool

	logger *zap.Logger
)

// #region root
var rootCmd = &cobra.Command{
	Use:   "companion",
	Short: "Resonance lexicon companion",
	Long: `companion maps text onto a fixed set of emotional and conceptual axes,
learns the weights of unknown words from the context they appear in and answers
with the stored response that resonates most with the current turn.

State lives in a JSON lexicon, a SQLite database of responses and learning
events, and an append-only JSONL memory stream.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.NewLogger(logLevel, logJSON)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&profilePath, "profile", "p", envOr("COMPANION_PROFILE", "companion.yaml"), "Profile file (built-in basic profile when missing)")
	rootCmd.PersistentFlags().StringVar(&lexiconPath, "lexicon", "", "Lexicon JSON path (overrides profile and COMPANION_LEXICON)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides profile and COMPANION_DB)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit JSON logs")

	rootCmd.AddCommand(chatCmd, statsCmd, teachCmd, decayCmd, logCmd, schemaCmd, profileCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion root

// #region app
// app holds everything one command needs. Fields are nil when not opened.
type app struct {
	profile config.Profile
	lex     *lexicon.Lexicon
	scanner *kurz.Scanner
	store   *memory.Store
	stream  *soulio.Stream
	session *session.Session
}

// loadProfile reads the profile and applies environment and flag overrides.
func loadProfile() (config.Profile, error) {
	p, err := config.Load(profilePath)
	if err != nil {
		return config.Profile{}, err
	}
	p.ApplyEnv()
	if lexiconPath != "" {
		p.Paths.Lexicon = lexiconPath
	}
	if dbPath != "" {
		p.Paths.DB = dbPath
	}
	return p, nil
}

// openApp builds the lexicon and scanner from the profile and loads the saved
// lexicon. withStores also opens the database and the memory stream.
func openApp(withStores bool) (*app, error) {
	p, err := loadProfile()
	if err != nil {
		return nil, err
	}
	a := &app{profile: p}

	a.lex, err = lexicon.New(p.LexiconConfig(), lexicon.WithLogger(logger.Named("lexicon")))
	if err != nil {
		return nil, fmt.Errorf("build lexicon: %w", err)
	}
	res := a.lex.Load()
	if res.Degraded() {
		logger.Warn("lexicon not loaded, starting from seeds",
			zap.String("path", res.Path),
			zap.String("status", string(res.Status)),
			zap.String("reason", res.Reason))
	} else {
		logger.Debug("lexicon load", zap.String("status", string(res.Status)), zap.Int("words", res.Words))
	}
	a.scanner = kurz.New(p.Axes, p.TriggerTable(), p.ScannerConfig())

	opts := []session.Option{session.WithLogger(logger.Named("session"))}
	if withStores {
		if err := os.MkdirAll(filepath.Dir(p.Paths.DB), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		a.store, err = memory.NewStore(p.Paths.DB)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		opts = append(opts, session.WithMemory(a.store))
		if p.Paths.MemoryLog != "" {
			a.stream = soulio.Open(p.Paths.MemoryLog, logger.Named("soulio"))
			opts = append(opts, session.WithStream(a.stream))
		}
	}
	a.session = session.New(a.lex, a.scanner, p.SessionConfig(), opts...)
	return a, nil
}

// save writes the lexicon and reports the outcome on stdout.
func (a *app) save() {
	res := a.session.Save()
	if !res.OK() {
		fmt.Printf("save failed: %v\n", res.Err)
		return
	}
	fmt.Printf("saved %d learned words to %s\n", res.Words, res.Path)
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	}
}

// #endregion app

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
