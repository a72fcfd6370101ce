// Package main provides the CLI entrypoint for parrot.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/parrot/internal/config"
	"github.com/verte-zerg/parrot/internal/deck"
	"github.com/verte-zerg/parrot/internal/langdetect"
	"github.com/verte-zerg/parrot/internal/model"
	"github.com/verte-zerg/parrot/internal/platform/portaudio"
	"github.com/verte-zerg/parrot/internal/platform/vosk"
	"github.com/verte-zerg/parrot/internal/scoring"
	"github.com/verte-zerg/parrot/internal/session"
	"github.com/verte-zerg/parrot/internal/stats"
	"github.com/verte-zerg/parrot/internal/statsui"
	"github.com/verte-zerg/parrot/internal/store"
	"github.com/verte-zerg/parrot/internal/tui"
)

const (
	defaultLang        = "en"
	defaultWeakFactor  = 2.0
	defaultWeakWindow  = 20
	defaultCurveWindow = 10
	defaultLogLevel    = "warn"
)

var (
	logLevel string

	practiceLang           string
	practiceDeck           string
	practiceSilenceTimeout string
	practiceHardCap        string
	practiceFocusWeak      bool
	practiceWeakFactor     float64
	practiceWeakWindow     int

	statsLang        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsBrowse      bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "parrot",
		Short:         "Pronunciation practice in the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	addPracticeFlags(rootCmd)

	practiceCmd := &cobra.Command{
		Use:   "practice",
		Short: "Practice phrases from a deck",
		Args:  cobra.NoArgs,
		RunE:  runPracticeCmd,
	}
	addPracticeFlags(practiceCmd)

	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(newEvalCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newLangsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addPracticeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&practiceLang, "lang", defaultLang, "language code (default: en)")
	cmd.Flags().StringVar(&practiceDeck, "deck", "", "phrase deck (.txt or .yaml); defaults to the deck for --lang")
	cmd.Flags().StringVar(&practiceSilenceTimeout, "silence-timeout", session.DefaultSilenceTimeout.String(), "silence after a final transcript that ends recording")
	cmd.Flags().StringVar(&practiceHardCap, "hard-cap", session.DefaultHardCap.String(), "maximum recording length")
	cmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "bias practice toward phrases with low recent scores")
	cmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak phrases")
	cmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent attempts used to find weak phrases")
}

func loadConfig(cmd *cobra.Command) (config.FileConfig, *slog.Logger, error) {
	fileCfg, err := config.Loader{}.Load(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	logger, err := newLogger(os.Stderr, logLevel)
	if err != nil {
		return config.FileConfig{}, nil, err
	}
	slog.SetDefault(logger)
	return fileCfg, logger, nil
}

func newEngine(fileCfg config.FileConfig) (*scoring.Engine, error) {
	weights, err := fileCfg.Weights()
	if err != nil {
		return nil, fmt.Errorf("invalid [scoring] config: %w", err)
	}
	table, err := fileCfg.ThresholdTable()
	if err != nil {
		return nil, fmt.Errorf("invalid [thresholds] config: %w", err)
	}
	return scoring.New(table, weights), nil
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "lang", &practiceLang, fileCfg.Practice.Lang)
	applyStringConfig(cmd, "deck", &practiceDeck, fileCfg.Practice.Deck)
	applyStringConfig(cmd, "silence-timeout", &practiceSilenceTimeout, fileCfg.Practice.SilenceTimeout)
	applyStringConfig(cmd, "hard-cap", &practiceHardCap, fileCfg.Practice.HardCap)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, fileCfg.Practice.FocusWeak)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, fileCfg.Practice.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, fileCfg.Practice.WeakWindow)

	silence, err := config.ParseDuration("silence-timeout", &practiceSilenceTimeout, session.DefaultSilenceTimeout)
	if err != nil {
		return err
	}
	hardCap, err := config.ParseDuration("hard-cap", &practiceHardCap, session.DefaultHardCap)
	if err != nil {
		return err
	}

	cfg := model.Config{
		Lang:           strings.TrimSpace(practiceLang),
		DeckPath:       practiceDeck,
		SilenceTimeout: silence,
		HardCap:        hardCap,
		FocusWeak:      practiceFocusWeak,
		WeakWindow:     practiceWeakWindow,
		WeakFactor:     practiceWeakFactor,
	}
	if cfg.DeckPath == "" {
		cfg.DeckPath = config.DefaultDeckPath(cfg.Lang)
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	phrases, err := deck.Load(cfg.DeckPath)
	if err != nil {
		return deckLoadError(cfg.Lang, cfg.DeckPath, err)
	}

	engine, err := newEngine(fileCfg)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ports, err := openSpeechPorts(fileCfg.Recognizer, logger)
	if err != nil {
		return err
	}
	defer ports.Close()

	ctrl := session.New(session.Options{
		Transcriber:    ports.transcriber,
		Capturer:       ports.capturer,
		Scorer:         engine,
		Logger:         logger,
		SilenceTimeout: cfg.SilenceTimeout,
		HardCap:        cfg.HardCap,
	})
	if !ctrl.SupportsSpeech() {
		logger.Warn("speech capture unavailable; rebuild with -tags portaudio,vosk and configure [recognizer] models")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := tui.NewModel(ctx, tui.Options{
		Config:   cfg,
		Store:    st,
		Recorder: ctrl,
		Deck:     phrases,
		Logger:   logger,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		err := deck.Watch(ctx, cfg.DeckPath, func(d deck.Deck, err error) {
			program.Send(tui.DeckReloadedMsg{Deck: d, Err: err})
		})
		if err != nil {
			logger.Debug("deck watch stopped", "err", err)
		}
	}()
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// speechPorts owns the platform adapters behind the session controller.
type speechPorts struct {
	mic         *portaudio.Capturer
	recognizer  *vosk.Transcriber
	capturer    session.Capturer
	transcriber session.Transcriber
}

func openSpeechPorts(cfg config.RecognizerConfig, logger *slog.Logger) (*speechPorts, error) {
	ports := &speechPorts{}
	rate := portaudio.SampleRate
	if cfg.SampleRate != nil {
		rate = *cfg.SampleRate
	}
	if rate <= 0 {
		return nil, fmt.Errorf("[recognizer] sample-rate must be > 0")
	}

	mic, err := portaudio.NewCapturer(rate, logger)
	if err != nil {
		logger.Debug("microphone capture unavailable", "err", err)
		return ports, nil
	}
	ports.mic = mic
	ports.capturer = mic

	rec, err := vosk.New(mic, cfg.Models, rate, logger)
	if err != nil {
		logger.Debug("speech recognizer unavailable", "err", err)
		return ports, nil
	}
	ports.recognizer = rec
	ports.transcriber = rec
	return ports, nil
}

func (p *speechPorts) Close() {
	if p.recognizer != nil {
		if cerr := p.recognizer.Close(); cerr != nil {
			logErrf("failed to close recognizer: %v\n", cerr)
		}
	}
	if p.mic != nil {
		if cerr := p.mic.Close(); cerr != nil {
			logErrf("failed to close microphone: %v\n", cerr)
		}
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs",
		Short: "List languages with thresholds, stopwords and recognizer models",
		Args:  cobra.NoArgs,
		RunE:  runLangsCmd,
	}
}

func runLangsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	engine, err := newEngine(fileCfg)
	if err != nil {
		return err
	}
	return writeLangs(cmd.OutOrStdout(), engine.Thresholds().Languages(), langdetect.Supported(), fileCfg.Recognizer.Models, speechBuilt())
}

func speechBuilt() bool {
	return portaudio.Available() && vosk.Available()
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLang, "lang", "", "language filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N attempts")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsBrowse, "browse", false, "browse attempts interactively")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if _, _, err := loadConfig(cmd); err != nil {
		return err
	}
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow <= 0 {
		return fmt.Errorf("--curve-window must be > 0")
	}

	cfg := model.StatsConfig{
		Lang:        statsLang,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsBrowse {
		program := tea.NewProgram(statsui.NewModel(cmd.Context(), st, cfg), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats browser: %w", err)
		}
		return nil
	}

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	return report.Render(cmd.OutOrStdout(), cfg.CurveWindow, 0, true)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# parrot configuration
# Uncomment a value to enable it. Environment variables (PARROT_LANG, PARROT_DECK,
# PARROT_LOG_LEVEL, PARROT_VOSK_MODEL_<LANG>) override the file; CLI flags override both.

[practice]
# lang = %q               # Language code
# deck = ""                 # Phrase deck (.txt or .yaml); default %s
# silence-timeout = %q    # Silence after a final transcript that ends recording
# hard-cap = %q          # Maximum recording length
# focus-weak = false        # Bias practice toward phrases with low recent scores
# weak-factor = %.1f        # Weight factor for weak phrases
# weak-window = %d          # Number of recent attempts used to find weak phrases

[scoring]
# char = %.0f                 # Weight of character similarity
# word = %.0f                 # Weight of word F1
# lang = %.0f                 # Weight of language likelihood
# confidence = %.0f           # Weight of recognizer confidence
# confidence-floor = %.2f   # Confidence used when the recognizer reports less

# Per-language threshold overrides. Unset keys keep the builtin value.
# [thresholds.es]
# min-char-similarity = 0.7
# min-word-f1 = 0.6
# duration-tolerance = [0.5, 2.5]

[recognizer]
# sample-rate = %d
# models = { en = "/path/to/vosk-model-small-en-us", es = "/path/to/vosk-model-small-es" }

[log]
# level = %q
`,
		defaultLang,
		config.DefaultDeckPath("<lang>"),
		session.DefaultSilenceTimeout.String(),
		session.DefaultHardCap.String(),
		defaultWeakFactor,
		defaultWeakWindow,
		model.DefaultWeights().Char,
		model.DefaultWeights().Word,
		model.DefaultWeights().Lang,
		model.DefaultWeights().Confidence,
		model.DefaultWeights().ConfidenceFloor,
		portaudio.SampleRate,
		defaultLogLevel,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Lang == "" {
		return fmt.Errorf("--lang must not be empty")
	}
	if cfg.SilenceTimeout <= 0 {
		return fmt.Errorf("--silence-timeout must be > 0")
	}
	if cfg.HardCap <= 0 {
		return fmt.Errorf("--hard-cap must be > 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

func deckLoadError(lang, path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load deck: %v", err),
		fmt.Sprintf("expected deck at: %s", path),
	}
	if errors.Is(err, os.ErrNotExist) {
		lines = append(lines,
			fmt.Sprintf("Create %s with one phrase per line, or pass --deck <file>", config.DefaultDeckPath(lang)),
		)
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
