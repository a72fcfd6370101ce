// Package tui provides the Bubble Tea practice screen.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/parrot/internal/deck"
	"github.com/verte-zerg/parrot/internal/model"
	"github.com/verte-zerg/parrot/internal/session"
	statsPkg "github.com/verte-zerg/parrot/internal/stats"
	"github.com/verte-zerg/parrot/internal/store"
)

type phase int

const (
	phaseReady phase = iota
	phaseRecording
	phaseScoring
	phaseVerdict
)

// Recorder is the part of session.Controller the practice screen drives.
type Recorder interface {
	StartRecording(ctx context.Context, target, lang string) (<-chan model.Outcome, error)
	StopRecording()
	SupportsSpeech() bool
}

// DeckReloadedMsg carries a reloaded deck into the running program.
type DeckReloadedMsg struct {
	Deck deck.Deck
	Err  error
}

type outcomeMsg struct {
	outcome model.Outcome
}

// Options configures the practice screen.
type Options struct {
	Config   model.Config
	Store    *store.Store
	Recorder Recorder
	Deck     deck.Deck
	Picker   *deck.Picker
	Logger   *slog.Logger
}

// Model implements the Bubble Tea practice UI.
type Model struct {
	ctx      context.Context
	config   model.Config
	store    *store.Store
	recorder Recorder
	picker   *deck.Picker
	log      *slog.Logger

	deck    deck.Deck
	weights []float64
	phrase  deck.Phrase

	width  int
	height int

	phase     phase
	startedAt time.Time
	outcome   *model.Outcome
	notice    string

	spinner spinner.Model
	bar     progress.Model

	hasLast   bool
	lastScore int
	attempts  int
	scored    int
	passes    int
}

var (
	phraseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	matchedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	missedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	recordStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	passStyle    = matchedStyle.Bold(true)
	failStyle    = missedStyle.Bold(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a practice TUI model. ctx bounds every recording started from it.
func NewModel(ctx context.Context, opts Options) *Model {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	picker := opts.Picker
	if picker == nil {
		picker = deck.NewPicker()
	}
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 30
	m := &Model{
		ctx:      ctx,
		config:   opts.Config,
		store:    opts.Store,
		recorder: opts.Recorder,
		picker:   picker,
		log:      log.With("component", "tui"),
		deck:     opts.Deck,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(recordStyle)),
		bar:      bar,
	}
	if m.recorder != nil && !m.recorder.SupportsSpeech() {
		m.notice = "Speech capture is not available in this build."
	}
	m.loadFooterStats()
	m.refreshWeights()
	m.nextPhrase()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case outcomeMsg:
		m.finishAttempt(msg.outcome)
		return m, nil
	case DeckReloadedMsg:
		m.reloadDeck(msg.Deck, msg.Err)
		return m, nil
	case spinner.TickMsg:
		if m.phase != phaseRecording && m.phase != phaseScoring {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.stop()
		return m, tea.Quit
	case tea.KeySpace:
		if m.phase == phaseRecording {
			m.stop()
			return m, nil
		}
		return m, m.start()
	case tea.KeyRunes:
		if len(msg.Runes) != 1 {
			return m, nil
		}
		switch msg.Runes[0] {
		case 'q':
			m.stop()
			return m, tea.Quit
		case 'n':
			if m.busy() {
				return m, nil
			}
			m.nextPhrase()
			return m, nil
		case 'r':
			if m.busy() {
				return m, nil
			}
			return m, m.start()
		}
	}
	return m, nil
}

func (m *Model) busy() bool {
	return m.phase == phaseRecording || m.phase == phaseScoring
}

func (m *Model) start() tea.Cmd {
	if m.busy() || m.recorder == nil || m.phrase.Text == "" {
		return nil
	}
	ch, err := m.recorder.StartRecording(m.ctx, m.phrase.Text, m.config.Lang)
	if err != nil {
		m.notice = startErrorText(err)
		return nil
	}
	m.phase = phaseRecording
	m.startedAt = time.Now()
	m.outcome = nil
	m.notice = ""
	return tea.Batch(m.spinner.Tick, waitForOutcome(ch))
}

func (m *Model) stop() {
	if m.phase != phaseRecording || m.recorder == nil {
		return
	}
	m.recorder.StopRecording()
	m.phase = phaseScoring
}

func waitForOutcome(ch <-chan model.Outcome) tea.Cmd {
	return func() tea.Msg {
		o, ok := <-ch
		if !ok {
			return nil
		}
		return outcomeMsg{outcome: o}
	}
}

func startErrorText(err error) string {
	switch {
	case errors.Is(err, session.ErrMicDenied):
		return "Microphone access was denied."
	case errors.Is(err, session.ErrNoMedia), errors.Is(err, session.ErrNoRecognizer):
		return "Speech capture is not available in this build."
	case errors.Is(err, session.ErrAlreadyInProgress):
		return "A recording is already in progress."
	default:
		return fmt.Sprintf("Could not start recording: %v", err)
	}
}

func (m *Model) finishAttempt(o model.Outcome) {
	m.phase = phaseVerdict
	m.outcome = &o
	if m.store != nil {
		if _, err := m.store.InsertAttempt(context.Background(), model.NewAttempt(o)); err != nil {
			m.log.Warn("failed to save attempt", "err", err)
		}
	}
	m.attempts++
	if o.Evaluation != nil {
		m.scored++
		m.hasLast = true
		m.lastScore = o.Evaluation.Score
		if o.Evaluation.Pass {
			m.passes++
		}
	}
	if m.config.FocusWeak {
		m.refreshWeights()
	}
}

func (m *Model) nextPhrase() {
	m.phrase = m.picker.Pick(m.deck.Phrases, m.weights, m.phrase.Text)
	m.phase = phaseReady
	m.outcome = nil
}

func (m *Model) reloadDeck(d deck.Deck, err error) {
	if err != nil {
		m.notice = fmt.Sprintf("Deck reload failed: %v", err)
		return
	}
	m.deck = d
	m.notice = fmt.Sprintf("Deck reloaded: %d phrases", len(d.Phrases))
	m.refreshWeights()
	if !m.busy() && !m.deckHas(m.phrase.Text) {
		m.nextPhrase()
	}
}

func (m *Model) deckHas(text string) bool {
	for _, p := range m.deck.Phrases {
		if p.Text == text {
			return true
		}
	}
	return false
}

func (m *Model) refreshWeights() {
	if !m.config.FocusWeak || m.store == nil {
		m.weights = nil
		return
	}
	aggs, err := m.store.GetPhraseAggregates(context.Background(), m.config.WeakWindow, m.config.Lang)
	if err != nil {
		m.log.Warn("failed to load phrase stats", "err", err)
		m.weights = nil
		return
	}
	m.weights = deck.Weights(m.deck.Phrases, aggs, m.config.WeakFactor)
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	attempts, err := m.store.ListAttempts(context.Background(), model.StatsConfig{Lang: m.config.Lang})
	if err != nil {
		m.log.Warn("failed to load attempt stats", "err", err)
		return
	}
	s := statsPkg.Summarize(attempts)
	m.attempts = s.Attempts
	m.scored = s.Scored
	m.passes = s.Passes
	for i := len(attempts) - 1; i >= 0; i-- {
		if !attempts[i].Failed {
			m.hasLast = true
			m.lastScore = attempts[i].Score
			break
		}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.phrase.Text == "" {
		return "The deck has no phrases."
	}
	contentWidth := m.width
	if m.width > 0 {
		contentWidth = max(int(float64(m.width)*0.70), 1)
	}
	content := m.renderContent(contentWidth)
	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter()
	}
	content = lipgloss.NewStyle().Width(contentWidth).Render(content)
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderContent(width int) string {
	var words []wordMatch
	showMatch := false
	if m.phase == phaseVerdict && m.outcome != nil && m.outcome.Evaluation != nil && m.outcome.RecognizedText != "" {
		words = matchWords(m.phrase.Text, m.outcome.RecognizedText)
		showMatch = true
	} else {
		words = matchWords(m.phrase.Text, "")
	}
	lines := []string{wrapStyledRunes(buildStyledRunes(words, showMatch), width)}
	if m.phrase.Note != "" {
		lines = append(lines, noteStyle.Render(m.phrase.Note))
	}
	lines = append(lines, "")

	switch m.phase {
	case phaseReady:
		lines = append(lines, noteStyle.Render("space record · n next · q quit"))
	case phaseRecording:
		elapsed := time.Since(m.startedAt).Truncate(100 * time.Millisecond)
		lines = append(lines, fmt.Sprintf("%s %s", m.spinner.View(), recordStyle.Render(fmt.Sprintf("Listening %s · space to stop", elapsed))))
	case phaseScoring:
		lines = append(lines, fmt.Sprintf("%s %s", m.spinner.View(), recordStyle.Render("Scoring...")))
	case phaseVerdict:
		lines = append(lines, m.renderVerdict()...)
		lines = append(lines, "", noteStyle.Render("r retry · n next · q quit"))
	}
	if m.notice != "" {
		lines = append(lines, "", noteStyle.Render(m.notice))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderVerdict() []string {
	o := m.outcome
	if o == nil {
		return nil
	}
	if o.Evaluation == nil {
		msg := "no result"
		if o.Err != nil {
			msg = o.Err.Error()
		}
		return []string{failStyle.Render("Could not score this attempt: " + msg)}
	}
	ev := o.Evaluation
	head := failStyle.Render(fmt.Sprintf("FAIL %d", ev.Score))
	if ev.Pass {
		head = passStyle.Render(fmt.Sprintf("PASS %d", ev.Score))
	}
	lines := []string{head + "  " + m.bar.ViewAs(float64(ev.Score)/100)}
	if o.RecognizedText != "" {
		lines = append(lines, noteStyle.Render("Heard: "+o.RecognizedText))
	} else if o.Method == model.MethodAudioFallback {
		lines = append(lines, noteStyle.Render("No transcript; checked the recording only."))
	}
	for _, r := range ev.Reasons {
		if text := Guidance(r); text != "" {
			lines = append(lines, "· "+text)
		}
	}
	return lines
}

func (m *Model) renderFooter() string {
	segments := []string{fmt.Sprintf("Attempts %d", m.attempts)}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %d", m.lastScore))
	}
	if m.scored > 0 {
		segments = append(segments, fmt.Sprintf("Pass rate %.1f%%", float64(m.passes)/float64(m.scored)*100))
	}
	if m.config.Lang != "" {
		segments = append(segments, m.config.Lang)
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
