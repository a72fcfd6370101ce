//go:build vosk

package vosk

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"

	"github.com/verte-zerg/parrot/internal/session"
)

// Available reports whether Vosk is compiled in.
func Available() bool { return true }

// Transcriber recognizes speech from an AudioFeed with one Vosk model per language.
type Transcriber struct {
	feed       AudioFeed
	models     map[string]string
	sampleRate float64
	log        *slog.Logger

	mu     sync.Mutex
	loaded map[string]*vosk.VoskModel
	run    *stream
}

type stream struct {
	rec  *vosk.VoskRecognizer
	once sync.Once
	stop chan struct{}
	done chan struct{}
}

// New builds a Transcriber. Models are loaded lazily on the first Start for a language.
func New(feed AudioFeed, models map[string]string, sampleRate int, logger *slog.Logger) (*Transcriber, error) {
	if feed == nil {
		return nil, fmt.Errorf("vosk transcriber needs an audio feed")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	vosk.SetLogLevel(-1)
	return &Transcriber{
		feed:       feed,
		models:     models,
		sampleRate: float64(sampleRate),
		log:        logger.With("component", "vosk"),
		loaded:     map[string]*vosk.VoskModel{},
	}, nil
}

// Available reports whether at least one model is configured.
func (t *Transcriber) Available() bool {
	return t != nil && len(t.models) > 0
}

func (t *Transcriber) model(lang string) (*vosk.VoskModel, error) {
	path, err := modelPath(t.models, lang)
	if err != nil {
		return nil, err
	}
	if m, ok := t.loaded[path]; ok {
		return m, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to find vosk model %s: %w", path, err)
	}
	m, err := vosk.NewModel(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load vosk model %s: %w", path, err)
	}
	t.loaded[path] = m
	t.log.Debug("model loaded", "lang", lang, "path", path)
	return m, nil
}

// Start begins recognition in lang on the next audio from the feed.
func (t *Transcriber) Start(ctx context.Context, lang string) (<-chan session.TranscriptEvent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.run != nil {
		return nil, ErrBusy
	}
	m, err := t.model(lang)
	if err != nil {
		return nil, err
	}
	rec, err := vosk.NewRecognizer(m, t.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to create vosk recognizer: %w", err)
	}
	rec.SetWords(1)

	s := &stream{rec: rec, stop: make(chan struct{}), done: make(chan struct{})}
	t.run = s
	out := make(chan session.TranscriptEvent, 16)
	go t.loop(ctx, s, t.feed.Subscribe(), out)
	return out, nil
}

func (t *Transcriber) loop(ctx context.Context, s *stream, audio <-chan []byte, out chan<- session.TranscriptEvent) {
	defer close(s.done)
	defer close(out)

	send := func(ev session.TranscriptEvent) bool {
		select {
		case out <- ev:
			return true
		case <-s.stop:
			return false
		case <-ctx.Done():
			return false
		}
	}

	lastPartial := ""
	for {
		select {
		case <-s.stop:
			t.flush(s, out)
			return
		case <-ctx.Done():
			return
		case chunk, ok := <-audio:
			if !ok {
				t.flush(s, out)
				return
			}
			if s.rec.AcceptWaveform(chunk) != 0 {
				text, conf, err := parseResult(s.rec.Result())
				if err != nil {
					send(session.TranscriptEvent{Err: err})
					return
				}
				lastPartial = ""
				if text != "" && !send(session.TranscriptEvent{Final: true, Text: text, Confidence: conf}) {
					return
				}
				continue
			}
			text, _, err := parseResult(s.rec.PartialResult())
			if err != nil || text == "" || text == lastPartial {
				continue
			}
			lastPartial = text
			if !send(session.TranscriptEvent{Text: text}) {
				return
			}
		}
	}
}

// flush emits the recognizer's remaining hypothesis if there is room for it.
func (t *Transcriber) flush(s *stream, out chan<- session.TranscriptEvent) {
	text, conf, err := parseResult(s.rec.FinalResult())
	if err != nil || text == "" {
		return
	}
	select {
	case out <- session.TranscriptEvent{Final: true, Text: text, Confidence: conf}:
	default:
		t.log.Debug("dropped final result on stop", "text", text)
	}
}

// Stop ends the running stream and frees its recognizer.
func (t *Transcriber) Stop() error {
	t.mu.Lock()
	s := t.run
	t.run = nil
	t.mu.Unlock()
	if s == nil {
		return nil
	}
	s.once.Do(func() { close(s.stop) })
	<-s.done
	s.rec.Free()
	return nil
}

// Close stops any stream and frees loaded models.
func (t *Transcriber) Close() error {
	if err := t.Stop(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for path, m := range t.loaded {
		m.Free()
		delete(t.loaded, path)
	}
	return nil
}
