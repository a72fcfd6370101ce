// Package session records one spoken attempt at a time and turns it into a single scored outcome.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/xid"

	"github.com/verte-zerg/parrot/internal/audiometrics"
	"github.com/verte-zerg/parrot/internal/model"
	"github.com/verte-zerg/parrot/internal/scoring"
)

const (
	// DefaultSilenceTimeout is the pause after the last final transcript that ends a session.
	DefaultSilenceTimeout = 2 * time.Second
	// DefaultHardCap is the maximum length of a session.
	DefaultHardCap = 30 * time.Second

	eventBuffer = 64
)

// State is the lifecycle state of the controller's current session.
type State int

const (
	Idle State = iota
	Acquiring
	Active
	Finalizing
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Acquiring:
		return "acquiring"
	case Active:
		return "active"
	case Finalizing:
		return "finalizing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configures a Controller. Nil Transcriber or Capturer means the capability is absent.
type Options struct {
	Transcriber    Transcriber
	Capturer       Capturer
	Decoder        audiometrics.Decoder
	Scorer         Scorer
	Clock          clockwork.Clock
	Logger         *slog.Logger
	SilenceTimeout time.Duration
	HardCap        time.Duration
}

// Controller owns at most one recording session at a time.
type Controller struct {
	transcriber    Transcriber
	capturer       Capturer
	decoder        audiometrics.Decoder
	scorer         Scorer
	clock          clockwork.Clock
	log            *slog.Logger
	silenceTimeout time.Duration
	hardCap        time.Duration

	mu     sync.Mutex
	state  State
	active *run
}

// New builds a Controller, filling unset options with defaults.
func New(opts Options) *Controller {
	if opts.Decoder == nil {
		opts.Decoder = audiometrics.WAVDecoder{}
	}
	if opts.Scorer == nil {
		opts.Scorer = scoring.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.SilenceTimeout <= 0 {
		opts.SilenceTimeout = DefaultSilenceTimeout
	}
	if opts.HardCap <= 0 {
		opts.HardCap = DefaultHardCap
	}
	return &Controller{
		transcriber:    opts.Transcriber,
		capturer:       opts.Capturer,
		decoder:        opts.Decoder,
		scorer:         opts.Scorer,
		clock:          opts.Clock,
		log:            opts.Logger.With("component", "session"),
		silenceTimeout: opts.SilenceTimeout,
		hardCap:        opts.HardCap,
	}
}

type eventKind int

const (
	evFinalTranscript eventKind = iota
	evInterimTranscript
	evRecognizerError
	evAudioChunk
	evCaptureComplete
	evSilenceTimeout
	evHardCapTimeout
	evStopRequested
)

type event struct {
	kind       eventKind
	text       string
	confidence float64
	chunk      []byte
	err        error
	gen        int
	trigger    model.Trigger
}

// run is the per-session record. Fields below the separator belong to the loop goroutine.
type run struct {
	id        string
	target    string
	lang      string
	startedAt time.Time
	events    chan event
	done      chan struct{}
	out       chan model.Outcome
	capture   Capture
	cancel    context.CancelFunc

	audio             bytes.Buffer
	transcript        string
	confidence        float64
	hasFinal          bool
	speechDetected    bool
	recognizerStopped bool
	silence           clockwork.Timer
	silenceGen        int
	hardCap           clockwork.Timer
}

func (r *run) post(ev event) bool {
	select {
	case r.events <- ev:
		return true
	case <-r.done:
		return false
	}
}

// SupportsSpeech reports whether both capture and transcription capabilities are present.
func (c *Controller) SupportsSpeech() bool {
	return available(c.transcriber) && available(c.capturer)
}

// IsRecording reports whether a session is in progress.
func (c *Controller) IsRecording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StartRecording begins a session for target in lang. The returned channel yields exactly
// one Outcome and is then closed. Cancelling ctx stops the session like StopRecording.
func (c *Controller) StartRecording(ctx context.Context, target, lang string) (<-chan model.Outcome, error) {
	if strings.TrimSpace(target) == "" {
		return nil, ErrNoTarget
	}
	if !available(c.transcriber) {
		return nil, ErrNoRecognizer
	}
	if !available(c.capturer) {
		return nil, ErrNoMedia
	}

	c.mu.Lock()
	if c.active != nil {
		c.mu.Unlock()
		return nil, ErrAlreadyInProgress
	}
	r := &run{
		id:     xid.New().String(),
		target: target,
		lang:   lang,
		events: make(chan event, eventBuffer),
		done:   make(chan struct{}),
		out:    make(chan model.Outcome, 1),
	}
	c.active = r
	c.state = Acquiring
	c.mu.Unlock()

	log := c.log.With("session", r.id, "lang", lang)
	log.Debug("acquiring microphone")

	capture, err := c.capturer.Acquire(ctx)
	if err != nil {
		c.abort(r)
		if errors.Is(err, ErrMicDenied) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to acquire microphone: %w", err)
	}
	r.capture = capture

	chunks, err := capture.Start()
	if err != nil {
		if rerr := capture.Release(); rerr != nil {
			log.Warn("failed to release microphone", "error", rerr)
		}
		c.abort(r)
		return nil, fmt.Errorf("failed to start capture: %w", err)
	}

	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancel = cancel

	transcripts, err := c.transcriber.Start(streamCtx, lang)
	if err != nil {
		// Capture keeps running; the session will finish on the audio-fallback path.
		log.Warn("transcriber failed to start", "error", err)
		r.recognizerStopped = true
		transcripts = nil
	}

	r.startedAt = c.clock.Now()
	r.hardCap = c.clock.AfterFunc(c.hardCap, func() {
		r.post(event{kind: evHardCapTimeout})
	})

	c.mu.Lock()
	c.state = Active
	c.mu.Unlock()
	log.Debug("session active", "hard_cap", c.hardCap, "silence_timeout", c.silenceTimeout)

	go c.loop(r, log)
	go pumpAudio(r, chunks)
	if transcripts != nil {
		go pumpTranscripts(r, transcripts)
	}
	go func() {
		select {
		case <-ctx.Done():
			r.post(event{kind: evStopRequested, trigger: model.TriggerContextCancelled})
		case <-r.done:
		}
	}()

	return r.out, nil
}

// StopRecording ends the current session. It is a no-op when no session is active.
func (c *Controller) StopRecording() {
	c.mu.Lock()
	r := c.active
	c.mu.Unlock()
	if r == nil {
		return
	}
	r.post(event{kind: evStopRequested, trigger: model.TriggerStop})
}

func (c *Controller) abort(r *run) {
	close(r.done)
	close(r.out)
	c.mu.Lock()
	if c.active == r {
		c.active = nil
		c.state = Idle
	}
	c.mu.Unlock()
}

func pumpTranscripts(r *run, in <-chan TranscriptEvent) {
	for te := range in {
		ev := event{text: te.Text, confidence: te.Confidence, err: te.Err}
		switch {
		case te.Err != nil:
			ev.kind = evRecognizerError
		case te.Final:
			ev.kind = evFinalTranscript
		default:
			ev.kind = evInterimTranscript
		}
		if !r.post(ev) {
			return
		}
	}
}

func pumpAudio(r *run, in <-chan []byte) {
	for chunk := range in {
		if !r.post(event{kind: evAudioChunk, chunk: chunk}) {
			return
		}
	}
	r.post(event{kind: evCaptureComplete})
}

func (c *Controller) loop(r *run, log *slog.Logger) {
	for {
		ev := <-r.events
		switch ev.kind {
		case evInterimTranscript:
			r.speechDetected = true
		case evFinalTranscript:
			r.speechDetected = true
			text := strings.TrimSpace(ev.text)
			if text == "" {
				continue
			}
			r.transcript = text
			r.confidence = ev.confidence
			r.hasFinal = true
			c.armSilence(r)
			log.Debug("final transcript", "text", text, "confidence", ev.confidence)
		case evAudioChunk:
			r.audio.Write(ev.chunk)
		case evRecognizerError:
			log.Warn("recognizer failed mid-session", "error", ev.err)
			c.stopRecognizer(r, log)
			c.finalize(r, model.TriggerRecognizerError, log)
			return
		case evCaptureComplete:
			c.finalize(r, model.TriggerCaptureEnded, log)
			return
		case evSilenceTimeout:
			if ev.gen != r.silenceGen {
				continue
			}
			c.finalize(r, model.TriggerSilence, log)
			return
		case evHardCapTimeout:
			c.finalize(r, model.TriggerHardCap, log)
			return
		case evStopRequested:
			c.finalize(r, ev.trigger, log)
			return
		}
	}
}

func (c *Controller) armSilence(r *run) {
	if r.silence != nil {
		r.silence.Stop()
	}
	r.silenceGen++
	gen := r.silenceGen
	r.silence = c.clock.AfterFunc(c.silenceTimeout, func() {
		r.post(event{kind: evSilenceTimeout, gen: gen})
	})
}

func (c *Controller) stopRecognizer(r *run, log *slog.Logger) {
	if r.recognizerStopped {
		return
	}
	r.recognizerStopped = true
	if err := c.transcriber.Stop(); err != nil {
		log.Warn("failed to stop transcriber", "error", err)
	}
}

func (c *Controller) finalize(r *run, trigger model.Trigger, log *slog.Logger) {
	c.mu.Lock()
	c.state = Finalizing
	c.mu.Unlock()
	log.Debug("finalizing", "trigger", trigger, "has_final", r.hasFinal, "speech_detected", r.speechDetected)

	if r.silence != nil {
		r.silence.Stop()
	}
	r.silenceGen++
	r.hardCap.Stop()
	r.cancel()
	c.stopRecognizer(r, log)

	buf, err := r.capture.Stop()
	if err != nil {
		log.Warn("failed to stop capture", "error", err)
	}
	if len(buf) == 0 {
		buf = chunkFallback(r.capture, r.audio.Bytes(), log)
	}
	if err := r.capture.Release(); err != nil {
		log.Warn("failed to release microphone", "error", err)
	}

	out := model.Outcome{
		SessionID: r.id,
		Target:    r.target,
		Lang:      r.lang,
		Trigger:   trigger,
		StartedAt: r.startedAt,
		EndedAt:   c.clock.Now(),
	}
	if r.hasFinal {
		out.Method = model.MethodLiveSpeech
		out.RecognizedText = r.transcript
		out.Confidence = r.confidence
		c.evaluate(&out, scoring.Input{
			Recognized: r.transcript,
			Confidence: r.confidence,
			Target:     r.target,
			Lang:       r.lang,
		})
	} else {
		out.Method = model.MethodAudioFallback
		metrics, err := audiometrics.Extract(buf, c.decoder)
		if err != nil {
			out.Err = err
		} else {
			out.AudioMetrics = &metrics
			c.evaluate(&out, scoring.Input{Audio: &metrics, Target: r.target, Lang: r.lang})
		}
	}

	final := Done
	if out.Err != nil {
		final = Failed
		log.Warn("session failed", "method", out.Method, "error", out.Err)
	} else {
		log.Debug("session done", "method", out.Method, "pass", out.Evaluation.Pass, "score", out.Evaluation.Score)
	}

	c.mu.Lock()
	c.state = final
	c.active = nil
	c.mu.Unlock()

	close(r.done)
	r.out <- out
	close(r.out)

	c.mu.Lock()
	if c.active == nil && c.state == final {
		c.state = Idle
	}
	c.mu.Unlock()
}

func chunkFallback(capture Capture, joined []byte, log *slog.Logger) []byte {
	src, ok := capture.(PCMSource)
	if !ok || len(joined) == 0 {
		return joined
	}
	rate := src.SampleRate()
	if rate <= 0 {
		return joined
	}
	wav, err := audiometrics.WrapPCM16(joined, rate)
	if err != nil {
		log.Warn("failed to wrap captured pcm", "error", err)
		return joined
	}
	return wav
}

func (c *Controller) evaluate(out *model.Outcome, in scoring.Input) {
	ev, err := c.scorer.Evaluate(in)
	if err != nil {
		out.Err = err
		return
	}
	out.Evaluation = &ev
}
