//go:build portaudio

package portaudio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	pa "github.com/gordonklaus/portaudio"

	"github.com/verte-zerg/parrot/internal/audiometrics"
	"github.com/verte-zerg/parrot/internal/session"
)

// Available reports whether PortAudio capture is compiled in.
func Available() bool { return true }

// Capturer opens the default input device. Only one stream is open at a time.
type Capturer struct {
	sampleRate int
	log        *slog.Logger

	mu     sync.Mutex
	active *stream
	subs   []chan []byte
}

// NewCapturer initializes PortAudio. Close must be called to terminate it.
func NewCapturer(sampleRate int, logger *slog.Logger) (*Capturer, error) {
	if sampleRate <= 0 {
		sampleRate = SampleRate
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	return &Capturer{sampleRate: sampleRate, log: logger.With("component", "portaudio")}, nil
}

func (c *Capturer) Available() bool { return true }

// Close terminates PortAudio.
func (c *Capturer) Close() error {
	return pa.Terminate()
}

// Subscribe returns a PCM16 feed of the next or current stream. The channel is closed
// when that stream stops.
func (c *Capturer) Subscribe() <-chan []byte {
	ch := make(chan []byte, 256)
	c.mu.Lock()
	c.subs = append(c.subs, ch)
	c.mu.Unlock()
	return ch
}

// Acquire opens the default input stream. Open failures are reported as session.ErrMicDenied.
func (c *Capturer) Acquire(ctx context.Context) (session.Capture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		return nil, fmt.Errorf("%w: input stream already open", session.ErrMicDenied)
	}

	s := &stream{
		owner: c,
		buf:   make([]float32, FramesPerBuffer),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	raw, err := pa.OpenDefaultStream(Channels, 0, float64(c.sampleRate), FramesPerBuffer, s.buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrMicDenied, err)
	}
	s.raw = raw
	c.active = s
	return s, nil
}

func (c *Capturer) fanout(chunk []byte, stop <-chan struct{}) {
	c.mu.Lock()
	subs := c.subs
	c.mu.Unlock()
	for _, sub := range subs {
		select {
		case sub <- chunk:
		case <-stop:
			return
		}
	}
}

func (c *Capturer) detach(s *stream) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == s {
		c.active = nil
	}
	for _, sub := range c.subs {
		close(sub)
	}
	c.subs = nil
}

type stream struct {
	owner *Capturer
	raw   *pa.Stream
	buf   []float32

	mu       sync.Mutex
	pcm      []int16
	started  bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func (s *stream) Start() (<-chan []byte, error) {
	if err := s.raw.Start(); err != nil {
		return nil, fmt.Errorf("failed to start input stream: %w", err)
	}
	s.mu.Lock()
	s.started = true
	s.pcm = make([]int16, 0, s.owner.sampleRate*30)
	s.mu.Unlock()

	chunks := make(chan []byte, 64)
	go s.readLoop(chunks)
	return chunks, nil
}

func (s *stream) readLoop(chunks chan<- []byte) {
	defer close(s.done)
	defer close(chunks)
	for {
		select {
		case <-s.stop:
			return
		default:
		}
		if err := s.raw.Read(); err != nil {
			if errors.Is(err, pa.InputOverflowed) {
				continue
			}
			select {
			case <-s.stop:
			default:
				s.owner.log.Warn("input stream read failed", "error", err)
			}
			return
		}

		pcm := audiometrics.FloatToPCM16(s.buf)
		s.mu.Lock()
		s.pcm = append(s.pcm, pcm...)
		s.mu.Unlock()

		chunk := pcmBytes(pcm)
		select {
		case chunks <- chunk:
		case <-s.stop:
			return
		}
		s.owner.fanout(chunk, s.stop)
	}
}

// SampleRate reports the rate of the raw PCM16 chunks.
func (s *stream) SampleRate() int {
	return s.owner.sampleRate
}

// Stop ends capture and returns everything recorded as a WAV buffer.
func (s *stream) Stop() ([]byte, error) {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return nil, nil
	}

	var stopErr error
	s.stopOnce.Do(func() {
		close(s.stop)
		<-s.done
		stopErr = s.raw.Stop()
	})
	if stopErr != nil {
		stopErr = fmt.Errorf("failed to stop input stream: %w", stopErr)
	}

	s.mu.Lock()
	pcm := s.pcm
	s.pcm = nil
	s.mu.Unlock()
	if len(pcm) == 0 {
		return nil, stopErr
	}

	var out bytes.Buffer
	if err := audiometrics.EncodeWAV(&out, pcm, s.owner.sampleRate); err != nil {
		return nil, fmt.Errorf("failed to encode capture: %w", err)
	}
	return out.Bytes(), stopErr
}

// Release closes the stream and hands the device back.
func (s *stream) Release() error {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.done
			if err := s.raw.Stop(); err != nil {
				s.owner.log.Debug("stop before release failed", "error", err)
			}
		}
	})
	s.owner.detach(s)
	if err := s.raw.Close(); err != nil {
		return fmt.Errorf("failed to close input stream: %w", err)
	}
	return nil
}
