package session

import (
	"context"
	"errors"

	"github.com/verte-zerg/parrot/internal/model"
	"github.com/verte-zerg/parrot/internal/scoring"
)

var (
	// ErrNoRecognizer means no transcription capability is available.
	ErrNoRecognizer = errors.New("no transcription capability available")
	// ErrNoMedia means no audio capture capability is available.
	ErrNoMedia = errors.New("no audio capture capability available")
	// ErrAlreadyInProgress means a session is already running on the controller.
	ErrAlreadyInProgress = errors.New("a recording session is already in progress")
	// ErrMicDenied means microphone access was rejected.
	ErrMicDenied = errors.New("microphone access denied")
	// ErrNoTarget means the target phrase is empty.
	ErrNoTarget = scoring.ErrNoTarget
)

// TranscriptEvent is one message from a transcription stream.
// A non-nil Err reports a runtime recognizer failure.
type TranscriptEvent struct {
	Final      bool
	Text       string
	Confidence float64
	Err        error
}

// Transcriber is the speech-to-text capability.
type Transcriber interface {
	// Start begins transcription in lang. The returned channel is closed when the stream ends.
	Start(ctx context.Context, lang string) (<-chan TranscriptEvent, error)
	Stop() error
}

// Capturer grants exclusive access to the microphone.
type Capturer interface {
	// Acquire returns ErrMicDenied (possibly wrapped) when permission is rejected.
	Acquire(ctx context.Context) (Capture, error)
}

// Capture is an acquired microphone stream.
type Capture interface {
	// Start begins raw capture. The chunk channel is closed when capture ends.
	// Chunks are concatenated as the fallback buffer when Stop returns nothing, so
	// they must decode as a whole unless the capture also implements PCMSource.
	Start() (<-chan []byte, error)
	// Stop ends capture and returns the joined, decodable buffer.
	Stop() ([]byte, error)
	// Release gives the microphone back.
	Release() error
}

// PCMSource is implemented by captures whose chunks are raw little-endian PCM16 mono.
// The joined chunks are wrapped as WAV at SampleRate before decoding.
type PCMSource interface {
	SampleRate() int
}

// Prober is implemented by capabilities that can report availability without side effects.
type Prober interface {
	Available() bool
}

// Scorer evaluates a finished attempt.
type Scorer interface {
	Evaluate(in scoring.Input) (model.Evaluation, error)
}

func available(v any) bool {
	if v == nil {
		return false
	}
	if p, ok := v.(Prober); ok {
		return p.Available()
	}
	return true
}
