// Package audiometrics derives duration, loudness and zero-crossing metrics from captured audio.
package audiometrics

import (
	"errors"
	"fmt"
	"math"

	"github.com/verte-zerg/parrot/internal/model"
)

// Decoder turns a captured buffer into first-channel samples scaled to [-1, 1].
type Decoder interface {
	Decode(buf []byte) (samples []float64, sampleRate int, err error)
}

// DecodeError reports that a captured buffer could not be turned into PCM samples.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode audio: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

var (
	errEmptyBuffer  = errors.New("audio buffer is empty")
	errNoSamples    = errors.New("audio contains no samples")
	errNoSampleRate = errors.New("audio has no sample rate")
)

// Extract decodes buf with dec and computes its metrics.
func Extract(buf []byte, dec Decoder) (model.AudioMetrics, error) {
	if len(buf) == 0 {
		return model.AudioMetrics{}, &DecodeError{Err: errEmptyBuffer}
	}
	if dec == nil {
		dec = WAVDecoder{}
	}
	samples, rate, err := dec.Decode(buf)
	if err != nil {
		return model.AudioMetrics{}, &DecodeError{Err: err}
	}
	if rate <= 0 {
		return model.AudioMetrics{}, &DecodeError{Err: errNoSampleRate}
	}
	if len(samples) == 0 {
		return model.AudioMetrics{}, &DecodeError{Err: errNoSamples}
	}
	return Compute(samples, rate), nil
}

// Compute returns duration, RMS and zero-crossing count for samples at sampleRate.
func Compute(samples []float64, sampleRate int) model.AudioMetrics {
	m := model.AudioMetrics{SampleRate: sampleRate}
	if len(samples) == 0 || sampleRate <= 0 {
		return m
	}
	m.Duration = float64(len(samples)) / float64(sampleRate)

	var sumSquares float64
	for i, s := range samples {
		sumSquares += s * s
		if i > 0 && (samples[i-1] >= 0) != (s >= 0) {
			m.ZeroCrossings++
		}
	}
	m.Rms = math.Sqrt(sumSquares / float64(len(samples)))
	return m
}
