// Package portaudio captures microphone audio through PortAudio.
//
// The real capturer is compiled with the portaudio build tag; without it the package
// reports itself unavailable so the default build needs no C libraries.
package portaudio

import (
	"encoding/binary"
	"errors"
)

const (
	// SampleRate is the capture rate expected by the recognizers.
	SampleRate = 16000
	// Channels is mono.
	Channels = 1
	// FramesPerBuffer is the number of frames read per chunk.
	FramesPerBuffer = 1024
)

// ErrUnavailable is returned when the binary was built without PortAudio support.
var ErrUnavailable = errors.New("portaudio capture not compiled in (build with -tags portaudio)")

// pcmBytes lays out samples as little-endian PCM16.
func pcmBytes(pcm []int16) []byte {
	out := make([]byte, len(pcm)*2)
	for i, v := range pcm {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}
