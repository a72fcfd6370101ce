package audiometrics

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVDecoder decodes RIFF/WAVE PCM buffers of any bit depth and channel count.
type WAVDecoder struct{}

// Decode implements Decoder.
func (WAVDecoder) Decode(buf []byte) ([]float64, int, error) {
	d := wav.NewDecoder(bytes.NewReader(buf))
	if !d.IsValidFile() {
		return nil, 0, errors.New("not a valid WAV file")
	}
	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read PCM data: %w", err)
	}
	if pcm == nil || pcm.Format == nil {
		return nil, 0, errors.New("missing PCM format")
	}
	depth := pcm.SourceBitDepth
	if depth <= 0 {
		depth = int(d.BitDepth)
	}
	if depth <= 0 || depth > 32 {
		return nil, 0, fmt.Errorf("unsupported bit depth %d", depth)
	}
	return firstChannel(pcm, depth), pcm.Format.SampleRate, nil
}

func firstChannel(pcm *audio.IntBuffer, depth int) []float64 {
	channels := pcm.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	scale := float64(int64(1) << (depth - 1))
	samples := make([]float64, 0, len(pcm.Data)/channels)
	for i := 0; i < len(pcm.Data); i += channels {
		v := float64(pcm.Data[i])
		if depth == 8 {
			// 8-bit WAV is unsigned.
			v -= 128
		}
		samples = append(samples, v/scale)
	}
	return samples
}

// EncodeWAV writes pcm as a 16-bit mono WAV stream.
func EncodeWAV(w io.Writer, pcm []int16, sampleRate int) error {
	dataSize := len(pcm) * 2
	header := []any{
		[]byte("RIFF"),
		uint32(36 + dataSize),
		[]byte("WAVE"),
		[]byte("fmt "),
		uint32(16),             // fmt chunk size
		uint16(1),              // PCM
		uint16(1),              // mono
		uint32(sampleRate),     // sample rate
		uint32(sampleRate * 2), // byte rate
		uint16(2),              // block align
		uint16(16),             // bits per sample
		[]byte("data"),
		uint32(dataSize),
	}
	for _, field := range header {
		if err := binary.Write(w, binary.LittleEndian, field); err != nil {
			return err
		}
	}
	return binary.Write(w, binary.LittleEndian, pcm)
}

// WrapPCM16 turns raw little-endian PCM16 mono bytes into a WAV stream.
// A trailing odd byte is dropped.
func WrapPCM16(raw []byte, sampleRate int) ([]byte, error) {
	pcm := make([]int16, len(raw)/2)
	for i := range pcm {
		pcm[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	var out bytes.Buffer
	if err := EncodeWAV(&out, pcm, sampleRate); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// FloatToPCM16 clamps float samples to [-1, 1] and converts them to signed 16-bit PCM.
func FloatToPCM16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		out[i] = int16(s * 32767)
	}
	return out
}
