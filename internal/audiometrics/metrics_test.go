package audiometrics

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func sineWAV(t *testing.T, freq, amp, seconds float64, rate int) []byte {
	t.Helper()
	n := int(seconds * float64(rate))
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	var buf bytes.Buffer
	if err := EncodeWAV(&buf, FloatToPCM16(samples), rate); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	return buf.Bytes()
}

func TestComputeBasics(t *testing.T) {
	m := Compute([]float64{0.5, -0.5, 0.5, -0.5}, 4)
	if m.Duration != 1 {
		t.Fatalf("expected duration 1s, got %f", m.Duration)
	}
	if math.Abs(m.Rms-0.5) > 1e-9 {
		t.Fatalf("expected rms 0.5, got %f", m.Rms)
	}
	if m.ZeroCrossings != 3 {
		t.Fatalf("expected 3 zero crossings, got %d", m.ZeroCrossings)
	}
}

func TestComputeZeroCountsAsPositive(t *testing.T) {
	m := Compute([]float64{0, 0.1, 0, -0.1}, 8000)
	if m.ZeroCrossings != 1 {
		t.Fatalf("expected a single crossing, got %d", m.ZeroCrossings)
	}
}

func TestExtractSine(t *testing.T) {
	buf := sineWAV(t, 200, 0.5, 1, 16000)
	m, err := Extract(buf, WAVDecoder{})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if math.Abs(m.Duration-1) > 1e-6 {
		t.Fatalf("expected 1s duration, got %f", m.Duration)
	}
	if m.SampleRate != 16000 {
		t.Fatalf("expected 16000 Hz, got %d", m.SampleRate)
	}
	wantRms := 0.5 / math.Sqrt2
	if math.Abs(m.Rms-wantRms) > 0.01 {
		t.Fatalf("expected rms near %f, got %f", wantRms, m.Rms)
	}
	if m.ZeroCrossings < 396 || m.ZeroCrossings > 402 {
		t.Fatalf("expected ~400 zero crossings, got %d", m.ZeroCrossings)
	}
}

func TestExtractDecodeError(t *testing.T) {
	_, err := Extract([]byte("definitely not a wav file"), nil)
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}

	_, err = Extract(nil, WAVDecoder{})
	if !errors.As(err, &decErr) {
		t.Fatalf("expected DecodeError for empty buffer, got %v", err)
	}
}

type fixedDecoder struct {
	samples []float64
	rate    int
	err     error
}

func (d fixedDecoder) Decode([]byte) ([]float64, int, error) {
	return d.samples, d.rate, d.err
}

func TestExtractRejectsEmptyDecode(t *testing.T) {
	cases := []fixedDecoder{
		{samples: nil, rate: 16000},
		{samples: []float64{0.1}, rate: 0},
		{err: errors.New("boom")},
	}
	for i, dec := range cases {
		_, err := Extract([]byte{1, 2, 3}, dec)
		var decErr *DecodeError
		if !errors.As(err, &decErr) {
			t.Fatalf("case %d: expected DecodeError, got %v", i, err)
		}
	}
}

func TestFloatToPCM16Clamps(t *testing.T) {
	pcm := FloatToPCM16([]float32{2, -2, 0})
	if pcm[0] != 32767 || pcm[1] != -32767 || pcm[2] != 0 {
		t.Fatalf("unexpected pcm: %v", pcm)
	}
}

func TestWrapPCM16Decodes(t *testing.T) {
	raw := []byte{0x00, 0x40, 0x00, 0xC0, 0x00, 0x40, 0x00, 0xC0, 0x7F}
	wav, err := WrapPCM16(raw, 8000)
	if err != nil {
		t.Fatalf("wrap pcm: %v", err)
	}
	m, err := Extract(wav, WAVDecoder{})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if m.SampleRate != 8000 || m.Duration != 4.0/8000 {
		t.Fatalf("expected 4 samples at 8000Hz, got %+v", m)
	}
	if m.ZeroCrossings != 3 {
		t.Fatalf("expected 3 zero crossings, got %d", m.ZeroCrossings)
	}
}
