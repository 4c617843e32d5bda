package transcode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"
)

// makeWAV builds a WAV stream from interleaved samples. The sample slice
// type picks the encoding: []uint8 and []int16 are PCM, []float32 is IEEE float.
func makeWAV(t *testing.T, sampleRate, channels int, interleaved any) []byte {
	t.Helper()

	var format, bits uint16
	var count int
	switch data := interleaved.(type) {
	case []uint8:
		format, bits, count = 1, 8, len(data)
	case []int16:
		format, bits, count = 1, 16, len(data)
	case []float32:
		format, bits, count = 3, 32, len(data)
	default:
		t.Fatalf("unsupported sample type %T", interleaved)
	}

	var buf bytes.Buffer
	bytesPerSample := int(bits / 8)
	dataSize := uint32(count * bytesPerSample)
	blockAlign := uint16(channels * bytesPerSample)

	write := func(v any) {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatal(err)
		}
	}

	buf.WriteString("RIFF")
	write(uint32(36 + dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	write(uint32(16))
	write(format)
	write(uint16(channels))
	write(uint32(sampleRate))
	write(uint32(sampleRate) * uint32(blockAlign))
	write(blockAlign)
	write(bits)
	buf.WriteString("data")
	write(dataSize)
	write(interleaved)

	return buf.Bytes()
}

func TestReadWAVMixesDownToMono(t *testing.T) {
	// Stereo frames (L, R)
	data := makeWAV(t, 8000, 2, []int16{16384, 0, -16384, -16384, 0, 16384, 8192, 8192})

	audio, err := ReadWAV(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	if audio.SampleRate != 8000 || audio.Channels != 1 {
		t.Errorf("got %d Hz, %d channels; want 8000 Hz mono", audio.SampleRate, audio.Channels)
	}

	want := []float64{0.25, -0.5, 0.25, 0.25}
	if len(audio.PCM) != len(want) {
		t.Fatalf("got %d samples, want %d", len(audio.PCM), len(want))
	}
	for i := range want {
		if math.Abs(audio.PCM[i]-want[i]) > 1e-3 {
			t.Errorf("sample %d = %g, want %g", i, audio.PCM[i], want[i])
		}
	}
	if audio.Duration != 500*time.Microsecond {
		t.Errorf("duration = %v, want 500µs", audio.Duration)
	}
}

func TestReadWAVSampleFormats(t *testing.T) {
	tests := []struct {
		name string
		data any
		want []float64
	}{
		{"8-bit unsigned", []uint8{128, 192, 64, 0, 255}, []float64{0, 0.5, -0.5, -1, 127.0 / 128}},
		{"16-bit signed", []int16{0, 16384, -16384, -32768, 32767}, []float64{0, 0.5, -0.5, -1, 32767.0 / 32768}},
		{"32-bit float", []float32{0, 0.5, -0.5, -1, 0.25}, []float64{0, 0.5, -0.5, -1, 0.25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			audio, err := ReadWAV(bytes.NewReader(makeWAV(t, 8000, 1, tt.data)))
			if err != nil {
				t.Fatal(err)
			}
			if len(audio.PCM) != len(tt.want) {
				t.Fatalf("got %d samples, want %d", len(audio.PCM), len(tt.want))
			}
			for i, want := range tt.want {
				if math.Abs(audio.PCM[i]-want) > 1e-9 {
					t.Errorf("sample %d = %g, want %g", i, audio.PCM[i], want)
				}
			}
		})
	}
}

func TestReadWAVSilenceHasNoOffset(t *testing.T) {
	for _, data := range []any{make([]int16, 64), bytes.Repeat([]byte{128}, 64)} {
		audio, err := ReadWAV(bytes.NewReader(makeWAV(t, 8000, 1, data)))
		if err != nil {
			t.Fatal(err)
		}
		for i, v := range audio.PCM {
			if v != 0 {
				t.Fatalf("%T: sample %d = %g, want 0", data, i, v)
			}
		}
	}
}

func TestWriteWAVRoundTrip(t *testing.T) {
	pcm := []float64{0, 0.5, -0.5, 1, -1, 2, -2, 0.123}
	var buf bytes.Buffer
	if err := WriteWAV(&buf, pcm, 16000); err != nil {
		t.Fatal(err)
	}

	audio, err := ReadWAV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if audio.SampleRate != 16000 || len(audio.PCM) != len(pcm) {
		t.Fatalf("got %d samples at %d Hz", len(audio.PCM), audio.SampleRate)
	}

	want := []float64{0, 0.5, -0.5, 32767.0 / 32768, -1, 32767.0 / 32768, -1, 0.123}
	for i := range want {
		if math.Abs(audio.PCM[i]-want[i]) > 1.0/32768 {
			t.Errorf("sample %d = %g, want %g", i, audio.PCM[i], want[i])
		}
	}

	if err := WriteWAV(&buf, pcm, 0); err == nil {
		t.Error("expected error for zero sample rate")
	}
}

func TestReadWAVRejectsGarbage(t *testing.T) {
	if _, err := ReadWAV(bytes.NewReader([]byte("not a wav file at all, just text"))); err == nil {
		t.Error("expected error for non-wav input")
	}
}

func TestResamplerRatios(t *testing.T) {
	r, err := NewResampler("medium")
	if err != nil {
		t.Fatal(err)
	}

	in := make([]float64, 16000)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * 440 * float64(i) / 16000)
	}

	tests := []struct {
		name     string
		from, to int
		wantLen  int
	}{
		{"down2x", 16000, 8000, 8000},
		{"up2x", 4000, 8000, 32000},
		{"same", 8000, 8000, 16000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Resample(in, tt.from, tt.to)
			if err != nil {
				t.Fatal(err)
			}
			if diff := len(out) - tt.wantLen; diff < -1 || diff > 1 {
				t.Errorf("output length = %d, want %d±1", len(out), tt.wantLen)
			}
		})
	}
}

func TestResamplerSameRateCopies(t *testing.T) {
	r, _ := NewResampler("")
	in := []float64{1, 2, 3}

	out, err := r.Resample(in, 8000, 8000)
	if err != nil {
		t.Fatal(err)
	}
	out[0] = 42
	if in[0] != 1 {
		t.Error("same-rate resample aliases its input")
	}
}

func TestResamplerErrors(t *testing.T) {
	if _, err := NewResampler("ultra"); !errors.Is(err, ErrInvalidQuality) {
		t.Errorf("NewResampler(ultra) error = %v, want ErrInvalidQuality", err)
	}

	r, _ := NewResampler("fast")
	if _, err := r.Resample([]float64{1}, 0, 8000); err == nil {
		t.Error("expected error for zero input rate")
	}
}

func TestParseFFprobeOutput(t *testing.T) {
	out := []byte(`{"streams":[{"codec_type":"audio","codec_name":"flac","sample_rate":"44100",
		"channels":2,"duration":"3.5","bit_rate":"900000","codec_long_name":"FLAC"}]}`)

	meta, err := parseFFprobeOutput(out)
	if err != nil {
		t.Fatal(err)
	}
	if meta.SampleRate != 44100 || meta.Channels != 2 || meta.Codec != "flac" || meta.Duration != 3.5 {
		t.Errorf("unexpected metadata %+v", meta)
	}

	if _, err := parseFFprobeOutput([]byte(`{"streams":[]}`)); err == nil {
		t.Error("expected error for missing audio stream")
	}
	if _, err := parseFFprobeOutput([]byte(`{"streams":[{"codec_type":"video"}]}`)); err == nil {
		t.Error("expected error for video stream")
	}
}

func TestBuildFFmpegArgs(t *testing.T) {
	cfg := DefaultDecoderConfig()
	cfg.ResampleQuality = "high"
	cfg.MaxDuration = 2 * time.Second
	d, err := NewDecoder(cfg)
	if err != nil {
		t.Fatal(err)
	}

	args := d.buildFFmpegArgs(&AudioMetadata{SampleRate: 44100}, 8000)
	joined := ""
	for _, a := range args {
		joined += a + " "
	}

	for _, want := range []string{"-f f64le", "-ac 1", "-ar 8000", "precision=28", "-t 2.00"} {
		if !bytes.Contains([]byte(joined), []byte(want)) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}
}

func TestBytesToFloat64(t *testing.T) {
	buf := make([]byte, 20) // two samples and a 4-byte tail
	binary.LittleEndian.PutUint64(buf[0:], math.Float64bits(0.5))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(-1))

	got := bytesToFloat64(buf)
	if len(got) != 2 || got[0] != 0.5 || got[1] != -1 {
		t.Errorf("bytesToFloat64 = %v, want [0.5 -1]", got)
	}
}

func TestValidateConfig(t *testing.T) {
	cfg := DefaultDecoderConfig()
	cfg.TargetSampleRate = -1
	if err := ValidateConfig(cfg); err == nil {
		t.Error("expected error for negative target rate")
	}
}
