package transcode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/mjibson/go-dsp/wav"
	"gonum.org/v1/gonum/floats"
)

// ErrNoSamples is returned when a stream decodes to zero samples.
var ErrNoSamples = errors.New("transcode: no audio samples decoded")

// ReadWAV decodes a PCM or float WAV stream and mixes it down to mono.
// Samples are scaled to [-1, 1).
func ReadWAV(r io.Reader) (*AudioData, error) {
	w, err := wav.New(r)
	if err != nil {
		return nil, fmt.Errorf("transcode: read wav header: %w", err)
	}
	if w.NumChannels == 0 || w.SampleRate == 0 {
		return nil, fmt.Errorf("transcode: wav reports %d channels at %d Hz", w.NumChannels, w.SampleRate)
	}
	if w.Samples == 0 {
		return nil, ErrNoSamples
	}

	// Samples counts every channel
	raw, err := w.ReadSamples(w.Samples)
	if err != nil {
		return nil, fmt.Errorf("transcode: read wav samples: %w", err)
	}
	interleaved, err := toFloat64(raw)
	if err != nil {
		return nil, err
	}
	if len(interleaved) == 0 {
		return nil, ErrNoSamples
	}

	channels := int(w.NumChannels)
	pcm := mixDown(interleaved, channels)

	return &AudioData{
		PCM:        pcm,
		SampleRate: int(w.SampleRate),
		Channels:   1,
		Duration:   time.Duration(len(pcm)) * time.Second / time.Duration(w.SampleRate),
	}, nil
}

// ReadWAVFile opens path and decodes it with ReadWAV.
func ReadWAVFile(path string) (*AudioData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("transcode: %w", err)
	}
	defer f.Close()

	audio, err := ReadWAV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	audio.Source = path
	return audio, nil
}

// toFloat64 scales raw WAV samples to [-1, 1). 8-bit PCM is unsigned with
// its zero at 128, 16-bit PCM is signed, float data passes through.
func toFloat64(raw any) ([]float64, error) {
	switch data := raw.(type) {
	case []uint8:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = (float64(v) - 128) / 128
		}
		return out, nil
	case []int16:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v) / 32768
		}
		return out, nil
	case []float32:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("transcode: unsupported wav sample type %T", raw)
	}
}

// mixDown averages interleaved channels into one. A trailing partial
// sample frame is dropped.
func mixDown(interleaved []float64, channels int) []float64 {
	frames := len(interleaved) / channels
	out := make([]float64, frames)
	for i := range frames {
		out[i] = floats.Sum(interleaved[i*channels:(i+1)*channels]) / float64(channels)
	}
	return out
}

// WriteWAV encodes mono pcm as a 16-bit PCM WAV stream. Samples outside
// [-1, 1] are clipped.
func WriteWAV(w io.Writer, pcm []float64, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("transcode: write wav: sample rate must be > 0: %d", sampleRate)
	}

	samples := make([]int16, len(pcm))
	for i, v := range pcm {
		samples[i] = int16(math.Round(math.Max(-1, math.Min(v, 32767.0/32768)) * 32768))
	}

	dataSize := uint32(2 * len(samples))
	header := struct {
		Riff          [4]byte
		ChunkSize     uint32
		Wave          [4]byte
		Fmt           [4]byte
		FmtSize       uint32
		AudioFormat   uint16
		NumChannels   uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
		Data          [4]byte
		DataSize      uint32
	}{
		Riff:          [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Wave:          [4]byte{'W', 'A', 'V', 'E'},
		Fmt:           [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1,
		NumChannels:   1,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate) * 2,
		BlockAlign:    2,
		BitsPerSample: 16,
		Data:          [4]byte{'d', 'a', 't', 'a'},
		DataSize:      dataSize,
	}

	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("transcode: write wav header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, samples); err != nil {
		return fmt.Errorf("transcode: write wav samples: %w", err)
	}
	return nil
}

// WriteWAVFile writes pcm to path with WriteWAV.
func WriteWAVFile(path string, pcm []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("transcode: %w", err)
	}
	if err := WriteWAV(f, pcm, sampleRate); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
