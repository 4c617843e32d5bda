package transcode_test

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/RyanBlaney/sonido-rt60/algorithms/reverb"
	"github.com/RyanBlaney/sonido-rt60/synth"
	"github.com/RyanBlaney/sonido-rt60/transcode"
)

func TestDecodedWAVEstimatesLikeSource(t *testing.T) {
	x, err := synth.DecayingChirp(synth.DefaultChirpConfig(8000))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "chirp.wav")
	if err := transcode.WriteWAVFile(path, x, 8000); err != nil {
		t.Fatal(err)
	}

	decoder, err := transcode.NewDecoder(nil)
	if err != nil {
		t.Fatal(err)
	}
	audio, err := decoder.DecodeFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if audio.SampleRate != 8000 || len(audio.PCM) != len(x) {
		t.Fatalf("decoded %d samples at %d Hz, want %d at 8000 Hz", len(audio.PCM), audio.SampleRate, len(x))
	}

	mean := 0.0
	for _, v := range audio.PCM {
		mean += v
	}
	mean /= float64(len(audio.PCM))
	if math.Abs(mean) > 1e-3 {
		t.Errorf("decoded mean = %g, want ~0", mean)
	}

	estimator, err := reverb.NewEstimator(reverb.DefaultConfig(8000))
	if err != nil {
		t.Fatal(err)
	}
	direct, err := estimator.Estimate(x, 8000)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := estimator.Estimate(audio.PCM, audio.SampleRate)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(decoded-direct) > 0.05*direct {
		t.Errorf("rt60 from wav = %.4f s, from source = %.4f s", decoded, direct)
	}
}
