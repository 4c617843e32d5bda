package reverb_test

import (
	"fmt"

	"github.com/RyanBlaney/sonido-rt60/algorithms/reverb"
	"github.com/RyanBlaney/sonido-rt60/synth"
)

func ExampleCalculateDecayTime() {
	// Time to fall 60 dB with a 100 ms time constant
	t, err := reverb.CalculateDecayTime(60, 0.1)
	if err != nil {
		panic(err)
	}
	fmt.Printf("%.4f s\n", t)
	// Output: 0.6908 s
}

func ExampleFrame() {
	batch, err := reverb.Frame([]float64{0, 1, 2, 3, 4, 5, 6}, 4, 2)
	if err != nil {
		panic(err)
	}
	for i := range batch.Len() {
		fmt.Println(batch.Row(i))
	}
	// Output:
	// [0 1 2 3]
	// [2 3 4 5]
}

func ExampleEstimator_Estimate() {
	x, err := synth.DecayingChirp(synth.DefaultChirpConfig(8000))
	if err != nil {
		panic(err)
	}

	estimator, err := reverb.NewEstimator(reverb.DefaultConfig(8000))
	if err != nil {
		panic(err)
	}

	rt60, err := estimator.Estimate(x, 8000)
	if err != nil {
		panic(err)
	}
	fmt.Printf("RT60 %.1f s\n", rt60)
	// Output: RT60 0.7 s
}
