// Command blindrt60 estimates reverberation time (RT60) blindly from
// reverberant recordings.
//
// Usage:
//
//	blindrt60 [flags] file ...
//
// WAV files are decoded natively; other formats need ffmpeg in PATH.
// Without files, -chirp analyses a synthetic decaying chirp.
//
// Examples:
//
//	blindrt60 speech.wav
//	blindrt60 -fs 16000 -percentile 60 -plot speech.wav
//	blindrt60 -json -reference room_ir.wav speech.flac
//	blindrt60 -chirp 10
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/RyanBlaney/sonido-rt60/algorithms/reverb"
	"github.com/RyanBlaney/sonido-rt60/logging"
	"github.com/RyanBlaney/sonido-rt60/synth"
	"github.com/RyanBlaney/sonido-rt60/transcode"
	"github.com/RyanBlaney/sonido-rt60/visualize"
)

type options struct {
	configPath string
	plot       bool
	jsonOut    bool
	reference  string
	verbose    bool
	logger     string
	logFormat  string
	quality    string
	chirpDecay float64
	bins       int
}

// report is one line of output.
type report struct {
	Source    string         `json:"source"`
	Reference float64        `json:"reference_rt60,omitempty"`
	Result    *reverb.Result `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("blindrt60", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	cfg := reverb.DefaultConfig(reverb.DefaultSampleRate)

	fs.StringVar(&opts.configPath, "config", "", "JSON config file; explicit flags override it")
	fs.BoolVar(&opts.plot, "plot", false, "print a text figure per input")
	fs.BoolVar(&opts.jsonOut, "json", false, "print results as JSON")
	fs.StringVar(&opts.reference, "reference", "", "impulse response file for a Schroeder reference RT60")
	fs.BoolVar(&opts.verbose, "verbose", false, "log solver diagnostics")
	fs.StringVar(&opts.logger, "logger", "default", "log backend: default or logrus")
	fs.StringVar(&opts.logFormat, "log-format", "text", "logrus output format: text or json")
	fs.StringVar(&opts.quality, "quality", "medium", "resampling quality: fast, medium or high")
	fs.Float64Var(&opts.chirpDecay, "chirp", 0, "analyse a synthetic 5 s chirp with this decay rate (1/s)")
	fs.IntVar(&opts.bins, "bins", visualize.DefaultBins, "tau histogram bins for -plot")

	fs.IntVar(&cfg.Fs, "fs", cfg.Fs, "working sample rate in Hz")
	fs.Float64Var(&cfg.FrameLength, "framelen", cfg.FrameLength, "frame length in seconds")
	fs.Float64Var(&cfg.Hop, "hop", cfg.Hop, "hop in seconds (0 = framelen/4)")
	fs.Float64Var(&cfg.Percentile, "percentile", cfg.Percentile, "aggregation percentile (0-100)")
	fs.StringVar(&cfg.PercentileMethod, "percentile-method", cfg.PercentileMethod, "linear, lower, higher, midpoint or nearest")
	fs.Float64Var(&cfg.AInit, "a-init", cfg.AInit, "initial decay parameter")
	fs.Float64Var(&cfg.Sigma2Init, "sigma2-init", cfg.Sigma2Init, "initial variance")
	fs.IntVar(&cfg.MaxIterations, "max-itr", cfg.MaxIterations, "maximum solver iterations")
	fs.Float64Var(&cfg.MaxError, "max-err", cfg.MaxError, "convergence tolerance on |dl/da|")
	fs.IntVar(&cfg.BisectionIterations, "bisected-itr", cfg.BisectionIterations, "bisection iterations before Newton")
	fs.Float64Var(&cfg.DCCutoff, "dc-cutoff", cfg.DCCutoff, "DC blocker cutoff in Hz (0 = off)")
	fs.Var((*rangeFlag)(&cfg.ARange), "a-range", "decay parameter bounds `lo,hi`")
	fs.Var((*rangeFlag)(&cfg.Sigma2Range), "sigma2-range", "variance bounds `lo,hi`")
	fs.Var((*rangeFlag)(&cfg.BisectionRange), "bisection-range", "initial bisection bracket `lo,hi` (0,0 = a-init to a-range max)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: blindrt60 [flags] file ...\n\n")
		fmt.Fprintf(stderr, "Estimates RT60 blindly from reverberant audio.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  blindrt60 speech.wav\n")
		fmt.Fprintf(stderr, "  blindrt60 -fs 16000 -plot speech.wav\n")
		fmt.Fprintf(stderr, "  blindrt60 -chirp 10\n")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	if opts.configPath != "" {
		// Validated by NewEstimator once flags are applied
		loaded, err := reverb.ReadConfig(opts.configPath, reverb.DefaultConfig(reverb.DefaultSampleRate))
		if err != nil {
			return err
		}
		cfg = overrideConfig(fs, loaded, cfg)
	}
	cfg.Verbose = opts.verbose

	logger, err := newLogger(opts, stderr)
	if err != nil {
		return err
	}
	logging.SetGlobalLogger(logger)

	resampler, err := transcode.NewResampler(opts.quality)
	if err != nil {
		return err
	}
	estimator, err := reverb.NewEstimator(cfg, reverb.WithResampler(resampler), reverb.WithLogger(logger))
	if err != nil {
		return err
	}

	var refRT60 float64
	if opts.reference != "" {
		if refRT60, err = referenceRT60(opts.reference, opts.quality); err != nil {
			return err
		}
	}

	inputs, err := collectInputs(fs.Args(), opts)
	if err != nil {
		fs.Usage()
		return err
	}

	reports := make([]report, 0, len(inputs))
	failed := false
	for _, in := range inputs {
		rep := report{Source: in.source, Reference: refRT60}

		audio, err := in.load()
		if err == nil {
			rep.Result, err = estimator.EstimateDetailed(audio.PCM, audio.SampleRate)
		}
		if err != nil {
			logger.Error(err, "estimation failed", logging.Fields{"source": in.source})
			rep.Error = err.Error()
			if !errors.Is(err, reverb.ErrNoConvergedFrames) {
				rep.Result = nil
			}
			failed = true
		}
		reports = append(reports, rep)
	}

	if opts.jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		printTable(stdout, reports)
	}

	if opts.plot {
		for _, rep := range reports {
			if rep.Result == nil {
				continue
			}
			fig, err := visualize.FromResult(rep.Result, opts.bins)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "\n== %s ==\n", rep.Source)
			if err := fig.WriteText(stdout); err != nil {
				return err
			}
		}
	}

	if failed {
		return errors.New("some inputs could not be estimated")
	}
	return nil
}

// overrideConfig starts from the loaded file and re-applies only the flags
// given on the command line.
func overrideConfig(fs *flag.FlagSet, loaded, flags reverb.Config) reverb.Config {
	out := loaded
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "fs":
			out.Fs = flags.Fs
		case "framelen":
			out.FrameLength = flags.FrameLength
		case "hop":
			out.Hop = flags.Hop
		case "percentile":
			out.Percentile = flags.Percentile
		case "percentile-method":
			out.PercentileMethod = flags.PercentileMethod
		case "a-init":
			out.AInit = flags.AInit
		case "sigma2-init":
			out.Sigma2Init = flags.Sigma2Init
		case "max-itr":
			out.MaxIterations = flags.MaxIterations
		case "max-err":
			out.MaxError = flags.MaxError
		case "bisected-itr":
			out.BisectionIterations = flags.BisectionIterations
		case "dc-cutoff":
			out.DCCutoff = flags.DCCutoff
		case "a-range":
			out.ARange = flags.ARange
		case "sigma2-range":
			out.Sigma2Range = flags.Sigma2Range
		case "bisection-range":
			out.BisectionRange = flags.BisectionRange
		}
	})
	return out
}

func newLogger(opts options, w io.Writer) (logging.Logger, error) {
	var logger logging.Logger
	switch opts.logger {
	case "default":
		logger = logging.NewWriterLogger(w)
	case "logrus":
		switch opts.logFormat {
		case "text", "json":
			logger = logging.NewLogrusWriterLogger(w, opts.logFormat == "json")
		default:
			return nil, fmt.Errorf("unknown log format %q", opts.logFormat)
		}
	default:
		return nil, fmt.Errorf("unknown logger %q", opts.logger)
	}

	if opts.verbose {
		logger.SetLevel(logging.DebugLevel)
	} else {
		logger.SetLevel(logging.WarnLevel)
	}
	return logger, nil
}

type input struct {
	source string
	load   func() (*transcode.AudioData, error)
}

func collectInputs(paths []string, opts options) ([]input, error) {
	var inputs []input

	if opts.chirpDecay > 0 {
		inputs = append(inputs, input{
			source: fmt.Sprintf("chirp(decay=%g)", opts.chirpDecay),
			load: func() (*transcode.AudioData, error) {
				cfg := synth.DefaultChirpConfig(8000)
				cfg.DecayRate = opts.chirpDecay
				pcm, err := synth.DecayingChirp(cfg)
				if err != nil {
					return nil, err
				}
				return &transcode.AudioData{PCM: pcm, SampleRate: cfg.SampleRate, Channels: 1}, nil
			},
		})
	}

	if len(paths) > 0 {
		decoder, err := transcode.NewDecoder(&transcode.DecoderConfig{
			ResampleQuality: opts.quality,
			FFmpegPath:      "ffmpeg",
			FFprobePath:     "ffprobe",
			Timeout:         transcode.DefaultDecoderConfig().Timeout,
		})
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			inputs = append(inputs, input{
				source: path,
				load:   func() (*transcode.AudioData, error) { return decoder.DecodeFile(path) },
			})
		}
	}

	if len(inputs) == 0 {
		return nil, errors.New("no input files")
	}
	return inputs, nil
}

func referenceRT60(path, quality string) (float64, error) {
	config := transcode.DefaultDecoderConfig()
	config.ResampleQuality = quality
	decoder, err := transcode.NewDecoder(config)
	if err != nil {
		return 0, err
	}
	audio, err := decoder.DecodeFile(path)
	if err != nil {
		return 0, err
	}
	return reverb.ReferenceRT60(audio.PCM, audio.SampleRate)
}

func printTable(w io.Writer, reports []report) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "SOURCE\tRT60 (s)\tTAU (s)\tCONVERGED\tITERATIONS\tREFERENCE (s)")
	for _, rep := range reports {
		ref := "-"
		if rep.Reference > 0 {
			ref = fmt.Sprintf("%.3f", rep.Reference)
		}
		if rep.Result == nil || rep.Error != "" {
			fmt.Fprintf(tw, "%s\terror: %s\t\t\t\t%s\n", rep.Source, rep.Error, ref)
			continue
		}
		r := rep.Result
		fmt.Fprintf(tw, "%s\t%.3f\t%.4f\t%d/%d\t%d\t%s\n",
			rep.Source, r.RT60, r.Tau, r.ConvergedFrames, r.Frames, r.Iterations, ref)
	}
}
