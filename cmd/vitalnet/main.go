// Package main provides the VitalNet CLI.
//
// The train command runs the full cardiovascular-risk demonstration: load the
// normalized datasets, train the network online, evaluate on the test and
// validation sets, show a few individual predictions, and optionally export
// the delta-snapshot history for offline gradient diagnostics.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vitalnet-ml/vitalnet/internal/dataset"
	"github.com/vitalnet-ml/vitalnet/internal/eval"
	"github.com/vitalnet-ml/vitalnet/internal/normalize"
	"github.com/vitalnet-ml/vitalnet/nn"
)

const version = "v0.1.0-dev"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("VitalNet %s\n", version)
	case "train":
		if err := runTrain(os.Args[2:]); err != nil {
			log.Fatal().Err(err).Msg("training run failed")
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("VitalNet - feedforward neural network for cardiovascular risk prediction")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  train      Train and evaluate a model (see train -h)")
	fmt.Println("  version    Show version")
}

type trainConfig struct {
	dataDir      string
	epochs       int
	batchSize    int
	learningRate float64
	hiddenLayers int
	hiddenSize   int
	seed         int64
	deltaCSV     string
	reportEvery  int
	normScript   string
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	cfg := trainConfig{}
	fs.StringVar(&cfg.dataDir, "data", "data", "directory holding training_data.csv, test_data.csv, validation_data.csv")
	fs.IntVar(&cfg.epochs, "epochs", 1000, "number of passes over the training set")
	fs.IntVar(&cfg.batchSize, "batch", 32, "training loop chunk size (updates stay per-sample)")
	fs.Float64Var(&cfg.learningRate, "lr", 0.01, "gradient descent learning rate")
	fs.IntVar(&cfg.hiddenLayers, "hidden", 4, "number of hidden layers")
	fs.IntVar(&cfg.hiddenSize, "hidden-size", 4, "hidden layer width (0 derives it from input/output sizes)")
	fs.Int64Var(&cfg.seed, "seed", 0, "weight initialization seed (0 seeds from the clock)")
	fs.StringVar(&cfg.deltaCSV, "deltas", "", "path for the delta-snapshot CSV export (empty disables tracking)")
	fs.IntVar(&cfg.reportEvery, "report-every", 100, "epochs between training progress reports")
	fs.StringVar(&cfg.normScript, "norm-script", "", "external normalization helper (default: in-process min-max)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	runID := uuid.New().String()
	logger := log.With().Str("run", runID).Logger()

	const (
		inputSize  = 3 // normalized age, weight, height
		outputSize = 1 // CVD probability
	)
	columns := inputSize + outputSize

	// Load the datasets. Training data is mandatory, the rest is optional.
	training, err := dataset.Load(filepath.Join(cfg.dataDir, "training_data.csv"), columns)
	if err != nil {
		return fmt.Errorf("loading training data: %w", err)
	}
	test := loadOptional(logger, filepath.Join(cfg.dataDir, "test_data.csv"), columns)
	validation := loadOptional(logger, filepath.Join(cfg.dataDir, "validation_data.csv"), columns)

	logger.Info().
		Int("training", len(training)).
		Int("test", len(test)).
		Int("validation", len(validation)).
		Msg("datasets loaded")

	seed := cfg.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	var net *nn.Network
	if cfg.hiddenSize > 0 {
		net, err = nn.NewWithHiddenSize(inputSize, outputSize, cfg.hiddenLayers, cfg.hiddenSize, rng)
	} else {
		net, err = nn.New(inputSize, outputSize, cfg.hiddenLayers, rng)
	}
	if err != nil {
		return err
	}

	logger.Info().
		Int("inputs", net.InputSize()).
		Int("outputs", net.OutputSize()).
		Int("hidden_layers", net.HiddenLayerCount()).
		Int64("seed", seed).
		Float64("lr", cfg.learningRate).
		Msg("network created")

	if cfg.deltaCSV != "" {
		net.EnableDeltaTracking()
	}

	start := time.Now()
	for epoch := 0; epoch < cfg.epochs; epoch++ {
		if err := net.Train(training, cfg.batchSize, float32(cfg.learningRate)); err != nil {
			return fmt.Errorf("epoch %d: %w", epoch, err)
		}
		if cfg.reportEvery > 0 && epoch%cfg.reportEvery == 0 {
			loss, err := meanTrainingLoss(net, training)
			if err != nil {
				return err
			}
			logger.Info().Int("epoch", epoch).Float64("mean_loss", loss).Msg("training progress")
		}
	}
	logger.Info().Dur("elapsed", time.Since(start)).Int("epochs", cfg.epochs).Msg("training complete")

	report(logger, net, test, "test")
	report(logger, net, validation, "validation")
	demonstrate(logger, net, test, 8)

	if err := predictExamples(logger, net, cfg.normScript); err != nil {
		return err
	}

	if cfg.deltaCSV != "" {
		if err := net.ExportDeltasToCSV(cfg.deltaCSV); err != nil {
			return err
		}
		logger.Info().Str("path", cfg.deltaCSV).Int("snapshots", len(net.DeltaHistory())).Msg("delta history exported")
	}
	return nil
}

// loadOptional loads a dataset that the run can proceed without.
func loadOptional(logger zerolog.Logger, path string, columns int) [][]float32 {
	rows, err := dataset.Load(path, columns)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("skipping optional dataset")
		return nil
	}
	return rows
}

// meanTrainingLoss samples up to 100 training rows and averages their loss,
// mirroring the periodic progress report of the original demo.
func meanTrainingLoss(net *nn.Network, training [][]float32) (float64, error) {
	n := len(training)
	if n > 100 {
		n = 100
	}
	var total float64
	for _, row := range training[:n] {
		if _, err := net.Forward(row[:net.InputSize()]); err != nil {
			return 0, err
		}
		loss, err := net.Loss(row[net.InputSize():])
		if err != nil {
			return 0, err
		}
		total += float64(loss)
	}
	return total / float64(n), nil
}

// report evaluates the network on one dataset and logs the metrics.
func report(logger zerolog.Logger, net *nn.Network, rows [][]float32, name string) {
	if len(rows) == 0 {
		logger.Warn().Str("set", name).Msg("empty dataset, skipping evaluation")
		return
	}
	r, err := eval.Evaluate(net, rows)
	if err != nil {
		logger.Error().Err(err).Str("set", name).Msg("evaluation failed")
		return
	}
	logger.Info().
		Str("set", name).
		Int("samples", r.Samples).
		Float64("mean_loss", r.MeanLoss).
		Float64("loss_stddev", r.LossStdDev).
		Float64("mean_abs_error", r.MeanAbsError).
		Str("within_margin", fmt.Sprintf("%.1f%%", r.WithinMargin*100)).
		Msg("evaluation")
}

// demonstrate logs predicted-versus-actual for the first few test samples.
func demonstrate(logger zerolog.Logger, net *nn.Network, rows [][]float32, count int) {
	if count > len(rows) {
		count = len(rows)
	}
	for i := 0; i < count; i++ {
		row := rows[i]
		inputs, target := row[:net.InputSize()], row[net.InputSize()]
		out, err := net.Forward(inputs)
		if err != nil {
			logger.Error().Err(err).Int("sample", i).Msg("prediction failed")
			return
		}
		logger.Info().
			Int("sample", i).
			Floats32("inputs", inputs).
			Float32("predicted", out[0]).
			Float32("actual", target).
			Msg("prediction")
	}
}

// predictExamples runs a few raw measurement profiles through the normalizer
// and the trained network.
func predictExamples(logger zerolog.Logger, net *nn.Network, normScript string) error {
	var normalizer normalize.Normalizer
	if normScript != "" {
		normalizer = normalize.NewScript(normScript)
	} else {
		// Typical physiological ranges: 0-100 years, 0-200 kg, 0-250 cm.
		mm, err := normalize.NewMinMax([]float32{100, 200, 250})
		if err != nil {
			return err
		}
		normalizer = mm
	}

	examples := []struct {
		label               string
		age, weight, height float32
	}{
		{"young adult", 25, 70, 175},
		{"older, overweight", 60, 90, 170},
		{"middle-aged", 57, 79, 170},
		{"middle-aged, light", 50, 58, 159},
	}

	for _, ex := range examples {
		normalized, err := normalizer.Normalize([]float32{ex.age, ex.weight, ex.height})
		if err != nil {
			return fmt.Errorf("normalizing example %q: %w", ex.label, err)
		}
		out, err := net.Forward(normalized)
		if err != nil {
			return err
		}
		logger.Info().
			Str("profile", ex.label).
			Float32("age", ex.age).
			Float32("weight_kg", ex.weight).
			Float32("height_cm", ex.height).
			Str("cvd_risk", fmt.Sprintf("%.2f%%", out[0]*100)).
			Msg("example prediction")
	}
	return nil
}
