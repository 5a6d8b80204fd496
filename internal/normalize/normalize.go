// Package normalize maps raw measurements into the [0, 1] range the network
// is trained on.
//
// The engine only ever sees the Normalizer capability; whether normalization
// happens in-process (MinMax) or by delegating to an external helper process
// (Script) is this package's concern alone.
package normalize

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Normalizer maps a raw feature vector to a bounded [0, 1] vector of the
// same length.
type Normalizer interface {
	Normalize(features []float32) ([]float32, error)
}

// MinMax normalizes by dividing each feature by its configured maximum and
// clamping the result into [0, 1].
type MinMax struct {
	maxValues []float32
}

// NewMinMax creates a MinMax normalizer. Every maximum must be positive.
func NewMinMax(maxValues []float32) (*MinMax, error) {
	if len(maxValues) == 0 {
		return nil, fmt.Errorf("normalize: no max values given")
	}
	for i, m := range maxValues {
		if m <= 0 {
			return nil, fmt.Errorf("normalize: max value %d is %v, must be positive", i, m)
		}
	}
	return &MinMax{maxValues: append([]float32(nil), maxValues...)}, nil
}

// Normalize divides each feature by its maximum and clamps into [0, 1].
func (m *MinMax) Normalize(features []float32) ([]float32, error) {
	if len(features) != len(m.maxValues) {
		return nil, fmt.Errorf("normalize: got %d features, configured for %d", len(features), len(m.maxValues))
	}

	out := make([]float32, len(features))
	for i, v := range features {
		n := v / m.maxValues[i]
		if n < 0 {
			n = 0
		} else if n > 1 {
			n = 1
		}
		out[i] = n
	}
	return out, nil
}

// Script delegates normalization to an external helper invoked as
//
//	python3 <path> --normalize <feature...>
//
// and expects a single comma-separated line of floats on stdout.
type Script struct {
	interpreter string
	path        string
}

// NewScript creates a Script normalizer for the helper at path.
func NewScript(path string) *Script {
	return &Script{interpreter: "python3", path: path}
}

// Normalize runs the helper process and parses its output. Any process
// failure, empty output, or output length mismatch is an error.
func (s *Script) Normalize(features []float32) ([]float32, error) {
	args := []string{s.path, "--normalize"}
	for _, f := range features {
		args = append(args, strconv.FormatFloat(float64(f), 'g', -1, 32))
	}

	out, err := exec.Command(s.interpreter, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("normalize: helper %s failed: %w", s.path, err)
	}

	line := strings.TrimSpace(string(out))
	if line == "" {
		return nil, fmt.Errorf("normalize: helper %s produced no output", s.path)
	}

	cells := strings.Split(line, ",")
	if len(cells) != len(features) {
		return nil, fmt.Errorf("normalize: helper returned %d values for %d features", len(cells), len(features))
	}

	values := make([]float32, len(cells))
	for i, cell := range cells {
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 32)
		if err != nil {
			return nil, fmt.Errorf("normalize: bad helper output %q: %w", cell, err)
		}
		values[i] = float32(v)
	}
	return values, nil
}
