// Package eval measures a trained network's performance over a labeled
// dataset: mean binary cross-entropy, mean absolute error, and the fraction
// of predictions landing within an acceptance margin of the target.
package eval

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/vitalnet-ml/vitalnet/internal/nn"
)

// Margin is the acceptable absolute prediction error: a sample counts as
// "within margin" when |predicted − target| ≤ Margin.
const Margin = 0.1

// Report summarizes a network's behavior over one dataset.
type Report struct {
	Samples      int
	MeanLoss     float64
	LossStdDev   float64
	MeanAbsError float64
	WithinMargin float64 // fraction of samples within Margin, in [0, 1]
}

// Evaluate runs every row through the network and aggregates the metrics.
// Rows are feature columns followed by a single target column; evaluation
// never mutates the network's parameters.
func Evaluate(net *nn.Network, rows [][]float32) (Report, error) {
	if len(rows) == 0 {
		return Report{}, fmt.Errorf("eval: empty dataset")
	}
	inputSize := net.InputSize()

	losses := make([]float64, 0, len(rows))
	absErrors := make([]float64, 0, len(rows))
	within := 0

	for i, row := range rows {
		if len(row) != inputSize+1 {
			return Report{}, fmt.Errorf("eval: row %d has %d columns, want %d", i, len(row), inputSize+1)
		}
		inputs, target := row[:inputSize], row[inputSize]

		out, err := net.Forward(inputs)
		if err != nil {
			return Report{}, err
		}
		loss, err := net.Loss([]float32{target})
		if err != nil {
			return Report{}, err
		}

		absErr := math.Abs(float64(out[0] - target))
		losses = append(losses, float64(loss))
		absErrors = append(absErrors, absErr)
		if absErr <= Margin {
			within++
		}
	}

	return Report{
		Samples:      len(rows),
		MeanLoss:     stat.Mean(losses, nil),
		LossStdDev:   stat.StdDev(losses, nil),
		MeanAbsError: stat.Mean(absErrors, nil),
		WithinMargin: float64(within) / float64(len(rows)),
	}, nil
}
