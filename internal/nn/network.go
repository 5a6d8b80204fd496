package nn

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// lossEpsilon bounds predicted probabilities away from 0 and 1 before taking
// logarithms, so cross-entropy never produces an infinite loss.
const lossEpsilon = 1e-15

// Network is a feedforward neural network: one input layer, zero or more
// fully connected hidden layers, one output layer.
//
// The network owns its layers for its entire lifetime. Node values and deltas
// are transient per-pass state; weights and biases persist and accumulate
// updates across training calls. All methods are single-threaded: only one
// forward or backward pass is ever in flight.
type Network struct {
	input  *InputLayer
	hidden []*HiddenLayer
	output *OutputLayer

	// Delta-snapshot diagnostics, off by default. See diagnostics.go.
	tracking bool
	history  []DeltaSnapshot
	epoch    int
}

// New creates a network with hiddenLayers hidden layers, each sized
// max(1, (inputSize+outputSize)*2/3).
//
// rng seeds weight and bias initialization; pass a fixed-seed generator for
// reproducible construction. A nil rng falls back to a time-seeded one.
func New(inputSize, outputSize, hiddenLayers int, rng *rand.Rand) (*Network, error) {
	if inputSize <= 0 || outputSize <= 0 || hiddenLayers < 0 {
		return nil, fmt.Errorf("%w: inputs=%d outputs=%d hidden layers=%d",
			ErrInvalidDimensions, inputSize, outputSize, hiddenLayers)
	}
	return NewWithHiddenSize(inputSize, outputSize, hiddenLayers, hiddenLayerSize(inputSize, outputSize), rng)
}

// NewWithHiddenSize creates a network whose hidden layers all have the given
// explicit width instead of the derived one.
func NewWithHiddenSize(inputSize, outputSize, hiddenLayers, hiddenSize int, rng *rand.Rand) (*Network, error) {
	if inputSize <= 0 || outputSize <= 0 || hiddenLayers < 0 || hiddenSize <= 0 {
		return nil, fmt.Errorf("%w: inputs=%d outputs=%d hidden layers=%d hidden size=%d",
			ErrInvalidDimensions, inputSize, outputSize, hiddenLayers, hiddenSize)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	input, err := NewInputLayer(inputSize)
	if err != nil {
		return nil, err
	}
	output, err := NewOutputLayer(outputSize, rng)
	if err != nil {
		return nil, err
	}
	hidden := make([]*HiddenLayer, 0, hiddenLayers)
	for i := 0; i < hiddenLayers; i++ {
		h, err := NewHiddenLayer(hiddenSize, rng)
		if err != nil {
			return nil, err
		}
		hidden = append(hidden, h)
	}

	n := &Network{input: input, hidden: hidden, output: output}
	if err := n.connect(rng); err != nil {
		return nil, err
	}
	return n, nil
}

// hiddenLayerSize derives the uniform hidden-layer width from the network's
// input and output sizes.
func hiddenLayerSize(inputSize, outputSize int) int {
	size := (inputSize + outputSize) * 2 / 3
	if size < 1 {
		return 1
	}
	return size
}

// connect wires input→hidden[0]→…→hidden[k-1]→output, or input→output
// directly when there are no hidden layers. Edge count between adjacent
// layers is always the product of their node counts.
func (n *Network) connect(rng *rand.Rand) error {
	if n.input == nil || n.output == nil {
		return ErrNotInitialized
	}
	if len(n.hidden) == 0 {
		return n.input.Attach(n.output, rng)
	}
	if err := n.input.Attach(n.hidden[0], rng); err != nil {
		return err
	}
	for i := 0; i < len(n.hidden)-1; i++ {
		if err := n.hidden[i].Attach(n.hidden[i+1], rng); err != nil {
			return err
		}
	}
	return n.hidden[len(n.hidden)-1].Attach(n.output, rng)
}

// nodesAfterInput returns the node slice the input layer feeds into.
func (n *Network) nodesAfterInput() []Node {
	if len(n.hidden) > 0 {
		return n.hidden[0].nodes
	}
	return n.output.nodes
}

// nodesAfterHidden returns the node slice hidden layer i feeds into.
func (n *Network) nodesAfterHidden(i int) []Node {
	if i == len(n.hidden)-1 {
		return n.output.nodes
	}
	return n.hidden[i+1].nodes
}

// Reset zeroes every node's value across all layers. Biases, weights and
// deltas are untouched.
func (n *Network) Reset() {
	if n.input != nil {
		resetValues(n.input.nodes)
	}
	for _, h := range n.hidden {
		resetValues(h.nodes)
	}
	if n.output != nil {
		resetValues(n.output.nodes)
	}
}

// Forward runs one inference pass: reset all values, load inputs into the
// input layer, propagate through the hidden chain, and return the output
// layer's sigmoid-activated values.
//
// Forward never mutates weights or biases; for fixed parameters it is a pure,
// deterministic function of the inputs.
func (n *Network) Forward(inputs []float32) ([]float32, error) {
	if n.input == nil || n.output == nil {
		return nil, ErrNotInitialized
	}

	n.Reset()
	if err := n.input.SetValues(inputs); err != nil {
		return nil, err
	}

	n.input.Forward(n.nodesAfterInput())
	for i, h := range n.hidden {
		h.Forward(n.nodesAfterHidden(i))
	}
	return n.output.Output(), nil
}

// Loss computes the mean binary cross-entropy between the output layer's
// activated values (from the most recent Forward call) and expected.
//
// Each predicted probability is clamped into [ε, 1−ε] before the logarithms,
// so the loss is always finite and non-negative.
func (n *Network) Loss(expected []float32) (float32, error) {
	if len(expected) != n.output.NodeCount() {
		return 0, fmt.Errorf("%w: got %d expected values, output layer has %d nodes",
			ErrSizeMismatch, len(expected), n.output.NodeCount())
	}

	var total float64
	for i, want := range expected {
		actual := math.Min(1.0-lossEpsilon, math.Max(lossEpsilon, float64(n.output.nodes[i].Value)))
		total -= float64(want)*math.Log(actual) + (1.0-float64(want))*math.Log(1.0-actual)
	}
	return float32(total / float64(len(expected))), nil
}

// Backpropagate computes per-node error deltas from the output layer back to
// the input layer, then applies one gradient-descent step to every weight and
// bias. It must follow a Forward call for the same sample.
func (n *Network) Backpropagate(expected []float32, learningRate float32) error {
	if n.input == nil || n.output == nil {
		return ErrNotInitialized
	}
	if len(expected) != n.output.NodeCount() {
		return fmt.Errorf("%w: got %d expected values, output layer has %d nodes",
			ErrSizeMismatch, len(expected), n.output.NodeCount())
	}

	n.output.backward(expected)
	for i := len(n.hidden) - 1; i >= 0; i-- {
		n.hidden[i].backward(n.nodesAfterHidden(i))
	}
	n.input.backward(n.nodesAfterInput())

	n.applyGradients(learningRate)
	return nil
}

// applyGradients mutates every weight and bias using the deltas from the
// backward pass that just completed.
func (n *Network) applyGradients(learningRate float32) {
	n.input.applyGradients(n.nodesAfterInput(), learningRate)
	for i, h := range n.hidden {
		h.applyGradients(n.nodesAfterHidden(i), learningRate)
	}
	n.output.applyGradients(learningRate)
}

// Train runs one pass over data, updating parameters sample by sample.
//
// Each row is split at InputSize() into features and targets. batchSize only
// chunks the iteration for loop bookkeeping: every sample still triggers an
// immediate forward → backpropagate → update cycle, with no gradient
// accumulation or averaging across a chunk. Training with batchSize 1 and
// batchSize len(data) therefore produces identical parameters for the same
// ordered data.
func (n *Network) Train(data [][]float32, batchSize int, learningRate float32) error {
	if batchSize <= 0 {
		return fmt.Errorf("%w: batch size %d", ErrInvalidDimensions, batchSize)
	}
	inputSize := n.InputSize()

	for start := 0; start < len(data); start += batchSize {
		end := start + batchSize
		if end > len(data) {
			end = len(data)
		}
		for s := start; s < end; s++ {
			row := data[s]
			if len(row) < inputSize {
				return fmt.Errorf("%w: row %d has %d columns, need more than %d",
					ErrSizeMismatch, s, len(row), inputSize)
			}
			inputs, targets := row[:inputSize], row[inputSize:]

			if _, err := n.Forward(inputs); err != nil {
				return err
			}
			var loss float32
			if n.tracking {
				var err error
				if loss, err = n.Loss(targets); err != nil {
					return err
				}
			}
			if err := n.Backpropagate(targets, learningRate); err != nil {
				return err
			}
			if n.tracking {
				n.capture(s, loss)
			}
		}
	}
	n.epoch++
	return nil
}

// InputSize returns the input layer's node count, or 0 when unset.
func (n *Network) InputSize() int {
	if n.input == nil {
		return 0
	}
	return n.input.NodeCount()
}

// OutputSize returns the output layer's node count, or 0 when unset.
func (n *Network) OutputSize() int {
	if n.output == nil {
		return 0
	}
	return n.output.NodeCount()
}

// HiddenLayerCount returns the number of hidden layers.
func (n *Network) HiddenLayerCount() int {
	return len(n.hidden)
}
