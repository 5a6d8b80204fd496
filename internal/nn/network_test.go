package nn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewValidatesDimensions tests the construction-time contract checks.
func TestNewValidatesDimensions(t *testing.T) {
	cases := []struct {
		name                    string
		inputs, outputs, hidden int
	}{
		{"zero inputs", 0, 1, 1},
		{"negative inputs", -3, 1, 1},
		{"zero outputs", 3, 0, 1},
		{"negative hidden count", 3, 1, -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.inputs, tc.outputs, tc.hidden, testRNG())
			assert.ErrorIs(t, err, ErrInvalidDimensions)
		})
	}

	_, err := NewWithHiddenSize(3, 1, 2, 0, testRNG())
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

// TestDerivedHiddenLayerSize verifies the max(1, (in+out)*2/3) width rule.
func TestDerivedHiddenLayerSize(t *testing.T) {
	cases := []struct {
		inputs, outputs, want int
	}{
		{3, 1, 2},
		{1, 1, 1}, // 2*2/3 truncates to 1
		{9, 3, 8},
		{784, 10, 529},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.want, hiddenLayerSize(tc.inputs, tc.outputs),
			"hiddenLayerSize(%d, %d)", tc.inputs, tc.outputs)
	}

	net, err := New(3, 1, 2, testRNG())
	require.NoError(t, err)
	for _, h := range net.hidden {
		assert.Equal(t, 2, h.NodeCount())
	}
}

// TestNetworkWiring verifies the full-connectivity invariant between every
// pair of adjacent layers, including the no-hidden direct wiring.
func TestNetworkWiring(t *testing.T) {
	net, err := NewWithHiddenSize(3, 2, 2, 4, testRNG())
	require.NoError(t, err)

	assert.Len(t, net.input.edges, 3*4)
	assert.Len(t, net.hidden[0].edges, 4*4)
	assert.Len(t, net.hidden[1].edges, 4*2)

	direct, err := New(3, 2, 0, testRNG())
	require.NoError(t, err)
	assert.Len(t, direct.input.edges, 3*2)
	assert.Equal(t, 0, direct.HiddenLayerCount())
}

// TestAccessors tests the size accessors.
func TestAccessors(t *testing.T) {
	net, err := NewWithHiddenSize(5, 2, 3, 7, testRNG())
	require.NoError(t, err)

	assert.Equal(t, 5, net.InputSize())
	assert.Equal(t, 2, net.OutputSize())
	assert.Equal(t, 3, net.HiddenLayerCount())
}

// TestForwardRejectsWrongInputLength tests the input-length contract.
func TestForwardRejectsWrongInputLength(t *testing.T) {
	net, err := New(3, 1, 1, testRNG())
	require.NoError(t, err)

	_, err = net.Forward([]float32{0.1, 0.2})
	assert.ErrorIs(t, err, ErrSizeMismatch)

	_, err = net.Forward([]float32{0.1, 0.2, 0.3, 0.4})
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

// TestForwardOnUninitializedNetwork verifies a missing layer fails fast.
func TestForwardOnUninitializedNetwork(t *testing.T) {
	var net Network
	_, err := net.Forward([]float32{1})
	assert.ErrorIs(t, err, ErrNotInitialized)
}

// TestForwardOutputsInOpenUnitInterval verifies every output is sigmoid-squashed.
func TestForwardOutputsInOpenUnitInterval(t *testing.T) {
	net, err := New(4, 3, 2, testRNG())
	require.NoError(t, err)

	out, err := net.Forward([]float32{0.9, 0.1, 0.5, 0.3})
	require.NoError(t, err)
	require.Len(t, out, 3)

	for i, v := range out {
		assert.Greaterf(t, v, float32(0), "output %d", i)
		assert.Lessf(t, v, float32(1), "output %d", i)
	}
}

// TestForwardIsIdempotent verifies two consecutive forward passes with the
// same input produce bit-identical output: no state beyond weights and biases
// survives a pass.
func TestForwardIsIdempotent(t *testing.T) {
	net, err := New(3, 2, 2, testRNG())
	require.NoError(t, err)

	in := []float32{0.2, 0.7, 0.4}
	first, err := net.Forward(in)
	require.NoError(t, err)
	second, err := net.Forward(in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// TestForwardFixedWeights checks the closed-form value on a minimal network:
// sigmoid(0.1×1 + −0.1×1 + 0) = sigmoid(0) = 0.5 exactly.
func TestForwardFixedWeights(t *testing.T) {
	net := newFixedNet(t)

	out, err := net.Forward([]float32{1, 1})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, float32(0.5), out[0])
}

// newFixedNet builds a 2-input, 1-output, no-hidden network with weights
// [0.1, −0.1] and zero output bias.
func newFixedNet(t *testing.T) *Network {
	t.Helper()

	net, err := New(2, 1, 0, testRNG())
	require.NoError(t, err)
	require.Len(t, net.input.edges, 2)

	net.input.edges[0].Weight = 0.1
	net.input.edges[1].Weight = -0.1
	net.output.nodes[0].Bias = 0
	return net
}

// TestLossRejectsWrongLength tests the expected-output length contract.
func TestLossRejectsWrongLength(t *testing.T) {
	net, err := New(2, 1, 0, testRNG())
	require.NoError(t, err)

	_, err = net.Forward([]float32{1, 1})
	require.NoError(t, err)

	_, err = net.Loss([]float32{1, 0})
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

// TestLossNonNegativeAndBounded verifies cross-entropy stays finite and ≥ 0
// even when the prediction saturates.
func TestLossNonNegativeAndBounded(t *testing.T) {
	net, err := New(2, 1, 0, testRNG())
	require.NoError(t, err)

	// Saturate the output at (effectively) 1.0 in float32.
	net.output.nodes[0].Value = 1.0
	loss, err := net.Loss([]float32{0})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, loss, float32(0))
	assert.False(t, math.IsNaN(float64(loss)), "loss is NaN")
	assert.False(t, math.IsInf(float64(loss), 0), "loss is infinite")
	assert.Less(t, loss, float32(40), "epsilon clamp should bound the loss near -log(1e-15)")

	// A perfect prediction costs (almost) nothing.
	net.output.nodes[0].Value = 1.0
	loss, err = net.Loss([]float32{1})
	require.NoError(t, err)
	assert.Less(t, loss, float32(1e-6))
}

// TestLossAgainstHandComputedValue pins the mean BCE formula.
func TestLossAgainstHandComputedValue(t *testing.T) {
	net, err := New(1, 2, 0, testRNG())
	require.NoError(t, err)

	net.output.nodes[0].Value = 0.8
	net.output.nodes[1].Value = 0.3

	loss, err := net.Loss([]float32{1, 0})
	require.NoError(t, err)

	// −(ln 0.8 + ln 0.7) / 2
	assert.InDelta(t, 0.28990, float64(loss), 1e-4)
}

// TestBackpropagateRejectsWrongLength verifies the expected-length contract
// holds for the backward pass too.
func TestBackpropagateRejectsWrongLength(t *testing.T) {
	net, err := New(2, 1, 0, testRNG())
	require.NoError(t, err)

	_, err = net.Forward([]float32{1, 1})
	require.NoError(t, err)

	err = net.Backpropagate([]float32{1, 0}, 0.01)
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

// TestTrainingReducesLoss verifies repeated single-sample updates produce a
// non-increasing loss sequence on the minimal fixed network.
func TestTrainingReducesLoss(t *testing.T) {
	net := newFixedNet(t)

	inputs := []float32{1, 1}
	target := []float32{1}

	prev := float32(0)
	for i := 0; i < 50; i++ {
		_, err := net.Forward(inputs)
		require.NoError(t, err)
		loss, err := net.Loss(target)
		require.NoError(t, err)

		if i > 0 {
			assert.LessOrEqualf(t, loss, prev, "loss increased at step %d", i)
		}
		prev = loss

		require.NoError(t, net.Backpropagate(target, 0.1))
	}
}

// TestBackpropagateMovesOutputTowardTarget checks the sign of the update on a
// deeper network.
func TestBackpropagateMovesOutputTowardTarget(t *testing.T) {
	net, err := NewWithHiddenSize(3, 1, 2, 4, testRNG())
	require.NoError(t, err)

	inputs := []float32{0.3, 0.6, 0.9}
	target := []float32{1}

	before, err := net.Forward(inputs)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		_, err = net.Forward(inputs)
		require.NoError(t, err)
		require.NoError(t, net.Backpropagate(target, 0.05))
	}
	after, err := net.Forward(inputs)
	require.NoError(t, err)

	assert.Greater(t, after[0], before[0])
}

// TestTrainValidatesBatchSize verifies non-positive chunk sizes fail fast.
func TestTrainValidatesBatchSize(t *testing.T) {
	net, err := New(2, 1, 0, testRNG())
	require.NoError(t, err)

	err = net.Train([][]float32{{1, 1, 1}}, 0, 0.01)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

// TestTrainRejectsShortRows verifies a row without room for features fails.
func TestTrainRejectsShortRows(t *testing.T) {
	net, err := New(3, 1, 0, testRNG())
	require.NoError(t, err)

	err = net.Train([][]float32{{0.1, 0.2}}, 4, 0.01)
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

// TestTrainBatchSizeDoesNotChangeDynamics verifies the defining online-SGD
// property: batchSize only chunks the loop, so batchSize 1 and batchSize
// len(data) yield identical parameters after one pass over the same ordered
// data.
func TestTrainBatchSizeDoesNotChangeDynamics(t *testing.T) {
	data := [][]float32{
		{0.1, 0.9, 0.2, 1},
		{0.8, 0.3, 0.5, 0},
		{0.4, 0.4, 0.7, 1},
		{0.9, 0.1, 0.1, 0},
		{0.2, 0.6, 0.6, 1},
	}

	a, err := NewWithHiddenSize(3, 1, 2, 4, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	b, err := NewWithHiddenSize(3, 1, 2, 4, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	require.NoError(t, a.Train(data, 1, 0.01))
	require.NoError(t, b.Train(data, len(data), 0.01))

	assert.Equal(t, a.input.edges, b.input.edges)
	for i := range a.hidden {
		assert.Equal(t, a.hidden[i].edges, b.hidden[i].edges)
		assert.Equal(t, a.hidden[i].nodes, b.hidden[i].nodes)
	}
	assert.Equal(t, a.output.nodes, b.output.nodes)
}

// TestSameSeedSameNetwork verifies construction is reproducible from a seed.
func TestSameSeedSameNetwork(t *testing.T) {
	a, err := New(4, 2, 2, rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	b, err := New(4, 2, 2, rand.New(rand.NewSource(99)))
	require.NoError(t, err)

	in := []float32{0.1, 0.2, 0.3, 0.4}
	outA, err := a.Forward(in)
	require.NoError(t, err)
	outB, err := b.Forward(in)
	require.NoError(t, err)

	assert.Equal(t, outA, outB)
}

// TestForwardDoesNotMutateParameters verifies inference is read-only with
// respect to weights and biases.
func TestForwardDoesNotMutateParameters(t *testing.T) {
	net, err := NewWithHiddenSize(3, 1, 1, 4, testRNG())
	require.NoError(t, err)

	weightsBefore := append([]Edge(nil), net.input.edges...)
	biasBefore := net.output.nodes[0].Bias

	_, err = net.Forward([]float32{0.5, 0.5, 0.5})
	require.NoError(t, err)

	assert.Equal(t, weightsBefore, net.input.edges)
	assert.Equal(t, biasBefore, net.output.nodes[0].Bias)
}
