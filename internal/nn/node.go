package nn

import "math"

// leakySlope is the negative-side slope of the leaky ReLU activation.
const leakySlope = 0.01

// Node is a single scalar computation unit.
//
// Value holds the current activation (or pre-activation sum, depending on
// where in the forward pass the node is), Bias is the trainable offset added
// before activation, and Delta is the error signal written by the most recent
// backward pass.
//
// Nodes are stored contiguously per layer and addressed by index; edges never
// hold node pointers.
type Node struct {
	Value float32
	Bias  float32
	Delta float32
}

// Edge is a directed, weighted connection between a node in one layer and a
// node in the next. Source indexes into the owning layer's node slice, Target
// into the next layer's node slice.
type Edge struct {
	Source int
	Target int
	Weight float32
}

// Sigmoid squashes the node's value into (0, 1): v ← 1/(1+e^-v).
func (n *Node) Sigmoid() {
	n.Value = 1.0 / (1.0 + float32(math.Exp(float64(-n.Value))))
}

// SigmoidDerivative returns v·(1−v) using the already-activated value.
// This is the standard simplification for a sigmoid output: by the time the
// derivative is needed, Value holds σ(x), not x.
func (n *Node) SigmoidDerivative() float32 {
	return n.Value * (1 - n.Value)
}

// LeakyReLU applies v ← v if v > 0, else 0.01·v, in place.
func (n *Node) LeakyReLU() {
	if n.Value <= 0 {
		n.Value *= leakySlope
	}
}

// LeakyReLUDerivative returns 1 if the stored value is positive, else 0.01.
//
// The stored value is the post-activation result, not the pre-activation sum.
// Leaky ReLU is monotonic and sign-preserving for this slope, so the result
// is the same either way; this shortcut does not hold for other activations.
func (n *Node) LeakyReLUDerivative() float32 {
	if n.Value > 0 {
		return 1.0
	}
	return leakySlope
}

// AddBias adds the node's bias to its value.
func (n *Node) AddBias() {
	n.Value += n.Bias
}

// Reset zeroes the value only. Bias and delta are untouched.
func (n *Node) Reset() {
	n.Value = 0
}
