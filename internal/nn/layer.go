package nn

import (
	"fmt"
	"math/rand"
)

// Weights and biases are drawn uniformly from this range at construction.
const (
	initRangeLo float32 = -0.5
	initRangeHi float32 = 0.5
)

// randomUniform returns a value drawn uniformly from [initRangeLo, initRangeHi).
func randomUniform(rng *rand.Rand) float32 {
	return initRangeLo + rng.Float32()*(initRangeHi-initRangeLo)
}

// nodeCounter is the minimal view of a layer needed to wire edges into it.
type nodeCounter interface {
	NodeCount() int
}

// newNodes allocates count nodes. When withBias is set, biases are drawn from
// the uniform init range; otherwise they stay zero (input layers).
func newNodes(count int, rng *rand.Rand, withBias bool) []Node {
	nodes := make([]Node, count)
	if withBias {
		for i := range nodes {
			nodes[i].Bias = randomUniform(rng)
		}
	}
	return nodes
}

// newEdges fully connects sourceCount nodes to the next layer: one edge per
// (source, target) pair, weights drawn from the uniform init range.
func newEdges(sourceCount int, next nodeCounter, rng *rand.Rand) ([]Edge, error) {
	if next == nil || next.NodeCount() == 0 {
		return nil, fmt.Errorf("%w: next layer is nil or empty", ErrEmptyLayer)
	}
	targetCount := next.NodeCount()
	edges := make([]Edge, 0, sourceCount*targetCount)
	for s := 0; s < sourceCount; s++ {
		for t := 0; t < targetCount; t++ {
			edges = append(edges, Edge{Source: s, Target: t, Weight: randomUniform(rng)})
		}
	}
	return edges, nil
}

// forwardEdges accumulates weight × sourceValue into every target node.
func forwardEdges(edges []Edge, nodes, next []Node) {
	for _, e := range edges {
		next[e.Target].Value += nodes[e.Source].Value * e.Weight
	}
}

// backwardEdges computes the raw delta sum for every source node:
// delta[s] = Σ weight × next[target].Delta over s's outgoing edges.
func backwardEdges(edges []Edge, nodes, next []Node) {
	for i := range nodes {
		nodes[i].Delta = 0
	}
	for _, e := range edges {
		nodes[e.Source].Delta += e.Weight * next[e.Target].Delta
	}
}

// updateEdges applies the gradient step to every weight:
// weight −= lr × sourceValue × targetDelta.
func updateEdges(edges []Edge, nodes, next []Node, learningRate float32) {
	for i := range edges {
		e := &edges[i]
		e.Weight -= learningRate * nodes[e.Source].Value * next[e.Target].Delta
	}
}

// updateBiases applies bias −= lr × delta to every node.
func updateBiases(nodes []Node, learningRate float32) {
	for i := range nodes {
		nodes[i].Bias -= learningRate * nodes[i].Delta
	}
}

// resetValues zeroes every node's value (biases and deltas survive).
func resetValues(nodes []Node) {
	for i := range nodes {
		nodes[i].Reset()
	}
}

// InputLayer holds the raw feature values. It applies no activation and its
// nodes carry no bias (the bias field exists but is fixed at zero and never
// read during the forward pass).
type InputLayer struct {
	nodes []Node
	edges []Edge
}

// NewInputLayer creates an input layer with nodeCount bias-free nodes.
func NewInputLayer(nodeCount int) (*InputLayer, error) {
	if nodeCount <= 0 {
		return nil, fmt.Errorf("%w: input layer node count %d", ErrInvalidDimensions, nodeCount)
	}
	return &InputLayer{nodes: make([]Node, nodeCount)}, nil
}

// NodeCount returns the number of nodes in the layer.
func (l *InputLayer) NodeCount() int { return len(l.nodes) }

// Attach fully connects the layer to next. Done once, at construction.
func (l *InputLayer) Attach(next nodeCounter, rng *rand.Rand) error {
	edges, err := newEdges(len(l.nodes), next, rng)
	if err != nil {
		return err
	}
	l.edges = edges
	return nil
}

// SetValues loads an externally supplied feature vector into the layer.
func (l *InputLayer) SetValues(values []float32) error {
	if len(values) != len(l.nodes) {
		return fmt.Errorf("%w: got %d inputs, input layer has %d nodes",
			ErrSizeMismatch, len(values), len(l.nodes))
	}
	for i, v := range values {
		l.nodes[i].Value = v
	}
	return nil
}

// Forward accumulates weight × sourceValue into the next layer's nodes.
// The input layer itself is not activated.
func (l *InputLayer) Forward(next []Node) {
	forwardEdges(l.edges, l.nodes, next)
}

func (l *InputLayer) backward(next []Node) {
	// No activation on the input layer, so no derivative factor.
	backwardEdges(l.edges, l.nodes, next)
}

func (l *InputLayer) applyGradients(next []Node, learningRate float32) {
	updateEdges(l.edges, l.nodes, next, learningRate)
	// Input biases stay zero-valued in the forward pass, so this update is
	// inert there; it is kept for uniformity with the other layers.
	updateBiases(l.nodes, learningRate)
}

// HiddenLayer applies bias-add and leaky ReLU to its nodes before propagating
// to the next layer.
type HiddenLayer struct {
	nodes []Node
	edges []Edge
}

// NewHiddenLayer creates a hidden layer with nodeCount nodes, biases drawn
// uniformly from the init range.
func NewHiddenLayer(nodeCount int, rng *rand.Rand) (*HiddenLayer, error) {
	if nodeCount <= 0 {
		return nil, fmt.Errorf("%w: hidden layer node count %d", ErrInvalidDimensions, nodeCount)
	}
	return &HiddenLayer{nodes: newNodes(nodeCount, rng, true)}, nil
}

// NodeCount returns the number of nodes in the layer.
func (l *HiddenLayer) NodeCount() int { return len(l.nodes) }

// Attach fully connects the layer to next. Done once, at construction.
func (l *HiddenLayer) Attach(next nodeCounter, rng *rand.Rand) error {
	edges, err := newEdges(len(l.nodes), next, rng)
	if err != nil {
		return err
	}
	l.edges = edges
	return nil
}

// processNodes applies bias-add then leaky ReLU to every node in place.
func (l *HiddenLayer) processNodes() {
	for i := range l.nodes {
		l.nodes[i].AddBias()
		l.nodes[i].LeakyReLU()
	}
}

// Forward activates the layer's nodes, then accumulates weight × sourceValue
// into the next layer's nodes.
func (l *HiddenLayer) Forward(next []Node) {
	l.processNodes()
	forwardEdges(l.edges, l.nodes, next)
}

func (l *HiddenLayer) backward(next []Node) {
	backwardEdges(l.edges, l.nodes, next)
	for i := range l.nodes {
		l.nodes[i].Delta *= l.nodes[i].LeakyReLUDerivative()
	}
}

func (l *HiddenLayer) applyGradients(next []Node, learningRate float32) {
	updateEdges(l.edges, l.nodes, next, learningRate)
	updateBiases(l.nodes, learningRate)
}

// OutputLayer is the terminal layer. It has no outgoing edges; its forward
// step is the bias-add + sigmoid activation performed when output is read.
type OutputLayer struct {
	nodes []Node
}

// NewOutputLayer creates an output layer with nodeCount nodes, biases drawn
// uniformly from the init range.
func NewOutputLayer(nodeCount int, rng *rand.Rand) (*OutputLayer, error) {
	if nodeCount <= 0 {
		return nil, fmt.Errorf("%w: output layer node count %d", ErrInvalidDimensions, nodeCount)
	}
	return &OutputLayer{nodes: newNodes(nodeCount, rng, true)}, nil
}

// NodeCount returns the number of nodes in the layer.
func (l *OutputLayer) NodeCount() int { return len(l.nodes) }

// processNodes applies bias-add then sigmoid to every node in place.
func (l *OutputLayer) processNodes() {
	for i := range l.nodes {
		l.nodes[i].AddBias()
		l.nodes[i].Sigmoid()
	}
}

// Output activates the layer and returns a copy of the activated values,
// each strictly inside (0, 1).
func (l *OutputLayer) Output() []float32 {
	l.processNodes()
	out := make([]float32, len(l.nodes))
	for i := range l.nodes {
		out[i] = l.nodes[i].Value
	}
	return out
}

func (l *OutputLayer) backward(expected []float32) {
	// Closed-form gradient of binary cross-entropy composed with sigmoid.
	for i := range l.nodes {
		l.nodes[i].Delta = l.nodes[i].Value - expected[i]
	}
}

func (l *OutputLayer) applyGradients(learningRate float32) {
	updateBiases(l.nodes, learningRate)
}
