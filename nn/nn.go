// Copyright 2026 VitalNet. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/vitalnet-ml/vitalnet/internal/nn"
)

// Network is a feedforward neural network of scalar nodes organized into an
// input layer, zero or more fully connected hidden layers, and an output layer.
type Network = nn.Network

// Node is a single scalar computation unit: value, trainable bias, and the
// error delta written by the most recent backward pass.
type Node = nn.Node

// Edge is a directed weighted connection between nodes in adjacent layers.
type Edge = nn.Edge

// InputLayer holds raw feature values; it applies no activation.
type InputLayer = nn.InputLayer

// HiddenLayer applies bias-add and leaky ReLU before propagating.
type HiddenLayer = nn.HiddenLayer

// OutputLayer applies bias-add and sigmoid when its output is read.
type OutputLayer = nn.OutputLayer

// DeltaSnapshot is one recorded instant of per-node deltas and sampled
// weights, used for offline diagnostics.
type DeltaSnapshot = nn.DeltaSnapshot

// Contract-violation sentinels, matched with errors.Is.
var (
	ErrInvalidDimensions = nn.ErrInvalidDimensions
	ErrEmptyLayer        = nn.ErrEmptyLayer
	ErrNotInitialized    = nn.ErrNotInitialized
	ErrSizeMismatch      = nn.ErrSizeMismatch
)

// New creates a network with hiddenLayers hidden layers, each sized
// max(1, (inputSize+outputSize)*2/3).
//
// Example:
//
//	rng := rand.New(rand.NewSource(42))
//	net, err := nn.New(3, 1, 2, rng)
func New(inputSize, outputSize, hiddenLayers int, rng *rand.Rand) (*Network, error) {
	return nn.New(inputSize, outputSize, hiddenLayers, rng)
}

// NewWithHiddenSize creates a network whose hidden layers all have the given
// explicit width.
func NewWithHiddenSize(inputSize, outputSize, hiddenLayers, hiddenSize int, rng *rand.Rand) (*Network, error) {
	return nn.NewWithHiddenSize(inputSize, outputSize, hiddenLayers, hiddenSize, rng)
}
