// Copyright 2026 VitalNet. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides a minimal feedforward neural-network engine.
//
// # Overview
//
// This package contains:
//   - Network: layer construction, forward inference, binary cross-entropy
//     loss, manual backpropagation, and online gradient-descent training
//   - Layers: InputLayer, HiddenLayer (leaky ReLU), OutputLayer (sigmoid)
//   - Primitives: Node, Edge
//   - Diagnostics: per-sample DeltaSnapshot capture and CSV export
//
// # Basic Usage
//
//	import (
//	    "math/rand"
//
//	    "github.com/vitalnet-ml/vitalnet/nn"
//	)
//
//	func main() {
//	    rng := rand.New(rand.NewSource(42))
//
//	    // 3 features in, 1 probability out, 2 hidden layers
//	    net, err := nn.New(3, 1, 2, rng)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Rows are feature columns followed by label columns.
//	    for epoch := 0; epoch < 1000; epoch++ {
//	        if err := net.Train(rows, 32, 0.01); err != nil {
//	            log.Fatal(err)
//	        }
//	    }
//
//	    out, err := net.Forward([]float32{0.25, 0.35, 0.7})
//	}
//
// Training is true online stochastic gradient descent: every sample triggers
// an immediate parameter update, and the batch size only chunks the loop.
// The engine is single-threaded; only one pass is ever in flight.
package nn
