package nn

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// DeltaSnapshot is one recorded instant of training state: the loss for a
// sample together with every layer's per-node deltas and a sample of the
// first edge weight in the input and first hidden layer. Snapshots exist for
// offline gradient diagnostics (vanishing/exploding deltas, saturation) and
// play no part in training itself.
type DeltaSnapshot struct {
	Epoch  int
	Sample int
	Loss   float32

	InputDeltas  []float32
	HiddenDeltas [][]float32
	OutputDeltas []float32

	InputWeight  float32
	HiddenWeight float32
}

// EnableDeltaTracking starts recording one DeltaSnapshot per trained sample.
// Recording is off by default; it is pure observability, off the hot path.
func (n *Network) EnableDeltaTracking() {
	n.tracking = true
}

// DisableDeltaTracking stops recording. Already captured snapshots are kept.
func (n *Network) DisableDeltaTracking() {
	n.tracking = false
}

// ClearDeltaHistory discards all captured snapshots and rewinds the epoch
// counter used to tag them.
func (n *Network) ClearDeltaHistory() {
	n.history = nil
	n.epoch = 0
}

// DeltaHistory returns the captured snapshots in capture order.
func (n *Network) DeltaHistory() []DeltaSnapshot {
	return n.history
}

// capture appends a snapshot of the deltas and sampled weights left by the
// backward pass that just completed.
func (n *Network) capture(sample int, loss float32) {
	snap := DeltaSnapshot{
		Epoch:        n.epoch,
		Sample:       sample,
		Loss:         loss,
		InputDeltas:  copyDeltas(n.input.nodes),
		OutputDeltas: copyDeltas(n.output.nodes),
	}
	snap.HiddenDeltas = make([][]float32, len(n.hidden))
	for i, h := range n.hidden {
		snap.HiddenDeltas[i] = copyDeltas(h.nodes)
	}
	if len(n.input.edges) > 0 {
		snap.InputWeight = n.input.edges[0].Weight
	}
	if len(n.hidden) > 0 && len(n.hidden[0].edges) > 0 {
		snap.HiddenWeight = n.hidden[0].edges[0].Weight
	}
	n.history = append(n.history, snap)
}

func copyDeltas(nodes []Node) []float32 {
	deltas := make([]float32, len(nodes))
	for i := range nodes {
		deltas[i] = nodes[i].Delta
	}
	return deltas
}

// WriteDeltas serializes the snapshot history as CSV: a header naming every
// delta column by layer and node position, then one row per snapshot in
// capture order.
func (n *Network) WriteDeltas(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := []string{"epoch", "sample", "loss"}
	for i := 0; i < n.InputSize(); i++ {
		header = append(header, fmt.Sprintf("input_delta_%d", i))
	}
	for l, h := range n.hidden {
		for i := 0; i < h.NodeCount(); i++ {
			header = append(header, fmt.Sprintf("hidden%d_delta_%d", l, i))
		}
	}
	for i := 0; i < n.OutputSize(); i++ {
		header = append(header, fmt.Sprintf("output_delta_%d", i))
	}
	header = append(header, "input_weight_0", "hidden0_weight_0")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write delta header: %w", err)
	}

	for _, snap := range n.history {
		row := []string{
			strconv.Itoa(snap.Epoch),
			strconv.Itoa(snap.Sample),
			formatFloat(snap.Loss),
		}
		for _, d := range snap.InputDeltas {
			row = append(row, formatFloat(d))
		}
		for _, layer := range snap.HiddenDeltas {
			for _, d := range layer {
				row = append(row, formatFloat(d))
			}
		}
		for _, d := range snap.OutputDeltas {
			row = append(row, formatFloat(d))
		}
		row = append(row, formatFloat(snap.InputWeight), formatFloat(snap.HiddenWeight))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write delta row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportDeltasToCSV writes the snapshot history to a CSV file at path.
func (n *Network) ExportDeltasToCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open delta export destination: %w", err)
	}
	if err := n.WriteDeltas(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}
