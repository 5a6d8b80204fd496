package nn

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trainingRows() [][]float32 {
	return [][]float32{
		{0.2, 0.4, 0.6, 1},
		{0.9, 0.8, 0.1, 0},
		{0.5, 0.5, 0.5, 1},
	}
}

// TestDeltaTrackingDisabledByDefault verifies training alone records nothing.
func TestDeltaTrackingDisabledByDefault(t *testing.T) {
	net, err := NewWithHiddenSize(3, 1, 1, 2, testRNG())
	require.NoError(t, err)

	require.NoError(t, net.Train(trainingRows(), 2, 0.01))
	assert.Empty(t, net.DeltaHistory())
}

// TestDeltaTrackingCapturesPerSample verifies one snapshot per trained sample,
// tagged with the epoch and sample index, carrying every layer's deltas.
func TestDeltaTrackingCapturesPerSample(t *testing.T) {
	net, err := NewWithHiddenSize(3, 1, 2, 2, testRNG())
	require.NoError(t, err)

	net.EnableDeltaTracking()
	rows := trainingRows()
	require.NoError(t, net.Train(rows, 2, 0.01))
	require.NoError(t, net.Train(rows, 2, 0.01))

	history := net.DeltaHistory()
	require.Len(t, history, 2*len(rows))

	first, last := history[0], history[len(history)-1]
	assert.Equal(t, 0, first.Epoch)
	assert.Equal(t, 0, first.Sample)
	assert.Equal(t, 1, last.Epoch)
	assert.Equal(t, len(rows)-1, last.Sample)

	for _, snap := range history {
		assert.Len(t, snap.InputDeltas, 3)
		require.Len(t, snap.HiddenDeltas, 2)
		assert.Len(t, snap.HiddenDeltas[0], 2)
		assert.Len(t, snap.OutputDeltas, 1)
		assert.GreaterOrEqual(t, snap.Loss, float32(0))
	}
}

// TestDisableAndClearDeltaTracking verifies the tracking lifecycle.
func TestDisableAndClearDeltaTracking(t *testing.T) {
	net, err := NewWithHiddenSize(3, 1, 1, 2, testRNG())
	require.NoError(t, err)

	net.EnableDeltaTracking()
	require.NoError(t, net.Train(trainingRows(), 1, 0.01))
	captured := len(net.DeltaHistory())
	require.NotZero(t, captured)

	net.DisableDeltaTracking()
	require.NoError(t, net.Train(trainingRows(), 1, 0.01))
	assert.Len(t, net.DeltaHistory(), captured)

	net.ClearDeltaHistory()
	assert.Empty(t, net.DeltaHistory())
}

// TestWriteDeltasCSVLayout pins the exported header and row geometry.
func TestWriteDeltasCSVLayout(t *testing.T) {
	net, err := NewWithHiddenSize(3, 1, 2, 2, testRNG())
	require.NoError(t, err)

	net.EnableDeltaTracking()
	require.NoError(t, net.Train(trainingRows(), 2, 0.01))

	var buf bytes.Buffer
	require.NoError(t, net.WriteDeltas(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1+len(trainingRows()))

	header := records[0]
	want := []string{
		"epoch", "sample", "loss",
		"input_delta_0", "input_delta_1", "input_delta_2",
		"hidden0_delta_0", "hidden0_delta_1",
		"hidden1_delta_0", "hidden1_delta_1",
		"output_delta_0",
		"input_weight_0", "hidden0_weight_0",
	}
	assert.Equal(t, want, header)

	for _, row := range records[1:] {
		require.Len(t, row, len(header))
		for _, cell := range row {
			_, err := strconv.ParseFloat(cell, 64)
			assert.NoErrorf(t, err, "non-numeric cell %q", cell)
		}
	}
}

// TestExportDeltasToCSV round-trips the history through a file.
func TestExportDeltasToCSV(t *testing.T) {
	net, err := NewWithHiddenSize(3, 1, 1, 2, testRNG())
	require.NoError(t, err)

	net.EnableDeltaTracking()
	require.NoError(t, net.Train(trainingRows(), 3, 0.01))

	path := filepath.Join(t.TempDir(), "deltas.csv")
	require.NoError(t, net.ExportDeltasToCSV(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "epoch,sample,loss")
}

// TestExportDeltasToCSVBadDestination verifies the export fails fast on an
// unopenable destination.
func TestExportDeltasToCSVBadDestination(t *testing.T) {
	net, err := NewWithHiddenSize(3, 1, 1, 2, testRNG())
	require.NoError(t, err)

	err = net.ExportDeltasToCSV(filepath.Join(t.TempDir(), "missing", "deltas.csv"))
	assert.Error(t, err)
}
