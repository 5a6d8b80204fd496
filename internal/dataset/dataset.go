// Package dataset loads rectangular float matrices from CSV files and splits
// them into training, test, and validation sets.
//
// Rows are feature columns followed by label columns; the engine consumes
// them as-is. Malformed rows (wrong column count, unparsable cells) are the
// loader's responsibility and are dropped here, never passed downstream.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"time"
)

// Load reads a CSV file with a header row and returns every well-formed data
// row as a slice of columns floats.
//
// CSV format:
//
//	age_norm,weight_norm,height_norm,cvd_prob
//	0.25,0.35,0.70,0.1144
func Load(path string, columns int) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	rows, err := Read(f, columns)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	return rows, nil
}

// Read parses CSV data from r: the first record is treated as a header and
// skipped, and every subsequent record with exactly columns parsable float
// cells becomes a row. Records with the wrong width or non-numeric cells are
// filtered out.
func Read(r io.Reader, columns int) ([][]float32, error) {
	if columns <= 0 {
		return nil, fmt.Errorf("invalid column count %d", columns)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV is empty or missing header")
	}

	// Skip header row.
	records = records[1:]

	rows := make([][]float32, 0, len(records))
	for _, record := range records {
		if len(record) != columns {
			continue
		}
		row := make([]float32, columns)
		ok := true
		for i, cell := range record {
			v, err := strconv.ParseFloat(cell, 32)
			if err != nil {
				ok = false
				break
			}
			row[i] = float32(v)
		}
		if ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// Split shuffles a copy of rows and partitions it into training, test, and
// validation sets. trainFrac and testFrac are fractions of the total; the
// remainder becomes the validation set.
func Split(rows [][]float32, trainFrac, testFrac float64, rng *rand.Rand) (train, test, validation [][]float32, err error) {
	if trainFrac < 0 || testFrac < 0 || trainFrac+testFrac > 1 {
		return nil, nil, nil, fmt.Errorf("invalid split fractions train=%v test=%v", trainFrac, testFrac)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	shuffled := make([][]float32, len(rows))
	copy(shuffled, rows)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	trainEnd := int(float64(len(shuffled)) * trainFrac)
	testEnd := trainEnd + int(float64(len(shuffled))*testFrac)

	return shuffled[:trainEnd], shuffled[trainEnd:testEnd], shuffled[testEnd:], nil
}
