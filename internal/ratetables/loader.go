// Package ratetables loads the Retirement Calculator's historical rate
// series — Average Wage Index and Social Security bend points — from CSV
// files, the same directory-of-CSVs shape the rest of the corpus uses for
// transaction import.
package ratetables

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"projector/internal/models"
)

// Loader reads Average Wage Index and bend-point CSVs from a directory.
type Loader struct {
	Directory string
}

// New creates a Loader rooted at dir.
func New(dir string) *Loader {
	return &Loader{Directory: dir}
}

// Load reads "average-wage-index.csv" (columns: Year, Value) and
// "bend-points.csv" (columns: Year, Bend1, Bend2) from the loader's
// directory into a RateTables. Either file may be absent; its series is
// then empty and callers relying on it get awiAt/bendPointsAt's
// last-known-year extrapolation instead.
func (l *Loader) Load() (models.RateTables, error) {
	awi, err := l.loadAWI()
	if err != nil {
		return models.RateTables{}, err
	}
	bends, err := l.loadBendPoints()
	if err != nil {
		return models.RateTables{}, err
	}
	return models.RateTables{AverageWageIndex: awi, BendPoints: bends}, nil
}

func (l *Loader) loadAWI() (map[int]float64, error) {
	path := filepath.Join(l.Directory, "average-wage-index.csv")
	records, err := readCSV(path)
	if os.IsNotExist(err) {
		log.Printf("ratetables: %s not found, average wage index series is empty", path)
		return map[int]float64{}, nil
	}
	if err != nil {
		return nil, err
	}

	colIndex, rows := records[0], records[1:]
	yearIdx, valueIdx := colPos(colIndex, "Year"), colPos(colIndex, "Value")
	if yearIdx < 0 || valueIdx < 0 {
		return nil, fmt.Errorf("ratetables: %s missing Year/Value column", path)
	}

	out := make(map[int]float64, len(rows))
	for i, row := range rows {
		year, value, ok := parseYearValue(row, yearIdx, valueIdx)
		if !ok {
			log.Printf("ratetables: skipping malformed row %d in %s", i+2, path)
			continue
		}
		out[year] = value
	}
	return out, nil
}

func (l *Loader) loadBendPoints() (map[int][2]float64, error) {
	path := filepath.Join(l.Directory, "bend-points.csv")
	records, err := readCSV(path)
	if os.IsNotExist(err) {
		log.Printf("ratetables: %s not found, bend point series is empty", path)
		return map[int][2]float64{}, nil
	}
	if err != nil {
		return nil, err
	}

	colIndex, rows := records[0], records[1:]
	yearIdx := colPos(colIndex, "Year")
	b1Idx := colPos(colIndex, "Bend1")
	b2Idx := colPos(colIndex, "Bend2")
	if yearIdx < 0 || b1Idx < 0 || b2Idx < 0 {
		return nil, fmt.Errorf("ratetables: %s missing Year/Bend1/Bend2 column", path)
	}

	out := make(map[int][2]float64, len(rows))
	for i, row := range rows {
		year, b1, ok := parseYearValue(row, yearIdx, b1Idx)
		if !ok {
			log.Printf("ratetables: skipping malformed row %d in %s", i+2, path)
			continue
		}
		_, b2, ok := parseYearValue(row, yearIdx, b2Idx)
		if !ok {
			log.Printf("ratetables: skipping malformed row %d in %s", i+2, path)
			continue
		}
		out[year] = [2]float64{b1, b2}
	}
	return out, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ratetables: reading %s: %w", path, err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("ratetables: %s is empty", path)
	}
	return records, nil
}

func colPos(header []string, name string) int {
	for i, col := range header {
		if strings.TrimSpace(col) == name {
			return i
		}
	}
	return -1
}

func parseYearValue(row []string, yearIdx, valueIdx int) (int, float64, bool) {
	if yearIdx >= len(row) || valueIdx >= len(row) {
		return 0, 0, false
	}
	year, err := strconv.Atoi(strings.TrimSpace(row[yearIdx]))
	if err != nil {
		return 0, 0, false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(row[valueIdx]), 64)
	if err != nil {
		return 0, 0, false
	}
	return year, value, true
}
