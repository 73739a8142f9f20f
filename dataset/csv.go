package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CategoryHeader is the header of the category CSV file.
const CategoryHeader = "category"

// LoadCSVPair reads a features CSV (header row, then one sample per row)
// and a categories CSV (header "category", then one integer code per row).
// Labels are resolved through cats; a nil cats labels records with their
// decimal code.
func LoadCSVPair(featuresPath, categoriesPath string, cats *Categories) (Records, error) {
	features, err := LoadFeatures(featuresPath)
	if err != nil {
		return nil, err
	}
	codes, err := loadCodes(categoriesPath)
	if err != nil {
		return nil, err
	}
	if len(features) != len(codes) {
		return nil, fmt.Errorf("dataset: %d feature rows but %d categories", len(features), len(codes))
	}
	records := make(Records, len(features))
	for i := range features {
		records[i] = Record{Features: features[i], Code: codes[i], Label: cats.Name(codes[i])}
	}
	return records, nil
}

// LoadFeatures reads a features CSV: a header row followed by rows of equal
// width holding numeric values.
func LoadFeatures(path string) ([][]float64, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, 0, len(rows))
	width := -1
	for i, row := range rows {
		if width < 0 {
			width = len(row)
		}
		if len(row) != width {
			return nil, fmt.Errorf("dataset: %s row %d: %d columns, want %d", path, i+1, len(row), width)
		}
		vals := make([]float64, len(row))
		for j, cell := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: %s row %d col %d: %w", path, i+1, j, err)
			}
			vals[j] = v
		}
		out = append(out, vals)
	}
	return out, nil
}

func loadCodes(path string) ([]int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	codes := make([]int, len(rows))
	for i, row := range rows {
		if len(row) != 1 {
			return nil, fmt.Errorf("dataset: %s row %d: %d columns, want 1", path, i+1, len(row))
		}
		code, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("dataset: %s row %d: %w", path, i+1, err)
		}
		codes[i] = code
	}
	return codes, nil
}

// readCSV returns every row after the header.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dataset: %s is empty", path)
		}
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	return rows, nil
}

// WriteCSVPair writes records as a features CSV (header "0".."n-1") and a
// categories CSV (header "category").
func WriteCSVPair(featuresPath, categoriesPath string, records Records) error {
	if len(records) == 0 {
		return fmt.Errorf("dataset: no records to write")
	}
	width := len(records[0].Features)
	header := make([]string, width)
	for i := range header {
		header[i] = strconv.Itoa(i)
	}
	featureRows := [][]string{header}
	codeRows := [][]string{{CategoryHeader}}
	for i, rec := range records {
		if len(rec.Features) != width {
			return fmt.Errorf("dataset: record %d: %d features, want %d", i, len(rec.Features), width)
		}
		row := make([]string, width)
		for j, v := range rec.Features {
			row[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		featureRows = append(featureRows, row)
		codeRows = append(codeRows, []string{strconv.Itoa(rec.Code)})
	}
	if err := writeCSV(featuresPath, featureRows); err != nil {
		return err
	}
	return writeCSV(categoriesPath, codeRows)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("dataset: write %s: %w", path, err)
	}
	return f.Close()
}
