package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LabelFromFileName returns the part of a file's base name before the first
// underscore, without extension: "alpha_03.csv" is labeled "alpha".
func LabelFromFileName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.Index(base, "_"); i >= 0 {
		return base[:i]
	}
	return base
}

// LoadDir reads every .csv file in dir as one sample: a single row of
// comma-separated values, no header. Files are visited in name order and
// labels come from LabelFromFileName. Codes are assigned through cats, which
// may be nil.
func LoadDir(dir string, cats *Categories) (Records, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("dataset: read dir %s: %w", dir, err)
	}
	if cats == nil {
		cats = NewCategories()
	}
	var records Records
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		features, err := readSampleFile(path)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 && len(features) != len(records[0].Features) {
			return nil, fmt.Errorf("dataset: %s: %d values, want %d", path, len(features), len(records[0].Features))
		}
		label := LabelFromFileName(e.Name())
		records = append(records, Record{Features: features, Code: cats.Code(label), Label: label})
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset: no samples in %s", dir)
	}
	return records, nil
}

func readSampleFile(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	fields := strings.FieldsFunc(string(data), func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("dataset: %s is empty", path)
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("dataset: %s value %d: %w", path, i, err)
		}
		out[i] = v
	}
	return out, nil
}
