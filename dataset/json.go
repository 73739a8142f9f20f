package dataset

import (
	"encoding/json"
	"fmt"
	"os"
)

type jsonRecord struct {
	Label  string    `json:"label"`
	Vector []float64 `json:"vector"`
}

// LoadJSON reads a JSON array of {"label": ..., "vector": [...]} objects.
// Codes are assigned through cats, which may be nil.
func LoadJSON(path string, cats *Categories) (Records, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: reading %s: %w", path, err)
	}
	var objects []jsonRecord
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, fmt.Errorf("dataset: parsing %s: %w", path, err)
	}
	if cats == nil {
		cats = NewCategories()
	}
	records := make(Records, 0, len(objects))
	for i, obj := range objects {
		if obj.Label == "" {
			return nil, fmt.Errorf("dataset: entry %d missing label field", i)
		}
		if len(obj.Vector) == 0 {
			return nil, fmt.Errorf("dataset: entry %d missing vector field", i)
		}
		records = append(records, Record{Features: obj.Vector, Code: cats.Code(obj.Label), Label: obj.Label})
	}
	return records, nil
}
