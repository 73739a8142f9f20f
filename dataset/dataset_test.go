package dataset

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/viant/embedknn/knn"
	"github.com/viant/embedknn/pipeline"
	"github.com/viant/embedknn/vector"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadCSVPair(t *testing.T) {
	dir := t.TempDir()
	features := filepath.Join(dir, "data.csv")
	categories := filepath.Join(dir, "category.csv")
	writeFile(t, features, "0,1,2\n0,0,255\n10,20,30\n1.5,2.5,3.5\n")
	writeFile(t, categories, "category\n0\n2\n1\n")

	records, err := LoadCSVPair(features, categories, NewCategories("alpha", "beta", "gamma"))
	if err != nil {
		t.Fatalf("LoadCSVPair failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if got, want := []string{records[0].Label, records[1].Label, records[2].Label}, []string{"alpha", "gamma", "beta"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("labels = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(records[2].Features, []float64{1.5, 2.5, 3.5}) {
		t.Fatalf("features = %v", records[2].Features)
	}

	unnamed, err := LoadCSVPair(features, categories, nil)
	if err != nil {
		t.Fatalf("LoadCSVPair(nil cats) failed: %v", err)
	}
	if unnamed[1].Label != "2" {
		t.Fatalf("label = %q, want decimal code 2", unnamed[1].Label)
	}
}

func TestLoadCSVPair_Errors(t *testing.T) {
	dir := t.TempDir()
	features := filepath.Join(dir, "data.csv")
	categories := filepath.Join(dir, "category.csv")

	writeFile(t, features, "0,1\n1,2\n3,4\n")
	writeFile(t, categories, "category\n0\n")
	if _, err := LoadCSVPair(features, categories, nil); err == nil {
		t.Fatalf("expected row count mismatch error")
	}

	writeFile(t, features, "0,1\n1,2\n3\n")
	writeFile(t, categories, "category\n0\n1\n")
	if _, err := LoadCSVPair(features, categories, nil); err == nil {
		t.Fatalf("expected ragged row error")
	}

	writeFile(t, features, "0,1\n1,x\n")
	writeFile(t, categories, "category\n0\n")
	if _, err := LoadCSVPair(features, categories, nil); err == nil {
		t.Fatalf("expected parse error")
	}

	writeFile(t, features, "")
	if _, err := LoadFeatures(features); err == nil {
		t.Fatalf("expected empty file error")
	}
	if _, err := LoadCSVPair(filepath.Join(dir, "missing.csv"), categories, nil); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestWriteCSVPair_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	features := filepath.Join(dir, "data.csv")
	categories := filepath.Join(dir, "category.csv")
	cats := NewCategories("alpha", "beta")
	records := Records{
		{Features: []float64{0, 0.25, 255}, Code: 1, Label: "beta"},
		{Features: []float64{-1, 2, 3}, Code: 0, Label: "alpha"},
	}
	if err := WriteCSVPair(features, categories, records); err != nil {
		t.Fatalf("WriteCSVPair failed: %v", err)
	}
	loaded, err := LoadCSVPair(features, categories, cats)
	if err != nil {
		t.Fatalf("LoadCSVPair failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, records) {
		t.Fatalf("loaded = %+v, want %+v", loaded, records)
	}
	if err := WriteCSVPair(features, categories, nil); err == nil {
		t.Fatalf("expected error for no records")
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.json")
	writeFile(t, path, `[
		{"label": "beta", "vector": [1, 2]},
		{"label": "alpha", "vector": [3, 4]},
		{"label": "beta", "vector": [5, 6]}
	]`)
	records, err := LoadJSON(path, nil)
	if err != nil {
		t.Fatalf("LoadJSON failed: %v", err)
	}
	if got, want := []int{records[0].Code, records[1].Code, records[2].Code}, []int{0, 1, 0}; !reflect.DeepEqual(got, want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}

	writeFile(t, path, `[{"label": "beta"}]`)
	if _, err := LoadJSON(path, nil); err == nil {
		t.Fatalf("expected missing vector error")
	}
	writeFile(t, path, `{`)
	if _, err := LoadJSON(path, nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLabelFromFileName(t *testing.T) {
	tests := map[string]string{
		"alpha_01.csv":       "alpha",
		"/data/beta_x_2.csv": "beta",
		"gamma.csv":          "gamma",
	}
	for in, want := range tests {
		if got := LabelFromFileName(in); got != want {
			t.Fatalf("LabelFromFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "beta_01.csv"), "1,1\n")
	writeFile(t, filepath.Join(dir, "alpha_01.csv"), "0,0\n")
	writeFile(t, filepath.Join(dir, "alpha_02.csv"), "0, 1")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cats := NewCategories()
	records, err := LoadDir(dir, cats)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if got, want := cats.Names(), []string{"alpha", "beta"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("categories = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(records[1].Features, []float64{0, 1}) || records[1].Label != "alpha" {
		t.Fatalf("records[1] = %+v", records[1])
	}

	writeFile(t, filepath.Join(dir, "gamma_01.csv"), "1,2,3")
	if _, err := LoadDir(dir, nil); err == nil {
		t.Fatalf("expected dimension error")
	}
	if _, err := LoadDir(t.TempDir(), nil); err == nil {
		t.Fatalf("expected error for empty directory")
	}
}

func TestCategories(t *testing.T) {
	c := NewCategories("alpha")
	if c.Code("beta") != 1 || c.Code("alpha") != 0 || len(c.Names()) != 2 {
		t.Fatalf("unexpected codes: %v", c.Names())
	}
	if c.Name(1) != "beta" || c.Name(7) != "7" {
		t.Fatalf("Name = %q/%q", c.Name(1), c.Name(7))
	}
	var zero Categories
	if zero.Code("x") != 0 {
		t.Fatalf("zero Categories must be usable")
	}
}

func TestBatches(t *testing.T) {
	records := Records{
		{Features: []float64{1}, Label: "a"},
		{Features: []float64{2}, Label: "b"},
		{Features: []float64{3}, Label: "c"},
		{Features: []float64{4}, Label: "d"},
		{Features: []float64{5}, Label: "e"},
	}
	b := NewBatches(records, 2)
	collect := func() [][]string {
		var out [][]string
		for {
			batch, ok := b.Next()
			if !ok {
				return out
			}
			if len(batch.Records) != batch.Len() {
				t.Fatalf("batch records = %d, inputs = %d", len(batch.Records), batch.Len())
			}
			out = append(out, batch.Labels)
		}
	}
	first := collect()
	want := [][]string{{"a", "b"}, {"c", "d"}, {"e"}}
	if !reflect.DeepEqual(first, want) {
		t.Fatalf("batches = %v, want %v", first, want)
	}
	if _, ok := b.Next(); ok {
		t.Fatalf("exhausted iterator must stay exhausted")
	}
	b.Reset()
	if second := collect(); !reflect.DeepEqual(second, first) {
		t.Fatalf("after Reset batches = %v, want %v", second, first)
	}

	single := NewBatches(records, 0)
	batch, ok := single.Next()
	if !ok || batch.Len() != 5 {
		t.Fatalf("size 0 must yield one batch of 5, got %d", batch.Len())
	}
}

func TestRecords_Samples(t *testing.T) {
	records := Records{
		{Features: []float64{255, 0}, Label: "alpha"},
		{Features: []float64{0, 255}, Label: "beta"},
	}
	samples, err := records.Samples(pipeline.New(pipeline.Invert{Max: 255}))
	if err != nil {
		t.Fatalf("Samples failed: %v", err)
	}
	if !samples[0].Embedding.Equal(vector.Embedding{0, 255}) || samples[0].Label != "alpha" {
		t.Fatalf("samples[0] = %+v", samples[0])
	}
	raw, err := records.Samples(nil)
	if err != nil {
		t.Fatalf("Samples(nil) failed: %v", err)
	}
	if !raw[1].Embedding.Equal(vector.Embedding{0, 255}) {
		t.Fatalf("raw[1] = %+v", raw[1])
	}
}

func TestFromSamples(t *testing.T) {
	samples := []knn.Sample{
		{Embedding: vector.Embedding{0.5, 2}, Label: "beta"},
		{Embedding: vector.Embedding{1, 0}, Label: "alpha"},
	}
	records := FromSamples(samples, NewCategories("alpha", "beta"))
	want := Records{
		{Features: []float64{0.5, 2}, Code: 1, Label: "beta"},
		{Features: []float64{1, 0}, Code: 0, Label: "alpha"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("FromSamples = %+v, want %+v", records, want)
	}
}
