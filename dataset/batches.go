package dataset

// Batch is a slice of inputs with their labels.
type Batch struct {
	Records Records
	Inputs  [][]float64
	Labels  []string
}

// Len returns the number of items in the batch.
func (b Batch) Len() int { return len(b.Inputs) }

// Batches iterates over records in fixed-size batches. The sequence is
// finite and restartable; the last batch may be short.
type Batches struct {
	records Records
	size    int
	pos     int
}

// NewBatches creates an iterator; size <= 0 yields a single batch.
func NewBatches(records Records, size int) *Batches {
	if size <= 0 {
		size = len(records)
	}
	return &Batches{records: records, size: size}
}

// Next returns the next batch and true, or an empty batch and false once
// the records are exhausted.
func (b *Batches) Next() (Batch, bool) {
	if b.pos >= len(b.records) {
		return Batch{}, false
	}
	end := b.pos + b.size
	if end > len(b.records) {
		end = len(b.records)
	}
	chunk := b.records[b.pos:end]
	b.pos = end
	batch := Batch{Records: chunk, Inputs: make([][]float64, len(chunk)), Labels: make([]string, len(chunk))}
	for i, rec := range chunk {
		batch.Inputs[i] = rec.Features
		batch.Labels[i] = rec.Label
	}
	return batch, true
}

// Reset restarts the sequence from the first record.
func (b *Batches) Reset() { b.pos = 0 }
