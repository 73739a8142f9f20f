package engine

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/viant/embedknn/vector"
	sqlite "modernc.org/sqlite"
)

type registerFunc func(name string, nArgs int32, fn func(*sqlite.FunctionContext, []driver.Value) (driver.Value, error)) error

// registration runs fn for every vector function at most once and keeps the
// outcome for later callers.
type registration struct {
	once sync.Once
	err  error
	fn   registerFunc
}

func (r *registration) register() error {
	r.once.Do(func() {
		for _, name := range []string{"vec_ssd", "vec_l2", "vec_cosine"} {
			if err := r.fn(name, 2, scalar(name, functionMetrics[name])); err != nil && r.err == nil {
				r.err = fmt.Errorf("engine: register %s: %w", name, err)
			}
		}
	})
	return r.err
}

var vectorFunctions = &registration{fn: sqlite.RegisterDeterministicScalarFunction}

// RegisterVectorFunctions registers vec_ssd, vec_l2 and vec_cosine with the
// driver so they are available on new connections opened after this call.
// Existing open connections will not see them. Registration happens once
// per process; every call returns the outcome of that registration.
func RegisterVectorFunctions() error {
	return vectorFunctions.register()
}

var functionMetrics = map[string]vector.Metric{
	"vec_ssd":    vector.MetricSSD,
	"vec_l2":     vector.MetricL2,
	"vec_cosine": vector.MetricCosine,
}

func asEmbedding(arg driver.Value) (vector.Embedding, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return vector.DecodeEmbedding(v)
	default:
		return nil, fmt.Errorf("vec: unsupported argument type %T for embedding; want BLOB", arg)
	}
}

// scalar adapts a metric to a SQL function. NULL or empty arguments yield
// NULL; vec_cosine returns a distance (1 - similarity) like the others so
// ORDER BY ascending means closest first.
func scalar(name string, metric vector.Metric) func(*sqlite.FunctionContext, []driver.Value) (driver.Value, error) {
	fn, _ := metric.Func()
	return func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s: expected 2 arguments, got %d", name, len(args))
		}
		a, err := asEmbedding(args[0])
		if err != nil {
			return nil, err
		}
		b, err := asEmbedding(args[1])
		if err != nil {
			return nil, err
		}
		if len(a) == 0 || len(b) == 0 {
			return nil, nil
		}
		d, err := fn(a, b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return d, nil
	}
}
