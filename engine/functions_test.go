package engine

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/viant/embedknn/vector"
	sqlite "modernc.org/sqlite"
)

func TestRegisterVectorFunctionsAndUse(t *testing.T) {
	// Register globally before first connection so functions are available.
	if err := RegisterVectorFunctions(); err != nil {
		t.Fatalf("RegisterVectorFunctions failed: %v", err)
	}
	if err := RegisterVectorFunctions(); err != nil {
		t.Fatalf("second RegisterVectorFunctions failed: %v", err)
	}
	db, err := Open(filepath.Join(t.TempDir(), "fn.sqlite"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	zero := vector.EncodeEmbedding(vector.Embedding{0, 0})
	threeFour := vector.EncodeEmbedding(vector.Embedding{3, 4})
	a := vector.EncodeEmbedding(vector.Embedding{1, 0})
	b := vector.EncodeEmbedding(vector.Embedding{0, 1})

	var ssd float64
	if err := db.QueryRow(`SELECT vec_ssd(?, ?)`, zero, threeFour).Scan(&ssd); err != nil {
		t.Fatalf("vec_ssd query failed: %v", err)
	}
	if ssd != 25 {
		t.Fatalf("vec_ssd = %v, want 25", ssd)
	}

	var dist float64
	if err := db.QueryRow(`SELECT vec_l2(?, ?)`, zero, threeFour).Scan(&dist); err != nil {
		t.Fatalf("vec_l2 query failed: %v", err)
	}
	if math.Abs(dist-5) > 1e-5 {
		t.Fatalf("vec_l2 = %v, want 5", dist)
	}

	// orthogonal -> cosine distance 1
	var cos float64
	if err := db.QueryRow(`SELECT vec_cosine(?, ?)`, a, b).Scan(&cos); err != nil {
		t.Fatalf("vec_cosine query failed: %v", err)
	}
	if math.Abs(cos-1) > 1e-5 {
		t.Fatalf("vec_cosine = %v, want 1", cos)
	}

	var null sql.NullFloat64
	if err := db.QueryRow(`SELECT vec_ssd(NULL, ?)`, a).Scan(&null); err != nil {
		t.Fatalf("vec_ssd(NULL) query failed: %v", err)
	}
	if null.Valid {
		t.Fatalf("vec_ssd(NULL, x) = %v, want NULL", null.Float64)
	}

	mismatch := vector.EncodeEmbedding(vector.Embedding{1, 2, 3})
	if err := db.QueryRow(`SELECT vec_ssd(?, ?)`, a, mismatch).Scan(&ssd); err == nil {
		t.Fatalf("vec_ssd with mismatched dims succeeded, want error")
	}
}

func TestRegistration_KeepsFirstError(t *testing.T) {
	calls := 0
	reg := &registration{fn: func(name string, _ int32, _ func(*sqlite.FunctionContext, []driver.Value) (driver.Value, error)) error {
		calls++
		if name == "vec_l2" {
			return errors.New("already registered")
		}
		return nil
	}}
	for i := 0; i < 2; i++ {
		err := reg.register()
		if err == nil || !strings.Contains(err.Error(), "vec_l2") {
			t.Fatalf("call %d: err = %v, want vec_l2 registration error", i, err)
		}
	}
	if calls != 3 {
		t.Fatalf("registrations = %d, want 3", calls)
	}
}
