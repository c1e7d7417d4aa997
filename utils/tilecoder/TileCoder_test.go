package tilecoder

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

func newUnitCoder(t *testing.T, seed uint64) *TileCoder {
	t.Helper()
	tc, err := New([]r1.Interval{{Min: 0, Max: 1}, {Min: 0, Max: 1}},
		[][]int{{2, 2}, {4, 4}}, seed, true)
	if err != nil {
		t.Fatal(err)
	}
	return tc
}

func TestEncode(t *testing.T) {
	tc := newUnitCoder(t, 12)
	if tc.VecLength() != 1+4+16 {
		t.Fatalf("vecLength: expected 21, got %v", tc.VecLength())
	}

	for _, x := range [][]float64{{0.5, 0.5}, {0, 1}, {-3, 7}, {0.9, 0.1}} {
		v, err := tc.Encode(mat.NewVecDense(2, x))
		if err != nil {
			t.Fatal(err)
		}
		data := v.RawVector().Data
		if floats.Sum(data) != 3 {
			t.Errorf("encode %v: expected 3 active units, got %v", x, data)
		}
		if data[0] != 1 {
			t.Errorf("encode %v: bias unit inactive", x)
		}
		if floats.Sum(data[1:5]) != 1 || floats.Sum(data[5:]) != 1 {
			t.Errorf("encode %v: expected one active unit per tiling, got %v",
				x, data)
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	x := mat.NewVecDense(2, []float64{0.3, 0.6})
	a, err := newUnitCoder(t, 3).EncodeIndices(x)
	if err != nil {
		t.Fatal(err)
	}
	b, err := newUnitCoder(t, 3).EncodeIndices(x)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("encodeIndices: (-first +second)\n%v", diff)
	}
}

func TestNewErrors(t *testing.T) {
	unit := r1.Interval{Min: 0, Max: 1}
	tests := []struct {
		name   string
		bounds []r1.Interval
		bins   [][]int
	}{
		{"no dimensions", nil, [][]int{{2}}},
		{"empty interval", []r1.Interval{{Min: 1, Max: 1}}, [][]int{{2}}},
		{"no tilings", []r1.Interval{unit}, nil},
		{"wrong dimensions", []r1.Interval{unit}, [][]int{{2, 2}}},
		{"no tiles", []r1.Interval{unit}, [][]int{{0}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := New(test.bounds, test.bins, 0, false); err == nil {
				t.Error("new: expected error")
			}
		})
	}

	tc := newUnitCoder(t, 0)
	if _, err := tc.Encode(mat.NewVecDense(3, nil)); err == nil {
		t.Error("encode: expected error for wrong dimension")
	}
}

func BenchmarkTileCoder(b *testing.B) {
	bounds := make([]r1.Interval, 4)
	for i := range bounds {
		bounds[i] = r1.Interval{Min: 0, Max: 1}
	}
	tc, err := New(bounds, [][]int{{8, 8, 8, 8}, {8, 8, 8, 8}}, 12,
		true)
	if err != nil {
		b.Fatal(err)
	}
	y := mat.NewVecDense(4, []float64{0.5, 0.5, 0.5, 0.5})

	for i := 0; i < b.N; i++ {
		tc.Encode(y)
	}
}
