package vector

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"
)

func TestConvertFloat32(t *testing.T) {
	k := New(Float32, Slice[float64])

	v, err := k.Convert([]float64{0.1, 1.5})
	if err != nil {
		t.Fatal(err)
	}

	want := []float64{float64(float32(0.1)), 1.5}
	if diff := cmp.Diff(want, v.RawVector().Data); diff != "" {
		t.Errorf("convert: (-want +got)\n%v", diff)
	}
	if v.AtVec(0) == 0.1 {
		t.Error("convert: float32 kind did not round elements")
	}
}

func TestConvertCopies(t *testing.T) {
	data := []float64{1, 2, 3}
	k := New(Float64, Slice[float64])

	v, err := k.Convert(data)
	if err != nil {
		t.Fatal(err)
	}
	data[0] = 100
	if v.AtVec(0) != 1 {
		t.Error("convert: vector aliases the encoded data")
	}
}

func TestShape(t *testing.T) {
	k := New(Float64, Slice[int], 2, 3)
	v, err := k.Convert([]int{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{2, 3}, k.Dims(v)); diff != "" {
		t.Errorf("dims: (-want +got)\n%v", diff)
	}

	if _, err := k.Convert([]int{1, 2}); !errors.Is(err, ErrShape) {
		t.Errorf("convert: expected ErrShape, got %v", err)
	}

	flat := New(Float64, Vec)
	v, err = flat.Convert(mat.NewVecDense(4, nil))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{4}, flat.Dims(v)); diff != "" {
		t.Errorf("dims: (-want +got)\n%v", diff)
	}
}

func TestConvertErrors(t *testing.T) {
	k := New(Float64, Slice[float64])
	if _, err := k.Convert(nil); err == nil {
		t.Error("convert: expected error for empty value")
	}

	var empty Kind[int]
	if err := empty.Validate(); !errors.Is(err, ErrNoEncoder) {
		t.Errorf("validate: expected ErrNoEncoder, got %v", err)
	}
	if err := New(DType("int8"), Scalar[int]).Validate(); err == nil {
		t.Error("validate: expected error for unknown dtype")
	}
}

func TestConvertNonFinite(t *testing.T) {
	k := New(Float32, Slice[float64])
	v, err := k.Convert([]float64{math.Inf(-1), math.NaN()})
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(v.AtVec(0), -1) || !math.IsNaN(v.AtVec(1)) {
		t.Errorf("convert: expected non-finite values to be kept, got %v",
			v.RawVector().Data)
	}
}

func TestOneHot(t *testing.T) {
	k := New(Float64, OneHot(4, func(i int) int { return i }))

	v, err := k.Convert(2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{0, 0, 1, 0}, v.RawVector().Data); diff != "" {
		t.Errorf("oneHot: (-want +got)\n%v", diff)
	}
	if _, err := k.Convert(4); err == nil {
		t.Error("oneHot: expected error for out of range index")
	}
}

func TestParseDType(t *testing.T) {
	for in, want := range map[string]DType{
		"":        Float64,
		"float64": Float64,
		"float32": Float32,
	} {
		got, err := ParseDType(in)
		if err != nil || got != want {
			t.Errorf("parseDType(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}
