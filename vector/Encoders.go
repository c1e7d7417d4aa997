package vector

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Number is any built-in numeric type that can be stored in a vector
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Scalar encodes a single number as a vector of length 1
func Scalar[T Number](v T) ([]float64, error) {
	return []float64{float64(v)}, nil
}

// Slice encodes a slice of numbers element-wise
func Slice[T Number](v []T) ([]float64, error) {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = float64(v[i])
	}
	return out, nil
}

// Vec encodes a gonum vector
func Vec(v mat.Vector) ([]float64, error) {
	if v == nil {
		return nil, fmt.Errorf("vec: nil vector")
	}
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out, nil
}

// OneHot returns an Encoder which encodes values as one-hot vectors of
// length n. The index function maps a value to the position of its 1.
func OneHot[T any](n int, index func(T) int) Encoder[T] {
	return func(v T) ([]float64, error) {
		i := index(v)
		if i < 0 || i >= n {
			return nil, fmt.Errorf("oneHot: index %v out of range [0, %v)", i, n)
		}
		out := make([]float64, n)
		out[i] = 1.0
		return out, nil
	}
}
