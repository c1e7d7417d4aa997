// Package vector implements numeric vector kinds. A Kind converts some
// opaque value (a model state or observation) into a *mat.VecDense with
// a fixed element type policy and shape. It is the only encoding of
// model states and observations visible outside an environment.
package vector

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNoEncoder is returned when a Kind has no Encode function
	ErrNoEncoder = errors.New("kind has no encoder")

	// ErrShape is returned when an encoded value does not match the
	// declared shape of a Kind
	ErrShape = errors.New("encoded length does not match shape")
)

// DType is the element type policy of a Kind. Vectors are always
// stored as float64, but a Float32 Kind rounds every element to the
// nearest float32 first.
type DType string

const (
	Float64 DType = "float64"
	Float32 DType = "float32"
)

// ParseDType parses a DType from its name
func ParseDType(s string) (DType, error) {
	switch DType(s) {
	case Float64, "":
		return Float64, nil
	case Float32:
		return Float32, nil
	}
	return "", fmt.Errorf("parseDType: no such dtype %q", s)
}

// Encoder flattens a value of type T into a slice of numbers
type Encoder[T any] func(T) ([]float64, error)

// Kind converts values of type T into vectors
type Kind[T any] struct {
	DType  DType
	Encode Encoder[T]

	// Shape optionally declares a multidimensional shape for the
	// flattened data. If nil, the shape is the vector length.
	Shape []int
}

// New returns a new Kind with the given element type and encoder
func New[T any](dtype DType, enc Encoder[T], shape ...int) Kind[T] {
	return Kind[T]{DType: dtype, Encode: enc, Shape: shape}
}

// Validate checks that the Kind can be used to convert values
func (k Kind[T]) Validate() error {
	if k.Encode == nil {
		return ErrNoEncoder
	}
	if _, err := ParseDType(string(k.DType)); err != nil {
		return err
	}
	for _, d := range k.Shape {
		if d <= 0 {
			return fmt.Errorf("validate: non-positive dimension in "+
				"shape %v", k.Shape)
		}
	}
	return nil
}

// Convert converts v into a vector. Encoded values are copied as they
// are, so NaNs and infinities are kept.
func (k Kind[T]) Convert(v T) (*mat.VecDense, error) {
	data, err := k.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("convert: encoded value is empty")
	}
	if k.Shape != nil && prod(k.Shape) != len(data) {
		return nil, fmt.Errorf("convert: %w: shape %v, length %v", ErrShape,
			k.Shape, len(data))
	}

	out := make([]float64, len(data))
	copy(out, data)
	if k.DType == Float32 {
		for i, x := range out {
			out[i] = float64(float32(x))
		}
	}

	return mat.NewVecDense(len(out), out), nil
}

// Dims returns the shape of a converted vector v
func (k Kind[T]) Dims(v mat.Vector) []int {
	if k.Shape != nil {
		return append([]int(nil), k.Shape...)
	}
	return []int{v.Len()}
}

func prod(ints []int) int {
	p := 1
	for _, i := range ints {
		p *= i
	}
	return p
}
