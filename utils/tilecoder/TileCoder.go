// Package tilecoder implements tile coding of vectors
package tilecoder

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/samplemv"

	"github.com/samuelfneumann/rlinterface/utils/floatutils"
)

// Controls tiling offsets. For each dimension, tilings are offset by
// randomly sampling from a uniform distribution with support
// [- tile width/OffsetDiv, tile width/OffsetDiv]
const OffsetDiv float64 = 1.5

// TileCoder implements functionality for tile coding a vector. Tile
// coding takes a low-dimensional vector and changes it into a large,
// sparse vector consisting of only 0's and 1's. Each 1 represents the
// coordinates of the original vector in some space of tilings. For
// example:
//
//	[0.5, 0.1] -> [0, 0, 0, 1, 0, 0, 1, 0]
//
// The number of nonzero elements in the tile-coded representation
// equals the number of tilings (plus one if a bias unit is used). Tile
// coding requires that the space to be tiled be bounded. Values
// outside the bounds are coded as if they lay in the nearest edge
// tile.
//
// This implementation uses dense tilings over the entire space. That
// is, each dimension is fully tiled, and hash-based tile coding is not
// used.
type TileCoder struct {
	bounds      []r1.Interval
	bins        [][]int
	binLengths  [][]float64
	offsets     [][]float64
	includeBias bool
}

// New creates and returns a new TileCoder. The bounds argument holds
// the interval along each dimension over which tilings are placed.
//
// The bins argument determines both the number of tilings to use and
// the number of tiles per tiling. The number of elements in the outer
// slice is the number of tilings, and the sub-slices determine how
// many tiles are placed along each dimension for the respective
// tiling. For example, if bins := [][]int{{2, 2}, {4, 3}}, then the
// TileCoder uses a 2x2 tiling and a 4x3 tiling.
//
// Tiling offsets are sampled from a generator seeded with seed. If
// includeBias is true, a bias unit which is always 1 is kept as the
// first unit in the tile coded representation.
func New(bounds []r1.Interval, bins [][]int, seed uint64,
	includeBias bool) (*TileCoder, error) {
	if len(bounds) == 0 {
		return nil, fmt.Errorf("new: at least one dimension is required")
	}
	for i, b := range bounds {
		if !(b.Max > b.Min) || math.IsInf(b.Max-b.Min, 0) {
			return nil, fmt.Errorf("new: dimension %d has invalid bounds "+
				"[%v, %v]", i, b.Min, b.Max)
		}
	}
	if len(bins) == 0 {
		return nil, fmt.Errorf("new: at least one tiling is required")
	}

	src := rand.NewSource(seed)
	binLengths := make([][]float64, len(bins))
	offsets := make([][]float64, len(bins))
	for j, tiling := range bins {
		if len(tiling) != len(bounds) {
			return nil, fmt.Errorf("new: tiling %d has %d dimensions, "+
				"want %d", j, len(tiling), len(bounds))
		}

		offsetBounds := make([]r1.Interval, len(bounds))
		binLengths[j] = make([]float64, len(bounds))
		for i, tiles := range tiling {
			if tiles < 1 {
				return nil, fmt.Errorf("new: tiling %d needs at least one "+
					"tile along dimension %d", j, i)
			}
			binLength := (bounds[i].Max - bounds[i].Min) / float64(tiles)
			binLengths[j][i] = binLength
			offsetBounds[i] = r1.Interval{
				Min: -binLength / OffsetDiv,
				Max: binLength / OffsetDiv,
			}
		}

		// Sample this tiling's offsets
		samples := mat.NewDense(1, len(bounds), nil)
		sampler := samplemv.IID{Dist: distmv.NewUniform(offsetBounds, src)}
		sampler.Sample(samples)
		offsets[j] = samples.RawRowView(0)
	}

	return &TileCoder{
		bounds:      append([]r1.Interval(nil), bounds...),
		bins:        bins,
		binLengths:  binLengths,
		offsets:     offsets,
		includeBias: includeBias,
	}, nil
}

// EncodeIndices returns the indices of the non-zero units when v is
// tile coded
func (t *TileCoder) EncodeIndices(v mat.Vector) ([]int, error) {
	if v.Len() != len(t.bounds) {
		return nil, fmt.Errorf("encodeIndices: vector has %d dimensions, "+
			"want %d", v.Len(), len(t.bounds))
	}

	indices := make([]int, 0, t.NumTilings()+1)
	if t.includeBias {
		indices = append(indices, 0)
	}
	for j := range t.bins {
		indices = append(indices, t.encodeWithTiling(v, j))
	}
	return indices, nil
}

// Encode encodes a single vector as a tile-coded vector
func (t *TileCoder) Encode(v mat.Vector) (*mat.VecDense, error) {
	indices, err := t.EncodeIndices(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	tileCoded := mat.NewVecDense(t.VecLength(), nil)
	for _, index := range indices {
		tileCoded.SetVec(index, 1.0)
	}
	return tileCoded, nil
}

// encodeWithTiling returns the index of the unit which is 1.0 when v is
// encoded with tiling number tiling
func (t *TileCoder) encodeWithTiling(v mat.Vector, tiling int) int {
	index := 0
	for i, tiles := range t.bins[tiling] {
		data := v.AtVec(i) + t.offsets[tiling][i]
		tile := math.Floor((data - t.bounds[i].Min) / t.binLengths[tiling][i])
		tile = floatutils.Clip(tile, 0, float64(tiles-1))

		// Row-major position of the tile within this tiling
		index = index*tiles + int(tile)
	}
	return t.featuresBeforeTiling(tiling) + index
}

// featuresBeforeTiling calculates how many units precede tiling i in
// the tile-coded representation
func (t *TileCoder) featuresBeforeTiling(i int) int {
	features := 0
	if t.includeBias {
		features++
	}
	for j := 0; j < i; j++ {
		features += prod(t.bins[j])
	}
	return features
}

// VecLength returns the number of units in a tile-coded vector
func (t *TileCoder) VecLength() int {
	return t.featuresBeforeTiling(len(t.bins))
}

// NumTilings returns the number of tilings the tile coder uses for
// encoding vectors
func (t *TileCoder) NumTilings() int {
	return len(t.bins)
}

// Dims returns the number of dimensions of vectors which can be tile
// coded
func (t *TileCoder) Dims() int {
	return len(t.bounds)
}

func (t *TileCoder) String() string {
	return fmt.Sprintf("Tilings %d  |  Tiles: %v", len(t.bins), t.bins)
}

// prod calculates the product of all integers in a []int
func prod(ints []int) int {
	p := 1
	for _, v := range ints {
		p *= v
	}
	return p
}
