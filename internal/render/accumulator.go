package render

import (
	"fmt"
	"slices"

	"stg-renderer/internal/gfx"
)

// Reservation is space handed out by Accumulator.Reserve. The views are
// valid until the next Reserve or Reset.
type Reservation struct {
	Vertices []gfx.Vertex
	Indices  []gfx.Index
	// Base is the batch index of Vertices[0]; indices written into Indices
	// must be offset by it.
	Base int
}

// Accumulator is append-only vertex/index storage for the open batch.
type Accumulator struct {
	vertices []gfx.Vertex
	indices  []gfx.Index
	limit    int
}

// NewAccumulator returns an accumulator holding at most limit vertices.
// Limits outside (0, gfx.MaxBatchVertices] are clamped to the maximum.
func NewAccumulator(limit int) *Accumulator {
	if limit <= 0 || limit > gfx.MaxBatchVertices {
		limit = gfx.MaxBatchVertices
	}
	return &Accumulator{limit: limit}
}

// Reserve appends space for vertexCount vertices and indexCount indices.
func (a *Accumulator) Reserve(vertexCount, indexCount int) (Reservation, error) {
	if vertexCount < 0 || indexCount < 0 {
		return Reservation{}, fmt.Errorf("%w: negative reservation %d/%d", ErrInvalidArgument, vertexCount, indexCount)
	}
	base := len(a.vertices)
	if base+vertexCount > a.limit {
		return Reservation{}, fmt.Errorf("%w: %d + %d vertices, limit %d", ErrCapacityExceeded, base, vertexCount, a.limit)
	}
	ibase := len(a.indices)

	a.vertices = slices.Grow(a.vertices, vertexCount)[:base+vertexCount]
	a.indices = slices.Grow(a.indices, indexCount)[:ibase+indexCount]

	return Reservation{
		Vertices: a.vertices[base : base+vertexCount : base+vertexCount],
		Indices:  a.indices[ibase : ibase+indexCount : ibase+indexCount],
		Base:     base,
	}, nil
}

// Reset empties the accumulator and keeps its storage.
func (a *Accumulator) Reset() {
	a.vertices = a.vertices[:0]
	a.indices = a.indices[:0]
}

func (a *Accumulator) Vertices() []gfx.Vertex { return a.vertices }
func (a *Accumulator) Indices() []gfx.Index   { return a.indices }
func (a *Accumulator) Empty() bool            { return len(a.vertices) == 0 }
func (a *Accumulator) Limit() int             { return a.limit }

// Capacity reports the allocated vertex and index storage.
func (a *Accumulator) Capacity() (vertices, indices int) {
	return cap(a.vertices), cap(a.indices)
}
