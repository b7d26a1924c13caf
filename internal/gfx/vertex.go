package gfx

// MaxBatchVertices is the largest number of distinct vertices a single
// submission can address with 16-bit indices.
const MaxBatchVertices = 65536

// Vertex is the layout of every vertex the 2D batcher accumulates.
type Vertex struct {
	X, Y, Z float32
	Color   uint32 // 0xAARRGGBB
	U, V    float32
}

// Index addresses a vertex of the current batch.
type Index = uint16

// NewVertex builds a vertex with an explicit color.
func NewVertex(x, y, z, u, v float32, color uint32) Vertex {
	return Vertex{X: x, Y: y, Z: z, Color: color, U: u, V: v}
}

// White is the default vertex color.
const White uint32 = 0xFFFFFFFF

// ARGB packs four 8-bit channels into a vertex color.
func ARGB(a, r, g, b uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// UnpackARGB splits a vertex color into its channels.
func UnpackARGB(c uint32) (a, r, g, b uint8) {
	return uint8(c >> 24), uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Vector3 is a plain 3-component vector.
type Vector3 struct {
	X, Y, Z float32
}

// Vector4 is a plain 4-component vector.
type Vector4 struct {
	X, Y, Z, W float32
}

// Box is a viewport or orthographic volume: a rectangle plus a depth range.
type Box struct {
	MinX, MinY, MinZ float32
	MaxX, MaxY, MaxZ float32
}

// NewBox returns a box covering [0,w]x[0,h] with the full depth range.
func NewBox(w, h float32) Box {
	return Box{MaxX: w, MaxY: h, MaxZ: 1}
}

func (b Box) Width() float32  { return b.MaxX - b.MinX }
func (b Box) Height() float32 { return b.MaxY - b.MinY }

// Rect is a scissor rectangle in target pixels.
type Rect struct {
	Left, Top, Right, Bottom float32
}

// NewRect returns a rect covering [0,w]x[0,h].
func NewRect(w, h float32) Rect {
	return Rect{Right: w, Bottom: h}
}

func (r Rect) Width() float32  { return r.Right - r.Left }
func (r Rect) Height() float32 { return r.Bottom - r.Top }

// Range is a contiguous span of a vertex or index buffer.
type Range struct {
	Offset int
	Count  int
}
