package domain

// Bitmap is a raw 3-channel 8-bit-per-channel image buffer, BGR channel
// order on disk (§6) and in memory — the shape the external Capture
// collaborator and the reference-frame PNG loader both produce. Bitmap is
// the unit the image evaluator and NMS operate on.
type Bitmap struct {
	Width  int
	Height int
	// Pix holds Width*Height*3 bytes, row-major, 3 bytes per pixel (B,G,R).
	Pix []byte
}

// NewBitmap allocates a zeroed bitmap of the given dimensions.
func NewBitmap(width, height int) *Bitmap {
	return &Bitmap{Width: width, Height: height, Pix: make([]byte, width*height*3)}
}

// At returns the (b, g, r) triple at (x, y). Callers must stay in bounds;
// this is a hot path used by the matcher and is not bounds-checked beyond
// what the slice access itself performs.
func (b *Bitmap) At(x, y int) (byte, byte, byte) {
	i := (y*b.Width + x) * 3
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2]
}

// Set writes the (b, g, r) triple at (x, y).
func (b *Bitmap) Set(x, y int, bb, gg, rr byte) {
	i := (y*b.Width + x) * 3
	b.Pix[i], b.Pix[i+1], b.Pix[i+2] = bb, gg, rr
}

// Rect is an axis-aligned rectangle in image coordinates, half-open on the
// high edge ([X, X+W) x [Y, Y+H)), matching the "regions"/"allow_regions"
// rectangles of an ImageCondition (§3).
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Right() int  { return r.X + r.W }
func (r Rect) Bottom() int { return r.Y + r.H }

func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Intersects reports whether two rectangles overlap (open intersection;
// edge-touching rectangles do not count as overlapping).
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// BoundingBox returns the smallest rectangle containing all of rs. Callers
// must pass a non-empty slice.
func BoundingBox(rs []Rect) Rect {
	bb := rs[0]
	for _, r := range rs[1:] {
		if r.X < bb.X {
			bb.W += bb.X - r.X
			bb.X = r.X
		}
		if r.Y < bb.Y {
			bb.H += bb.Y - r.Y
			bb.Y = r.Y
		}
		if r.Right() > bb.Right() {
			bb.W = r.Right() - bb.X
		}
		if r.Bottom() > bb.Bottom() {
			bb.H = r.Bottom() - bb.Y
		}
	}
	return bb
}
