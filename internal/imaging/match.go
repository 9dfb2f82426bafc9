// Package imaging implements masked multi-region template matching over
// domain.Bitmap frames (§4.1). No library in the example corpus performs
// normalized cross-correlation / squared-difference template matching —
// this is pure numerical code against stdlib math only, justified in
// DESIGN.md.
package imaging

import (
	"math"

	"github.com/pixelpilot/autocore/internal/domain"
)

// Match is one accepted template-matching result, in observed-frame
// coordinates (§4.1 step 9).
type Match struct {
	X, Y  int
	Score float64
}

// Template is the reference-frame regions (with an implicit mask formed by
// their union) extracted once per ImageCondition evaluation and then
// reused across every offset of the sliding search.
type Template struct {
	regions []domain.Rect
	// bbox is the bounding box of regions in reference-frame coordinates;
	// maskedPixels reports template pixels relative to its origin.
	bbox domain.Rect
	ref  *domain.Bitmap
}

// BuildTemplate captures the regions of ref that make up the template mask.
func BuildTemplate(ref *domain.Bitmap, regions []domain.Rect) Template {
	return Template{regions: regions, bbox: domain.BoundingBox(regions), ref: ref}
}

// maskedPixels yields, for every pixel covered by the template mask, its
// (x, y) offset relative to t.bbox.X/Y and its BGR value.
func (t Template) maskedPixels(yield func(dx, dy int, b, g, r byte)) {
	for _, reg := range t.regions {
		for y := reg.Y; y < reg.Bottom(); y++ {
			for x := reg.X; x < reg.Right(); x++ {
				b, g, r := t.ref.At(x, y)
				yield(x-t.bbox.X, y-t.bbox.Y, b, g, r)
			}
		}
	}
}

// Search slides the template over observed within allow, scoring every
// placement with method, and returns every candidate whose score clears
// threshold (direction depends on method — see scoreAccept). Results are
// NOT yet non-max-suppressed; call NMS separately.
func Search(observed *domain.Bitmap, t Template, allow []domain.Rect, method domain.ImageMethod, threshold float64) []Match {
	var out []Match
	w, h := t.bbox.W, t.bbox.H
	if w <= 0 || h <= 0 {
		return out
	}
	for _, a := range allow {
		maxX := a.Right() - w
		maxY := a.Bottom() - h
		for oy := a.Y; oy <= maxY; oy++ {
			for ox := a.X; ox <= maxX; ox++ {
				if ox+w > observed.Width || oy+h > observed.Height || ox < 0 || oy < 0 {
					continue
				}
				score := score(observed, t, ox, oy, method)
				if math.IsNaN(score) || math.IsInf(score, 0) {
					continue
				}
				if scoreAccept(method, score, threshold) {
					out = append(out, Match{X: ox, Y: oy, Score: score})
				}
			}
		}
	}
	return out
}

// scoreAccept applies the correct comparison direction per method: higher
// is better for the correlation methods, lower is better for SQDIFF.
func scoreAccept(method domain.ImageMethod, score, threshold float64) bool {
	if method == domain.MethodSQDIFFNormed {
		return score <= threshold
	}
	return score >= threshold
}

// score computes the normalized match score for placing t's template at
// (ox, oy) in observed, per method (§4.1 steps 3-8).
func score(observed *domain.Bitmap, t Template, ox, oy int, method domain.ImageMethod) float64 {
	var sumT, sumO, sumTO, sumT2, sumO2 float64
	var n float64

	t.maskedPixels(func(dx, dy int, tb, tg, tr byte) {
		ox2, oy2 := ox+dx, oy+dy
		ob, og, or_ := observed.At(ox2, oy2)
		tSum := float64(tb) + float64(tg) + float64(tr)
		oSum := float64(ob) + float64(og) + float64(or_)
		sumT += tSum
		sumO += oSum
		sumTO += tSum * oSum
		sumT2 += tSum * tSum
		sumO2 += oSum * oSum
		n++
	})
	if n == 0 {
		return math.NaN()
	}

	switch method {
	case domain.MethodCCORRNormed:
		denom := math.Sqrt(sumT2 * sumO2)
		if denom == 0 {
			return 0
		}
		return sumTO / denom
	case domain.MethodCCOEFFNormed:
		meanT := sumT / n
		meanO := sumO / n
		numer := sumTO - n*meanT*meanO
		denomT := sumT2 - n*meanT*meanT
		denomO := sumO2 - n*meanO*meanO
		denom := math.Sqrt(denomT * denomO)
		if denom == 0 {
			return 0
		}
		return numer / denom
	case domain.MethodSQDIFFNormed:
		sqdiff := sumT2 - 2*sumTO + sumO2
		denom := math.Sqrt(sumT2 * sumO2)
		if denom == 0 {
			return 0
		}
		return sqdiff / denom
	default:
		return math.NaN()
	}
}
