package imaging

import (
	"sort"

	"github.com/pixelpilot/autocore/internal/domain"
)

// Suppress applies padding-inflated non-maximum suppression to candidates,
// keeping the best-scoring match in each cluster of overlapping boxes and
// capping the result at limit accepted matches (0 means unbounded) (§4.1
// steps 9-10). candidates need not be pre-sorted.
func Suppress(candidates []Match, w, h, padding, limit int, method domain.ImageMethod) []Match {
	if len(candidates) == 0 {
		return nil
	}
	ordered := append([]Match(nil), candidates...)
	better := func(a, b Match) bool {
		if method == domain.MethodSQDIFFNormed {
			return a.Score < b.Score
		}
		return a.Score > b.Score
	}
	sort.Slice(ordered, func(i, j int) bool { return better(ordered[i], ordered[j]) })

	var kept []Match
	for _, cand := range ordered {
		if limit > 0 && len(kept) >= limit {
			break
		}
		box := inflate(domain.Rect{X: cand.X, Y: cand.Y, W: w, H: h}, padding)
		suppressed := false
		for _, k := range kept {
			if box.Intersects(domain.Rect{X: k.X, Y: k.Y, W: w, H: h}) {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, cand)
		}
	}
	return kept
}

func inflate(r domain.Rect, padding int) domain.Rect {
	return domain.Rect{X: r.X - padding, Y: r.Y - padding, W: r.W + 2*padding, H: r.H + 2*padding}
}
