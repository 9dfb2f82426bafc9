package imaging

import "github.com/pixelpilot/autocore/internal/domain"

// Evaluate runs the full §4.1 pipeline for one ImageCondition against one
// observed frame: build the template from ref, search the allow regions
// (defaulting to the template regions when unset), suppress overlapping
// matches, and cap at MatchLimit. A condition passes when at least one
// match survives.
func Evaluate(ref, observed *domain.Bitmap, cond domain.ImageCondition) []Match {
	allow := cond.AllowRegions
	if len(allow) == 0 {
		allow = cond.Regions
	}
	tmpl := BuildTemplate(ref, cond.Regions)
	candidates := Search(observed, tmpl, allow, cond.Method, cond.Threshold)
	return Suppress(candidates, tmpl.bbox.W, tmpl.bbox.H, cond.Padding, cond.MatchLimit, cond.Method)
}

// Passes reports whether cond is satisfied against the given frames —
// i.e. Evaluate returns at least one match.
func Passes(ref, observed *domain.Bitmap, cond domain.ImageCondition) bool {
	return len(Evaluate(ref, observed, cond)) > 0
}
