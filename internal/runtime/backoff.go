package runtime

import (
	"math"
	"math/rand"
	"time"
)

// backoffRNG is the jitter source for NextRetryTime, swappable so tests get
// deterministic backoff without patching the package clock (§4.7).
type backoffRNG interface {
	Float64() float64
}

type lockedRand struct{ r *rand.Rand }

func (l lockedRand) Float64() float64 { return l.r.Float64() }

func defaultBackoffRNG() backoffRNG {
	return lockedRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// nextRetryTime computes now + rand(0,1) * 2^consecutiveFails * 1000ms
// (§4.7), capped so a runaway failure streak doesn't overflow a duration.
func nextRetryTime(now time.Time, consecutiveFails int, rng backoffRNG) time.Time {
	exp := math.Min(float64(consecutiveFails), 20)
	delayMS := rng.Float64() * math.Pow(2, exp) * 1000
	return now.Add(time.Duration(delayMS) * time.Millisecond)
}
