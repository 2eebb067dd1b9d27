package loader

import (
	"math"
	"math/rand"
	"time"
)

type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter time.Duration
}

var defaultBackoff = Backoff{
	Base:   2 * time.Second,
	Max:    5 * time.Minute,
	Jitter: 250 * time.Millisecond,
}

// Delay is the wait before retry number attempt+1:
// attempt=0 => base, attempt=1 => 2*base, ... capped at Max, plus jitter.
func (b Backoff) Delay(attempt int) time.Duration {
	raw := float64(b.Base) * math.Pow(2, float64(attempt))

	delay := b.Max
	if raw < float64(b.Max) {
		delay = time.Duration(raw)
	}

	if b.Jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(b.Jitter)))
	}
	return delay
}

func ExponentialBackoff(attempt int) time.Duration {
	return defaultBackoff.Delay(attempt)
}
