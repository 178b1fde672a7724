package mock

import (
	"math/rand"
	"sync"
	"time"
)

// pushAlphabet is ordered by ASCII value so generated keys sort
// lexicographically in creation order.
const pushAlphabet = "-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

// pushGenerator produces 20-character keys: 8 characters of encoded epoch
// milliseconds followed by 12 random characters. Within one millisecond the
// random tail is incremented instead of re-rolled, keeping keys monotonic.
type pushGenerator struct {
	mu     sync.Mutex
	lastMs int64
	tail   [12]int
}

func (g *pushGenerator) next(now time.Time) string {
	ms := now.UnixMilli()

	g.mu.Lock()
	defer g.mu.Unlock()

	id := make([]byte, 20)
	ts := ms
	for i := 7; i >= 0; i-- {
		id[i] = pushAlphabet[ts%64]
		ts /= 64
	}

	if ms != g.lastMs {
		g.lastMs = ms
		for i := range g.tail {
			g.tail[i] = rand.Intn(64)
		}
	} else {
		for i := len(g.tail) - 1; i >= 0; i-- {
			if g.tail[i] < 63 {
				g.tail[i]++
				break
			}
			g.tail[i] = 0
		}
	}
	for i, v := range g.tail {
		id[8+i] = pushAlphabet[v]
	}
	return string(id)
}
