package testutil

import "sync"

// FixedRunIDGenerator returns predetermined run ids in order, then keeps
// returning the last one.
//
// The same scenario with the same generator produces byte-identical traces,
// which is what golden comparisons need.
//
// Thread-safety: FixedRunIDGenerator is safe for concurrent use via internal mutex.
type FixedRunIDGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedRunIDGenerator creates a fixed generator. Empty ids are skipped;
// with none left, the generator returns "test-run-default".
func NewFixedRunIDGenerator(ids ...string) *FixedRunIDGenerator {
	g := &FixedRunIDGenerator{}
	for _, id := range ids {
		if id != "" {
			g.ids = append(g.ids, id)
		}
	}
	if len(g.ids) == 0 {
		g.ids = []string{"test-run-default"}
	}
	return g
}

// Generate returns the next run id.
func (g *FixedRunIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.ids[g.idx]
	if g.idx < len(g.ids)-1 {
		g.idx++
	}
	return id
}
