package oracle

import (
	"sync"

	"github.com/chazu/facet/pkg/interval"
	"github.com/deadsy/sdfx/sdf"
)

// Context is an oracle-defined memo object shared across calls and
// batches. Oracles recover their own context kind with a checked type
// assertion and ignore kinds they do not understand.
type Context interface {
	// OracleContext marks the type as usable in a Request.
	OracleContext()
}

type memoKey struct {
	name string
	box  sdf.Box3
}

// Memo caches interval results per clause name and box. It is safe for
// concurrent use by independent batches.
type Memo struct {
	mu        sync.Mutex
	intervals map[memoKey]interval.Interval
	hits      int
}

var _ Context = (*Memo)(nil)

// NewMemo returns an empty memo.
func NewMemo() *Memo {
	return &Memo{intervals: make(map[memoKey]interval.Interval)}
}

// OracleContext implements Context.
func (m *Memo) OracleContext() {}

// Interval returns the cached interval for (name, box), computing and
// storing it on a miss.
func (m *Memo) Interval(name string, box sdf.Box3, compute func() interval.Interval) interval.Interval {
	k := memoKey{name: name, box: box}

	m.mu.Lock()
	if v, ok := m.intervals[k]; ok {
		m.hits++
		m.mu.Unlock()
		return v
	}
	m.mu.Unlock()

	v := compute()

	m.mu.Lock()
	m.intervals[k] = v
	m.mu.Unlock()
	return v
}

// Hits returns the number of cache hits so far.
func (m *Memo) Hits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}

// Len returns the number of cached entries.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.intervals)
}
