package ordering

import (
	"sort"
	"sync"
)

// Locks serializes structural mutations per scope key. Operations on
// disjoint scopes proceed in parallel; operations sharing any scope run in
// the order they acquired it.
type Locks struct {
	mu   sync.Mutex
	held map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewLocks creates an empty lock set
func NewLocks() *Locks {
	return &Locks{held: make(map[string]*keyLock)}
}

// Lock acquires every key and returns a function that releases them.
// Keys are taken in sorted order so two callers locking overlapping sets
// cannot deadlock.
func (l *Locks) Lock(keys ...string) (unlock func()) {
	keys = dedupe(keys)

	acquired := make([]*keyLock, 0, len(keys))
	for _, k := range keys {
		l.mu.Lock()
		kl, ok := l.held[k]
		if !ok {
			kl = &keyLock{}
			l.held[k] = kl
		}
		kl.refs++
		l.mu.Unlock()

		kl.mu.Lock()
		acquired = append(acquired, kl)
	}

	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].mu.Unlock()

			l.mu.Lock()
			acquired[i].refs--
			if acquired[i].refs == 0 {
				delete(l.held, keys[i])
			}
			l.mu.Unlock()
		}
	}
}

// Len returns the number of keys currently held or waited on.
func (l *Locks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}

func dedupe(keys []string) []string {
	out := make([]string, len(keys))
	copy(out, keys)
	sort.Strings(out)
	n := 0
	for i, k := range out {
		if i > 0 && k == out[n-1] {
			continue
		}
		out[n] = k
		n++
	}
	return out[:n]
}
