// Package lock provides in-process mutual exclusion keyed by record identifier.
package lock

import (
	"sort"
	"sync"
)

// Keyed hands out one mutex per key. Mutexes are never reclaimed; the key space is
// bounded by the number of live records touched by this process.
type Keyed struct {
	mutexes sync.Map
}

// New creates an empty keyed mutex set.
func New() *Keyed {
	return &Keyed{}
}

func (k *Keyed) get(key string) *sync.Mutex {
	value, _ := k.mutexes.LoadOrStore(key, &sync.Mutex{})
	return value.(*sync.Mutex)
}

// Lock acquires the mutexes for all keys and returns the matching unlock function.
// Keys are deduplicated and taken in sorted order so two callers locking the same
// pair in opposite order cannot deadlock.
func (k *Keyed) Lock(keys ...string) (unlock func()) {
	uniq := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		uniq = append(uniq, key)
	}
	sort.Strings(uniq)

	held := make([]*sync.Mutex, 0, len(uniq))
	for _, key := range uniq {
		m := k.get(key)
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
