package deal

import (
	"sync"

	"nilclear/pkg/domain"
)

// entityLock serializes deal mutations per athlete. Two concurrent
// evaluations against the same athlete would otherwise both pass a volume
// limit check on a stale total; different athletes stay fully parallel.
type entityLock struct {
	mu    sync.Mutex
	locks map[domain.EntityID]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func newEntityLock() *entityLock {
	return &entityLock{locks: make(map[domain.EntityID]*entry)}
}

// acquire blocks until the athlete's lock is held and returns the release
// function. Entries are refcounted so the map does not grow with every
// athlete ever seen.
func (l *entityLock) acquire(entity domain.EntityID) func() {
	l.mu.Lock()
	e, ok := l.locks[entity]
	if !ok {
		e = &entry{}
		l.locks[entity] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, entity)
		}
		l.mu.Unlock()
	}
}
