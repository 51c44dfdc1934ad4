package deal

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"nilclear/pkg/domain"
)

// =============================================================================
// Entity Lock Tests
// =============================================================================
// Justification for unit tests:
// The per-athlete lock is what keeps concurrent evaluations from reading a
// stale volume total. The tests pin mutual exclusion per entity and that the
// refcounted map shrinks back once every holder releases.

func lockEntity(b byte) domain.EntityID {
	var id domain.EntityID
	id[19] = b
	return id
}

func Test_EntityLock_SerializesSameEntity(t *testing.T) {
	locks := newEntityLock()
	athlete := lockEntity(1)

	var counter, max int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := locks.acquire(athlete)
			defer release()

			mu.Lock()
			counter++
			if counter > max {
				max = counter
			}
			mu.Unlock()

			mu.Lock()
			counter--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, max, "at most one holder per entity at a time")
	assert.Empty(t, locks.locks, "released entries must be reclaimed")
}

func Test_EntityLock_DistinctEntitiesDoNotBlock(t *testing.T) {
	locks := newEntityLock()

	releaseA := locks.acquire(lockEntity(1))
	defer releaseA()

	done := make(chan struct{})
	go func() {
		release := locks.acquire(lockEntity(2))
		release()
		close(done)
	}()

	// Must complete without releaseA being called; a shared lock would
	// deadlock here.
	<-done

	assert.Len(t, locks.locks, 1, "only the held entry remains")
}
