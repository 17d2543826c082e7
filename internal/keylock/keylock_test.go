package keylock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAcquireSameKeySerializes(t *testing.T) {
	r := New()

	var inSection, max int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := r.Acquire("k")
			defer release()
			mu.Lock()
			inSection++
			if inSection > max {
				max = inSection
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inSection--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, max, "two holders of the same key overlapped")
}

func TestAcquireDistinctKeysDoNotBlock(t *testing.T) {
	r := New()

	release := r.Acquire("a")
	defer release()

	done := make(chan struct{})
	go func() {
		rel := r.Acquire("b")
		rel()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("acquire on a different key blocked")
	}
}

func TestReleaseAllowsReacquire(t *testing.T) {
	r := New()
	release := r.Acquire("k")
	release()

	done := make(chan struct{})
	go func() {
		rel := r.Acquire("k")
		rel()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock was not released")
	}
}
