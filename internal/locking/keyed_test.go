package locking

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockUnlock(t *testing.T) {
	km := NewKeyedMutex()
	km.Lock("a")
	km.Unlock("a")
}

func TestIndependentKeysDoNotBlock(t *testing.T) {
	km := NewKeyedMutex()
	km.Lock("a")

	done := make(chan struct{})
	go func() {
		km.Lock("b")
		km.Unlock("b")
		close(done)
	}()

	<-done
	km.Unlock("a")
}

func TestSameKeySerializes(t *testing.T) {
	km := NewKeyedMutex()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("room")
			counter++
			km.Unlock("room")
		}()
	}
	wg.Wait()

	require.Equal(t, 50, counter)
}

func TestEntriesAreReleased(t *testing.T) {
	km := NewKeyedMutex()
	km.Lock("a")
	km.Lock("b")
	km.Unlock("b")
	km.Unlock("a")

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.entries)
}

func TestUnlockUnheldKeyPanics(t *testing.T) {
	km := NewKeyedMutex()
	assert.Panics(t, func() {
		km.Unlock("nope")
	})
}
