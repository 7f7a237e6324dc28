package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMalformedCounterTerminatesAtThreshold(t *testing.T) {
	var c MalformedCounter

	assert.False(t, c.Bad())
	assert.False(t, c.Bad())
	assert.True(t, c.Bad())
	assert.Equal(t, MaxMalformed, c.Count())

	c.Good()
	assert.Equal(t, 0, c.Count())
}

func TestTimedMutexLockTimeout(t *testing.T) {
	var tm TimedMutex
	tm.Lock()

	var wg sync.WaitGroup
	wg.Add(1)
	var acquired bool
	go func() {
		defer wg.Done()
		acquired = tm.LockTimeout(10 * time.Millisecond)
	}()
	wg.Wait()
	assert.False(t, acquired)

	tm.Unlock()
	assert.True(t, tm.LockTimeout(10*time.Millisecond))
	tm.Unlock()
}
