package poll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollSetDispatchesFromMultipleSources(t *testing.T) {
	var p PollSet

	a := make(chan Event, 1)
	b := make(chan Event, 1)
	p.Add("a", a)
	p.Add("b", b)

	b <- Event{Kind: Reply, Value: "from-b"}

	ev, ok := p.Poll(time.Second)
	require.True(t, ok)
	assert.Equal(t, "b", ev.Key)
	assert.Equal(t, "from-b", ev.Value)
}

func TestPollSetTimesOutWhenNothingReady(t *testing.T) {
	var p PollSet
	p.Add("a", make(chan Event))

	_, ok := p.Poll(20 * time.Millisecond)
	assert.False(t, ok)
}

func TestPollSetRemoveStopsDispatch(t *testing.T) {
	var p PollSet
	a := make(chan Event, 1)
	p.Add("a", a)
	p.Remove("a")

	a <- Event{Kind: Closed}

	_, ok := p.Poll(20 * time.Millisecond)
	assert.False(t, ok)
}
