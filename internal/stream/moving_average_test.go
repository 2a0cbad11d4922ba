package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests drive the averaging window deterministically.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestMovingAverage(windowMillis int64) (*MovingAverage, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := NewMovingAverage(windowMillis)
	m.nowFn = func() time.Time { return clock.now }
	return m, clock
}

func TestMovingAverageNoSamples(t *testing.T) {
	m, _ := newTestMovingAverage(3000)
	assert.Zero(t, m.Avg())
	assert.Zero(t, m.Sum())
}

func TestMovingAverageSingleSample(t *testing.T) {
	m, _ := newTestMovingAverage(3000)
	m.Tick(100)
	assert.Zero(t, m.Avg(), "one sample has no elapsed interval")
	assert.Equal(t, uint64(100), m.Sum())
}

func TestMovingAverageSteadyRate(t *testing.T) {
	m, clock := newTestMovingAverage(3000)

	// 100 txns every 100ms is 1000 tps.
	m.Tick(100)
	for i := 0; i < 10; i++ {
		clock.advance(100 * time.Millisecond)
		m.Tick(100)
	}
	assert.InDelta(t, 1000, m.Avg(), 1)
}

func TestMovingAverageEvictsOldSamples(t *testing.T) {
	m, clock := newTestMovingAverage(1000)

	m.Tick(1_000_000)
	clock.advance(2 * time.Second)
	m.Tick(10)
	clock.advance(100 * time.Millisecond)
	m.Tick(10)

	// The burst fell out of the window, so only the recent ticks count.
	assert.Equal(t, uint64(20), m.Sum())
	assert.InDelta(t, 100, m.Avg(), 1)
}
