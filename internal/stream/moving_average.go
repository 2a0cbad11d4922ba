package stream

import "time"

// MovingAverage tracks transactions per second over a fixed wall-clock
// window. It is mutated only by the stream's single consumer goroutine and
// needs no locking.
type MovingAverage struct {
	window  time.Duration
	samples []sample
	sum     uint64
	nowFn   func() time.Time
}

type sample struct {
	at    time.Time
	count uint64
}

// NewMovingAverage returns a meter averaging over windowMillis of wall time.
func NewMovingAverage(windowMillis int64) *MovingAverage {
	return &MovingAverage{
		window: time.Duration(windowMillis) * time.Millisecond,
		nowFn:  time.Now,
	}
}

// Tick records count items observed now and drops samples older than the
// window.
func (m *MovingAverage) Tick(count uint64) {
	now := m.nowFn()
	m.samples = append(m.samples, sample{at: now, count: count})
	m.sum += count

	cutoff := now.Add(-m.window)
	drop := 0
	for drop < len(m.samples)-1 && m.samples[drop].at.Before(cutoff) {
		m.sum -= m.samples[drop].count
		drop++
	}
	if drop > 0 {
		m.samples = m.samples[drop:]
	}
}

// Avg returns the current items-per-second estimate. With fewer than two
// samples there is no elapsed interval to average over and Avg returns 0.
func (m *MovingAverage) Avg() float64 {
	if len(m.samples) < 2 {
		return 0
	}
	elapsed := m.samples[len(m.samples)-1].at.Sub(m.samples[0].at)
	if elapsed <= 0 {
		return 0
	}
	return float64(m.sum-m.samples[0].count) / elapsed.Seconds()
}

// Sum returns the total count currently inside the window.
func (m *MovingAverage) Sum() uint64 { return m.sum }
