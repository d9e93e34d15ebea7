package pace

import (
	"time"
)

// FrameTimes keeps a smoothed view of redraw durations for one window.
type FrameTimes struct {
	FrameCount      uint64
	AverageInterval time.Duration
	MaxInterval     time.Duration

	// Delta to the previous redraw
	Delta time.Duration

	lastTime time.Time
}

func (t *FrameTimes) update(d time.Duration) {
	const window = 64

	t.Delta = d
	t.MaxInterval = max(t.MaxInterval, d)

	if t.FrameCount < window/2 {
		t.AverageInterval = d
	} else {
		t.AverageInterval = ((window-1)*t.AverageInterval + d) / window
	}
}

func (t *FrameTimes) FPS() float64 {
	if t.AverageInterval <= 0 {
		return 0
	}

	return 1.0 / t.AverageInterval.Seconds()
}

// Tick records a redraw at instant now. It returns true every 60 frames as
// a hint to log the current numbers.
func (t *FrameTimes) Tick(now time.Time) bool {
	if t.FrameCount > 0 {
		t.update(now.Sub(t.lastTime))
	}

	t.lastTime = now
	t.FrameCount += 1

	return t.FrameCount%60 == 0
}
