package audiocore

import (
	"math"
	"sync/atomic"
	"time"
)

// TimeAnchor maps the device-local capture clock to the wall clock.
//
// Hardware buffer timestamps are in a device clock with an unknown epoch.
// The anchor pairs the device-clock reading of the first callback with the
// wall-clock "now" observed at the same moment; every later sample timestamp
// is extrapolated from that single pair by sample arithmetic, so the
// real-time path never queries the clock again.
//
// Capture is called by the producer; the captured flag is atomic so other
// goroutines can observe whether the anchor exists without locking.
type TimeAnchor struct {
	sampleRate    int
	deviceTimeSec float64   // device clock at the anchor
	wallClockNs   int64     // wall clock at the anchor, ns since epoch
	captured      atomic.Bool
}

// NewTimeAnchor creates an anchor for a stream with the given sample rate.
func NewTimeAnchor(sampleRate int) *TimeAnchor {
	return &TimeAnchor{sampleRate: sampleRate}
}

// Captured reports whether the anchor has been established.
func (a *TimeAnchor) Captured() bool {
	return a.captured.Load()
}

// Capture fixes the anchor from a device-clock reading and the matching
// wall-clock instant. Only the first call has any effect; the anchor is
// immutable thereafter.
func (a *TimeAnchor) Capture(deviceTimeSec float64, now time.Time) {
	if a.captured.Load() {
		return
	}
	a.deviceTimeSec = deviceTimeSec
	a.wallClockNs = now.UnixNano()
	a.captured.Store(true)
}

// DeviceTime returns the device-clock reading at the anchor.
func (a *TimeAnchor) DeviceTime() float64 {
	return a.deviceTimeSec
}

// WallClockNs returns the wall-clock nanoseconds at the anchor.
func (a *TimeAnchor) WallClockNs() int64 {
	return a.wallClockNs
}

// TimestampFor returns the absolute wall-clock nanosecond timestamp of the
// frame at frameIndex within a buffer captured secondsSinceAnchor after the
// anchor. Pure given the anchor, and monotonic for non-decreasing inputs.
func (a *TimeAnchor) TimestampFor(secondsSinceAnchor float64, frameIndex int) int64 {
	elapsed := secondsSinceAnchor + float64(frameIndex)/float64(a.sampleRate)
	return a.wallClockNs + int64(math.Round(elapsed*float64(time.Second)))
}
