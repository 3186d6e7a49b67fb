package core

import "sync/atomic"

// Per-channel fire counters, bumped from the interrupt trampoline. Atomic
// so firmware main loops and the report encoder can read them while the
// interrupt path writes.
var fireCounts [MaxTimerChannels]uint32

// recordFire bumps the fire counter for a channel. Interrupt-context safe.
func recordFire(channel uint8) {
	atomic.AddUint32(&fireCounts[channel], 1)
}

// FireCount returns the number of interrupt firings observed on a channel
// since boot or the last ResetFireCounts.
func FireCount(channel uint8) uint32 {
	if channel >= MaxTimerChannels {
		return 0
	}
	return atomic.LoadUint32(&fireCounts[channel])
}

// FireCounts returns a snapshot of all four channel counters.
func FireCounts() [MaxTimerChannels]uint32 {
	var snap [MaxTimerChannels]uint32
	for i := range snap {
		snap[i] = atomic.LoadUint32(&fireCounts[i])
	}
	return snap
}

// ResetFireCounts zeroes all channel counters.
func ResetFireCounts() {
	for i := range fireCounts {
		atomic.StoreUint32(&fireCounts[i], 0)
	}
}
