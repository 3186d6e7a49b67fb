// Package monitor consumes the firmware's stats stream and estimates the
// achieved interrupt rate per timer channel.
package monitor

import (
	"time"

	"s2timer/report"
)

// Update is one channel's state derived from a received stats frame.
type Update struct {
	Channel    uint8
	Fires      uint32
	AlarmTicks uint32

	// RateHz is the interrupt rate estimated from the fire-count delta
	// between this frame and the previous one. Only valid when Measured
	// is true.
	RateHz float64

	// Measured reports whether RateHz was actually computed. False on
	// the first frame for a channel and after a firmware counter reset,
	// so a stalled channel (Measured with RateHz zero) is
	// distinguishable from one not yet observed twice.
	Measured bool
}

type lastSample struct {
	fires uint32
	at    time.Time
}

// Monitor tracks per-channel fire counts across frames.
type Monitor struct {
	dec  report.Decoder
	last map[uint8]lastSample
}

func New() *Monitor {
	return &Monitor{
		last: make(map[uint8]lastSample),
	}
}

// Feed consumes raw stream bytes received at time now and returns one
// Update per channel record in each decoded frame.
func (m *Monitor) Feed(data []byte, now time.Time) []Update {
	var updates []Update
	for _, frame := range m.dec.Feed(data) {
		for _, s := range frame {
			updates = append(updates, m.update(s, now))
		}
	}
	return updates
}

// Dropped returns the number of frames discarded by the decoder.
func (m *Monitor) Dropped() int {
	return m.dec.Dropped()
}

func (m *Monitor) update(s report.ChannelStat, now time.Time) Update {
	u := Update{
		Channel:    s.Channel,
		Fires:      s.Fires,
		AlarmTicks: s.AlarmTicks,
	}

	prev, seen := m.last[s.Channel]
	m.last[s.Channel] = lastSample{fires: s.Fires, at: now}

	if !seen || s.Fires < prev.fires {
		// First frame or firmware counter reset
		return u
	}
	dt := now.Sub(prev.at).Seconds()
	if dt > 0 {
		u.RateHz = float64(s.Fires-prev.fires) / dt
		u.Measured = true
	}
	return u
}

// ExpectedRate converts an alarm threshold back to the nominal interrupt
// frequency, for comparison against the estimate.
func ExpectedRate(alarmTicks uint32) float64 {
	if alarmTicks == 0 {
		return 0
	}
	return 1000000.0 / float64(alarmTicks)
}
