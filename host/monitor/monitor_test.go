package monitor

import (
	"testing"
	"time"

	"s2timer/report"
)

func frame(t *testing.T, stats ...report.ChannelStat) []byte {
	t.Helper()
	b, err := report.Encode(stats)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return b
}

func TestRateEstimation(t *testing.T) {
	m := New()
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	first := m.Feed(frame(t, report.ChannelStat{Channel: 0, Fires: 1000, AlarmTicks: 1000}), t0)
	if len(first) != 1 {
		t.Fatalf("expected 1 update, got %d", len(first))
	}
	if first[0].Measured {
		t.Errorf("first frame must not report a rate, got %v", first[0].RateHz)
	}

	// One second later, 1000 more firings: 1kHz
	second := m.Feed(frame(t, report.ChannelStat{Channel: 0, Fires: 2000, AlarmTicks: 1000}), t0.Add(time.Second))
	if len(second) != 1 {
		t.Fatalf("expected 1 update, got %d", len(second))
	}
	if !second[0].Measured || second[0].RateHz != 1000 {
		t.Errorf("expected measured 1000Hz, got %+v", second[0])
	}
	if want := ExpectedRate(second[0].AlarmTicks); want != 1000 {
		t.Errorf("expected nominal 1000Hz from alarm ticks, got %v", want)
	}
}

func TestCounterResetHandled(t *testing.T) {
	m := New()
	t0 := time.Now()

	m.Feed(frame(t, report.ChannelStat{Channel: 1, Fires: 500000, AlarmTicks: 200}), t0)
	// Firmware rebooted: counter went backwards
	u := m.Feed(frame(t, report.ChannelStat{Channel: 1, Fires: 10, AlarmTicks: 200}), t0.Add(time.Second))
	if len(u) != 1 {
		t.Fatalf("expected 1 update, got %d", len(u))
	}
	if u[0].Measured {
		t.Errorf("counter reset must not produce a rate, got %v", u[0].RateHz)
	}
}

func TestStalledChannelMeasuredZero(t *testing.T) {
	m := New()
	t0 := time.Now()

	m.Feed(frame(t, report.ChannelStat{Channel: 2, Fires: 400, AlarmTicks: 1000}), t0)
	// Same fire count one second later: the channel stopped firing.
	u := m.Feed(frame(t, report.ChannelStat{Channel: 2, Fires: 400, AlarmTicks: 1000}), t0.Add(time.Second))
	if len(u) != 1 {
		t.Fatalf("expected 1 update, got %d", len(u))
	}
	if !u[0].Measured {
		t.Error("a stalled channel is still a measurement")
	}
	if u[0].RateHz != 0 {
		t.Errorf("stalled channel should measure 0Hz, got %v", u[0].RateHz)
	}
}

func TestMultiChannelFrames(t *testing.T) {
	m := New()
	t0 := time.Now()

	m.Feed(frame(t,
		report.ChannelStat{Channel: 0, Fires: 100, AlarmTicks: 10000},
		report.ChannelStat{Channel: 3, Fires: 50, AlarmTicks: 20000},
	), t0)
	updates := m.Feed(frame(t,
		report.ChannelStat{Channel: 0, Fires: 300, AlarmTicks: 10000},
		report.ChannelStat{Channel: 3, Fires: 150, AlarmTicks: 20000},
	), t0.Add(2*time.Second))

	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}
	if updates[0].Channel != 0 || updates[0].RateHz != 100 {
		t.Errorf("channel 0: expected 100Hz, got %+v", updates[0])
	}
	if updates[1].Channel != 3 || updates[1].RateHz != 50 {
		t.Errorf("channel 3: expected 50Hz, got %+v", updates[1])
	}
}

func TestGarbageTolerated(t *testing.T) {
	m := New()
	stream := append([]byte{0xDE, 0xAD, report.FrameSync}, frame(t, report.ChannelStat{Channel: 2, Fires: 7, AlarmTicks: 100})...)
	updates := m.Feed(stream, time.Now())
	if len(updates) != 1 {
		t.Fatalf("expected 1 update through garbage, got %d", len(updates))
	}
	if m.Dropped() == 0 {
		t.Error("garbage should be counted as dropped")
	}
}
