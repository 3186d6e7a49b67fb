package core

// ESP32-S2 timer clocking. The timer groups are fed from the 80MHz APB
// clock through a fixed /80 prescaler, so the counters tick at 1MHz.
const (
	TimerBaseClock = 80000000 // APB clock feeding the timer groups
	TimerDivider   = 80       // Hardware timer clock divider

	// TickFrequency is the effective counter increment rate in Hz.
	TickFrequency = TimerBaseClock / TimerDivider

	// MaxTimerChannels is the number of physical channels:
	// 2 groups x 2 timers per group.
	MaxTimerChannels = 4

	// timersPerGroup splits a channel id into (group, index).
	timersPerGroup = 2
)

// TimerCallback runs on the interrupt-service path each time the channel's
// alarm fires. It preempts normal execution and must be safe to run in
// interrupt context: no allocation, no blocking calls.
type TimerCallback func()

// TimerChannel wraps one of the four hardware timer/counter channels as a
// periodic-interrupt source. Construct with NewTimerChannel, then arm with
// SetFrequency or SetInterval.
type TimerChannel struct {
	channel uint8 // MaxTimerChannels marks a permanently invalid instance
	group   TimerGroup
	index   TimerIndex

	isrCtx     ISRContext
	callback   TimerCallback
	alarmTicks uint64
	configured bool
	lastErr    error
}

// NewTimerChannel creates a wrapper for the given physical channel (0-3).
// An out-of-range id does not fail here; it marks the instance invalid and
// every subsequent configuration call on it fails.
func NewTimerChannel(channelID uint8) *TimerChannel {
	t := &TimerChannel{}
	if channelID < MaxTimerChannels {
		t.channel = channelID
		t.group = TimerGroup(channelID / timersPerGroup)
		t.index = TimerIndex(channelID % timersPerGroup)
		t.isrCtx = ISRContext{Group: t.group, Index: t.index}
	} else {
		t.channel = MaxTimerChannels
	}
	return t
}

// baseConfig is the fixed configuration programmed on every (re)configure:
// count up from zero, alarm enabled, auto-reload so the counter restarts
// after each firing.
var baseConfig = TimerConfig{
	AlarmEnable:   true,
	CounterEnable: true,
	CountUp:       true,
	AutoReload:    true,
	Divider:       TimerDivider,
}

// TicksFromFrequency converts a callback frequency in Hz to an alarm
// threshold in counter ticks, truncating toward zero.
func TicksFromFrequency(frequencyHz float64) uint64 {
	return uint64(TickFrequency / frequencyHz)
}

// TicksFromUS converts a period in microseconds to counter ticks.
func TicksFromUS(us uint32) uint64 {
	return uint64(us) * TickFrequency / 1000000
}

// SetFrequency fully (re)initializes the channel to fire callback at
// frequencyHz. Returns false without touching hardware if the instance is
// invalid, the frequency does not yield a positive alarm threshold, the
// channel is already owned by another instance, or no driver is installed.
// On success the channel counts up from zero and interrupts are enabled.
func (t *TimerChannel) SetFrequency(frequencyHz float64, callback TimerCallback) bool {
	if !t.valid() {
		return t.fail(ErrInvalidChannel)
	}
	if frequencyHz <= 0 {
		return t.fail(ErrInvalidFrequency)
	}
	return t.configure(TicksFromFrequency(frequencyHz), callback)
}

// SetInterval is the interval form of SetFrequency: the callback fires
// every intervalUS microseconds. The threshold comes straight from the
// integer tick conversion, so no float rounding is involved.
func (t *TimerChannel) SetInterval(intervalUS uint32, callback TimerCallback) bool {
	if !t.valid() {
		return t.fail(ErrInvalidChannel)
	}
	if intervalUS == 0 {
		return t.fail(ErrInvalidFrequency)
	}
	return t.configure(TicksFromUS(intervalUS), callback)
}

// configure programs the fixed base configuration and the given alarm
// threshold, then installs the callback. Shared tail of the frequency and
// interval forms.
func (t *TimerChannel) configure(ticks uint64, callback TimerCallback) bool {
	if ticks == 0 {
		// Requested rate exceeds the 1MHz tick rate.
		return t.fail(ErrInvalidFrequency)
	}
	d := timerDriver
	if d == nil {
		return t.fail(ErrNoDriver)
	}
	if err := claimChannel(t.channel, t); err != nil {
		return t.fail(err)
	}

	if err := d.Init(t.group, t.index, baseConfig); err != nil {
		return t.fail(err)
	}
	// Counter to zero: counting up to the alarm value.
	if err := d.SetCounter(t.group, t.index, 0); err != nil {
		return t.fail(err)
	}
	if err := d.SetAlarm(t.group, t.index, ticks); err != nil {
		return t.fail(err)
	}
	if err := d.EnableInterrupt(t.group, t.index); err != nil {
		return t.fail(err)
	}

	t.callback = callback
	t.alarmTicks = ticks

	// The handler runs from IRAM and may only call ISR-safe driver ops.
	if err := d.RegisterISR(t.group, t.index, t.serviceInterrupt, &t.isrCtx, ISRFlagIRAM); err != nil {
		return t.fail(err)
	}

	t.configured = true
	t.lastErr = nil
	DebugPrintln("[TIMER] channel " + itoa(int(t.channel)) +
		" armed, alarm=" + utoa(ticks) + " ticks")
	return true
}

// AttachInterrupt is an alias of SetFrequency.
func (t *TimerChannel) AttachInterrupt(frequencyHz float64, callback TimerCallback) bool {
	return t.SetFrequency(frequencyHz, callback)
}

// AttachInterruptInterval is an alias of SetInterval.
func (t *TimerChannel) AttachInterruptInterval(intervalUS uint32, callback TimerCallback) bool {
	return t.SetInterval(intervalUS, callback)
}

// DetachInterrupt disables the channel's interrupt at the peripheral.
// The programmed alarm value and the stored callback are retained, so
// ReattachInterrupt resumes the previous cadence. Idempotent.
func (t *TimerChannel) DetachInterrupt() {
	t.setInterruptEnable(false)
}

// DisableTimer is an alias of DetachInterrupt.
func (t *TimerChannel) DisableTimer() {
	t.setInterruptEnable(false)
}

// ReattachInterrupt re-enables a previously disabled channel's interrupt.
// Idempotent. Behavior is undefined before the first successful
// SetFrequency/SetInterval: the peripheral has not been initialized.
func (t *TimerChannel) ReattachInterrupt() {
	t.setInterruptEnable(true)
}

// EnableTimer is an alias of ReattachInterrupt.
func (t *TimerChannel) EnableTimer() {
	t.setInterruptEnable(true)
}

// StopTimer gates the channel's clock off. The counter value and alarm
// threshold are retained.
func (t *TimerChannel) StopTimer() {
	if !t.valid() || timerDriver == nil {
		return
	}
	t.lastErr = timerDriver.Pause(t.group, t.index)
}

// RestartTimer resets the counter to zero and reconnects the clock source.
// The alarm threshold and callback are not reprogrammed.
func (t *TimerChannel) RestartTimer() {
	if !t.valid() || timerDriver == nil {
		return
	}
	if err := timerDriver.SetCounter(t.group, t.index, 0); err != nil {
		t.lastErr = err
		return
	}
	t.lastErr = timerDriver.Start(t.group, t.index)
}

// Close disables the channel's interrupt, drops the stored callback and
// releases ownership of the physical channel. Idempotent; safe on invalid
// or never-configured instances.
func (t *TimerChannel) Close() {
	if t.valid() && t.configured && timerDriver != nil {
		t.lastErr = timerDriver.DisableInterrupt(t.group, t.index)
	}
	t.callback = nil
	t.configured = false
	if t.valid() {
		releaseChannel(t.channel, t)
	}
}

// GetTimer returns the timer index within the group.
func (t *TimerChannel) GetTimer() TimerIndex {
	return t.index
}

// GetTimerGroup returns the timer group.
func (t *TimerChannel) GetTimerGroup() TimerGroup {
	return t.group
}

// AlarmTicks returns the alarm threshold programmed by the last successful
// configuration, in counter ticks.
func (t *TimerChannel) AlarmTicks() uint64 {
	return t.alarmTicks
}

// Configured reports whether a configuration call has succeeded.
func (t *TimerChannel) Configured() bool {
	return t.configured
}

// Err returns the error recorded by the most recent failed operation, or
// nil if the last operation succeeded.
func (t *TimerChannel) Err() error {
	return t.lastErr
}

func (t *TimerChannel) valid() bool {
	return t.channel < MaxTimerChannels
}

func (t *TimerChannel) fail(err error) bool {
	t.lastErr = err
	DebugPrintln("[TIMER] channel " + itoa(int(t.channel)) + ": " + err.Error())
	return false
}

func (t *TimerChannel) setInterruptEnable(enable bool) {
	if !t.valid() || timerDriver == nil {
		return
	}
	if enable {
		t.lastErr = timerDriver.EnableInterrupt(t.group, t.index)
	} else {
		t.lastErr = timerDriver.DisableInterrupt(t.group, t.index)
	}
}
