package core

// TimerGroup identifies one of the two hardware timer groups.
type TimerGroup uint8

// TimerIndex identifies one of the two timers within a group.
type TimerIndex uint8

const (
	TimerGroup0 TimerGroup = 0
	TimerGroup1 TimerGroup = 1

	TimerIndex0 TimerIndex = 0
	TimerIndex1 TimerIndex = 1
)

// TimerConfig is the base configuration programmed into a channel on init.
// The library always uses the same record: alarm on, counting up from zero,
// auto-reload on, divider fixed at TimerDivider.
type TimerConfig struct {
	AlarmEnable   bool
	CounterEnable bool
	CountUp       bool
	AutoReload    bool
	Divider       uint32
}

// ISRFlags controls how the driver installs the interrupt handler.
type ISRFlags uint32

const (
	// ISRFlagIRAM requests execution from fast/protected instruction memory.
	// Handlers installed with this flag must not call blocking or
	// non-reentrant platform services.
	ISRFlagIRAM ISRFlags = 1 << 0
)

// ISRContext carries the channel coordinates into the interrupt handler.
// It is passed by reference to RegisterISR so the handler never has to
// decode an integer-encoded pointer.
type ISRContext struct {
	Group TimerGroup
	Index TimerIndex
}

// ISRHandler runs on the interrupt-service path for one channel.
type ISRHandler func(ctx *ISRContext)

// TimerDriver is the abstract timer-group interface that core code uses.
// Platform-specific implementations handle actual register access.
//
// The ISR-side operations (SpinlockAcquire through RearmAlarm) are only
// called from within a registered interrupt handler and must be safe in
// that context: no allocation, no blocking.
type TimerDriver interface {
	// Init programs the base configuration for a channel
	Init(group TimerGroup, index TimerIndex, cfg TimerConfig) error

	// SetCounter writes the raw counter value
	SetCounter(group TimerGroup, index TimerIndex, value uint64) error

	// SetAlarm programs the alarm threshold in ticks
	SetAlarm(group TimerGroup, index TimerIndex, ticks uint64) error

	// EnableInterrupt enables interrupt generation for a channel
	EnableInterrupt(group TimerGroup, index TimerIndex) error

	// DisableInterrupt disables interrupt generation for a channel
	DisableInterrupt(group TimerGroup, index TimerIndex) error

	// RegisterISR installs handler to run on the channel's interrupt,
	// with ctx as its argument
	RegisterISR(group TimerGroup, index TimerIndex, handler ISRHandler, ctx *ISRContext, flags ISRFlags) error

	// Pause gates the channel's clock off; counter value is retained
	Pause(group TimerGroup, index TimerIndex) error

	// Start reconnects the channel's clock source
	Start(group TimerGroup, index TimerIndex) error

	// SpinlockAcquire takes the group-level lock from interrupt context
	SpinlockAcquire(group TimerGroup)

	// SpinlockRelease releases the group-level lock
	SpinlockRelease(group TimerGroup)

	// GetAndClearInterruptStatus reports whether the channel's interrupt
	// flag was pending and clears it
	GetAndClearInterruptStatus(group TimerGroup, index TimerIndex) bool

	// RearmAlarm re-enables the alarm after an auto-reload firing
	RearmAlarm(group TimerGroup, index TimerIndex)
}

// Global singleton used by core code.
var timerDriver TimerDriver

// SetTimerDriver is called by target-specific code to register its driver.
// Configure calls made before a driver is installed fail with ErrNoDriver.
func SetTimerDriver(d TimerDriver) {
	timerDriver = d
}
