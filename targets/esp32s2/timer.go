//go:build esp32s2

// Register-level TimerDriver for the ESP32-S2 timer groups (TIMG0/TIMG1).
// Each group carries two general purpose 64-bit timers with a 16-bit
// prescaler, alarm compare and hardware auto-reload.
package esp32s2

import (
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"

	"s2timer/core"
)

// ESP32-S2 timer group memory map
const (
	timg0Base = 0x3F41F000
	timg1Base = 0x3F420000

	// Per-timer register block; timer 1 sits timerStride above timer 0
	timerStride = 0x24

	regCONFIG  = 0x00 // Configuration
	regLO      = 0x04 // Counter value, low word (latched)
	regHI      = 0x08 // Counter value, high word (latched)
	regUPDATE  = 0x0C // Write to latch the counter into LO/HI
	regALARMLO = 0x10 // Alarm threshold, low word
	regALARMHI = 0x14 // Alarm threshold, high word
	regLOADLO  = 0x18 // Reload value, low word
	regLOADHI  = 0x1C // Reload value, high word
	regLOAD    = 0x20 // Write to load LOADLO/LOADHI into the counter

	// Group-level interrupt registers
	regINTENA = 0x98 // Interrupt enable, bit n = timer n
	regINTRAW = 0x9C // Raw interrupt status
	regINTCLR = 0xA4 // Write-1-to-clear
)

// TnCONFIG bit layout
const (
	cfgEN         = 1 << 31 // Counter clock gate
	cfgINCREASE   = 1 << 30 // Count up
	cfgAUTORELOAD = 1 << 29 // Reload counter on alarm
	cfgDividerPos = 13      // 16-bit prescaler, bits 13-28
	cfgLEVELINT   = 1 << 11 // Level-type interrupt on alarm
	cfgALARMEN    = 1 << 10 // Alarm armed; hardware clears it on firing
)

// Interrupt matrix source numbers for the timer alarms
const (
	irqTG0T0 = 14
	irqTG0T1 = 15
	irqTG1T0 = 18
	irqTG1T1 = 19
)

func reg(addr uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(addr))
}

// timerRegs resolves the register block for one (group, index) pair.
type timerRegs struct {
	base uintptr // group base
	unit uintptr // timer block within the group
}

func regsFor(group core.TimerGroup, index core.TimerIndex) timerRegs {
	base := uintptr(timg0Base)
	if group == core.TimerGroup1 {
		base = timg1Base
	}
	return timerRegs{base: base, unit: base + uintptr(index)*timerStride}
}

func (r timerRegs) config() *volatile.Register32  { return reg(r.unit + regCONFIG) }
func (r timerRegs) alarmLo() *volatile.Register32 { return reg(r.unit + regALARMLO) }
func (r timerRegs) alarmHi() *volatile.Register32 { return reg(r.unit + regALARMHI) }
func (r timerRegs) loadLo() *volatile.Register32  { return reg(r.unit + regLOADLO) }
func (r timerRegs) loadHi() *volatile.Register32  { return reg(r.unit + regLOADHI) }
func (r timerRegs) load() *volatile.Register32    { return reg(r.unit + regLOAD) }
func (r timerRegs) intEna() *volatile.Register32  { return reg(r.base + regINTENA) }
func (r timerRegs) intRaw() *volatile.Register32  { return reg(r.base + regINTRAW) }
func (r timerRegs) intClr() *volatile.Register32  { return reg(r.base + regINTCLR) }

// Driver implements core.TimerDriver against the TIMG register blocks.
type Driver struct {
	// Interrupt state saved by SpinlockAcquire, one slot per group
	irqState [2]interrupt.State
}

// NewDriver creates the ESP32-S2 timer driver.
func NewDriver() *Driver {
	return &Driver{}
}

// Init programs the base configuration: prescaler, count direction,
// auto-reload, alarm and level interrupt. Also starts counting when
// cfg.CounterEnable is set, matching the driver contract.
func (d *Driver) Init(group core.TimerGroup, index core.TimerIndex, cfg core.TimerConfig) error {
	r := regsFor(group, index)

	v := uint32(cfg.Divider&0xFFFF) << cfgDividerPos
	v |= cfgLEVELINT
	if cfg.CountUp {
		v |= cfgINCREASE
	}
	if cfg.AutoReload {
		v |= cfgAUTORELOAD
	}
	if cfg.AlarmEnable {
		v |= cfgALARMEN
	}
	if cfg.CounterEnable {
		v |= cfgEN
	}
	r.config().Set(v)

	// Auto-reload restarts the counter from the LOAD registers; keep
	// them at zero so each period counts up from zero again.
	r.loadHi().Set(0)
	r.loadLo().Set(0)
	return nil
}

// SetCounter writes the raw counter through the load registers.
func (d *Driver) SetCounter(group core.TimerGroup, index core.TimerIndex, value uint64) error {
	r := regsFor(group, index)
	r.loadHi().Set(uint32(value >> 32))
	r.loadLo().Set(uint32(value))
	r.load().Set(1) // any write triggers the load
	return nil
}

// SetAlarm programs the 64-bit alarm threshold.
func (d *Driver) SetAlarm(group core.TimerGroup, index core.TimerIndex, ticks uint64) error {
	r := regsFor(group, index)
	r.alarmHi().Set(uint32(ticks >> 32))
	r.alarmLo().Set(uint32(ticks))
	return nil
}

// EnableInterrupt enables the channel's line in the group interrupt
// enable register.
func (d *Driver) EnableInterrupt(group core.TimerGroup, index core.TimerIndex) error {
	regsFor(group, index).intEna().SetBits(uint32(1) << index)
	return nil
}

// DisableInterrupt masks the channel's line; alarm and counter state are
// untouched.
func (d *Driver) DisableInterrupt(group core.TimerGroup, index core.TimerIndex) error {
	regsFor(group, index).intEna().ClearBits(uint32(1) << index)
	return nil
}

// RegisterISR stores the handler in the package dispatch table and routes
// the channel's interrupt matrix source to it.
func (d *Driver) RegisterISR(group core.TimerGroup, index core.TimerIndex, handler core.ISRHandler, ctx *core.ISRContext, flags core.ISRFlags) error {
	setISR(group, index, handler, ctx)

	if isrHooked[group][index] {
		return nil
	}
	if err := hookChannel(group, index); err != nil {
		return err
	}
	isrHooked[group][index] = true
	return nil
}

// hookChannel registers the channel's static trampoline. interrupt.New is
// resolved at compile time, so every channel gets its own registration
// with a constant source number and a literal handler.
func hookChannel(group core.TimerGroup, index core.TimerIndex) error {
	switch {
	case group == core.TimerGroup0 && index == core.TimerIndex0:
		return interrupt.New(irqTG0T0, func(interrupt.Interrupt) {
			dispatchISR(core.TimerGroup0, core.TimerIndex0)
		}).Enable()
	case group == core.TimerGroup0 && index == core.TimerIndex1:
		return interrupt.New(irqTG0T1, func(interrupt.Interrupt) {
			dispatchISR(core.TimerGroup0, core.TimerIndex1)
		}).Enable()
	case group == core.TimerGroup1 && index == core.TimerIndex0:
		return interrupt.New(irqTG1T0, func(interrupt.Interrupt) {
			dispatchISR(core.TimerGroup1, core.TimerIndex0)
		}).Enable()
	default:
		return interrupt.New(irqTG1T1, func(interrupt.Interrupt) {
			dispatchISR(core.TimerGroup1, core.TimerIndex1)
		}).Enable()
	}
}

// Pause gates the counter clock off.
func (d *Driver) Pause(group core.TimerGroup, index core.TimerIndex) error {
	regsFor(group, index).config().ClearBits(cfgEN)
	return nil
}

// Start reconnects the counter clock.
func (d *Driver) Start(group core.TimerGroup, index core.TimerIndex) error {
	regsFor(group, index).config().SetBits(cfgEN)
	return nil
}

// SpinlockAcquire masks interrupts for the group's critical section. The
// single-core S2 needs no cross-core lock; disabling interrupts is the
// group lock.
func (d *Driver) SpinlockAcquire(group core.TimerGroup) {
	d.irqState[group] = interrupt.Disable()
}

// SpinlockRelease restores the interrupt state saved by SpinlockAcquire.
func (d *Driver) SpinlockRelease(group core.TimerGroup) {
	interrupt.Restore(d.irqState[group])
}

// GetAndClearInterruptStatus reports and acknowledges the channel's raw
// interrupt flag.
func (d *Driver) GetAndClearInterruptStatus(group core.TimerGroup, index core.TimerIndex) bool {
	r := regsFor(group, index)
	if r.intRaw().Get()&(uint32(1)<<index) == 0 {
		return false
	}
	r.intClr().Set(uint32(1) << index)
	return true
}

// RearmAlarm re-sets the alarm enable bit, which hardware clears after
// each firing even with auto-reload on.
func (d *Driver) RearmAlarm(group core.TimerGroup, index core.TimerIndex) {
	regsFor(group, index).config().SetBits(cfgALARMEN)
}

// Init wires the driver into core. Call once from main before configuring
// any timer channel.
func Init() *Driver {
	d := NewDriver()
	core.SetTimerDriver(d)
	return d
}
