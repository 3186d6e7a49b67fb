package core

// serviceInterrupt is the handler registered with the driver for an armed
// channel. It runs on the interrupt-service path.
//
// The group spinlock is held only across the flag read/clear and the alarm
// re-arm; the user callback always runs outside the lock. With auto-reload
// enabled the hardware has already reloaded the counter, but the alarm
// enable bit drops after each firing and must be re-armed in software.
func (t *TimerChannel) serviceInterrupt(ctx *ISRContext) {
	d := timerDriver
	if d == nil {
		return
	}

	d.SpinlockAcquire(ctx.Group)
	pending := d.GetAndClearInterruptStatus(ctx.Group, ctx.Index)
	if pending {
		d.RearmAlarm(ctx.Group, ctx.Index)
	}
	d.SpinlockRelease(ctx.Group)

	if !pending {
		// Shared group interrupt line; the other timer in this group
		// raised it.
		return
	}

	recordFire(t.channel)
	if cb := t.callback; cb != nil {
		cb()
	}
}
