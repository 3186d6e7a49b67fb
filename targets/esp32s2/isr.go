package esp32s2

import "s2timer/core"

// Per-channel ISR dispatch table. TinyGo's interrupt.New is a compiler
// intrinsic that needs a constant interrupt id and a non-capturing
// handler, so the four static trampolines in this package index into
// these package-level slots instead of closing over driver state.
var (
	isrHandlers [2][2]core.ISRHandler
	isrCtxs     [2][2]*core.ISRContext
	isrHooked   [2][2]bool
)

// setISR installs or replaces the handler for one channel.
func setISR(group core.TimerGroup, index core.TimerIndex, handler core.ISRHandler, ctx *core.ISRContext) {
	isrHandlers[group][index] = handler
	isrCtxs[group][index] = ctx
}

// dispatchISR runs the installed handler for one channel, if any.
func dispatchISR(group core.TimerGroup, index core.TimerIndex) {
	if h := isrHandlers[group][index]; h != nil {
		h(isrCtxs[group][index])
	}
}
