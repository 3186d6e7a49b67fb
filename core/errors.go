package core

import "errors"

// Configuration failures are local: they surface as a false return from the
// configure call plus a debug log line, and the specific cause is retained
// on the instance (TimerChannel.Err). Nothing here ever panics or aborts.
var (
	// ErrInvalidChannel marks an instance constructed with a channel id
	// outside 0-3.
	ErrInvalidChannel = errors.New("timer channel must be 0-3")

	// ErrInvalidFrequency marks a requested frequency or interval that
	// does not yield a positive alarm threshold.
	ErrInvalidFrequency = errors.New("invalid timer frequency")

	// ErrChannelOwned marks an attempt to configure a physical channel
	// already owned by a different TimerChannel instance.
	ErrChannelOwned = errors.New("timer channel owned by another instance")

	// ErrNoDriver marks a configure call before SetTimerDriver.
	ErrNoDriver = errors.New("timer driver not configured")
)
