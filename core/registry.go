package core

import "sync"

// Ownership registry for the four physical channels. Two independent
// TimerChannel instances aliasing the same hardware channel would silently
// fight over its registers, so the first successful configure claims the
// channel and later configures from other instances fail with
// ErrChannelOwned. Reconfiguration by the owning instance is always
// allowed; Close releases the claim.
var (
	ownerMu sync.Mutex
	owners  [MaxTimerChannels]*TimerChannel
)

// claimChannel records t as the owner of channel id. Reclaiming a channel
// you already own is a no-op.
func claimChannel(id uint8, t *TimerChannel) error {
	ownerMu.Lock()
	defer ownerMu.Unlock()

	cur := owners[id]
	if cur != nil && cur != t {
		return ErrChannelOwned
	}
	owners[id] = t
	return nil
}

// releaseChannel drops t's claim on channel id. A release by a non-owner
// is ignored.
func releaseChannel(id uint8, t *TimerChannel) {
	ownerMu.Lock()
	defer ownerMu.Unlock()

	if owners[id] == t {
		owners[id] = nil
	}
}

// ChannelOwned reports whether the physical channel id currently has a
// live owner.
func ChannelOwned(id uint8) bool {
	if id >= MaxTimerChannels {
		return false
	}
	ownerMu.Lock()
	defer ownerMu.Unlock()
	return owners[id] != nil
}
