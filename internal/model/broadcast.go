package model

// MessageRef points at an existing Telegram message.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// PendingBroadcast is either empty or holds exactly one staged message.
// Staging a new message replaces the previous one.
type PendingBroadcast struct {
	ref    MessageRef
	staged bool
}

// NoPendingBroadcast is the empty slot.
func NoPendingBroadcast() PendingBroadcast {
	return PendingBroadcast{}
}

// StagedBroadcast fills the slot with ref.
func StagedBroadcast(ref MessageRef) PendingBroadcast {
	return PendingBroadcast{ref: ref, staged: true}
}

// Source returns the staged message and whether the slot is filled.
func (p PendingBroadcast) Source() (MessageRef, bool) {
	return p.ref, p.staged
}

// Staged reports whether a message is waiting for confirmation.
func (p PendingBroadcast) Staged() bool {
	return p.staged
}
