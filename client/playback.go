package client

import "sync"

// PlaybackCoordinator enforces the one-voice-note-at-a-time rule for a
// single client session. Each player component gets the coordinator
// passed in explicitly; there is no package-level current-track state,
// so two sessions never interfere.
type PlaybackCoordinator struct {
	mu          sync.Mutex
	currentID   string
	stopCurrent func()
}

func NewPlaybackCoordinator() *PlaybackCoordinator {
	return &PlaybackCoordinator{}
}

// Play makes the given attachment the active playback. Whatever was
// playing before is stopped via the stop callback it registered.
// Re-playing the already-active attachment only refreshes its callback.
func (p *PlaybackCoordinator) Play(attachmentID string, stop func()) {
	p.mu.Lock()
	var prevStop func()
	if p.currentID != "" && p.currentID != attachmentID {
		prevStop = p.stopCurrent
	}
	p.currentID = attachmentID
	p.stopCurrent = stop
	p.mu.Unlock()

	// invoked outside the lock: the callback may call back into Stop
	if prevStop != nil {
		prevStop()
	}
}

// Stop clears the active playback if the attachment is still current
// (pause, or the clip ran out). Stopping a non-current attachment is a
// no-op.
func (p *PlaybackCoordinator) Stop(attachmentID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.currentID == attachmentID {
		p.currentID = ""
		p.stopCurrent = nil
	}
}

// Current returns the id of the attachment playing right now, or "".
func (p *PlaybackCoordinator) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentID
}
