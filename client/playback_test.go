package client

import "testing"

func TestPlaybackExclusivity(t *testing.T) {
	p := NewPlaybackCoordinator()

	stoppedA := false
	p.Play("voice-a", func() { stoppedA = true })
	if p.Current() != "voice-a" {
		t.Fatalf("expected voice-a playing, got %q", p.Current())
	}

	p.Play("voice-b", func() {})
	if !stoppedA {
		t.Fatal("starting voice-b must stop voice-a")
	}
	if p.Current() != "voice-b" {
		t.Fatalf("expected voice-b playing, got %q", p.Current())
	}
}

func TestReplaySameAttachmentDoesNotStopItself(t *testing.T) {
	p := NewPlaybackCoordinator()

	stopped := false
	p.Play("voice-a", func() { stopped = true })
	p.Play("voice-a", func() { stopped = true })
	if stopped {
		t.Fatal("replaying the active attachment must not trigger its stop callback")
	}
}

func TestStopIsScopedToCurrent(t *testing.T) {
	p := NewPlaybackCoordinator()

	p.Play("voice-a", func() {})
	p.Stop("voice-b") // not current, no-op
	if p.Current() != "voice-a" {
		t.Fatal("stopping a non-current attachment must not clear playback")
	}

	p.Stop("voice-a")
	if p.Current() != "" {
		t.Fatal("stopping the current attachment must clear playback")
	}
	p.Stop("voice-a") // idempotent
}

func TestCoordinatorsAreSessionScoped(t *testing.T) {
	session1 := NewPlaybackCoordinator()
	session2 := NewPlaybackCoordinator()

	stopped1 := false
	session1.Play("voice-a", func() { stopped1 = true })
	session2.Play("voice-b", func() {})

	if stopped1 {
		t.Fatal("playback in another session must not stop this session's audio")
	}
	if session1.Current() != "voice-a" || session2.Current() != "voice-b" {
		t.Fatal("each session keeps its own active playback")
	}
}
