package listen

import (
	"errors"
	"testing"
)

type fakeRecognizer struct {
	starts int
	stops  int
	aborts int
}

func (f *fakeRecognizer) Start() error { f.starts++; return nil }
func (f *fakeRecognizer) Stop() error  { f.stops++; return nil }
func (f *fakeRecognizer) Abort() error { f.aborts++; return nil }

func TestStartStopRequireRecognizer(t *testing.T) {
	c := NewController()

	if err := c.Start(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from Start, got %v", err)
	}
	if err := c.Stop(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from Stop, got %v", err)
	}
	if c.Available() {
		t.Fatalf("no recognizer must report unavailable")
	}

	rec := &fakeRecognizer{}
	c.SetRecognizer(rec)
	if !c.Available() {
		t.Fatalf("attached recognizer must report available")
	}
	if err := c.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if rec.starts != 1 {
		t.Fatalf("start not forwarded")
	}
}

func TestListeningFollowsPlatformEvents(t *testing.T) {
	c := NewController()
	c.SetRecognizer(&fakeRecognizer{})

	var states []bool
	c.OnStateChange(func(listening bool) { states = append(states, listening) })

	if c.Listening() {
		t.Fatalf("must start idle")
	}

	// Stop alone does not flip the state; the end event does.
	c.HandleBegan()
	if !c.Listening() {
		t.Fatalf("began event must enter Listening")
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !c.Listening() {
		t.Fatalf("stop request must not flip state before the end event")
	}
	c.HandleEnded()
	if c.Listening() {
		t.Fatalf("ended event must return to Idle")
	}

	if len(states) != 2 || !states[0] || states[1] {
		t.Fatalf("unexpected state sequence %v", states)
	}
}

func TestHandleErrorClassifiesAndResets(t *testing.T) {
	c := NewController()
	c.SetRecognizer(&fakeRecognizer{})

	var got string
	c.OnError(func(message string) { got = message })

	cases := []struct {
		kind string
		want string
	}{
		{ErrorNoSpeech, "I didn't hear you. Please try again."},
		{ErrorAudioCapture, "Microphone not found. Check your hardware."},
		{ErrorNotAllowed, "Permission to use microphone was denied."},
		{"network", "An error occurred during speech recognition."},
	}
	for _, tc := range cases {
		c.HandleBegan()
		c.HandleError(tc.kind)
		if got != tc.want {
			t.Fatalf("kind %q: got %q, want %q", tc.kind, got, tc.want)
		}
		if c.Listening() {
			t.Fatalf("kind %q: error must return to Idle", tc.kind)
		}
	}
}

func TestHandleResultForwardsOncePerSession(t *testing.T) {
	c := NewController()

	var transcripts []string
	c.OnTranscript(func(transcript string) { transcripts = append(transcripts, transcript) })

	c.HandleBegan()
	c.HandleResult("  hello there  ")
	c.HandleResult("second result")

	if len(transcripts) != 1 {
		t.Fatalf("expected one transcript per session, got %d", len(transcripts))
	}
	if transcripts[0] != "hello there" {
		t.Fatalf("transcript not trimmed: %q", transcripts[0])
	}

	// A new session accepts a fresh result.
	c.HandleBegan()
	c.HandleResult("next session")
	if len(transcripts) != 2 || transcripts[1] != "next session" {
		t.Fatalf("new session result dropped: %v", transcripts)
	}
}

func TestHandleResultIgnoresBlankTranscript(t *testing.T) {
	c := NewController()

	count := 0
	c.OnTranscript(func(string) { count++ })

	c.HandleBegan()
	c.HandleResult("   ")
	if count != 0 {
		t.Fatalf("blank transcript must be dropped")
	}
}

func TestDetachWhileListeningDropsSession(t *testing.T) {
	c := NewController()
	c.SetRecognizer(&fakeRecognizer{})

	var states []bool
	c.OnStateChange(func(listening bool) { states = append(states, listening) })

	c.HandleBegan()
	c.SetRecognizer(nil)

	if c.Listening() {
		t.Fatalf("detach must drop the session")
	}
	if c.Available() {
		t.Fatalf("detach must report unavailable")
	}
	if len(states) != 2 || states[1] {
		t.Fatalf("detach must notify Idle, got %v", states)
	}
}

func TestTeardownAborts(t *testing.T) {
	c := NewController()
	rec := &fakeRecognizer{}
	c.SetRecognizer(rec)

	c.Teardown()
	if rec.aborts != 1 {
		t.Fatalf("teardown must abort the recognizer")
	}

	// Teardown with nothing attached is a no-op.
	c.SetRecognizer(nil)
	c.Teardown()
}
