package listen

import (
	"errors"
	"log"
	"strings"
	"sync"
)

// ErrUnavailable is returned when no recognizer is attached.
var ErrUnavailable = errors.New("speech recognition unavailable")

// Recognizer is the platform speech recognizer, driven as a single-shot
// (non-continuous) listen session. Start and Stop are requests; the session
// actually begins and ends via the platform's own events.
type Recognizer interface {
	Start() error
	Stop() error
	Abort() error
}

// Recognizer error kinds as reported by the platform.
const (
	ErrorNoSpeech     = "no-speech"
	ErrorAudioCapture = "audio-capture"
	ErrorNotAllowed   = "not-allowed"
)

// ClassifyError maps a recognizer error kind onto the user-facing message.
func ClassifyError(kind string) string {
	switch kind {
	case ErrorNoSpeech:
		return "I didn't hear you. Please try again."
	case ErrorAudioCapture:
		return "Microphone not found. Check your hardware."
	case ErrorNotAllowed:
		return "Permission to use microphone was denied."
	default:
		return "An error occurred during speech recognition."
	}
}

// Controller wraps the platform recognizer as a single-shot listen session:
// Idle -> Listening on the began event, back to Idle on end or error. The
// final transcript is handed to the transcript callback exactly once per
// session.
type Controller struct {
	mu         sync.Mutex
	rec        Recognizer
	listening  bool
	resultSeen bool

	onTranscript func(string)
	onState      func(listening bool)
	onError      func(message string)
}

// NewController returns a controller with no recognizer attached.
func NewController() *Controller {
	return &Controller{}
}

// SetRecognizer attaches (or with nil detaches) the platform recognizer. A
// detach while listening drops the session back to Idle.
func (c *Controller) SetRecognizer(r Recognizer) {
	c.mu.Lock()
	wasListening := c.listening
	c.rec = r
	if r == nil {
		c.listening = false
	}
	onState := c.onState
	c.mu.Unlock()

	if r == nil && wasListening && onState != nil {
		onState(false)
	}
}

// OnTranscript registers the sink for final transcripts.
func (c *Controller) OnTranscript(fn func(string)) {
	c.mu.Lock()
	c.onTranscript = fn
	c.mu.Unlock()
}

// OnStateChange registers the sink for listening-state transitions.
func (c *Controller) OnStateChange(fn func(bool)) {
	c.mu.Lock()
	c.onState = fn
	c.mu.Unlock()
}

// OnError registers the sink for classified recognizer errors.
func (c *Controller) OnError(fn func(string)) {
	c.mu.Lock()
	c.onError = fn
	c.mu.Unlock()
}

// Available reports whether a recognizer is attached.
func (c *Controller) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rec != nil
}

// Listening reports the current session state. It is eventually consistent:
// Stop does not flip it, the platform's end event does.
func (c *Controller) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listening
}

// Start requests a new listen session.
func (c *Controller) Start() error {
	c.mu.Lock()
	rec := c.rec
	c.mu.Unlock()

	if rec == nil {
		return ErrUnavailable
	}
	return rec.Start()
}

// Stop requests the end of the current session. The transition back to Idle
// happens on the platform's end event.
func (c *Controller) Stop() error {
	c.mu.Lock()
	rec := c.rec
	c.mu.Unlock()

	if rec == nil {
		return ErrUnavailable
	}
	return rec.Stop()
}

// Teardown aborts any session; called when the owning scope shuts down.
func (c *Controller) Teardown() {
	c.mu.Lock()
	rec := c.rec
	c.mu.Unlock()

	if rec == nil {
		return
	}
	if err := rec.Abort(); err != nil {
		log.Printf("[listen] abort failed: %v", err)
	}
}

// HandleBegan records the platform's session-start event.
func (c *Controller) HandleBegan() {
	c.mu.Lock()
	c.listening = true
	c.resultSeen = false
	onState := c.onState
	c.mu.Unlock()

	if onState != nil {
		onState(true)
	}
}

// HandleEnded records the platform's session-end event.
func (c *Controller) HandleEnded() {
	c.mu.Lock()
	c.listening = false
	onState := c.onState
	c.mu.Unlock()

	if onState != nil {
		onState(false)
	}
}

// HandleError classifies a recognizer error and returns the session to Idle
// so the controller stays usable.
func (c *Controller) HandleError(kind string) {
	c.mu.Lock()
	c.listening = false
	onState := c.onState
	onError := c.onError
	c.mu.Unlock()

	if onError != nil {
		onError(ClassifyError(kind))
	}
	if onState != nil {
		onState(false)
	}
}

// HandleResult forwards the trimmed final transcript, at most once per
// session.
func (c *Controller) HandleResult(transcript string) {
	c.mu.Lock()
	if c.resultSeen {
		c.mu.Unlock()
		return
	}
	c.resultSeen = true
	onTranscript := c.onTranscript
	c.mu.Unlock()

	transcript = strings.TrimSpace(transcript)
	if transcript == "" || onTranscript == nil {
		return
	}
	onTranscript(transcript)
}
