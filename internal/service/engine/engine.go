package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/elizatalk/backend/internal/model/chat"
	"github.com/elizatalk/backend/internal/service/ai"
	"github.com/elizatalk/backend/internal/service/avatar"
	"github.com/elizatalk/backend/internal/service/listen"
	"github.com/elizatalk/backend/internal/service/voice"
	"github.com/elizatalk/backend/internal/storage"
)

// ErrBusy rejects a send or listen toggle while a request is in flight.
// Callers are blocked, not queued.
var ErrBusy = errors.New("a request is already in flight")

// troubleMessage is the fixed fallback appended when the remote call cannot
// complete at all.
const troubleMessage = "I'm having a little trouble connecting right now. Please try again in a moment."

const (
	defaultPlaceholder   = "Type or use the mic..."
	listeningPlaceholder = "Listening..."

	micErrorTTL     = 5 * time.Second
	audioFileNotice = "Audio file transcription not yet implemented. Please use the microphone instead."
	audioFileTTL    = 3 * time.Second
)

// Collaborator opens remote chat handles. Exactly one handle is active at a
// time; opening a new one replaces the old.
type Collaborator interface {
	OpenChat(ctx context.Context, systemInstruction string, history []chat.Message) (ai.Conversation, error)
}

// Engine owns the active conversation: the message log, the single remote
// chat handle, loading/listening state, and session save/restore. All remote
// and recognizer failures are absorbed here; callers only ever see data.
type Engine struct {
	collab   Collaborator
	gateway  *storage.Gateway
	avatars  *avatar.Directory
	speaker  *voice.Controller
	listener *listen.Controller

	mu              sync.Mutex
	handle          ai.Conversation
	messages        []chat.Message
	isLoading       bool
	micError        string
	micErrorTimer   *time.Timer
	selectedRole    string
	activeSessionID string
}

// New wires an engine to its collaborators and subscribes it to recognizer
// events.
func New(collab Collaborator, gateway *storage.Gateway, avatars *avatar.Directory, speaker *voice.Controller, listener *listen.Controller) *Engine {
	e := &Engine{
		collab:       collab,
		gateway:      gateway,
		avatars:      avatars,
		speaker:      speaker,
		listener:     listener,
		selectedRole: "Tutor",
	}

	listener.OnTranscript(func(transcript string) {
		// Transcripts enter through the same path as typed input. Run off
		// the event goroutine so a slow model call never stalls the speech
		// socket.
		go func() {
			if err := e.SendMessage(context.Background(), transcript, false); err != nil {
				log.Printf("[engine] transcript send rejected: %v", err)
			}
		}()
	})
	listener.OnStateChange(func(listening bool) {
		if listening {
			e.clearMicError()
		}
	})
	listener.OnError(func(message string) {
		e.setTransientMicError(message, micErrorTTL)
	})

	return e
}

// StartConversation clears the log, opens a fresh remote handle for the
// resolved system instruction, and asks the persona to introduce itself. On
// success the log holds exactly one model message; on failure it holds one
// apology with no correction.
func (e *Engine) StartConversation(ctx context.Context, role, avatarID string) error {
	e.mu.Lock()
	if e.isLoading {
		e.mu.Unlock()
		return ErrBusy
	}
	e.isLoading = true
	e.messages = nil
	if role != "" {
		e.selectedRole = role
	}
	role = e.selectedRole
	e.activeSessionID = "session-" + uuid.NewString()
	e.mu.Unlock()

	if avatarID != "" {
		if err := e.avatars.SetActive(ctx, avatarID); err != nil {
			log.Printf("[engine] cannot activate avatar %s: %v", avatarID, err)
		}
	}

	instruction := e.avatars.SystemInstructionFor(role)
	handle, err := e.collab.OpenChat(ctx, instruction, nil)
	if err != nil {
		log.Printf("[engine] failed to open chat: %v", err)
		e.mu.Lock()
		e.handle = nil
		e.appendLocked(ctx, newModelMessage(ai.Reply{Response: troubleMessage}))
		e.isLoading = false
		e.mu.Unlock()
		return nil
	}

	e.mu.Lock()
	e.handle = handle
	e.mu.Unlock()

	opening := fmt.Sprintf("Hello! Introduce yourself as my %s.", role)
	if active, ok := e.avatars.Active(); ok {
		opening = fmt.Sprintf("Hello! I'm %s, your %s. How can I help you practice English today?", active.Name, active.Role)
	}

	reply := handle.Send(ctx, opening)

	e.mu.Lock()
	e.appendLocked(ctx, newModelMessage(reply))
	e.isLoading = false
	e.mu.Unlock()

	e.speakReply(reply.Response)
	return nil
}

// SendMessage runs one request/response cycle. Empty input is ignored (but
// clears a stuck loading flag); a non-setup call appends the user message
// optimistically before the network call. Exactly one model message is
// appended per call, success or failure.
func (e *Engine) SendMessage(ctx context.Context, text string, isSetup bool) error {
	if strings.TrimSpace(text) == "" {
		e.mu.Lock()
		e.isLoading = false
		e.mu.Unlock()
		return nil
	}

	e.mu.Lock()
	if e.isLoading {
		e.mu.Unlock()
		return ErrBusy
	}
	e.isLoading = true
	handle := e.handle
	e.mu.Unlock()
	e.clearMicError()

	if !isSetup {
		e.mu.Lock()
		e.appendLocked(ctx, chat.Message{
			ID:        "user-" + uuid.NewString(),
			Role:      chat.RoleUser,
			Content:   text,
			Timestamp: time.Now().UTC(),
		})
		e.mu.Unlock()
	}

	var reply ai.Reply
	spoken := false
	if handle == nil {
		log.Printf("[engine] send with no open chat handle")
		reply = ai.Reply{Response: troubleMessage}
	} else {
		reply = handle.Send(ctx, text)
		spoken = true
	}

	e.mu.Lock()
	e.appendLocked(ctx, newModelMessage(reply))
	e.isLoading = false
	e.mu.Unlock()

	if spoken {
		e.speakReply(reply.Response)
	}
	return nil
}

// LoadSession replaces the in-memory state with a persisted session and
// reopens a remote handle under the same role's instruction, replaying the
// restored transcript so model-side context matches the displayed one. It
// reports whether the session was found.
func (e *Engine) LoadSession(ctx context.Context, id string) (bool, error) {
	session, ok, err := e.gateway.Session(ctx, id)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	instruction := e.avatars.SystemInstructionFor(session.SelectedRole)
	handle, err := e.collab.OpenChat(ctx, instruction, session.Messages)
	if err != nil {
		log.Printf("[engine] failed to reopen chat for session %s: %v", id, err)
		handle = nil
	}

	e.mu.Lock()
	e.messages = append([]chat.Message(nil), session.Messages...)
	e.selectedRole = session.SelectedRole
	e.activeSessionID = session.ID
	e.handle = handle
	e.mu.Unlock()

	return true, nil
}

// LoadLastSession restores the most recently updated session, if any.
func (e *Engine) LoadLastSession(ctx context.Context) (bool, error) {
	session, ok, err := e.gateway.LastSession(ctx)
	if err != nil || !ok {
		return false, err
	}
	return e.LoadSession(ctx, session.ID)
}

// ToggleListening starts or stops the microphone session. It is a no-op
// while a send is in flight or when no recognizer is attached. Voice output
// is silenced before listening starts so the system never hears itself.
func (e *Engine) ToggleListening() {
	e.mu.Lock()
	loading := e.isLoading
	e.mu.Unlock()

	if loading || !e.listener.Available() {
		return
	}

	if e.listener.Listening() {
		if err := e.listener.Stop(); err != nil {
			log.Printf("[engine] stop listening: %v", err)
		}
		return
	}

	e.speaker.Cancel()
	e.clearMicError()
	if err := e.listener.Start(); err != nil {
		log.Printf("[engine] start listening: %v", err)
	}
}

// SendAudioFile is a stub for audio-file transcription: it surfaces a
// transient not-implemented notice and performs no transcription.
func (e *Engine) SendAudioFile(filename string) {
	log.Printf("[engine] audio file upload ignored: %s", filename)
	e.setTransientMicError(audioFileNotice, audioFileTTL)
}

// Placeholder derives the input-box hint: a mic error wins, then the
// listening notice, then the default.
func (e *Engine) Placeholder() string {
	e.mu.Lock()
	micError := e.micError
	e.mu.Unlock()

	if micError != "" {
		return micError
	}
	if e.listener.Listening() {
		return listeningPlaceholder
	}
	return defaultPlaceholder
}

// Messages returns a copy of the current message log.
func (e *Engine) Messages() []chat.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]chat.Message(nil), e.messages...)
}

// IsLoading reports whether a remote call is in flight.
func (e *Engine) IsLoading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isLoading
}

// IsListening reports the recognizer session state.
func (e *Engine) IsListening() bool {
	return e.listener.Listening()
}

// MicError returns the transient microphone error, empty when none.
func (e *Engine) MicError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.micError
}

// SelectedRole returns the role the current conversation was started with.
func (e *Engine) SelectedRole() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedRole
}

// SetSelectedRole records the role used for the next conversation.
func (e *Engine) SetSelectedRole(role string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if role != "" {
		e.selectedRole = role
	}
}

// ActiveSessionID returns the id of the session being built, empty before
// any conversation started.
func (e *Engine) ActiveSessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeSessionID
}

// appendLocked adds a message and persists the session. Every message-log
// mutation goes through here, so persistence stays in step with the log.
func (e *Engine) appendLocked(ctx context.Context, msg chat.Message) {
	e.messages = append(e.messages, msg)

	if e.activeSessionID == "" || len(e.messages) == 0 {
		return
	}

	avatarID := ""
	if active, ok := e.avatars.Active(); ok {
		avatarID = active.ID
	}

	session := chat.Session{
		ID:           e.activeSessionID,
		Messages:     append([]chat.Message(nil), e.messages...),
		SelectedRole: e.selectedRole,
		AvatarID:     avatarID,
	}
	if err := e.gateway.SaveSession(ctx, session); err != nil {
		log.Printf("[engine] failed to persist session %s: %v", e.activeSessionID, err)
	}
}

func (e *Engine) speakReply(text string) {
	if active, ok := e.avatars.Active(); ok {
		e.speaker.Speak(text, &active.Voice)
		return
	}
	e.speaker.Speak(text, nil)
}

func (e *Engine) setTransientMicError(message string, ttl time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.micError = message
	if e.micErrorTimer != nil {
		e.micErrorTimer.Stop()
	}
	e.micErrorTimer = time.AfterFunc(ttl, func() {
		e.mu.Lock()
		if e.micError == message {
			e.micError = ""
		}
		e.mu.Unlock()
	})
}

func (e *Engine) clearMicError() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.micError = ""
	if e.micErrorTimer != nil {
		e.micErrorTimer.Stop()
		e.micErrorTimer = nil
	}
}

func newModelMessage(reply ai.Reply) chat.Message {
	return chat.Message{
		ID:          "model-" + uuid.NewString(),
		Role:        chat.RoleModel,
		Content:     reply.Response,
		Correction:  reply.Correction,
		Explanation: reply.Explanation,
		Timestamp:   time.Now().UTC(),
	}
}
