package storage

import (
	"context"
	"errors"
	"time"

	"github.com/elizatalk/backend/internal/model/chat"
	"github.com/elizatalk/backend/internal/model/persona"
	"github.com/elizatalk/backend/internal/model/speech"
)

// Storage keys. Values are JSON arrays or objects per key.
const (
	keyAvatars        = "avatars"
	keyActiveAvatarID = "activeAvatarId"
	keyProfiles       = "personalityProfiles"
	keyChatSessions   = "chatSessions"
	keyLastSessionID  = "lastSessionId"
	keyVoicePrefs     = "voicePrefs"
)

// ErrEmptySession guards the invariant that a session with zero messages is
// never persisted.
var ErrEmptySession = errors.New("refusing to persist session with no messages")

// Gateway is the typed persistence layer over a namespaced key/value Store.
type Gateway struct {
	store Store
}

// NewGateway wraps a Store with the typed accessors the services use.
func NewGateway(store Store) *Gateway {
	return &Gateway{store: store}
}

// Avatars returns all stored avatars, empty when none were saved yet.
func (g *Gateway) Avatars(ctx context.Context) ([]persona.Avatar, error) {
	var avatars []persona.Avatar
	if _, err := g.store.Get(ctx, keyAvatars, &avatars); err != nil {
		return nil, err
	}
	return avatars, nil
}

// SetAvatars replaces the stored avatar list.
func (g *Gateway) SetAvatars(ctx context.Context, avatars []persona.Avatar) error {
	return g.store.Set(ctx, keyAvatars, avatars)
}

// ActiveAvatarID returns the active avatar pointer, empty when none is set.
func (g *Gateway) ActiveAvatarID(ctx context.Context) (string, error) {
	var id *string
	if _, err := g.store.Get(ctx, keyActiveAvatarID, &id); err != nil {
		return "", err
	}
	if id == nil {
		return "", nil
	}
	return *id, nil
}

// SetActiveAvatarID stores the active avatar pointer; empty clears it.
func (g *Gateway) SetActiveAvatarID(ctx context.Context, id string) error {
	if id == "" {
		return g.store.Set(ctx, keyActiveAvatarID, nil)
	}
	return g.store.Set(ctx, keyActiveAvatarID, id)
}

// Profiles returns all stored personality profiles.
func (g *Gateway) Profiles(ctx context.Context) ([]persona.Profile, error) {
	var profiles []persona.Profile
	if _, err := g.store.Get(ctx, keyProfiles, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// SetProfiles replaces the stored profile list.
func (g *Gateway) SetProfiles(ctx context.Context, profiles []persona.Profile) error {
	return g.store.Set(ctx, keyProfiles, profiles)
}

// Sessions returns every persisted chat session.
func (g *Gateway) Sessions(ctx context.Context) ([]chat.Session, error) {
	var sessions []chat.Session
	if _, err := g.store.Get(ctx, keyChatSessions, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// SaveSession upserts a session, stamps UpdatedAt (and CreatedAt on first
// write), and records it as the last session.
func (g *Gateway) SaveSession(ctx context.Context, session chat.Session) error {
	if len(session.Messages) == 0 {
		return ErrEmptySession
	}

	sessions, err := g.Sessions(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	session.UpdatedAt = now

	found := false
	for i := range sessions {
		if sessions[i].ID == session.ID {
			session.CreatedAt = sessions[i].CreatedAt
			sessions[i] = session
			found = true
			break
		}
	}
	if !found {
		session.CreatedAt = now
		sessions = append(sessions, session)
	}

	if err := g.store.Set(ctx, keyChatSessions, sessions); err != nil {
		return err
	}
	return g.store.Set(ctx, keyLastSessionID, session.ID)
}

// Session looks up a persisted session by id.
func (g *Gateway) Session(ctx context.Context, id string) (chat.Session, bool, error) {
	sessions, err := g.Sessions(ctx)
	if err != nil {
		return chat.Session{}, false, err
	}
	for _, s := range sessions {
		if s.ID == id {
			return s, true, nil
		}
	}
	return chat.Session{}, false, nil
}

// LastSession returns the most recently updated session.
func (g *Gateway) LastSession(ctx context.Context) (chat.Session, bool, error) {
	sessions, err := g.Sessions(ctx)
	if err != nil {
		return chat.Session{}, false, err
	}
	if len(sessions) == 0 {
		return chat.Session{}, false, nil
	}

	latest := sessions[0]
	for _, s := range sessions[1:] {
		if s.UpdatedAt.After(latest.UpdatedAt) {
			latest = s
		}
	}
	return latest, true, nil
}

// LastSessionID returns the id recorded by the most recent SaveSession.
func (g *Gateway) LastSessionID(ctx context.Context) (string, error) {
	var id string
	if _, err := g.store.Get(ctx, keyLastSessionID, &id); err != nil {
		return "", err
	}
	return id, nil
}

// VoicePrefs returns the stored voice preferences, or the defaults when none
// were saved yet.
func (g *Gateway) VoicePrefs(ctx context.Context) (speech.Preferences, error) {
	prefs := speech.DefaultPreferences()
	if _, err := g.store.Get(ctx, keyVoicePrefs, &prefs); err != nil {
		return speech.DefaultPreferences(), err
	}
	return prefs, nil
}

// SetVoicePrefs replaces the stored voice preferences.
func (g *Gateway) SetVoicePrefs(ctx context.Context, prefs speech.Preferences) error {
	return g.store.Set(ctx, keyVoicePrefs, prefs)
}
