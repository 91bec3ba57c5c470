package persona

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/elizatalk/backend/internal/model/persona"
	"github.com/elizatalk/backend/internal/storage"
)

// ErrProfileNotFound is returned for lookups and updates against unknown
// profile ids.
var ErrProfileNotFound = errors.New("personality profile not found")

// ProfileInput carries the caller-supplied fields for a new profile. Zero
// values fall back to the documented defaults.
type ProfileInput struct {
	Name               string   `json:"name"`
	Role               string   `json:"role"`
	Personality        string   `json:"personality"`
	Traits             []string `json:"traits"`
	CustomInstructions string   `json:"customInstructions"`
	ConversationStyle  string   `json:"conversationStyle"`
	Expertise          []string `json:"expertise"`
	EmotionalTone      string   `json:"emotionalTone"`
	LanguageLevel      string   `json:"languageLevel"`
	CulturalContext    string   `json:"culturalContext"`
}

// ProfileUpdate names the optional fields of a profile update; nil fields are
// left untouched.
type ProfileUpdate struct {
	Name               *string   `json:"name"`
	Personality        *string   `json:"personality"`
	Traits             *[]string `json:"traits"`
	CustomInstructions *string   `json:"customInstructions"`
	ConversationStyle  *string   `json:"conversationStyle"`
	Expertise          *[]string `json:"expertise"`
	EmotionalTone      *string   `json:"emotionalTone"`
	LanguageLevel      *string   `json:"languageLevel"`
	CulturalContext    *string   `json:"culturalContext"`
}

// Registry is the in-memory catalog of personality profiles, persisted
// through the storage gateway on every mutation.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]persona.Profile
	gateway  *storage.Gateway
}

// NewRegistry builds a registry preloaded with the persisted profiles.
func NewRegistry(ctx context.Context, gateway *storage.Gateway) (*Registry, error) {
	r := &Registry{
		profiles: make(map[string]persona.Profile),
		gateway:  gateway,
	}

	stored, err := gateway.Profiles(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range stored {
		r.profiles[p.ID] = p
	}

	return r, nil
}

// CreateProfile stores a new profile under id (a fresh uuid when empty) and
// returns it.
func (r *Registry) CreateProfile(ctx context.Context, id string, input ProfileInput) persona.Profile {
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now().UTC()
	profile := persona.Profile{
		ID:                 id,
		Name:               defaultString(input.Name, "Custom AI"),
		Role:               defaultString(input.Role, persona.RoleCustom),
		Personality:        defaultString(input.Personality, "friendly"),
		Traits:             input.Traits,
		CustomInstructions: input.CustomInstructions,
		ConversationStyle:  defaultString(input.ConversationStyle, "casual"),
		Expertise:          input.Expertise,
		EmotionalTone:      defaultString(input.EmotionalTone, "supportive"),
		LanguageLevel:      defaultString(input.LanguageLevel, "adaptive"),
		CulturalContext:    defaultString(input.CulturalContext, "universal"),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	r.mu.Lock()
	r.profiles[profile.ID] = profile
	r.persistLocked(ctx)
	r.mu.Unlock()

	return profile
}

// UpdateProfile applies the non-nil fields of update to an existing profile.
func (r *Registry) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (persona.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[id]
	if !ok {
		return persona.Profile{}, ErrProfileNotFound
	}

	if update.Name != nil {
		profile.Name = *update.Name
	}
	if update.Personality != nil {
		profile.Personality = *update.Personality
	}
	if update.Traits != nil {
		profile.Traits = *update.Traits
	}
	if update.CustomInstructions != nil {
		profile.CustomInstructions = *update.CustomInstructions
	}
	if update.ConversationStyle != nil {
		profile.ConversationStyle = *update.ConversationStyle
	}
	if update.Expertise != nil {
		profile.Expertise = *update.Expertise
	}
	if update.EmotionalTone != nil {
		profile.EmotionalTone = *update.EmotionalTone
	}
	if update.LanguageLevel != nil {
		profile.LanguageLevel = *update.LanguageLevel
	}
	if update.CulturalContext != nil {
		profile.CulturalContext = *update.CulturalContext
	}
	profile.UpdatedAt = time.Now().UTC()

	r.profiles[id] = profile
	r.persistLocked(ctx)
	return profile, nil
}

// Profile looks up a profile by id.
func (r *Registry) Profile(id string) (persona.Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[id]
	return profile, ok
}

// Profiles returns all profiles ordered by creation time.
func (r *Registry) Profiles() []persona.Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]persona.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// DeleteProfile removes a profile, reporting whether it existed.
func (r *Registry) DeleteProfile(ctx context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[id]; !ok {
		return false
	}
	delete(r.profiles, id)
	r.persistLocked(ctx)
	return true
}

// ProfileSystemInstruction derives the full system instruction for a profile,
// falling back to the plain Custom role instruction when the profile is
// missing.
func (r *Registry) ProfileSystemInstruction(profileID, avatarName string) string {
	profile, ok := r.Profile(profileID)
	if !ok {
		return SystemInstruction(persona.RoleCustom, "", avatarName)
	}

	clause := BuildProfileInstruction(profile)
	if avatarName != "" {
		clause = "You are \"" + avatarName + "\". " + clause
	}
	return SystemInstruction(persona.RoleCustom, clause, avatarName)
}

func (r *Registry) persistLocked(ctx context.Context) {
	out := make([]persona.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	if err := r.gateway.SetProfiles(ctx, out); err != nil {
		log.Printf("[persona] failed to persist profiles: %v", err)
	}
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
