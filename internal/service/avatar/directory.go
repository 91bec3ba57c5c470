package avatar

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/elizatalk/backend/internal/model/persona"
	personasvc "github.com/elizatalk/backend/internal/service/persona"
	"github.com/elizatalk/backend/internal/storage"
)

var (
	ErrAvatarNotFound   = errors.New("avatar not found")
	ErrTemplateNotFound = errors.New("role template not found")
)

// Input carries the caller-supplied fields for a new avatar. When
// CreatePersonalityProfile is set on a Custom avatar, a linked profile is
// created in the same operation.
type Input struct {
	Name                     string                  `json:"name"`
	Role                     string                  `json:"role"`
	ImageURL                 string                  `json:"imageUrl"`
	LogoURL                  string                  `json:"logoUrl"`
	SampleAudioURL           string                  `json:"sampleAudioUrl"`
	Voice                    *persona.VoiceSettings  `json:"voice"`
	SystemInstruction        string                  `json:"systemInstruction"`
	PersonalityProfileID     string                  `json:"personalityProfileId"`
	CustomRoleData           *persona.CustomRoleData `json:"customRoleData"`
	Traits                   []string                `json:"traits"`
	Expertise                []string                `json:"expertise"`
	ConversationStyle        string                  `json:"conversationStyle"`
	EmotionalTone            string                  `json:"emotionalTone"`
	LanguageLevel            string                  `json:"languageLevel"`
	CulturalContext          string                  `json:"culturalContext"`
	CreatePersonalityProfile bool                    `json:"createPersonalityProfile"`
	Personality              string                  `json:"personality"`
	CustomInstructions       string                  `json:"customInstructions"`
}

// Update names the optional fields of an avatar update; nil fields are left
// untouched. PersonalityData, when set, is forwarded to the avatar's linked
// profile.
type Update struct {
	Name              *string                     `json:"name"`
	Role              *string                     `json:"role"`
	ImageURL          *string                     `json:"imageUrl"`
	LogoURL           *string                     `json:"logoUrl"`
	SampleAudioURL    *string                     `json:"sampleAudioUrl"`
	Voice             *persona.VoiceSettings      `json:"voice"`
	SystemInstruction *string                     `json:"systemInstruction"`
	Traits            *[]string                   `json:"traits"`
	Expertise         *[]string                   `json:"expertise"`
	ConversationStyle *string                     `json:"conversationStyle"`
	EmotionalTone     *string                     `json:"emotionalTone"`
	LanguageLevel     *string                     `json:"languageLevel"`
	CulturalContext   *string                     `json:"culturalContext"`
	PersonalityData   *personasvc.ProfileUpdate   `json:"personalityData"`
}

// Directory is the CRUD store of avatars plus the single active-avatar
// pointer. All state is persisted through the storage gateway on change.
type Directory struct {
	mu       sync.RWMutex
	avatars  []persona.Avatar
	activeID string
	gateway  *storage.Gateway
	registry *personasvc.Registry
}

// NewDirectory builds a directory preloaded with the persisted avatars and
// active pointer.
func NewDirectory(ctx context.Context, gateway *storage.Gateway, registry *personasvc.Registry) (*Directory, error) {
	avatars, err := gateway.Avatars(ctx)
	if err != nil {
		return nil, err
	}
	activeID, err := gateway.ActiveAvatarID(ctx)
	if err != nil {
		return nil, err
	}

	return &Directory{
		avatars:  avatars,
		activeID: activeID,
		gateway:  gateway,
		registry: registry,
	}, nil
}

// Create stores a new avatar. A Custom avatar with the personality flag gets
// its profile created and linked before the avatar becomes visible, so no
// reader ever observes a dangling profile reference.
func (d *Directory) Create(ctx context.Context, input Input) persona.Avatar {
	now := time.Now().UTC()

	voice := persona.DefaultVoiceSettings()
	if input.Voice != nil {
		voice = *input.Voice
		if voice.Rate == 0 {
			voice.Rate = 1.2
		}
		if voice.Pitch == 0 {
			voice.Pitch = 1
		}
		if voice.Lang == "" {
			voice.Lang = "en-US"
		}
	}

	av := persona.Avatar{
		ID:                   "avatar-" + uuid.NewString(),
		Name:                 input.Name,
		Role:                 defaultString(input.Role, persona.RoleCustom),
		ImageURL:             input.ImageURL,
		LogoURL:              input.LogoURL,
		SampleAudioURL:       input.SampleAudioURL,
		Voice:                voice,
		SystemInstruction:    input.SystemInstruction,
		PersonalityProfileID: input.PersonalityProfileID,
		CustomRoleData:       input.CustomRoleData,
		Traits:               input.Traits,
		Expertise:            input.Expertise,
		ConversationStyle:    defaultString(input.ConversationStyle, "casual"),
		EmotionalTone:        defaultString(input.EmotionalTone, "supportive"),
		LanguageLevel:        defaultString(input.LanguageLevel, "adaptive"),
		CulturalContext:      defaultString(input.CulturalContext, "universal"),
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if av.Role == persona.RoleCustom && input.CreatePersonalityProfile {
		profile := d.registry.CreateProfile(ctx, "profile-"+av.ID, personasvc.ProfileInput{
			Name:               av.Name,
			Role:               persona.RoleCustom,
			Personality:        input.Personality,
			Traits:             input.Traits,
			CustomInstructions: input.CustomInstructions,
			ConversationStyle:  input.ConversationStyle,
			Expertise:          input.Expertise,
			EmotionalTone:      input.EmotionalTone,
			LanguageLevel:      input.LanguageLevel,
			CulturalContext:    input.CulturalContext,
		})
		av.PersonalityProfileID = profile.ID
	}

	d.avatars = append(d.avatars, av)
	d.persistLocked(ctx)
	return av
}

// CreateFromTemplate instantiates a Custom avatar from a built-in role
// template, applying any customizations over the template defaults.
func (d *Directory) CreateFromTemplate(ctx context.Context, templateID string, customizations Input) (persona.Avatar, error) {
	template, ok := persona.FindRoleTemplate(templateID)
	if !ok {
		return persona.Avatar{}, ErrTemplateNotFound
	}

	input := customizations
	input.Role = persona.RoleCustom
	input.CreatePersonalityProfile = true
	input.Personality = defaultString(input.Personality, "friendly")
	input.CustomInstructions = defaultString(input.CustomInstructions, template.SystemPrompt)
	input.Name = defaultString(input.Name, template.Name)

	return d.Create(ctx, input), nil
}

// Avatars returns all stored avatars in creation order.
func (d *Directory) Avatars() []persona.Avatar {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]persona.Avatar(nil), d.avatars...)
}

// Avatar looks up an avatar by id.
func (d *Directory) Avatar(id string) (persona.Avatar, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.findLocked(id)
}

// UpdateAvatar applies the non-nil fields of update to an existing avatar.
func (d *Directory) UpdateAvatar(ctx context.Context, id string, update Update) (persona.Avatar, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := -1
	for i := range d.avatars {
		if d.avatars[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return persona.Avatar{}, ErrAvatarNotFound
	}

	av := d.avatars[idx]
	if update.Name != nil {
		av.Name = *update.Name
	}
	if update.Role != nil {
		av.Role = *update.Role
	}
	if update.ImageURL != nil {
		av.ImageURL = *update.ImageURL
	}
	if update.LogoURL != nil {
		av.LogoURL = *update.LogoURL
	}
	if update.SampleAudioURL != nil {
		av.SampleAudioURL = *update.SampleAudioURL
	}
	if update.Voice != nil {
		av.Voice = *update.Voice
	}
	if update.SystemInstruction != nil {
		av.SystemInstruction = *update.SystemInstruction
	}
	if update.Traits != nil {
		av.Traits = *update.Traits
	}
	if update.Expertise != nil {
		av.Expertise = *update.Expertise
	}
	if update.ConversationStyle != nil {
		av.ConversationStyle = *update.ConversationStyle
	}
	if update.EmotionalTone != nil {
		av.EmotionalTone = *update.EmotionalTone
	}
	if update.LanguageLevel != nil {
		av.LanguageLevel = *update.LanguageLevel
	}
	if update.CulturalContext != nil {
		av.CulturalContext = *update.CulturalContext
	}
	av.UpdatedAt = time.Now().UTC()

	if av.PersonalityProfileID != "" && update.PersonalityData != nil {
		if _, err := d.registry.UpdateProfile(ctx, av.PersonalityProfileID, *update.PersonalityData); err != nil {
			log.Printf("[avatar] failed to update linked profile %s: %v", av.PersonalityProfileID, err)
		}
	}

	d.avatars[idx] = av
	d.persistLocked(ctx)
	return av, nil
}

// Delete removes an avatar, its owned personality profile, and clears the
// active pointer when the deleted avatar was active.
func (d *Directory) Delete(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := -1
	for i := range d.avatars {
		if d.avatars[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrAvatarNotFound
	}

	if profileID := d.avatars[idx].PersonalityProfileID; profileID != "" {
		d.registry.DeleteProfile(ctx, profileID)
	}

	d.avatars = append(d.avatars[:idx], d.avatars[idx+1:]...)
	if d.activeID == id {
		d.activeID = ""
	}
	d.persistLocked(ctx)
	return nil
}

// SetActive points the active-avatar pointer at the given avatar.
func (d *Directory) SetActive(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.findLocked(id); !ok {
		return ErrAvatarNotFound
	}
	d.activeID = id
	d.persistLocked(ctx)
	return nil
}

// ClearActive resets the active-avatar pointer.
func (d *Directory) ClearActive(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.activeID = ""
	d.persistLocked(ctx)
}

// Active returns the currently active avatar, if any.
func (d *Directory) Active() (persona.Avatar, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.activeID == "" {
		return persona.Avatar{}, false
	}
	return d.findLocked(d.activeID)
}

// SystemInstructionFor resolves the system instruction for a conversation:
// active avatar's profile-derived instruction, then the avatar's explicit
// override, then the avatar's role instruction with its name, then the plain
// role instruction.
func (d *Directory) SystemInstructionFor(role string) string {
	active, ok := d.Active()
	if ok {
		if active.PersonalityProfileID != "" {
			return d.registry.ProfileSystemInstruction(active.PersonalityProfileID, active.Name)
		}
		if active.SystemInstruction != "" {
			return active.SystemInstruction
		}

		custom := ""
		if active.CustomRoleData != nil {
			custom = active.CustomRoleData.CustomInstructions
		}
		return personasvc.SystemInstruction(active.Role, custom, active.Name)
	}

	if role == "" {
		role = "Tutor"
	}
	return personasvc.SystemInstruction(role, "", "")
}

func (d *Directory) findLocked(id string) (persona.Avatar, bool) {
	for _, av := range d.avatars {
		if av.ID == id {
			return av, true
		}
	}
	return persona.Avatar{}, false
}

func (d *Directory) persistLocked(ctx context.Context) {
	if err := d.gateway.SetAvatars(ctx, append([]persona.Avatar(nil), d.avatars...)); err != nil {
		log.Printf("[avatar] failed to persist avatars: %v", err)
	}
	if err := d.gateway.SetActiveAvatarID(ctx, d.activeID); err != nil {
		log.Printf("[avatar] failed to persist active avatar: %v", err)
	}
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
