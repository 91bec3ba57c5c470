package persona

import "time"

// VoiceSettings carries the per-avatar speech synthesis parameters.
type VoiceSettings struct {
	SelectedVoiceURI string  `json:"selectedVoiceURI,omitempty"`
	Rate             float64 `json:"rate"`
	Pitch            float64 `json:"pitch"`
	Lang             string  `json:"lang"`
}

// DefaultVoiceSettings returns the rate/pitch/lang used when an avatar is
// created without explicit voice configuration.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{Rate: 1.2, Pitch: 1, Lang: "en-US"}
}

// CustomRoleData holds the free-form instructions attached to a Custom role
// avatar.
type CustomRoleData struct {
	CustomInstructions string `json:"customInstructions,omitempty"`
}

// Avatar is a configured AI persona selectable as the chat partner. At most
// one avatar is active at a time; the pointer lives in the avatar directory.
type Avatar struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Role                 string          `json:"role"`
	ImageURL             string          `json:"imageUrl,omitempty"`
	LogoURL              string          `json:"logoUrl,omitempty"`
	SampleAudioURL       string          `json:"sampleAudioUrl,omitempty"`
	Voice                VoiceSettings   `json:"voice"`
	SystemInstruction    string          `json:"systemInstruction,omitempty"`
	PersonalityProfileID string          `json:"personalityProfileId,omitempty"`
	CustomRoleData       *CustomRoleData `json:"customRoleData,omitempty"`
	Traits               []string        `json:"traits,omitempty"`
	Expertise            []string        `json:"expertise,omitempty"`
	ConversationStyle    string          `json:"conversationStyle,omitempty"`
	EmotionalTone        string          `json:"emotionalTone,omitempty"`
	LanguageLevel        string          `json:"languageLevel,omitempty"`
	CulturalContext      string          `json:"culturalContext,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// Profile is a structured recipe of traits/style/tone that deterministically
// generates a system instruction. A profile is owned by the custom avatar it
// was created alongside and is deleted with it.
type Profile struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Role               string    `json:"role"`
	Personality        string    `json:"personality"`
	Traits             []string  `json:"traits,omitempty"`
	CustomInstructions string    `json:"customInstructions,omitempty"`
	ConversationStyle  string    `json:"conversationStyle"`
	Expertise          []string  `json:"expertise,omitempty"`
	EmotionalTone      string    `json:"emotionalTone"`
	LanguageLevel      string    `json:"languageLevel"`
	CulturalContext    string    `json:"culturalContext"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
