package voice

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/elizatalk/backend/internal/model/persona"
	"github.com/elizatalk/backend/internal/model/speech"
	"github.com/elizatalk/backend/internal/storage"
)

// Utterance is one speech request handed to the platform synthesizer.
type Utterance struct {
	Text     string
	VoiceURI string
	Rate     float64
	Pitch    float64
	Lang     string
}

// Synthesizer is the platform speech synthesizer. At most one utterance is
// audible at a time; Cancel silences immediately.
type Synthesizer interface {
	Speak(u Utterance) error
	Cancel() error
}

// preferredVoiceNames is the allow-list tried first during default voice
// selection.
var preferredVoiceNames = []string{
	"Google US English",
	"Samantha",
	"Microsoft Zira Desktop - English (United States)",
}

// Controller owns the voice catalog, the TTS enabled flag, and the persisted
// rate/pitch/lang/voice preferences.
type Controller struct {
	mu      sync.Mutex
	gateway *storage.Gateway
	synth   Synthesizer
	voices  []speech.Voice
	prefs   speech.Preferences
}

// NewController builds a controller with the persisted preferences loaded.
func NewController(ctx context.Context, gateway *storage.Gateway) (*Controller, error) {
	prefs, err := gateway.VoicePrefs(ctx)
	if err != nil {
		return nil, err
	}
	return &Controller{gateway: gateway, prefs: prefs}, nil
}

// SetSynthesizer attaches (or with nil detaches) the platform synthesizer.
func (c *Controller) SetSynthesizer(s Synthesizer) {
	c.mu.Lock()
	c.synth = s
	c.mu.Unlock()
}

// SetVoices replaces the voice catalog. The first time a non-empty catalog
// arrives with no stored selection, a default English voice is picked:
// allow-listed names, then a female-sounding name, then the platform default,
// then the first English voice.
func (c *Controller) SetVoices(ctx context.Context, voices []speech.Voice) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.voices = append([]speech.Voice(nil), voices...)

	if c.prefs.SelectedVoiceURI != "" || len(voices) == 0 {
		return
	}

	english := make([]speech.Voice, 0, len(voices))
	for _, v := range voices {
		if strings.HasPrefix(v.Lang, "en-") {
			english = append(english, v)
		}
	}
	if len(english) == 0 {
		return
	}

	chosen := english[0]
	found := false
	for _, name := range preferredVoiceNames {
		for _, v := range english {
			if v.Name == name {
				chosen = v
				found = true
				break
			}
		}
		if found {
			break
		}
	}
	if !found {
		for _, v := range english {
			if strings.Contains(strings.ToLower(v.Name), "female") {
				chosen = v
				found = true
				break
			}
		}
	}
	if !found {
		for _, v := range english {
			if v.Default {
				chosen = v
				break
			}
		}
	}

	c.prefs.SelectedVoiceURI = chosen.VoiceURI
	c.persistLocked(ctx)
}

// Voices returns the current voice catalog.
func (c *Controller) Voices() []speech.Voice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]speech.Voice(nil), c.voices...)
}

// Prefs returns the current preferences.
func (c *Controller) Prefs() speech.Preferences {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs
}

// Settings names the optional preference fields of an update.
type Settings struct {
	VoiceURI *string  `json:"voiceURI"`
	Rate     *float64 `json:"rate"`
	Pitch    *float64 `json:"pitch"`
	Lang     *string  `json:"lang"`
}

// UpdateSettings applies the non-nil fields and persists the result.
func (c *Controller) UpdateSettings(ctx context.Context, settings Settings) speech.Preferences {
	c.mu.Lock()
	defer c.mu.Unlock()

	if settings.VoiceURI != nil {
		c.prefs.SelectedVoiceURI = *settings.VoiceURI
	}
	if settings.Rate != nil {
		c.prefs.Rate = *settings.Rate
	}
	if settings.Pitch != nil {
		c.prefs.Pitch = *settings.Pitch
	}
	if settings.Lang != nil {
		c.prefs.Lang = *settings.Lang
	}
	c.persistLocked(ctx)
	return c.prefs
}

// ToggleTts flips the enabled flag, silencing any current utterance when
// turning off. It returns the new state.
func (c *Controller) ToggleTts(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prefs.IsTtsEnabled = !c.prefs.IsTtsEnabled
	if !c.prefs.IsTtsEnabled && c.synth != nil {
		if err := c.synth.Cancel(); err != nil {
			log.Printf("[voice] cancel failed: %v", err)
		}
	}
	c.persistLocked(ctx)
	return c.prefs.IsTtsEnabled
}

// Speak vocalizes text, cancelling any in-progress utterance first. Disabled
// TTS, empty text, or a missing synthesizer make it a no-op. Voice resolution:
// explicit override URI, then the stored preference, then a voice whose
// language tag contains "hi", then the bare preference language.
func (c *Controller) Speak(text string, override *persona.VoiceSettings) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.prefs.IsTtsEnabled || text == "" || c.synth == nil {
		return
	}

	u := Utterance{
		Text:  text,
		Rate:  c.prefs.Rate,
		Pitch: c.prefs.Pitch,
		Lang:  c.prefs.Lang,
	}

	voiceURI := c.prefs.SelectedVoiceURI
	if override != nil {
		if override.SelectedVoiceURI != "" {
			voiceURI = override.SelectedVoiceURI
		}
		if override.Rate != 0 {
			u.Rate = override.Rate
		}
		if override.Pitch != 0 {
			u.Pitch = override.Pitch
		}
		if override.Lang != "" {
			u.Lang = override.Lang
		}
	}

	if voiceURI != "" {
		if v, ok := c.findVoiceLocked(voiceURI); ok {
			u.VoiceURI = v.VoiceURI
			u.Lang = v.Lang
		}
	} else if v, ok := c.findHindiVoiceLocked(); ok {
		u.VoiceURI = v.VoiceURI
		u.Lang = v.Lang
	}

	if err := c.synth.Cancel(); err != nil {
		log.Printf("[voice] cancel failed: %v", err)
	}
	if err := c.synth.Speak(u); err != nil {
		log.Printf("[voice] speak failed: %v", err)
	}
}

// Cancel silences any in-progress utterance.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.synth == nil {
		return
	}
	if err := c.synth.Cancel(); err != nil {
		log.Printf("[voice] cancel failed: %v", err)
	}
}

func (c *Controller) findVoiceLocked(voiceURI string) (speech.Voice, bool) {
	if voiceURI == "" {
		return speech.Voice{}, false
	}
	for _, v := range c.voices {
		if v.VoiceURI == voiceURI {
			return v, true
		}
	}
	return speech.Voice{}, false
}

func (c *Controller) findHindiVoiceLocked() (speech.Voice, bool) {
	for _, v := range c.voices {
		if strings.Contains(strings.ToLower(v.Lang), "hi") {
			return v, true
		}
	}
	return speech.Voice{}, false
}

func (c *Controller) persistLocked(ctx context.Context) {
	if err := c.gateway.SetVoicePrefs(ctx, c.prefs); err != nil {
		log.Printf("[voice] failed to persist preferences: %v", err)
	}
}
