package persona

import (
	"context"
	"strings"
	"testing"

	"github.com/elizatalk/backend/internal/model/persona"
	"github.com/elizatalk/backend/internal/storage"
)

func TestSystemInstructionCarriesContract(t *testing.T) {
	instruction := SystemInstruction("Tutor", "", "")

	for _, key := range []string{`"correction"`, `"explanation"`, `"response"`} {
		if !strings.Contains(instruction, key) {
			t.Fatalf("instruction missing contract key %s", key)
		}
	}
	if !strings.Contains(instruction, "Eliza") {
		t.Fatalf("tutor instruction missing default name")
	}
}

func TestSystemInstructionUnknownRoleFallsBackToCustom(t *testing.T) {
	got := SystemInstruction("Astronaut", "", "")
	want := SystemInstruction(persona.RoleCustom, "", "")

	if got != want {
		t.Fatalf("unknown role must use the custom clause")
	}
}

func TestSystemInstructionSubstitutesName(t *testing.T) {
	instruction := SystemInstruction("Tutor", "", "Maya")

	if !strings.Contains(instruction, `"Maya"`) {
		t.Fatalf("expected substituted name, got %q", instruction)
	}
	if strings.Contains(instruction, "# Your Role\nYou are 'Eliza'") {
		t.Fatalf("default name survived substitution")
	}
}

func TestSystemInstructionPrependsNameWhenNoPattern(t *testing.T) {
	instruction := SystemInstruction(persona.RoleCustom, "Speak like a pirate.", "Maya")

	if !strings.Contains(instruction, `You are "Maya". Speak like a pirate.`) {
		t.Fatalf("expected prepended name, got %q", instruction)
	}
}

func TestBuildProfileInstructionClauseOrder(t *testing.T) {
	profile := persona.Profile{
		Name:               "Maya",
		Personality:        "cheerful",
		ConversationStyle:  "playful",
		EmotionalTone:      "energetic",
		Traits:             []string{"curious", "witty"},
		Expertise:          []string{"travel"},
		CustomInstructions: "Mention the weather.",
		LanguageLevel:      "beginner",
		CulturalContext:    "Indian",
	}

	clause := BuildProfileInstruction(profile)

	fragments := []string{
		`role-playing as "Maya", a cheerful AI character`,
		"playful, fun language",
		"energetic and enthusiastic",
		"curious, witty",
		"expertise in: travel",
		"Mention the weather.",
		"simple vocabulary",
		"Indian cultural context",
	}
	pos := -1
	for _, fragment := range fragments {
		idx := strings.Index(clause, fragment)
		if idx < 0 {
			t.Fatalf("clause missing %q: %q", fragment, clause)
		}
		if idx < pos {
			t.Fatalf("clause order wrong around %q: %q", fragment, clause)
		}
		pos = idx
	}
}

func TestBuildProfileInstructionSkipsUniversalContext(t *testing.T) {
	clause := BuildProfileInstruction(persona.Profile{
		Name:            "Maya",
		Personality:     "calm",
		CulturalContext: "universal",
	})

	if strings.Contains(clause, "cultural context") {
		t.Fatalf("universal context must not be mentioned: %q", clause)
	}
}

func newTestRegistry(t *testing.T) (*Registry, *storage.Gateway) {
	t.Helper()
	gateway := storage.NewGateway(storage.NewMemoryStore())
	registry, err := NewRegistry(context.Background(), gateway)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return registry, gateway
}

func TestCreateProfileAppliesDefaults(t *testing.T) {
	registry, _ := newTestRegistry(t)

	profile := registry.CreateProfile(context.Background(), "", ProfileInput{})

	if profile.ID == "" {
		t.Fatalf("expected a generated id")
	}
	if profile.Name != "Custom AI" || profile.Personality != "friendly" {
		t.Fatalf("identity defaults missing: %+v", profile)
	}
	if profile.ConversationStyle != "casual" || profile.EmotionalTone != "supportive" {
		t.Fatalf("style defaults missing: %+v", profile)
	}
	if profile.LanguageLevel != "adaptive" || profile.CulturalContext != "universal" {
		t.Fatalf("level defaults missing: %+v", profile)
	}
}

func TestUpdateProfileAppliesOnlySetFields(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	profile := registry.CreateProfile(ctx, "profile-1", ProfileInput{Name: "Maya", Personality: "cheerful"})

	newTone := "calm"
	updated, err := registry.UpdateProfile(ctx, profile.ID, ProfileUpdate{EmotionalTone: &newTone})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.EmotionalTone != "calm" {
		t.Fatalf("tone not updated: %q", updated.EmotionalTone)
	}
	if updated.Name != "Maya" || updated.Personality != "cheerful" {
		t.Fatalf("unset fields changed: %+v", updated)
	}

	if _, err := registry.UpdateProfile(ctx, "profile-missing", ProfileUpdate{}); err != ErrProfileNotFound {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfilesPersistAcrossReload(t *testing.T) {
	registry, gateway := newTestRegistry(t)
	ctx := context.Background()

	registry.CreateProfile(ctx, "profile-1", ProfileInput{Name: "Maya"})

	reloaded, err := NewRegistry(ctx, gateway)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	profile, ok := reloaded.Profile("profile-1")
	if !ok || profile.Name != "Maya" {
		t.Fatalf("profile not restored: %+v ok=%v", profile, ok)
	}
}

func TestProfileSystemInstructionMissingProfile(t *testing.T) {
	registry, _ := newTestRegistry(t)

	instruction := registry.ProfileSystemInstruction("profile-missing", "Maya")
	if !strings.Contains(instruction, `"Maya"`) {
		t.Fatalf("fallback instruction must carry the avatar name: %q", instruction)
	}
}
