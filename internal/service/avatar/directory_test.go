package avatar

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/elizatalk/backend/internal/model/persona"
	personasvc "github.com/elizatalk/backend/internal/service/persona"
	"github.com/elizatalk/backend/internal/storage"
)

func newTestDirectory(t *testing.T) (*Directory, *personasvc.Registry, *storage.Gateway) {
	t.Helper()
	ctx := context.Background()
	gateway := storage.NewGateway(storage.NewMemoryStore())

	registry, err := personasvc.NewRegistry(ctx, gateway)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	directory, err := NewDirectory(ctx, gateway, registry)
	if err != nil {
		t.Fatalf("directory: %v", err)
	}
	return directory, registry, gateway
}

func TestCreateAppliesDefaults(t *testing.T) {
	d, _, _ := newTestDirectory(t)

	av := d.Create(context.Background(), Input{Name: "Maya"})

	if !strings.HasPrefix(av.ID, "avatar-") {
		t.Fatalf("unexpected id %q", av.ID)
	}
	if av.Role != persona.RoleCustom {
		t.Fatalf("expected Custom role default, got %q", av.Role)
	}
	if av.Voice.Rate != 1.2 || av.Voice.Pitch != 1 || av.Voice.Lang != "en-US" {
		t.Fatalf("expected default voice, got %+v", av.Voice)
	}
	if av.ConversationStyle != "casual" || av.EmotionalTone != "supportive" {
		t.Fatalf("expected style defaults, got %+v", av)
	}
}

func TestCreateCustomAvatarLinksProfile(t *testing.T) {
	d, registry, _ := newTestDirectory(t)

	av := d.Create(context.Background(), Input{
		Name:                     "Maya",
		Role:                     persona.RoleCustom,
		CreatePersonalityProfile: true,
		Personality:              "cheerful",
		CustomInstructions:       "Always greet warmly.",
	})

	if av.PersonalityProfileID == "" {
		t.Fatalf("expected a linked profile id")
	}
	profile, ok := registry.Profile(av.PersonalityProfileID)
	if !ok {
		t.Fatalf("linked profile %s not in registry", av.PersonalityProfileID)
	}
	if profile.Name != "Maya" || profile.Personality != "cheerful" {
		t.Fatalf("profile fields missing: %+v", profile)
	}
}

func TestCreateFromTemplate(t *testing.T) {
	d, registry, _ := newTestDirectory(t)

	av, err := d.CreateFromTemplate(context.Background(), "Friend", Input{})
	if err != nil {
		t.Fatalf("from template: %v", err)
	}
	if av.Role != persona.RoleCustom {
		t.Fatalf("template avatar must be Custom, got %q", av.Role)
	}
	if av.PersonalityProfileID == "" {
		t.Fatalf("template avatar must carry a linked profile")
	}
	if _, ok := registry.Profile(av.PersonalityProfileID); !ok {
		t.Fatalf("template profile not stored")
	}

	if _, err := d.CreateFromTemplate(context.Background(), "no-such-template", Input{}); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestDeleteCascadesProfileAndActivePointer(t *testing.T) {
	d, registry, gateway := newTestDirectory(t)
	ctx := context.Background()

	av := d.Create(ctx, Input{
		Name:                     "Maya",
		Role:                     persona.RoleCustom,
		CreatePersonalityProfile: true,
	})
	if err := d.SetActive(ctx, av.ID); err != nil {
		t.Fatalf("set active: %v", err)
	}

	if err := d.Delete(ctx, av.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, ok := d.Avatar(av.ID); ok {
		t.Fatalf("avatar survived delete")
	}
	if _, ok := registry.Profile(av.PersonalityProfileID); ok {
		t.Fatalf("owned profile survived avatar delete")
	}
	if _, ok := d.Active(); ok {
		t.Fatalf("active pointer survived delete")
	}

	id, err := gateway.ActiveAvatarID(ctx)
	if err != nil || id != "" {
		t.Fatalf("persisted active pointer not cleared: %q err=%v", id, err)
	}
}

func TestDeleteMissingAvatar(t *testing.T) {
	d, _, _ := newTestDirectory(t)

	if err := d.Delete(context.Background(), "avatar-missing"); !errors.Is(err, ErrAvatarNotFound) {
		t.Fatalf("expected ErrAvatarNotFound, got %v", err)
	}
}

func TestUpdateAvatarAppliesOnlySetFields(t *testing.T) {
	d, _, _ := newTestDirectory(t)
	ctx := context.Background()

	av := d.Create(ctx, Input{Name: "Maya", Role: "Friend"})

	newName := "Mia"
	updated, err := d.UpdateAvatar(ctx, av.ID, Update{Name: &newName})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Mia" {
		t.Fatalf("name not updated: %q", updated.Name)
	}
	if updated.Role != "Friend" {
		t.Fatalf("unset field changed: %q", updated.Role)
	}
}

func TestDirectoryStatePersistsAcrossReload(t *testing.T) {
	d, registry, gateway := newTestDirectory(t)
	ctx := context.Background()

	av := d.Create(ctx, Input{Name: "Maya", Role: "Friend"})
	if err := d.SetActive(ctx, av.ID); err != nil {
		t.Fatalf("set active: %v", err)
	}

	reloaded, err := NewDirectory(ctx, gateway, registry)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Avatars(); len(got) != 1 || got[0].ID != av.ID {
		t.Fatalf("avatars not restored: %+v", got)
	}
	active, ok := reloaded.Active()
	if !ok || active.ID != av.ID {
		t.Fatalf("active pointer not restored")
	}
}

func TestSystemInstructionForFallsBackToRole(t *testing.T) {
	d, _, _ := newTestDirectory(t)

	instruction := d.SystemInstructionFor("Sister")
	if !strings.Contains(instruction, "sister") {
		t.Fatalf("role instruction missing role: %q", instruction)
	}

	// Empty role resolves to the tutor instruction.
	if d.SystemInstructionFor("") != d.SystemInstructionFor("Tutor") {
		t.Fatalf("empty role must resolve to Tutor")
	}
}

func TestSystemInstructionForPrefersActiveProfile(t *testing.T) {
	d, _, _ := newTestDirectory(t)
	ctx := context.Background()

	av := d.Create(ctx, Input{
		Name:                     "Maya",
		Role:                     persona.RoleCustom,
		CreatePersonalityProfile: true,
		Personality:              "cheerful",
	})
	if err := d.SetActive(ctx, av.ID); err != nil {
		t.Fatalf("set active: %v", err)
	}

	instruction := d.SystemInstructionFor("Tutor")
	if !strings.Contains(instruction, "Maya") {
		t.Fatalf("profile instruction must carry the avatar name: %q", instruction)
	}
	if !strings.Contains(instruction, "cheerful") {
		t.Fatalf("profile instruction must carry the personality: %q", instruction)
	}
}
