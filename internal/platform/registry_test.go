package platform

import (
	"testing"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()

	twitter := NewSimulatedClient(models.PlatformTwitter)
	if err := registry.Register(twitter); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if got := registry.Get(models.PlatformTwitter); got != Client(twitter) {
		t.Fatal("expected registered client back")
	}
	if got := registry.Get(models.PlatformLinkedIn); got != nil {
		t.Fatalf("expected nil for unregistered platform, got %v", got)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(NewSimulatedClient(models.PlatformTwitter)); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := registry.Register(NewSimulatedClient(models.PlatformTwitter)); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestRegistryMustRegisterPanicsOnDuplicate(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(NewSimulatedClient(models.PlatformLinkedIn))

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate MustRegister")
		}
	}()
	registry.MustRegister(NewSimulatedClient(models.PlatformLinkedIn))
}

func TestRegistryPlatformsSorted(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(NewSimulatedClient(models.PlatformTwitter))
	registry.MustRegister(NewSimulatedClient(models.PlatformLinkedIn))

	platforms := registry.Platforms()
	if len(platforms) != 2 {
		t.Fatalf("expected 2 platforms, got %d", len(platforms))
	}
	if platforms[0] != models.PlatformLinkedIn || platforms[1] != models.PlatformTwitter {
		t.Fatalf("expected sorted platforms, got %v", platforms)
	}
	if len(registry.List()) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(registry.List()))
	}
}

func TestRegistryUnregister(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(NewSimulatedClient(models.PlatformTwitter))

	if !registry.Unregister(models.PlatformTwitter) {
		t.Fatal("expected Unregister to report removal")
	}
	if registry.Unregister(models.PlatformTwitter) {
		t.Fatal("expected second Unregister to report nothing removed")
	}
	if registry.Get(models.PlatformTwitter) != nil {
		t.Fatal("expected client to be gone")
	}
}
