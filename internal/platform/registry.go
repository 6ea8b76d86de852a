package platform

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/models"
)

// Registry manages the platform clients available to a run.
type Registry struct {
	mu      sync.RWMutex
	clients map[models.Platform]Client
}

// NewRegistry creates an empty client registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[models.Platform]Client),
	}
}

// Register adds a client to the registry.
// Returns an error if a client for the same platform is already registered.
func (r *Registry) Register(client Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	platform := client.Platform()
	if _, exists := r.clients[platform]; exists {
		return fmt.Errorf("client for %q already registered", platform)
	}

	r.clients[platform] = client
	return nil
}

// MustRegister adds a client to the registry, panicking on error.
func (r *Registry) MustRegister(client Client) {
	if err := r.Register(client); err != nil {
		panic(err)
	}
}

// Get retrieves the client for a platform.
// Returns nil if no client is registered.
func (r *Registry) Get(platform models.Platform) Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.clients[platform]
}

// List returns all registered clients.
func (r *Registry) List() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]Client, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, client)
	}
	return clients
}

// Platforms returns the registered platforms in stable order.
func (r *Registry) Platforms() []models.Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()

	platforms := make([]models.Platform, 0, len(r.clients))
	for platform := range r.clients {
		platforms = append(platforms, platform)
	}
	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })
	return platforms
}

// Unregister removes the client for a platform.
// Returns true if a client was removed, false if none was registered.
func (r *Registry) Unregister(platform models.Platform) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[platform]; exists {
		delete(r.clients, platform)
		return true
	}
	return false
}

// DefaultRegistry is the global client registry.
var DefaultRegistry = NewRegistry()

// Register adds a client to the default registry.
func Register(client Client) error {
	return DefaultRegistry.Register(client)
}

// MustRegister adds a client to the default registry, panicking on error.
func MustRegister(client Client) {
	DefaultRegistry.MustRegister(client)
}

// Get retrieves a client from the default registry.
func Get(platform models.Platform) Client {
	return DefaultRegistry.Get(platform)
}

// List returns all clients from the default registry.
func List() []Client {
	return DefaultRegistry.List()
}
