// Package channel defines the notification transport abstraction and its
// implementations. The dispatcher only speaks this interface, so adding a
// channel never touches dispatch logic.
package channel

import (
	"context"
	"sync"

	"SiteMonitorAPI/internal/models"
)

// Result reports the outcome of one send attempt.
type Result struct {
	Success           bool
	ProviderMessageID *string
	Err               error
}

// Channel is an abstract notification transport.
type Channel interface {
	Name() models.NotificationChannel
	Send(ctx context.Context, recipient, message string) Result
}

// Registry maps channel names onto implementations.
type Registry struct {
	mu       sync.RWMutex
	channels map[models.NotificationChannel]Channel
}

func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[models.NotificationChannel]Channel),
	}
}

func (r *Registry) Register(ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[ch.Name()] = ch
}

func (r *Registry) Get(name models.NotificationChannel) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[name]
	return ch, ok
}

// Names returns the registered channel names.
func (r *Registry) Names() []models.NotificationChannel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]models.NotificationChannel, 0, len(r.channels))
	for name := range r.channels {
		names = append(names, name)
	}
	return names
}

func failure(err error) Result {
	return Result{Success: false, Err: err}
}

func success(providerMessageID string) Result {
	if providerMessageID == "" {
		return Result{Success: true}
	}
	return Result{Success: true, ProviderMessageID: &providerMessageID}
}
