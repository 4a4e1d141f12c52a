package hub

import (
	"sort"
	"sync"
)

// Registry is the ground truth for who is online in this process. A user
// may hold several channels at once (multi-device); the identity is
// present for as long as at least one of them lives.
type Registry struct {
	mu         sync.Mutex
	byIdentity map[string]map[*Channel]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		byIdentity: make(map[string]map[*Channel]struct{}),
	}
}

func (r *Registry) Register(ch *Channel) {
	if ch == nil || ch.Identity == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	channels, ok := r.byIdentity[ch.Identity]
	if !ok {
		channels = make(map[*Channel]struct{})
		r.byIdentity[ch.Identity] = channels
	}
	channels[ch] = struct{}{}
}

// Unregister reports whether the channel was actually present, so the
// caller can tie exactly one presence re-broadcast to each real eviction.
func (r *Registry) Unregister(ch *Channel) bool {
	if ch == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	channels, ok := r.byIdentity[ch.Identity]
	if !ok {
		return false
	}
	if _, ok := channels[ch]; !ok {
		return false
	}
	delete(channels, ch)
	if len(channels) == 0 {
		delete(r.byIdentity, ch.Identity)
	}
	return true
}

func (r *Registry) ChannelsFor(identity string) []*Channel {
	r.mu.Lock()
	defer r.mu.Unlock()

	channels, ok := r.byIdentity[identity]
	if !ok {
		return nil
	}
	out := make([]*Channel, 0, len(channels))
	for ch := range channels {
		out = append(out, ch)
	}
	return out
}

func (r *Registry) AllChannels() []*Channel {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Channel
	for _, channels := range r.byIdentity {
		for ch := range channels {
			out = append(out, ch)
		}
	}
	return out
}

func (r *Registry) AllIdentities() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.byIdentity))
	for identity := range r.byIdentity {
		out = append(out, identity)
	}
	sort.Strings(out)
	return out
}
