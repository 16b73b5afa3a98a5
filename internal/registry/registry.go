// Package registry holds the process-wide language/speaker state.
package registry

import (
	"sort"
	"sync"
)

// Snapshot is an immutable view of the registry. Handlers validate against a
// snapshot so an in-flight request is unaffected by a concurrent switch.
type Snapshot struct {
	Language string
	Speakers []string
}

// Has reports whether a voice identifier belongs to this snapshot.
func (s Snapshot) Has(voiceID string) bool {
	for _, sp := range s.Speakers {
		if sp == voiceID {
			return true
		}
	}
	return false
}

// Registry maps the active language to its available speakers. The only
// mutator is Switch, which replaces both fields together — readers never
// observe a language paired with another language's speakers.
type Registry struct {
	mu       sync.RWMutex
	language string
	speakers []string
}

// New creates a registry primed with the given language and speaker set.
func New(language string, speakers []string) *Registry {
	r := &Registry{}
	r.Switch(language, speakers)
	return r
}

// Snapshot returns a consistent copy of the current state.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	speakers := make([]string, len(r.speakers))
	copy(speakers, r.speakers)

	return Snapshot{Language: r.language, Speakers: speakers}
}

// Switch atomically replaces the active language and its speaker set.
// The speaker set is copied and sorted so snapshots are stable for clients.
func (r *Registry) Switch(language string, speakers []string) {
	sorted := make([]string, len(speakers))
	copy(sorted, speakers)
	sort.Strings(sorted)

	r.mu.Lock()
	r.language = language
	r.speakers = sorted
	r.mu.Unlock()
}
