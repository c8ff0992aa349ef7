package segment

import (
	"fmt"
	"sync"

	"github.com/hrstools/codebook/model"
)

// Registry manages the layout grammars by source track.
type Registry struct {
	mu         sync.RWMutex
	segmenters map[model.Track]Segmenter
}

// DefaultRegistry is the global registry with the three known grammars.
var DefaultRegistry = NewRegistry()

// NewRegistry creates a registry holding the default grammars: the core
// and post-exit fixed-width text layouts and the exit HTML-table layout.
func NewRegistry() *Registry {
	r := &Registry{
		segmenters: make(map[model.Track]Segmenter),
	}

	r.Register(NewCoreText())
	r.Register(NewPostExitText())
	r.Register(NewExitHTML())

	return r
}

// Register adds a grammar for its track.
func (r *Registry) Register(s Segmenter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.segmenters[s.Track()] = s
}

// Get returns the grammar for a track.
func (r *Registry) Get(track model.Track) (Segmenter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.segmenters[track]
	if !ok {
		return nil, fmt.Errorf("no segmenter for track %q", track)
	}
	return s, nil
}

// Segment splits a document using the grammar registered for the track.
func (r *Registry) Segment(track model.Track, content string) (*Result, error) {
	s, err := r.Get(track)
	if err != nil {
		return nil, err
	}
	return s.Segment(content), nil
}

// Tracks returns the registered tracks.
func (r *Registry) Tracks() []model.Track {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tracks := make([]model.Track, 0, len(r.segmenters))
	for t := range r.segmenters {
		tracks = append(tracks, t)
	}
	return tracks
}
