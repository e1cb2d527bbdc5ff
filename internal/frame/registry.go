package frame

import (
	"sort"
	"strings"
	"sync"
)

// Registry holds every loaded Frame, keyed by frame ID, and resolves
// classification's frame-name hints against them.
type Registry struct {
	mu     sync.RWMutex
	frames map[string]Frame
}

// NewRegistry returns an empty frame registry.
func NewRegistry() *Registry {
	return &Registry{frames: make(map[string]Frame)}
}

// Register adds f to the registry, indexed by its descriptor's FrameID.
// Satisfies spec's "external checks discovered from a well-known
// directory and registered; a register_check-style API exists for
// programmatic registration" requirement at the frame granularity.
func (r *Registry) Register(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames[f.Descriptor().FrameID] = f
}

// All returns every registered frame, ordered by descending priority
// then frame ID for deterministic SEQUENTIAL execution order.
func (r *Registry) All() []Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Frame, 0, len(r.frames))
	for _, f := range r.frames {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].Descriptor(), out[j].Descriptor()
		if di.Priority != dj.Priority {
			return di.Priority > dj.Priority
		}
		return di.FrameID < dj.FrameID
	})
	return out
}

// normalizeHint strips "frame", "-", "_" and lowercases, per spec's
// frame-matching normalization rule.
func normalizeHint(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "frame", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return strings.TrimSpace(s)
}

// Match resolves classification's frame-name hints against the loaded
// frames: frame-id match, frame-name match, or substring match, all on
// normalized strings. If hints is non-empty but none match any loaded
// frame, Match returns (all frames, true) so the caller can fall back to
// running everything and record a warning, per spec.
func (r *Registry) Match(hints []string) (matched []Frame, fellBack bool) {
	all := r.All()
	if len(hints) == 0 {
		return nil, false
	}

	normalizedHints := make([]string, len(hints))
	for i, h := range hints {
		normalizedHints[i] = normalizeHint(h)
	}

	seen := make(map[string]bool)
	for _, f := range all {
		d := f.Descriptor()
		id := normalizeHint(d.FrameID)
		name := normalizeHint(d.Name)
		for _, h := range normalizedHints {
			if h == "" {
				continue
			}
			if h == id || h == name || strings.Contains(id, h) || strings.Contains(name, h) {
				if !seen[d.FrameID] {
					seen[d.FrameID] = true
					matched = append(matched, f)
				}
				break
			}
		}
	}

	if len(matched) == 0 {
		return all, true
	}
	return matched, false
}

// Get looks up a single frame by ID.
func (r *Registry) Get(frameID string) (Frame, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.frames[frameID]
	return f, ok
}
