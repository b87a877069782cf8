// Package toggles owns the on/off switches that filter groups read. It is the
// settings side of the toggle lookup seam: flags live in atomics so the
// classification path never locks, and a JSON toggles file can be loaded,
// saved and watched for changes.
package toggles

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/bebsworthy/pathsieve/internal/debug"
	"github.com/bebsworthy/pathsieve/internal/filter"
)

// ErrInvalidToggleFile is returned when a toggles file has no toggles object.
var ErrInvalidToggleFile = errors.New("invalid toggle file")

// flag is a single switch. Its address never changes once created, so a
// filter built against it keeps seeing later updates.
type flag struct {
	value atomic.Bool
	def   bool
}

// Enabled implements filter.Toggle
func (f *flag) Enabled() bool {
	return f.value.Load()
}

// Store is a named set of flags. The map is guarded by a mutex; the flag
// values are not.
type Store struct {
	mu    sync.RWMutex
	flags map[string]*flag
	order []string
}

// File is the on-disk toggles format.
type File struct {
	Toggles map[string]bool `json:"toggles"`
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{flags: make(map[string]*flag)}
}

// NewStoreWithDefaults creates a store with every default registered
func NewStoreWithDefaults(defaults map[string]bool) *Store {
	s := NewStore()
	names := make([]string, 0, len(defaults))
	for name := range defaults {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.Register(name, defaults[name])
	}
	return s
}

// Register declares a toggle with its default. A toggle that already exists
// keeps its current value and only takes the new default.
func (s *Store) Register(name string, def bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.flags[name]; ok {
		f.def = def
		return
	}
	f := &flag{def: def}
	f.value.Store(def)
	s.flags[name] = f
	s.order = append(s.order, name)
}

// Toggle implements filter.ToggleLookup. Unknown names are registered with a
// false default so the returned toggle still follows later updates.
func (s *Store) Toggle(name string) filter.Toggle {
	return s.get(name)
}

func (s *Store) get(name string) *flag {
	s.mu.RLock()
	f, ok := s.flags[name]
	s.mu.RUnlock()
	if ok {
		return f
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.flags[name]; ok {
		return f
	}
	debug.Log("Toggles: %q was not registered, defaulting to off", name)
	f = &flag{}
	s.flags[name] = f
	s.order = append(s.order, name)
	return f
}

// Set changes one toggle
func (s *Store) Set(name string, enabled bool) {
	s.get(name).value.Store(enabled)
}

// Enabled reports the current value of a toggle
func (s *Store) Enabled(name string) bool {
	s.mu.RLock()
	f, ok := s.flags[name]
	s.mu.RUnlock()
	return ok && f.value.Load()
}

// Apply sets every toggle in values
func (s *Store) Apply(values map[string]bool) {
	for name, enabled := range values {
		s.Set(name, enabled)
	}
	debug.Log("Toggles: applied %d values", len(values))
}

// Reset restores every toggle to its default
func (s *Store) Reset() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.flags {
		f.value.Store(f.def)
	}
}

// Snapshot returns the current value of every toggle
func (s *Store) Snapshot() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]bool, len(s.flags))
	for name, f := range s.flags {
		out[name] = f.value.Load()
	}
	return out
}

// Names returns toggle names in registration order
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// ReadFile parses a toggles file without applying it
func ReadFile(path string) (map[string]bool, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path supplied by the user
	if err != nil {
		return nil, fmt.Errorf("failed to read toggles file: %w", err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToggleFile, err)
	}
	if file.Toggles == nil {
		return nil, fmt.Errorf("%w: missing \"toggles\" object", ErrInvalidToggleFile)
	}
	return file.Toggles, nil
}

// LoadFile reads a toggles file and applies it to the store
func (s *Store) LoadFile(path string) error {
	values, err := ReadFile(path)
	if err != nil {
		return err
	}
	s.Apply(values)
	return nil
}

// SaveFile writes the current values as a toggles file
func (s *Store) SaveFile(path string) error {
	data, err := json.MarshalIndent(File{Toggles: s.Snapshot()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal toggles: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write toggles file: %w", err)
	}
	debug.Log("Toggles: saved %s", path)
	return nil
}
