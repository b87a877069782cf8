package testutil

import (
	"github.com/bebsworthy/pathsieve/internal/filter"
)

// PathRequest returns a request carrying only a path.
func PathRequest(path string) *filter.Request {
	return &filter.Request{Path: path}
}

// IndexedRequest returns a path request at the given content index.
func IndexedRequest(path string, index int) *filter.Request {
	return &filter.Request{Path: path, ContentIndex: index}
}

// IdentifierRequest returns a request with both identifier and path.
func IdentifierRequest(identifier, path string) *filter.Request {
	return &filter.Request{Identifier: identifier, Path: path}
}

// BufferRequest returns a request with a path and a raw payload.
func BufferRequest(path, buffer string) *filter.Request {
	return &filter.Request{Path: path, Buffer: []byte(buffer)}
}

// StaticToggles is a fixed toggle lookup. Unknown names are disabled.
type StaticToggles map[string]bool

// Toggle implements filter.ToggleLookup.
func (s StaticToggles) Toggle(name string) filter.Toggle {
	enabled := s[name]
	return filter.ToggleFunc(func() bool { return enabled })
}
