// Package filter implements the classification engine: toggleable pattern
// groups, filters built from them, and the registry that dispatches host
// requests to filters.
package filter

import (
	"fmt"

	"github.com/bebsworthy/pathsieve/pkg/config"
)

// Kind selects which request field a group is matched against.
type Kind uint8

const (
	// KindIdentifier matches the component identifier.
	KindIdentifier Kind = iota
	// KindPath matches the structural path.
	KindPath
	// KindBuffer matches the raw payload as a byte string.
	KindBuffer

	kindCount
)

// String returns the configuration name of the kind
func (k Kind) String() string {
	switch k {
	case KindIdentifier:
		return config.KindIdentifier
	case KindPath:
		return config.KindPath
	case KindBuffer:
		return config.KindBuffer
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k Kind) valid() bool {
	return k < kindCount
}

// ParseKind converts a configuration kind name
func ParseKind(s string) (Kind, error) {
	switch s {
	case config.KindIdentifier:
		return KindIdentifier, nil
	case config.KindPath:
		return KindPath, nil
	case config.KindBuffer:
		return KindBuffer, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Decision is the outcome of classifying one request.
type Decision uint8

const (
	// Allow leaves the element alone.
	Allow Decision = iota
	// Block suppresses the element.
	Block
)

// String returns "allow" or "block"
func (d Decision) String() string {
	if d == Block {
		return "block"
	}
	return "allow"
}

// Request is one classification call from the host. An empty Identifier and
// a nil Buffer mean the host supplied none.
type Request struct {
	Identifier   string
	Path         string
	Buffer       []byte
	Kind         Kind
	ContentIndex int
}
