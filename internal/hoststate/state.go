// Package hoststate holds the host UI state that some filters consult:
// which player layout is showing and whether the library tab is selected.
// Host adapters write it, filters only read it.
package hoststate

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// PlayerType is the layout the host video player is currently in.
type PlayerType uint32

// Player layouts reported by the host.
const (
	PlayerNone PlayerType = iota
	PlayerHidden
	WatchWhileMinimized
	WatchWhileMaximized
	WatchWhileFullscreen
	WatchWhileSlidingMaximizedFullscreen
	WatchWhileSlidingMinimizedMaximized
	WatchWhileSlidingMinimizedDismissed
	WatchWhileSlidingFullscreenDismissed
	InlineMinimal
	VirtualRealityFullscreen
	WatchWhilePictureInPicture

	playerTypeCount
)

var playerTypeNames = [playerTypeCount]string{
	"none",
	"hidden",
	"watch_while_minimized",
	"watch_while_maximized",
	"watch_while_fullscreen",
	"watch_while_sliding_maximized_fullscreen",
	"watch_while_sliding_minimized_maximized",
	"watch_while_sliding_minimized_dismissed",
	"watch_while_sliding_fullscreen_dismissed",
	"inline_minimal",
	"virtual_reality_fullscreen",
	"watch_while_picture_in_picture",
}

// String returns the snake_case name of the layout
func (p PlayerType) String() string {
	if p < playerTypeCount {
		return playerTypeNames[p]
	}
	return fmt.Sprintf("player_type(%d)", uint32(p))
}

// IsMaximizedOrFullscreen reports whether the player covers the content feed.
func (p PlayerType) IsMaximizedOrFullscreen() bool {
	return p == WatchWhileMaximized || p == WatchWhileFullscreen
}

// ParsePlayerType accepts the snake_case name in any case, so host enum
// names such as WATCH_WHILE_MAXIMIZED parse too.
func ParsePlayerType(s string) (PlayerType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range playerTypeNames {
		if n == name {
			return PlayerType(i), nil
		}
	}
	return PlayerNone, fmt.Errorf("unknown player type %q", s)
}

// PlayerTypes lists every layout in declaration order
func PlayerTypes() []PlayerType {
	out := make([]PlayerType, playerTypeCount)
	for i := range out {
		out[i] = PlayerType(i)
	}
	return out
}

// State is the observed host state. The zero value has no player showing and
// the library tab unselected.
type State struct {
	player     atomic.Uint32
	libraryTab atomic.Bool
}

// New creates a state with no player showing
func New() *State {
	return &State{}
}

// SetPlayerType records the current player layout
func (s *State) SetPlayerType(p PlayerType) {
	s.player.Store(uint32(p))
}

// PlayerType returns the current player layout. A nil state reports none.
func (s *State) PlayerType() PlayerType {
	if s == nil {
		return PlayerNone
	}
	return PlayerType(s.player.Load())
}

// SetLibraryTabSelected records whether the library tab is showing
func (s *State) SetLibraryTabSelected(selected bool) {
	s.libraryTab.Store(selected)
}

// LibraryTabSelected reports whether the library tab is showing
func (s *State) LibraryTabSelected() bool {
	return s != nil && s.libraryTab.Load()
}

// PlayerMaximizedOrFullscreen is shorthand used as a filter condition.
func (s *State) PlayerMaximizedOrFullscreen() bool {
	return s.PlayerType().IsMaximizedOrFullscreen()
}
