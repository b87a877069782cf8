package catalog

import (
	"github.com/bebsworthy/pathsieve/internal/filter"
	"github.com/bebsworthy/pathsieve/internal/hoststate"
)

// NewSuggestionsShelf hides the horizontal suggestions shelf at the first
// position of a feed. The same layout lists playlists on the library tab,
// so it is kept there unless the player covers the feed.
func NewSuggestionsShelf(ctx Context) filter.Filter {
	ctx = ctx.withDefaults()
	base := filter.NewBase("suggestions-shelf",
		filter.WithGroups(
			filter.NewGroup("shelf", filter.KindPath, ctx.Toggles.Toggle(HideSuggestionsShelf),
				"horizontal_video_shelf.eml",
				"horizontal_shelf.eml",
			),
		),
	)
	state := ctx.State
	return filter.OnlyAtIndex(
		filter.When(base, func() bool { return shouldHideSuggestions(state) }),
		ctx.Options.SuggestionsShelfIndex,
	)
}

func shouldHideSuggestions(state *hoststate.State) bool {
	return !state.LibraryTabSelected() || state.PlayerMaximizedOrFullscreen()
}
