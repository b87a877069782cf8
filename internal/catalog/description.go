package catalog

import (
	"github.com/bebsworthy/pathsieve/internal/filter"
)

// NewDescription hides optional sections of the video description. Paths
// inside the description body itself, channel rows and grids are left alone.
func NewDescription(ctx Context) filter.Filter {
	ctx = ctx.withDefaults()
	t := ctx.Toggles
	return filter.NewBase("description",
		filter.WithExceptions(
			"compact_channel",
			"description",
			"grid_video",
			"inline_expander",
			"metadata",
		),
		filter.WithGroups(
			filter.NewGroup("chapters", filter.KindPath, t.Toggle(HideChapters),
				"macro_markers_carousel",
			),
			filter.NewGroup("info-cards-section", filter.KindPath, t.Toggle(HideInfoCardsSection),
				"infocards_section",
			),
			filter.NewGroup("game-section", filter.KindPath, t.Toggle(HideGameSection),
				"gaming_section",
			),
			filter.NewGroup("music-section", filter.KindPath, t.Toggle(HideMusicSection),
				"music_section",
				"video_attributes_section",
			),
			filter.NewGroup("podcast-section", filter.KindPath, t.Toggle(HidePodcastSection),
				"playlist_section",
			),
			filter.NewGroup("transcript-section", filter.KindPath, t.Toggle(HideTranscriptSection),
				"transcript_section",
			),
		),
	)
}

// NewInfoCards hides the info card teaser drawn over the video.
func NewInfoCards(ctx Context) filter.Filter {
	ctx = ctx.withDefaults()
	return filter.NewBase("info-cards",
		filter.WithGroups(
			filter.NewGroup("teaser", filter.KindIdentifier, ctx.Toggles.Toggle(HideInfoCards),
				"info_card_teaser_overlay.eml",
			),
		),
	)
}
