package catalog

import (
	"github.com/bebsworthy/pathsieve/internal/filter"
)

// flyoutItems maps each player flyout menu entry to the icon name found in
// its payload.
var flyoutItems = []struct {
	group  string
	toggle string
	icon   string
}{
	{"quality", HideQualityMenu, "yt_outline_gear"},
	{"captions", HideCaptionsMenu, "yt_outline_closed_caption"},
	{"loop-video", HideLoopVideoMenu, "yt_outline_arrow_repeat_1_"},
	{"ambient-mode", HideAmbientModeMenu, "yt_outline_screen_light"},
	{"report", HideReportMenu, "yt_outline_flag"},
	{"help", HideHelpMenu, "yt_outline_question_circle"},
	{"more-info", HideMoreInfoMenu, "yt_outline_info_circle"},
	{"speed", HideSpeedMenu, "yt_outline_play_arrow_half_circle"},
	{"audio-track", HideAudioTrackMenu, "yt_outline_person_radar"},
	{"watch-in-vr", HideWatchInVRMenu, "yt_outline_vr"},
}

// NewPlayerFlyoutMenu hides player flyout menu items by matching their icon
// in the payload. It only acts while the player is maximized or fullscreen,
// and never in comment panels or video rows.
func NewPlayerFlyoutMenu(ctx Context) filter.Filter {
	ctx = ctx.withDefaults()
	groups := make([]*filter.Group, 0, len(flyoutItems))
	for _, item := range flyoutItems {
		groups = append(groups, filter.NewGroup(item.group, filter.KindBuffer, ctx.Toggles.Toggle(item.toggle), item.icon))
	}

	base := filter.NewBase("player-flyout-menu",
		filter.WithExceptions(
			"comment",
			"CellType|",
			"_sheet_",
			"video_with_context",
		),
		filter.WithGroups(groups...),
	)
	return filter.When(base, ctx.State.PlayerMaximizedOrFullscreen)
}
