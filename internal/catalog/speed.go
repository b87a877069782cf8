package catalog

import (
	"sync/atomic"

	"github.com/bebsworthy/pathsieve/internal/filter"
)

// PlaybackSpeedMenu never blocks. It watches for the two speed menus so the
// host can replace their contents once they are on screen.
type PlaybackSpeedMenu struct {
	*filter.Base

	rateSelector *filter.Group

	rateSelectorVisible atomic.Bool
	oldMenuVisible      atomic.Bool
}

// NewPlaybackSpeedMenu builds the speed menu observer. Its groups have no
// toggle.
func NewPlaybackSpeedMenu() *PlaybackSpeedMenu {
	m := &PlaybackSpeedMenu{
		rateSelector: filter.NewGroup("rate-selector", filter.KindPath, nil,
			"playback_rate_selector_menu_sheet.eml-js",
		),
	}
	m.Base = filter.NewBase("playback-speed-menu",
		filter.WithGroups(
			m.rateSelector,
			filter.NewGroup("old-menu", filter.KindPath, nil,
				"playback_speed_sheet_content.eml-js",
			),
		),
	)
	return m
}

// Classify implements filter.Filter
func (m *PlaybackSpeedMenu) Classify(req *filter.Request) filter.Decision {
	return m.ClassifyWith(req, m.observe)
}

func (m *PlaybackSpeedMenu) observe(_ *filter.Request, matched *filter.Group) filter.Decision {
	if matched == m.rateSelector {
		m.rateSelectorVisible.Store(true)
	} else {
		m.oldMenuVisible.Store(true)
	}
	return filter.Allow
}

// RateSelectorVisible reports whether the fine grained rate selector was seen
func (m *PlaybackSpeedMenu) RateSelectorVisible() bool {
	return m.rateSelectorVisible.Load()
}

// OldMenuVisible reports whether the older speed sheet was seen
func (m *PlaybackSpeedMenu) OldMenuVisible() bool {
	return m.oldMenuVisible.Load()
}

// ConsumeRateSelectorVisible reports and clears the rate selector flag.
func (m *PlaybackSpeedMenu) ConsumeRateSelectorVisible() bool {
	return m.rateSelectorVisible.Swap(false)
}

// ConsumeOldMenuVisible reports and clears the old menu flag.
func (m *PlaybackSpeedMenu) ConsumeOldMenuVisible() bool {
	return m.oldMenuVisible.Swap(false)
}
