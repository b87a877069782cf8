// Package catalog provides the built-in filters for the video app's UI
// tree: ads, description sections, info cards, the playback speed menu,
// the suggestions shelf and player flyout menu items.
package catalog

import (
	"time"

	"github.com/bebsworthy/pathsieve/internal/debug"
	"github.com/bebsworthy/pathsieve/internal/filter"
	"github.com/bebsworthy/pathsieve/internal/hoststate"
	"github.com/bebsworthy/pathsieve/internal/toggles"
	"github.com/bebsworthy/pathsieve/internal/trie"
)

// Toggle keys read by the built-in filters.
const (
	HideGeneralAds         = "hide_general_ads"
	HideFullscreenAds      = "hide_fullscreen_ads"
	HideButtonedAds        = "hide_buttoned_ads"
	HideMerchandiseBanners = "hide_merchandise_banners"
	HideProductsBanner     = "hide_products_banner"
	HideSelfSponsor        = "hide_self_sponsor"
	HideWebSearchResults   = "hide_web_search_results"
	HideShoppingLinks      = "hide_shopping_links"
	HideMoviesSection      = "hide_movies_section"
	HideChapters           = "hide_chapters"
	HideInfoCardsSection   = "hide_info_cards_section"
	HideGameSection        = "hide_game_section"
	HideMusicSection       = "hide_music_section"
	HidePodcastSection     = "hide_podcast_section"
	HideTranscriptSection  = "hide_transcript_section"
	HideInfoCards          = "hide_info_cards"
	HideSuggestionsShelf   = "hide_suggestions_shelf"
	HideQualityMenu        = "hide_quality_menu"
	HideCaptionsMenu       = "hide_captions_menu"
	HideLoopVideoMenu      = "hide_loop_video_menu"
	HideAmbientModeMenu    = "hide_ambient_mode_menu"
	HideReportMenu         = "hide_report_menu"
	HideHelpMenu           = "hide_help_menu"
	HideMoreInfoMenu       = "hide_more_info_menu"
	HideSpeedMenu          = "hide_speed_menu"
	HideAudioTrackMenu     = "hide_audio_track_menu"
	HideWatchInVRMenu      = "hide_watch_in_vr_menu"
)

// ToggleDefault describes one built-in toggle.
type ToggleDefault struct {
	Name        string
	Default     bool
	Description string
}

var defaults = []ToggleDefault{
	{HideGeneralAds, true, "General ads, carousel ads and interstitials"},
	{HideFullscreenAds, true, "Fullscreen ads"},
	{HideButtonedAds, true, "Ads with call to action buttons"},
	{HideMerchandiseBanners, true, "Merchandise carousels"},
	{HideProductsBanner, true, "Products in video banners"},
	{HideSelfSponsor, true, "Channel self sponsor cards"},
	{HideWebSearchResults, true, "Web search result panels"},
	{HideShoppingLinks, true, "Shopping links below the description"},
	{HideMoviesSection, true, "Movie and show upsells"},
	{HideChapters, false, "Chapters in the description"},
	{HideInfoCardsSection, true, "Info cards section in the description"},
	{HideGameSection, true, "Game section in the description"},
	{HideMusicSection, false, "Music section in the description"},
	{HidePodcastSection, true, "Podcast section in the description"},
	{HideTranscriptSection, true, "Transcript section in the description"},
	{HideInfoCards, true, "Info card teasers over the video"},
	{HideSuggestionsShelf, true, "Suggestions shelf in feeds"},
	{HideQualityMenu, false, "Quality item in the player flyout menu"},
	{HideCaptionsMenu, false, "Captions item in the player flyout menu"},
	{HideLoopVideoMenu, false, "Loop video item in the player flyout menu"},
	{HideAmbientModeMenu, false, "Ambient mode item in the player flyout menu"},
	{HideReportMenu, false, "Report item in the player flyout menu"},
	{HideHelpMenu, false, "Help item in the player flyout menu"},
	{HideMoreInfoMenu, false, "More info item in the player flyout menu"},
	{HideSpeedMenu, false, "Playback speed item in the player flyout menu"},
	{HideAudioTrackMenu, false, "Audio track item in the player flyout menu"},
	{HideWatchInVRMenu, false, "Watch in VR item in the player flyout menu"},
}

// Defaults lists every built-in toggle in display order
func Defaults() []ToggleDefault {
	out := make([]ToggleDefault, len(defaults))
	copy(out, defaults)
	return out
}

// DefaultValues returns the built-in toggles keyed by name
func DefaultValues() map[string]bool {
	out := make(map[string]bool, len(defaults))
	for _, d := range defaults {
		out[d.Name] = d.Default
	}
	return out
}

// Options holds the tunable thresholds of the built-in filters.
type Options struct {
	// ShoppingLinksIndex is the only content index at which shopping links
	// are blocked.
	ShoppingLinksIndex int

	// SuggestionsShelfIndex is the only content index at which the
	// suggestions shelf is blocked.
	SuggestionsShelfIndex int

	// FullscreenCloseInterval is the minimum time between two close
	// requests for a fullscreen ad. Zero or less disables the limit.
	FullscreenCloseInterval time.Duration
}

// DefaultOptions returns the thresholds the host app was tuned with
func DefaultOptions() Options {
	return Options{
		ShoppingLinksIndex:      0,
		SuggestionsShelfIndex:   0,
		FullscreenCloseInterval: 10 * time.Second,
	}
}

// Context is threaded through construction of the built-in filters.
type Context struct {
	// Toggles resolves group toggles. Nil means the built-in defaults.
	Toggles filter.ToggleLookup

	// State is the observed host state. Nil means no player and no
	// library tab.
	State *hoststate.State

	// OnFullscreenAd is asked to dismiss a fullscreen ad. Optional.
	OnFullscreenAd func()

	Options Options
}

// Catalog is the set of built-in filters. Filters with side channels are
// kept typed so the host can read them.
type Catalog struct {
	Ads               *Ads
	Description       filter.Filter
	InfoCards         filter.Filter
	PlaybackSpeedMenu *PlaybackSpeedMenu
	SuggestionsShelf  filter.Filter
	PlayerFlyoutMenu  filter.Filter
}

// commentExceptions keeps a filter out of comment threads.
func commentExceptions() *trie.Matcher {
	return trie.New("comment_thread", "|comment.")
}

// withDefaults fills in collaborators left nil.
func (c Context) withDefaults() Context {
	if c.Toggles == nil {
		c.Toggles = toggles.NewStoreWithDefaults(DefaultValues())
	}
	if c.State == nil {
		c.State = hoststate.New()
	}
	return c
}

// Build constructs every built-in filter
func Build(ctx Context) *Catalog {
	ctx = ctx.withDefaults()

	c := &Catalog{
		Ads:               NewAds(ctx, commentExceptions()),
		Description:       NewDescription(ctx),
		InfoCards:         NewInfoCards(ctx),
		PlaybackSpeedMenu: NewPlaybackSpeedMenu(),
		SuggestionsShelf:  NewSuggestionsShelf(ctx),
		PlayerFlyoutMenu:  NewPlayerFlyoutMenu(ctx),
	}
	debug.Log("Catalog: built %d filters", len(c.Filters()))
	return c
}

// Filters returns the built-in filters in registration order
func (c *Catalog) Filters() []filter.Filter {
	return []filter.Filter{
		c.Ads,
		c.Description,
		c.InfoCards,
		c.PlaybackSpeedMenu,
		c.SuggestionsShelf,
		c.PlayerFlyoutMenu,
	}
}

// Filters builds the catalog and returns its filters in registration order
func Filters(ctx Context) []filter.Filter {
	return Build(ctx).Filters()
}
