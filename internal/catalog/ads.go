package catalog

import (
	"strings"

	"golang.org/x/time/rate"

	"github.com/bebsworthy/pathsieve/internal/debug"
	"github.com/bebsworthy/pathsieve/internal/filter"
	"github.com/bebsworthy/pathsieve/internal/trie"
)

// fullscreenMarker appears in the path of fullscreen ads rendered as images.
const fullscreenMarker = "|ImageType|"

// Ads hides ad components. Fullscreen and interstitial image ads also ask
// the host to dismiss them, at most once per close interval.
type Ads struct {
	*filter.Base

	fullscreen    *filter.Group
	interstitial  *filter.Group
	shoppingLinks *filter.Group
	shoppingIndex int

	closeLimit *rate.Limiter
	onClose    func()
}

// NewAds builds the ads filter. comments is composed into its exceptions.
func NewAds(ctx Context, comments *trie.Matcher) *Ads {
	ctx = ctx.withDefaults()
	t := ctx.Toggles
	a := &Ads{
		shoppingIndex: ctx.Options.ShoppingLinksIndex,
		onClose:       ctx.OnFullscreenAd,
		closeLimit:    newCloseLimiter(ctx.Options),
	}

	carousel := filter.NewGroup("carousel", filter.KindIdentifier, t.Toggle(HideGeneralAds),
		"carousel_ad",
	)

	a.fullscreen = filter.NewGroup("fullscreen", filter.KindPath, t.Toggle(HideFullscreenAds),
		"fullscreen_ad",
	)
	a.interstitial = filter.NewGroup("interstitial", filter.KindPath, t.Toggle(HideGeneralAds),
		"_interstitial",
	)
	buttoned := filter.NewGroup("buttoned", filter.KindPath, t.Toggle(HideButtonedAds),
		"_buttoned_layout",
		"full_width_square_image_layout",
		"_ad_with",
		"text_image_button_group_layout",
		"video_display_button_group_layout",
		"landscape_image_wide_button_layout",
		"video_display_carousel_button_group_layout",
	)
	general := filter.NewGroup("general", filter.KindPath, t.Toggle(HideGeneralAds),
		"ads_video_with_context",
		"banner_text_icon",
		"square_image_layout",
		"watch_metadata_app_promo",
		"video_display_full_layout",
		"hero_promo_image",
		"statement_banner",
		"carousel_footered_layout",
		"text_image_button_layout",
		"primetime_promo",
		"product_details",
		"carousel_headered_layout",
		"full_width_portrait_image_layout",
		"brand_video_shelf",
	)
	movies := filter.NewGroup("movies", filter.KindPath, t.Toggle(HideMoviesSection),
		"browsy_bar",
		"compact_movie",
		"horizontal_movie_shelf",
		"movie_and_show_upsell_card",
		"compact_tvfilm_item",
		"offer_module_root",
	)
	products := filter.NewGroup("products", filter.KindPath, t.Toggle(HideProductsBanner),
		"product_item",
		"products_in_video",
	)
	a.shoppingLinks = filter.NewGroup("shopping-links", filter.KindPath, t.Toggle(HideShoppingLinks),
		"expandable_list",
	)
	webLinks := filter.NewGroup("web-link-panel", filter.KindPath, t.Toggle(HideWebSearchResults),
		"web_link_panel",
	)
	merchandise := filter.NewGroup("merchandise", filter.KindPath, t.Toggle(HideMerchandiseBanners),
		"product_carousel",
	)
	selfSponsor := filter.NewGroup("self-sponsor", filter.KindPath, t.Toggle(HideSelfSponsor),
		"cta_shelf_card",
	)

	a.Base = filter.NewBase("ads",
		filter.WithExceptions(
			"home_video_with_context",
			"related_video_with_context",
			"library_recent_shelf",
		),
		filter.WithSharedExceptions(comments),
		filter.WithGroups(
			carousel,
			general,
			buttoned,
			merchandise,
			products,
			selfSponsor,
			a.fullscreen,
			a.interstitial,
			webLinks,
			a.shoppingLinks,
			movies,
		),
	)
	return a
}

func newCloseLimiter(opts Options) *rate.Limiter {
	if opts.FullscreenCloseInterval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(opts.FullscreenCloseInterval), 1)
}

// Classify implements filter.Filter
func (a *Ads) Classify(req *filter.Request) filter.Decision {
	return a.ClassifyWith(req, a.decide)
}

func (a *Ads) decide(req *filter.Request, matched *filter.Group) filter.Decision {
	if (matched == a.fullscreen || matched == a.interstitial) && strings.Contains(req.Path, fullscreenMarker) {
		filter.SideEffect(a.Name(), a.closeFullscreenAd)
	}

	// Shopping links are common enough elsewhere that only one position is trusted.
	if matched == a.shoppingLinks && req.ContentIndex != a.shoppingIndex {
		return filter.Allow
	}
	return filter.Block
}

func (a *Ads) closeFullscreenAd() {
	if a.onClose == nil || !a.closeLimit.Allow() {
		return
	}
	debug.Log("Ads: closing fullscreen ad")
	a.onClose()
}
