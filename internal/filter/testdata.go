//go:build performance

package filter

import (
	"fmt"
	"strings"
)

// Common test patterns used across the benchmarks
var (
	// AdPatterns resemble the general ad group of the built-in catalog
	AdPatterns = []string{
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
		"|sponsor_card",
		"|promoted_sparkles",
	}

	// ExceptionPatterns resemble the comment and video row exceptions
	ExceptionPatterns = []string{
		"home_video_with_context",
		"related_video_with_context",
		"comment_thread",
		"|comment.",
	}
)

// pathSegments are the ordinary components paths are built from
var pathSegments = []string{
	"browse_feed.eml",
	"rich_grid_row.eml",
	"video_lockup_with_attachment.eml",
	"compact_video.eml",
	"metadata_container.eml",
	"avatar.eml",
}

// GeneratePaths creates n structural paths; one in every 1/blockRate ends in
// an ad component
func GeneratePaths(n int, blockRate float64) []string {
	interval := n + 1
	if blockRate > 0 {
		interval = int(1.0 / blockRate)
	}

	paths := make([]string, n)
	for i := range paths {
		var b strings.Builder
		for depth := 0; depth < 4+i%4; depth++ {
			b.WriteString(pathSegments[(i+depth)%len(pathSegments)])
			b.WriteByte('|')
		}
		if i%interval == 0 {
			b.WriteString(AdPatterns[i%len(AdPatterns)])
		} else {
			fmt.Fprintf(&b, "item_%d.eml", i)
		}
		paths[i] = b.String()
	}
	return paths
}
