// Package testutil provides common test utilities and helpers for the pathsieve test suite.
//
// ConfigBuilder and FilterBuilder build configurations fluently:
//
//	cfg := testutil.NewConfigBuilder().
//		WithBuiltins().
//		WithToggle("hide_chips", true).
//		WithFilter(testutil.NewFilter("chips").
//			WithExceptions("comment_thread").
//			WithPathGroup("chip-bar", "hide_chips", "feed_filter_chip_bar").
//			Build()).
//		Build()
//
// Fixtures live under test/fixtures. ConfigFixture and RequestFixture resolve
// configuration files and JSON lines request streams. StaticToggles is a
// fixed filter.ToggleLookup for wiring configured filters without a store.
package testutil
