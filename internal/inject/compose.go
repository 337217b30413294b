// Package inject builds the content-filtering script handed to the render
// surface on every page load.
//
// The script runs once, as soon as the document is available. It is not a
// mutation observer: ads or tracker tags inserted after it runs stay on the
// page.
package inject

import "strings"

// FilterConfig is the per-load snapshot of the user's filtering settings.
type FilterConfig struct {
	// AdBlock removes elements matching known ad placements.
	AdBlock bool `json:"ad_block" yaml:"ad_block"`

	// TrackerBlock removes script tags loaded from known tracker domains.
	TrackerBlock bool `json:"tracker_block" yaml:"tracker_block"`

	// DarkMode is a presentation preference. It does not affect the script.
	DarkMode bool `json:"dark_mode" yaml:"dark_mode"`

	// AlternateDNS adds the resolver probe described on DNSHintFragment.
	AlternateDNS bool `json:"alternate_dns" yaml:"alternate_dns"`
}

// Fragments returns the enabled fragments in their fixed order: ad block,
// tracker block, DNS hint.
func Fragments(cfg FilterConfig) []Fragment {
	var out []Fragment
	if cfg.AdBlock {
		out = append(out, AdBlockFragment())
	}
	if cfg.TrackerBlock {
		out = append(out, TrackerBlockFragment())
	}
	if cfg.AlternateDNS {
		out = append(out, DNSHintFragment())
	}
	return out
}

// Compose concatenates the enabled fragments. It returns "" when nothing is
// enabled and the same bytes for the same config.
func Compose(cfg FilterConfig) string {
	frags := Fragments(cfg)
	if len(frags) == 0 {
		return ""
	}
	parts := make([]string, len(frags))
	for i, f := range frags {
		parts[i] = f.Source
	}
	return strings.Join(parts, "\n")
}

// Wrap defers a composed script until the DOM is parsed, for surfaces that
// register scripts before the document exists. An empty script stays empty.
func Wrap(script string) string {
	if script == "" {
		return ""
	}
	return `(function(){
var run = function() {
` + script + `
};
if (document.readyState === "loading") {
  document.addEventListener("DOMContentLoaded", run, {once: true});
} else {
  run();
}
})();`
}
