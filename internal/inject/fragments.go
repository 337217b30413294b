package inject

import "encoding/json"

// Fragment names, in composition order.
const (
	FragmentAdBlock      = "ad-block"
	FragmentTrackerBlock = "tracker-block"
	FragmentDNSHint      = "dns-hint"
)

// AlternateResolver is the AdGuard DNS address probed by the DNS hint.
const AlternateResolver = "https://94.140.14.14"

// adSelectors match common ad placements by class, id and iframe source.
var adSelectors = []string{
	".adsbygoogle",
	"#ad",
	".ad-banner",
	`iframe[src*="ads"]`,
}

// trackerDomains are matched as substrings of a script's src attribute.
var trackerDomains = []string{
	"google-analytics.com",
	"facebook.com",
	"doubleclick.net",
}

// Fragment is one named piece of the injected script.
type Fragment struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// AdSelectors returns a copy of the selectors removed by the ad-block fragment.
func AdSelectors() []string {
	return append([]string(nil), adSelectors...)
}

// TrackerDomains returns a copy of the domains removed by the tracker-block fragment.
func TrackerDomains() []string {
	return append([]string(nil), trackerDomains...)
}

// AdBlockFragment removes every element matching an ad selector. Each
// selector is queried on its own so one unsupported selector does not stop
// the rest.
func AdBlockFragment() Fragment {
	return Fragment{Name: FragmentAdBlock, Source: iife(`
var selectors = ` + jsJSON(adSelectors) + `;
for (var i = 0; i < selectors.length; i++) {
  try {
    var nodes = document.querySelectorAll(selectors[i]);
    for (var j = 0; j < nodes.length; j++) { nodes[j].remove(); }
  } catch (_) {}
}`)}
}

// TrackerBlockFragment removes script tags loaded from a tracker domain.
func TrackerBlockFragment() Fragment {
	return Fragment{Name: FragmentTrackerBlock, Source: iife(`
var trackers = ` + jsJSON(trackerDomains) + `;
for (var i = 0; i < trackers.length; i++) {
  try {
    var nodes = document.querySelectorAll('script[src*=' + JSON.stringify(trackers[i]) + ']');
    for (var j = 0; j < nodes.length; j++) { nodes[j].remove(); }
  } catch (_) {}
}`)}
}

// DNSHintFragment fires a request at the alternate resolver and discards the
// outcome. Page script cannot change how the browser resolves names, so this
// is only a best-effort signal and never redirects DNS.
func DNSHintFragment() Fragment {
	return Fragment{Name: FragmentDNSHint, Source: iife(`
try { fetch(` + jsString(AlternateResolver) + `).catch(function() {}); } catch (_) {}`)}
}

func iife(body string) string {
	return "(function(){" + body + "\n})();"
}

func jsString(v string) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func jsJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
