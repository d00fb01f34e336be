package domain

import (
	"regexp"
	"strings"
)

var (
	// rssLinkRe matches RSS-style <link>URL</link> text content. Matches are
	// bounded to 1000 characters so a pathological feed cannot blow up the
	// scanner.
	rssLinkRe = regexp.MustCompile(`<link>\s*([^<\s]{1,1000})\s*</link>`)

	// atomLinkRe matches Atom-style <link ... href="URL"> attributes, with
	// the same 1000 character bound.
	atomLinkRe = regexp.MustCompile(`<link\b[^>]{0,1000}?href="([^"]{1,1000})"`)
)

// ExtractAlertLinks scans raw feed text for alert-detail URLs. The feed format
// is unknown a priori, so both the RSS and Atom link shapes are scanned
// independently. Only URLs that look like CAP documents (containing "/cap/" or
// "alert") are kept, deduplicated in first-seen order. An empty result is
// valid: the feed may currently carry no alerts.
func ExtractAlertLinks(feed string) []string {
	var links []string
	seen := make(map[string]struct{})

	keep := func(url string) {
		url = strings.TrimSpace(url)
		if !strings.Contains(url, "/cap/") && !strings.Contains(url, "alert") {
			return
		}
		if _, ok := seen[url]; ok {
			return
		}
		seen[url] = struct{}{}
		links = append(links, url)
	}

	for _, m := range rssLinkRe.FindAllStringSubmatch(feed, -1) {
		keep(m[1])
	}
	for _, m := range atomLinkRe.FindAllStringSubmatch(feed, -1) {
		keep(m[1])
	}

	return links
}
