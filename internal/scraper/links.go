package scraper

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DiscoverLinks scans every hyperlink on a listing page, resolves targets
// against base and keeps those whose path carries a segment matching the
// event-path pattern. Matches are canonicalized to "<root>/<segment>/",
// deduplicated and returned sorted for determinism. Zero matches is an
// empty result, not an error.
func DiscoverLinks(doc *goquery.Document, base string, pattern *regexp.Regexp) []string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if canonical := canonicalEventURL(baseURL, href, pattern); canonical != "" {
			seen[canonical] = true
		}
	})

	out := make([]string, 0, len(seen))
	for u := range seen {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// canonicalEventURL resolves href against base and, when the resolved path
// holds an event-shaped segment, returns "<root>/<segment>/". Links on other
// hosts are ignored.
func canonicalEventURL(base *url.URL, href string, pattern *regexp.Regexp) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Host != base.Host {
		return ""
	}

	seg := matchSegment(abs.Path, pattern)
	if seg == "" {
		return ""
	}

	canonical := *abs
	canonical.Path = "/" + seg + "/"
	canonical.RawQuery = ""
	canonical.Fragment = ""
	return canonical.String()
}

// matchSegment returns the first path segment matching pattern.
func matchSegment(path string, pattern *regexp.Regexp) string {
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg != "" && pattern.MatchString(seg) {
			return seg
		}
	}
	return ""
}
