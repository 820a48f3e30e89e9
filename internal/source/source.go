// Package source resolves raw source strings into canonical listing URLs.
//
// Inputs arrive in three shapes: a bare site root, an /events/ listing path,
// or a legacy feed URL left over from earlier deployments. All three resolve
// to the HTML listing page the link discoverer starts from.
package source

import (
	"fmt"
	"net/url"
	"strings"
)

// SourceError reports a raw source string that could not be resolved.
type SourceError struct {
	Raw string
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("resolving source %q: %v", e.Raw, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Site is the read-only context for one resolved source.
type Site struct {
	Host       string
	Title      string
	ListingURL string
}

// legacy feed paths that older configurations pointed at
var legacyFeedSuffixes = []string{
	"/feed",
	"/feed/",
	"/rss",
	"/rss/",
	"/rss.xml",
	"/data.xml",
	"/data_all.xml",
}

// Resolve normalizes a raw source string to a Site. The listing URL always
// carries a trailing slash so relative links resolve against the site root.
func Resolve(raw string) (Site, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Site{}, &SourceError{Raw: raw, Err: fmt.Errorf("empty source")}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Site{}, &SourceError{Raw: raw, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Site{}, &SourceError{Raw: raw, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return Site{}, &SourceError{Raw: raw, Err: fmt.Errorf("missing host")}
	}

	u.RawQuery = ""
	u.Fragment = ""

	path := u.Path
	for _, suffix := range legacyFeedSuffixes {
		if strings.HasSuffix(path, suffix) {
			path = strings.TrimSuffix(path, suffix)
			break
		}
	}

	// An /events/ listing path is already the right page; anything else
	// collapses to the site root, which doubles as the listing on the
	// observed sites.
	trimmed := strings.Trim(path, "/")
	if trimmed == "events" {
		u.Path = "/events/"
	} else {
		u.Path = "/"
	}

	return Site{
		Host:       u.Host,
		Title:      u.Host,
		ListingURL: u.String(),
	}, nil
}

// FileHost returns the host in a form safe for file names.
func (s Site) FileHost() string {
	return strings.ReplaceAll(s.Host, ":", "-")
}

// Root returns the site root with a trailing slash, used to canonicalize
// discovered event links and absolutize image URLs.
func (s Site) Root() string {
	u, err := url.Parse(s.ListingURL)
	if err != nil {
		return s.ListingURL
	}
	u.Path = "/"
	return u.String()
}
