package event

import (
	"crypto/sha1"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

// DefaultCountry is the country code used when no location was extracted.
const DefaultCountry = "DK"

// DefaultTitle is the placeholder title for events whose title could not be
// recovered from the page.
const DefaultTitle = "Arrangement"

// Location is the structured venue sub-record of an event. Country defaults
// to the organization's home jurisdiction; everything else is best-effort
// and empty when extraction found nothing.
type Location struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Zipcode string `json:"zipcode"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// NewLocation returns a Location with the documented defaults.
func NewLocation() Location {
	return Location{
		Type:    "address",
		Country: DefaultCountry,
	}
}

// Event is the canonical record for one scraped event. It is mutated only
// during the single extraction pass that builds it and treated as immutable
// once handed to an exporter.
type Event struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	DescriptionHTML string    `json:"description_html"`
	Teaser          string    `json:"teaser"`
	Start           time.Time `json:"start,omitempty"`
	End             time.Time `json:"end,omitempty"`
	Deadline        time.Time `json:"deadline,omitempty"`
	Location        Location  `json:"location"`
	Images          []string  `json:"images"`
	Host            string    `json:"host"`
}

// New creates an Event with defaults applied and the ID derived from the
// URL, falling back to a deterministic hash of (host, title, url).
func New(host, title, rawURL string) *Event {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	return &Event{
		ID:       DeriveID(host, title, rawURL),
		Title:    title,
		URL:      rawURL,
		Location: NewLocation(),
		Host:     host,
	}
}

// DeriveID computes the stable identifier for an event. When the URL carries
// a numeric path segment that segment is the ID; otherwise the ID is a sha1
// of (host, title, url). The hash fallback has no collision guarantee.
func DeriveID(host, title, rawURL string) string {
	if id := NumericPathSegment(rawURL); id != "" {
		return id
	}
	h := sha1.New()
	h.Write([]byte(host + "|" + title + "|" + rawURL))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// NumericPathSegment returns the first purely numeric path segment of a URL,
// or "" when there is none.
func NumericPathSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	for _, seg := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		if isDigits(seg) {
			return seg
		}
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// dedupeKey is the identity used to discard duplicate records: the resolved
// URL when present, else the (title, start) pair.
func (e *Event) dedupeKey() string {
	if e.URL != "" {
		return "url|" + e.URL
	}
	return "ts|" + e.Title + "|" + e.Start.Format("2006-01-02 15:04")
}

// Dedupe removes duplicate events, keeping the first occurrence of each key
// and preserving order otherwise.
func Dedupe(events []*Event) []*Event {
	seen := make(map[string]bool, len(events))
	out := make([]*Event, 0, len(events))
	for _, evt := range events {
		key := evt.dedupeKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, evt)
	}
	return out
}

// SortByStart sorts events by start time ascending. Events without a start
// sort last; ties keep their discovery order.
func SortByStart(events []*Event) {
	sort.SliceStable(events, func(i, j int) bool {
		si, sj := events[i].Start, events[j].Start
		if si.IsZero() {
			return false
		}
		if sj.IsZero() {
			return true
		}
		return si.Before(sj)
	})
}
