package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hautrelief/tilmeld-feeds/internal/event"
	"github.com/hautrelief/tilmeld-feeds/internal/logger"
	"github.com/hautrelief/tilmeld-feeds/internal/source"
)

// Fetcher retrieves a page body. The concrete implementation lives in the
// fetch package; tests substitute their own.
type Fetcher interface {
	Get(ctx context.Context, url string) (string, error)
}

// Scraper drives one site end to end: listing page, link discovery, per-link
// extraction, normalization.
type Scraper struct {
	fetcher Fetcher
	pattern *regexp.Regexp
}

// New creates a Scraper. pattern identifies event-shaped path segments.
func New(fetcher Fetcher, pattern *regexp.Regexp) *Scraper {
	return &Scraper{
		fetcher: fetcher,
		pattern: pattern,
	}
}

// ScrapeSite produces the normalized, deduplicated event collection for one
// site, sorted by start time with undated events last. A single link's
// failure is logged and skipped; only a failure to fetch or parse the
// listing page itself is returned as an error.
func (s *Scraper) ScrapeSite(ctx context.Context, site source.Site) ([]*event.Event, error) {
	body, err := s.fetcher.Get(ctx, site.ListingURL)
	if err != nil {
		return nil, fmt.Errorf("fetching listing: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing listing: %w", err)
	}

	links := DiscoverLinks(doc, site.Root(), s.pattern)

	var events []*event.Event
	if len(links) > 0 {
		logger.Debug("discovered event links", logger.Fields{
			"host":  site.Host,
			"count": len(links),
		})
		for _, link := range links {
			evt, err := s.scrapeDetail(ctx, site, link)
			if err != nil {
				logger.Warn("event skipped", logger.Fields{"url": link}, err)
				logger.IncrCounter("events.skipped")
				continue
			}
			events = append(events, evt)
		}
	} else {
		cards := scanCards(doc, site.Root(), s.pattern)
		logger.Debug("no event links, scanned cards", logger.Fields{
			"host":  site.Host,
			"count": len(cards),
		})
		for _, c := range cards {
			events = append(events, s.eventFromCard(ctx, site, c))
		}
	}

	events = event.Dedupe(events)
	event.SortByStart(events)
	logger.AddCounter("events.emitted", int64(len(events)))
	return events, nil
}

// scrapeDetail fetches an event's own page and extracts every field from it.
func (s *Scraper) scrapeDetail(ctx context.Context, site source.Site, link string) (*event.Event, error) {
	body, err := s.fetcher.Get(ctx, link)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", link, err)
	}
	return eventFromDetail(site, link, doc), nil
}

// eventFromDetail builds the canonical record from a detail page.
func eventFromDetail(site source.Site, link string, doc *goquery.Document) *event.Event {
	evt := event.New(site.Host, extractTitle(doc), link)

	evt.DescriptionHTML = extractDescriptionHTML(doc, true)
	evt.Teaser = teaserFromHTML(evt.DescriptionHTML)

	text := strings.Join(strings.Fields(doc.Text()), " ")
	evt.Start, evt.End = event.ParseTimes(text)
	evt.Deadline = event.ParseDeadline(text)

	typ, name, address, zipcode, city := extractLocation(doc)
	evt.Location.Type = typ
	evt.Location.Name = name
	evt.Location.Address = address
	evt.Location.Zipcode = zipcode
	evt.Location.City = city

	evt.Images = extractImages(doc, site.Root())
	return evt
}

// eventFromCard builds a record from listing-card fields alone, then tries a
// detail-augmentation pass when the card points at an event page and the
// listing-only record is thin. Augmentation failure keeps the listing-only
// record rather than dropping the event.
func (s *Scraper) eventFromCard(ctx context.Context, site source.Site, c card) *event.Event {
	evt := event.New(site.Host, c.title, c.link)
	evt.Teaser = truncateChars(c.teaser, teaserMaxChars)
	evt.Start, evt.End = c.start, c.end
	if evt.Teaser != "" {
		evt.DescriptionHTML = "<p>" + htmlEscape(evt.Teaser) + "</p>"
	}

	if c.eventShaped && !c.rich() {
		detail, err := s.scrapeDetail(ctx, site, c.link)
		if err != nil {
			logger.Warn("detail augmentation failed", logger.Fields{"url": c.link}, err)
			return evt
		}
		mergeDetail(evt, detail)
	}

	return evt
}

// rich reports whether a card already carries enough detail to skip the
// augmentation fetch.
func (c card) rich() bool {
	return c.teaser != "" && !c.start.IsZero()
}

// mergeDetail fills the listing-only record from the detail record without
// overwriting fields the card already supplied.
func mergeDetail(evt, detail *event.Event) {
	if evt.Title == event.DefaultTitle && detail.Title != event.DefaultTitle {
		evt.Title = detail.Title
	}
	if detail.DescriptionHTML != "" {
		evt.DescriptionHTML = detail.DescriptionHTML
	}
	if evt.Teaser == "" {
		evt.Teaser = detail.Teaser
	}
	if evt.Start.IsZero() {
		evt.Start, evt.End = detail.Start, detail.End
	}
	if evt.Deadline.IsZero() {
		evt.Deadline = detail.Deadline
	}
	if evt.Location.Address == "" && evt.Location.City == "" {
		evt.Location = detail.Location
	}
	if len(evt.Images) == 0 {
		evt.Images = detail.Images
	}
}

// htmlEscape covers the characters that matter inside a synthesized
// description fragment.
func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
