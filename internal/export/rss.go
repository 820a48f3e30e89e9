package export

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/hautrelief/tilmeld-feeds/internal/config"
	"github.com/hautrelief/tilmeld-feeds/internal/event"
	"github.com/hautrelief/tilmeld-feeds/internal/source"
)

// Channel carries the feed-level branding for one RSS document.
type Channel struct {
	Title       string
	Link        string
	Description string
	Language    string
}

// SiteChannel builds the channel branding for a single site's feed.
func SiteChannel(site source.Site, cfg *config.Config) Channel {
	return Channel{
		Title:       "Arrangementer – " + site.Title,
		Link:        site.ListingURL,
		Description: "Arrangementer fra " + site.Host,
		Language:    cfg.Feed.Language,
	}
}

// CombinedChannel builds the aggregate branding for the combined feed.
func CombinedChannel(cfg *config.Config) Channel {
	return Channel{
		Title:       cfg.Feed.CombinedTitle,
		Link:        cfg.Feed.CombinedLink,
		Description: cfg.Feed.CombinedDescription,
		Language:    cfg.Feed.Language,
	}
}

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language"`
	PubDate     string    `xml:"pubDate"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
	Description cdata   `xml:"description"`
	PubDate     string  `xml:"pubDate"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// RSS renders an event collection as an RSS 2.0 feed. now is the render
// time; it becomes the channel pubDate and substitutes for missing event
// start times.
func RSS(events []*event.Event, ch Channel, now time.Time) ([]byte, error) {
	doc := rssDoc{
		Version: "2.0",
		Channel: rssChannel{
			Title:       ch.Title,
			Link:        ch.Link,
			Description: ch.Description,
			Language:    ch.Language,
			PubDate:     now.UTC().Format(time.RFC1123Z),
		},
	}

	sorted := make([]*event.Event, len(events))
	copy(sorted, events)
	event.SortByStart(sorted)

	for _, evt := range sorted {
		pub := evt.Start
		if pub.IsZero() {
			pub = now
		}
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title: evt.Title,
			Link:  evt.URL,
			GUID: rssGUID{
				IsPermaLink: "true",
				Value:       evt.URL,
			},
			Description: cd(itemDescription(evt)),
			PubDate:     pub.UTC().Format(time.RFC1123Z),
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding RSS: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// itemDescription prefers the rich description HTML and otherwise
// synthesizes a minimal wrapper around the teaser with a link back to the
// source page.
func itemDescription(evt *event.Event) string {
	if evt.DescriptionHTML != "" {
		return evt.DescriptionHTML
	}
	desc := "<p>" + evt.Teaser + "</p>"
	if evt.URL != "" {
		desc += fmt.Sprintf(`<p><a href="%s">Læs mere</a></p>`, evt.URL)
	}
	return desc
}
