package scraper

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/hautrelief/tilmeld-feeds/internal/event"
)

// card is one candidate event block found on a listing page, with fields
// extracted directly from the card content so an event can be emitted
// without fetching its detail page.
type card struct {
	// link is the best hyperlink for the card, empty when the card only
	// carried a same-page anchor.
	link string
	// eventShaped reports whether link matched the event-path pattern on
	// the listing's own host.
	eventShaped bool

	title  string
	teaser string
	start  time.Time
	end    time.Time
}

// link priority classes, best first.
const (
	linkEvent = iota
	linkOther
	linkAnchor
	linkNone
)

// scanCards walks candidate container elements holding at least one
// hyperlink and extracts listing-only event fields from each, in document
// order. Cards whose text is too thin to name an event are skipped.
func scanCards(doc *goquery.Document, base string, pattern *regexp.Regexp) []card {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}

	var cards []card
	seenTitles := make(map[string]bool)

	doc.Find("div, li, article, section").Each(func(i int, s *goquery.Selection) {
		anchors := s.Find("a[href]")
		if anchors.Length() == 0 {
			return
		}
		// Only leaf-most containers: a wrapper whose nested containers hold
		// the same links would duplicate every card.
		if s.Find("div, li, article, section").Find("a[href]").Length() > 0 {
			return
		}

		c := buildCard(s, baseURL, pattern)
		if c.title == "" {
			return
		}
		if seenTitles[c.title+"|"+c.link] {
			return
		}
		seenTitles[c.title+"|"+c.link] = true
		cards = append(cards, c)
	})

	return cards
}

// buildCard selects the best link in the container and pulls title, teaser
// and times straight from the card text.
func buildCard(s *goquery.Selection, base *url.URL, pattern *regexp.Regexp) card {
	var c card

	bestClass := linkNone
	s.Find("a[href]").Each(func(i int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		class, resolved := classifyLink(base, href, pattern)
		if class < bestClass {
			bestClass = class
			c.link = resolved
			c.eventShaped = class == linkEvent
		}
	})

	if h := s.Find("h1, h2, h3, h4").First(); h.Length() > 0 {
		c.title = strings.TrimSpace(h.Text())
	}
	if c.title == "" {
		// Fall back to the link text itself.
		if a := s.Find("a[href]").First(); a.Length() > 0 {
			c.title = strings.TrimSpace(a.Text())
		}
	}

	blockText := strings.Join(strings.Fields(s.Text()), " ")
	if p := s.Find("p").First(); p.Length() > 0 && strings.TrimSpace(p.Text()) != "" {
		c.teaser = teaserFromText(strings.Join(strings.Fields(p.Text()), " "))
	} else {
		c.teaser = teaserFromText(blockText)
	}

	c.start, c.end = event.ParseTimes(blockText)

	return c
}

// classifyLink resolves href and ranks it: an event-shaped link on the
// listing host beats any other link, which beats a same-page anchor.
func classifyLink(base *url.URL, href string, pattern *regexp.Regexp) (int, string) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return linkAnchor, ""
	}

	if canonical := canonicalEventURL(base, href, pattern); canonical != "" {
		return linkEvent, canonical
	}

	ref, err := url.Parse(href)
	if err != nil {
		return linkNone, ""
	}
	return linkOther, base.ResolveReference(ref).String()
}
