package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	// teaserMaxChars is the character budget for teasers in the XML schema.
	teaserMaxChars = 300
	// cardTeaserMaxWords is the word budget for teasers lifted straight off
	// a listing card.
	cardTeaserMaxWords = 100
	// descriptionParagraphs caps the paragraph-concatenation fallback.
	descriptionParagraphs = 6

	locationNameMax    = 120
	locationAddressMax = 200
	locationCityMax    = 100
)

var (
	contentClassPattern = regexp.MustCompile(`(?i)(content|main|article|description)`)
	locationPattern     = regexp.MustCompile(`^(.*\S)\s+(\d{4})\s+([A-Za-zæøåÆØÅ .-]+)$`)

	// Decorative and tracking assets that never belong in the image list.
	imageDenylist = []string{
		"spacer", "pixel", "1x1", "blank.", "tracking", "doubleclick", "facebook.com/tr",
	}
)

// extractTitle returns the first non-empty heading, then the social-metadata
// title, then the documented placeholder.
func extractTitle(doc *goquery.Document) string {
	title := ""
	doc.Find("h1").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if t := strings.TrimSpace(sel.Text()); t != "" {
			title = t
			return false
		}
		return true
	})
	if title != "" {
		return title
	}

	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if t := strings.TrimSpace(og); t != "" {
			return t
		}
	}

	return ""
}

// extractDescriptionHTML returns the best-effort HTML fragment for the long
// description: a named content container, then <article>, then the first few
// paragraphs, then (on detail pages only) the raw body as a last resort.
func extractDescriptionHTML(doc *goquery.Document, detailPage bool) string {
	var sel *goquery.Selection

	doc.Find("div").EachWithBreak(func(i int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		if contentClassPattern.MatchString(class) || contentClassPattern.MatchString(id) {
			sel = s
			return false
		}
		return true
	})
	if sel != nil {
		if h := outerHTML(sel); h != "" {
			return h
		}
	}

	if article := doc.Find("article").First(); article.Length() > 0 {
		if h := outerHTML(article); h != "" {
			return h
		}
	}

	var b strings.Builder
	doc.Find("p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= descriptionParagraphs {
			return false
		}
		b.WriteString(outerHTML(s))
		return true
	})
	if b.Len() > 0 {
		return b.String()
	}

	if detailPage {
		if main := doc.Find("main").First(); main.Length() > 0 {
			if h, err := main.Html(); err == nil && strings.TrimSpace(h) != "" {
				return h
			}
		}
		if body := doc.Find("body").First(); body.Length() > 0 {
			if h, err := body.Html(); err == nil {
				return strings.TrimSpace(h)
			}
		}
	}

	return ""
}

// outerHTML renders a selection including its own tags.
func outerHTML(sel *goquery.Selection) string {
	h, err := goquery.OuterHtml(sel)
	if err != nil {
		return ""
	}
	return h
}

// teaserFromHTML strips markup from an HTML fragment and truncates the plain
// text to the schema's character budget. Text nodes are joined with a space
// so words from adjacent block elements do not run together.
func teaserFromHTML(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	var parts []string
	for _, root := range doc.Nodes {
		collectText(root, &parts)
	}
	text := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	return truncateChars(text, teaserMaxChars)
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// teaserFromText applies the word budget used for listing-card teasers.
func teaserFromText(text string) string {
	words := strings.Fields(text)
	if len(words) > cardTeaserMaxWords {
		words = words[:cardTeaserMaxWords]
	}
	return strings.Join(words, " ")
}

func truncateChars(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// extractLocation populates the venue record from a line shaped
// "<free text> <4-digit zipcode> <city>", with the nearest heading-like
// element supplying the name. Everything stays empty on no match; this is
// explicitly best-effort.
func extractLocation(doc *goquery.Document) (typ, name, address, zipcode, city string) {
	typ = "address"

	doc.Find("body *").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if s.Children().Length() > 0 {
			return true
		}
		line := strings.Join(strings.Fields(s.Text()), " ")
		if line == "" {
			return true
		}
		if m := locationPattern.FindStringSubmatch(line); m != nil {
			address = truncateChars(strings.TrimSpace(m[1]), locationAddressMax)
			zipcode = m[2]
			city = truncateChars(strings.TrimSpace(m[3]), locationCityMax)
			return false
		}
		return true
	})

	if h := doc.Find("h2, h3, strong, b").First(); h.Length() > 0 {
		name = truncateChars(strings.TrimSpace(h.Text()), locationNameMax)
	}

	return typ, name, address, zipcode, city
}

// extractImages collects every image reference that is not a data URI and
// not a known decorative or tracking asset, deduplicated in first-seen order
// and resolved against the site root.
func extractImages(doc *goquery.Document, root string) []string {
	base, err := url.Parse(root)
	if err != nil {
		return nil
	}

	var out []string
	seen := make(map[string]bool)
	doc.Find("img[src]").Each(func(i int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}
		if deniedImage(src) {
			return
		}
		ref, err := url.Parse(src)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if seen[abs] {
			return
		}
		seen[abs] = true
		out = append(out, abs)
	})
	return out
}

func deniedImage(src string) bool {
	lower := strings.ToLower(src)
	for _, frag := range imageDenylist {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}
