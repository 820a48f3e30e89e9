package scraper

import (
	"regexp"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
)

var numericSegment = regexp.MustCompile(`^\d+$`)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing test HTML: %v", err)
	}
	return doc
}

func TestDiscoverLinks(t *testing.T) {
	html := `<html><body>
		<a href="/12345/">Banko</a>
		<a href="/67/tilmelding">Koncert tilmelding</a>
		<a href="https://example.dk/12345/">Banko igen (duplicate)</a>
		<a href="/om-os/">Om os</a>
		<a href="https://other.dk/999/">Fremmed side</a>
		<a href="#top">Til toppen</a>
	</body></html>`

	got := DiscoverLinks(mustDoc(t, html), "https://example.dk/", numericSegment)

	want := []string{
		"https://example.dk/12345/",
		"https://example.dk/67/",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DiscoverLinks() mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscoverLinks_SortedAndDeduplicated(t *testing.T) {
	html := `<html><body>
		<a href="/9/">Ni</a>
		<a href="/10/">Ti</a>
		<a href="/10/detaljer">Ti detaljer</a>
		<a href="/2/">To</a>
	</body></html>`

	got := DiscoverLinks(mustDoc(t, html), "https://example.dk/", numericSegment)

	want := []string{
		"https://example.dk/10/",
		"https://example.dk/2/",
		"https://example.dk/9/",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DiscoverLinks() mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscoverLinks_NoMatches(t *testing.T) {
	html := `<html><body>
		<a href="/om-os/">Om os</a>
		<a href="/kontakt/">Kontakt</a>
	</body></html>`

	got := DiscoverLinks(mustDoc(t, html), "https://example.dk/", numericSegment)
	if len(got) != 0 {
		t.Errorf("DiscoverLinks() = %v, want empty", got)
	}
}

func TestDiscoverLinks_CustomPattern(t *testing.T) {
	html := `<html><body>
		<a href="/event-42/">Eventside</a>
		<a href="/42/">Numerisk</a>
	</body></html>`

	pattern := regexp.MustCompile(`^event-\d+$`)
	got := DiscoverLinks(mustDoc(t, html), "https://example.dk/", pattern)

	want := []string{"https://example.dk/event-42/"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DiscoverLinks() mismatch (-want +got):\n%s", diff)
	}
}
