package export

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/hautrelief/tilmeld-feeds/internal/config"
	"github.com/hautrelief/tilmeld-feeds/internal/event"
	"github.com/hautrelief/tilmeld-feeds/internal/source"
)

func TestRSS(t *testing.T) {
	cfg := config.DefaultConfig()
	site := source.Site{Host: "example.dk", Title: "example.dk", ListingURL: "https://example.dk/"}
	now := time.Date(2025, 8, 31, 12, 0, 0, 0, time.UTC)

	later := testEvent("2", "Oktober", "https://example.dk/2/",
		time.Date(2025, 10, 1, 10, 0, 0, 0, time.Local))
	earlier := testEvent("1", "September", "https://example.dk/1/",
		time.Date(2025, 9, 1, 10, 0, 0, 0, time.Local))
	undated := testEvent("3", "Udateret", "https://example.dk/3/", time.Time{})

	out, err := RSS([]*event.Event{later, undated, earlier}, SiteChannel(site, cfg), now)
	if err != nil {
		t.Fatalf("RSS() failed: %v", err)
	}

	var parsed rssDoc
	if err := xml.Unmarshal(out, &parsed); err != nil {
		t.Fatalf("output is not well-formed XML: %v", err)
	}

	if parsed.Version != "2.0" {
		t.Errorf("version = %q, want \"2.0\"", parsed.Version)
	}
	if parsed.Channel.Language != "da-DK" {
		t.Errorf("language = %q, want \"da-DK\"", parsed.Channel.Language)
	}
	if parsed.Channel.PubDate != now.Format(time.RFC1123Z) {
		t.Errorf("channel pubDate = %q, want render time", parsed.Channel.PubDate)
	}

	if len(parsed.Channel.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(parsed.Channel.Items))
	}

	// Sorted by start ascending, undated last.
	titles := []string{
		parsed.Channel.Items[0].Title,
		parsed.Channel.Items[1].Title,
		parsed.Channel.Items[2].Title,
	}
	if titles[0] != "September" || titles[1] != "Oktober" || titles[2] != "Udateret" {
		t.Errorf("item order = %v", titles)
	}

	first := parsed.Channel.Items[0]
	if first.GUID.IsPermaLink != "true" {
		t.Errorf("guid isPermaLink = %q, want \"true\"", first.GUID.IsPermaLink)
	}
	if first.GUID.Value != "https://example.dk/1/" {
		t.Errorf("guid = %q", first.GUID.Value)
	}
	wantPub := earlier.Start.UTC().Format(time.RFC1123Z)
	if first.PubDate != wantPub {
		t.Errorf("item pubDate = %q, want %q", first.PubDate, wantPub)
	}

	// Undated items fall back to the render time.
	if parsed.Channel.Items[2].PubDate != now.Format(time.RFC1123Z) {
		t.Errorf("undated item pubDate = %q, want render time", parsed.Channel.Items[2].PubDate)
	}
}

func TestRSS_DescriptionPrefersRichHTML(t *testing.T) {
	cfg := config.DefaultConfig()
	now := time.Now()

	rich := testEvent("1", "Rig", "https://example.dk/1/", time.Time{})
	rich.DescriptionHTML = "<p>Rig <b>tekst</b></p>"

	out, err := RSS([]*event.Event{rich}, CombinedChannel(cfg), now)
	if err != nil {
		t.Fatalf("RSS() failed: %v", err)
	}
	if !strings.Contains(string(out), "<![CDATA[ <p>Rig <b>tekst</b></p> ]]>") {
		t.Error("rich description HTML should be used verbatim inside CDATA")
	}
}

func TestRSS_DescriptionSynthesizedFromTeaser(t *testing.T) {
	cfg := config.DefaultConfig()
	now := time.Now()

	plain := event.New("example.dk", "Kun teaser", "https://example.dk/1/")
	plain.Teaser = "En kort tekst"

	out, err := RSS([]*event.Event{plain}, CombinedChannel(cfg), now)
	if err != nil {
		t.Fatalf("RSS() failed: %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "<p>En kort tekst</p>") {
		t.Error("synthesized description should wrap the teaser")
	}
	if !strings.Contains(text, `<a href="https://example.dk/1/">Læs mere</a>`) {
		t.Error("synthesized description should link back to the source page")
	}
}

func TestRSS_EmptyChannel(t *testing.T) {
	cfg := config.DefaultConfig()

	out, err := RSS(nil, CombinedChannel(cfg), time.Now())
	if err != nil {
		t.Fatalf("RSS() failed: %v", err)
	}

	var parsed rssDoc
	if err := xml.Unmarshal(out, &parsed); err != nil {
		t.Fatalf("empty channel is not well-formed: %v", err)
	}
	if len(parsed.Channel.Items) != 0 {
		t.Errorf("got %d items, want 0", len(parsed.Channel.Items))
	}
	if parsed.Channel.Title != cfg.Feed.CombinedTitle {
		t.Errorf("combined channel title = %q, want %q", parsed.Channel.Title, cfg.Feed.CombinedTitle)
	}
}

func TestRSS_DoesNotMutateInput(t *testing.T) {
	cfg := config.DefaultConfig()

	a := testEvent("1", "A", "https://example.dk/1/", time.Date(2025, 10, 1, 10, 0, 0, 0, time.Local))
	b := testEvent("2", "B", "https://example.dk/2/", time.Date(2025, 9, 1, 10, 0, 0, 0, time.Local))
	events := []*event.Event{a, b}

	if _, err := RSS(events, CombinedChannel(cfg), time.Now()); err != nil {
		t.Fatalf("RSS() failed: %v", err)
	}
	if events[0] != a || events[1] != b {
		t.Error("RSS() must sort a copy, not the caller's slice")
	}
}
