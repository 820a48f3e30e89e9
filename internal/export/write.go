package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hautrelief/tilmeld-feeds/internal/config"
	"github.com/hautrelief/tilmeld-feeds/internal/event"
	"github.com/hautrelief/tilmeld-feeds/internal/source"
)

// WriteSiteFiles writes data-<host>.xml, rss-<host>.xml and ics-<host>.ics
// for one site.
func WriteSiteFiles(dir string, site source.Site, events []*event.Event, cfg *config.Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	host := site.FileHost()

	data, err := Schema(events, cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "data-"+host+".xml"), data, 0644); err != nil {
		return fmt.Errorf("writing site XML: %w", err)
	}

	feed, err := RSS(events, SiteChannel(site, cfg), time.Now())
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "rss-"+host+".xml"), feed, 0644); err != nil {
		return fmt.Errorf("writing site RSS: %w", err)
	}

	cal := ICS(events, site.Host, time.Now())
	if err := os.WriteFile(filepath.Join(dir, "ics-"+host+".ics"), cal, 0644); err != nil {
		return fmt.Errorf("writing site calendar: %w", err)
	}

	return nil
}

// WriteCombined writes data_all.xml, rss-all.xml and ics-all.ics for the
// concatenation of all sites' events, re-sorted by start time across sites.
// It is called even when no site produced any event, so downstream consumers
// never see a missing file.
func WriteCombined(dir string, events []*event.Event, cfg *config.Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	sorted := make([]*event.Event, len(events))
	copy(sorted, events)
	event.SortByStart(sorted)
	events = sorted

	data, err := Schema(events, cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "data_all.xml"), data, 0644); err != nil {
		return fmt.Errorf("writing combined XML: %w", err)
	}

	feed, err := RSS(events, CombinedChannel(cfg), time.Now())
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "rss-all.xml"), feed, 0644); err != nil {
		return fmt.Errorf("writing combined RSS: %w", err)
	}

	cal := ICS(events, "all", time.Now())
	if err := os.WriteFile(filepath.Join(dir, "ics-all.ics"), cal, 0644); err != nil {
		return fmt.Errorf("writing combined calendar: %w", err)
	}

	return nil
}
