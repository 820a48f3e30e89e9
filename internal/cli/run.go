package cli

import (
	"context"
	"strings"

	"github.com/hautrelief/tilmeld-feeds/internal/config"
	"github.com/hautrelief/tilmeld-feeds/internal/event"
	"github.com/hautrelief/tilmeld-feeds/internal/export"
	"github.com/hautrelief/tilmeld-feeds/internal/logger"
	"github.com/hautrelief/tilmeld-feeds/internal/scraper"
	"github.com/hautrelief/tilmeld-feeds/internal/source"
	"github.com/hautrelief/tilmeld-feeds/internal/storage"
)

// Run drives one end-to-end invocation: resolve each source, scrape it,
// write its per-site files and finally write the combined files. When Store
// is set, each site's events are diffed against the previous run's snapshot
// and the snapshot is replaced afterwards.
type Run struct {
	Config  *config.Config
	Scraper *scraper.Scraper
	OutDir  string
	Store   *storage.Storage
}

// Summary reports what a run accomplished.
type Summary struct {
	SitesOK     int
	SitesFailed int
	Events      int
	NewEvents   int
}

// Execute processes sources in order. Any single site's failure is reported
// and skipped; the combined files are always written, even when empty, so
// downstream consumers never see a missing file.
func (r *Run) Execute(ctx context.Context, sources []string) Summary {
	var summary Summary
	var all []*event.Event

	for _, raw := range sources {
		site, err := source.Resolve(raw)
		if err != nil {
			logger.Warn("source skipped", logger.Fields{"source": raw}, err)
			summary.SitesFailed++
			continue
		}

		logger.Info("scraping site", logger.Fields{"host": site.Host})
		events, err := r.Scraper.ScrapeSite(ctx, site)
		if err != nil {
			logger.Error("site failed", logger.Fields{"host": site.Host}, err)
			summary.SitesFailed++
			continue
		}

		if err := export.WriteSiteFiles(r.OutDir, site, events, r.Config); err != nil {
			logger.Error("writing site files failed", logger.Fields{"host": site.Host}, err)
			summary.SitesFailed++
			continue
		}

		summary.NewEvents += r.snapshot(site.Host, events)

		summary.SitesOK++
		summary.Events += len(events)
		all = append(all, events...)
	}

	if err := export.WriteCombined(r.OutDir, all, r.Config); err != nil {
		logger.Error("writing combined files failed", nil, err)
	}
	if r.Store != nil {
		if err := r.Store.SaveSnapshot("all", all); err != nil {
			logger.Warn("saving combined snapshot failed", nil, err)
		}
	}

	return summary
}

// snapshot diffs events against the previous run's snapshot for host, logs
// what is new and replaces the snapshot. It returns the number of new
// events, 0 when no store is configured.
func (r *Run) snapshot(host string, events []*event.Event) int {
	if r.Store == nil {
		return 0
	}

	prev, err := r.Store.LoadSnapshot(host)
	if err != nil {
		logger.Warn("loading snapshot failed", logger.Fields{"host": host}, err)
		return 0
	}
	fresh := prev.NewEvents(events)
	for _, evt := range fresh {
		logger.Info("new event", logger.Fields{"host": host, "id": evt.ID, "title": evt.Title})
		logger.IncrCounter("events.new")
	}

	if err := r.Store.SaveSnapshot(host, events); err != nil {
		logger.Warn("saving snapshot failed", logger.Fields{"host": host}, err)
	}
	return len(fresh)
}

// parseSources splits a sources file into URLs, dropping blank lines and
// #-comments.
func parseSources(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
