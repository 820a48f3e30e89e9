// Package cli implements the command-line interface for tilmeld-feeds.
//
// The cli package provides the Cobra-based CLI that loads configuration,
// resolves the source list, drives the scraper over each site sequentially
// and writes the per-site and combined XML, RSS and iCalendar artifacts. A
// failed source or site is reported and skipped; the combined files are
// written regardless. Each run's events are snapshotted so the next run can
// log which ones are new.
package cli
