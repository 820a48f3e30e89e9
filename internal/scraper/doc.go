// Package scraper discovers event pages on a listing and extracts event
// fields from arbitrary HTML.
//
// Two discovery strategies are supported: path-shape matching, which accepts
// hyperlinks whose path carries an event-shaped (by default numeric) segment,
// and a card heuristic that scans container blocks on the listing itself and
// extracts fields without a second fetch. Field extraction runs ordered
// fallback chains per field and degrades to documented defaults instead of
// failing, so a site with hostile markup still yields well-formed records.
package scraper
