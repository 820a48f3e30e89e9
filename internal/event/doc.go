// Package event defines the canonical event record and the heuristics that
// recover identities and instants from scraped text.
//
// Events carry a stable identifier derived from the numeric path segment of
// their source URL, with a deterministic SHA1 fallback over (host, title,
// url). Date parsing understands Danish month names, "kl."-marked clock
// readings and the numeric and ISO date shapes seen across the source sites.
package event
