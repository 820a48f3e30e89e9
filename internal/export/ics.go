package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/hautrelief/tilmeld-feeds/internal/event"
)

// ICS renders events as a single iCalendar document with one VEVENT per
// event. Events without a start instant are skipped: a VEVENT without a
// DTSTART is rejected by most calendar clients. The now instant stamps
// every entry (DTSTAMP).
func ICS(events []*event.Event, host string, now time.Time) []byte {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//tilmeld-feeds//tilmeld-feeds//DA\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")

	for _, evt := range events {
		if evt.Start.IsZero() {
			continue
		}
		writeVEvent(&ics, evt, host, now)
	}

	ics.WriteString("END:VCALENDAR\r\n")

	return []byte(ics.String())
}

func writeVEvent(ics *strings.Builder, evt *event.Event, host string, now time.Time) {
	ics.WriteString("BEGIN:VEVENT\r\n")

	uidHost := evt.Host
	if uidHost == "" {
		uidHost = host
	}
	ics.WriteString(fmt.Sprintf("UID:%s@%s\r\n", evt.ID, uidHost))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(now)))
	ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICSTime(evt.Start)))
	if !evt.End.IsZero() {
		ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICSTime(evt.End)))
	}

	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(evt.Title)))

	if desc := icsDescription(evt); desc != "" {
		ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(desc)))
	}

	if loc := icsLocation(evt.Location); loc != "" {
		ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(loc)))
	}

	if evt.URL != "" {
		ics.WriteString(fmt.Sprintf("URL:%s\r\n", evt.URL))
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")

	ics.WriteString("END:VEVENT\r\n")
}

// icsDescription builds the plain-text body: teaser first, then a link back
// to the event page.
func icsDescription(evt *event.Event) string {
	var parts []string
	if evt.Teaser != "" {
		parts = append(parts, evt.Teaser)
	}
	if evt.URL != "" {
		parts = append(parts, "Læs mere: "+evt.URL)
	}
	return strings.Join(parts, "\n\n")
}

// icsLocation flattens the structured venue into a one-line address.
func icsLocation(loc event.Location) string {
	var parts []string
	if loc.Name != "" {
		parts = append(parts, loc.Name)
	}
	if loc.Address != "" && loc.Address != loc.Name {
		parts = append(parts, loc.Address)
	}
	if loc.Zipcode != "" || loc.City != "" {
		parts = append(parts, strings.TrimSpace(loc.Zipcode+" "+loc.City))
	}
	return strings.Join(parts, ", ")
}

// formatICSTime formats a time.Time as an iCalendar UTC datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters per RFC 5545
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
