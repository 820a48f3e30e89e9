package event

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Danish month names and their common abbreviations.
var months = map[string]time.Month{
	"jan": time.January, "januar": time.January,
	"feb": time.February, "februar": time.February,
	"mar": time.March, "marts": time.March,
	"apr": time.April, "april": time.April,
	"maj": time.May,
	"jun": time.June, "juni": time.June,
	"jul": time.July, "juli": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"okt": time.October, "oktober": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// Date patterns, tried in priority order. The first match wins; fragments
// from different patterns are never combined.
var (
	isoPattern     = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})[ T](\d{1,2}):(\d{2})`)
	namedPattern   = regexp.MustCompile(`(\d{1,2})\.?\s*([A-Za-zæøåÆØÅ]{3,10})\s*(\d{4})`)
	numericPattern = regexp.MustCompile(`(\d{1,2})\s*[-/.]\s*(\d{1,2})\s*[-/.]\s*(\d{2,4})`)
)

// Time patterns: an explicit "kl." marker beats a bare clock reading.
var (
	markedTimePattern = regexp.MustCompile(`(?i)kl\.?\s*(\d{1,2})[:.](\d{2})`)
	bareTimePattern   = regexp.MustCompile(`\b(\d{1,2})[:.](\d{2})\b`)
)

var deadlinePattern = regexp.MustCompile(`(?i)(deadline|tilmeldingsfrist)[:\s]*([\w .:-]+)`)

// ParseTimes extracts a start and end instant from free text.
//
// A date is required; when only a time of day is present the parse fails and
// both results are zero. A date without a time defaults to 09:00. The end is
// start plus two hours, clamped to 23:00 the same day. Invalid calendar
// values (day 31 in April) make the parse fail silently.
func ParseTimes(text string) (start, end time.Time) {
	text = normalize(text)

	year, month, day, ok := findDate(text)
	if !ok {
		return time.Time{}, time.Time{}
	}

	hour, minute, ok := findClock(text)
	if !ok {
		hour, minute = 9, 0
	}
	if hour > 23 || minute > 59 {
		return time.Time{}, time.Time{}
	}

	if !validDay(year, month, day) {
		return time.Time{}, time.Time{}
	}

	start = time.Date(year, month, day, hour, minute, 0, 0, time.Local)
	endHour := hour + 2
	if endHour > 23 {
		endHour = 23
	}
	end = time.Date(year, month, day, endHour, minute, 0, 0, time.Local)
	return start, end
}

// ParseDeadline scans text for a labeled registration deadline and parses
// the matched fragment with the same date logic. Zero when absent.
func ParseDeadline(text string) time.Time {
	m := deadlinePattern.FindString(normalize(text))
	if m == "" {
		return time.Time{}
	}
	dl, _ := ParseTimes(m)
	return dl
}

// findDate tries the date patterns in priority order.
func findDate(text string) (year int, month time.Month, day int, ok bool) {
	if m := isoPattern.FindStringSubmatch(text); m != nil {
		year, _ = strconv.Atoi(m[1])
		mon, _ := strconv.Atoi(m[2])
		day, _ = strconv.Atoi(m[3])
		if mon < 1 || mon > 12 {
			return 0, 0, 0, false
		}
		return year, time.Month(mon), day, true
	}

	if m := namedPattern.FindStringSubmatch(text); m != nil {
		day, _ = strconv.Atoi(m[1])
		name := strings.TrimRight(strings.ToLower(m[2]), ".")
		mon, found := months[name]
		if !found {
			return 0, 0, 0, false
		}
		year, _ = strconv.Atoi(m[3])
		return year, mon, day, true
	}

	if m := numericPattern.FindStringSubmatch(text); m != nil {
		day, _ = strconv.Atoi(m[1])
		mon, _ := strconv.Atoi(m[2])
		year, _ = strconv.Atoi(m[3])
		if year < 100 {
			if year < 50 {
				year += 2000
			} else {
				year += 1900
			}
		}
		if mon < 1 || mon > 12 {
			return 0, 0, 0, false
		}
		return year, time.Month(mon), day, true
	}

	return 0, 0, 0, false
}

// findClock tries the time patterns in priority order. An ISO datetime
// carries its own clock, which wins over any other clock in the text.
func findClock(text string) (hour, minute int, ok bool) {
	if m := isoPattern.FindStringSubmatch(text); m != nil {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
		return hour, minute, true
	}
	for _, p := range []*regexp.Regexp{markedTimePattern, bareTimePattern} {
		if m := p.FindStringSubmatch(text); m != nil {
			hour, _ = strconv.Atoi(m[1])
			minute, _ = strconv.Atoi(m[2])
			return hour, minute, true
		}
	}
	return 0, 0, false
}

// validDay rejects calendar-impossible dates instead of letting time.Date
// normalize them into the next month.
func validDay(year int, month time.Month, day int) bool {
	if day < 1 {
		return false
	}
	lastOfMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return day <= lastOfMonth
}

// normalize collapses whitespace and non-breaking spaces so the patterns see
// plain single-spaced text.
func normalize(text string) string {
	text = strings.ReplaceAll(text, " ", " ")
	return strings.Join(strings.Fields(text), " ")
}
