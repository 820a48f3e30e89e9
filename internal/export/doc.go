// Package export serializes event collections into the custom XML schema
// and into RSS 2.0, per site and combined across sites.
//
// Every text-bearing schema field is emitted as a CDATA section even when
// empty; numeric and boolean-looking fields are literal tokens. Timestamps
// appear in both a human 12-hour form and a machine form. Both documents are
// UTF-8 with an XML declaration and two-space indentation, and both are
// always written, even for an empty event collection. An iCalendar file
// accompanies each feed for calendar subscribers; events without a start
// instant are left out of it.
package export
