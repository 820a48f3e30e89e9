package export

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/hautrelief/tilmeld-feeds/internal/config"
	"github.com/hautrelief/tilmeld-feeds/internal/event"
)

// cdata is a text node always serialized as a CDATA section, padded with a
// single space on each side. Downstream consumers expect the section to be
// present even for empty values, so it is never omitted.
type cdata struct {
	Value string `xml:",cdata"`
}

func cd(s string) cdata {
	return cdata{Value: " " + s + " "}
}

const (
	// humanTimeLayout is the locale-independent 12-hour rendering.
	humanTimeLayout = "2006-01-02 3:04 PM"
	// machineTimeLayout is the parallel machine form.
	machineTimeLayout = "2006-01-02 15:04:05"
)

func formatHuman(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(humanTimeLayout)
}

func formatMachine(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(machineTimeLayout)
}

// schemaData is the root <data> document.
type schemaData struct {
	XMLName  xml.Name       `xml:"data"`
	Provider schemaProvider `xml:"provider"`
	Events   schemaEvents   `xml:"events"`
}

type schemaProvider struct {
	Title   cdata `xml:"title"`
	Address cdata `xml:"address"`
	Zipcode cdata `xml:"zipcode"`
	City    cdata `xml:"city"`
	Email   cdata `xml:"email"`
	Phone   cdata `xml:"phone"`
	Website cdata `xml:"website"`
}

type schemaEvents struct {
	Events []schemaEvent `xml:"event"`
}

type schemaEvent struct {
	ID                 string          `xml:"id,attr"`
	OrgEventID         string          `xml:"org_event_id"`
	Title              cdata           `xml:"title"`
	Description        cdata           `xml:"description"`
	DescriptionShort   cdata           `xml:"description_short"`
	StartTime          string          `xml:"start_time"`
	EndTime            string          `xml:"end_time"`
	Deadline           string          `xml:"deadline"`
	StartTimeCommon    string          `xml:"start_time_common"`
	EndTimeCommon      string          `xml:"end_time_common"`
	DeadlineTimeCommon string          `xml:"deadline_time_common"`
	Tickets            string          `xml:"tickets"`
	AvailableTickets   string          `xml:"available_tickets"`
	AvailableQuantity  string          `xml:"available_tickets_quantity"`
	HighestTicketPrice string          `xml:"highest_ticket_price"`
	FewTicketsLeft     string          `xml:"few_tickets_left"`
	PublicStatus       string          `xml:"public_status"`
	URL                string          `xml:"url"`
	Images             schemaImages    `xml:"images"`
	Categories         string          `xml:"categories"`
	Location           schemaLocation  `xml:"location"`
	Organization       schemaOrg       `xml:"organization"`
	ContactDetails     schemaContact   `xml:"contact_details"`
}

type schemaImages struct {
	Images []schemaImage `xml:"image"`
}

type schemaImage struct {
	ID     string `xml:"id,attr"`
	Source cdata  `xml:"source"`
}

type schemaLocation struct {
	ID      string `xml:"id,attr"`
	Type    cdata  `xml:"type"`
	Name    cdata  `xml:"name"`
	Address cdata  `xml:"address"`
	Zipcode cdata  `xml:"zipcode"`
	City    cdata  `xml:"city"`
	Country cdata  `xml:"country"`
}

type schemaOrg struct {
	ID          string `xml:"id,attr"`
	Title       cdata  `xml:"title"`
	Address     cdata  `xml:"address"`
	City        cdata  `xml:"city"`
	Phone       cdata  `xml:"phone"`
	Country     cdata  `xml:"country"`
	URL         cdata  `xml:"url"`
	Description cdata  `xml:"description"`
	Email       cdata  `xml:"email"`
	Zipcode     cdata  `xml:"zipcode"`
}

type schemaContact struct {
	Name  cdata `xml:"name"`
	Phone cdata `xml:"phone"`
	Email cdata `xml:"email"`
}

// Schema renders an ordered event collection into the custom XML schema.
// The same function serves per-site and combined output; the provider,
// organization and contact blocks are static per deployment.
func Schema(events []*event.Event, cfg *config.Config) ([]byte, error) {
	data := schemaData{
		Provider: schemaProvider{
			Title:   cd(cfg.Provider.Title),
			Address: cd(cfg.Provider.Address),
			Zipcode: cd(cfg.Provider.Zipcode),
			City:    cd(cfg.Provider.City),
			Email:   cd(cfg.Provider.Email),
			Phone:   cd(cfg.Provider.Phone),
			Website: cd(cfg.Provider.Website),
		},
	}

	for _, evt := range events {
		data.Events.Events = append(data.Events.Events, schemaEventFrom(evt, cfg))
	}

	out, err := xml.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding schema XML: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

func schemaEventFrom(evt *event.Event, cfg *config.Config) schemaEvent {
	orgURL := cfg.Org.URL
	if orgURL == "" && evt.Host != "" {
		orgURL = "https://" + evt.Host + "/"
	}

	se := schemaEvent{
		ID:                 evt.ID,
		OrgEventID:         orgEventID(evt),
		Title:              cd(evt.Title),
		Description:        cd(evt.DescriptionHTML),
		DescriptionShort:   cd(evt.Teaser),
		StartTime:          formatHuman(evt.Start),
		EndTime:            formatHuman(evt.End),
		Deadline:           formatHuman(evt.Deadline),
		StartTimeCommon:    formatMachine(evt.Start),
		EndTimeCommon:      formatMachine(evt.End),
		DeadlineTimeCommon: formatMachine(evt.Deadline),
		AvailableTickets:   "true",
		FewTicketsLeft:     "false",
		PublicStatus:       "registration_open",
		URL:                evt.URL,
		Categories:         " ",
		Location: schemaLocation{
			ID:      evt.ID,
			Type:    cd(evt.Location.Type),
			Name:    cd(evt.Location.Name),
			Address: cd(evt.Location.Address),
			Zipcode: cd(evt.Location.Zipcode),
			City:    cd(evt.Location.City),
			Country: cd(evt.Location.Country),
		},
		Organization: schemaOrg{
			ID:          cfg.Org.ID,
			Title:       cd(cfg.Org.Title),
			Address:     cd(cfg.Org.Address),
			City:        cd(cfg.Org.City),
			Phone:       cd(cfg.Org.Phone),
			Country:     cd(cfg.Org.Country),
			URL:         cd(orgURL),
			Description: cd(cfg.Org.Description),
			Email:       cd(cfg.Org.Email),
			Zipcode:     cd(cfg.Org.Zipcode),
		},
		ContactDetails: schemaContact{
			Name:  cd(cfg.Contact.Name),
			Phone: cd(cfg.Contact.Phone),
			Email: cd(cfg.Contact.Email),
		},
	}

	for i, src := range evt.Images {
		se.Images.Images = append(se.Images.Images, schemaImage{
			ID:     strconv.Itoa(i),
			Source: cd(src),
		})
	}

	return se
}

// orgEventID is the numeric source identifier, empty when the ID is a hash.
func orgEventID(evt *event.Event) string {
	if evt.URL != "" && event.NumericPathSegment(evt.URL) == evt.ID {
		return evt.ID
	}
	return ""
}
