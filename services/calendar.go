package services

import (
	"net/url"
	"strings"
	"time"

	"github.com/Saroj9823Dangol/event-management-sub001/models"
)

const (
	calendarTimeLayout  = "20060102T150405"
	googleCalendarURL   = "https://calendar.google.com/calendar/render"
	icsProductID        = "-//event-management//booking-service//EN"
	icsMaxLineOctets    = 75
	calendarContentType = "text/calendar;charset=utf-8"
)

// BuildCalendarArtifacts derives a provider deep-link and a downloadable
// invite from a confirmed order. bookingURL is the canonical booking
// reference link embedded in the description. Output depends only on the
// arguments.
func BuildCalendarArtifacts(order *models.Order, lineup *models.Lineup, bookingURL string) models.CalendarArtifact {
	start := lineup.StartDate.Time
	end := lineup.ResolveEnd()

	title := order.EventName
	if title == "" {
		title = "Booking " + order.ID
	}
	description := "Your booking " + order.ID + "."
	if bookingURL != "" {
		description += "\nView booking: " + bookingURL
	}
	location := lineup.Venue.Name

	payload := buildInvite(order, start, end, title, description, location, bookingURL)

	return models.CalendarArtifact{
		ProviderURL:   providerURL(title, start, end, description, location),
		InvitePayload: payload,
		DownloadURI:   "data:" + calendarContentType + "," + encodeComponent(payload),
		FileName:      "booking-" + order.ID + ".ics",
	}
}

func floating(t time.Time) string {
	return t.Format(calendarTimeLayout)
}

func providerURL(title string, start, end time.Time, details, location string) string {
	var b strings.Builder
	b.WriteString(googleCalendarURL)
	b.WriteString("?action=TEMPLATE")
	b.WriteString("&text=" + encodeComponent(title))
	b.WriteString("&dates=" + floating(start) + "/" + floating(end))
	b.WriteString("&details=" + encodeComponent(details))
	b.WriteString("&location=" + encodeComponent(location))
	return b.String()
}

// encodeComponent percent-encodes s for use inside a URL query value, with
// spaces as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func buildInvite(order *models.Order, start, end time.Time, title, description, location, bookingURL string) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + icsProductID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:" + escapeText(order.ID) + "@booking-service",
		"DTSTAMP:" + order.CreatedAt.UTC().Format(calendarTimeLayout) + "Z",
		"DTSTART:" + floating(start),
		"DTEND:" + floating(end),
		"SUMMARY:" + escapeText(title),
		"DESCRIPTION:" + escapeText(description),
	}
	if location != "" {
		lines = append(lines, "LOCATION:"+escapeText(location))
	}
	if bookingURL != "" {
		lines = append(lines, "URL:"+bookingURL)
	}
	lines = append(lines, "END:VEVENT", "END:VCALENDAR")

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(foldLine(l))
		b.WriteString("\r\n")
	}
	return b.String()
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
	"\r", `\n`,
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// foldLine splits a content line into 75-octet chunks joined by CRLF and a
// leading space, never cutting a UTF-8 sequence.
func foldLine(line string) string {
	if len(line) <= icsMaxLineOctets {
		return line
	}
	var b strings.Builder
	limit := icsMaxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !isRuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		// continuation lines spend one octet on the leading space
		limit = icsMaxLineOctets - 1
	}
	b.WriteString(line)
	return b.String()
}

func isRuneStart(c byte) bool {
	return c&0xC0 != 0x80
}
