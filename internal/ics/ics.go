// Package ics renders Timekit events and meetings as iCalendar data.
package ics

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/beekhof/timekit"
)

const productID = "-//Timekit//timekit CLI//EN"

// EventsToCalendar converts events into a VCALENDAR with one VEVENT each.
// now is used for DTSTAMP.
func EventsToCalendar(events []timekit.Event, now time.Time) *ical.Calendar {
	cal := newCalendar()
	for _, event := range events {
		cal.Children = append(cal.Children, eventToComponent(event, now))
	}
	return cal
}

// MeetingToCalendar converts the suggestions of a meeting into tentative
// VEVENTs sharing the meeting's what and where.
func MeetingToCalendar(meeting timekit.Meeting, now time.Time) *ical.Calendar {
	cal := newCalendar()
	for i, suggestion := range meeting.Suggestions {
		id := string(suggestion.ID)
		if id == "" {
			id = fmt.Sprint(i + 1)
		}

		vevent := eventToComponent(timekit.Event{
			ID:    timekit.ID(meeting.Token + "-" + id),
			What:  meeting.What,
			Where: meeting.Where,
			Start: suggestion.Start,
			End:   suggestion.End,
		}, now)
		vevent.Props.SetText(ical.PropStatus, "TENTATIVE")
		cal.Children = append(cal.Children, vevent)
	}
	return cal
}

// Encode writes events to w as an iCalendar stream.
func Encode(w io.Writer, events []timekit.Event) error {
	return write(w, EventsToCalendar(events, time.Now()))
}

// EncodeMeeting writes the suggestions of meeting to w as an iCalendar stream.
func EncodeMeeting(w io.Writer, meeting timekit.Meeting) error {
	return write(w, MeetingToCalendar(meeting, time.Now()))
}

func write(w io.Writer, cal *ical.Calendar) error {
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

func newCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	return cal
}

func eventToComponent(event timekit.Event, now time.Time) *ical.Component {
	vevent := ical.NewComponent(ical.CompEvent)

	uid := string(event.ID)
	if uid == "" {
		uid = fmt.Sprintf("%s@timekit", event.Start.UTC().Format(time.RFC3339Nano))
	}
	vevent.Props.SetText(ical.PropUID, uid)
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())

	if event.What != "" {
		vevent.Props.SetText(ical.PropSummary, event.What)
	}
	if event.Where != "" {
		vevent.Props.SetText(ical.PropLocation, event.Where)
	}
	if event.Description != "" {
		vevent.Props.SetText(ical.PropDescription, event.Description)
	}

	if event.AllDay {
		dtstart := ical.NewProp(ical.PropDateTimeStart)
		dtstart.SetDate(event.Start)
		vevent.Props.Set(dtstart)

		dtend := ical.NewProp(ical.PropDateTimeEnd)
		dtend.SetDate(event.End)
		vevent.Props.Set(dtend)
	} else {
		vevent.Props.SetDateTime(ical.PropDateTimeStart, event.Start.UTC())
		vevent.Props.SetDateTime(ical.PropDateTimeEnd, event.End.UTC())
	}

	for _, participant := range event.Participants {
		attendee := ical.NewProp(ical.PropAttendee)
		attendee.Value = "mailto:" + participant
		vevent.Props.Add(attendee)
	}

	return vevent
}
