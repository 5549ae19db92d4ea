package timekit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ID is an identifier the API sends either as a JSON string or a number.
type ID string

// UnmarshalJSON accepts both "12" and 12.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// User is a Timekit user. APIToken is only returned by Auth and CreateUser.
type User struct {
	ID        ID     `json:"id,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email"`
	Image     string `json:"image,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
	APIToken  string `json:"api_token,omitempty"`
}

// NewUser is the body of CreateUser.
type NewUser struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Timezone  string `json:"timezone,omitempty"`
}

// UserUpdate is a partial update of the current user; empty fields are not sent.
type UserUpdate struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
	Password  string `json:"password,omitempty"`
}

// Account is an external calendar account connected to the user.
type Account struct {
	ID         ID     `json:"id"`
	Provider   string `json:"provider"`
	ProviderID string `json:"provider_id,omitempty"`
	LastSync   string `json:"last_sync,omitempty"`
}

// SyncResult is the answer of AccountSync.
type SyncResult struct {
	Count int `json:"count"`
}

// Calendar is a calendar visible to the user.
type Calendar struct {
	ID                 ID     `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description,omitempty"`
	BackgroundColor    string `json:"backgroundcolor,omitempty"`
	ForegroundColor    string `json:"foregroundcolor,omitempty"`
	ProviderID         string `json:"provider_id,omitempty"`
	ProviderAccessRole string `json:"provider_access_role,omitempty"`
}

// Contact is a person the user has been in a meeting with.
type Contact struct {
	ID    ID     `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// Event is a calendar event.
type Event struct {
	ID           ID        `json:"id"`
	CalendarID   ID        `json:"calendar_id,omitempty"`
	What         string    `json:"what"`
	Where        string    `json:"where,omitempty"`
	Description  string    `json:"description,omitempty"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	AllDay       bool      `json:"all_day,omitempty"`
	Participants []string  `json:"participants,omitempty"`
}

// TimeSlot is a window returned by FindTime and GetAvailability.
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Suggestion is a proposed time window of a meeting.
type Suggestion struct {
	ID    ID        `json:"id,omitempty"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Meeting is a meeting with its suggested times.
type Meeting struct {
	ID          ID           `json:"id,omitempty"`
	Token       string       `json:"token"`
	What        string       `json:"what"`
	Where       string       `json:"where"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
}

// MeetingUpdate is a partial update of a meeting; empty fields are not sent.
type MeetingUpdate struct {
	What  string `json:"what,omitempty"`
	Where string `json:"where,omitempty"`
}

// Property is a user key/value property.
type Property struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Filter is one find-time constraint, e.g. {"specific_day": {"day": "Monday"}}.
type Filter map[string]map[string]any

// SpecificDay restricts results to a weekday.
func SpecificDay(day string) Filter {
	return Filter{"specific_day": {"day": day}}
}

// SpecificDayAndTime restricts results to hours [start, end) of a weekday.
func SpecificDayAndTime(day string, start, end int, timezone string) Filter {
	return Filter{"specific_day_and_time": {
		"day":      day,
		"start":    start,
		"end":      end,
		"timezone": timezone,
	}}
}

// BusinessHours restricts results to business hours in timezone.
func BusinessHours(timezone string) Filter {
	return Filter{"business_hours": {"timezone": timezone}}
}

// FindTimeFilters combines filters: any of Or and all of And must hold.
type FindTimeFilters struct {
	Or  []Filter `json:"or,omitempty"`
	And []Filter `json:"and,omitempty"`
}

// FindTimeRequest is the body of FindTime.
type FindTimeRequest struct {
	Emails  []string        `json:"emails"`
	Filters FindTimeFilters `json:"filters"`
	Future  string          `json:"future,omitempty"` // e.g. "3 days"
	Length  string          `json:"length,omitempty"` // e.g. "30 minutes"
	Sort    string          `json:"sort,omitempty"`   // "asc" or "desc"
}
