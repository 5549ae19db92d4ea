package timekit

import (
	"context"
	"net/http"
)

var (
	epGetMeetings            = endpoint{name: "getMeetings", method: http.MethodGet, path: "/meetings", auth: true}
	epGetMeeting             = endpoint{name: "getMeeting", method: http.MethodGet, path: "/meetings/:token", auth: true}
	epCreateMeeting          = endpoint{name: "createMeeting", method: http.MethodPost, path: "/meetings", auth: true}
	epUpdateMeeting          = endpoint{name: "updateMeeting", method: http.MethodPut, path: "/meetings/:token", auth: true}
	epSetMeetingAvailability = endpoint{name: "setMeetingAvailability", method: http.MethodPost, path: "/meetings/availability", auth: true}
	epBookMeeting            = endpoint{name: "bookMeeting", method: http.MethodPost, path: "/meetings/book", auth: true}
	epInviteToMeeting        = endpoint{name: "inviteToMeeting", method: http.MethodPost, path: "/meetings/:token/invite", auth: true}
)

// GetMeetings lists the user's meetings.
func (c *Client) GetMeetings(ctx context.Context) (*Response[[]Meeting], error) {
	return send[[]Meeting](ctx, c, epGetMeetings, call{})
}

// GetMeeting fetches one meeting by token.
func (c *Client) GetMeeting(ctx context.Context, token string) (*Response[Meeting], error) {
	return send[Meeting](ctx, c, epGetMeeting, call{
		params: map[string]string{"token": token},
	})
}

// CreateMeeting creates a meeting with the suggested time windows.
func (c *Client) CreateMeeting(ctx context.Context, what, where string, suggestions []Suggestion) (*Response[Meeting], error) {
	body := struct {
		What        string       `json:"what"`
		Where       string       `json:"where"`
		Suggestions []Suggestion `json:"suggestions"`
	}{what, where, suggestions}

	return send[Meeting](ctx, c, epCreateMeeting, call{body: body})
}

// UpdateMeeting applies a partial update to a meeting.
func (c *Client) UpdateMeeting(ctx context.Context, token string, update MeetingUpdate) (*Response[NoContent], error) {
	return send[NoContent](ctx, c, epUpdateMeeting, call{
		params: map[string]string{"token": token},
		body:   update,
	})
}

// SetMeetingAvailability records whether the user can attend a suggestion.
func (c *Client) SetMeetingAvailability(ctx context.Context, suggestionID string, available bool) (*Response[NoContent], error) {
	body := struct {
		SuggestionID string `json:"suggestion_id"`
		Available    bool   `json:"available"`
	}{suggestionID, available}

	return send[NoContent](ctx, c, epSetMeetingAvailability, call{body: body})
}

// BookMeeting books the meeting at the given suggestion.
func (c *Client) BookMeeting(ctx context.Context, suggestionID string) (*Response[NoContent], error) {
	body := struct {
		SuggestionID string `json:"suggestion_id"`
	}{suggestionID}

	return send[NoContent](ctx, c, epBookMeeting, call{body: body})
}

// InviteToMeeting invites people to a meeting by email.
func (c *Client) InviteToMeeting(ctx context.Context, token string, emails []string) (*Response[NoContent], error) {
	body := struct {
		Emails []string `json:"emails"`
	}{emails}

	return send[NoContent](ctx, c, epInviteToMeeting, call{
		params: map[string]string{"token": token},
		body:   body,
	})
}
