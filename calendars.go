package timekit

import (
	"context"
	"net/http"
)

var (
	epGetCalendars = endpoint{name: "getCalendars", method: http.MethodGet, path: "/calendars", auth: true}
	epGetCalendar  = endpoint{name: "getCalendar", method: http.MethodGet, path: "/calendar/:token", auth: true}
	epGetContacts  = endpoint{name: "getContacts", method: http.MethodGet, path: "/contacts", auth: true}
)

// GetCalendars lists the user's calendars.
func (c *Client) GetCalendars(ctx context.Context) (*Response[[]Calendar], error) {
	return send[[]Calendar](ctx, c, epGetCalendars, call{})
}

// GetCalendar fetches one calendar.
func (c *Client) GetCalendar(ctx context.Context, token string) (*Response[Calendar], error) {
	return send[Calendar](ctx, c, epGetCalendar, call{
		params: map[string]string{"token": token},
	})
}

// GetContacts lists the user's contacts.
func (c *Client) GetContacts(ctx context.Context) (*Response[[]Contact], error) {
	return send[[]Contact](ctx, c, epGetContacts, call{})
}
