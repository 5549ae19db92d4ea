package timekit

import (
	"context"
	"net/http"

	"google.golang.org/api/calendar/v3"
)

var (
	epGetAccounts               = endpoint{name: "getAccounts", method: http.MethodGet, path: "/accounts", auth: true}
	epGetAccountGoogleCalendars = endpoint{name: "getAccountGoogleCalendars", method: http.MethodGet, path: "/accounts/google/calendars", auth: true}
	epAccountSync               = endpoint{name: "accountSync", method: http.MethodGet, path: "/accounts/sync", auth: true, raw: true}
)

// GetAccounts lists the external accounts connected to the user.
func (c *Client) GetAccounts(ctx context.Context) (*Response[[]Account], error) {
	return send[[]Account](ctx, c, epGetAccounts, call{})
}

// GetAccountGoogleCalendars lists the calendars of the user's Google account
// as Google Calendar API list entries.
func (c *Client) GetAccountGoogleCalendars(ctx context.Context) (*Response[[]*calendar.CalendarListEntry], error) {
	return send[[]*calendar.CalendarListEntry](ctx, c, epGetAccountGoogleCalendars, call{})
}

// AccountSync asks the API to synchronize the connected accounts and returns
// the number of synchronized items.
func (c *Client) AccountSync(ctx context.Context) (*Response[SyncResult], error) {
	return send[SyncResult](ctx, c, epAccountSync, call{})
}
