package timekit

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

var (
	epGetEvents       = endpoint{name: "getEvents", method: http.MethodGet, path: "/events", auth: true}
	epGetAvailability = endpoint{name: "getAvailability", method: http.MethodGet, path: "/events/availability", auth: true}
)

// GetEvents lists the user's events between start and end.
func (c *Client) GetEvents(ctx context.Context, start, end time.Time) (*Response[[]Event], error) {
	return send[[]Event](ctx, c, epGetEvents, call{
		query: timeRange(start, end),
	})
}

// GetAvailability lists the windows between start and end in which the user
// with the given email is busy.
func (c *Client) GetAvailability(ctx context.Context, start, end time.Time, email string) (*Response[[]TimeSlot], error) {
	query := timeRange(start, end)
	query.Set("email", email)
	return send[[]TimeSlot](ctx, c, epGetAvailability, call{query: query})
}

func timeRange(start, end time.Time) url.Values {
	return url.Values{
		"start": {start.Format(time.RFC3339)},
		"end":   {end.Format(time.RFC3339)},
	}
}
