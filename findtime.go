package timekit

import (
	"context"
	"net/http"
)

var epFindTime = endpoint{name: "findTime", method: http.MethodPost, path: "/findtime", auth: true}

// FindTime asks the API for time slots where everyone in req.Emails is free
// and the filters hold.
func (c *Client) FindTime(ctx context.Context, req FindTimeRequest) (*Response[[]TimeSlot], error) {
	return send[[]TimeSlot](ctx, c, epFindTime, call{body: req})
}
