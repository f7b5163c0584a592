package locate

import "context"

// Reported is a location already resolved by the client, typically the
// browser Geolocation API, and sent along with the capture request.
// Exactly one of Position or Err is expected to be set.
type Reported struct {
	Position *Position
	Err      *Error
}

// CurrentPosition returns the reported position or failure.
func (r Reported) CurrentPosition(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, fromContext(err)
	}
	if r.Err != nil {
		return Position{}, r.Err
	}
	if r.Position == nil {
		return Position{}, &Error{Code: PositionUnavailable, Message: "no position reported"}
	}

	return *r.Position, nil
}
