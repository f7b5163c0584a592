package point

import (
	"context"
	"errors"

	"github.com/woozymasta/geocollect/internal/geo"
	"github.com/woozymasta/geocollect/internal/locate"

	"github.com/rs/zerolog/log"
)

// ErrUnavailable is returned when no location source is available.
var ErrUnavailable = errors.New("geolocation is not available")

// CaptureError is a failed location lookup. The store is left unchanged.
type CaptureError struct {
	Err    error
	Reason string
}

func (e *CaptureError) Error() string {
	return "capture failed: " + e.Reason
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// Notice returns the user facing message for a capture error.
func Notice(err error) string {
	var cerr *CaptureError
	switch {
	case errors.Is(err, ErrUnavailable):
		return "Este navegador não suporta geolocalização."
	case errors.As(err, &cerr):
		return "Erro ao obter localização: " + cerr.Reason
	default:
		return "Erro ao obter localização: " + err.Error()
	}
}

// Form is the metadata entered by the user for the next capture.
// Contents are not validated; empty strings and false are valid.
type Form struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Accessible bool   `json:"accessible"`
}

// Locator is a single-shot device location lookup.
type Locator interface {
	CurrentPosition(ctx context.Context) (locate.Position, error)
}

// Result is the outcome of one capture.
// On success Index is the position of Point in the store.
type Result struct {
	Err   error
	Point geo.GeoPoint
	Index int
}

// Collector runs captures against a location source and appends the
// resulting points to a store.
type Collector struct {
	store   *Store
	locator Locator
}

// NewCollector returns a collector. A nil locator makes every capture
// without an explicit source fail with ErrUnavailable.
func NewCollector(store *Store, locator Locator) *Collector {
	return &Collector{store: store, locator: locator}
}

// Store returns the store points are appended to.
func (c *Collector) Store() *Store {
	return c.store
}

// Available reports whether a default location source is configured.
func (c *Collector) Available() bool {
	return c.locator != nil
}

// Capture looks up the current position with the default source.
// See CaptureFrom.
func (c *Collector) Capture(ctx context.Context, form Form) <-chan Result {
	return c.CaptureFrom(ctx, c.locator, form)
}

// CaptureFrom starts an asynchronous capture with loc and returns a channel
// that receives exactly one Result and is then closed.
//
// The form is copied when the capture is requested, so edits made while the
// lookup is in flight never reach this point. Points are appended when the
// lookup completes, so concurrent captures land in completion order.
func (c *Collector) CaptureFrom(ctx context.Context, loc Locator, form Form) <-chan Result {
	out := make(chan Result, 1)

	if loc == nil {
		log.Warn().Msg("Capture requested without a location source")
		out <- Result{Err: ErrUnavailable}
		close(out)
		return out
	}

	snapshot := form
	go func() {
		defer close(out)
		pos, err := loc.CurrentPosition(ctx)
		out <- c.complete(snapshot, pos, err)
	}()

	return out
}

// CaptureWait is the blocking form of Capture.
func (c *Collector) CaptureWait(ctx context.Context, form Form) Result {
	return <-c.Capture(ctx, form)
}

// complete merges a finished lookup with the form snapshot and appends the
// point. It is the only place that writes to the store.
func (c *Collector) complete(form Form, pos locate.Position, err error) Result {
	if err != nil {
		log.Info().Err(err).Msg("Location lookup failed")
		return Result{Err: &CaptureError{Reason: err.Error(), Err: err}}
	}

	p := geo.GeoPoint{
		Lat:        geo.Round(pos.Latitude),
		Lng:        geo.Round(pos.Longitude),
		Name:       form.Name,
		Type:       form.Type,
		Accessible: form.Accessible,
	}
	if verr := geo.ValidateCoordinates(p.Lat, p.Lng); verr != nil {
		log.Warn().Err(verr).Msg("Location source returned invalid coordinates")
		return Result{Err: &CaptureError{Reason: verr.Error(), Err: verr}}
	}

	n := c.store.Append(p)
	log.Debug().
		Float64("lat", p.Lat).
		Float64("lng", p.Lng).
		Str("name", p.Name).
		Int("count", n).
		Msg("Point captured")

	return Result{Point: p, Index: n - 1}
}
