// Package geolocation is the platform position capability. A terminal has
// no GPS, so positions come from configuration or a test double.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lifelink/internal/geo"
)

var (
	ErrUnsupported = errors.New("geolocation not supported")
	ErrDenied      = errors.New("geolocation denied")
	ErrTimeout     = errors.New("geolocation timed out")
)

// Locator returns a one-shot, high-accuracy position.
type Locator interface {
	CurrentPosition(ctx context.Context) (geo.Coordinate, error)
}

// Func adapts a function to Locator.
type Func func(ctx context.Context) (geo.Coordinate, error)

func (f Func) CurrentPosition(ctx context.Context) (geo.Coordinate, error) { return f(ctx) }

// Fixed always reports the same position, e.g. one configured for the
// machine the client runs on.
type Fixed struct {
	Position geo.Coordinate
}

func (f Fixed) CurrentPosition(ctx context.Context) (geo.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	if err := f.Position.Validate(); err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %w", ErrDenied, err)
	}
	return f.Position, nil
}

// Unsupported is the locator for a device without a position source.
type Unsupported struct{}

func (Unsupported) CurrentPosition(context.Context) (geo.Coordinate, error) {
	return geo.Coordinate{}, ErrUnsupported
}

// New returns a Fixed locator when a device position is configured and
// Unsupported otherwise.
func New(configured bool, position geo.Coordinate) Locator {
	if !configured {
		return Unsupported{}
	}
	return Fixed{Position: position}
}

type timeoutLocator struct {
	next    Locator
	timeout time.Duration
}

// WithTimeout bounds every lookup of next by d. A non-positive d returns
// next unchanged.
func WithTimeout(next Locator, d time.Duration) Locator {
	if d <= 0 {
		return next
	}
	return &timeoutLocator{next: next, timeout: d}
}

func (t *timeoutLocator) CurrentPosition(ctx context.Context) (geo.Coordinate, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	type result struct {
		c   geo.Coordinate
		err error
	}
	ch := make(chan result, 1)
	go func() {
		c, err := t.next.CurrentPosition(ctx)
		ch <- result{c, err}
	}()

	select {
	case r := <-ch:
		return r.c, r.err
	case <-ctx.Done():
		return geo.Coordinate{}, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}
}

// Supported reports whether l can ever produce a position.
func Supported(l Locator) bool {
	switch v := l.(type) {
	case Unsupported, *Unsupported:
		return false
	case *timeoutLocator:
		return Supported(v.next)
	default:
		return true
	}
}
