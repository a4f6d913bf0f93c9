// Package lifecycle exposes theme registry changes as a lifecycle.Source.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/patchlore/pkg/theme"
)

type themeSource struct {
	events <-chan theme.Event
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits theme registry events.
func NewSource(events <-chan theme.Event) lifecycle.Source {
	return &themeSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *themeSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until ctx is done or the input channel closes,
// then closes the output channel.
func (s *themeSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				// theme.Event implements lifecycle.Event through String().
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
