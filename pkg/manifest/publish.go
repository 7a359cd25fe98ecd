package manifest

import (
	"context"
	"errors"
	"fmt"
)

// Publisher receives each newly computed manifest. Implementations replace
// whatever they held before; they never merge.
type Publisher interface {
	Publish(ctx context.Context, m *Manifest) error
}

// PublisherFunc adapts a function to [Publisher].
type PublisherFunc func(ctx context.Context, m *Manifest) error

// Publish calls f(ctx, m).
func (f PublisherFunc) Publish(ctx context.Context, m *Manifest) error { return f(ctx, m) }

// Discard is a publisher that drops every manifest.
var Discard Publisher = PublisherFunc(func(context.Context, *Manifest) error { return nil })

// Named attaches a name to a publisher for error messages and logs.
type Named struct {
	Name string
	Publisher
}

// Multi publishes to each publisher in order. Every external publisher is
// attempted and failures are joined. In-process slots are swapped last, and
// only when every other publisher succeeded, so a failed publish never
// changes what the process serves as live.
type Multi []Publisher

// Publish implements [Publisher].
func (ms Multi) Publish(ctx context.Context, m *Manifest) error {
	var (
		errs  []error
		slots []*Slot
	)
	for _, p := range ms {
		if s, ok := asSlot(p); ok {
			slots = append(slots, s)
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := p.Publish(ctx, m); err != nil {
			if n, ok := p.(Named); ok {
				err = fmt.Errorf("%s: %w", n.Name, err)
			}
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	for _, s := range slots {
		if err := s.Publish(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func asSlot(p Publisher) (*Slot, bool) {
	if n, ok := p.(Named); ok {
		p = n.Publisher
	}
	s, ok := p.(*Slot)
	return s, ok
}
