package counterparty

import (
	"context"
	"fmt"

	"github.com/yaknet/monkeysync/internal/directory"
	"github.com/yaknet/monkeysync/internal/model"
)

// Deduplicator checks whether a counterparty already exists in the
// directory. It never writes.
type Deduplicator struct {
	dir directory.Matcher
}

// NewDeduplicator returns a Deduplicator backed by m.
func NewDeduplicator(m directory.Matcher) *Deduplicator {
	return &Deduplicator{dir: m}
}

// Exists looks the counterparty up by email, or by name when there is no
// email. More than one match is directory.ErrAmbiguousMatch.
func (d *Deduplicator) Exists(ctx context.Context, c model.Counterparty) (bool, error) {
	var q model.MatchQuery
	switch {
	case c.Email != "":
		q.Email = c.Email
	case c.Name != "":
		q.Name = c.Name
	default:
		return false, nil
	}

	found, err := d.dir.Match(ctx, q)
	if err != nil {
		return false, fmt.Errorf("looking up %s: %w", c.Identifier(), err)
	}
	switch len(found) {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("looking up %s: %w: %d results", c.Identifier(), directory.ErrAmbiguousMatch, len(found))
	}
}
