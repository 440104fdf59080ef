// Package directory talks to the counterparty relationship directory.
package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/yaknet/monkeysync/internal/model"
)

var (
	// ErrNotFound is returned when no entity matches.
	ErrNotFound = errors.New("entity not found")

	// ErrAmbiguousMatch is returned when a lookup that must be unique
	// matches more than one entity.
	ErrAmbiguousMatch = errors.New("multiple entities match")
)

// Directory matches, creates and deletes entities.
type Directory interface {
	Match(ctx context.Context, q model.MatchQuery) ([]model.Entity, error)
	Create(ctx context.Context, e model.Entity) (model.Entity, error)
	Delete(ctx context.Context, req DeleteRequest) error
}

// DeleteRequest names the entity to delete by exactly one of ID or Email.
type DeleteRequest struct {
	ID    string
	Email string
}

// Validate checks that exactly one selector is set.
func (r DeleteRequest) Validate() error {
	if r.ID == "" && r.Email == "" {
		return errors.New("either id or email is required")
	}
	if r.ID != "" && r.Email != "" {
		return errors.New("only one of id or email is accepted")
	}
	return nil
}

// Matcher is the lookup half of a Directory.
type Matcher interface {
	Match(ctx context.Context, q model.MatchQuery) ([]model.Entity, error)
}

// ResolveUnique returns the single entity matching q.
func ResolveUnique(ctx context.Context, m Matcher, q model.MatchQuery) (model.Entity, error) {
	found, err := m.Match(ctx, q)
	if err != nil {
		return model.Entity{}, err
	}
	switch len(found) {
	case 0:
		return model.Entity{}, ErrNotFound
	case 1:
		return found[0], nil
	default:
		return model.Entity{}, fmt.Errorf("%w: %d results", ErrAmbiguousMatch, len(found))
	}
}

// ResolveDelete turns an email selector into an id using a unique match.
func ResolveDelete(ctx context.Context, m Matcher, req DeleteRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if req.ID != "" {
		return req.ID, nil
	}
	e, err := ResolveUnique(ctx, m, model.MatchQuery{Email: req.Email})
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", req.Email, err)
	}
	return e.ID, nil
}
