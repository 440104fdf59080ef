package counterparty

import (
	"context"
	"fmt"
	"iter"

	"github.com/rs/zerolog"

	"github.com/yaknet/monkeysync/internal/model"
)

// Creator is the write half of a directory.
type Creator interface {
	Create(ctx context.Context, e model.Entity) (model.Entity, error)
}

// NewEntity builds the directory record for a counterparty that was not
// found: an Individual with the Donor and Customer roles, stamped with
// the source and batch tag.
func NewEntity(c model.Counterparty, source, tag string) model.Entity {
	e := model.EntityFromCounterparty(c)
	e.AddRoles(model.RoleDonor, model.RoleCustomer)
	e.ExtraAttributes = map[string]string{}
	if source != "" {
		e.ExtraAttributes["source"] = source
	}
	if tag != "" {
		e.ExtraAttributes["import"] = tag
	}
	return e
}

// Importer creates directory entities for objects that are not yet known.
type Importer struct {
	Extractor Extractor
	Dedup     *Deduplicator
	Creator   Creator
	Source    string
	Tag       string
	Log       zerolog.Logger
}

// Import walks objects and creates an entity for each new email. Objects
// without an email, and emails already present, are skipped. It returns
// the number of entities created.
func (im *Importer) Import(ctx context.Context, objects iter.Seq2[map[string]any, error]) (int, error) {
	added := 0
	seen := map[string]bool{}
	for obj, err := range objects {
		if err != nil {
			return added, err
		}

		c := im.Extractor.Extract(obj)
		if c.Email == "" {
			im.Log.Warn().Str("name", c.Name).Msg("skipping: no email")
			continue
		}
		if seen[c.Key()] {
			continue
		}
		seen[c.Key()] = true

		exists, err := im.Dedup.Exists(ctx, model.Counterparty{Email: c.Email})
		if err != nil {
			return added, err
		}
		if exists {
			im.Log.Info().Str("email", c.Email).Msg("skipping: exists")
			continue
		}

		if _, err := im.Creator.Create(ctx, NewEntity(c, im.Source, im.Tag)); err != nil {
			return added, fmt.Errorf("creating %s: %w", c.Email, err)
		}
		im.Log.Info().Str("email", c.Email).Msg("created entity")
		added++
	}
	return added, nil
}
