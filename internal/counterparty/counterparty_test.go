package counterparty

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaknet/monkeysync/internal/directory"
	"github.com/yaknet/monkeysync/internal/model"
)

// countingMatcher records the queries it receives.
type countingMatcher struct {
	result  []model.Entity
	err     error
	queries []model.MatchQuery
}

func (m *countingMatcher) Match(_ context.Context, q model.MatchQuery) ([]model.Entity, error) {
	m.queries = append(m.queries, q)
	return m.result, m.err
}

func TestBillingDetails_Extract(t *testing.T) {
	src := map[string]any{
		"id": "txn_1",
		"billing_details": map[string]any{
			"email": "  ada@example.org ",
			"name":  "Ada Lovelace",
			"phone": nil,
			"address": map[string]any{
				"city":        "London",
				"country":     "GB",
				"state":       "",
				"postal_code": "   ",
				"line1":       "12 St James's Square",
				"line2":       nil,
			},
		},
	}

	got := BillingDetails.Extract(src)
	assert.Equal(t, model.Counterparty{
		Email:   "ada@example.org",
		Name:    "Ada Lovelace",
		City:    "London",
		Country: "GB",
		Address: "12 St James's Square",
	}, got)
}

func TestBillingDetails_FallsBackToTopLevelEmail(t *testing.T) {
	got := BillingDetails.Extract(map[string]any{
		"email":           "sniffed@example.org",
		"billing_details": map[string]any{"email": nil, "name": "Ada"},
	})
	assert.Equal(t, "sniffed@example.org", got.Email)
	assert.Equal(t, "Ada", got.Name)
}

func TestBillingDetails_Empty(t *testing.T) {
	got := BillingDetails.Extract(map[string]any{"id": "po_1", "description": "STRIPE PAYOUT"})
	assert.Equal(t, model.Counterparty{}, got)
	assert.False(t, got.Usable())
}

func TestBillingDetails_CollapsesWhitespace(t *testing.T) {
	got := BillingDetails.Extract(map[string]any{
		"billing_details": map[string]any{
			"name":    " Grace \t Hopper ",
			"address": map[string]any{"line1": "1  Navy   Yard"},
		},
	})
	assert.Equal(t, "Grace Hopper", got.Name)
	assert.Equal(t, "1 Navy Yard", got.Address)
}

func TestBillingDetails_AcceptsRecord(t *testing.T) {
	rec := model.Record{"billing_details": map[string]any{"name": "Grace Hopper"}}
	assert.Equal(t, "Grace Hopper", BillingDetails.Extract(rec).Name)
}

func TestCustomer_Extract(t *testing.T) {
	got := Customer.Extract(map[string]any{
		"email": "grace@example.org",
		"name":  "Grace Hopper",
		"address": map[string]any{
			"postal_code": 10001,
		},
	})
	assert.Equal(t, "grace@example.org", got.Email)
	assert.Equal(t, "10001", got.PostalCode)
}

func TestExists(t *testing.T) {
	tests := []struct {
		name      string
		c         model.Counterparty
		result    []model.Entity
		want      bool
		wantQuery *model.MatchQuery
	}{
		{
			name:      "email match",
			c:         model.Counterparty{Email: "ada@example.org", Name: "Ada"},
			result:    []model.Entity{{ID: "e1"}},
			want:      true,
			wantQuery: &model.MatchQuery{Email: "ada@example.org"},
		},
		{
			name:      "email miss",
			c:         model.Counterparty{Email: "ada@example.org"},
			want:      false,
			wantQuery: &model.MatchQuery{Email: "ada@example.org"},
		},
		{
			name:      "name fallback",
			c:         model.Counterparty{Name: "Ada Lovelace"},
			result:    []model.Entity{{ID: "e1"}},
			want:      true,
			wantQuery: &model.MatchQuery{Name: "Ada Lovelace"},
		},
		{
			name: "no identity",
			c:    model.Counterparty{City: "London"},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &countingMatcher{result: tt.result}
			got, err := NewDeduplicator(m).Exists(context.Background(), tt.c)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.wantQuery == nil {
				assert.Empty(t, m.queries)
				return
			}
			require.Len(t, m.queries, 1)
			assert.Equal(t, *tt.wantQuery, m.queries[0])
		})
	}
}

func TestExists_Ambiguous(t *testing.T) {
	m := &countingMatcher{result: []model.Entity{{ID: "e1"}, {ID: "e2"}}}
	got, err := NewDeduplicator(m).Exists(context.Background(), model.Counterparty{Email: "dup@example.org"})
	require.Error(t, err)
	assert.ErrorIs(t, err, directory.ErrAmbiguousMatch)
	assert.False(t, got)
	assert.Contains(t, err.Error(), "dup@example.org")
}

func TestExists_DirectoryFailure(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := NewDeduplicator(&countingMatcher{err: boom}).Exists(context.Background(), model.Counterparty{Name: "Ada"})
	assert.ErrorIs(t, err, boom)
}

func TestNewEntity(t *testing.T) {
	e := NewEntity(model.Counterparty{Name: "Mary Ann Evans", Email: "ma@example.org", City: "Nuneaton"}, "stripe", "2024-03-05T10:15:00")
	assert.Equal(t, model.EntityTypeIndividual, e.Type)
	assert.Equal(t, "Mary Ann", e.FirstName)
	assert.Equal(t, "Evans", e.LastName)
	assert.Equal(t, "Nuneaton", e.City)
	assert.Equal(t, []string{model.RoleDonor, model.RoleCustomer}, e.Roles)
	assert.Equal(t, map[string]string{"source": "stripe", "import": "2024-03-05T10:15:00"}, e.ExtraAttributes)
}

func seq(objs ...map[string]any) iter.Seq2[map[string]any, error] {
	return func(yield func(map[string]any, error) bool) {
		for _, o := range objs {
			if !yield(o, nil) {
				return
			}
		}
	}
}

func TestImporter_Import(t *testing.T) {
	dir := directory.NewMemory(model.Entity{Email: "known@example.org"})
	im := &Importer{
		Extractor: Customer,
		Dedup:     NewDeduplicator(dir),
		Creator:   dir,
		Source:    "stripe",
		Tag:       "tag-1",
		Log:       zerolog.Nop(),
	}

	n, err := im.Import(context.Background(), seq(
		map[string]any{"email": "known@example.org"},
		map[string]any{"name": "No Email"},
		map[string]any{"email": "new@example.org", "name": "New Person"},
		map[string]any{"email": "new@example.org", "name": "New Person"},
	))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	found, err := dir.Match(context.Background(), model.MatchQuery{Email: "new@example.org"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "tag-1", found[0].ExtraAttributes["import"])
	assert.True(t, found[0].HasRole(model.RoleDonor))

	// Second pass creates nothing.
	n, err = im.Import(context.Background(), seq(map[string]any{"email": "new@example.org"}))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestImporter_SourceError(t *testing.T) {
	boom := errors.New("stripe down")
	im := &Importer{Extractor: Customer, Dedup: NewDeduplicator(directory.NewMemory()), Creator: directory.NewMemory(), Log: zerolog.Nop()}
	_, err := im.Import(context.Background(), func(yield func(map[string]any, error) bool) {
		yield(nil, boom)
	})
	assert.ErrorIs(t, err, boom)
}
