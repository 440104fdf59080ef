package directory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yaknet/monkeysync/internal/model"
)

var _ Directory = (*Memory)(nil)

// Memory is an in-process Directory. It backs offline runs and tests.
type Memory struct {
	mu       sync.Mutex
	entities []model.Entity
}

// NewMemory returns a Memory preloaded with entities.
func NewMemory(entities ...model.Entity) *Memory {
	m := &Memory{}
	for _, e := range entities {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		m.entities = append(m.entities, e)
	}
	return m
}

// Match returns entities where every set query field matches.
// An empty query matches nothing.
func (m *Memory) Match(_ context.Context, q model.MatchQuery) ([]model.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if q.Empty() {
		return nil, nil
	}
	var out []model.Entity
	for _, e := range m.entities {
		if Matches(e, q) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Create stores e with a fresh id.
func (m *Memory) Create(_ context.Context, e model.Entity) (model.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.ID = uuid.NewString()
	m.entities = append(m.entities, e)
	return e, nil
}

// Delete removes one entity by id or unique email.
func (m *Memory) Delete(ctx context.Context, req DeleteRequest) error {
	id, err := ResolveDelete(ctx, m, req)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entities {
		if e.ID == id {
			m.entities = append(m.entities[:i], m.entities[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Entities returns a copy of the stored entities.
func (m *Memory) Entities() []model.Entity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Entity(nil), m.entities...)
}

// Matches reports whether e satisfies every set field of q. Email and name
// compare case-insensitively, names with inner whitespace collapsed; metadata matches any extra attribute value.
func Matches(e model.Entity, q model.MatchQuery) bool {
	if q.ID != "" && e.ID != q.ID {
		return false
	}
	if q.Email != "" && !strings.EqualFold(e.Email, q.Email) {
		return false
	}
	if q.Name != "" && !strings.EqualFold(collapse(e.Name()), collapse(q.Name)) {
		return false
	}
	if q.Metadata != "" {
		found := false
		for _, v := range e.ExtraAttributes {
			if v == q.Metadata {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
