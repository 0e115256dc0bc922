// Package repotest provides an in-memory repository.Store for tests.
package repotest

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"product-review/internal/models"
	"product-review/internal/repository"

	"gorm.io/gorm/schema"
)

// Memory is a repository.Store kept in a slice. It understands Eq and In
// conditions on gorm column names, paging and nothing else; includes are
// ignored, so seed entities with the relations a test needs.
type Memory[T any] struct {
	mu     sync.Mutex
	schema *schema.Schema
	items  []T
	nextID int

	// Err, when set, is returned by every call.
	Err error

	Adds, Updates, Deletes, Reads int
}

func NewMemory[T any](seed ...T) *Memory[T] {
	sch, err := schema.Parse(new(T), &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		panic(fmt.Sprintf("repotest: parse schema: %v", err))
	}
	m := &Memory[T]{schema: sch, nextID: 1}
	for _, item := range seed {
		if id := m.id(&item); id == 0 {
			m.setID(&item, m.nextID)
		}
		if id := m.id(&item); id >= m.nextID {
			m.nextID = id + 1
		}
		m.items = append(m.items, item)
	}
	return m
}

// Items returns a copy of the stored entities.
func (m *Memory[T]) Items() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]T(nil), m.items...)
}

func (m *Memory[T]) List(ctx context.Context, opts ...repository.Option) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.filter(repository.Build(opts...))
}

func (m *Memory[T]) Get(ctx context.Context, id int, opts ...repository.Option) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads++
	if m.Err != nil {
		return nil, m.Err
	}
	q := repository.Build(opts...)
	q.Limit, q.Offset = 0, 0
	items, err := m.filter(q)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if m.id(&items[i]) == id {
			item := items[i]
			return &item, nil
		}
	}
	return nil, fmt.Errorf("%T %d: %w", *new(T), id, models.ErrNotFound)
}

func (m *Memory[T]) Count(ctx context.Context, opts ...repository.Option) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads++
	if m.Err != nil {
		return 0, m.Err
	}
	q := repository.Build(opts...)
	q.Limit, q.Offset = 0, 0
	items, err := m.filter(q)
	return int64(len(items)), err
}

func (m *Memory[T]) Add(ctx context.Context, entity *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Adds++
	if m.Err != nil {
		return m.Err
	}
	m.setID(entity, m.nextID)
	m.nextID++
	m.items = append(m.items, *entity)
	return nil
}

func (m *Memory[T]) Update(ctx context.Context, entity *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates++
	if m.Err != nil {
		return m.Err
	}
	id := m.id(entity)
	for i := range m.items {
		if m.id(&m.items[i]) == id {
			m.items[i] = *entity
			return nil
		}
	}
	return nil
}

func (m *Memory[T]) Delete(ctx context.Context, entity *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes++
	if m.Err != nil {
		return m.Err
	}
	id := m.id(entity)
	for i := range m.items {
		if m.id(&m.items[i]) == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *Memory[T]) filter(q repository.Query) ([]T, error) {
	out := make([]T, 0, len(m.items))
	for i := range m.items {
		ok, err := m.match(&m.items[i], q.Conditions)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, m.items[i])
		}
	}
	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []T{}, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *Memory[T]) match(item *T, conds []repository.Condition) (bool, error) {
	rv := reflect.ValueOf(item).Elem()
	for _, c := range conds {
		if c.Op == repository.OpRaw {
			return false, fmt.Errorf("repotest: raw condition %q not supported", c.SQL)
		}
		field := m.schema.LookUpField(c.Column)
		if field == nil {
			return false, fmt.Errorf("repotest: unknown column %q on %s", c.Column, m.schema.Name)
		}
		value, _ := field.ValueOf(context.Background(), rv)
		found := false
		for _, want := range c.Values {
			if fmt.Sprint(value) == fmt.Sprint(want) {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	return true, nil
}

func (m *Memory[T]) id(item *T) int {
	value, _ := m.schema.PrioritizedPrimaryField.ValueOf(context.Background(), reflect.ValueOf(item).Elem())
	id, _ := value.(int)
	return id
}

func (m *Memory[T]) setID(item *T, id int) {
	_ = m.schema.PrioritizedPrimaryField.Set(context.Background(), reflect.ValueOf(item).Elem(), id)
}
