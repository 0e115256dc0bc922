package repository

import (
	"context"
	"errors"
	"fmt"

	"product-review/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the data-access contract every entity kind shares.
type Store[T any] interface {
	List(ctx context.Context, opts ...Option) ([]T, error)
	Get(ctx context.Context, id int, opts ...Option) (*T, error)
	Count(ctx context.Context, opts ...Option) (int64, error)
	Add(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, entity *T) error
}

// Repository implements Store for entity type T on gorm. Every write is
// its own commit; navigation fields are never written through.
type Repository[T any] struct {
	db *gorm.DB
}

func New[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

func (r *Repository[T]) List(ctx context.Context, opts ...Option) ([]T, error) {
	q := Build(opts...)

	items := make([]T, 0)
	if err := q.apply(r.db.WithContext(ctx).Model(new(T))).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", entityName[T](), translate(err))
	}
	return items, nil
}

// Get returns models.ErrNotFound when no row has the identity.
func (r *Repository[T]) Get(ctx context.Context, id int, opts ...Option) (*T, error) {
	q := Build(opts...)
	q.Limit, q.Offset = 0, 0

	var item T
	err := q.apply(r.db.WithContext(ctx).Model(new(T))).First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s %d: %w", entityName[T](), id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s %d: %w", entityName[T](), id, translate(err))
	}
	return &item, nil
}

func (r *Repository[T]) Count(ctx context.Context, opts ...Option) (int64, error) {
	q := Build(opts...)
	q.Includes, q.Limit, q.Offset, q.Order = nil, 0, 0, ""

	var n int64
	if err := q.apply(r.db.WithContext(ctx).Model(new(T))).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", entityName[T](), translate(err))
	}
	return n, nil
}

func (r *Repository[T]) Add(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(entity).Error; err != nil {
		return fmt.Errorf("add %s: %w", entityName[T](), translate(err))
	}
	return nil
}

// Update replaces every column of the row matching the entity's identity.
// There is no concurrency token: the last write wins.
func (r *Repository[T]) Update(ctx context.Context, entity *T) error {
	err := r.db.WithContext(ctx).
		Model(entity).
		Select("*").
		Omit(clause.Associations).
		Updates(entity).Error
	if err != nil {
		return fmt.Errorf("update %s: %w", entityName[T](), translate(err))
	}
	return nil
}

// Delete removes the row, or flags it when the entity carries a
// gorm.DeletedAt field.
func (r *Repository[T]) Delete(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Delete(entity).Error; err != nil {
		return fmt.Errorf("delete %s: %w", entityName[T](), translate(err))
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", models.ErrConflict, err)
	default:
		return err
	}
}

func entityName[T any]() string {
	return fmt.Sprintf("%T", *new(T))
}
