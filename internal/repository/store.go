package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store groups the entity repositories behind a single transaction boundary.
type Store interface {
	Users() UserRepository
	Posts() PostRepository
	Comments() CommentRepository
	// WithTransaction runs fn with repositories bound to one transaction. Either every
	// write performed through tx is committed or none is.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a GORM-backed store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository {
	return &userRepository{db: s.db}
}

func (s *gormStore) Posts() PostRepository {
	return &postRepository{db: s.db}
}

func (s *gormStore) Comments() CommentRepository {
	return &commentRepository{db: s.db}
}

// WithTransaction executes a function within a database transaction.
func (s *gormStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormStore{db: tx})
	})
}

// forUpdate adds a row-level lock. Drivers without row locks (sqlite) drop the clause.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// notFound maps gorm's missing-record error to the given domain sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func likePattern(q string) string {
	return "%" + q + "%"
}
