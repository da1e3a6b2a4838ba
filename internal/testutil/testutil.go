// Package testutil builds throwaway stores for package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"socialnet/internal/db"
	"socialnet/internal/model"
	"socialnet/internal/repository"
)

// NewDB opens a migrated in-memory SQLite database that lives for the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	gormDB, err := db.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gormDB
}

// NewStore returns a store over a fresh in-memory database.
func NewStore(t testing.TB) repository.Store {
	t.Helper()
	return repository.NewStore(NewDB(t))
}

// CreateUser inserts a user with the given name and a derived email.
func CreateUser(t testing.TB, store repository.Store, name string) *model.User {
	t.Helper()
	user := &model.User{Name: name, Email: name + "@example.com", PasswordHash: "x", Age: 30}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

// CreatePost inserts a post authored by author.
func CreatePost(t testing.TB, store repository.Store, author *model.User, description string) *model.Post {
	t.Helper()
	post := &model.Post{Description: description, AuthorID: author.ID}
	require.NoError(t, store.Posts().Create(context.Background(), post))
	return post
}
