package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "socialnet/internal/errors"
	"socialnet/internal/model"
)

// PostRepository defines post persistence operations.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	UpdateContent(ctx context.Context, post *model.Post) error
	UpdateLikes(ctx context.Context, id uuid.UUID, likes model.IDList) error
	UpdateComments(ctx context.Context, id uuid.UUID, comments model.IDList) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, offset, limit int) ([]model.Post, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Post, error)
	SearchByDescription(ctx context.Context, q string) ([]model.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create creates a new post.
func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// UpdateContent persists description and image.
func (r *postRepository) UpdateContent(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Model(post).
		Select("description", "image").
		Updates(post).Error
}

// UpdateLikes persists the like set only.
func (r *postRepository) UpdateLikes(ctx context.Context, id uuid.UUID, likes model.IDList) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		Update("likes", likes).Error
}

// UpdateComments persists the comment membership sequence only.
func (r *postRepository) UpdateComments(ctx context.Context, id uuid.UUID, comments model.IDList) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		Update("comments", comments).Error
}

// FindByID finds a post by ID.
func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, notFound(err, apperrors.ErrPostNotFound)
	}
	return &post, nil
}

// FindByIDForUpdate finds a post by ID with row-level lock for update.
func (r *postRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	var post model.Post
	if err := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, notFound(err, apperrors.ErrPostNotFound)
	}
	return &post, nil
}

// Delete removes a post by ID.
func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrPostNotFound
	}
	return nil
}

// List returns a page of posts, newest first.
func (r *postRepository) List(ctx context.Context, offset, limit int) ([]model.Post, error) {
	var posts []model.Post
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByAuthor returns every post written by authorID, newest first.
func (r *postRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Post, error) {
	var posts []model.Post
	if err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// SearchByDescription matches a case-insensitive substring of the description.
func (r *postRepository) SearchByDescription(ctx context.Context, q string) ([]model.Post, error) {
	var posts []model.Post
	if err := r.db.WithContext(ctx).
		Where("LOWER(description) LIKE ?", likePattern(strings.ToLower(q))).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}
