package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "socialnet/internal/errors"
	"socialnet/internal/model"
)

// CommentRepository defines comment persistence operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	UpdateContent(ctx context.Context, comment *model.Comment) error
	UpdateLikes(ctx context.Context, id uuid.UUID, likes model.IDList) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByPost(ctx context.Context, postID uuid.UUID) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) UpdateContent(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Model(comment).
		Select("content", "image").
		Updates(comment).Error
}

func (r *commentRepository) UpdateLikes(ctx context.Context, id uuid.UUID, likes model.IDList) error {
	return r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", id).
		Update("likes", likes).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, notFound(err, apperrors.ErrCommentNotFound)
	}
	return &comment, nil
}

func (r *commentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	var comment model.Comment
	if err := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, notFound(err, apperrors.ErrCommentNotFound)
	}
	return &comment, nil
}

// FindByIDs returns comments in the order of ids, skipping ids that do not resolve.
func (r *commentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Comment, error) {
	if len(ids) == 0 {
		return []model.Comment{}, nil
	}
	var comments []model.Comment
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&comments).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]model.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}
	ordered := make([]model.Comment, 0, len(comments))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Comment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrCommentNotFound
	}
	return nil
}

// DeleteByPost removes every comment that belongs to postID.
func (r *commentRepository) DeleteByPost(ctx context.Context, postID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&model.Comment{}).Error
}
