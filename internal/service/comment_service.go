package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "socialnet/internal/errors"
	"socialnet/internal/events"
	"socialnet/internal/lock"
	"socialnet/internal/model"
	"socialnet/internal/repository"
)

// CreateCommentInput holds the fields of a new comment.
type CreateCommentInput struct {
	Content string
	Image   string
}

// UpdateCommentInput holds the comment fields to change.
type UpdateCommentInput struct {
	Content *string
	Image   *string
}

// CommentService handles comments, their membership in posts and their likes.
type CommentService interface {
	Create(ctx context.Context, actorID, postID uuid.UUID, input CreateCommentInput) (*model.Comment, error)
	Update(ctx context.Context, actorID, commentID uuid.UUID, input UpdateCommentInput) (*model.Comment, error)
	Delete(ctx context.Context, actorID, commentID uuid.UUID) error
	ToggleLike(ctx context.Context, actorID, commentID uuid.UUID) (model.LikeResult, error)
	Like(ctx context.Context, actorID, commentID uuid.UUID) (model.LikeResult, error)
	Unlike(ctx context.Context, actorID, commentID uuid.UUID) (model.LikeResult, error)
}

type commentService struct {
	store     repository.Store
	engine    *RelationshipEngine
	locks     *lock.Keyed
	publisher events.Publisher
}

// NewCommentService creates a new comment service.
func NewCommentService(store repository.Store, engine *RelationshipEngine, locks *lock.Keyed, publisher events.Publisher) CommentService {
	if locks == nil {
		locks = lock.New()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &commentService{
		store:     store,
		engine:    engine,
		locks:     locks,
		publisher: publisher,
	}
}

// Create stores a comment and appends it to the post in one transaction.
func (s *commentService) Create(ctx context.Context, actorID, postID uuid.UUID, input CreateCommentInput) (*model.Comment, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, apperrors.ErrMissingContent
	}

	comment := &model.Comment{
		ID:       uuid.New(),
		Content:  content,
		Image:    input.Image,
		AuthorID: actorID,
		PostID:   postID,
		Likes:    model.IDList{},
	}

	unlock := s.locks.Lock(postKey(postID))
	defer unlock()

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Comments().Create(ctx, comment); err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		return s.engine.AttachComment(ctx, tx, postID, comment.ID)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, events.New(events.CommentCreated, actorID, comment.ID))
	return comment, nil
}

// Update changes content and image. Only the author may do so.
func (s *commentService) Update(ctx context.Context, actorID, commentID uuid.UUID, input UpdateCommentInput) (*model.Comment, error) {
	var content string
	if input.Content != nil {
		content = strings.TrimSpace(*input.Content)
	}
	if content == "" && input.Image == nil {
		return nil, apperrors.ErrNothingToUpdate
	}

	unlock := s.locks.Lock(commentKey(commentID))
	defer unlock()

	var updated *model.Comment
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		comment, err := tx.Comments().FindByIDForUpdate(ctx, commentID)
		if err != nil {
			return err
		}
		if err := authorize(actorID, comment.AuthorID); err != nil {
			return err
		}
		if content != "" {
			comment.Content = content
		}
		if input.Image != nil {
			comment.Image = *input.Image
		}
		if err := tx.Comments().UpdateContent(ctx, comment); err != nil {
			return err
		}
		updated = comment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete detaches the comment from its post and removes it. Only the author may do so.
func (s *commentService) Delete(ctx context.Context, actorID, commentID uuid.UUID) error {
	// PostID never changes, so it is safe to read before taking locks.
	existing, err := s.store.Comments().FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	if err := authorize(actorID, existing.AuthorID); err != nil {
		return err
	}

	unlock := s.locks.Lock(commentKey(commentID), postKey(existing.PostID))
	defer unlock()

	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		comment, err := tx.Comments().FindByIDForUpdate(ctx, commentID)
		if err != nil {
			return err
		}
		if err := s.engine.DetachComment(ctx, tx, comment.PostID, comment.ID); err != nil && !errors.Is(err, apperrors.ErrPostNotFound) {
			return err
		}
		return tx.Comments().Delete(ctx, comment.ID)
	})
	if err != nil {
		return err
	}

	publish(ctx, s.publisher, events.New(events.CommentDeleted, actorID, commentID))
	return nil
}

// ToggleLike flips the actor's like on the comment.
func (s *commentService) ToggleLike(ctx context.Context, actorID, commentID uuid.UUID) (model.LikeResult, error) {
	return s.engine.ToggleCommentLike(ctx, commentID, actorID)
}

// Like adds the actor's like and rejects duplicates.
func (s *commentService) Like(ctx context.Context, actorID, commentID uuid.UUID) (model.LikeResult, error) {
	return s.engine.LikeComment(ctx, commentID, actorID)
}

// Unlike removes the actor's like and rejects a missing one.
func (s *commentService) Unlike(ctx context.Context, actorID, commentID uuid.UUID) (model.LikeResult, error) {
	return s.engine.UnlikeComment(ctx, commentID, actorID)
}
