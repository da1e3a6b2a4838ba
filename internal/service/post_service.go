package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "socialnet/internal/errors"
	"socialnet/internal/events"
	"socialnet/internal/lock"
	"socialnet/internal/model"
	"socialnet/internal/repository"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// CreatePostInput holds the fields of a new post.
type CreatePostInput struct {
	Description string
	Image       string
}

// UpdatePostInput holds the post fields to change. An empty description counts as absent.
type UpdatePostInput struct {
	Description *string
	Image       *string
}

// PostService handles posts and their likes.
type PostService interface {
	Create(ctx context.Context, actorID uuid.UUID, input CreatePostInput) (*model.Post, error)
	Get(ctx context.Context, id uuid.UUID) (*model.PostDetail, error)
	List(ctx context.Context, page, limit int) ([]model.PostDetail, error)
	Search(ctx context.Context, q string) ([]model.PostDetail, error)
	Update(ctx context.Context, actorID, postID uuid.UUID, input UpdatePostInput) (*model.Post, error)
	Delete(ctx context.Context, actorID, postID uuid.UUID) error
	ToggleLike(ctx context.Context, actorID, postID uuid.UUID) (model.LikeResult, error)
	Like(ctx context.Context, actorID, postID uuid.UUID) (model.LikeResult, error)
	Unlike(ctx context.Context, actorID, postID uuid.UUID) (model.LikeResult, error)
}

type postService struct {
	store     repository.Store
	engine    *RelationshipEngine
	locks     *lock.Keyed
	publisher events.Publisher
}

// NewPostService creates a new post service.
func NewPostService(store repository.Store, engine *RelationshipEngine, locks *lock.Keyed, publisher events.Publisher) PostService {
	if locks == nil {
		locks = lock.New()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &postService{
		store:     store,
		engine:    engine,
		locks:     locks,
		publisher: publisher,
	}
}

// Paginate turns a 1-based page and a page size into an offset and a bounded limit.
func Paginate(page, limit int) (offset, size int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return (page - 1) * limit, limit
}

// Create publishes a new post authored by actorID.
func (s *postService) Create(ctx context.Context, actorID uuid.UUID, input CreatePostInput) (*model.Post, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, apperrors.ErrMissingContent
	}

	post := &model.Post{
		ID:          uuid.New(),
		Description: description,
		Image:       input.Image,
		AuthorID:    actorID,
		Comments:    model.IDList{},
		Likes:       model.IDList{},
	}
	if err := s.store.Posts().Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	publish(ctx, s.publisher, events.New(events.PostCreated, actorID, post.ID))
	return post, nil
}

// Get returns a post with its author and comment thread.
func (s *postService) Get(ctx context.Context, id uuid.UUID) (*model.PostDetail, error) {
	post, err := s.store.Posts().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	details, err := s.details(ctx, []model.Post{*post})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// List returns a page of posts, newest first.
func (s *postService) List(ctx context.Context, page, limit int) ([]model.PostDetail, error) {
	offset, size := Paginate(page, limit)
	posts, err := s.store.Posts().List(ctx, offset, size)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return s.details(ctx, posts)
}

// Search finds posts whose description contains q, ignoring case.
func (s *postService) Search(ctx context.Context, q string) ([]model.PostDetail, error) {
	posts, err := s.store.Posts().SearchByDescription(ctx, strings.TrimSpace(q))
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return s.details(ctx, posts)
}

// details resolves authors and threads for a batch of posts with one query each.
func (s *postService) details(ctx context.Context, posts []model.Post) ([]model.PostDetail, error) {
	authorIDs := make([]uuid.UUID, 0, len(posts))
	seen := make(map[uuid.UUID]bool, len(posts))
	var commentIDs []uuid.UUID
	for _, p := range posts {
		if !seen[p.AuthorID] {
			seen[p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
		commentIDs = append(commentIDs, p.Comments...)
	}

	authors, err := s.store.Users().FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve authors: %w", err)
	}
	summaries := make(map[uuid.UUID]model.UserSummary, len(authors))
	for i := range authors {
		summaries[authors[i].ID] = authors[i].Summary()
	}

	comments, err := s.store.Comments().FindByIDs(ctx, commentIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve comments: %w", err)
	}
	byID := make(map[uuid.UUID]model.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}

	out := make([]model.PostDetail, 0, len(posts))
	for _, p := range posts {
		d := model.PostDetail{
			Post:          p,
			Thread:        make([]model.Comment, 0, len(p.Comments)),
			LikesCount:    p.Likes.Len(),
			CommentsCount: p.Comments.Len(),
		}
		if author, ok := summaries[p.AuthorID]; ok {
			d.Author = &author
		}
		for _, id := range p.Comments {
			if c, ok := byID[id]; ok {
				d.Thread = append(d.Thread, c)
			}
		}
		out = append(out, d)
	}
	return out, nil
}

// Update changes description and image. Only the author may do so.
func (s *postService) Update(ctx context.Context, actorID, postID uuid.UUID, input UpdatePostInput) (*model.Post, error) {
	var description string
	if input.Description != nil {
		description = strings.TrimSpace(*input.Description)
	}
	if description == "" && input.Image == nil {
		return nil, apperrors.ErrNothingToUpdate
	}

	unlock := s.locks.Lock(postKey(postID))
	defer unlock()

	var updated *model.Post
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		post, err := tx.Posts().FindByIDForUpdate(ctx, postID)
		if err != nil {
			return err
		}
		if err := authorize(actorID, post.AuthorID); err != nil {
			return err
		}
		if description != "" {
			post.Description = description
		}
		if input.Image != nil {
			post.Image = *input.Image
		}
		if err := tx.Posts().UpdateContent(ctx, post); err != nil {
			return err
		}
		updated = post
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a post and every comment attached to it. Only the author may do so.
func (s *postService) Delete(ctx context.Context, actorID, postID uuid.UUID) error {
	unlock := s.locks.Lock(postKey(postID))
	defer unlock()

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		post, err := tx.Posts().FindByIDForUpdate(ctx, postID)
		if err != nil {
			return err
		}
		if err := authorize(actorID, post.AuthorID); err != nil {
			return err
		}
		if err := tx.Comments().DeleteByPost(ctx, postID); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		return tx.Posts().Delete(ctx, postID)
	})
	if err != nil {
		return err
	}

	publish(ctx, s.publisher, events.New(events.PostDeleted, actorID, postID))
	return nil
}

// ToggleLike flips the actor's like on the post.
func (s *postService) ToggleLike(ctx context.Context, actorID, postID uuid.UUID) (model.LikeResult, error) {
	return s.engine.TogglePostLike(ctx, postID, actorID)
}

// Like adds the actor's like and rejects duplicates.
func (s *postService) Like(ctx context.Context, actorID, postID uuid.UUID) (model.LikeResult, error) {
	return s.engine.LikePost(ctx, postID, actorID)
}

// Unlike removes the actor's like and rejects a missing one.
func (s *postService) Unlike(ctx context.Context, actorID, postID uuid.UUID) (model.LikeResult, error) {
	return s.engine.UnlikePost(ctx, postID, actorID)
}
