package service

import (
	"context"

	"github.com/google/uuid"

	apperrors "socialnet/internal/errors"
	"socialnet/internal/events"
	"socialnet/internal/lock"
	"socialnet/internal/model"
	"socialnet/internal/repository"
)

// RelationshipEngine keeps mirrored edges consistent: follower/following pairs,
// like sets and post/comment membership.
//
// Every mutation holds the in-process lock of each record it touches and runs in
// one store transaction with row locks, so either both sides of an edge change or
// neither does.
type RelationshipEngine struct {
	store     repository.Store
	locks     *lock.Keyed
	publisher events.Publisher
}

// NewRelationshipEngine creates the engine.
func NewRelationshipEngine(store repository.Store, locks *lock.Keyed, publisher events.Publisher) *RelationshipEngine {
	if locks == nil {
		locks = lock.New()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &RelationshipEngine{store: store, locks: locks, publisher: publisher}
}

// CanMutate reports whether actorID may change or delete content written by authorID.
func CanMutate(actorID, authorID uuid.UUID) bool {
	return actorID == authorID
}

func authorize(actorID, authorID uuid.UUID) error {
	if !CanMutate(actorID, authorID) {
		return apperrors.ErrNotAuthor
	}
	return nil
}

// Follow adds targetID to the follower's following set and followerID to the
// target's followers set. It returns the updated follower.
func (e *RelationshipEngine) Follow(ctx context.Context, followerID, targetID uuid.UUID) (*model.User, error) {
	follower, err := e.mutatePair(ctx, followerID, targetID, func(follower, target *model.User) error {
		if !follower.Following.Add(targetID) {
			return apperrors.ErrAlreadyFollowing
		}
		target.Followers.Add(followerID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, e.publisher, events.New(events.UserFollowed, followerID, targetID))
	return follower, nil
}

// Unfollow removes both mirrored entries. It returns the updated follower.
func (e *RelationshipEngine) Unfollow(ctx context.Context, followerID, targetID uuid.UUID) (*model.User, error) {
	follower, err := e.mutatePair(ctx, followerID, targetID, func(follower, target *model.User) error {
		if !follower.Following.Remove(targetID) {
			return apperrors.ErrNotFollowing
		}
		target.Followers.Remove(followerID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, e.publisher, events.New(events.UserUnfollowed, followerID, targetID))
	return follower, nil
}

func (e *RelationshipEngine) mutatePair(ctx context.Context, followerID, targetID uuid.UUID, fn func(follower, target *model.User) error) (*model.User, error) {
	if followerID == targetID {
		return nil, apperrors.ErrSelfFollow
	}

	unlock := e.locks.Lock(userKey(followerID), userKey(targetID))
	defer unlock()

	var follower *model.User
	err := e.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		f, t, err := lockUsers(ctx, tx, followerID, targetID)
		if err != nil {
			return err
		}
		if err := fn(f, t); err != nil {
			return err
		}
		if err := tx.Users().UpdateEdges(ctx, f); err != nil {
			return err
		}
		if err := tx.Users().UpdateEdges(ctx, t); err != nil {
			return err
		}
		follower = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return follower, nil
}

// lockUsers row-locks both users in id order so concurrent opposite follows
// cannot deadlock in the database.
func lockUsers(ctx context.Context, tx repository.Store, a, b uuid.UUID) (*model.User, *model.User, error) {
	first, second := a, b
	if b.String() < a.String() {
		first, second = b, a
	}
	u1, err := tx.Users().FindByIDForUpdate(ctx, first)
	if err != nil {
		return nil, nil, err
	}
	u2, err := tx.Users().FindByIDForUpdate(ctx, second)
	if err != nil {
		return nil, nil, err
	}
	if first == a {
		return u1, u2, nil
	}
	return u2, u1, nil
}

type likeMode int

const (
	likeToggle likeMode = iota
	likeAdd
	likeRemove
)

func applyLike(likes *model.IDList, actorID uuid.UUID, mode likeMode) (bool, error) {
	switch mode {
	case likeAdd:
		if !likes.Add(actorID) {
			return true, apperrors.ErrAlreadyLiked
		}
		return true, nil
	case likeRemove:
		if !likes.Remove(actorID) {
			return false, apperrors.ErrNotLiked
		}
		return false, nil
	default:
		if likes.Remove(actorID) {
			return false, nil
		}
		likes.Add(actorID)
		return true, nil
	}
}

// TogglePostLike flips actorID's membership in the post's like set.
func (e *RelationshipEngine) TogglePostLike(ctx context.Context, postID, actorID uuid.UUID) (model.LikeResult, error) {
	return e.postLike(ctx, postID, actorID, likeToggle)
}

// LikePost adds a like and fails with ErrAlreadyLiked on a duplicate.
func (e *RelationshipEngine) LikePost(ctx context.Context, postID, actorID uuid.UUID) (model.LikeResult, error) {
	return e.postLike(ctx, postID, actorID, likeAdd)
}

// UnlikePost removes a like and fails with ErrNotLiked when absent.
func (e *RelationshipEngine) UnlikePost(ctx context.Context, postID, actorID uuid.UUID) (model.LikeResult, error) {
	return e.postLike(ctx, postID, actorID, likeRemove)
}

func (e *RelationshipEngine) postLike(ctx context.Context, postID, actorID uuid.UUID, mode likeMode) (model.LikeResult, error) {
	unlock := e.locks.Lock(postKey(postID))
	defer unlock()

	var result model.LikeResult
	err := e.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		post, err := tx.Posts().FindByIDForUpdate(ctx, postID)
		if err != nil {
			return err
		}
		liked, err := applyLike(&post.Likes, actorID, mode)
		if err != nil {
			return err
		}
		if err := tx.Posts().UpdateLikes(ctx, postID, post.Likes); err != nil {
			return err
		}
		result = model.LikeResult{Liked: liked, LikesCount: post.Likes.Len()}
		return nil
	})
	if err != nil {
		return model.LikeResult{}, err
	}

	eventType := events.PostUnliked
	if result.Liked {
		eventType = events.PostLiked
	}
	event := events.New(eventType, actorID, postID)
	event.Count = result.LikesCount
	publish(ctx, e.publisher, event)
	return result, nil
}

// ToggleCommentLike flips actorID's membership in the comment's like set.
func (e *RelationshipEngine) ToggleCommentLike(ctx context.Context, commentID, actorID uuid.UUID) (model.LikeResult, error) {
	return e.commentLike(ctx, commentID, actorID, likeToggle)
}

// LikeComment adds a like and fails with ErrAlreadyLiked on a duplicate.
func (e *RelationshipEngine) LikeComment(ctx context.Context, commentID, actorID uuid.UUID) (model.LikeResult, error) {
	return e.commentLike(ctx, commentID, actorID, likeAdd)
}

// UnlikeComment removes a like and fails with ErrNotLiked when absent.
func (e *RelationshipEngine) UnlikeComment(ctx context.Context, commentID, actorID uuid.UUID) (model.LikeResult, error) {
	return e.commentLike(ctx, commentID, actorID, likeRemove)
}

func (e *RelationshipEngine) commentLike(ctx context.Context, commentID, actorID uuid.UUID, mode likeMode) (model.LikeResult, error) {
	unlock := e.locks.Lock(commentKey(commentID))
	defer unlock()

	var result model.LikeResult
	err := e.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		comment, err := tx.Comments().FindByIDForUpdate(ctx, commentID)
		if err != nil {
			return err
		}
		liked, err := applyLike(&comment.Likes, actorID, mode)
		if err != nil {
			return err
		}
		if err := tx.Comments().UpdateLikes(ctx, commentID, comment.Likes); err != nil {
			return err
		}
		result = model.LikeResult{Liked: liked, LikesCount: comment.Likes.Len()}
		return nil
	})
	if err != nil {
		return model.LikeResult{}, err
	}

	eventType := events.CommentUnliked
	if result.Liked {
		eventType = events.CommentLiked
	}
	event := events.New(eventType, actorID, commentID)
	event.Count = result.LikesCount
	publish(ctx, e.publisher, event)
	return result, nil
}

// AttachComment appends commentID to the post's comment sequence. It must run inside
// the transaction that creates the comment; the caller holds the post lock.
func (e *RelationshipEngine) AttachComment(ctx context.Context, tx repository.Store, postID, commentID uuid.UUID) error {
	post, err := tx.Posts().FindByIDForUpdate(ctx, postID)
	if err != nil {
		return err
	}
	if !post.Comments.Add(commentID) {
		return nil
	}
	return tx.Posts().UpdateComments(ctx, postID, post.Comments)
}

// DetachComment removes commentID from the post's comment sequence. It must run inside
// the transaction that deletes the comment; the caller holds the post lock.
func (e *RelationshipEngine) DetachComment(ctx context.Context, tx repository.Store, postID, commentID uuid.UUID) error {
	post, err := tx.Posts().FindByIDForUpdate(ctx, postID)
	if err != nil {
		return err
	}
	if !post.Comments.Remove(commentID) {
		return nil
	}
	return tx.Posts().UpdateComments(ctx, postID, post.Comments)
}
