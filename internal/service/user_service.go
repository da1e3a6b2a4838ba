package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"socialnet/internal/cache"
	apperrors "socialnet/internal/errors"
	"socialnet/internal/lock"
	"socialnet/internal/model"
	"socialnet/internal/repository"
)

// DefaultUserCacheTTL bounds how long a cached user may be served.
const DefaultUserCacheTTL = 5 * time.Minute

// UpdateUserInput holds the profile fields to change. Nil fields are left as they are.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
	Avatar   *string
}

func (in UpdateUserInput) empty() bool {
	return in.Name == nil && in.Email == nil && in.Password == nil && in.Age == nil && in.Avatar == nil
}

// UserService handles profile reads, profile edits and the follow graph.
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	Search(ctx context.Context, name string) ([]model.User, error)
	Update(ctx context.Context, actorID, targetID uuid.UUID, input UpdateUserInput) (*model.User, error)
	Follow(ctx context.Context, actorID, targetID uuid.UUID) (*model.User, error)
	Unfollow(ctx context.Context, actorID, targetID uuid.UUID) (*model.User, error)
}

type userService struct {
	store    repository.Store
	engine   *RelationshipEngine
	locks    *lock.Keyed
	cache    *cache.Client
	cacheTTL time.Duration
}

// NewUserService creates a new user service. A nil cache disables read-through caching.
func NewUserService(store repository.Store, engine *RelationshipEngine, locks *lock.Keyed, cacheClient *cache.Client, cacheTTL time.Duration) UserService {
	if locks == nil {
		locks = lock.New()
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultUserCacheTTL
	}
	return &userService{
		store:    store,
		engine:   engine,
		locks:    locks,
		cache:    cacheClient,
		cacheTTL: cacheTTL,
	}
}

func userCacheKey(id uuid.UUID) string {
	return "cache:user:" + id.String()
}

// GetUser returns a user, served from cache when possible.
func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, userCacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, userCacheKey(id), user, s.cacheTTL)
	return user, nil
}

// GetProfile returns the user with followers, following and authored posts.
func (s *userService) GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	followers, err := s.summaries(ctx, user.Followers)
	if err != nil {
		return nil, err
	}
	following, err := s.summaries(ctx, user.Following)
	if err != nil {
		return nil, err
	}
	posts, err := s.store.Posts().ListByAuthor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	return &model.Profile{
		User:           user,
		Followers:      followers,
		Following:      following,
		FollowersCount: len(followers),
		FollowingCount: len(following),
		Posts:          posts,
	}, nil
}

func (s *userService) summaries(ctx context.Context, ids model.IDList) ([]model.UserSummary, error) {
	users, err := s.store.Users().FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve users: %w", err)
	}
	out := make([]model.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summary())
	}
	return out, nil
}

// Search finds users whose name contains the query, ignoring case.
func (s *userService) Search(ctx context.Context, name string) ([]model.User, error) {
	return s.store.Users().SearchByName(ctx, strings.TrimSpace(name))
}

// Update edits a profile. Only the account owner or an admin may do so.
func (s *userService) Update(ctx context.Context, actorID, targetID uuid.UUID, input UpdateUserInput) (*model.User, error) {
	if input.empty() {
		return nil, apperrors.ErrNothingToUpdate
	}
	if input.Age != nil && *input.Age < 0 {
		return nil, apperrors.ErrInvalidAge
	}
	if actorID != targetID {
		actor, err := s.store.Users().FindByID(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !actor.IsAdmin() {
			return nil, apperrors.ErrNotAccountOwner
		}
	}

	var passwordHash string
	if input.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		passwordHash = string(hashed)
	}

	unlock := s.locks.Lock(userKey(targetID))
	defer unlock()

	var updated *model.User
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		user, err := tx.Users().FindByIDForUpdate(ctx, targetID)
		if err != nil {
			return err
		}

		if input.Email != nil {
			email := model.NormalizeEmail(*input.Email)
			if email != user.Email {
				other, err := tx.Users().FindByEmail(ctx, email)
				if err == nil && other.ID != user.ID {
					return apperrors.ErrEmailTaken
				}
				if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
					return err
				}
				user.Email = email
			}
		}
		if input.Name != nil {
			user.Name = strings.TrimSpace(*input.Name)
		}
		if input.Age != nil {
			user.Age = *input.Age
		}
		if input.Avatar != nil {
			user.Avatar = *input.Avatar
		}
		if passwordHash != "" {
			user.PasswordHash = passwordHash
		}

		if err := tx.Users().UpdateProfile(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, userCacheKey(targetID))
	return updated, nil
}

// Follow makes actorID follow targetID and returns the actor's updated record.
func (s *userService) Follow(ctx context.Context, actorID, targetID uuid.UUID) (*model.User, error) {
	user, err := s.engine.Follow(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, userCacheKey(actorID), userCacheKey(targetID))
	return user, nil
}

// Unfollow removes the follow edge and returns the actor's updated record.
func (s *userService) Unfollow(ctx context.Context, actorID, targetID uuid.UUID) (*model.User, error) {
	user, err := s.engine.Unfollow(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, userCacheKey(actorID), userCacheKey(targetID))
	return user, nil
}
