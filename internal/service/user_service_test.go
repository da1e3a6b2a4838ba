package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"socialnet/internal/cache"
	apperrors "socialnet/internal/errors"
	"socialnet/internal/events"
	"socialnet/internal/lock"
	"socialnet/internal/model"
	"socialnet/internal/repository"
	"socialnet/internal/testutil"
)

func newUserService(t *testing.T) (UserService, repository.Store, *miniredis.Miniredis) {
	t.Helper()
	store := testutil.NewStore(t)
	mr := miniredis.RunT(t)
	locks := lock.New()
	engine := NewRelationshipEngine(store, locks, &events.Recorder{})
	c := cache.Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return NewUserService(store, engine, locks, c, time.Minute), store, mr
}

func TestUserService_GetUserIsCached(t *testing.T) {
	svc, store, mr := newUserService(t)
	ctx := context.Background()
	ana := testutil.CreateUser(t, store, "ana")

	user, err := svc.GetUser(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Name)
	assert.True(t, mr.Exists(userCacheKey(ana.ID)))

	_, err = svc.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserService_FollowInvalidatesCache(t *testing.T) {
	svc, store, mr := newUserService(t)
	ctx := context.Background()
	ana := testutil.CreateUser(t, store, "ana")
	bob := testutil.CreateUser(t, store, "bob")

	_, err := svc.GetUser(ctx, bob.ID)
	require.NoError(t, err)

	follower, err := svc.Follow(ctx, ana.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, follower.Following.Contains(bob.ID))
	assert.False(t, mr.Exists(userCacheKey(bob.ID)))

	cached, err := svc.GetUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.IDList{ana.ID}, cached.Followers)

	_, err = svc.Unfollow(ctx, ana.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.Follow(ctx, ana.ID, ana.ID)
	assert.ErrorIs(t, err, apperrors.ErrSelfFollow)
}

func TestUserService_GetProfile(t *testing.T) {
	svc, store, _ := newUserService(t)
	ctx := context.Background()
	ana := testutil.CreateUser(t, store, "ana")
	bob := testutil.CreateUser(t, store, "bob")
	testutil.CreatePost(t, store, ana, "hello")

	_, err := svc.Follow(ctx, bob.ID, ana.ID)
	require.NoError(t, err)

	profile, err := svc.GetProfile(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, ana.ID, profile.User.ID)
	assert.Equal(t, []model.UserSummary{bob.Summary()}, profile.Followers)
	assert.Empty(t, profile.Following)
	assert.Len(t, profile.Posts, 1)
}

func TestUserService_Search(t *testing.T) {
	svc, store, _ := newUserService(t)
	testutil.CreateUser(t, store, "anabel")
	testutil.CreateUser(t, store, "bob")

	users, err := svc.Search(context.Background(), "ANA")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "anabel", users[0].Name)
}

func TestUserService_Update(t *testing.T) {
	svc, store, _ := newUserService(t)
	ctx := context.Background()
	ana := testutil.CreateUser(t, store, "ana")
	bob := testutil.CreateUser(t, store, "bob")
	admin := &model.User{Name: "root", Email: "root@example.com", PasswordHash: "x", Role: model.RoleAdmin}
	require.NoError(t, store.Users().Create(ctx, admin))

	age := 41
	negative := -2

	tests := []struct {
		name    string
		actor   uuid.UUID
		target  uuid.UUID
		input   UpdateUserInput
		wantErr error
	}{
		{name: "empty input", actor: ana.ID, target: ana.ID, input: UpdateUserInput{}, wantErr: apperrors.ErrNothingToUpdate},
		{name: "negative age", actor: ana.ID, target: ana.ID, input: UpdateUserInput{Age: &negative}, wantErr: apperrors.ErrInvalidAge},
		{name: "someone else", actor: bob.ID, target: ana.ID, input: UpdateUserInput{Name: strPtr("x")}, wantErr: apperrors.ErrNotAccountOwner},
		{name: "email taken", actor: ana.ID, target: ana.ID, input: UpdateUserInput{Email: strPtr("BOB@example.com")}, wantErr: apperrors.ErrEmailTaken},
		{name: "owner edits", actor: ana.ID, target: ana.ID, input: UpdateUserInput{Name: strPtr("Ana B"), Age: &age, Password: strPtr("s3cret")}},
		{name: "admin edits", actor: admin.ID, target: ana.ID, input: UpdateUserInput{Avatar: strPtr("ana.png")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(ctx, tt.actor, tt.target, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	stored, err := store.Users().FindByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana B", stored.Name)
	assert.Equal(t, 41, stored.Age)
	assert.Equal(t, "ana.png", stored.Avatar)
	assert.Equal(t, "ana@example.com", stored.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret")))
}
