package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialnet/internal/auth"
	"socialnet/internal/config"
	"socialnet/internal/errors"
	"socialnet/internal/events"
	"socialnet/internal/handler"
	"socialnet/internal/lock"
	"socialnet/internal/model"
	"socialnet/internal/service"
	"socialnet/internal/testutil"
)

const testSecret = "test-secret"

type testServer struct {
	e      *echo.Echo
	events *events.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := testutil.NewStore(t)
	locks := lock.New()
	rec := &events.Recorder{}
	tokens := auth.NewJWTService(testSecret, time.Hour)
	ledger := auth.NewStoreLedger(store, tokens, locks, 3)
	engine := service.NewRelationshipEngine(store, locks, rec)

	authService := service.NewAuthService(store.Users(), ledger, rec)
	e := echo.New()
	Register(
		e,
		&config.Config{},
		tokens,
		authService,
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(service.NewUserService(store, engine, locks, nil, 0)),
		handler.NewPostHandler(service.NewPostService(store, engine, locks, rec)),
		handler.NewCommentHandler(service.NewCommentService(store, engine, locks, rec)),
	)
	return &testServer{e: e, events: rec}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (s *testServer) register(t *testing.T, name string) (model.User, string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/users", "", handler.RegisterRequest{
		Name: name, Email: name + "@example.com", Password: "password123", Age: 30,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp handler.AuthResponse
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return *resp.User, resp.Token
}

func (s *testServer) login(t *testing.T, name string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/users/login", "", handler.LoginRequest{
		Email: name + "@example.com", Password: "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp handler.AuthResponse
	decode(t, rec, &resp)
	return resp.Token
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	user, token := s.register(t, "ana")
	assert.Equal(t, "ana@example.com", user.Email)

	rec := s.do(t, http.MethodGet, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile model.Profile
	decode(t, rec, &profile)
	assert.Equal(t, user.ID, profile.User.ID)

	rec = s.do(t, http.MethodPost, "/api/users", "", handler.RegisterRequest{
		Name: "ana", Email: "ANA@example.com", Password: "password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/users", "", map[string]string{"name": "x", "email": "not-an-email", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var errResp errors.ErrorResponse
	decode(t, rec, &errResp)
	assert.Equal(t, "VALIDATION_ERROR", errResp.Code)

	rec = s.do(t, http.MethodPost, "/api/users/login", "", handler.LoginRequest{Email: "ana@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionCap(t *testing.T) {
	s := newTestServer(t)
	_, first := s.register(t, "ana")
	tokens := []string{first}
	for i := 0; i < 4; i++ {
		tokens = append(tokens, s.login(t, "ana"))
	}

	for i, token := range tokens {
		rec := s.do(t, http.MethodGet, "/api/users", token, nil)
		if i < 2 {
			assert.Equal(t, http.StatusUnauthorized, rec.Code, "token %d should be evicted", i)
		} else {
			assert.Equal(t, http.StatusOK, rec.Code, "token %d should be live", i)
		}
	}
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register(t, "ana")
	other := s.login(t, "ana")

	rec := s.do(t, http.MethodDelete, "/api/users/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/users", token, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/users", other, nil).Code)

	rec = s.do(t, http.MethodDelete, "/api/users/logout/all", other, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/users", other, nil).Code)
}

func TestSecuredRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/users", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/users", "garbage", nil).Code)

	foreign, err := auth.NewJWTService("other-secret", time.Hour).GenerateToken(uuid.New(), "x@example.com", "user")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/users", foreign, nil).Code)

	// a well-signed token that was never issued through the ledger
	forged, err := auth.NewJWTService(testSecret, time.Hour).GenerateToken(uuid.New(), "x@example.com", "user")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/users", forged, nil).Code)
}

func TestFollowRoutes(t *testing.T) {
	s := newTestServer(t)
	ana, anaToken := s.register(t, "ana")
	bob, _ := s.register(t, "bob")

	rec := s.do(t, http.MethodPost, "/api/users/"+bob.ID.String()+"/follow", anaToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var follow handler.FollowResponse
	decode(t, rec, &follow)
	assert.Equal(t, model.IDList{bob.ID}, follow.Following)

	rec = s.do(t, http.MethodPost, "/api/users/follow/"+bob.ID.String(), anaToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var errResp errors.ErrorResponse
	decode(t, rec, &errResp)
	assert.Equal(t, "ALREADY_FOLLOWING", errResp.Code)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/users/"+ana.ID.String()+"/follow", anaToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/users/"+uuid.NewString()+"/follow", anaToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/users/not-a-uuid/follow", anaToken, nil).Code)

	rec = s.do(t, http.MethodGet, "/api/users/"+bob.ID.String(), anaToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.User
	decode(t, rec, &got)
	assert.Equal(t, model.IDList{ana.ID}, got.Followers)

	rec = s.do(t, http.MethodPost, "/api/users/unfollow/"+bob.ID.String(), anaToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &follow)
	assert.Empty(t, follow.Following)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/users/"+bob.ID.String()+"/unfollow", anaToken, nil).Code)
}

func TestUserRoutes(t *testing.T) {
	s := newTestServer(t)
	ana, anaToken := s.register(t, "ana")
	_, bobToken := s.register(t, "bob")

	rec := s.do(t, http.MethodGet, "/api/users/search/AN", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []model.User
	decode(t, rec, &users)
	require.Len(t, users, 1)
	assert.Equal(t, ana.ID, users[0].ID)

	name := "Ana Maria"
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPut, "/api/users/"+ana.ID.String(), bobToken, handler.UpdateUserRequest{Name: &name}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/api/users/"+ana.ID.String(), anaToken, handler.UpdateUserRequest{}).Code)

	rec = s.do(t, http.MethodPut, "/api/users/"+ana.ID.String(), anaToken, handler.UpdateUserRequest{Name: &name})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated model.User
	decode(t, rec, &updated)
	assert.Equal(t, "Ana Maria", updated.Name)
}

func TestPostAndCommentRoutes(t *testing.T) {
	s := newTestServer(t)
	_, anaToken := s.register(t, "ana")
	_, bobToken := s.register(t, "bob")

	rec := s.do(t, http.MethodPost, "/api/posts", anaToken, handler.CreatePostRequest{Description: "hello world"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post model.Post
	decode(t, rec, &post)
	postPath := "/api/posts/" + post.ID.String()

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/posts", anaToken, handler.CreatePostRequest{}).Code)

	edited := "edited"
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPut, postPath, bobToken, handler.UpdatePostRequest{Description: &edited}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, postPath, anaToken, handler.UpdatePostRequest{}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPut, postPath, anaToken, handler.UpdatePostRequest{Description: &edited}).Code)

	rec = s.do(t, http.MethodPost, postPath+"/toggleLike", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var like model.LikeResult
	decode(t, rec, &like)
	assert.Equal(t, model.LikeResult{Liked: true, LikesCount: 1}, like)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/posts/like/"+post.ID.String(), bobToken, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/posts/unlike/"+post.ID.String(), bobToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/posts/"+uuid.NewString()+"/toggleLike", bobToken, nil).Code)

	rec = s.do(t, http.MethodPost, "/api/comments/"+post.ID.String(), bobToken, handler.CreateCommentRequest{Content: "nice"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var comment model.Comment
	decode(t, rec, &comment)
	commentPath := "/api/comments/" + comment.ID.String()

	rec = s.do(t, http.MethodPost, commentPath+"/toggleLike", anaToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/comments/like/"+comment.ID.String(), anaToken, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/comments/unlike/"+comment.ID.String(), anaToken, nil).Code)

	content := "very nice"
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPut, commentPath, anaToken, handler.UpdateCommentRequest{Content: &content}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPut, commentPath, bobToken, handler.UpdateCommentRequest{Content: &content}).Code)

	rec = s.do(t, http.MethodGet, postPath, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail model.PostDetail
	decode(t, rec, &detail)
	assert.Equal(t, "edited", detail.Description)
	require.Len(t, detail.Thread, 1)
	assert.Equal(t, "very nice", detail.Thread[0].Content)
	require.NotNil(t, detail.Author)
	assert.Equal(t, "ana", detail.Author.Name)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, commentPath, anaToken, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, commentPath, bobToken, nil).Code)

	rec = s.do(t, http.MethodGet, "/api/posts?page=1&limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page []model.PostDetail
	decode(t, rec, &page)
	require.Len(t, page, 1)
	assert.Empty(t, page[0].Comments)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/posts?page=abc", "", nil).Code)

	rec = s.do(t, http.MethodGet, "/api/posts/search/EDIT", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &page)
	assert.Len(t, page, 1)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, postPath, bobToken, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, postPath, anaToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, postPath, "", nil).Code)

	assert.Contains(t, s.events.Types(), events.PostDeleted)
}
