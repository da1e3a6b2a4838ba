package router

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"socialnet/docs"
	"socialnet/internal/auth"
	"socialnet/internal/config"
	"socialnet/internal/errors"
	"socialnet/internal/handler"
	"socialnet/internal/service"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	tokens *auth.JWTService,
	authService service.AuthService,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	postHandler *handler.PostHandler,
	commentHandler *handler.CommentHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/users", authHandler.Register)
	api.POST("/users/login", authHandler.Login)
	api.GET("/posts", postHandler.List)
	api.GET("/posts/search/:name", postHandler.Search)
	api.GET("/posts/:id", postHandler.Get)

	// Secured routes (valid JWT that is still held in the session ledger)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  tokens.Secret(),
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:  handler.JWTContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: "invalid or missing token",
				Code:  "UNAUTHORIZED",
			}).SetInternal(err)
		},
	}), handler.RequireSession(authService))

	// User routes
	secured.DELETE("/users/logout", authHandler.Logout)
	secured.DELETE("/users/logout/all", authHandler.LogoutAll)
	secured.GET("/users", userHandler.Profile)
	secured.GET("/users/search/:name", userHandler.Search)
	secured.GET("/users/:id", userHandler.GetUser)
	secured.PUT("/users/:id", userHandler.Update)
	secured.POST("/users/:id/follow", userHandler.Follow)
	secured.POST("/users/:id/unfollow", userHandler.Unfollow)
	secured.POST("/users/follow/:id", userHandler.Follow)
	secured.POST("/users/unfollow/:id", userHandler.Unfollow)

	// Post routes
	secured.POST("/posts", postHandler.Create)
	secured.PUT("/posts/:id", postHandler.Update)
	secured.DELETE("/posts/:id", postHandler.Delete)
	secured.POST("/posts/:id/toggleLike", postHandler.ToggleLike)
	secured.POST("/posts/like/:id", postHandler.Like)
	secured.POST("/posts/unlike/:id", postHandler.Unlike)

	// Comment routes
	secured.POST("/comments/:postId", commentHandler.Create)
	secured.PUT("/comments/:id", commentHandler.Update)
	secured.DELETE("/comments/:id", commentHandler.Delete)
	secured.POST("/comments/:id/toggleLike", commentHandler.ToggleLike)
	secured.POST("/comments/like/:id", commentHandler.Like)
	secured.POST("/comments/unlike/:id", commentHandler.Unlike)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				if v.Status >= http.StatusInternalServerError {
					level = slog.LevelError
				}
			}
			slog.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
