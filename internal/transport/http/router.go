package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-movie-api/internal/application/asset"
	"github.com/go-movie-api/internal/application/auth"
	commentapp "github.com/go-movie-api/internal/application/comment"
	fileapp "github.com/go-movie-api/internal/application/file"
	historyapp "github.com/go-movie-api/internal/application/history"
	movieapp "github.com/go-movie-api/internal/application/movie"
	"github.com/go-movie-api/internal/application/user"
	"github.com/go-movie-api/internal/config"
	"github.com/go-movie-api/internal/domain"
	"github.com/go-movie-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-movie-api/internal/infrastructure/jwt"
	s3infra "github.com/go-movie-api/internal/infrastructure/s3"
	"github.com/go-movie-api/internal/infrastructure/smtp"
	"github.com/go-movie-api/internal/infrastructure/sns"
	"github.com/go-movie-api/internal/otp"
	"github.com/go-movie-api/internal/transport/http/handler"
	appmiddleware "github.com/go-movie-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    *dynamo.UserRepo
	MovieRepo   *dynamo.MovieRepo
	CommentRepo *dynamo.CommentRepo
	HistoryRepo *dynamo.HistoryRepo
	FileRepo    *dynamo.FileRepo
	S3Store     *s3infra.Store
	Registry    *otp.Registry
	Mailer      smtp.Mailer
	SMSSender   sns.SMSSender
	JWTProvider *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10, applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	assets := asset.NewLifecycle(deps.S3Store, cfg.DefaultProfileKey)

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:      deps.UserRepo,
		Registry:      deps.Registry,
		Mailer:        deps.Mailer,
		SMSSender:     deps.SMSSender,
		JWTProvider:   deps.JWTProvider,
		NotifyTimeout: cfg.NotifyTimeout,
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:          deps.UserRepo,
		Assets:            assets,
		DefaultProfileKey: cfg.DefaultProfileKey,
	})
	movieSvc := movieapp.NewService(movieapp.ServiceDeps{
		MovieRepo: deps.MovieRepo,
		Assets:    assets,
	})
	commentSvc := commentapp.NewService(commentapp.ServiceDeps{
		CommentRepo: deps.CommentRepo,
		MovieRepo:   deps.MovieRepo,
		UserRepo:    deps.UserRepo,
	})
	historySvc := historyapp.NewService(historyapp.ServiceDeps{
		HistoryRepo: deps.HistoryRepo,
		MovieRepo:   deps.MovieRepo,
	})
	fileSvc := fileapp.NewService(deps.S3Store, deps.FileRepo)

	healthH := handler.NewHealthHandler()
	sessionH := handler.NewSessionHandler(authSvc)
	pwH := handler.NewPasswordRecoveryHandler(authSvc)
	userH := handler.NewUserHandler(userSvc, fileSvc)
	movieH := handler.NewMovieHandler(movieSvc)
	commentH := handler.NewCommentHandler(commentSvc)
	historyH := handler.NewHistoryHandler(historySvc)
	fileH := handler.NewFileHandler(fileSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)
		r.With(sensitiveRL.Limit).Post("/password-recovery/{action}", pwH.Action)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/users/{id}", userH.Get)
			r.Put("/users/profile", userH.UpdateProfile)

			r.Get("/movies", movieH.List)
			r.Get("/movies/{id}", movieH.Get)
			r.Get("/movies/{id}/comments", commentH.ListByMovie)
			r.Post("/comments", commentH.Create)

			r.Post("/history", historyH.Record)
			r.Get("/history", historyH.List)
			r.Delete("/history", historyH.Clear)
			r.Delete("/history/{id}", historyH.Delete)

			r.Post("/files/s3", fileH.Upload)
			r.Post("/files/s3/base64", fileH.UploadBase64)
			r.Get("/files/s3/{id}", fileH.Download)
			r.Get("/files/s3/{id}/url", fileH.DownloadURL)
			r.Delete("/files/s3/{id}", fileH.Delete)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)
				r.Put("/users/{id}", userH.Update)
				r.Delete("/users/{id}", userH.Delete)

				r.Post("/movies", movieH.Create)
				r.Put("/movies/{id}", movieH.Update)
				r.Delete("/movies/{id}", movieH.Delete)
			})
		})
	})

	return r
}
