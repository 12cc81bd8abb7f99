package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/kcnotes/internal/metrics"
	"github.com/hitoshi/kcnotes/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	IdentityResolver  middleware.IdentityResolver
	CORSAllowedOrigin string
	Logger            *slog.Logger

	// 運用
	HealthChecker  HealthChecker
	Metrics        metrics.MetricsCollector
	MetricsHandler http.Handler

	// 認証・アカウント
	AuthService AuthServiceInterface
	UserService UserServiceInterface

	// ノート
	NoteService NoteServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Metrics → Recovery → Logging → SecurityHeaders → CORS → (保護ルートのみ) Auth
//
// Metricsを最外周に置き、panicから復旧した500も計測する。
//
// /auth/signup、/auth/signin、/health、/metrics は認証不要。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := deps.Metrics
	if collector == nil {
		collector = metrics.NopCollector{}
	}

	r.Use(metrics.NewHTTPMiddleware(collector))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.UserService)
	noteHandler := NewNoteHandler(deps.NoteService)

	// --- 認証不要のルート ---

	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker))
	}
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Post("/auth/signup", authHandler.Signup)
	r.Post("/auth/signin", authHandler.Signin)

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.IdentityResolver))

		r.Get("/auth/me", authHandler.Me)
		r.Delete("/auth/me", authHandler.DeleteMe)
		r.Patch("/auth/update", authHandler.UpdatePassword)
		r.Get("/auth/signout", authHandler.Signout)

		r.Get("/notes", noteHandler.ListNotes)
		r.Post("/notes", noteHandler.CreateNote)
		r.Get("/notes/{id}", noteHandler.GetNote)
		r.Patch("/notes/{id}", noteHandler.UpdateNote)
		r.Delete("/notes/{id}", noteHandler.DeleteNote)
	})

	return r
}
