package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/liftlog/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBが実装する。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	HTTPMetrics       middleware.HTTPMetrics

	// ヘルスチェック・メトリクス公開
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// ドメインサービス
	UserService    UserServiceInterface
	EntryService   EntryServiceInterface
	SummaryService SummaryServiceInterface

	// 集計レイテンシ記録
	SummaryMetrics SummaryMetrics

	// 記録一覧の最大取得件数
	QueryMaxEntries int
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics → RateLimit(APIのみ)
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}

	userHandler := NewUserHandler(deps.UserService)
	entryHandler := NewEntryHandler(deps.EntryService, deps.QueryMaxEntries)
	summaryHandler := NewSummaryHandler(deps.SummaryService, deps.SummaryMetrics)

	// --- 運用系ルート（レート制限の外） ---

	r.Get("/health", healthHandler(deps.HealthChecker))

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- クエリAPI ---

	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		r.Route("/api/users/{id}", func(r chi.Router) {
			r.Get("/", userHandler.GetUser)
			r.Get("/entries", entryHandler.ListEntries)
			r.Get("/summary/{kind}", summaryHandler.GetSummary)
		})
	})

	return r
}

// healthHandler はヘルスチェックハンドラーを返す。
// ストレージに到達できない場合は503を返す。
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
				return
			}
		}

		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
