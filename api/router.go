// Package api wires the HTTP surface of the benefit service.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tribe-backend/pkg/config"
	"tribe-backend/pkg/database"
	"tribe-backend/pkg/events"
	"tribe-backend/pkg/handlers"
	customMiddleware "tribe-backend/pkg/middleware"
	"tribe-backend/pkg/utils"
)

// Deps 由进程入口显式创建并注入；路由不持有全局状态
type Deps struct {
	Pool      *database.Pool
	Chain     handlers.ChainBackend
	Publisher events.Publisher
	JWT       *utils.JWTService
	// Metrics 为 nil 时不挂载 /metrics
	Metrics *customMiddleware.Observability
}

// NewRouter 创建Chi路由器，集中管理所有API端点
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	router := chi.NewRouter()

	// 设置全局中间件
	setupMiddleware(router, cfg, deps)

	// 设置路由
	setupRoutes(router, cfg, deps)

	return router
}

// setupMiddleware 设置全局中间件
func setupMiddleware(router *chi.Mux, cfg *config.Config, deps Deps) {
	// 基础中间件
	router.Use(middleware.RequestID)
	if cfg.TrustProxy {
		router.Use(middleware.RealIP)
	}
	// Normalize path and restore scheme/host before logging and routing
	router.Use(customMiddleware.Normalize())
	router.Use(customMiddleware.Logger(cfg))
	router.Use(customMiddleware.Recovery(cfg))

	// CORS中间件
	router.Use(customMiddleware.CORS(cfg))

	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware)
	}

	// 按 IP 限流
	router.Use(customMiddleware.NewRateLimiter(cfg.RateLimitPerMinute, 0).Middleware)

	// 超时中间件（合约读取可能很慢）
	if cfg.RequestTimeout > 0 {
		router.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	// 压缩中间件
	router.Use(middleware.Compress(5))

	// 开发环境额外中间件
	if cfg.IsDevelopment() {
		router.Use(middleware.Heartbeat("/ping"))
	}
}

// setupRoutes 设置所有API路由
func setupRoutes(router *chi.Mux, cfg *config.Config, deps Deps) {
	// 创建处理器
	healthHandler := handlers.NewHealthHandler(deps.Pool)
	benefitsHandler := handlers.NewBenefitsHandler(cfg, deps.Pool, deps.Chain, deps.Publisher)
	tribesHandler := handlers.NewTribesHandler(deps.Chain, cfg.RequestTimeout)
	authHandler := handlers.NewAuthHandler(deps.JWT)

	jsonBody := []func(http.Handler) http.Handler{
		customMiddleware.ContentTypeJSON,
		customMiddleware.MaxBodySize(customMiddleware.DefaultMaxBodyBytes),
	}

	// 健康检查端点
	router.Get("/", healthHandler.Root)
	router.Get("/healthz", healthHandler.Healthz)

	if deps.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", deps.Metrics.MetricsHandler())
	}

	// API路由组
	router.Route("/api", func(r chi.Router) {
		r.Get("/benefits", benefitsHandler.GetBenefits)
		r.With(jsonBody...).
			With(customMiddleware.WalletAuth(deps.JWT, false)).
			Post("/benefit/multi", benefitsHandler.PostMultiBenefit)

		// 钱包签名登录
		r.Route("/auth", func(r chi.Router) {
			r.Get("/nonce", authHandler.Nonce)
			r.With(jsonBody...).Post("/wallet", authHandler.WalletLogin)
		})

		// 链上只读数据
		r.Route("/tribes", func(r chi.Router) {
			r.Get("/", tribesHandler.ListTribes)
			r.Get("/{address}", tribesHandler.GetTribe)
			r.Get("/{address}/listings", tribesHandler.GetListings)
		})
	})

	// 404处理
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFoundResponse(w, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
	})

	// 405处理
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponseWithCode(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path), "")
	})
}
