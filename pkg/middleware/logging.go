package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"tribe-backend/pkg/config"
)

// Logger 创建日志中间件：开发环境使用 chi 默认日志，其余环境输出结构化日志
func Logger(cfg *config.Config) func(http.Handler) http.Handler {
	if cfg.IsDevelopment() {
		return middleware.Logger
	}
	return StructuredLogger(slog.Default())
}

// StructuredLogger 每个请求一行 JSON 日志
func StructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			wallet := "anonymous"
			if wt, ok := GetWalletFromContext(r.Context()); ok {
				wallet = wt.Address
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "http request",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("wallet", wallet),
				slog.String("ip", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
			)
		})
	}
}
