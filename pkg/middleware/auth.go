package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"tribe-backend/pkg/models"
	"tribe-backend/pkg/utils"
)

// ContextKey 用于在context中存储钱包信息的键
type ContextKey string

const (
	WalletContextKey ContextKey = "wallet"
)

// WalletAuth JWT钱包认证中间件；required=false 时仅在 token 有效时注入钱包
func WalletAuth(jwtService *utils.JWTService, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				if required {
					utils.WriteUnauthorizedResponse(w, "Missing authorization header")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			// 检查Bearer前缀
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				if required {
					utils.WriteUnauthorizedResponse(w, "Invalid authorization header format")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			wallet, err := jwtService.ExtractWalletFromToken(tokenString)
			if err != nil {
				if required {
					slog.Debug("wallet auth rejected", "path", r.URL.Path, "error", err)
					utils.WriteUnauthorizedResponse(w, "Invalid token: "+err.Error())
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), WalletContextKey, wallet)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetWalletFromContext 从context中获取钱包信息
func GetWalletFromContext(ctx context.Context) (*models.Wallet, bool) {
	wallet, ok := ctx.Value(WalletContextKey).(*models.Wallet)
	return wallet, ok && wallet != nil
}

// RequireWallet 要求钱包必须已认证的辅助函数
func RequireWallet(ctx context.Context) (*models.Wallet, error) {
	wallet, ok := GetWalletFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("wallet not authenticated")
	}
	return wallet, nil
}
