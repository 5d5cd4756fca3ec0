package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"tribe-backend/pkg/chain"
	"tribe-backend/pkg/utils"
)

// NonceTTL 登录 nonce 有效期
const NonceTTL = 5 * time.Minute

type pendingNonce struct {
	nonce   string
	expires time.Time
}

// nonceStore 内存中的一次性 nonce，按钱包地址保存最新一个
type nonceStore struct {
	mu      sync.Mutex
	pending map[common.Address]pendingNonce
}

func newNonceStore() *nonceStore {
	return &nonceStore{pending: make(map[common.Address]pendingNonce)}
}

// put 保存 nonce，同时清理已过期的记录
func (s *nonceStore) put(addr common.Address, nonce string, now time.Time) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	for a, p := range s.pending {
		if !now.Before(p.expires) {
			delete(s.pending, a)
		}
	}
	expires := now.Add(NonceTTL)
	s.pending[addr] = pendingNonce{nonce: nonce, expires: expires}
	return expires
}

// take 取出并删除 nonce
func (s *nonceStore) take(addr common.Address) (pendingNonce, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[addr]
	delete(s.pending, addr)
	return p, ok
}

// AuthHandler 钱包签名登录
type AuthHandler struct {
	jwt    *utils.JWTService
	nonces *nonceStore
	now    func() time.Time
}

func NewAuthHandler(jwtService *utils.JWTService) *AuthHandler {
	return &AuthHandler{jwt: jwtService, nonces: newNonceStore(), now: time.Now}
}

// WalletLoginRequest 钱包登录请求
type WalletLoginRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}

// GET /api/auth/nonce?address=0x...
func (h *AuthHandler) Nonce(w http.ResponseWriter, r *http.Request) {
	addr, ok := parseAddressParam(r.URL.Query().Get("address"))
	if !ok {
		utils.WriteValidationErrorResponse(w, "Invalid wallet address", r.URL.Query().Get("address"))
		return
	}
	nonce, err := utils.GenerateURLToken(24)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to generate nonce")
		return
	}
	expires := h.nonces.put(addr, nonce, h.now())

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"address":   addr.Hex(),
		"nonce":     nonce,
		"message":   chain.LoginMessage(addr, nonce),
		"expiresAt": expires.Unix(),
	})
}

// POST /api/auth/wallet
func (h *AuthHandler) WalletLogin(w http.ResponseWriter, r *http.Request) {
	var req WalletLoginRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	addr, ok := parseAddressParam(req.Address)
	if !ok || strings.TrimSpace(req.Signature) == "" {
		utils.WriteValidationErrorResponse(w, "address and signature are required", "")
		return
	}

	pending, ok := h.nonces.take(addr)
	if !ok || !h.now().Before(pending.expires) {
		utils.WriteUnauthorizedResponse(w, "Nonce missing or expired, request a new one")
		return
	}
	signer, err := chain.RecoverMessageSigner(chain.LoginMessage(addr, pending.nonce), req.Signature)
	if err != nil || signer != addr {
		slog.Warn("wallet login rejected", "address", addr.Hex(), "error", err)
		utils.WriteUnauthorizedResponse(w, "Signature does not match address")
		return
	}

	token, expiresAt, err := h.jwt.GenerateAccessToken(addr.Hex())
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to issue token")
		return
	}
	slog.Info("wallet signed in", "address", addr.Hex())
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"token":     token,
		"address":   addr.Hex(),
		"expiresAt": expiresAt,
	})
}
