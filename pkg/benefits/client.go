// Package benefits is the client side of the benefit service: it fetches a
// member's gated benefits and posts new ones on behalf of a tribe owner.
package benefits

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"tribe-backend/pkg/chain"
	"tribe-backend/pkg/models"
	"tribe-backend/pkg/tribe"
)

const defaultTimeout = 30 * time.Second

// ServiceError is a non-2xx answer from the benefit service.
type ServiceError struct {
	Status  int
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("benefit service: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("benefit service: %d: %s", e.Status, e.Message)
}

// Response is the gated view of one tribe for one user.
type Response struct {
	models.BenefitsResponse
}

// Counts parses the decimal tier counts returned by the service.
func (r Response) Counts() (models.TierCounts, error) {
	return models.ParseTierCounts(r.TierCounts)
}

// Access evaluates the tier gate on the returned counts. Unparseable counts
// lock every tier.
func (r Response) Access() tribe.Access {
	counts, err := r.Counts()
	if err != nil {
		return tribe.Gate(nil)
	}
	return tribe.Gate(&counts)
}

// Texts returns the benefit texts for one tier, never nil.
func (r Response) Texts(t models.Tier) []string {
	if texts, ok := r.Benefits[t.Key()]; ok && texts != nil {
		return texts
	}
	return []string{}
}

// NonceResponse is the sign-in challenge for one wallet.
type NonceResponse struct {
	Address   string `json:"address"`
	Nonce     string `json:"nonce"`
	Message   string `json:"message"`
	ExpiresAt int64  `json:"expiresAt"`
}

// LoginResponse carries the bearer token issued after a verified signature.
type LoginResponse struct {
	Token     string `json:"token"`
	Address   string `json:"address"`
	ExpiresAt int64  `json:"expiresAt"`
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithToken sets the bearer token sent with Post.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// Client talks to one benefit service base URL.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the bearer token currently in use.
func (c *Client) Token() string { return c.token }

// Fetch returns the tier counts of user in tribe and the benefit texts of
// every unlocked tier.
func (c *Client) Fetch(ctx context.Context, tribeAddr, user common.Address) (*Response, error) {
	q := url.Values{}
	q.Set("contract", tribeAddr.Hex())
	q.Set("address", user.Hex())

	var out Response
	if err := c.do(ctx, http.MethodGet, "/api/benefits?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if out.Benefits == nil {
		out.Benefits = models.NewBenefitsByTier()
	}
	return &out, nil
}

// Post stores text under every tier in tiers. The service inserts one record
// per tier.
func (c *Client) Post(ctx context.Context, tribeAddr common.Address, text string, tiers []models.Tier) (*models.MultiBenefitResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("benefit text is required")
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("at least one tier is required")
	}
	// Tier is a uint8, and a []uint8 would encode as a base64 string
	indexes := make([]int, len(tiers))
	for i, t := range tiers {
		indexes[i] = int(t)
	}
	body := struct {
		Tribe       string `json:"tribe"`
		BenefitText string `json:"benefit_text"`
		Tiers       []int  `json:"tiers"`
	}{tribeAddr.Hex(), text, indexes}

	var out models.MultiBenefitResponse
	if err := c.do(ctx, http.MethodPost, "/api/benefit/multi", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health returns the liveness message of the service.
func (c *Client) Health(ctx context.Context) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodGet, "/", nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Nonce requests a sign-in challenge for address.
func (c *Client) Nonce(ctx context.Context, address common.Address) (*NonceResponse, error) {
	var out envelope[NonceResponse]
	path := "/api/auth/nonce?address=" + url.QueryEscape(address.Hex())
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Login signs the service challenge with key and keeps the issued token for
// subsequent Post calls.
func (c *Client) Login(ctx context.Context, key *ecdsa.PrivateKey) (*LoginResponse, error) {
	address := crypto.PubkeyToAddress(key.PublicKey)
	challenge, err := c.Nonce(ctx, address)
	if err != nil {
		return nil, err
	}
	sig, err := chain.SignMessage(key, challenge.Message)
	if err != nil {
		return nil, err
	}
	body := map[string]string{"address": address.Hex(), "signature": sig}

	var out envelope[LoginResponse]
	if err := c.do(ctx, http.MethodPost, "/api/auth/wallet", body, &out); err != nil {
		return nil, err
	}
	c.token = out.Data.Token
	return &out.Data, nil
}

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeServiceError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeServiceError understands both the envelope error shape and the bare
// {"error": "..."} shape.
func decodeServiceError(status int, raw []byte) error {
	se := &ServiceError{Status: status, Message: http.StatusText(status)}

	var wrapped struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil || len(wrapped.Error) == 0 {
		return se
	}
	var detail struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(wrapped.Error, &detail); err == nil {
		se.Code = detail.Code
		if detail.Message != "" {
			se.Message = detail.Message
		}
		return se
	}
	var msg string
	if err := json.Unmarshal(wrapped.Error, &msg); err == nil && msg != "" {
		se.Message = msg
	}
	return se
}
