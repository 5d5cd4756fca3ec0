package handlers

import (
	"context"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	chiRoute "github.com/go-chi/chi/v5"

	"tribe-backend/pkg/chain"
	"tribe-backend/pkg/models"
	"tribe-backend/pkg/tribe"
	"tribe-backend/pkg/utils"
)

// TribesHandler 只读的 tribe 目录、详情和市场接口
type TribesHandler struct {
	chain   ChainBackend
	timeout time.Duration
}

func NewTribesHandler(chain ChainBackend, timeout time.Duration) *TribesHandler {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &TribesHandler{chain: chain, timeout: timeout}
}

// TierView is one tier of a tribe as served over HTTP. Amounts are decimal
// strings in wei.
type TierView struct {
	Tier           models.Tier `json:"tier"`
	Name           string      `json:"name"`
	MaxSupply      string      `json:"maxSupply"`
	CurrentSupply  string      `json:"currentSupply"`
	Available      string      `json:"available"`
	Price          string      `json:"price"`
	PriceEther     string      `json:"priceEther"`
	Revenue        string      `json:"revenue"`
	SoldOut        bool        `json:"soldOut"`
	SoldPercentage int         `json:"soldPercentage"`
}

// TribeView is the body of GET /api/tribes/{address}.
type TribeView struct {
	Address           string            `json:"address"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Owner             string            `json:"owner,omitempty"`
	IsOwner           *bool             `json:"isOwner,omitempty"`
	Tiers             []TierView        `json:"tiers"`
	TotalSupply       string            `json:"totalSupply,omitempty"`
	TotalSold         string            `json:"totalSold,omitempty"`
	TotalRevenue      string            `json:"totalRevenue,omitempty"`
	TotalRevenueEther string            `json:"totalRevenueEther,omitempty"`
	Errors            map[string]string `json:"errors,omitempty"`
}

// ListingView is one purchasable listing.
type ListingView struct {
	TokenID    string `json:"tokenId"`
	Seller     string `json:"seller"`
	Price      string `json:"price"`
	PriceEther string `json:"priceEther"`
	Expiration int64  `json:"expiration"`
}

// GET /api/tribes[?creator=0x...]
func (h *TribesHandler) ListTribes(w http.ResponseWriter, r *http.Request) {
	if h.chain.Factory == nil {
		utils.WriteServiceUnavailableResponse(w, "Factory address is not configured")
		return
	}
	var creator *common.Address
	if raw := strings.TrimSpace(r.URL.Query().Get("creator")); raw != "" {
		addr, ok := parseAddressParam(raw)
		if !ok {
			utils.WriteValidationErrorResponse(w, "Invalid creator address", raw)
			return
		}
		creator = &addr
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	view := tribe.NewDirectory(h.chain.Factory).Load(ctx, creator)

	all, ok := view.All.Get()
	if !ok {
		slog.Error("tribe directory read failed", "error", view.All.Err)
		utils.WriteBadGatewayResponse(w, "Failed to fetch tribes", errString(view.All.Err))
		return
	}
	data := map[string]interface{}{"tribes": hexAddresses(all)}
	if creator != nil {
		created, ok := view.Created.Get()
		if !ok {
			utils.WriteBadGatewayResponse(w, "Failed to fetch creator tribes", errString(view.Created.Err))
			return
		}
		data["created"] = hexAddresses(created)
	}
	utils.WriteSuccessResponse(w, data)
}

// GET /api/tribes/{address}[?user=0x...]
func (h *TribesHandler) GetTribe(w http.ResponseWriter, r *http.Request) {
	addr, ok := parseAddressParam(chiRoute.URLParam(r, "address"))
	if !ok {
		utils.WriteValidationErrorResponse(w, "Invalid tribe address", chiRoute.URLParam(r, "address"))
		return
	}
	var user *common.Address
	if raw := strings.TrimSpace(r.URL.Query().Get("user")); raw != "" {
		u, ok := parseAddressParam(raw)
		if !ok {
			utils.WriteValidationErrorResponse(w, "Invalid user address", raw)
			return
		}
		user = &u
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	reader := tribe.NewReader(h.chain.OpenTribe(addr))
	snap := tribe.NewSnapshot(addr)
	failures := map[string]string{}
	fetches := reader.TribeFetches()
	tribe.Run(ctx, fetches, 0, func(u tribe.Update) {
		if u.Err != nil {
			failures[u.String()] = u.Err.Error()
		}
		snap.Apply(u)
	})
	if len(failures) == len(fetches) {
		slog.Error("tribe read failed", "tribe", addr.Hex(), "failures", len(failures))
		utils.WriteBadGatewayResponse(w, "Failed to read tribe", "every contract read failed")
		return
	}

	view := TribeView{
		Address:     addr.Hex(),
		Name:        snap.Name.Value,
		Description: snap.Description.Value,
		Tiers:       make([]TierView, 0, models.TierCount),
	}
	if owner, ok := snap.Owner.Get(); ok {
		view.Owner = owner.Hex()
		if user != nil {
			isOwner := tribe.IsOwner(snap.Owner, user)
			view.IsOwner = &isOwner
		}
	}
	for _, t := range models.AllTiers {
		if st, ok := snap.Stats(t); ok {
			view.Tiers = append(view.Tiers, newTierView(st))
		}
	}
	if stats, ok := snap.OwnerStats(); ok {
		view.TotalSupply = stats.TotalSupply.String()
		view.TotalSold = stats.TotalSold.String()
		view.TotalRevenue = stats.TotalRevenue.String()
		view.TotalRevenueEther = stats.RevenueText()
	}
	if len(failures) > 0 {
		view.Errors = failures
	}
	utils.WriteSuccessResponse(w, view)
}

// GET /api/tribes/{address}/listings
func (h *TribesHandler) GetListings(w http.ResponseWriter, r *http.Request) {
	addr, ok := parseAddressParam(chiRoute.URLParam(r, "address"))
	if !ok {
		utils.WriteValidationErrorResponse(w, "Invalid tribe address", chiRoute.URLParam(r, "address"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	listings, err := tribe.NewMarketplace(h.chain.OpenTribe(addr)).Purchasable(ctx)
	if err != nil {
		slog.Error("listing read failed", "tribe", addr.Hex(), "error", err)
		utils.WriteBadGatewayResponse(w, "Failed to fetch listings", err.Error())
		return
	}
	out := make([]ListingView, 0, len(listings))
	for _, l := range listings {
		out = append(out, ListingView{
			TokenID:    l.TokenID.String(),
			Seller:     l.Seller.Hex(),
			Price:      l.Price.String(),
			PriceEther: chain.FormatEther(l.Price),
			Expiration: l.Expiration.Int64(),
		})
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"tribe":    addr.Hex(),
		"listings": out,
	})
}

func newTierView(st tribe.TierStats) TierView {
	return TierView{
		Tier:           st.Tier,
		Name:           st.Tier.Name(),
		MaxSupply:      st.MaxSupply.String(),
		CurrentSupply:  st.CurrentSupply.String(),
		Available:      st.Available.String(),
		Price:          st.Price.String(),
		PriceEther:     chain.FormatEther(st.Price),
		Revenue:        bigString(st.Revenue),
		SoldOut:        st.SoldOut,
		SoldPercentage: st.SoldPercentage,
	}
}

func hexAddresses(addrs []common.Address) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.Hex()
	}
	return out
}

func bigString(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
