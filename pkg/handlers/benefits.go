package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"tribe-backend/pkg/config"
	"tribe-backend/pkg/database"
	"tribe-backend/pkg/events"
	"tribe-backend/pkg/middleware"
	"tribe-backend/pkg/models"
	"tribe-backend/pkg/tribe"
	"tribe-backend/pkg/utils"
)

// BenefitsHandler 处理 benefit 查询与发布
type BenefitsHandler struct {
	config    *config.Config
	store     database.BenefitStore
	chain     ChainBackend
	publisher events.Publisher
	now       func() time.Time
}

func NewBenefitsHandler(cfg *config.Config, store database.BenefitStore, chain ChainBackend, publisher events.Publisher) *BenefitsHandler {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &BenefitsHandler{config: cfg, store: store, chain: chain, publisher: publisher, now: time.Now}
}

// GET /api/benefits?contract=<tribe>&address=<user>
func (h *BenefitsHandler) GetBenefits(w http.ResponseWriter, r *http.Request) {
	rawContract := strings.TrimSpace(r.URL.Query().Get("contract"))
	rawUser := strings.TrimSpace(r.URL.Query().Get("address"))
	if rawContract == "" || rawUser == "" {
		utils.WriteErrorResponseWithCode(w, http.StatusBadRequest, "BAD_REQUEST",
			"Both contract address and user address are required",
			"example: /api/benefits?contract=0x...&address=0x...")
		return
	}
	contract, ok := parseAddressParam(rawContract)
	if !ok {
		utils.WriteValidationErrorResponse(w, "Invalid contract address", rawContract)
		return
	}
	user, ok := parseAddressParam(rawUser)
	if !ok {
		utils.WriteValidationErrorResponse(w, "Invalid user address", rawUser)
		return
	}

	counts, err := h.chain.OpenTribe(contract).MemberTiers(r.Context(), user)
	if err != nil {
		slog.Error("member tier read failed", "tribe", contract.Hex(), "user", user.Hex(), "error", err)
		utils.WriteBadGatewayResponse(w, "Failed to fetch member tiers", err.Error())
		return
	}
	slog.Debug("member tier counts", "tribe", contract.Hex(), "user", user.Hex(), "counts", counts.Strings())

	access := tribe.Gate(&counts)
	var unlocked []models.Tier
	for _, t := range models.AllTiers {
		if access.Has(t) {
			unlocked = append(unlocked, t)
		}
	}

	benefits := models.NewBenefitsByTier()
	if len(unlocked) > 0 {
		found, err := h.store.FindBenefits(r.Context(), contract.Hex(), unlocked)
		if err != nil {
			slog.Error("benefit lookup failed", "tribe", contract.Hex(), "error", err)
			utils.WriteInternalServerErrorResponse(w, "Failed to fetch benefits")
			return
		}
		benefits = database.GroupByTier(found, unlocked)
	}

	utils.WriteRawJSON(w, http.StatusOK, models.BenefitsResponse{
		Tribe:      models.TribeRef{Address: rawContract},
		TierCounts: counts.Strings(),
		Benefits:   benefits,
	})
}

// POST /api/benefit/multi
func (h *BenefitsHandler) PostMultiBenefit(w http.ResponseWriter, r *http.Request) {
	var req models.MultiBenefitRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body: "+err.Error())
		return
	}

	text := strings.TrimSpace(req.BenefitText)
	if strings.TrimSpace(req.Tribe) == "" || text == "" || len(req.Tiers) == 0 {
		utils.WriteValidationErrorResponse(w, "Missing required fields",
			`required: tribe (contract address), benefit_text (string), tiers (array of tier numbers, e.g. [0, 2])`)
		return
	}
	tribeAddr, ok := parseAddressParam(req.Tribe)
	if !ok {
		utils.WriteValidationErrorResponse(w, "Invalid tribe address", req.Tribe)
		return
	}
	tiers, err := parseTiers(req.Tiers)
	if err != nil {
		utils.WriteValidationErrorResponse(w, "Invalid tier value", err.Error())
		return
	}

	author, ok := h.authorize(w, r, tribeAddr)
	if !ok {
		return
	}

	results := make([]models.InsertResult, 0, len(tiers))
	for _, t := range tiers {
		b := &models.Benefit{
			Tribe:       tribeAddr.Hex(),
			BenefitText: req.BenefitText,
			Tier:        t,
		}
		// 每个 tier 独立写入；失败不回滚已写入的记录
		if err := h.store.InsertBenefit(r.Context(), b); err != nil {
			slog.Error("benefit insert failed", "tribe", b.Tribe, "tier", t.Name(), "inserted", len(results), "error", err)
			utils.WriteErrorResponseWithCode(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR",
				"Failed to insert benefits",
				fmt.Sprintf("inserted %d of %d tiers before failure", len(results), len(tiers)))
			return
		}
		results = append(results, models.InsertResult{Tier: t, InsertedID: b.ID})
		h.publish(r, *b, author)
	}

	slog.Info("benefits added", "tribe", tribeAddr.Hex(), "tiers", len(results))
	utils.WriteRawJSON(w, http.StatusOK, models.MultiBenefitResponse{
		Success: true,
		Message: "Benefits added for all specified tiers",
		Results: results,
	})
}

// authorize 开启 REQUIRE_OWNER_AUTH 时，只有 tribe owner 可以发布
func (h *BenefitsHandler) authorize(w http.ResponseWriter, r *http.Request, tribeAddr common.Address) (string, bool) {
	wallet, authenticated := middleware.GetWalletFromContext(r.Context())
	if !h.config.RequireOwnerAuth {
		if authenticated {
			return wallet.Address, true
		}
		return "", true
	}
	if !authenticated {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return "", false
	}
	caller, ok := parseAddressParam(wallet.Address)
	if !ok {
		utils.WriteUnauthorizedResponse(w, "Invalid wallet in token")
		return "", false
	}
	owner, err := h.chain.ownerOf(r.Context(), tribeAddr)
	if err != nil {
		slog.Error("owner read failed", "tribe", tribeAddr.Hex(), "error", err)
		utils.WriteBadGatewayResponse(w, "Failed to read tribe owner", err.Error())
		return "", false
	}
	if !tribe.IsOwner(tribe.Field[common.Address]{Value: owner, State: tribe.FieldReady}, &caller) {
		utils.WriteForbiddenResponse(w, "Only the tribe owner can post benefits")
		return "", false
	}
	return caller.Hex(), true
}

func (h *BenefitsHandler) publish(r *http.Request, b models.Benefit, author string) {
	ev := events.NewBenefitCreated(b, author, h.now())
	if err := h.publisher.Publish(r.Context(), ev.Key(), ev); err != nil {
		slog.Warn("benefit event not published", "benefit_id", b.ID, "error", err)
	}
}

// parseTiers 只接受 JSON 整数 0/1/2；字符串、小数、null 一律拒绝。重复的 tier 只写一次
func parseTiers(raw []json.RawMessage) ([]models.Tier, error) {
	seen := make(map[models.Tier]bool, len(raw))
	tiers := make([]models.Tier, 0, len(raw))
	for i, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || bytes.Equal(item, []byte("null")) {
			return nil, fmt.Errorf("tiers[%d]: each tier must be 0 (Bronze), 1 (Silver), or 2 (Gold)", i)
		}
		var n int64
		if err := json.Unmarshal(item, &n); err != nil {
			return nil, fmt.Errorf("tiers[%d]: %s is not an integer; each tier must be 0 (Bronze), 1 (Silver), or 2 (Gold)", i, item)
		}
		t, err := models.ParseTier(n)
		if err != nil {
			return nil, fmt.Errorf("tiers[%d]: %w", i, err)
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		tiers = append(tiers, t)
	}
	return tiers, nil
}
