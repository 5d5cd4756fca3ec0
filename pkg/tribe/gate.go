package tribe

import (
	"github.com/ethereum/go-ethereum/common"

	"tribe-backend/pkg/models"
)

// Access is the unlocked state of each tier for one member.
type Access [models.TierCount]bool

// Has reports whether tier t is unlocked.
func (a Access) Has(t models.Tier) bool {
	return t.Valid() && a[t]
}

// Any reports whether at least one tier is unlocked.
func (a Access) Any() bool {
	return a[models.TierBronze] || a[models.TierSilver] || a[models.TierGold]
}

// Gate is the single tier-gate rule: a tier is unlocked iff the member
// holds at least one token of it. Unknown counts lock everything.
func Gate(counts *models.TierCounts) Access {
	var access Access
	if counts == nil {
		return access
	}
	for _, t := range models.AllTiers {
		access[t] = counts.Count(t).Sign() > 0
	}
	return access
}

// GateView is what a front end needs to render gated content.
type GateView struct {
	Connected bool
	Loading   bool
	Access    Access
}

// NeedsConnect reports whether the front end should prompt for a wallet
// instead of rendering gated content.
func (g GateView) NeedsConnect() bool { return !g.Connected }

// Evaluate applies Gate to a possibly in-flight member tier read. It
// fails closed while disconnected or loading.
func Evaluate(connected bool, counts Field[models.TierCounts]) GateView {
	if !connected {
		return GateView{}
	}
	c, ok := counts.Get()
	if !ok {
		return GateView{Connected: true, Loading: true}
	}
	return GateView{Connected: true, Access: Gate(&c)}
}

// IsOwner reports whether user is the tribe owner. Addresses compare by
// value, so hex letter case does not matter.
func IsOwner(owner Field[common.Address], user *common.Address) bool {
	o, ok := owner.Get()
	if !ok || user == nil || o == (common.Address{}) {
		return false
	}
	return o == *user
}
