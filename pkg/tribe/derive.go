package tribe

import (
	"math/big"

	"tribe-backend/pkg/chain"
	"tribe-backend/pkg/models"
)

// TierStats are the derived per-tier values shown on tribe and owner pages.
type TierStats struct {
	Tier           models.Tier `json:"tier"`
	MaxSupply      *big.Int    `json:"maxSupply"`
	CurrentSupply  *big.Int    `json:"currentSupply"`
	Price          *big.Int    `json:"price"`
	Available      *big.Int    `json:"available"`
	SoldOut        bool        `json:"soldOut"`
	SoldPercentage int         `json:"soldPercentage"`
	Revenue        *big.Int    `json:"revenue"`
}

func orZero(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return n
}

// Derive computes the display statistics of one tier. A nil price is
// treated as zero.
func Derive(t models.Tier, maxSupply, currentSupply, price *big.Int) TierStats {
	max, cur, p := orZero(maxSupply), orZero(currentSupply), orZero(price)
	available := new(big.Int).Sub(max, cur)
	return TierStats{
		Tier:           t,
		MaxSupply:      max,
		CurrentSupply:  cur,
		Price:          p,
		Available:      available,
		SoldOut:        SoldOut(max, cur),
		SoldPercentage: SoldPercentage(cur, max),
		Revenue:        new(big.Int).Mul(p, cur),
	}
}

// SoldOut is true only for a configured tier (max > 0) with nothing left.
func SoldOut(maxSupply, currentSupply *big.Int) bool {
	max, cur := orZero(maxSupply), orZero(currentSupply)
	return max.Sign() > 0 && new(big.Int).Sub(max, cur).Sign() == 0
}

// SoldPercentage is round(current*100/max) with halves rounded up,
// clamped to [0,100], and 0 for an unconfigured tier.
func SoldPercentage(currentSupply, maxSupply *big.Int) int {
	max, cur := orZero(maxSupply), orZero(currentSupply)
	if max.Sign() <= 0 || cur.Sign() <= 0 {
		return 0
	}
	// floor((200*cur + max) / (2*max))
	num := new(big.Int).Mul(cur, big.NewInt(200))
	num.Add(num, max)
	den := new(big.Int).Mul(max, big.NewInt(2))
	pct := num.Quo(num, den)
	if pct.Cmp(big.NewInt(100)) > 0 {
		return 100
	}
	return int(pct.Int64())
}

// TotalRevenue is the list-price revenue across tiers: Σ price × current.
// It ignores marketplace resales.
func TotalRevenue(stats []TierStats) *big.Int {
	total := new(big.Int)
	for _, s := range stats {
		total.Add(total, new(big.Int).Mul(orZero(s.Price), orZero(s.CurrentSupply)))
	}
	return total
}

// TotalSupply sums the configured max supply of every tier.
func TotalSupply(stats []TierStats) *big.Int {
	total := new(big.Int)
	for _, s := range stats {
		total.Add(total, orZero(s.MaxSupply))
	}
	return total
}

// OwnerStats is the owner dashboard view of a tribe.
type OwnerStats struct {
	Tiers        []TierStats `json:"tiers"`
	TotalSold    *big.Int    `json:"totalSold"`
	TotalSupply  *big.Int    `json:"totalSupply"`
	TotalRevenue *big.Int    `json:"totalRevenue"`
}

// RevenueText formats total revenue in ether with four decimals.
func (o OwnerStats) RevenueText() string {
	return chain.FormatEtherFixed(o.TotalRevenue, 4)
}

// NewOwnerStats aggregates per-tier stats.
func NewOwnerStats(tiers []TierStats) OwnerStats {
	sold := new(big.Int)
	for _, s := range tiers {
		sold.Add(sold, orZero(s.CurrentSupply))
	}
	return OwnerStats{
		Tiers:        tiers,
		TotalSold:    sold,
		TotalSupply:  TotalSupply(tiers),
		TotalRevenue: TotalRevenue(tiers),
	}
}

// OwnerStats returns the owner view once every tier's supply is known.
func (s Snapshot) OwnerStats() (OwnerStats, bool) {
	tiers := make([]TierStats, 0, models.TierCount)
	for _, t := range models.AllTiers {
		st, ok := s.Stats(t)
		if !ok {
			return OwnerStats{}, false
		}
		tiers = append(tiers, st)
	}
	return NewOwnerStats(tiers), true
}
