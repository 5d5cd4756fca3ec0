package models

import (
	"fmt"
	"math/big"
)

// Tier is a membership level within a tribe. The numeric value is the
// index used by every contract call and by the benefit store.
type Tier uint8

const (
	TierBronze Tier = 0
	TierSilver Tier = 1
	TierGold   Tier = 2
)

// TierCount is the fixed number of tiers per tribe.
const TierCount = 3

// AllTiers lists tiers in contract array order.
var AllTiers = [TierCount]Tier{TierBronze, TierSilver, TierGold}

// Valid reports whether t is one of the three configured tiers.
func (t Tier) Valid() bool {
	return t <= TierGold
}

// Name returns the display name of the tier.
func (t Tier) Name() string {
	switch t {
	case TierBronze:
		return "Bronze"
	case TierSilver:
		return "Silver"
	case TierGold:
		return "Gold"
	default:
		return fmt.Sprintf("Tier(%d)", uint8(t))
	}
}

func (t Tier) String() string { return t.Name() }

// Key returns the JSON object key used for the tier ("0", "1", "2").
func (t Tier) Key() string {
	return fmt.Sprintf("%d", uint8(t))
}

// BigInt returns the tier as a uint256 call argument.
func (t Tier) BigInt() *big.Int {
	return new(big.Int).SetUint64(uint64(t))
}

// ParseTier converts an integer into a Tier, rejecting values outside {0,1,2}.
func ParseTier(v int64) (Tier, error) {
	if v < 0 || v > int64(TierGold) {
		return 0, fmt.Errorf("invalid tier %d: must be 0 (Bronze), 1 (Silver), or 2 (Gold)", v)
	}
	return Tier(v), nil
}

// TierCounts is the per-tier token count a member holds in one tribe,
// as returned by getMemberTiers.
type TierCounts [TierCount]*big.Int

// Count returns the count for t, treating a missing value as zero.
func (c TierCounts) Count(t Tier) *big.Int {
	if !t.Valid() || c[t] == nil {
		return new(big.Int)
	}
	return c[t]
}

// Strings renders the counts as decimal strings in tier order.
func (c TierCounts) Strings() []string {
	out := make([]string, TierCount)
	for i := range c {
		out[i] = c.Count(Tier(i)).String()
	}
	return out
}

// ParseTierCounts parses decimal strings (as returned by the benefit service).
func ParseTierCounts(values []string) (TierCounts, error) {
	var counts TierCounts
	if len(values) != TierCount {
		return counts, fmt.Errorf("expected %d tier counts, got %d", TierCount, len(values))
	}
	for i, v := range values {
		n, ok := new(big.Int).SetString(v, 10)
		if !ok || n.Sign() < 0 {
			return counts, fmt.Errorf("invalid tier count %q at index %d", v, i)
		}
		counts[i] = n
	}
	return counts, nil
}
