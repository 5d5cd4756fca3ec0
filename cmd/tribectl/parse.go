package main

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"tribe-backend/pkg/chain"
	"tribe-backend/pkg/models"
)

func parseAddressArg(name, s string) (common.Address, error) {
	addr, err := chain.ParseAddress(strings.TrimSpace(s))
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", name, err)
	}
	return addr, nil
}

// parseTier accepts the tier index or its name.
func parseTier(s string) (models.Tier, error) {
	s = strings.TrimSpace(s)
	for _, t := range models.AllTiers {
		if strings.EqualFold(s, t.Name()) {
			return t, nil
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid tier %q: use 0-2 or bronze, silver, gold", s)
	}
	return models.ParseTier(n)
}

// parseTiers parses a comma separated tier list, keeping order and
// dropping repeats.
func parseTiers(s string) ([]models.Tier, error) {
	var tiers []models.Tier
	seen := make(map[models.Tier]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, err := parseTier(part)
		if err != nil {
			return nil, err
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		tiers = append(tiers, t)
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("at least one tier is required")
	}
	return tiers, nil
}

// splitPerTier splits "a,b,c" into one value per tier.
func splitPerTier(name, s string) ([models.TierCount]string, error) {
	var out [models.TierCount]string
	parts := strings.Split(s, ",")
	if len(parts) != models.TierCount {
		return out, fmt.Errorf("%s: expected %d comma separated values, got %d", name, models.TierCount, len(parts))
	}
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out, nil
}

func parseTokenID(s string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || id.Sign() < 0 {
		return nil, fmt.Errorf("invalid token id %q", s)
	}
	return id, nil
}

// parseExpiration accepts a date (midnight UTC), a local date-time, an
// RFC 3339 timestamp, unix seconds, or a "+<duration>" offset from now.
func parseExpiration(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("expiration is required")
	}
	if strings.HasPrefix(s, "+") {
		d, err := time.ParseDuration(s[1:])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid expiration offset %q: %w", s, err)
		}
		return now.Add(d), nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid expiration %q: use YYYY-MM-DD, YYYY-MM-DDTHH:MM, RFC 3339, unix seconds or +24h", s)
}
