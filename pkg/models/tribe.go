package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// TribeInfo is the descriptive part of a tribe contract.
type TribeInfo struct {
	Address     common.Address `json:"address"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Owner       common.Address `json:"owner"`
}

// Token is one minted NFT of a tribe. Its tier never changes after mint.
type Token struct {
	ID    *big.Int       `json:"tokenId"`
	Tier  Tier           `json:"tier"`
	Owner common.Address `json:"owner"`
}

// Listing is a marketplace offer for an already minted token.
type Listing struct {
	TokenID    *big.Int       `json:"tokenId"`
	Seller     common.Address `json:"seller"`
	Price      *big.Int       `json:"price"`
	Expiration *big.Int       `json:"expiration"`
	Active     bool           `json:"active"`
}

// Expired reports whether the listing expiration (unix seconds) is at or
// before now. The contract never clears Active on expiry.
func (l Listing) Expired(now time.Time) bool {
	if l.Expiration == nil {
		return true
	}
	return l.Expiration.Cmp(big.NewInt(now.Unix())) <= 0
}

// Purchasable reports whether the listing may be offered for purchase.
func (l Listing) Purchasable(now time.Time) bool {
	return l.Active && !l.Expired(now)
}
