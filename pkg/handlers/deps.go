package handlers

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"tribe-backend/pkg/chain"
	"tribe-backend/pkg/tribe"
)

// ChainBackend resolves contract handles for request handlers.
type ChainBackend struct {
	// OpenTribe binds a tribe contract at addr.
	OpenTribe func(addr common.Address) tribe.Contract
	// Factory is nil when no factory address is configured.
	Factory tribe.Factory
}

// NewChainBackend binds contracts through caller, the RPC client in production.
func NewChainBackend(caller ethereum.ContractCaller, factory *common.Address) ChainBackend {
	b := ChainBackend{
		OpenTribe: func(addr common.Address) tribe.Contract {
			return chain.NewTribe(addr, caller)
		},
	}
	if factory != nil {
		b.Factory = chain.NewFactory(*factory, caller)
	}
	return b
}

// parseAddressParam 解析 0x 地址参数
func parseAddressParam(raw string) (common.Address, bool) {
	addr, err := chain.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return common.Address{}, false
	}
	return addr, true
}

// ownerOf 读取 tribe 的 owner
func (b ChainBackend) ownerOf(ctx context.Context, addr common.Address) (common.Address, error) {
	return b.OpenTribe(addr).Owner(ctx)
}
