package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// boundContract pairs an ABI with an address and a read transport.
type boundContract struct {
	name    string
	address common.Address
	abi     abi.ABI
	caller  ethereum.ContractCaller
}

func (c *boundContract) readErr(method string, err error) error {
	return &ContractReadError{Contract: c.name, Address: c.address, Method: method, Err: err}
}

// call performs an eth_call at the latest block and unpacks the outputs.
func (c *boundContract) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, c.readErr(method, fmt.Errorf("pack: %w", err))
	}
	to := c.address
	output, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
	if err != nil {
		return nil, c.readErr(method, err)
	}
	values, err := c.abi.Unpack(method, output)
	if err != nil {
		return nil, c.readErr(method, fmt.Errorf("unpack: %w", err))
	}
	return values, nil
}

// transact packs calldata and hands it to the transactor.
func (c *boundContract) transact(ctx context.Context, tx Transactor, value *big.Int, method string, args ...interface{}) (common.Hash, error) {
	if tx == nil {
		return common.Hash{}, ErrNoSigner
	}
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%s.%s: pack: %w", c.name, method, err)
	}
	hash, err := tx.Transact(ctx, c.address, value, input)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%s.%s: %w", c.name, method, err)
	}
	return hash, nil
}
