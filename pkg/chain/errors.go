package chain

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrTransactionReverted is returned when a mined transaction has a failed status.
	ErrTransactionReverted = errors.New("transaction reverted")
	// ErrNoSigner is returned when a write is attempted without a configured key.
	ErrNoSigner = errors.New("no signer configured")
)

// ContractReadError is returned by every contract read that fails, either
// at the transport or while validating the shape of the returned values.
type ContractReadError struct {
	Contract string
	Address  common.Address
	Method   string
	Err      error
}

func (e *ContractReadError) Error() string {
	return fmt.Sprintf("%s(%s).%s: %v", e.Contract, e.Address.Hex(), e.Method, e.Err)
}

func (e *ContractReadError) Unwrap() error { return e.Err }

// IsContractReadError reports whether err (or anything it wraps) is a ContractReadError.
func IsContractReadError(err error) bool {
	var target *ContractReadError
	return errors.As(err, &target)
}
