package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ReceiptReader is implemented by ethclient.Client.
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// ReceiptWaiter polls for a transaction receipt until the transaction is
// mined or the context ends.
type ReceiptWaiter struct {
	client   ReceiptReader
	interval time.Duration
}

// NewReceiptWaiter creates a waiter; a non-positive interval defaults to one second.
func NewReceiptWaiter(client ReceiptReader, interval time.Duration) *ReceiptWaiter {
	if interval <= 0 {
		interval = time.Second
	}
	return &ReceiptWaiter{client: client, interval: interval}
}

// Wait blocks until hash is mined. A reverted transaction returns the
// receipt together with ErrTransactionReverted.
func (w *ReceiptWaiter) Wait(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		receipt, err := w.client.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && receipt != nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, fmt.Errorf("%w: %s", ErrTransactionReverted, hash.Hex())
			}
			return receipt, nil
		case err != nil && !errors.Is(err, ethereum.NotFound):
			return nil, fmt.Errorf("receipt %s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("receipt %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
