package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

type callHandler func(args []interface{}) ([]interface{}, error)

// fakeCaller answers eth_call by decoding the selector against an ABI and
// packing whatever the registered handler returns.
type fakeCaller struct {
	abi      abi.ABI
	handlers map[string]callHandler
	raw      map[string][]byte

	mu    sync.Mutex
	calls []string
}

func newFakeCaller(parsed abi.ABI) *fakeCaller {
	return &fakeCaller{abi: parsed, handlers: map[string]callHandler{}, raw: map[string][]byte{}}
}

func (f *fakeCaller) on(method string, h callHandler) *fakeCaller {
	f.handlers[method] = h
	return f
}

func (f *fakeCaller) returns(method string, out ...interface{}) *fakeCaller {
	return f.on(method, func([]interface{}) ([]interface{}, error) { return out, nil })
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if len(msg.Data) < 4 {
		return nil, errors.New("short calldata")
	}
	method, err := f.abi.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.calls = append(f.calls, method.Name)
	f.mu.Unlock()

	if raw, ok := f.raw[method.Name]; ok {
		return raw, nil
	}
	h, ok := f.handlers[method.Name]
	if !ok {
		return nil, fmt.Errorf("execution reverted: no handler for %s", method.Name)
	}
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}
	out, err := h(args)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(out...)
}
