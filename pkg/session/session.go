// Package session bundles the connections a front end needs to drive the
// tribe protocol: the RPC client, an optional signer, the receipt waiter,
// the mutation orchestrator and the benefit service client.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"tribe-backend/pkg/benefits"
	"tribe-backend/pkg/chain"
	"tribe-backend/pkg/config"
	"tribe-backend/pkg/tribe"
)

// ErrNoFactory is returned when a directory operation runs without a
// configured factory address.
var ErrNoFactory = errors.New("factory_address is not configured")

// Session is owned by one front end process.
type Session struct {
	Config       config.ClientConfig
	Benefits     *benefits.Client
	Confirmer    tribe.Confirmer
	Orchestrator *tribe.Orchestrator

	caller ethereum.ContractCaller
	closer func()
	signer *chain.KeyedTransactor
}

// Open dials the RPC endpoint and loads the signer when a private key is
// configured. observer receives every mutation state transition.
func Open(ctx context.Context, cfg config.ClientConfig, observer func(tribe.Transition)) (*Session, error) {
	client, err := chain.Dial(ctx, cfg.RPCURL)
	if err != nil {
		return nil, err
	}
	s, err := newSession(cfg, client, observer)
	if err != nil {
		client.Close()
		return nil, err
	}
	s.closer = client.Close
	return s, nil
}

// backend is what a session needs from the RPC client. *ethclient.Client
// implements it.
type backend interface {
	ethereum.ContractCaller
	chain.TxBackend
	chain.ReceiptReader
}

var _ backend = (*ethclient.Client)(nil)

func newSession(cfg config.ClientConfig, b backend, observer func(tribe.Transition)) (*Session, error) {
	s := &Session{
		Config:   cfg,
		Benefits: benefits.New(cfg.BenefitsURL),
		caller:   b,
	}
	if cfg.PrivateKey != "" {
		signer, err := chain.NewKeyedTransactor(b, cfg.PrivateKey, cfg.ChainIDBig())
		if err != nil {
			return nil, fmt.Errorf("load signer: %w", err)
		}
		s.signer = signer
	}
	s.Confirmer = chain.NewReceiptWaiter(b, cfg.ReceiptPollInterval)
	s.Orchestrator = tribe.NewOrchestrator(s.Confirmer, s.Refresher(), observer)
	return s, nil
}

// Refresher is the configured two-phase refresh.
func (s *Session) Refresher() tribe.Refresher {
	return tribe.Refresher{Delay: s.Config.RefreshDelay}
}

// Close releases the RPC connection.
func (s *Session) Close() {
	if s.closer != nil {
		s.closer()
	}
}

// Connected reports whether a signer is loaded.
func (s *Session) Connected() bool { return s.signer != nil }

// User returns the signer address, or nil without a signer.
func (s *Session) User() *common.Address {
	if s.signer == nil {
		return nil
	}
	addr := s.signer.From()
	return &addr
}

// Transactor returns the signer as a chain.Transactor, or a nil interface
// without one so that actions report tribe.ErrNotConnected.
func (s *Session) Transactor() chain.Transactor {
	if s.signer == nil {
		return nil
	}
	return s.signer
}

// Tribe binds the tribe contract at addr.
func (s *Session) Tribe(addr common.Address) *chain.Tribe {
	return chain.NewTribe(addr, s.caller)
}

// Factory binds the configured factory contract.
func (s *Session) Factory() (*chain.Factory, error) {
	addr, ok := s.Config.Factory()
	if !ok {
		return nil, ErrNoFactory
	}
	return chain.NewFactory(addr, s.caller), nil
}

// Directory returns a directory over the configured factory.
func (s *Session) Directory() (*tribe.Directory, error) {
	f, err := s.Factory()
	if err != nil {
		return nil, err
	}
	return tribe.NewDirectory(f), nil
}

// WithReceiptTimeout bounds a mutation by the configured receipt timeout.
func (s *Session) WithReceiptTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.Config.ReceiptTimeout)
}

// Resolve picks the explicit address when given, else the signer address.
func (s *Session) Resolve(explicit string) (*common.Address, error) {
	if explicit != "" {
		addr, err := chain.ParseAddress(explicit)
		if err != nil {
			return nil, err
		}
		return &addr, nil
	}
	return s.User(), nil
}

// Login signs the benefit service challenge with the configured key and
// keeps the returned token on the benefit client.
func (s *Session) Login(ctx context.Context) (*benefits.LoginResponse, error) {
	if s.signer == nil {
		return nil, tribe.ErrNotConnected
	}
	key, err := chain.LoadKey(s.Config.PrivateKey)
	if err != nil {
		return nil, err
	}
	return s.Benefits.Login(ctx, key)
}
