package tribe

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tribe-backend/pkg/chain"
	"tribe-backend/pkg/models"
)

type transitionLog struct {
	mu     sync.Mutex
	states []State
}

func (l *transitionLog) observe(t Transition) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, t.State)
}

func (l *transitionLog) get() []State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]State(nil), l.states...)
}

func submitOK(context.Context) (common.Hash, error) { return common.HexToHash("0x01"), nil }

func TestOrchestratorConfirmedRefreshesTwice(t *testing.T) {
	var log transitionLog
	var refreshes atomic.Int32
	o := NewOrchestrator(&fakeConfirmer{}, Refresher{Delay: 5 * time.Millisecond}, log.observe)

	res, err := o.Execute(context.Background(), Mutation{
		Action:  ActionMint,
		Target:  "Bronze",
		Submit:  submitOK,
		Refresh: func(context.Context) { refreshes.Add(1) },
	})
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("0x01"), res.Hash)
	assert.Equal(t, int32(1), refreshes.Load(), "immediate refresh runs before Execute returns")

	<-res.Refreshed
	assert.Equal(t, int32(2), refreshes.Load())
	assert.Equal(t, []State{StateSubmitted, StateConfirming, StateConfirmed, StateIdle}, log.get())
	assert.False(t, o.Busy(ActionMint))
}

func TestOrchestratorSubmitRejected(t *testing.T) {
	var log transitionLog
	refreshed := false
	o := NewOrchestrator(&fakeConfirmer{}, Refresher{}, log.observe)

	_, err := o.Execute(context.Background(), Mutation{
		Action:  ActionBuy,
		Target:  "#4",
		Submit:  func(context.Context) (common.Hash, error) { return common.Hash{}, errors.New("user rejected") },
		Refresh: func(context.Context) { refreshed = true },
	})
	var mErr *MutationError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, StageSubmit, mErr.Stage)
	assert.Equal(t, ActionBuy, mErr.Action)
	assert.False(t, refreshed)
	assert.Equal(t, []State{StateFailed, StateIdle}, log.get())
}

func TestOrchestratorRevertedSkipsRefresh(t *testing.T) {
	refreshed := false
	o := NewOrchestrator(&fakeConfirmer{err: chain.ErrTransactionReverted}, Refresher{}, nil)

	_, err := o.Execute(context.Background(), Mutation{
		Action:  ActionList,
		Submit:  submitOK,
		Refresh: func(context.Context) { refreshed = true },
	})
	require.ErrorIs(t, err, chain.ErrTransactionReverted)
	var mErr *MutationError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, StageConfirm, mErr.Stage)
	assert.False(t, refreshed)
	assert.False(t, o.Busy(ActionList))
}

func TestOrchestratorOneInFlightPerSlot(t *testing.T) {
	confirmer := &fakeConfirmer{release: make(chan struct{})}
	o := NewOrchestrator(confirmer, Refresher{Delay: time.Millisecond}, nil)

	errc := make(chan error, 1)
	go func() {
		_, err := o.Execute(context.Background(), Mutation{Action: ActionMint, Target: "Gold", Submit: submitOK})
		errc <- err
	}()

	require.Eventually(t, func() bool { return o.Busy(ActionMint) }, time.Second, time.Millisecond)
	target, _ := o.InFlight(ActionMint)
	assert.Equal(t, "Gold", target)

	_, err := o.Execute(context.Background(), Mutation{Action: ActionMint, Target: "Bronze", Submit: submitOK})
	assert.ErrorIs(t, err, ErrSlotBusy)

	// other slots are independent
	other := NewOrchestrator(&fakeConfirmer{}, Refresher{Delay: time.Millisecond}, nil)
	_, err = other.Execute(context.Background(), Mutation{Action: ActionBuy, Submit: submitOK})
	assert.NoError(t, err)

	close(confirmer.release)
	require.NoError(t, <-errc)
	assert.False(t, o.Busy(ActionMint))
}

func TestRefresherDelayedRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := Refresher{Delay: time.Hour}.Run(ctx, func(context.Context) { calls.Add(1) })
	assert.Equal(t, int32(1), calls.Load())
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("delayed refresh not abandoned")
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestMintEndToEnd(t *testing.T) {
	c := newFakeContract()
	r := NewReader(c)
	snap := r.Read(context.Background(), &userAddr, nil)
	before, _ := snap.Stats(models.TierBronze)
	price, ok := snap.Price[models.TierBronze].Get()
	require.True(t, ok)

	var mu sync.Mutex
	refresh := func(ctx context.Context) {
		fetches := append(r.SupplyFetches(), r.UserFetches(userAddr)...)
		mu.Lock()
		defer mu.Unlock()
		r.Refresh(ctx, &snap, fetches)
	}
	m, err := Mint(c, fakeSigner{from: userAddr}, models.TierBronze, price, refresh)
	require.NoError(t, err)

	o := NewOrchestrator(&fakeConfirmer{}, Refresher{Delay: time.Millisecond}, nil)
	res, err := o.Execute(context.Background(), m)
	require.NoError(t, err)
	<-res.Refreshed

	mu.Lock()
	defer mu.Unlock()
	after, _ := snap.Stats(models.TierBronze)
	assert.Equal(t, before.CurrentSupply.Int64()+1, after.CurrentSupply.Int64())
	assert.Equal(t, before.Available.Int64()-1, after.Available.Int64())
	assert.Equal(t, int64(1), snap.Balance.Value.Int64())
	assert.True(t, snap.Access(true).Access.Has(models.TierBronze))
	assert.Equal(t, 6, c.count("balanceOf"), "initial read plus two refreshes, each via balance and holdings")
}
