package tribe

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Action identifies a mutation slot.
type Action string

const (
	ActionCreateTribe Action = "create-tribe"
	ActionMint        Action = "mint"
	ActionList        Action = "list"
	ActionBuy         Action = "buy"
)

// State is a step of the mutation lifecycle.
type State int

const (
	StateIdle State = iota
	StateSubmitted
	StateConfirming
	StateConfirmed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitted:
		return "submitted"
	case StateConfirming:
		return "confirming"
	case StateConfirmed:
		return "confirmed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Transition is reported to the observer on every state change.
type Transition struct {
	Action Action
	Target string
	State  State
	Hash   common.Hash
	Err    error
}

// Confirmer waits for a transaction to be mined. *chain.ReceiptWaiter implements it.
type Confirmer interface {
	Wait(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Mutation is one write plus the reads it can change.
type Mutation struct {
	Action Action
	// Target is the tier or token that triggered the write.
	Target  string
	Submit  func(ctx context.Context) (common.Hash, error)
	Refresh func(ctx context.Context)
}

// Result of a confirmed mutation. Refreshed closes once the delayed
// refresh has run.
type Result struct {
	Hash      common.Hash
	Receipt   *types.Receipt
	Refreshed <-chan struct{}
}

// Orchestrator runs mutations with one in-flight transaction per action.
type Orchestrator struct {
	confirmer Confirmer
	refresher Refresher
	observer  func(Transition)

	mu       sync.Mutex
	inflight map[Action]string
}

// NewOrchestrator creates an orchestrator. observer may be nil.
func NewOrchestrator(confirmer Confirmer, refresher Refresher, observer func(Transition)) *Orchestrator {
	return &Orchestrator{
		confirmer: confirmer,
		refresher: refresher,
		observer:  observer,
		inflight:  make(map[Action]string),
	}
}

// InFlight returns the target of the running mutation for action, if any.
func (o *Orchestrator) InFlight(action Action) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	target, ok := o.inflight[action]
	return target, ok
}

// Busy reports whether action's slot is taken.
func (o *Orchestrator) Busy(action Action) bool {
	_, ok := o.InFlight(action)
	return ok
}

func (o *Orchestrator) acquire(m Mutation) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.inflight[m.Action]; busy {
		return false
	}
	o.inflight[m.Action] = m.Target
	return true
}

func (o *Orchestrator) release(action Action) {
	o.mu.Lock()
	delete(o.inflight, action)
	o.mu.Unlock()
}

func (o *Orchestrator) emit(t Transition) {
	if o.observer != nil {
		o.observer(t)
	}
}

// Execute submits m, waits for its receipt and, once confirmed, runs the
// two-phase refresh. Any failure resets the slot to idle and skips the
// refresh.
func (o *Orchestrator) Execute(ctx context.Context, m Mutation) (Result, error) {
	if !o.acquire(m) {
		return Result{}, ErrSlotBusy
	}
	released := false
	release := func() {
		if !released {
			released = true
			o.release(m.Action)
			o.emit(Transition{Action: m.Action, Target: m.Target, State: StateIdle})
		}
	}
	defer release()

	fail := func(stage Stage, hash common.Hash, err error) (Result, error) {
		slog.Warn("mutation failed", "action", m.Action, "target", m.Target, "stage", stage, "error", err)
		o.emit(Transition{Action: m.Action, Target: m.Target, State: StateFailed, Hash: hash, Err: err})
		return Result{Hash: hash}, &MutationError{Action: m.Action, Target: m.Target, Stage: stage, Err: err}
	}

	hash, err := m.Submit(ctx)
	if err != nil {
		return fail(StageSubmit, common.Hash{}, err)
	}
	o.emit(Transition{Action: m.Action, Target: m.Target, State: StateSubmitted, Hash: hash})

	o.emit(Transition{Action: m.Action, Target: m.Target, State: StateConfirming, Hash: hash})
	receipt, err := o.confirmer.Wait(ctx, hash)
	if err != nil {
		return fail(StageConfirm, hash, err)
	}
	o.emit(Transition{Action: m.Action, Target: m.Target, State: StateConfirmed, Hash: hash})
	slog.Info("mutation confirmed", "action", m.Action, "target", m.Target, "tx", hash.Hex())

	release()
	refreshed := o.refresher.Run(ctx, m.Refresh)
	return Result{Hash: hash, Receipt: receipt, Refreshed: refreshed}, nil
}
