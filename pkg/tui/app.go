// Package tui is the terminal dashboard of one tribe. It follows the
// bubbletea model: every contract read is its own command and its result
// lands as a message, so each field renders as soon as its read resolves.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"

	"tribe-backend/pkg/chain"
	"tribe-backend/pkg/models"
	"tribe-backend/pkg/tribe"
)

const eventBuffer = 64

// Options wires the dashboard to a tribe.
type Options struct {
	Contract tribe.Contract
	// User is nil when no wallet is configured.
	User       *common.Address
	Transactor chain.Transactor
	Confirmer  tribe.Confirmer
	Refresher  tribe.Refresher

	PollInterval   time.Duration
	ReceiptTimeout time.Duration
}

// updateMsg carries one read result.
type updateMsg tribe.Update

// transitionMsg is a mutation state change reported by the orchestrator.
type transitionMsg tribe.Transition

// mutationDoneMsg ends a mutation command.
type mutationDoneMsg struct {
	action tribe.Action
	target string
	hash   common.Hash
	err    error
}

type pollMsg struct{}

// eventMsg wraps a message produced outside a command (orchestrator
// transitions and refresh reads). Receiving one re-arms the listener.
type eventMsg struct{ inner tea.Msg }

// App is the dashboard model.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	reader *tribe.Reader
	orch   *tribe.Orchestrator
	tx     chain.Transactor
	user   *common.Address
	opts   Options

	snap       tribe.Snapshot
	generation atomic.Uint64
	events     chan tea.Msg

	cursor   int
	status   string
	last     map[tribe.Action]tribe.Transition
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	width    int
	now      func() time.Time
	quitting bool
}

// New creates the dashboard. Cancelling ctx, or quitting, stops polling
// and any pending delayed refresh.
func New(ctx context.Context, opts Options) *App {
	ctx, cancel := context.WithCancel(ctx)
	a := &App{
		ctx:     ctx,
		cancel:  cancel,
		reader:  tribe.NewReader(opts.Contract),
		tx:      opts.Transactor,
		user:    opts.User,
		opts:    opts,
		snap:    tribe.NewSnapshot(opts.Contract.Address()),
		events:  make(chan tea.Msg, eventBuffer),
		last:    make(map[tribe.Action]tribe.Transition),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		help:    help.New(),
		keys:    defaultKeys(),
		now:     time.Now,
	}
	a.orch = tribe.NewOrchestrator(opts.Confirmer, opts.Refresher, a.observe)
	return a
}

// Snapshot returns the current display state.
func (a *App) Snapshot() tribe.Snapshot { return a.snap }

// Init starts every read, the event listener and the listing poll.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.load(a.reader.Fetches(a.user)),
		a.listen(),
		a.schedulePoll(),
		a.spinner.Tick,
	)
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.help.Width = msg.Width
		return a, nil

	case eventMsg:
		_, cmd := a.Update(msg.inner)
		return a, tea.Batch(cmd, a.listen())

	case updateMsg:
		a.snap.Apply(tribe.Update(msg))
		a.clampCursor()
		return a, nil

	case transitionMsg:
		// ignore the trailing idle so a failure stays on screen
		if msg.State != tribe.StateIdle {
			a.last[msg.Action] = tribe.Transition(msg)
		}
		return a, nil

	case mutationDoneMsg:
		if msg.err != nil {
			a.status = fmt.Sprintf("%s %s failed: %v", msg.action, msg.target, msg.err)
		} else {
			a.status = fmt.Sprintf("%s %s confirmed (%s)", msg.action, msg.target, shortHash(msg.hash))
		}
		return a, nil

	case pollMsg:
		if a.ctx.Err() != nil {
			return a, nil
		}
		fetches := append(a.reader.SupplyFetches(), a.reader.ListingFetch())
		return a, tea.Batch(a.load(fetches), a.schedulePoll())

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		a.quitting = true
		a.cancel()
		return a, tea.Quit
	case key.Matches(msg, a.keys.Refresh):
		a.status = "Refreshing..."
		return a, a.load(a.reader.Fetches(a.user))
	case key.Matches(msg, a.keys.Mint):
		tier, _ := models.ParseTier(int64(msg.String()[0] - '1'))
		return a, a.mint(tier)
	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(a.listings())-1 {
			a.cursor++
		}
	case key.Matches(msg, a.keys.Buy):
		return a, a.buy()
	}
	return a, nil
}

// load runs each fetch as its own command under a new generation.
func (a *App) load(fetches []tribe.Fetch) tea.Cmd {
	gen := a.generation.Add(1)
	cmds := make([]tea.Cmd, 0, len(fetches))
	for _, f := range fetches {
		f := f
		cmds = append(cmds, func() tea.Msg {
			return updateMsg(f.Do(a.ctx, gen))
		})
	}
	return tea.Batch(cmds...)
}

func (a *App) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-a.events:
			return eventMsg{inner: msg}
		case <-a.ctx.Done():
			return nil
		}
	}
}

func (a *App) send(msg tea.Msg) {
	select {
	case a.events <- msg:
	case <-a.ctx.Done():
	}
}

func (a *App) observe(tr tribe.Transition) { a.send(transitionMsg(tr)) }

func (a *App) schedulePoll() tea.Cmd {
	if a.opts.PollInterval <= 0 {
		return nil
	}
	return tea.Tick(a.opts.PollInterval, func(time.Time) tea.Msg { return pollMsg{} })
}

// refresh re-reads fetches off the UI loop, delivering results as events.
// It is the Refresh step of the dashboard's mutations.
func (a *App) refresh(fetches []tribe.Fetch) func(context.Context) {
	return func(ctx context.Context) {
		gen := a.generation.Add(1)
		tribe.Run(ctx, fetches, gen, func(u tribe.Update) { a.send(updateMsg(u)) })
	}
}

func (a *App) userFetches() []tribe.Fetch {
	if a.user == nil {
		return nil
	}
	return a.reader.UserFetches(*a.user)
}

func (a *App) mint(tier models.Tier) tea.Cmd {
	price, ok := a.snap.Price[tier].Get()
	if !ok {
		a.status = fmt.Sprintf("%s price is still loading", tier.Name())
		return nil
	}
	if stats, ok := a.snap.Stats(tier); ok && stats.SoldOut {
		a.status = fmt.Sprintf("%s is sold out", tier.Name())
		return nil
	}
	fetches := append(a.reader.SupplyFetches(), a.userFetches()...)
	m, err := tribe.Mint(a.reader.Contract(), a.tx, tier, price, a.refresh(fetches))
	if err != nil {
		a.status = describe(err)
		return nil
	}
	return a.execute(m)
}

func (a *App) buy() tea.Cmd {
	listings := a.listings()
	if len(listings) == 0 {
		a.status = "No listing selected"
		return nil
	}
	listing := listings[a.cursor]
	fetches := append([]tribe.Fetch{a.reader.ListingFetch()}, a.userFetches()...)
	m, err := tribe.Buy(a.reader.Contract(), a.tx, listing, a.now(), a.refresh(fetches))
	if err != nil {
		a.status = describe(err)
		return nil
	}
	return a.execute(m)
}

// execute runs m on a command goroutine. The slot check happens before
// the command is issued so a second key press reports busy immediately.
func (a *App) execute(m tribe.Mutation) tea.Cmd {
	if a.orch.Busy(m.Action) {
		a.status = describe(tribe.ErrSlotBusy)
		return nil
	}
	a.status = fmt.Sprintf("%s %s: waiting for signature...", m.Action, m.Target)
	return func() tea.Msg {
		var (
			ctx    context.Context
			cancel context.CancelFunc
		)
		if a.opts.ReceiptTimeout > 0 {
			ctx, cancel = context.WithTimeout(a.ctx, a.opts.ReceiptTimeout)
		} else {
			ctx, cancel = context.WithCancel(a.ctx)
		}
		res, err := a.orch.Execute(ctx, m)
		if err != nil {
			cancel()
			return mutationDoneMsg{action: m.Action, target: m.Target, hash: res.Hash, err: err}
		}
		// the delayed refresh still runs under ctx
		go func() {
			<-res.Refreshed
			cancel()
		}()
		return mutationDoneMsg{action: m.Action, target: m.Target, hash: res.Hash}
	}
}

func (a *App) listings() []models.Listing {
	listings, _ := a.snap.Listings.Get()
	return listings
}

func (a *App) clampCursor() {
	n := len(a.listings())
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func describe(err error) string {
	var verr *tribe.ValidationError
	switch {
	case errors.Is(err, tribe.ErrNotConnected):
		return "Connect a wallet (private_key) to send transactions"
	case errors.Is(err, tribe.ErrSlotBusy):
		return "A transaction for this action is already in progress"
	case errors.As(err, &verr):
		return verr.Error()
	}
	return err.Error()
}

func shortHash(h common.Hash) string {
	s := h.Hex()
	return s[:10] + "…"
}
