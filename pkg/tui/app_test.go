package tui

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tribe-backend/pkg/models"
	"tribe-backend/pkg/tribe"
)

func newTestApp(t *testing.T, f *fakeTribe, user *fakeSigner, confirmer *fakeConfirmer) *App {
	t.Helper()
	opts := Options{
		Contract:  f,
		Confirmer: confirmer,
		Refresher: tribe.Refresher{Delay: time.Hour},
	}
	if user != nil {
		addr := user.from
		opts.User = &addr
		opts.Transactor = *user
	}
	app := New(context.Background(), opts)
	t.Cleanup(app.cancel)
	return app
}

// runCmd executes cmd and feeds the resulting messages back into the app,
// expanding batches. Blocking commands (listen, tick) must not be passed.
func runCmd(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			runCmd(t, app, c)
		}
		return
	}
	if msg == nil {
		return
	}
	_, next := app.Update(msg)
	runCmd(t, app, next)
}

// drainEvents applies every queued orchestrator and refresh event.
func drainEvents(app *App) {
	for {
		select {
		case msg := <-app.events:
			app.Update(msg)
		default:
			return
		}
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(app *App, s string) tea.Cmd {
	_, cmd := app.Update(keyPress(s))
	return cmd
}

func loadAll(t *testing.T, app *App) {
	t.Helper()
	runCmd(t, app, app.load(app.reader.Fetches(app.user)))
}

func TestRendersFieldsIndependently(t *testing.T) {
	app := newTestApp(t, newFakeTribe(), nil, &fakeConfirmer{})

	view := app.View()
	assert.Contains(t, view, tribe.LoadingText)
	assert.NotContains(t, view, "Night Owls")

	gen := app.generation.Add(1)
	app.Update(updateMsg{Generation: gen, Key: tribe.KeyName, Value: "Night Owls"})
	view = app.View()
	assert.Contains(t, view, "Night Owls")
	assert.Contains(t, view, tribe.LoadingText)
	assert.Contains(t, view, "Connect a wallet")
}

func TestLoadFillsDashboard(t *testing.T) {
	member := &fakeSigner{from: memberAddr}
	app := newTestApp(t, newFakeTribe(), member, &fakeConfirmer{})
	loadAll(t, app)

	snap := app.Snapshot()
	name, ok := snap.Name.Get()
	require.True(t, ok)
	assert.Equal(t, "Night Owls", name)

	view := app.View()
	assert.Contains(t, view, "3/10 (30%) · 7 left")
	assert.Contains(t, view, "sold out")
	assert.Contains(t, view, "🔒 Bronze")
	assert.Contains(t, view, "#1  0.02 ETH")
	assert.NotContains(t, view, "revenue")
}

func TestOwnerSeesRevenue(t *testing.T) {
	owner := &fakeSigner{from: ownerAddr}
	app := newTestApp(t, newFakeTribe(), owner, &fakeConfirmer{})
	loadAll(t, app)

	view := app.View()
	assert.Contains(t, view, "(you)")
	// 3 × 0.001 + 5 × 0.01
	assert.Contains(t, view, "revenue 0.0530 ETH")
}

func TestStaleUpdateIsDropped(t *testing.T) {
	app := newTestApp(t, newFakeTribe(), nil, &fakeConfirmer{})
	app.Update(updateMsg{Generation: 2, Key: tribe.KeyName, Value: "fresh"})
	app.Update(updateMsg{Generation: 1, Key: tribe.KeyName, Value: "stale"})

	name, _ := app.Snapshot().Name.Get()
	assert.Equal(t, "fresh", name)
}

func TestPollDoesNotStarveInitialLoad(t *testing.T) {
	app := newTestApp(t, newFakeTribe(), nil, &fakeConfirmer{})
	app.Update(updateMsg{Generation: 2, Key: tribe.KeyCurrentSupply, Tier: models.TierBronze, Value: big.NewInt(3)})
	app.Update(updateMsg{Generation: 1, Key: tribe.KeyName, Value: "Night Owls"})

	name, ok := app.Snapshot().Name.Get()
	require.True(t, ok)
	assert.Equal(t, "Night Owls", name)
	assert.Contains(t, app.View(), "Night Owls")
}

func TestMintRequiresWalletAndPrice(t *testing.T) {
	app := newTestApp(t, newFakeTribe(), nil, &fakeConfirmer{})

	assert.Nil(t, press(app, "1"))
	assert.Contains(t, app.status, "still loading")

	loadAll(t, app)
	assert.Nil(t, press(app, "1"))
	assert.Contains(t, app.status, "Connect a wallet")

	assert.Nil(t, press(app, "2"))
	assert.Contains(t, app.status, "sold out")
}

func TestMintRefreshesSupplyAndMembership(t *testing.T) {
	f := newFakeTribe()
	member := &fakeSigner{from: memberAddr}
	app := newTestApp(t, f, member, &fakeConfirmer{})
	loadAll(t, app)

	cmd := press(app, "1")
	require.NotNil(t, cmd)
	done, ok := cmd().(mutationDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	app.Update(done)
	drainEvents(app)

	assert.Equal(t, []models.Tier{models.TierBronze}, f.mintedTiers())
	assert.Contains(t, app.status, "mint Bronze confirmed")
	assert.Equal(t, tribe.StateConfirmed, app.last[tribe.ActionMint].State)

	view := app.View()
	assert.Contains(t, view, "4/10 (40%) · 6 left")
	assert.Contains(t, view, "🔓 Bronze")
	assert.False(t, app.orch.Busy(tribe.ActionMint))
}

func TestMintSlotIsExclusive(t *testing.T) {
	confirmer := &fakeConfirmer{release: make(chan struct{})}
	app := newTestApp(t, newFakeTribe(), &fakeSigner{from: memberAddr}, confirmer)
	loadAll(t, app)

	cmd := press(app, "1")
	require.NotNil(t, cmd)
	result := make(chan tea.Msg, 1)
	go func() { result <- cmd() }()

	require.Eventually(t, func() bool { return app.orch.Busy(tribe.ActionMint) }, time.Second, 5*time.Millisecond)
	assert.Nil(t, press(app, "3"))
	assert.Contains(t, app.status, "already in progress")

	close(confirmer.release)
	done := (<-result).(mutationDoneMsg)
	assert.NoError(t, done.err)
}

func TestFailedMutationStaysVisible(t *testing.T) {
	confirmer := &fakeConfirmer{err: errors.New("transaction reverted")}
	app := newTestApp(t, newFakeTribe(), &fakeSigner{from: memberAddr}, confirmer)
	loadAll(t, app)

	cmd := press(app, "1")
	require.NotNil(t, cmd)
	app.Update(cmd())
	drainEvents(app)

	assert.Equal(t, tribe.StateFailed, app.last[tribe.ActionMint].State)
	assert.Contains(t, app.View(), "transaction reverted")
	assert.Contains(t, app.status, "failed")
}

func TestListingNavigationAndBuy(t *testing.T) {
	f := newFakeTribe()
	app := newTestApp(t, f, &fakeSigner{from: memberAddr}, &fakeConfirmer{})
	loadAll(t, app)
	require.Len(t, app.listings(), 2)

	press(app, "down")
	press(app, "down")
	assert.Equal(t, 1, app.cursor)
	press(app, "up")
	press(app, "up")
	assert.Equal(t, 0, app.cursor)
	press(app, "down")

	cmd := press(app, "enter")
	require.NotNil(t, cmd)
	app.Update(cmd())
	drainEvents(app)

	assert.Equal(t, []int64{2}, f.boughtIDs())
	require.Len(t, app.listings(), 1)
	assert.Equal(t, 0, app.cursor)
	assert.True(t, strings.Contains(app.View(), "#2 Silver"))
}

func TestQuitCancelsBackgroundWork(t *testing.T) {
	app := newTestApp(t, newFakeTribe(), nil, &fakeConfirmer{})
	app.opts.PollInterval = time.Minute

	_, cmd := app.Update(pollMsg{})
	assert.NotNil(t, cmd)

	cmd = press(app, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Error(t, app.ctx.Err())
	assert.Nil(t, app.listen()())
	assert.Empty(t, app.View())

	_, cmd = app.Update(pollMsg{})
	assert.Nil(t, cmd)
}
