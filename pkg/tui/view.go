package tui

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"

	"tribe-backend/pkg/chain"
	"tribe-backend/pkg/models"
	"tribe-backend/pkg/tribe"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	soldOutStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#98C379"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75"))
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	boxStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

func ether(n *big.Int) string { return chain.FormatEther(n) + " ETH" }

// field renders f, greying out the loading placeholder.
func field[T any](f tribe.Field[T], format func(T) string) string {
	if !f.Ready() {
		return mutedStyle.Render(tribe.LoadingText)
	}
	return tribe.Display(f, format)
}

// View renders the dashboard.
func (a *App) View() string {
	if a.quitting {
		return ""
	}
	width := a.width
	if width <= 0 {
		width = 90
	}
	inner := max(40, width-4)

	sections := []string{
		headerStyle.Render("⬡ TRIBE ") + mutedStyle.Render(a.snap.Address.Hex()),
		boxStyle.Width(inner).Render(a.renderInfo()),
		boxStyle.Width(inner).Render(a.renderTiers()),
		boxStyle.Width(inner).Render(a.renderMember()),
		boxStyle.Width(inner).Render(a.renderListings()),
	}
	if tx := a.renderMutations(); tx != "" {
		sections = append(sections, tx)
	}
	if a.status != "" {
		sections = append(sections, a.status)
	}
	sections = append(sections, a.help.View(a.keys))
	return strings.Join(sections, "\n")
}

func (a *App) renderInfo() string {
	owner := field(a.snap.Owner, common.Address.Hex)
	if tribe.IsOwner(a.snap.Owner, a.user) {
		owner += selectedStyle.Render("  (you)")
	}
	return strings.Join([]string{
		sectionStyle.Render(field(a.snap.Name, nil)),
		field(a.snap.Description, nil),
		"Owner: " + owner,
	}, "\n")
}

func (a *App) renderTiers() string {
	lines := []string{sectionStyle.Render("Tiers")}
	for _, t := range models.AllTiers {
		price := field(a.snap.Price[t], ether)
		stats, ok := a.snap.Stats(t)
		if !ok {
			lines = append(lines, fmt.Sprintf("[%d] %-6s %s  %s", t+1, t.Name(), price, mutedStyle.Render(tribe.LoadingText)))
			continue
		}
		supply := fmt.Sprintf("%s/%s (%d%%) · %s left", stats.CurrentSupply, stats.MaxSupply, stats.SoldPercentage, stats.Available)
		if stats.SoldOut {
			supply = soldOutStyle.Render(supply + " · sold out")
		}
		lines = append(lines, fmt.Sprintf("[%d] %-6s %s  %s", t+1, t.Name(), price, supply))
	}
	if stats, ok := a.snap.OwnerStats(); ok && tribe.IsOwner(a.snap.Owner, a.user) {
		lines = append(lines, "", fmt.Sprintf("Sold %s of %s · revenue %s ETH", stats.TotalSold, stats.TotalSupply, stats.RevenueText()))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderMember() string {
	lines := []string{sectionStyle.Render("Membership")}
	gate := a.snap.Access(a.user != nil)
	switch {
	case gate.NeedsConnect():
		return strings.Join(append(lines, mutedStyle.Render("Connect a wallet to see your membership.")), "\n")
	case gate.Loading:
		lines = append(lines, mutedStyle.Render(tribe.LoadingText))
	default:
		var marks []string
		for _, t := range models.AllTiers {
			mark := "🔒 "
			if gate.Access.Has(t) {
				mark = "🔓 "
			}
			marks = append(marks, mark+t.Name())
		}
		lines = append(lines, strings.Join(marks, "   "))
	}
	lines = append(lines, "Balance: "+field(a.snap.Balance, (*big.Int).String))
	if tokens, ok := a.snap.Holdings.Get(); ok && len(tokens) > 0 {
		held := make([]string, 0, len(tokens))
		for _, tok := range tokens {
			held = append(held, fmt.Sprintf("#%s %s", tok.ID, tok.Tier.Name()))
		}
		lines = append(lines, "Holding: "+strings.Join(held, ", "))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderListings() string {
	lines := []string{sectionStyle.Render("Marketplace")}
	if !a.snap.Listings.Ready() {
		return strings.Join(append(lines, mutedStyle.Render(tribe.LoadingText)), "\n")
	}
	listings := a.listings()
	if len(listings) == 0 {
		return strings.Join(append(lines, mutedStyle.Render("No active listings.")), "\n")
	}
	for i, l := range listings {
		exp := time.Unix(l.Expiration.Int64(), 0).Local().Format("2006-01-02 15:04")
		line := fmt.Sprintf("#%s  %s  until %s", l.TokenID, ether(l.Price), exp)
		if i == a.cursor {
			line = selectedStyle.Render("› " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

var mutationOrder = []tribe.Action{tribe.ActionMint, tribe.ActionBuy}

func (a *App) renderMutations() string {
	var lines []string
	for _, action := range mutationOrder {
		if target, busy := a.orch.InFlight(action); busy {
			state := "submitting"
			if tr, ok := a.last[action]; ok && tr.State != tribe.StateIdle {
				state = tr.State.String()
			}
			lines = append(lines, fmt.Sprintf("%s %s %s: %s", a.spinner.View(), action, target, state))
			continue
		}
		if tr, ok := a.last[action]; ok && tr.State == tribe.StateFailed && tr.Err != nil {
			lines = append(lines, errorStyle.Render(fmt.Sprintf("✗ %s %s: %v", action, tr.Target, tr.Err)))
		}
	}
	return strings.Join(lines, "\n")
}
