package main

import (
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"tribe-backend/pkg/benefits"
	"tribe-backend/pkg/chain"
	"tribe-backend/pkg/models"
	"tribe-backend/pkg/tribe"
)

func etherText(n *big.Int) string { return chain.FormatEther(n) + " ETH" }

func printTransition(w io.Writer, tr tribe.Transition) {
	label := string(tr.Action)
	if tr.Target != "" {
		label += " " + tr.Target
	}
	switch tr.State {
	case tribe.StateSubmitted:
		fmt.Fprintf(w, "📤 %s: submitted %s\n", label, tr.Hash.Hex())
	case tribe.StateConfirming:
		fmt.Fprintf(w, "⏳ %s: confirming...\n", label)
	case tribe.StateConfirmed:
		fmt.Fprintf(w, "✅ %s: confirmed\n", label)
	case tribe.StateFailed:
		fmt.Fprintf(w, "❌ %s: failed: %v\n", label, tr.Err)
	}
}

func printUpdate(w io.Writer, u tribe.Update) {
	if u.Err != nil {
		fmt.Fprintf(w, "  ✗ %s: %v\n", u, u.Err)
		return
	}
	fmt.Fprintf(w, "  ✓ %s\n", u)
}

func printDirectory(w io.Writer, view tribe.DirectoryView, user *common.Address) {
	fmt.Fprintln(w, "All tribes:")
	printAddressList(w, view.All, "No tribes found.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Created by you:")
	if user == nil {
		fmt.Fprintln(w, "  Connect a wallet (private_key) to see the tribes you created.")
		return
	}
	printAddressList(w, view.Created, "You haven't created any tribes yet.")
}

func printAddressList(w io.Writer, f tribe.Field[[]common.Address], empty string) {
	addrs, ok := f.Get()
	switch {
	case !ok && f.Err != nil:
		fmt.Fprintf(w, "  %s (%v)\n", tribe.LoadingText, f.Err)
	case !ok:
		fmt.Fprintf(w, "  %s\n", tribe.LoadingText)
	case len(addrs) == 0:
		fmt.Fprintf(w, "  %s\n", empty)
	default:
		for _, a := range addrs {
			fmt.Fprintf(w, "  %s\n", a.Hex())
		}
	}
}

func printSnapshot(w io.Writer, snap tribe.Snapshot, user *common.Address) {
	fmt.Fprintf(w, "Tribe %s\n", snap.Address.Hex())
	fmt.Fprintf(w, "  Name:        %s\n", tribe.Display(snap.Name, nil))
	fmt.Fprintf(w, "  Description: %s\n", tribe.Display(snap.Description, nil))
	fmt.Fprintf(w, "  Owner:       %s\n", tribe.Display(snap.Owner, common.Address.Hex))
	fmt.Fprintln(w, "")
	printTiers(w, snap)

	if user == nil {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Connect a wallet to see your membership.")
		return
	}
	fmt.Fprintln(w, "")
	printMembership(w, snap)

	if tribe.IsOwner(snap.Owner, user) {
		if stats, ok := snap.OwnerStats(); ok {
			fmt.Fprintln(w, "")
			printOwnerStats(w, stats)
		}
	}
}

func printTiers(w io.Writer, snap tribe.Snapshot) {
	for _, t := range models.AllTiers {
		price := tribe.Display(snap.Price[t], etherText)
		stats, ok := snap.Stats(t)
		if !ok {
			fmt.Fprintf(w, "  %-6s  price %s  supply %s\n", t.Name(), price, tribe.LoadingText)
			continue
		}
		status := fmt.Sprintf("%s/%s minted (%d%%), %s available", stats.CurrentSupply, stats.MaxSupply, stats.SoldPercentage, stats.Available)
		if stats.SoldOut {
			status += ", sold out"
		}
		fmt.Fprintf(w, "  %-6s  price %s  %s\n", t.Name(), price, status)
	}
}

func printMembership(w io.Writer, snap tribe.Snapshot) {
	gate := snap.Access(true)
	if gate.Loading {
		fmt.Fprintf(w, "Membership: %s\n", tribe.LoadingText)
	} else {
		counts, _ := snap.MemberTiers.Get()
		fmt.Fprintf(w, "Membership: %s\n", strings.Join(counts.Strings(), " / "))
		printAccess(w, gate.Access)
	}
	fmt.Fprintf(w, "Balance:    %s\n", tribe.Display(snap.Balance, (*big.Int).String))
	if tokens, ok := snap.Holdings.Get(); ok {
		printTokens(w, tokens)
	}
}

func printAccess(w io.Writer, access tribe.Access) {
	for _, t := range models.AllTiers {
		mark := "🔒"
		if access.Has(t) {
			mark = "🔓"
		}
		fmt.Fprintf(w, "  %s %s\n", mark, t.Name())
	}
}

func printOwnerStats(w io.Writer, o tribe.OwnerStats) {
	fmt.Fprintln(w, "Owner dashboard:")
	for _, s := range o.Tiers {
		fmt.Fprintf(w, "  %-6s  sold %s  remaining %s  price %s  progress %d%%\n",
			s.Tier.Name(), s.CurrentSupply, s.Available, etherText(s.Price), s.SoldPercentage)
	}
	fmt.Fprintf(w, "  Total supply:  %s\n", o.TotalSupply)
	fmt.Fprintf(w, "  Total revenue: %s ETH\n", o.RevenueText())
}

func printTokens(w io.Writer, tokens []models.Token) {
	if len(tokens) == 0 {
		fmt.Fprintln(w, "  No tokens held.")
		return
	}
	for _, tok := range tokens {
		fmt.Fprintf(w, "  #%s  %s\n", tok.ID, tok.Tier.Name())
	}
}

func printListings(w io.Writer, listings []models.Listing) {
	if len(listings) == 0 {
		fmt.Fprintln(w, "No active listings.")
		return
	}
	for _, l := range listings {
		exp := time.Unix(l.Expiration.Int64(), 0).UTC().Format(time.RFC3339)
		fmt.Fprintf(w, "  #%s  %s  seller %s  expires %s\n", l.TokenID, etherText(l.Price), l.Seller.Hex(), exp)
	}
}

func printBenefits(w io.Writer, resp *benefits.Response) {
	fmt.Fprintf(w, "Tier counts: %s\n", strings.Join(resp.TierCounts, " / "))
	access := resp.Access()
	if !access.Any() {
		fmt.Fprintln(w, "No tiers unlocked. Mint a membership token to see benefits.")
		return
	}
	for _, t := range models.AllTiers {
		if !access.Has(t) {
			fmt.Fprintf(w, "🔒 %s\n", t.Name())
			continue
		}
		texts := resp.Texts(t)
		fmt.Fprintf(w, "🔓 %s (%d)\n", t.Name(), len(texts))
		for _, text := range texts {
			fmt.Fprintf(w, "   • %s\n", text)
		}
	}
}

func tierNames(tiers []models.Tier) string {
	names := make([]string, len(tiers))
	for i, t := range tiers {
		names[i] = t.Name()
	}
	return strings.Join(names, ", ")
}
