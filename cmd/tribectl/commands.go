package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"tribe-backend/pkg/session"
	"tribe-backend/pkg/tribe"
)

type cli struct {
	s   *session.Session
	out io.Writer
	now func() time.Time
}

func (c *cli) transition(tr tribe.Transition) { printTransition(c.out, tr) }

func (c *cli) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseArgs parses fs and checks the positional count.
func parseArgs(fs *flag.FlagSet, args []string, positional int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != positional {
		return nil, fmt.Errorf("%w: expected %d argument(s), got %d", errUsage, positional, fs.NArg())
	}
	return fs.Args(), nil
}

// execute runs m through the orchestrator and waits for the delayed
// refresh so that its output is not cut off by exit.
func (c *cli) execute(ctx context.Context, m tribe.Mutation) error {
	ctx, cancel := c.s.WithReceiptTimeout(ctx)
	defer cancel()
	res, err := c.s.Orchestrator.Execute(ctx, m)
	if err != nil {
		return err
	}
	if res.Receipt != nil {
		fmt.Fprintf(c.out, "   block %s, gas used %d\n", res.Receipt.BlockNumber, res.Receipt.GasUsed)
	}
	<-res.Refreshed
	return nil
}

func runTribes(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("tribes")
	creator := fs.String("creator", "", "creator address (defaults to the configured wallet)")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}
	user, err := c.s.Resolve(*creator)
	if err != nil {
		return err
	}
	dir, err := c.s.Directory()
	if err != nil {
		return err
	}
	printDirectory(c.out, dir.Load(ctx, user), user)
	return nil
}

func runShow(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("show")
	userFlag := fs.String("user", "", "member address (defaults to the configured wallet)")
	pos, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}
	addr, err := parseAddressArg("tribe", pos[0])
	if err != nil {
		return err
	}
	user, err := c.s.Resolve(*userFlag)
	if err != nil {
		return err
	}

	reader := tribe.NewReader(c.s.Tribe(addr))
	fmt.Fprintln(c.out, "Reading...")
	snap := reader.Read(ctx, user, func(u tribe.Update) { printUpdate(c.out, u) })
	fmt.Fprintln(c.out, "")
	printSnapshot(c.out, snap, user)
	return nil
}

func runHoldings(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("holdings")
	userFlag := fs.String("user", "", "member address (defaults to the configured wallet)")
	pos, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}
	addr, err := parseAddressArg("tribe", pos[0])
	if err != nil {
		return err
	}
	user, err := c.s.Resolve(*userFlag)
	if err != nil {
		return err
	}
	if user == nil {
		return tribe.ErrNotConnected
	}
	tokens, err := tribe.Holdings(ctx, c.s.Tribe(addr), *user)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Tokens held by %s:\n", user.Hex())
	printTokens(c.out, tokens)
	return nil
}

func runListings(ctx context.Context, c *cli, args []string) error {
	pos, err := parseArgs(newFlagSet("listings"), args, 1)
	if err != nil {
		return err
	}
	addr, err := parseAddressArg("tribe", pos[0])
	if err != nil {
		return err
	}
	listings, err := tribe.NewMarketplace(c.s.Tribe(addr)).Purchasable(ctx)
	if err != nil {
		return err
	}
	printListings(c.out, listings)
	return nil
}

func runWatch(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("watch")
	userFlag := fs.String("user", "", "member address (defaults to the configured wallet)")
	pos, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}
	addr, err := parseAddressArg("tribe", pos[0])
	if err != nil {
		return err
	}
	user, err := c.s.Resolve(*userFlag)
	if err != nil {
		return err
	}

	reader := tribe.NewReader(c.s.Tribe(addr))
	snap := reader.Read(ctx, user, nil)
	printSnapshot(c.out, snap, user)

	fetches := append(reader.SupplyFetches(), reader.ListingFetch())
	if user != nil {
		fetches = append(fetches, reader.UserFetches(*user)...)
	}
	fmt.Fprintf(c.out, "\nWatching every %s, Ctrl+C to stop.\n", c.s.Config.PollInterval)
	tribe.Poll(ctx, c.s.Config.PollInterval, func(ctx context.Context) {
		reader.Refresh(ctx, &snap, fetches)
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(c.out, "\n[%s]\n", c.clock().Format(time.TimeOnly))
		printTiers(c.out, snap)
		if listings, ok := snap.Listings.Get(); ok {
			printListings(c.out, listings)
		}
	})
	return nil
}

// reloadTribe re-reads fetches into snap and prints what a mutation
// changed. It is the refresh callback of the write commands.
func reloadTribe(c *cli, reader *tribe.Reader, snap *tribe.Snapshot, fetches []tribe.Fetch, show func(tribe.Snapshot)) func(context.Context) {
	return func(ctx context.Context) {
		reader.Refresh(ctx, snap, fetches)
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintln(c.out, "🔄 refreshed")
		show(*snap)
	}
}
