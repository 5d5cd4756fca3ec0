package main

import (
	"context"
	"fmt"
	"time"

	"tribe-backend/pkg/tribe"
)

func runCreate(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("create")
	name := fs.String("name", "", "tribe name")
	description := fs.String("description", "", "tribe description")
	supplies := fs.String("supplies", "", "max supply per tier, e.g. 100,50,10")
	prices := fs.String("prices", "", "price per tier in ETH, e.g. 0.001,0.01,0.1")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}
	in := tribe.CreateTribeInput{Name: *name, Description: *description}
	var err error
	if in.MaxSupplies, err = splitPerTier("supplies", *supplies); err != nil {
		return err
	}
	if in.Prices, err = splitPerTier("prices", *prices); err != nil {
		return err
	}

	factory, err := c.s.Factory()
	if err != nil {
		return err
	}
	dir := tribe.NewDirectory(factory)
	user := c.s.User()
	refresh := func(ctx context.Context) {
		view := dir.Load(ctx, user)
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintln(c.out, "🔄 refreshed")
		printDirectory(c.out, view, user)
	}

	m, err := tribe.CreateTribe(factory, c.s.Transactor(), in, refresh)
	if err != nil {
		return err
	}
	return c.execute(ctx, m)
}

func runMint(ctx context.Context, c *cli, args []string) error {
	pos, err := parseArgs(newFlagSet("mint"), args, 2)
	if err != nil {
		return err
	}
	addr, err := parseAddressArg("tribe", pos[0])
	if err != nil {
		return err
	}
	tier, err := parseTier(pos[1])
	if err != nil {
		return err
	}
	user := c.s.User()
	if user == nil {
		return tribe.ErrNotConnected
	}

	contract := c.s.Tribe(addr)
	reader := tribe.NewReader(contract)
	snap := reader.Read(ctx, user, nil)
	price, ok := snap.Price[tier].Get()
	if !ok {
		return fmt.Errorf("read %s price: %v", tier.Name(), snap.Price[tier].Err)
	}
	if stats, ok := snap.Stats(tier); ok && stats.SoldOut {
		return fmt.Errorf("%s is sold out", tier.Name())
	}
	fmt.Fprintf(c.out, "Minting %s for %s\n", tier.Name(), etherText(price))

	fetches := append(reader.SupplyFetches(), reader.UserFetches(*user)...)
	refresh := reloadTribe(c, reader, &snap, fetches, func(s tribe.Snapshot) {
		printTiers(c.out, s)
		printMembership(c.out, s)
	})

	m, err := tribe.Mint(contract, c.s.Transactor(), tier, price, refresh)
	if err != nil {
		return err
	}
	return c.execute(ctx, m)
}

func runList(ctx context.Context, c *cli, args []string) error {
	pos, err := parseArgs(newFlagSet("list"), args, 4)
	if err != nil {
		return err
	}
	addr, err := parseAddressArg("tribe", pos[0])
	if err != nil {
		return err
	}
	tokenID, err := parseTokenID(pos[1])
	if err != nil {
		return err
	}
	now := c.clock()
	expiration, err := parseExpiration(pos[3], now)
	if err != nil {
		return err
	}

	contract := c.s.Tribe(addr)
	reader := tribe.NewReader(contract)
	snap := tribe.NewSnapshot(addr)
	refresh := reloadTribe(c, reader, &snap, []tribe.Fetch{reader.ListingFetch()}, func(s tribe.Snapshot) {
		if listings, ok := s.Listings.Get(); ok {
			printListings(c.out, listings)
		}
	})

	in := tribe.ListInput{TokenID: tokenID, Price: pos[2], Expiration: expiration}
	m, err := tribe.List(contract, c.s.Transactor(), in, now, refresh)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Listing #%s for %s ETH until %s\n", tokenID, pos[2], expiration.Format(time.RFC3339))
	return c.execute(ctx, m)
}

func runBuy(ctx context.Context, c *cli, args []string) error {
	pos, err := parseArgs(newFlagSet("buy"), args, 2)
	if err != nil {
		return err
	}
	addr, err := parseAddressArg("tribe", pos[0])
	if err != nil {
		return err
	}
	tokenID, err := parseTokenID(pos[1])
	if err != nil {
		return err
	}
	user := c.s.User()
	if user == nil {
		return tribe.ErrNotConnected
	}

	contract := c.s.Tribe(addr)
	listing, err := contract.Listing(ctx, tokenID)
	if err != nil {
		return err
	}

	reader := tribe.NewReader(contract)
	snap := tribe.NewSnapshot(addr)
	fetches := append([]tribe.Fetch{reader.ListingFetch()}, reader.UserFetches(*user)...)
	refresh := reloadTribe(c, reader, &snap, fetches, func(s tribe.Snapshot) {
		if listings, ok := s.Listings.Get(); ok {
			printListings(c.out, listings)
		}
		printMembership(c.out, s)
	})

	m, err := tribe.Buy(contract, c.s.Transactor(), listing, c.clock(), refresh)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Buying #%s for %s\n", tokenID, etherText(listing.Price))
	return c.execute(ctx, m)
}
