package main

import (
	"context"
	"fmt"
	"strings"
	"time"
)

func runBenefits(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("benefits")
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
		fmt.Fprintln(c.out, "Connect a wallet (private_key) or pass --user to see benefits.")
		return nil
	}

	resp, err := c.s.Benefits.Fetch(ctx, addr, *user)
	if err != nil {
		return err
	}
	printBenefits(c.out, resp)
	return nil
}

func runPost(ctx context.Context, c *cli, args []string) error {
	fs := newFlagSet("post")
	text := fs.String("text", "", "benefit text")
	tierList := fs.String("tiers", "", "comma separated tiers, e.g. 0,2 or bronze,gold")
	login := fs.Bool("login", false, "sign in with the configured wallet first")
	pos, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}
	addr, err := parseAddressArg("tribe", pos[0])
	if err != nil {
		return err
	}
	if strings.TrimSpace(*text) == "" {
		return fmt.Errorf("%w: --text is required", errUsage)
	}
	tiers, err := parseTiers(*tierList)
	if err != nil {
		return err
	}

	if *login {
		if _, err := c.s.Login(ctx); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	resp, err := c.s.Benefits.Post(ctx, addr, *text, tiers)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "✅ %s (%s)\n", resp.Message, tierNames(tiers))
	for _, r := range resp.Results {
		fmt.Fprintf(c.out, "   %s: %s\n", r.Tier.Name(), r.InsertedID)
	}
	return nil
}

func runToken(ctx context.Context, c *cli, args []string) error {
	if _, err := parseArgs(newFlagSet("token"), args, 0); err != nil {
		return err
	}
	resp, err := c.s.Login(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Address: %s\n", resp.Address)
	fmt.Fprintf(c.out, "Expires: %s\n", time.Unix(resp.ExpiresAt, 0).UTC().Format(time.RFC3339))
	fmt.Fprintln(c.out, resp.Token)
	return nil
}
