// Command tribectl reads and mutates tribes from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"tribe-backend/pkg/config"
	"tribe-backend/pkg/logging"
	"tribe-backend/pkg/session"
)

// errUsage marks argument errors; the command usage is printed after it.
var errUsage = errors.New("invalid arguments")

type command struct {
	usage   string
	summary string
	run     func(ctx context.Context, c *cli, args []string) error
}

var commands = map[string]command{
	"tribes":   {"tribes [--creator <address>]", "List all tribes and the tribes created by you", runTribes},
	"show":     {"show [--user <address>] <tribe>", "Read a tribe field by field", runShow},
	"holdings": {"holdings [--user <address>] <tribe>", "List the tokens a member holds", runHoldings},
	"listings": {"listings <tribe>", "List purchasable marketplace listings", runListings},
	"watch":    {"watch [--user <address>] <tribe>", "Poll supplies and listings until interrupted", runWatch},
	"create":   {"create --name <name> [--description <text>] --supplies a,b,c --prices x,y,z", "Create a tribe", runCreate},
	"mint":     {"mint <tribe> <tier>", "Mint a membership token at the tier price", runMint},
	"list":     {"list <tribe> <tokenId> <price> <expiration>", "List a token on the marketplace", runList},
	"buy":      {"buy <tribe> <tokenId>", "Buy a listed token", runBuy},
	"benefits": {"benefits [--user <address>] <tribe>", "Show the benefits unlocked for a member", runBenefits},
	"post":     {"post --text <text> --tiers 0,1,2 [--login] <tribe>", "Publish a benefit to one or more tiers", runPost},
	"token":    {"token", "Sign in to the benefit service and print the access token", runToken},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	args, globals, err := applyGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if len(args) < 1 {
		printUsage(stdout)
		return 0
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage(stdout)
		return 0
	}

	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n", name)
		printUsage(stderr)
		return 1
	}

	logging.SetupWriter(stderr, "tribectl", "cli", globals.debug)

	cfg, err := config.LoadClientConfig(globals.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{out: stdout}
	s, err := session.Open(ctx, cfg, c.transition)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer s.Close()
	c.s = s

	if err := cmd.run(ctx, c, args[1:]); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "Usage: tribectl %s\n", cmd.usage)
		}
		return 1
	}
	return 0
}

type globalFlags struct {
	configPath string
	debug      bool
}

// applyGlobalFlags strips --config and --debug wherever they appear.
func applyGlobalFlags(args []string) ([]string, globalFlags, error) {
	g := globalFlags{configPath: os.Getenv("TRIBECTL_CONFIG")}
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--config" || arg == "-config":
			if i+1 >= len(args) {
				return nil, g, fmt.Errorf("missing value for --config")
			}
			g.configPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			g.configPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--debug":
			g.debug = true
		default:
			out = append(out, arg)
		}
	}
	return out, g, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tribectl [--config <file>] [--debug] <command> [arguments]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-9s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "The config file is YAML (rpc_url, chain_id, factory_address, benefits_url, private_key, ...).")
	fmt.Fprintln(w, "TRIBE_PRIVATE_KEY and the other TRIBE_* variables override it.")
}
