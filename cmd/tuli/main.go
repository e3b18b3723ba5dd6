package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"tuli_go/internal/app"
	"tuli_go/internal/domain"
	"tuli_go/internal/metadata"
	"tuli_go/internal/signer"

	"github.com/holiman/uint256"
)

const usage = `usage: tuli [-config path] <command> [args]

commands:
  verify <media-id>                       re-hash content and metadata against the ledger
  profiles <address>...                   look up user profiles (1-100 addresses)
  shares <media-id>                       print a media's current bid shares
  split <amount> <creator> <owner> <prev> check that amount splits evenly across shares
  domain                                  print the typed-message signing domain
  metadata <file>                         validate, minify and hash a metadata document
`

func main() {
	configPath := flag.String("config", app.DefaultConfigPath, "path to config.yaml")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	if err := run(ctx, *configPath, cmd, args); err != nil {
		if errors.Is(err, errUnknownCommand) {
			flag.Usage()
		}
		slog.Error("command failed", slog.String("command", cmd), slog.Any("error", err))
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var errUnknownCommand = errors.New("unknown command")

// onlineCommands need a config file and a ledger connection.
var onlineCommands = map[string]bool{
	"verify":   true,
	"profiles": true,
	"shares":   true,
	"domain":   true,
}

func run(ctx context.Context, configPath, cmd string, args []string) error {
	// Offline commands need neither config nor ledger.
	switch cmd {
	case "split":
		return runSplit(args)
	case "metadata":
		return runMetadata(args)
	}
	if !onlineCommands[cmd] {
		return fmt.Errorf("%w %q", errUnknownCommand, cmd)
	}
	return runOnline(ctx, configPath, cmd, args)
}

func runOnline(ctx context.Context, configPath, cmd string, args []string) error {
	bootstrap := app.NewBootstrap(configPath)
	if err := bootstrap.Initialize(ctx); err != nil {
		return fmt.Errorf("bootstrapping failed: %w", err)
	}
	defer bootstrap.Close()
	defer bootstrap.LogMetrics()

	switch cmd {
	case "verify":
		id, err := mediaIDArg(args)
		if err != nil {
			return err
		}
		rec, err := bootstrap.VerifyAndRecord(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(rec)

	case "profiles":
		profiles, err := bootstrap.Profiles.Profiles(ctx, args)
		if err != nil {
			return err
		}
		return printJSON(profiles)

	case "shares":
		id, err := mediaIDArg(args)
		if err != nil {
			return err
		}
		shares, err := bootstrap.Client.CurrentBidShares(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(map[string]string{
			"creator":   shares.Creator.String(),
			"owner":     shares.Owner.String(),
			"prevOwner": shares.PrevOwner.String(),
		})

	case "domain":
		dom := bootstrap.Client.EIP712Domain()
		return printJSON(map[string]any{
			"name":              dom.Name,
			"version":           dom.Version,
			"chainId":           dom.ChainID,
			"verifyingContract": dom.VerifyingContract.Hex(),
			"mintWithSig":       signer.TypeString(signer.MintWithSigTypedData(dom, signer.MintWithSigMessage{})),
			"permit":            signer.TypeString(signer.PermitTypedData(dom, signer.PermitMessage{})),
		})
	}

	return fmt.Errorf("%w %q", errUnknownCommand, cmd)
}

func mediaIDArg(args []string) (*big.Int, error) {
	if len(args) != 1 {
		return nil, errors.New("expected exactly one media id")
	}
	id, ok := new(big.Int).SetString(args[0], 10)
	if !ok || id.Sign() < 0 {
		return nil, fmt.Errorf("invalid media id %q", args[0])
	}
	return id, nil
}

func runSplit(args []string) error {
	if len(args) != 4 {
		return errors.New("usage: split <amount> <creator> <owner> <prev>")
	}
	amount, ok := new(big.Int).SetString(args[0], 10)
	if !ok {
		return fmt.Errorf("invalid amount %q", args[0])
	}

	var parsed [3]domain.Decimal
	for i, s := range args[1:] {
		d, err := domain.FromString(s)
		if err != nil {
			return err
		}
		parsed[i] = d
	}
	shares := domain.BidShares{Creator: parsed[0], Owner: parsed[1], PrevOwner: parsed[2]}
	if err := domain.ValidateBidShares(shares); err != nil {
		return err
	}

	out := map[string]any{
		"amount":       amount.String(),
		"splitsEvenly": domain.SplitsEvenly(amount, shares),
	}
	if a, overflow := uint256.FromBig(amount); !overflow && amount.Sign() >= 0 {
		for name, share := range map[string]domain.Decimal{
			"creator":   shares.Creator,
			"owner":     shares.Owner,
			"prevOwner": shares.PrevOwner,
		} {
			if part, ok := domain.SplitShare(share, a); ok {
				out[name] = part.Dec()
			}
		}
	}
	return printJSON(out)
}

func runMetadata(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: metadata <file>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	doc, err := metadata.Parse(data)
	if err != nil {
		return err
	}
	version, _ := doc["version"].(string)
	if version == "" {
		version = metadata.Version20210101
	}
	minified, err := metadata.Generate(version, doc)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{
		"version":  version,
		"document": minified,
		"hash":     domain.HashHex(metadata.Hash(minified)),
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
