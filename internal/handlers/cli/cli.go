// Package cli wires configuration, infrastructure, and the wallet
// synchronization pipeline into the walletsync command-line application.
package cli

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"
)

// Run initializes and executes the walletsync CLI application.
//
// Registered commands:
//
//   - `start`: runs the full synchronization pipeline against the node.
//   - `track`: registers a wallet for synchronization.
//   - `untrack`: removes a wallet and its derived state.
//   - `tip`: prints a wallet's recorded sync tip.
//
// Every command reads its configuration from WALLETSYNC_* environment
// variables; see config.go.
func Run(ctx context.Context) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "walletsync",
		Description:           "Keeps tracked wallets' derived views in sync with the chain.",
		Usage:                 "walletsync [command] [flags]",
		Commands: []*cli.Command{
			startPipelineCommand(),
			trackWalletCommand(),
			untrackWalletCommand(),
			walletTipCommand(),
		},
	}

	return app.Run(ctx, os.Args)
}
