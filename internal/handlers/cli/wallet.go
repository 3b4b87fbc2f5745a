package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabapcia/walletsync/internal/infra/storage/redis"
	"github.com/gabapcia/walletsync/internal/walletsync"

	"github.com/urfave/cli/v3"
)

// walletStoreFromEnv builds the redis-backed wallet store for the wallet
// management commands.
func walletStoreFromEnv(ctx context.Context) (*redis.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	return redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB)
}

// trackWalletCommand returns the CLI command that registers a wallet for
// synchronization.
//
// Usage example:
//
//	walletsync track --wallet w1 --tip 0xabc...
//
// Without --tip the wallet stays unsynchronized and is skipped until a tip
// is recorded for it.
func trackWalletCommand() *cli.Command {
	return &cli.Command{
		Name:        "track",
		Description: "Register a wallet for synchronization, optionally starting from a known chain tip.",
		Usage:       "Registers a wallet. Requires the wallet id; the initial tip is optional.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "wallet",
				Usage:    "Wallet id to start tracking",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "tip",
				Usage: "Chain tip hash the wallet's view currently reflects",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			store, err := walletStoreFromEnv(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			return store.TrackWallet(ctx,
				walletsync.WalletID(c.String("wallet")),
				walletsync.HeaderHash(c.String("tip")),
			)
		},
	}
}

// untrackWalletCommand returns the CLI command that removes a wallet and
// its derived state.
//
// Usage example:
//
//	walletsync untrack --wallet w1
func untrackWalletCommand() *cli.Command {
	return &cli.Command{
		Name:        "untrack",
		Description: "Remove a wallet from synchronization along with its derived state.",
		Usage:       "Stops tracking a wallet. Requires the wallet id.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "wallet",
				Usage:    "Wallet id to stop tracking",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			store, err := walletStoreFromEnv(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			return store.UntrackWallet(ctx, walletsync.WalletID(c.String("wallet")))
		},
	}
}

// walletTipCommand returns the CLI command that prints a wallet's recorded
// sync tip.
//
// Usage example:
//
//	walletsync tip --wallet w1
func walletTipCommand() *cli.Command {
	return &cli.Command{
		Name:        "tip",
		Description: "Print the chain tip a wallet's stored view currently reflects.",
		Usage:       "Shows a wallet's sync state. Requires the wallet id.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "wallet",
				Usage:    "Wallet id to inspect",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			store, err := walletStoreFromEnv(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			wallet := walletsync.WalletID(c.String("wallet"))
			syncTip, err := store.WalletSyncTip(ctx, wallet)
			if err != nil {
				if errors.Is(err, walletsync.ErrWalletNotTracked) {
					fmt.Printf("%s: not tracked\n", wallet)
					return nil
				}
				return err
			}

			if !syncTip.Synced {
				fmt.Printf("%s: tracked, never synchronized\n", wallet)
				return nil
			}

			fmt.Printf("%s: synced with %s\n", wallet, syncTip.Tip)
			return nil
		},
	}
}
