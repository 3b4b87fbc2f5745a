package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabapcia/walletsync/internal/chainfeed"
	chainrpc "github.com/gabapcia/walletsync/internal/infra/chain/jsonrpc"
	keystorefile "github.com/gabapcia/walletsync/internal/infra/keystore/file"
	"github.com/gabapcia/walletsync/internal/infra/report/webhook"
	"github.com/gabapcia/walletsync/internal/infra/storage/redis"
	"github.com/gabapcia/walletsync/internal/pkg/logger"
	"github.com/gabapcia/walletsync/internal/pkg/telemetry"
	transporthttp "github.com/gabapcia/walletsync/internal/pkg/transport/http"
	transportjsonrpc "github.com/gabapcia/walletsync/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/walletsync/internal/slotting"
	"github.com/gabapcia/walletsync/internal/txtracker"
	"github.com/gabapcia/walletsync/internal/walletsync"

	"github.com/urfave/cli/v3"
)

// startPipelineCommand returns the CLI command that runs the full
// synchronization pipeline: chain polling, window construction, and
// per-wallet synchronization.
//
// Usage example:
//
//	walletsync start
//
// The process runs until it receives SIGINT or SIGTERM.
func startPipelineCommand() *cli.Command {
	return &cli.Command{
		Name:        "start",
		Description: "Starts the wallet synchronization pipeline against the configured node.",
		Usage:       "Runs chain polling and wallet synchronization. Terminates gracefully on Ctrl+C.",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if cfg.TelemetryEnabled {
				shutdown, err := telemetry.Init(ctx, "walletsync")
				if err != nil {
					return err
				}
				defer shutdown(context.WithoutCancel(ctx))
			}

			loggerOpts := []logger.Option{logger.WithLevel(cfg.LogLevel)}
			if cfg.SecureLogs {
				loggerOpts = append(loggerOpts, logger.WithSecureOutput())
			}
			if err := logger.Init(loggerOpts...); err != nil {
				return err
			}
			defer logger.Sync()

			store, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB)
			if err != nil {
				return err
			}
			defer store.Close()

			keys, err := keystorefile.New(cfg.KeystorePath, cfg.KeystorePassphrase)
			if err != nil {
				return err
			}

			slots, err := slotting.New(cfg.SystemStart, cfg.SlotsPerEpoch, cfg.SlotDuration)
			if err != nil {
				return err
			}
			logger.Info(ctx, "slotting schedule loaded",
				"system.start", cfg.SystemStart,
				"epoch.current", slots.EpochOf(slots.SlotAt(time.Now())),
			)

			chain := chainrpc.NewClient(transportjsonrpc.NewClient(
				transporthttp.NewClient().StandardClient(),
				cfg.NodeRPCEndpoint,
			))

			var syncOpts []walletsync.Option
			if cfg.ReportEndpoint != "" {
				syncOpts = append(syncOpts, walletsync.WithErrorReporter(
					webhook.New(transporthttp.NewClient(), cfg.ReportEndpoint),
				))
			}

			// The synchronizer's tip checks must see the chain as it was
			// when each window began, not the node's live tip, which has
			// already moved by dispatch time. The feed freezes the pin
			// before every window delivery.
			pin := chainfeed.NewTipPin()

			sync := walletsync.New(pin, slots, store, keys, txtracker.New(), syncOpts...)

			feed := chainfeed.New(chain, sync,
				chainfeed.WithPollInterval(cfg.PollInterval),
				chainfeed.WithMaxReorgDepth(cfg.MaxReorgDepth),
				chainfeed.WithTipPin(pin),
			)

			quit := make(chan os.Signal, 1)
			defer close(quit)

			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			if err := feed.Start(ctx); err != nil {
				return err
			}
			defer feed.Close()

			<-quit
			return nil
		},
	}
}
