// Package cmd implements the mpcatalog CLI commands using Cobra.
// It provides commands for synchronizing the community management pack
// catalog, searching and inspecting it, and tracking which packs are
// installed locally.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mpcatalog/mpcatalog/internal/catalog"
	"github.com/mpcatalog/mpcatalog/internal/config"
	"github.com/mpcatalog/mpcatalog/internal/inventory"
	"github.com/mpcatalog/mpcatalog/internal/keychain"
	"github.com/mpcatalog/mpcatalog/internal/prompt"
	"github.com/mpcatalog/mpcatalog/internal/slogger"
	"github.com/mpcatalog/mpcatalog/internal/spinner"
)

// verbosity is the count of -v flags.
var verbosity int

var rootCmd = &cobra.Command{
	Use:   "mpcatalog",
	Short: "Browse the community management pack catalog",
	Long: `mpcatalog synchronizes the community Management Pack Catalog and lets you
search it, inspect individual packs and compare them against the packs
installed in your management group.

The installed inventory is a local file maintained with "mpcatalog installed".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ctx := slogger.WithLogger(cmd.Context(), slogger.New(slogger.Config{
			Verbosity: verbosity,
			Output:    cmd.ErrOrStderr(),
		}))

		loader, err := config.NewLoader()
		if err != nil {
			return fmt.Errorf("init config loader: %w", err)
		}
		cfg, err := loader.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		// Store dependencies in context for subcommands
		ctx = WithConfig(ctx, cfg)
		ctx = WithLoader(ctx, loader)
		ctx = WithInventory(ctx, inventory.NewStore(cfg.Storage.Inventory))
		ctx = WithKeychain(ctx, keychain.New())
		ctx = WithPrompter(ctx, prompt.New(cmd.OutOrStdout(), !spinner.Enabled(os.Stdin)))
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v info, -vv debug)")
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// Main runs the CLI and returns the process exit code.
func Main() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := Execute(ctx)
	if err == nil {
		return 0
	}

	if errors.Is(err, prompt.ErrCanceled) {
		return exitCanceled
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if catalog.IsConnectivityError(err) {
		return exitOffline
	}
	return 1
}

// Exit codes beyond the generic failure.
const (
	exitOffline  = 3
	exitCanceled = 130
)
