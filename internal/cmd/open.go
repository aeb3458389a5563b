package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpcatalog/mpcatalog/internal/exec"
	"github.com/mpcatalog/mpcatalog/internal/slogger"
)

var openCmd = &cobra.Command{
	Use:   "open <system-name>",
	Short: "Open a management pack's project page",
	Long: `Open the project page of a management pack in the default browser.

You are asked to confirm before the browser is launched unless --yes is set.`,
	Example: `  mpcatalog open Contoso.SQL.Monitoring
  mpcatalog open --yes Contoso.SQL.Monitoring`,
	Args: cobra.ExactArgs(1),
	RunE: runOpenCmd,
}

func runOpenCmd(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")

	sess, err := openCatalog(cmd)
	if err != nil {
		return err
	}

	entry, err := sess.store.Get(args[0])
	if err != nil {
		return err
	}
	if entry.URL == "" {
		return fmt.Errorf("%s has no project page", entry.SystemName)
	}

	if !yes {
		p, err := requirePrompter(cmd.Context())
		if err != nil {
			return err
		}
		ok, err := p.Confirm("Open "+entry.DisplayName+"?", entry.URL)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	browser := exec.NewBrowser(exec.New())
	if err := browser.Open(cmd.Context(), entry.URL); err != nil {
		if errors.Is(err, exec.ErrNoLauncher) {
			fmt.Fprintf(cmd.OutOrStdout(), "Open %s in your browser.\n", entry.URL)
			return nil
		}
		return fmt.Errorf("open %s: %w", entry.URL, err)
	}

	slogger.For(cmd.Context(), slogger.CategoryUI).Info("opened project page",
		"system_name", entry.SystemName, "url", entry.URL)
	return nil
}

func init() {
	rootCmd.AddCommand(openCmd)

	openCmd.Flags().BoolP("yes", "y", false, "open without asking for confirmation")
}
