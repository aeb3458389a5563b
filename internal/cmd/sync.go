package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpcatalog/mpcatalog/internal/catalog"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download the catalog and summarize it",
	Long: `Download the management pack catalog, match it against the installed
inventory and print a summary.

With --metrics-textfile, fetch and populate metrics are written in the
Prometheus text format, suitable for the node_exporter textfile collector.`,
	Example: `  mpcatalog sync
  mpcatalog sync --metrics-textfile /var/lib/node_exporter/mpcatalog.prom`,
	Args: cobra.NoArgs,
	RunE: runSyncCmd,
}

func runSyncCmd(cmd *cobra.Command, args []string) error {
	textfile, _ := cmd.Flags().GetString("metrics-textfile")

	sess, err := openCatalog(cmd)
	if err != nil {
		if sess != nil && textfile != "" {
			if werr := sess.metrics.WriteTextfile(textfile); werr != nil {
				return errors.Join(err, fmt.Errorf("write metrics: %w", werr))
			}
		}
		return err
	}

	updates := 0
	for _, e := range sess.store.Visible(catalog.ListFilter{Install: catalog.OnlyInstalled}) {
		if e.Status() == catalog.StatusUpdateAvailable {
			updates++
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Catalog synchronized from %s\n", sess.store.Base())
	fmt.Fprintf(cmd.OutOrStdout(), "  packs:            %d\n", sess.store.Len())
	fmt.Fprintf(cmd.OutOrStdout(), "  installed:        %d\n", sess.matched)
	fmt.Fprintf(cmd.OutOrStdout(), "  updates:          %d\n", updates)
	fmt.Fprintf(cmd.OutOrStdout(), "  recommended tags: %d\n", len(sess.store.RecommendedTags()))

	if textfile != "" {
		if err := sess.metrics.WriteTextfile(textfile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().String("metrics-textfile", "", "write Prometheus metrics to this file")
}
