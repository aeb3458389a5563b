package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mpcatalog/mpcatalog/internal/catalog"
	"github.com/mpcatalog/mpcatalog/internal/slogger"
)

var showCmd = &cobra.Command{
	Use:   "show <system-name>",
	Short: "Show the details of a management pack",
	Long: `Show every published detail of a management pack, its installed status
and its readme.`,
	Example: `  mpcatalog show Contoso.SQL.Monitoring`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openCatalog(cmd)
		if err != nil {
			return err
		}

		entry, err := sess.store.Get(args[0])
		if err != nil {
			return err
		}
		return showEntry(cmd, sess, entry)
	},
}

func showEntry(cmd *cobra.Command, sess *session, entry *catalog.Entry) error {
	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	license := "Free"
	if !entry.IsFree {
		license = "Paid"
	}
	if entry.CommercialAuthor {
		license += " (commercial author)"
	}

	rows := [][2]string{
		{"Name", entry.DisplayName},
		{"System name", entry.SystemName},
		{"Author", entry.Author},
		{"Version", entry.Version.String()},
		{"Installed version", entry.InstalledVersion()},
		{"Status", string(entry.Status())},
		{"License", license},
		{"URL", entry.URL},
		{"Tags", strings.Join(entry.Tags(), ", ")},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s:\t%s\n", r[0], r[1]); err != nil {
			return fmt.Errorf("write details: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	if entry.Description != "" {
		if _, err := fmt.Fprintf(out, "\n%s\n", entry.Description); err != nil {
			return err
		}
	}

	readme := entry.Readme
	if readme == "" && sess.store.Base() != "" {
		// The readme is optional during sync; try once more on demand.
		fetched, err := sess.client.FetchReadme(cmd.Context(), sess.store.Base(), entry.SystemName)
		if err != nil {
			slogger.For(cmd.Context(), slogger.CategoryExternal).Warn("readme unavailable",
				"system_name", entry.SystemName, "error", err)
		}
		readme = fetched
	}
	if readme != "" {
		if _, err := fmt.Fprintf(out, "\n%s\n", strings.TrimRight(readme, "\n")); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(showCmd)
}
