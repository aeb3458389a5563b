package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mpcatalog/mpcatalog/internal/catalog"
	"github.com/mpcatalog/mpcatalog/internal/search"
	"github.com/mpcatalog/mpcatalog/internal/slogger"
)

const (
	defaultColumns  = "system-name,name,version,status"
	suggestionLimit = 5
)

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search the catalog",
	Long: `Search the management pack catalog.

Text matches a pack when it is contained in the author, display name or
system name, or when it equals one of the pack's tags. Matching ignores
case. Comma separated text matches packs that satisfy every term.

By default only packs that are not installed are listed. Use --installed to
list installed packs instead, or --all to list both.

With no text every pack in the selected view is listed.`,
	Example: `  # Packs not yet installed that mention SQL
  mpcatalog search sql

  # Installed packs tagged both "network" and "cisco"
  mpcatalog search --installed network,cisco

  # Choose columns
  mpcatalog search --all --columns name,installed-version,version,status dns

  # Pick one result interactively and show it
  mpcatalog search --pick exchange`,
	Args: cobra.ArbitraryArgs,
	RunE: runSearchCmd,
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	installed, _ := cmd.Flags().GetBool("installed")
	all, _ := cmd.Flags().GetBool("all")
	pick, _ := cmd.Flags().GetBool("pick")
	columns, _ := cmd.Flags().GetString("columns")

	fields, err := catalog.ParseFields(columns)
	if err != nil {
		return fmt.Errorf("parse columns: %w", err)
	}

	filter := catalog.ListFilter{Install: catalog.NotInstalled}
	switch {
	case all:
		filter.Install = catalog.AnyInstall
	case installed:
		filter.Install = catalog.OnlyInstalled
	}

	text := strings.Join(args, " ")
	if strings.TrimSpace(text) != "" {
		filter.Match = search.For(text)
	}

	sess, err := openCatalog(cmd)
	if err != nil {
		return err
	}

	entries := sess.store.Visible(filter)
	slogger.For(cmd.Context(), slogger.CategoryUI).Info("search complete",
		"text", text, "matches", len(entries), "catalog", sess.store.Len())

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		return printNoMatches(out, text, sess.store.RecommendedTags())
	}

	if pick {
		return pickEntry(cmd, sess, entries)
	}

	return writeEntries(out, entries, fields)
}

// writeEntries prints entries as an aligned table.
func writeEntries(out io.Writer, entries []*catalog.Entry, fields []catalog.Field) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = f.Header()
	}
	if _, err := fmt.Fprintln(w, strings.Join(headers, "\t")); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(fields))
	for _, entry := range entries {
		for i, f := range fields {
			value, err := entry.Value(f)
			if err != nil {
				return err
			}
			row[i] = value
		}
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return fmt.Errorf("write entry: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func printNoMatches(out io.Writer, text string, recommended []string) error {
	if strings.TrimSpace(text) == "" {
		_, err := fmt.Fprintln(out, "No management packs found.")
		return err
	}

	if _, err := fmt.Fprintf(out, "No management packs match %q.\n", text); err != nil {
		return err
	}

	suggestions := search.SuggestTags(text, recommended, suggestionLimit)
	if len(suggestions) == 0 {
		return nil
	}
	_, err := fmt.Fprintf(out, "Recommended tags: %s\n", strings.Join(suggestions, ", "))
	return err
}

func pickEntry(cmd *cobra.Command, sess *session, entries []*catalog.Entry) error {
	p, err := requirePrompter(cmd.Context())
	if err != nil {
		return err
	}

	options := make([]string, len(entries))
	for i, e := range entries {
		options[i] = fmt.Sprintf("%s (%s)", e.DisplayName, e.SystemName)
	}

	idx, err := p.Choice("Select a management pack", options)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(entries) {
		return errors.New("selection out of range")
	}

	return showEntry(cmd, sess, entries[idx])
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().BoolP("installed", "i", false, "list installed packs instead of packs to discover")
	searchCmd.Flags().BoolP("all", "a", false, "list installed and not installed packs")
	searchCmd.Flags().StringP("columns", "c", defaultColumns, "comma separated columns to display")
	searchCmd.Flags().BoolP("pick", "p", false, "choose one result interactively and show its details")
	searchCmd.MarkFlagsMutuallyExclusive("installed", "all")
}
