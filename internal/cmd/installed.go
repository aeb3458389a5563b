package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mpcatalog/mpcatalog/internal/catalog"
	"github.com/mpcatalog/mpcatalog/internal/inventory"
	"github.com/mpcatalog/mpcatalog/internal/slogger"
)

var installedCmd = &cobra.Command{
	Use:   "installed",
	Short: "Manage the installed pack inventory",
	Long: `Manage the local inventory of management packs installed in your
management group. Catalog entries are matched to this inventory by name to
compute their installed version and update status.`,
}

var installedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded installed packs",
	Args:  cobra.NoArgs,
	RunE:  runInstalledList,
}

var installedRecordCmd = &cobra.Command{
	Use:   "record <name> <version>",
	Short: "Record an installed pack",
	Long: `Record that a management pack is installed. Recording a name that is
already present replaces its version.

Versions have two to four numeric components, such as 7.1 or 7.1.10226.0.`,
	Example: `  mpcatalog installed record Contoso.SQL.Monitoring 7.1.10226.0
  mpcatalog installed record --id 5f3a Contoso.SQL.Monitoring 7.2`,
	Args: cobra.ExactArgs(2),
	RunE: runInstalledRecord,
}

var installedForgetCmd = &cobra.Command{
	Use:   "forget <name>",
	Short: "Remove a pack from the inventory",
	Args:  cobra.ExactArgs(1),
	RunE:  runInstalledForget,
}

func runInstalledList(cmd *cobra.Command, args []string) error {
	inv, err := requireInventory(cmd.Context())
	if err != nil {
		return err
	}

	packs, err := inv.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list installed packs: %w", err)
	}

	if len(packs) == 0 {
		slogger.For(cmd.Context(), slogger.CategoryResource).Info("no installed packs recorded")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "NAME\tVERSION\tID\tRECORDED"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range packs {
		id := p.ID
		if id == "" {
			id = "-"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			p.Name,
			p.Version.String(),
			id,
			formatTimeAgo(p.RecordedAt),
		); err != nil {
			return fmt.Errorf("write pack: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func runInstalledRecord(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("id")

	inv, err := requireInventory(cmd.Context())
	if err != nil {
		return err
	}

	version, err := catalog.ParseVersion(args[1])
	if err != nil {
		return err
	}

	if err := inv.Record(cmd.Context(), inventory.Pack{Name: args[0], Version: version, ID: id}); err != nil {
		return fmt.Errorf("record pack: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s\n", args[0], version)
	return nil
}

func runInstalledForget(cmd *cobra.Command, args []string) error {
	inv, err := requireInventory(cmd.Context())
	if err != nil {
		return err
	}

	err = inv.Forget(cmd.Context(), args[0])
	if errors.Is(err, inventory.ErrNotFound) {
		return fmt.Errorf("%s is not recorded as installed", args[0])
	}
	if err != nil {
		return fmt.Errorf("forget pack: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Forgot %s\n", args[0])
	return nil
}

func init() {
	rootCmd.AddCommand(installedCmd)
	installedCmd.AddCommand(installedListCmd)
	installedCmd.AddCommand(installedRecordCmd)
	installedCmd.AddCommand(installedForgetCmd)

	installedRecordCmd.Flags().String("id", "", "identifier of the pack in the management group")
}
