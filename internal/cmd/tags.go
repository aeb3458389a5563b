package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List recommended search tags",
	Long: `List the search tags recommended by the catalog maintainers, in the order
they are published.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openCatalog(cmd)
		if err != nil {
			return err
		}

		for _, tag := range sess.store.RecommendedTags() {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), tag); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tagsCmd)
}
