package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mpcatalog/mpcatalog/internal/config"
	"github.com/mpcatalog/mpcatalog/internal/exec"
	"github.com/mpcatalog/mpcatalog/internal/slogger"
)

var errNoEditor = errors.New("EDITOR environment variable not set")

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "View and modify configuration",
	Long: `View and modify mpcatalog configuration.

With no arguments, displays all configuration.
With one argument, displays the value for the specified key.
With two arguments, sets the value for the specified key.

Every key can also be set through the environment, for example
MPCATALOG_CATALOG_SEED_URL for catalog.seed_url.`,
	Example: `  # Show all config
  mpcatalog config

  # Show value for a specific key
  mpcatalog config catalog.seed_url

  # Route requests through a proxy
  mpcatalog config proxy.address http://proxy.example.com:3128

  # Open config file in editor
  mpcatalog config --edit`,
	Args: cobra.RangeArgs(0, 2),
	// Skips the root hook so a broken configuration file can still be
	// inspected and repaired.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(slogger.WithLogger(cmd.Context(), slogger.New(slogger.Config{
			Verbosity: verbosity,
			Output:    cmd.ErrOrStderr(),
		})))
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := config.NewLoader()
		if err != nil {
			return fmt.Errorf("init config loader: %w", err)
		}

		editFlag, _ := cmd.Flags().GetBool("edit")
		if editFlag {
			return runEdit(cmd, loader)
		}

		out := cmd.OutOrStdout()
		switch len(args) {
		case 0:
			return runShowAll(out, loader)
		case 1:
			return runShowKey(out, loader, args[0])
		default:
			return runSetKey(cmd, loader, args[0], args[1])
		}
	},
}

func runEdit(cmd *cobra.Command, loader *config.Loader) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		return errNoEditor
	}

	// Load creates the file when missing. A file that fails validation is
	// exactly what the editor is for, so only read errors stop here.
	if _, err := loader.Load(); err != nil && !errors.Is(err, config.ErrInvalidConfig) {
		return fmt.Errorf("load config: %w", err)
	}

	_, err := exec.New().Run(cmd.Context(), &exec.RunOptions{
		Name:   editor,
		Args:   []string{loader.Path()},
		Stdin:  os.Stdin,
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	})
	return err
}

func runShowAll(out io.Writer, loader *config.Loader) error {
	if _, err := loader.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	data, err := yaml.Marshal(loader.AllSettings())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	fmt.Fprint(out, string(data))
	return nil
}

func runShowKey(out io.Writer, loader *config.Loader, key string) error {
	if err := config.ValidateKey(key); err != nil {
		return err
	}

	if _, err := loader.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	value, err := loader.Get(key)
	if err != nil {
		return err
	}

	switch v := value.(type) {
	case nil:
		fmt.Fprintln(out)
	case string:
		fmt.Fprintln(out, v)
	case map[string]any, []any:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal value: %w", err)
		}
		fmt.Fprint(out, string(data))
	default:
		fmt.Fprintln(out, value)
	}

	return nil
}

func runSetKey(cmd *cobra.Command, loader *config.Loader, key, value string) error {
	if _, err := loader.Load(); err != nil && !errors.Is(err, config.ErrInvalidConfig) {
		return fmt.Errorf("load config: %w", err)
	}

	if err := loader.Set(key, value); err != nil {
		return err
	}

	slogger.For(cmd.Context(), slogger.CategoryResource).Info("configuration updated", "key", key, "path", loader.Path())
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().Bool("edit", false, "open config file in $EDITOR")
}
