package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpcatalog/mpcatalog/internal/keychain"
)

var errNoProxyUser = errors.New("proxy.username is not set; run 'mpcatalog config proxy.username <name>' first")

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Manage proxy credentials",
	Long: `Manage the password used to authenticate to the outbound proxy.

The proxy address and username are regular configuration keys. The password
is kept in the operating system keychain and never written to the
configuration file.`,
}

var proxyLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the proxy password",
	Args:  cobra.NoArgs,
	RunE:  runProxyLogin,
}

var proxyLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored proxy password",
	Args:  cobra.NoArgs,
	RunE:  runProxyLogout,
}

var proxyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a proxy password is stored",
	Args:  cobra.NoArgs,
	RunE:  runProxyStatus,
}

func runProxyLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := requireConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.Proxy.Username == "" {
		return errNoProxyUser
	}

	p, err := requirePrompter(ctx)
	if err != nil {
		return err
	}
	kc, err := requireKeychain(ctx)
	if err != nil {
		return err
	}

	password, err := p.Secret(fmt.Sprintf("Proxy password for %s", cfg.Proxy.Username))
	if err != nil {
		return err
	}
	if err := kc.Set(proxyAccount(cfg.Proxy.Username), password); err != nil {
		return fmt.Errorf("store proxy password: %w", err)
	}

	p.Print("Proxy password stored in the keychain.")
	return nil
}

func runProxyLogout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := requireConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.Proxy.Username == "" {
		return errNoProxyUser
	}
	kc, err := requireKeychain(ctx)
	if err != nil {
		return err
	}

	if err := kc.Delete(proxyAccount(cfg.Proxy.Username)); err != nil {
		return fmt.Errorf("remove proxy password: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Proxy password removed.")
	return nil
}

func runProxyStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := requireConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.Proxy.Address == "" {
		fmt.Fprintln(out, "proxy: not configured")
		return nil
	}
	fmt.Fprintf(out, "proxy: %s\n", cfg.Proxy.Address)
	if cfg.Proxy.Username == "" {
		fmt.Fprintln(out, "authentication: none")
		return nil
	}

	kc, err := requireKeychain(ctx)
	if err != nil {
		return err
	}
	_, err = kc.Get(proxyAccount(cfg.Proxy.Username))
	switch {
	case errors.Is(err, keychain.ErrNotFound):
		fmt.Fprintf(out, "authentication: %s (no password stored)\n", cfg.Proxy.Username)
	case err != nil:
		return fmt.Errorf("read proxy password: %w", err)
	default:
		fmt.Fprintf(out, "authentication: %s\n", cfg.Proxy.Username)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(proxyCmd)
	proxyCmd.AddCommand(proxyLoginCmd)
	proxyCmd.AddCommand(proxyLogoutCmd)
	proxyCmd.AddCommand(proxyStatusCmd)
}
