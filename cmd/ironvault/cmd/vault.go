package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Create a new vault and make it the configured vault",
	Long: `Create a new, empty vault at <path> sealed with a new master passphrase.
An existing vault at <path> is replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		return a.initVault(ctx, args[0])
	}),
}

var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Verify the passphrase for an existing vault and make it the configured vault",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		return a.openVault(ctx, args[0])
	}),
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify the passphrase for the configured vault",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		return a.login(ctx)
	}),
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Decrypt the configured vault and print its payload",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		if err := a.ensureUnlocked(ctx); err != nil {
			return err
		}
		return a.load(ctx)
	}),
}

var saveCmd = &cobra.Command{
	Use:   "save [file|-]",
	Short: "Encrypt a payload into the configured vault",
	Long: `Encrypt a payload into the configured vault. The payload is read from
[file], or from standard input when omitted or "-". When standard input is
not a terminal, its first line is the passphrase and the rest the payload.`,
	Args: cobra.MaximumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if err := a.ensureUnlocked(ctx); err != nil {
			return err
		}
		var src string
		if len(args) == 1 {
			src = args[0]
		}
		payload, err := a.readPayload(src)
		if err != nil {
			return err
		}
		return a.save(ctx, payload)
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the configured vault and settings",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		return a.status(ctx)
	}),
}

func init() {
	rootCmd.AddCommand(initCmd, openCmd, loginCmd, loadCmd, saveCmd, statusCmd)
}
