package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change settings",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the location of config.json",
	Args:  cobra.NoArgs,
	RunE: withApp(func(_ context.Context, a *app, _ []string) error {
		fmt.Fprintln(a.out, a.cfg.Path())
		return nil
	}),
}

var configAutoLockCmd = &cobra.Command{
	Use:   "auto-lock [minutes]",
	Short: "Show or set the idle auto-lock timeout (0 disables)",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(_ context.Context, a *app, args []string) error {
		_, err := a.setAutoLock(args)
		return err
	}),
}

func init() {
	configCmd.AddCommand(configPathCmd, configAutoLockCmd)
	rootCmd.AddCommand(configCmd)
}

// setAutoLock prints the timeout, or sets it when args carries a value. It
// returns the effective minutes.
func (a *app) setAutoLock(args []string) (uint32, error) {
	if len(args) == 0 {
		minutes, err := a.cfg.AutoLockMinutes()
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(a.out, "auto-lock: %d minutes\n", minutes)
		return minutes, nil
	}

	n, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid minutes %q", args[0])
	}
	minutes := uint32(n)
	if err := a.cfg.SetAutoLockMinutes(minutes); err != nil {
		return 0, err
	}
	fmt.Fprintf(a.out, "auto-lock set to %d minutes\n", minutes)
	return minutes, nil
}
