package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmcleod/ironvault/internal/autolock"
)

const shellHelp = `Commands:
  init <path>        create a new vault
  open <path>        unlock an existing vault
  login              unlock the configured vault
  load               print the decrypted payload
  save <payload>     encrypt and write a payload
  lock | logout      discard the session key
  status             show settings and lock state
  auto-lock [mins]   show or set the idle timeout (0 disables)
  help               show this help
  exit | quit        leave the shell`

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session that keeps the vault unlocked until idle",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		return a.runShell(ctx)
	}),
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func (a *app) runShell(ctx context.Context) error {
	minutes, err := a.cfg.AutoLockMinutes()
	if err != nil {
		return err
	}
	idle := autolock.New(autolock.Minutes(minutes), a.vault.Lock)
	defer idle.Stop()

	printBanner(a.out)
	fmt.Fprintln(a.out, `Type "help" for commands.`)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(a.out, "ironvault> ")
		line, err := a.in.ReadString('\n')
		if line == "" && err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(a.out)
				return nil
			}
			return err
		}

		idle.Touch()
		done, cmdErr := a.dispatch(ctx, strings.TrimSpace(line), idle)
		if cmdErr != nil {
			fmt.Fprintf(a.out, "error: %v\n", cmdErr)
		}
		if done {
			return nil
		}
		// Key derivation can take a while; count its end as activity too.
		idle.Touch()
	}
}

// dispatch runs one shell line. It reports whether the shell should exit.
func (a *app) dispatch(ctx context.Context, line string, idle *autolock.Timer) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "help":
		fmt.Fprintln(a.out, shellHelp)
	case "init", "open":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: %s <path>", name)
		}
		if name == "init" {
			return false, a.initVault(ctx, args[0])
		}
		return false, a.openVault(ctx, args[0])
	case "login":
		return false, a.login(ctx)
	case "load":
		return false, a.load(ctx)
	case "save":
		payload := strings.TrimSpace(strings.TrimPrefix(line, name))
		if payload == "" {
			return false, errors.New("usage: save <payload>")
		}
		return false, a.save(ctx, payload)
	case "lock", "logout":
		a.vault.Lock()
		fmt.Fprintln(a.out, "Locked")
	case "status":
		return false, a.status(ctx)
	case "auto-lock":
		minutes, err := a.setAutoLock(args)
		if err != nil {
			return false, err
		}
		if len(args) > 0 {
			idle.SetTimeout(autolock.Minutes(minutes))
		}
	case "exit", "quit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q, type \"help\"", name)
	}
	return false, nil
}
