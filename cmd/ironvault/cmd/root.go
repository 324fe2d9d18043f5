package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jmcleod/ironvault/internal/util"
)

var (
	configDir  string
	backend    string
	logLevel   string
	kdfProfile string
)

var rootCmd = &cobra.Command{
	Use:   "ironvault",
	Short: "IronVault is a passphrase-protected local password vault",
	Long: `A local, single-user password vault. The vault file is sealed with
AES-256-GCM under a key derived from your master passphrase with Argon2id.`,
	SilenceUsage: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configDir, "config-dir", "", "Directory holding config.json (default: user config dir)")
	flags.StringVar(&backend, "backend", backendFile, "Storage backend: file or bolt")
	flags.StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	flags.StringVar(&kdfProfile, "kdf-profile", util.KDFProfileInteractive, "Argon2id profile: interactive, moderate or sensitive")
}
