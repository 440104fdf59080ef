package commands

import (
	"github.com/spf13/cobra"

	"github.com/yaknet/monkeysync/internal/buildinfo"
	"github.com/yaknet/monkeysync/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "monkeysync",
		Short:   "Reconcile Stripe transactions into MonkeyPod imports",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", config.FileName, "project config file")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file with secrets, relative to the project")
	flags.StringVar(&a.secretsFile, "secrets", "secrets.ejson", "ejson secrets file, relative to the project")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (overrides config)")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: console or json (overrides config)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newReconcileCommand(a))
	rootCmd.AddCommand(newEntityCommand(a))
	rootCmd.AddCommand(newDirectoryCommand(a))
	rootCmd.AddCommand(newPayoutsCommand())
	rootCmd.AddCommand(newRunsCommand(a))

	return rootCmd
}
