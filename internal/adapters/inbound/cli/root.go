package cli

import "github.com/spf13/cobra"

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "comply",
		Short:         "RGPD compliance scanner for privacy policies and code",
		Long:          "Comply scores a privacy policy, and optionally the application's source repository, against RGPD consent, security and data-lifecycle rules.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.rulesPath, "rules", "", "Rule file (YAML or JSON); defaults to COMPLY_RULES_PATH or the built-in RGPD rules")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Optional .env file read before the environment")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log progress to stderr")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newScanCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newRulesCmd(opts))
	cmd.AddCommand(newMCPCmd(opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}
