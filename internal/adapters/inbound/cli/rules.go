package cli

import (
	"fmt"

	"github.com/complyai/comply/internal/adapters/outbound/rules"
	"github.com/complyai/comply/internal/adapters/outbound/tui"
	"github.com/spf13/cobra"
)

func newRulesCmd(opts *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the loaded RGPD rules",
		Long:  "Load and validate the rule set (built-in or --rules) and list it. Exits non-zero if the rule set is invalid.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			rs, err := rules.New().Load(cfg.RulesPath)
			if err != nil {
				return fmt.Errorf("loading rules: %w", err)
			}

			if jsonOutput {
				return renderJSON(cmd, struct {
					Version string `json:"version"`
					Count   int    `json:"count"`
					Rules   any    `json:"rules"`
				}{rs.Version(), rs.Len(), rs.Rules()})
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderRules(rs))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output rules as JSON")
	return cmd
}
