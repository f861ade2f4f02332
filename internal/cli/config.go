package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"f1stats/internal/config"
	"f1stats/pkg/utils"
)

// firstNonEmpty picks a flag value over its configured default.
var firstNonEmpty = utils.NewStringHelper().FirstNonEmpty

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	var force bool

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := DefaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}

			if err := config.Default().SaveConfig(path); err != nil {
				return err
			}

			printf(cmd, "✅ Wrote %s\n", path)

			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := rootOpts.load(cmd)
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(e.cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}

			printf(cmd, "%s", data)

			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)

	return cmd
}
