package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/saad-KH/CrispyPhysics-sub000/internal/scenario"
)

// NewDefaultsCommand creates the defaults command.
func NewDefaultsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the default scenario",
		Long: `Print the default scenario: world configuration and run plan. The
text output is a valid scenario file to start from.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDefaults(rootOpts, cmd)
		},
	}
}

func runDefaults(opts *RootOptions, cmd *cobra.Command) error {
	defaults := scenario.Default()

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.Success(defaults)
	}

	out, err := yaml.Marshal(defaults)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to encode defaults", err)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))
	return err
}
