package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/vtscope/internal/appconfig"
)

func newConfigCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:           "config [path]",
		Short:         "write a default config file",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			written, err := appconfig.WriteDefault(path, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", written)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")
	return cmd
}
