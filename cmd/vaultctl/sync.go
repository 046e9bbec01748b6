package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd(provider *AppProvider) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Force every staged chunk to disk immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			e, err := openProject(app, project)
			if err != nil {
				return err
			}
			defer e.Detach()

			if err := e.ForceSync(); err != nil {
				return err
			}

			fmt.Fprintln(app.Out, app.SuccessColor("synced"))
			return nil
		},
	}

	requireProjectFlag(cmd, &project)
	return cmd
}
