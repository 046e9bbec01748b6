package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd(provider *AppProvider) *cobra.Command {
	var project string
	var confirm bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Permanently delete a project",
		Long:  `Delete removes a project's entire directory tree. Requires --confirm.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			e, err := openProject(app, project)
			if err != nil {
				return err
			}

			if err := e.DeleteProject(confirm); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, app.WarnColor("deleted project "+project))
			return nil
		},
	}
	requireProjectFlag(cmd, &project)
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm the irreversible delete")
	return cmd
}
