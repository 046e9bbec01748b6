package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDetachCmd(provider *AppProvider) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "detach",
		Short: "Flush pending writes and release a project's lock",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			e, err := openProject(app, project)
			if err != nil {
				return err
			}
			if err := e.Detach(); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, app.SuccessColor("detached"))
			return nil
		},
	}
	requireProjectFlag(cmd, &project)
	return cmd
}
