package main

import (
	"encoding/json"
	"fmt"

	"vaultengine/internal/vault"

	"github.com/spf13/cobra"
)

func newListProjectsCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-projects",
		Short: "List every project under the storage root",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			summaries, err := vault.ListAllProjects(app.Root, nil, nil)
			if err != nil {
				return err
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(summaries)
			}

			if len(summaries) == 0 {
				fmt.Fprintln(app.Out, "No projects.")
				return nil
			}
			for _, s := range summaries {
				status := "unlocked"
				if s.Locked {
					status = fmt.Sprintf("locked (pid %d)", s.LockPID)
				}
				fmt.Fprintf(app.Out, "%-30s  %s\n", s.ProjectID, status)
			}
			return nil
		},
	}
	return cmd
}
