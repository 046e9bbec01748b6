package main

import (
	"fmt"

	"vaultengine/internal/vault"

	"github.com/spf13/cobra"
)

// engineOptions builds vault.Options from the resolved App configuration.
func engineOptions(app *App) vault.Options {
	opts := vault.DefaultOptions(app.Values.Root)
	opts.Debounce = app.Values.Debounce
	opts.CheckpointRetain = app.Values.CheckpointRetain
	opts.Sinks = &vault.Sinks{
		OnFault: func(chunk string, err error) {
			fmt.Fprintln(app.Err, app.FaultColor("sync failed for "+chunk+": "+err.Error()))
		},
	}
	return opts
}

// openProject opens projectID for the duration of one command. It does not
// detach the engine itself; each caller detaches it (usually with defer).
func openProject(app *App, projectID string) (*vault.Engine, error) {
	return vault.Open(projectID, engineOptions(app))
}

// requireProjectFlag adds the --project flag every command that acts on
// one existing project shares.
func requireProjectFlag(cmd *cobra.Command, project *string) {
	cmd.Flags().StringVar(project, "project", "", "Project identifier")
	cmd.MarkFlagRequired("project")
}
