package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newDoctorCmd(provider *AppProvider) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Report a project's health and sweep orphaned tmp files",
		Long: `Doctor inspects a project's lifecycle state, version metadata, pending
staged writes, and checkpoint count, and sweeps any leftover *.tmp files
from a prior crashed write.`,
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

			report, err := e.GetHealthReport()
			if err != nil {
				return err
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(report)
			}

			fmt.Fprintf(app.Out, "project:        %s\n", report.ProjectID)
			fmt.Fprintf(app.Out, "root:           %s\n", report.Root)
			fmt.Fprintf(app.Out, "state:          %s\n", report.State)
			fmt.Fprintf(app.Out, "engine version: %s (schema %d)\n", report.EngineVersion, report.SchemaVersion)
			fmt.Fprintf(app.Out, "shards:         %d\n", report.Shards)
			fmt.Fprintf(app.Out, "checkpoints:    %d\n", report.CheckpointCount)
			fmt.Fprintf(app.Out, "storage usage:  %.1f%%\n", report.StorageUsagePercent)
			if len(report.PendingWrites) > 0 {
				fmt.Fprintf(app.Out, "pending writes: %v\n", report.PendingWrites)
			}
			if len(report.OrphanTmpFiles) > 0 {
				fmt.Fprintln(app.Out, app.WarnColor(fmt.Sprintf("swept %d orphaned tmp file(s): %v", len(report.OrphanTmpFiles), report.OrphanTmpFiles)))
			}
			return nil
		},
	}
	requireProjectFlag(cmd, &project)
	return cmd
}
