package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newCheckpointCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Create, list, and restore zip checkpoints",
	}
	cmd.AddCommand(newCheckpointCreateCmd(provider))
	cmd.AddCommand(newCheckpointListCmd(provider))
	cmd.AddCommand(newCheckpointRestoreCmd(provider))
	return cmd
}

func newCheckpointCreateCmd(provider *AppProvider) *cobra.Command {
	var project, label, notes string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a checkpoint of the project's current chunks",
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

			name, err := e.CreateCheckpoint(label, notes, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(app.Out, app.SuccessColor("created checkpoint "+name))
			return nil
		},
	}
	requireProjectFlag(cmd, &project)
	cmd.Flags().StringVar(&label, "label", "manual", "Checkpoint label")
	cmd.Flags().StringVar(&notes, "notes", "", "Freeform notes stored in the checkpoint manifest")
	return cmd
}

func newCheckpointListCmd(provider *AppProvider) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List checkpoints, newest first",
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

			infos, err := e.ListCheckpoints()
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Fprintln(app.Out, "No checkpoints.")
				return nil
			}
			for _, info := range infos {
				fmt.Fprintf(app.Out, "%-40s  %s  shards=%d\n",
					info.FileName, info.Manifest.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"), len(info.Manifest.ShardNames))
			}
			return nil
		},
	}
	requireProjectFlag(cmd, &project)
	return cmd
}

func newCheckpointRestoreCmd(provider *AppProvider) *cobra.Command {
	var project, file string

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore the project's chunks from a checkpoint archive",
		Long:  `Restore replaces every current chunk with the checkpoint's contents; it is not a merge.`,
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

			if err := e.RestoreCheckpoint(file); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, app.SuccessColor("restored from "+file))
			return nil
		},
	}
	requireProjectFlag(cmd, &project)
	cmd.Flags().StringVar(&file, "file", "", "Checkpoint file name, as shown by 'checkpoint list'")
	cmd.MarkFlagRequired("file")
	return cmd
}
