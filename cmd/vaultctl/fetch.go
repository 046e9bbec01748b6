package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newFetchCmd(provider *AppProvider) *cobra.Command {
	var project, chunk string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a chunk's current value",
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

			v, err := e.FetchChunk(chunk)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(app.Out)
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		},
	}

	requireProjectFlag(cmd, &project)
	cmd.Flags().StringVar(&chunk, "chunk", "", "Chunk name")
	cmd.MarkFlagRequired("chunk")
	return cmd
}
