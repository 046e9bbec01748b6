package main

import (
	"encoding/json"
	"fmt"
	"io"

	"vaultengine/internal/vault"

	"github.com/spf13/cobra"
)

func newStageCmd(provider *AppProvider) *cobra.Command {
	var project, chunk, valueJSON string

	cmd := &cobra.Command{
		Use:   "stage",
		Short: "Stage a chunk update in the debounced buffer",
		Long: `Stage writes a JSON value for one chunk into the staging buffer. The
command detaches the project before it exits, and detaching flushes the
buffer, so the value is on disk when stage returns. The value can be given
with --value, or read from stdin if --value is omitted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			raw := []byte(valueJSON)
			if valueJSON == "" {
				raw, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading value from stdin: %w", err)
				}
			}

			var v vault.Value
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("parsing value: %w", err)
			}

			e, err := openProject(app, project)
			if err != nil {
				return err
			}
			defer e.Detach()

			if err := e.StageUpdate(chunk, &v); err != nil {
				return err
			}

			fmt.Fprintln(app.Out, app.SuccessColor(fmt.Sprintf("staged %s", chunk)))
			return nil
		},
	}

	requireProjectFlag(cmd, &project)
	cmd.Flags().StringVar(&chunk, "chunk", "", "Chunk name")
	cmd.Flags().StringVar(&valueJSON, "value", "", "JSON value to stage (reads stdin if omitted)")
	cmd.MarkFlagRequired("chunk")
	return cmd
}
