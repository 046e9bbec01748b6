package main

import (
	"fmt"

	"vaultengine/internal/vault"

	"github.com/spf13/cobra"
)

func newVersionCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the engine and schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "engine %s (schema %d)\n", vault.EngineVersion, vault.SchemaVersion)
			return nil
		},
	}
}
