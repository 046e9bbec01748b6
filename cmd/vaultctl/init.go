package main

import (
	"fmt"

	"vaultengine/internal/vault"

	"github.com/spf13/cobra"
)

func newInitCmd(provider *AppProvider) *cobra.Command {
	var base string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new project",
		Long: `Create a new project under the storage root. If base already exists,
a numeric suffix is appended (base_1, base_2, ...) until a free name is
found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			if base == "" {
				return fail("--base is required")
			}

			opts := engineOptions(app)
			e, status, err := vault.New(base, opts)
			if err != nil {
				return err
			}
			defer e.Detach()

			fmt.Fprintln(app.Out, app.SuccessColor(fmt.Sprintf("%s project %q", status, e.ProjectID())))
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "Base name for the new project")
	return cmd
}
