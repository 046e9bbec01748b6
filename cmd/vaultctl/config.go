package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newConfigCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Get, set, and list vaultctl settings",
	}
	cmd.AddCommand(newConfigGetCmd(provider))
	cmd.AddCommand(newConfigSetCmd(provider))
	cmd.AddCommand(newConfigListCmd(provider))
	return cmd
}

func newConfigGetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value of a config key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			v, ok := app.ConfigStore.Get(args[0])
			if !ok {
				return fail("key %q is not set", args[0])
			}
			fmt.Fprintln(app.Out, v)
			return nil
		},
	}
}

func newConfigSetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config key and persist it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			if err := app.ConfigStore.Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, app.SuccessColor("saved"))
			return nil
		},
	}
}

func newConfigListCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every configured key",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			all := app.ConfigStore.All()
			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(app.Out, "%s=%s\n", k, all[k])
			}
			return nil
		},
	}
}
