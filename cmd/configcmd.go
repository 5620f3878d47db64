package cmd

import (
	"github.com/spf13/cobra"
)

var configSetCmd = &cobra.Command{
	Use:   "config-set <key> <value>",
	Short: "Set a policy config key in the store",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()
		if err := svc.Store.SetConfigValue(args[0], args[1]); err != nil {
			return err
		}
		if err := svc.Save(); err != nil {
			return err
		}
		return printJSON(cmd, map[string]any{"ok": true, args[0]: args[1]})
	},
}

var propSetCmd = &cobra.Command{
	Use:   "prop-set <key> <value>",
	Short: "Set a raw property in the store",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()
		if err := svc.Store.SetProperty(args[0], args[1]); err != nil {
			return err
		}
		if err := svc.Save(); err != nil {
			return err
		}
		return printJSON(cmd, map[string]any{"ok": true})
	},
}

func init() {
	rootCmd.AddCommand(configSetCmd, propSetCmd)
}
