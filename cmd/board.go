package cmd

import (
	"github.com/spf13/cobra"

	"github.com/evpark/evpark/core/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty store file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()
		if err := svc.Save(); err != nil {
			return err
		}
		return printJSON(cmd, map[string]any{"ok": true, "store": svc.Store.Path()})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo fleet and default config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()
		if err := store.Seed(svc.Store, actor().Email); err != nil {
			return err
		}
		if err := svc.Save(); err != nil {
			return err
		}
		return printJSON(cmd, map[string]any{"ok": true, "store": svc.Store.Path()})
	},
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show the current board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()
		board, err := svc.Engine.Board(actor())
		if err != nil {
			return err
		}
		return printJSON(cmd, board)
	},
}

func init() {
	rootCmd.AddCommand(initCmd, seedCmd, boardCmd)
}
