package cmd

import (
	"github.com/spf13/cobra"
)

var notifyOwnerText string

var notifyOwnerCmd = &cobra.Command{
	Use:   "notify-owner <chargerId>",
	Short: "Mail the owner of the charger's active session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()
		text := notifyOwnerText
		if text == "" {
			text = "Someone is waiting for this charger. Please wrap up if you can."
		}
		if err := svc.Engine.NotifyOwner(actor(), args[0], text); err != nil {
			return err
		}
		return printJSON(cmd, map[string]any{"ok": true})
	},
}

var postMessageCmd = &cobra.Command{
	Use:   "post-message <message>",
	Short: "Post an announcement to the shared channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()
		if err := svc.Engine.PostChannelMessage(actor(), args[0]); err != nil {
			return err
		}
		return printJSON(cmd, map[string]any{"ok": true})
	},
}

var forceEndCmd = &cobra.Command{
	Use:   "force-end <chargerId>",
	Short: "End whatever session is active on a charger (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()
		board, err := svc.Engine.ForceEnd(actor(), args[0])
		if err != nil {
			return err
		}
		if err := svc.Save(); err != nil {
			return err
		}
		return printJSON(cmd, board)
	},
}

var resetChargerCmd = &cobra.Command{
	Use:   "reset-charger <chargerId>",
	Short: "Clear a stuck charger (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()
		board, err := svc.Engine.ResetCharger(actor(), args[0])
		if err != nil {
			return err
		}
		if err := svc.Save(); err != nil {
			return err
		}
		return printJSON(cmd, board)
	},
}

func init() {
	notifyOwnerCmd.Flags().StringVar(&notifyOwnerText, "text", "", "message body")
	rootCmd.AddCommand(notifyOwnerCmd, postMessageCmd, forceEndCmd, resetChargerCmd)
}
