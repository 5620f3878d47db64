package cmd

import (
	"github.com/spf13/cobra"
)

var startSessionCmd = &cobra.Command{
	Use:   "start-session <chargerId>",
	Short: "Start charging now (walk-up or check-in)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()
		board, err := svc.Engine.StartSession(actor(), args[0])
		if err != nil {
			return err
		}
		if err := svc.Save(); err != nil {
			return err
		}
		return printJSON(cmd, board)
	},
}

var endSessionCmd = &cobra.Command{
	Use:   "end-session <sessionId>",
	Short: "End a charging session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()
		board, err := svc.Engine.EndSession(actor(), args[0])
		if err != nil {
			return err
		}
		if err := svc.Save(); err != nil {
			return err
		}
		return printJSON(cmd, board)
	},
}

var endForReservationCmd = &cobra.Command{
	Use:   "end-for-reservation <reservationId>",
	Short: "End the session belonging to a reservation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()
		board, err := svc.Engine.EndSessionForReservation(actor(), args[0])
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
	rootCmd.AddCommand(startSessionCmd, endSessionCmd, endForReservationCmd)
}
