package cmd

import (
	"github.com/spf13/cobra"
)

var reserveCmd = &cobra.Command{
	Use:   "reserve <chargerId> <startTimeIso>",
	Short: "Reserve a slot for today",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()
		board, err := svc.Engine.CreateReservation(actor(), args[0], args[1])
		if err != nil {
			return err
		}
		if err := svc.Save(); err != nil {
			return err
		}
		return printJSON(cmd, board)
	},
}

var updateReservationCmd = &cobra.Command{
	Use:   "update-reservation <reservationId> <chargerId> <startTimeIso>",
	Short: "Move a reservation to another charger or slot",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()
		board, err := svc.Engine.UpdateReservation(actor(), args[0], args[1], args[2])
		if err != nil {
			return err
		}
		if err := svc.Save(); err != nil {
			return err
		}
		return printJSON(cmd, board)
	},
}

var cancelReservationCmd = &cobra.Command{
	Use:   "cancel-reservation <reservationId>",
	Short: "Cancel a reservation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()
		board, err := svc.Engine.CancelReservation(actor(), args[0])
		if err != nil {
			return err
		}
		if err := svc.Save(); err != nil {
			return err
		}
		return printJSON(cmd, board)
	},
}

var checkInCmd = &cobra.Command{
	Use:   "check-in <reservationId>",
	Short: "Check in and start the reserved session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()
		board, err := svc.Engine.CheckIn(actor(), args[0])
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
	rootCmd.AddCommand(reserveCmd, updateReservationCmd, cancelReservationCmd, checkInCmd)
}
