package cmd

import (
	"strconv"

	"github.com/spf13/cobra"
)

var nextSlotCmd = &cobra.Command{
	Use:   "next-slot",
	Short: "Show the earliest free slot on any charger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()
		offer, err := svc.Engine.NextAvailableSlot(actor())
		if err != nil {
			return err
		}
		return printJSON(cmd, offer)
	},
}

var availabilityCmd = &cobra.Command{
	Use:   "availability",
	Short: "Summarize today's slot occupancy per charger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()
		summary, err := svc.Engine.AvailabilitySummary(actor())
		if err != nil {
			return err
		}
		return printJSON(cmd, summary)
	},
}

var timelineCmd = &cobra.Command{
	Use:   "timeline <chargerId> [dateIso]",
	Short: "Show one charger's slot timeline for a day",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()
		date := ""
		if len(args) > 1 {
			date = args[1]
		}
		entries, err := svc.Engine.ChargerTimeline(actor(), args[0], date)
		if err != nil {
			return err
		}
		return printJSON(cmd, entries)
	},
}

var calendarCmd = &cobra.Command{
	Use:   "calendar [startDateIso] [days]",
	Short: "Show per-day availability for a date range",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer svc.Close()
		start := ""
		days := 0
		if len(args) > 0 {
			start = args[0]
		}
		if len(args) > 1 {
			if days, err = strconv.Atoi(args[1]); err != nil {
				return err
			}
		}
		rows, err := svc.Engine.CalendarAvailability(actor(), start, days)
		if err != nil {
			return err
		}
		return printJSON(cmd, rows)
	},
}

func init() {
	rootCmd.AddCommand(nextSlotCmd, availabilityCmd, timelineCmd, calendarCmd)
}
