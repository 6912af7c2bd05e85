package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	alertsUnread   bool
	alertsMarkRead bool
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List usage alerts raised by watch",
	RunE:  runAlerts,
}

func init() {
	alertsCmd.Flags().BoolVar(&alertsUnread, "unread", false, "only show unread alerts")
	alertsCmd.Flags().BoolVar(&alertsMarkRead, "mark-read", false, "mark the listed alerts as read")
	rootCmd.AddCommand(alertsCmd)
}

func runAlerts(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	alerts, err := db.ListAlerts(alertsUnread)
	if err != nil {
		return fmt.Errorf("listing alerts: %w", err)
	}
	if len(alerts) == 0 {
		fmt.Println("No alerts")
		return nil
	}

	ids := make([]int, 0, len(alerts))
	for _, a := range alerts {
		marker := " "
		if !a.IsRead {
			marker = "*"
		}
		fmt.Printf("%s [%d] %-6s %s (%s)\n", marker, a.ID, a.Severity, a.Title, humanize.Time(a.CreatedAt))
		fmt.Printf("      %s\n", a.Description)
		ids = append(ids, a.ID)
	}

	if alertsMarkRead {
		if err := db.MarkAlertsRead(ids...); err != nil {
			return fmt.Errorf("marking alerts read: %w", err)
		}
		fmt.Printf("✓ Marked %d alerts as read\n", len(ids))
	}
	return nil
}
