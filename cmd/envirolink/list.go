package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/envirolink/internal/energy"
)

var listDays int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored usage data",
	Long:  `Displays daily totals, averages and peak hours from the stored energy readings.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVar(&listDays, "days", 7, "number of days to show, ending today")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if listDays < 1 || listDays > energy.MaxDays {
		return fmt.Errorf("--days must be between 1 and %d", energy.MaxDays)
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	days, err := energy.Available(ctx, energy.NewStoreSource(db), time.Now(), listDays)
	if errors.Is(err, energy.ErrNoData) {
		fmt.Println("No data found (run 'envirolink fetch' or 'envirolink import' first)")
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading stored data: %w", err)
	}

	fmt.Println("----------------------------------------------------")
	fmt.Printf("%-12s  %10s  %8s  %-13s\n", "Date", "kWh", "Avg", "Peak")
	fmt.Println("----------------------------------------------------")

	var total float64
	for _, day := range days {
		fmt.Printf("%-12s  %10.2f  %8.2f  %-13s\n",
			day.Date.Format("2006-01-02"), day.TotalConsumption, day.AverageConsumption, day.PeakTime)
		total += day.TotalConsumption
	}

	fmt.Println("----------------------------------------------------")
	fmt.Printf("Total: %.2f kWh (%d days)\n", total, len(days))
	return nil
}
