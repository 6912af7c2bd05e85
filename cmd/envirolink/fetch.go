package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/envirolink/internal/energy"
)

var fetchDays int

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch hourly usage data from the energy API",
	Long: `Downloads hourly energy readings for recent days and stores them in the local
SQLite database. Without energy_api.url in the config, mock data is generated instead.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().IntVar(&fetchDays, "days", 0, "number of days to fetch (default from config, max 30)")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	printHeader("Fetch")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	days := cfg.GetDaysToFetch()
	if fetchDays > 0 {
		days = min(fetchDays, energy.MaxDays)
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	source := energy.SourceAPI
	if cfg.EnergyAPI.URL == "" {
		source = energy.SourceMock
		fmt.Println("No energy_api.url configured, generating mock data")
	}
	provider := energy.NewRemoteOrMock(cfg)

	fmt.Printf("Fetching data from %s (last %d days)...\n", source, days)
	now := time.Now()
	inserted, skipped := 0, 0
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)
		day, err := provider.Daily(ctx, date)
		if errors.Is(err, energy.ErrNoData) {
			fmt.Printf("  %s: no data\n", date.Format("2006-01-02"))
			continue
		}
		var authErr *energy.AuthError
		if errors.As(err, &authErr) {
			return fmt.Errorf("fetching %s: %w (hint: run 'envirolink login energy')", date.Format("2006-01-02"), err)
		}
		if err != nil {
			return fmt.Errorf("fetching %s: %w", date.Format("2006-01-02"), err)
		}

		// Duplicates are ignored by the UNIQUE constraint
		for _, r := range day.Readings {
			ok, err := db.InsertReading(r, source)
			if err != nil {
				return fmt.Errorf("inserting energy reading: %w", err)
			}
			if ok {
				inserted++
			} else {
				skipped++
			}
		}
		fmt.Printf("  %s: %.2f kWh\n", day.Date.Format("2006-01-02"), day.TotalConsumption)
	}

	fmt.Printf("✓ Stored %d new readings (%d duplicates skipped)\n", inserted, skipped)
	return nil
}
