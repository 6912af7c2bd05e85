package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jgoulah/envirolink/internal/energy"
)

var importCmd = &cobra.Command{
	Use:   "import [file.csv]",
	Short: "Import hourly usage from a utility CSV export",
	Long: `Parses a utility "green button" style CSV export with a date column, an optional
start time column and a usage (kWh) column, and stores the readings in the database.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	printHeader("Import")

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening CSV: %w", err)
	}
	defer f.Close()

	readings, err := energy.ParseCSV(f)
	if err != nil {
		return fmt.Errorf("parsing CSV: %w", err)
	}
	if len(readings) == 0 {
		fmt.Println("No readings found")
		return nil
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	inserted := 0
	for _, r := range readings {
		ok, err := db.InsertReading(r, energy.SourceCSV)
		if err != nil {
			return fmt.Errorf("inserting energy reading: %w", err)
		}
		if ok {
			inserted++
		}
	}

	days := energy.GroupByDay(readings)
	fmt.Printf("✓ Imported %d of %d readings covering %d days (duplicates skipped)\n", inserted, len(readings), len(days))
	return nil
}
