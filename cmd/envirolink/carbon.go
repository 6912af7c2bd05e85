package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jgoulah/envirolink/internal/carbon"
)

var (
	carbonInput carbon.Input
	carbonFile  string
)

var carbonCmd = &cobra.Command{
	Use:   "carbon",
	Short: "Estimate a yearly carbon footprint",
	Long: `Estimates a household's yearly carbon footprint in kg CO2 from energy use,
travel, diet and recycling habits. Answers can be passed as flags or read from a
YAML file with the same keys (electricity_kwh, natural_gas_therms, car_miles,
flights, meat_consumption, recycling). Flags override the file.`,
	RunE: runCarbon,
}

func init() {
	f := carbonCmd.Flags()
	f.StringVarP(&carbonFile, "file", "f", "", "YAML file with answers")
	f.Float64Var(&carbonInput.ElectricityKWh, "electricity", 0, "electricity used per year (kWh)")
	f.Float64Var(&carbonInput.NaturalGasTherms, "gas", 0, "natural gas used per year (therms)")
	f.Float64Var(&carbonInput.CarMiles, "car-miles", 0, "miles driven per year")
	f.Float64Var(&carbonInput.Flights, "flights", 0, "flights per year")
	f.IntVar(&carbonInput.MeatConsumption, "meat", carbon.DefaultScale, "meat consumption, 1 (none) to 5 (daily)")
	f.IntVar(&carbonInput.Recycling, "recycling", carbon.DefaultScale, "recycling habits, 1 (never) to 5 (always)")
	rootCmd.AddCommand(carbonCmd)
}

func runCarbon(cmd *cobra.Command, args []string) error {
	in := carbonInput
	if carbonFile != "" {
		data, err := os.ReadFile(carbonFile)
		if err != nil {
			return fmt.Errorf("reading answers: %w", err)
		}
		var fromFile carbon.Input
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return fmt.Errorf("parsing answers: %w", err)
		}
		in = mergeCarbonInput(fromFile, carbonInput, cmd)
	}

	r := carbon.Calculate(in)

	fmt.Println("----------------------------------------")
	fmt.Printf("%-12s  %12s\n", "Category", "kg CO2/year")
	fmt.Println("----------------------------------------")
	fmt.Printf("%-12s  %12s\n", "Energy", humanize.Comma(int64(r.Energy)))
	fmt.Printf("%-12s  %12s\n", "Transport", humanize.Comma(int64(r.Transport)))
	fmt.Printf("%-12s  %12s\n", "Food", humanize.Comma(int64(r.Food)))
	fmt.Printf("%-12s  %12s\n", "Waste", humanize.Comma(int64(r.Waste)))
	fmt.Println("----------------------------------------")
	fmt.Printf("Total: %s kg CO2 per year (%s)\n\n", humanize.Comma(int64(r.Total)), r.Rating)
	fmt.Println(r.Message)

	if len(r.Suggestions) > 0 {
		fmt.Println("\nWays to reduce it:")
		for _, s := range r.Suggestions {
			fmt.Printf("  - %s\n", s)
		}
	}
	return nil
}

// mergeCarbonInput overlays flags the user set explicitly onto the file answers
func mergeCarbonInput(file, flags carbon.Input, cmd *cobra.Command) carbon.Input {
	changed := cmd.Flags().Changed
	if changed("electricity") {
		file.ElectricityKWh = flags.ElectricityKWh
	}
	if changed("gas") {
		file.NaturalGasTherms = flags.NaturalGasTherms
	}
	if changed("car-miles") {
		file.CarMiles = flags.CarMiles
	}
	if changed("flights") {
		file.Flights = flags.Flights
	}
	if changed("meat") {
		file.MeatConsumption = flags.MeatConsumption
	}
	if changed("recycling") {
		file.Recycling = flags.Recycling
	}
	return file
}
