package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/locvowork/epms/internal/bootstrap"
	"github.com/locvowork/epms/internal/database"
	"github.com/locvowork/epms/internal/logger"
)

func main() {
	// Define flags
	action := flag.String("action", "seed", "Action to perform: seed, clear, reindex, probe")
	preset := flag.String("preset", "medium", "Data preset: small, medium, large")
	employees := flag.Int("employees", 0, "Number of employees (overrides preset)")
	months := flag.Int("months", 0, "Months of salary history per employee (overrides preset)")
	yes := flag.Bool("yes", false, "Skip the confirmation prompt of clear")

	flag.Parse()

	ctx := context.Background()

	fmt.Println("🚀 EPMS Data Seeder")
	fmt.Println(strings.Repeat("=", 50))

	// Initialize app
	fmt.Println("📡 Initializing application...")
	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		logger.ErrorLog(ctx, "Failed to initialize application: %v", err)
		log.Fatal(err)
	}
	defer app.Close(ctx)

	seeder := database.NewDataSeeder(app.DB)

	// Execute action
	switch *action {
	case "seed":
		performSeed(ctx, app, seeder, *preset, *employees, *months)

	case "clear":
		performClear(ctx, seeder, *yes)

	case "reindex":
		performReindex(ctx, app)

	case "probe":
		performProbe(ctx, app)

	default:
		fmt.Printf("❌ Unknown action: %s\n", *action)
		flag.PrintDefaults()
		return
	}

	fmt.Println("\n✅ Done!")
}

func performSeed(ctx context.Context, app *bootstrap.App, seeder *database.DataSeeder, preset string, employees, months int) {
	numEmployees, numMonths := database.GetPresetConfig(database.SeedPreset(preset))
	if employees > 0 {
		numEmployees = employees
	}
	if months > 0 {
		numMonths = months
	}
	fmt.Printf("📊 Seeding %d employees with %d months of salaries\n", numEmployees, numMonths)

	if _, err := seeder.SeedData(ctx, numEmployees, numMonths); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	if app.SearchClient != nil {
		performReindex(ctx, app)
	}
}

func performClear(ctx context.Context, seeder *database.DataSeeder, yes bool) {
	if !yes {
		fmt.Println("⚠️  This will delete all seeded data!")
		fmt.Print("Continue? (yes/no): ")

		var response string
		fmt.Scanln(&response)
		if response != "yes" {
			fmt.Println("Cancelled.")
			return
		}
	}

	if err := seeder.ClearData(ctx); err != nil {
		log.Fatalf("❌ Clear failed: %v", err)
	}
}

func performReindex(ctx context.Context, app *bootstrap.App) {
	n, err := app.Employees.Reindex(ctx)
	if err != nil {
		log.Fatalf("❌ Reindex failed: %v", err)
	}
	fmt.Printf("🔎 Indexed %d employees\n", n)
}

func performProbe(ctx context.Context, app *bootstrap.App) {
	layout, err := app.Layouts.Get(ctx)
	if err != nil {
		log.Fatalf("❌ Probe failed: %v", err)
	}
	fmt.Printf("salary.%s -> employee.%s\n", layout.EmployeeLinkColumn, layout.EmployeePrimaryKey)
	fmt.Printf("salary primary key: %s\n", layout.SalaryPrimaryKey)
	fmt.Printf("year column: %t %s\n", layout.HasYear, layout.YearColumn)
	if len(layout.Fallbacks) > 0 {
		fmt.Printf("⚠️  defaults used for: %s\n", strings.Join(layout.Fallbacks, ", "))
	}
}
