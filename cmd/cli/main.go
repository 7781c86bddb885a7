package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dvloznov/finance-coach/internal/analytics"
	"github.com/dvloznov/finance-coach/internal/config"
	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/infra"
	"github.com/dvloznov/finance-coach/internal/infra/gcs"
	"github.com/dvloznov/finance-coach/internal/ledger"
	"github.com/dvloznov/finance-coach/internal/logger"
	"github.com/dvloznov/finance-coach/internal/scoring"
	"github.com/rs/zerolog"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "score":
		runScore(log)
	case "subscriptions":
		runSubscriptions(log)
	case "anomalies":
		runAnomalies(log)
	case "spending":
		runSpending(log)
	case "goal":
		runGoal(log)
	case "transactions":
		runTransactions(log)
	case "export":
		runExport(log)
	case "upload":
		runUpload(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finance Coach CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  score          Score every merchant and annotate the ledger (JSON)")
	fmt.Println("  subscriptions  List detected subscriptions and gray charges")
	fmt.Println("  anomalies      List unusually large debits")
	fmt.Println("  spending       Show the spending summary (JSON)")
	fmt.Println("  goal           Check monthly spend against a target")
	fmt.Println("  transactions   Print the most recent transactions (JSON)")
	fmt.Println("  export         Write the configured ledger source to a CSV file")
	fmt.Println("  upload         Validate a ledger CSV and upload it to GCS")
	fmt.Println("  help           Show this help message")
	fmt.Println("\nCommands that read a ledger take -file PATH; without it the source")
	fmt.Println("configured by LEDGER_SOURCE is used.")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// loadLedger reads the ledger from path, or from the configured source when
// path is empty.
func loadLedger(ctx context.Context, log zerolog.Logger, path string) []domain.Transaction {
	var src ledger.Source
	closeFn := func() error { return nil }

	if path != "" {
		src = ledger.NewFileSource(path)
	} else {
		cfg, err := config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
		if err := cfg.Validate(); err != nil {
			log.Fatal().Err(err).Msg("Invalid configuration")
		}
		src, closeFn, err = infra.OpenSource(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open ledger source")
		}
	}
	defer closeFn()

	txns, err := src.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("source", src.Name()).Msg("Failed to load ledger")
	}
	if err := domain.ValidateLedger(txns); err != nil {
		log.Fatal().Err(err).Str("source", src.Name()).Msg("Ledger is invalid")
	}

	log.Debug().Str("source", src.Name()).Int("transactions", len(txns)).Msg("Ledger loaded")
	return txns
}

func commandContext(log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	return logger.WithContext(ctx, log), cancel
}

func printJSON(log zerolog.Logger, v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode output")
	}
}

func runScore(log zerolog.Logger) {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to ledger CSV")
	merchantsOnly := fs.Bool("merchants", false, "Print only the merchant roster")
	fs.Parse(os.Args[2:])

	ctx, cancel := commandContext(log)
	defer cancel()

	txns := loadLedger(ctx, log, *filePath)
	out := scoring.NewEngine(scoring.DefaultConfig()).Run(txns)
	if *merchantsOnly {
		printJSON(log, out.Merchants)
		return
	}
	printJSON(log, out)
}

func runSubscriptions(log zerolog.Logger) {
	fs := flag.NewFlagSet("subscriptions", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to ledger CSV")
	asJSON := fs.Bool("json", false, "Print JSON instead of a listing")
	fs.Parse(os.Args[2:])

	ctx, cancel := commandContext(log)
	defer cancel()

	txns := loadLedger(ctx, log, *filePath)
	subs := scoring.NewEngine(scoring.DefaultConfig()).DetectSubscriptions(txns)
	totals := scoring.SummarizeSubscriptions(subs)

	if *asJSON {
		printJSON(log, struct {
			Subscriptions []scoring.Subscription `json:"subscriptions"`
			scoring.Totals
		}{subs, totals})
		return
	}

	fmt.Printf("\n=== Subscriptions (%d) ===\n", totals.Count)
	for i, s := range subs {
		gray := ""
		if s.IsGrayCharge {
			gray = "  [gray charge]"
		}
		fmt.Printf("\n%d. %s%s\n", i+1, s.Merchant, gray)
		fmt.Printf("   Amount:      %.2f (%s)\n", s.Amount, s.Frequency)
		fmt.Printf("   Last charge: %s\n", s.LastCharge)
		fmt.Printf("   Total spent: %.2f\n", s.TotalSpent)
		fmt.Printf("   Confidence:  %s\n", s.Confidence)
	}
	fmt.Printf("\nMonthly total: %.2f (%d gray)\n\n", totals.MonthlyTotal, totals.GrayCount)
}

func runAnomalies(log zerolog.Logger) {
	fs := flag.NewFlagSet("anomalies", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to ledger CSV")
	asJSON := fs.Bool("json", false, "Print JSON instead of a listing")
	fs.Parse(os.Args[2:])

	ctx, cancel := commandContext(log)
	defer cancel()

	anomalies := analytics.DetectAnomalies(loadLedger(ctx, log, *filePath))
	if *asJSON {
		printJSON(log, anomalies)
		return
	}

	fmt.Printf("\n=== Anomalies (%d) ===\n", len(anomalies))
	for i, a := range anomalies {
		fmt.Printf("\n%d. %s  %.2f\n", i+1, a.Merchant, a.Amount)
		fmt.Printf("   Date:     %s\n", a.Date)
		fmt.Printf("   Category: %s\n", a.Category)
		if a.AvgForCategory != nil && a.Deviation != nil {
			fmt.Printf("   Average:  %.2f (%.1f std above)\n", *a.AvgForCategory, *a.Deviation)
		}
		if a.Note != "" {
			fmt.Printf("   Note:     %s\n", a.Note)
		}
	}
	fmt.Println()
}

func runSpending(log zerolog.Logger) {
	fs := flag.NewFlagSet("spending", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to ledger CSV")
	fs.Parse(os.Args[2:])

	ctx, cancel := commandContext(log)
	defer cancel()

	printJSON(log, analytics.Summarize(loadLedger(ctx, log, *filePath)))
}

func runGoal(log zerolog.Logger) {
	fs := flag.NewFlagSet("goal", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to ledger CSV")
	target := fs.Float64("target", -1, "Monthly spending target")
	name := fs.String("name", "Monthly spending", "Goal name")
	category := fs.String("category", "", "Limit the goal to one category")
	fs.Parse(os.Args[2:])

	if *target < 0 {
		log.Fatal().Msg("Usage: cli goal -target AMOUNT [-name NAME] [-category CATEGORY]")
	}

	ctx, cancel := commandContext(log)
	defer cancel()

	g := analytics.GoalStatus(loadLedger(ctx, log, *filePath), *name, *target, *category)

	fmt.Printf("\n=== %s ===\n", g.Name)
	if g.Category != "" {
		fmt.Printf("Category: %s\n", g.Category)
	}
	fmt.Printf("Target:   %.2f\n", g.Target)
	fmt.Printf("Current:  %.2f over %d months (%.0f%% of target)\n", g.Current, g.Months, g.ProgressPercent)
	fmt.Printf("Status:   %s, %s\n", g.Status, g.Trend)
	if g.Status == analytics.OffTrack {
		fmt.Printf("Cut %.2f a month (%.1f%%) to get back on track\n", g.Overage, g.ReducePercent)
	}
	fmt.Println()
}

func runTransactions(log zerolog.Logger) {
	fs := flag.NewFlagSet("transactions", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to ledger CSV")
	limit := fs.Int("limit", ledger.DefaultRecentLimit, "Number of transactions to print")
	fs.Parse(os.Args[2:])

	ctx, cancel := commandContext(log)
	defer cancel()

	printJSON(log, ledger.Recent(loadLedger(ctx, log, *filePath), *limit))
}

func runExport(log zerolog.Logger) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	outPath := fs.String("out", "", "Path of the CSV file to write")
	fs.Parse(os.Args[2:])

	if *outPath == "" {
		log.Fatal().Msg("Usage: cli export -out PATH")
	}

	ctx, cancel := commandContext(log)
	defer cancel()

	txns := loadLedger(ctx, log, "")

	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create output file")
	}
	defer f.Close()

	if err := ledger.EncodeCSV(f, txns); err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}

	fmt.Printf("Exported %d transactions to %s\n", len(txns), *outPath)
}

func runUpload(log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to local ledger CSV")
	uri := fs.String("uri", os.Getenv("LEDGER_GCS_URI"), "Destination gs://bucket/object URI")
	fs.Parse(os.Args[2:])

	if *filePath == "" || *uri == "" {
		log.Fatal().Msg("Usage: cli upload -file PATH -uri gs://BUCKET/OBJECT")
	}

	ctx, cancel := commandContext(log)
	defer cancel()

	log.Info().
		Str("uri", *uri).
		Str("file", *filePath).
		Msg("Uploading ledger to GCS")

	if err := gcs.UploadFile(ctx, *uri, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, *uri)
}
