// Command sync runs a synchronization from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"psx_backend/internal/app/di"
	marketadapters "psx_backend/internal/feature/marketdata/adapters"
	"psx_backend/internal/feature/marketdata/domain/entity"
	"psx_backend/internal/feature/marketdata/usecase"
	infradb "psx_backend/internal/platform/db"
	"psx_backend/internal/shared/ratelimiter"
)

func main() {
	dateFlag := flag.String("date", "", "sync date (YYYY-MM-DD, default today)")
	partial := flag.Bool("partial", false, "only ingest quotes for the given date")
	transactions := flag.Bool("transactions", false, "only ingest off-market transactions")
	workers := flag.Int("workers", 4, "concurrent history fetches")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if *dateFlag != "" {
		var err error
		date, err = time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			log.Fatalf("invalid -date: %v", err)
		}
	}

	db := infradb.OpenDB()
	market := di.NewMarket()
	barRepo := marketadapters.NewBarRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	switch {
	case *transactions:
		txRepo := marketadapters.NewTransactionRepository(db)
		uc := usecase.NewTransactionsUsecase(market, txRepo, logger)
		summary := uc.Sync(ctx, date)
		fmt.Printf("transactions %s: %d added, %d errors\n",
			date.Format("2006-01-02"), summary.RecordsAdded, len(summary.Errors))
		for _, e := range summary.Errors {
			fmt.Fprintln(os.Stderr, "  ", e)
		}

	case *partial:
		uc := usecase.NewPartialSyncUsecase(market, barRepo, logger)
		summary := uc.Run(ctx, date)
		fmt.Printf("quotes %s: %d fetched, %d added, %d errors\n",
			date.Format("2006-01-02"), summary.RecordsFetched, summary.RecordsAdded, len(summary.Errors))
		for _, e := range summary.Errors {
			fmt.Fprintln(os.Stderr, "  ", e)
		}

	default:
		watchRepo := marketadapters.NewMarketWatchRepository(db)
		constituentRepo := marketadapters.NewConstituentRepository(db)
		limiter := ratelimiter.NewRateLimiter(60, time.Minute)
		executor := usecase.NewConcurrentExecutor(*workers, limiter)

		uc := usecase.NewSyncUsecase(market, barRepo, watchRepo, constituentRepo, executor, nil, logger)
		summary := uc.Run(ctx, date, func(stage string, fraction float64, message string) {
			fmt.Printf("\r[%3.0f%%] %-60s", fraction*100, message)
		})
		fmt.Println()

		fmt.Printf("effective date: %s (%d attempts)\n",
			summary.EffectiveDate.Format("2006-01-02"), summary.Attempts)
		printStage("constituents", summary.Constituents)
		printStage("market watch", summary.MarketWatch)
		printStage("existing tickers", summary.ExistingTickers)
		printStage("new tickers", summary.NewTickers)
	}
}

func printStage(name string, s entity.StageResult) {
	status := "ok"
	if !s.Success {
		status = "FAILED"
	}
	fmt.Printf("%-17s %-6s %6d added  %s\n", name, status, s.RecordsAdded, s.Message)
	for _, e := range s.Errors {
		fmt.Fprintln(os.Stderr, "  ", e)
	}
}
