// Command readingcore opens the engine against the configured record store,
// signs in with the first-run account, and prints the library state. It is a
// smoke harness for the embedded store, not a user-facing application.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"readingcore/internal/config"
	"readingcore/internal/core"
	"readingcore/internal/record"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "readingcore:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		email   = flag.String("email", core.DefaultAccountEmail, "account email")
		secret  = flag.String("secret", core.DefaultAccountSecret, "account secret")
		asJSON  = flag.Bool("json", false, "print the library as JSON")
		timeout = flag.Duration("timeout", 30*time.Second, "operation deadline")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := cfg.Logger()
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	durable, err := record.Open(ctx, cfg.RecordOptions())
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}

	store := core.New(durable, core.WithLogger(logger))
	if err := store.Ready(ctx); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	account, err := store.SignIn(ctx, *email, *secret)
	if err != nil {
		return fmt.Errorf("sign in %s: %w", *email, err)
	}

	books, err := store.ListBooks(ctx, account.ID)
	if err != nil {
		return err
	}
	stats, err := store.Analytics(ctx, account.ID)
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Account   core.Account          `json:"account"`
			Books     []core.Book           `json:"books"`
			Analytics core.ReadingAnalytics `json:"analytics"`
		}{account, books, stats})
	}

	fmt.Printf("driver: %s\n", store.Driver())
	fmt.Printf("account: %s (%s)\n", account.DisplayName, account.Email)
	fmt.Printf("books: %d, reads: %d\n", stats.TotalBooks, stats.TotalReads)
	for _, b := range books {
		fmt.Printf("  %s by %s (%d)\n", b.Title, b.Author, b.PublishedYear)
	}
	return store.SignOut(ctx)
}
