package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"optionquotes-service/internal/application"
	"optionquotes-service/internal/bootstrap"
	"optionquotes-service/internal/domain"

	"github.com/joho/godotenv"
)

const usage = `usage: quotesctl [-config file] <command> [flags]

commands:
  cleanup    -symbols SPX,SPXW | -all  [-keep 30m] [-dry-run]
  latest     -symbol SPX [-limit 100]
  range      -symbol SPX -start YYYY-MM-DD [-end YYYY-MM-DD]
  aggregate  -symbols SPX,SPXW -start YYYY-MM-DD [-end YYYY-MM-DD]
  symbols
  health
`

// quoteStore is the subset of the quote service the CLI drives.
type quoteStore interface {
	Cleanup(ctx context.Context, req application.CleanupRequest) (domain.CleanupResult, error)
	Latest(ctx context.Context, symbol string, limit int) ([]domain.QuoteRecord, error)
	Range(ctx context.Context, symbol string, start time.Time, end *time.Time) ([]domain.QuoteRecord, error)
	Aggregate(ctx context.Context, symbols []string, start time.Time, end *time.Time) ([]domain.AggregateRow, error)
	ListSymbols(ctx context.Context) ([]string, error)
	HealthCheck(ctx context.Context) (domain.HealthStatus, error)
}

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to YAML config file (overrides CONFIG_FILE)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if *configPath != "" {
		_ = os.Setenv("CONFIG_FILE", *configPath)
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	svc, cleanup, err := bootstrap.InitService(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init:", err)
		os.Exit(1)
	}
	code := run(ctx, svc, flag.Args(), os.Stdout, os.Stderr)
	cleanup()
	os.Exit(code)
}

func run(ctx context.Context, svc quoteStore, args []string, stdout, stderr io.Writer) int {
	out, err := dispatch(ctx, svc, args[0], args[1:])
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		if strings.HasPrefix(err.Error(), "usage") {
			return 2
		}
		return 1
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func dispatch(ctx context.Context, svc quoteStore, cmd string, args []string) (any, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	symbol := fs.String("symbol", "", "underlying symbol")
	symbols := fs.String("symbols", "", "comma separated underlying symbols")
	all := fs.Bool("all", false, "clean every stored symbol")
	keep := fs.Duration("keep", 30*time.Minute, "retention window")
	dryRun := fs.Bool("dry-run", false, "report without deleting")
	limit := fs.Int("limit", domain.DefaultLatestLimit, "maximum rows")
	start := fs.String("start", "", "first expiration date, YYYY-MM-DD")
	end := fs.String("end", "", "last expiration date, YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("usage: %s: %w", cmd, err)
	}

	switch cmd {
	case "cleanup":
		return svc.Cleanup(ctx, application.CleanupRequest{
			Symbols:      splitList(*symbols),
			All:          *all,
			KeepDuration: *keep,
			DryRun:       *dryRun,
		})
	case "latest":
		return svc.Latest(ctx, *symbol, *limit)
	case "range":
		from, to, err := dates(*start, *end)
		if err != nil {
			return nil, err
		}
		return svc.Range(ctx, *symbol, from, to)
	case "aggregate":
		from, to, err := dates(*start, *end)
		if err != nil {
			return nil, err
		}
		return svc.Aggregate(ctx, splitList(*symbols), from, to)
	case "symbols":
		return svc.ListSymbols(ctx)
	case "health":
		return svc.HealthCheck(ctx)
	default:
		return nil, fmt.Errorf("usage: unknown command %q", cmd)
	}
}

func dates(start, end string) (time.Time, *time.Time, error) {
	from, err := domain.ParseDate(start)
	if err != nil {
		return time.Time{}, nil, err
	}
	if end == "" {
		return from, nil, nil
	}
	to, err := domain.ParseDate(end)
	if err != nil {
		return time.Time{}, nil, err
	}
	return from, &to, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
