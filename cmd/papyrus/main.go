package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nevindra/papyrus"
	"github.com/nevindra/papyrus/internal/config"
	"github.com/nevindra/papyrus/observer"
	"github.com/nevindra/papyrus/provider/tesseract"
	"github.com/nevindra/papyrus/provider/vision"
	"github.com/nevindra/papyrus/store/postgres"
	"github.com/nevindra/papyrus/store/sqlite"
	"github.com/nevindra/papyrus/web"
)

func main() {
	configPath := flag.String("config", os.Getenv("PAPYRUS_CONFIG"), "path to papyrus.toml")
	article := flag.Bool("article", false, "treat references as web pages and extract readable article text")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	refs := flag.Args()
	if len(refs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: papyrus [-config papyrus.toml] [-article] [-v] ref [ref ...]")
		os.Exit(2)
	}

	// 1. Load config
	cfg := config.Load(*configPath)

	// 2. Logger
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx := context.Background()

	// 3. Observability (optional)
	var inst *observer.Instruments
	if cfg.Observer.Enabled {
		var shutdown func(context.Context) error
		var err error
		inst, shutdown, err = observer.Init(ctx)
		if err != nil {
			log.Fatalf("observer init: %v", err)
		}
		defer shutdown(ctx) //nolint:errcheck
	}

	// Article mode reads web pages instead of running the document pipeline.
	if *article {
		ext := web.New()
		for _, ref := range refs {
			text, err := ext.Extract(ctx, ref)
			if err != nil {
				logger.Error("article extraction failed", "ref", ref, "error", err)
				continue
			}
			fmt.Printf("--- %s ---\n%s\n\n", ref, text)
		}
		return
	}

	// 4. Create the OCR recognizer
	var ocr papyrus.Recognizer
	switch cfg.OCR.Provider {
	case "tesseract":
		ocr = tesseract.New(tesseract.WithLanguages(cfg.OCR.Languages...))
	default:
		ocr = vision.New(cfg.OCR.APIKey)
	}
	if cfg.OCR.MaxRPM > 0 {
		ocr = papyrus.WithRateLimit(ocr, papyrus.RPM(cfg.OCR.MaxRPM))
	}
	if inst != nil {
		ocr = observer.WrapRecognizer(ocr, inst)
	}

	// 5. Create the pipeline
	var fetcher papyrus.Fetcher = papyrus.NewHTTPFetcher()
	if inst != nil {
		fetcher = observer.WrapFetcher(fetcher, inst)
	}
	pipeline := papyrus.New(
		papyrus.WithRecognizer(ocr),
		papyrus.WithFetcher(fetcher),
		papyrus.WithLogger(logger),
		papyrus.WithMaxRetries(cfg.Pipeline.MaxRetries),
		papyrus.WithRetryDelayBase(time.Duration(cfg.Pipeline.RetryDelayMs)*time.Millisecond),
		papyrus.WithMaxConcurrent(cfg.Pipeline.MaxConcurrent),
		papyrus.WithPreferFullText(cfg.Pipeline.PreferFullText),
	)

	// 6. Create the archive store (optional)
	var store papyrus.Store
	switch cfg.Database.Driver {
	case "sqlite":
		store = sqlite.New(cfg.Database.Path, sqlite.WithLogger(logger))
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Database.PostgresURL)
		if err != nil {
			log.Fatalf("postgres pool: %v", err)
		}
		defer pool.Close()
		store = postgres.New(pool)
	}
	if store != nil {
		if err := store.Init(ctx); err != nil {
			log.Fatalf("store init: %v", err)
		}
		defer store.Close() //nolint:errcheck
	}

	// 7. Run the batch
	texts := pipeline.ExtractAll(ctx, refs)

	// 8. Print results and archive them
	batchID := papyrus.NewID()
	recs := make([]papyrus.Extraction, 0, len(refs))
	for i, ref := range refs {
		text := papyrus.NormalizeText(texts[i])
		fmt.Printf("--- %s ---\n%s\n\n", ref, text)
		rec := papyrus.NewExtraction(batchID, ref, text)
		recs = append(recs, rec)
	}
	if store != nil {
		if err := store.SaveExtractions(ctx, recs); err != nil {
			logger.Error("archive failed", "batch_id", batchID, "error", err)
			os.Exit(1)
		}
		logger.Info("batch archived", "batch_id", batchID, "count", len(recs))
	}
}
