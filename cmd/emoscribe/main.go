package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emoscribe/emoscribe/internal/config"
	"github.com/emoscribe/emoscribe/internal/history"
	"github.com/emoscribe/emoscribe/internal/observability"
	"github.com/emoscribe/emoscribe/internal/pipeline"
)

func main() {
	media := flag.String("media", "", "media source: audio/video file path or remote URL")
	saveTo := flag.String("save-to", "", "comma-separated destinations (output,desktop,downloads); overrides SAVE_TO")
	filename := flag.String("filename", "", "output CSV filename; overrides OUTPUT_FILENAME")
	language := flag.String("language", "auto", "language hint (auto or a language code such as pl, en)")
	mock := flag.Bool("mock", false, "run with deterministic stub collaborators, no network")
	flag.Parse()

	source := *media
	if source == "" && flag.NArg() > 0 {
		source = flag.Arg(0)
	}
	if source == "" {
		fmt.Fprintln(os.Stderr, "usage: emoscribe [-media] <path-or-url> [-save-to output,desktop] [-language auto]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *mock {
		cfg.MockMode = true
	}
	if *saveTo != "" {
		cfg.SaveTo = *saveTo
	}
	if *filename != "" {
		cfg.OutputFilename = *filename
	}

	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("media_source", source).
		Str("destinations", cfg.SaveTo).
		Bool("mock_mode", cfg.MockMode).
		Msg("emoscribe starting")

	if cfg.MetricsEnabled {
		go serveMetrics(cfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(cfg, nil)
	if cfg.HistoryDBPath != "" {
		db, err := history.Open(cfg.HistoryDBPath)
		if err != nil {
			logger.Warn().Err(err).Str("path", cfg.HistoryDBPath).Msg("Run journal disabled")
		} else {
			defer db.Close()
			p = p.WithHistory(history.NewRunRepository(db))
		}
	}

	result, err := p.Run(ctx, source, cfg.SaveTo, cfg.OutputFilename, *language)
	if err != nil {
		logger.Error().Err(err).Msg("Annotation failed")
		os.Exit(1)
	}

	if result.PersistErr != nil {
		logger.Warn().Err(result.PersistErr).Msg("Some destinations were not written")
	}
	for _, path := range result.WrittenPaths {
		fmt.Println(path)
	}
}

// serveMetrics exposes Prometheus metrics and health endpoints while a
// long transcription run is in flight.
func serveMetrics(cfg *config.Config) {
	logger := observability.GetLogger()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", observability.HealthCheckHandler())
	mux.HandleFunc("/ready", observability.ReadinessHandler(map[string]observability.HealthCheckFunc{
		"transcription": httpCheck(cfg.TranscribeBaseURL),
		"translator":    httpCheck(cfg.TranslatorURL),
		"classifier":    httpCheck(cfg.ClassifierURL),
	}))

	addr := ":" + cfg.MetricsPort
	logger.Info().Str("addr", addr).Msg("Metrics listener starting")
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Warn().Err(err).Msg("Metrics listener stopped")
	}
}

// httpCheck probes an endpoint for reachability; an empty URL means the
// collaborator is not configured and counts as healthy.
func httpCheck(url string) observability.HealthCheckFunc {
	return func(ctx context.Context) (bool, error) {
		if url == "" {
			return true, nil
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return false, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return false, err
		}
		resp.Body.Close()
		return true, nil
	}
}
