// Command clapscan enumerates an AEC evaluation dataset, extracts the SNR
// embedded in each filename, and hands every file to the configured
// classification backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/soundprobe/clapscan/internal/classify"
	"github.com/soundprobe/clapscan/internal/classify/stub"
	"github.com/soundprobe/clapscan/internal/config"
	"github.com/soundprobe/clapscan/internal/dataset"
	"github.com/soundprobe/clapscan/internal/health"
	"github.com/soundprobe/clapscan/internal/inventory"
	"github.com/soundprobe/clapscan/internal/observe"
	"github.com/soundprobe/clapscan/internal/scan"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	only := flag.String("only", "", "comma-separated selections to scan, overriding scan.selections")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "clapscan: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "clapscan: %v\n", err)
		}
		return 1
	}

	selections := cfg.Selections()
	if *only != "" {
		selections = strings.Split(*only, ",")
		for i, sel := range selections {
			selections[i] = strings.TrimSpace(sel)
		}
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("clapscan starting",
		"config", *configPath,
		"dataset_root", cfg.Dataset.Root,
		"selections", selections,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Observability ─────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "clapscan"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Classifier backend ────────────────────────────────────────────────────
	reg := classify.NewRegistry()
	registerBuiltinBackends(reg)

	backendName := cfg.Classifier.Name
	if backendName == "" {
		backendName = "stub"
	}
	backend, err := reg.Create(backendName, classify.Settings{
		BaseURL: cfg.Classifier.BaseURL,
		APIKey:  cfg.Classifier.APIKey,
		Model:   cfg.Classifier.Model,
		Options: cfg.Classifier.Options,
	})
	if err != nil {
		slog.Error("failed to create classifier backend", "name", backendName, "err", err)
		return 1
	}
	slog.Info("classifier backend created", "name", backendName)

	// ── Inventory store (optional) ────────────────────────────────────────────
	checkers := []health.Checker{health.DatasetRoot(cfg.Dataset.Root)}
	scanOpts := []scan.Option{
		scan.WithMetrics(metrics),
		scan.WithBackendName(backendName),
	}
	if dsn := cfg.Inventory.PostgresDSN; dsn != "" {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			slog.Error("failed to create database pool", "err", err)
			return 1
		}
		defer pool.Close()

		store := inventory.NewPostgresStore(pool)
		if err := store.Migrate(ctx); err != nil {
			slog.Error("failed to migrate inventory schema", "err", err)
			return 1
		}
		scanOpts = append(scanOpts, scan.WithInventory(store))
		checkers = append(checkers, health.Database(pool))
		slog.Info("inventory store connected")
	}

	printStartupSummary(cfg, backendName, selections)

	scanner := scan.New(dataset.NewLayout(cfg.Dataset.Root), backend, scanOpts...)

	// ── Admin server + scan ───────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	if addr := cfg.Server.ListenAddr; addr != "" {
		mux := http.NewServeMux()
		health.New(checkers...).Register(mux)
		mux.Handle("GET /metrics", promhttp.Handler())

		srv := &http.Server{
			Addr:              addr,
			Handler:           observe.Middleware(metrics)(mux),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			slog.Info("admin server listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("admin server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		// Bring the admin server down once the scan is done.
		defer stop()
		sum, err := scanner.Run(gctx, selections)
		if err != nil {
			return err
		}
		slog.Info("scan complete",
			"discovered", sum.Discovered,
			"scanned", sum.Scanned,
		)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Backend wiring ────────────────────────────────────────────────────────────

// registerBuiltinBackends wires all built-in classifier factories into reg.
// Only the placeholder backend ships today; a real CLAP service client slots
// in here once one exists.
func registerBuiltinBackends(reg *classify.Registry) {
	reg.Register("stub", func(s classify.Settings) (classify.Provider, error) {
		return stub.New(s)
	})
	for _, name := range reg.Names() {
		slog.Debug("registered classifier backend", "name", name)
	}
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config, backend string, selections []string) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║         clapscan — startup summary    ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printField("Dataset root", cfg.Dataset.Root)
	printField("Backend", backend)
	fmt.Printf("║  Selections      : %-19d ║\n", len(selections))
	if cfg.Inventory.PostgresDSN != "" {
		printField("Inventory", "postgres")
	} else {
		printField("Inventory", "(disabled)")
	}
	if cfg.Server.ListenAddr != "" {
		printField("Admin addr", cfg.Server.ListenAddr)
	} else {
		printField("Admin addr", "(disabled)")
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printField(name, value string) {
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-14s  : %-19s ║\n", name, value)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
