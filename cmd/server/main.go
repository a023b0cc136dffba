package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/authz"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/config"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/dispatch"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/engine"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/idempotency"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/journal"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/queue"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/telemetry"
	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", "", "http listen address (overrides config)")
		configPath = flag.String("config", "", "path to runtime.yaml (optional)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			logger.Fatalf("load config: %v", err)
		}
		cfg = c
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if cfg.JournalDir == "" {
		cfg.JournalDir = filepath.Join(*dataDir, "journal")
	}
	if cfg.IdempotencyDB == "" {
		cfg.IdempotencyDB = filepath.Join(*dataDir, "idempotency.db")
	}
	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		logger.Fatalf("create data dir: %v", err)
	}

	jw := journal.NewWriter(cfg.JournalDir, "telemetry")
	defer jw.Close()
	promReg := prometheus.NewRegistry()
	sink := telemetry.Multi{
		telemetry.NewLogger(logger),
		journal.NewSink(jw, logger),
		telemetry.NewPromSink(promReg),
	}
	restore := telemetry.Install(sink)
	defer restore()

	table, err := authz.NewTable(corePolicies()...)
	if err != nil {
		logger.Fatalf("authorization table: %v", err)
	}

	q := queue.New(table, cfg.QueueCapacity, sink)
	disp := dispatch.New(table, sink, dispatch.SinkEvents(sink))
	eng := engine.New(engine.Config{
		Queue:      q,
		Dispatcher: disp,
		Sink:       sink,
		TickRateHz: cfg.TickRateHz,
	})
	registerCoreHandlers(disp, q)

	reg := idempotency.NewRegistry(time.Duration(cfg.IdempotencyTTLMs)*time.Millisecond, sink)
	store, err := idempotency.OpenSQLite(cfg.IdempotencyDB)
	if err != nil {
		logger.Fatalf("open idempotency db: %v", err)
	}
	defer store.Close()
	if err := reg.WithStore(store); err != nil {
		logger.Fatalf("load idempotency db: %v", err)
	}

	gw := ws.NewGateway(ws.Config{
		Enqueue:  eng.Submit,
		Table:    table,
		Registry: reg,
		Sink:     sink,
		Logger:   logger,
		StepFn:   eng.Step,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", gw.Handler())
	mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("engine stopped: %v", err)
		}
	}()

	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				if n := reg.PurgeExpired(now.UnixMilli()); n > 0 {
					logger.Printf("purged %d expired idempotency records", n)
				}
			}
		}
	}()

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	logger.Printf("listening on %s (tick rate %d Hz, queue capacity %d)",
		cfg.ListenAddr, cfg.TickRateHz, cfg.QueueCapacity)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("http server: %v", err)
	}
}
