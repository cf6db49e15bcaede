package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"FolioScraper/internal/backend"
	"FolioScraper/internal/broker"
	"FolioScraper/internal/config"
	"FolioScraper/internal/extract"
	"FolioScraper/internal/model"
	"FolioScraper/internal/normalize"
	"FolioScraper/internal/page"
	"FolioScraper/internal/recorder"
	"FolioScraper/internal/scheduler"
	"FolioScraper/internal/server"
	"FolioScraper/internal/strategy"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] FolioScraper starting...")

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init page source
	var src page.Source
	if cfg.Source.File != "" {
		src = page.NewFileSource(cfg.Source.File, cfg.Source.Hostname)
	} else {
		src = page.NewChromeSource(cfg.Source.URL, cfg.Source.WaitSelector,
			cfg.Source.Headless, cfg.Proxy,
			time.Duration(cfg.Source.TimeoutSeconds)*time.Second)
	}
	log.Printf("[INFO] page source: %s", src.Name())

	// Init detector and strategy registry
	rules := make([]broker.Rule, 0, len(cfg.Brokers))
	orders := make(map[model.Broker][]string, len(cfg.Brokers))
	for _, b := range cfg.Brokers {
		rules = append(rules, broker.Rule{Name: model.Broker(b.Name), Domains: b.Domains})
		if len(b.Strategies) > 0 {
			orders[model.Broker(b.Name)] = b.Strategies
		}
	}
	detector := broker.NewDetector(rules)
	norm := normalize.New(cfg.Aliases, cfg.SkipSymbols)
	registry := strategy.NewRegistry([]strategy.Strategy{
		&strategy.Grid{
			RowSelector:  cfg.Markup.GridRowSelector,
			RowIndexAttr: cfg.Markup.GridRowIndexAttr,
			ColIDAttr:    cfg.Markup.GridColIDAttr,
			Resolve:      norm.Resolve,
		},
		&strategy.EncodedRow{Attr: cfg.Markup.EncodedRowAttr},
		&strategy.HeaderTable{},
		&strategy.Card{
			Attr:           cfg.Markup.CardAttr,
			SymbolPrefix:   cfg.Markup.CardSymbolPrefix,
			QuantityLabels: cfg.Markup.QuantityLabelPrefixes,
			ValueLabels:    cfg.Markup.ValueLabelPrefixes,
		},
	}, orders)

	extractor := extract.New(src, detector, registry, norm,
		cfg.Retry.Attempts, time.Duration(cfg.Retry.DelayMS)*time.Millisecond)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init backend client
	var bk *backend.Client
	if cfg.Backend.BaseURL != "" {
		bk = backend.NewClient(cfg.Backend.BaseURL, cfg.Proxy,
			time.Duration(cfg.Backend.TimeoutSeconds)*time.Second,
			time.Duration(cfg.Backend.CacheTTLSeconds)*time.Second)
		log.Printf("[INFO] analytics backend: %s", cfg.Backend.BaseURL)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init watch scheduler
	if cfg.Watch.Cron != "" {
		sched := scheduler.NewScheduler(ctx, extractor, rec, bk)
		if err := sched.Register(cfg.Watch.Cron); err != nil {
			log.Fatalf("[FATAL] register watch task: %v", err)
		}
		sched.Start()
		defer sched.Stop()

		if os.Getenv("RUN_ON_START") == "true" {
			log.Println("[INFO] RUN_ON_START enabled, executing watch extraction now")
			go sched.RunNow()
		}
	}

	// HTTP server
	srv := server.New(extractor, detector, rec, bk)
	httpSrv := &http.Server{Addr: cfg.Server.Addr, Handler: srv.Router()}
	go func() {
		log.Printf("[INFO] HTTP listening on %s", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	log.Println("[INFO] FolioScraper is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] http shutdown: %v", err)
	}
	log.Println("[INFO] FolioScraper stopped")
}
