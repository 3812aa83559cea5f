package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"PowerPrice/internal/config"
	"PowerPrice/internal/currency"
	"PowerPrice/internal/httputil"
	"PowerPrice/internal/logx"
	"PowerPrice/internal/model"
	"PowerPrice/internal/pipeline"
	"PowerPrice/internal/pricing"
	"PowerPrice/internal/publisher"
	"PowerPrice/internal/scheduler"
	"PowerPrice/internal/store"
	"PowerPrice/internal/wholesale"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("load config", "err", err)
		return 1
	}
	log := logx.New(os.Stdout, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Error("config validation", "err", err)
		return 1
	}
	loc, _ := cfg.Location()
	log.Info("power_price starting", "zones", cfg.Wholesale.Zones, "supplier", cfg.Tariff.Supplier,
		"timezone", loc.String(), "dry_run", cfg.Broker.DryRun)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rates := openStore(ctx, cfg, log)
	defer rates.Close()

	client := httputil.NewClient(cfg.HTTP.Timeout, cfg.HTTP.Proxy)
	cache := currency.NewCache(
		currency.NewExchangeRateAPI(cfg.Conversion.BaseURL, cfg.Conversion.Token, client, log),
		rates, cfg.Conversion.SourceCurrency, cfg.Conversion.TargetCurrency, cfg.Conversion.MaxAge, log)

	var fetcher wholesale.Fetcher = wholesale.NewENTSOEFetcher(cfg.Wholesale.BaseURL, cfg.Wholesale.Token, client, loc, log)
	log.Info("wholesale source", "name", fetcher.Name())

	tariff := pricing.NewTariff(cfg.Tariff.UnitScale, cfg.Tariff.TaxMultiplier, cfg.Tariff.Markups)
	agg := pricing.NewAggregator(pricing.NewZonePricer(fetcher, cache, tariff, log), loc, cfg.Wholesale.HorizonDays)

	var sink publisher.Sink
	if cfg.Broker.DryRun {
		sink = publisher.NewLogSink(log)
	} else {
		sink = publisher.NewMQTTSink(publisher.MQTTOptions{
			Host:     cfg.Broker.Host,
			Port:     cfg.Broker.Port,
			ClientID: cfg.Broker.ClientID,
			Username: cfg.Broker.Username,
			Password: cfg.Broker.Password,
			Timeout:  cfg.Broker.Timeout,
			Retries:  *cfg.Broker.Retries,
		}, log)
	}

	zones := make([]model.PriceZone, len(cfg.Wholesale.Zones))
	for i, z := range cfg.Wholesale.Zones {
		zones[i] = model.PriceZone(z)
	}
	pipe := pipeline.New(agg, sink, pipeline.Settings{
		Zones:       zones,
		Supplier:    cfg.Tariff.Supplier,
		PublishZone: model.PriceZone(cfg.Publish.Zone),
		Topic:       cfg.Publish.Topic,
		Location:    loc,
	}, log)

	sched := scheduler.NewScheduler(ctx, pipe, loc, log)

	if cfg.Schedule.Cron == "" {
		if err := sched.RunNow(); err != nil {
			return 1
		}
		return 0
	}

	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Error("register cron task", "err", err)
		return 1
	}
	sched.Start()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, publishing now")
		go sched.RunNow()
	}

	log.Info("power_price is running, press Ctrl+C to stop", "cron", cfg.Schedule.Cron)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping")
	cancel()
	sched.Stop()
	log.Info("power_price stopped")
	return 0
}

// openStore picks the rate store: Redis, then SQLite, then a JSON file, else none.
// A backend that fails to open is replaced by the noop store.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) store.RateStore {
	switch {
	case cfg.Store.RedisAddr != "":
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rs, err := store.NewRedisStore(dialCtx, cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB)
		if err != nil {
			log.Warn("init redis store failed, using noop", "err", err)
			return store.NewNoopStore()
		}
		log.Info("rate store", "backend", "redis", "addr", cfg.Store.RedisAddr)
		return rs
	case cfg.Store.SQLitePath != "":
		ss, err := store.NewSQLiteStore(cfg.Store.SQLitePath, log)
		if err != nil {
			log.Warn("init sqlite store failed, using noop", "err", err)
			return store.NewNoopStore()
		}
		log.Info("rate store", "backend", "sqlite", "path", cfg.Store.SQLitePath)
		return ss
	case cfg.Store.StateFile != "":
		log.Info("rate store", "backend", "file", "path", cfg.Store.StateFile)
		return store.NewFileStore(cfg.Store.StateFile)
	}
	return store.NewNoopStore()
}
