package di

import (
	"context"
	"fmt"
	"net"
	"time"

	domrepo "StockPulse/internal/domain/repository"
	domservice "StockPulse/internal/domain/service"
	"StockPulse/internal/handler/api"
	"StockPulse/internal/handler/ws"
	internalrepo "StockPulse/internal/repository"
	"StockPulse/internal/scheduler"
	"StockPulse/internal/service/marketdata"
	"StockPulse/internal/service/news"
	"StockPulse/internal/services/analysis"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/cache"
	pkgch "StockPulse/pkg/clickhouse"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
	"StockPulse/pkg/server"
	"StockPulse/pkg/util"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideBarStore creates the ClickHouse bar store and ensures its schema.
func ProvideBarStore(chClient *pkgch.Client, l *applogger.Logger) (domrepo.BarStore, error) {
	store := internalrepo.NewCHBarStore(chClient)
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = chClient.Close()
		return nil, err
	}
	return store, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideCache builds the cache: layered Redis+memory when Redis is
// configured, pure in-memory otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr %q: %w", cfg.Redis.Addr, err)
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(host),
		cache.WithRedisPort(util.ParseIntDefault(portStr, 6379)),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(rc), nil
}

// ProvideNewsProvider builds the fan-out news aggregator.
func ProvideNewsProvider(cfg *config.Config, c cache.Service, m domrepo.Metrics, l *applogger.Logger) domservice.NewsProvider {
	sites := map[string]string(nil)
	if len(cfg.News.RSSSites) > 0 {
		sites = make(map[string]string, len(cfg.News.RSSSites))
		for _, site := range cfg.News.RSSSites {
			sites[site] = site
		}
	}
	sources := news.DefaultSources(cfg.News.TwitterBearer, sites, cfg.News.MaxItems)
	return news.NewProvider(sources,
		news.WithSourceTimeout(cfg.News.Timeout),
		news.WithCache(c, cfg.News.CacheTTL),
		news.WithMetrics(m),
		news.WithLogger(l),
	)
}

// ProvideDetector creates the anomaly detector.
func ProvideDetector(cfg *config.Config, np domservice.NewsProvider) *analysis.Detector {
	return analysis.NewDetector(
		analysis.WithThreshold(cfg.Analysis.AnomalyThreshold),
		analysis.WithNewsProvider(np),
	)
}

// ProvideCandleSource creates the market-data client.
func ProvideCandleSource(cfg *config.Config, l *applogger.Logger) domservice.CandleSource {
	hc := xhttp.NewClient(xhttp.WithTimeout(cfg.MarketData.Timeout))
	return marketdata.NewClient(cfg.MarketData.BaseURL,
		marketdata.WithAPIKey(cfg.MarketData.APIKey),
		marketdata.WithHTTPClient(hc),
		marketdata.WithRateLimit(cfg.MarketData.RateLimit.RequestsPerMinute, cfg.MarketData.RateLimit.Burst),
		marketdata.WithLogger(l),
	)
}

// ProvideKafkaProducer creates a Kafka producer, nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideHub creates the WebSocket alert hub.
func ProvideHub(l *applogger.Logger) *ws.Hub {
	return ws.NewHub(l)
}

// ProvideAlertPublisher fans alerts out to Kafka (when enabled) and the
// WebSocket hub.
func ProvideAlertPublisher(cfg *config.Config, producer *pkgkafka.Producer, hub *ws.Hub, l *applogger.Logger) domrepo.AlertPublisher {
	sinks := []domrepo.AlertPublisher{hub}
	if producer != nil {
		kp := internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.SignalTopic, cfg.Kafka.AnomalyTopic)
		kp.SetLogger(l)
		sinks = append(sinks, kp)
	}
	return internalrepo.NewMultiAlertPublisher(sinks...)
}

// paramsFromConfig maps configured indicator periods onto Params,
// falling back to the defaults for anything unset.
func paramsFromConfig(cfg *config.Config) analysis.Params {
	p := analysis.DefaultParams()
	a := cfg.Analysis
	if len(a.MAPeriods) > 0 {
		p.MAPeriods = a.MAPeriods
	}
	if a.RSIPeriod > 0 {
		p.RSIPeriod = a.RSIPeriod
	}
	if a.MACDFast > 0 && a.MACDSlow > 0 && a.MACDSignal > 0 {
		p.MACDFast, p.MACDSlow, p.MACDSignal = a.MACDFast, a.MACDSlow, a.MACDSignal
	}
	if a.BollPeriod > 0 {
		p.BollPeriod = a.BollPeriod
	}
	if a.BollStd > 0 {
		p.BollStd = a.BollStd
	}
	if a.ADXPeriod > 0 {
		p.ADXPeriod = a.ADXPeriod
	}
	if a.ROCPeriod > 0 {
		p.ROCPeriod = a.ROCPeriod
	}
	if a.MomPeriod > 0 {
		p.MomPeriod = a.MomPeriod
	}
	if len(a.VolMAPeriods) > 0 {
		p.VolMAPeriods = a.VolMAPeriods
	}
	if a.VROCPeriod > 0 {
		p.VROCPeriod = a.VROCPeriod
	}
	if a.MFIPeriod > 0 {
		p.MFIPeriod = a.MFIPeriod
	}
	return p
}

// ProvideAnalyzeUseCase builds the per-instrument pipeline.
func ProvideAnalyzeUseCase(
	cfg *config.Config,
	store domrepo.BarStore,
	source domservice.CandleSource,
	detector *analysis.Detector,
	publisher domrepo.AlertPublisher,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.AnalyzeUseCase {
	return usecase.NewAnalyzeUseCase(store, source, detector,
		usecase.WithParams(paramsFromConfig(cfg), analysis.DefaultThresholds()),
		usecase.WithAlertPublisher(publisher),
		usecase.WithMetrics(m),
		usecase.WithHistoryDays(cfg.MarketData.HistoryDays),
		usecase.WithLogger(l),
	)
}

// ProvideWatchlistUseCase builds the batch runner over the configured list.
func ProvideWatchlistUseCase(cfg *config.Config, analyze *usecase.AnalyzeUseCase, l *applogger.Logger) *usecase.WatchlistUseCase {
	return usecase.NewWatchlistUseCase(analyze, cfg.Watchlist.Instruments,
		usecase.WithConcurrency(cfg.Watchlist.Concurrency),
		usecase.WithWatchlistLogger(l),
	)
}

// ProvideKafkaConsumer creates the bars-ingest consumer, nil when disabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideBarsIngestHandler registers the handler for the bars topic.
func ProvideBarsIngestHandler(cfg *config.Config, store domrepo.BarStore, l *applogger.Logger) *usecase.BarsIngestHandler {
	h := usecase.NewBarsIngestHandler(cfg.Kafka.Consumer.Topic, store)
	h.SetLogger(l)
	return h
}

// ProvideScheduler creates the daily scheduler, nil when disabled.
func ProvideScheduler(cfg *config.Config, watchlist *usecase.WatchlistUseCase, l *applogger.Logger) (*scheduler.Scheduler, error) {
	if !cfg.Scheduler.Enabled {
		return nil, nil
	}
	return scheduler.New(watchlist, cfg.Scheduler.RunAt, cfg.Scheduler.Timezone, l)
}

// ProvideHTTPHandler composes the REST API and the WebSocket hub routes.
func ProvideHTTPHandler(
	l *applogger.Logger,
	analyze *usecase.AnalyzeUseCase,
	watchlist *usecase.WatchlistUseCase,
	store domrepo.BarStore,
	c cache.Service,
	hub *ws.Hub,
) xhttp.Handler {
	return xhttp.Handlers{
		api.NewAnalysisHandler(l, analyze, watchlist, store, c),
		hub,
	}
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	store domrepo.BarStore,
	publisher domrepo.AlertPublisher,
	consumer *pkgkafka.Consumer,
	barsHandler *usecase.BarsIngestHandler,
	sched *scheduler.Scheduler,
) *server.App {
	return server.New(cfg, l, handler, store, publisher, consumer, barsHandler, sched)
}
