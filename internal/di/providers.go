package di

import (
	"context"
	"fmt"
	"time"

	drepo "MacroPulse/internal/domain/repository"
	"MacroPulse/internal/handler/api"
	internalrepo "MacroPulse/internal/repository"
	"MacroPulse/internal/service/alphavantage"
	icache "MacroPulse/internal/service/cache"
	"MacroPulse/internal/service/fred"
	"MacroPulse/internal/service/ratelimit"
	"MacroPulse/internal/usecase"
	pkgch "MacroPulse/pkg/clickhouse"
	"MacroPulse/pkg/config"
	xhttp "MacroPulse/pkg/http"
	pkgkafka "MacroPulse/pkg/kafka"
	applogger "MacroPulse/pkg/logger"
	"MacroPulse/pkg/metrics"
	"MacroPulse/pkg/queue"
	"MacroPulse/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideLimiter creates the shared outbound rate limiter.
func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.SchemaStatements()); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideSeriesStore creates the ClickHouse-backed series store. It also
// serves as the TimelineSource for alignment.
func ProvideSeriesStore(chClient *pkgch.Client) *internalrepo.ClickHouseSeriesStore {
	return internalrepo.NewClickHouseSeriesStore(chClient.DB())
}

// ProvideSeriesPublisher creates the Kafka publisher when the backend is
// kafka, nil otherwise.
func ProvideSeriesPublisher(cfg *config.Config) (drepo.SeriesPublisher, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaSeriesPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideObservationSource creates the FRED client.
func ProvideObservationSource(cfg *config.Config, limiter *ratelimit.Limiter, l *applogger.Logger) drepo.ObservationSource {
	return fred.New(cfg.Fred.BaseURL, cfg.Fred.APIKey, cfg.Fred.Timeout, limiter, l)
}

// ProvideNewsSource creates the Alpha Vantage client.
func ProvideNewsSource(cfg *config.Config, limiter *ratelimit.Limiter, l *applogger.Logger) drepo.NewsSource {
	return alphavantage.New(cfg.AlphaVantage.BaseURL, cfg.AlphaVantage.APIKey,
		cfg.AlphaVantage.Timeout, cfg.AlphaVantage.Window, limiter, l)
}

// ProvideLocation resolves the exchange timezone for release scheduling.
func ProvideLocation(cfg *config.Config) (*time.Location, error) {
	loc, err := time.LoadLocation(cfg.Market.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Market.Timezone, err)
	}
	return loc, nil
}

// ProvideRunDefaults builds the default run range and subjects from config.
func ProvideRunDefaults(cfg *config.Config) usecase.RunDefaults {
	from, to := cfg.Range()
	return usecase.RunDefaults{From: from, To: to, Subjects: cfg.Market.Subjects}
}

// ProvideIndicatorPipeline creates the indicator alignment pipeline.
func ProvideIndicatorPipeline(
	source drepo.ObservationSource,
	store *internalrepo.ClickHouseSeriesStore,
	publisher drepo.SeriesPublisher,
	m drepo.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
	loc *time.Location,
) *usecase.IndicatorPipeline {
	return usecase.NewIndicatorPipeline(source, store, store, publisher, m, l, cfg.Market.Symbol, loc)
}

// ProvideSentimentPipeline creates the sentiment aggregation pipeline.
func ProvideSentimentPipeline(
	news drepo.NewsSource,
	store *internalrepo.ClickHouseSeriesStore,
	m drepo.Metrics,
	l *applogger.Logger,
) *usecase.SentimentPipeline {
	return usecase.NewSentimentPipeline(news, store, m, l)
}

// ProvideRedisQueue creates the Redis-backed work queue with both pipeline
// jobs registered.
func ProvideRedisQueue(
	cfg *config.Config,
	l *applogger.Logger,
	indicator *usecase.IndicatorPipeline,
	sent *usecase.SentimentPipeline,
	defaults usecase.RunDefaults,
) *queue.RedisQueue {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    cfg.Redis.Workers,
		RetryLimit: cfg.Redis.RetryMax,
		RetryDelay: 30 * time.Second,
	}, client, queue.ModeProducerConsumer)
	q.RegisterJobs([]queue.Job{
		usecase.NewIndicatorRunJob(indicator, defaults, l),
		usecase.NewSentimentRunJob(sent, defaults, l),
	})

	// Aggregate error logs onto a separate Redis list for later inspection.
	logPub := queue.NewRedisPublisher(l, client, queue.WithKeyPrefix("macropulse:logs"))
	l.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   30 * time.Second,
		CountThreshold: 100,
		Topic:          "error_logs",
		Publisher:      logPub,
	})
	return q
}

// ProvideRunner creates the enqueue-side runner.
func ProvideRunner(q *queue.RedisQueue, l *applogger.Logger) *usecase.Runner {
	return usecase.NewRunner(q, l)
}

// ProvideSeriesQuery creates the cached read service. Redis backs the cache
// when configured so replicas share entries, an in-process TTL map otherwise.
func ProvideSeriesQuery(store *internalrepo.ClickHouseSeriesStore, cfg *config.Config, l *applogger.Logger) *usecase.SeriesQuery {
	var c icache.BytesCache = icache.NewTTLCache()
	if cfg.Redis.Addr != "" {
		c = icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return usecase.NewSeriesQuery(store, c, cfg.Pipeline.CacheTTL, l)
}

// ProvideHTTPHandler creates the Echo route handler.
func ProvideHTTPHandler(l *applogger.Logger, query *usecase.SeriesQuery, runner *usecase.Runner, defaults usecase.RunDefaults) xhttp.Handler {
	return api.NewSeriesEchoHandler(l, query, runner, defaults)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	q *queue.RedisQueue,
	chClient *pkgch.Client,
	publisher drepo.SeriesPublisher,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, l, q, chClient, publisher, handler)
}
