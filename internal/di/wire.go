//go:build wireinject
// +build wireinject

package di

import (
	"MacroPulse/pkg/config"
	"MacroPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideLimiter,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideSeriesStore,
		ProvideSeriesPublisher,

		// External sources
		ProvideObservationSource,
		ProvideNewsSource,
		ProvideLocation,

		// Use cases
		ProvideRunDefaults,
		ProvideIndicatorPipeline,
		ProvideSentimentPipeline,
		ProvideRedisQueue,
		ProvideRunner,
		ProvideSeriesQuery,

		// HTTP and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
