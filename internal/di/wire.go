//go:build wireinject
// +build wireinject

package di

import (
	"StockPulse/pkg/config"
	"StockPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCache,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories and services
		ProvideBarStore,
		ProvideNewsProvider,
		ProvideDetector,
		ProvideCandleSource,
		ProvideHub,
		ProvideAlertPublisher,

		// Use cases
		ProvideAnalyzeUseCase,
		ProvideWatchlistUseCase,
		ProvideBarsIngestHandler,
		ProvideScheduler,

		// Transport and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
