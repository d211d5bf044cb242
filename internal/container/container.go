package container

import (
	"fmt"
	"net/http"

	"go-body-inspector/internal/analyzer"
	"go-body-inspector/internal/config"
	"go-body-inspector/internal/factory"
	"go-body-inspector/internal/logger"
	"go-body-inspector/internal/observer"
	"go-body-inspector/internal/repository"
	"go-body-inspector/internal/service"
	"go-body-inspector/internal/storage"
	"go-body-inspector/internal/transport"
	"go-body-inspector/pkg/services"
	"go-body-inspector/pkg/validation"

	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies
type Container struct {
	config              *config.Config
	measurer            analyzer.ImageMeasurer
	imageRepository     repository.ImageRepository
	recommendations     repository.RecommendationRepository
	publisher           *observer.EventPublisher
	metrics             *observer.MetricsObserver
	bodyAnalysisService service.BodyAnalysisService
	handler             http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	components := factory.NewComponentFactory(cfg)

	provider, err := components.LandmarkFactory.CreateProvider(factory.ProviderType(cfg.LandmarkProvider))
	if err != nil {
		return nil, fmt.Errorf("failed to create landmark provider: %w", err)
	}

	opts := analyzer.DefaultOptions().
		WithDefaultScale(cfg.DefaultScale).
		WithMinVisibility(cfg.MinLandmarkVisibility)
	measurer, err := analyzer.NewBodyAnalyzer(provider, cfg.Workers, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create body analyzer: %w", err)
	}

	httpFetcher, err := components.StorageFactory.CreateStorage(factory.HTTPStorage)
	if err != nil {
		measurer.Close()
		return nil, fmt.Errorf("failed to create image fetcher: %w", err)
	}
	var blobFetcher storage.ImageFetcher
	if cfg.AzureEnabled() {
		blobFetcher, err = components.StorageFactory.CreateStorage(factory.AzureStorage)
		if err != nil {
			measurer.Close()
			return nil, fmt.Errorf("failed to create blob fetcher: %w", err)
		}
	}

	urlValidator := validation.NewURLValidatorWithOptions([]string{"http", "https"}, cfg.ImageURLAllowedHosts)
	imageRepository := repository.NewImageRepository(httpFetcher, blobFetcher, urlValidator)
	recommendations := repository.NewRecommendationRepository(repository.DefaultCatalog())

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	bodyAnalysisService := service.NewBodyAnalysisService(
		imageRepository,
		measurer,
		recommendations,
		publisher,
		service.Options{
			AnalysisTimeout:   cfg.AnalysisTimeout,
			ImageFetchTimeout: cfg.ImageFetchTimeout,
		},
	)

	deps := transport.Dependencies{
		Analysis: bodyAnalysisService,
		Detailed: services.NewDetailedAnalysisService(bodyAnalysisService),
		Metrics:  metrics,
		Measurer: measurer,
	}
	if hc, ok := provider.(transport.HealthChecker); ok {
		deps.Landmark = hc
	}

	logger.WithFields(logrus.Fields{
		"landmark_provider": cfg.LandmarkProvider,
		"workers":           measurer.Stats().Workers,
		"azure_enabled":     cfg.AzureEnabled(),
	}).Info("Container initialized")

	return &Container{
		config:              cfg,
		measurer:            measurer,
		imageRepository:     imageRepository,
		recommendations:     recommendations,
		publisher:           publisher,
		metrics:             metrics,
		bodyAnalysisService: bodyAnalysisService,
		handler:             transport.NewHandler(deps, cfg),
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close stops the analysis workers and waits for pending events
func (c *Container) Close() error {
	err := c.measurer.Close()
	c.publisher.Flush()
	return err
}
