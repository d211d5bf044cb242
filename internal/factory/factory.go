package factory

import (
	"fmt"

	"go-body-inspector/internal/config"
	"go-body-inspector/internal/landmark"
	"go-body-inspector/internal/storage"
)

// ProviderType represents different landmark detection backends
type ProviderType string

const (
	// HTTPProvider calls a pose inference service over HTTP
	HTTPProvider ProviderType = "http"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
)

// LandmarkFactory creates landmark providers
type LandmarkFactory interface {
	CreateProvider(providerType ProviderType) (landmark.Provider, error)
}

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageFetcher, error)
}

type landmarkFactory struct {
	cfg *config.Config
}

// NewLandmarkFactory creates a new landmark provider factory
func NewLandmarkFactory(cfg *config.Config) LandmarkFactory {
	return &landmarkFactory{cfg: cfg}
}

// CreateProvider creates a provider based on the specified type. With
// LandmarkSerialize set, calls to the provider are made one at a time.
func (f *landmarkFactory) CreateProvider(providerType ProviderType) (landmark.Provider, error) {
	switch providerType {
	case HTTPProvider:
		if f.cfg.LandmarkProviderURL == "" {
			return nil, fmt.Errorf("landmark provider URL is required for type %q", providerType)
		}
		var provider landmark.Provider = landmark.NewHTTPProvider(f.cfg.LandmarkProviderURL, f.cfg.LandmarkProviderTimeout).
			WithHealthURL(f.cfg.LandmarkHealthURL)
		if f.cfg.LandmarkSerialize {
			provider = landmark.NewSerializedProvider(provider)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported landmark provider type: %s", providerType)
	}
}

type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPImageFetcher(f.cfg.ImageFetchTimeout, storage.DefaultMaxImageBytes), nil
	case AzureStorage:
		if !f.cfg.AzureEnabled() {
			return nil, fmt.Errorf("azure storage is not configured")
		}
		fetcher, err := storage.NewAzureBlobFetcher(f.cfg.AzureAccountName, f.cfg.AzureAccountKey, storage.DefaultMaxImageBytes)
		if err != nil {
			return nil, err
		}
		return fetcher, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	LandmarkFactory LandmarkFactory
	StorageFactory  StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		LandmarkFactory: NewLandmarkFactory(cfg),
		StorageFactory:  NewStorageFactory(cfg),
	}
}
