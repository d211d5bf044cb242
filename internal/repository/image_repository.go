package repository

import (
	"context"
	"errors"
	"fmt"

	apperrors "go-body-inspector/internal/errors"
	"go-body-inspector/internal/logger"
	"go-body-inspector/internal/storage"
	"go-body-inspector/pkg/validation"

	"github.com/sirupsen/logrus"
)

// RoutingImageRepository implements ImageRepository. Azure Blob URLs go to
// the blob fetcher when one is configured; everything else goes over HTTP.
type RoutingImageRepository struct {
	httpFetcher storage.ImageFetcher
	blobFetcher storage.ImageFetcher
	validator   *validation.URLValidator
}

// NewImageRepository creates an image repository. blobFetcher may be nil.
func NewImageRepository(httpFetcher, blobFetcher storage.ImageFetcher, validator *validation.URLValidator) ImageRepository {
	if validator == nil {
		validator = validation.NewURLValidator()
	}
	return &RoutingImageRepository{
		httpFetcher: httpFetcher,
		blobFetcher: blobFetcher,
		validator:   validator,
	}
}

// FetchImage validates imageURL and downloads it with the matching fetcher
func (r *RoutingImageRepository) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	parsed, err := r.validator.ValidateImageURL(imageURL)
	if err != nil {
		return nil, err
	}

	fetcher, backend := r.httpFetcher, "http"
	if r.blobFetcher != nil && validation.IsAzureBlobURL(parsed) {
		fetcher, backend = r.blobFetcher, "azure_blob"
	}
	if fetcher == nil {
		return nil, apperrors.NewInternalError("image fetching is not configured", ErrNoFetcher)
	}

	data, err := fetcher.Fetch(ctx, imageURL)
	if err != nil {
		logger.WithContext(ctx).WithFields(logrus.Fields{
			"backend": backend,
			"host":    parsed.Hostname(),
		}).WithError(err).Warn("Image fetch failed")
		return nil, fetchError(err)
	}
	if len(data) == 0 {
		return nil, apperrors.NewUnreadableImageError(ErrEmptyImage.Error(), ErrEmptyImage)
	}

	logger.WithContext(ctx).WithFields(logrus.Fields{
		"backend": backend,
		"host":    parsed.Hostname(),
		"bytes":   len(data),
	}).Debug("Image fetched")
	return data, nil
}

// ValidateImageURL validates if the provided URL is acceptable
func (r *RoutingImageRepository) ValidateImageURL(imageURL string) error {
	_, err := r.validator.ValidateImageURL(imageURL)
	return err
}

func fetchError(err error) error {
	var status *storage.StatusError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("image download timed out", err)
	case errors.Is(err, storage.ErrBlockedAddress):
		return apperrors.NewValidationError("URL host not allowed", err)
	case errors.Is(err, storage.ErrImageTooLarge):
		return apperrors.NewValidationError("image exceeds maximum size", err)
	case errors.As(err, &status) && status.StatusCode == 404:
		return apperrors.NewNetworkError("image not found at URL", fmt.Errorf("%w: %v", ErrImageNotFound, err))
	default:
		return apperrors.NewNetworkError("failed to fetch image", err)
	}
}
