package repository

import "errors"

var (
	// ErrImageNotFound is the cause attached when the image host answers 404
	ErrImageNotFound = errors.New("image not found")

	// ErrNoFetcher means no fetcher is configured for the image URL
	ErrNoFetcher = errors.New("no image fetcher configured")

	// ErrEmptyImage means the download succeeded but carried no bytes
	ErrEmptyImage = errors.New("downloaded image is empty")
)
