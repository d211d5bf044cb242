package analyzer

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	apperrors "go-body-inspector/internal/errors"

	_ "golang.org/x/image/webp"
)

// DecodeImage turns uploaded bytes into pixels. Every failure is an
// unreadable_image error.
func DecodeImage(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", apperrors.NewUnreadableImageError("image is empty", nil)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", apperrors.NewUnreadableImageError("failed to decode image", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, format, apperrors.NewUnreadableImageError("image has no pixel data", nil)
	}

	return img, format, nil
}
