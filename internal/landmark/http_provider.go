package landmark

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-body-inspector/internal/logger"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxResponseBytes caps the inference service response we are willing to parse
const maxResponseBytes = 1 << 20

// HTTPProvider runs pose estimation on a remote inference service.
// The image is posted as a multipart "file" field; the service answers with
// {"landmarks": [{"name": "nose", "x": 0.5, "y": 0.1, "visibility": 0.98}, ...]}.
type HTTPProvider struct {
	endpoint  string
	healthURL string
	client    *http.Client
}

// NewHTTPProvider creates a provider for the given inference endpoint. The
// health check goes to /health on the endpoint's host.
func NewHTTPProvider(endpoint string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		endpoint:  endpoint,
		healthURL: healthURLFor(endpoint),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithHealthURL overrides the derived health check URL
func (p *HTTPProvider) WithHealthURL(healthURL string) *HTTPProvider {
	if healthURL != "" {
		p.healthURL = healthURL
	}
	return p
}

func healthURLFor(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return strings.TrimRight(endpoint, "/") + "/health"
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/health"}).String()
}

type inferenceResponse struct {
	Landmarks []struct {
		Name       string  `json:"name"`
		X          float64 `json:"x"`
		Y          float64 `json:"y"`
		Visibility float64 `json:"visibility"`
	} `json:"landmarks"`
}

// Detect implements Provider
func (p *HTTPProvider) Detect(ctx context.Context, img image.Image) (*Pose, error) {
	bounds := img.Bounds()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if err := jpeg.Encode(part, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference failed with status: %d", resp.StatusCode)
	}

	var result inferenceResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	set := make(Set, len(result.Landmarks))
	for _, lm := range result.Landmarks {
		name, ok := ParseName(lm.Name)
		if !ok {
			continue
		}
		set[name] = Point{X: lm.X, Y: lm.Y, Visibility: lm.Visibility}
	}

	logger.WithFields(logrus.Fields{
		"endpoint":     p.endpoint,
		"landmarks":    len(set),
		"inference_ms": time.Since(start).Milliseconds(),
	}).Debug("Landmark inference finished")

	if len(set) == 0 {
		return nil, ErrNoPoseDetected
	}

	return &Pose{
		Landmarks: set,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
	}, nil
}

// CheckHealth calls the inference service health endpoint
func (p *HTTPProvider) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.healthURL, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("landmark service unhealthy: %d", resp.StatusCode)
	}
	return nil
}
