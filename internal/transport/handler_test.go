package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-body-inspector/internal/analyzer"
	"go-body-inspector/internal/config"
	apperrors "go-body-inspector/internal/errors"
	"go-body-inspector/internal/landmark"
	"go-body-inspector/internal/observer"
	"go-body-inspector/internal/repository"
	"go-body-inspector/internal/service"
	"go-body-inspector/pkg/models"
	"go-body-inspector/pkg/services"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubProvider struct{}

func (stubProvider) Detect(ctx context.Context, img image.Image) (*landmark.Pose, error) {
	return &landmark.Pose{Landmarks: landmark.Set{
		landmark.Nose:          {X: 0.5, Y: 0.1, Visibility: 0.99},
		landmark.LeftShoulder:  {X: 0.7, Y: 0.25, Visibility: 0.95},
		landmark.RightShoulder: {X: 0.3, Y: 0.25, Visibility: 0.95},
		landmark.LeftHip:       {X: 0.65, Y: 0.5, Visibility: 0.9},
		landmark.RightHip:      {X: 0.35, Y: 0.5, Visibility: 0.9},
		landmark.LeftHeel:      {X: 0.5, Y: 0.9, Visibility: 0.8},
	}}, nil
}

type stubHealth struct{ err error }

func (s stubHealth) CheckHealth(ctx context.Context) error { return s.err }

type failingService struct{ service.BodyAnalysisService }

func (failingService) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.Analysis, error) {
	return nil, apperrors.NewInternalError("classifier exploded", errors.New("boom"))
}

func testConfig() *config.Config {
	return &config.Config{
		RequestTimeout:     5 * time.Second,
		MaxRequestBodySize: 1 << 20,
	}
}

func newTestDeps(t *testing.T) Dependencies {
	t.Helper()
	measurer, err := analyzer.NewBodyAnalyzer(stubProvider{}, 2, analyzer.DefaultOptions())
	if err != nil {
		t.Fatalf("Failed to create analyzer: %v", err)
	}
	t.Cleanup(func() { measurer.Close() })

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(metrics)

	analysis := service.NewBodyAnalysisService(
		nil,
		measurer,
		repository.NewRecommendationRepository(repository.DefaultCatalog()),
		publisher,
		service.Options{AnalysisTimeout: 2 * time.Second},
	)
	return Dependencies{
		Analysis: analysis,
		Detailed: services.NewDetailedAnalysisService(analysis),
		Metrics:  metrics,
		Measurer: measurer,
	}
}

type formFile struct {
	name string
	data []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, file *formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("Failed to write field: %v", err)
		}
	}
	if file != nil {
		part, err := w.CreateFormFile("image", file.name)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		part.Write(file.data)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{200, 180, 160, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestProcessMeasurements_Manual(t *testing.T) {
	h := NewHandler(newTestDeps(t), testConfig())

	rec := serve(h, multipartRequest(t, "/process-measurements", map[string]string{
		"manual_measurements": `{"bust": 92.5, "waist": 73.2, "hips": 98.8, "shoulder_width": 40}`,
		"user_height_cm":      "165",
	}, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.AnalysisResponse
	decode(t, rec, &resp)
	if resp.Source != models.SourceManualInput {
		t.Errorf("Expected manual_input, got %s", resp.Source)
	}
	if resp.BodyType != models.Pear {
		t.Errorf("Expected pear, got %s", resp.BodyType)
	}
	if resp.Measurements.Height != 165 {
		t.Errorf("Expected height 165, got %f", resp.Measurements.Height)
	}
	if len(resp.Recommendations) != 2 {
		t.Errorf("Expected 2 recommendations, got %d", len(resp.Recommendations))
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("Expected a request id header")
	}
}

func TestProcessMeasurements_Image(t *testing.T) {
	h := NewHandler(newTestDeps(t), testConfig())

	rec := serve(h, multipartRequest(t, "/process-measurements", map[string]string{
		"manual_measurements": `{"bust": 92.5, "waist": 73.2, "hips": 98.8, "shoulder_width": 40}`,
		"user_height_cm":      "160",
	}, &formFile{name: "person.png", data: pngBytes(t)}))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.AnalysisResponse
	decode(t, rec, &resp)
	if resp.Source != models.SourceImageAnalysis {
		t.Errorf("Expected image input to win, got %s", resp.Source)
	}
	if resp.Measurements.Height != 160 {
		t.Errorf("Expected height 160, got %f", resp.Measurements.Height)
	}
	if resp.Measurements.Bust <= 0 || resp.Measurements.Hips <= 0 {
		t.Errorf("Expected positive measurements, got %+v", resp.Measurements)
	}
}

func TestProcessMeasurements_Errors(t *testing.T) {
	tests := []struct {
		name       string
		fields     map[string]string
		file       *formFile
		wantStatus int
		wantType   string
	}{
		{
			name:       "no input",
			fields:     map[string]string{},
			wantStatus: http.StatusBadRequest,
			wantType:   "no_input_provided",
		},
		{
			name:       "missing hips",
			fields:     map[string]string{"manual_measurements": `{"bust": 92.5, "waist": 73.2, "shoulder_width": 40}`},
			wantStatus: http.StatusBadRequest,
			wantType:   "missing_fields",
		},
		{
			name:       "non numeric measurement",
			fields:     map[string]string{"manual_measurements": `{"bust": "big", "waist": 73.2, "hips": 98.8, "shoulder_width": 40}`},
			wantStatus: http.StatusBadRequest,
			wantType:   "invalid_measurement_format",
		},
		{
			name:       "bad height",
			fields:     map[string]string{"manual_measurements": `{"bust": 92.5, "waist": 73.2, "hips": 98.8, "shoulder_width": 40}`, "user_height_cm": "tall"},
			wantStatus: http.StatusBadRequest,
			wantType:   "validation",
		},
		{
			name:       "zero bust",
			fields:     map[string]string{"manual_measurements": `{"bust": 0, "waist": 73.2, "hips": 98.8, "shoulder_width": 40}`},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   "degenerate_measurement",
		},
		{
			name:       "empty image file",
			fields:     map[string]string{},
			file:       &formFile{name: "empty.png", data: []byte{}},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   "unreadable_image",
		},
		{
			name:       "not an image",
			fields:     map[string]string{},
			file:       &formFile{name: "notes.txt", data: []byte("hello")},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   "unreadable_image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(newTestDeps(t), testConfig())
			rec := serve(h, multipartRequest(t, "/process-measurements", tt.fields, tt.file))

			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			var resp models.ErrorResponse
			decode(t, rec, &resp)
			if resp.Type != tt.wantType {
				t.Errorf("Expected type %s, got %s", tt.wantType, resp.Type)
			}
			if resp.Message == "" {
				t.Error("Expected an error message")
			}
		})
	}
}

func TestProcessMeasurements_MissingFieldsListed(t *testing.T) {
	h := NewHandler(newTestDeps(t), testConfig())

	rec := serve(h, multipartRequest(t, "/process-measurements", map[string]string{
		"manual_measurements": `{"bust": 92.5, "waist": 73.2, "shoulder_width": 40}`,
	}, nil))

	var resp models.ErrorResponse
	decode(t, rec, &resp)
	if len(resp.MissingFields) != 1 || resp.MissingFields[0] != "hips" {
		t.Errorf("Expected missing_fields [hips], got %v", resp.MissingFields)
	}
}

func TestProcessMeasurements_InternalErrorHidesDetails(t *testing.T) {
	deps := newTestDeps(t)
	deps.Analysis = failingService{deps.Analysis}
	h := NewHandler(deps, testConfig())

	rec := serve(h, multipartRequest(t, "/process-measurements", map[string]string{
		"manual_measurements": `{}`,
	}, nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
	var resp models.ErrorResponse
	decode(t, rec, &resp)
	if strings.Contains(resp.Message, "exploded") {
		t.Errorf("Expected internal details to be hidden, got %q", resp.Message)
	}
	if !strings.HasPrefix(resp.Details, "trace_id: ") {
		t.Errorf("Expected trace id in details, got %q", resp.Details)
	}
}

func TestProcessMeasurementsDetailed(t *testing.T) {
	h := NewHandler(newTestDeps(t), testConfig())

	rec := serve(h, multipartRequest(t, "/process-measurements/detailed", map[string]string{
		"manual_measurements": `{"bust": 100, "waist": 90, "hips": 100, "shoulder_width": 100}`,
	}, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp models.DetailedAnalysisResponse
	decode(t, rec, &resp)
	if resp.Result == nil || resp.Result.BodyType != models.Apple {
		t.Fatalf("Expected apple, got %+v", resp.Result)
	}
	if resp.Ratios.WaistToBust != 0.9 {
		t.Errorf("Expected waist_to_bust 0.9, got %f", resp.Ratios.WaistToBust)
	}
	if resp.MatchedRule == "" {
		t.Error("Expected matched rule")
	}
}

func TestRecommendAbaya(t *testing.T) {
	h := NewHandler(newTestDeps(t), testConfig())

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCount  int
	}{
		{"known", `{"body_type": "hourglass"}`, http.StatusOK, 2},
		{"mixed case", `{"body_type": " Apple "}`, http.StatusOK, 2},
		{"unknown", `{"body_type": "triangle"}`, http.StatusOK, 5},
		{"missing field", `{}`, http.StatusBadRequest, 0},
		{"invalid json", `{"body_type":`, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/recommend-abaya", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := serve(h, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp models.RecommendationResponse
			decode(t, rec, &resp)
			if len(resp.Recommendations) != tt.wantCount {
				t.Errorf("Expected %d recommendations, got %d", tt.wantCount, len(resp.Recommendations))
			}
		})
	}
}

func TestBodyTypes(t *testing.T) {
	h := NewHandler(newTestDeps(t), testConfig())

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/body-types", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp models.InfoResponse
	decode(t, rec, &resp)
	if len(resp.BodyTypes) != 5 {
		t.Errorf("Expected 5 body types, got %d", len(resp.BodyTypes))
	}
	if resp.BodyTypes[models.Rectangle].Percentage != 46 {
		t.Errorf("Expected rectangle share 46, got %f", resp.BodyTypes[models.Rectangle].Percentage)
	}
}

func TestHealthAndRoot(t *testing.T) {
	deps := newTestDeps(t)
	deps.Landmark = stubHealth{err: errors.New("down")}
	h := NewHandler(deps, testConfig())

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var health map[string]interface{}
	decode(t, rec, &health)
	if health["status"] != "degraded" {
		t.Errorf("Expected degraded status, got %v", health["status"])
	}

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 from root, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewHandler(newTestDeps(t), testConfig())

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp map[string]json.RawMessage
	decode(t, rec, &resp)
	if _, ok := resp["analysis"]; !ok {
		t.Error("Expected analysis metrics")
	}
	if _, ok := resp["worker_pool"]; !ok {
		t.Error("Expected worker pool stats")
	}
}

func TestRequestIDPropagated(t *testing.T) {
	h := NewHandler(newTestDeps(t), testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "client-id-1")
	rec := serve(h, req)

	if got := rec.Header().Get(requestIDHeader); got != "client-id-1" {
		t.Errorf("Expected caller's request id to be echoed, got %q", got)
	}
}

func TestRateLimiter(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	h := NewHandler(newTestDeps(t), cfg)

	first := serve(h, httptest.NewRequest(http.MethodGet, "/body-types", nil))
	second := serve(h, httptest.NewRequest(http.MethodGet, "/body-types", nil))

	if first.Code != http.StatusOK {
		t.Errorf("Expected first request to pass, got %d", first.Code)
	}
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("Expected second request to be limited, got %d", second.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := NewHandler(newTestDeps(t), testConfig())

	rec := serve(h, httptest.NewRequest(http.MethodOptions, "/process-measurements", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected wildcard CORS origin")
	}
}
