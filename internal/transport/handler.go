package transport

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-body-inspector/internal/analyzer"
	"go-body-inspector/internal/config"
	apperrors "go-body-inspector/internal/errors"
	"go-body-inspector/internal/logger"
	"go-body-inspector/internal/observer"
	"go-body-inspector/internal/service"
	"go-body-inspector/pkg/models"
	"go-body-inspector/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const version = "1.0.0"

// HealthChecker reports whether a downstream dependency is reachable
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// Dependencies are the services the HTTP layer dispatches to
type Dependencies struct {
	Analysis service.BodyAnalysisService
	Detailed *services.DetailedAnalysisService
	Metrics  *observer.MetricsObserver
	Measurer analyzer.ImageMeasurer
	Landmark HealthChecker
}

type handler struct {
	deps Dependencies
	cfg  *config.Config
}

// NewHandler builds the gin engine with middleware and routes
func NewHandler(deps Dependencies, cfg *config.Config) http.Handler {
	h := &handler{deps: deps, cfg: cfg}

	r := gin.New()
	r.Use(
		requestID(),
		requestLogger(),
		recovery(),
		cors(),
		rateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/", h.root)
	r.GET("/health", h.healthCheck)
	r.GET("/body-types", h.bodyTypes)
	r.GET("/metrics", h.metrics)
	r.POST("/process-measurements", h.processMeasurements)
	r.POST("/process-measurements/detailed", h.processMeasurementsDetailed)
	r.POST("/recommend-abaya", h.recommendAbaya)

	return r
}

func (h *handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "body-inspector",
		"version": version,
		"endpoints": []string{
			"POST /process-measurements",
			"POST /process-measurements/detailed",
			"POST /recommend-abaya",
			"GET /body-types",
			"GET /health",
			"GET /metrics",
		},
	})
}

func (h *handler) healthCheck(c *gin.Context) {
	resp := gin.H{
		"status":  "available",
		"version": version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}

	if h.deps.Landmark != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.deps.Landmark.CheckHealth(ctx); err != nil {
			logger.WithContext(c.Request.Context()).WithError(err).Warn("Landmark provider health check failed")
			resp["status"] = "degraded"
			resp["landmark_provider"] = "unavailable"
		} else {
			resp["landmark_provider"] = "available"
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) processMeasurements(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	req, err := h.bindAnalyzeRequest(c)
	if err != nil {
		respondError(c, err)
		return
	}

	analysis, err := h.deps.Analysis.Analyze(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis.Response())
}

func (h *handler) processMeasurementsDetailed(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	req, err := h.bindAnalyzeRequest(c)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.deps.Detailed.AnalyzeDetailed(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type recommendBody struct {
	BodyType *string `json:"body_type"`
}

func (h *handler) recommendAbaya(c *gin.Context) {
	var body recommendBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, apperrors.NewValidationError("request body must be JSON with a body_type field", err))
		return
	}
	if body.BodyType == nil {
		respondError(c, apperrors.NewMissingFieldsError([]string{"body_type"}))
		return
	}

	c.JSON(http.StatusOK, h.deps.Analysis.Recommend(*body.BodyType))
}

func (h *handler) bodyTypes(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Analysis.Info())
}

func (h *handler) metrics(c *gin.Context) {
	resp := gin.H{}
	if h.deps.Metrics != nil {
		resp["analysis"] = h.deps.Metrics.GetMetrics()
	}
	if h.deps.Measurer != nil {
		resp["worker_pool"] = h.deps.Measurer.Stats()
	}
	c.JSON(http.StatusOK, resp)
}

// bindAnalyzeRequest reads the multipart (or urlencoded) analysis form
func (h *handler) bindAnalyzeRequest(c *gin.Context) (models.AnalyzeRequest, error) {
	req := models.AnalyzeRequest{
		RequestID:          c.GetString("request_id"),
		ImageURL:           strings.TrimSpace(c.PostForm("image_url")),
		ManualMeasurements: strings.TrimSpace(c.PostForm("manual_measurements")),
	}

	if raw := strings.TrimSpace(c.PostForm("user_height_cm")); raw != "" {
		height, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, apperrors.NewValidationError("user_height_cm must be a number", err)
		}
		req.KnownHeightCm = height
	}

	file, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		return req, toFormError(err)
	default:
		data, err := readUpload(file)
		if err != nil {
			return req, toFormError(err)
		}
		req.Image = data
	}

	return req, nil
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

func toFormError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return apperrors.NewValidationError("request body too large", err)
	}
	return apperrors.NewValidationError("invalid multipart form", err)
}

func errorBody(status int, errorType, message, details string, fields []string) models.ErrorResponse {
	return models.ErrorResponse{
		Error:         http.StatusText(status),
		Type:          errorType,
		Message:       message,
		Details:       details,
		MissingFields: fields,
	}
}

// respondError writes the typed error. Internal errors are logged under a
// trace id and the client only sees that id.
func respondError(c *gin.Context, err error) {
	appErr := toAppError(err)
	fields := logrus.Fields{
		"request_id": logger.RequestID(c.Request.Context()),
		"status":     appErr.StatusCode,
		"error_type": appErr.Type,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"ip":         c.ClientIP(),
	}

	message, details := appErr.Message, appErr.Details
	if appErr.Type == apperrors.ErrorTypeInternal {
		traceID := logger.ErrorWithTraceID(err, fields, "Request failed")
		message = "internal processing error"
		details = "trace_id: " + traceID
	} else {
		logger.WithError(err).WithFields(fields).Warn("Request rejected")
	}

	c.AbortWithStatusJSON(appErr.StatusCode, errorBody(
		appErr.StatusCode, string(appErr.Type), message, details, appErr.Fields))
}
