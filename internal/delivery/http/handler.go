package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodscan/backend/internal/domain"
	"github.com/foodscan/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	pipeline *usecase.Pipeline
	store    domain.UploadStore
}

// NewHandler creates a new HTTP handler
func NewHandler(pipeline *usecase.Pipeline, store domain.UploadStore) *Handler {
	return &Handler{
		pipeline: pipeline,
		store:    store,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "foodscan-backend",
		"version": "1.0.0",
	})
}

// UploadImage handles POST /images/upload: a multipart form with an image
// field and a timestamp field. Responds with the generated filename used by
// subsequent analyze calls.
func (h *Handler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image field", "detail": err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload", "detail": err.Error()})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	filename, err := h.store.Save(contentType, fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrUnsupportedImageType) || errors.Is(err, domain.ErrFileTooLarge) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": "upload rejected", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filename":  filename,
		"timestamp": c.PostForm("timestamp"),
	})
}

// analyzeRequest is the body of the analyze endpoints
type analyzeRequest struct {
	Filename           string `json:"filename" binding:"required"`
	ProductDescription string `json:"productDescription,omitempty"`
}

// AnalyzeImage handles POST /images/analyze: the structured-annotator path
func (h *Handler) AnalyzeImage(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename is required", "detail": err.Error()})
		return
	}

	image, err := h.store.Read(req.Filename)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}

	result, err := h.pipeline.AnalyzeStructured(c.Request.Context(), req.Filename, image)
	if err != nil {
		h.respondProviderError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AnalyzeImageGenerative handles POST /images/analyze-openai: the generative
// path with an optional product-of-interest description.
func (h *Handler) AnalyzeImageGenerative(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename is required", "detail": err.Error()})
		return
	}

	if !h.pipeline.GenerativeConfigured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "generative provider is not configured"})
		return
	}

	image, err := h.store.Read(req.Filename)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}

	result, err := h.pipeline.AnalyzeGenerative(c.Request.Context(), req.Filename, image, req.ProductDescription)
	if err != nil {
		h.respondProviderError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// searchRequest is the body of the product-search endpoint
type searchRequest struct {
	FoodItems []domain.FoodItem `json:"foodItems"`
}

// SearchProducts handles POST /products/search over caller-supplied items
func (h *Handler) SearchProducts(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return
	}

	results, err := h.pipeline.SearchProducts(c.Request.Context(), req.FoodItems)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "foodItems array is required and must be non-empty"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "product search failed", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ListImages handles GET /images
func (h *Handler) ListImages(c *gin.Context) {
	uploads, err := h.store.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list uploads", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"images": uploads})
}

// respondStoreError maps storage errors to HTTP statuses
func (h *Handler) respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUploadNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "uploaded image not found", "detail": err.Error()})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filename", "detail": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload", "detail": err.Error()})
	}
}

// respondProviderError maps provider errors to HTTP statuses. Unconfigured or
// unreachable providers are 503; mid-flight failures are 500.
func (h *Handler) respondProviderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProviderUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "vision provider unavailable", "detail": err.Error()})
	case errors.Is(err, domain.ErrProviderFailure):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "vision provider request failed", "detail": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed", "detail": err.Error()})
	}
}
