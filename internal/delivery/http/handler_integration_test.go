package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodscan/backend/config"
	"github.com/foodscan/backend/internal/domain"
	"github.com/foodscan/backend/internal/infrastructure/cache"
	"github.com/foodscan/backend/internal/infrastructure/storage"
	"github.com/foodscan/backend/internal/infrastructure/vision"
	"github.com/foodscan/backend/internal/usecase"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// stubProductClient serves a single canned product for every search term
type stubProductClient struct {
	products []domain.OFFProduct
	err      error
}

func (s *stubProductClient) SearchProducts(ctx context.Context, term string) ([]domain.OFFProduct, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}

// stubGenerative is a generative annotator without credentials
type stubGenerative struct{}

func (s *stubGenerative) Describe(ctx context.Context, image []byte, hint string) (string, error) {
	return "", fmt.Errorf("%w: generative API key not configured", domain.ErrProviderUnavailable)
}

func (s *stubGenerative) Configured() bool { return false }

type routerOptions struct {
	maxUploadBytes int64
	generative     domain.GenerativeAnnotator
}

func newTestRouter(t *testing.T, opts routerOptions) *gin.Engine {
	t.Helper()

	if opts.maxUploadBytes <= 0 {
		opts.maxUploadBytes = 1 << 20
	}

	store, err := storage.NewDiskStore(t.TempDir(), opts.maxUploadBytes)
	require.NoError(t, err)

	mock := vision.NewMockAnnotator()
	var generative domain.GenerativeAnnotator = mock
	if opts.generative != nil {
		generative = opts.generative
	}

	matcher := usecase.NewMatcher(
		&stubProductClient{products: []domain.OFFProduct{
			{Code: "123", ProductName: "Gala Apple", LabelsTags: []string{"en:organic"}},
		}},
		cache.NewMemoryCache(time.Minute),
		usecase.MatcherConfig{MaxProducts: 3, CacheTTL: time.Minute},
	)

	pipeline := usecase.NewPipeline(mock, generative, matcher, usecase.PipelineConfig{})
	handler := NewHandler(pipeline, store)

	cfg := &config.Config{}
	cfg.Server.Environment = "development"
	cfg.Server.AllowedOrigins = []string{"*"}

	return SetupRouter(cfg, handler)
}

func multipartImage(t *testing.T, fieldContentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="photo.jpg"`)
	header.Set("Content-Type", fieldContentType)

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)

	require.NoError(t, writer.WriteField("timestamp", "1756700000000"))
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func uploadImage(t *testing.T, router *gin.Engine) string {
	t.Helper()

	body, contentType := multipartImage(t, "image/jpeg", []byte("fake jpeg bytes"))
	req := httptest.NewRequest("POST", "/images/upload", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["filename"])
	return resp["filename"]
}

func postJSON(router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, routerOptions{})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "foodscan-backend", resp["service"])
}

func TestUploadEndpoint(t *testing.T) {
	router := newTestRouter(t, routerOptions{})

	filename := uploadImage(t, router)
	assert.NotEmpty(t, filename)

	// Listing shows the stored image
	req := httptest.NewRequest("GET", "/images", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var listResp struct {
		Images []domain.UploadInfo `json:"images"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	require.Len(t, listResp.Images, 1)
	assert.Equal(t, filename, listResp.Images[0].Filename)
}

func TestUploadEndpoint_MissingField(t *testing.T) {
	router := newTestRouter(t, routerOptions{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("timestamp", "123"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/images/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadEndpoint_RejectsNonImage(t *testing.T) {
	router := newTestRouter(t, routerOptions{})

	body, contentType := multipartImage(t, "application/pdf", []byte("%PDF-"))
	req := httptest.NewRequest("POST", "/images/upload", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadEndpoint_RejectsOversize(t *testing.T) {
	router := newTestRouter(t, routerOptions{maxUploadBytes: 64})

	body, contentType := multipartImage(t, "image/jpeg", make([]byte, 256))
	req := httptest.NewRequest("POST", "/images/upload", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeEndpoint(t *testing.T) {
	router := newTestRouter(t, routerOptions{})
	filename := uploadImage(t, router)

	w := postJSON(router, "/images/analyze", gin.H{"filename": filename})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result domain.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	assert.Equal(t, filename, result.Filename)
	assert.Equal(t, domain.ProviderStructured, result.Provider)
	require.NotEmpty(t, result.Results.FoodItems)
	assert.Equal(t, "Apple", result.Results.FoodItems[0].Name)
	assert.NotEmpty(t, result.Results.ExtractedText)

	// Every detected item got a search result against the product database
	require.Len(t, result.Results.SearchResults, len(result.Results.FoodItems))
	require.NotEmpty(t, result.Results.SearchResults[0].Products)
	assert.Equal(t, "Gala Apple", result.Results.SearchResults[0].Products[0].Name)

	assert.Equal(t, domain.StageSuccess, result.Stages[domain.StageUpload])
	assert.Equal(t, domain.StageSuccess, result.Stages[domain.StageAnalyze])
	assert.Equal(t, domain.StageSuccess, result.Stages[domain.StageSearch])
}

func TestAnalyzeEndpoint_UnknownFilename(t *testing.T) {
	router := newTestRouter(t, routerOptions{})

	w := postJSON(router, "/images/analyze", gin.H{"filename": "1700000000000-deadbeef.jpg"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyzeEndpoint_InvalidFilename(t *testing.T) {
	router := newTestRouter(t, routerOptions{})

	w := postJSON(router, "/images/analyze", gin.H{"filename": "../../etc/passwd"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeEndpoint_MissingFilename(t *testing.T) {
	router := newTestRouter(t, routerOptions{})

	w := postJSON(router, "/images/analyze", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeGenerativeEndpoint(t *testing.T) {
	router := newTestRouter(t, routerOptions{})
	filename := uploadImage(t, router)

	w := postJSON(router, "/images/analyze-openai", gin.H{
		"filename":           filename,
		"productDescription": "the apple in the center",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result domain.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	assert.Equal(t, domain.ProviderGenerative, result.Provider)
	require.Len(t, result.Results.FoodItems, 1)
	assert.Equal(t, "Gala Apple", result.Results.FoodItems[0].Name)
	assert.Equal(t, 1, result.Results.TotalProducts)
	require.NotNil(t, result.Results.SceneAnalysis)
	assert.Equal(t, "kitchen counter", result.Results.SceneAnalysis.SceneType)
	require.Len(t, result.Results.SearchResults, 1)
}

func TestAnalyzeGenerativeEndpoint_NotConfigured(t *testing.T) {
	router := newTestRouter(t, routerOptions{generative: &stubGenerative{}})
	filename := uploadImage(t, router)

	w := postJSON(router, "/images/analyze-openai", gin.H{"filename": filename})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSearchEndpoint(t *testing.T) {
	router := newTestRouter(t, routerOptions{})

	w := postJSON(router, "/products/search", gin.H{
		"foodItems": []domain.FoodItem{
			{Name: "Oat Milk", Confidence: 90, Category: domain.CategoryDetectedFood},
		},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Results []domain.SearchResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Oat Milk", resp.Results[0].FoodItem)
	require.Len(t, resp.Results[0].Products, 1)
	assert.Equal(t, domain.StatusCertifiedOrganic, resp.Results[0].Products[0].OrganicStatus)
}

func TestSearchEndpoint_EmptyItems(t *testing.T) {
	router := newTestRouter(t, routerOptions{})

	w := postJSON(router, "/products/search", gin.H{"foodItems": []domain.FoodItem{}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
