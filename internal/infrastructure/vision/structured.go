package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/foodscan/backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Feature types for the annotate endpoint
const (
	featureLabels  = "LABEL_DETECTION"
	featureText    = "TEXT_DETECTION"
	featureObjects = "OBJECT_LOCALIZATION"
)

// StructuredClient calls a Cloud Vision style REST API. The three annotation
// sets (labels, text, objects) are independent and fetched concurrently.
type StructuredClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	debug      bool
}

// NewStructuredClient creates a structured annotator client
func NewStructuredClient(apiKey, baseURL string, callTimeout time.Duration) *StructuredClient {
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}

	return &StructuredClient{
		httpClient: &http.Client{
			Timeout: callTimeout,
		},
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// SetDebug enables verbose request logging
func (c *StructuredClient) SetDebug(debug bool) {
	c.debug = debug
}

// annotate API wire types

type annotateRequest struct {
	Requests []annotateEntry `json:"requests"`
}

type annotateEntry struct {
	Image    annotateImage     `json:"image"`
	Features []annotateFeature `json:"features"`
}

type annotateImage struct {
	Content string `json:"content"` // base64
}

type annotateFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type annotateResponse struct {
	Responses []annotateResult `json:"responses"`
}

type annotateResult struct {
	LabelAnnotations           []domain.LabelAnnotation  `json:"labelAnnotations"`
	TextAnnotations            []domain.TextAnnotation   `json:"textAnnotations"`
	LocalizedObjectAnnotations []domain.ObjectAnnotation `json:"localizedObjectAnnotations"`
	Error                      *annotateError            `json:"error"`
}

type annotateError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Annotate fetches labels, text, and localized objects for the image. The
// three calls are issued concurrently; any one failing fails the whole
// operation. Empty annotation sets are valid results, not failures.
func (c *StructuredClient) Annotate(ctx context.Context, image []byte) (*domain.StructuredAnnotations, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: API key not configured", domain.ErrProviderUnavailable)
	}

	encoded := base64.StdEncoding.EncodeToString(image)
	annotations := &domain.StructuredAnnotations{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		result, err := c.annotateFeature(gctx, encoded, featureLabels)
		if err != nil {
			return err
		}
		annotations.Labels = result.LabelAnnotations
		return nil
	})

	g.Go(func() error {
		result, err := c.annotateFeature(gctx, encoded, featureText)
		if err != nil {
			return err
		}
		annotations.Texts = result.TextAnnotations
		return nil
	})

	g.Go(func() error {
		result, err := c.annotateFeature(gctx, encoded, featureObjects)
		if err != nil {
			return err
		}
		annotations.Objects = result.LocalizedObjectAnnotations
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if c.debug {
		log.Printf("[VISION] Annotate: %d labels, %d texts, %d objects",
			len(annotations.Labels), len(annotations.Texts), len(annotations.Objects))
	}

	return annotations, nil
}

// annotateFeature performs one annotate call for a single feature type
func (c *StructuredClient) annotateFeature(ctx context.Context, encodedImage, feature string) (*annotateResult, error) {
	reqBody := annotateRequest{
		Requests: []annotateEntry{
			{
				Image:    annotateImage{Content: encodedImage},
				Features: []annotateFeature{{Type: feature, MaxResults: 10}},
			},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1/images:annotate?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Connection errors and timeouts are the same failure class:
		// the provider is unavailable, which is distinct from "no detections"
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("[VISION] %s failed - Status: %d, Body: %s", feature, resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrProviderFailure, resp.StatusCode)
	}

	var annotateResp annotateResponse
	if err := json.Unmarshal(body, &annotateResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrProviderFailure, err)
	}

	if len(annotateResp.Responses) == 0 {
		return &annotateResult{}, nil
	}

	result := annotateResp.Responses[0]
	if result.Error != nil {
		return nil, fmt.Errorf("%w: %s (code %d)", domain.ErrProviderFailure, result.Error.Message, result.Error.Code)
	}

	return &result, nil
}
