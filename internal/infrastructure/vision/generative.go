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
)

// multiProductPrompt instructs the model to return the multi-product JSON
// document. Prose fallback is handled downstream by the normalizer.
const multiProductPrompt = `Analyze this image and identify every food product visible.
Respond with a JSON document of the form:
{
  "products": [{
    "id": "p1", "name": "...", "type": "packaged|fresh|prepared|beverage",
    "position": "...", "quantity": 1, "confidence": 0-100,
    "nutritionalInfo": {"calories":0,"protein":0,"carbs":0,"fat":0,"fiber":0},
    "portionSize": "...", "brandInfo": "...", "ingredients": [], "dietaryFlags": [],
    "organicStatus": "certified|likely|conventional|unknown",
    "fairTradeStatus": "certified|likely|conventional|unknown",
    "certificationInfo": "...", "freshness": "...", "preparationMethod": "...",
    "openFoodFactsSearchTerms": ["most specific term", "fallback term"]
  }],
  "sceneAnalysis": {"totalProducts":0,"sceneType":"...","culturalContext":"...","setting":"...","lightingQuality":"...","imageQuality":"..."},
  "aggregateNutrition": {"totalCalories":0,"totalProtein":0,"totalCarbs":0,"totalFat":0},
  "searchableTerms": [],
  "recommendations": []
}`

// GenerativeClient calls an OpenAI-compatible chat completions API with the
// image attached as a base64 data URI.
type GenerativeClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	debug      bool
}

// NewGenerativeClient creates a generative annotator client. An empty apiKey
// produces an unconfigured client: Configured() reports false and Describe
// returns ErrProviderUnavailable.
func NewGenerativeClient(apiKey, baseURL, model string, callTimeout time.Duration) *GenerativeClient {
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}

	return &GenerativeClient{
		httpClient: &http.Client{
			Timeout: callTimeout,
		},
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
	}
}

// SetDebug enables verbose request logging
func (c *GenerativeClient) SetDebug(debug bool) {
	c.debug = debug
}

// Configured reports whether credentials are present
func (c *GenerativeClient) Configured() bool {
	return c.apiKey != ""
}

// chat completions wire types

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatContent struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Describe sends the image for analysis and returns the raw text content of
// the response. When hint is non-empty the model is told to prioritize that
// product and extract search-optimized terms for it.
func (c *GenerativeClient) Describe(ctx context.Context, image []byte, hint string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%w: generative API key not configured", domain.ErrProviderUnavailable)
	}

	prompt := multiProductPrompt
	if hint != "" {
		prompt += fmt.Sprintf("\n\nThe user is specifically interested in: %q. Prioritize this product and extract search-optimized openFoodFactsSearchTerms for it.", hint)
	}

	dataURI := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []chatContent{
					{Type: "text", Text: prompt},
					{Type: "image_url", ImageURL: &chatImageURL{URL: dataURI}},
				},
			},
		},
		MaxTokens: 2000,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1/chat/completions", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("[VISION] Generative call failed - Status: %d, Body: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("%w: status %d", domain.ErrProviderFailure, resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", domain.ErrProviderFailure, err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrProviderFailure, chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", domain.ErrProviderFailure)
	}

	content := chatResp.Choices[0].Message.Content

	if c.debug {
		log.Printf("[VISION] Generative response: %d bytes", len(content))
	}

	return content, nil
}
