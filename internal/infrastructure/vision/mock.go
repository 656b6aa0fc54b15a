package vision

import (
	"context"

	"github.com/foodscan/backend/internal/domain"
)

// MockAnnotator returns canned annotations so the pipeline can run without
// provider credentials (vision.provider = "mock"). It implements both the
// structured and generative annotator interfaces.
type MockAnnotator struct{}

// NewMockAnnotator creates a mock annotator
func NewMockAnnotator() *MockAnnotator {
	return &MockAnnotator{}
}

// Annotate returns a fixed label/object set
func (m *MockAnnotator) Annotate(ctx context.Context, image []byte) (*domain.StructuredAnnotations, error) {
	return &domain.StructuredAnnotations{
		Labels: []domain.LabelAnnotation{
			{Description: "Apple", Score: 0.94},
			{Description: "Banana", Score: 0.88},
			{Description: "Fruit", Score: 0.72},
		},
		Texts: []domain.TextAnnotation{
			{Description: "ORGANIC\nFresh Produce"},
			{Description: "ORGANIC", Confidence: 0.97},
			{Description: "Fresh", Confidence: 0.95},
			{Description: "Produce", Confidence: 0.93},
		},
		Objects: []domain.ObjectAnnotation{
			{Name: "Apple", Score: 0.91},
			{Name: "Banana", Score: 0.83},
		},
	}, nil
}

// Describe returns a fixed multi-product JSON document
func (m *MockAnnotator) Describe(ctx context.Context, image []byte, hint string) (string, error) {
	return `{
  "products": [
    {
      "id": "p1",
      "name": "Gala Apple",
      "type": "fresh",
      "position": "center",
      "quantity": 2,
      "confidence": 92,
      "organicStatus": "likely",
      "fairTradeStatus": "unknown",
      "openFoodFactsSearchTerms": ["gala apple", "apple"]
    }
  ],
  "sceneAnalysis": {"totalProducts": 1, "sceneType": "kitchen counter", "imageQuality": "good"},
  "aggregateNutrition": {"totalCalories": 104, "totalProtein": 0.5, "totalCarbs": 28, "totalFat": 0.3},
  "searchableTerms": ["gala apple"],
  "recommendations": ["Rinse before eating"]
}`, nil
}

// Configured always reports true for the mock
func (m *MockAnnotator) Configured() bool {
	return true
}
