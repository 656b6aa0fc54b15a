package domain

import "encoding/json"

// LabelAnnotation is one label detected by the structured annotator
type LabelAnnotation struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"` // 0-1
}

// TextAnnotation is one text detection. The first entry in a response is the
// full extracted text block; the remainder are individual words.
type TextAnnotation struct {
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence,omitempty"`
}

// ObjectAnnotation is one localized object detected by the structured annotator
type ObjectAnnotation struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"` // 0-1
}

// StructuredAnnotations holds the three independent annotation sets returned
// by the structured vision annotator.
type StructuredAnnotations struct {
	Labels  []LabelAnnotation  `json:"labels"`
	Texts   []TextAnnotation   `json:"texts"`
	Objects []ObjectAnnotation `json:"objects"`
}

// GenerativeProduct is one entry in the generative annotator's multi-product
// JSON schema. Confidence is a pointer so an absent field is distinguishable
// from an explicit zero.
type GenerativeProduct struct {
	ID                       string           `json:"id,omitempty"`
	Name                     string           `json:"name"`
	Type                     string           `json:"type,omitempty"`
	Position                 string           `json:"position,omitempty"`
	Quantity                 int              `json:"quantity,omitempty"`
	Confidence               *int             `json:"confidence,omitempty"`
	NutritionalInfo          *NutritionalInfo `json:"nutritionalInfo,omitempty"`
	PortionSize              string           `json:"portionSize,omitempty"`
	BrandInfo                string           `json:"brandInfo,omitempty"`
	Ingredients              []string         `json:"ingredients,omitempty"`
	DietaryFlags             []string         `json:"dietaryFlags,omitempty"`
	OrganicStatus            string           `json:"organicStatus,omitempty"`
	FairTradeStatus          string           `json:"fairTradeStatus,omitempty"`
	CertificationInfo        string           `json:"certificationInfo,omitempty"`
	Freshness                string           `json:"freshness,omitempty"`
	PreparationMethod        string           `json:"preparationMethod,omitempty"`
	OpenFoodFactsSearchTerms []string         `json:"openFoodFactsSearchTerms,omitempty"`
}

// GenerativeAnalysis is the full multi-product document the generative
// annotator is prompted to return. FoodItems is the legacy single-list shape;
// entries may be plain strings or objects, so they are decoded lazily.
type GenerativeAnalysis struct {
	Products           []GenerativeProduct `json:"products"`
	FoodItems          []json.RawMessage   `json:"foodItems"`
	SceneAnalysis      *SceneAnalysis      `json:"sceneAnalysis,omitempty"`
	AggregateNutrition *AggregateNutrition `json:"aggregateNutrition,omitempty"`
	SearchableTerms    []string            `json:"searchableTerms,omitempty"`
	Recommendations    []string            `json:"recommendations,omitempty"`
}

// LegacyFoodItem is the object form of a legacy foodItems entry
type LegacyFoodItem struct {
	Name       string `json:"name"`
	Confidence *int   `json:"confidence,omitempty"`
}
