package domain

import "time"

// Provider identifiers recorded on analysis results
const (
	ProviderStructured = "structured-vision"
	ProviderGenerative = "generative-vision"
)

// Pipeline stages observable by the UI
type Stage string

const (
	StageUpload  Stage = "upload"
	StageAnalyze Stage = "analyze"
	StageSearch  Stage = "search"
)

// StageStatus is the UI-observable status of one pipeline stage
type StageStatus string

const (
	StageIdle       StageStatus = "idle"
	StageInProgress StageStatus = "in_progress"
	StageSuccess    StageStatus = "success"
	StageError      StageStatus = "error"
)

// SceneAnalysis describes the overall scene reported by the generative annotator
type SceneAnalysis struct {
	TotalProducts   int    `json:"totalProducts"`
	SceneType       string `json:"sceneType,omitempty"`
	CulturalContext string `json:"culturalContext,omitempty"`
	Setting         string `json:"setting,omitempty"`
	LightingQuality string `json:"lightingQuality,omitempty"`
	ImageQuality    string `json:"imageQuality,omitempty"`
}

// AggregateNutrition sums estimated macros across all detected items
type AggregateNutrition struct {
	TotalCalories float64 `json:"totalCalories"`
	TotalProtein  float64 `json:"totalProtein"`
	TotalCarbs    float64 `json:"totalCarbs"`
	TotalFat      float64 `json:"totalFat"`
}

// AnalysisPayload is the results object carried by an AnalysisResult
type AnalysisPayload struct {
	FoodItems          []FoodItem          `json:"foodItems"`
	ExtractedText      string              `json:"extractedText,omitempty"`
	TotalProducts      int                 `json:"totalProducts"`
	SceneAnalysis      *SceneAnalysis      `json:"sceneAnalysis,omitempty"`
	AggregateNutrition *AggregateNutrition `json:"aggregateNutrition,omitempty"`
	SearchableTerms    []string            `json:"searchableTerms,omitempty"`
	Recommendations    []string            `json:"recommendations,omitempty"`
	SearchResults      []SearchResult      `json:"searchResults,omitempty"`
}

// AnalysisResult is the pipeline's output for one analyzed image.
// All fields are transient; nothing is persisted beyond the request.
type AnalysisResult struct {
	Filename  string                `json:"filename"`
	Timestamp time.Time             `json:"timestamp"`
	Provider  string                `json:"provider"`
	Results   AnalysisPayload       `json:"results"`
	Stages    map[Stage]StageStatus `json:"stages,omitempty"`
}
