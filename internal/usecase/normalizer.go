package usecase

import (
	"encoding/json"
	"log"
	"math"
	"regexp"
	"strings"

	"github.com/foodscan/backend/internal/domain"
)

// Score thresholds for the structured annotator path. Annotations at or below
// the threshold are excluded.
const (
	labelScoreThreshold  = 0.6
	objectScoreThreshold = 0.5

	// Confidence assigned to generative products that omit the field
	defaultGenerativeConfidence = 80
)

// codeFenceRegex strips markdown fences the generative model often wraps
// around its JSON output
var codeFenceRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// NormalizedAnalysis is the normalizer's output for one raw provider response
type NormalizedAnalysis struct {
	Items         []domain.FoodItem
	ExtractedText string

	// Generative enrichments, nil/empty for the structured path
	SceneAnalysis      *domain.SceneAnalysis
	AggregateNutrition *domain.AggregateNutrition
	SearchableTerms    []string
	Recommendations    []string

	// ProductCount is the length of the parsed products array, zero when the
	// response did not carry one
	ProductCount int
}

// Normalizer converts raw provider responses into FoodItem sequences. It never
// fails: malformed generative output degrades to heuristic text extraction and
// the result is always a (possibly empty) item list.
type Normalizer struct {
	debug bool
}

// NewNormalizer creates a normalizer
func NewNormalizer(debug bool) *Normalizer {
	return &Normalizer{debug: debug}
}

// FromStructured converts label/text/object annotation sets. Labels are kept
// above score 0.6, objects above 0.5, confidence = round(score*100). The full
// text block is surfaced separately, not folded into items.
func (n *Normalizer) FromStructured(ann *domain.StructuredAnnotations) *NormalizedAnalysis {
	result := &NormalizedAnalysis{}
	if ann == nil {
		return result
	}

	seen := make(map[string]bool)

	for _, label := range ann.Labels {
		if label.Score <= labelScoreThreshold {
			continue
		}
		key := strings.ToLower(label.Description)
		if seen[key] {
			continue
		}
		seen[key] = true
		result.Items = append(result.Items, domain.FoodItem{
			Name:       label.Description,
			Confidence: roundScore(label.Score),
			Category:   domain.CategoryDetectedFood,
		})
	}

	for _, object := range ann.Objects {
		if object.Score <= objectScoreThreshold {
			continue
		}
		key := strings.ToLower(object.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		result.Items = append(result.Items, domain.FoodItem{
			Name:       object.Name,
			Confidence: roundScore(object.Score),
			Category:   domain.CategoryDetectedFood,
		})
	}

	// First text annotation carries the full extracted text block
	if len(ann.Texts) > 0 {
		result.ExtractedText = ann.Texts[0].Description
	}

	if n.debug {
		log.Printf("[NORMALIZE] Structured: %d items from %d labels + %d objects",
			len(result.Items), len(ann.Labels), len(ann.Objects))
	}

	return result
}

// FromGenerative converts a generative response. Parse order: multi-product
// schema, then legacy foodItems array, then heuristic prose extraction.
func (n *Normalizer) FromGenerative(raw string) *NormalizedAnalysis {
	stripped := stripCodeFences(raw)

	var analysis domain.GenerativeAnalysis
	if err := json.Unmarshal([]byte(stripped), &analysis); err == nil {
		if analysis.Products != nil {
			return n.fromProducts(&analysis)
		}
		if analysis.FoodItems != nil {
			return n.fromLegacyItems(&analysis)
		}
	}

	// Unparseable or schema-free response: degrade, never fail
	if n.debug {
		log.Printf("[NORMALIZE] Generative response not structured, using heuristic extraction")
	}
	return n.fromProse(raw)
}

// fromProducts maps the multi-product schema
func (n *Normalizer) fromProducts(analysis *domain.GenerativeAnalysis) *NormalizedAnalysis {
	items := make([]domain.FoodItem, 0, len(analysis.Products))

	for _, product := range analysis.Products {
		confidence := defaultGenerativeConfidence
		if product.Confidence != nil {
			confidence = *product.Confidence
		}

		quantity := product.Quantity
		if quantity < 1 {
			quantity = 1
		}

		searchTerms := product.OpenFoodFactsSearchTerms
		if len(searchTerms) == 0 {
			searchTerms = []string{product.Name}
		}

		items = append(items, domain.FoodItem{
			Name:              product.Name,
			Confidence:        confidence,
			Category:          domain.CategoryDetectedFood,
			Type:              product.Type,
			Position:          product.Position,
			Quantity:          quantity,
			BrandInfo:         product.BrandInfo,
			SearchTerms:       searchTerms,
			OrganicStatus:     statusOrUnknown(product.OrganicStatus),
			FairTradeStatus:   statusOrUnknown(product.FairTradeStatus),
			CertificationInfo: product.CertificationInfo,
			NutritionalInfo:   product.NutritionalInfo,
			PortionSize:       product.PortionSize,
			Ingredients:       product.Ingredients,
			DietaryFlags:      product.DietaryFlags,
			Freshness:         product.Freshness,
			PreparationMethod: product.PreparationMethod,
		})
	}

	if n.debug {
		log.Printf("[NORMALIZE] Generative: %d products", len(items))
	}

	return &NormalizedAnalysis{
		Items:              items,
		SceneAnalysis:      analysis.SceneAnalysis,
		AggregateNutrition: analysis.AggregateNutrition,
		SearchableTerms:    analysis.SearchableTerms,
		Recommendations:    analysis.Recommendations,
		ProductCount:       len(analysis.Products),
	}
}

// fromLegacyItems maps the legacy foodItems array, whose entries may be plain
// strings or objects
func (n *Normalizer) fromLegacyItems(analysis *domain.GenerativeAnalysis) *NormalizedAnalysis {
	var items []domain.FoodItem

	for _, entry := range analysis.FoodItems {
		var name string
		confidence := defaultGenerativeConfidence

		var s string
		if err := json.Unmarshal(entry, &s); err == nil {
			name = s
		} else {
			var legacy domain.LegacyFoodItem
			if err := json.Unmarshal(entry, &legacy); err != nil {
				continue
			}
			name = legacy.Name
			if legacy.Confidence != nil {
				confidence = *legacy.Confidence
			}
		}

		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		items = append(items, domain.FoodItem{
			Name:       name,
			Confidence: confidence,
			Category:   domain.CategoryDetectedFood,
		})
	}

	if n.debug {
		log.Printf("[NORMALIZE] Generative: %d legacy food items", len(items))
	}

	return &NormalizedAnalysis{
		Items:              items,
		SceneAnalysis:      analysis.SceneAnalysis,
		AggregateNutrition: analysis.AggregateNutrition,
		SearchableTerms:    analysis.SearchableTerms,
		Recommendations:    analysis.Recommendations,
	}
}

// fromProse applies heuristic regex extraction to an unstructured response.
// Extracted nutrition and portion estimates describe the response as a whole,
// so they are attached to every item.
func (n *Normalizer) fromProse(raw string) *NormalizedAnalysis {
	items := ExtractFoodItems(raw)

	nutrition := ExtractNutritionalInfo(raw)
	portion := ExtractPortionSize(raw)
	for i := range items {
		items[i].NutritionalInfo = nutrition
		items[i].PortionSize = portion
	}

	return &NormalizedAnalysis{Items: items}
}

// stripCodeFences unwraps a ```json ... ``` block when present
func stripCodeFences(s string) string {
	if match := codeFenceRegex.FindStringSubmatch(s); match != nil {
		return match[1]
	}
	return strings.TrimSpace(s)
}

// statusOrUnknown defaults an absent certification status to "unknown"
func statusOrUnknown(status string) string {
	if status == "" {
		return domain.StatusUnknown
	}
	return status
}

// roundScore converts a 0-1 score to an integer 0-100 confidence
func roundScore(score float64) int {
	return int(math.Round(score * 100))
}
