package domain

// CategoryDetectedFood is the fixed category tag assigned to every normalized item
const CategoryDetectedFood = "detected_food"

// Certification status values. Vision providers report certified/likely/
// conventional/unknown; database-label inference produces the certified_*
// variants when a matching label or tag is found on the product record.
const (
	StatusCertified          = "certified"
	StatusLikely             = "likely"
	StatusConventional       = "conventional"
	StatusUnknown            = "unknown"
	StatusCertifiedOrganic   = "certified_organic"
	StatusCertifiedFairTrade = "certified_fair_trade"
)

// Item type values reported by the generative annotator
const (
	ItemTypePackaged = "packaged"
	ItemTypeFresh    = "fresh"
	ItemTypePrepared = "prepared"
	ItemTypeBeverage = "beverage"
)

// FoodItem is one detected food/product candidate, normalized from a provider
// response. Constructed once during normalization and immutable thereafter.
type FoodItem struct {
	Name       string `json:"name"`
	Confidence int    `json:"confidence"` // 0-100
	Category   string `json:"category"`   // always "detected_food"

	// Optional fields, populated by the generative annotator path
	Type              string           `json:"type,omitempty"`
	Position          string           `json:"position,omitempty"`
	Quantity          int              `json:"quantity,omitempty"`
	BrandInfo         string           `json:"brandInfo,omitempty"`
	SearchTerms       []string         `json:"searchTerms,omitempty"` // most-specific first
	OrganicStatus     string           `json:"organicStatus,omitempty"`
	FairTradeStatus   string           `json:"fairTradeStatus,omitempty"`
	CertificationInfo string           `json:"certificationInfo,omitempty"`
	NutritionalInfo   *NutritionalInfo `json:"nutritionalInfo,omitempty"`
	PortionSize       string           `json:"portionSize,omitempty"`
	Ingredients       []string         `json:"ingredients,omitempty"`
	DietaryFlags      []string         `json:"dietaryFlags,omitempty"`
	Freshness         string           `json:"freshness,omitempty"`
	PreparationMethod string           `json:"preparationMethod,omitempty"`
}

// NutritionalInfo holds estimated per-item macronutrients
type NutritionalInfo struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"` // grams
	Carbs    float64 `json:"carbs"`   // grams
	Fat      float64 `json:"fat"`     // grams
	Fiber    float64 `json:"fiber"`   // grams
}

// EffectiveSearchTerms returns the item's search terms, falling back to the
// item name when none were provided by the annotator.
func (f *FoodItem) EffectiveSearchTerms() []string {
	if len(f.SearchTerms) > 0 {
		return f.SearchTerms
	}
	return []string{f.Name}
}
