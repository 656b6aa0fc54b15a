package domain

// OFFProduct is one product record from the Open Food Facts search API
type OFFProduct struct {
	ID             string   `json:"_id"`
	Code           string   `json:"code"`
	ProductName    string   `json:"product_name"`
	Brands         string   `json:"brands"`
	URL            string   `json:"url"`
	ImageURL       string   `json:"image_url"`
	NutritionGrade string   `json:"nutrition_grades"`
	Categories     string   `json:"categories"`
	Labels         string   `json:"labels"`
	LabelsTags     []string `json:"labels_tags"`
}

// OFFSearchResponse is the envelope returned by the Open Food Facts text search
type OFFSearchResponse struct {
	Count    int          `json:"count"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Products []OFFProduct `json:"products"`
}

// ProductMatch is one external product record associated with a search term.
// OrganicStatus and FairTradeStatus are derived: the FoodItem's own status when
// known, otherwise inferred from the record's label text and tags. The vision
// assessment always takes precedence over the database-label inference.
type ProductMatch struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Brand           string `json:"brand,omitempty"`
	URL             string `json:"url,omitempty"`
	Image           string `json:"image,omitempty"`
	NutritionGrade  string `json:"nutritionGrade,omitempty"`
	Categories      string `json:"categories,omitempty"`
	Labels          string `json:"labels,omitempty"`
	OrganicStatus   string `json:"organicStatus"`
	FairTradeStatus string `json:"fairTradeStatus"`
}

// SearchResult is the outcome of matching one FoodItem against the product
// database. Error is set when the item's lookup failed; the batch continues.
type SearchResult struct {
	FoodItem          string         `json:"foodItem"`
	SearchTerm        string         `json:"searchTerm"`
	Confidence        int            `json:"confidence"`
	OrganicStatus     string         `json:"organicStatus,omitempty"`
	FairTradeStatus   string         `json:"fairTradeStatus,omitempty"`
	CertificationInfo string         `json:"certificationInfo,omitempty"`
	Products          []ProductMatch `json:"products"`
	Error             string         `json:"error,omitempty"`
}
