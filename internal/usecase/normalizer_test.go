package usecase

import (
	"reflect"
	"testing"

	"github.com/foodscan/backend/internal/domain"
)

func TestFromStructured(t *testing.T) {
	n := NewNormalizer(false)

	t.Run("maps labels above threshold with rounded confidence", func(t *testing.T) {
		ann := &domain.StructuredAnnotations{
			Labels: []domain.LabelAnnotation{
				{Description: "Apple", Score: 0.84},
			},
		}

		result := n.FromStructured(ann)
		if len(result.Items) != 1 {
			t.Fatalf("len(Items) = %d, want 1", len(result.Items))
		}
		item := result.Items[0]
		if item.Name != "Apple" {
			t.Errorf("Name = %q, want Apple", item.Name)
		}
		if item.Confidence != 84 {
			t.Errorf("Confidence = %d, want 84", item.Confidence)
		}
		if item.Category != domain.CategoryDetectedFood {
			t.Errorf("Category = %q, want %q", item.Category, domain.CategoryDetectedFood)
		}
	})

	t.Run("excludes labels at or below 0.6", func(t *testing.T) {
		ann := &domain.StructuredAnnotations{
			Labels: []domain.LabelAnnotation{
				{Description: "Banana", Score: 0.9},
				{Description: "Fruit", Score: 0.6},
				{Description: "Plant", Score: 0.35},
			},
		}

		result := n.FromStructured(ann)
		if len(result.Items) != 1 {
			t.Fatalf("len(Items) = %d, want 1", len(result.Items))
		}
		if result.Items[0].Name != "Banana" {
			t.Errorf("Name = %q, want Banana", result.Items[0].Name)
		}
	})

	t.Run("excludes objects at or below 0.5", func(t *testing.T) {
		ann := &domain.StructuredAnnotations{
			Objects: []domain.ObjectAnnotation{
				{Name: "Orange", Score: 0.62},
				{Name: "Bowl", Score: 0.5},
			},
		}

		result := n.FromStructured(ann)
		if len(result.Items) != 1 {
			t.Fatalf("len(Items) = %d, want 1", len(result.Items))
		}
		if result.Items[0].Name != "Orange" {
			t.Errorf("Name = %q, want Orange", result.Items[0].Name)
		}
		if result.Items[0].Confidence != 62 {
			t.Errorf("Confidence = %d, want 62", result.Items[0].Confidence)
		}
	})

	t.Run("deduplicates labels and objects case-insensitively", func(t *testing.T) {
		ann := &domain.StructuredAnnotations{
			Labels: []domain.LabelAnnotation{
				{Description: "Apple", Score: 0.9},
			},
			Objects: []domain.ObjectAnnotation{
				{Name: "apple", Score: 0.8},
				{Name: "Banana", Score: 0.7},
			},
		}

		result := n.FromStructured(ann)
		if len(result.Items) != 2 {
			t.Fatalf("len(Items) = %d, want 2", len(result.Items))
		}
	})

	t.Run("surfaces text block separately", func(t *testing.T) {
		ann := &domain.StructuredAnnotations{
			Texts: []domain.TextAnnotation{
				{Description: "ORGANIC WHOLE MILK\n1 GAL"},
				{Description: "ORGANIC", Confidence: 0.98},
			},
		}

		result := n.FromStructured(ann)
		if len(result.Items) != 0 {
			t.Errorf("len(Items) = %d, want 0 (text is not an item)", len(result.Items))
		}
		if result.ExtractedText != "ORGANIC WHOLE MILK\n1 GAL" {
			t.Errorf("ExtractedText = %q, want the full block", result.ExtractedText)
		}
	})

	t.Run("handles nil annotations", func(t *testing.T) {
		result := n.FromStructured(nil)
		if len(result.Items) != 0 {
			t.Errorf("len(Items) = %d, want 0", len(result.Items))
		}
	})
}

func TestFromGenerative_Products(t *testing.T) {
	n := NewNormalizer(false)

	t.Run("maps products array preserving order", func(t *testing.T) {
		raw := `{"products":[
			{"name":"Gala Apple","confidence":90,"openFoodFactsSearchTerms":["gala apple","apple"]},
			{"name":"Oat Milk","type":"beverage","quantity":2,"organicStatus":"likely"}
		]}`

		result := n.FromGenerative(raw)
		if len(result.Items) != 2 {
			t.Fatalf("len(Items) = %d, want 2", len(result.Items))
		}
		if result.ProductCount != 2 {
			t.Errorf("ProductCount = %d, want 2", result.ProductCount)
		}

		first := result.Items[0]
		if first.Name != "Gala Apple" {
			t.Errorf("Name = %q, want Gala Apple", first.Name)
		}
		if first.Confidence != 90 {
			t.Errorf("Confidence = %d, want 90", first.Confidence)
		}
		if !reflect.DeepEqual(first.SearchTerms, []string{"gala apple", "apple"}) {
			t.Errorf("SearchTerms = %v, want [gala apple apple]", first.SearchTerms)
		}

		second := result.Items[1]
		if second.Name != "Oat Milk" {
			t.Errorf("Name = %q, want Oat Milk", second.Name)
		}
		if second.Confidence != 80 {
			t.Errorf("Confidence = %d, want 80 (default)", second.Confidence)
		}
		if second.Quantity != 2 {
			t.Errorf("Quantity = %d, want 2", second.Quantity)
		}
		if second.OrganicStatus != domain.StatusLikely {
			t.Errorf("OrganicStatus = %q, want likely", second.OrganicStatus)
		}
		if second.FairTradeStatus != domain.StatusUnknown {
			t.Errorf("FairTradeStatus = %q, want unknown (default)", second.FairTradeStatus)
		}
		if !reflect.DeepEqual(second.SearchTerms, []string{"Oat Milk"}) {
			t.Errorf("SearchTerms = %v, want [Oat Milk]", second.SearchTerms)
		}
	})

	t.Run("defaults quantity to 1", func(t *testing.T) {
		result := n.FromGenerative(`{"products":[{"name":"Bread"}]}`)
		if result.Items[0].Quantity != 1 {
			t.Errorf("Quantity = %d, want 1", result.Items[0].Quantity)
		}
	})

	t.Run("carries scene analysis and aggregate nutrition", func(t *testing.T) {
		raw := `{
			"products":[{"name":"Apple"}],
			"sceneAnalysis":{"totalProducts":3,"sceneType":"pantry"},
			"aggregateNutrition":{"totalCalories":520,"totalProtein":12,"totalCarbs":80,"totalFat":15},
			"searchableTerms":["apple"],
			"recommendations":["Eat more fruit"]
		}`

		result := n.FromGenerative(raw)
		if result.SceneAnalysis == nil || result.SceneAnalysis.TotalProducts != 3 {
			t.Errorf("SceneAnalysis = %+v, want totalProducts 3", result.SceneAnalysis)
		}
		if result.AggregateNutrition == nil || result.AggregateNutrition.TotalCalories != 520 {
			t.Errorf("AggregateNutrition = %+v, want totalCalories 520", result.AggregateNutrition)
		}
		if len(result.SearchableTerms) != 1 || len(result.Recommendations) != 1 {
			t.Errorf("enrichments not carried: %+v", result)
		}
	})

	t.Run("unwraps markdown code fences", func(t *testing.T) {
		raw := "```json\n{\"products\":[{\"name\":\"Cheddar\"}]}\n```"

		result := n.FromGenerative(raw)
		if len(result.Items) != 1 || result.Items[0].Name != "Cheddar" {
			t.Errorf("Items = %+v, want one Cheddar", result.Items)
		}
	})
}

func TestFromGenerative_Legacy(t *testing.T) {
	n := NewNormalizer(false)

	t.Run("maps legacy foodItems of strings and objects", func(t *testing.T) {
		raw := `{"foodItems":["apple",{"name":"banana","confidence":70},{"name":"milk"}]}`

		result := n.FromGenerative(raw)
		if len(result.Items) != 3 {
			t.Fatalf("len(Items) = %d, want 3", len(result.Items))
		}
		if result.Items[0].Name != "apple" || result.Items[0].Confidence != 80 {
			t.Errorf("Items[0] = %+v, want apple/80", result.Items[0])
		}
		if result.Items[1].Name != "banana" || result.Items[1].Confidence != 70 {
			t.Errorf("Items[1] = %+v, want banana/70", result.Items[1])
		}
		if result.Items[2].Confidence != 80 {
			t.Errorf("Items[2].Confidence = %d, want 80 (default)", result.Items[2].Confidence)
		}
	})
}

func TestFromGenerative_ProseFallback(t *testing.T) {
	n := NewNormalizer(false)

	t.Run("degrades to heuristic extraction on unparseable output", func(t *testing.T) {
		raw := "Sure! The photo contains: pasta, tomato sauce, basil. Roughly 600 calories with 18g protein. Portion: one large plate"

		result := n.FromGenerative(raw)
		if len(result.Items) != 3 {
			t.Fatalf("len(Items) = %d, want 3", len(result.Items))
		}
		if result.Items[0].Confidence != 95 {
			t.Errorf("Confidence = %d, want 95", result.Items[0].Confidence)
		}
		if result.Items[0].NutritionalInfo == nil || result.Items[0].NutritionalInfo.Calories != 600 {
			t.Errorf("NutritionalInfo = %+v, want calories 600", result.Items[0].NutritionalInfo)
		}
		if result.Items[0].PortionSize != "one large plate" {
			t.Errorf("PortionSize = %q, want one large plate", result.Items[0].PortionSize)
		}
	})

	t.Run("fallback output length bounded at five", func(t *testing.T) {
		raw := "identified: a1 x, b2 x, c3 x, d4 x, e5 x, f6 x, g7 x"

		result := n.FromGenerative(raw)
		if len(result.Items) > 5 {
			t.Errorf("len(Items) = %d, want <= 5", len(result.Items))
		}
	})

	t.Run("never fails on garbage input", func(t *testing.T) {
		for _, raw := range []string{"", "{", "null", `{"unrelated":true}`, "\x00\x01"} {
			result := n.FromGenerative(raw)
			if result == nil {
				t.Fatalf("result = nil for input %q", raw)
			}
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		raw := `{"products":[{"name":"Gala Apple","confidence":90}]}`

		first := n.FromGenerative(raw)
		second := n.FromGenerative(raw)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("normalization not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
		}
	})
}
