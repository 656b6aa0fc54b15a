package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/foodscan/backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Certification signals looked for in product label text and tags.
// Matching is case-insensitive.
var (
	organicKeywords = []string{"organic", "bio"}
	organicTags     = []string{"en:organic", "en:eu-organic", "en:usda-organic"}

	fairTradeKeywords = []string{"fair trade", "fairtrade", "fair-trade"}
	fairTradeTags     = []string{"en:fair-trade", "en:fairtrade", "en:fairtrade-international", "en:max-havelaar"}
)

// maxConcurrentLookups bounds the per-item lookup pool. Batches are typically
// under 10 items.
const maxConcurrentLookups = 8

// MatcherConfig holds configuration for the product matcher
type MatcherConfig struct {
	MaxProducts        int
	CacheTTL           time.Duration
	EnableDebugLogging bool
}

// Matcher maps normalized FoodItems to external product records. Each item's
// search terms are tried in order; the first term yielding at least one record
// wins. Per-item failures are recorded on the SearchResult so a batch always
// completes.
type Matcher struct {
	products    domain.ProductClient
	cache       domain.CacheRepository
	maxProducts int
	cacheTTL    time.Duration
	debug       bool
}

// NewMatcher creates a product matcher
func NewMatcher(products domain.ProductClient, cache domain.CacheRepository, config MatcherConfig) *Matcher {
	maxProducts := config.MaxProducts
	if maxProducts <= 0 {
		maxProducts = 3
	}

	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}

	return &Matcher{
		products:    products,
		cache:       cache,
		maxProducts: maxProducts,
		cacheTTL:    cacheTTL,
		debug:       config.EnableDebugLogging,
	}
}

// MatchAll matches every item concurrently, preserving input order in the
// output. Item lookups are independent; one item failing never aborts the
// batch, so the group never returns an error.
func (m *Matcher) MatchAll(ctx context.Context, items []domain.FoodItem) []domain.SearchResult {
	results := make([]domain.SearchResult, len(items))

	limit := len(items)
	if limit > maxConcurrentLookups {
		limit = maxConcurrentLookups
	}
	if limit == 0 {
		return results
	}

	g := &errgroup.Group{}
	g.SetLimit(limit)

	for i := range items {
		i := i
		g.Go(func() error {
			results[i] = m.MatchItem(ctx, &items[i])
			return nil
		})
	}
	g.Wait()

	return results
}

// MatchItem matches one item, falling through its search terms in order
func (m *Matcher) MatchItem(ctx context.Context, item *domain.FoodItem) domain.SearchResult {
	result := domain.SearchResult{
		FoodItem:          item.Name,
		SearchTerm:        item.Name,
		Confidence:        item.Confidence,
		OrganicStatus:     item.OrganicStatus,
		FairTradeStatus:   item.FairTradeStatus,
		CertificationInfo: item.CertificationInfo,
		Products:          []domain.ProductMatch{},
	}

	for _, term := range item.EffectiveSearchTerms() {
		products, err := m.searchCached(ctx, term)
		if err != nil {
			log.Printf("[MATCH] Lookup failed for %q (term %q): %v", item.Name, term, err)
			result.SearchTerm = term
			result.Error = err.Error()
			return result
		}

		if len(products) == 0 {
			continue
		}

		// First term with results wins; no merging across terms
		if m.debug {
			log.Printf("[MATCH] %q matched %d products on term %q", item.Name, len(products), term)
		}

		if len(products) > m.maxProducts {
			products = products[:m.maxProducts]
		}

		result.SearchTerm = term
		result.Products = make([]domain.ProductMatch, 0, len(products))
		for _, product := range products {
			result.Products = append(result.Products, m.buildMatch(item, &product))
		}
		return result
	}

	if m.debug {
		log.Printf("[MATCH] No products found for %q", item.Name)
	}
	return result
}

// buildMatch converts a product record and derives its certification status
func (m *Matcher) buildMatch(item *domain.FoodItem, product *domain.OFFProduct) domain.ProductMatch {
	id := product.Code
	if id == "" {
		id = product.ID
	}

	return domain.ProductMatch{
		ID:              id,
		Name:            product.ProductName,
		Brand:           product.Brands,
		URL:             product.URL,
		Image:           product.ImageURL,
		NutritionGrade:  product.NutritionGrade,
		Categories:      product.Categories,
		Labels:          product.Labels,
		OrganicStatus:   deriveStatus(item.OrganicStatus, product, organicKeywords, organicTags, domain.StatusCertifiedOrganic),
		FairTradeStatus: deriveStatus(item.FairTradeStatus, product, fairTradeKeywords, fairTradeTags, domain.StatusCertifiedFairTrade),
	}
}

// deriveStatus computes a certification status for one product record. The
// vision assessment wins whenever it is known; the database-label inference
// only fills in for "unknown", since the vision model may have seen
// certification marks absent from the database record.
func deriveStatus(visionStatus string, product *domain.OFFProduct, keywords, tags []string, certifiedValue string) string {
	if visionStatus != "" && visionStatus != domain.StatusUnknown {
		return visionStatus
	}

	labelText := strings.ToLower(product.Labels)
	for _, keyword := range keywords {
		if strings.Contains(labelText, keyword) {
			return certifiedValue
		}
	}

	for _, tag := range product.LabelsTags {
		tagLower := strings.ToLower(tag)
		for _, wanted := range tags {
			if tagLower == wanted {
				return certifiedValue
			}
		}
	}

	return domain.StatusUnknown
}

// searchCached memoizes product searches per term
func (m *Matcher) searchCached(ctx context.Context, term string) ([]domain.OFFProduct, error) {
	key := cacheKeyForTerm(term)

	if m.cache != nil {
		if value, err := m.cache.Get(ctx, key); err == nil {
			if products, ok := value.([]domain.OFFProduct); ok {
				return products, nil
			}
		}
	}

	products, err := m.products.SearchProducts(ctx, term)
	if err != nil {
		return nil, err
	}

	if m.cache != nil {
		if err := m.cache.Set(ctx, key, products, m.cacheTTL); err != nil {
			// Caching is best-effort; a failed set never fails the lookup
			log.Printf("[MATCH] Cache set failed for %q: %v", term, err)
		}
	}

	return products, nil
}

// cacheKeyForTerm normalizes a search term into a cache key
func cacheKeyForTerm(term string) string {
	return fmt.Sprintf("off:search:%s", strings.ToLower(strings.TrimSpace(term)))
}
