package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/foodscan/backend/internal/domain"
)

// Heuristic extraction over prose responses. This is the fallback used when
// the generative annotator returns unstructured text instead of the
// multi-product JSON document. Everything here is best-effort: no pattern
// matching is an error, absence of a match yields an empty result.

const (
	maxHeuristicItems        = 5
	heuristicStartConfidence = 95
	heuristicConfidenceStep  = 10
	heuristicMinConfidence   = 60
)

// Compiled patterns for prose scanning
var (
	// Phrases that introduce an item list, e.g. "Food items: apple, banana"
	foodListRegex = regexp.MustCompile(`(?i)(?:food items|identified|contains)\s*:?\s*([^\n.]+)`)

	// Item lists split on commas and semicolons
	itemSeparatorRegex = regexp.MustCompile(`[,;]`)

	caloriesRegex = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:cal(?:orie)?s?|kcal)\b`)
	proteinRegex  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*g(?:rams)?\s*(?:of\s+)?protein`)
	carbsRegex    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*g(?:rams)?\s*(?:of\s+)?carb(?:ohydrate)?s?`)
	fatRegex      = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*g(?:rams)?\s*(?:of\s+)?fat`)
	fiberRegex    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*g(?:rams)?\s*(?:of\s+)?fib(?:er|re)`)

	portionRegex = regexp.MustCompile(`(?i)(?:portion|serving|amount)\s*:?\s*([^\n,.;]+)`)
)

// ExtractFoodItems scans prose for item lists and returns at most 5 items
// with descending synthetic confidence (95, 85, ... floored at 60).
func ExtractFoodItems(text string) []domain.FoodItem {
	var names []string
	seen := make(map[string]bool)

	for _, match := range foodListRegex.FindAllStringSubmatch(text, -1) {
		for _, part := range itemSeparatorRegex.Split(match[1], -1) {
			name := cleanHeuristicName(part)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			if seen[key] {
				continue
			}
			seen[key] = true
			names = append(names, name)
		}
	}

	if len(names) > maxHeuristicItems {
		names = names[:maxHeuristicItems]
	}

	items := make([]domain.FoodItem, 0, len(names))
	for i, name := range names {
		confidence := heuristicStartConfidence - i*heuristicConfidenceStep
		if confidence < heuristicMinConfidence {
			confidence = heuristicMinConfidence
		}
		items = append(items, domain.FoodItem{
			Name:       name,
			Confidence: confidence,
			Category:   domain.CategoryDetectedFood,
		})
	}

	return items
}

// ExtractNutritionalInfo scans prose for calorie and macro mentions.
// Returns nil when nothing matched.
func ExtractNutritionalInfo(text string) *domain.NutritionalInfo {
	info := &domain.NutritionalInfo{}
	found := false

	if v, ok := firstNumber(caloriesRegex, text); ok {
		info.Calories = v
		found = true
	}
	if v, ok := firstNumber(proteinRegex, text); ok {
		info.Protein = v
		found = true
	}
	if v, ok := firstNumber(carbsRegex, text); ok {
		info.Carbs = v
		found = true
	}
	if v, ok := firstNumber(fatRegex, text); ok {
		info.Fat = v
		found = true
	}
	if v, ok := firstNumber(fiberRegex, text); ok {
		info.Fiber = v
		found = true
	}

	if !found {
		return nil
	}
	return info
}

// ExtractPortionSize scans prose for portion/serving phrases.
// Returns "" when nothing matched.
func ExtractPortionSize(text string) string {
	match := portionRegex.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// cleanHeuristicName trims list artifacts from a candidate item name
func cleanHeuristicName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'*-•`)
	s = strings.TrimSpace(s)
	// Drop leading conjunction left over from "x, y, and z"
	s = strings.TrimPrefix(s, "and ")
	s = strings.TrimSpace(s)
	if len(s) < 2 || len(s) > 60 {
		return ""
	}
	return s
}

// firstNumber returns the first captured numeric group of the pattern
func firstNumber(pattern *regexp.Regexp, text string) (float64, bool) {
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
