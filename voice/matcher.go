// Package voice turns a transcribed utterance plus an inventory catalog
// snapshot into ranked product matches for the voice-sale review queue.
package voice

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"
)

// CatalogProduct is the slice of the product table a matcher needs.
type CatalogProduct struct {
	ID   int
	Name string
	Unit string
}

// Match is one proposed sale line.
type Match struct {
	ProductId       int
	MatchedItemName string
	SpokenName      string
	Quantity        decimal.Decimal
	Unit            string
	Confidence      decimal.Decimal
}

// MatchResult is the full outcome of parsing one utterance.
type MatchResult struct {
	Items             []Match
	OverallConfidence decimal.Decimal
	NeedsHumanReview  bool
}

// Matcher parses an utterance against a catalog snapshot. Implementations
// may call out to an AI service; the heuristic matcher below is the
// always-available fallback.
type Matcher interface {
	Match(ctx context.Context, voiceText string, catalog []CatalogProduct) (*MatchResult, error)
}

// reviewThreshold: anything below this overall confidence is queued for a
// human before the sale can post.
var reviewThreshold = decimal.NewFromFloat(0.85)

// translations maps common Hindi/Hinglish grocery terms to the English
// words product names are stored in.
var translations = map[string]string{
	"मैगी":    "maggi",
	"नूडल्स":  "noodles",
	"चीनी":    "sugar",
	"आटा":     "flour",
	"चावल":    "rice",
	"दाल":     "dal",
	"नमक":     "salt",
	"तेल":     "oil",
	"दूध":     "milk",
	"cheeni":  "sugar",
	"chawal":  "rice",
	"atta":    "flour",
	"aata":    "flour",
	"tel":     "oil",
	"namak":   "salt",
	"daal":    "dal",
	"maggie":  "maggi",
	"doodh":   "milk",
	"pav":     "bread",
	"chai":    "tea",
}

// hindiNumbers maps spoken number words to values.
var hindiNumbers = map[string]int64{
	"ek":   1,
	"एक":   1,
	"do":   2,
	"दो":   2,
	"teen": 3,
	"तीन":  3,
	"char": 4,
	"चार":  4,
	"panch": 5,
	"पांच":  5,
}

// unitWords normalizes spoken units.
var unitWords = map[string]string{
	"kilo":   "kg",
	"kg":     "kg",
	"किलो":   "kg",
	"litre":  "ltr",
	"liter":  "ltr",
	"ltr":    "ltr",
	"लीटर":   "ltr",
	"packet": "packet",
	"पैकेट":  "packet",
	"piece":  "pc",
	"पीस":    "pc",
}

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// HeuristicMatcher is a dictionary-and-edit-distance matcher. It has no
// external dependencies, so it also serves as the fallback when an AI
// matcher is unreachable.
type HeuristicMatcher struct {
	// MaxDistance is the largest Levenshtein distance still treated as a
	// match. Zero means exact/substring matches only.
	MaxDistance int
}

func NewHeuristicMatcher() *HeuristicMatcher {
	return &HeuristicMatcher{MaxDistance: 2}
}

func (m *HeuristicMatcher) Match(ctx context.Context, voiceText string, catalog []CatalogProduct) (*MatchResult, error) {
	tokens := tokenPattern.FindAllString(strings.ToLower(voiceText), -1)
	result := &MatchResult{Items: []Match{}}

	for _, product := range catalog {
		match, ok := m.matchProduct(tokens, product)
		if !ok {
			continue
		}
		result.Items = append(result.Items, match)
	}

	if len(result.Items) > 0 {
		sum := decimal.Zero
		for _, item := range result.Items {
			sum = sum.Add(item.Confidence)
		}
		result.OverallConfidence = sum.Div(decimal.NewFromInt(int64(len(result.Items))))
	}
	result.NeedsHumanReview = len(result.Items) == 0 ||
		result.OverallConfidence.LessThan(reviewThreshold)
	return result, nil
}

// matchProduct scans the token stream for a mention of the product, by
// exact name, translated Hindi term, or small edit distance.
func (m *HeuristicMatcher) matchProduct(tokens []string, product CatalogProduct) (Match, bool) {
	nameLower := strings.ToLower(product.Name)
	nameTokens := tokenPattern.FindAllString(nameLower, -1)
	if len(nameTokens) == 0 {
		return Match{}, false
	}
	head := nameTokens[0]

	for i, token := range tokens {
		spoken := token
		confidence := decimal.Zero

		switch {
		case token == head || strings.Contains(nameLower, token) && len(token) >= 3:
			confidence = decimal.NewFromFloat(0.9)
		case translations[token] != "" && strings.Contains(nameLower, translations[token]):
			confidence = decimal.NewFromFloat(0.85)
		case m.MaxDistance > 0 && len(token) >= 4 && levenshtein.ComputeDistance(token, head) <= m.MaxDistance:
			confidence = decimal.NewFromFloat(0.75)
		default:
			continue
		}

		qty, unit := quantityBefore(tokens, i)
		if unit == "" {
			unit = product.Unit
		}
		return Match{
			ProductId:       product.ID,
			MatchedItemName: product.Name,
			SpokenName:      spoken,
			Quantity:        qty,
			Unit:            unit,
			Confidence:      confidence,
		}, true
	}
	return Match{}, false
}

// quantityBefore looks backwards from the product mention for the nearest
// number and unit word. A mention with no quantity defaults to one.
func quantityBefore(tokens []string, productIdx int) (decimal.Decimal, string) {
	qty := decimal.NewFromInt(1)
	unit := ""
	for i := productIdx - 1; i >= 0 && i >= productIdx-3; i-- {
		token := tokens[i]
		if u, ok := unitWords[token]; ok && unit == "" {
			unit = u
			continue
		}
		if n, err := strconv.ParseInt(token, 10, 64); err == nil {
			return decimal.NewFromInt(n), unit
		}
		if n, ok := hindiNumbers[token]; ok {
			return decimal.NewFromInt(n), unit
		}
	}
	return qty, unit
}
