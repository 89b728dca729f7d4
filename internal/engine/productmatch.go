package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"postlift/domain/attribution"
	"postlift/domain/campaign"
)

// ProductMatch is the outcome of fuzzy-matching a post caption against an
// order's purchased line items.
type ProductMatch struct {
	Matches         bool     `json:"matches"`
	MatchedProducts []string `json:"matched_products"`
	Confidence      float64  `json:"confidence"`
}

// MatchProducts tokenizes each line-item title into words of at least
// minTokenLen characters (shorter chunks are too generic to identify a
// product) and tests case-insensitive containment in the caption. A line
// item matches if any of its tokens appears.
func MatchProducts(items []campaign.LineItem, caption string, minTokenLen int) ProductMatch {
	if len(items) == 0 || caption == "" {
		return ProductMatch{}
	}
	lowerCaption := strings.ToLower(caption)

	var matched []string
	for _, item := range items {
		for _, token := range strings.Fields(strings.ToLower(item.Title)) {
			// Length is measured in runes: accented product names must not
			// slip past the generic-word cutoff on byte count.
			if utf8.RuneCountInString(token) < minTokenLen {
				continue
			}
			if strings.Contains(lowerCaption, token) {
				matched = append(matched, item.Title)
				break
			}
		}
	}

	if len(matched) == 0 {
		return ProductMatch{}
	}

	confidence := float64(len(matched)) / float64(len(items))
	if confidence > 1 {
		confidence = 1
	}
	return ProductMatch{
		Matches:         true,
		MatchedProducts: matched,
		Confidence:      confidence,
	}
}

// ProductMatchSignal converts a positive match into the corroborating
// signal. Like novelty it is temporal-gated: a caption naming a product
// someone bought a month earlier proves nothing.
func ProductMatchSignal(m ProductMatch, w attribution.Weights) attribution.Signal {
	return attribution.Signal{
		Type:        attribution.SignalProductMatch,
		Confidence:  m.Confidence,
		Weight:      w.ProductMatchWeight,
		Description: fmt.Sprintf("Caption mentions purchased product(s): %s", strings.Join(m.MatchedProducts, ", ")),
	}
}
