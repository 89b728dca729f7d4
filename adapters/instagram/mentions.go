package instagram

import (
	"strings"

	"postlift/domain/campaign"
)

// promoMarkers are phrases that indicate a sponsored or shoppable post even
// when no catalog product is named outright.
var promoMarkers = []string{
	"#ad",
	"#sponsored",
	"#gifted",
	"link in bio",
	"use my code",
	"discount code",
	"swipe up",
}

// MentionClassifier pre-judges captions against a product catalog. It only
// commits to Yes or No when the evidence is one-sided; a promotional caption
// that names no catalog product stays Unclassified for a human to resolve.
type MentionClassifier struct {
	products []string
}

// NewMentionClassifier builds a classifier over the given product names.
// Blank names are dropped.
func NewMentionClassifier(products []string) *MentionClassifier {
	kept := make([]string, 0, len(products))
	for _, p := range products {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			kept = append(kept, p)
		}
	}
	return &MentionClassifier{products: kept}
}

// Classify returns the mention judgment for one caption.
func (mc *MentionClassifier) Classify(caption string) campaign.ProductMention {
	trimmed := strings.TrimSpace(caption)
	if trimmed == "" {
		return campaign.MentionNo
	}
	lowered := strings.ToLower(trimmed)

	for _, p := range mc.products {
		if strings.Contains(lowered, p) {
			return campaign.MentionYes
		}
	}
	for _, marker := range promoMarkers {
		if strings.Contains(lowered, marker) {
			// Promotional but product unknown; leave for review.
			return campaign.MentionUnclassified
		}
	}
	return campaign.MentionNo
}
