// Package extractor implements the pure signal extractors: sentiment,
// urgency, intent and category classification, monetary and contact pattern
// extraction, and negotiation stage detection. Every function is stateless and
// never fails on malformed input; unclassifiable text maps to a safe default.
package extractor

import "github.com/zapfield/conversation-intelligence/internal/config"

// Weights carries the heuristic constants. Use DefaultWeights unless the
// caller threads configuration through.
type Weights struct {
	UrgencyKeywordWeight int
	UrgencyCritical      int
	UrgencyHigh          int
	UrgencyMedium        int
	UrgentThreshold      int
}

// DefaultWeights mirrors the config defaults.
func DefaultWeights() Weights {
	return Weights{
		UrgencyKeywordWeight: 2,
		UrgencyCritical:      8,
		UrgencyHigh:          6,
		UrgencyMedium:        4,
		UrgentThreshold:      7,
	}
}

// WeightsFrom builds extractor weights from loaded configuration.
func WeightsFrom(h config.Heuristics) Weights {
	return Weights{
		UrgencyKeywordWeight: h.UrgencyKeywordWeight,
		UrgencyCritical:      h.UrgencyCritical,
		UrgencyHigh:          h.UrgencyHigh,
		UrgencyMedium:        h.UrgencyMedium,
		UrgentThreshold:      h.UrgentThreshold,
	}
}
