package services

import (
	"github.com/zatekoja/businesstrust/backend/pkg/config"
)

// FeatureFlags exposes optional behaviour toggled by configuration
type FeatureFlags struct {
	sentimentSummaryEnabled bool
}

func NewFeatureFlags(cfg config.FeatureConfig) *FeatureFlags {
	return &FeatureFlags{
		sentimentSummaryEnabled: cfg.SentimentSummary,
	}
}

// SentimentSummaryEnabled reports whether feedback carries the mean comment sentiment
func (f *FeatureFlags) SentimentSummaryEnabled() bool {
	return f != nil && f.sentimentSummaryEnabled
}
