package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/isbaseurl/internal/features"
	"github.com/MikeSquared-Agency/isbaseurl/internal/scoring"
)

type FeaturesHandler struct {
	scorer *scoring.Scorer
}

func NewFeaturesHandler(sc *scoring.Scorer) *FeaturesHandler {
	return &FeaturesHandler{scorer: sc}
}

type FeatureInfo struct {
	features.Info
	Weight float64 `json:"weight"`
}

// List returns the feature catalogue with the weights the service scores with.
// GET /api/v1/features
func (h *FeaturesHandler) List(w http.ResponseWriter, _ *http.Request) {
	weights := h.scorer.Weights()
	catalogue := features.Catalogue()
	out := make([]FeatureInfo, len(catalogue))
	for i, info := range catalogue {
		out[i] = FeatureInfo{Info: info, Weight: weights.For(info.Name)}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"features":      out,
		"positiveCount": features.Count(features.Positive),
		"negativeCount": features.Count(features.Negative),
	})
}
