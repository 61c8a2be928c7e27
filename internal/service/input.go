package service

import (
	"github.com/omerorhan/fx-advisor/internal/engine"
)

// RecommendReq bundles the request and the user's preference weights. Nil weights
// fall back to engine.DefaultWeights.
type RecommendReq struct {
	engine.Request
	Weights *engine.PreferenceWeights `json:"weights,omitempty"`
}

func (r RecommendReq) weights() engine.PreferenceWeights {
	if r.Weights == nil {
		return engine.DefaultWeights()
	}
	return *r.Weights
}
