package domain

import "time"

// FeatureVector is a pure function of (store state, AsOf). It is keyed by
// (RaceID, RunnerID, AsOf) and is recomputable at any time; nothing in it may
// derive from data effective at or after AsOf.
type FeatureVector struct {
	RaceID   string
	RunnerID string
	AsOf     time.Time

	// Names and Values are parallel and ordered; the ordered name list is the
	// feature schema contract between trainer and scorer.
	Names  []string
	Values []float64
}

func (v FeatureVector) Get(name string) (float64, bool) {
	for i, n := range v.Names {
		if n == name {
			return v.Values[i], true
		}
	}
	return 0, false
}

func (v FeatureVector) ToMap() map[string]float64 {
	out := make(map[string]float64, len(v.Names))
	for i, n := range v.Names {
		out[n] = v.Values[i]
	}
	return out
}
