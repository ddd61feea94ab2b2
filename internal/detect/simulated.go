package detect

import (
	"context"
	"math/rand"
	"sync"
)

// outcome is one of the fixed results the simulated engine can
// produce, with its selection weight.
type outcome struct {
	name       string
	scientific string
	damage     string
	severity   string
	weight     float64
}

// The four hardcoded outcomes, weighted towards pest detection so
// demo sessions exercise the feedback flow.
var outcomes = []outcome{
	{"Japanese Beetle", "Popillia japonica", "Skeletonized leaves with lace-like appearance", "Moderate", 0.30},
	{"Aphids", "Aphidoidea", "Curled leaves, sticky honeydew on plant surface", "Mild", 0.25},
	{"Spider Mites", "Tetranychidae", "Fine webbing and yellow stippling on leaves", "Severe", 0.20},
	{"No Pest Detected", "N/A", "Plant appears healthy", "Healthy", 0.25},
}

// Simulated is a stand-in detection engine: a weighted random choice
// among four hardcoded outcomes. It satisfies the Engine contract so
// a real model can replace it without touching the ledger.
type Simulated struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulated returns a simulated engine seeded from seed. Tests
// pass fixed seeds to obtain reproducible outcomes.
func NewSimulated(seed int64) *Simulated {
	return &Simulated{rng: rand.New(rand.NewSource(seed))}
}

// Detect ignores the image content and draws one of the fixed
// outcomes. It never returns an error.
func (s *Simulated) Detect(_ context.Context, _ Input) (Result, error) {
	s.mu.Lock()
	o := outcomes[s.pick()]
	var conf float64
	if o.severity == "Healthy" {
		conf = float64(92 + s.rng.Intn(8)) // 92..99
	} else {
		conf = float64(85 + s.rng.Intn(14)) // 85..98
	}
	s.mu.Unlock()

	if o.severity == "Healthy" {
		return Result{
			Status:         "Healthy",
			PestIdentified: "None",
			Confidence:     conf,
			Severity:       "Healthy",
			Message:        "Your plant appears to be healthy!",
		}, nil
	}

	return Result{
		Status:          "Pest Damaged",
		PestIdentified:  o.name,
		PestScientific:  o.scientific,
		Confidence:      conf,
		Severity:        o.severity,
		DamagePattern:   o.damage,
		ImmediateAction: o.severity == "Moderate" || o.severity == "Severe",
		Treatments: &Treatments{
			Immediate: []string{
				"Hand-pick pests if visible",
				"Isolate affected plants",
				"Remove damaged leaves",
			},
			IPM: []string{
				"Apply appropriate organic pesticide",
				"Introduce beneficial insects",
				"Use physical barriers",
			},
			Prevention: []string{
				"Regular monitoring",
				"Maintain plant health",
				"Crop rotation",
			},
		},
	}, nil
}

// pick returns the index of a weighted random outcome. Caller holds
// the mutex.
func (s *Simulated) pick() int {
	total := 0.0
	for _, o := range outcomes {
		total += o.weight
	}
	r := s.rng.Float64() * total
	for i, o := range outcomes {
		if r < o.weight {
			return i
		}
		r -= o.weight
	}
	return len(outcomes) - 1
}
