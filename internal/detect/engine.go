// Package detect defines the detection engine contract and the
// simulated engine used until a real model is deployed.
package detect

import "context"

// Input carries the image payload handed to an engine. The ledger
// treats the engine as a black box: it is called once per scan
// request and its result is persisted as-is.
type Input struct {
	Bytes    []byte // raw image bytes
	Filename string // original filename hint, may be empty
	CropType string // crop the image was taken of, may be empty
}

// Treatments groups recommended actions by horizon.
type Treatments struct {
	Immediate  []string `json:"immediate,omitempty"`
	IPM        []string `json:"ipm,omitempty"`
	Prevention []string `json:"prevention,omitempty"`
}

// Result is the structured outcome of one detection request.
// Confidence is a percentage within [0,100].
type Result struct {
	Status          string      `json:"status"` // "Healthy" | "Pest Damaged"
	PestIdentified  string      `json:"pest_identified"`
	PestScientific  string      `json:"pest_scientific,omitempty"`
	Confidence      float64     `json:"confidence"`
	Severity        string      `json:"severity,omitempty"` // Mild | Moderate | Severe | Healthy
	DamagePattern   string      `json:"damage_pattern,omitempty"`
	ImmediateAction bool        `json:"immediate_action"`
	Treatments      *Treatments `json:"treatments,omitempty"`
	Message         string      `json:"message,omitempty"`
}

// Engine analyzes a plant image and returns a structured result.
// Implementations may be slow or fail independently of the rest of
// the system; callers must not retry on their behalf.
type Engine interface {
	Detect(ctx context.Context, in Input) (Result, error)
}
