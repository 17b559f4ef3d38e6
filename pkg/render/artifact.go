package render

import (
	"encoding/json"
	"time"

	"github.com/uxlens/journeyflow/pkg/flow"
)

// Artifact is the JSON document consumed by the trajectory chart frontend.
// It wraps a computed layout with enough metadata to attribute and cache it.
type Artifact struct {
	Project     string      `json:"project,omitempty"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Journeys    int         `json:"journeys"`
	Flow        flow.Result `json:"flow"`
}

// NewArtifact assembles an artifact for a computed layout.
func NewArtifact(project string, journeyCount int, result flow.Result) Artifact {
	return Artifact{
		Project:     project,
		GeneratedAt: time.Now().UTC(),
		Journeys:    journeyCount,
		Flow:        result,
	}
}

// Marshal produces the indented form written to disk and served by the API.
func (a Artifact) Marshal() ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

// UnmarshalArtifact parses an artifact document.
func UnmarshalArtifact(data []byte) (Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return Artifact{}, err
	}
	return a, nil
}
