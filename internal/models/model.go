package models

import "time"

// Model represents a generative model exposed by the LLM provider
type Model struct {
	Name             string   `json:"name"`
	DisplayName      string   `json:"display_name,omitempty"`
	Description      string   `json:"description,omitempty"`
	Version          string   `json:"version,omitempty"`
	InputTokenLimit  int32    `json:"input_token_limit,omitempty"`
	OutputTokenLimit int32    `json:"output_token_limit,omitempty"`
	SupportedActions []string `json:"supported_actions,omitempty"`
}

// ModelsResponse is the body of GET /api/models
type ModelsResponse struct {
	Models    []Model   `json:"models"`
	Count     int       `json:"count"`
	FetchedAt time.Time `json:"fetched_at"`
}

// SupportsGeneration reports whether the model can serve generateContent calls
func (m Model) SupportsGeneration() bool {
	if len(m.SupportedActions) == 0 {
		return true
	}
	for _, action := range m.SupportedActions {
		if action == "generateContent" {
			return true
		}
	}
	return false
}
