package entity

import (
	"encoding/json"
	"time"
)

type GreetingRequest struct {
	Prompt string `json:"prompt"`
}

// GreetingResult is the structured payload the agent is asked to produce.
type GreetingResult struct {
	Title       string `json:"title"`
	Message     string `json:"message"`
	Design      string `json:"design"`
	Interactive string `json:"interactive"`
	Cultural    string `json:"cultural"`
}

// GreetingFromMap copies the five greeting keys out of a decoded JSON object.
// Non-string values keep their compact JSON text; missing keys stay empty.
func GreetingFromMap(m map[string]any) GreetingResult {
	return GreetingResult{
		Title:       stringField(m, "title"),
		Message:     stringField(m, "message"),
		Design:      stringField(m, "design"),
		Interactive: stringField(m, "interactive"),
		Cultural:    stringField(m, "cultural"),
	}
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

type AgentResponse struct {
	Content    string        `json:"content"`
	Model      string        `json:"model"`
	TokenCount int           `json:"token_count"`
	Latency    time.Duration `json:"latency_ms"`
}
