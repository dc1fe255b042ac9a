package models

import (
	"encoding/json"
	"time"
)

// RequestLog is the audit record written once per completed support request
type RequestLog struct {
	RequestID         string          `json:"request_id"`
	Agent             string          `json:"agent"`
	UserMessage       string          `json:"user_message"`
	Response          string          `json:"response"`
	ProcessingTimeMs  int64           `json:"processing_time_ms"`
	Model             string          `json:"model,omitempty"`
	InputTokens       int             `json:"input_tokens"`
	OutputTokens      int             `json:"output_tokens"`
	CostUSD           float64         `json:"cost_usd"`
	Confidence        float64         `json:"confidence"`
	HallucinationRisk string          `json:"hallucination_risk"`
	DataPointsCount   int             `json:"data_points_count"`
	Failed            bool            `json:"failed"`
	DebugInfo         json.RawMessage `json:"debug_info,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}
