// Package tracing records per-request debug telemetry for the support pipeline.
package tracing

import (
	"time"
	"unicode/utf8"

	"github.com/ternarybob/supportdesk/internal/common"
	"github.com/ternarybob/supportdesk/internal/models"
	"github.com/ternarybob/supportdesk/internal/services/grounding"
)

const (
	maxSystemPromptChars = 500
	maxUserPromptChars   = 1000
	truncationMarker     = "..."
)

// Step is one timed stage of the pipeline
type Step struct {
	Name  string
	start time.Time
	end   time.Time
	data  Fields
}

// Stop marks the step finished and merges data into its payload.
// Calling Stop again moves the end time and merges further keys.
func (s *Step) Stop(data Fields) {
	s.end = time.Now()
	for k, v := range data {
		s.data[k] = v
	}
}

// Duration is zero until the step is stopped
func (s *Step) Duration() time.Duration {
	if s.end.IsZero() {
		return 0
	}
	return s.end.Sub(s.start)
}

// Data returns the step payload
func (s *Step) Data() Fields {
	return s.data
}

func (s *Step) toMap() map[string]interface{} {
	out := map[string]interface{}{
		"name":        s.Name,
		"duration_ms": s.Duration().Milliseconds(),
	}
	for k, v := range s.data {
		out[k] = v.Interface()
	}
	return out
}

// LLMCall describes the single generation call of a request
type LLMCall struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Response     string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	LatencyMs    int64
}

func (c *LLMCall) toMap() map[string]interface{} {
	return map[string]interface{}{
		"model":            c.Model,
		"system_prompt":    truncate(c.SystemPrompt, maxSystemPromptChars),
		"user_prompt":      truncate(c.UserPrompt, maxUserPromptChars),
		"input_tokens":     c.InputTokens,
		"output_tokens":    c.OutputTokens,
		"cost_usd":         c.CostUSD,
		"response_time_ms": c.LatencyMs,
	}
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + truncationMarker
}

// Trace is the debug record of one request. It is created at request start,
// mutated by the pipeline and serialized once at the end.
type Trace struct {
	RequestID string
	Agent     string
	Timestamp string
	Grounding *grounding.Tracker

	start       time.Time
	steps       []*Step
	llmCall     *LLMCall
	historyUsed []models.ConversationMessage
	extra       Fields
	pricing     *PriceTable
}

// New allocates a trace with a fresh request id
func New(agent string, pricing *PriceTable) *Trace {
	now := time.Now()
	if pricing == nil {
		pricing = NewPriceTable(nil, "gpt-4o")
	}
	return &Trace{
		RequestID: common.NewRequestID(),
		Agent:     agent,
		Timestamp: now.UTC().Format("2006-01-02T15:04:05.000000") + "Z",
		Grounding: grounding.NewTracker(),
		start:     now,
		extra:     Fields{},
		pricing:   pricing,
	}
}

// StartStep begins a new named step
func (t *Trace) StartStep(name string) *Step {
	step := &Step{Name: name, start: time.Now(), data: Fields{}}
	t.steps = append(t.steps, step)
	return step
}

// Steps returns the recorded steps in start order
func (t *Trace) Steps() []*Step {
	return t.steps
}

// Step returns the first step with the given name, or nil
func (t *Trace) Step(name string) *Step {
	for _, s := range t.steps {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// RecordLLMCall stores the generation call and derives its cost
func (t *Trace) RecordLLMCall(model, systemPrompt, userPrompt, response string, inputTokens, outputTokens int, latencyMs int64) {
	t.llmCall = &LLMCall{
		Model:        model,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Response:     response,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CostUSD:      t.pricing.Cost(model, inputTokens, outputTokens),
		LatencyMs:    latencyMs,
	}
}

// LLMCall returns the recorded generation call, or nil
func (t *Trace) LLMCall() *LLMCall {
	return t.llmCall
}

// SetHistoryUsed stores the audit summary of the conversation history
func (t *Trace) SetHistoryUsed(summary []models.ConversationMessage) {
	t.historyUsed = summary
}

// Set adds an extra annotation
func (t *Trace) Set(key string, value Value) {
	t.extra[key] = value
}

// Get returns an extra annotation
func (t *Trace) Get(key string) (Value, bool) {
	v, ok := t.extra[key]
	return v, ok
}

// ElapsedMs is the time since the trace was created
func (t *Trace) ElapsedMs() int64 {
	return time.Since(t.start).Milliseconds()
}

// ToMap serializes the trace. Steps are keyed by name and extra annotations
// are merged at the top level.
func (t *Trace) ToMap() map[string]interface{} {
	out := map[string]interface{}{
		"request_id":         t.RequestID,
		"timestamp":          t.Timestamp,
		"agent":              t.Agent,
		"processing_time_ms": t.ElapsedMs(),
	}

	for _, step := range t.steps {
		out[step.Name] = step.toMap()
	}

	if t.llmCall != nil {
		out["llm_call"] = t.llmCall.toMap()
	}

	if len(t.historyUsed) > 0 {
		out["chat_history_used"] = t.historyUsed
	}

	out["grounding"] = t.Grounding.Snapshot()

	for k, v := range t.extra {
		out[k] = v.Interface()
	}

	return out
}
