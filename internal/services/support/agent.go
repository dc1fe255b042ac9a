// Package support runs the FAQ support pipeline: retrieval, context building,
// generation and reply parsing, with a fixed fallback when any stage fails.
package support

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/supportdesk/internal/common"
	"github.com/ternarybob/supportdesk/internal/interfaces"
	"github.com/ternarybob/supportdesk/internal/models"
	"github.com/ternarybob/supportdesk/internal/services/audit"
	"github.com/ternarybob/supportdesk/internal/services/history"
	"github.com/ternarybob/supportdesk/internal/services/llm"
	"github.com/ternarybob/supportdesk/internal/services/tracing"
)

// Trace step names
const (
	StepContextBuilding  = "context_building"
	StepLLMGeneration    = "llm_generation"
	StepResponseParsing  = "response_parsing"
	auditTimeout         = 5 * time.Second
	fallbackReplyMessage = "Sorry, something went wrong on our side. Please try again in a moment or contact our support team."
)

// FallbackSuggestions are offered whenever the pipeline fails
var FallbackSuggestions = []string{
	"How do I reset my password?",
	"How do I change my email address?",
	"Contact support",
}

// Searcher is the retrieval step of the pipeline
type Searcher interface {
	Search(ctx context.Context, query string, trace *tracing.Trace) []models.ScoredCandidate
}

// Agent is the support response orchestrator
type Agent struct {
	searcher     Searcher
	generator    interfaces.GenerationService
	history      *history.Builder
	sink         interfaces.AuditSink
	pricing      *tracing.PriceTable
	config       common.AgentConfig
	systemPrompt string
	logger       arbor.ILogger
}

// NewAgent creates the orchestrator. A nil sink discards audit records.
func NewAgent(
	searcher Searcher,
	generator interfaces.GenerationService,
	historyBuilder *history.Builder,
	sink interfaces.AuditSink,
	pricing *tracing.PriceTable,
	config common.AgentConfig,
	logger arbor.ILogger,
) *Agent {
	if sink == nil {
		sink = audit.NewNullSink()
	}
	if historyBuilder == nil {
		historyBuilder = history.NewBuilder(history.DefaultMaxRecent, history.DefaultMaxOlder)
	}
	return &Agent{
		searcher:     searcher,
		generator:    generator,
		history:      historyBuilder,
		sink:         sink,
		pricing:      pricing,
		config:       config,
		systemPrompt: SystemPrompt(config.ProductName),
		logger:       logger,
	}
}

// FallbackResponse is returned when the pipeline could not produce an answer
func FallbackResponse() *models.ChatResponse {
	suggestions := make([]string, len(FallbackSuggestions))
	copy(suggestions, FallbackSuggestions)
	return &models.ChatResponse{
		Response:    fallbackReplyMessage,
		Suggestions: suggestions,
		Escalate:    true,
	}
}

// Respond answers req. It always returns a well formed response and writes
// exactly one audit record, also when a stage fails or panics.
func (a *Agent) Respond(ctx context.Context, req *models.ChatRequest) (resp *models.ChatResponse) {
	trace := tracing.New(a.config.Name, a.pricing)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic in support pipeline: %v", r)
			resp = a.fail(ctx, trace, req, err)
		}
	}()

	reply, err := a.run(ctx, trace, req)
	if err != nil {
		return a.fail(ctx, trace, req, err)
	}

	resp = &models.ChatResponse{
		Response:    reply.Response,
		Suggestions: reply.Suggestions,
		Escalate:    reply.Escalate,
	}
	if req.Debug {
		resp.DebugInfo = trace.ToMap()
	}

	a.record(ctx, trace, req.Message, resp.Response, false)

	a.logger.Info().
		Str("request_id", trace.RequestID).
		Str("confidence", fmt.Sprintf("%.2f", trace.Grounding.Confidence())).
		Str("risk", string(trace.Grounding.Risk())).
		Bool("escalate", resp.Escalate).
		Int64("elapsed_ms", trace.ElapsedMs()).
		Msg("Support request completed")

	return resp
}

// SearchFAQs runs retrieval without generation
func (a *Agent) SearchFAQs(ctx context.Context, query string) []models.ScoredCandidate {
	return a.searcher.Search(ctx, query, nil)
}

func (a *Agent) run(ctx context.Context, trace *tracing.Trace, req *models.ChatRequest) (*Reply, error) {
	trace.Grounding.CheckQuestion(req.Message)

	// Retrieval
	candidates := a.searcher.Search(ctx, req.Message, trace)
	if len(candidates) == 0 {
		trace.Grounding.RecordMissing("no matching FAQ found")
	}
	for _, c := range candidates {
		trace.Grounding.RecordDataPoint(matchLabel(c.Question), percent(c.Similarity))
	}

	// Context building
	step := trace.StartStep(StepContextBuilding)
	window := a.history.Build(req.ChatHistory)
	trace.SetHistoryUsed(window.Summary)

	messages := make([]interfaces.Message, 0, len(window.Messages)+2)
	messages = append(messages, interfaces.Message{Role: models.RoleSystem, Content: a.systemPrompt})
	for _, m := range window.Messages {
		messages = append(messages, interfaces.Message{Role: m.Role, Content: m.Content})
	}
	userTurn := UserTurn(FormatFAQContext(candidates), req.Message)
	messages = append(messages, interfaces.Message{Role: models.RoleUser, Content: userTurn})

	step.Stop(tracing.Fields{
		"history_messages": tracing.Int(len(req.ChatHistory)),
		"context_messages": tracing.Int(len(window.Messages)),
		"faq_count":        tracing.Int(len(candidates)),
	})

	// Generation
	step = trace.StartStep(StepLLMGeneration)
	result, err := a.generator.Generate(ctx, &interfaces.GenerationRequest{
		Messages:    messages,
		Model:       a.config.Model,
		MaxTokens:   a.config.MaxTokens,
		Temperature: a.config.Temperature,
		JSONMode:    true,
	})
	if err != nil {
		step.Stop(tracing.Fields{"error": tracing.String(err.Error())})
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	model := result.Model
	if model == "" {
		model = a.config.Model
	}
	trace.RecordLLMCall(model, a.systemPrompt, userTurn, result.Text, result.InputTokens, result.OutputTokens, result.LatencyMs)
	step.Stop(tracing.Fields{
		"provider":      tracing.String(a.generator.Provider()),
		"model":         tracing.String(model),
		"input_tokens":  tracing.Int(result.InputTokens),
		"output_tokens": tracing.Int(result.OutputTokens),
	})

	// Parsing
	step = trace.StartStep(StepResponseParsing)
	reply := ParseReply(result.Text, a.logger)
	step.Stop(tracing.Fields{
		"suggestions": tracing.Int(len(reply.Suggestions)),
		"escalate":    tracing.Bool(reply.Escalate),
	})

	return &reply, nil
}

func (a *Agent) fail(ctx context.Context, trace *tracing.Trace, req *models.ChatRequest, err error) *models.ChatResponse {
	trace.Set("error", tracing.String(err.Error()))
	trace.Set("error_kind", tracing.String(llm.ErrorKind(err)))

	a.logger.Error().
		Err(err).
		Str("request_id", trace.RequestID).
		Str("error_kind", llm.ErrorKind(err)).
		Msg("Support pipeline failed, returning fallback response")

	resp := FallbackResponse()
	if req.Debug {
		resp.DebugInfo = trace.ToMap()
	}

	a.record(ctx, trace, req.Message, resp.Response, true)
	return resp
}

// record hands the trace to the audit sink. Failures are logged only.
func (a *Agent) record(ctx context.Context, trace *tracing.Trace, message, response string, failed bool) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error().
				Str("request_id", trace.RequestID).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Audit sink panicked")
		}
	}()

	if err := a.sink.Record(ctx, audit.NewRecord(trace, message, response, failed)); err != nil {
		a.logger.Warn().
			Err(err).
			Str("request_id", trace.RequestID).
			Msg("Failed to write request log")
	}
}
