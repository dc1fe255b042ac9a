// Package audit persists one RequestLog per completed support request.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/supportdesk/internal/interfaces"
	"github.com/ternarybob/supportdesk/internal/models"
	"github.com/ternarybob/supportdesk/internal/services/tracing"
)

const (
	MaxUserMessageChars = 5000
	MaxResponseChars    = 10000
)

// RequestLogger implements AuditSink on top of request log storage
type RequestLogger struct {
	storage interfaces.RequestLogStorage
	logger  arbor.ILogger
}

// NewRequestLogger creates a storage backed audit sink
func NewRequestLogger(storage interfaces.RequestLogStorage, logger arbor.ILogger) *RequestLogger {
	return &RequestLogger{
		storage: storage,
		logger:  logger,
	}
}

// Record stores the audit record
func (l *RequestLogger) Record(ctx context.Context, log *models.RequestLog) error {
	if log == nil || log.RequestID == "" {
		return fmt.Errorf("request log requires a request id")
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}

	if err := l.storage.SaveRequestLog(ctx, log); err != nil {
		return fmt.Errorf("failed to save request log: %w", err)
	}

	l.logger.Debug().
		Str("request_id", log.RequestID).
		Str("agent", log.Agent).
		Bool("failed", log.Failed).
		Msg("Request log saved")
	return nil
}

// NullSink discards audit records
type NullSink struct{}

// NewNullSink creates a sink that stores nothing
func NewNullSink() *NullSink {
	return &NullSink{}
}

func (n *NullSink) Record(ctx context.Context, log *models.RequestLog) error {
	return nil
}

// NewRecord builds the audit record for a finished trace. Message and
// response are capped and the full trace is serialized as debug info.
func NewRecord(trace *tracing.Trace, userMessage, response string, failed bool) *models.RequestLog {
	record := &models.RequestLog{
		RequestID:         trace.RequestID,
		Agent:             trace.Agent,
		UserMessage:       truncate(userMessage, MaxUserMessageChars),
		Response:          truncate(response, MaxResponseChars),
		ProcessingTimeMs:  trace.ElapsedMs(),
		Confidence:        trace.Grounding.Confidence(),
		HallucinationRisk: string(trace.Grounding.Risk()),
		DataPointsCount:   len(trace.Grounding.DataUsed()),
		Failed:            failed,
		CreatedAt:         time.Now(),
	}

	if call := trace.LLMCall(); call != nil {
		record.Model = call.Model
		record.InputTokens = call.InputTokens
		record.OutputTokens = call.OutputTokens
		record.CostUSD = call.CostUSD
	}

	if debugInfo, err := json.Marshal(trace.ToMap()); err == nil {
		record.DebugInfo = debugInfo
	}

	return record
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
