package common

import (
	"strings"

	"github.com/google/uuid"
)

// NewRequestID generates a short request identifier
// Format: req_<8 hex chars>
func NewRequestID() string {
	return "req_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// NewFeedbackID generates a unique feedback ID with the "fb_" prefix
func NewFeedbackID() string {
	return "fb_" + uuid.New().String()
}
