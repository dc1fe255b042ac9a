package support

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/ternarybob/arbor"
)

const missingReply = "Sorry, I could not process your request."

// Reply is the structured answer requested from the model
type Reply struct {
	Response    string
	Suggestions []string
	Escalate    bool
}

// ParseReply decodes the model output. A leading ```json or ``` fence and a
// trailing ``` fence are stripped before a second attempt. Fields are read one
// by one and a field of the wrong type is ignored. Content that is not a JSON
// object becomes the reply text with no suggestions and no escalation.
func ParseReply(content string, logger arbor.ILogger) Reply {
	fields, err := decodeObject(content)
	if err != nil {
		fields, err = decodeObject(stripFences(content))
	}
	if err != nil {
		if logger != nil {
			logger.Warn().
				Err(err).
				Str("preview", truncateRunes(content, 200)).
				Msg("Model reply is not a JSON object, using raw text")
		}
		return Reply{Response: content}
	}

	reply := Reply{Response: missingReply}
	if text, ok := stringField(fields, "response"); ok {
		reply.Response = text
	} else if text, ok := stringField(fields, "reply"); ok {
		reply.Response = text
	}

	var suggestions []string
	if decodeField(fields, "suggestions", &suggestions) {
		reply.Suggestions = suggestions
	}

	var escalate bool
	if decodeField(fields, "escalate", &escalate) {
		reply.Escalate = escalate
	}
	return reply
}

func decodeObject(content string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("reply is null")
	}
	return fields, nil
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	var text *string
	if !decodeField(fields, key, &text) || text == nil {
		return "", false
	}
	return *text, true
}

// decodeField reports whether key is present and decodes into v
func decodeField(fields map[string]json.RawMessage, key string, v interface{}) bool {
	raw, ok := fields[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func stripFences(content string) string {
	cleaned := strings.TrimSpace(content)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
